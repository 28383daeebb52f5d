// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/rlp"
)

// Transaction type bytes (EIP-2718 envelope). Only the pre-Shanghai
// types this execution core supports are represented; blob (0x03),
// set-code (0x04), and later types are out of scope.
const (
	LegacyTxType     = 0x00
	AccessListTxType = 0x01
	DynamicFeeTxType = 0x02
)

var (
	errUnknownTxType = errors.New("types: unknown transaction type")
	errShortTypedTx  = errors.New("types: typed transaction payload too short")
)

// AccessTuple is one entry of an EIP-2930 access list: an address and
// the storage slots within it to pre-warm.
type AccessTuple struct {
	Address     common.Address
	StorageKeys []common.Hash
}

// AccessList is the set of addresses and storage slots an EIP-2930 or
// EIP-1559 transaction declares it will touch (§4.3 access list).
type AccessList []AccessTuple

// TxData is the set of fields and accessors every transaction variant
// must provide; Transaction dispatches to whichever variant it wraps.
type TxData interface {
	txType() byte
	chainID() *big.Int
	accessList() AccessList
	data() []byte
	gas() uint64
	gasPrice() *big.Int
	gasTipCap() *big.Int
	gasFeeCap() *big.Int
	value() *big.Int
	nonce() uint64
	to() *common.Address
	rawSignatureValues() (v, r, s *big.Int)
	setSignatureValues(v, r, s *big.Int)
}

// LegacyTx is a pre-EIP-2718 transaction, optionally EIP-155
// replay-protected via the encoding of V.
type LegacyTx struct {
	Nonce    uint64
	GasPrice *big.Int
	Gas      uint64
	To       *common.Address
	Value    *big.Int
	Data     []byte
	V, R, S  *big.Int
}

func (tx *LegacyTx) txType() byte              { return LegacyTxType }
func (tx *LegacyTx) chainID() *big.Int         { return deriveChainID(tx.V) }
func (tx *LegacyTx) accessList() AccessList    { return nil }
func (tx *LegacyTx) data() []byte              { return tx.Data }
func (tx *LegacyTx) gas() uint64               { return tx.Gas }
func (tx *LegacyTx) gasPrice() *big.Int        { return tx.GasPrice }
func (tx *LegacyTx) gasTipCap() *big.Int       { return tx.GasPrice }
func (tx *LegacyTx) gasFeeCap() *big.Int       { return tx.GasPrice }
func (tx *LegacyTx) value() *big.Int           { return tx.Value }
func (tx *LegacyTx) nonce() uint64             { return tx.Nonce }
func (tx *LegacyTx) to() *common.Address       { return tx.To }
func (tx *LegacyTx) rawSignatureValues() (v, r, s *big.Int) { return tx.V, tx.R, tx.S }
func (tx *LegacyTx) setSignatureValues(v, r, s *big.Int)    { tx.V, tx.R, tx.S = v, r, s }

// AccessListTx is an EIP-2930 transaction: a legacy transaction plus a
// declared access list, still priced with a single gas price.
type AccessListTx struct {
	ChainID    *big.Int
	Nonce      uint64
	GasPrice   *big.Int
	Gas        uint64
	To         *common.Address
	Value      *big.Int
	Data       []byte
	AccessList AccessList
	V, R, S    *big.Int
}

func (tx *AccessListTx) txType() byte              { return AccessListTxType }
func (tx *AccessListTx) chainID() *big.Int         { return tx.ChainID }
func (tx *AccessListTx) accessList() AccessList    { return tx.AccessList }
func (tx *AccessListTx) data() []byte              { return tx.Data }
func (tx *AccessListTx) gas() uint64               { return tx.Gas }
func (tx *AccessListTx) gasPrice() *big.Int        { return tx.GasPrice }
func (tx *AccessListTx) gasTipCap() *big.Int       { return tx.GasPrice }
func (tx *AccessListTx) gasFeeCap() *big.Int       { return tx.GasPrice }
func (tx *AccessListTx) value() *big.Int           { return tx.Value }
func (tx *AccessListTx) nonce() uint64             { return tx.Nonce }
func (tx *AccessListTx) to() *common.Address       { return tx.To }
func (tx *AccessListTx) rawSignatureValues() (v, r, s *big.Int) { return tx.V, tx.R, tx.S }
func (tx *AccessListTx) setSignatureValues(v, r, s *big.Int)    { tx.V, tx.R, tx.S = v, r, s }

// DynamicFeeTx is an EIP-1559 transaction: fees are a tip capped by a
// fee cap, with the effective gas price bounded by the block base fee.
type DynamicFeeTx struct {
	ChainID    *big.Int
	Nonce      uint64
	GasTipCap  *big.Int // maxPriorityFeePerGas
	GasFeeCap  *big.Int // maxFeePerGas
	Gas        uint64
	To         *common.Address
	Value      *big.Int
	Data       []byte
	AccessList AccessList
	V, R, S    *big.Int
}

func (tx *DynamicFeeTx) txType() byte              { return DynamicFeeTxType }
func (tx *DynamicFeeTx) chainID() *big.Int         { return tx.ChainID }
func (tx *DynamicFeeTx) accessList() AccessList    { return tx.AccessList }
func (tx *DynamicFeeTx) data() []byte              { return tx.Data }
func (tx *DynamicFeeTx) gas() uint64               { return tx.Gas }
func (tx *DynamicFeeTx) gasPrice() *big.Int        { return tx.GasFeeCap }
func (tx *DynamicFeeTx) gasTipCap() *big.Int       { return tx.GasTipCap }
func (tx *DynamicFeeTx) gasFeeCap() *big.Int       { return tx.GasFeeCap }
func (tx *DynamicFeeTx) value() *big.Int           { return tx.Value }
func (tx *DynamicFeeTx) nonce() uint64             { return tx.Nonce }
func (tx *DynamicFeeTx) to() *common.Address       { return tx.To }
func (tx *DynamicFeeTx) rawSignatureValues() (v, r, s *big.Int) { return tx.V, tx.R, tx.S }
func (tx *DynamicFeeTx) setSignatureValues(v, r, s *big.Int)    { tx.V, tx.R, tx.S = v, r, s }

// Transaction wraps one of the TxData variants along with caches
// derived from it (hash, recovered sender).
type Transaction struct {
	inner TxData

	hash atomic.Pointer[common.Hash]
	from atomic.Pointer[common.Address]
}

// NewTx wraps inner in a Transaction.
func NewTx(inner TxData) *Transaction {
	return &Transaction{inner: inner}
}

func (tx *Transaction) Type() uint8               { return tx.inner.txType() }
func (tx *Transaction) ChainId() *big.Int         { return tx.inner.chainID() }
func (tx *Transaction) AccessList() AccessList    { return tx.inner.accessList() }
func (tx *Transaction) Data() []byte              { return tx.inner.data() }
func (tx *Transaction) Gas() uint64               { return tx.inner.gas() }
func (tx *Transaction) GasPrice() *big.Int        { return tx.inner.gasPrice() }
func (tx *Transaction) GasTipCap() *big.Int       { return tx.inner.gasTipCap() }
func (tx *Transaction) GasFeeCap() *big.Int       { return tx.inner.gasFeeCap() }
func (tx *Transaction) Value() *big.Int           { return tx.inner.value() }
func (tx *Transaction) Nonce() uint64             { return tx.inner.nonce() }
func (tx *Transaction) To() *common.Address       { return tx.inner.to() }

// RawSignatureValues returns the transaction's v, r, s fields.
func (tx *Transaction) RawSignatureValues() (v, r, s *big.Int) { return tx.inner.rawSignatureValues() }

// GasFeeCapCmp compares the effective fee cap to x: for legacy and
// access-list transactions that is the flat gas price.
func (tx *Transaction) GasFeeCapCmp(x *big.Int) int { return tx.GasFeeCap().Cmp(x) }

// EffectiveGasTip returns the miner tip per gas given a block base fee:
// min(gasTipCap, gasFeeCap-baseFee) for dynamic-fee transactions,
// gasPrice-baseFee for legacy/access-list ones. baseFee may be nil
// pre-London, in which case the gas tip cap is returned (the gas price
// for legacy/access-list transactions).
func (tx *Transaction) EffectiveGasTip(baseFee *big.Int) (*big.Int, error) {
	if baseFee == nil {
		return new(big.Int).Set(tx.GasTipCap()), nil
	}
	feeCap := tx.GasFeeCap()
	if feeCap.Cmp(baseFee) < 0 {
		return nil, fmt.Errorf("types: max fee per gas %s less than block base fee %s", feeCap, baseFee)
	}
	tip := tx.GasTipCap()
	possible := new(big.Int).Sub(feeCap, baseFee)
	if tip.Cmp(possible) < 0 {
		return new(big.Int).Set(tip), nil
	}
	return possible, nil
}

// EffectiveGasPrice returns the per-gas amount actually paid given a
// block base fee (nil pre-London): baseFee + effective tip.
func (tx *Transaction) EffectiveGasPrice(baseFee *big.Int) (*big.Int, error) {
	if baseFee == nil {
		return new(big.Int).Set(tx.GasPrice()), nil
	}
	tip, err := tx.EffectiveGasTip(baseFee)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Add(baseFee, tip), nil
}

// Hash returns the transaction's hash, caching on first call.
func (tx *Transaction) Hash() common.Hash {
	if h := tx.hash.Load(); h != nil {
		return *h
	}
	enc, err := tx.EncodeRLP()
	if err != nil {
		return common.Hash{}
	}
	h := keccak256Hash(enc)
	tx.hash.Store(&h)
	return h
}

// setSender caches a recovered sender address so repeated validation
// passes (e.g. re-executing a block) don't re-run signature recovery.
func (tx *Transaction) setSender(addr common.Address) { a := addr; tx.from.Store(&a) }
func (tx *Transaction) cachedSender() (common.Address, bool) {
	if a := tx.from.Load(); a != nil {
		return *a, true
	}
	return common.Address{}, false
}

// ---- RLP envelope encoding ----
//
// A legacy transaction's RLP item is, as always, its field list
// directly. A typed transaction's RLP item is the byte string
// `type || rlp(fields)`, string-wrapped so it stays a single valid
// item whether it appears at top level or as an element of a list
// (the block body's transaction list, in particular).

type legacyTxRLP struct {
	Nonce    uint64
	GasPrice *big.Int
	Gas      uint64
	To       *common.Address
	Value    *big.Int
	Data     []byte
	V        *big.Int
	R        *big.Int
	S        *big.Int
}

type accessTupleRLP struct {
	Address     common.Address
	StorageKeys []common.Hash
}

type accessListTxRLP struct {
	ChainID    *big.Int
	Nonce      uint64
	GasPrice   *big.Int
	Gas        uint64
	To         *common.Address
	Value      *big.Int
	Data       []byte
	AccessList []accessTupleRLP
	V          *big.Int
	R          *big.Int
	S          *big.Int
}

type dynamicFeeTxRLP struct {
	ChainID    *big.Int
	Nonce      uint64
	GasTipCap  *big.Int
	GasFeeCap  *big.Int
	Gas        uint64
	To         *common.Address
	Value      *big.Int
	Data       []byte
	AccessList []accessTupleRLP
	V          *big.Int
	R          *big.Int
	S          *big.Int
}

func encodeAccessList(al AccessList) []accessTupleRLP {
	out := make([]accessTupleRLP, len(al))
	for i, t := range al {
		out[i] = accessTupleRLP{Address: t.Address, StorageKeys: t.StorageKeys}
	}
	return out
}

func decodeAccessList(al []accessTupleRLP) AccessList {
	out := make(AccessList, len(al))
	for i, t := range al {
		out[i] = AccessTuple{Address: t.Address, StorageKeys: t.StorageKeys}
	}
	return out
}

// EncodeRLP implements rlp.Encoder.
func (tx *Transaction) EncodeRLP() ([]byte, error) {
	switch t := tx.inner.(type) {
	case *LegacyTx:
		enc := legacyTxRLP{
			Nonce: t.Nonce, GasPrice: bigOrZero(t.GasPrice), Gas: t.Gas, To: t.To,
			Value: bigOrZero(t.Value), Data: t.Data,
			V: bigOrZero(t.V), R: bigOrZero(t.R), S: bigOrZero(t.S),
		}
		return rlp.EncodeToBytes(enc)
	case *AccessListTx:
		enc := accessListTxRLP{
			ChainID: bigOrZero(t.ChainID), Nonce: t.Nonce, GasPrice: bigOrZero(t.GasPrice),
			Gas: t.Gas, To: t.To, Value: bigOrZero(t.Value), Data: t.Data,
			AccessList: encodeAccessList(t.AccessList),
			V:          bigOrZero(t.V), R: bigOrZero(t.R), S: bigOrZero(t.S),
		}
		return encodeTyped(AccessListTxType, enc)
	case *DynamicFeeTx:
		enc := dynamicFeeTxRLP{
			ChainID: bigOrZero(t.ChainID), Nonce: t.Nonce, GasTipCap: bigOrZero(t.GasTipCap),
			GasFeeCap: bigOrZero(t.GasFeeCap), Gas: t.Gas, To: t.To, Value: bigOrZero(t.Value),
			Data:       t.Data,
			AccessList: encodeAccessList(t.AccessList),
			V:          bigOrZero(t.V), R: bigOrZero(t.R), S: bigOrZero(t.S),
		}
		return encodeTyped(DynamicFeeTxType, enc)
	default:
		return nil, errUnknownTxType
	}
}

func encodeTyped(txType byte, fields interface{}) ([]byte, error) {
	payload, err := rlp.EncodeToBytes(fields)
	if err != nil {
		return nil, err
	}
	raw := make([]byte, 1+len(payload))
	raw[0] = txType
	copy(raw[1:], payload)
	return rlp.EncodeToBytes(raw)
}

// DecodeRLP implements rlp.Decoder.
func (tx *Transaction) DecodeRLP(b []byte) ([]byte, error) {
	isList, payload, rest, err := rlp.Peek(b)
	if err != nil {
		return nil, err
	}
	if isList {
		var dec legacyTxRLP
		if _, err := rlp.DecodeValue(b, &dec); err != nil {
			return nil, err
		}
		tx.inner = &LegacyTx{
			Nonce: dec.Nonce, GasPrice: dec.GasPrice, Gas: dec.Gas, To: dec.To,
			Value: dec.Value, Data: dec.Data, V: dec.V, R: dec.R, S: dec.S,
		}
		return rest, nil
	}
	if len(payload) < 2 {
		return nil, errShortTypedTx
	}
	txType, inner := payload[0], payload[1:]
	switch txType {
	case AccessListTxType:
		var dec accessListTxRLP
		if err := rlp.DecodeBytes(inner, &dec); err != nil {
			return nil, err
		}
		tx.inner = &AccessListTx{
			ChainID: dec.ChainID, Nonce: dec.Nonce, GasPrice: dec.GasPrice, Gas: dec.Gas,
			To: dec.To, Value: dec.Value, Data: dec.Data, AccessList: decodeAccessList(dec.AccessList),
			V: dec.V, R: dec.R, S: dec.S,
		}
	case DynamicFeeTxType:
		var dec dynamicFeeTxRLP
		if err := rlp.DecodeBytes(inner, &dec); err != nil {
			return nil, err
		}
		tx.inner = &DynamicFeeTx{
			ChainID: dec.ChainID, Nonce: dec.Nonce, GasTipCap: dec.GasTipCap, GasFeeCap: dec.GasFeeCap,
			Gas: dec.Gas, To: dec.To, Value: dec.Value, Data: dec.Data,
			AccessList: decodeAccessList(dec.AccessList), V: dec.V, R: dec.R, S: dec.S,
		}
	default:
		return nil, fmt.Errorf("%w: 0x%02x", errUnknownTxType, txType)
	}
	return rest, nil
}

// deriveChainID recovers the chain ID encoded into a legacy
// transaction's V value by EIP-155 (v = chainID*2 + 35|36); returns
// nil for a pre-EIP-155 transaction (v == 27 or 28).
func deriveChainID(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	if v.BitLen() <= 8 {
		n := v.Uint64()
		if n == 27 || n == 28 {
			return nil
		}
	}
	chainID := new(big.Int).Sub(v, big.NewInt(35))
	return chainID.Rsh(chainID, 1)
}
