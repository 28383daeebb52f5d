// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"errors"
	"math/big"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/crypto"
	"github.com/chainforge/evmcore/rlp"
)

var (
	errInvalidSig         = errors.New("types: invalid transaction signature")
	errInvalidChainID     = errors.New("types: invalid chain id for signer")
	errTxTypeNotSupported = errors.New("types: transaction type not supported by signer")
)

// Signer hashes a transaction for signing and recovers its sender
// (§3: "the sender address is recovered from the signature over a
// chain-id-bound digest").
type Signer interface {
	Hash(tx *Transaction) common.Hash
	Sender(tx *Transaction) (common.Address, error)
	ChainID() *big.Int
}

// eip155Signer signs legacy transactions with EIP-155 replay
// protection bound to chainID; a zero chainID accepts pre-155 (v in
// {27,28}) transactions only.
type eip155Signer struct {
	chainID *big.Int
}

// londonSigner accepts legacy, EIP-2930, and EIP-1559 transactions,
// the signer used from the Berlin/London forks onward.
type londonSigner struct {
	chainID *big.Int
}

// NewEIP155Signer returns a signer for legacy EIP-155 transactions
// bound to chainID.
func NewEIP155Signer(chainID *big.Int) Signer { return eip155Signer{chainID: chainID} }

// NewLondonSigner returns a signer accepting every transaction type
// this execution core supports, bound to chainID.
func NewLondonSigner(chainID *big.Int) Signer { return londonSigner{chainID: chainID} }

// MakeSigner picks the signer appropriate for fork and chainID: Berlin
// onward accepts typed transactions, earlier forks only legacy ones.
func MakeSigner(chainID *big.Int, isBerlin bool) Signer {
	if isBerlin {
		return NewLondonSigner(chainID)
	}
	return NewEIP155Signer(chainID)
}

func (s eip155Signer) ChainID() *big.Int { return s.chainID }

func (s eip155Signer) Hash(tx *Transaction) common.Hash { return tx.sigHash(s.chainID) }

func (s eip155Signer) Sender(tx *Transaction) (common.Address, error) {
	if tx.Type() != LegacyTxType {
		return common.Address{}, errTxTypeNotSupported
	}
	v, r, sv := tx.RawSignatureValues()
	if v == nil || r == nil || sv == nil {
		return common.Address{}, errInvalidSig
	}
	recovery, err := legacyRecoveryID(v, s.chainID)
	if err != nil {
		return common.Address{}, err
	}
	return recoverSender(s.Hash(tx), r, sv, recovery)
}

func (s londonSigner) ChainID() *big.Int { return s.chainID }

func (s londonSigner) Hash(tx *Transaction) common.Hash { return tx.sigHash(s.chainID) }

func (s londonSigner) Sender(tx *Transaction) (common.Address, error) {
	v, r, sv := tx.RawSignatureValues()
	if r == nil || sv == nil {
		return common.Address{}, errInvalidSig
	}
	var recovery byte
	switch tx.Type() {
	case LegacyTxType:
		if v == nil {
			return common.Address{}, errInvalidSig
		}
		rec, err := legacyRecoveryID(v, s.chainID)
		if err != nil {
			return common.Address{}, err
		}
		recovery = rec
	case AccessListTxType, DynamicFeeTxType:
		if txChainID := tx.ChainId(); txChainID != nil && s.chainID != nil && txChainID.Cmp(s.chainID) != 0 {
			return common.Address{}, errInvalidChainID
		}
		if v == nil {
			recovery = 0
		} else {
			if v.BitLen() > 8 {
				return common.Address{}, errInvalidSig
			}
			recovery = byte(v.Uint64())
		}
	default:
		return common.Address{}, errTxTypeNotSupported
	}
	return recoverSender(s.Hash(tx), r, sv, recovery)
}

// legacyRecoveryID extracts the 0/1 recovery id from a legacy V value,
// which is either the pre-155 {27,28} encoding or the EIP-155
// chainID*2+35+recovery encoding.
func legacyRecoveryID(v, chainID *big.Int) (byte, error) {
	if v.BitLen() <= 8 {
		n := v.Uint64()
		if n == 27 || n == 28 {
			return byte(n - 27), nil
		}
	}
	if chainID == nil || chainID.Sign() == 0 {
		return 0, errInvalidSig
	}
	adj := new(big.Int).Sub(v, new(big.Int).Lsh(chainID, 1))
	adj.Sub(adj, big.NewInt(35))
	if !adj.IsUint64() || adj.Uint64() > 1 {
		return 0, errInvalidSig
	}
	return byte(adj.Uint64()), nil
}

func recoverSender(sigHash common.Hash, r, s *big.Int, recovery byte) (common.Address, error) {
	if !crypto.ValidateSignatureValues(recovery, r, s, true) {
		return common.Address{}, errInvalidSig
	}
	sig := make([]byte, 65)
	rb, sb := r.Bytes(), s.Bytes()
	copy(sig[32-len(rb):32], rb)
	copy(sig[64-len(sb):64], sb)
	sig[64] = recovery
	pub, err := crypto.Ecrecover(sigHash.Bytes(), sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(pub), nil
}

// Sender recovers and caches tx's sender address under signer.
func Sender(signer Signer, tx *Transaction) (common.Address, error) {
	if addr, ok := tx.cachedSender(); ok {
		return addr, nil
	}
	addr, err := signer.Sender(tx)
	if err != nil {
		return common.Address{}, err
	}
	tx.setSender(addr)
	return addr, nil
}

// SignTx signs tx with priv under signer and returns the signed copy;
// used by tests and fixture construction, never by block execution.
func SignTx(tx *Transaction, signer Signer, priv *crypto.PrivateKey) (*Transaction, error) {
	h := signer.Hash(tx)
	sig, err := crypto.Sign(h.Bytes(), priv)
	if err != nil {
		return nil, err
	}
	r := new(big.Int).SetBytes(sig[0:32])
	s := new(big.Int).SetBytes(sig[32:64])
	recovery := sig[64]

	var v *big.Int
	switch tx.Type() {
	case LegacyTxType:
		chainID := signer.ChainID()
		if chainID == nil || chainID.Sign() == 0 {
			v = big.NewInt(int64(recovery) + 27)
		} else {
			v = new(big.Int).Lsh(chainID, 1)
			v.Add(v, big.NewInt(35+int64(recovery)))
		}
	default:
		v = big.NewInt(int64(recovery))
	}
	tx.inner.setSignatureValues(v, r, s)
	tx.hash.Store(nil)
	tx.from.Store(nil)
	return tx, nil
}

// sigHash computes the digest that gets signed: for legacy
// transactions the EIP-155 list (with chainID,0,0 appended when
// chainID is non-zero), for typed transactions
// Keccak256(type || rlp(fields-without-v-r-s)).
func (tx *Transaction) sigHash(chainID *big.Int) common.Hash {
	switch t := tx.inner.(type) {
	case *LegacyTx:
		enc := struct {
			Nonce    uint64
			GasPrice *big.Int
			Gas      uint64
			To       *common.Address
			Value    *big.Int
			Data     []byte
		}{t.Nonce, bigOrZero(t.GasPrice), t.Gas, t.To, bigOrZero(t.Value), t.Data}
		if chainID == nil || chainID.Sign() == 0 {
			b, _ := rlp.EncodeToBytes(enc)
			return keccak256Hash(b)
		}
		full := struct {
			Nonce    uint64
			GasPrice *big.Int
			Gas      uint64
			To       *common.Address
			Value    *big.Int
			Data     []byte
			ChainID  *big.Int
			Zero1    uint64
			Zero2    uint64
		}{t.Nonce, bigOrZero(t.GasPrice), t.Gas, t.To, bigOrZero(t.Value), t.Data, chainID, 0, 0}
		b, _ := rlp.EncodeToBytes(full)
		return keccak256Hash(b)
	case *AccessListTx:
		enc := accessListTxRLP{
			ChainID: bigOrZero(t.ChainID), Nonce: t.Nonce, GasPrice: bigOrZero(t.GasPrice),
			Gas: t.Gas, To: t.To, Value: bigOrZero(t.Value), Data: t.Data,
			AccessList: encodeAccessList(t.AccessList),
			V:          new(big.Int), R: new(big.Int), S: new(big.Int),
		}
		return typedSigHash(AccessListTxType, unsignedAccessListFields(enc))
	case *DynamicFeeTx:
		enc := dynamicFeeTxRLP{
			ChainID: bigOrZero(t.ChainID), Nonce: t.Nonce, GasTipCap: bigOrZero(t.GasTipCap),
			GasFeeCap: bigOrZero(t.GasFeeCap), Gas: t.Gas, To: t.To, Value: bigOrZero(t.Value),
			Data: t.Data, AccessList: encodeAccessList(t.AccessList),
			V: new(big.Int), R: new(big.Int), S: new(big.Int),
		}
		return typedSigHash(DynamicFeeTxType, unsignedDynamicFeeFields(enc))
	default:
		return common.Hash{}
	}
}

func unsignedAccessListFields(enc accessListTxRLP) interface{} {
	return struct {
		ChainID    *big.Int
		Nonce      uint64
		GasPrice   *big.Int
		Gas        uint64
		To         *common.Address
		Value      *big.Int
		Data       []byte
		AccessList []accessTupleRLP
	}{enc.ChainID, enc.Nonce, enc.GasPrice, enc.Gas, enc.To, enc.Value, enc.Data, enc.AccessList}
}

func unsignedDynamicFeeFields(enc dynamicFeeTxRLP) interface{} {
	return struct {
		ChainID    *big.Int
		Nonce      uint64
		GasTipCap  *big.Int
		GasFeeCap  *big.Int
		Gas        uint64
		To         *common.Address
		Value      *big.Int
		Data       []byte
		AccessList []accessTupleRLP
	}{enc.ChainID, enc.Nonce, enc.GasTipCap, enc.GasFeeCap, enc.Gas, enc.To, enc.Value, enc.Data, enc.AccessList}
}

func typedSigHash(txType byte, fields interface{}) common.Hash {
	payload, err := rlp.EncodeToBytes(fields)
	if err != nil {
		return common.Hash{}
	}
	return keccak256Hash(append([]byte{txType}, payload...))
}
