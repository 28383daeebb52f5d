// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"errors"
	"math/big"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/rlp"
)

// Receipt status codes (Byzantium onward, §3 Receipt).
const (
	ReceiptStatusFailed     = uint64(0)
	ReceiptStatusSuccessful = uint64(1)
)

var errShortTypedReceipt = errors.New("types: typed receipt payload too short")

// Receipt records the outcome of one executed transaction (§3, §4.7).
// PostState is set pre-Byzantium (the post-transaction state root);
// Byzantium onward it is empty and Status carries the 1-bit outcome
// instead.
type Receipt struct {
	Type              uint8
	PostState         []byte
	Status            uint64
	CumulativeGasUsed uint64
	Bloom             Bloom
	Logs              []*Log

	// Indexing metadata, not part of the consensus encoding.
	TxHash           common.Hash
	ContractAddress  common.Address
	GasUsed          uint64
	BlockHash        common.Hash
	BlockNumber      *big.Int
	TransactionIndex uint
}

// statusEncoding returns the pre-Byzantium post-state root if set, or
// the Byzantium+ status byte otherwise, as the RLP encodes only one of
// the two (§3: "statusOrRoot").
func (r *Receipt) statusEncoding() []byte {
	if len(r.PostState) > 0 {
		return r.PostState
	}
	if r.Status == ReceiptStatusFailed {
		return nil
	}
	return []byte{1}
}

type receiptRLP struct {
	PostStateOrStatus []byte
	CumulativeGasUsed uint64
	Bloom             Bloom
	Logs              []*Log
}

// EncodeRLP implements rlp.Encoder. Legacy (type 0) receipts encode as
// a bare list; typed receipts (Berlin onward) encode as the
// string-wrapped `type || rlp(fields)` envelope, mirroring Transaction.
func (r *Receipt) EncodeRLP() ([]byte, error) {
	enc := receiptRLP{
		PostStateOrStatus: r.statusEncoding(),
		CumulativeGasUsed: r.CumulativeGasUsed,
		Bloom:             r.Bloom,
		Logs:              r.Logs,
	}
	if r.Type == LegacyTxType {
		return rlp.EncodeToBytes(enc)
	}
	payload, err := rlp.EncodeToBytes(enc)
	if err != nil {
		return nil, err
	}
	raw := make([]byte, 1+len(payload))
	raw[0] = r.Type
	copy(raw[1:], payload)
	return rlp.EncodeToBytes(raw)
}

// DecodeRLP implements rlp.Decoder.
func (r *Receipt) DecodeRLP(b []byte) ([]byte, error) {
	isList, payload, rest, err := rlp.Peek(b)
	if err != nil {
		return nil, err
	}
	var dec receiptRLP
	if isList {
		if _, err := rlp.DecodeValue(b, &dec); err != nil {
			return nil, err
		}
		r.Type = LegacyTxType
	} else {
		if len(payload) < 2 {
			return nil, errShortTypedReceipt
		}
		r.Type = payload[0]
		if err := rlp.DecodeBytes(payload[1:], &dec); err != nil {
			return nil, err
		}
	}
	r.CumulativeGasUsed = dec.CumulativeGasUsed
	r.Bloom = dec.Bloom
	r.Logs = dec.Logs
	if len(dec.PostStateOrStatus) == common.HashLength {
		r.PostState = dec.PostStateOrStatus
		r.Status = 0
	} else {
		r.PostState = nil
		if len(dec.PostStateOrStatus) == 1 && dec.PostStateOrStatus[0] == 1 {
			r.Status = ReceiptStatusSuccessful
		} else {
			r.Status = ReceiptStatusFailed
		}
	}
	return rest, nil
}

// NewReceipt builds a Byzantium+ receipt from execution outcome,
// deriving the logs bloom from logs.
func NewReceipt(txType uint8, failed bool, cumulativeGasUsed uint64, logs []*Log) *Receipt {
	r := &Receipt{
		Type:              txType,
		CumulativeGasUsed: cumulativeGasUsed,
		Logs:              logs,
		Bloom:             CreateBloom(logs),
	}
	if failed {
		r.Status = ReceiptStatusFailed
	} else {
		r.Status = ReceiptStatusSuccessful
	}
	return r
}

// Receipts is a list of Receipt, the type the block executor persists
// and folds into logsBloom verification (§4.8, §6).
type Receipts []*Receipt

// MergeBloom folds every receipt's bloom into one block-level bloom
// (§4.8/§8: "OR of receipt blooms == header.logsBloom").
func MergeBloom(receipts []*Receipt) Bloom {
	var b Bloom
	for _, r := range receipts {
		b.OrBloom(r.Bloom)
	}
	return b
}
