// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/rlp"
)

// Log is one entry emitted by the LOG0-LOG4 opcodes (§3 Log). Address,
// Topics, and Data are consensus fields encoded into the receipt via
// EncodeRLP/DecodeRLP below; the rest is block-indexing metadata that
// StateDB stamps on each log when it is emitted (AddLog) and when the
// block executor collects a transaction's logs (GetLogs).
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte

	BlockNumber uint64
	TxHash      common.Hash
	TxIndex     uint
	BlockHash   common.Hash
	Index       uint
	Removed     bool
}

// rlpLog is the consensus-encoded subset of Log stored inside a
// receipt (§6: receipts are persisted RLP-encoded); the indexing
// fields are not persisted, and a decoded log leaves them zero.
type rlpLog struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

func (l *Log) toRLP() rlpLog {
	return rlpLog{Address: l.Address, Topics: l.Topics, Data: l.Data}
}

func (l *Log) fromRLP(r rlpLog) {
	l.Address = r.Address
	l.Topics = r.Topics
	l.Data = r.Data
}

// EncodeRLP implements rlp.Encoder, persisting only the consensus
// subset of Log (indexing fields are not written).
func (l *Log) EncodeRLP() ([]byte, error) {
	return rlp.EncodeToBytes(l.toRLP())
}

// DecodeRLP implements rlp.Decoder.
func (l *Log) DecodeRLP(b []byte) ([]byte, error) {
	var r rlpLog
	rest, err := rlp.DecodeValue(b, &r)
	if err != nil {
		return nil, err
	}
	l.fromRLP(r)
	return rest, nil
}
