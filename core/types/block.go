// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"math/big"

	"github.com/chainforge/evmcore/common"
)

// Body holds the per-block data keyed separately from the header in
// the canonical chain store (§6: the `("b",blockHash)` body record).
type Body struct {
	Transactions []*Transaction
	Uncles       []*Header
}

// Block is a header plus its body, assembled for execution or for
// returning a complete block to a caller; it is never itself the unit
// persisted (§6 persists header, body, and receipts as separate
// records under the block hash).
type Block struct {
	header       *Header
	transactions []*Transaction
	uncles       []*Header
}

// NewBlock assembles a Block from a header and body. The header's
// TxHash/UncleHash/ReceiptHash/Bloom/GasUsed are assumed already set
// by the caller (the block executor computes them).
func NewBlock(header *Header, txs []*Transaction, uncles []*Header) *Block {
	return &Block{header: header, transactions: txs, uncles: uncles}
}

func (b *Block) Header() *Header              { return b.header }
func (b *Block) Transactions() []*Transaction { return b.transactions }
func (b *Block) Uncles() []*Header            { return b.uncles }
func (b *Block) Body() *Body                  { return &Body{Transactions: b.transactions, Uncles: b.uncles} }
func (b *Block) Hash() common.Hash            { return b.header.Hash() }
func (b *Block) NumberU64() uint64 {
	if b.header.Number == nil {
		return 0
	}
	return b.header.Number.Uint64()
}

func (b *Block) Number() *big.Int    { return b.header.Number }
func (b *Block) GasLimit() uint64    { return b.header.GasLimit }
func (b *Block) GasUsed() uint64     { return b.header.GasUsed }
func (b *Block) Time() uint64        { return b.header.Time }
func (b *Block) ParentHash() common.Hash { return b.header.ParentHash }
