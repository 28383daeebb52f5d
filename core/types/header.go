// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"math/big"
	"sync/atomic"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/rlp"
)

// BlockNonce is the 8-byte proof-of-work nonce field (§3 Block header).
type BlockNonce [8]byte

// EncodeNonce converts a uint64 into a BlockNonce.
func EncodeNonce(i uint64) BlockNonce {
	var n BlockNonce
	for k := 0; k < 8; k++ {
		n[7-k] = byte(i)
		i >>= 8
	}
	return n
}

// Uint64 returns the nonce as a uint64.
func (n BlockNonce) Uint64() uint64 {
	var i uint64
	for k := 0; k < 8; k++ {
		i = i<<8 | uint64(n[k])
	}
	return i
}

// Header is a block header (§3 Block header). BaseFee is nil before
// London; every other field is always present.
type Header struct {
	ParentHash  common.Hash
	UncleHash   common.Hash
	Coinbase    common.Address
	Root        common.Hash
	TxHash      common.Hash
	ReceiptHash common.Hash
	Bloom       Bloom
	Difficulty  *big.Int
	Number      *big.Int
	GasLimit    uint64
	GasUsed     uint64
	Time        uint64
	Extra       []byte
	MixDigest   common.Hash
	Nonce       BlockNonce

	// BaseFee is non-nil from London onward (§4.9); omitted from the
	// RLP encoding of pre-London headers so old block hashes are
	// unaffected.
	BaseFee *big.Int `rlp:"-"`

	hash atomic.Pointer[common.Hash]
}

// headerRLP is the consensus encoding of a header: BaseFee is appended
// only when present, so a pre-London header's RLP list has 15 items and
// a London+ header's has 16, matching the historical wire format.
type headerRLP struct {
	ParentHash  common.Hash
	UncleHash   common.Hash
	Coinbase    common.Address
	Root        common.Hash
	TxHash      common.Hash
	ReceiptHash common.Hash
	Bloom       Bloom
	Difficulty  *big.Int
	Number      *big.Int
	GasLimit    uint64
	GasUsed     uint64
	Time        uint64
	Extra       []byte
	MixDigest   common.Hash
	Nonce       BlockNonce
}

type londonHeaderRLP struct {
	headerRLP
	BaseFee *big.Int
}

// EncodeRLP implements rlp.Encoder, appending BaseFee only when set.
func (h *Header) EncodeRLP() ([]byte, error) {
	base := headerRLP{
		ParentHash: h.ParentHash, UncleHash: h.UncleHash, Coinbase: h.Coinbase,
		Root: h.Root, TxHash: h.TxHash, ReceiptHash: h.ReceiptHash, Bloom: h.Bloom,
		Difficulty: bigOrZero(h.Difficulty), Number: bigOrZero(h.Number),
		GasLimit: h.GasLimit, GasUsed: h.GasUsed, Time: h.Time,
		Extra: h.Extra, MixDigest: h.MixDigest, Nonce: h.Nonce,
	}
	if h.BaseFee == nil {
		return rlp.EncodeToBytes(base)
	}
	return rlp.EncodeToBytes(londonHeaderRLP{headerRLP: base, BaseFee: h.BaseFee})
}

// DecodeRLP implements rlp.Decoder, distinguishing a London+ header
// from a pre-London one by field count: decoding the 16-field layout
// first fails on pre-London input because the trailing BaseFee field
// finds nothing left in the list payload.
func (h *Header) DecodeRLP(b []byte) ([]byte, error) {
	var withFee londonHeaderRLP
	if rest, err := rlp.DecodeValue(b, &withFee); err == nil {
		h.assignFrom(withFee.headerRLP)
		h.BaseFee = withFee.BaseFee
		return rest, nil
	}
	var plain headerRLP
	rest, err := rlp.DecodeValue(b, &plain)
	if err != nil {
		return nil, err
	}
	h.assignFrom(plain)
	h.BaseFee = nil
	return rest, nil
}

func (h *Header) assignFrom(r headerRLP) {
	h.ParentHash, h.UncleHash, h.Coinbase = r.ParentHash, r.UncleHash, r.Coinbase
	h.Root, h.TxHash, h.ReceiptHash, h.Bloom = r.Root, r.TxHash, r.ReceiptHash, r.Bloom
	h.Difficulty, h.Number = r.Difficulty, r.Number
	h.GasLimit, h.GasUsed, h.Time = r.GasLimit, r.GasUsed, r.Time
	h.Extra, h.MixDigest, h.Nonce = r.Extra, r.MixDigest, r.Nonce
}

// Hash returns the keccak-256 hash of the RLP-encoded header, caching
// on first call; callers must not mutate a Header after hashing it.
func (h *Header) Hash() common.Hash {
	if cached := h.hash.Load(); cached != nil {
		return *cached
	}
	enc, err := h.EncodeRLP()
	if err != nil {
		return common.Hash{}
	}
	hash := keccak256Hash(enc)
	h.hash.Store(&hash)
	return hash
}
