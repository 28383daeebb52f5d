// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"github.com/chainforge/evmcore/crypto"
)

// BloomByteLength is the width of a logs bloom filter in bytes
// (2048 bits, §3 Log/Bloom).
const BloomByteLength = 256

// BloomBitLength is the number of bits in a logs bloom filter.
const BloomBitLength = 8 * BloomByteLength

// Bloom is a 2048-bit positional bloom filter over log addresses and
// topics (§3, §6: logsBloom field of Header and Receipt).
type Bloom [BloomByteLength]byte

// BytesToBloom sets the trailing BloomByteLength bytes of b into a
// Bloom, left-padding if shorter.
func BytesToBloom(b []byte) Bloom {
	var bl Bloom
	if len(b) > BloomByteLength {
		b = b[len(b)-BloomByteLength:]
	}
	copy(bl[BloomByteLength-len(b):], b)
	return bl
}

// Bytes returns the raw 256-byte representation.
func (b Bloom) Bytes() []byte { return b[:] }

// Add ORs the three bit positions derived from keccak256(data) into
// the filter (§3: "three 11-bit slices of a keccak digest, each used
// as a bit index into the 2048-bit filter").
func (b *Bloom) Add(data []byte) {
	h := crypto.Keccak256(data)
	for i := 0; i < 6; i += 2 {
		bit := (uint(h[i])<<8 | uint(h[i+1])) & 0x7ff
		b[BloomByteLength-1-bit/8] |= 1 << (bit % 8)
	}
}

// Test reports whether every bit Add(data) would set is already set;
// false negatives are impossible, false positives are inherent to a
// bloom filter.
func (b Bloom) Test(data []byte) bool {
	var probe Bloom
	probe.Add(data)
	for i := range probe {
		if probe[i]&b[i] != probe[i] {
			return false
		}
	}
	return true
}

// OrBloom ORs other into b in place, used to fold every receipt's
// bloom into the block-level logsBloom (§4.8, §8: "OR of receipt
// blooms == header.logsBloom").
func (b *Bloom) OrBloom(other Bloom) {
	for i := range b {
		b[i] |= other[i]
	}
}

// CreateBloom computes the logs bloom for a set of logs: every log's
// address and each of its topics contributes one Add (§4.7 receipt
// construction).
func CreateBloom(logs []*Log) Bloom {
	var b Bloom
	for _, log := range logs {
		b.Add(log.Address.Bytes())
		for _, topic := range log.Topics {
			b.Add(topic.Bytes())
		}
	}
	return b
}
