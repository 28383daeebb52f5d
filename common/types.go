// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package common holds the core fixed-size value types shared by every
// layer of the execution core: addresses, hashes, and byte helpers.
package common

import (
	"encoding/hex"
	"fmt"
)

const (
	// HashLength is the expected length of the keccak-256 hash.
	HashLength = 32
	// AddressLength is the expected length of an account address.
	AddressLength = 20
)

// Hash represents a 32-byte keccak-256 digest.
type Hash [HashLength]byte

// BytesToHash sets the last 32 bytes of b (left-padding or truncating
// from the left) into a Hash.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// Bytes returns the byte slice representation of h.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the 0x-prefixed hex encoding of h.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool { return h == Hash{} }

// Cmp compares two hashes lexicographically.
func (h Hash) Cmp(other Hash) int {
	for i := range h {
		if h[i] != other[i] {
			if h[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Address represents a 20-byte account address.
type Address [AddressLength]byte

// BytesToAddress sets the last 20 bytes of b into an Address.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// Bytes returns the byte slice representation of a.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the 0x-prefixed hex encoding of a.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool { return a == Address{} }

// Hash returns the 32-byte left-padded representation of the address,
// used as a trie-path input for precompile addressing.
func (a Address) Hash() Hash { return BytesToHash(a[:]) }

// FromHex decodes a 0x-prefixed (or bare) hex string.
func FromHex(s string) ([]byte, error) {
	if len(s) >= 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}

// HexToHash decodes a hex string into a Hash, panicking on malformed
// input; intended for constant tables, not untrusted input.
func HexToHash(s string) Hash {
	b, err := FromHex(s)
	if err != nil {
		panic(fmt.Sprintf("common: invalid hex hash %q: %v", s, err))
	}
	return BytesToHash(b)
}

// HexToAddress decodes a hex string into an Address; see HexToHash.
func HexToAddress(s string) Address {
	b, err := FromHex(s)
	if err != nil {
		panic(fmt.Sprintf("common: invalid hex address %q: %v", s, err))
	}
	return BytesToAddress(b)
}

// CopyBytes returns an independent copy of b.
func CopyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}
