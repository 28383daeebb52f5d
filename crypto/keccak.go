// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package crypto provides the keccak-256 primitive and address/contract
// address derivation used throughout the execution core.
package crypto

import (
	"hash"
	"math/big"

	"golang.org/x/crypto/sha3"

	"github.com/chainforge/evmcore/common"
)

// NewKeccakState returns a new, resettable keccak-256 hash.Hash.
// Keccak256 builds a fresh one on every call.
func NewKeccakState() KeccakState {
	return sha3.NewLegacyKeccak256().(KeccakState)
}

// KeccakState extends hash.Hash with a Read that lets callers squeeze
// the digest directly into a fixed-size buffer.
type KeccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

// Keccak256 returns the keccak-256 digest of the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	d := NewKeccakState()
	for _, b := range data {
		d.Write(b)
	}
	out := make([]byte, 32)
	d.Read(out)
	return out
}

// Keccak256Hash is Keccak256 returning a common.Hash.
func Keccak256Hash(data ...[]byte) common.Hash {
	return common.BytesToHash(Keccak256(data...))
}

// CreateAddress derives the address of a contract created via CREATE:
// keccak(rlp(sender, nonce))[12:].
func CreateAddress(sender common.Address, nonce uint64) common.Address {
	encoded := rlpEncodeSenderNonce(sender, nonce)
	return common.BytesToAddress(Keccak256(encoded))
}

// CreateAddress2 derives the address of a contract created via CREATE2:
// keccak(0xff ++ sender ++ salt ++ keccak(initCode))[12:].
func CreateAddress2(sender common.Address, salt [32]byte, initCodeHash []byte) common.Address {
	return common.BytesToAddress(Keccak256([]byte{0xff}, sender.Bytes(), salt[:], initCodeHash))
}

// rlpEncodeSenderNonce encodes [sender, nonce] as an RLP list without
// importing package rlp, keeping address derivation self-contained in
// this package.
func rlpEncodeSenderNonce(sender common.Address, nonce uint64) []byte {
	nonceBytes := big.NewInt(0).SetUint64(nonce).Bytes()
	addrField := encodeRLPString(sender.Bytes())
	nonceField := encodeRLPString(nonceBytes)
	payload := append(append([]byte{}, addrField...), nonceField...)
	return append(encodeRLPListHeader(len(payload)), payload...)
}

func encodeRLPString(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return b
	}
	if len(b) < 56 {
		return append([]byte{0x80 + byte(len(b))}, b...)
	}
	lenBytes := big.NewInt(int64(len(b))).Bytes()
	header := append([]byte{0xb7 + byte(len(lenBytes))}, lenBytes...)
	return append(header, b...)
}

func encodeRLPListHeader(payloadLen int) []byte {
	if payloadLen < 56 {
		return []byte{0xc0 + byte(payloadLen)}
	}
	lenBytes := big.NewInt(int64(payloadLen)).Bytes()
	return append([]byte{0xf7 + byte(len(lenBytes))}, lenBytes...)
}
