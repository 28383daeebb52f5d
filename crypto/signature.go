// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crypto

import (
	"errors"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	dcecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/chainforge/evmcore/common"
)

// secp256k1N is the order of the secp256k1 curve, used to bound valid
// signature values (§4.7 sender recovery, §7 InvalidSignature).
var secp256k1N, _ = new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)

// secp256k1HalfN is half the curve order; Homestead onward requires S
// in the lower half to forbid signature malleability (EIP-2).
var secp256k1HalfN = new(big.Int).Rsh(secp256k1N, 1)

var (
	// ErrInvalidSignatureLength is returned when a signature is not
	// exactly 65 bytes (R || S || V).
	ErrInvalidSignatureLength = errors.New("crypto: invalid signature length")
	// ErrInvalidSignatureValues is returned by sender recovery when R,
	// S, or V fail the range/malleability checks.
	ErrInvalidSignatureValues = errors.New("crypto: invalid signature r,s,v values")
)

// PrivateKey wraps a secp256k1 private key for transaction signing in
// tests and fixtures; production callers only ever need Ecrecover.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// GenerateKey returns a fresh secp256k1 private key.
func GenerateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key: key}, nil
}

// PublicKeyBytes returns the 65-byte uncompressed public key.
func (p *PrivateKey) PublicKeyBytes() []byte {
	return p.key.PubKey().SerializeUncompressed()
}

// Sign produces a 65-byte [R || S || V] signature over a 32-byte hash,
// with V normalized to 0 or 1 (the raw recovery id; callers apply the
// legacy +27 or EIP-155 encoding on top, §3 Transaction signature field).
func Sign(hash []byte, priv *PrivateKey) ([]byte, error) {
	if len(hash) != common.HashLength {
		return nil, errors.New("crypto: hash is not 32 bytes")
	}
	sig := dcecdsa.SignCompact(priv.key, hash, false)
	// dcrd's compact format is [recoveryID+27, R(32), S(32)].
	out := make([]byte, 65)
	copy(out[0:32], sig[1:33])
	copy(out[32:64], sig[33:65])
	out[64] = sig[0] - 27
	return out, nil
}

// Ecrecover recovers the 65-byte uncompressed public key that produced
// sig (65 bytes, [R || S || V] with V in {0,1}) over hash.
func Ecrecover(hash, sig []byte) ([]byte, error) {
	pub, err := SigToPub(hash, sig)
	if err != nil {
		return nil, err
	}
	return pub, nil
}

// SigToPub recovers the 65-byte uncompressed public key from hash and
// a 65-byte [R || S || V] signature, V in {0,1}.
func SigToPub(hash, sig []byte) ([]byte, error) {
	if len(sig) != 65 {
		return nil, ErrInvalidSignatureLength
	}
	if len(hash) != common.HashLength {
		return nil, errors.New("crypto: hash is not 32 bytes")
	}
	v := sig[64]
	if v > 1 {
		return nil, ErrInvalidSignatureValues
	}
	compact := make([]byte, 65)
	compact[0] = v + 27
	copy(compact[1:33], sig[0:32])
	copy(compact[33:65], sig[32:64])

	pub, _, err := dcecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return nil, ErrInvalidSignatureValues
	}
	return pub.SerializeUncompressed(), nil
}

// PubkeyToAddress derives the Ethereum address from a 65-byte
// uncompressed public key: keccak256(pubkey[1:])[12:].
func PubkeyToAddress(pub []byte) common.Address {
	if len(pub) != 65 || pub[0] != 0x04 {
		return common.Address{}
	}
	return common.BytesToAddress(Keccak256(pub[1:]))
}

// ValidateSignatureValues checks r, s, v for validity per the
// Homestead low-S rule (§7 InvalidSignature, EIP-2).
func ValidateSignatureValues(v byte, r, s *big.Int, homestead bool) bool {
	if r == nil || s == nil {
		return false
	}
	if v > 1 {
		return false
	}
	if r.Sign() <= 0 || s.Sign() <= 0 {
		return false
	}
	if r.Cmp(secp256k1N) >= 0 || s.Cmp(secp256k1N) >= 0 {
		return false
	}
	if homestead && s.Cmp(secp256k1HalfN) > 0 {
		return false
	}
	return true
}
