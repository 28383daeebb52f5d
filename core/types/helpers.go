// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"math/big"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/crypto"
)

// bigOrZero returns i if non-nil, otherwise a fresh zero big.Int; the
// RLP integer encoding has no representation for nil, only for zero.
func bigOrZero(i *big.Int) *big.Int {
	if i != nil {
		return i
	}
	return new(big.Int)
}

func keccak256Hash(b []byte) common.Hash {
	return crypto.Keccak256Hash(b)
}
