// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package core

import "fmt"

// GasPool tracks the gas available within one block (§4.8: every
// transaction's GasLimit is drawn from it, and block.GasLimit bounds
// the total). It is not safe for concurrent use — transactions within
// a block are always applied sequentially.
type GasPool uint64

// AddGas makes gas available for the next transaction.
func (gp *GasPool) AddGas(gas uint64) *GasPool {
	if uint64(*gp) > ^uint64(0)-gas {
		panic("gas pool pushed above uint64")
	}
	*(*uint64)(gp) += gas
	return gp
}

// SubGas deducts gas from the pool, failing if the pool is exhausted.
func (gp *GasPool) SubGas(gas uint64) error {
	if uint64(*gp) < gas {
		return ErrGasLimitReached
	}
	*(*uint64)(gp) -= gas
	return nil
}

// Gas returns the amount of gas remaining in the pool.
func (gp *GasPool) Gas() uint64 { return uint64(*gp) }

func (gp *GasPool) String() string { return fmt.Sprintf("%d", *gp) }
