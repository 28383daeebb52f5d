// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import "math"

// Gas cost constants for EIP-2929 access lists, EIP-3529 reduced
// refunds, and general opcode pricing (§4.5).
const (
	GasQuickStep   uint64 = 2
	GasFastestStep uint64 = 3
	GasFastStep    uint64 = 5
	GasMidStep     uint64 = 8
	GasSlowStep    uint64 = 10
	GasExtStep     uint64 = 20

	ColdAccountAccessCost uint64 = 2600
	ColdSloadCost         uint64 = 2100
	WarmStorageReadCost   uint64 = 100

	SstoreSetGas     uint64 = 20000
	SstoreResetGas   uint64 = 5000 // 5000 - ColdSloadCost paid separately
	SstoreClearsRefund uint64 = SstoreResetGas - ColdSloadCost + TxAccessListStorageKeyGasRefund

	// TxAccessListStorageKeyGasRefund mirrors params.TxAccessListStorageKeyGas
	// without importing params, to keep the gas table self-contained.
	TxAccessListStorageKeyGasRefund uint64 = 1900

	MemoryGasCostPerWord uint64 = 3

	LogGas           uint64 = 375
	LogDataGas       uint64 = 8
	LogTopicGas      uint64 = 375
	Keccak256Gas     uint64 = 30
	Keccak256WordGas uint64 = 6
	CopyGas          uint64 = 3

	CreateGas               uint64 = 32000
	CreateDataGas            uint64 = 200
	CreateBySelfdestructGas  uint64 = 25000
	SelfdestructGas          uint64 = 5000
	SelfdestructRefundGas    uint64 = 24000 // pre-London only

	CallGasFraction      uint64 = 64
	CallValueTransferGas uint64 = 9000
	CallNewAccountGas    uint64 = 25000
	CallStipendGas       uint64 = 2300

	JumpdestGas uint64 = 1
	ExpGas      uint64 = 10
	ExpByteGasFrontier uint64 = 10
	ExpByteGasEIP158   uint64 = 50

	// RefundQuotientLondon and RefundQuotientFrontier mirror the
	// params package constants of the same purpose; duplicated here so
	// gas accounting has no import-cycle dependency on params for pure
	// numeric constants shared with the fork schedule.
	RefundQuotientFrontier uint64 = 5
	RefundQuotientLondon   uint64 = 2
)

// memoryGasCost returns the total (non-incremental) memory gas cost
// for a memory region of memSize bytes: 3*words + words^2/512 (§4.5).
// Returns math.MaxUint64 on overflow, which the caller must treat as
// out-of-gas.
func memoryGasCost(memSize uint64) uint64 {
	if memSize == 0 {
		return 0
	}
	words := toWordSize(memSize)
	// words*words overflows uint64 once words exceeds ~4.29e9; no real
	// block gas limit reaches memory sizes anywhere near that, so treat
	// it as an unconditional out-of-gas.
	if words > 4_000_000_000 {
		return math.MaxUint64
	}
	linear := words * MemoryGasCostPerWord
	quadratic := (words * words) / 512
	return linear + quadratic
}

// memoryExpansionGas returns the incremental gas cost of growing
// memory from oldSize to newSize bytes (both already word-rounded by
// the caller, or raw byte offsets — memoryGasCost rounds internally).
func memoryExpansionGas(oldSize, newSize uint64) uint64 {
	if newSize <= oldSize {
		return 0
	}
	newCost := memoryGasCost(newSize)
	oldCost := memoryGasCost(oldSize)
	if newCost == math.MaxUint64 {
		return math.MaxUint64
	}
	return newCost - oldCost
}

// GasMeter tracks remaining gas within a single call frame and the
// refund counter accumulated across the whole transaction (§4.6: the
// refund counter is transaction-scoped, not frame-scoped).
type GasMeter struct {
	gas    uint64
	refund *uint64 // shared pointer: all frames of one tx share one counter
}

// NewGasMeter creates a meter for a frame with the given gas
// allotment, sharing refund with the rest of the transaction.
func NewGasMeter(gas uint64, refund *uint64) *GasMeter {
	return &GasMeter{gas: gas, refund: refund}
}

// Gas returns the gas currently remaining in this frame.
func (g *GasMeter) Gas() uint64 { return g.gas }

// UseGas deducts cost from the frame's remaining gas, returning
// ErrOutOfGas if cost exceeds what remains.
func (g *GasMeter) UseGas(cost uint64) error {
	if g.gas < cost {
		return ErrOutOfGas
	}
	g.gas -= cost
	return nil
}

// giveGas returns unused gas from a finished child frame to its
// parent's meter (ordinary gas accounting, distinct from the EIP-2200
// refund counter tracked via RefundGas/RemoveRefund).
func (g *GasMeter) giveGas(amount uint64) { g.gas += amount }

// RefundGas adds to the shared transaction-wide refund counter.
func (g *GasMeter) RefundGas(amount uint64) { *g.refund += amount }

// RemoveRefund subtracts from the refund counter (EIP-2200 SSTORE
// reversal: setting a slot back to its original non-zero value after
// having earned a refund for clearing it must claw the refund back).
func (g *GasMeter) RemoveRefund(amount uint64) {
	if *g.refund < amount {
		*g.refund = 0
		return
	}
	*g.refund -= amount
}

// RefundCounter returns the current transaction-wide refund total.
func (g *GasMeter) RefundCounter() uint64 { return *g.refund }

// CappedRefund returns the refund actually applied to gasUsed, capped
// at gasUsed/quotient per the active fork's EIP-3529/pre-3529 rule.
func CappedRefund(gasUsed, quotient, refund uint64) uint64 {
	ceiling := gasUsed / quotient
	if refund > ceiling {
		return ceiling
	}
	return refund
}
