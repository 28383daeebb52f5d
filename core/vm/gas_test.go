// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryGasCostZero(t *testing.T) {
	require.Equal(t, uint64(0), memoryGasCost(0))
}

func TestMemoryGasCostOneWord(t *testing.T) {
	// 32 bytes = 1 word: 3*1 + 1*1/512 = 3
	require.Equal(t, uint64(3), memoryGasCost(32))
}

func TestMemoryGasCostQuadratic(t *testing.T) {
	// 1024 words: 3*1024 + 1024*1024/512 = 3072 + 2048 = 5120
	require.Equal(t, uint64(5120), memoryGasCost(1024*32))
}

func TestMemoryExpansionGasIncremental(t *testing.T) {
	require.Equal(t, uint64(0), memoryExpansionGas(64, 32))
	require.Equal(t, uint64(0), memoryExpansionGas(64, 64))
	full := memoryGasCost(96)
	prev := memoryGasCost(64)
	require.Equal(t, full-prev, memoryExpansionGas(64, 96))
}

func TestGasMeterUseGas(t *testing.T) {
	refund := new(uint64)
	m := NewGasMeter(100, refund)
	require.NoError(t, m.UseGas(40))
	require.Equal(t, uint64(60), m.Gas())
	require.ErrorIs(t, m.UseGas(1000), ErrOutOfGas)
}

func TestGasMeterSharedRefund(t *testing.T) {
	refund := new(uint64)
	outer := NewGasMeter(1000, refund)
	inner := NewGasMeter(500, refund)
	outer.RefundGas(100)
	inner.RefundGas(50)
	require.Equal(t, uint64(150), outer.RefundCounter())
	require.Equal(t, uint64(150), inner.RefundCounter())

	inner.RemoveRefund(30)
	require.Equal(t, uint64(120), outer.RefundCounter())

	inner.RemoveRefund(10000)
	require.Equal(t, uint64(0), outer.RefundCounter())
}

func TestCappedRefund(t *testing.T) {
	require.Equal(t, uint64(10), CappedRefund(100, RefundQuotientLondon, 10))
	require.Equal(t, uint64(50), CappedRefund(100, RefundQuotientLondon, 1000))
	require.Equal(t, uint64(20), CappedRefund(100, RefundQuotientFrontier, 1000))
}
