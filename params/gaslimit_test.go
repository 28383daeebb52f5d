// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package params

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateGasLimitWithinBounds(t *testing.T) {
	require.True(t, ValidateGasLimit(10_000_000, 10_009_000, false))
	require.True(t, ValidateGasLimit(10_000_000, 9_991_000, false))
	require.False(t, ValidateGasLimit(10_000_000, 10_010_000, false))
	require.False(t, ValidateGasLimit(10_000_000, 0, false))
	require.False(t, ValidateGasLimit(MinGasLimit, MinGasLimit-1, false))
}

func TestValidateGasLimitLondonTransitionDoublesBound(t *testing.T) {
	// The first London block may see its effective limit computed
	// against parent*2 (EIP-1559 elasticity headroom).
	require.True(t, ValidateGasLimit(10_000_000, 19_990_000, true))
	require.False(t, ValidateGasLimit(10_000_000, 19_990_000, false))
}

func TestCalcBaseFeeStaysFlatAtTarget(t *testing.T) {
	parentBaseFee := big.NewInt(1_000_000_000)
	got := CalcBaseFee(20_000_000, 10_000_000, parentBaseFee)
	require.Equal(t, parentBaseFee, got)
}

func TestCalcBaseFeeRisesWhenBlockFull(t *testing.T) {
	parentBaseFee := big.NewInt(1_000_000_000)
	got := CalcBaseFee(20_000_000, 20_000_000, parentBaseFee)
	require.Equal(t, big.NewInt(1_125_000_000), got)
}

func TestCalcBaseFeeFallsWhenBlockEmpty(t *testing.T) {
	parentBaseFee := big.NewInt(1_000_000_000)
	got := CalcBaseFee(20_000_000, 0, parentBaseFee)
	require.Equal(t, big.NewInt(875_000_000), got)
}

func TestCalcBaseFeeNeverNegative(t *testing.T) {
	got := CalcBaseFee(20_000_000, 0, big.NewInt(1))
	require.GreaterOrEqual(t, got.Sign(), 0)
}
