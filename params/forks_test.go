// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package params

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToForkOrdering(t *testing.T) {
	c := MainnetChainConfig()

	cases := []struct {
		block *big.Int
		time  uint64
		want  Fork
	}{
		{big.NewInt(0), 0, Frontier},
		{big.NewInt(1_150_000), 0, Homestead},
		{big.NewInt(1_150_001), 0, Homestead},
		{big.NewInt(4_370_000), 0, Byzantium},
		{big.NewInt(12_965_000), 0, London},
		{big.NewInt(15_537_394), 0, Paris},
		{big.NewInt(15_537_394), 1_681_338_455, Shanghai},
		{big.NewInt(99_999_999), 2_000_000_000, Shanghai},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, c.ToFork(tc.block, tc.time), "block=%v time=%d", tc.block, tc.time)
	}
}

func TestConveniencePredicates(t *testing.T) {
	c := MainnetChainConfig()
	require.True(t, c.IsLondon(big.NewInt(12_965_000), 0))
	require.False(t, c.IsLondon(big.NewInt(12_964_999), 0))
	require.True(t, c.IsBerlin(big.NewInt(12_244_000), 0))
	require.True(t, c.IsByzantium(big.NewInt(4_370_000), 0))
	require.False(t, c.IsIstanbul(big.NewInt(9_068_999), 0))
}

func TestAllForksAtGenesis(t *testing.T) {
	c := AllForksAtGenesisChainConfig(1337)
	require.Equal(t, Shanghai, c.ToFork(big.NewInt(0), 0))
	require.Equal(t, Shanghai, c.ToFork(big.NewInt(1_000_000), 1_000))
}

func TestInitialBaseFeeOverride(t *testing.T) {
	c := NewChainConfig(big.NewInt(1))
	require.Equal(t, uint64(1_000_000_000), c.InitialBaseFee())
	c.WithInitialBaseFee(7)
	require.Equal(t, uint64(7), c.InitialBaseFee())
}

func TestForkStringUnknown(t *testing.T) {
	require.Equal(t, "Frontier", Frontier.String())
	require.Equal(t, "Unknown", Fork(999).String())
}
