// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainforge/evmcore/rlp"
)

func baseHeader() *Header {
	return &Header{
		Difficulty: big.NewInt(0),
		Number:     big.NewInt(100),
		GasLimit:   8_000_000,
		GasUsed:    21_000,
		Time:       1_700_000_000,
		Extra:      []byte("test"),
	}
}

func TestHeaderRLPRoundTripPreLondon(t *testing.T) {
	h := baseHeader()
	enc, err := h.EncodeRLP()
	require.NoError(t, err)

	var got Header
	require.NoError(t, rlp.DecodeBytes(enc, &got))
	require.Nil(t, got.BaseFee)
	require.Equal(t, h.Number, got.Number)
	require.Equal(t, h.GasUsed, got.GasUsed)
}

func TestHeaderRLPRoundTripLondon(t *testing.T) {
	h := baseHeader()
	h.BaseFee = big.NewInt(1_000_000_000)
	enc, err := h.EncodeRLP()
	require.NoError(t, err)

	var got Header
	require.NoError(t, rlp.DecodeBytes(enc, &got))
	require.NotNil(t, got.BaseFee)
	require.Equal(t, h.BaseFee, got.BaseFee)
}

func TestHeaderHashDiffersWithBaseFee(t *testing.T) {
	h1 := baseHeader()
	h2 := baseHeader()
	h2.BaseFee = big.NewInt(7)
	require.NotEqual(t, h1.Hash(), h2.Hash())
}
