// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rlp

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

type innerStruct struct {
	A uint64
	B []byte
}

type outerStruct struct {
	Name    string
	Balance *big.Int
	Items   []innerStruct
	Flag    bool
}

func TestRoundTripScalars(t *testing.T) {
	cases := []interface{}{
		uint64(0), uint64(1), uint64(127), uint64(128), uint64(0xFFFFFFFFFFFFFFFF),
		"", "a", "dog", "a string that is definitely over fifty five bytes long to force a long-string header",
		true, false,
	}
	for _, c := range cases {
		enc, err := EncodeToBytes(c)
		require.NoError(t, err)

		ptr := reflectNewLike(c)
		require.NoError(t, DecodeBytes(enc, ptr))
	}
}

func reflectNewLike(v interface{}) interface{} {
	switch v.(type) {
	case uint64:
		return new(uint64)
	case string:
		return new(string)
	case bool:
		return new(bool)
	default:
		panic("unsupported")
	}
}

func TestRoundTripStruct(t *testing.T) {
	in := outerStruct{
		Name:    "contract",
		Balance: big.NewInt(123456789),
		Items: []innerStruct{
			{A: 1, B: []byte{0xde, 0xad}},
			{A: 300, B: nil},
		},
		Flag: true,
	}
	enc, err := EncodeToBytes(in)
	require.NoError(t, err)

	var out outerStruct
	require.NoError(t, DecodeBytes(enc, &out))
	require.Equal(t, in.Name, out.Name)
	require.Equal(t, 0, in.Balance.Cmp(out.Balance))
	require.Equal(t, in.Flag, out.Flag)
	require.Len(t, out.Items, 2)
	require.Equal(t, uint64(300), out.Items[1].A)
}

func TestEmptyListAndString(t *testing.T) {
	enc, err := EncodeToBytes([]byte{})
	require.NoError(t, err)
	require.Equal(t, []byte{0x80}, enc)

	enc, err = EncodeToBytes([]innerStruct{})
	require.NoError(t, err)
	require.Equal(t, []byte{0xc0}, enc)
}
