// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/chainforge/evmcore/params"
)

func TestStackPushPop(t *testing.T) {
	st := NewStack()
	defer ReturnStack(st)

	require.NoError(t, st.Push(uint256.NewInt(1)))
	require.NoError(t, st.Push(uint256.NewInt(2)))
	require.Equal(t, 2, st.Len())

	top := st.Pop()
	require.Equal(t, uint64(2), top.Uint64())
	require.Equal(t, 1, st.Len())
}

func TestStackOverflow(t *testing.T) {
	st := NewStack()
	defer ReturnStack(st)
	for i := 0; i < params.StackLimit; i++ {
		require.NoError(t, st.Push(uint256.NewInt(uint64(i))))
	}
	require.ErrorIs(t, st.Push(uint256.NewInt(1)), ErrStackOverflow)
}

func TestStackSwapAndDup(t *testing.T) {
	st := NewStack()
	defer ReturnStack(st)
	require.NoError(t, st.Push(uint256.NewInt(1)))
	require.NoError(t, st.Push(uint256.NewInt(2)))
	require.NoError(t, st.Push(uint256.NewInt(3)))

	st.Swap(2) // swap top (3) with 3rd from top (1)
	require.Equal(t, uint64(1), st.Peek().Uint64())
	require.Equal(t, uint64(3), st.Back(2).Uint64())

	st.Dup(1) // duplicate current top (1)
	require.Equal(t, 4, st.Len())
	require.Equal(t, uint64(1), st.Peek().Uint64())
}

func TestStackBack(t *testing.T) {
	st := NewStack()
	defer ReturnStack(st)
	require.NoError(t, st.Push(uint256.NewInt(10)))
	require.NoError(t, st.Push(uint256.NewInt(20)))
	require.Equal(t, uint64(20), st.Back(0).Uint64())
	require.Equal(t, uint64(10), st.Back(1).Uint64())
}
