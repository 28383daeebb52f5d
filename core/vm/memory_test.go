// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestMemoryResizeAndSet(t *testing.T) {
	m := NewMemory()
	m.Resize(toWordSize(10) * 32)
	m.Set(0, 3, []byte{1, 2, 3})
	require.Equal(t, []byte{1, 2, 3}, m.GetCopy(0, 3))
	require.Equal(t, uint64(32), uint64(m.Len()))
}

func TestMemorySet32(t *testing.T) {
	m := NewMemory()
	m.Resize(32)
	v := uint256.NewInt(0xdeadbeef)
	m.Set32(0, v)
	got := m.GetCopy(0, 32)
	require.Equal(t, byte(0xde), got[28])
	require.Equal(t, byte(0xef), got[31])
}

func TestMemoryGetPtrAliases(t *testing.T) {
	m := NewMemory()
	m.Resize(32)
	m.Set(0, 4, []byte{9, 9, 9, 9})
	ptr := m.GetPtr(0, 4)
	ptr[0] = 1
	require.Equal(t, byte(1), m.GetPtr(0, 1)[0])
}

func TestToWordSize(t *testing.T) {
	require.Equal(t, uint64(0), toWordSize(0))
	require.Equal(t, uint64(1), toWordSize(1))
	require.Equal(t, uint64(1), toWordSize(32))
	require.Equal(t, uint64(2), toWordSize(33))
}
