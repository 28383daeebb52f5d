// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTxnCommitDurable(t *testing.T) {
	s := NewMemStore()
	txn := s.BeginTransaction()
	txn.Put([]byte("a"), []byte("1"))
	_, ok := s.Get([]byte("a"))
	require.False(t, ok, "uncommitted write must not be visible on the parent store")

	v, ok := txn.Get([]byte("a"))
	require.True(t, ok)
	require.Equal(t, []byte("1"), v)

	require.NoError(t, txn.Commit())
	v, ok = s.Get([]byte("a"))
	require.True(t, ok)
	require.Equal(t, []byte("1"), v)
}

func TestTxnDisposeDiscards(t *testing.T) {
	s := NewMemStore()
	s.Put([]byte("a"), []byte("1"))

	txn := s.BeginTransaction()
	txn.Put([]byte("a"), []byte("2"))
	txn.Delete([]byte("a"))
	txn.Dispose()

	v, ok := s.Get([]byte("a"))
	require.True(t, ok)
	require.Equal(t, []byte("1"), v)
}

func TestTxnObservesUncommittedWrites(t *testing.T) {
	s := NewMemStore()
	txn := s.BeginTransaction()
	txn.Put([]byte("x"), []byte("y"))
	v, ok := txn.Get([]byte("x"))
	require.True(t, ok)
	require.Equal(t, []byte("y"), v)
}

func TestDeleteThenGet(t *testing.T) {
	s := NewMemStore()
	s.Put([]byte("k"), []byte("v"))
	s.Delete([]byte("k"))
	_, ok := s.Get([]byte("k"))
	require.False(t, ok)
}
