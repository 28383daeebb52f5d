// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trie

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainforge/evmcore/kv"
	"github.com/chainforge/evmcore/metrics"
)

func TestCachingStoreHitsAfterPut(t *testing.T) {
	m := metrics.New()
	store := NewCachingStore(kv.NewMemStore(), 1<<20, m)

	store.Put([]byte("k"), []byte("v"))
	v, ok := store.Get([]byte("k"))
	require.True(t, ok)
	require.Equal(t, "v", string(v))

	// Put populates the cache, so this Get is served without touching
	// the backing store; a key absent from both reports a miss.
	_, ok = store.Get([]byte("missing"))
	require.False(t, ok)
}

func TestCachingStoreThroughTransaction(t *testing.T) {
	m := metrics.New()
	store := NewCachingStore(kv.NewMemStore(), 1<<20, m)

	txn := store.BeginTransaction()
	txn.Put([]byte("k"), []byte("v1"))
	v, ok := txn.Get([]byte("k"))
	require.True(t, ok)
	require.Equal(t, "v1", string(v))
	require.NoError(t, txn.Commit())

	v, ok = store.Get([]byte("k"))
	require.True(t, ok)
	require.Equal(t, "v1", string(v))
}

func TestCachingStoreWorksWithNilMetrics(t *testing.T) {
	store := NewCachingStore(kv.NewMemStore(), 1<<20, nil)
	require.NotPanics(t, func() {
		store.Put([]byte("k"), []byte("v"))
		store.Get([]byte("k"))
		store.Get([]byte("missing"))
	})
}
