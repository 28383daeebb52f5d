// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trie

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/kv"
)

func TestEmptyTrieRoot(t *testing.T) {
	tr, err := New(common.Hash{}, kv.NewMemStore(), false)
	require.NoError(t, err)
	require.Equal(t, EmptyRoot, tr.RootHash())
}

func TestPutGetRoundTrip(t *testing.T) {
	store := kv.NewMemStore()
	tr, err := New(EmptyRoot, store, false)
	require.NoError(t, err)

	entries := map[string]string{
		"doe":   "reindeer",
		"dog":   "puppy",
		"dogglesworth": "cat",
	}
	for k, v := range entries {
		require.NoError(t, tr.Put([]byte(k), []byte(v)))
	}
	for k, v := range entries {
		got, err := tr.Get([]byte(k))
		require.NoError(t, err)
		require.Equal(t, v, string(got))
	}
}

func TestRootIndependentOfInsertionOrder(t *testing.T) {
	entries := [][2]string{
		{"a", "1"}, {"ab", "2"}, {"abc", "3"}, {"b", "4"}, {"very-long-key-value-abcdef", "5"},
	}
	rootFor := func(order []int) common.Hash {
		store := kv.NewMemStore()
		tr, err := New(EmptyRoot, store, true)
		require.NoError(t, err)
		for _, i := range order {
			require.NoError(t, tr.Put([]byte(entries[i][0]), []byte(entries[i][1])))
		}
		return tr.RootHash()
	}
	order1 := []int{0, 1, 2, 3, 4}
	order2 := []int{4, 3, 2, 1, 0}
	require.Equal(t, rootFor(order1), rootFor(order2))
}

func TestDeleteRestoresRoot(t *testing.T) {
	store := kv.NewMemStore()
	tr, err := New(EmptyRoot, store, true)
	require.NoError(t, err)
	require.NoError(t, tr.Put([]byte("alpha"), []byte("1")))
	rootAfterFirst := tr.RootHash()
	require.NoError(t, tr.Put([]byte("beta"), []byte("2")))
	require.NoError(t, tr.Delete([]byte("beta")))
	require.Equal(t, rootAfterFirst, tr.RootHash())
}

func TestRandomPutGet(t *testing.T) {
	store := kv.NewMemStore()
	tr, err := New(EmptyRoot, store, true)
	require.NoError(t, err)
	r := rand.New(rand.NewSource(1))
	keys := make([][]byte, 200)
	for i := range keys {
		k := []byte(fmt.Sprintf("key-%d-%d", i, r.Intn(1_000_000)))
		keys[i] = k
		require.NoError(t, tr.Put(k, []byte(fmt.Sprintf("value-%d", i))))
	}
	for i, k := range keys {
		got, err := tr.Get(k)
		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("value-%d", i), string(got))
	}
}

func TestReopenAfterCommit(t *testing.T) {
	store := kv.NewMemStore()
	tr, err := New(EmptyRoot, store, true)
	require.NoError(t, err)
	require.NoError(t, tr.Put([]byte("k1"), []byte("v1")))
	require.NoError(t, tr.Put([]byte("k2"), []byte("v2")))
	root := tr.RootHash()

	reopened, err := New(root, store, true)
	require.NoError(t, err)
	v, err := reopened.Get([]byte("k1"))
	require.NoError(t, err)
	require.Equal(t, "v1", string(v))
}
