// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trie

import (
	"github.com/VictoriaMetrics/fastcache"

	"github.com/chainforge/evmcore/kv"
	"github.com/chainforge/evmcore/metrics"
)

// CachingStore wraps a kv.Store with an in-memory fastcache of node
// bytes keyed by their own content hash (§4.2: nodes are addressed by
// their own digest, so a cache entry never needs invalidation — a
// write under a given key always carries the same value). This
// mirrors how go-ethereum-derived clients front their trie node table
// with a hot-node cache to avoid refetching the same nodes from disk
// on every block replay.
type CachingStore struct {
	kv.Store
	cache   *fastcache.Cache
	metrics *metrics.Metrics
}

// NewCachingStore wraps store with a cache of maxBytes capacity. m may
// be nil to skip hit/miss recording.
func NewCachingStore(store kv.Store, maxBytes int, m *metrics.Metrics) *CachingStore {
	return &CachingStore{Store: store, cache: fastcache.New(maxBytes), metrics: m}
}

func (c *CachingStore) Get(key []byte) ([]byte, bool) {
	if v, ok := c.cache.HasGet(nil, key); ok {
		c.metrics.CacheHit()
		return v, true
	}
	c.metrics.CacheMiss()
	v, ok := c.Store.Get(key)
	if ok {
		c.cache.Set(key, v)
	}
	return v, ok
}

func (c *CachingStore) Put(key, value []byte) {
	c.Store.Put(key, value)
	c.cache.Set(key, value)
}

func (c *CachingStore) Delete(key []byte) {
	c.Store.Delete(key)
	c.cache.Del(key)
}

// BeginTransaction returns a Txn that reads and writes through the
// same node cache, so nodes written earlier in a batch (e.g. by an
// earlier block in the same persistBlocks call) are served from
// memory for the rest of the batch.
func (c *CachingStore) BeginTransaction() kv.Txn {
	return &cachingTxn{Txn: c.Store.BeginTransaction(), cache: c.cache, metrics: c.metrics}
}

type cachingTxn struct {
	kv.Txn
	cache   *fastcache.Cache
	metrics *metrics.Metrics
}

func (t *cachingTxn) Get(key []byte) ([]byte, bool) {
	if v, ok := t.cache.HasGet(nil, key); ok {
		t.metrics.CacheHit()
		return v, true
	}
	t.metrics.CacheMiss()
	v, ok := t.Txn.Get(key)
	if ok {
		t.cache.Set(key, v)
	}
	return v, ok
}

func (t *cachingTxn) Put(key, value []byte) {
	t.Txn.Put(key, value)
	t.cache.Set(key, value)
}

func (t *cachingTxn) Delete(key []byte) {
	t.Txn.Delete(key)
	t.cache.Del(key)
}
