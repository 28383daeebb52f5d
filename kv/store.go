// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package kv implements the byte-addressed persistent map the rest of
// the execution core is built on (trie nodes, canonical chain index,
// headers/bodies/receipts). It is intentionally the only mutable
// shared resource in the whole core: the accounts cache and the trie
// package never touch storage except through a Store/Txn obtained
// from here.
package kv

import (
	"bytes"
	"sort"
	"sync"
)

// Store is a byte-keyed persistent map.
type Store interface {
	Get(key []byte) ([]byte, bool)
	Put(key, value []byte)
	Delete(key []byte)
	BeginTransaction() Txn
}

// Txn is a scoped-acquisition transaction over a Store. Reads observe
// both the committed store and this transaction's own buffered
// writes. Dispose without Commit discards every buffered write;
// Commit is durable and idempotent once called.
type Txn interface {
	Store
	Commit() error
	Dispose()
}

// MemStore is an in-memory Store, used both for tests and as the
// reference backing for the trie node table (§4.1, §4.2). It is safe
// for concurrent use.
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (m *MemStore) Get(key []byte) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, false
	}
	return append([]byte{}, v...), true
}

func (m *MemStore) Put(key, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(key)] = append([]byte{}, value...)
}

func (m *MemStore) Delete(key []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
}

// BeginTransaction returns a Txn buffering writes against m until
// Commit is called.
func (m *MemStore) BeginTransaction() Txn {
	return &memTxn{
		parent:  m,
		writes:  make(map[string][]byte),
		deletes: make(map[string]bool),
	}
}

// Keys returns a sorted snapshot of every key currently in the store,
// used by tests that want a deterministic iteration order.
func (m *MemStore) Keys() [][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([][]byte, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, []byte(k))
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })
	return keys
}

type memTxn struct {
	parent  *MemStore
	writes  map[string][]byte
	deletes map[string]bool
	done    bool
}

func (t *memTxn) Get(key []byte) ([]byte, bool) {
	k := string(key)
	if t.deletes[k] {
		return nil, false
	}
	if v, ok := t.writes[k]; ok {
		return append([]byte{}, v...), true
	}
	return t.parent.Get(key)
}

func (t *memTxn) Put(key, value []byte) {
	k := string(key)
	delete(t.deletes, k)
	t.writes[k] = append([]byte{}, value...)
}

func (t *memTxn) Delete(key []byte) {
	k := string(key)
	delete(t.writes, k)
	t.deletes[k] = true
}

// BeginTransaction on a Txn returns a nested view; the core never
// requires this (§4.1: "nested transactions are not required") but it
// is safe: it behaves as an independent buffer layered on top.
func (t *memTxn) BeginTransaction() Txn {
	return &memTxn{parent: &MemStore{data: t.snapshot()}, writes: make(map[string][]byte), deletes: make(map[string]bool)}
}

func (t *memTxn) snapshot() map[string][]byte {
	out := make(map[string][]byte)
	t.parent.mu.RLock()
	for k, v := range t.parent.data {
		out[k] = v
	}
	t.parent.mu.RUnlock()
	for k := range t.deletes {
		delete(out, k)
	}
	for k, v := range t.writes {
		out[k] = v
	}
	return out
}

// Commit flushes every buffered write/delete into the parent store.
// Calling Commit more than once, or after Dispose, is a no-op.
func (t *memTxn) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()
	for k := range t.deletes {
		delete(t.parent.data, k)
	}
	for k, v := range t.writes {
		t.parent.data[k] = v
	}
	return nil
}

// Dispose discards every buffered write without touching the parent
// store. Safe to call after Commit (no-op) or multiple times.
func (t *memTxn) Dispose() {
	if t.done {
		return
	}
	t.done = true
	t.writes = nil
	t.deletes = nil
}
