// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"fmt"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/core/types"
	"github.com/chainforge/evmcore/kv"
	"github.com/chainforge/evmcore/trie"
)

// stateObject is the accounts-cache entry for one address: the decoded
// account leaf plus whatever storage trie and code it owns. Nothing
// here is written back to the KV store until StateDB.persist commits
// it; until then, every read and write is served out of these maps.
type stateObject struct {
	address common.Address
	acct    account

	code []byte // nil until loaded or set; empty-slice means "known to have no code"

	storageTrie   *trie.Trie
	originStorage map[common.Hash]common.Hash // slots read from the trie this block
	dirtyStorage  map[common.Hash]common.Hash // pending writes since last persist

	selfDestructed bool
}

func newObject(addr common.Address) *stateObject {
	return &stateObject{
		address:       addr,
		acct:          emptyAccount(),
		originStorage: make(map[common.Hash]common.Hash),
		dirtyStorage:  make(map[common.Hash]common.Hash),
	}
}

func newObjectFromAccount(addr common.Address, acct account) *stateObject {
	return &stateObject{
		address:       addr,
		acct:          acct,
		originStorage: make(map[common.Hash]common.Hash),
		dirtyStorage:  make(map[common.Hash]common.Hash),
	}
}

func (o *stateObject) empty() bool {
	return o.acct.isEmpty()
}

// openStorageTrie lazily resolves the account's storage trie from its
// current Root. Called on first storage read or write.
func (o *stateObject) openStorageTrie(db kv.Store) error {
	if o.storageTrie != nil {
		return nil
	}
	t, err := trie.New(o.acct.Root, db, true)
	if err != nil {
		return fmt.Errorf("state: opening storage trie for %s: %w", o.address.Hex(), err)
	}
	o.storageTrie = t
	return nil
}

// getState resolves a slot: dirty overlay first, then the per-block
// read cache, then the storage trie itself (absent ≡ zero, §3).
func (o *stateObject) getState(db kv.Store, key common.Hash) (common.Hash, error) {
	if v, ok := o.dirtyStorage[key]; ok {
		return v, nil
	}
	return o.getCommittedState(db, key)
}

func (o *stateObject) getCommittedState(db kv.Store, key common.Hash) (common.Hash, error) {
	if v, ok := o.originStorage[key]; ok {
		return v, nil
	}
	if err := o.openStorageTrie(db); err != nil {
		return common.Hash{}, err
	}
	enc, err := o.storageTrie.Get(key[:])
	if err != nil {
		return common.Hash{}, err
	}
	v := common.BytesToHash(enc)
	o.originStorage[key] = v
	return v, nil
}

// loadCode resolves the account's bytecode from the KV store, keyed by
// its code hash (§6: code is content-addressed, shared across accounts
// with identical bytecode).
func (o *stateObject) loadCode(db kv.Store) []byte {
	if o.code != nil {
		return o.code
	}
	if o.acct.CodeHash == types.EmptyCodeHash {
		o.code = []byte{}
		return o.code
	}
	enc, ok := db.Get(codeKey(o.acct.CodeHash))
	if !ok {
		o.code = []byte{}
		return o.code
	}
	o.code = enc
	return o.code
}

// codeKey namespaces contract code in the shared KV store so it can
// never collide with a trie node keyed by the same digest.
func codeKey(hash common.Hash) []byte {
	return append([]byte("c"), hash[:]...)
}
