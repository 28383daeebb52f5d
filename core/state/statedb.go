// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	lru "github.com/hashicorp/golang-lru"
	"github.com/holiman/uint256"
	"golang.org/x/sync/errgroup"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/core/types"
	"github.com/chainforge/evmcore/core/vm"
	"github.com/chainforge/evmcore/crypto"
	"github.com/chainforge/evmcore/kv"
	"github.com/chainforge/evmcore/rlp"
	"github.com/chainforge/evmcore/trie"
)

// cleanAccountCacheSize bounds the LRU of decoded, unmodified-this-block
// accounts shared across the lifetime of one StateDB, so re-reading a
// hot address (e.g. a DEX router) doesn't re-walk the trie every call.
const cleanAccountCacheSize = 4096

// StateDB is the accounts cache (§4.3): a mutable view over a root Hash
// identifying an accounts trie, presenting the account/storage/log/
// refund/access-list surface core/vm.StateDB requires. It is the sole
// implementation of that interface in this module.
type StateDB struct {
	db       kv.Store
	trie     *trie.Trie
	pruneEmpty bool // post-Spurious-Dragon empty-account reaping (§4.3, §4.4)

	objects map[common.Address]*stateObject
	clean   *lru.Cache // common.Address -> account, read-only snapshot cache

	touched mapset.Set[common.Address]

	journal *journal

	accessList *accessList

	transientStorage map[common.Address]map[common.Hash]common.Hash

	refund uint64

	logs    map[common.Hash][]*types.Log
	logSize uint

	thash       common.Hash
	txIndex     int
	blockHash   common.Hash
	blockNumber uint64
}

// New opens the accounts cache rooted at root (trie.EmptyRoot for a
// fresh chain). pruneEmpty enables EIP-161 empty-account reaping at
// persist and should be true from Spurious Dragon onward.
func New(root common.Hash, db kv.Store, pruneEmpty bool) (*StateDB, error) {
	t, err := trie.New(root, db, true)
	if err != nil {
		return nil, fmt.Errorf("state: opening accounts trie: %w", err)
	}
	clean, err := lru.New(cleanAccountCacheSize)
	if err != nil {
		return nil, fmt.Errorf("state: building clean-account cache: %w", err)
	}
	return &StateDB{
		db:               db,
		trie:             t,
		pruneEmpty:       pruneEmpty,
		objects:          make(map[common.Address]*stateObject),
		clean:            clean,
		touched:          mapset.NewSet[common.Address](),
		journal:          newJournal(),
		accessList:       newAccessList(),
		transientStorage: make(map[common.Address]map[common.Hash]common.Hash),
		logs:             make(map[common.Hash][]*types.Log),
	}, nil
}

// --- account resolution ---

func (s *StateDB) getObject(addr common.Address) *stateObject {
	if o, ok := s.objects[addr]; ok {
		return o
	}
	if cached, ok := s.clean.Get(addr); ok {
		o := newObjectFromAccount(addr, cached.(account))
		s.objects[addr] = o
		return o
	}
	enc, err := s.trie.Get(addr.Bytes())
	if err != nil {
		panic(fmt.Sprintf("state: reading account %s: %v", addr.Hex(), err))
	}
	if len(enc) == 0 {
		return nil
	}
	var a account
	if err := rlp.DecodeBytes(enc, &a); err != nil {
		panic(fmt.Sprintf("state: corrupt account leaf for %s: %v", addr.Hex(), err))
	}
	s.clean.Add(addr, a)
	o := newObjectFromAccount(addr, a)
	s.objects[addr] = o
	return o
}

// mustObject returns the object for addr, lazily instantiating a fresh
// empty one if none exists yet. This never by itself marks the address
// touched or dirty — only an actual mutation does.
func (s *StateDB) mustObject(addr common.Address) *stateObject {
	if o := s.getObject(addr); o != nil {
		return o
	}
	o := newObject(addr)
	s.objects[addr] = o
	return o
}

func (s *StateDB) touch(addr common.Address) {
	if !s.touched.Contains(addr) {
		s.journal.append(touchChange{addr: addr})
		s.touched.Add(addr)
	}
}

// CreateAccount resets addr to a fresh account, preserving any balance
// it already held (EIP-684: value sent to an address before its
// contract is deployed must not be lost).
func (s *StateDB) CreateAccount(addr common.Address) {
	existing := s.getObject(addr)
	s.journal.append(createObjectChange{addr: addr, prev: existing})
	bal := new(big.Int)
	if existing != nil {
		bal = existing.acct.Balance
	}
	o := newObject(addr)
	o.acct.Balance = bal
	s.objects[addr] = o
	s.touch(addr)
}

// --- balance / nonce / code ---

func (s *StateDB) GetBalance(addr common.Address) *uint256.Int {
	o := s.getObject(addr)
	if o == nil {
		return new(uint256.Int)
	}
	u, _ := uint256.FromBig(o.acct.Balance)
	return u
}

func (s *StateDB) setBalance(addr common.Address, amount *big.Int) {
	o := s.mustObject(addr)
	s.journal.append(balanceChange{addr: addr, prev: o.acct.Balance})
	o.acct.Balance = amount
	s.touch(addr)
}

func (s *StateDB) AddBalance(addr common.Address, amount *uint256.Int) {
	if amount.Sign() == 0 {
		s.touch(addr) // even a zero-value transfer touches the recipient (EIP-161)
		return
	}
	o := s.mustObject(addr)
	s.setBalance(addr, new(big.Int).Add(o.acct.Balance, amount.ToBig()))
}

func (s *StateDB) SubBalance(addr common.Address, amount *uint256.Int) {
	if amount.Sign() == 0 {
		return
	}
	o := s.mustObject(addr)
	s.setBalance(addr, new(big.Int).Sub(o.acct.Balance, amount.ToBig()))
}

func (s *StateDB) GetNonce(addr common.Address) uint64 {
	o := s.getObject(addr)
	if o == nil {
		return 0
	}
	return o.acct.Nonce
}

func (s *StateDB) SetNonce(addr common.Address, nonce uint64) {
	o := s.mustObject(addr)
	s.journal.append(nonceChange{addr: addr, prev: o.acct.Nonce})
	o.acct.Nonce = nonce
	s.touch(addr)
}

func (s *StateDB) GetCodeHash(addr common.Address) common.Hash {
	o := s.getObject(addr)
	if o == nil {
		return common.Hash{}
	}
	return o.acct.CodeHash
}

func (s *StateDB) GetCode(addr common.Address) []byte {
	o := s.getObject(addr)
	if o == nil {
		return nil
	}
	return o.loadCode(s.db)
}

func (s *StateDB) GetCodeSize(addr common.Address) int {
	return len(s.GetCode(addr))
}

func (s *StateDB) SetCode(addr common.Address, code []byte) {
	o := s.mustObject(addr)
	s.journal.append(codeChange{addr: addr, prevCode: o.code, prevHash: o.acct.CodeHash})
	o.code = common.CopyBytes(code)
	if len(code) == 0 {
		o.acct.CodeHash = types.EmptyCodeHash
	} else {
		o.acct.CodeHash = common.BytesToHash(crypto.Keccak256(code))
	}
	s.touch(addr)
}

// --- storage ---

func (s *StateDB) GetState(addr common.Address, key common.Hash) common.Hash {
	o := s.getObject(addr)
	if o == nil {
		return common.Hash{}
	}
	v, err := o.getState(s.db, key)
	if err != nil {
		panic(fmt.Sprintf("state: reading %s[%s]: %v", addr.Hex(), key.Hex(), err))
	}
	return v
}

func (s *StateDB) GetCommittedState(addr common.Address, key common.Hash) common.Hash {
	o := s.getObject(addr)
	if o == nil {
		return common.Hash{}
	}
	v, err := o.getCommittedState(s.db, key)
	if err != nil {
		panic(fmt.Sprintf("state: reading committed %s[%s]: %v", addr.Hex(), key.Hex(), err))
	}
	return v
}

func (s *StateDB) SetState(addr common.Address, key, value common.Hash) {
	o := s.mustObject(addr)
	prev, prevExists := o.dirtyStorage[key]
	if !prevExists {
		prev = s.GetCommittedState(addr, key)
	}
	if prev == value {
		return
	}
	s.journal.append(storageChange{addr: addr, key: key, prev: prev, prevExists: prevExists})
	o.dirtyStorage[key] = value
	s.touch(addr)
}

// --- transient storage (EIP-1153) ---

func (s *StateDB) GetTransientState(addr common.Address, key common.Hash) common.Hash {
	return s.transientStorage[addr][key]
}

func (s *StateDB) SetTransientState(addr common.Address, key, value common.Hash) {
	prev := s.transientStorage[addr][key]
	if prev == value {
		return
	}
	s.journal.append(transientStorageChange{addr: addr, key: key, prev: prev})
	s.setTransientState(addr, key, value)
}

func (s *StateDB) setTransientState(addr common.Address, key, value common.Hash) {
	if value == (common.Hash{}) {
		if m, ok := s.transientStorage[addr]; ok {
			delete(m, key)
			if len(m) == 0 {
				delete(s.transientStorage, addr)
			}
		}
		return
	}
	m, ok := s.transientStorage[addr]
	if !ok {
		m = make(map[common.Hash]common.Hash)
		s.transientStorage[addr] = m
	}
	m[key] = value
}

// --- self-destruct ---

func (s *StateDB) SelfDestruct(addr common.Address) {
	o := s.getObject(addr)
	if o == nil {
		return
	}
	s.journal.append(selfDestructChange{addr: addr, prevDestruct: o.selfDestructed, prevBalance: o.acct.Balance})
	o.selfDestructed = true
	o.acct.Balance = new(big.Int)
	s.touch(addr)
}

func (s *StateDB) HasSelfDestructed(addr common.Address) bool {
	o := s.getObject(addr)
	return o != nil && o.selfDestructed
}

// --- existence ---

func (s *StateDB) Exist(addr common.Address) bool {
	return s.getObject(addr) != nil
}

func (s *StateDB) Empty(addr common.Address) bool {
	o := s.getObject(addr)
	return o == nil || o.empty()
}

// --- access list (EIP-2929/2930) ---

func (s *StateDB) AddressInAccessList(addr common.Address) bool {
	return s.accessList.containsAddress(addr)
}

func (s *StateDB) SlotInAccessList(addr common.Address, slot common.Hash) (addrOk, slotOk bool) {
	return s.accessList.containsSlot(addr, slot)
}

func (s *StateDB) AddAddressToAccessList(addr common.Address) {
	if s.accessList.containsAddress(addr) {
		return
	}
	s.journal.append(accessListAddAddressChange{addr: addr})
	s.accessList.addAddress(addr)
}

func (s *StateDB) AddSlotToAccessList(addr common.Address, slot common.Hash) {
	addrOk, slotOk := s.accessList.containsSlot(addr, slot)
	if !addrOk {
		s.journal.append(accessListAddAddressChange{addr: addr})
	}
	if !slotOk {
		s.journal.append(accessListAddSlotChange{addr: addr, slot: slot})
	}
	s.accessList.addSlot(addr, slot)
}

// PrepareAccessList resets the warm sets for a new transaction (EIP-2929),
// pre-warming the sender, destination, precompiles, and any EIP-2930
// access list the transaction itself carries.
func (s *StateDB) PrepareAccessList(sender common.Address, dst *common.Address, precompiles []common.Address, list []vm.AccessTuple) {
	s.accessList = newAccessList()
	s.accessList.addAddress(sender)
	if dst != nil {
		s.accessList.addAddress(*dst)
	}
	for _, p := range precompiles {
		s.accessList.addAddress(p)
	}
	for _, el := range list {
		s.accessList.addAddress(el.Address)
		for _, key := range el.StorageKeys {
			s.accessList.addSlot(el.Address, key)
		}
	}
}

// --- refund ---

func (s *StateDB) AddRefund(gas uint64) {
	s.journal.append(refundChange{prev: s.refund})
	s.refund += gas
}

func (s *StateDB) SubRefund(gas uint64) {
	s.journal.append(refundChange{prev: s.refund})
	if gas > s.refund {
		panic(fmt.Sprintf("state: refund underflow: have %d, sub %d", s.refund, gas))
	}
	s.refund -= gas
}

func (s *StateDB) GetRefund() uint64 { return s.refund }

// --- logs ---

func (s *StateDB) AddLog(l *vm.Log) {
	s.journal.append(logChange{txHash: s.thash, prevLen: len(s.logs[s.thash])})
	log := &types.Log{
		Address:     l.Address,
		Topics:      l.Topics,
		Data:        l.Data,
		BlockNumber: s.blockNumber,
		TxHash:      s.thash,
		TxIndex:     uint(s.txIndex),
		BlockHash:   s.blockHash,
		Index:       s.logSize,
	}
	s.logs[s.thash] = append(s.logs[s.thash], log)
	s.logSize++
}

// GetLogs returns every log emitted by transaction txHash, stamped with
// its position in the block. blockHash/blockNumber are passed in rather
// than read from SetTxContext because callers (the block executor) only
// know the final block hash once every transaction has run.
func (s *StateDB) GetLogs(txHash common.Hash, blockNumber uint64, blockHash common.Hash) []*types.Log {
	logs := s.logs[txHash]
	for _, l := range logs {
		l.BlockNumber = blockNumber
		l.BlockHash = blockHash
	}
	return logs
}

// SetTxContext must be called before executing each transaction so its
// logs are recorded under the right tx hash and index.
func (s *StateDB) SetTxContext(txHash common.Hash, txIndex int) {
	s.thash = txHash
	s.txIndex = txIndex
}

// SetBlockContext records the block currently being processed, used to
// stamp logs. Empty-account reaping at persist is decided by the
// pruneEmpty flag given to New, not by this call.
func (s *StateDB) SetBlockContext(blockHash common.Hash, blockNumber uint64) {
	s.blockHash = blockHash
	s.blockNumber = blockNumber
}

// --- snapshot / revert ---

func (s *StateDB) Snapshot() int {
	return s.journal.snapshot()
}

func (s *StateDB) RevertToSnapshot(id int) {
	s.journal.revertToSnapshot(id, s)
}

// --- persist ---

// Commit flushes every touched account into the accounts trie and
// returns the resulting root, for callers outside this package (the
// block executor, §4.8 step 7) that need the post-block state root to
// compare against a header's declared one.
func (s *StateDB) Commit() (common.Hash, error) {
	return s.persist()
}

// persist flushes every touched account (and its dirty storage, if any)
// into the accounts trie, reaping empty accounts when pruneEmpty is
// set (§4.4 Spurious Dragon / EIP-161), and returns the new root. Dirty
// storage tries are committed concurrently since they share nothing
// but the underlying KV store, which is already safe for concurrent use.
func (s *StateDB) persist() (common.Hash, error) {
	addrs := s.touched.ToSlice()
	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i].Bytes(), addrs[j].Bytes()) < 0
	})

	var g errgroup.Group
	for _, addr := range addrs {
		o, ok := s.objects[addr]
		if !ok || len(o.dirtyStorage) == 0 {
			continue
		}
		o := o
		g.Go(func() error { return s.commitStorage(o) })
	}
	if err := g.Wait(); err != nil {
		return common.Hash{}, err
	}

	for _, addr := range addrs {
		o, ok := s.objects[addr]
		if !ok {
			continue
		}
		if o.selfDestructed || (s.pruneEmpty && o.empty()) {
			if err := s.trie.Delete(addr.Bytes()); err != nil {
				return common.Hash{}, err
			}
			s.clean.Remove(addr)
			continue
		}
		if len(o.code) > 0 {
			s.db.Put(codeKey(o.acct.CodeHash), o.code)
		}
		enc, err := rlp.EncodeToBytes(o.acct)
		if err != nil {
			return common.Hash{}, fmt.Errorf("state: encoding account %s: %w", addr.Hex(), err)
		}
		if err := s.trie.Put(addr.Bytes(), enc); err != nil {
			return common.Hash{}, err
		}
		s.clean.Add(addr, o.acct)
	}

	s.touched = mapset.NewSet[common.Address]()
	s.journal = newJournal()
	return s.trie.RootHash(), nil
}

func (s *StateDB) commitStorage(o *stateObject) error {
	if err := o.openStorageTrie(s.db); err != nil {
		return err
	}
	for key, value := range o.dirtyStorage {
		var err error
		if value == (common.Hash{}) {
			err = o.storageTrie.Delete(key[:])
		} else {
			err = o.storageTrie.Put(key[:], value[:])
		}
		if err != nil {
			return fmt.Errorf("state: writing %s[%s]: %w", o.address.Hex(), key.Hex(), err)
		}
		o.originStorage[key] = value
	}
	o.dirtyStorage = make(map[common.Hash]common.Hash)
	o.acct.Root = o.storageTrie.RootHash()
	return nil
}
