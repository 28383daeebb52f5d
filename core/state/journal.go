// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"math/big"

	"github.com/chainforge/evmcore/common"
)

// journalEntry is one reversible modification to a StateDB. Snapshot
// and RevertToSnapshot are implemented purely in terms of replaying
// entries backward, never by copying the whole account set.
type journalEntry interface {
	revert(s *StateDB)
}

// journal records every journalEntry since the StateDB was opened (or
// last committed), in order, so a Snapshot/RevertToSnapshot pair can
// undo any suffix of transaction execution without per-call copying.
type journal struct {
	entries   []journalEntry
	snapshots map[int]int
	nextID    int
}

func newJournal() *journal {
	return &journal{snapshots: make(map[int]int)}
}

func (j *journal) append(e journalEntry) {
	j.entries = append(j.entries, e)
}

func (j *journal) snapshot() int {
	id := j.nextID
	j.nextID++
	j.snapshots[id] = len(j.entries)
	return id
}

func (j *journal) revertToSnapshot(id int, s *StateDB) {
	idx, ok := j.snapshots[id]
	if !ok {
		return
	}
	for i := len(j.entries) - 1; i >= idx; i-- {
		j.entries[i].revert(s)
	}
	j.entries = j.entries[:idx]
	for sid := range j.snapshots {
		if sid >= id {
			delete(j.snapshots, sid)
		}
	}
}

// createObjectChange undoes CreateAccount. prev is the object that
// occupied addr beforehand (nil if none did) — captured by pointer,
// not by value, so it also restores any dirty-but-not-yet-persisted
// state an earlier transaction in the same block already wrote.
type createObjectChange struct {
	addr common.Address
	prev *stateObject
}

func (ch createObjectChange) revert(s *StateDB) {
	if ch.prev == nil {
		delete(s.objects, ch.addr)
	} else {
		s.objects[ch.addr] = ch.prev
	}
}

type balanceChange struct {
	addr common.Address
	prev *big.Int
}

func (ch balanceChange) revert(s *StateDB) {
	s.mustObject(ch.addr).acct.Balance = ch.prev
}

type nonceChange struct {
	addr common.Address
	prev uint64
}

func (ch nonceChange) revert(s *StateDB) {
	s.mustObject(ch.addr).acct.Nonce = ch.prev
}

type codeChange struct {
	addr     common.Address
	prevCode []byte
	prevHash common.Hash
}

func (ch codeChange) revert(s *StateDB) {
	o := s.mustObject(ch.addr)
	o.code = ch.prevCode
	o.acct.CodeHash = ch.prevHash
}

type storageChange struct {
	addr       common.Address
	key        common.Hash
	prev       common.Hash
	prevExists bool
}

func (ch storageChange) revert(s *StateDB) {
	o := s.mustObject(ch.addr)
	if ch.prevExists {
		o.dirtyStorage[ch.key] = ch.prev
	} else {
		delete(o.dirtyStorage, ch.key)
	}
}

type transientStorageChange struct {
	addr common.Address
	key  common.Hash
	prev common.Hash
}

func (ch transientStorageChange) revert(s *StateDB) {
	s.setTransientState(ch.addr, ch.key, ch.prev)
}

type selfDestructChange struct {
	addr        common.Address
	prevDestruct bool
	prevBalance *big.Int
}

func (ch selfDestructChange) revert(s *StateDB) {
	o := s.mustObject(ch.addr)
	o.selfDestructed = ch.prevDestruct
	o.acct.Balance = ch.prevBalance
}

type touchChange struct {
	addr         common.Address
	wasTouched bool
}

func (ch touchChange) revert(s *StateDB) {
	if !ch.wasTouched {
		s.touched.Remove(ch.addr)
	}
}

type accessListAddAddressChange struct {
	addr common.Address
}

func (ch accessListAddAddressChange) revert(s *StateDB) {
	s.accessList.removeAddress(ch.addr)
}

type accessListAddSlotChange struct {
	addr common.Address
	slot common.Hash
}

func (ch accessListAddSlotChange) revert(s *StateDB) {
	s.accessList.removeSlot(ch.addr, ch.slot)
}

type refundChange struct {
	prev uint64
}

func (ch refundChange) revert(s *StateDB) {
	s.refund = ch.prev
}

type logChange struct {
	txHash  common.Hash
	prevLen int
}

func (ch logChange) revert(s *StateDB) {
	logs := s.logs[ch.txHash]
	s.logs[ch.txHash] = logs[:ch.prevLen]
	if ch.prevLen == 0 {
		delete(s.logs, ch.txHash)
	}
}
