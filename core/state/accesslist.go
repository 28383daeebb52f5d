// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/chainforge/evmcore/common"
)

// accessList tracks the EIP-2929/2930 warm address and storage-slot
// sets for the transaction currently executing. It is rebuilt fresh by
// StateDB.PrepareAccessList at the start of every transaction.
type accessList struct {
	addresses mapset.Set[common.Address]
	slots     map[common.Address]mapset.Set[common.Hash]
}

func newAccessList() *accessList {
	return &accessList{
		addresses: mapset.NewSet[common.Address](),
		slots:     make(map[common.Address]mapset.Set[common.Hash]),
	}
}

func (al *accessList) containsAddress(addr common.Address) bool {
	return al.addresses.Contains(addr)
}

func (al *accessList) containsSlot(addr common.Address, slot common.Hash) (addrOk, slotOk bool) {
	addrOk = al.containsAddress(addr)
	if set, ok := al.slots[addr]; ok {
		slotOk = set.Contains(slot)
	}
	return addrOk, slotOk
}

func (al *accessList) addAddress(addr common.Address) {
	al.addresses.Add(addr)
}

func (al *accessList) addSlot(addr common.Address, slot common.Hash) {
	al.addresses.Add(addr)
	set, ok := al.slots[addr]
	if !ok {
		set = mapset.NewSet[common.Hash]()
		al.slots[addr] = set
	}
	set.Add(slot)
}

func (al *accessList) removeAddress(addr common.Address) {
	al.addresses.Remove(addr)
}

func (al *accessList) removeSlot(addr common.Address, slot common.Hash) {
	if set, ok := al.slots[addr]; ok {
		set.Remove(slot)
		if set.Cardinality() == 0 {
			delete(al.slots, addr)
		}
	}
}
