// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/core/vm"
	"github.com/chainforge/evmcore/kv"
	"github.com/chainforge/evmcore/trie"
)

func TestBalanceNonceCodeRoundTripThroughPersist(t *testing.T) {
	db := kv.NewMemStore()
	s, err := New(trie.EmptyRoot, db, true)
	require.NoError(t, err)

	addr := common.HexToAddress("0x0000000000000000000000000000000000cafe")
	s.AddBalance(addr, uint256.NewInt(100))
	s.SetNonce(addr, 3)
	s.SetCode(addr, []byte{0x60, 0x00, 0x60, 0x00})

	root, err := s.persist()
	require.NoError(t, err)
	require.NotEqual(t, trie.EmptyRoot, root)

	reopened, err := New(root, db, true)
	require.NoError(t, err)
	require.Equal(t, uint64(100), reopened.GetBalance(addr).Uint64())
	require.Equal(t, uint64(3), reopened.GetNonce(addr))
	require.Equal(t, []byte{0x60, 0x00, 0x60, 0x00}, reopened.GetCode(addr))
}

func TestStorageRoundTripThroughPersist(t *testing.T) {
	db := kv.NewMemStore()
	s, err := New(trie.EmptyRoot, db, true)
	require.NoError(t, err)

	addr := common.HexToAddress("0x0000000000000000000000000000000000beef")
	s.SetCode(addr, []byte{0x60, 0x01}) // a real account would need code to reach SSTORE at all
	key := common.HexToHash("0x01")
	val := common.HexToHash("0x2a")
	s.SetState(addr, key, val)
	require.Equal(t, val, s.GetState(addr, key), "dirty write must read back before persist")

	root, err := s.persist()
	require.NoError(t, err)

	reopened, err := New(root, db, true)
	require.NoError(t, err)
	require.Equal(t, val, reopened.GetState(addr, key))

	// Overwriting with the zero value must delete the slot, not store it.
	reopened.SetState(addr, key, common.Hash{})
	root2, err := reopened.persist()
	require.NoError(t, err)

	final, err := New(root2, db, true)
	require.NoError(t, err)
	require.Equal(t, common.Hash{}, final.GetState(addr, key))
}

func TestSnapshotRevertUndoesBalanceNonceAndStorage(t *testing.T) {
	db := kv.NewMemStore()
	s, err := New(trie.EmptyRoot, db, true)
	require.NoError(t, err)

	addr := common.HexToAddress("0x0000000000000000000000000000000000aaaa")
	s.AddBalance(addr, uint256.NewInt(10))
	snap := s.Snapshot()

	s.AddBalance(addr, uint256.NewInt(90))
	s.SetNonce(addr, 1)
	key := common.HexToHash("0x05")
	s.SetState(addr, key, common.HexToHash("0x07"))
	require.Equal(t, uint64(100), s.GetBalance(addr).Uint64())

	s.RevertToSnapshot(snap)
	require.Equal(t, uint64(10), s.GetBalance(addr).Uint64())
	require.Equal(t, uint64(0), s.GetNonce(addr))
	require.Equal(t, common.Hash{}, s.GetState(addr, key))
}

func TestSelfDestructZeroesBalanceAndPrunesOnPersist(t *testing.T) {
	db := kv.NewMemStore()
	s, err := New(trie.EmptyRoot, db, true)
	require.NoError(t, err)

	addr := common.HexToAddress("0x0000000000000000000000000000000000dead")
	beneficiary := common.HexToAddress("0x0000000000000000000000000000000000feed")
	s.AddBalance(addr, uint256.NewInt(50))
	_, err = s.persist()
	require.NoError(t, err)

	bal := s.GetBalance(addr)
	s.AddBalance(beneficiary, bal)
	s.SelfDestruct(addr)
	require.True(t, s.HasSelfDestructed(addr))
	require.Equal(t, uint64(0), s.GetBalance(addr).Uint64())

	root, err := s.persist()
	require.NoError(t, err)

	reopened, err := New(root, db, true)
	require.NoError(t, err)
	require.False(t, reopened.Exist(addr), "self-destructed account must be pruned from the trie")
	require.Equal(t, uint64(50), reopened.GetBalance(beneficiary).Uint64())
}

func TestEmptyAccountReapedOnPersistPostSpuriousDragon(t *testing.T) {
	db := kv.NewMemStore()
	s, err := New(trie.EmptyRoot, db, true)
	require.NoError(t, err)

	addr := common.HexToAddress("0x0000000000000000000000000000000000beee")
	s.AddBalance(addr, uint256.NewInt(1))
	s.SubBalance(addr, uint256.NewInt(1))
	require.True(t, s.Empty(addr))

	root, err := s.persist()
	require.NoError(t, err)

	reopened, err := New(root, db, true)
	require.NoError(t, err)
	require.False(t, reopened.Exist(addr), "empty touched account must be reaped, not persisted")
}

func TestAccessListTracksWarmAddressesAndSlots(t *testing.T) {
	db := kv.NewMemStore()
	s, err := New(trie.EmptyRoot, db, true)
	require.NoError(t, err)

	addr := common.HexToAddress("0x0000000000000000000000000000000000cc01")
	slot := common.HexToHash("0x01")
	require.False(t, s.AddressInAccessList(addr))

	s.AddSlotToAccessList(addr, slot)
	addrOk, slotOk := s.SlotInAccessList(addr, slot)
	require.True(t, addrOk)
	require.True(t, slotOk)
}

func TestLogsAreScopedToTxHash(t *testing.T) {
	db := kv.NewMemStore()
	s, err := New(trie.EmptyRoot, db, true)
	require.NoError(t, err)

	tx1 := common.HexToHash("0x01")
	s.SetTxContext(tx1, 0)
	s.AddLog(&vm.Log{Address: common.HexToAddress("0x0000000000000000000000000000000000aa01")})

	tx2 := common.HexToHash("0x02")
	s.SetTxContext(tx2, 1)
	s.AddLog(&vm.Log{Address: common.HexToAddress("0x0000000000000000000000000000000000aa02")})

	require.Len(t, s.GetLogs(tx1, 7, common.Hash{}), 1)
	require.Len(t, s.GetLogs(tx2, 7, common.Hash{}), 1)
}
