// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/params"
)

// memoryStateDB is a minimal in-memory StateDB good enough to drive the
// interpreter end to end without pulling in core/state.
type memoryStateDB struct {
	balances map[common.Address]*uint256.Int
	nonces   map[common.Address]uint64
	code     map[common.Address][]byte
	codeHash map[common.Address]common.Hash
	storage  map[common.Address]map[common.Hash]common.Hash
	tstorage map[common.Address]map[common.Hash]common.Hash
	exist    map[common.Address]bool
	accessed map[common.Address]bool
	slots    map[common.Address]map[common.Hash]bool
	logs     []*Log
	refund   uint64
	nextSnap int
}

func newMemoryStateDB() *memoryStateDB {
	return &memoryStateDB{
		balances: map[common.Address]*uint256.Int{},
		nonces:   map[common.Address]uint64{},
		code:     map[common.Address][]byte{},
		codeHash: map[common.Address]common.Hash{},
		storage:  map[common.Address]map[common.Hash]common.Hash{},
		tstorage: map[common.Address]map[common.Hash]common.Hash{},
		exist:    map[common.Address]bool{},
		accessed: map[common.Address]bool{},
		slots:    map[common.Address]map[common.Hash]bool{},
	}
}

func (s *memoryStateDB) CreateAccount(a common.Address) { s.exist[a] = true }
func (s *memoryStateDB) GetBalance(a common.Address) *uint256.Int {
	if b, ok := s.balances[a]; ok {
		return b
	}
	return new(uint256.Int)
}
func (s *memoryStateDB) AddBalance(a common.Address, v *uint256.Int) {
	b := s.GetBalance(a)
	s.balances[a] = new(uint256.Int).Add(b, v)
}
func (s *memoryStateDB) SubBalance(a common.Address, v *uint256.Int) {
	b := s.GetBalance(a)
	s.balances[a] = new(uint256.Int).Sub(b, v)
}
func (s *memoryStateDB) GetNonce(a common.Address) uint64     { return s.nonces[a] }
func (s *memoryStateDB) SetNonce(a common.Address, n uint64)  { s.nonces[a] = n }
func (s *memoryStateDB) GetCodeHash(a common.Address) common.Hash { return s.codeHash[a] }
func (s *memoryStateDB) GetCode(a common.Address) []byte      { return s.code[a] }
func (s *memoryStateDB) SetCode(a common.Address, code []byte) {
	s.code[a] = code
	s.exist[a] = true
}
func (s *memoryStateDB) GetCodeSize(a common.Address) int { return len(s.code[a]) }

func (s *memoryStateDB) GetCommittedState(a common.Address, k common.Hash) common.Hash {
	return s.GetState(a, k)
}
func (s *memoryStateDB) GetState(a common.Address, k common.Hash) common.Hash {
	if m, ok := s.storage[a]; ok {
		return m[k]
	}
	return common.Hash{}
}
func (s *memoryStateDB) SetState(a common.Address, k, v common.Hash) {
	if s.storage[a] == nil {
		s.storage[a] = map[common.Hash]common.Hash{}
	}
	s.storage[a][k] = v
}
func (s *memoryStateDB) GetTransientState(a common.Address, k common.Hash) common.Hash {
	if m, ok := s.tstorage[a]; ok {
		return m[k]
	}
	return common.Hash{}
}
func (s *memoryStateDB) SetTransientState(a common.Address, k, v common.Hash) {
	if s.tstorage[a] == nil {
		s.tstorage[a] = map[common.Hash]common.Hash{}
	}
	s.tstorage[a][k] = v
}
func (s *memoryStateDB) SelfDestruct(a common.Address)      { delete(s.exist, a) }
func (s *memoryStateDB) HasSelfDestructed(common.Address) bool { return false }
func (s *memoryStateDB) Exist(a common.Address) bool         { return s.exist[a] }
func (s *memoryStateDB) Empty(a common.Address) bool {
	return !s.exist[a] || (s.GetBalance(a).IsZero() && s.nonces[a] == 0 && len(s.code[a]) == 0)
}
func (s *memoryStateDB) AddressInAccessList(a common.Address) bool { return s.accessed[a] }
func (s *memoryStateDB) SlotInAccessList(a common.Address, k common.Hash) (bool, bool) {
	addrOK := s.accessed[a]
	slotOK := s.slots[a] != nil && s.slots[a][k]
	return addrOK, slotOK
}
func (s *memoryStateDB) AddAddressToAccessList(a common.Address) { s.accessed[a] = true }
func (s *memoryStateDB) AddSlotToAccessList(a common.Address, k common.Hash) {
	s.accessed[a] = true
	if s.slots[a] == nil {
		s.slots[a] = map[common.Hash]bool{}
	}
	s.slots[a][k] = true
}
func (s *memoryStateDB) RevertToSnapshot(int) {}
func (s *memoryStateDB) Snapshot() int        { s.nextSnap++; return s.nextSnap }
func (s *memoryStateDB) AddLog(l *Log)        { s.logs = append(s.logs, l) }
func (s *memoryStateDB) AddRefund(amount uint64) { s.refund += amount }
func (s *memoryStateDB) SubRefund(amount uint64) {
	if s.refund < amount {
		s.refund = 0
		return
	}
	s.refund -= amount
}
func (s *memoryStateDB) GetRefund() uint64 { return s.refund }

func testBlockCtx() BlockContext {
	return BlockContext{
		CanTransfer: func(db StateDB, addr common.Address, amount *uint256.Int) bool {
			return db.GetBalance(addr).Cmp(amount) >= 0
		},
		Transfer: func(db StateDB, from, to common.Address, amount *uint256.Int) {
			db.SubBalance(from, amount)
			db.AddBalance(to, amount)
		},
		GetHash:     func(uint64) common.Hash { return common.Hash{} },
		BlockNumber: 1,
		GasLimit:    30_000_000,
		Difficulty:  new(uint256.Int),
		BaseFee:     uint256.NewInt(1_000_000_000),
	}
}

func newTestEVM(state StateDB) *EVM {
	return NewEVM(params.Shanghai, state, testBlockCtx(), TxContext{GasPrice: new(uint256.Int)}, new(uint256.Int), Config{})
}

// TestAddPushReturn runs PUSH1 3 PUSH1 4 ADD PUSH1 0 MSTORE PUSH1 32
// PUSH1 0 RETURN and checks the returned word is 7.
func TestAddPushReturn(t *testing.T) {
	state := newMemoryStateDB()
	caller := common.Address{1}
	callee := common.Address{2}
	state.exist[caller] = true
	state.balances[caller] = uint256.NewInt(1_000_000)

	code := []byte{
		byte(PUSH1), 3,
		byte(PUSH1), 4,
		byte(ADD),
		byte(PUSH1), 0,
		byte(MSTORE),
		byte(PUSH1), 32,
		byte(PUSH1), 0,
		byte(RETURN),
	}
	state.SetCode(callee, code)

	evm := newTestEVM(state)
	ret, gasLeft, err := evm.Call(AccountRef(caller), callee, nil, 100_000, nil)
	require.NoError(t, err)
	require.Greater(t, gasLeft, uint64(0))
	require.Len(t, ret, 32)
	require.Equal(t, uint64(7), new(uint256.Int).SetBytes(ret).Uint64())
}

// TestSstoreSloadRoundTrip stores a value then loads and returns it.
func TestSstoreSloadRoundTrip(t *testing.T) {
	state := newMemoryStateDB()
	caller := common.Address{1}
	callee := common.Address{2}
	state.exist[caller] = true
	state.balances[caller] = uint256.NewInt(1_000_000)

	code := []byte{
		byte(PUSH1), 9, // value
		byte(PUSH1), 1, // key
		byte(SSTORE),
		byte(PUSH1), 1, // key
		byte(SLOAD),
		byte(PUSH1), 0,
		byte(MSTORE),
		byte(PUSH1), 32,
		byte(PUSH1), 0,
		byte(RETURN),
	}
	state.SetCode(callee, code)

	evm := newTestEVM(state)
	ret, _, err := evm.Call(AccountRef(caller), callee, nil, 100_000, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(9), new(uint256.Int).SetBytes(ret).Uint64())
}

// TestCallBetweenContracts has callee invoke a second contract via CALL
// and relay its return data back out.
func TestCallBetweenContracts(t *testing.T) {
	state := newMemoryStateDB()
	caller := common.Address{1}
	outer := common.Address{2}
	inner := common.Address{3}
	state.exist[caller] = true
	state.balances[caller] = uint256.NewInt(1_000_000)

	// inner: returns 42
	innerCode := []byte{
		byte(PUSH1), 42,
		byte(PUSH1), 0,
		byte(MSTORE),
		byte(PUSH1), 32,
		byte(PUSH1), 0,
		byte(RETURN),
	}
	state.SetCode(inner, innerCode)

	// outer: CALL(gas, inner, 0, 0, 0, 0, 32) then RETURNDATACOPY and RETURN
	var outerCode []byte
	outerCode = append(outerCode, byte(PUSH1), 32) // retSize
	outerCode = append(outerCode, byte(PUSH1), 0)  // retOffset
	outerCode = append(outerCode, byte(PUSH1), 0)  // argsSize
	outerCode = append(outerCode, byte(PUSH1), 0)  // argsOffset
	outerCode = append(outerCode, byte(PUSH1), 0)  // value
	outerCode = append(outerCode, byte(PUSH20))
	outerCode = append(outerCode, inner.Bytes()...)
	outerCode = append(outerCode, byte(PUSH3), 0x01, 0x86, 0xa0) // gas 100000
	outerCode = append(outerCode, byte(CALL))
	outerCode = append(outerCode, byte(POP)) // drop success flag
	outerCode = append(outerCode, byte(PUSH1), 32, byte(PUSH1), 0, byte(PUSH1), 0, byte(RETURNDATACOPY))
	outerCode = append(outerCode, byte(PUSH1), 32, byte(PUSH1), 0, byte(RETURN))
	state.SetCode(outer, outerCode)

	evm := newTestEVM(state)
	ret, _, err := evm.Call(AccountRef(caller), outer, nil, 1_000_000, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(42), new(uint256.Int).SetBytes(ret).Uint64())
}

// TestStaticCallRejectsWrites verifies SSTORE inside a STATICCALL fails.
func TestStaticCallRejectsWrites(t *testing.T) {
	state := newMemoryStateDB()
	caller := common.Address{1}
	callee := common.Address{2}
	state.exist[caller] = true
	state.balances[caller] = uint256.NewInt(1_000_000)

	code := []byte{
		byte(PUSH1), 1,
		byte(PUSH1), 1,
		byte(SSTORE),
		byte(STOP),
	}
	state.SetCode(callee, code)

	evm := newTestEVM(state)
	_, _, err := evm.StaticCall(AccountRef(caller), callee, nil, 100_000)
	require.ErrorIs(t, err, ErrWriteProtection)
}

// TestCreateDeploysCode runs init code that copies and returns a tiny
// runtime body, and checks the resulting account holds it.
func TestCreateDeploysCode(t *testing.T) {
	state := newMemoryStateDB()
	caller := common.Address{1}
	state.exist[caller] = true
	state.balances[caller] = uint256.NewInt(1_000_000)

	runtime := []byte{byte(STOP)}
	initCode := []byte{
		byte(PUSH1), runtime[0],
		byte(PUSH1), 0,
		byte(MSTORE8),
		byte(PUSH1), 1,
		byte(PUSH1), 0,
		byte(RETURN),
	}

	evm := newTestEVM(state)
	_, addr, _, err := evm.Create(AccountRef(caller), initCode, 200_000, nil)
	require.NoError(t, err)
	require.Equal(t, runtime, state.GetCode(addr))
}
