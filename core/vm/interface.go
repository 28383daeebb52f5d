// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/holiman/uint256"

	"github.com/chainforge/evmcore/common"
)

// StateDB is the account/storage view the interpreter and transaction
// processor operate against (§4.3 accounts cache). It is implemented
// by core/state's accounts cache; vm depends only on this interface so
// core/vm never imports core/state.
type StateDB interface {
	CreateAccount(common.Address)

	GetBalance(common.Address) *uint256.Int
	AddBalance(common.Address, *uint256.Int)
	SubBalance(common.Address, *uint256.Int)

	GetNonce(common.Address) uint64
	SetNonce(common.Address, uint64)

	GetCodeHash(common.Address) common.Hash
	GetCode(common.Address) []byte
	SetCode(common.Address, []byte)
	GetCodeSize(common.Address) int

	GetCommittedState(common.Address, common.Hash) common.Hash
	GetState(common.Address, common.Hash) common.Hash
	SetState(common.Address, common.Hash, common.Hash)

	GetTransientState(common.Address, common.Hash) common.Hash
	SetTransientState(common.Address, common.Hash, common.Hash)

	SelfDestruct(common.Address)
	HasSelfDestructed(common.Address) bool

	Exist(common.Address) bool
	Empty(common.Address) bool

	AddressInAccessList(common.Address) bool
	SlotInAccessList(common.Address, common.Hash) (addrOk bool, slotOk bool)
	AddAddressToAccessList(common.Address)
	AddSlotToAccessList(common.Address, common.Hash)

	RevertToSnapshot(int)
	Snapshot() int

	AddLog(*Log)
	AddRefund(uint64)
	SubRefund(uint64)
	GetRefund() uint64
}

// Log mirrors core/types.Log without importing core/types, which would
// create an import cycle (core/types depends on nothing in core/vm,
// but core/state sits between the two and needs both).
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// BlockContext carries block-wide values that don't change across the
// transactions within one block (§3 Header subset the EVM needs).
type BlockContext struct {
	CanTransfer func(StateDB, common.Address, *uint256.Int) bool
	Transfer    func(StateDB, common.Address, common.Address, *uint256.Int)
	GetHash     func(uint64) common.Hash

	Coinbase    common.Address
	GasLimit    uint64
	BlockNumber uint64
	Time        uint64
	Difficulty  *uint256.Int
	BaseFee     *uint256.Int
	Random      *common.Hash // PREVRANDAO, post-Paris
}

// TxContext carries the per-transaction values (§4.7).
type TxContext struct {
	Origin     common.Address
	GasPrice   *uint256.Int
	AccessList []AccessTuple
}

// AccessTuple is one EIP-2930 access list entry.
type AccessTuple struct {
	Address     common.Address
	StorageKeys []common.Hash
}

// Config bundles the toggles that vary the interpreter's behavior
// across test fixtures (debug tracing, disabling EIPs) without
// threading extra parameters through every call.
type Config struct {
	Tracer                  EVMLogger
	NoBaseFee               bool
	EnablePreimageRecording bool
}

// EVMLogger receives step-level callbacks for debugging/tracing tools.
// A nil Tracer in Config means no tracing.
type EVMLogger interface {
	CaptureStart(from, to common.Address, create bool, input []byte, gas uint64, value *uint256.Int)
	CaptureEnd(output []byte, gasUsed uint64, err error)
	CaptureEnter(typ OpCode, from, to common.Address, input []byte, gas uint64, value *uint256.Int)
	CaptureExit(output []byte, gasUsed uint64, err error)
	CaptureState(pc uint64, op OpCode, gas, cost uint64, scope *ScopeContext, rData []byte, depth int, err error)
	CaptureFault(pc uint64, op OpCode, gas, cost uint64, scope *ScopeContext, depth int, err error)
}

// ScopeContext exposes the active frame's stack/memory/contract to a
// tracer without exposing the interpreter's internals.
type ScopeContext struct {
	Memory   *Memory
	Stack    *Stack
	Contract *Contract
}
