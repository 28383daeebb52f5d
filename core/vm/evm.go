// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/holiman/uint256"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/crypto"
	"github.com/chainforge/evmcore/params"
)

// EVM is the outermost entry point the transaction processor drives:
// one EVM value per transaction, wrapping the Interpreter that actually
// runs bytecode. Call/Create/Create2 here play the role that the
// recursive go-ethereum lineage's EVM.Call/Create do, except they are
// invoked exactly once per transaction — everything beneath the
// outermost call is driven by Interpreter.Run's own frame stack rather
// than by this type recursing into itself.
type EVM struct {
	in       *Interpreter
	state    StateDB
	blockCtx BlockContext
	txCtx    TxContext
}

// NewEVM builds an EVM bound to one transaction's execution context.
func NewEVM(fork params.Fork, state StateDB, blockCtx BlockContext, txCtx TxContext, chainID *uint256.Int, config Config) *EVM {
	return &EVM{
		in:       NewInterpreter(fork, state, blockCtx, txCtx, chainID, config),
		state:    state,
		blockCtx: blockCtx,
		txCtx:    txCtx,
	}
}

// RefundCounter returns the transaction-wide SSTORE refund accumulated
// so far across every call this EVM has made.
func (evm *EVM) RefundCounter() uint64 { return *evm.in.refund }

// Context returns the block-wide values this EVM was constructed
// with, which the transaction processor consults for base-fee and
// coinbase bookkeeping outside of any opcode execution.
func (evm *EVM) Context() BlockContext { return evm.blockCtx }

// StateDB returns the account/storage view this EVM operates against.
func (evm *EVM) StateDB() StateDB { return evm.state }

// SetTxContext rebinds the EVM to a new transaction's context without
// rebuilding the whole value, letting one EVM straddle multiple calls
// that share a block context (e.g. a system call ahead of ordinary
// transactions).
func (evm *EVM) SetTxContext(txCtx TxContext) {
	evm.txCtx = txCtx
	evm.in.txCtx = txCtx
}

// Call executes the code at addr as a top-level message call from
// caller, transferring value first if non-zero. It returns the
// contract's return data and the gas left over.
func (evm *EVM) Call(caller ContractRef, addr common.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, uint64, error) {
	if value == nil {
		value = new(uint256.Int)
	}
	if !value.IsZero() && evm.blockCtx.CanTransfer != nil && !evm.blockCtx.CanTransfer(evm.state, caller.Address(), value) {
		return nil, gas, ErrInsufficientBalance
	}

	snapshot := evm.state.Snapshot()
	if !evm.state.Exist(addr) {
		evm.state.CreateAccount(addr)
	}
	if !value.IsZero() && evm.blockCtx.Transfer != nil {
		evm.blockCtx.Transfer(evm.state, caller.Address(), addr, value)
	}

	code := evm.state.GetCode(addr)
	contract := NewContract(caller, AccountRef(addr), value, gas)
	contract.SetCode(evm.state.GetCodeHash(addr), code)

	ret, err := evm.in.Run(contract, input, false)
	if err != nil {
		evm.state.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			contract.Gas = 0
		}
	}
	return ret, contract.Gas, err
}

// CallCode behaves like Call but executes addr's code in the caller's
// own storage context (self stays caller).
func (evm *EVM) CallCode(caller ContractRef, addr common.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, uint64, error) {
	if value == nil {
		value = new(uint256.Int)
	}
	if !value.IsZero() && evm.blockCtx.CanTransfer != nil && !evm.blockCtx.CanTransfer(evm.state, caller.Address(), value) {
		return nil, gas, ErrInsufficientBalance
	}

	snapshot := evm.state.Snapshot()
	code := evm.state.GetCode(addr)
	contract := NewContract(caller, AccountRef(caller.Address()), value, gas)
	contract.SetCallCode(&addr, evm.state.GetCodeHash(addr), code)

	ret, err := evm.in.Run(contract, input, false)
	if err != nil {
		evm.state.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			contract.Gas = 0
		}
	}
	return ret, contract.Gas, err
}

// DelegateCall behaves like CallCode but additionally inherits the
// calling contract's CallerAddress and value (no value of its own).
func (evm *EVM) DelegateCall(caller ContractRef, callerAddress common.Address, addr common.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, uint64, error) {
	snapshot := evm.state.Snapshot()
	code := evm.state.GetCode(addr)
	contract := NewContract(AccountRef(callerAddress), AccountRef(caller.Address()), value, gas)
	contract.IsDelegateCall = true
	contract.CallerAddress = callerAddress
	contract.SetCallCode(&addr, evm.state.GetCodeHash(addr), code)

	ret, err := evm.in.Run(contract, input, false)
	if err != nil {
		evm.state.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			contract.Gas = 0
		}
	}
	return ret, contract.Gas, err
}

// StaticCall behaves like Call but forbids every state-mutating opcode
// for the whole subtree it opens.
func (evm *EVM) StaticCall(caller ContractRef, addr common.Address, input []byte, gas uint64) ([]byte, uint64, error) {
	snapshot := evm.state.Snapshot()
	code := evm.state.GetCode(addr)
	contract := NewContract(caller, AccountRef(addr), new(uint256.Int), gas)
	contract.SetCode(evm.state.GetCodeHash(addr), code)

	ret, err := evm.in.Run(contract, input, true)
	if err != nil {
		evm.state.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			contract.Gas = 0
		}
	}
	return ret, contract.Gas, err
}

// Create deploys code as a new contract at the address derived from
// caller's current nonce (§4.6 contract creation).
func (evm *EVM) Create(caller ContractRef, code []byte, gas uint64, value *uint256.Int) ([]byte, common.Address, uint64, error) {
	sender := caller.Address()
	nonce := evm.state.GetNonce(sender)
	addr := crypto.CreateAddress(sender, nonce)
	ret, gasLeft, err := evm.create(caller, addr, code, gas, value)
	return ret, addr, gasLeft, err
}

// Create2 deploys code at an address derived from caller, salt, and the
// init code's hash, independent of caller's nonce (EIP-1014).
func (evm *EVM) Create2(caller ContractRef, code []byte, gas uint64, value *uint256.Int, salt *uint256.Int) ([]byte, common.Address, uint64, error) {
	sender := caller.Address()
	codeHash := crypto.Keccak256(code)
	var saltBytes [32]byte
	copy(saltBytes[:], salt.Bytes32())
	addr := crypto.CreateAddress2(sender, saltBytes, codeHash)
	ret, gasLeft, err := evm.create(caller, addr, code, gas, value)
	return ret, addr, gasLeft, err
}

func (evm *EVM) create(caller ContractRef, addr common.Address, initCode []byte, gas uint64, value *uint256.Int) ([]byte, uint64, error) {
	if value == nil {
		value = new(uint256.Int)
	}
	if len(initCode) > params.MaxInitCodeSize {
		return nil, gas, ErrMaxInitCodeSizeExceeded
	}
	if evm.blockCtx.CanTransfer != nil && !evm.blockCtx.CanTransfer(evm.state, caller.Address(), value) {
		return nil, gas, ErrInsufficientBalance
	}

	sender := caller.Address()
	evm.state.SetNonce(sender, evm.state.GetNonce(sender)+1)

	snapshot := evm.state.Snapshot()
	if evm.state.Exist(addr) && (evm.state.GetCodeSize(addr) != 0 || evm.state.GetNonce(addr) != 0) {
		evm.state.RevertToSnapshot(snapshot)
		return nil, gas, ErrContractAddressCollision
	}
	evm.state.CreateAccount(addr)
	evm.state.SetNonce(addr, 1)
	if evm.blockCtx.Transfer != nil && !value.IsZero() {
		evm.blockCtx.Transfer(evm.state, sender, addr, value)
	}

	contract := NewContract(caller, AccountRef(addr), value, gas)
	contract.SetCode(common.Hash{}, initCode)

	ret, err := evm.in.Run(contract, nil, false)
	if err != nil {
		evm.state.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			contract.Gas = 0
		}
		return ret, contract.Gas, err
	}

	if len(ret) > params.MaxCodeSize {
		evm.state.RevertToSnapshot(snapshot)
		return nil, 0, ErrMaxCodeSizeExceeded
	}
	if len(ret) > 0 && ret[0] == 0xef {
		evm.state.RevertToSnapshot(snapshot)
		return nil, 0, ErrInvalidCodeEntry
	}
	depositCost := uint64(len(ret)) * CreateDataGas
	if contract.Gas < depositCost {
		evm.state.RevertToSnapshot(snapshot)
		return nil, 0, ErrCodeStoreOutOfGas
	}
	contract.Gas -= depositCost
	evm.state.SetCode(addr, ret)
	return ret, contract.Gas, nil
}
