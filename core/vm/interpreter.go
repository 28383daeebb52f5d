// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/holiman/uint256"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/crypto"
	"github.com/chainforge/evmcore/params"
)

// Interpreter runs EVM bytecode against a StateDB. Unlike the
// recursive go-ethereum lineage (core-vm-evm.go.go in the reference
// corpus calls EVM.Call from inside an opcode handler), this
// interpreter keeps an explicit stack of *frame values; CALL-family
// and CREATE-family opcodes return a *pendingCall instead of invoking
// a nested Go call, and the driver loop in Run pushes/pops frames
// itself. Call depth is therefore bounded by MaxCallDepth regardless
// of the Go goroutine's actual stack usage.
type Interpreter struct {
	jt       *JumpTable
	state    StateDB
	blockCtx BlockContext
	txCtx    TxContext
	chainID  *uint256.Int
	config   Config
	refund   *uint64
}

// NewInterpreter builds an Interpreter bound to one EVM execution
// (one transaction's worth of calls share a single Interpreter so the
// refund counter and access lists are consistent across frames).
func NewInterpreter(fork params.Fork, state StateDB, blockCtx BlockContext, txCtx TxContext, chainID *uint256.Int, config Config) *Interpreter {
	return &Interpreter{
		jt:       NewInstructionSet(fork),
		state:    state,
		blockCtx: blockCtx,
		txCtx:    txCtx,
		chainID:  chainID,
		config:   config,
		refund:   new(uint64),
	}
}

func (in *Interpreter) keccak(data []byte) common.Hash {
	return crypto.Keccak256Hash(data)
}

// Run executes contract's code against input and returns its output.
// static marks this frame (and everything opened beneath it) as
// inside a STATICCALL boundary. Run is the only place bytecode
// actually executes; CALL-family opcodes encountered while running
// never call back into Run — they hand a *pendingCall to the loop
// below, which opens and drives the child frame itself.
func (in *Interpreter) Run(contract *Contract, input []byte, static bool) ([]byte, error) {
	contract.Input = input

	root := &frame{
		contract: contract,
		stack:    NewStack(),
		memory:   NewMemory(),
		gasMeter: NewGasMeter(contract.Gas, in.refund),
		static:   static,
	}
	frames := []*frame{root}
	defer func() {
		for _, fr := range frames {
			ReturnStack(fr.stack)
		}
	}()

	var rootOutput []byte
	var rootErr error

loop:
	for len(frames) > 0 {
		cur := frames[len(frames)-1]
		pending, output, err := in.step(cur)

		switch {
		case pending != nil:
			// A too-deep call fails softly: push 0 and keep going,
			// per §4.6, rather than aborting the whole transaction.
			// Nothing has been deducted from cur yet, so there is
			// nothing to refund.
			if len(frames) >= params.MaxCallDepth {
				cur.stack.push(new(uint256.Int))
				continue loop
			}
			child, ok := in.openChildFrame(cur, pending)
			if !ok {
				cur.stack.push(new(uint256.Int))
				continue loop
			}
			frames = append(frames, child)
			continue loop

		case err != nil:
			if err == ErrExecutionReverted {
				cur.contract.Gas = cur.gasMeter.Gas()
			} else {
				cur.gasMeter.UseGas(cur.gasMeter.Gas())
				cur.contract.Gas = 0
				output = nil
			}
			frames = frames[:len(frames)-1]
			if len(frames) == 0 {
				rootErr = err
				rootOutput = output
				break loop
			}
			in.resumeParentAfterChild(frames[len(frames)-1], cur, output, false)

		default:
			cur.contract.Gas = cur.gasMeter.Gas()
			frames = frames[:len(frames)-1]
			if len(frames) == 0 {
				rootOutput = output
				break loop
			}
			in.resumeParentAfterChild(frames[len(frames)-1], cur, output, true)
		}
	}

	contract.Gas = root.contract.Gas
	return rootOutput, rootErr
}

// step executes exactly one instruction of cur's code. It returns
// either (pendingCall, nil, nil) when a child frame must run next, or
// (nil, output, err) when the frame has halted (err is nil on
// STOP/RETURN/falling off the end of code), or (nil, nil, nil) to
// keep executing cur.
func (in *Interpreter) step(cur *frame) (*pendingCall, []byte, error) {
	code := cur.contract.Code
	if cur.pc >= uint64(len(code)) {
		return nil, nil, nil // implicit STOP
	}
	op := OpCode(code[cur.pc])
	operation := in.jt[op]
	if operation == nil {
		return nil, nil, ErrInvalidOpcode
	}
	if cur.stack.Len() < operation.minStack {
		return nil, nil, ErrStackUnderflow
	}
	if cur.stack.Len() > operation.maxStack {
		return nil, nil, ErrStackOverflow
	}
	if cur.static && operation.writes {
		return nil, nil, ErrWriteProtection
	}

	var memSize uint64
	if operation.memorySize != nil {
		size := operation.memorySize(cur.stack)
		words := toWordSize(size)
		if words > (1<<32)/32 {
			return nil, nil, ErrGasUintOverflow
		}
		memSize = words * 32
		if cost := memoryExpansionGas(uint64(cur.memory.Len()), memSize); cost != 0 {
			if err := cur.gasMeter.UseGas(cost); err != nil {
				return nil, nil, err
			}
		}
	}

	if err := cur.gasMeter.UseGas(operation.constantGas); err != nil {
		return nil, nil, err
	}
	if operation.dynamicGas != nil {
		cost, err := operation.dynamicGas(in, cur, memSize)
		if err != nil {
			return nil, nil, err
		}
		if err := cur.gasMeter.UseGas(cost); err != nil {
			return nil, nil, err
		}
	}
	if memSize > uint64(cur.memory.Len()) {
		cur.memory.Resize(memSize)
	}

	pending, err := operation.execute(cur, in)
	if err != nil {
		return nil, nil, err
	}
	if pending != nil {
		cur.pc++
		return pending, nil, nil
	}
	if operation.halts {
		return nil, cur.returnData, nil
	}
	if op != JUMP && op != JUMPI {
		cur.pc++
	}
	return nil, nil, nil
}

// openChildFrame applies the call-kind-specific setup (depth already
// checked by the caller) — value transfer, snapshot, CREATE address
// derivation and nonce bump, code loading — and returns the new frame
// ready to run. ok is false if setup itself failed (e.g. insufficient
// balance, address collision); the caller treats that the same as the
// child running and immediately failing.
func (in *Interpreter) openChildFrame(parent *frame, p *pendingCall) (*frame, bool) {
	switch p.kind {
	case callKindCreate, callKindCreate2:
		return in.openCreateFrame(parent, p)
	default:
		return in.openMessageCallFrame(parent, p)
	}
}

func (in *Interpreter) openMessageCallFrame(parent *frame, p *pendingCall) (*frame, bool) {
	snapshot := in.state.Snapshot()

	var self ContractRef = AccountRef(p.addr)
	contract := NewContract(p.caller, self, p.value, p.gas)

	static := parent.static || p.kind == callKindStaticCall

	switch p.kind {
	case callKindCall:
		if !p.value.IsZero() {
			if in.blockCtx.CanTransfer != nil && !in.blockCtx.CanTransfer(in.state, p.caller.Address(), p.value) {
				in.state.RevertToSnapshot(snapshot)
				return nil, false
			}
			if !in.state.Exist(p.addr) {
				in.state.CreateAccount(p.addr)
			}
			if in.blockCtx.Transfer != nil {
				in.blockCtx.Transfer(in.state, p.caller.Address(), p.addr, p.value)
			}
		}
		code := in.state.GetCode(p.addr)
		contract.SetCode(in.state.GetCodeHash(p.addr), code)
	case callKindCallCode:
		if !p.value.IsZero() {
			if in.blockCtx.CanTransfer != nil && !in.blockCtx.CanTransfer(in.state, parent.contract.Address(), p.value) {
				in.state.RevertToSnapshot(snapshot)
				return nil, false
			}
		}
		self = AccountRef(parent.contract.Address())
		contract = NewContract(p.caller, self, p.value, p.gas)
		code := in.state.GetCode(p.addr)
		contract.SetCallCode(&p.addr, in.state.GetCodeHash(p.addr), code)
	case callKindDelegateCall:
		self = AccountRef(parent.contract.Address())
		contract = NewContract(AccountRef(parent.contract.CallerAddress), self, p.value, p.gas)
		contract.IsDelegateCall = true
		contract.CallerAddress = parent.contract.CallerAddress
		code := in.state.GetCode(p.addr)
		contract.SetCallCode(&p.addr, in.state.GetCodeHash(p.addr), code)
	case callKindStaticCall:
		code := in.state.GetCode(p.addr)
		contract.SetCode(in.state.GetCodeHash(p.addr), code)
	}

	contract.Input = p.input
	child := &frame{
		contract:  contract,
		stack:     NewStack(),
		memory:    NewMemory(),
		gasMeter:  NewGasMeter(p.gas, in.refund),
		static:    static,
		retOffset: p.retOffset,
		retSize:   p.retSize,
	}
	child.snapshotID = snapshot
	return child, true
}

func (in *Interpreter) openCreateFrame(parent *frame, p *pendingCall) (*frame, bool) {
	if in.blockCtx.CanTransfer != nil && !in.blockCtx.CanTransfer(in.state, p.caller.Address(), p.value) {
		return nil, false
	}
	if len(p.input) > params.MaxInitCodeSize {
		return nil, false
	}

	sender := p.caller.Address()
	nonce := in.state.GetNonce(sender)
	in.state.SetNonce(sender, nonce+1)

	var newAddr common.Address
	if p.kind == callKindCreate {
		newAddr = crypto.CreateAddress(sender, nonce)
	} else {
		codeHash := crypto.Keccak256(p.input)
		var salt [32]byte
		copy(salt[:], p.salt.Bytes32())
		newAddr = crypto.CreateAddress2(sender, salt, codeHash)
	}

	snapshot := in.state.Snapshot()
	if in.state.Exist(newAddr) && (in.state.GetCodeSize(newAddr) != 0 || in.state.GetNonce(newAddr) != 0) {
		in.state.RevertToSnapshot(snapshot)
		return nil, false
	}
	in.state.CreateAccount(newAddr)
	in.state.SetNonce(newAddr, 1)
	if in.blockCtx.Transfer != nil && !p.value.IsZero() {
		in.blockCtx.Transfer(in.state, sender, newAddr, p.value)
	}

	contract := NewContract(p.caller, AccountRef(newAddr), p.value, p.gas)
	contract.Input = nil
	contract.SetCode(common.Hash{}, p.input)

	child := &frame{
		contract:   contract,
		stack:      NewStack(),
		memory:     NewMemory(),
		gasMeter:   NewGasMeter(p.gas, in.refund),
		static:     parent.static,
		isCreate:   true,
		createAddr: newAddr,
	}
	child.snapshotID = snapshot
	return child, true
}

// resumeParentAfterChild folds a just-finished child frame's result
// back into parent: copies return data into the parent's requested
// memory region (message calls) or persists deployed code (CREATE),
// pushes the child's success flag, and returns unused gas.
func (in *Interpreter) resumeParentAfterChild(parent, child *frame, output []byte, success bool) {
	if !success {
		in.state.RevertToSnapshot(child.snapshotID)
	}

	if child.isCreate {
		in.finishCreate(parent, child, output, success)
		return
	}

	parent.lastCallReturnData = output
	if success && len(output) > 0 {
		n := child.retSize
		if uint64(len(output)) < n {
			n = uint64(len(output))
		}
		if n > 0 {
			parent.memory.Set(child.retOffset, n, output[:n])
		}
	}
	if success {
		parent.stack.push(uint256Bool(true))
	} else {
		parent.stack.push(uint256Bool(false))
	}
	parent.gasMeter.giveGas(child.gasMeter.Gas())
}

func (in *Interpreter) finishCreate(parent, child *frame, output []byte, success bool) {
	if success {
		if len(output) > params.MaxCodeSize {
			success = false
		} else if len(output) > 0 && output[0] == 0xef {
			success = false
		} else {
			depositCost := uint64(len(output)) * CreateDataGas
			if err := child.gasMeter.UseGas(depositCost); err != nil {
				success = false
			} else {
				in.state.SetCode(child.createAddr, output)
			}
		}
		if !success {
			in.state.RevertToSnapshot(child.snapshotID)
		}
	}
	if success {
		var v uint256.Int
		v.SetBytes(child.createAddr.Bytes())
		parent.stack.push(&v)
	} else {
		parent.stack.push(new(uint256.Int))
	}
	parent.gasMeter.giveGas(child.gasMeter.Gas())
}

func uint256Bool(b bool) *uint256.Int {
	if b {
		return uint256.NewInt(1)
	}
	return new(uint256.Int)
}
