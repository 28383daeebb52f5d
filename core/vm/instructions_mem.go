// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/holiman/uint256"

	"github.com/chainforge/evmcore/common"
)

func opMload(f *frame, in *Interpreter) (*pendingCall, error) {
	x := f.stack.Peek()
	off := x.Uint64()
	x.SetBytes(f.memory.GetPtr(off, 32))
	return nil, nil
}

func opMstore(f *frame, in *Interpreter) (*pendingCall, error) {
	off, val := f.stack.Pop(), f.stack.Pop()
	f.memory.Set32(off.Uint64(), &val)
	return nil, nil
}

func opMstore8(f *frame, in *Interpreter) (*pendingCall, error) {
	off, val := f.stack.Pop(), f.stack.Pop()
	f.memory.Set(off.Uint64(), 1, []byte{byte(val.Uint64())})
	return nil, nil
}

func opMsize(f *frame, in *Interpreter) (*pendingCall, error) {
	return nil, f.stack.Push(uint256.NewInt(uint64(f.memory.Len())))
}

func opMcopy(f *frame, in *Interpreter) (*pendingCall, error) {
	dst, src, length := f.stack.Pop(), f.stack.Pop(), f.stack.Pop()
	if length.IsZero() {
		return nil, nil
	}
	data := f.memory.GetCopy(src.Uint64(), length.Uint64())
	f.memory.Set(dst.Uint64(), length.Uint64(), data)
	return nil, nil
}

func opSload(f *frame, in *Interpreter) (*pendingCall, error) {
	loc := f.stack.Peek()
	key := common.Hash(loc.Bytes32())
	val := in.state.GetState(f.contract.Address(), key)
	loc.SetBytes(val.Bytes())
	return nil, nil
}

func opSstore(f *frame, in *Interpreter) (*pendingCall, error) {
	if f.static {
		return nil, ErrWriteProtection
	}
	loc, val := f.stack.Pop(), f.stack.Pop()
	key := common.Hash(loc.Bytes32())
	in.state.SetState(f.contract.Address(), key, common.BytesToHash(val.Bytes()))
	return nil, nil
}

func opTload(f *frame, in *Interpreter) (*pendingCall, error) {
	loc := f.stack.Peek()
	key := common.Hash(loc.Bytes32())
	val := in.state.GetTransientState(f.contract.Address(), key)
	loc.SetBytes(val.Bytes())
	return nil, nil
}

func opTstore(f *frame, in *Interpreter) (*pendingCall, error) {
	if f.static {
		return nil, ErrWriteProtection
	}
	loc, val := f.stack.Pop(), f.stack.Pop()
	key := common.Hash(loc.Bytes32())
	in.state.SetTransientState(f.contract.Address(), key, common.BytesToHash(val.Bytes()))
	return nil, nil
}

func opPop(f *frame, in *Interpreter) (*pendingCall, error) {
	f.stack.Pop()
	return nil, nil
}

func opJump(f *frame, in *Interpreter) (*pendingCall, error) {
	dest := f.stack.Pop()
	if !dest.IsUint64() || !f.contract.validJumpdest(dest.Uint64()) {
		return nil, ErrInvalidJump
	}
	f.pc = dest.Uint64()
	return nil, nil
}

func opJumpi(f *frame, in *Interpreter) (*pendingCall, error) {
	dest, cond := f.stack.Pop(), f.stack.Pop()
	if cond.IsZero() {
		f.pc++
		return nil, nil
	}
	if !dest.IsUint64() || !f.contract.validJumpdest(dest.Uint64()) {
		return nil, ErrInvalidJump
	}
	f.pc = dest.Uint64()
	return nil, nil
}

func opJumpdest(f *frame, in *Interpreter) (*pendingCall, error) { return nil, nil }

func opPc(f *frame, in *Interpreter) (*pendingCall, error) {
	return nil, f.stack.Push(uint256.NewInt(f.pc))
}

func opGas(f *frame, in *Interpreter) (*pendingCall, error) {
	return nil, f.stack.Push(uint256.NewInt(f.gasMeter.Gas()))
}

func opStop(f *frame, in *Interpreter) (*pendingCall, error) { return nil, nil }

func opInvalid(f *frame, in *Interpreter) (*pendingCall, error) { return nil, ErrInvalidOpcode }

func opReturn(f *frame, in *Interpreter) (*pendingCall, error) {
	off, size := f.stack.Pop(), f.stack.Pop()
	f.returnData = f.memory.GetCopy(off.Uint64(), size.Uint64())
	return nil, nil
}

func opRevert(f *frame, in *Interpreter) (*pendingCall, error) {
	off, size := f.stack.Pop(), f.stack.Pop()
	f.returnData = f.memory.GetCopy(off.Uint64(), size.Uint64())
	return nil, ErrExecutionReverted
}

// makePush returns an opFn for PUSH1..PUSH32: read size bytes of
// immediate data following the opcode and push them, zero-padded.
func makePush(size int) opFn {
	return func(f *frame, in *Interpreter) (*pendingCall, error) {
		start := f.pc + 1
		data := getData(f.contract.Code, start, uint64(size))
		var v uint256.Int
		v.SetBytes(data)
		if err := f.stack.Push(&v); err != nil {
			return nil, err
		}
		f.pc += uint64(size)
		return nil, nil
	}
}

func opPush0(f *frame, in *Interpreter) (*pendingCall, error) {
	return nil, f.stack.Push(new(uint256.Int))
}

// makeDup returns an opFn for DUP1..DUP16.
func makeDup(n int) opFn {
	return func(f *frame, in *Interpreter) (*pendingCall, error) {
		f.stack.Dup(n)
		return nil, nil
	}
}

// makeSwap returns an opFn for SWAP1..SWAP16.
func makeSwap(n int) opFn {
	return func(f *frame, in *Interpreter) (*pendingCall, error) {
		f.stack.Swap(n)
		return nil, nil
	}
}

// makeLog returns an opFn for LOG0..LOG4.
func makeLog(topicCount int) opFn {
	return func(f *frame, in *Interpreter) (*pendingCall, error) {
		if f.static {
			return nil, ErrWriteProtection
		}
		off, size := f.stack.Pop(), f.stack.Pop()
		topics := make([]common.Hash, topicCount)
		for i := 0; i < topicCount; i++ {
			t := f.stack.Pop()
			topics[i] = common.Hash(t.Bytes32())
		}
		data := f.memory.GetCopy(off.Uint64(), size.Uint64())
		in.state.AddLog(&Log{Address: f.contract.Address(), Topics: topics, Data: data})
		return nil, nil
	}
}

func opSelfdestruct(f *frame, in *Interpreter) (*pendingCall, error) {
	if f.static {
		return nil, ErrWriteProtection
	}
	beneficiary := f.stack.Pop()
	addr := f.contract.Address()
	balance := in.state.GetBalance(addr)
	in.state.AddBalance(common.Address(beneficiary.Bytes20()), balance)
	in.state.SelfDestruct(addr)
	return nil, nil
}
