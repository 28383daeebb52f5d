// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/holiman/uint256"

	"github.com/chainforge/evmcore/common"
)

// callGasCap implements EIP-150's 63/64 rule: a CALL-family opcode may
// forward at most gas - gas/64 of the gas remaining after its own
// static+dynamic cost, unless it explicitly requests less.
func callGasCap(available, requested uint64) uint64 {
	capped := available - available/CallGasFraction
	if requested > capped {
		// A request above the cap (including CREATE's request for all
		// remaining gas) is clamped; an explicit zero request forwards 0.
		return capped
	}
	return requested
}

func opCall(f *frame, in *Interpreter) (*pendingCall, error) {
	gas, addr, value := f.stack.Pop(), f.stack.Pop(), f.stack.Pop()
	argsOff, argsSize, retOff, retSize := f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop()

	if f.static && !value.IsZero() {
		return nil, ErrWriteProtection
	}
	input := f.memory.GetCopy(argsOff.Uint64(), argsSize.Uint64())
	return &pendingCall{
		kind:      callKindCall,
		caller:    AccountRef(f.contract.Address()),
		addr:      common.Address(addr.Bytes20()),
		value:     &value,
		input:     input,
		gas:       callGasCap(f.gasMeter.Gas(), gas.Uint64()),
		retOffset: retOff.Uint64(),
		retSize:   retSize.Uint64(),
	}, nil
}

func opCallCode(f *frame, in *Interpreter) (*pendingCall, error) {
	gas, addr, value := f.stack.Pop(), f.stack.Pop(), f.stack.Pop()
	argsOff, argsSize, retOff, retSize := f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop()

	input := f.memory.GetCopy(argsOff.Uint64(), argsSize.Uint64())
	return &pendingCall{
		kind:      callKindCallCode,
		caller:    AccountRef(f.contract.Address()),
		addr:      common.Address(addr.Bytes20()),
		value:     &value,
		input:     input,
		gas:       callGasCap(f.gasMeter.Gas(), gas.Uint64()),
		retOffset: retOff.Uint64(),
		retSize:   retSize.Uint64(),
	}, nil
}

func opDelegateCall(f *frame, in *Interpreter) (*pendingCall, error) {
	gas, addr := f.stack.Pop(), f.stack.Pop()
	argsOff, argsSize, retOff, retSize := f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop()

	input := f.memory.GetCopy(argsOff.Uint64(), argsSize.Uint64())
	return &pendingCall{
		kind:      callKindDelegateCall,
		caller:    AccountRef(f.contract.CallerAddress),
		addr:      common.Address(addr.Bytes20()),
		value:     f.contract.Value(),
		input:     input,
		gas:       callGasCap(f.gasMeter.Gas(), gas.Uint64()),
		retOffset: retOff.Uint64(),
		retSize:   retSize.Uint64(),
	}, nil
}

func opStaticCall(f *frame, in *Interpreter) (*pendingCall, error) {
	gas, addr := f.stack.Pop(), f.stack.Pop()
	argsOff, argsSize, retOff, retSize := f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop()

	input := f.memory.GetCopy(argsOff.Uint64(), argsSize.Uint64())
	return &pendingCall{
		kind:      callKindStaticCall,
		caller:    AccountRef(f.contract.Address()),
		addr:      common.Address(addr.Bytes20()),
		value:     uint256.NewInt(0),
		input:     input,
		gas:       callGasCap(f.gasMeter.Gas(), gas.Uint64()),
		retOffset: retOff.Uint64(),
		retSize:   retSize.Uint64(),
	}, nil
}

func opCreate(f *frame, in *Interpreter) (*pendingCall, error) {
	if f.static {
		return nil, ErrWriteProtection
	}
	value, off, size := f.stack.Pop(), f.stack.Pop(), f.stack.Pop()
	input := f.memory.GetCopy(off.Uint64(), size.Uint64())
	return &pendingCall{
		kind:   callKindCreate,
		caller: AccountRef(f.contract.Address()),
		value:  &value,
		input:  input,
		gas:    callGasCap(f.gasMeter.Gas(), f.gasMeter.Gas()),
	}, nil
}

func opCreate2(f *frame, in *Interpreter) (*pendingCall, error) {
	if f.static {
		return nil, ErrWriteProtection
	}
	value, off, size, salt := f.stack.Pop(), f.stack.Pop(), f.stack.Pop(), f.stack.Pop()
	input := f.memory.GetCopy(off.Uint64(), size.Uint64())
	return &pendingCall{
		kind:   callKindCreate2,
		caller: AccountRef(f.contract.Address()),
		value:  &value,
		input:  input,
		gas:    callGasCap(f.gasMeter.Gas(), f.gasMeter.Gas()),
		salt:   &salt,
	}, nil
}
