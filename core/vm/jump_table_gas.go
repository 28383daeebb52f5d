// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import "github.com/chainforge/evmcore/common"

// Memory-size functions: each returns the number of bytes (unrounded)
// an opcode needs, read from stack positions that are still present
// (memorySize runs before the opcode pops its arguments).

func memoryOffsetSize(offIdx, sizeIdx int) memorySizeFunc {
	return func(stack *Stack) uint64 {
		size := stack.Back(sizeIdx)
		if size.IsZero() {
			return 0
		}
		off := stack.Back(offIdx)
		return off.Uint64() + size.Uint64()
	}
}

func memoryWordAt(offIdx int) memorySizeFunc {
	return func(stack *Stack) uint64 { return stack.Back(offIdx).Uint64() + 32 }
}

func memoryByteAt(offIdx int) memorySizeFunc {
	return func(stack *Stack) uint64 { return stack.Back(offIdx).Uint64() + 1 }
}

func memoryCallLike(argsOffIdx, argsSizeIdx, retOffIdx, retSizeIdx int) memorySizeFunc {
	return func(stack *Stack) uint64 {
		argsEnd := stack.Back(argsOffIdx).Uint64() + stack.Back(argsSizeIdx).Uint64()
		retEnd := stack.Back(retOffIdx).Uint64() + stack.Back(retSizeIdx).Uint64()
		if argsEnd > retEnd {
			return argsEnd
		}
		return retEnd
	}
}

// Dynamic-gas functions.

func gasExpFrontier(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
	exponent := f.stack.Back(1)
	if exponent.IsZero() {
		return 0, nil
	}
	return uint64(exponent.ByteLen()) * ExpByteGasFrontier, nil
}

func gasExpEIP158(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
	exponent := f.stack.Back(1)
	if exponent.IsZero() {
		return 0, nil
	}
	return uint64(exponent.ByteLen()) * ExpByteGasEIP158, nil
}

func gasKeccak256(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
	size := f.stack.Back(1).Uint64()
	return toWordSize(size) * Keccak256WordGas, nil
}

func gasCopy(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
	size := f.stack.Back(2).Uint64()
	return toWordSize(size) * CopyGas, nil
}

func gasCopyAt(_, sizeIdx int) dynamicGasFunc {
	return func(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
		size := f.stack.Back(sizeIdx).Uint64()
		return toWordSize(size) * CopyGas, nil
	}
}

func gasMemoryOnly(in *Interpreter, f *frame, memSize uint64) (uint64, error) { return 0, nil }

func gasLog(topicCount int) dynamicGasFunc {
	return func(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
		size := f.stack.Back(1).Uint64()
		cost := uint64(topicCount) * LogTopicGas
		dataCost := size * LogDataGas
		if dataCost/LogDataGas != size { // overflow guard
			return 0, ErrGasUintOverflow
		}
		return cost + dataCost, nil
	}
}

// gasSstoreFrontier implements the original (pre-Constantinople) flat
// SSTORE pricing: 20000 gas to set a zero slot non-zero, 5000
// otherwise, with a flat 15000 refund when clearing a slot to zero.
func gasSstoreFrontier(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
	loc, val := f.stack.Back(0), f.stack.Back(1)
	key := common.Hash(loc.Bytes32())
	current := in.state.GetState(f.contract.Address(), key)
	newVal := common.BytesToHash(val.Bytes())

	if current.IsZero() && !newVal.IsZero() {
		return SstoreSetGas, nil
	}
	if !current.IsZero() && newVal.IsZero() {
		in.addRefund(15000)
	}
	return SstoreResetGas, nil
}

// gasSstoreEIP2200 implements the Istanbul net-gas-metering schedule
// (EIP-2200): cost depends on both the committed (pre-transaction) and
// current values, not just current vs. new.
func gasSstoreEIP2200(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
	const sentryGas = 2300
	if f.gasMeter.Gas() <= sentryGas {
		return 0, ErrOutOfGas
	}
	loc, val := f.stack.Back(0), f.stack.Back(1)
	addr := f.contract.Address()
	key := common.Hash(loc.Bytes32())
	newVal := common.BytesToHash(val.Bytes())
	current := in.state.GetState(addr, key)

	if current == newVal {
		return WarmStorageReadCost, nil
	}
	original := in.state.GetCommittedState(addr, key)
	if original == current {
		if original.IsZero() {
			return SstoreSetGas, nil
		}
		if newVal.IsZero() {
			in.addRefund(SstoreClearsRefund)
		}
		return SstoreResetGas, nil
	}
	if !original.IsZero() {
		if current.IsZero() {
			in.removeRefund(SstoreClearsRefund)
		}
		if newVal.IsZero() {
			in.addRefund(SstoreClearsRefund)
		}
	}
	if original == newVal {
		if original.IsZero() {
			in.addRefund(SstoreSetGas - WarmStorageReadCost)
		} else {
			in.addRefund(SstoreResetGas - ColdSloadCost - WarmStorageReadCost)
		}
	}
	return WarmStorageReadCost, nil
}

func (in *Interpreter) addRefund(amount uint64)    { *in.refund += amount }
func (in *Interpreter) removeRefund(amount uint64) {
	if *in.refund < amount {
		*in.refund = 0
		return
	}
	*in.refund -= amount
}
