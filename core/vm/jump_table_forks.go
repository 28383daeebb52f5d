// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

// enableHomestead adds DELEGATECALL (EIP-7).
func enableHomestead(jt *JumpTable) {
	jt[DELEGATECALL] = &operation{
		execute: opDelegateCall, constantGas: 40, dynamicGas: gasDelegateOrStaticCall,
		memorySize: memoryCallLike(2, 3, 4, 5), minStack: minStack(6, 1), maxStack: maxStack(6, 1),
	}
}

// enableTangerine applies the EIP-150 gas-repricing of the
// state-touching opcodes and the 63/64 CALL forwarding rule (already
// implemented unconditionally in callGasCap).
func enableTangerine(jt *JumpTable) {
	jt[EXTCODESIZE].constantGas = 700
	jt[EXTCODECOPY].constantGas = 700
	jt[BALANCE].constantGas = 400
	jt[SLOAD].constantGas = 200
	jt[CALL].constantGas = 700
	jt[CALLCODE].constantGas = 700
	jt[DELEGATECALL].constantGas = 700
	jt[SELFDESTRUCT].constantGas = 5000
}

// enableSpuriousDragon adds EIP-170's max-code-size enforcement
// (applied in Interpreter.finishCreate unconditionally — no jump
// table change is needed here) and EIP-161's touch-based empty-account
// pruning, which is a StateDB-level concern, not an opcode change.
func enableSpuriousDragon(jt *JumpTable) {}

// enableByzantium adds STATICCALL, REVERT, and the RETURNDATA* family.
func enableByzantium(jt *JumpTable) {
	jt[STATICCALL] = &operation{
		execute: opStaticCall, constantGas: 700, dynamicGas: gasDelegateOrStaticCall,
		memorySize: memoryCallLike(2, 3, 4, 5), minStack: minStack(6, 1), maxStack: maxStack(6, 1),
	}
	jt[REVERT] = &operation{
		execute: opRevert, constantGas: 0, memorySize: memoryOffsetSize(0, 1),
		minStack: minStack(2, 0), maxStack: maxStack(2, 0), halts: true,
	}
	jt[RETURNDATASIZE] = &operation{execute: opReturnDataSize, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	jt[RETURNDATACOPY] = &operation{
		execute: opReturnDataCopy, constantGas: GasFastestStep, dynamicGas: gasCopy,
		memorySize: memoryOffsetSize(0, 2), minStack: minStack(3, 0), maxStack: maxStack(3, 0),
	}
}

// enableConstantinople adds SHL/SHR/SAR, EXTCODEHASH, and CREATE2.
func enableConstantinople(jt *JumpTable) {
	jt[SHL] = &operation{execute: opShl, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	jt[SHR] = &operation{execute: opShr, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	jt[SAR] = &operation{execute: opSar, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)}
	jt[EXTCODEHASH] = &operation{execute: opExtCodeHash, constantGas: 400, minStack: minStack(1, 1), maxStack: maxStack(1, 1)}
	jt[CREATE2] = &operation{
		execute: opCreate2, constantGas: CreateGas, dynamicGas: gasCreate2,
		memorySize: memoryOffsetSize(1, 2), minStack: minStack(4, 1), maxStack: maxStack(4, 1), writes: true,
	}
}

func gasCreate2(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
	size := f.stack.Back(2).Uint64()
	return toWordSize(size) * Keccak256WordGas, nil
}

// enableIstanbul adds CHAINID/SELFBALANCE and EIP-2200 net SSTORE
// gas metering, and reprices BALANCE/EXTCODEHASH per EIP-1884.
func enableIstanbul(jt *JumpTable) {
	jt[CHAINID] = &operation{execute: opChainID, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	jt[SELFBALANCE] = &operation{execute: opSelfBalance, constantGas: GasFastStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	jt[SSTORE].constantGas = 0
	jt[SSTORE].dynamicGas = gasSstoreEIP2200
	jt[BALANCE].constantGas = 700
	jt[EXTCODEHASH].constantGas = 700
	jt[EXP].dynamicGas = gasExpEIP158
}

// enableBerlin switches state-touching opcodes to EIP-2929 cold/warm
// access-list metering.
func enableBerlin(jt *JumpTable) {
	jt[SLOAD].constantGas = 0
	jt[SLOAD].dynamicGas = gasSloadEIP2929
	jt[BALANCE].constantGas = 0
	jt[BALANCE].dynamicGas = gasBalanceEIP2929
	jt[EXTCODESIZE].constantGas = 0
	jt[EXTCODESIZE].dynamicGas = gasExtCodeSizeEIP2929
	jt[EXTCODECOPY].constantGas = 0
	jt[EXTCODECOPY].dynamicGas = gasExtCodeCopyEIP2929
	jt[EXTCODEHASH].constantGas = 0
	jt[EXTCODEHASH].dynamicGas = gasExtCodeHashEIP2929
	jt[CALL].constantGas = 0
	jt[CALL].dynamicGas = gasCallEIP2929
	jt[CALLCODE].constantGas = 0
	jt[CALLCODE].dynamicGas = gasCallCodeEIP2929
	jt[DELEGATECALL].constantGas = 0
	jt[DELEGATECALL].dynamicGas = gasDelegateOrStaticCallEIP2929
	jt[STATICCALL].constantGas = 0
	jt[STATICCALL].dynamicGas = gasDelegateOrStaticCallEIP2929
}

// enableLondon adds BASEFEE; EIP-3529's reduced refund cap and
// SELFDESTRUCT-refund removal are applied by the transaction processor
// (CappedRefund with RefundQuotientLondon) rather than the jump table.
func enableLondon(jt *JumpTable) {
	jt[BASEFEE] = &operation{execute: opBaseFee, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
}

// enableShanghai adds PUSH0 (EIP-3855). It also folds in EIP-1153
// transient storage (TLOAD/TSTORE) and EIP-5656 MCOPY, which in
// mainnet history activate at Cancun; this fork schedule stops at
// Shanghai, so they are bundled here rather than left unreachable —
// recorded as an explicit Open Question resolution.
func enableShanghai(jt *JumpTable) {
	jt[PUSH0] = &operation{execute: opPush0, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)}
	jt[TLOAD] = &operation{execute: opTload, constantGas: WarmStorageReadCost, minStack: minStack(1, 1), maxStack: maxStack(1, 1)}
	jt[TSTORE] = &operation{execute: opTstore, constantGas: WarmStorageReadCost, minStack: minStack(2, 0), maxStack: maxStack(2, 0), writes: true}
	jt[MCOPY] = &operation{
		execute: opMcopy, constantGas: GasFastestStep, dynamicGas: gasMcopy,
		memorySize: memoryMcopy, minStack: minStack(3, 0), maxStack: maxStack(3, 0),
	}
}

func gasMcopy(in *Interpreter, f *frame, memSize uint64) (uint64, error) {
	size := f.stack.Back(2).Uint64()
	return toWordSize(size) * CopyGas, nil
}

func memoryMcopy(stack *Stack) uint64 {
	dst, src, size := stack.Back(0).Uint64(), stack.Back(1).Uint64(), stack.Back(2).Uint64()
	end := dst + size
	if srcEnd := src + size; srcEnd > end {
		end = srcEnd
	}
	return end
}
