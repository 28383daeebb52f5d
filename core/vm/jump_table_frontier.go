// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

// newFrontierInstructionSet builds the opcode table as it stood at
// genesis. Later forks start from a copy of this table and patch in
// their repricing/opcode additions (jump_table_forks.go).
func newFrontierInstructionSet() *JumpTable {
	jt := &JumpTable{}

	set := func(op OpCode, o *operation) { jt[op] = o }

	set(STOP, &operation{execute: opStop, constantGas: 0, minStack: minStack(0, 0), maxStack: maxStack(0, 0), halts: true})
	set(ADD, &operation{execute: opAdd, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(MUL, &operation{execute: opMul, constantGas: GasFastStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(SUB, &operation{execute: opSub, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(DIV, &operation{execute: opDiv, constantGas: GasFastStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(SDIV, &operation{execute: opSdiv, constantGas: GasFastStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(MOD, &operation{execute: opMod, constantGas: GasFastStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(SMOD, &operation{execute: opSmod, constantGas: GasFastStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(ADDMOD, &operation{execute: opAddmod, constantGas: GasMidStep, minStack: minStack(3, 1), maxStack: maxStack(3, 1)})
	set(MULMOD, &operation{execute: opMulmod, constantGas: GasMidStep, minStack: minStack(3, 1), maxStack: maxStack(3, 1)})
	set(EXP, &operation{execute: opExp, constantGas: ExpGas, dynamicGas: gasExpFrontier, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(SIGNEXTEND, &operation{execute: opSignExtend, constantGas: GasFastStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})

	set(LT, &operation{execute: opLt, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(GT, &operation{execute: opGt, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(SLT, &operation{execute: opSlt, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(SGT, &operation{execute: opSgt, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(EQ, &operation{execute: opEq, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(ISZERO, &operation{execute: opIszero, constantGas: GasFastestStep, minStack: minStack(1, 1), maxStack: maxStack(1, 1)})
	set(AND, &operation{execute: opAnd, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(OR, &operation{execute: opOr, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(XOR, &operation{execute: opXor, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(NOT, &operation{execute: opNot, constantGas: GasFastestStep, minStack: minStack(1, 1), maxStack: maxStack(1, 1)})
	set(BYTE, &operation{execute: opByte, constantGas: GasFastestStep, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})

	set(KECCAK256, &operation{execute: opKeccak256, constantGas: Keccak256Gas, dynamicGas: gasKeccak256, memorySize: memoryOffsetSize(0, 1), minStack: minStack(2, 1), maxStack: maxStack(2, 1)})

	set(ADDRESS, &operation{execute: opAddress, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(BALANCE, &operation{execute: opBalance, constantGas: 20, minStack: minStack(1, 1), maxStack: maxStack(1, 1)})
	set(ORIGIN, &operation{execute: opOrigin, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(CALLER, &operation{execute: opCaller, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(CALLVALUE, &operation{execute: opCallValue, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(CALLDATALOAD, &operation{execute: opCallDataLoad, constantGas: GasFastestStep, minStack: minStack(1, 1), maxStack: maxStack(1, 1)})
	set(CALLDATASIZE, &operation{execute: opCallDataSize, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(CALLDATACOPY, &operation{execute: opCallDataCopy, constantGas: GasFastestStep, dynamicGas: gasCopy, memorySize: memoryOffsetSize(0, 2), minStack: minStack(3, 0), maxStack: maxStack(3, 0)})
	set(CODESIZE, &operation{execute: opCodeSize, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(CODECOPY, &operation{execute: opCodeCopy, constantGas: GasFastestStep, dynamicGas: gasCopy, memorySize: memoryOffsetSize(0, 2), minStack: minStack(3, 0), maxStack: maxStack(3, 0)})
	set(GASPRICE, &operation{execute: opGasPrice, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(EXTCODESIZE, &operation{execute: opExtCodeSize, constantGas: 20, minStack: minStack(1, 1), maxStack: maxStack(1, 1)})
	set(EXTCODECOPY, &operation{execute: opExtCodeCopy, constantGas: 20, dynamicGas: gasCopyAt(1, 3), memorySize: memoryOffsetSize(1, 3), minStack: minStack(4, 0), maxStack: maxStack(4, 0)})

	set(BLOCKHASH, &operation{execute: opBlockHash, constantGas: GasExtStep, minStack: minStack(1, 1), maxStack: maxStack(1, 1)})
	set(COINBASE, &operation{execute: opCoinbase, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(TIMESTAMP, &operation{execute: opTimestamp, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(NUMBER, &operation{execute: opNumber, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(PREVRANDAO, &operation{execute: opDifficulty, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(GASLIMIT, &operation{execute: opGasLimit, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})

	set(POP, &operation{execute: opPop, constantGas: GasQuickStep, minStack: minStack(1, 0), maxStack: maxStack(1, 0)})
	set(MLOAD, &operation{execute: opMload, constantGas: GasFastestStep, dynamicGas: nil, memorySize: memoryWordAt(0), minStack: minStack(1, 1), maxStack: maxStack(1, 1)})
	set(MSTORE, &operation{execute: opMstore, constantGas: GasFastestStep, memorySize: memoryWordAt(0), minStack: minStack(2, 0), maxStack: maxStack(2, 0)})
	set(MSTORE8, &operation{execute: opMstore8, constantGas: GasFastestStep, memorySize: memoryByteAt(0), minStack: minStack(2, 0), maxStack: maxStack(2, 0)})
	set(SLOAD, &operation{execute: opSload, constantGas: 50, minStack: minStack(1, 1), maxStack: maxStack(1, 1)})
	set(SSTORE, &operation{execute: opSstore, constantGas: 0, dynamicGas: gasSstoreFrontier, minStack: minStack(2, 0), maxStack: maxStack(2, 0), writes: true})
	set(JUMP, &operation{execute: opJump, constantGas: GasMidStep, minStack: minStack(1, 0), maxStack: maxStack(1, 0)})
	set(JUMPI, &operation{execute: opJumpi, constantGas: GasSlowStep, minStack: minStack(2, 0), maxStack: maxStack(2, 0)})
	set(PC, &operation{execute: opPc, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(MSIZE, &operation{execute: opMsize, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(GAS, &operation{execute: opGas, constantGas: GasQuickStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(JUMPDEST, &operation{execute: opJumpdest, constantGas: JumpdestGas, minStack: minStack(0, 0), maxStack: maxStack(0, 0)})

	for i := 0; i < 32; i++ {
		set(PUSH1+OpCode(i), &operation{execute: makePush(i + 1), constantGas: GasFastestStep, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	}
	for i := 1; i <= 16; i++ {
		set(DUP1+OpCode(i-1), &operation{execute: makeDup(i), constantGas: GasFastestStep, minStack: minDupStack(i), maxStack: maxDupStack(i)})
		set(SWAP1+OpCode(i-1), &operation{execute: makeSwap(i), constantGas: GasFastestStep, minStack: minSwapStack(i + 1), maxStack: maxSwapStack(i + 1)})
	}
	for i := 0; i <= 4; i++ {
		set(LOG0+OpCode(i), &operation{
			execute: makeLog(i), constantGas: LogGas, dynamicGas: gasLog(i),
			memorySize: memoryOffsetSize(0, 1), minStack: minStack(2+i, 0), maxStack: maxStack(2+i, 0), writes: true,
		})
	}

	set(CREATE, &operation{execute: opCreate, constantGas: CreateGas, dynamicGas: gasMemoryOnly, memorySize: memoryOffsetSize(1, 2), minStack: minStack(3, 1), maxStack: maxStack(3, 1), writes: true})
	set(CALL, &operation{execute: opCall, constantGas: 40, dynamicGas: gasCall, memorySize: memoryCallLike(3, 4, 5, 6), minStack: minStack(7, 1), maxStack: maxStack(7, 1), writes: true})
	set(CALLCODE, &operation{execute: opCallCode, constantGas: 40, dynamicGas: gasCallCode, memorySize: memoryCallLike(3, 4, 5, 6), minStack: minStack(7, 1), maxStack: maxStack(7, 1)})
	set(RETURN, &operation{execute: opReturn, constantGas: 0, memorySize: memoryOffsetSize(0, 1), minStack: minStack(2, 0), maxStack: maxStack(2, 0), halts: true})
	set(INVALID, &operation{execute: opInvalid, constantGas: 0, minStack: minStack(0, 0), maxStack: maxStack(0, 0), halts: true})
	set(SELFDESTRUCT, &operation{execute: opSelfdestruct, constantGas: SelfdestructGas, minStack: minStack(1, 0), maxStack: maxStack(1, 0), halts: true, writes: true})

	return jt
}
