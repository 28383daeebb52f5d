// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import "github.com/chainforge/evmcore/params"

// opFn executes one instruction against the active frame. It returns a
// non-nil *pendingCall when the opcode is CALL-family or CREATE-family
// and a child frame must run before the parent can continue; otherwise
// nil result and nil error mean "keep executing this frame."
type opFn func(f *frame, in *Interpreter) (*pendingCall, error)

// dynamicGasFunc computes the dynamic portion of an opcode's gas cost,
// given the stack (already validated against minStack) and the memory
// size the opcode will require (already resolved by memorySize).
type dynamicGasFunc func(in *Interpreter, f *frame, memSize uint64) (uint64, error)

// memorySizeFunc returns the number of bytes of memory (unrounded) an
// opcode needs, from its stack arguments, before the opcode executes.
type memorySizeFunc func(stack *Stack) uint64

// operation is one opcode's static metadata: its handler, cost, and
// stack bounds (§4.5, §4.6).
type operation struct {
	execute     opFn
	constantGas uint64
	dynamicGas  dynamicGasFunc
	minStack    int
	maxStack    int
	memorySize  memorySizeFunc
	halts       bool
	writes      bool // forbidden inside a static call
}

// JumpTable maps every opcode byte to its operation, or nil for
// undefined opcodes (which fault with ErrInvalidOpcode).
type JumpTable [256]*operation

func minSwapStack(n int) int { return minStack(n, n) }
func maxSwapStack(n int) int { return maxStack(n, n) }
func minDupStack(n int) int  { return minStack(n, n+1) }
func maxDupStack(n int) int  { return maxStack(n, n+1) }

func minStack(pops, _ int) int      { return pops }
func maxStack(pops, pushes int) int { return params.StackLimit + pops - pushes }

// NewFrontierInstructionSet and the fork-specific variants below build
// independent jump tables rather than mutating a shared base, mirroring
// how the rest of the pack's EVM implementations version their opcode
// tables per fork (a table is cheap: 256 pointers).

// NewInstructionSet returns the jump table for the rules active at
// (fork). It is the single entry point the interpreter uses; callers
// never mutate the returned table.
func NewInstructionSet(fork params.Fork) *JumpTable {
	jt := newFrontierInstructionSet()
	if fork >= params.Homestead {
		enableHomestead(jt)
	}
	if fork >= params.Tangerine {
		enableTangerine(jt)
	}
	if fork >= params.SpuriousDragon {
		enableSpuriousDragon(jt)
	}
	if fork >= params.Byzantium {
		enableByzantium(jt)
	}
	if fork >= params.Constantinople {
		enableConstantinople(jt)
	}
	if fork >= params.Istanbul {
		enableIstanbul(jt)
	}
	if fork >= params.Berlin {
		enableBerlin(jt)
	}
	if fork >= params.London {
		enableLondon(jt)
	}
	if fork >= params.Shanghai {
		enableShanghai(jt)
	}
	return jt
}
