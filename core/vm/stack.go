// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"sync"

	"github.com/holiman/uint256"

	"github.com/chainforge/evmcore/params"
)

// Stack is the EVM operand stack: up to 1024 256-bit words (§3 Word,
// §4.6). Values are held as *uint256.Int rather than *big.Int so
// arithmetic opcodes operate on fixed-width, allocation-free words.
type Stack struct {
	data []uint256.Int
}

var stackPool = sync.Pool{
	New: func() interface{} {
		return &Stack{data: make([]uint256.Int, 0, 16)}
	},
}

// NewStack returns a Stack drawn from a shared pool; callers must call
// ReturnStack when the frame using it is done.
func NewStack() *Stack {
	return stackPool.Get().(*Stack)
}

// ReturnStack resets st and returns it to the pool.
func ReturnStack(st *Stack) {
	st.data = st.data[:0]
	stackPool.Put(st)
}

func (st *Stack) push(v *uint256.Int) {
	st.data = append(st.data, *v)
}

// Push pushes v, returning ErrStackOverflow if the stack is already at
// StackLimit depth.
func (st *Stack) Push(v *uint256.Int) error {
	if len(st.data) >= params.StackLimit {
		return ErrStackOverflow
	}
	st.push(v)
	return nil
}

// Pop removes and returns the top element. Callers must have verified
// the stack is non-empty (the interpreter checks minimum stack depth
// per opcode before dispatch).
func (st *Stack) Pop() uint256.Int {
	n := len(st.data) - 1
	v := st.data[n]
	st.data = st.data[:n]
	return v
}

// Peek returns a pointer to the top element without removing it.
func (st *Stack) Peek() *uint256.Int {
	return &st.data[len(st.data)-1]
}

// Back returns a pointer to the n-th element from the top (0 = top).
func (st *Stack) Back(n int) *uint256.Int {
	return &st.data[len(st.data)-1-n]
}

// Swap1 through swapN exchange the top element with the n-th element
// from the top.
func (st *Stack) Swap(n int) {
	top := len(st.data) - 1
	st.data[top], st.data[top-n] = st.data[top-n], st.data[top]
}

// Dup pushes a copy of the n-th element from the top (1-indexed: Dup(1)
// duplicates the current top).
func (st *Stack) Dup(n int) {
	v := st.data[len(st.data)-n]
	st.data = append(st.data, v)
}

// Len returns the current stack depth.
func (st *Stack) Len() int { return len(st.data) }

// Data exposes the underlying slice, bottom-to-top, for tracing.
func (st *Stack) Data() []uint256.Int { return st.data }
