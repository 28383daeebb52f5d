// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import "github.com/holiman/uint256"

// Memory is the EVM's byte-addressable, word-aligned scratch space
// (§3, §4.6). It grows in 32-byte words and is never shrunk within a
// single call frame; gas for each expansion is charged by the
// interpreter via memoryGasCost before Resize is invoked.
type Memory struct {
	store []byte
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory { return &Memory{} }

// Len returns the current size in bytes (always a multiple of 32).
func (m *Memory) Len() int { return len(m.store) }

// Resize grows the memory to at least size bytes, zero-filling the new
// region. size must already be rounded up to a word boundary by the
// caller (memoryGasCost / toWordSize does this).
func (m *Memory) Resize(size uint64) {
	if uint64(len(m.store)) >= size {
		return
	}
	grown := make([]byte, size)
	copy(grown, m.store)
	m.store = grown
}

// Set writes value into the memory region [offset, offset+len(value)).
// The caller must have already grown the memory to cover this range.
func (m *Memory) Set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	if offset+size > uint64(len(m.store)) {
		panic("vm: memory write out of bounds, caller must Resize first")
	}
	copy(m.store[offset:offset+size], value)
}

// Set32 writes val as a 32-byte big-endian word at offset.
func (m *Memory) Set32(offset uint64, val *uint256.Int) {
	if offset+32 > uint64(len(m.store)) {
		panic("vm: memory write out of bounds, caller must Resize first")
	}
	val.WriteToSlice(m.store[offset : offset+32])
}

// GetCopy returns a freshly allocated copy of [offset, offset+size).
func (m *Memory) GetCopy(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	cpy := make([]byte, size)
	copy(cpy, m.store[offset:offset+size])
	return cpy
}

// GetPtr returns a slice aliasing memory in [offset, offset+size); the
// caller must not retain it beyond the current opcode.
func (m *Memory) GetPtr(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	return m.store[offset : offset+size]
}

// Data exposes the full backing store for tracing/debugging.
func (m *Memory) Data() []byte { return m.store }

// toWordSize rounds size up to the next multiple of 32, as required
// before any Resize call (§4.5 memory-expansion cost formula operates
// on word counts).
func toWordSize(size uint64) uint64 {
	if size > (^uint64(0)-31)/1 {
		return ^uint64(0) / 32
	}
	return (size + 31) / 32
}
