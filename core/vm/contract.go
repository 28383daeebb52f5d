// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/holiman/uint256"

	"github.com/chainforge/evmcore/common"
)

// Contract represents one call frame's view of the code it is
// executing: the running code, its caller/address identity, and the
// value/input it was invoked with (§4.6).
type Contract struct {
	CallerAddress common.Address
	caller        ContractRef
	self          ContractRef

	Code     []byte
	CodeHash common.Hash
	CodeAddr *common.Address
	Input    []byte

	value *uint256.Int

	Gas uint64

	IsDelegateCall bool

	analysis bitvec
}

// ContractRef is anything addressable as a contract caller/callee.
type ContractRef interface {
	Address() common.Address
}

// AccountRef implements ContractRef for bare addresses (EOAs calling
// in, or intermediate refs without a full Contract).
type AccountRef common.Address

func (ar AccountRef) Address() common.Address { return common.Address(ar) }

// NewContract returns a Contract ready to execute code on behalf of
// self, invoked by caller with value and gas.
func NewContract(caller, self ContractRef, value *uint256.Int, gas uint64) *Contract {
	c := &Contract{caller: caller, self: self, Gas: gas, value: value}
	if caller != nil {
		c.CallerAddress = caller.Address()
	}
	return c
}

// Address returns the address this contract is executing as.
func (c *Contract) Address() common.Address { return c.self.Address() }

// Value returns the wei value this call was invoked with.
func (c *Contract) Value() *uint256.Int {
	if c.value == nil {
		return uint256.NewInt(0)
	}
	return c.value
}

// SetCode attaches code (and its hash, for jumpdest-analysis caching)
// to the contract.
func (c *Contract) SetCode(addr common.Hash, code []byte) {
	c.Code = code
	c.CodeHash = addr
}

// SetCallCode sets the contract's address and code for CALLCODE /
// DELEGATECALL, where execution context stays self but code comes
// from codeAddr.
func (c *Contract) SetCallCode(codeAddr *common.Address, hash common.Hash, code []byte) {
	c.Code = code
	c.CodeHash = hash
	c.CodeAddr = codeAddr
}

// validJumpdest reports whether dest is a JUMPDEST reachable as a jump
// target (not inside PUSH immediate data).
func (c *Contract) validJumpdest(dest uint64) bool {
	if dest >= uint64(len(c.Code)) {
		return false
	}
	if OpCode(c.Code[dest]) != JUMPDEST {
		return false
	}
	return c.isCode(dest)
}

// isCode reports whether pos lies on a genuine instruction boundary,
// not within a PUSH's immediate argument, using a lazily computed
// bit-per-byte analysis of the contract's code.
func (c *Contract) isCode(pos uint64) bool {
	if c.analysis == nil {
		c.analysis = codeBitmap(c.Code)
	}
	return c.analysis.codeSegment(pos)
}

// bitvec is a bit-per-code-byte map: 1 means "this byte begins an
// instruction," 0 means "this byte is PUSH immediate data."
type bitvec []byte

func (bits bitvec) set(pos uint64) { bits[pos/8] |= 0x80 >> (pos % 8) }

func (bits bitvec) codeSegment(pos uint64) bool {
	return (bits[pos/8] & (0x80 >> (pos % 8))) != 0
}

// codeBitmap performs the standard single pass over code marking every
// non-PUSH-immediate byte as a valid instruction start.
func codeBitmap(code []byte) bitvec {
	bits := make(bitvec, len(code)/8+1+1)
	for pc := uint64(0); pc < uint64(len(code)); {
		bits.set(pc)
		op := OpCode(code[pc])
		if op.IsPush() {
			pc += uint64(op.PushSize()) + 1
		} else {
			pc++
		}
	}
	return bits
}
