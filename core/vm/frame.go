// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/holiman/uint256"

	"github.com/chainforge/evmcore/common"
)

// callKind distinguishes the call-family operation a frame was opened
// to perform, since CALL/CALLCODE/DELEGATECALL/STATICCALL/CREATE/
// CREATE2 differ in value transfer, context inheritance, and static
// enforcement.
type callKind int

const (
	callKindCall callKind = iota
	callKindCallCode
	callKindDelegateCall
	callKindStaticCall
	callKindCreate
	callKindCreate2
)

// frame is one activation record of the interpreter's explicit call
// stack (§9 DESIGN NOTES: the interpreter never recurses through Go's
// call stack for CALL-family opcodes; instead run() returns a
// pendingCall describing the child invocation, and the driver loop in
// Interpreter.Run pushes a new frame, executes it to completion, and
// resumes the parent with the child's result pushed onto its stack).
type frame struct {
	contract *Contract
	stack    *Stack
	memory   *Memory
	gasMeter *GasMeter

	pc uint64

	static bool // true once inside a STATICCALL boundary, for the whole subtree

	retOffset uint64 // where the parent wants the child's return data copied
	retSize   uint64

	returnData []byte // this frame's own RETURN/REVERT output, for RETURNDATACOPY

	lastCallReturnData []byte // most recent child call's return data

	snapshotID int // state snapshot taken when this frame (as a child) was opened

	isCreate   bool // true for CREATE/CREATE2 frames, which deploy code on success
	createAddr common.Address
}

// pendingCall is returned by run() when a CALL-family or CREATE-family
// opcode needs a child frame executed before the parent can resume. It
// is nil when the frame ran to natural completion (STOP/RETURN/REVERT
// or an error).
type pendingCall struct {
	kind   callKind
	caller ContractRef
	addr   common.Address // callee for CALL family; ignored for CREATE family
	value  *uint256.Int
	input  []byte
	gas    uint64

	retOffset uint64
	retSize   uint64

	salt *uint256.Int // CREATE2 only
}
