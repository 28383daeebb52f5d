// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package core

import (
	"errors"
	"fmt"
)

// Transaction-validation errors surfaced by the transaction processor
// (§4.7, §7 error taxonomy). A transaction rejected with one of these
// never reaches the EVM, and the block containing it is invalid.
var (
	ErrNonceTooLow            = errors.New("core: nonce too low")
	ErrNonceTooHigh           = errors.New("core: nonce too high")
	ErrNonceMax               = errors.New("core: nonce has max value")
	ErrInsufficientFunds      = errors.New("core: insufficient funds for gas * price + value")
	ErrInsufficientFundsValue = errors.New("core: insufficient funds to transfer value")
	ErrIntrinsicGas           = errors.New("core: intrinsic gas too low")
	ErrGasLimitReached        = errors.New("core: gas limit reached")
	ErrFeeCapTooLow           = errors.New("core: max fee per gas less than block base fee")
	ErrTipAboveFeeCap         = errors.New("core: max priority fee per gas higher than max fee per gas")
	ErrFeeCapVeryHigh         = errors.New("core: max fee per gas higher than 2^256-1")
	ErrTipVeryHigh            = errors.New("core: max priority fee per gas higher than 2^256-1")
	ErrGasUintOverflow        = errors.New("core: gas uint64 overflow")
)

// ErrParentNotFound is returned by the block executor when a batch's
// first header's parent does not match the current canonical head.
var ErrParentNotFound = errors.New("core: parent not found")

// BadBlockKind names which of a header's self-declared commitments
// (§7: "BadBlock{Bloom,ReceiptRoot,StateRoot,TxRoot,OmmersHash,
// GasLimit,BaseFee}") failed to verify against the block executor's
// own recomputation.
type BadBlockKind string

const (
	BadBlockTxRoot      BadBlockKind = "TxRoot"
	BadBlockOmmersHash  BadBlockKind = "OmmersHash"
	BadBlockGasLimit    BadBlockKind = "GasLimit"
	BadBlockBaseFee     BadBlockKind = "BaseFee"
	BadBlockStateRoot   BadBlockKind = "StateRoot"
	BadBlockBloom       BadBlockKind = "Bloom"
	BadBlockReceiptRoot BadBlockKind = "ReceiptRoot"
	BadBlockGasUsed     BadBlockKind = "GasUsed"
)

// BadBlockError reports a block whose header disagrees with what the
// executor independently recomputed; persistBlocks aborts its whole
// batch without persisting anything when this occurs (§4.8, §7).
type BadBlockError struct {
	Kind   BadBlockKind
	Have   any
	Want   any
	Number uint64
}

func (e *BadBlockError) Error() string {
	return fmt.Sprintf("core: bad block %d: %s mismatch: have %v, want %v", e.Number, e.Kind, e.Have, e.Want)
}
