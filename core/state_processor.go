// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
//
// This file is a derived work, based on the go-ethereum library whose original
// notices appear below.
//
// It is distributed under a license compatible with the licensing terms of the
// original code from which it is derived.
//
// Much love to the original authors for their work.
// **********
// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package core

import (
	"bytes"
	"fmt"
	"math"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/core/state"
	"github.com/chainforge/evmcore/core/types"
	"github.com/chainforge/evmcore/core/vm"
	"github.com/chainforge/evmcore/crypto"
	"github.com/chainforge/evmcore/params"
)

// Engine applies consensus-specific block rewards once every
// transaction in a block has been processed (§4.8). Implemented by
// the consensus package's block/ommer reward engine.
type Engine interface {
	Finalize(chain ChainContext, header *types.Header, statedb *state.StateDB, txs []*types.Transaction, uncles []*types.Header, receipts types.Receipts) error
}

// Message is the normalized, signature-free view of a transaction that
// the transaction processor actually executes (§4.7): sender already
// recovered, gas price already resolved against the block base fee.
type Message struct {
	To         *common.Address
	From       common.Address
	Nonce      uint64
	Value      *big.Int
	GasLimit   uint64
	GasPrice   *big.Int
	GasFeeCap  *big.Int
	GasTipCap  *big.Int
	Data       []byte
	AccessList types.AccessList

	// SkipNonceChecks is set by callers simulating a transaction (e.g.
	// eth_call-style execution) outside of block processing, never by
	// the block executor.
	SkipNonceChecks bool
}

// TransactionToMessage recovers tx's sender under signer and resolves
// its effective gas price against baseFee (nil pre-London).
func TransactionToMessage(tx *types.Transaction, signer types.Signer, baseFee *big.Int) (*Message, error) {
	msg := &Message{
		Nonce:      tx.Nonce(),
		GasLimit:   tx.Gas(),
		GasPrice:   new(big.Int).Set(tx.GasPrice()),
		GasFeeCap:  new(big.Int).Set(tx.GasFeeCap()),
		GasTipCap:  new(big.Int).Set(tx.GasTipCap()),
		To:         tx.To(),
		Value:      tx.Value(),
		Data:       tx.Data(),
		AccessList: tx.AccessList(),
	}
	if msg.Value == nil {
		msg.Value = new(big.Int)
	}
	if baseFee != nil {
		msg.GasPrice = new(big.Int).Add(msg.GasTipCap, baseFee)
		if msg.GasPrice.Cmp(msg.GasFeeCap) > 0 {
			msg.GasPrice = new(big.Int).Set(msg.GasFeeCap)
		}
	}
	var err error
	msg.From, err = types.Sender(signer, tx)
	return msg, err
}

// IntrinsicGas computes the up-front gas cost of a transaction before
// any EVM execution (§4.7, §4.5): a base cost, calldata cost (cheaper
// for zero bytes, and cheaper again for non-zero bytes from Istanbul
// onward), an EIP-3860 init-code word cost for contract creation from
// Shanghai onward, and the EIP-2930 access-list cost.
func IntrinsicGas(data []byte, accessList types.AccessList, isContractCreation bool, fork params.Fork) (uint64, error) {
	var gas uint64
	if isContractCreation && fork >= params.Homestead {
		gas = params.TxGasContractCreation
	} else {
		gas = params.TxGas
	}
	if dataLen := uint64(len(data)); dataLen > 0 {
		z := uint64(bytes.Count(data, []byte{0}))
		nz := dataLen - z

		nonZeroGas := params.TxDataNonZeroGasFrontier
		if fork >= params.Istanbul {
			nonZeroGas = params.TxDataNonZeroGasEIP2028
		}
		if (math.MaxUint64-gas)/nonZeroGas < nz {
			return 0, ErrGasUintOverflow
		}
		gas += nz * nonZeroGas

		if (math.MaxUint64-gas)/params.TxDataZeroGas < z {
			return 0, ErrGasUintOverflow
		}
		gas += z * params.TxDataZeroGas

		if isContractCreation && fork >= params.Shanghai {
			words := toWordSize(dataLen)
			const initCodeWordGas = 2
			if (math.MaxUint64-gas)/initCodeWordGas < words {
				return 0, ErrGasUintOverflow
			}
			gas += words * initCodeWordGas
		}
	}
	if accessList != nil {
		gas += uint64(len(accessList)) * params.TxAccessListAddressGas
		var slots uint64
		for _, tuple := range accessList {
			slots += uint64(len(tuple.StorageKeys))
		}
		gas += slots * params.TxAccessListStorageKeyGas
	}
	return gas, nil
}

func toWordSize(size uint64) uint64 {
	if size > math.MaxUint64-31 {
		return math.MaxUint64/32 + 1
	}
	return (size + 31) / 32
}

// ExecutionResult is the outcome of running one message through the
// EVM, independent of whether execution itself succeeded (§4.7).
type ExecutionResult struct {
	UsedGas     uint64
	RefundedGas uint64
	Err         error
	ReturnData  []byte
}

// Failed reports whether EVM execution itself returned an error (out
// of gas, revert, invalid opcode, ...); it says nothing about whether
// the surrounding transaction was even eligible to run.
func (r *ExecutionResult) Failed() bool { return r.Err != nil }

// Return is the returned data, empty if execution failed.
func (r *ExecutionResult) Return() []byte {
	if r.Err != nil {
		return nil
	}
	return common.CopyBytes(r.ReturnData)
}

// Revert is the REVERT opcode's reason data, nil unless that is
// specifically why execution failed.
func (r *ExecutionResult) Revert() []byte {
	if r.Err != vm.ErrExecutionReverted {
		return nil
	}
	return common.CopyBytes(r.ReturnData)
}

// stateTransition drives one message through preCheck, intrinsic-gas
// deduction, the EVM call or create, and gas refund/return (§4.7's
// five numbered steps).
type stateTransition struct {
	gp           *GasPool
	msg          *Message
	gasRemaining uint64
	initialGas   uint64
	state        vm.StateDB
	evm          *vm.EVM
	config       *params.ChainConfig
	fork         params.Fork
}

// ApplyMessage computes the resulting state by applying msg against
// evm's state, drawing gas from gp.
func ApplyMessage(evm *vm.EVM, msg *Message, gp *GasPool, config *params.ChainConfig, blockNumber *big.Int, blockTime uint64) (*ExecutionResult, error) {
	st := &stateTransition{
		gp:     gp,
		evm:    evm,
		msg:    msg,
		state:  evm.StateDB(),
		config: config,
		fork:   config.ToFork(blockNumber, blockTime),
	}
	return st.execute()
}

func (st *stateTransition) to() common.Address {
	if st.msg.To == nil {
		return common.Address{}
	}
	return *st.msg.To
}

func (st *stateTransition) buyGas() error {
	mgval := new(big.Int).Mul(new(big.Int).SetUint64(st.msg.GasLimit), st.msg.GasPrice)
	balanceCheck := new(big.Int).Set(mgval)
	if st.msg.GasFeeCap != nil {
		balanceCheck = new(big.Int).Mul(new(big.Int).SetUint64(st.msg.GasLimit), st.msg.GasFeeCap)
	}
	balanceCheck.Add(balanceCheck, st.msg.Value)

	want, overflow := uint256.FromBig(balanceCheck)
	if overflow {
		return fmt.Errorf("%w: address %v required balance exceeds 256 bits", ErrInsufficientFunds, st.msg.From.Hex())
	}
	if have := st.state.GetBalance(st.msg.From); have.Cmp(want) < 0 {
		return fmt.Errorf("%w: address %v have %v want %v", ErrInsufficientFunds, st.msg.From.Hex(), have, want)
	}
	if err := st.gp.SubGas(st.msg.GasLimit); err != nil {
		return err
	}
	st.gasRemaining = st.msg.GasLimit
	st.initialGas = st.msg.GasLimit

	mgvalU256, _ := uint256.FromBig(mgval)
	st.state.SubBalance(st.msg.From, mgvalU256)
	return nil
}

func (st *stateTransition) preCheck() error {
	msg := st.msg
	if !msg.SkipNonceChecks {
		stNonce := st.state.GetNonce(msg.From)
		switch {
		case stNonce < msg.Nonce:
			return fmt.Errorf("%w: address %v, tx: %d state: %d", ErrNonceTooHigh, msg.From.Hex(), msg.Nonce, stNonce)
		case stNonce > msg.Nonce:
			return fmt.Errorf("%w: address %v, tx: %d state: %d", ErrNonceTooLow, msg.From.Hex(), msg.Nonce, stNonce)
		case stNonce+1 < stNonce:
			return fmt.Errorf("%w: address %v, nonce: %d", ErrNonceMax, msg.From.Hex(), stNonce)
		}
	}
	if st.fork >= params.London {
		if l := msg.GasFeeCap.BitLen(); l > 256 {
			return fmt.Errorf("%w: address %v, maxFeePerGas bit length: %d", ErrFeeCapVeryHigh, msg.From.Hex(), l)
		}
		if l := msg.GasTipCap.BitLen(); l > 256 {
			return fmt.Errorf("%w: address %v, maxPriorityFeePerGas bit length: %d", ErrTipVeryHigh, msg.From.Hex(), l)
		}
		if msg.GasFeeCap.Cmp(msg.GasTipCap) < 0 {
			return fmt.Errorf("%w: address %v, maxPriorityFeePerGas: %s, maxFeePerGas: %s", ErrTipAboveFeeCap, msg.From.Hex(), msg.GasTipCap, msg.GasFeeCap)
		}
		if st.evm.Context().BaseFee != nil {
			baseFee := st.evm.Context().BaseFee.ToBig()
			if msg.GasFeeCap.Cmp(baseFee) < 0 {
				return fmt.Errorf("%w: address %v, maxFeePerGas: %s, baseFee: %s", ErrFeeCapTooLow, msg.From.Hex(), msg.GasFeeCap, baseFee)
			}
		}
	}
	return st.buyGas()
}

func (st *stateTransition) execute() (*ExecutionResult, error) {
	if err := st.preCheck(); err != nil {
		return nil, err
	}

	msg := st.msg
	contractCreation := msg.To == nil

	gas, err := IntrinsicGas(msg.Data, msg.AccessList, contractCreation, st.fork)
	if err != nil {
		return nil, err
	}
	if st.gasRemaining < gas {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrIntrinsicGas, st.gasRemaining, gas)
	}
	st.gasRemaining -= gas

	value, overflow := uint256.FromBig(msg.Value)
	if overflow {
		return nil, fmt.Errorf("%w: address %v", ErrInsufficientFundsValue, msg.From.Hex())
	}

	if st.fork >= params.Shanghai && contractCreation && len(msg.Data) > params.MaxInitCodeSize {
		return nil, fmt.Errorf("core: max initcode size exceeded: have %d, limit %d", len(msg.Data), params.MaxInitCodeSize)
	}

	var (
		ret    []byte
		vmerr  error
		caller = vm.AccountRef(msg.From)
	)
	if contractCreation {
		ret, _, st.gasRemaining, vmerr = st.evm.Create(caller, msg.Data, st.gasRemaining, value)
	} else {
		st.state.SetNonce(msg.From, st.state.GetNonce(msg.From)+1)
		ret, st.gasRemaining, vmerr = st.evm.Call(caller, st.to(), msg.Data, st.gasRemaining, value)
	}

	refund := st.calcRefund()
	st.gasRemaining += refund
	st.returnGas()

	effectiveTip := new(big.Int).Set(msg.GasPrice)
	if st.fork >= params.London {
		baseFee := big.NewInt(0)
		if st.evm.Context().BaseFee != nil {
			baseFee = st.evm.Context().BaseFee.ToBig()
		}
		effectiveTip = new(big.Int).Sub(msg.GasFeeCap, baseFee)
		if effectiveTip.Cmp(msg.GasTipCap) > 0 {
			effectiveTip = new(big.Int).Set(msg.GasTipCap)
		}
	}
	fee, _ := uint256.FromBig(new(big.Int).Mul(new(big.Int).SetUint64(st.gasUsed()), effectiveTip))
	st.state.AddBalance(st.evm.Context().Coinbase, fee)

	return &ExecutionResult{
		UsedGas:     st.gasUsed(),
		RefundedGas: refund,
		Err:         vmerr,
		ReturnData:  ret,
	}, nil
}

func (st *stateTransition) calcRefund() uint64 {
	quotient := params.RefundQuotientLondon
	if st.fork < params.London {
		quotient = params.RefundQuotientFrontier
	}
	return vm.CappedRefund(st.gasUsed(), quotient, st.evm.RefundCounter())
}

func (st *stateTransition) returnGas() {
	remaining, _ := uint256.FromBig(new(big.Int).Mul(new(big.Int).SetUint64(st.gasRemaining), st.msg.GasPrice))
	st.state.AddBalance(st.msg.From, remaining)
	st.gp.AddGas(st.gasRemaining)
}

func (st *stateTransition) gasUsed() uint64 { return st.initialGas - st.gasRemaining }

// StateProcessor runs every transaction in a block against a StateDB
// and applies the consensus engine's block reward (§4.7, §4.8).
type StateProcessor struct {
	config *params.ChainConfig
	engine Engine
}

// NewStateProcessor builds a processor bound to config and engine.
func NewStateProcessor(config *params.ChainConfig, engine Engine) *StateProcessor {
	return &StateProcessor{config: config, engine: engine}
}

// Process runs block's transactions against statedb in order,
// returning their receipts, combined logs, and total gas used. An
// error here means the block is invalid and none of statedb's
// uncommitted changes should be persisted.
func (p *StateProcessor) Process(block *types.Block, chain ChainContext, statedb *state.StateDB, cfg vm.Config) (types.Receipts, []*types.Log, uint64, error) {
	var (
		receipts    types.Receipts
		usedGas     uint64
		header      = block.Header()
		blockHash   = block.Hash()
		blockNumber = block.Number()
		allLogs     []*types.Log
		gp          = new(GasPool).AddGas(block.GasLimit())
		signer      = types.MakeSigner(p.config.ChainID, p.config.IsBerlin(blockNumber, header.Time))
		blockCtx    = NewEVMBlockContext(header, chain, p.config, nil)
	)

	for i, tx := range block.Transactions() {
		msg, err := TransactionToMessage(tx, signer, header.BaseFee)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("core: could not apply tx %d [%v]: %w", i, tx.Hash().Hex(), err)
		}
		statedb.SetTxContext(tx.Hash(), i)
		if p.config.IsBerlin(blockNumber, header.Time) {
			statedb.PrepareAccessList(msg.From, msg.To, nil, toVMAccessList(msg.AccessList))
		}

		txCtx := NewEVMTxContext(msg)
		chainID, _ := uint256.FromBig(p.config.ChainID)
		evm := vm.NewEVM(p.config.ToFork(blockNumber, header.Time), statedb, blockCtx, txCtx, chainID, cfg)

		receipt, err := applyTransaction(msg, p.config, gp, statedb, blockNumber, blockHash, header.Time, tx, i, &usedGas, evm)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("core: could not apply tx %d [%v]: %w", i, tx.Hash().Hex(), err)
		}
		receipts = append(receipts, receipt)
		allLogs = append(allLogs, receipt.Logs...)
	}

	if p.engine != nil {
		if err := p.engine.Finalize(chain, header, statedb, block.Transactions(), block.Uncles(), receipts); err != nil {
			return nil, nil, 0, fmt.Errorf("core: engine finalization failed: %w", err)
		}
	}
	return receipts, allLogs, usedGas, nil
}

// applyTransaction runs msg's message through evm and builds its
// receipt. Receipts always carry the Byzantium+ status byte rather
// than a pre-Byzantium intermediate state root (§3 Receipt): the
// accounts cache commits a root once per block (persist), not once
// per transaction, so no intermediate per-transaction root exists to
// record.
func applyTransaction(msg *Message, config *params.ChainConfig, gp *GasPool, statedb *state.StateDB, blockNumber *big.Int, blockHash common.Hash, blockTime uint64, tx *types.Transaction, txIndex int, usedGas *uint64, evm *vm.EVM) (*types.Receipt, error) {
	result, err := ApplyMessage(evm, msg, gp, config, blockNumber, blockTime)
	if err != nil {
		return nil, err
	}
	*usedGas += result.UsedGas

	receipt := &types.Receipt{
		Type:              tx.Type(),
		CumulativeGasUsed: *usedGas,
	}
	if result.Failed() {
		receipt.Status = types.ReceiptStatusFailed
	} else {
		receipt.Status = types.ReceiptStatusSuccessful
	}
	receipt.TxHash = tx.Hash()
	receipt.GasUsed = result.UsedGas

	if msg.To == nil {
		receipt.ContractAddress = crypto.CreateAddress(msg.From, tx.Nonce())
	}

	receipt.Logs = statedb.GetLogs(tx.Hash(), blockNumber.Uint64(), blockHash)
	receipt.Bloom = types.CreateBloom(receipt.Logs)
	receipt.BlockHash = blockHash
	receipt.BlockNumber = blockNumber
	receipt.TransactionIndex = uint(txIndex)
	return receipt, nil
}
