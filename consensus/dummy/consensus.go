// (c) 2019-2020, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dummy implements a simple fixed-difficulty consensus engine:
// header gas/base-fee validation (§4.9) and the post-transaction block
// and ommer reward (§4.8 step 6). There is no proof-of-work or
// proof-of-stake validator set here — "dummy" names what it isn't.
package dummy

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/holiman/uint256"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/consensus"
	"github.com/chainforge/evmcore/core"
	"github.com/chainforge/evmcore/core/state"
	"github.com/chainforge/evmcore/core/types"
	"github.com/chainforge/evmcore/params"
)

var (
	allowedFutureBlockTime = 10 * time.Second

	errInvalidBlockTime = errors.New("dummy: timestamp less than parent's")
	errUnclesUnsupported = errors.New("dummy: genesis block cannot have uncles")
)

// era block rewards (§4.8 step 6), wei.
var (
	frontierBlockReward       = big.NewInt(5_000_000_000_000_000_000)
	byzantiumBlockReward      = big.NewInt(3_000_000_000_000_000_000)
	constantinopleBlockReward = big.NewInt(2_000_000_000_000_000_000)
	big8                      = big.NewInt(8)
	big32                     = big.NewInt(32)
)

// Mode toggles validation behavior for test chains that don't want to
// build a fully header-valid fixture (e.g. a synthetic chain testing
// only the transaction processor).
type Mode struct {
	SkipHeaderValidation bool
}

// Engine is a fixed-difficulty stand-in for a real PoW/PoS engine: it
// validates a header's gas limit and base fee against its parent and
// applies the block/ommer reward once a block's transactions have run.
type Engine struct {
	config *params.ChainConfig
	mode   Mode
	now    func() time.Time
}

// New returns a fully validating engine bound to config.
func New(config *params.ChainConfig) *Engine {
	return &Engine{config: config, now: time.Now}
}

// NewFaker returns an engine that skips header validation, for tests
// that drive the block executor against hand-built headers.
func NewFaker(config *params.ChainConfig) *Engine {
	return &Engine{config: config, mode: Mode{SkipHeaderValidation: true}, now: time.Now}
}

// NewFullFaker is NewFaker with a chain config (chain ID 1) that
// activates every fork at genesis.
func NewFullFaker() *Engine {
	return NewFaker(params.AllForksAtGenesisChainConfig(1))
}

func (eng *Engine) Author(header *types.Header) (common.Address, error) {
	return header.Coinbase, nil
}

// VerifyHeader checks header against its parent: monotonic timestamp,
// contiguous number, and the §4.9 gas-limit/base-fee rules.
func (eng *Engine) VerifyHeader(chain consensus.ChainHeaderReader, header *types.Header) error {
	if eng.mode.SkipHeaderValidation {
		return nil
	}
	number := header.Number.Uint64()
	if number == 0 {
		return nil
	}
	parent := chain.GetHeader(header.ParentHash, number-1)
	if parent == nil {
		return consensus.ErrUnknownAncestor
	}
	if header.Time < parent.Time {
		return errInvalidBlockTime
	}
	if header.Time > uint64(eng.now().Add(allowedFutureBlockTime).Unix()) {
		return consensus.ErrFutureBlock
	}
	if diff := new(big.Int).Sub(header.Number, parent.Number); diff.Cmp(big.NewInt(1)) != 0 {
		return consensus.ErrInvalidNumber
	}
	return eng.verifyGasAndBaseFee(header, parent)
}

func (eng *Engine) verifyGasAndBaseFee(header, parent *types.Header) error {
	londonTransition := !eng.config.IsLondon(parent.Number, parent.Time) && eng.config.IsLondon(header.Number, header.Time)
	if !params.ValidateGasLimit(parent.GasLimit, header.GasLimit, londonTransition) {
		return fmt.Errorf("dummy: invalid gas limit: parent %d, header %d", parent.GasLimit, header.GasLimit)
	}
	if !eng.config.IsLondon(header.Number, header.Time) {
		return nil
	}
	var expected *big.Int
	if londonTransition {
		expected = new(big.Int).SetUint64(eng.config.InitialBaseFee())
	} else {
		expected = params.CalcBaseFee(parent.GasLimit, parent.GasUsed, parent.BaseFee)
	}
	if header.BaseFee == nil || header.BaseFee.Cmp(expected) != 0 {
		return fmt.Errorf("dummy: invalid base fee: have %v, want %v", header.BaseFee, expected)
	}
	return nil
}

// CalcDifficulty returns a fixed difficulty: this engine fakes
// proof-of-work entirely rather than modeling its target adjustment.
func (eng *Engine) CalcDifficulty(chain consensus.ChainHeaderReader, time uint64, parent *types.Header) *big.Int {
	return big.NewInt(1)
}

// Finalize applies the block and ommer reward (§4.8 step 6),
// satisfying core.Engine so the block executor can drive it directly.
func (eng *Engine) Finalize(chain core.ChainContext, header *types.Header, statedb *state.StateDB, txs []*types.Transaction, uncles []*types.Header, receipts types.Receipts) error {
	if len(uncles) > 0 && header.Number.Uint64() == 0 {
		return errUnclesUnsupported
	}
	accumulateRewards(eng.config, statedb, header, uncles)
	return nil
}

func blockReward(config *params.ChainConfig, header *types.Header) *big.Int {
	switch fork := config.ToFork(header.Number, header.Time); {
	case fork >= params.Paris:
		return new(big.Int)
	case fork >= params.Constantinople:
		return new(big.Int).Set(constantinopleBlockReward)
	case fork >= params.Byzantium:
		return new(big.Int).Set(byzantiumBlockReward)
	default:
		return new(big.Int).Set(frontierBlockReward)
	}
}

// accumulateRewards credits the miner and any ommer coinbases: miner
// gets base + base/32 per ommer; each ommer gets
// base*(8+ommerNumber-blockNumber)/8 (§4.8 step 6).
func accumulateRewards(config *params.ChainConfig, statedb *state.StateDB, header *types.Header, uncles []*types.Header) {
	base := blockReward(config, header)
	if base.Sign() == 0 {
		return
	}
	reward := new(big.Int).Set(base)
	r := new(big.Int)
	for _, uncle := range uncles {
		r.Add(uncle.Number, big8)
		r.Sub(r, header.Number)
		r.Mul(r, base)
		r.Div(r, big8)
		addBalance(statedb, uncle.Coinbase, r)

		r.Div(base, big32)
		reward.Add(reward, r)
	}
	addBalance(statedb, header.Coinbase, reward)
}

func addBalance(statedb *state.StateDB, addr common.Address, wei *big.Int) {
	amount, _ := uint256.FromBig(wei)
	statedb.AddBalance(addr, amount)
}
