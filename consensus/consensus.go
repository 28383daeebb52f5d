// (c) 2019-2020, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package consensus defines the block-reward/header-validation engine
// contract the block executor drives once a block's transactions have
// been applied (§4.8 step 6).
package consensus

import (
	"errors"
	"math/big"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/core/types"
	"github.com/chainforge/evmcore/params"
)

var (
	ErrUnknownAncestor = errors.New("consensus: unknown ancestor")
	ErrFutureBlock     = errors.New("consensus: block in the future")
	ErrInvalidNumber   = errors.New("consensus: invalid block number")
)

// ChainHeaderReader supplies the ancestor lookups and chain config a
// header-validation engine needs, a superset of core.ChainContext (the
// block executor passes a value satisfying both).
type ChainHeaderReader interface {
	Config() *params.ChainConfig
	GetHeader(hash common.Hash, number uint64) *types.Header
	GetHeaderByNumber(number uint64) *types.Header
}

// Engine is a pluggable consensus engine: block authorship, header
// validation and mining difficulty. It has no Finalize method; the
// post-transaction block reward (§4.8 step 6) goes through the block
// executor's separate core.Engine interface. VerifyHeader/CalcDifficulty
// are consulted by chain code that validates headers before executing
// their bodies.
type Engine interface {
	Author(header *types.Header) (common.Address, error)
	VerifyHeader(chain ChainHeaderReader, header *types.Header) error
	CalcDifficulty(chain ChainHeaderReader, time uint64, parent *types.Header) *big.Int
}
