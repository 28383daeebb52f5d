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
// Copyright 2016 The go-ethereum Authors
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

// Package core ties the accounts cache, transaction processor, and
// block executor together (§4.7, §4.8 of the execution core spec).
package core

import (
	"github.com/holiman/uint256"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/core/types"
	"github.com/chainforge/evmcore/core/vm"
	"github.com/chainforge/evmcore/params"
)

// ChainContext supports retrieving ancestor headers during block
// processing without the caller (the block executor) having to thread
// them through every call; GetHashFn below walks ParentHash links
// through it to answer the BLOCKHASH opcode.
type ChainContext interface {
	GetHeader(hash common.Hash, number uint64) *types.Header
}

// NewEVMBlockContext builds the block-wide values (§3 Header subset)
// the EVM needs for every transaction in one block.
func NewEVMBlockContext(header *types.Header, chain ChainContext, config *params.ChainConfig, author *common.Address) vm.BlockContext {
	ctx := vm.BlockContext{
		CanTransfer: CanTransfer,
		Transfer:    Transfer,
		GetHash:     GetHashFn(header, chain),
		Coinbase:    GetCoinbase(author, header),
		BlockNumber: header.Number.Uint64(),
		Time:        header.Time,
		GasLimit:    header.GasLimit,
	}
	if header.Difficulty != nil {
		d, _ := uint256.FromBig(header.Difficulty)
		ctx.Difficulty = d
	} else {
		ctx.Difficulty = new(uint256.Int)
	}
	if header.BaseFee != nil {
		bf, _ := uint256.FromBig(header.BaseFee)
		ctx.BaseFee = bf
	}

	// Shanghai onward: PREVRANDAO replaces DIFFICULTY (§4.4). The
	// randomness value is taken from the header's MixDigest field and
	// the DIFFICULTY value is set to 0.
	if config.ToFork(header.Number, header.Time) >= params.Shanghai {
		random := header.MixDigest
		ctx.Random = &random
		ctx.Difficulty = new(uint256.Int)
	}
	return ctx
}

// NewEVMTxContext builds the per-transaction values (§4.7) the EVM
// needs: sender, gas price, and the EIP-2930 access list.
func NewEVMTxContext(msg *Message) vm.TxContext {
	price := new(uint256.Int)
	if msg.GasPrice != nil {
		price, _ = uint256.FromBig(msg.GasPrice)
	}
	return vm.TxContext{
		Origin:     msg.From,
		GasPrice:   price,
		AccessList: toVMAccessList(msg.AccessList),
	}
}

// toVMAccessList converts the RLP-shaped access list into vm's own
// copy of the type, kept distinct so core/vm never imports core/types
// (see vm.AccessTuple's doc comment).
func toVMAccessList(al types.AccessList) []vm.AccessTuple {
	if al == nil {
		return nil
	}
	out := make([]vm.AccessTuple, len(al))
	for i, t := range al {
		out[i] = vm.AccessTuple{Address: t.Address, StorageKeys: t.StorageKeys}
	}
	return out
}

// GetHashFn returns a BLOCKHASH resolver that walks ParentHash links
// backward from ref, caching every hash it discovers along the way so
// repeated BLOCKHASH calls within one block don't re-walk the chain.
func GetHashFn(ref *types.Header, chain ChainContext) func(n uint64) common.Hash {
	var cache []common.Hash

	return func(n uint64) common.Hash {
		if ref.Number == nil || ref.Number.Uint64() <= n {
			return common.Hash{}
		}
		if len(cache) == 0 {
			cache = append(cache, ref.ParentHash)
		}
		if idx := ref.Number.Uint64() - n - 1; idx < uint64(len(cache)) {
			return cache[idx]
		}
		lastHash := cache[len(cache)-1]
		lastNumber := ref.Number.Uint64() - uint64(len(cache))

		for {
			header := chain.GetHeader(lastHash, lastNumber)
			if header == nil {
				break
			}
			cache = append(cache, header.ParentHash)
			lastHash = header.ParentHash
			lastNumber = header.Number.Uint64() - 1
			if n == lastNumber {
				return lastHash
			}
		}
		return common.Hash{}
	}
}

// CanTransfer reports whether addr's balance covers amount, without
// accounting for the gas the transfer itself costs.
func CanTransfer(db vm.StateDB, addr common.Address, amount *uint256.Int) bool {
	return db.GetBalance(addr).Cmp(amount) >= 0
}

// Transfer moves amount from sender to recipient.
func Transfer(db vm.StateDB, sender, recipient common.Address, amount *uint256.Int) {
	db.SubBalance(sender, amount)
	db.AddBalance(recipient, amount)
}

// GetCoinbase returns author if the caller supplied one (e.g. a miner
// proposing its own block before the header is final), otherwise the
// header's own recorded coinbase.
func GetCoinbase(author *common.Address, header *types.Header) common.Address {
	if author != nil {
		return *author
	}
	return header.Coinbase
}
