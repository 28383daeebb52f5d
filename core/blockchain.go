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
// Copyright 2014 The go-ethereum Authors
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
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/core/state"
	"github.com/chainforge/evmcore/core/types"
	"github.com/chainforge/evmcore/core/vm"
	"github.com/chainforge/evmcore/kv"
	"github.com/chainforge/evmcore/metrics"
	"github.com/chainforge/evmcore/params"
	"github.com/chainforge/evmcore/rlp"
)

// key prefixes for the canonical chain store (§6): "H" indexes a
// block number to its canonical hash, "h"/"b"/"r" index a block hash
// to its header/body/receipts. Trie node bytes share the same kv.Store
// but are keyed by their own digest, never by these prefixes.
const (
	prefixCanonical = 'H'
	prefixHeader    = 'h'
	prefixBody      = 'b'
	prefixReceipts  = 'r'
)

func canonicalKey(number uint64) []byte {
	key := make([]byte, 9)
	key[0] = prefixCanonical
	binary.BigEndian.PutUint64(key[1:], number)
	return key
}

func headerKey(hash common.Hash) []byte   { return append([]byte{prefixHeader}, hash[:]...) }
func bodyKey(hash common.Hash) []byte     { return append([]byte{prefixBody}, hash[:]...) }
func receiptsKey(hash common.Hash) []byte { return append([]byte{prefixReceipts}, hash[:]...) }

func loadHeader(store kv.Store, hash common.Hash) *types.Header {
	enc, ok := store.Get(headerKey(hash))
	if !ok {
		return nil
	}
	header := new(types.Header)
	if err := rlp.DecodeBytes(enc, header); err != nil {
		return nil
	}
	return header
}

func loadBody(store kv.Store, hash common.Hash) *types.Body {
	enc, ok := store.Get(bodyKey(hash))
	if !ok {
		return nil
	}
	body := new(types.Body)
	if err := rlp.DecodeBytes(enc, body); err != nil {
		return nil
	}
	return body
}

func loadReceipts(store kv.Store, hash common.Hash) types.Receipts {
	enc, ok := store.Get(receiptsKey(hash))
	if !ok {
		return nil
	}
	var receipts types.Receipts
	if err := rlp.DecodeBytes(enc, &receipts); err != nil {
		return nil
	}
	return receipts
}

func canonicalHash(store kv.Store, number uint64) (common.Hash, bool) {
	enc, ok := store.Get(canonicalKey(number))
	if !ok || len(enc) != common.HashLength {
		return common.Hash{}, false
	}
	return common.BytesToHash(enc), true
}

// storeChainContext adapts a kv.Store into the ChainContext the EVM's
// BLOCKHASH opcode needs (§4.6), reading headers already written to
// store even if store is an in-flight transaction that has not yet
// committed (persistBlocks writes each header before processing the
// next, so ancestor lookups within one batch still resolve).
type storeChainContext struct{ store kv.Store }

func (c storeChainContext) GetHeader(hash common.Hash, number uint64) *types.Header {
	header := loadHeader(c.store, hash)
	if header == nil || header.Number == nil || header.Number.Uint64() != number {
		return nil
	}
	return header
}

// Result reports the outcome of one persistBlocks batch (§6): the
// hashes appended, in order, and the new canonical tip.
type Result struct {
	Accepted []common.Hash
	NewHead  *types.Header
}

// ChainStore is the canonical, linear block store and executor (§4.8,
// §6): it holds the single KV store backing every trie, header, body,
// and receipt list, and the one consensus engine used to finalize
// blocks. Callers may not run persistBlocks concurrently against the
// same store (§5: "multiple concurrent block-execution calls ...
// disallowed").
type ChainStore struct {
	mu     sync.RWMutex
	db     kv.Store
	config *params.ChainConfig
	engine Engine
	vmCfg  vm.Config

	genesisHeader *types.Header
	bestHeader    *types.Header

	metrics *metrics.Metrics
}

// SetMetrics attaches a collector set that PersistBlocks reports block
// throughput to. A nil *ChainStore receiver's metrics stay nil, and
// every recording call is a no-op, so callers that don't care about
// observability can skip this entirely.
func (cs *ChainStore) SetMetrics(m *metrics.Metrics) {
	cs.metrics = m
}

// NewChainStore opens db's canonical chain, seeding it with genesis if
// no block has ever been written. genesis's state must already be
// committed into db at genesis.Header().Root by the caller (genesis
// allocation is outside this package's concerns; §6's Producer
// contract hands this core a pre-configured KV adapter).
func NewChainStore(db kv.Store, config *params.ChainConfig, engine Engine, genesis *types.Block) (*ChainStore, error) {
	cs := &ChainStore{db: db, config: config, engine: engine}

	if hash, ok := canonicalHash(db, 0); ok {
		existing := loadHeader(db, hash)
		if existing == nil {
			return nil, fmt.Errorf("core: canonical genesis hash %s recorded but header missing", hash.Hex())
		}
		cs.genesisHeader = existing
		cs.bestHeader = existing
		best := existing
		for {
			child, ok := canonicalHash(db, best.Number.Uint64()+1)
			if !ok {
				break
			}
			header := loadHeader(db, child)
			if header == nil {
				break
			}
			best = header
		}
		cs.bestHeader = best
		return cs, nil
	}

	if genesis == nil {
		return nil, fmt.Errorf("core: no genesis block recorded and none supplied")
	}
	header := genesis.Header()
	hash := header.Hash()
	enc, err := header.EncodeRLP()
	if err != nil {
		return nil, fmt.Errorf("core: encode genesis header: %w", err)
	}
	bodyEnc, err := rlp.EncodeToBytes(genesis.Body())
	if err != nil {
		return nil, fmt.Errorf("core: encode genesis body: %w", err)
	}
	db.Put(headerKey(hash), enc)
	db.Put(bodyKey(hash), bodyEnc)
	db.Put(receiptsKey(hash), mustEncodeReceipts(nil))
	db.Put(canonicalKey(0), hash[:])

	cs.genesisHeader = header
	cs.bestHeader = header
	return cs, nil
}

func mustEncodeReceipts(receipts types.Receipts) []byte {
	enc, err := rlp.EncodeToBytes(receipts)
	if err != nil {
		// Receipts is always a plain slice of *Receipt; only a
		// reflect-unsupported field type could make this fail, and
		// Receipt carries none.
		panic(fmt.Sprintf("core: encode receipts: %v", err))
	}
	return enc
}

// GetHeader satisfies ChainContext for callers outside an active
// persistBlocks batch.
func (cs *ChainStore) GetHeader(hash common.Hash, number uint64) *types.Header {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return storeChainContext{cs.db}.GetHeader(hash, number)
}

// GenesisHash returns the hash of block 0 (§6: genesisHash()).
func (cs *ChainStore) GenesisHash() common.Hash {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.genesisHeader.Hash()
}

// GetBlockHeaderByHash returns the header with the given hash, or nil
// if unknown (§6: getBlockHeader(hashOrNumber), the hash-keyed form).
func (cs *ChainStore) GetBlockHeaderByHash(hash common.Hash) *types.Header {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return loadHeader(cs.db, hash)
}

// GetBlockHeaderByNumber returns the canonical header at number, or
// nil if the chain isn't that long (§6: getBlockHeader(hashOrNumber),
// the number-keyed form).
func (cs *ChainStore) GetBlockHeaderByNumber(number uint64) *types.Header {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	hash, ok := canonicalHash(cs.db, number)
	if !ok {
		return nil
	}
	return loadHeader(cs.db, hash)
}

// GetBestBlockHeader returns the canonical tip (§6: getBestBlockHeader()).
func (cs *ChainStore) GetBestBlockHeader() *types.Header {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.bestHeader
}

// GetSuccessorHeader returns h's canonical child, or nil if h is the
// tip or unknown (§6: getSuccessorHeader(h)).
func (cs *ChainStore) GetSuccessorHeader(h common.Hash) *types.Header {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	parent := loadHeader(cs.db, h)
	if parent == nil || parent.Number == nil {
		return nil
	}
	childHash, ok := canonicalHash(cs.db, parent.Number.Uint64()+1)
	if !ok {
		return nil
	}
	child := loadHeader(cs.db, childHash)
	if child == nil || child.ParentHash != h {
		return nil
	}
	return child
}

// GetBody returns the body stored under hash, or nil if unknown.
func (cs *ChainStore) GetBody(hash common.Hash) *types.Body {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return loadBody(cs.db, hash)
}

// GetReceipts returns the receipts stored under hash, or nil if unknown.
func (cs *ChainStore) GetReceipts(hash common.Hash) types.Receipts {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return loadReceipts(cs.db, hash)
}

// PersistBlocks validates and applies headers/bodies against the
// current canonical head, atomically (§4.8: the exact nine steps).
// headers[0]'s parent must be the current head; every subsequent
// header must chain directly off the previous one in the batch — this
// core only ever extends a single line, it does not arbitrate forks.
func (cs *ChainStore) PersistBlocks(headers []*types.Header, bodies []*types.Body) (*Result, error) {
	if len(headers) != len(bodies) {
		return nil, fmt.Errorf("core: %d headers but %d bodies", len(headers), len(bodies))
	}
	if len(headers) == 0 {
		return &Result{}, nil
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	txn := cs.db.BeginTransaction()
	chain := storeChainContext{txn}
	processor := NewStateProcessor(cs.config, cs.engine)

	parent := cs.bestHeader
	result := &Result{}

	for i, header := range headers {
		if header.ParentHash != parent.Hash() {
			txn.Dispose()
			return nil, ErrParentNotFound
		}

		body := bodies[i]
		start := time.Now()
		if err := cs.applyBlock(txn, chain, processor, parent, header, body); err != nil {
			txn.Dispose()
			return nil, err
		}
		cs.metrics.ObserveBlock(len(body.Transactions), header.GasUsed, time.Since(start))

		result.Accepted = append(result.Accepted, header.Hash())
		parent = header
	}

	if err := txn.Commit(); err != nil {
		return nil, fmt.Errorf("core: commit block batch: %w", err)
	}
	cs.bestHeader = parent
	result.NewHead = parent
	return result, nil
}

// applyBlock runs the nine steps of §4.8 for one block against txn,
// buffering every write (trie nodes, header, body, receipts, canonical
// index) in txn without committing it.
func (cs *ChainStore) applyBlock(txn kv.Txn, chain ChainContext, processor *StateProcessor, parent, header *types.Header, body *types.Body) error {
	number := header.Number.Uint64()

	txRoot, err := types.DeriveTxHash(body.Transactions)
	if err != nil {
		return fmt.Errorf("core: derive tx root: %w", err)
	}
	if txRoot != header.TxHash {
		return &BadBlockError{Kind: BadBlockTxRoot, Have: txRoot, Want: header.TxHash, Number: number}
	}
	ommersHash, err := types.CalcUncleHash(body.Uncles)
	if err != nil {
		return fmt.Errorf("core: derive ommers hash: %w", err)
	}
	if ommersHash != header.UncleHash {
		return &BadBlockError{Kind: BadBlockOmmersHash, Have: ommersHash, Want: header.UncleHash, Number: number}
	}

	londonTransition := !cs.config.IsLondon(parent.Number, parent.Time) && cs.config.IsLondon(header.Number, header.Time)
	if !params.ValidateGasLimit(parent.GasLimit, header.GasLimit, londonTransition) {
		return &BadBlockError{Kind: BadBlockGasLimit, Have: header.GasLimit, Want: parent.GasLimit, Number: number}
	}
	if cs.config.IsLondon(header.Number, header.Time) {
		var want *big.Int
		if londonTransition {
			want = new(big.Int).SetUint64(cs.config.InitialBaseFee())
		} else {
			want = params.CalcBaseFee(parent.GasLimit, parent.GasUsed, parent.BaseFee)
		}
		if header.BaseFee == nil || header.BaseFee.Cmp(want) != 0 {
			return &BadBlockError{Kind: BadBlockBaseFee, Have: header.BaseFee, Want: want, Number: number}
		}
	}

	pruneEmpty := cs.config.ToFork(header.Number, header.Time) >= params.SpuriousDragon
	statedb, err := state.New(parent.Root, txn, pruneEmpty)
	if err != nil {
		return fmt.Errorf("core: open state at parent root %s: %w", parent.Root.Hex(), err)
	}

	block := types.NewBlock(header, body.Transactions, body.Uncles)
	receipts, logs, usedGas, err := processor.Process(block, chain, statedb, cs.vmCfg)
	if err != nil {
		return err
	}

	stateRoot, err := statedb.Commit()
	if err != nil {
		return fmt.Errorf("core: commit state: %w", err)
	}
	if stateRoot != header.Root {
		return &BadBlockError{Kind: BadBlockStateRoot, Have: stateRoot, Want: header.Root, Number: number}
	}

	bloom := types.CreateBloom(logs)
	if bloom != header.Bloom {
		return &BadBlockError{Kind: BadBlockBloom, Have: bloom, Want: header.Bloom, Number: number}
	}
	receiptsRoot, err := types.DeriveReceiptHash(receipts)
	if err != nil {
		return fmt.Errorf("core: derive receipts root: %w", err)
	}
	if receiptsRoot != header.ReceiptHash {
		return &BadBlockError{Kind: BadBlockReceiptRoot, Have: receiptsRoot, Want: header.ReceiptHash, Number: number}
	}
	if usedGas != header.GasUsed {
		return &BadBlockError{Kind: BadBlockGasUsed, Have: usedGas, Want: header.GasUsed, Number: number}
	}

	hash := header.Hash()
	headerEnc, err := header.EncodeRLP()
	if err != nil {
		return fmt.Errorf("core: encode header: %w", err)
	}
	bodyEnc, err := rlp.EncodeToBytes(body)
	if err != nil {
		return fmt.Errorf("core: encode body: %w", err)
	}
	txn.Put(headerKey(hash), headerEnc)
	txn.Put(bodyKey(hash), bodyEnc)
	txn.Put(receiptsKey(hash), mustEncodeReceipts(receipts))
	txn.Put(canonicalKey(number), hash[:])
	return nil
}
