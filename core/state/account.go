// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state implements the accounts cache: a mutable in-memory view
// over a root Hash identifying an accounts trie (§4.3 of the execution
// core spec), backed by the hexary trie and KV store packages.
package state

import (
	"math/big"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/core/types"
	"github.com/chainforge/evmcore/trie"
)

// emptyStorageRoot is the root hash of an account with no storage.
var emptyStorageRoot = trie.EmptyRoot

// account is the RLP shape persisted at a trie leaf (§3 Account):
// nonce, balance, storage trie root, and code hash. It is distinct from
// the exported, vm-facing balance type (*uint256.Int) so the consensus
// encoding never depends on the width the interpreter happens to use.
type account struct {
	Nonce    uint64
	Balance  *big.Int
	Root     common.Hash
	CodeHash common.Hash
}

// emptyAccount is the value a brand-new account starts from: zero
// nonce and balance, empty storage trie, empty code.
func emptyAccount() account {
	return account{
		Balance:  new(big.Int),
		Root:     emptyStorageRoot,
		CodeHash: types.EmptyCodeHash,
	}
}

func (a *account) isEmpty() bool {
	return a.Nonce == 0 && (a.Balance == nil || a.Balance.Sign() == 0) && a.CodeHash == types.EmptyCodeHash
}
