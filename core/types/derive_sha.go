// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/kv"
	"github.com/chainforge/evmcore/rlp"
	"github.com/chainforge/evmcore/trie"
)

// DeriveSha computes the root of a fresh, non-secure trie keyed by the
// RLP-encoded index of each of the n leaves encode produces (§3 block
// header TxHash/ReceiptHash: rlp(i)-keyed index tries, not the
// keccak-keyed accounts/storage tries). The trie is
// built over a throwaway store: only the root digest is ever read
// back, so nothing needs to persist past this call.
func DeriveSha(n int, encode func(i int) ([]byte, error)) (common.Hash, error) {
	t, err := trie.New(common.Hash{}, kv.NewMemStore(), false)
	if err != nil {
		return common.Hash{}, err
	}
	for i := 0; i < n; i++ {
		key, err := rlp.EncodeToBytes(uint(i))
		if err != nil {
			return common.Hash{}, err
		}
		val, err := encode(i)
		if err != nil {
			return common.Hash{}, err
		}
		if err := t.Put(key, val); err != nil {
			return common.Hash{}, err
		}
	}
	return t.RootHash(), nil
}

// DeriveTxHash computes a block's TxHash from its transaction list.
func DeriveTxHash(txs []*Transaction) (common.Hash, error) {
	if len(txs) == 0 {
		return trie.EmptyRoot, nil
	}
	return DeriveSha(len(txs), func(i int) ([]byte, error) { return txs[i].EncodeRLP() })
}

// DeriveReceiptHash computes a block's ReceiptHash from its receipts.
func DeriveReceiptHash(receipts Receipts) (common.Hash, error) {
	if len(receipts) == 0 {
		return trie.EmptyRoot, nil
	}
	return DeriveSha(len(receipts), func(i int) ([]byte, error) { return receipts[i].EncodeRLP() })
}

// CalcUncleHash computes a block header's UncleHash (RLP list of the
// uncle headers, keccak-hashed) — an empty list hashes to EmptyUncleHash
// regardless of trie structure, since it is not itself a trie root.
func CalcUncleHash(uncles []*Header) (common.Hash, error) {
	enc, err := rlp.EncodeToBytes(uncles)
	if err != nil {
		return common.Hash{}, err
	}
	return keccak256Hash(enc), nil
}
