// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trie

import (
	"math/big"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/crypto"
)

// node is the in-memory representation of a trie node. Exactly one of
// the four concrete types below implements it.
type node interface {
	cacheHash() (common.Hash, bool)
}

// fullNode is a branch node: 16 children indexed by nibble value, plus
// an optional value stored at this node (a key that terminates here).
type fullNode struct {
	Children [16]node
	Value    []byte // nil if this branch does not also terminate a key
	flags    nodeFlag
}

// shortNode is either a leaf (Key ends in the terminator and Val is a
// valueNode) or an extension (Val is another node, usually a hashNode
// or fullNode).
type shortNode struct {
	Key   []byte // hex-encoded nibble path, possibly terminator-suffixed
	Val   node
	flags nodeFlag
}

// hashNode is a reference to a node stored in the KV store under its
// keccak digest; it stands in for a subtree not currently loaded into
// memory.
type hashNode []byte

// valueNode is a terminal leaf value.
type valueNode []byte

type nodeFlag struct {
	hash  common.Hash
	dirty bool
}

func (n *fullNode) cacheHash() (common.Hash, bool)  { return n.flags.hash, !n.flags.dirty }
func (n *shortNode) cacheHash() (common.Hash, bool) { return n.flags.hash, !n.flags.dirty }
func (n hashNode) cacheHash() (common.Hash, bool)   { return common.BytesToHash(n), true }
func (n valueNode) cacheHash() (common.Hash, bool)  { return common.Hash{}, false }

func (n *fullNode) copy() *fullNode {
	cp := *n
	return &cp
}

func (n *shortNode) copy() *shortNode {
	cp := *n
	return &cp
}

// --- hand-written RLP primitives for node encoding ---
//
// Trie nodes need to embed child references that are sometimes raw,
// already-encoded RLP (inline children <32 bytes) and sometimes a
// plain 32-byte digest (encoded as an RLP string); the generic
// reflection-based rlp package has no notion of "embed this blob
// verbatim", so node encoding is hand-rolled here, the same way
// go-ethereum's trie package does it.

func rlpString(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return []byte{b[0]}
	}
	if len(b) <= 55 {
		return append([]byte{0x80 + byte(len(b))}, b...)
	}
	lb := big.NewInt(int64(len(b))).Bytes()
	return append(append([]byte{0xb7 + byte(len(lb))}, lb...), b...)
}

func rlpListOf(items ...[]byte) []byte {
	var payload []byte
	for _, it := range items {
		payload = append(payload, it...)
	}
	if len(payload) <= 55 {
		return append([]byte{0xc0 + byte(len(payload))}, payload...)
	}
	lb := big.NewInt(int64(len(payload))).Bytes()
	return append(append([]byte{0xf7 + byte(len(lb))}, lb...), payload...)
}

// encodeNode returns the RLP encoding of n as it appears either
// inlined in a parent node or standalone in the KV store.
func encodeNode(n node) []byte {
	switch n := n.(type) {
	case *fullNode:
		items := make([][]byte, 0, 17)
		for _, c := range n.Children {
			items = append(items, nodeRef(c))
		}
		if n.Value != nil {
			items = append(items, rlpString(n.Value))
		} else {
			items = append(items, rlpString(nil))
		}
		return rlpListOf(items...)
	case *shortNode:
		return rlpListOf(rlpString(hexToCompact(n.Key)), nodeRef(n.Val))
	case hashNode:
		return []byte(n) // never used standalone; only as a reference
	case valueNode:
		return rlpString(n)
	case nil:
		return rlpString(nil)
	default:
		panic("trie: unknown node type")
	}
}

// nodeRef returns the child reference form used inside a parent
// node's RLP: the raw encoding if it is <32 bytes (inline), otherwise
// an RLP string holding the 32-byte keccak digest of the child's
// encoding (the caller must have stored the child under that digest).
func nodeRef(n node) []byte {
	if n == nil {
		return rlpString(nil)
	}
	if hn, ok := n.(hashNode); ok {
		return rlpString(hn)
	}
	if vn, ok := n.(valueNode); ok {
		return rlpString(vn)
	}
	enc := encodeNode(n)
	if len(enc) < 32 {
		return enc // inline: embedded verbatim, not re-wrapped
	}
	return rlpString(crypto.Keccak256(enc))
}
