// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package trie implements the Merkle-Patricia trie that backs the
// accounts trie and every per-account storage trie (§4.2 of the
// execution core spec). It supports an optional "secure" mode that
// hashes keys with keccak before descending, required for both.
package trie

import (
	"errors"
	"fmt"

	"github.com/chainforge/evmcore/common"
	"github.com/chainforge/evmcore/crypto"
	"github.com/chainforge/evmcore/kv"
)

// EmptyRoot is the keccak-256 of the RLP encoding of an empty byte
// string, i.e. the root hash of a trie with no entries.
var EmptyRoot = common.HexToHash("56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421")

// Trie is a Merkle-Patricia trie over a kv.Store. It is not safe for
// concurrent use; callers coordinate at the accounts-cache layer.
type Trie struct {
	root   node
	db     kv.Store
	secure bool
}

// New opens the trie rooted at root (EmptyRoot for a fresh trie). db
// supplies already-hashed node bytes on demand.
func New(root common.Hash, db kv.Store, secure bool) (*Trie, error) {
	t := &Trie{db: db, secure: secure}
	if root == EmptyRoot || root.IsZero() {
		return t, nil
	}
	n, err := t.resolveHash(root[:])
	if err != nil {
		return nil, fmt.Errorf("trie: cannot resolve root %s: %w", root.Hex(), err)
	}
	t.root = n
	return t, nil
}

func (t *Trie) hashKey(key []byte) []byte {
	if t.secure {
		return crypto.Keccak256(key)
	}
	return key
}

// Get returns the value stored at key, or nil if absent.
func (t *Trie) Get(key []byte) ([]byte, error) {
	v, newRoot, didResolve, err := t.get(t.root, keybytesToHex(t.hashKey(key)), 0)
	if err != nil {
		return nil, err
	}
	if didResolve {
		t.root = newRoot
	}
	if v == nil {
		return nil, nil
	}
	return []byte(v.(valueNode)), nil
}

func (t *Trie) get(n node, key []byte, pos int) (value node, newNode node, didResolve bool, err error) {
	switch n := n.(type) {
	case nil:
		return nil, nil, false, nil
	case valueNode:
		return n, n, false, nil
	case *shortNode:
		if len(key)-pos < len(n.Key) || !bytesEqual(n.Key, key[pos:pos+len(n.Key)]) {
			return nil, n, false, nil
		}
		v, newVal, didResolve, err := t.get(n.Val, key, pos+len(n.Key))
		if err == nil && didResolve {
			cp := n.copy()
			cp.Val = newVal
			return v, cp, true, nil
		}
		return v, n, didResolve, err
	case *fullNode:
		child := n.Children[key[pos]]
		v, newChild, didResolve, err := t.get(child, key, pos+1)
		if err == nil && didResolve {
			cp := n.copy()
			cp.Children[key[pos]] = newChild
			return v, cp, true, nil
		}
		return v, n, didResolve, err
	case hashNode:
		resolved, err := t.resolveHash(n)
		if err != nil {
			return nil, n, true, err
		}
		v, newNode, _, err := t.get(resolved, key, pos)
		return v, newNode, true, err
	default:
		panic(fmt.Sprintf("trie: unknown node type %T", n))
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (t *Trie) resolveHash(h []byte) (node, error) {
	enc, ok := t.db.Get(h)
	if !ok {
		return nil, fmt.Errorf("trie: missing node %x", h)
	}
	return decodeNode(h, enc)
}

// Put inserts or overwrites value at key. An empty value is
// equivalent to Delete (§3: "absent key ≡ value 0").
func (t *Trie) Put(key, value []byte) error {
	if len(value) == 0 {
		return t.Delete(key)
	}
	k := keybytesToHex(t.hashKey(key))
	root, err := t.insert(t.root, nil, k, valueNode(value))
	if err != nil {
		return err
	}
	t.root = root
	return nil
}

func (t *Trie) insert(n node, prefix, key []byte, value node) (node, error) {
	if len(key) == 0 {
		if vn, ok := n.(valueNode); ok {
			_ = vn
		}
		return value, nil
	}
	switch n := n.(type) {
	case nil:
		return &shortNode{Key: append([]byte{}, key...), Val: value, flags: dirtyFlag()}, nil
	case *shortNode:
		match := prefixLen(key, n.Key)
		if match == len(n.Key) {
			newVal, err := t.insert(n.Val, append(prefix, key[:match]...), key[match:], value)
			if err != nil {
				return nil, err
			}
			return &shortNode{Key: n.Key, Val: newVal, flags: dirtyFlag()}, nil
		}
		branch := &fullNode{flags: dirtyFlag()}
		var err error
		branch.Children[n.Key[match]], err = t.insert(nil, append(prefix, n.Key[:match+1]...), n.Key[match+1:], n.Val)
		if err != nil {
			return nil, err
		}
		branch.Children[key[match]], err = t.insert(nil, append(prefix, key[:match+1]...), key[match+1:], value)
		if err != nil {
			return nil, err
		}
		if match == 0 {
			return branch, nil
		}
		return &shortNode{Key: append([]byte{}, key[:match]...), Val: branch, flags: dirtyFlag()}, nil
	case *fullNode:
		cp := n.copy()
		cp.flags = dirtyFlag()
		var err error
		cp.Children[key[0]], err = t.insert(n.Children[key[0]], append(prefix, key[0]), key[1:], value)
		if err != nil {
			return nil, err
		}
		return cp, nil
	case hashNode:
		resolved, err := t.resolveHash(n)
		if err != nil {
			return nil, err
		}
		return t.insert(resolved, prefix, key, value)
	default:
		panic(fmt.Sprintf("trie: unknown node type %T", n))
	}
}

// errNotFound is returned internally by delete when nothing matched;
// it is not surfaced to callers (deleting an absent key is a no-op).
var errNotFound = errors.New("trie: key not found")

// Delete removes key from the trie; it is a no-op if the key is absent.
func (t *Trie) Delete(key []byte) error {
	k := keybytesToHex(t.hashKey(key))
	root, _, err := t.delete(t.root, nil, k)
	if err != nil && !errors.Is(err, errNotFound) {
		return err
	}
	t.root = root
	return nil
}

func (t *Trie) delete(n node, prefix, key []byte) (node, bool, error) {
	switch n := n.(type) {
	case nil:
		return nil, false, errNotFound
	case valueNode:
		return nil, true, nil
	case *shortNode:
		match := prefixLen(key, n.Key)
		if match < len(n.Key) {
			return n, false, errNotFound
		}
		if match == len(key) {
			return nil, true, nil
		}
		child, removed, err := t.delete(n.Val, append(prefix, n.Key...), key[match:])
		if err != nil {
			return n, false, err
		}
		if !removed {
			return n, false, nil
		}
		switch child := child.(type) {
		case nil:
			return nil, true, nil
		case *shortNode:
			return &shortNode{Key: append(append([]byte{}, n.Key...), child.Key...), Val: child.Val, flags: dirtyFlag()}, true, nil
		default:
			return &shortNode{Key: n.Key, Val: child, flags: dirtyFlag()}, true, nil
		}
	case *fullNode:
		nibble := key[0]
		child, removed, err := t.delete(n.Children[nibble], append(prefix, nibble), key[1:])
		if err != nil {
			return n, false, err
		}
		if !removed {
			return n, false, nil
		}
		cp := n.copy()
		cp.flags = dirtyFlag()
		cp.Children[nibble] = child
		return collapseFullNode(cp), true, nil
	case hashNode:
		resolved, err := t.resolveHash(n)
		if err != nil {
			return n, false, err
		}
		return t.delete(resolved, prefix, key)
	default:
		panic(fmt.Sprintf("trie: unknown node type %T", n))
	}
}

// collapseFullNode turns a branch with a single remaining child (and
// no value) into a shortNode, which is required to keep the trie
// canonical (so Hash() is independent of delete order / history).
func collapseFullNode(n *fullNode) node {
	count, idx := 0, -1
	for i, c := range n.Children {
		if c != nil {
			count++
			idx = i
		}
	}
	if count == 0 && n.Value == nil {
		return nil
	}
	if count == 0 && n.Value != nil {
		return valueNode(n.Value)
	}
	if count == 1 && n.Value == nil {
		child := n.Children[idx]
		nibble := byte(idx)
		switch child := child.(type) {
		case *shortNode:
			return &shortNode{Key: append([]byte{nibble}, child.Key...), Val: child.Val, flags: dirtyFlag()}
		default:
			return &shortNode{Key: []byte{nibble}, Val: child, flags: dirtyFlag()}
		}
	}
	return n
}

func dirtyFlag() nodeFlag { return nodeFlag{dirty: true} }

// RootHash recomputes (if dirty) and returns the trie's root hash,
// persisting every newly hashed node into the underlying KV store as
// it goes (§4.2: "nodes ... stored under that digest in the KV
// store"; "root is recomputed lazily on the next rootHash() after
// mutation").
func (t *Trie) RootHash() common.Hash {
	if t.root == nil {
		return EmptyRoot
	}
	h, committed := t.hashAndStore(t.root)
	t.root = committed
	if hn, ok := t.root.(hashNode); ok {
		return common.BytesToHash(hn)
	}
	return common.BytesToHash(h)
}

// hashAndStore returns the node's digest and, for any node too large
// to inline, replaces it in the tree with a hashNode reference after
// writing its encoding to the store.
func (t *Trie) hashAndStore(n node) ([]byte, node) {
	if hash, clean := n.cacheHash(); clean && !isEmptyHash(hash) {
		if hn, ok := n.(hashNode); ok {
			return []byte(hn), hn
		}
	}
	switch n := n.(type) {
	case *shortNode:
		_, childRef := t.hashChild(n.Val)
		collapsed := &shortNode{Key: n.Key, Val: childRef}
		enc := encodeNode(collapsed)
		return t.storeIfLarge(enc, collapsed)
	case *fullNode:
		cp := n.copy()
		for i, c := range n.Children {
			_, ref := t.hashChild(c)
			cp.Children[i] = ref
		}
		enc := encodeNode(cp)
		return t.storeIfLarge(enc, cp)
	case valueNode:
		return encodeNode(n), n
	case hashNode:
		return []byte(n), n
	case nil:
		return rlpString(nil), nil
	default:
		panic(fmt.Sprintf("trie: unknown node type %T", n))
	}
}

// hashChild resolves a (possibly unresolved) child, hashes it, and
// returns both its digest and a compact form (inline node or
// hashNode) to store in the parent.
func (t *Trie) hashChild(n node) ([]byte, node) {
	if n == nil {
		return rlpString(nil), nil
	}
	if hn, ok := n.(hashNode); ok {
		return []byte(hn), hn
	}
	enc, compact := t.hashAndStore(n)
	if len(enc) < 32 {
		return enc, compact
	}
	digest := crypto.Keccak256(enc)
	return digest, hashNode(digest)
}

func (t *Trie) storeIfLarge(enc []byte, compact node) ([]byte, node) {
	if len(enc) < 32 {
		return enc, compact
	}
	digest := crypto.Keccak256(enc)
	t.db.Put(digest, enc)
	return digest, hashNode(digest)
}

func isEmptyHash(h common.Hash) bool { return h.IsZero() }

// decodeNode parses the RLP encoding of a standalone stored node.
func decodeNode(hash, enc []byte) (node, error) {
	elems, err := splitList(enc)
	if err != nil {
		return nil, err
	}
	switch len(elems) {
	case 2:
		key := compactToHex(elems[0].bytes)
		if hasTerm(key) {
			return &shortNode{Key: key, Val: valueNode(elems[1].bytes), flags: nodeFlag{hash: common.BytesToHash(hash)}}, nil
		}
		val, err := decodeRef(elems[1])
		if err != nil {
			return nil, err
		}
		return &shortNode{Key: key, Val: val, flags: nodeFlag{hash: common.BytesToHash(hash)}}, nil
	case 17:
		n := &fullNode{flags: nodeFlag{hash: common.BytesToHash(hash)}}
		for i := 0; i < 16; i++ {
			child, err := decodeRef(elems[i])
			if err != nil {
				return nil, err
			}
			n.Children[i] = child
		}
		if len(elems[16].bytes) > 0 {
			n.Value = append([]byte{}, elems[16].bytes...)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("trie: invalid node with %d list elements", len(elems))
	}
}

func decodeRef(e rlpElem) (node, error) {
	if e.isList {
		return decodeNode(nil, e.raw)
	}
	if len(e.bytes) == 0 {
		return nil, nil
	}
	if len(e.bytes) == 32 {
		return hashNode(e.bytes), nil
	}
	return nil, fmt.Errorf("trie: invalid child reference length %d", len(e.bytes))
}
