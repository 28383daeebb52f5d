// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trie

import "fmt"

// rlpElem is one parsed element of a top-level RLP list: either a
// string (isList=false, bytes=payload) or a nested list (isList=true,
// raw=the full re-encoded list, for recursive node decoding).
type rlpElem struct {
	isList bool
	bytes  []byte
	raw    []byte
}

// splitList parses enc as a single RLP list and returns its elements.
func splitList(enc []byte) ([]rlpElem, error) {
	if len(enc) == 0 {
		return nil, fmt.Errorf("trie: empty node encoding")
	}
	prefix := enc[0]
	var payload []byte
	switch {
	case prefix < 0xc0:
		return nil, fmt.Errorf("trie: expected list, got string (prefix 0x%x)", prefix)
	case prefix < 0xf8:
		n := int(prefix - 0xc0)
		if len(enc) < 1+n {
			return nil, fmt.Errorf("trie: truncated list")
		}
		payload = enc[1 : 1+n]
	default:
		lenOfLen := int(prefix - 0xf7)
		if len(enc) < 1+lenOfLen {
			return nil, fmt.Errorf("trie: truncated list length")
		}
		n := 0
		for _, b := range enc[1 : 1+lenOfLen] {
			n = n<<8 | int(b)
		}
		if len(enc) < 1+lenOfLen+n {
			return nil, fmt.Errorf("trie: truncated list")
		}
		payload = enc[1+lenOfLen : 1+lenOfLen+n]
	}
	var elems []rlpElem
	for len(payload) > 0 {
		e, rest, err := splitOne(payload)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		payload = rest
	}
	return elems, nil
}

func splitOne(b []byte) (rlpElem, []byte, error) {
	prefix := b[0]
	switch {
	case prefix < 0x80:
		return rlpElem{bytes: b[:1]}, b[1:], nil
	case prefix < 0xb8:
		n := int(prefix - 0x80)
		if len(b) < 1+n {
			return rlpElem{}, nil, fmt.Errorf("trie: truncated string")
		}
		return rlpElem{bytes: b[1 : 1+n]}, b[1+n:], nil
	case prefix < 0xc0:
		lenOfLen := int(prefix - 0xb7)
		if len(b) < 1+lenOfLen {
			return rlpElem{}, nil, fmt.Errorf("trie: truncated string length")
		}
		n := 0
		for _, by := range b[1 : 1+lenOfLen] {
			n = n<<8 | int(by)
		}
		if len(b) < 1+lenOfLen+n {
			return rlpElem{}, nil, fmt.Errorf("trie: truncated string")
		}
		return rlpElem{bytes: b[1+lenOfLen : 1+lenOfLen+n]}, b[1+lenOfLen+n:], nil
	case prefix < 0xf8:
		n := int(prefix - 0xc0)
		if len(b) < 1+n {
			return rlpElem{}, nil, fmt.Errorf("trie: truncated list")
		}
		return rlpElem{isList: true, raw: b[:1+n]}, b[1+n:], nil
	default:
		lenOfLen := int(prefix - 0xf7)
		if len(b) < 1+lenOfLen {
			return rlpElem{}, nil, fmt.Errorf("trie: truncated list length")
		}
		n := 0
		for _, by := range b[1 : 1+lenOfLen] {
			n = n<<8 | int(by)
		}
		if len(b) < 1+lenOfLen+n {
			return rlpElem{}, nil, fmt.Errorf("trie: truncated list")
		}
		return rlpElem{isList: true, raw: b[:1+lenOfLen+n]}, b[1+lenOfLen+n:], nil
	}
}
