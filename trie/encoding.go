// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trie

// Nibble-path helpers for the hex-prefix (HP) encoding used to turn a
// byte-oriented key into a nibble path inside the trie, and back into
// a compact on-disk form for shortNode storage.
//
// A "hex" path is a nibble sequence (values 0-15, two per input byte)
// with a trailing sentinel nibble 16 appended if it terminates at a
// value (as opposed to continuing through an extension).

// keybytesToHex expands a byte key into its nibble representation,
// marking the end of the path with the terminator nibble 16.
func keybytesToHex(key []byte) []byte {
	n := len(key)*2 + 1
	out := make([]byte, n)
	for i, b := range key {
		out[i*2] = b / 16
		out[i*2+1] = b % 16
	}
	out[n-1] = 16
	return out
}

// hexToKeybytes reverses keybytesToHex, dropping the terminator.
func hexToKeybytes(hex []byte) []byte {
	if hasTerm(hex) {
		hex = hex[:len(hex)-1]
	}
	if len(hex)&1 != 0 {
		panic("trie: odd-length hex slice cannot be decoded to bytes")
	}
	out := make([]byte, len(hex)/2)
	for i := range out {
		out[i] = hex[i*2]<<4 | hex[i*2+1]
	}
	return out
}

// hasTerm reports whether a hex nibble path ends with the terminator.
func hasTerm(s []byte) bool {
	return len(s) > 0 && s[len(s)-1] == 16
}

// hexToCompact encodes a hex nibble path (terminator included if
// present) into the compact storage form: one flag nibble (odd-length
// and terminator bits) optionally padded, followed by the remaining
// nibbles packed two-per-byte.
func hexToCompact(hex []byte) []byte {
	terminator := byte(0)
	if hasTerm(hex) {
		terminator = 1
		hex = hex[:len(hex)-1]
	}
	buf := make([]byte, len(hex)/2+1)
	buf[0] = terminator << 5
	if len(hex)&1 == 1 {
		buf[0] |= 1 << 4
		buf[0] |= hex[0]
		hex = hex[1:]
	}
	decodeNibbles(hex, buf[1:])
	return buf
}

func decodeNibbles(nibbles []byte, bytes []byte) {
	for bi, ni := 0, 0; ni < len(nibbles); bi, ni = bi+1, ni+2 {
		bytes[bi] = nibbles[ni]<<4 | nibbles[ni+1]
	}
}

// compactToHex reverses hexToCompact.
func compactToHex(compact []byte) []byte {
	if len(compact) == 0 {
		return nil
	}
	base := keybytesToHexNoTerm(compact)
	base = base[:len(base)-1]
	// Apply the flag nibble: high bit of first real nibble indicates
	// terminator, second bit indicates odd length.
	terminator := false
	if base[0] >= 2 {
		terminator = true
	}
	if base[0]&1 == 1 {
		base = base[1:]
	} else {
		base = base[2:]
	}
	if terminator {
		base = append(base, 16)
	}
	return base
}

func keybytesToHexNoTerm(key []byte) []byte {
	n := len(key)*2 + 1
	out := make([]byte, n)
	for i, b := range key {
		out[i*2] = b / 16
		out[i*2+1] = b % 16
	}
	out[n-1] = 16
	return out
}

// prefixLen returns the length of the common prefix of a and b.
func prefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
