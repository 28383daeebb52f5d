// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rlp implements the Recursive Length Prefix encoding used by
// every persisted and wire-level Ethereum value: headers, bodies,
// transactions, receipts, and trie nodes.
//
// The encoding rules (as in the Ethereum yellow paper, appendix B):
//   - a single byte in [0x00, 0x7f] encodes itself.
//   - a string 0-55 bytes long is [0x80+len, string...].
//   - a string longer than 55 bytes is [0xb7+lenOfLen, len, string...].
//   - a list with a payload 0-55 bytes long is [0xc0+len, payload...].
//   - a list with a payload longer than 55 bytes is [0xf7+lenOfLen, len, payload...].
package rlp

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
)

var (
	// ErrUnsupportedType is returned by Encode for a Go type with no
	// RLP representation (channels, funcs, complex numbers, maps).
	ErrUnsupportedType = errors.New("rlp: unsupported type")
	// ErrExpectedString is returned by Decode when a list was found
	// where a string (byte sequence) was expected.
	ErrExpectedString = errors.New("rlp: expected string, got list")
	// ErrExpectedList is returned by Decode when a string was found
	// where a list was expected.
	ErrExpectedList = errors.New("rlp: expected list, got string")
	// ErrCanonSize is returned when a length prefix uses more bytes
	// than the minimal canonical encoding requires.
	ErrCanonSize = errors.New("rlp: non-canonical size")
	// ErrElemTooLarge is returned when a declared length exceeds the
	// remaining input.
	ErrElemTooLarge = errors.New("rlp: element is larger than containing list")
	// ErrMoreThanOneValue is returned by DecodeBytes when trailing
	// data follows a complete value.
	ErrMoreThanOneValue = errors.New("rlp: input contains more than one value")
)

var bigIntType = reflect.TypeOf(big.Int{})

// Encoder is implemented by types that need control over their own RLP
// representation, such as typed transactions (EIP-2718 prepends a type
// byte ahead of the RLP list) and other envelope formats the generic
// struct reflector can't express.
type Encoder interface {
	EncodeRLP() ([]byte, error)
}

// EncodeToBytes returns the RLP encoding of val.
func EncodeToBytes(val interface{}) ([]byte, error) {
	return encodeValue(reflect.ValueOf(val))
}

func encodeValue(v reflect.Value) ([]byte, error) {
	if !v.IsValid() {
		return encodeString(nil), nil
	}
	if v.CanInterface() {
		if enc, ok := v.Interface().(Encoder); ok {
			return enc.EncodeRLP()
		}
	}
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			if v.Type().Elem() == bigIntType {
				return encodeUint(new(big.Int)), nil
			}
			return encodeString(nil), nil
		}
		return encodeValue(v.Elem())
	case reflect.Struct:
		if v.Type() == bigIntType {
			bi := v.Interface().(big.Int)
			return encodeUint(&bi), nil
		}
		return encodeStruct(v)
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return encodeString(toByteSlice(v)), nil
		}
		return encodeList(v)
	case reflect.String:
		return encodeString([]byte(v.String())), nil
	case reflect.Bool:
		if v.Bool() {
			return encodeString([]byte{1}), nil
		}
		return encodeString(nil), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return encodeUint(new(big.Int).SetUint64(v.Uint())), nil
	case reflect.Interface:
		return encodeValue(v.Elem())
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, v.Type())
	}
}

func toByteSlice(v reflect.Value) []byte {
	if v.Kind() == reflect.Array {
		b := make([]byte, v.Len())
		reflect.Copy(reflect.ValueOf(b), v)
		return b
	}
	return v.Bytes()
}

func encodeStruct(v reflect.Value) ([]byte, error) {
	t := v.Type()
	var payload []byte
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).PkgPath != "" { // unexported
			continue
		}
		if tag := t.Field(i).Tag.Get("rlp"); tag == "-" {
			continue
		}
		enc, err := encodeValue(v.Field(i))
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", t.Field(i).Name, err)
		}
		payload = append(payload, enc...)
	}
	return wrapList(payload), nil
}

func encodeList(v reflect.Value) ([]byte, error) {
	var payload []byte
	for i := 0; i < v.Len(); i++ {
		enc, err := encodeValue(v.Index(i))
		if err != nil {
			return nil, err
		}
		payload = append(payload, enc...)
	}
	return wrapList(payload), nil
}

func wrapList(payload []byte) []byte {
	if len(payload) <= 55 {
		return append([]byte{0xc0 + byte(len(payload))}, payload...)
	}
	lenBytes := minimalBigEndian(uint64(len(payload)))
	header := append([]byte{0xf7 + byte(len(lenBytes))}, lenBytes...)
	return append(header, payload...)
}

func encodeString(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return []byte{b[0]}
	}
	if len(b) <= 55 {
		out := make([]byte, 0, len(b)+1)
		out = append(out, 0x80+byte(len(b)))
		return append(out, b...)
	}
	lenBytes := minimalBigEndian(uint64(len(b)))
	header := append([]byte{0xb7 + byte(len(lenBytes))}, lenBytes...)
	return append(header, b...)
}

// encodeUint encodes a non-negative integer using its minimal
// big-endian byte representation, per the RLP integer convention
// (no leading zero bytes, zero encodes as the empty string).
func encodeUint(bi *big.Int) []byte {
	if bi.Sign() == 0 {
		return []byte{0x80}
	}
	return encodeString(bi.Bytes())
}

func minimalBigEndian(n uint64) []byte {
	return new(big.Int).SetUint64(n).Bytes()
}
