// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rlp

import (
	"fmt"
	"math/big"
	"reflect"
)

// DecodeBytes parses RLP-encoded data and stores the result in the
// value pointed to by val, which must be a non-nil pointer.
func DecodeBytes(data []byte, val interface{}) error {
	rv := reflect.ValueOf(val)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("rlp: Decode requires a non-nil pointer, got %T", val)
	}
	rest, err := decodeValue(data, rv.Elem())
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return ErrMoreThanOneValue
	}
	return nil
}

// Peek reports whether the next RLP item in b is a list, along with
// its raw payload and the bytes following it, without decoding into
// any Go value. Used by custom Decoder implementations (typed
// transactions) that must branch on item shape before choosing a
// concrete layout to decode into.
func Peek(b []byte) (isList bool, payload, rest []byte, err error) {
	it, err := splitItem(b)
	if err != nil {
		return false, nil, nil, err
	}
	return it.isList, it.payload, it.rest, nil
}

// DecodeValue parses a single RLP item off the front of b into the
// value pointed to by val and returns the remaining, unconsumed bytes.
// Unlike DecodeBytes it does not require b to hold exactly one value,
// so custom Decoder implementations can use it to parse one field of
// a larger envelope (e.g. a typed transaction's inner field list).
func DecodeValue(b []byte, val interface{}) (rest []byte, err error) {
	rv := reflect.ValueOf(val)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return nil, fmt.Errorf("rlp: DecodeValue requires a non-nil pointer, got %T", val)
	}
	return decodeValue(b, rv.Elem())
}

// item is one parsed RLP element: its kind, payload, and the
// remainder of the input following it.
type item struct {
	isList  bool
	payload []byte
	rest    []byte
}

func splitItem(b []byte) (item, error) {
	if len(b) == 0 {
		return item{}, fmt.Errorf("rlp: input too short")
	}
	prefix := b[0]
	switch {
	case prefix < 0x80:
		return item{isList: false, payload: b[:1], rest: b[1:]}, nil
	case prefix < 0xb8:
		n := int(prefix - 0x80)
		if len(b) < 1+n {
			return item{}, ErrElemTooLarge
		}
		if n == 1 && b[1] < 0x80 {
			return item{}, ErrCanonSize
		}
		return item{isList: false, payload: b[1 : 1+n], rest: b[1+n:]}, nil
	case prefix < 0xc0:
		lenOfLen := int(prefix - 0xb7)
		if len(b) < 1+lenOfLen {
			return item{}, ErrElemTooLarge
		}
		n, err := decodeLength(b[1 : 1+lenOfLen])
		if err != nil {
			return item{}, err
		}
		if len(b) < 1+lenOfLen+n {
			return item{}, ErrElemTooLarge
		}
		return item{isList: false, payload: b[1+lenOfLen : 1+lenOfLen+n], rest: b[1+lenOfLen+n:]}, nil
	case prefix < 0xf8:
		n := int(prefix - 0xc0)
		if len(b) < 1+n {
			return item{}, ErrElemTooLarge
		}
		return item{isList: true, payload: b[1 : 1+n], rest: b[1+n:]}, nil
	default:
		lenOfLen := int(prefix - 0xf7)
		if len(b) < 1+lenOfLen {
			return item{}, ErrElemTooLarge
		}
		n, err := decodeLength(b[1 : 1+lenOfLen])
		if err != nil {
			return item{}, err
		}
		if len(b) < 1+lenOfLen+n {
			return item{}, ErrElemTooLarge
		}
		return item{isList: true, payload: b[1+lenOfLen : 1+lenOfLen+n], rest: b[1+lenOfLen+n:]}, nil
	}
}

func decodeLength(b []byte) (int, error) {
	if len(b) > 0 && b[0] == 0 {
		return 0, ErrCanonSize
	}
	bi := new(big.Int).SetBytes(b)
	if !bi.IsUint64() {
		return 0, fmt.Errorf("rlp: length overflow")
	}
	return int(bi.Uint64()), nil
}

// Decoder is implemented by types that parse their own RLP envelope,
// the decode-side counterpart of Encoder.
type Decoder interface {
	DecodeRLP(b []byte) (rest []byte, err error)
}

func decodeValue(b []byte, v reflect.Value) ([]byte, error) {
	if v.CanAddr() {
		if dec, ok := v.Addr().Interface().(Decoder); ok {
			return dec.DecodeRLP(b)
		}
	}
	switch v.Kind() {
	case reflect.Ptr:
		if v.Type().Elem() == bigIntType {
			it, err := splitItem(b)
			if err != nil {
				return nil, err
			}
			if it.isList {
				return nil, ErrExpectedString
			}
			bi := new(big.Int).SetBytes(it.payload)
			v.Set(reflect.ValueOf(bi))
			return it.rest, nil
		}
		if v.Type().Elem().Kind() == reflect.Array {
			// A pointer to a fixed-size array (e.g. *common.Address) is
			// Ethereum's standard way to make an RLP field optional: nil
			// encodes as the empty string, distinct from the all-zero
			// value of the array itself, which encodes as its full byte
			// string. Transaction.To relies on this to tell contract
			// creation (nil) apart from a transfer to the zero address.
			it, err := splitItem(b)
			if err != nil {
				return nil, err
			}
			if !it.isList && len(it.payload) == 0 {
				v.Set(reflect.Zero(v.Type()))
				return it.rest, nil
			}
			elem := reflect.New(v.Type().Elem())
			if _, err := decodeValue(b, elem.Elem()); err != nil {
				return nil, err
			}
			v.Set(elem)
			return it.rest, nil
		}
		elem := reflect.New(v.Type().Elem())
		rest, err := decodeValue(b, elem.Elem())
		if err != nil {
			return nil, err
		}
		v.Set(elem)
		return rest, nil
	case reflect.Struct:
		if v.Type() == bigIntType {
			it, err := splitItem(b)
			if err != nil {
				return nil, err
			}
			bi := new(big.Int).SetBytes(it.payload)
			v.Set(reflect.ValueOf(*bi))
			return it.rest, nil
		}
		it, err := splitItem(b)
		if err != nil {
			return nil, err
		}
		if !it.isList {
			return nil, ErrExpectedList
		}
		t := v.Type()
		payload := it.payload
		for i := 0; i < t.NumField(); i++ {
			if t.Field(i).PkgPath != "" {
				continue
			}
			if tag := t.Field(i).Tag.Get("rlp"); tag == "-" {
				continue
			}
			payload, err = decodeValue(payload, v.Field(i))
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", t.Field(i).Name, err)
			}
		}
		if len(payload) != 0 {
			return nil, fmt.Errorf("rlp: %d extra bytes after decoding %s", len(payload), t)
		}
		return it.rest, nil
	case reflect.Slice:
		it, err := splitItem(b)
		if err != nil {
			return nil, err
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			if it.isList {
				return nil, ErrExpectedString
			}
			v.SetBytes(append([]byte{}, it.payload...))
			return it.rest, nil
		}
		if !it.isList {
			return nil, ErrExpectedList
		}
		out := reflect.MakeSlice(v.Type(), 0, 0)
		payload := it.payload
		for len(payload) > 0 {
			elem := reflect.New(v.Type().Elem()).Elem()
			payload, err = decodeValue(payload, elem)
			if err != nil {
				return nil, err
			}
			out = reflect.Append(out, elem)
		}
		v.Set(out)
		return it.rest, nil
	case reflect.Array:
		it, err := splitItem(b)
		if err != nil {
			return nil, err
		}
		if it.isList {
			return nil, ErrExpectedString
		}
		reflect.Copy(v, reflect.ValueOf(it.payload))
		return it.rest, nil
	case reflect.String:
		it, err := splitItem(b)
		if err != nil {
			return nil, err
		}
		if it.isList {
			return nil, ErrExpectedString
		}
		v.SetString(string(it.payload))
		return it.rest, nil
	case reflect.Bool:
		it, err := splitItem(b)
		if err != nil {
			return nil, err
		}
		v.SetBool(len(it.payload) == 1 && it.payload[0] == 1)
		return it.rest, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		it, err := splitItem(b)
		if err != nil {
			return nil, err
		}
		if it.isList {
			return nil, ErrExpectedString
		}
		if len(it.payload) > 8 {
			return nil, fmt.Errorf("rlp: uint64 overflow")
		}
		var n uint64
		for _, by := range it.payload {
			n = n<<8 | uint64(by)
		}
		v.SetUint(n)
		return it.rest, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, v.Type())
	}
}
