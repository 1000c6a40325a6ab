// Package jsonval decodes raw JSON bytes into an order-preserving generic
// value tree, the parsed form the node-tree reader builds from —
// implemented here via the standard library's token-streaming json.Decoder.
//
// Decoding into a plain map[string]any (as encoding/json's Unmarshal would)
// loses both insertion order and duplicate keys, both of which the reader
// needs to observe in order to detect duplicate member names and preserve
// document order. Package jsonval instead walks the token stream itself.
package jsonval

import (
	"bytes"
	"encoding/json"

	"github.com/signadot/cfgtree/cfgerrors"
)

// Kind discriminates the JSON value shapes.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is a single decoded JSON value. For KindObject, Keys and Values are
// parallel slices in the order keys appeared in the source document;
// duplicate keys are preserved (not deduplicated) so callers can detect and
// reject them.
type Value struct {
	Kind   Kind
	Bool   bool
	Number json.Number
	String string
	Array  []*Value
	Keys   []string
	Values []*Value
}

// Lookup returns the first value associated with key and whether it was
// present. Object-shaped values only; returns (nil, false) otherwise.
func (v *Value) Lookup(key string) (*Value, bool) {
	if v == nil || v.Kind != KindObject {
		return nil, false
	}
	for i, k := range v.Keys {
		if k == key {
			return v.Values[i], true
		}
	}
	return nil, false
}

// Decode parses data (which must be a single JSON value, typically an
// object) into a Value tree, preserving object key order and duplicates.
func Decode(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, cfgerrors.NewParse("", dec.InputOffset(), "unexpected end of JSON input", err)
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, cfgerrors.NewParse("", dec.InputOffset(), "unexpected delimiter", nil)
		}
	case nil:
		return &Value{Kind: KindNull}, nil
	case bool:
		return &Value{Kind: KindBool, Bool: t}, nil
	case json.Number:
		return &Value{Kind: KindNumber, Number: t}, nil
	case string:
		return &Value{Kind: KindString, String: t}, nil
	default:
		return nil, cfgerrors.NewParse("", dec.InputOffset(), "unrecognized JSON token", nil)
	}
}

func decodeObject(dec *json.Decoder) (*Value, error) {
	v := &Value{Kind: KindObject}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, cfgerrors.NewParse("", dec.InputOffset(), "error reading object key", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, cfgerrors.NewParse("", dec.InputOffset(), "object key is not a string", nil)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		v.Keys = append(v.Keys, key)
		v.Values = append(v.Values, val)
	}
	if _, err := dec.Token(); err != nil { // consume closing '}'
		return nil, cfgerrors.NewParse("", dec.InputOffset(), "unterminated object", err)
	}
	return v, nil
}

func decodeArray(dec *json.Decoder) (*Value, error) {
	v := &Value{Kind: KindArray}
	for dec.More() {
		el, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		v.Array = append(v.Array, el)
	}
	if _, err := dec.Token(); err != nil { // consume closing ']'
		return nil, cfgerrors.NewParse("", dec.InputOffset(), "unterminated array", err)
	}
	return v, nil
}

// ToAny converts v into a plain Go value built from nil/bool/int64/float64/
// string/[]any/ordered pairs, used to round-trip "#"-forced scalar payloads
// back out through the encode package without reinspecting their shape.
func (v *Value) ToAny() any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindNumber:
		if i, err := v.Number.Int64(); err == nil {
			return i
		}
		f, _ := v.Number.Float64()
		return f
	case KindString:
		return v.String
	case KindArray:
		out := make([]any, len(v.Array))
		for i, e := range v.Array {
			out[i] = e.ToAny()
		}
		return out
	case KindObject:
		return v
	default:
		return nil
	}
}
