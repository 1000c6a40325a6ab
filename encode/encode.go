// Package encode serializes a resolved ir.Node tree back to JSON, preserving
// Object member order the way jsonval.Decode preserved it on the way in.
package encode

import (
	"bytes"

	"github.com/segmentio/encoding/json"

	"github.com/signadot/cfgtree/cfgerrors"
	"github.com/signadot/cfgtree/ir"
	"github.com/signadot/cfgtree/jsonval"
)

// Marshal renders n as JSON. n must be fully resolved (Null, Value, Array,
// or Object); any other kind is a ResolutionError.
func Marshal(n *ir.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := write(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent renders n as indented JSON, for CLI and debug output.
func MarshalIndent(n *ir.Node, prefix, indent string) ([]byte, error) {
	raw, err := Marshal(n)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, prefix, indent); err != nil {
		return nil, cfgerrors.NewSchema(n.Path(), "failed to indent encoded JSON")
	}
	return out.Bytes(), nil
}

func write(buf *bytes.Buffer, n *ir.Node) error {
	switch n.Kind {
	case ir.Null:
		buf.WriteString("null")
		return nil
	case ir.Value:
		return writeScalar(buf, n)
	case ir.Array:
		return writeArray(buf, n)
	case ir.Object:
		return writeObject(buf, n)
	default:
		return cfgerrors.NewResolution(n.Path(), "cannot encode unresolved node kind "+n.Kind.String(), nil)
	}
}

// writeScalar round-trips the opaque Scalar payload. Most payloads came
// from jsonval (bool/json.Number/string) and re-marshal directly; a
// "#"-forced opaque object or array literal is carried as a *jsonval.Value
// and re-rendered by writeJSONValue, which walks arrays and objects itself
// (using ToAny only for leaf values) so nested order survives.
func writeScalar(buf *bytes.Buffer, n *ir.Node) error {
	if jv, ok := n.Scalar.(*jsonval.Value); ok {
		return writeJSONValue(buf, jv)
	}
	raw, err := json.Marshal(n.Scalar)
	if err != nil {
		return cfgerrors.NewSchema(n.Path(), "failed to encode scalar: "+err.Error())
	}
	buf.Write(raw)
	return nil
}

func writeJSONValue(buf *bytes.Buffer, v *jsonval.Value) error {
	switch v.Kind {
	case jsonval.KindNull:
		buf.WriteString("null")
		return nil
	case jsonval.KindBool, jsonval.KindNumber, jsonval.KindString:
		raw, err := json.Marshal(v.ToAny())
		if err != nil {
			return err
		}
		buf.Write(raw)
		return nil
	case jsonval.KindArray:
		buf.WriteByte('[')
		for i, el := range v.Array {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONValue(buf, el); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case jsonval.KindObject:
		buf.WriteByte('{')
		for i, k := range v.Keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyRaw, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(keyRaw)
			buf.WriteByte(':')
			if err := writeJSONValue(buf, v.Values[i]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		return cfgerrors.NewSchema("", "unrecognized jsonval kind")
	}
}

func writeArray(buf *bytes.Buffer, n *ir.Node) error {
	buf.WriteByte('[')
	for i, e := range n.Elements() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := write(buf, e); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func writeObject(buf *bytes.Buffer, n *ir.Node) error {
	buf.WriteByte('{')
	for i, name := range n.MemberNames() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyRaw, err := json.Marshal(name)
		if err != nil {
			return cfgerrors.NewSchema(n.Path(), "failed to encode member name: "+err.Error())
		}
		buf.Write(keyRaw)
		buf.WriteByte(':')
		child, _ := n.Member(name)
		if err := write(buf, child); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}
