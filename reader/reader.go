// Package reader turns a parsed JSON value (package jsonval) into an
// unresolved ir.Node tree, recognizing the "#" and "&" member-name
// decorators.
package reader

import (
	"errors"
	"strconv"

	"github.com/signadot/cfgtree/cfgerrors"
	"github.com/signadot/cfgtree/cfglog"
	"github.com/signadot/cfgtree/ir"
	"github.com/signadot/cfgtree/jsonval"
	"github.com/signadot/cfgtree/ndpath"
)

var log = cfglog.For(cfglog.CategoryReader)

// decoratorKind is the effect a leading "#"/"&" character has on a member.
type decoratorKind int

const (
	decoratorNone decoratorKind = iota
	decoratorValue
	decoratorReference
)

// Read converts a parsed JSON value into an unresolved ir.Node tree. current
// is the node path of v, used both for diagnostics and to validate any
// reference paths encountered beneath it.
func Read(v *jsonval.Value, current string) (*ir.Node, error) {
	switch v.Kind {
	case jsonval.KindNull:
		return ir.NewNull(), nil
	case jsonval.KindBool:
		return ir.NewValue(v.Bool), nil
	case jsonval.KindNumber:
		return ir.NewValue(v.Number), nil
	case jsonval.KindString:
		return ir.NewValue(v.String), nil
	case jsonval.KindArray:
		return readArray(v, current)
	case jsonval.KindObject:
		return readObject(v, current)
	default:
		return nil, cfgerrors.NewSchema(current, "unrecognized JSON value kind")
	}
}

func readArray(v *jsonval.Value, current string) (*ir.Node, error) {
	node := ir.NewArray()
	for i, el := range v.Array {
		child, err := Read(el, ndpath.AppendRaw(current, strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		if err := node.AppendElement(child); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func readObject(v *jsonval.Value, current string) (*ir.Node, error) {
	node := ir.NewObject()
	seen := make(map[string]bool, len(v.Keys))
	for i, key := range v.Keys {
		name, kind, err := stripDecorator(key)
		if err != nil {
			return nil, cfgerrors.NewSchema(current, err.Error())
		}
		if err := ndpath.ValidateName(name); err != nil {
			return nil, err
		}
		if seen[name] {
			return nil, cfgerrors.NewSchema(current, "duplicate member name "+name)
		}
		seen[name] = true

		memberPath, err := ndpath.Append(current, name)
		if err != nil {
			return nil, err
		}

		var child *ir.Node
		switch kind {
		case decoratorNone:
			child, err = Read(v.Values[i], memberPath)
		case decoratorValue:
			child = ir.NewValue(v.Values[i])
		case decoratorReference:
			child, err = readReference(v.Values[i], memberPath, current)
		}
		if err != nil {
			return nil, err
		}
		if err := node.SetMember(name, child); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// stripDecorator splits a leading "#"/"&" off an object key and classifies
// the remainder. The remainder's own name-validity is checked by the
// caller; stripDecorator only rejects an empty name after stripping.
func stripDecorator(key string) (string, decoratorKind, error) {
	if key == "" {
		return "", decoratorNone, errEmptyKey
	}
	switch key[0] {
	case '#':
		if len(key) == 1 {
			return "", decoratorNone, errEmptyKey
		}
		return key[1:], decoratorValue, nil
	case '&':
		if len(key) == 1 {
			return "", decoratorNone, errEmptyKey
		}
		return key[1:], decoratorReference, nil
	default:
		return key, decoratorNone, nil
	}
}

var errEmptyKey = errors.New("empty member name after decorator")

// readReference reads an "&"-decorated member: a JSON string becomes a
// NodeReference, a JSON array becomes a DerivedArray, a JSON object becomes
// a DerivedObject.
//
// ownPath is the path the produced node will occupy once placed (used for
// its own children, e.g. a DerivedArray's elements or a DerivedObject's
// override). parentPath is the path of the node that will be the produced
// node's runtime parent — the anchor a relative reference path (a
// NodeReference's target, or a DerivedObject's base paths) resolves
// against, matching the resolver's later `parent.node_at_path(ref)` lookup.
func readReference(v *jsonval.Value, ownPath, parentPath string) (*ir.Node, error) {
	switch v.Kind {
	case jsonval.KindString:
		if _, err := ndpath.ValidateReference(v.String, parentPath); err != nil {
			return nil, err
		}
		log.Debugf("reference %q at %s", v.String, parentPath)
		return ir.NewNodeReference(v.String), nil
	case jsonval.KindArray:
		return readDerivedArray(v, ownPath)
	case jsonval.KindObject:
		return readDerivedObject(v, ownPath, parentPath)
	default:
		return nil, cfgerrors.NewSchema(ownPath, "&-decorated value must be a string, array, or object")
	}
}

// readDerivedArray reads a DerivedArray whose own path (once placed) is
// ownPath: its elements' runtime parent is the DerivedArray node itself, so
// any reference element's relative path resolves against ownPath.
func readDerivedArray(v *jsonval.Value, ownPath string) (*ir.Node, error) {
	node := ir.NewDerivedArray()
	for i, el := range v.Array {
		elPath := ndpath.AppendRaw(ownPath, strconv.Itoa(i))
		if el.Kind != jsonval.KindObject || len(el.Keys) != 1 {
			return nil, cfgerrors.NewSchema(elPath, "DerivedArray element must be a single-key object")
		}
		name, kind, err := stripDecorator(el.Keys[0])
		if err != nil {
			return nil, cfgerrors.NewSchema(elPath, err.Error())
		}
		if name != "element" {
			return nil, cfgerrors.NewSchema(elPath, "DerivedArray element key must be (optionally decorated) \"element\"")
		}
		var child *ir.Node
		switch kind {
		case decoratorNone:
			child, err = Read(el.Values[0], elPath)
		case decoratorValue:
			child = ir.NewValue(el.Values[0])
		case decoratorReference:
			child, err = readReference(el.Values[0], elPath, ownPath)
		}
		if err != nil {
			return nil, err
		}
		if err := node.AppendElement(child); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// readDerivedObject reads a DerivedObject whose own path (once placed) is
// ownPath. Its base paths resolve against parentPath, the path of the
// Object that will contain it — matching the resolver's "look it up from
// the parent" base-chain lookup. Its override's own nested members use
// ownPath, since the override is merged directly into this node's slot.
func readDerivedObject(v *jsonval.Value, ownPath, parentPath string) (*ir.Node, error) {
	baseVal, hasBase := v.Lookup("base")
	if !hasBase {
		return nil, cfgerrors.NewSchema(ownPath, "DerivedObject requires a \"base\" member")
	}
	var bases []string
	switch baseVal.Kind {
	case jsonval.KindString:
		bases = []string{baseVal.String}
	case jsonval.KindArray:
		if len(baseVal.Array) == 0 {
			return nil, cfgerrors.NewSchema(ownPath, "\"base\" array must be non-empty")
		}
		for _, e := range baseVal.Array {
			if e.Kind != jsonval.KindString {
				return nil, cfgerrors.NewSchema(ownPath, "\"base\" array elements must be strings")
			}
			bases = append(bases, e.String)
		}
	default:
		return nil, cfgerrors.NewSchema(ownPath, "\"base\" must be a string or a non-empty array of strings")
	}
	for _, b := range bases {
		if _, err := ndpath.ValidateReference(b, parentPath); err != nil {
			return nil, err
		}
	}

	var override *ir.Node
	configVal, hasConfig := v.Lookup("config")
	switch {
	case !hasConfig || configVal.Kind == jsonval.KindNull:
		override = ir.NewNull()
	case configVal.Kind == jsonval.KindObject:
		cv, err := readObject(configVal, ownPath)
		if err != nil {
			return nil, err
		}
		override = cv
	default:
		return nil, cfgerrors.NewSchema(ownPath, "\"config\" must be absent, null, or an object")
	}

	return ir.NewDerivedObject(bases, override), nil
}
