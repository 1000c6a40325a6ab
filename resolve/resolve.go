// Package resolve implements the fixed-point resolver: it drives a
// composed, unresolved ir.Node tree to a point where only
// {Null, Value, Array, Object} kinds remain by repeatedly expanding
// NodeReference, DerivedArray, and DerivedObject nodes in place.
package resolve

import (
	"github.com/signadot/cfgtree/cfgerrors"
	"github.com/signadot/cfgtree/cfglog"
	"github.com/signadot/cfgtree/ir"
	"github.com/signadot/cfgtree/merge"
)

var log = cfglog.For(cfglog.CategoryResolve)

// outcome is the per-subtree result of one resolution pass.
type outcome int

const (
	resolved outcome = iota
	unresolved
	failed
)

// DefaultMaxCycles is the resolver's default iteration cap.
const DefaultMaxCycles = 100

// Resolve drives root to a fixed point, returning an error if it cannot
// converge within maxCycles passes (must be >= 1). root must be an Object.
func Resolve(root *ir.Node, maxCycles int) error {
	if maxCycles < 1 {
		return cfgerrors.NewResolution(root.Path(), "max_cycles must be >= 1", nil)
	}
	if root.Kind != ir.Object {
		return cfgerrors.NewResolution(root.Path(), "resolution root must be an Object", nil)
	}

	for cycle := 1; cycle <= maxCycles; cycle++ {
		out, err := resolvePass(root)
		if err != nil {
			return err
		}
		switch out {
		case resolved:
			log.Debugf("converged after %d cycle(s)", cycle)
			return nil
		case unresolved:
			continue
		}
	}
	log.Errorf("failed to fully resolve within %d cycles", maxCycles)
	return cfgerrors.NewUnresolved(maxCycles)
}

// resolvePass runs one pass of resolve(n) over the whole tree, dispatching
// by node kind.
func resolvePass(n *ir.Node) (outcome, error) {
	switch n.Kind {
	case ir.Null, ir.Value:
		return resolved, nil
	case ir.Array:
		return resolveChildren(n.Elements())
	case ir.Object:
		names := n.MemberNames()
		children := make([]*ir.Node, 0, len(names))
		for _, name := range names {
			child, _ := n.Member(name)
			children = append(children, child)
		}
		return resolveChildren(children)
	case ir.NodeReference:
		return resolveReference(n)
	case ir.DerivedArray:
		return resolveDerivedArray(n)
	case ir.DerivedObject:
		return resolveDerivedObject(n)
	default:
		return failed, cfgerrors.NewResolution(n.Path(), "unsupported node kind", nil)
	}
}

// resolveChildren aggregates per-child outcomes: any Error wins, else any
// Unresolved wins, else Resolved.
func resolveChildren(children []*ir.Node) (outcome, error) {
	agg := resolved
	for _, c := range children {
		out, err := resolvePass(c)
		if err != nil {
			return failed, err
		}
		if out == unresolved {
			agg = unresolved
		}
	}
	return agg, nil
}

// resolveReference looks up n.Ref via n.Parent.NodeAtPath; missing is
// Unresolved, found replaces this node in place with a clone of the target.
func resolveReference(n *ir.Node) (outcome, error) {
	if n.Parent == nil {
		return failed, cfgerrors.NewResolution(n.Path(), "reference node has no parent", nil)
	}
	target, ok := n.Parent.NodeAtPath(n.Ref)
	if !ok {
		log.Debugf("reference %q at %s unresolved this pass", n.Ref, n.Path())
		return unresolved, nil
	}
	replacement := target.Clone()
	n.ReplaceInPlace(replacement)
	if ir.IsFullyResolved(n) {
		return resolved, nil
	}
	return unresolved, nil
}

// resolveDerivedArray resolves every element in this same pass; only once
// all elements are Resolved does the node convert in place to a plain Array
// of clones.
func resolveDerivedArray(n *ir.Node) (outcome, error) {
	elements := n.Elements()
	for _, e := range elements {
		e.SetParent(n)
	}
	agg, err := resolveChildren(elements)
	if err != nil {
		return failed, err
	}
	if agg != resolved {
		return unresolved, nil
	}
	arr := ir.NewArray()
	for _, e := range elements {
		if err := arr.AppendElement(e.Clone()); err != nil {
			return failed, err
		}
	}
	n.ReplaceInPlace(arr)
	return resolved, nil
}

// resolveDerivedObject looks up and merges n.Bases onto an accumulator in
// order, resolves and merges the override on top, and replaces the node in
// place with the accumulator.
func resolveDerivedObject(n *ir.Node) (outcome, error) {
	if n.Parent == nil {
		return failed, cfgerrors.NewResolution(n.Path(), "derived object node has no parent", nil)
	}

	acc := ir.NewObject()
	for _, basePath := range n.Bases {
		base, ok := n.Parent.NodeAtPath(basePath)
		if !ok {
			log.Debugf("base %q at %s unresolved this pass", basePath, n.Path())
			return unresolved, nil
		}
		if !ir.IsFullyResolved(base) {
			return unresolved, nil
		}
		if base.Kind != ir.Object {
			return failed, cfgerrors.NewResolution(n.Path(), "base "+basePath+" is not an Object", nil)
		}
		if err := merge.ApplyObject(acc, base); err != nil {
			return failed, err
		}
	}

	override := n.Override
	if override == nil {
		override = ir.NewNull()
	}
	if !ir.IsFullyResolved(override) {
		clone := override.Clone()
		clone.SetParent(n.Parent)
		out, err := resolvePass(clone)
		if err != nil {
			return failed, err
		}
		n.Override = clone
		n.Override.SetParent(n)
		if out != resolved {
			return unresolved, nil
		}
		override = clone
	}
	if override.Kind == ir.Object {
		if err := merge.ApplyObject(acc, override); err != nil {
			return failed, err
		}
	}

	n.ReplaceInPlace(acc)
	return resolved, nil
}
