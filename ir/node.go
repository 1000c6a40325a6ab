// Package ir provides the intermediate representation for cfgtree
// documents: a tagged tree node with parent back-links.
//
// In addition to the resolved kinds (Null, Value, Array, Object) there are
// three pre-resolution kinds — NodeReference, DerivedArray, DerivedObject —
// that the resolver package replaces in place.
package ir

import (
	"strings"

	"github.com/signadot/cfgtree/cfgerrors"
	"github.com/signadot/cfgtree/ndpath"
)

// Kind discriminates the tagged union a Node holds.
type Kind int

const (
	// Null is the unit value.
	Null Kind = iota
	// Value carries an opaque scalar payload, never inspected by the core.
	Value
	// Array is an ordered sequence of child nodes.
	Array
	// Object is an insertion-ordered mapping from member name to child node.
	Object
	// NodeReference carries an unresolved path string. Pre-resolution only.
	NodeReference
	// DerivedArray is an ordered sequence of (typically reference) children,
	// each resolved independently before the node becomes a plain Array.
	// Pre-resolution only.
	DerivedArray
	// DerivedObject carries a non-empty ordered list of base paths and an
	// Object-or-Null override. Pre-resolution only.
	DerivedObject
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "Null"
	case Value:
		return "Value"
	case Array:
		return "Array"
	case Object:
		return "Object"
	case NodeReference:
		return "NodeReference"
	case DerivedArray:
		return "DerivedArray"
	case DerivedObject:
		return "DerivedObject"
	default:
		return "Unknown"
	}
}

// Node is the polymorphic tree node. Exactly one group of fields is
// meaningful, selected by Kind. Parent is a non-owning lookup edge,
// maintained as an invariant by every mutating operation.
type Node struct {
	Kind Kind

	Parent      *Node
	ParentIndex int
	ParentField string

	// Value payload. Opaque: the core only round-trips it.
	Scalar any

	// Array / DerivedArray children.
	elements []*Node

	// Object children, parallel slices in insertion order.
	names  []string
	values []*Node

	// NodeReference.
	Ref string

	// DerivedObject.
	Bases    []string
	Override *Node // Object or Null kind; nil treated as Null
}

// NewNull returns a fresh Null node.
func NewNull() *Node { return &Node{Kind: Null} }

// NewValue returns a fresh Value node wrapping an opaque scalar.
func NewValue(v any) *Node { return &Node{Kind: Value, Scalar: v} }

// NewArray returns a fresh, empty Array node.
func NewArray() *Node { return &Node{Kind: Array} }

// NewObject returns a fresh, empty Object node.
func NewObject() *Node { return &Node{Kind: Object} }

// NewNodeReference returns a fresh NodeReference node for the given raw
// (already-validated) reference path.
func NewNodeReference(ref string) *Node { return &Node{Kind: NodeReference, Ref: ref} }

// NewDerivedArray returns a fresh, empty DerivedArray node.
func NewDerivedArray() *Node { return &Node{Kind: DerivedArray} }

// NewDerivedObject returns a fresh DerivedObject node. override may be nil,
// treated as a Null override.
func NewDerivedObject(bases []string, override *Node) *Node {
	n := &Node{Kind: DerivedObject, Bases: append([]string(nil), bases...)}
	if override != nil {
		n.Override = override
		override.Parent = n
	}
	return n
}

// IsRoot reports whether n has no parent.
func (n *Node) IsRoot() bool { return n.Parent == nil }

// SetParent re-homes n under p. Used by the resolver when re-parenting
// cloned subtrees.
func (n *Node) SetParent(p *Node) { n.Parent = p }

// Elements returns the children of an Array or DerivedArray node.
func (n *Node) Elements() []*Node { return n.elements }

// AppendElement takes ownership of child, appending it to an Array or
// DerivedArray node and setting its parent to n.
func (n *Node) AppendElement(child *Node) error {
	if n.Kind != Array && n.Kind != DerivedArray {
		return cfgerrors.NewResolution(n.Path(), "AppendElement on non-array kind "+n.Kind.String(), nil)
	}
	child.Parent = n
	child.ParentIndex = len(n.elements)
	child.ParentField = ""
	n.elements = append(n.elements, child)
	return nil
}

// MemberNames returns the Object's member names in insertion order.
func (n *Node) MemberNames() []string {
	out := make([]string, len(n.names))
	copy(out, n.names)
	return out
}

// Member looks up a direct Object member by name.
func (n *Node) Member(name string) (*Node, bool) {
	if n.Kind != Object {
		return nil, false
	}
	for i, nm := range n.names {
		if nm == name {
			return n.values[i], true
		}
	}
	return nil, false
}

// SetMember takes ownership of child, inserting it as member name of an
// Object node. An existing name is overwritten in place, preserving its
// current position; a new name is appended.
func (n *Node) SetMember(name string, child *Node) error {
	if n.Kind != Object {
		return cfgerrors.NewResolution(n.Path(), "SetMember on non-object kind "+n.Kind.String(), nil)
	}
	child.Parent = n
	child.ParentField = name
	for i, nm := range n.names {
		if nm == name {
			child.ParentIndex = i
			n.values[i] = child
			return nil
		}
	}
	child.ParentIndex = len(n.names)
	n.names = append(n.names, name)
	n.values = append(n.values, child)
	return nil
}

// fixupChildren re-points every direct child's Parent at n. Used after a
// resolver substitution that copies another node's fields onto *n by value,
// which otherwise leaves children pointing at the now-discarded source.
func (n *Node) fixupChildren() {
	switch n.Kind {
	case Array, DerivedArray:
		for _, e := range n.elements {
			e.Parent = n
		}
	case Object:
		for _, v := range n.values {
			v.Parent = n
		}
	case DerivedObject:
		if n.Override != nil {
			n.Override.Parent = n
		}
	}
}

// ReplaceInPlace overwrites n's kind-specific content with src's while
// preserving n's own Parent/ParentIndex/ParentField, then fixes up the
// newly-owned children's Parent pointers to point at n. This is how the
// resolver turns a NodeReference/DerivedArray/DerivedObject into its
// resolved replacement without disturbing the slot n occupies in its
// parent.
func (n *Node) ReplaceInPlace(src *Node) {
	parent, idx, field := n.Parent, n.ParentIndex, n.ParentField
	*n = *src
	n.Parent, n.ParentIndex, n.ParentField = parent, idx, field
	n.fixupChildren()
}

// Clone produces a deep copy. The clone's root has no parent; its
// descendants' parents are the cloned ancestors.
func (n *Node) Clone() *Node {
	c := &Node{Kind: n.Kind, Scalar: n.Scalar, Ref: n.Ref}
	switch n.Kind {
	case Array, DerivedArray:
		c.elements = make([]*Node, len(n.elements))
		for i, e := range n.elements {
			ce := e.Clone()
			ce.Parent = c
			ce.ParentIndex = i
			c.elements[i] = ce
		}
	case Object:
		c.names = append([]string(nil), n.names...)
		c.values = make([]*Node, len(n.values))
		for i, v := range n.values {
			cv := v.Clone()
			cv.Parent = c
			cv.ParentIndex = i
			cv.ParentField = n.names[i]
			c.values[i] = cv
		}
	case DerivedObject:
		c.Bases = append([]string(nil), n.Bases...)
		if n.Override != nil {
			c.Override = n.Override.Clone()
			c.Override.Parent = c
		}
	}
	return c
}

// Root climbs parents to the tree root.
func (n *Node) Root() *Node {
	r := n
	for r.Parent != nil {
		r = r.Parent
	}
	return r
}

// Path returns n's canonical absolute path, climbing parents and recording
// object member names. Array elements carry no name segment; Path is
// meaningful only for nodes reached via a chain of object members.
func (n *Node) Path() string {
	if n.Parent == nil {
		return ndpath.Root
	}
	var segs []string
	cur := n
	for cur.Parent != nil {
		if cur.ParentField != "" {
			segs = append([]string{cur.ParentField}, segs...)
		}
		cur = cur.Parent
	}
	if len(segs) == 0 {
		return ndpath.Root
	}
	return ndpath.Root + strings.Join(segs, "/")
}

// NodeAtPath resolves p starting from n: absolute paths walk from the root,
// relative paths walk from n. The ".." segment ascends to the parent.
// Lookup returns ok=false (not an error) if any segment misses, so callers
// can distinguish "not yet resolvable" from a hard error.
func (n *Node) NodeAtPath(p string) (*Node, bool) {
	if p == "" {
		return n, true
	}
	cur := n
	body := p
	if ndpath.IsAbsolute(p) {
		cur = n.Root()
		body = p[1:]
	}
	if body == "" {
		return cur, true
	}
	for _, seg := range strings.Split(body, "/") {
		switch seg {
		case "":
			continue
		case "..":
			if cur.Parent == nil {
				return nil, false
			}
			cur = cur.Parent
		default:
			if cur.Kind != Object {
				return nil, false
			}
			next, ok := cur.Member(seg)
			if !ok {
				return nil, false
			}
			cur = next
		}
	}
	return cur, true
}

// IsFullyResolved reports whether n and every descendant is one of the
// resolved kinds {Null, Value, Array, Object}.
func IsFullyResolved(n *Node) bool {
	switch n.Kind {
	case Null, Value:
		return true
	case Array:
		for _, e := range n.elements {
			if !IsFullyResolved(e) {
				return false
			}
		}
		return true
	case Object:
		for _, v := range n.values {
			if !IsFullyResolved(v) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
