// Package merge implements the object deep-merge operator, used both for
// include composition (compose) and for derived-object base-chain
// inheritance (resolve). There are no tags or special operations — exactly
// one policy: src always wins.
package merge

import (
	"github.com/signadot/cfgtree/cfgerrors"
	"github.com/signadot/cfgtree/ir"
)

// ApplyObject deep-merges src onto dst in place: for each member of src (in
// insertion order), if dst lacks the member it is cloned in; if both sides
// hold an Object at that member, the merge recurses; otherwise src's clone
// replaces dst's value wholesale (arrays are replaced, never concatenated).
// Merging is not commutative: src wins on every conflict.
//
// ApplyObject fails only when dst or src is not Object kind.
func ApplyObject(dst, src *ir.Node) error {
	if dst.Kind != ir.Object || src.Kind != ir.Object {
		return cfgerrors.NewResolution("", "apply_object requires both sides to be Object", nil)
	}
	for _, name := range src.MemberNames() {
		sv, _ := src.Member(name)
		if dv, ok := dst.Member(name); ok && dv.Kind == ir.Object && sv.Kind == ir.Object {
			if err := ApplyObject(dv, sv); err != nil {
				return err
			}
			continue
		}
		if err := dst.SetMember(name, sv.Clone()); err != nil {
			return err
		}
	}
	return nil
}
