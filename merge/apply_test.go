package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signadot/cfgtree/ir"
)

func obj(kv ...any) *ir.Node {
	n := ir.NewObject()
	for i := 0; i < len(kv); i += 2 {
		name := kv[i].(string)
		var child *ir.Node
		switch v := kv[i+1].(type) {
		case *ir.Node:
			child = v
		default:
			child = ir.NewValue(v)
		}
		if err := n.SetMember(name, child); err != nil {
			panic(err)
		}
	}
	return n
}

func TestApplyObjectNewMemberInserted(t *testing.T) {
	dst := obj("a", 1)
	src := obj("b", 2)
	require.NoError(t, ApplyObject(dst, src))

	a, _ := dst.Member("a")
	b, _ := dst.Member("b")
	assert.Equal(t, 1, a.Scalar)
	assert.Equal(t, 2, b.Scalar)
}

func TestApplyObjectRecursesOnBothObjects(t *testing.T) {
	dst := obj("x", obj("p", 1, "q", 2))
	src := obj("x", obj("q", 9, "r", 3))
	require.NoError(t, ApplyObject(dst, src))

	x, _ := dst.Member("x")
	p, _ := x.Member("p")
	q, _ := x.Member("q")
	r, _ := x.Member("r")
	assert.Equal(t, 1, p.Scalar)
	assert.Equal(t, 9, q.Scalar)
	assert.Equal(t, 3, r.Scalar)
}

func TestApplyObjectScalarAndArrayReplacedWholesale(t *testing.T) {
	dstArr := ir.NewArray()
	require.NoError(t, dstArr.AppendElement(ir.NewValue(1)))
	require.NoError(t, dstArr.AppendElement(ir.NewValue(2)))
	srcArr := ir.NewArray()
	require.NoError(t, srcArr.AppendElement(ir.NewValue(9)))

	dst := obj("s", "old", "arr", dstArr)
	src := obj("s", "new", "arr", srcArr)
	require.NoError(t, ApplyObject(dst, src))

	s, _ := dst.Member("s")
	assert.Equal(t, "new", s.Scalar)

	arr, _ := dst.Member("arr")
	require.Len(t, arr.Elements(), 1)
	assert.Equal(t, 9, arr.Elements()[0].Scalar)
}

func TestApplyObjectIdempotent(t *testing.T) {
	x := obj("a", obj("b", 1), "c", 2)
	xc := x.Clone()
	require.NoError(t, ApplyObject(x, xc))

	a, _ := x.Member("a")
	b, _ := a.Member("b")
	c, _ := x.Member("c")
	assert.Equal(t, 1, b.Scalar)
	assert.Equal(t, 2, c.Scalar)
}

func TestApplyObjectRequiresObjectKinds(t *testing.T) {
	dst := ir.NewArray()
	src := obj("a", 1)
	assert.Error(t, ApplyObject(dst, src))
}
