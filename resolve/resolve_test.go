package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signadot/cfgtree/ir"
	"github.com/signadot/cfgtree/jsonval"
	"github.com/signadot/cfgtree/reader"
)

func readRoot(t *testing.T, src string) *ir.Node {
	t.Helper()
	v, err := jsonval.Decode([]byte(src))
	require.NoError(t, err)
	n, err := reader.Read(v, "/")
	require.NoError(t, err)
	return n
}

func scalarString(t *testing.T, n *ir.Node) string {
	t.Helper()
	s, ok := n.Scalar.(string)
	require.True(t, ok, "Scalar = %#v, not a string", n.Scalar)
	return s
}

func numberString(t *testing.T, n *ir.Node) string {
	t.Helper()
	require.Equal(t, ir.Value, n.Kind)
	num, ok := n.Scalar.(interface{ String() string })
	require.True(t, ok, "Scalar = %#v, not a stringable number", n.Scalar)
	return num.String()
}

func TestResolvePlainReadHasNoReferences(t *testing.T) {
	root := readRoot(t, `{"a":1,"b":{"c":"x"}}`)
	require.NoError(t, Resolve(root, DefaultMaxCycles))
	assert.True(t, ir.IsFullyResolved(root))

	b, _ := root.Member("b")
	c, _ := b.Member("c")
	assert.Equal(t, "x", scalarString(t, c))
}

func TestResolveForwardReference(t *testing.T) {
	root := readRoot(t, `{"&a":"/b","b":7}`)
	require.NoError(t, Resolve(root, DefaultMaxCycles))

	a, _ := root.Member("a")
	b, _ := root.Member("b")
	require.Equal(t, ir.Value, a.Kind)
	require.Equal(t, ir.Value, b.Kind)
	assert.Equal(t, numberString(t, b), numberString(t, a))
}

func TestResolveDerivedObjectSingleBase(t *testing.T) {
	root := readRoot(t, `{"base":{"p":1,"q":2},"&child":{"base":"/base","config":{"q":9,"r":3}}}`)
	require.NoError(t, Resolve(root, DefaultMaxCycles))

	child, ok := root.Member("child")
	require.True(t, ok)
	require.Equal(t, ir.Object, child.Kind)

	p, _ := child.Member("p")
	q, _ := child.Member("q")
	r, _ := child.Member("r")
	assert.Equal(t, "1", numberString(t, p))
	assert.Equal(t, "9", numberString(t, q))
	assert.Equal(t, "3", numberString(t, r))
}

func TestResolveDerivedObjectMultipleBasesLaterWins(t *testing.T) {
	root := readRoot(t, `{"a":{"m":1},"b":{"m":2,"n":3},"&child":{"base":["/a","/b"],"config":{"n":7}}}`)
	require.NoError(t, Resolve(root, DefaultMaxCycles))

	child, _ := root.Member("child")
	m, _ := child.Member("m")
	n, _ := child.Member("n")
	assert.Equal(t, "2", numberString(t, m))
	assert.Equal(t, "7", numberString(t, n))
}

func TestResolveNonConvergenceFailsWithUnresolved(t *testing.T) {
	root := readRoot(t, `{"&x":"/y","&y":"/x"}`)
	assert.Error(t, Resolve(root, 10))
}

func TestResolveDerivedArrayOfReferences(t *testing.T) {
	root := readRoot(t, `{"a":1,"b":2,"&items":[{"element":"/a"},{"&element":"/b"}]}`)
	require.NoError(t, Resolve(root, DefaultMaxCycles))

	items, ok := root.Member("items")
	require.True(t, ok)
	require.Equal(t, ir.Array, items.Kind)

	els := items.Elements()
	require.Len(t, els, 2)
	assert.Equal(t, "/a", els[0].Scalar)

	b, _ := root.Member("b")
	assert.Equal(t, numberString(t, b), numberString(t, els[1]))
}

func TestResolveAlreadyResolvedTreeIsNoOp(t *testing.T) {
	root := readRoot(t, `{"a":1,"b":{"c":2}}`)
	require.NoError(t, Resolve(root, DefaultMaxCycles))

	before := root.Clone()
	require.NoError(t, Resolve(root, DefaultMaxCycles))

	a, _ := root.Member("a")
	beforeA, _ := before.Member("a")
	assert.Equal(t, numberString(t, beforeA), numberString(t, a))
}

func TestResolveBaseThatNeverAppearsNonConverges(t *testing.T) {
	root := readRoot(t, `{"&child":{"base":"/nope"}}`)
	assert.Error(t, Resolve(root, 3))
}
