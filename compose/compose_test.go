package compose

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signadot/cfgtree/ir"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func numberString(t *testing.T, n *ir.Node) string {
	t.Helper()
	require.Equal(t, ir.Value, n.Kind)
	num, ok := n.Scalar.(interface{ String() string })
	require.True(t, ok, "Scalar = %#v, not a stringable number", n.Scalar)
	return num.String()
}

func TestReadTopLevelConfigOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.json", `{"config":{"a":1,"b":{"c":"x"}}}`)

	root, err := Read("top.json", dir, "/", "/")
	require.NoError(t, err)

	a, _ := root.Member("a")
	assert.Equal(t, "1", numberString(t, a))
}

func TestReadIncludeOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.json", `{"config":{"x":1,"y":2}}`)
	writeFile(t, dir, "top.json", `{"includes":[{"file_path":"base.json"}],"config":{"y":9,"z":3}}`)

	root, err := Read("top.json", dir, "/", "/")
	require.NoError(t, err)

	x, _ := root.Member("x")
	y, _ := root.Member("y")
	z, _ := root.Member("z")
	assert.Equal(t, "1", numberString(t, x))
	assert.Equal(t, "9", numberString(t, y))
	assert.Equal(t, "3", numberString(t, z))
}

func TestReadMultipleIncludesLaterWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"config":{"v":1}}`)
	writeFile(t, dir, "b.json", `{"config":{"v":2}}`)
	writeFile(t, dir, "top.json", `{"includes":[{"file_path":"a.json"},{"file_path":"b.json"}]}`)

	root, err := Read("top.json", dir, "/", "/")
	require.NoError(t, err)

	v, _ := root.Member("v")
	assert.Equal(t, "2", numberString(t, v))
}

func TestReadIncludeCycleIsRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"includes":[{"file_path":"b.json"}]}`)
	writeFile(t, dir, "b.json", `{"includes":[{"file_path":"a.json"}]}`)

	_, err := Read("a.json", dir, "/", "/")
	assert.Error(t, err)
}

func TestReadDestinationNodeRelocatesSubtree(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "inner.json", `{"config":{"n":1}}`)
	writeFile(t, dir, "top.json",
		`{"includes":[{"file_path":"inner.json","destination_node":"/nested/spot"}]}`)

	root, err := Read("top.json", dir, "/", "/")
	require.NoError(t, err)

	nested, ok := root.Member("nested")
	require.True(t, ok)
	require.Equal(t, ir.Object, nested.Kind)

	spot, ok := nested.Member("spot")
	require.True(t, ok)
	require.Equal(t, ir.Object, spot.Kind)

	n, ok := spot.Member("n")
	require.True(t, ok)
	assert.Equal(t, "1", numberString(t, n))
}

func TestReadSourceNodeExtractsSubtree(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "inner.json", `{"config":{"wanted":{"k":5},"ignored":1}}`)
	writeFile(t, dir, "top.json",
		`{"includes":[{"file_path":"inner.json","source_node":"/wanted"}]}`)

	root, err := Read("top.json", dir, "/", "/")
	require.NoError(t, err)

	_, ok := root.Member("ignored")
	assert.False(t, ok)

	k, ok := root.Member("k")
	require.True(t, ok)
	assert.Equal(t, "5", numberString(t, k))
}

func TestReadOuterSourceDestinationRelocation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.json", `{"config":{"db":{"host":"localhost"}}}`)

	root, err := Read("top.json", dir, "/db", "/services/database")
	require.NoError(t, err)

	services, ok := root.Member("services")
	require.True(t, ok)
	database, ok := services.Member("database")
	require.True(t, ok)
	host, ok := database.Member("host")
	require.True(t, ok)
	assert.Equal(t, "localhost", host.Scalar)
}

func TestReadUnknownIncludeTypeIsSchemaError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.json", `{"includes":[{"type":"OtherFormat","file_path":"x.json"}]}`)

	_, err := Read("top.json", dir, "/", "/")
	assert.Error(t, err)
}

func TestReadMissingFileIsIoError(t *testing.T) {
	dir := t.TempDir()
	_, err := Read("nope.json", dir, "/", "/")
	assert.Error(t, err)
}
