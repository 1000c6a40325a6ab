package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signadot/cfgtree/ir"
)

func TestRegisterAndRead(t *testing.T) {
	f := New()
	f.Register("CppConfigFramework", func(workingDir, destinationPath string, params map[string]string) (*ir.Node, error) {
		n := ir.NewObject()
		_ = n.SetMember("working_dir", ir.NewValue(workingDir))
		return n, nil
	})

	n, err := f.Read("CppConfigFramework", "/tmp", "/", nil)
	require.NoError(t, err)

	wd, ok := n.Member("working_dir")
	require.True(t, ok)
	assert.Equal(t, "/tmp", wd.Scalar)
}

func TestReadUnknownTypeErrors(t *testing.T) {
	f := New()
	_, err := f.Read("Nope", "/tmp", "/", nil)
	assert.Error(t, err)
}

func TestTypesListsRegistrations(t *testing.T) {
	f := New()
	f.Register("A", func(string, string, map[string]string) (*ir.Node, error) { return nil, nil })
	f.Register("B", func(string, string, map[string]string) (*ir.Node, error) { return nil, nil })
	assert.Len(t, f.Types(), 2)
}
