package watch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencyGraph_Affected(t *testing.T) {
	g := NewDependencyGraph()
	require.NoError(t, g.Update("/p/en.yml", []string{"/p/common.yml", "/p/en.yml"}))
	require.NoError(t, g.Update("/p/fr.yml", []string{"/p/common.yml", "/p/fr.yml"}))
	require.NoError(t, g.Update("/p/de.yml", []string{"/p/de.yml"}))

	assert.Equal(t, []string{"/p/en.yml", "/p/fr.yml"}, g.Affected("/p/common.yml"))
	assert.Equal(t, []string{"/p/de.yml"}, g.Affected("/p/de.yml"))
	assert.Empty(t, g.Affected("/p/unknown.yml"))
	assert.Equal(t, []string{"/p/de.yml", "/p/en.yml", "/p/fr.yml"}, g.Modules())
	assert.True(t, g.IsModule("/p/en.yml"))
	assert.False(t, g.IsModule("/p/common.yml"))
}

func TestDependencyGraph_ModuleIncludedByModule(t *testing.T) {
	g := NewDependencyGraph()
	require.NoError(t, g.Update("/p/a.yml", []string{"/p/b.yml", "/p/a.yml"}))
	require.NoError(t, g.Update("/p/b.yml", []string{"/p/a.yml", "/p/b.yml"}))

	assert.Equal(t, []string{"/p/a.yml", "/p/b.yml"}, g.Affected("/p/a.yml"))
	assert.Equal(t, []string{"/p/a.yml", "/p/b.yml"}, g.Affected("/p/b.yml"))
}

func TestDependencyGraph_UpdateDropsStaleEdges(t *testing.T) {
	g := NewDependencyGraph()
	require.NoError(t, g.Update("/p/en.yml", []string{"/p/old.yml", "/p/en.yml"}))
	require.NoError(t, g.Update("/p/en.yml", []string{"/p/new.yml", "/p/en.yml"}))

	assert.Empty(t, g.Affected("/p/old.yml"))
	assert.Equal(t, []string{"/p/en.yml"}, g.Affected("/p/new.yml"))
	assert.Equal(t, []string{"/p/en.yml", "/p/new.yml"}, g.Files())
}

func TestDependencyGraph_Remove(t *testing.T) {
	g := NewDependencyGraph()
	require.NoError(t, g.Update("/p/en.yml", []string{"/p/common.yml", "/p/en.yml"}))
	require.NoError(t, g.Update("/p/fr.yml", []string{"/p/common.yml", "/p/fr.yml"}))

	require.NoError(t, g.Remove("/p/en.yml"))
	require.NoError(t, g.Remove("/p/missing.yml"))

	assert.Equal(t, []string{"/p/fr.yml"}, g.Affected("/p/common.yml"))
	assert.Equal(t, []string{"/p/common.yml", "/p/fr.yml"}, g.Files())

	require.NoError(t, g.Remove("/p/fr.yml"))
	assert.Empty(t, g.Files())
}
