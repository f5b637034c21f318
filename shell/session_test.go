package shell

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/ffs/adapters"
	"github.com/brettbedarf/ffs/filesystem"
	"github.com/brettbedarf/ffs/vpath"
)

func TestNewSession(t *testing.T) {
	t.Parallel()

	tree := filesystem.NewTree(adapters.NewMemoryStore())
	a := NewSession(tree.Root())
	b := NewSession(tree.Root())

	assert.Same(t, tree.Root(), a.Cwd)
	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSession_Relocate(t *testing.T) {
	t.Parallel()

	store := adapters.NewMemoryStore()
	tree := filesystem.NewTree(store)
	_, err := tree.Create(tree.Root(), vpath.Abs("a", "b", "c"), "f")
	require.NoError(t, err)
	_, err = tree.Create(tree.Root(), vpath.Abs("a"), "g")
	require.NoError(t, err)

	c, err := tree.ChangeDirectory(tree.Root(), vpath.Abs("a", "b", "c"))
	require.NoError(t, err)
	s := NewSession(tree.Root())
	s.Cwd = c
	before := c.Path()

	b, err := tree.ChangeDirectory(tree.Root(), vpath.Abs("a", "b"))
	require.NoError(t, err)
	require.NoError(t, tree.DeleteRecursive(b))

	s.Relocate(tree, before)
	assert.Equal(t, "-a-", vpath.EncodeDir(s.Cwd.Path()), "cwd moves to the nearest surviving ancestor")

	s.Relocate(tree, vpath.Abs("a", "g", "x"))
	assert.Equal(t, "-a-", vpath.EncodeDir(s.Cwd.Path()), "files are not directories")

	require.NoError(t, tree.Clear())
	s.Relocate(tree, before)
	assert.Same(t, tree.Root(), s.Cwd)
}
