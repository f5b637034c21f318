package filesystem

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/ffs"
	"github.com/brettbedarf/ffs/adapters"
	"github.com/brettbedarf/ffs/internal/mocks"
	"github.com/brettbedarf/ffs/vpath"
)

func newTestTree(t *testing.T, opts ...Option) (*Tree, ffs.FlatStore) {
	t.Helper()
	store := adapters.NewMemoryStore()
	return NewTree(store, opts...), store
}

// mustCreate creates a file at an absolute encoded path such as "-a-b"
func mustCreate(t *testing.T, tree *Tree, flat string) *File {
	t.Helper()
	p, err := vpath.Decode(flat)
	require.NoError(t, err)
	dir, leaf, err := p.Split()
	require.NoError(t, err)
	f, err := tree.Create(tree.Root(), dir, leaf)
	require.NoError(t, err)
	return f
}

func storeNames(t *testing.T, store ffs.FlatStore) []string {
	t.Helper()
	names, err := store.Names()
	require.NoError(t, err)
	slices.Sort(names)
	return names
}

func TestNewTree(t *testing.T) {
	t.Parallel()

	tree, store := newTestTree(t)

	require.NotNil(t, tree.Root())
	assert.True(t, tree.Root().IsRoot())
	assert.Equal(t, 0, tree.Root().Len())
	assert.Same(t, store, tree.Store())
	assert.Equal(t, DefaultIndent, tree.indent)

	tree, _ = newTestTree(t, WithIndent(2), WithIndent(-1))
	assert.Equal(t, 2, tree.indent, "negative indent must be ignored")
}

func TestTree_Create_ImpliedDirectories(t *testing.T) {
	t.Parallel()

	tree, store := newTestTree(t)
	f := mustCreate(t, tree, "-home-alice-notes")

	assert.Equal(t, "-home-alice-notes", vpath.Encode(f.Path()))
	assert.Equal(t, []string{"-home-alice-notes"}, storeNames(t, store))

	home, ok := tree.Root().Lookup("home")
	require.True(t, ok)
	assert.Equal(t, ffs.DirNode, home.Kind())

	// Existing directories are reused
	mustCreate(t, tree, "-home-bob")
	assert.Equal(t, 1, tree.Root().Len())
	assert.Equal(t, 2, home.(*Directory).Len())
}

func TestTree_Create_Relative(t *testing.T) {
	t.Parallel()

	tree, store := newTestTree(t)
	mustCreate(t, tree, "-home-x")
	home, err := tree.ChangeDirectory(tree.Root(), vpath.Abs("home"))
	require.NoError(t, err)

	f, err := tree.Create(home, vpath.Rel("docs"), "todo")
	require.NoError(t, err)
	assert.Equal(t, "-home-docs-todo", vpath.Encode(f.Path()))
	assert.Contains(t, storeNames(t, store), "-home-docs-todo")

	// Absolute dir ignores start
	f, err = tree.Create(home, vpath.Root(), "top")
	require.NoError(t, err)
	assert.Equal(t, "-top", vpath.Encode(f.Path()))
}

func TestTree_Create_Duplicate(t *testing.T) {
	t.Parallel()

	tree, store := newTestTree(t)
	mustCreate(t, tree, "-a-b")
	require.NoError(t, tree.Write(mustFind(t, tree, "-a-b"), "keep"))

	// Slot taken by a file
	_, err := tree.Create(tree.Root(), vpath.Abs("a"), "b")
	require.Error(t, err)
	assert.True(t, ffs.IsDuplicateName(err))

	// Slot taken by a directory
	_, err = tree.Create(tree.Root(), vpath.Root(), "a")
	require.Error(t, err)
	assert.True(t, ffs.IsDuplicateName(err))

	got, err := tree.Read(mustFind(t, tree, "-a-b"))
	require.NoError(t, err)
	assert.Equal(t, "keep", got, "duplicate create must not truncate")
	assert.Equal(t, []string{"-a-b"}, storeNames(t, store))
}

func TestTree_Create_ThroughFile(t *testing.T) {
	t.Parallel()

	tree, store := newTestTree(t)
	mustCreate(t, tree, "-a")

	_, err := tree.Create(tree.Root(), vpath.Abs("a", "b"), "c")
	require.Error(t, err)
	assert.True(t, ffs.IsNotADirectory(err))
	assert.Equal(t, []string{"-a"}, storeNames(t, store))
}

func TestTree_Create_InvalidNames(t *testing.T) {
	t.Parallel()

	tree, store := newTestTree(t)
	for _, leaf := range []string{"", "a-b", ".", ".."} {
		_, err := tree.Create(tree.Root(), vpath.Root(), leaf)
		require.Error(t, err, "leaf %q", leaf)
		assert.True(t, ffs.IsMalformedPath(err), "leaf %q", leaf)
	}
	_, err := tree.Create(tree.Root(), vpath.Abs("ok", ".."), "x")
	assert.True(t, ffs.IsMalformedPath(err))

	assert.Equal(t, 0, tree.Root().Len())
	assert.Empty(t, storeNames(t, store))
}

func TestTree_Create_StoreFailure(t *testing.T) {
	t.Parallel()

	store := &mocks.MockFlatStore{}
	store.On("Create", "-a-b").Return(errors.New("disk full"))
	tree := NewTree(store)

	_, err := tree.Create(tree.Root(), vpath.Abs("a"), "b")
	require.Error(t, err)
	assert.True(t, ffs.IsIOFailure(err))
	assert.Contains(t, ffs.Describe(err), "disk full")
	assert.Equal(t, 0, tree.Root().Len(), "no directories may be linked on failure")
	store.AssertExpectations(t)
}

func mustFind(t *testing.T, tree *Tree, flat string) Node {
	t.Helper()
	p, err := vpath.Decode(flat)
	require.NoError(t, err)
	n, err := tree.Find(tree.Root(), p)
	require.NoError(t, err)
	return n
}

func TestTree_Find(t *testing.T) {
	t.Parallel()

	tree, _ := newTestTree(t)
	f := mustCreate(t, tree, "-a-b-c")

	n, err := tree.Find(tree.Root(), vpath.Abs("a", "b", "c"))
	require.NoError(t, err)
	assert.Same(t, f, n)

	n, err = tree.Find(nil, vpath.Rel())
	require.NoError(t, err)
	assert.Same(t, tree.Root(), n, "nil start walks from the root")

	b := mustFind(t, tree, "-a-b").(*Directory)
	n, ok := tree.Traverse(b, vpath.Rel("c"))
	assert.True(t, ok)
	assert.Same(t, f, n)

	_, err = tree.Find(tree.Root(), vpath.Abs("a", "x", "c"))
	require.Error(t, err)
	assert.True(t, ffs.IsNotFound(err))
	assert.Contains(t, ffs.Describe(err), "-a-x")

	_, err = tree.Find(tree.Root(), vpath.Abs("a", "b", "c", "d"))
	require.Error(t, err)
	assert.True(t, ffs.IsNotADirectory(err))

	_, ok = tree.Traverse(tree.Root(), vpath.Abs("zzz"))
	assert.False(t, ok)
}

func TestTree_ChangeDirectory(t *testing.T) {
	t.Parallel()

	tree, _ := newTestTree(t)
	mustCreate(t, tree, "-home-alice-notes")

	d, err := tree.ChangeDirectory(tree.Root(), vpath.Abs("home", "alice"))
	require.NoError(t, err)
	assert.Equal(t, "-home-alice-", vpath.EncodeDir(d.Path()))

	_, err = tree.ChangeDirectory(d, vpath.Rel("notes"))
	assert.True(t, ffs.IsNotADirectory(err))

	_, err = tree.ChangeDirectory(d, vpath.Rel("nope"))
	assert.True(t, ffs.IsNotFound(err))
}

func TestTree_Delete(t *testing.T) {
	t.Parallel()

	t.Run("File", func(t *testing.T) {
		t.Parallel()
		tree, store := newTestTree(t)
		f := mustCreate(t, tree, "-a-b")
		mustCreate(t, tree, "-a-c")

		require.NoError(t, tree.Delete(f))
		assert.Equal(t, []string{"-a-c"}, storeNames(t, store))
		assert.Nil(t, f.Parent())
		_, ok := tree.Traverse(tree.Root(), vpath.Abs("a", "b"))
		assert.False(t, ok)
	})

	t.Run("Empty directory", func(t *testing.T) {
		t.Parallel()
		tree, _ := newTestTree(t)
		f := mustCreate(t, tree, "-a-b")
		require.NoError(t, tree.Delete(f))

		a := mustFind(t, tree, "-a")
		require.NoError(t, tree.Delete(a))
		assert.Equal(t, 0, tree.Root().Len())
	})

	t.Run("Populated directory", func(t *testing.T) {
		t.Parallel()
		tree, store := newTestTree(t)
		mustCreate(t, tree, "-a-b")

		err := tree.Delete(mustFind(t, tree, "-a"))
		require.Error(t, err)
		assert.True(t, ffs.IsDirectoryNotEmpty(err))
		assert.Equal(t, []string{"-a-b"}, storeNames(t, store))
	})

	t.Run("Root", func(t *testing.T) {
		t.Parallel()
		tree, _ := newTestTree(t)
		assert.Error(t, tree.Delete(tree.Root()))
	})

	t.Run("Store failure keeps node", func(t *testing.T) {
		t.Parallel()
		store := &mocks.MockFlatStore{}
		store.On("Remove", "-a").Return(errors.New("busy"))
		tree, _ := BuildFromFlatNames(store, []string{"-a"})

		err := tree.Delete(mustFind(t, tree, "-a"))
		require.Error(t, err)
		assert.True(t, ffs.IsIOFailure(err))
		assert.True(t, tree.Root().Contains("a"))
		store.AssertExpectations(t)
	})
}

func TestTree_DeleteRecursive(t *testing.T) {
	t.Parallel()

	tree, store := newTestTree(t)
	mustCreate(t, tree, "-a-b-c")
	mustCreate(t, tree, "-a-d")
	mustCreate(t, tree, "-a-e-f-g")
	mustCreate(t, tree, "-x")

	require.NoError(t, tree.DeleteRecursive(mustFind(t, tree, "-a").(*Directory)))

	assert.Equal(t, []string{"-x"}, storeNames(t, store))
	assert.False(t, tree.Root().Contains("a"))
	assert.True(t, tree.Root().Contains("x"))
}

func TestTree_DeleteRecursive_PartialFailure(t *testing.T) {
	t.Parallel()

	store := &mocks.MockFlatStore{}
	store.On("Remove", "-d-a").Return(nil)
	store.On("Remove", "-d-b").Return(errors.New("denied"))
	tree, _ := BuildFromFlatNames(store, []string{"-d-b", "-d-a", "-d-c"})
	d := mustFind(t, tree, "-d").(*Directory)

	err := tree.DeleteRecursive(d)
	require.Error(t, err)
	assert.True(t, ffs.IsIOFailure(err))

	assert.False(t, d.Contains("a"), "files removed before the failure stay removed")
	assert.True(t, d.Contains("b"))
	assert.True(t, d.Contains("c"))
	assert.True(t, tree.Root().Contains("d"))
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Remove", "-d-c")
}

func TestTree_Clear(t *testing.T) {
	t.Parallel()

	tree, store := newTestTree(t)
	mustCreate(t, tree, "-a-b")
	mustCreate(t, tree, "-c")

	require.NoError(t, tree.Clear())
	assert.Empty(t, storeNames(t, store))
	assert.Equal(t, 0, tree.Root().Len())
	assert.True(t, tree.Root().IsRoot())

	require.NoError(t, tree.Clear(), "clearing an empty tree is fine")
}

func TestTree_List(t *testing.T) {
	t.Parallel()

	tree, _ := newTestTree(t)
	mustCreate(t, tree, "-b")
	mustCreate(t, tree, "-a-x")
	mustCreate(t, tree, "-C")

	var lines []string
	for _, e := range tree.List(tree.Root()) {
		lines = append(lines, e.String())
	}
	assert.Equal(t, []string{"f: C", "d: a", "f: b"}, lines)
	assert.Empty(t, tree.List(NewDirectory("")))
}

func TestTree_PrintTree(t *testing.T) {
	t.Parallel()

	tree, _ := newTestTree(t)
	mustCreate(t, tree, "-home-alice-notes")
	mustCreate(t, tree, "-tmp")

	got := slices.Collect(tree.PrintTree(tree.Root(), 0))
	want := []string{
		"-",
		"=",
		"    -home-",
		"    ======",
		"        -home-alice-",
		"        ============",
		"        notes",
		"tmp",
	}
	assert.Equal(t, want, got)

	home := mustFind(t, tree, "-home")
	got = slices.Collect(tree.PrintTree(home, 0))
	assert.Equal(t, []string{
		"-home-",
		"======",
		"    -home-alice-",
		"    ============",
		"    notes",
	}, got)

	two := NewTree(tree.Store(), WithIndent(2))
	for depth, want := range map[int]string{0: "tmp", 1: "tmp", 2: "  tmp", 3: "    tmp"} {
		assert.Equal(t, []string{want}, slices.Collect(two.PrintTree(mustFind(t, tree, "-tmp"), depth)), "depth %d", depth)
	}
}

func TestTree_PrintTree_StopsEarly(t *testing.T) {
	t.Parallel()

	tree, _ := newTestTree(t)
	mustCreate(t, tree, "-a-b-c")

	var got []string
	for line := range tree.PrintTree(tree.Root(), 0) {
		got = append(got, line)
		if len(got) == 3 {
			break
		}
	}
	assert.Equal(t, []string{"-", "=", "    -a-"}, got)
}

func TestTree_WriteRead(t *testing.T) {
	t.Parallel()

	tree, _ := newTestTree(t)
	f := mustCreate(t, tree, "-a-notes")

	got, err := tree.Read(f)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, tree.Write(f, "hello"))
	require.NoError(t, tree.Write(f, " world"))
	got, err = tree.Read(f)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)

	a := mustFind(t, tree, "-a")
	err = tree.Write(a, "x")
	assert.True(t, ffs.IsNotAFile(err))
	_, err = tree.Read(a)
	assert.True(t, ffs.IsNotAFile(err))
}

func TestTree_Read_StoreFailure(t *testing.T) {
	t.Parallel()

	store := &mocks.MockFlatStore{}
	store.On("ReadAll", "-a").Return(nil, errors.New("gone"))
	store.On("Append", "-a", []byte("x")).Return(errors.New("gone"))
	tree, _ := BuildFromFlatNames(store, []string{"-a"})
	f := mustFind(t, tree, "-a")

	_, err := tree.Read(f)
	assert.True(t, ffs.IsIOFailure(err))
	assert.True(t, ffs.IsIOFailure(tree.Write(f, "x")))
	store.AssertExpectations(t)
}
