package filesystem

import (
	"io/fs"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/jmgilman/go/errors"

	"github.com/brettbedarf/ffs"
	"github.com/brettbedarf/ffs/internal/util"
	"github.com/brettbedarf/ffs/vpath"
)

// DefaultIndent is the number of spaces per tree depth in [Tree.PrintTree]
const DefaultIndent = 4

// Tree owns the root Directory and keeps File nodes in lockstep with their
// backing flat files. It is not safe for concurrent use.
type Tree struct {
	root   *Directory
	store  ffs.FlatStore
	indent int
}

// Option configures a Tree
type Option func(*Tree)

// WithIndent sets the PrintTree indent width. Negative widths are ignored.
func WithIndent(n int) Option {
	return func(t *Tree) {
		if n >= 0 {
			t.indent = n
		}
	}
}

// NewTree creates an empty tree over store
func NewTree(store ffs.FlatStore, opts ...Option) *Tree {
	t := &Tree{
		root:   NewDirectory(""),
		store:  store,
		indent: DefaultIndent,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Root returns the root directory
func (t *Tree) Root() *Directory {
	return t.root
}

// Store returns the flat store backing the tree
func (t *Tree) Store() ffs.FlatStore {
	return t.store
}

// origin picks where a walk along p starts: the root for absolute paths or a
// nil start, start otherwise.
func (t *Tree) origin(start *Directory, p vpath.Path) *Directory {
	if p.Absolute || start == nil {
		return t.root
	}
	return start
}

// Traverse descends from start one segment at a time and returns the final
// node. It reports false if a segment is missing or an intermediate is a File.
func (t *Tree) Traverse(start *Directory, p vpath.Path) (Node, bool) {
	n, err := t.Find(start, p)
	return n, err == nil
}

// Find is [Tree.Traverse] with the reason for a miss: NotFound for a missing
// segment, NotADirectory when a File sits in the middle of the path.
func (t *Tree) Find(start *Directory, p vpath.Path) (Node, error) {
	var cur Node = t.origin(start, p)
	for i, seg := range p.Segments {
		dir, ok := cur.(*Directory)
		if !ok {
			return nil, ffs.ErrNotADirectory(vpath.Encode(vpath.Path{Segments: p.Segments[:i], Absolute: p.Absolute}))
		}
		child, ok := dir.Lookup(seg)
		if !ok {
			return nil, ffs.ErrNotFound(vpath.Encode(vpath.Path{Segments: p.Segments[:i+1], Absolute: p.Absolute}))
		}
		cur = child
	}
	return cur, nil
}

// ChangeDirectory resolves p from start and returns it if it is a Directory
func (t *Tree) ChangeDirectory(start *Directory, p vpath.Path) (*Directory, error) {
	n, err := t.Find(start, p)
	if err != nil {
		return nil, err
	}
	dir, ok := n.(*Directory)
	if !ok {
		return nil, ffs.ErrNotADirectory(vpath.Encode(n.Path()))
	}
	return dir, nil
}

// Create adds a File named leaf under dir, creating every missing directory
// along the way like `mkdir -p`, and creates its empty backing flat file.
//
// Fails with DuplicateName if the slot is taken by a node of either kind and
// NotADirectory if a File sits on the path. The tree is unchanged on failure.
func (t *Tree) Create(start *Directory, dir vpath.Path, leaf string) (*File, error) {
	return t.insert(start, dir, leaf, true)
}

// insert walks dir from start and links a new File at leaf. When persist is
// set the backing file is created before anything is linked, so a store
// failure leaves the tree untouched.
func (t *Tree) insert(start *Directory, dir vpath.Path, leaf string, persist bool) (*File, error) {
	logger := util.GetLogger("Tree.insert")

	if err := vpath.ValidateSegment(leaf); err != nil {
		return nil, err
	}
	for _, seg := range dir.Segments {
		if err := vpath.ValidateSegment(seg); err != nil {
			return nil, err
		}
	}

	// Walk the existing prefix; everything after it must be created
	cur := t.origin(start, dir)
	var missing []string
	for i, seg := range dir.Segments {
		child, ok := cur.Lookup(seg)
		if !ok {
			missing = dir.Segments[i:]
			break
		}
		d, ok := child.(*Directory)
		if !ok {
			return nil, ffs.ErrNotADirectory(vpath.Encode(child.Path()))
		}
		cur = d
	}

	full := cur.Path().Join(missing...).Join(leaf)
	flat := vpath.Encode(full)
	if len(missing) == 0 && cur.Contains(leaf) {
		return nil, ffs.ErrDuplicateName(flat)
	}

	if persist {
		if err := t.store.Create(flat); err != nil {
			// a stored name the loader skipped can still occupy this slot
			if errors.Is(err, fs.ErrExist) {
				logger.Warn().Str("name", flat).Msg("Backing file already exists")
				return nil, ffs.ErrDuplicateName(flat)
			}
			logger.Error().Err(err).Str("name", flat).Msg("Failed to create backing file")
			return nil, ffs.WrapIO(err, "create", flat)
		}
	}

	for _, seg := range missing {
		d := NewDirectory(seg)
		if err := cur.AddChild(d); err != nil {
			return nil, err
		}
		cur = d
	}
	file := NewFile(leaf)
	if err := cur.AddChild(file); err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		logger.Debug().Str("path", flat).Int("dirs", len(missing)).Msg("Created implied directories")
	}
	logger.Debug().Str("path", flat).Bool("persist", persist).Msg("Added file node")
	return file, nil
}

// Delete removes a single node. A File's backing flat file is removed first,
// then the node is detached. A Directory is detached only when empty;
// populated directories fail with DirectoryNotEmpty (see [Tree.DeleteRecursive]).
func (t *Tree) Delete(n Node) error {
	switch v := n.(type) {
	case *File:
		return t.deleteFile(v)
	case *Directory:
		if v.IsRoot() {
			return ffs.ErrMalformedPath(vpath.Separator, "cannot delete the root")
		}
		if v.Len() > 0 {
			return ffs.ErrDirectoryNotEmpty(vpath.EncodeDir(v.Path()))
		}
		v.Parent().RemoveChild(v)
		return nil
	default:
		return ffs.ErrNotFound("<nil>")
	}
}

func (t *Tree) deleteFile(f *File) error {
	parent := f.Parent()
	if parent == nil {
		return ffs.ErrNotFound(f.Name())
	}
	flat := vpath.Encode(f.Path())
	if err := t.store.Remove(flat); err != nil {
		return ffs.WrapIO(err, "remove", flat)
	}
	parent.RemoveChild(f)
	return nil
}

// DeleteRecursive removes every File beneath dir depth-first, each backing file
// before its node, then detaches dir itself. For the root only the children go.
//
// There is no rollback: if a removal fails midway the files already removed
// stay removed and the rest of the subtree stays in place. Reloading the tree
// from the store brings the two back in line.
func (t *Tree) DeleteRecursive(dir *Directory) error {
	logger := util.GetLogger("Tree.DeleteRecursive")

	if err := t.deleteChildren(dir); err != nil {
		logger.Error().Err(err).Str("path", vpath.EncodeDir(dir.Path())).
			Msg("Recursive delete stopped; tree and store may disagree until reload")
		return err
	}
	if !dir.IsRoot() {
		dir.Parent().RemoveChild(dir)
	}
	return nil
}

func (t *Tree) deleteChildren(dir *Directory) error {
	for _, child := range dir.Children() {
		switch c := child.(type) {
		case *File:
			if err := t.deleteFile(c); err != nil {
				return err
			}
		case *Directory:
			if err := t.deleteChildren(c); err != nil {
				return err
			}
			dir.RemoveChild(c)
		}
	}
	return nil
}

// Clear deletes everything under the root
func (t *Tree) Clear() error {
	return t.DeleteRecursive(t.root)
}

// Entry is one line of a directory listing
type Entry struct {
	Kind ffs.NodeKind
	Name string
}

// String renders the entry as "f: name" or "d: name"
func (e Entry) String() string {
	return e.Kind.Tag() + ": " + e.Name
}

// List returns dir's children sorted by name (byte-wise, case-sensitive)
func (t *Tree) List(dir *Directory) []Entry {
	children := dir.Children()
	entries := make([]Entry, 0, len(children))
	for _, c := range children {
		entries = append(entries, Entry{Kind: c.Kind(), Name: c.Name()})
	}
	return entries
}

// PrintTree lazily yields an indented depth-first rendering of n. A Directory
// yields its path header and an "=" underline of the same width, then its
// children one level deeper. A File yields its name in its parent's column,
// directly under the parent's underline. Children are visited in name order.
func (t *Tree) PrintTree(n Node, depth int) iter.Seq[string] {
	return func(yield func(string) bool) {
		t.printNode(n, depth, yield)
	}
}

func (t *Tree) printNode(n Node, depth int, yield func(string) bool) bool {
	switch v := n.(type) {
	case *File:
		return yield(strings.Repeat(" ", max(depth-1, 0)*t.indent) + v.Name())
	case *Directory:
		pad := strings.Repeat(" ", depth*t.indent)
		header := vpath.EncodeDir(v.Path())
		if !yield(pad + header) {
			return false
		}
		if !yield(pad + strings.Repeat("=", utf8.RuneCountInString(header))) {
			return false
		}
		for _, c := range v.Children() {
			if !t.printNode(c, depth+1, yield) {
				return false
			}
		}
	}
	return true
}

// Write appends text to n's backing flat file
func (t *Tree) Write(n Node, text string) error {
	f, ok := n.(*File)
	if !ok {
		return ffs.ErrNotAFile(vpath.EncodeDir(n.Path()))
	}
	flat := vpath.Encode(f.Path())
	if err := t.store.Append(flat, []byte(text)); err != nil {
		return ffs.WrapIO(err, "append to", flat)
	}
	return nil
}

// Read returns the full contents of n's backing flat file
func (t *Tree) Read(n Node) (string, error) {
	f, ok := n.(*File)
	if !ok {
		return "", ffs.ErrNotAFile(vpath.EncodeDir(n.Path()))
	}
	flat := vpath.Encode(f.Path())
	data, err := t.store.ReadAll(flat)
	if err != nil {
		return "", ffs.WrapIO(err, "read", flat)
	}
	return string(data), nil
}
