package filesystem

import (
	"slices"
	"strings"

	"github.com/jmgilman/go/errors"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/brettbedarf/ffs"
	"github.com/brettbedarf/ffs/vpath"
)

// Node is a single entry in the virtual tree. It is implemented only by
// [*File] and [*Directory]; switch on Kind() or on the concrete type.
type Node interface {
	// Name returns the node's segment name; the root's name is empty
	Name() string
	Kind() ffs.NodeKind
	// Parent returns the owning directory, or nil for the root and detached nodes
	Parent() *Directory
	// Path walks the parent chain and returns the node's absolute path
	Path() vpath.Path

	setParent(d *Directory)
}

type nodeBase struct {
	name   string
	parent *Directory // non-owning back reference
}

func (n *nodeBase) Name() string {
	return n.name
}

func (n *nodeBase) Parent() *Directory {
	return n.parent
}

func (n *nodeBase) setParent(d *Directory) {
	n.parent = d
}

// File is a leaf node backed by one flat file in the store
type File struct {
	nodeBase
}

// NewFile creates a detached File. The parent directory links it with
// [Directory.AddChild].
func NewFile(name string) *File {
	return &File{nodeBase{name: name}}
}

func (f *File) Kind() ffs.NodeKind {
	return ffs.FileNode
}

func (f *File) Path() vpath.Path {
	return pathOf(f)
}

// Directory owns its children, keyed by name. Files and directories share one
// namespace, so a name is unique across both kinds.
type Directory struct {
	nodeBase
	children *xsync.Map[string, Node]
}

// NewDirectory creates a detached, empty Directory
func NewDirectory(name string) *Directory {
	return &Directory{
		nodeBase: nodeBase{name: name},
		children: xsync.NewMap[string, Node](),
	}
}

func (d *Directory) Kind() ffs.NodeKind {
	return ffs.DirNode
}

func (d *Directory) Path() vpath.Path {
	return pathOf(d)
}

// IsRoot reports whether d has no parent
func (d *Directory) IsRoot() bool {
	return d.parent == nil
}

// Lookup returns the child called name
func (d *Directory) Lookup(name string) (Node, bool) {
	return d.children.Load(name)
}

func (d *Directory) Contains(name string) bool {
	_, ok := d.children.Load(name)
	return ok
}

// Len returns the number of direct children
func (d *Directory) Len() int {
	return d.children.Size()
}

// AddChild links child under d and sets its parent back reference.
// Fails with DuplicateName when a child of either kind already has that name.
func (d *Directory) AddChild(child Node) error {
	if child.Parent() != nil {
		return errors.Newf(errors.CodeConflict, "node %s is already linked", vpath.Encode(child.Path()))
	}
	if _, loaded := d.children.LoadOrStore(child.Name(), child); loaded {
		return ffs.ErrDuplicateName(vpath.Encode(d.Path().Join(child.Name())))
	}
	child.setParent(d)
	return nil
}

// RemoveChild unlinks child from d and clears its parent. Descendants of a
// removed directory are left attached to it; recursive semantics belong to the
// caller. Returns false if child is not one of d's children.
func (d *Directory) RemoveChild(child Node) bool {
	cur, ok := d.children.Load(child.Name())
	if !ok || cur != child {
		return false
	}
	d.children.Delete(child.Name())
	child.setParent(nil)
	return true
}

// Children returns a snapshot of d's children sorted by name.
// Map iteration order is never relied on elsewhere.
func (d *Directory) Children() []Node {
	out := make([]Node, 0, d.children.Size())
	d.children.Range(func(_ string, n Node) bool {
		out = append(out, n)
		return true
	})
	slices.SortFunc(out, func(a, b Node) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return out
}

// IsAncestorOf reports whether n is d or sits somewhere beneath d
func (d *Directory) IsAncestorOf(n Node) bool {
	for cur := n; cur != nil; {
		if cur == Node(d) {
			return true
		}
		p := cur.Parent()
		if p == nil {
			return false
		}
		cur = p
	}
	return false
}

func pathOf(n Node) vpath.Path {
	var segs []string
	for cur := n; cur.Parent() != nil; cur = cur.Parent() {
		segs = append(segs, cur.Name())
	}
	slices.Reverse(segs)
	return vpath.Abs(segs...)
}
