package shell

import (
	"github.com/google/uuid"

	"github.com/brettbedarf/ffs/filesystem"
	"github.com/brettbedarf/ffs/vpath"
)

// Session is the per-run shell state. The current directory lives here, not
// in the tree, and is passed into every tree call.
type Session struct {
	ID  uuid.UUID
	Cwd *filesystem.Directory
}

// NewSession starts a session at root
func NewSession(root *filesystem.Directory) *Session {
	return &Session{
		ID:  uuid.New(),
		Cwd: root,
	}
}

// Relocate moves Cwd to the deepest directory along before that still exists
// in tree. Call it with the Cwd path captured ahead of a removal.
func (s *Session) Relocate(tree *filesystem.Tree, before vpath.Path) {
	cur := tree.Root()
	for _, seg := range before.Segments {
		child, ok := cur.Lookup(seg)
		if !ok {
			break
		}
		d, ok := child.(*filesystem.Directory)
		if !ok {
			break
		}
		cur = d
	}
	s.Cwd = cur
}
