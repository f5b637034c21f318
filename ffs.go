// Package ffs contains the core domain types and interfaces for the flat-file
// virtual tree shell: node kinds, the flat store contract, and the error
// taxonomy shared by the path codec, the tree and the shell driver.
package ffs

// NodeKind discriminates the two node variants. Valid kinds are FileNode "file"
// and DirNode "dir".
type NodeKind string

const (
	FileNode NodeKind = "file"
	DirNode  NodeKind = "dir"
)

// Tag returns the single letter used by listings, i.e. "f" or "d"
func (k NodeKind) Tag() string {
	switch k {
	case FileNode:
		return "f"
	case DirNode:
		return "d"
	default:
		return "?"
	}
}
