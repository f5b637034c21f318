package ffs

// FlatStore is the physical backing for File nodes: a single directory holding
// one ordinary file per virtual File, named by its encoded path.
//
// Implementations are not expected to be safe for concurrent use; the shell is
// the only actor.
type FlatStore interface {
	// Names returns the names of every regular file in the store.
	// Subdirectories are not part of the flat namespace and are omitted.
	Names() ([]string, error)

	// Create creates the named empty file. It fails with an error matching
	// fs.ErrExist if the name is already taken; existing contents are never touched.
	Create(name string) error

	// Append writes p to the end of the named file, creating it if needed
	Append(name string, p []byte) error

	// ReadAll returns the full contents of the named file
	ReadAll(name string) ([]byte, error)

	// Remove deletes the named file
	Remove(name string) error
}

// StoreProvider builds a FlatStore for a backend. dir is the store location
// for backends that have one.
type StoreProvider interface {
	NewStore(dir string) (FlatStore, error)
}
