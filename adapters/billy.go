package adapters

import (
	"io"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/brettbedarf/ffs"
	"github.com/brettbedarf/ffs/internal/util"
)

// BillyStore is a flat store over the top level of a billy filesystem
type BillyStore struct {
	bfs billy.Filesystem
	dir string // host directory, empty for in-memory stores
}

// NewOSStore opens dir as a flat store, creating it if missing
func NewOSStore(dir string) (*BillyStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, ffs.WrapIO(err, "mkdir", dir)
	}
	return &BillyStore{bfs: osfs.New(dir), dir: dir}, nil
}

// NewMemoryStore returns an empty store that lives only in memory
func NewMemoryStore() *BillyStore {
	return &BillyStore{bfs: memfs.New()}
}

// NewBillyStore wraps an existing billy filesystem
func NewBillyStore(bfs billy.Filesystem) *BillyStore {
	return &BillyStore{bfs: bfs}
}

// Dir is the host directory backing the store, or "" when there is none
func (s *BillyStore) Dir() string { return s.dir }

func (s *BillyStore) Names() ([]string, error) {
	infos, err := s.bfs.ReadDir(".")
	if err != nil {
		// memfs has no root until the first file is written
		if os.IsNotExist(err) {
			logger := util.GetLogger("BillyStore")
			logger.Trace().Msg("Store root missing, treating as empty")
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if !info.Mode().IsRegular() {
			continue
		}
		names = append(names, info.Name())
	}
	return names, nil
}

func (s *BillyStore) Create(name string) error {
	f, err := s.bfs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

func (s *BillyStore) Append(name string, p []byte) (err error) {
	f, err := s.bfs.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = f.Write(p)
	return err
}

func (s *BillyStore) ReadAll(name string) ([]byte, error) {
	f, err := s.bfs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *BillyStore) Remove(name string) error {
	return s.bfs.Remove(name)
}

// OSProvider builds host directory stores
type OSProvider struct{}

func (OSProvider) NewStore(dir string) (ffs.FlatStore, error) {
	return NewOSStore(dir)
}

// MemoryProvider builds in-memory stores; dir is ignored
type MemoryProvider struct{}

func (MemoryProvider) NewStore(string) (ffs.FlatStore, error) {
	return NewMemoryStore(), nil
}

var (
	_ ffs.FlatStore     = (*BillyStore)(nil)
	_ ffs.StoreProvider = OSProvider{}
	_ ffs.StoreProvider = MemoryProvider{}
)
