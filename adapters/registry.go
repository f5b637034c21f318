package adapters

import (
	"fmt"
	"sync"

	"github.com/brettbedarf/ffs"
	"github.com/brettbedarf/ffs/config"
	"github.com/brettbedarf/ffs/internal/util"
)

// Registry maps backend names to store providers
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ffs.StoreProvider
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]ffs.StoreProvider),
	}
}

// Register ties a provider to a backend name. The first registration for a
// name wins; later ones are ignored.
func (r *Registry) Register(backend string, provider ffs.StoreProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[backend]; ok {
		logger := util.GetLogger("Registry")
		logger.Warn().Str("backend", backend).Msg("Provider already registered")
		return
	}
	r.providers[backend] = provider
}

func (r *Registry) GetProvider(backend string) (ffs.StoreProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[backend]
	if !ok {
		return nil, fmt.Errorf("no store provider for %q", backend)
	}
	return p, nil
}

// NewStore picks the provider for cfg.Backend and builds a store rooted at cfg.StoreDir
func (r *Registry) NewStore(cfg *config.Config) (ffs.FlatStore, error) {
	p, err := r.GetProvider(cfg.Backend)
	if err != nil {
		return nil, err
	}
	return p.NewStore(cfg.StoreDir)
}
