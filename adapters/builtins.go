package adapters

import (
	"github.com/brettbedarf/ffs/config"
)

type BuiltInBackend = string

const (
	OSBackend     BuiltInBackend = config.OSBackend
	MemoryBackend BuiltInBackend = config.MemoryBackend
)

// RegisterBuiltins registers all built-in backends by default
// or only the specific ones if keys are provided
func (r *Registry) RegisterBuiltins(backends ...BuiltInBackend) {
	if len(backends) == 0 {
		backends = append(backends, OSBackend, MemoryBackend)
	}

	for _, key := range backends {
		switch key {
		case OSBackend:
			r.Register(OSBackend, OSProvider{})
		case MemoryBackend:
			r.Register(MemoryBackend, MemoryProvider{})
		}
	}
}

// DefaultRegistry returns a registry with every built-in backend
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.RegisterBuiltins()
	return r
}
