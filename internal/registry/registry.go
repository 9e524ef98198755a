// Package registry holds the per-process state shared by the metadata
// fetcher and the item store: the favicon and title caches and the flag
// recording that legacy migration has run. Create one at startup and pass
// it to both; tests build their own.
package registry

import (
	"sync"
	"sync/atomic"
)

// Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	favicons map[string][]byte
	titles   map[string]string
	migrated atomic.Bool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		favicons: make(map[string][]byte),
		titles:   make(map[string]string),
	}
}

// Favicon returns cached favicon bytes for host.
func (r *Registry) Favicon(host string) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.favicons[host]
	return data, ok
}

// StoreFavicon caches data for host.
func (r *Registry) StoreFavicon(host string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.favicons[host] = data
}

// Title returns the cached page title for an exact URL.
func (r *Registry) Title(url string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	title, ok := r.titles[url]
	return title, ok
}

// StoreTitle caches title for url.
func (r *Registry) StoreTitle(url, title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles[url] = title
}

// Migrated reports whether legacy migration already ran in this process.
func (r *Registry) Migrated() bool {
	return r.migrated.Load()
}

// MarkMigrated sets the migration flag. It returns true only for the call
// that flipped it.
func (r *Registry) MarkMigrated() bool {
	return r.migrated.CompareAndSwap(false, true)
}
