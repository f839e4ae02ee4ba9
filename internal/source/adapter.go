package source

import (
	"fmt"
	"sync"

	"github.com/dkarger/signalbridge/internal/event"
)

// Adapter normalizes one raw vendor payload into canonical events.
// Single-payload sources (webhooks) return at most one event; document
// sources (status pages) may return many, with per-entry rejections for
// entries that fail validation. A non-nil error rejects the whole payload.
type Adapter interface {
	// Source returns the origin tag this adapter is registered under.
	Source() string
	// Normalize maps raw into canonical events.
	Normalize(raw []byte) (*Result, error)
}

// Result is the outcome of normalizing one raw payload.
type Result struct {
	Events   []*event.Normalized
	Rejected []Rejection // entries dropped by validation (batch sources)
	Skipped  int         // entries filtered by policy, e.g. operational components
}

// Rejection identifies one entry of a batch payload that failed validation.
type Rejection struct {
	EntryID string `json:"entry_id,omitempty"`
	Reason  string `json:"reason"`
}

// Registry maps source tags to their adapters. The set of sources is closed
// at startup: Register panics on a duplicate tag so misconfiguration
// surfaces immediately, and lookups of unknown tags fail loudly.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter. Panics on duplicate source tag.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[a.Source()]; exists {
		panic(fmt.Sprintf("source registry: duplicate source %q", a.Source()))
	}
	r.adapters[a.Source()] = a
}

// Get returns the adapter for the given source tag.
func (r *Registry) Get(src string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[src]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, src)
	}
	return a, nil
}

// Sources returns all registered source tags.
func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.adapters))
	for k := range r.adapters {
		out = append(out, k)
	}
	return out
}
