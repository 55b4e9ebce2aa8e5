package storage

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Package storage provides the shared visited-set abstraction.

// VisitedStore tracks identifiers already dispatched for fetch. Visit
// atomically claims an identifier: it returns true exactly once per
// identifier, for the first caller, regardless of which worker calls it.
type VisitedStore interface {
	Close() error
	Visit(id string) (first bool, err error)
}

// Options controls retention characteristics for persistent store implementations.
type Options struct {
	VisitedTTL      time.Duration
	CleanupInterval time.Duration
}

const (
	defaultVisitedTTL      = 5 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured visited-set backend.
func NewStore(typ, path string, opts Options) (VisitedStore, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "memory":
		return NewMemoryStore(), nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.VisitedTTL <= 0 {
		opts.VisitedTTL = defaultVisitedTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// memoryStore is the default per-run visited set.
type memoryStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemoryStore builds an in-memory visited set. Membership is monotonic:
// identifiers are never removed within a run.
func NewMemoryStore() VisitedStore {
	return &memoryStore{seen: make(map[string]struct{})}
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) Visit(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[id]; ok {
		return false, nil
	}
	m.seen[id] = struct{}{}
	return true, nil
}
