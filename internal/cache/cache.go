package cache

import (
	"context"
	"log/slog"
	"time"

	applog "expensetracker/internal/log"
)

// Cache defines a generic cache interface
type Cache[K comparable, V any] interface {
	// Get retrieves a value from the cache
	Get(key K) (V, bool)

	// Set stores a value in the cache
	Set(key K, data V)

	// Delete removes a key from the cache
	Delete(key K)

	// Size returns the current number of items in the cache
	Size() int
}

// Cleaner interface for caches that support cleanup
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically evicts expired entries from registered caches
type Manager struct {
	caches []Cleaner
}

// NewManager creates a new cache manager
func NewManager() *Manager {
	return &Manager{
		caches: make([]Cleaner, 0),
	}
}

// Register adds a cache to the manager for cleanup
func (m *Manager) Register(cache Cleaner) {
	m.caches = append(m.caches, cache)
}

// CleanAll runs one eviction pass and returns the number of removed entries
func (m *Manager) CleanAll() int {
	totalCleaned := 0
	for _, cache := range m.caches {
		totalCleaned += cache.CleanExpired()
	}
	return totalCleaned
}

// Run cleans every interval until ctx is cancelled
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.CleanAll(); n > 0 {
				slog.DebugContext(ctx, "Evicted expired cache entries", applog.FieldComponent, applog.ComponentCache, "count", n)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
