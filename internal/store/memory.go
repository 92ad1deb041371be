package store

import (
	"context"
	"sync"
	"time"

	"github.com/mailmetrics/shortlink/internal/shortlink"
)

// MemoryTier is an in-process, ephemeral shortlink tier. It is always
// available and serves as the last-resort fallback when the remote tiers are
// unreachable. Expired and consumed entries are reclaimed by Sweep.
type MemoryTier struct {
	mu      sync.RWMutex
	entries map[string]*shortlink.Entry
}

// NewMemoryTier creates an empty in-memory tier.
func NewMemoryTier() *MemoryTier {
	return &MemoryTier{
		entries: make(map[string]*shortlink.Entry),
	}
}

func (m *MemoryTier) Name() string { return "memory" }

func (m *MemoryTier) Put(_ context.Context, entry *shortlink.Entry, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *entry
	m.entries[entry.Token] = &copied

	return nil
}

func (m *MemoryTier) Get(_ context.Context, token string) (*shortlink.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[token]
	if !ok {
		return nil, shortlink.ErrNotFound
	}

	copied := *entry

	return &copied, nil
}

func (m *MemoryTier) MarkConsumed(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[token]
	if !ok {
		return shortlink.ErrNotFound
	}

	if entry.Consumed {
		return shortlink.ErrGone
	}

	entry.Consumed = true

	return nil
}

func (m *MemoryTier) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, token)

	return nil
}

// Len returns the number of stored entries.
func (m *MemoryTier) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// Sweep removes entries that are expired or consumed at the given instant and
// returns the number removed. The lock is taken per entry, never for the
// whole scan, so concurrent lookups and writes are only ever blocked for the
// time it takes to inspect a single entry.
func (m *MemoryTier) Sweep(now time.Time) int {
	m.mu.RLock()
	tokens := make([]string, 0, len(m.entries))

	for token := range m.entries {
		tokens = append(tokens, token)
	}
	m.mu.RUnlock()

	removed := 0

	for _, token := range tokens {
		m.mu.Lock()

		if entry, ok := m.entries[token]; ok && (entry.Consumed || entry.Expired(now)) {
			delete(m.entries, token)
			removed++
		}

		m.mu.Unlock()
	}

	return removed
}

// Compile-time check.
var _ shortlink.Tier = (*MemoryTier)(nil)
