// Package repository holds the published ingestion snapshot.
package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/difr/pkg/metrics"
)

// Store publishes and serves snapshots.
type Store interface {
	// Publish replaces the current snapshot and wakes waiters.
	Publish(ctx context.Context, s *Snapshot) *Snapshot

	// Current returns the latest snapshot, or ErrNoSnapshot before the first
	// Publish.
	Current(ctx context.Context) (*Snapshot, error)

	// Changed returns a channel closed on the next Publish.
	Changed() <-chan struct{}
}

// MemoryStore keeps the current snapshot behind an atomic pointer.
type MemoryStore struct {
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
	now     func() time.Time

	mu      sync.Mutex
	changed chan struct{}
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		now:     time.Now,
		changed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Publish(_ context.Context, snap *Snapshot) *Snapshot {
	snap.Version = s.version.Add(1)
	snap.PublishedAt = s.now()
	s.current.Store(snap)

	s.mu.Lock()
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()

	metrics.RecordSnapshotPublished(snap.PublishedAt)
	return snap
}

func (s *MemoryStore) Current(_ context.Context) (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

func (s *MemoryStore) Changed() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}
