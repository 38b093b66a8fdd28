// Package dedupe tracks audit file names already taken from a listing so a
// file that shows up twice (overlapping pages, retried listings) is read once.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records keys that have been seen.
type Deduper interface {
	// SeenAndRecord reports whether key was already recorded and records it
	// if not. It is safe for concurrent use.
	SeenAndRecord(ctx context.Context, key string) bool

	// Forget removes key so a later listing may take it again.
	Forget(ctx context.Context, key string)

	Len() int
}

type slot struct {
	key  string
	live bool
}

// memoryDeduper keeps keys in a map. When bounded, insertion order lives in a
// ring so the oldest key is evicted first.
type memoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]int // key -> ring slot, -1 when unbounded
	ring    []slot
	next    int
	maxSize int
}

// New returns an in-memory Deduper. The default bound is 50000 keys.
func New(opts ...Option) Deduper {
	d := &memoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.ring = make([]slot, 0, min(d.maxSize, 1024))
	}
	return d
}

func (d *memoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize <= 0 {
		d.seen[key] = -1
		return false
	}

	if len(d.ring) < d.maxSize {
		d.seen[key] = len(d.ring)
		d.ring = append(d.ring, slot{key: key, live: true})
		return false
	}

	// Ring is full: overwrite the oldest slot.
	if old := d.ring[d.next]; old.live {
		delete(d.seen, old.key)
	}
	d.ring[d.next] = slot{key: key, live: true}
	d.seen[key] = d.next
	d.next = (d.next + 1) % d.maxSize
	return false
}

func (d *memoryDeduper) Forget(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i, ok := d.seen[key]
	if !ok {
		return
	}
	delete(d.seen, key)
	if i >= 0 {
		d.ring[i] = slot{}
	}
}

func (d *memoryDeduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
