// Package dedupe tracks transport input identities so a redelivered
// message or retried request is handled at most once.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 10000

// Deduper records seen input IDs.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a rejected input can be retried.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper keeps the most recent maxSize IDs. The oldest ID is evicted
// first. A non-positive maxSize keeps everything.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string
	head    int
	maxSize int
}

// NewInMemoryDeduper creates an in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seen[id] = struct{}{}
	if d.maxSize <= 0 {
		return false
	}

	if len(d.ring) < d.maxSize {
		d.ring = append(d.ring, id)
		return false
	}
	// Ring is full: overwrite the oldest slot. Slots emptied by Unrecord
	// hold "" and evict nothing.
	if old := d.ring[d.head]; old != "" {
		delete(d.seen, old)
	}
	d.ring[d.head] = id
	d.head = (d.head + 1) % d.maxSize
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; !ok {
		return
	}
	delete(d.seen, id)
	for i, v := range d.ring {
		if v == id {
			d.ring[i] = ""
			break
		}
	}
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
