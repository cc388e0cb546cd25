package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/okian/teampicker/internal/domain/room"
	"github.com/okian/teampicker/internal/domain/teams"
	"github.com/okian/teampicker/pkg/metrics"
)

const defaultMetricsUpdateInterval = 10 * time.Second

type entry struct {
	room *room.Room
	size int
}

// MemoryStore is a map-backed Store. Rooms live until deleted or the process
// exits.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*entry

	searchOpts            []teams.Option
	metricsUpdateInterval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store and starts its gauge updater. Call Close to
// stop it.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		rooms:                 make(map[string]*entry),
		metricsUpdateInterval: defaultMetricsUpdateInterval,
	}
	for _, opt := range opts {
		opt(s)
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background updater.
func (s *MemoryStore) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) GetOrCreate(_ context.Context, id string) *room.Room {
	s.mu.RLock()
	e, ok := s.rooms[id]
	s.mu.RUnlock()
	if ok {
		return e.room
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.rooms[id]; ok {
		return e.room
	}
	e = &entry{room: room.New(id, s.searchOpts...)}
	s.rooms[id] = e
	return e.room
}

func (s *MemoryStore) Lookup(_ context.Context, id string) (*room.Room, error) {
	if id == "" {
		return nil, ErrEmptyRoomID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.rooms[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, ErrNotFound
	}
	return e.room, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) {
	s.mu.Lock()
	delete(s.rooms, id)
	s.mu.Unlock()
}

func (s *MemoryStore) RecordSize(_ context.Context, id string, n int) {
	s.mu.Lock()
	if e, ok := s.rooms[id]; ok {
		e.size = n
	}
	s.mu.Unlock()
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

func (s *MemoryStore) Participants(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Reduce(lo.Values(s.rooms), func(total int, e *entry, _ int) int { return total + e.size }, 0)
}

func (s *MemoryStore) IDs(_ context.Context) []string {
	s.mu.RLock()
	ids := lo.Keys(s.rooms)
	s.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.metricsUpdateInterval)
	defer ticker.Stop()

	s.updateMetrics(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.updateMetrics(ctx)
		}
	}
}

func (s *MemoryStore) updateMetrics(ctx context.Context) {
	metrics.UpdateRooms(s.Count(ctx))
	metrics.UpdateParticipants(s.Participants(ctx))
}
