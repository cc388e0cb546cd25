package repository

import (
	"time"

	"github.com/okian/teampicker/internal/domain/teams"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithSearchOptions sets the team search options every new room is built with.
func WithSearchOptions(opts ...teams.Option) Option {
	return func(s *MemoryStore) {
		s.searchOpts = append(s.searchOpts, opts...)
	}
}
