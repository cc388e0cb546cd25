package service

import (
	"time"

	"github.com/okian/teampicker/internal/domain/rating"
	"github.com/okian/teampicker/internal/domain/teams"
	"github.com/okian/teampicker/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithShardCount sets the number of dispatcher shards.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithQueueSize sets the pending command capacity per shard.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many transport input ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithCommandTimeout bounds how long a caller waits for a room command.
func WithCommandTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.commandTimeout = d
		}
	}
}

// WithTiers replaces the built-in skill-tier table.
func WithTiers(t rating.Tiers) Option {
	return func(s *Service) {
		if len(t) > 0 {
			s.tiers = t.Normalize()
		}
	}
}

// WithSearchOptions passes options to every team search.
func WithSearchOptions(opts ...teams.Option) Option {
	return func(s *Service) {
		s.searchOpts = append(s.searchOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
