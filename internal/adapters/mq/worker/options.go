package worker

import (
	"github.com/okian/teampicker/pkg/logger"
)

// Option applies a configuration option to the Dispatcher.
type Option func(*Dispatcher)

// WithShards sets the number of shards. Each shard runs one worker.
func WithShards(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.shards = n
		}
	}
}

// WithQueueSize sets the pending task capacity of every shard.
func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queueSize = n
		}
	}
}

// WithLogger sets a custom logger for the dispatcher and its workers.
func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}
