package queue

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum number of pending tasks.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithName labels the queue in metrics.
func WithName(name string) Option {
	return func(q *InMemoryQueue) {
		if name != "" {
			q.name = name
		}
	}
}
