// Package queue is the bounded FIFO that feeds one dispatcher shard.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/teampicker/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Task is one room command waiting for its shard worker.
type Task struct {
	// Ctx is the submitter's context. A task whose context is done by the
	// time it reaches the front of the queue is skipped.
	Ctx      context.Context //nolint:containedctx // travels with the task across goroutines
	ID       string
	RoomID   string
	Name     string
	Enqueued time.Time
	Exec     func(ctx context.Context) error
	Done     chan error
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a task. It returns ErrFull or ErrClosed when the task was
	// not accepted.
	Enqueue(ctx context.Context, t Task) error

	// Dequeue returns a channel of tasks in arrival order. The channel is
	// closed after Close once the backlog is drained.
	Dequeue(ctx context.Context) <-chan Task

	// Len returns the current number of queued tasks.
	Len(ctx context.Context) int

	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	tasks    chan Task
	capacity int
	name     string

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
		name:     "0",
	}
	for _, opt := range opts {
		opt(q)
	}
	q.tasks = make(chan Task, q.capacity)
	metrics.UpdateQueueDepth(q.name, 0)
	return q
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, t Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejected("closed")
		return ErrClosed
	}
	if t.Enqueued.IsZero() {
		t.Enqueued = time.Now()
	}

	select {
	case <-ctx.Done():
		metrics.RecordQueueRejected("context_cancelled")
		return ctx.Err()
	default:
	}

	select {
	case q.tasks <- t:
		metrics.UpdateQueueDepth(q.name, len(q.tasks))
		return nil
	default:
		metrics.RecordQueueRejected("queue_full")
		return ErrFull
	}
}

func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Task {
	out := make(chan Task)
	go func() {
		defer close(out)
		for t := range q.tasks {
			select {
			case out <- t:
				metrics.UpdateQueueDepth(q.name, len(q.tasks))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.tasks)
}

// Close stops accepting tasks. Tasks already queued are still delivered.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.tasks)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
