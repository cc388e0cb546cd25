// Package worker runs room commands one at a time per room.
//
// Commands are hashed by room id onto a fixed set of shards. Each shard owns a
// bounded queue and a single worker goroutine, so commands for one room never
// overlap while different rooms proceed in parallel.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/murmur3"

	"github.com/okian/teampicker/internal/adapters/mq/queue"
	"github.com/okian/teampicker/pkg/logger"
	"github.com/okian/teampicker/pkg/metrics"
)

const defaultQueueSize = 256

// ErrStopped is returned by Submit after Shutdown.
var ErrStopped = errors.New("dispatcher stopped")

// Worker consumes one shard queue.
type Worker interface {
	// Run executes tasks until the queue is closed or ctx is canceled.
	Run(ctx context.Context)
}

// InMemoryWorker executes the tasks of one shard in arrival order.
type InMemoryWorker struct {
	queue  queue.Queue
	name   string
	done   chan struct{}
	logger logger.Logger
}

func newWorker(q queue.Queue, name string, l logger.Logger) *InMemoryWorker {
	return &InMemoryWorker{
		queue:  q,
		name:   name,
		done:   make(chan struct{}),
		logger: l.Named(name),
	}
}

func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)
	for t := range w.queue.Dequeue(ctx) {
		w.process(t)
	}
}

func (w *InMemoryWorker) process(t queue.Task) {
	ctx := t.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	// The submitter gave up while the task waited; do not apply it.
	if err := ctx.Err(); err != nil {
		reply(t, err)
		return
	}

	start := time.Now()
	err := run(ctx, t)
	metrics.RecordTaskLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		w.logger.Debug(ctx, "task failed",
			logger.Room(t.RoomID), logger.String("task", t.Name), logger.String("task_id", t.ID), logger.Error(err))
	}
	reply(t, err)
}

// run executes a task and turns a panic into an error so one bad command
// cannot take the shard down.
func run(ctx context.Context, t queue.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", t.Name, r)
		}
	}()
	return t.Exec(ctx)
}

func reply(t queue.Task, err error) {
	if t.Done != nil {
		t.Done <- err
	}
}

// Dispatcher routes room commands to shards.
type Dispatcher struct {
	shards    int
	queueSize int
	logger    logger.Logger

	queues  []*queue.InMemoryQueue
	workers []*InMemoryWorker
}

// NewDispatcher builds the shards. Call Start before submitting.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		shards:    runtime.NumCPU(),
		queueSize: defaultQueueSize,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.queues = make([]*queue.InMemoryQueue, d.shards)
	d.workers = make([]*InMemoryWorker, d.shards)
	for i := range d.shards {
		name := strconv.Itoa(i)
		d.queues[i] = queue.NewInMemoryQueue(queue.WithCapacity(d.queueSize), queue.WithName(name))
		d.workers[i] = newWorker(d.queues[i], "shard-"+name, d.logger)
	}
	metrics.UpdateShardCount(d.shards)
	return d
}

// Shards returns the number of shards.
func (d *Dispatcher) Shards() int { return d.shards }

// Start launches one worker per shard.
func (d *Dispatcher) Start(ctx context.Context) {
	for _, w := range d.workers {
		go w.Run(ctx)
	}
	d.logger.Info(ctx, "dispatcher started", logger.Int("shards", d.shards))
}

// ShardFor returns the shard index a room is pinned to.
func (d *Dispatcher) ShardFor(roomID string) int {
	return int(murmur3.Sum32([]byte(roomID)) % uint32(d.shards)) //nolint:gosec // shards is small and positive
}

// Submit runs fn on the room's shard and waits for it to finish. It returns
// fn's error, a queue rejection, or ctx's error if the caller stops waiting.
func (d *Dispatcher) Submit(ctx context.Context, roomID, name string, fn func(ctx context.Context) error) error {
	done := make(chan error, 1)
	t := queue.Task{
		Ctx:    ctx,
		ID:     uuid.NewString(),
		RoomID: roomID,
		Name:   name,
		Exec:   fn,
		Done:   done,
	}
	if err := d.queues[d.ShardFor(roomID)].Enqueue(ctx, t); err != nil {
		if errors.Is(err, queue.ErrClosed) {
			return ErrStopped
		}
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the queued task count per shard.
func (d *Dispatcher) Pending(ctx context.Context) []int {
	out := make([]int, len(d.queues))
	for i, q := range d.queues {
		out[i] = q.Len(ctx)
	}
	return out
}

// Shutdown stops accepting tasks, lets every shard drain its backlog and
// waits for the workers until ctx expires.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	for _, q := range d.queues {
		_ = q.Close()
	}
	for _, w := range d.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			d.logger.Warn(ctx, "shutdown timed out")
			return fmt.Errorf("shutdown timed out: %w", ctx.Err())
		}
	}
	d.logger.Info(ctx, "dispatcher stopped")
	return nil
}
