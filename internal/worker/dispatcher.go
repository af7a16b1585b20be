package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrStopped is returned by Submit once Stop has been called.
var ErrStopped = errors.New("dispatcher stopped")

// Task is one unit of deferred work. Its context is the one given to Submit.
type Task func(ctx context.Context) error

type job struct {
	ctx  context.Context
	task Task
}

// lane holds the pending jobs of one key. A lane exists only while it has work.
type lane struct {
	pending []job
}

// Dispatcher runs tasks sharing a key one at a time in submission order, while tasks with
// different keys run concurrently. Each busy key owns one goroutine that exits when idle.
type Dispatcher struct {
	mu      sync.Mutex
	lanes   map[string]*lane
	stopped bool
	wg      sync.WaitGroup
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{lanes: make(map[string]*lane)}
}

// Submit queues task behind any earlier task with the same key. It never blocks on the task.
func (d *Dispatcher) Submit(ctx context.Context, key string, task Task) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return ErrStopped
	}

	j := job{ctx: ctx, task: task}
	if l, ok := d.lanes[key]; ok {
		l.pending = append(l.pending, j)
		slog.DebugContext(ctx, "task queued behind running task",
			"key", key,
			"queue_depth", len(l.pending))
		return nil
	}

	l := &lane{pending: []job{j}}
	d.lanes[key] = l
	d.wg.Add(1)
	go d.drain(key, l)
	return nil
}

func (d *Dispatcher) drain(key string, l *lane) {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		if len(l.pending) == 0 {
			delete(d.lanes, key)
			d.mu.Unlock()
			return
		}
		j := l.pending[0]
		l.pending[0] = job{}
		l.pending = l.pending[1:]
		d.mu.Unlock()

		start := time.Now()
		if err := d.runSafe(j); err != nil {
			slog.ErrorContext(j.ctx, "task failed",
				"key", key,
				"duration_ms", time.Since(start).Milliseconds(),
				"error", err)
			continue
		}
		slog.DebugContext(j.ctx, "task finished",
			"key", key,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

func (d *Dispatcher) runSafe(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(j.ctx, "panic recovered in task", "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return j.task(j.ctx)
}

// Busy returns the number of keys with queued or running work.
func (d *Dispatcher) Busy() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lanes)
}

// Stop rejects new tasks and waits for queued ones to finish, or for ctx to end.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for %d busy keys: %w", d.Busy(), ctx.Err())
	}
}
