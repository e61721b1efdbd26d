// Package dispatch runs post-commit side effects on a bounded worker pool.
// Tasks never report back to the caller: failures, panics and timeouts are
// logged and dropped.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Task is one named side effect.
type Task struct {
	Name   string
	Fields []zap.Field
	// Timeout overrides the dispatcher default when positive.
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

type Config struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
}

type Dispatcher struct {
	cfg   Config
	log   *zap.Logger
	queue chan Task

	mu      sync.RWMutex
	started bool
	closed  bool

	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

func New(cfg Config, log *zap.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 15 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		cfg:    cfg,
		log:    log,
		queue:  make(chan Task, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	d.group = &errgroup.Group{}
	for i := 0; i < d.cfg.Workers; i++ {
		d.group.Go(func() error {
			for task := range d.queue {
				d.run(task)
			}
			return nil
		})
	}
	d.log.Info("Side-effect dispatcher started",
		zap.Int("workers", d.cfg.Workers), zap.Int("queue_size", d.cfg.QueueSize))
}

// Dispatch enqueues task without blocking. It returns false when the queue is
// full or the dispatcher is shutting down; the task is then dropped and logged.
func (d *Dispatcher) Dispatch(task Task) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn("Dispatcher closed, dropping task", taskFields(task)...)
		return false
	}
	select {
	case d.queue <- task:
		return true
	default:
		d.log.Warn("Dispatch queue full, dropping task", taskFields(task)...)
		return false
	}
}

// Shutdown stops intake and drains queued tasks. If ctx expires first the
// running tasks are cancelled and ctx.Err() is returned.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		d.cancel()
		return nil
	}

	done := make(chan struct{})
	go func() {
		_ = d.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		d.log.Info("Side-effect dispatcher drained")
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return fmt.Errorf("dispatcher shutdown: %w", ctx.Err())
	}
}

func (d *Dispatcher) run(task Task) {
	timeout := d.cfg.TaskTimeout
	if task.Timeout > 0 {
		timeout = task.Timeout
	}
	ctx, cancel := context.WithTimeout(d.ctx, timeout)
	defer cancel()

	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			d.log.Error("Side-effect task panicked", taskFields(task, zap.Any("panic", p), zap.Stack("stack"))...)
		}
	}()

	if err := task.Run(ctx); err != nil {
		d.log.Error("Side-effect task failed", taskFields(task, zap.Error(err), zap.Duration("elapsed", time.Since(start)))...)
		return
	}
	d.log.Debug("Side-effect task completed", taskFields(task, zap.Duration("elapsed", time.Since(start)))...)
}

func taskFields(task Task, extra ...zap.Field) []zap.Field {
	fields := make([]zap.Field, 0, len(task.Fields)+len(extra)+1)
	fields = append(fields, zap.String("task", task.Name))
	fields = append(fields, task.Fields...)
	return append(fields, extra...)
}
