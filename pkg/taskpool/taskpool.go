// Package taskpool runs a ticker fed scheduler in front of a fixed set of
// workers. On every tick the scheduler fetches as many tasks as the buffer
// can take and skips those still being handled.
package taskpool

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-settlement/pkg/logging"
	"go-settlement/pkg/threadsafe"
)

type Config struct {
	TickPeriod        time.Duration
	WorkersCount      int
	TasksBufferLength int
}

type FetchFunc[T any] func(ctx context.Context, limit int) ([]T, error)

type HandleFunc[T any] func(ctx context.Context, task T) error

type KeyFunc[T any] func(task T) string

type Pool[T any] struct {
	name       string
	config     Config
	fetch      FetchFunc[T]
	handle     HandleFunc[T]
	key        KeyFunc[T]
	processing *threadsafe.KeySet[string]
	logger     *logging.ZapLogger
	done       chan struct{}
	stopOnce   sync.Once
}

func New[T any](
	name string,
	config Config,
	fetch FetchFunc[T],
	key KeyFunc[T],
	handle HandleFunc[T],
	logger *logging.ZapLogger,
) *Pool[T] {
	if config.WorkersCount <= 0 {
		config.WorkersCount = 1
	}
	if config.TasksBufferLength <= 0 {
		config.TasksBufferLength = config.WorkersCount
	}
	if config.TickPeriod <= 0 {
		config.TickPeriod = time.Second
	}
	return &Pool[T]{
		name:       name,
		config:     config,
		fetch:      fetch,
		handle:     handle,
		key:        key,
		processing: threadsafe.NewKeySet[string](),
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled or Stop is called, then waits for the
// workers to drain the tasks already scheduled.
func (p *Pool[T]) Run(ctx context.Context) {
	ctx = logging.WithContextFields(ctx, zap.String("pool", p.name))
	tasks := make(chan T, p.config.TasksBufferLength)

	wg := &sync.WaitGroup{}

	workerCtx := context.WithoutCancel(ctx)
	for range p.config.WorkersCount {
		wg.Add(1)
		go func(tasks <-chan T) {
			defer wg.Done()
			p.worker(workerCtx, tasks)
		}(tasks)
	}

	wg.Add(1)
	go func(tasks chan<- T) {
		defer wg.Done()
		p.scheduler(ctx, tasks)
	}(tasks)

	wg.Wait()
}

func (p *Pool[T]) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
	})
}

func (p *Pool[T]) scheduler(ctx context.Context, tasks chan<- T) {
	defer close(tasks)

	ticker := time.NewTicker(p.config.TickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case <-ticker.C:
			if err := p.tick(ctx, tasks); err != nil {
				p.logger.ErrorCtx(ctx, "error while scheduling tasks", zap.Error(err))
			}
		}
	}
}

func (p *Pool[T]) tick(ctx context.Context, tasks chan<- T) error {
	limit := p.config.TasksBufferLength - len(tasks)
	if limit <= 0 {
		return nil
	}
	fetched, err := p.fetch(ctx, limit)
	if err != nil {
		return err
	}
	for _, task := range fetched {
		key := p.key(task)
		if !p.processing.TryAcquire(key) {
			continue
		}
		p.logger.DebugCtx(ctx, "scheduling task", zap.String("key", key))
		tasks <- task
	}
	return nil
}

func (p *Pool[T]) worker(ctx context.Context, tasks <-chan T) {
	for task := range tasks {
		key := p.key(task)
		err := p.handle(ctx, task)
		p.processing.Release(key)
		if err != nil {
			p.logger.ErrorCtx(ctx, "failed to handle task", zap.String("key", key), zap.Error(err))
		}
	}
}
