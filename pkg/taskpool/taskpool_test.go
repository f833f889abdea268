package taskpool

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-settlement/pkg/logging"
)

func TestPoolHandlesEveryTaskOnce(t *testing.T) {
	var (
		mux     sync.Mutex
		queue   = []string{"a", "b", "c", "d", "e"}
		handled = make(map[string]int)
	)
	fetch := func(_ context.Context, limit int) ([]string, error) {
		mux.Lock()
		defer mux.Unlock()
		n := min(limit, len(queue))
		batch := queue[:n]
		queue = queue[n:]
		return batch, nil
	}
	handle := func(_ context.Context, task string) error {
		mux.Lock()
		defer mux.Unlock()
		handled[task]++
		return nil
	}

	pool := New[string](
		"test",
		Config{TickPeriod: 5 * time.Millisecond, WorkersCount: 2, TasksBufferLength: 2},
		fetch,
		func(task string) string { return task },
		handle,
		logging.NewNopLogger(),
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pool.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		mux.Lock()
		defer mux.Unlock()
		return len(handled) == 5
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	for task, n := range handled {
		assert.Equal(t, 1, n, task)
	}
}

func TestPoolSkipsTasksInFlight(t *testing.T) {
	release := make(chan struct{})
	var (
		mux   sync.Mutex
		calls int
	)
	fetch := func(context.Context, int) ([]string, error) {
		return []string{"same"}, nil
	}
	handle := func(context.Context, string) error {
		mux.Lock()
		calls++
		mux.Unlock()
		<-release
		return errors.New("handled with error")
	}

	pool := New[string](
		"test",
		Config{TickPeriod: 2 * time.Millisecond, WorkersCount: 3, TasksBufferLength: 3},
		fetch,
		func(task string) string { return task },
		handle,
		logging.NewNopLogger(),
	)
	done := make(chan struct{})
	go func() {
		pool.Run(context.Background())
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	pool.Stop()
	close(release)
	<-done

	mux.Lock()
	defer mux.Unlock()
	assert.Equal(t, 1, calls)
}
