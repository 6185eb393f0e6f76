package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func runWorker(t *testing.T, w *Worker) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

func testWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Concurrency:    4,
		PollInterval:   5 * time.Millisecond,
		HandlerTimeout: time.Second,
		MaxDeliveries:  3,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  5 * time.Millisecond,
	}
}

func TestWorker_DispatchesByType(t *testing.T) {
	q := NewMemoryQueue(time.Minute)
	w := NewWorker(q, testWorkerConfig(), zap.NewNop())

	var dispatched, checked atomic.Int32
	w.Register(TypeDispatch, HandlerFunc(func(context.Context, *Job) error {
		dispatched.Add(1)
		return nil
	}))
	w.Register(TypeStatusCheck, HandlerFunc(func(context.Context, *Job) error {
		checked.Add(1)
		return nil
	}))

	ctx := context.Background()
	require.NoError(t, Submit(ctx, q, TypeDispatch, payload{RowID: "a"}, 0))
	require.NoError(t, Submit(ctx, q, TypeDispatch, payload{RowID: "b"}, 0))
	require.NoError(t, Submit(ctx, q, TypeStatusCheck, payload{RowID: "a"}, 0))

	stop := runWorker(t, w)
	defer stop()

	require.Eventually(t, func() bool {
		return dispatched.Load() == 2 && checked.Load() == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestWorker_RetriesTransientErrors(t *testing.T) {
	q := NewMemoryQueue(time.Minute)
	w := NewWorker(q, testWorkerConfig(), zap.NewNop())

	var calls atomic.Int32
	w.Register(TypeDispatch, HandlerFunc(func(context.Context, *Job) error {
		if calls.Add(1) < 2 {
			return errors.New("store timeout")
		}
		return nil
	}))

	require.NoError(t, Submit(context.Background(), q, TypeDispatch, payload{RowID: "a"}, 0))
	stop := runWorker(t, w)
	defer stop()

	require.Eventually(t, func() bool {
		return calls.Load() == 2 && len(q.Pending()) == 0
	}, 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, q.Dead())
}

func TestWorker_BuriesAfterMaxDeliveries(t *testing.T) {
	q := NewMemoryQueue(time.Minute)
	w := NewWorker(q, testWorkerConfig(), zap.NewNop())

	var calls atomic.Int32
	w.Register(TypeDispatch, HandlerFunc(func(context.Context, *Job) error {
		calls.Add(1)
		panic("unexpected nil")
	}))

	require.NoError(t, Submit(context.Background(), q, TypeDispatch, payload{RowID: "a"}, 0))
	stop := runWorker(t, w)
	defer stop()

	require.Eventually(t, func() bool { return len(q.Dead()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWorker_UnknownTypeIsPermanent(t *testing.T) {
	q := NewMemoryQueue(time.Minute)
	w := NewWorker(q, testWorkerConfig(), zap.NewNop())

	require.NoError(t, Submit(context.Background(), q, TypeRecovery, payload{RowID: "a"}, 0))
	stop := runWorker(t, w)
	defer stop()

	require.Eventually(t, func() bool { return len(q.Dead()) == 1 }, 2*time.Second, 5*time.Millisecond)
}
