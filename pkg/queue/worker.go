package queue

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime/debug"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chainsafe/burnmint-bridge/internal/metrics"
)

// Handler processes one job. A returned error means the job should be tried again.
type Handler interface {
	Handle(ctx context.Context, job *Job) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, job *Job) error

func (f HandlerFunc) Handle(ctx context.Context, job *Job) error {
	return f(ctx, job)
}

// ErrPermanent marks a handler error that retrying cannot fix, e.g. an undecodable payload.
var ErrPermanent = errors.New("permanent job failure")

// WorkerConfig controls polling, concurrency and transient retry backoff.
type WorkerConfig struct {
	Concurrency    int
	BatchSize      int
	PollInterval   time.Duration
	HandlerTimeout time.Duration
	MaxDeliveries  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// Worker claims due jobs and runs the handler registered for their type.
type Worker struct {
	queue    Queue
	cfg      WorkerConfig
	handlers map[Type]Handler
	logger   *zap.Logger
	inflight atomic.Int64
}

// NewWorker creates a worker over q.
func NewWorker(q Queue, cfg WorkerConfig, logger *zap.Logger) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = cfg.Concurrency
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.MaxDeliveries <= 0 {
		cfg.MaxDeliveries = 20
	}
	return &Worker{
		queue:    q,
		cfg:      cfg,
		handlers: make(map[Type]Handler),
		logger:   logger.With(zap.String("component", "worker")),
	}
}

// Register binds h to jobs of type t.
func (w *Worker) Register(t Type, h Handler) {
	w.handlers[t] = h
}

// Run polls until ctx is cancelled, then waits for in-flight jobs to finish.
func (w *Worker) Run(ctx context.Context) error {
	var g errgroup.Group
	g.SetLimit(w.cfg.Concurrency)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.logger.Info("Worker started",
		zap.Int("concurrency", w.cfg.Concurrency),
		zap.Duration("poll_interval", w.cfg.PollInterval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Worker stopping, waiting for in-flight jobs", zap.Int64("inflight", w.inflight.Load()))
			_ = g.Wait()
			return nil
		case <-ticker.C:
		}

		for {
			free := w.cfg.Concurrency - int(w.inflight.Load())
			if free <= 0 {
				break
			}
			jobs, err := w.queue.Claim(ctx, min(free, w.cfg.BatchSize))
			if err != nil {
				if ctx.Err() == nil {
					w.logger.Warn("Failed to claim jobs", zap.Error(err))
				}
				break
			}
			if len(jobs) == 0 {
				break
			}
			for _, job := range jobs {
				w.inflight.Add(1)
				g.Go(func() error {
					defer w.inflight.Add(-1)
					// in-flight jobs run to completion even when shutdown starts
					w.process(context.WithoutCancel(ctx), job)
					return nil
				})
			}
		}
	}
}

// process runs the handler and settles the job with the queue.
func (w *Worker) process(ctx context.Context, job *Job) {
	logger := w.logger.With(
		zap.String("job_id", job.ID),
		zap.String("job_type", string(job.Type)),
		zap.Int("attempt", job.Attempt))

	err := w.handle(ctx, job)
	if err == nil {
		metrics.QueueJobs.WithLabelValues(string(job.Type), "done").Inc()
		if ackErr := w.queue.Ack(ctx, job); ackErr != nil {
			logger.Warn("Failed to ack job, it will be redelivered", zap.Error(ackErr))
		}
		return
	}

	if errors.Is(err, ErrPermanent) || job.Attempt+1 >= w.cfg.MaxDeliveries {
		metrics.QueueJobs.WithLabelValues(string(job.Type), "dead").Inc()
		logger.Error("Job moved to dead-letter set", zap.Error(err))
		if buryErr := w.queue.Bury(ctx, job, err.Error()); buryErr != nil {
			logger.Error("Failed to bury job", zap.Error(buryErr))
		}
		return
	}

	delay := RetryDelay(w.cfg.RetryBaseDelay, w.cfg.RetryMaxDelay, job.Attempt)
	metrics.QueueJobs.WithLabelValues(string(job.Type), "retry").Inc()
	logger.Warn("Job failed, retrying", zap.Error(err), zap.Duration("delay", delay))
	if retryErr := w.queue.Retry(ctx, job, delay); retryErr != nil {
		logger.Error("Failed to reschedule job, it will be redelivered after its lease", zap.Error(retryErr))
	}
}

func (w *Worker) handle(ctx context.Context, job *Job) (err error) {
	h, ok := w.handlers[job.Type]
	if !ok {
		return fmt.Errorf("%w: no handler for job type %q", ErrPermanent, job.Type)
	}

	if w.cfg.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.HandlerTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Job handler panicked",
				zap.String("job_id", job.ID),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	return h.Handle(ctx, job)
}

// RetryDelay is base*2^attempt capped at maxDelay.
func RetryDelay(base, maxDelay time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := float64(base) * math.Pow(2, float64(attempt))
	if maxDelay > 0 && d > float64(maxDelay) {
		return maxDelay
	}
	return time.Duration(d)
}
