package relayer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/burnmint-bridge/internal/metrics"
	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
	"github.com/chainsafe/burnmint-bridge/pkg/ledger"
)

// Sweeper re-derives jobs for rows that have not moved for longer than
// StaleAfter, covering jobs lost with the queue or never enqueued. Handlers
// are idempotent against the row state, so a duplicate job is harmless.
type Sweeper struct {
	*Deps
	logger *zap.Logger
}

// NewSweeper creates a Sweeper.
func NewSweeper(deps *Deps) *Sweeper {
	return &Sweeper{Deps: deps, logger: deps.Logger.With(zap.String("component", "sweeper"))}
}

// Run sweeps every SweepInterval until ctx is done or stop is closed.
func (s *Sweeper) Run(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(s.Config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				s.logger.Error("Sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				s.logger.Info("Sweep re-enqueued stale rows", zap.Int("rows", n))
			}
		}
	}
}

// Sweep runs one pass and returns the number of rows it acted on.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	olderThan := s.clock().Add(-s.Config.StaleAfter)
	var total int
	var errs []error

	pending, err := s.Store.ListStale(ctx, ledger.StaleFilter{
		Statuses:  []bridge.Status{bridge.StatusPending},
		OlderThan: olderThan,
		Limit:     s.Config.SweepBatchSize,
	})
	if err != nil {
		return 0, err
	}
	for _, row := range pending {
		if err := s.scheduleDispatch(ctx, dispatchJobFor(row), 0); err != nil {
			errs = append(errs, fmt.Errorf("dispatch %s: %w", row.ID, err))
			continue
		}
		s.touch(ctx, row, nil)
		s.swept(row)
		total++
	}

	inFlight, err := s.Store.ListStale(ctx, ledger.StaleFilter{
		Statuses:  []bridge.Status{bridge.StatusProcessing, bridge.StatusRecoveryInProgress},
		OlderThan: olderThan,
		Limit:     s.Config.SweepBatchSize,
	})
	if err != nil {
		return total, err
	}
	for _, row := range inFlight {
		if err := s.sweepInFlight(ctx, row); err != nil {
			errs = append(errs, fmt.Errorf("in-flight %s: %w", row.ID, err))
			continue
		}
		s.swept(row)
		total++
	}

	failed, err := s.Store.ListStale(ctx, ledger.StaleFilter{
		Statuses:      []bridge.Status{bridge.StatusFailed},
		OlderThan:     olderThan,
		RecoveryBelow: s.Config.MaxRecoveryAttempts,
		Limit:         s.Config.SweepBatchSize,
	})
	if err != nil {
		return total, err
	}
	for _, row := range failed {
		if err := s.scheduleRecovery(ctx, row, row.RecoveryAttempts+1); err != nil {
			errs = append(errs, fmt.Errorf("recovery %s: %w", row.ID, err))
			continue
		}
		s.touch(ctx, row, nil)
		s.swept(row)
		total++
	}

	return total, errors.Join(errs...)
}

// sweepInFlight restarts polling of the row's current task, or fails the row
// into recovery when the submission never recorded one.
func (s *Sweeper) sweepInFlight(ctx context.Context, row *bridge.Transaction) error {
	task := row.RelayTaskID
	if task == "" {
		return s.fail(ctx, row, &task, "relay submission interrupted")
	}

	maxRetries := s.Config.DispatchMaxRetries
	if row.Status == bridge.StatusRecoveryInProgress {
		maxRetries = s.Config.RecoveryMaxRetries
	}
	if err := s.scheduleStatusCheck(ctx, StatusCheckJob{
		RowID:      row.ID,
		TaskID:     task,
		MaxRetries: maxRetries,
		Recovery:   row.Status == bridge.StatusRecoveryInProgress,
	}); err != nil {
		return err
	}
	s.touch(ctx, row, &task)
	return nil
}

func (s *Sweeper) swept(row *bridge.Transaction) {
	metrics.SweptRows.WithLabelValues(string(row.Status)).Inc()
	s.logger.Debug("Swept stale row", zap.String("id", row.ID), zap.String("status", string(row.Status)))
}
