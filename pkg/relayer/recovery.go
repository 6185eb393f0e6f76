package relayer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/chainsafe/burnmint-bridge/internal/metrics"
	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
	"github.com/chainsafe/burnmint-bridge/pkg/ledger"
	"github.com/chainsafe/burnmint-bridge/pkg/queue"
)

// RecoveryScheduler resubmits the mint for FAILED rows, up to the configured
// number of recovery attempts. A recovery job is derived from the row alone.
type RecoveryScheduler struct {
	*Deps
	logger *zap.Logger
}

// NewRecoveryScheduler creates a RecoveryScheduler.
func NewRecoveryScheduler(deps *Deps) *RecoveryScheduler {
	return &RecoveryScheduler{Deps: deps, logger: deps.Logger.With(zap.String("component", "recovery"))}
}

// Handle processes a recovery job.
func (s *RecoveryScheduler) Handle(ctx context.Context, j *queue.Job) error {
	var job RecoveryJob
	if err := j.Decode(&job); err != nil {
		return fmt.Errorf("%w: %v", queue.ErrPermanent, err)
	}
	logger := s.logger.With(zap.String("id", job.RowID), zap.Int("attempt", job.Attempt))

	row, err := s.loadRow(ctx, job.RowID)
	if err != nil {
		return err
	}
	if row.Status != bridge.StatusFailed {
		logger.Debug("Recovery no longer needed", zap.String("status", string(row.Status)))
		return nil
	}
	if row.RecoveryAttempts >= s.Config.MaxRecoveryAttempts {
		logger.Debug("Recovery attempts exhausted", zap.Int("recovery_attempts", row.RecoveryAttempts))
		return nil
	}

	ok, wait, err := s.allow(ctx, row.TargetNetwork, "recovery", job.Deferrals)
	if err != nil {
		return err
	}
	if !ok {
		job.Deferrals++
		s.touch(ctx, row, nil)
		logger.Debug("Relay rate limit reached, deferring recovery", zap.Duration("delay", wait))
		return queue.Submit(ctx, s.Queue, queue.TypeRecovery, job, wait)
	}

	burnID, err := s.burnIDFor(row, job.BurnID, uint64(row.RecoveryAttempts+1))
	if err != nil {
		return fmt.Errorf("%w: %v", queue.ErrPermanent, err)
	}

	noTask := ""
	row, err = s.Store.Apply(ctx, row.ID, ledger.Update{
		To:                bridge.StatusRecoveryInProgress,
		From:              []bridge.Status{bridge.StatusFailed},
		RecoveryBelow:     s.Config.MaxRecoveryAttempts,
		RelayTaskID:       &noTask,
		BurnID:            &burnID,
		IncrementRecovery: true,
	})
	if errors.Is(err, ledger.ErrStaleState) {
		logger.Debug("Row moved on before recovery started")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to start recovery of %s: %w", job.RowID, err)
	}
	metrics.StatusTransitions.WithLabelValues(string(bridge.StatusFailed), string(bridge.StatusRecoveryInProgress)).Inc()

	taskID, err := s.submitMint(ctx, row, burnID, "recovery")
	if err != nil {
		metrics.RecoveryAttempts.WithLabelValues("rejected").Inc()
		logger.Warn("Recovery submission failed", zap.Error(err))
		return s.fail(ctx, row, &noTask, fmt.Sprintf("recovery submission failed: %v", err))
	}
	metrics.RecoveryAttempts.WithLabelValues("accepted").Inc()

	row, err = s.Store.Apply(ctx, row.ID, ledger.Update{
		From:         []bridge.Status{bridge.StatusRecoveryInProgress},
		ExpectTaskID: &noTask,
		RelayTaskID:  &taskID,
	})
	if errors.Is(err, ledger.ErrStaleState) {
		logger.Info("Row settled before the recovery task was recorded", zap.String("task_id", taskID))
		return nil
	}
	if err != nil {
		logger.Error("Failed to record recovery task", zap.String("task_id", taskID), zap.Error(err))
		return nil
	}

	logger.Info("Recovery mint submitted to relay",
		zap.String("task_id", taskID),
		zap.Int("recovery_attempts", row.RecoveryAttempts),
		zap.String("burn_id", burnID.Hex()))

	if err := s.scheduleStatusCheck(ctx, StatusCheckJob{
		RowID:      row.ID,
		TaskID:     taskID,
		MaxRetries: s.Config.RecoveryMaxRetries,
		Recovery:   true,
	}); err != nil {
		logger.Error("Failed to schedule status check", zap.String("task_id", taskID), zap.Error(err))
	}
	return nil
}
