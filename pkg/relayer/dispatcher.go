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

// Dispatcher turns a PENDING row into one relay submission.
type Dispatcher struct {
	*Deps
	logger *zap.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(deps *Deps) *Dispatcher {
	return &Dispatcher{Deps: deps, logger: deps.Logger.With(zap.String("component", "dispatcher"))}
}

// ScheduleDispatch enqueues the dispatch job for a freshly recorded burn.
func (d *Dispatcher) ScheduleDispatch(ctx context.Context, tx *bridge.Transaction) error {
	return d.scheduleDispatch(ctx, dispatchJobFor(tx), 0)
}

// Handle processes a dispatch job.
func (d *Dispatcher) Handle(ctx context.Context, j *queue.Job) error {
	var job DispatchJob
	if err := j.Decode(&job); err != nil {
		return fmt.Errorf("%w: %v", queue.ErrPermanent, err)
	}
	logger := d.logger.With(zap.String("id", job.RowID), zap.String("source_tx_hash", job.SourceTxHash))

	row, err := d.loadRow(ctx, job.RowID)
	if err != nil {
		return err
	}
	if row.Status != bridge.StatusPending {
		logger.Debug("Row already dispatched", zap.String("status", string(row.Status)))
		return nil
	}

	ok, wait, err := d.allow(ctx, row.TargetNetwork, "dispatcher", job.Deferrals)
	if err != nil {
		return err
	}
	if !ok {
		job.Deferrals++
		d.touch(ctx, row, nil)
		logger.Debug("Relay rate limit reached, deferring dispatch", zap.Duration("delay", wait))
		return d.scheduleDispatch(ctx, job, wait)
	}

	burnID, err := d.burnIDFor(row, job.BurnID, 0)
	if err != nil {
		return fmt.Errorf("%w: %v", queue.ErrPermanent, err)
	}

	noTask := ""
	row, err = d.Store.Apply(ctx, row.ID, ledger.Update{
		To:           bridge.StatusProcessing,
		From:         []bridge.Status{bridge.StatusPending},
		ExpectTaskID: &noTask,
		BurnID:       &burnID,
	})
	if errors.Is(err, ledger.ErrStaleState) {
		logger.Debug("Row claimed by another dispatch")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to mark %s processing: %w", job.RowID, err)
	}
	metrics.StatusTransitions.WithLabelValues(string(bridge.StatusPending), string(bridge.StatusProcessing)).Inc()

	taskID, err := d.submitMint(ctx, row, burnID, "dispatch")
	if err != nil {
		logger.Warn("Relay submission failed", zap.Error(err))
		return d.fail(ctx, row, &noTask, fmt.Sprintf("relay submission failed: %v", err))
	}

	row, err = d.Store.Apply(ctx, row.ID, ledger.Update{
		From:         []bridge.Status{bridge.StatusProcessing},
		ExpectTaskID: &noTask,
		RelayTaskID:  &taskID,
	})
	if errors.Is(err, ledger.ErrStaleState) {
		// the mint was observed on chain before the task id could be stored
		logger.Info("Row settled before the relay task was recorded", zap.String("task_id", taskID))
		return nil
	}
	if err != nil {
		// the sweeper fails the row into recovery, the burn id keeps a second mint from landing
		logger.Error("Failed to record relay task", zap.String("task_id", taskID), zap.Error(err))
		return nil
	}

	logger.Info("Mint submitted to relay",
		zap.String("task_id", taskID),
		zap.String("target_network", row.TargetNetwork.String()),
		zap.String("burn_id", burnID.Hex()))

	if err := d.scheduleStatusCheck(ctx, StatusCheckJob{
		RowID:      row.ID,
		TaskID:     taskID,
		MaxRetries: d.Config.DispatchMaxRetries,
	}); err != nil {
		logger.Error("Failed to schedule status check", zap.String("task_id", taskID), zap.Error(err))
	}
	return nil
}
