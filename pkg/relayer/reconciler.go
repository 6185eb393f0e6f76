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
	"github.com/chainsafe/burnmint-bridge/pkg/relay"
)

// Reconciler polls relay tasks until they reach a terminal state.
type Reconciler struct {
	*Deps
	logger *zap.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(deps *Deps) *Reconciler {
	return &Reconciler{Deps: deps, logger: deps.Logger.With(zap.String("component", "reconciler"))}
}

// Handle processes a status check job.
func (r *Reconciler) Handle(ctx context.Context, j *queue.Job) error {
	var job StatusCheckJob
	if err := j.Decode(&job); err != nil {
		return fmt.Errorf("%w: %v", queue.ErrPermanent, err)
	}
	logger := r.logger.With(
		zap.String("id", job.RowID),
		zap.String("task_id", job.TaskID),
		zap.Int("retry_count", job.RetryCount))

	row, err := r.loadRow(ctx, job.RowID)
	if err != nil {
		return err
	}
	if !row.Status.InFlight() || row.RelayTaskID != job.TaskID {
		logger.Debug("Status check superseded",
			zap.String("status", string(row.Status)),
			zap.String("current_task_id", row.RelayTaskID))
		return nil
	}

	ok, wait, err := r.allow(ctx, row.TargetNetwork, "reconciler", job.Deferrals)
	if err != nil {
		return err
	}
	if !ok {
		job.Deferrals++
		r.touch(ctx, row, &job.TaskID)
		logger.Debug("Relay rate limit reached, deferring status check", zap.Duration("delay", wait))
		return queue.Submit(ctx, r.Queue, queue.TypeStatusCheck, job, wait)
	}

	status, err := r.Relay.GetStatus(ctx, job.TaskID)
	if err != nil {
		metrics.RelayPolls.WithLabelValues("error").Inc()
		logger.Warn("Relay status query failed", zap.Error(err))
		return r.pending(ctx, row, job, fmt.Sprintf("relay status query failed: %v", err))
	}

	bucket := status.State.Bucket()
	metrics.RelayPolls.WithLabelValues(bucket.String()).Inc()

	switch bucket {
	case relay.BucketSuccess:
		return r.complete(ctx, row, job, status)
	case relay.BucketFailure:
		reason := fmt.Sprintf("relay task %s", status.State)
		if status.LastCheckMessage != "" {
			reason += ": " + status.LastCheckMessage
		}
		return r.fail(ctx, row, &job.TaskID, reason)
	default:
		logger.Debug("Relay task not settled", zap.String("state", string(status.State)))
		return r.pending(ctx, row, job, "")
	}
}

func (r *Reconciler) complete(ctx context.Context, row *bridge.Transaction, job StatusCheckJob, status *relay.TaskStatus) error {
	u := ledger.Update{
		To:           bridge.StatusCompleted,
		From:         []bridge.Status{bridge.StatusProcessing, bridge.StatusRecoveryInProgress},
		ExpectTaskID: &job.TaskID,
	}
	if status.TransactionHash != "" {
		u.TargetTransactionHash = &status.TransactionHash
	}

	updated, err := r.Store.Apply(ctx, row.ID, u)
	if errors.Is(err, ledger.ErrStaleState) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to complete %s: %w", row.ID, err)
	}

	metrics.StatusTransitions.WithLabelValues(string(row.Status), string(bridge.StatusCompleted)).Inc()
	metrics.SettlementDuration.WithLabelValues(row.TargetNetwork.String()).Observe(r.clock().Sub(row.CreatedAt).Seconds())
	r.logger.Info("Bridge transaction completed",
		zap.String("id", updated.ID),
		zap.String("task_id", job.TaskID),
		zap.String("target_tx_hash", updated.TargetTransactionHash),
		zap.Int("recovery_attempts", updated.RecoveryAttempts))
	return nil
}

// pending re-enqueues the check with a grown delay, or fails the row once the
// task has used up its retries.
func (r *Reconciler) pending(ctx context.Context, row *bridge.Transaction, job StatusCheckJob, cause string) error {
	if job.RetryCount >= job.MaxRetries {
		reason := "max retries reached"
		if cause != "" {
			reason += ": " + cause
		}
		return r.fail(ctx, row, &job.TaskID, reason)
	}

	r.touch(ctx, row, &job.TaskID)
	job.RetryCount++
	job.Deferrals = 0
	return r.scheduleStatusCheck(ctx, job)
}
