// Package relayer settles PENDING burns: it submits the mint to the relay,
// follows the relay task to a terminal state and recovers failed transfers.
package relayer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainsafe/burnmint-bridge/internal/metrics"
	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
	"github.com/chainsafe/burnmint-bridge/pkg/config"
	"github.com/chainsafe/burnmint-bridge/pkg/ethereum"
	"github.com/chainsafe/burnmint-bridge/pkg/ledger"
	"github.com/chainsafe/burnmint-bridge/pkg/queue"
	"github.com/chainsafe/burnmint-bridge/pkg/ratelimit"
	"github.com/chainsafe/burnmint-bridge/pkg/relay"
)

// Chains resolves the connection of a target network.
type Chains interface {
	Get(n bridge.Network) (*ethereum.Connection, error)
}

// Deps are the collaborators shared by the dispatcher, the reconciler and the
// recovery scheduler. None of them keeps state of its own: everything a job
// needs is re-read from the ledger.
type Deps struct {
	Store      ledger.Store
	Queue      queue.Queue
	Relay      relay.Client
	Authorizer relay.Authorizer
	Limiter    ratelimit.Limiter
	Chains     Chains
	Deriver    *bridge.Deriver
	Config     config.BridgeConfig
	Logger     *zap.Logger

	now func() time.Time
}

func (d *Deps) clock() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now()
}

// allow consults the outbound limiter for the target network. It returns the
// delay to defer by when the window is full.
func (d *Deps) allow(ctx context.Context, network bridge.Network, component string, deferrals int) (bool, time.Duration, error) {
	ok, wait, err := d.Limiter.Allow(ctx, network.String())
	if err != nil {
		return false, 0, fmt.Errorf("rate limiter: %w", err)
	}
	if ok {
		return true, 0, nil
	}
	metrics.RateLimitDeferrals.WithLabelValues(component).Inc()
	return false, max(wait, queue.RetryDelay(d.Config.DeferBaseDelay, d.Config.DeferMaxDelay, deferrals)), nil
}

// burnIDFor reuses the row's correlation token, or the one carried by the job,
// and derives a fresh one only when neither exists.
func (d *Deps) burnIDFor(row *bridge.Transaction, carried string, salt uint64) (bridge.BurnID, error) {
	if !row.BurnID.IsZero() {
		return row.BurnID, nil
	}
	if carried != "" {
		id, err := bridge.ParseBurnID(carried)
		if err == nil && !id.IsZero() {
			return id, nil
		}
	}
	return d.Deriver.Derive(bridge.BurnContext{
		Recipient:             row.Recipient,
		Amount:                row.Amount,
		SourceTransactionHash: row.SourceTransactionHash,
		BlockHash:             row.BlockHash,
		Salt:                  salt,
	})
}

// submitMint builds the target-chain mint call, authorizes it and hands it to
// the relay. It returns the relay task id.
func (d *Deps) submitMint(ctx context.Context, row *bridge.Transaction, burnID bridge.BurnID, path string) (string, error) {
	taskID, err := d.doSubmit(ctx, row, burnID)
	result := "accepted"
	if err != nil {
		result = "rejected"
	}
	metrics.RelaySubmissions.WithLabelValues(row.TargetNetwork.String(), path, result).Inc()
	return taskID, err
}

func (d *Deps) doSubmit(ctx context.Context, row *bridge.Transaction, burnID bridge.BurnID) (string, error) {
	conn, err := d.Chains.Get(row.TargetNetwork)
	if err != nil {
		return "", err
	}
	amount, err := bridge.AmountToBigInt(row.Amount)
	if err != nil {
		return "", err
	}
	if !common.IsHexAddress(row.Recipient) {
		return "", fmt.Errorf("invalid recipient address %q", row.Recipient)
	}
	data, err := ethereum.PackMint(common.HexToAddress(row.Recipient), amount, burnID)
	if err != nil {
		return "", err
	}

	req := &relay.CallRequest{
		ChainID: conn.ChainID(),
		Target:  conn.TokenAddress(),
		Data:    data,
	}
	if err := d.Authorizer.Authorize(ctx, req); err != nil {
		return "", fmt.Errorf("failed to authorize relay call: %w", err)
	}
	taskID, err := d.Relay.Submit(ctx, req)
	if err != nil {
		return "", err
	}
	if taskID == "" {
		return "", errors.New("relay returned an empty task id")
	}
	return taskID, nil
}

func (d *Deps) scheduleDispatch(ctx context.Context, job DispatchJob, delay time.Duration) error {
	return queue.Submit(ctx, d.Queue, queue.TypeDispatch, job, delay)
}

func (d *Deps) scheduleStatusCheck(ctx context.Context, job StatusCheckJob) error {
	delay := StatusDelay(d.Config.StatusBaseDelay, d.Config.StatusMaxDelay, d.Config.StatusGrowthFactor, job.RetryCount)
	return queue.Submit(ctx, d.Queue, queue.TypeStatusCheck, job, delay)
}

func (d *Deps) scheduleRecovery(ctx context.Context, row *bridge.Transaction, attempt int) error {
	delay := RecoveryDelay(d.Config.RecoveryBaseDelay, attempt)
	if err := queue.Submit(ctx, d.Queue, queue.TypeRecovery, recoveryJobFor(row, attempt), delay); err != nil {
		return err
	}
	d.Logger.Info("Recovery scheduled",
		zap.String("id", row.ID),
		zap.Int("attempt", attempt),
		zap.Duration("delay", delay))
	return nil
}

// fail drives an in-flight row to FAILED and schedules its next recovery
// attempt, unless the ceiling is reached. expectTask guards against acting on
// behalf of a relay task the row no longer references.
func (d *Deps) fail(ctx context.Context, row *bridge.Transaction, expectTask *string, reason string) error {
	updated, err := d.Store.Apply(ctx, row.ID, ledger.Update{
		To:           bridge.StatusFailed,
		From:         []bridge.Status{bridge.StatusProcessing, bridge.StatusRecoveryInProgress},
		ExpectTaskID: expectTask,
		LastError:    &reason,
	})
	if errors.Is(err, ledger.ErrStaleState) {
		d.Logger.Debug("Row moved on before it could be failed", zap.String("id", row.ID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to mark %s failed: %w", row.ID, err)
	}

	metrics.StatusTransitions.WithLabelValues(string(row.Status), string(bridge.StatusFailed)).Inc()
	d.Logger.Warn("Bridge transaction failed",
		zap.String("id", updated.ID),
		zap.String("reason", reason),
		zap.Int("recovery_attempts", updated.RecoveryAttempts))

	return d.recoverOrGiveUp(ctx, updated)
}

// recoverOrGiveUp schedules the next recovery attempt for a FAILED row or
// reports it for operator attention once the ceiling is reached.
func (d *Deps) recoverOrGiveUp(ctx context.Context, row *bridge.Transaction) error {
	if row.RecoveryAttempts >= d.Config.MaxRecoveryAttempts {
		d.exhausted(row)
		return nil
	}
	if err := d.scheduleRecovery(ctx, row, row.RecoveryAttempts+1); err != nil {
		// The sweeper re-derives the job from the FAILED row.
		d.Logger.Error("Failed to schedule recovery", zap.String("id", row.ID), zap.Error(err))
	}
	return nil
}

func (d *Deps) exhausted(row *bridge.Transaction) {
	metrics.RecoveryExhausted.Inc()
	d.Logger.Error("recovery exhausted, operator attention required",
		zap.String("id", row.ID),
		zap.String("recipient", row.Recipient),
		zap.String("amount", row.Amount),
		zap.String("source_network", row.SourceNetwork.String()),
		zap.String("target_network", row.TargetNetwork.String()),
		zap.String("source_tx_hash", row.SourceTransactionHash),
		zap.String("burn_id", row.BurnID.Hex()),
		zap.String("relay_task_id", row.RelayTaskID),
		zap.Int("recovery_attempts", row.RecoveryAttempts),
		zap.String("last_error", row.LastError))
}

// touch refreshes updated_at so the sweeper does not treat a row with live
// jobs as abandoned.
func (d *Deps) touch(ctx context.Context, row *bridge.Transaction, expectTask *string) {
	_, err := d.Store.Apply(ctx, row.ID, ledger.Update{
		From:         []bridge.Status{row.Status},
		ExpectTaskID: expectTask,
	})
	if err != nil && !errors.Is(err, ledger.ErrStaleState) {
		d.Logger.Debug("Failed to refresh row", zap.String("id", row.ID), zap.Error(err))
	}
}

func (d *Deps) loadRow(ctx context.Context, id string) (*bridge.Transaction, error) {
	row, err := d.Store.Get(ctx, id)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, fmt.Errorf("%w: row %s not found", queue.ErrPermanent, id)
	}
	return row, err
}
