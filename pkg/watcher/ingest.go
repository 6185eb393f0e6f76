package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/burnmint-bridge/internal/metrics"
	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
	"github.com/chainsafe/burnmint-bridge/pkg/ethereum"
	"github.com/chainsafe/burnmint-bridge/pkg/ledger"
)

// Scheduler enqueues the dispatch job for a freshly recorded burn.
type Scheduler interface {
	ScheduleDispatch(ctx context.Context, tx *bridge.Transaction) error
}

// Ingestor records token events in the ledger, once per logical event.
type Ingestor struct {
	store     ledger.Store
	registry  *Registry
	scheduler Scheduler
	logger    *zap.Logger
	now       func() time.Time
}

// NewIngestor creates an Ingestor.
func NewIngestor(store ledger.Store, registry *Registry, scheduler Scheduler, logger *zap.Logger) *Ingestor {
	return &Ingestor{
		store:     store,
		registry:  registry,
		scheduler: scheduler,
		logger:    logger.With(zap.String("component", "ingestor")),
		now:       time.Now,
	}
}

// Handle records one decoded token event. Replays of the same event are no-ops.
func (i *Ingestor) Handle(ctx context.Context, ev *ethereum.TokenEvent) error {
	if ev.Removed {
		// TODO: reconcile rows whose burn log was dropped by a reorg instead of only logging it.
		i.logger.Warn("Ignoring log removed by chain reorganisation",
			zap.String("network", ev.Network.String()),
			zap.String("tx_hash", ev.TxHash.Hex()))
		return nil
	}
	if ev.Amount == nil || ev.Amount.Sign() <= 0 {
		i.logger.Warn("Ignoring token event with non-positive amount",
			zap.String("network", ev.Network.String()),
			zap.String("tx_hash", ev.TxHash.Hex()))
		return nil
	}

	metrics.EventsDetected.WithLabelValues(ev.Network.String(), string(ev.Kind)).Inc()

	switch ev.Kind {
	case ethereum.EventBurned:
		return i.handleBurn(ctx, ev)
	case ethereum.EventMinted:
		return i.handleMint(ctx, ev)
	default:
		return fmt.Errorf("unsupported event kind %q", ev.Kind)
	}
}

func (i *Ingestor) handleBurn(ctx context.Context, ev *ethereum.TokenEvent) error {
	target, err := i.registry.Other(ev.Network)
	if err != nil {
		return err
	}

	row, created, err := i.store.CreateBurn(ctx, &bridge.Transaction{
		Recipient:             ev.Account.Hex(),
		Amount:                ev.Amount.String(),
		SourceNetwork:         ev.Network,
		TargetNetwork:         target,
		SourceTransactionHash: ev.TxHash.Hex(),
		BlockHash:             ev.BlockHash.Hex(),
		BlockNumber:           ev.BlockNumber,
		BurnID:                ev.BurnID,
		Status:                bridge.StatusPending,
	})
	if err != nil {
		return fmt.Errorf("failed to record burn %s: %w", ev.TxHash.Hex(), err)
	}

	logger := i.logger.With(
		zap.String("id", row.ID),
		zap.String("source_network", row.SourceNetwork.String()),
		zap.String("target_network", row.TargetNetwork.String()),
		zap.String("tx_hash", row.SourceTransactionHash))

	if !created {
		logger.Debug("Burn already recorded", zap.String("status", string(row.Status)))
		return nil
	}

	metrics.LedgerRowsCreated.WithLabelValues(row.SourceNetwork.String(), string(row.Status)).Inc()
	logger.Info("Burn detected",
		zap.String("recipient", row.Recipient),
		zap.String("amount", row.Amount),
		zap.Uint64("block", row.BlockNumber))

	// A row left without its dispatch job is picked up by the sweeper.
	if err := i.scheduler.ScheduleDispatch(ctx, row); err != nil {
		logger.Error("Failed to schedule dispatch", zap.Error(err))
	}
	return nil
}

func (i *Ingestor) handleMint(ctx context.Context, ev *ethereum.TokenEvent) error {
	hash := ev.TxHash.Hex()
	logger := i.logger.With(
		zap.String("network", ev.Network.String()),
		zap.String("tx_hash", hash),
		zap.String("burn_id", ev.BurnID.Hex()))

	existing, err := i.store.Find(ctx, ledger.WithTargetTxHash(hash))
	switch {
	case err == nil:
		logger.Debug("Mint already recorded", zap.String("id", existing.ID))
		return nil
	case !errors.Is(err, ledger.ErrNotFound):
		return fmt.Errorf("failed to look up mint %s: %w", hash, err)
	}

	if !ev.BurnID.IsZero() {
		done, err := i.completeInFlight(ctx, ev, logger)
		if err != nil || done {
			return err
		}
		done, err = i.attachMintHash(ctx, ev, logger)
		if err != nil || done {
			return err
		}
	}

	source, err := i.registry.Other(ev.Network)
	if err != nil {
		return err
	}
	row, created, err := i.store.CreateMint(ctx, &bridge.Transaction{
		Recipient:             ev.Account.Hex(),
		Amount:                ev.Amount.String(),
		SourceNetwork:         source,
		TargetNetwork:         ev.Network,
		TargetTransactionHash: hash,
		BlockHash:             ev.BlockHash.Hex(),
		BlockNumber:           ev.BlockNumber,
		BurnID:                ev.BurnID,
		Status:                bridge.StatusCompleted,
	})
	if err != nil {
		return fmt.Errorf("failed to record mint %s: %w", hash, err)
	}
	if created {
		metrics.LedgerRowsCreated.WithLabelValues(ev.Network.String(), string(row.Status)).Inc()
		logger.Info("Mint recorded without a tracked burn", zap.String("id", row.ID), zap.String("amount", row.Amount))
	}
	return nil
}

// completeInFlight settles the row whose relay task produced this mint.
func (i *Ingestor) completeInFlight(ctx context.Context, ev *ethereum.TokenEvent, logger *zap.Logger) (bool, error) {
	row, err := i.store.Find(ctx,
		ledger.WithBurnID(ev.Network, ev.BurnID),
		ledger.WithStatuses(bridge.StatusProcessing, bridge.StatusRecoveryInProgress, bridge.StatusFailed))
	if errors.Is(err, ledger.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up burn id %s: %w", ev.BurnID.Hex(), err)
	}

	hash := ev.TxHash.Hex()
	updated, err := i.store.Apply(ctx, row.ID, ledger.Update{
		To:                    bridge.StatusCompleted,
		TargetTransactionHash: &hash,
	})
	if errors.Is(err, ledger.ErrStaleState) {
		logger.Debug("Row settled concurrently", zap.String("id", row.ID))
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to complete %s from mint: %w", row.ID, err)
	}

	metrics.StatusTransitions.WithLabelValues(string(row.Status), string(bridge.StatusCompleted)).Inc()
	metrics.SettlementDuration.WithLabelValues(updated.TargetNetwork.String()).Observe(i.now().Sub(updated.CreatedAt).Seconds())
	logger.Info("Bridge transaction completed by observed mint",
		zap.String("id", updated.ID),
		zap.String("previous_status", string(row.Status)))
	return true, nil
}

// attachMintHash records the mint hash on a row the relay reported as
// executed without returning its transaction hash.
func (i *Ingestor) attachMintHash(ctx context.Context, ev *ethereum.TokenEvent, logger *zap.Logger) (bool, error) {
	row, err := i.store.Find(ctx,
		ledger.WithBurnID(ev.Network, ev.BurnID),
		ledger.WithStatuses(bridge.StatusCompleted),
		ledger.WithoutTargetTxHash())
	if errors.Is(err, ledger.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up completed burn id %s: %w", ev.BurnID.Hex(), err)
	}

	hash := ev.TxHash.Hex()
	_, err = i.store.Apply(ctx, row.ID, ledger.Update{
		From:                  []bridge.Status{bridge.StatusCompleted},
		TargetTransactionHash: &hash,
		ExpectNoTargetTxHash:  true,
	})
	if errors.Is(err, ledger.ErrStaleState) {
		logger.Debug("Mint hash recorded concurrently", zap.String("id", row.ID))
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to attach mint hash to %s: %w", row.ID, err)
	}
	logger.Info("Mint hash attached to completed transaction", zap.String("id", row.ID))
	return true, nil
}
