package watcher

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/chainsafe/burnmint-bridge/internal/metrics"
	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
	"github.com/chainsafe/burnmint-bridge/pkg/config"
	"github.com/chainsafe/burnmint-bridge/pkg/ethereum"
	"github.com/chainsafe/burnmint-bridge/pkg/ledger"
)

var errHealthCheckFailed = errors.New("health check failed")

// EventHandler consumes decoded token events.
type EventHandler interface {
	Handle(ctx context.Context, ev *ethereum.TokenEvent) error
}

// Watcher keeps one long-lived follower per chain. RPC failures never stop it:
// a follower reconnects with backoff and re-scans the blocks it missed.
type Watcher struct {
	registry    *Registry
	handler     EventHandler
	checkpoints ledger.CheckpointStore
	cfg         config.WatcherConfig
	startBlocks map[bridge.Network]uint64
	logger      *zap.Logger

	onConnect func(ctx context.Context, conn *ethereum.Connection)

	reconnect map[bridge.Network]chan struct{}
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// New creates a Watcher. startBlocks seeds the cursor of networks without a checkpoint.
func New(
	registry *Registry,
	handler EventHandler,
	checkpoints ledger.CheckpointStore,
	cfg config.WatcherConfig,
	startBlocks map[bridge.Network]uint64,
	logger *zap.Logger,
) *Watcher {
	reconnect := make(map[bridge.Network]chan struct{})
	for _, n := range registry.Networks() {
		reconnect[n] = make(chan struct{}, 1)
	}
	return &Watcher{
		registry:    registry,
		handler:     handler,
		checkpoints: checkpoints,
		cfg:         cfg,
		startBlocks: startBlocks,
		logger:      logger.With(zap.String("component", "watcher")),
		reconnect:   reconnect,
		stopCh:      make(chan struct{}),
	}
}

// OnFirstConnect registers fn to run once per network, after its connection
// is first established. Call it before Start.
func (w *Watcher) OnFirstConnect(fn func(ctx context.Context, conn *ethereum.Connection)) {
	w.onConnect = fn
}

// Start loads the cursors and launches the followers and the health checker.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("Starting chain watcher")

	if err := w.loadCheckpoints(ctx); err != nil {
		return fmt.Errorf("failed to load checkpoints: %w", err)
	}

	for _, conn := range w.registry.Connections() {
		w.wg.Add(1)
		go func(conn *ethereum.Connection) {
			defer w.wg.Done()
			w.follow(ctx, conn)
		}(conn)
	}

	w.wg.Add(1)
	go w.healthLoop(ctx)

	w.logger.Info("Chain watcher started")
	return nil
}

// Stop signals every follower and waits for them to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping chain watcher")
		close(w.stopCh)
	})
	w.wg.Wait()
	w.logger.Info("Chain watcher stopped")
}

func (w *Watcher) loadCheckpoints(ctx context.Context) error {
	for _, conn := range w.registry.Connections() {
		network := conn.Network()
		block, ok, err := w.checkpoints.GetCheckpoint(ctx, network)
		if err != nil {
			return fmt.Errorf("network %s: %w", network, err)
		}
		switch {
		case ok:
			conn.SetLastProcessedBlock(block)
			w.logger.Info("Loaded checkpoint", zap.String("network", network.String()), zap.Uint64("block", block))
		case w.startBlocks[network] > 0:
			conn.SetLastProcessedBlock(w.startBlocks[network] - 1)
			w.logger.Info("Starting from configured block",
				zap.String("network", network.String()),
				zap.Uint64("block", w.startBlocks[network]))
		default:
			w.logger.Info("No checkpoint, starting at chain head", zap.String("network", network.String()))
		}
	}
	return nil
}

func (w *Watcher) stopped(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-w.stopCh:
		return true
	default:
		return false
	}
}

// sleep waits for d and reports false if the watcher is shutting down.
func (w *Watcher) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-w.stopCh:
		return false
	case <-timer.C:
		return true
	}
}

// follow connects, catches up and tails one chain until shutdown.
func (w *Watcher) follow(ctx context.Context, conn *ethereum.Connection) {
	logger := w.logger.With(zap.String("network", conn.Network().String()))
	connected := false

	for !w.stopped(ctx) {
		if err := conn.Connect(ctx); err != nil {
			delay := conn.NextDelay()
			logger.Warn("Reconnecting after backoff", zap.Duration("delay", delay), zap.Error(err))
			if !w.sleep(ctx, delay) {
				return
			}
			continue
		}
		if !connected {
			connected = true
			if w.onConnect != nil {
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					w.onConnect(ctx, conn)
				}()
			}
		}

		started := time.Now()
		err := w.tail(ctx, conn)
		if w.stopped(ctx) {
			return
		}
		// A follower that ran for a whole health interval was not flapping.
		if time.Since(started) >= w.cfg.HealthInterval {
			conn.ConfirmLive()
		}
		conn.RecordFailure(err)
		delay := conn.NextDelay()
		logger.Warn("Chain follower interrupted", zap.Duration("delay", delay), zap.Error(err))
		if !w.sleep(ctx, delay) {
			return
		}
	}
}

// tail runs the gap scan and then follows new logs until an error occurs.
func (w *Watcher) tail(ctx context.Context, conn *ethereum.Connection) error {
	client, err := conn.Client()
	if err != nil {
		return err
	}
	drainSignal(w.reconnect[conn.Network()])

	head, err := w.head(ctx, client)
	if err != nil {
		return err
	}
	last, ok := conn.LastProcessedBlock()
	if !ok {
		w.advance(ctx, conn, head)
		last = head
	}
	if last < head {
		if err := w.scan(ctx, conn, client, last+1, head); err != nil {
			return err
		}
	}

	logs := make(chan types.Log, 128)
	sub, err := client.SubscribeFilterLogs(ctx, ethereum.TokenEventQuery(conn.TokenAddress(), head+1, nil), logs)
	if err != nil {
		if subscriptionsUnsupported(err) {
			w.logger.Info("Endpoint has no log subscriptions, polling instead", zap.String("network", conn.Network().String()))
			return w.poll(ctx, conn, client)
		}
		return fmt.Errorf("failed to subscribe to token events: %w", err)
	}
	defer sub.Unsubscribe()

	// Close the window between reading the head and the subscription going live.
	latest, err := w.head(ctx, client)
	if err != nil {
		return err
	}
	if latest > head {
		if err := w.scan(ctx, conn, client, head+1, latest); err != nil {
			return err
		}
	}

	for {
		select {
		case log := <-logs:
			if err := w.handleLog(ctx, conn, log); err != nil {
				return err
			}
			conn.ConfirmLive()
			// Later logs of the same block may still arrive.
			if log.BlockNumber > 0 {
				w.advance(ctx, conn, log.BlockNumber-1)
			}
		case err := <-sub.Err():
			if err == nil {
				err = errors.New("subscription closed")
			}
			return fmt.Errorf("log subscription dropped: %w", err)
		case <-w.reconnect[conn.Network()]:
			return errHealthCheckFailed
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		}
	}
}

// poll replaces the subscription on endpoints that only serve HTTP.
func (w *Watcher) poll(ctx context.Context, conn *ethereum.Connection, client ethereum.ChainClient) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			head, err := w.head(ctx, client)
			if err != nil {
				return err
			}
			conn.ConfirmLive()
			last, _ := conn.LastProcessedBlock()
			if head > last {
				if err := w.scan(ctx, conn, client, last+1, head); err != nil {
					return err
				}
			}
		case <-w.reconnect[conn.Network()]:
			return errHealthCheckFailed
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		}
	}
}

func (w *Watcher) head(ctx context.Context, client ethereum.ChainClient) (uint64, error) {
	rpcCtx, cancel := context.WithTimeout(ctx, w.cfg.RPCTimeout)
	defer cancel()
	head, err := client.BlockNumber(rpcCtx)
	if err != nil {
		return 0, fmt.Errorf("failed to read chain head: %w", err)
	}
	return head, nil
}

// scan replays [from, to] in chunks of at most ScanChunkSize blocks. The
// cursor advances after each chunk, so an interrupted scan resumes where it stopped.
func (w *Watcher) scan(ctx context.Context, conn *ethereum.Connection, client ethereum.ChainClient, from, to uint64) error {
	network := conn.Network()
	chunk := w.cfg.ScanChunkSize
	if chunk == 0 {
		chunk = 10_000
	}
	w.logger.Info("Scanning for missed events",
		zap.String("network", network.String()),
		zap.Uint64("from", from),
		zap.Uint64("to", to))

	for start := from; start <= to; {
		end := min(start+chunk-1, to)

		rpcCtx, cancel := context.WithTimeout(ctx, w.cfg.RPCTimeout)
		logs, err := client.FilterLogs(rpcCtx, ethereum.TokenEventQuery(conn.TokenAddress(), start, &end))
		cancel()
		if err != nil {
			return fmt.Errorf("failed to filter logs %d-%d: %w", start, end, err)
		}

		slices.SortFunc(logs, func(a, b types.Log) int {
			if a.BlockNumber != b.BlockNumber {
				return compareUint(a.BlockNumber, b.BlockNumber)
			}
			return compareUint(uint64(a.Index), uint64(b.Index))
		})
		for _, log := range logs {
			if err := w.handleLog(ctx, conn, log); err != nil {
				return err
			}
		}

		w.advance(ctx, conn, end)
		metrics.GapScanBlocks.WithLabelValues(network.String()).Add(float64(end - start + 1))
		start = end + 1
	}
	return nil
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (w *Watcher) handleLog(ctx context.Context, conn *ethereum.Connection, log types.Log) error {
	ev, err := ethereum.ParseTokenEvent(conn.Network(), log)
	if errors.Is(err, ethereum.ErrUnknownEvent) {
		return nil
	}
	if err != nil {
		w.logger.Warn("Skipping undecodable token log",
			zap.String("network", conn.Network().String()),
			zap.String("tx_hash", log.TxHash.Hex()),
			zap.Error(err))
		return nil
	}
	if err := w.handler.Handle(ctx, ev); err != nil {
		return fmt.Errorf("failed to handle %s in %s: %w", ev.Kind, log.TxHash.Hex(), err)
	}
	return nil
}

// advance moves the in-memory cursor and the durable checkpoint forward.
func (w *Watcher) advance(ctx context.Context, conn *ethereum.Connection, block uint64) {
	conn.SetLastProcessedBlock(block)
	if err := w.checkpoints.SetCheckpoint(ctx, conn.Network(), block); err != nil {
		w.logger.Warn("Failed to persist checkpoint",
			zap.String("network", conn.Network().String()),
			zap.Uint64("block", block),
			zap.Error(err))
	}
}

// healthLoop checks every healthy connection and asks its follower to
// reconnect when the check fails.
func (w *Watcher) healthLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.checkAll(ctx)
		}
	}
}

func (w *Watcher) checkAll(ctx context.Context) {
	for _, conn := range w.registry.Connections() {
		if !conn.Healthy() {
			continue
		}
		if err := conn.CheckHealth(ctx); err != nil {
			w.logger.Warn("Health check failed", zap.String("network", conn.Network().String()), zap.Error(err))
			select {
			case w.reconnect[conn.Network()] <- struct{}{}:
			default:
			}
		}
	}
}

func drainSignal(ch chan struct{}) {
	select {
	case <-ch:
	default:
	}
}

func subscriptionsUnsupported(err error) bool {
	if errors.Is(err, rpc.ErrNotificationsUnsupported) {
		return true
	}
	return strings.Contains(err.Error(), "notifications not supported")
}
