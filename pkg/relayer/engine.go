package relayer

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
	"github.com/chainsafe/burnmint-bridge/pkg/queue"
)

const operatorCheckTimeout = 15 * time.Second

// OperatorChecker reads the token contract's operator allow-list on one chain.
type OperatorChecker interface {
	Network() bridge.Network
	IsBridgeOperator(ctx context.Context, account common.Address) (bool, error)
}

// Engine runs the settlement workflow: the queue worker with the dispatch,
// status check and recovery handlers, and the stale-row sweeper.
type Engine struct {
	deps   *Deps
	worker *queue.Worker
	logger *zap.Logger

	dispatcher *Dispatcher
	reconciler *Reconciler
	recovery   *RecoveryScheduler
	sweeper    *Sweeper

	operator *common.Address

	cancel context.CancelFunc
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewEngine creates a new relayer engine. operator is the relaying identity
// verified by CheckOperator, or nil when the relay mints as itself.
func NewEngine(deps *Deps, worker *queue.Worker, operator *common.Address) *Engine {
	e := &Engine{
		deps:       deps,
		worker:     worker,
		logger:     deps.Logger.With(zap.String("component", "engine")),
		dispatcher: NewDispatcher(deps),
		reconciler: NewReconciler(deps),
		recovery:   NewRecoveryScheduler(deps),
		sweeper:    NewSweeper(deps),
		operator:   operator,
		stopCh:     make(chan struct{}),
	}

	worker.Register(queue.TypeDispatch, e.dispatcher)
	worker.Register(queue.TypeStatusCheck, e.reconciler)
	worker.Register(queue.TypeRecovery, e.recovery)
	return e
}

// Dispatcher returns the dispatcher, which schedules dispatch jobs for new burns.
func (e *Engine) Dispatcher() *Dispatcher {
	return e.dispatcher
}

// Start starts the relayer engine
func (e *Engine) Start(ctx context.Context) error {
	e.logger.Info("Starting relayer engine",
		zap.Int("max_recovery_attempts", e.deps.Config.MaxRecoveryAttempts),
		zap.String("burn_id_strategy", string(e.deps.Deriver.Strategy())))

	workerCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.worker.Run(workerCtx); err != nil {
			e.logger.Error("Queue worker failed", zap.Error(err))
		}
	}()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.sweeper.Run(ctx, e.stopCh)
	}()

	e.logger.Info("Relayer engine started")
	return nil
}

// Stop stops the relayer engine and waits for in-flight jobs.
func (e *Engine) Stop() {
	e.logger.Info("Stopping relayer engine")
	close(e.stopCh)
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
	e.logger.Info("Relayer engine stopped")
}

// CheckOperator logs an error when the relaying identity cannot mint on
// chain. It is run once per chain after its connection comes up.
func (e *Engine) CheckOperator(ctx context.Context, chain OperatorChecker) {
	if e.operator == nil {
		return
	}
	checkCtx, cancel := context.WithTimeout(ctx, operatorCheckTimeout)
	ok, err := chain.IsBridgeOperator(checkCtx, *e.operator)
	cancel()

	logger := e.logger.With(
		zap.String("network", chain.Network().String()),
		zap.String("operator", e.operator.Hex()))
	switch {
	case err != nil:
		logger.Warn("Failed to read bridge operator status", zap.Error(err))
	case !ok:
		logger.Error("Relaying identity is not a bridge operator, mints will revert")
	default:
		logger.Info("Bridge operator verified")
	}
}
