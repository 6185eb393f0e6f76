package relayer

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/creasty/defaults"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
	"github.com/chainsafe/burnmint-bridge/pkg/config"
	"github.com/chainsafe/burnmint-bridge/pkg/ethereum"
	"github.com/chainsafe/burnmint-bridge/pkg/ledger"
	"github.com/chainsafe/burnmint-bridge/pkg/queue"
	"github.com/chainsafe/burnmint-bridge/pkg/relay"
	"github.com/chainsafe/burnmint-bridge/pkg/relay/mocks"
	"github.com/chainsafe/burnmint-bridge/pkg/watcher"
)

const (
	chainA    = bridge.Network("sepolia")
	chainB    = bridge.Network("amoy")
	recipient = "0xAbc0000000000000000000000000000000000001"
	oneToken  = "1000000000000000000"
	burnHash  = "0x1111111111111111111111111111111111111111111111111111111111111111"
	mintHash  = "0xdead000000000000000000000000000000000000000000000000000000000000"
)

var (
	tokenA = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	tokenB = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// scriptedLimiter denies the first deny calls.
type scriptedLimiter struct {
	mu    sync.Mutex
	deny  int
	wait  time.Duration
	calls int
}

func (l *scriptedLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.deny > 0 {
		l.deny--
		return false, l.wait, nil
	}
	return true, 0, nil
}

type harness struct {
	t       *testing.T
	clock   *clock
	store   *ledger.MemoryStore
	queue   *queue.MemoryQueue
	relay   *mocks.Client
	limiter *scriptedLimiter
	deps    *Deps

	dispatcher *Dispatcher
	reconciler *Reconciler
	recovery   *RecoveryScheduler
	sweeper    *Sweeper
}

func testBridgeConfig(t *testing.T) config.BridgeConfig {
	t.Helper()
	var cfg config.BridgeConfig
	require.NoError(t, defaults.Set(&cfg))
	return cfg
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	c := &clock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := ledger.NewMemoryStore()
	store.SetClock(c.now)
	q := queue.NewMemoryQueue(time.Hour)
	q.SetClock(c.now)

	registry, err := watcher.NewRegistry(
		ethereum.NewConnection(ethereum.ChainConfig{Network: chainA, ChainID: 11155111, Token: tokenA, TokenDecimals: 18},
			ethereum.DefaultHealthPolicy(), nil, zap.NewNop()),
		ethereum.NewConnection(ethereum.ChainConfig{Network: chainB, ChainID: 80002, Token: tokenB, TokenDecimals: 18},
			ethereum.DefaultHealthPolicy(), nil, zap.NewNop()),
	)
	require.NoError(t, err)

	deriver, err := bridge.NewDeriver(bridge.BurnIDDeterministic)
	require.NoError(t, err)

	relayClient := mocks.NewClient(t)
	limiter := &scriptedLimiter{}
	deps := &Deps{
		Store:      store,
		Queue:      q,
		Relay:      relayClient,
		Authorizer: relay.NewSponsorKey("sponsor-key"),
		Limiter:    limiter,
		Chains:     registry,
		Deriver:    deriver,
		Config:     testBridgeConfig(t),
		Logger:     zap.NewNop(),
		now:        c.now,
	}

	return &harness{
		t:          t,
		clock:      c,
		store:      store,
		queue:      q,
		relay:      relayClient,
		limiter:    limiter,
		deps:       deps,
		dispatcher: NewDispatcher(deps),
		reconciler: NewReconciler(deps),
		recovery:   NewRecoveryScheduler(deps),
		sweeper:    NewSweeper(deps),
	}
}

// burn records a PENDING row from chainA to chainB.
func (h *harness) burn(sourceHash string) *bridge.Transaction {
	h.t.Helper()
	row, created, err := h.store.CreateBurn(context.Background(), &bridge.Transaction{
		Recipient:             recipient,
		Amount:                oneToken,
		SourceNetwork:         chainA,
		TargetNetwork:         chainB,
		SourceTransactionHash: sourceHash,
		BlockNumber:           100,
	})
	require.NoError(h.t, err)
	require.True(h.t, created)
	return row
}

func (h *harness) row(id string) *bridge.Transaction {
	h.t.Helper()
	row, err := h.store.Get(context.Background(), id)
	require.NoError(h.t, err)
	return row
}

func (h *harness) handler(t queue.Type) queue.Handler {
	switch t {
	case queue.TypeDispatch:
		return h.dispatcher
	case queue.TypeStatusCheck:
		return h.reconciler
	case queue.TypeRecovery:
		return h.recovery
	}
	h.t.Fatalf("no handler for %s", t)
	return nil
}

// runDue runs every job due at the current time, including jobs they enqueue
// with no delay.
func (h *harness) runDue() int {
	h.t.Helper()
	ctx := context.Background()
	var ran int
	for {
		jobs, err := h.queue.Claim(ctx, 100)
		require.NoError(h.t, err)
		if len(jobs) == 0 {
			return ran
		}
		for _, job := range jobs {
			require.NoError(h.t, h.handler(job.Type).Handle(ctx, job))
			require.NoError(h.t, h.queue.Ack(ctx, job))
			ran++
		}
	}
}

// step advances the clock one second at a time for d, running due jobs.
func (h *harness) step(d time.Duration) {
	h.t.Helper()
	for elapsed := time.Duration(0); elapsed < d; elapsed += time.Second {
		h.clock.advance(time.Second)
		h.runDue()
	}
}

func (h *harness) pending(t queue.Type) []*queue.Job {
	var out []*queue.Job
	for _, job := range h.queue.Pending() {
		if job.Type == t {
			out = append(out, job)
		}
	}
	return out
}

// failRow walks a fresh row to FAILED with the given number of recovery attempts.
func (h *harness) failRow(id string, attempts int) *bridge.Transaction {
	h.t.Helper()
	ctx := context.Background()
	_, err := h.store.Apply(ctx, id, ledger.Update{To: bridge.StatusProcessing})
	require.NoError(h.t, err)
	row, err := h.store.Apply(ctx, id, ledger.Update{To: bridge.StatusFailed})
	require.NoError(h.t, err)
	for i := 0; i < attempts; i++ {
		_, err = h.store.Apply(ctx, id, ledger.Update{To: bridge.StatusRecoveryInProgress, IncrementRecovery: true})
		require.NoError(h.t, err)
		row, err = h.store.Apply(ctx, id, ledger.Update{To: bridge.StatusFailed})
		require.NoError(h.t, err)
	}
	return row
}

func taskState(state relay.TaskState, hash string) *relay.TaskStatus {
	return &relay.TaskStatus{State: state, TransactionHash: hash}
}

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return v
}
