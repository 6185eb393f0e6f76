package watcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
	"github.com/chainsafe/burnmint-bridge/pkg/config"
	"github.com/chainsafe/burnmint-bridge/pkg/ethereum"
	"github.com/chainsafe/burnmint-bridge/pkg/ledger"
)

func testWatcherConfig() config.WatcherConfig {
	return config.WatcherConfig{
		ReconnectBaseDelay:   10 * time.Millisecond,
		ReconnectMaxDelay:    50 * time.Millisecond,
		MaxReconnectAttempts: 10,
		Cooldown:             50 * time.Millisecond,
		FallbackAfter:        3,
		ScanChunkSize:        10_000,
		HealthInterval:       time.Hour,
		PollInterval:         10 * time.Millisecond,
		RPCTimeout:           time.Second,
	}
}

func TestWatcher_GapScanUsesBoundedChunks(t *testing.T) {
	chain := newFakeChain(25_000)
	chain.addLog(tokenLog(t, "TokensBurned", tokenA, alice, 1, bridge.BurnID{0x01}, 5, "0x01"))
	chain.addLog(tokenLog(t, "TokensBurned", tokenA, alice, 2, bridge.BurnID{0x02}, 15_000, "0x02"))
	chain.addLog(tokenLog(t, "TokensBurned", tokenA, alice, 3, bridge.BurnID{0x03}, 24_999, "0x03"))

	r := newTestRegistry(t, chain, newFakeChain(1))
	store := ledger.NewMemoryStore()
	w := New(r, NewIngestor(store, r, &recordingScheduler{}, zap.NewNop()), store, testWatcherConfig(), nil, zap.NewNop())

	ctx := context.Background()
	conn, err := r.Get(chainA)
	require.NoError(t, err)
	require.NoError(t, conn.Connect(ctx))

	require.NoError(t, w.scan(ctx, conn, chain, 1, 25_000))

	assert.Equal(t, [][2]uint64{{1, 10_000}, {10_001, 20_000}, {20_001, 25_000}}, chain.calls())

	rows, err := store.List(ctx, ledger.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	block, ok, err := store.GetCheckpoint(ctx, chainA)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(25_000), block)
}

func TestWatcher_ScanStopsAtFailedChunk(t *testing.T) {
	chain := newFakeChain(100)
	chain.filterErr = assert.AnError

	r := newTestRegistry(t, chain, newFakeChain(1))
	store := ledger.NewMemoryStore()
	w := New(r, NewIngestor(store, r, &recordingScheduler{}, zap.NewNop()), store, testWatcherConfig(), nil, zap.NewNop())

	conn, err := r.Get(chainA)
	require.NoError(t, err)
	conn.SetLastProcessedBlock(10)

	require.Error(t, w.scan(context.Background(), conn, chain, 11, 100))
	last, _ := conn.LastProcessedBlock()
	assert.Equal(t, uint64(10), last)
}

func TestWatcher_PollingCatchesUpAndFollows(t *testing.T) {
	chainAFake := newFakeChain(50)
	chainAFake.addLog(tokenLog(t, "TokensBurned", tokenA, alice, 7, bridge.BurnID{0x07}, 40, "0x07"))

	r := newTestRegistry(t, chainAFake, newFakeChain(1))
	store := ledger.NewMemoryStore()
	sched := &recordingScheduler{}
	w := New(r, NewIngestor(store, r, sched, zap.NewNop()), store, testWatcherConfig(),
		map[bridge.Network]uint64{chainA: 30}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.Eventually(t, func() bool { return sched.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	// a later burn is found by the polling loop
	chainAFake.addLog(tokenLog(t, "TokensBurned", tokenA, alice, 8, bridge.BurnID{0x08}, 55, "0x08"))
	chainAFake.setHead(60)
	require.Eventually(t, func() bool { return sched.count() == 2 }, 2*time.Second, 10*time.Millisecond)

	block, ok, err := store.GetCheckpoint(ctx, chainA)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, block, uint64(55))
}

func TestWatcher_LiveAndScanOverlapCreatesOneRow(t *testing.T) {
	chain := newFakeChain(20)
	chain.subscribe = true
	burn := tokenLog(t, "TokensBurned", tokenA, alice, 9, bridge.BurnID{0x09}, 20, "0x09")
	chain.addLog(burn)

	r := newTestRegistry(t, chain, newFakeChain(1))
	store := ledger.NewMemoryStore()
	sched := &recordingScheduler{}
	w := New(r, NewIngestor(store, r, sched, zap.NewNop()), store, testWatcherConfig(),
		map[bridge.Network]uint64{chainA: 10}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.Eventually(t, func() bool { return sched.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	// the subscription delivers the same log again
	chain.live <- burn
	mint := tokenLog(t, "TokensMinted", tokenA, alice, 4, bridge.BurnID{0x0a}, 21, "0x0a")
	chain.live <- mint

	require.Eventually(t, func() bool {
		rows, err := store.List(ctx, ledger.ListFilter{})
		return err == nil && len(rows) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, sched.count())
}

func checkpointOf(store *ledger.MemoryStore, network bridge.Network) uint64 {
	block, _, _ := store.GetCheckpoint(context.Background(), network)
	return block
}

func TestWatcher_LiveSubscriptionClosesWindowAndAdvances(t *testing.T) {
	chain := newFakeChain(20)
	chain.subscribe = true
	// blocks 21-23 land between the head read and the subscription going live
	chain.onSubscribe = func() { chain.setHead(23) }
	chain.addLog(tokenLog(t, "TokensBurned", tokenA, alice, 1, bridge.BurnID{0x22}, 22, "0x22"))

	r := newTestRegistry(t, chain, newFakeChain(1))
	store := ledger.NewMemoryStore()
	sched := &recordingScheduler{}
	w := New(r, NewIngestor(store, r, sched, zap.NewNop()), store, testWatcherConfig(),
		map[bridge.Network]uint64{chainA: 10}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.Eventually(t, func() bool { return sched.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []uint64{21}, chain.subscriptions())
	assert.Contains(t, chain.calls(), [2]uint64{10, 20})
	assert.Contains(t, chain.calls(), [2]uint64{21, 23})
	require.Eventually(t, func() bool { return checkpointOf(store, chainA) == 23 }, 2*time.Second, 10*time.Millisecond)

	// a live log leaves its own block open for later logs
	chain.live <- tokenLog(t, "TokensBurned", tokenA, alice, 2, bridge.BurnID{0x30}, 30, "0x30")
	require.Eventually(t, func() bool { return sched.count() == 2 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return checkpointOf(store, chainA) == 29 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_SubscriptionDropReconnectsAndResumes(t *testing.T) {
	chain := newFakeChain(20)
	chain.subscribe = true

	r := newTestRegistry(t, chain, newFakeChain(1))
	store := ledger.NewMemoryStore()
	sched := &recordingScheduler{}
	w := New(r, NewIngestor(store, r, sched, zap.NewNop()), store, testWatcherConfig(),
		map[bridge.Network]uint64{chainA: 10}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.Eventually(t, func() bool { return len(chain.subscriptions()) == 1 }, 2*time.Second, 10*time.Millisecond)

	// blocks produced while the socket is down
	chain.addLog(tokenLog(t, "TokensBurned", tokenA, alice, 3, bridge.BurnID{0x35}, 35, "0x35"))
	chain.setHead(40)
	chain.dropSubscription(errors.New("websocket: close 1006"))

	require.Eventually(t, func() bool { return len(chain.subscriptions()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []uint64{21, 41}, chain.subscriptions())
	assert.Contains(t, chain.calls(), [2]uint64{21, 40})
	assert.Equal(t, 1, sched.count())
	assert.Equal(t, uint64(40), checkpointOf(store, chainA))
}

func TestWatcher_HealthCheckFailureForcesReconnect(t *testing.T) {
	chain := newFakeChain(20)
	chain.subscribe = true

	r := newTestRegistry(t, chain, newFakeChain(1))
	store := ledger.NewMemoryStore()
	sched := &recordingScheduler{}
	cfg := testWatcherConfig()
	cfg.HealthInterval = 20 * time.Millisecond
	w := New(r, NewIngestor(store, r, sched, zap.NewNop()), store, cfg,
		map[bridge.Network]uint64{chainA: 10}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	conn, err := r.Get(chainA)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(chain.subscriptions()) == 1 }, 2*time.Second, 10*time.Millisecond)

	// the socket stays open but the node stops answering
	chain.setBlockErr(errors.New("i/o timeout"))
	require.Eventually(t, func() bool { return !conn.Healthy() }, 2*time.Second, 5*time.Millisecond)

	chain.addLog(tokenLog(t, "TokensBurned", tokenA, alice, 4, bridge.BurnID{0x25}, 25, "0x25"))
	chain.setHead(30)
	chain.setBlockErr(nil)

	require.Eventually(t, func() bool {
		return conn.Healthy() && len(chain.subscriptions()) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []uint64{21, 31}, chain.subscriptions())
	require.Eventually(t, func() bool { return sched.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_FollowerRetriesThroughCooldown(t *testing.T) {
	chain := newFakeChain(20)
	eps := newEndpoints(map[string]*fakeChain{primaryURL: chain, fallbackURL: chain})
	eps.setDown(primaryURL, true)
	eps.setDown(fallbackURL, true)

	cfg := testWatcherConfig()
	cfg.MaxReconnectAttempts = 2
	cfg.Cooldown = 20 * time.Millisecond
	r := newFailoverRegistry(t, cfg, eps, newFakeChain(1))
	store := ledger.NewMemoryStore()
	w := New(r, NewIngestor(store, r, &recordingScheduler{}, zap.NewNop()), store, cfg, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	conn, err := r.Get(chainA)
	require.NoError(t, err)

	// the attempt budget is spent several times over without the follower giving up
	require.Eventually(t, func() bool {
		return eps.dialCount(primaryURL)+eps.dialCount(fallbackURL) > 3*cfg.MaxReconnectAttempts
	}, 2*time.Second, 5*time.Millisecond)
	assert.LessOrEqual(t, conn.Attempts(), cfg.MaxReconnectAttempts)
	assert.False(t, conn.Healthy())
	assert.True(t, conn.OnFallback())
	assert.Equal(t, cfg.FallbackAfter, eps.dialCount(primaryURL))

	eps.setDown(fallbackURL, false)
	require.Eventually(t, conn.Healthy, 2*time.Second, 5*time.Millisecond)
}

func TestWatcher_FlappingSubscriptionPromotesFallback(t *testing.T) {
	primary := newFakeChain(20)
	primary.subscribe = true
	primary.dropOnSubscribe = errors.New("websocket: close 1006")
	fallback := newFakeChain(20)
	fallback.subscribe = true
	eps := newEndpoints(map[string]*fakeChain{primaryURL: primary, fallbackURL: fallback})

	cfg := testWatcherConfig()
	r := newFailoverRegistry(t, cfg, eps, newFakeChain(1))
	store := ledger.NewMemoryStore()
	w := New(r, NewIngestor(store, r, &recordingScheduler{}, zap.NewNop()), store, cfg, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	conn, err := r.Get(chainA)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(fallback.subscriptions()) == 1 }, 2*time.Second, 5*time.Millisecond)

	assert.True(t, conn.OnFallback())
	assert.Len(t, primary.subscriptions(), cfg.FallbackAfter)
	assert.Equal(t, cfg.FallbackAfter, eps.dialCount(primaryURL))
}

func TestWatcher_FirstConnectHookRunsOncePerNetwork(t *testing.T) {
	chain := newFakeChain(20)
	chain.subscribe = true
	other := newFakeChain(5)

	r := newTestRegistry(t, chain, other)
	store := ledger.NewMemoryStore()
	w := New(r, NewIngestor(store, r, &recordingScheduler{}, zap.NewNop()), store, testWatcherConfig(), nil, zap.NewNop())

	connected := make(chan bridge.Network, 4)
	w.OnFirstConnect(func(_ context.Context, conn *ethereum.Connection) {
		_, err := conn.Client()
		assert.NoError(t, err)
		connected <- conn.Network()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.Eventually(t, func() bool { return len(chain.subscriptions()) == 1 }, 2*time.Second, 10*time.Millisecond)
	chain.dropSubscription(errors.New("websocket: close 1006"))
	require.Eventually(t, func() bool { return len(chain.subscriptions()) == 2 }, 2*time.Second, 10*time.Millisecond)

	got := []bridge.Network{<-connected, <-connected}
	assert.ElementsMatch(t, []bridge.Network{chainA, chainB}, got)
	assert.Empty(t, connected)
}
