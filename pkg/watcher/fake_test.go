package watcher

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
	"github.com/chainsafe/burnmint-bridge/pkg/config"
	"github.com/chainsafe/burnmint-bridge/pkg/ethereum"
	"github.com/chainsafe/burnmint-bridge/pkg/ethereum/contracts"
)

const (
	chainA = bridge.Network("sepolia")
	chainB = bridge.Network("amoy")

	primaryURL  = "wss://primary.example"
	fallbackURL = "wss://fallback.example"
)

var (
	tokenA = common.HexToAddress("0x1000000000000000000000000000000000000001")
	tokenB = common.HexToAddress("0x1000000000000000000000000000000000000002")
	alice  = common.HexToAddress("0xAbc0000000000000000000000000000000000001")
)

// fakeChain serves logs from memory. Live logs are pushed through live when
// subscriptions are enabled.
type fakeChain struct {
	mu          sync.Mutex
	head        uint64
	logs        []types.Log
	filterCalls [][2]uint64
	subscribe   bool
	live        chan types.Log
	filterErr   error
	blockErr    error
	subFrom     []uint64
	subs        []*fakeSub
	// dropOnSubscribe fails every subscription as soon as it is created.
	dropOnSubscribe error
	// onSubscribe runs after a subscription is created.
	onSubscribe func()
}

func newFakeChain(head uint64) *fakeChain {
	return &fakeChain{head: head, live: make(chan types.Log, 16)}
}

func (f *fakeChain) setHead(h uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.head = h
}

func (f *fakeChain) addLog(l types.Log) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, l)
}

func (f *fakeChain) setBlockErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blockErr = err
}

// subscriptions returns the start block of every subscription made so far.
func (f *fakeChain) subscriptions() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uint64, len(f.subFrom))
	copy(out, f.subFrom)
	return out
}

// dropSubscription fails the latest subscription with err.
func (f *fakeChain) dropSubscription(err error) {
	f.mu.Lock()
	sub := f.subs[len(f.subs)-1]
	f.mu.Unlock()
	sub.errc <- err
}

func (f *fakeChain) calls() [][2]uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][2]uint64, len(f.filterCalls))
	copy(out, f.filterCalls)
	return out
}

func (f *fakeChain) BlockNumber(context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.blockErr != nil {
		return 0, f.blockErr
	}
	return f.head, nil
}

func (f *fakeChain) FilterLogs(_ context.Context, q geth.FilterQuery) ([]types.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.filterErr != nil {
		return nil, f.filterErr
	}
	from := q.FromBlock.Uint64()
	to := f.head
	if q.ToBlock != nil {
		to = q.ToBlock.Uint64()
	}
	f.filterCalls = append(f.filterCalls, [2]uint64{from, to})

	var out []types.Log
	for _, l := range f.logs {
		if l.BlockNumber >= from && l.BlockNumber <= to {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeChain) SubscribeFilterLogs(_ context.Context, q geth.FilterQuery, ch chan<- types.Log) (geth.Subscription, error) {
	f.mu.Lock()
	if !f.subscribe {
		f.mu.Unlock()
		return nil, rpc.ErrNotificationsUnsupported
	}
	sub := &fakeSub{errc: make(chan error, 1), quit: make(chan struct{})}
	f.subFrom = append(f.subFrom, q.FromBlock.Uint64())
	f.subs = append(f.subs, sub)
	if f.dropOnSubscribe != nil {
		sub.errc <- f.dropOnSubscribe
	}
	hook := f.onSubscribe
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	go func() {
		for {
			select {
			case l := <-f.live:
				ch <- l
			case <-sub.quit:
				return
			}
		}
	}()
	return sub, nil
}

func (f *fakeChain) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return nil, nil
}

func (f *fakeChain) CallContract(context.Context, geth.CallMsg, *big.Int) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeChain) Close() {}

type fakeSub struct {
	errc chan error
	quit chan struct{}
	once sync.Once
}

func (s *fakeSub) Err() <-chan error { return s.errc }

func (s *fakeSub) Unsubscribe() {
	s.once.Do(func() { close(s.quit) })
}

func chainDialer(c *fakeChain) ethereum.Dialer {
	return func(context.Context, string) (ethereum.ChainClient, error) { return c, nil }
}

func newTestRegistry(t *testing.T, a, b *fakeChain) *Registry {
	t.Helper()
	policy := PolicyFromConfig(testWatcherConfig())
	dialer := chainDialer
	connA := ethereum.NewConnection(ethereum.ChainConfig{
		Network: chainA, ChainID: 11155111, PrimaryURL: "wss://a.example", Token: tokenA,
	}, policy, dialer(a), zap.NewNop())
	connB := ethereum.NewConnection(ethereum.ChainConfig{
		Network: chainB, ChainID: 80002, PrimaryURL: "wss://b.example", Token: tokenB,
	}, policy, dialer(b), zap.NewNop())

	r, err := NewRegistry(connA, connB)
	require.NoError(t, err)
	return r
}

// endpoints dials fake chains by url. Urls marked down refuse connections.
type endpoints struct {
	mu     sync.Mutex
	chains map[string]*fakeChain
	down   map[string]bool
	dials  map[string]int
}

func newEndpoints(chains map[string]*fakeChain) *endpoints {
	return &endpoints{chains: chains, down: map[string]bool{}, dials: map[string]int{}}
}

func (e *endpoints) dial(_ context.Context, url string) (ethereum.ChainClient, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dials[url]++
	if e.down[url] {
		return nil, errors.New("connection refused")
	}
	return e.chains[url], nil
}

func (e *endpoints) setDown(url string, down bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.down[url] = down
}

func (e *endpoints) dialCount(url string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dials[url]
}

// newFailoverRegistry gives chainA a primary and a fallback endpoint served by eps.
func newFailoverRegistry(t *testing.T, cfg config.WatcherConfig, eps *endpoints, other *fakeChain) *Registry {
	t.Helper()
	policy := PolicyFromConfig(cfg)
	connA := ethereum.NewConnection(ethereum.ChainConfig{
		Network: chainA, ChainID: 11155111, PrimaryURL: primaryURL, FallbackURL: fallbackURL, Token: tokenA,
	}, policy, eps.dial, zap.NewNop())
	connB := ethereum.NewConnection(ethereum.ChainConfig{
		Network: chainB, ChainID: 80002, PrimaryURL: "wss://b.example", Token: tokenB,
	}, policy, chainDialer(other), zap.NewNop())

	r, err := NewRegistry(connA, connB)
	require.NoError(t, err)
	return r
}

func tokenLog(t *testing.T, event string, token common.Address, account common.Address, amount int64, burnID bridge.BurnID, block uint64, txHash string) types.Log {
	t.Helper()
	parsed, err := contracts.BridgeTokenMetaData.GetAbi()
	require.NoError(t, err)
	ev := parsed.Events[event]
	data, err := ev.Inputs.NonIndexed().Pack(big.NewInt(amount))
	require.NoError(t, err)
	return types.Log{
		Address:     token,
		Topics:      []common.Hash{ev.ID, common.BytesToHash(account.Bytes()), common.Hash(burnID)},
		Data:        data,
		BlockNumber: block,
		BlockHash:   common.BigToHash(new(big.Int).SetUint64(block)),
		TxHash:      common.HexToHash(txHash),
	}
}

type recordingScheduler struct {
	mu   sync.Mutex
	rows []*bridge.Transaction
}

func (s *recordingScheduler) ScheduleDispatch(_ context.Context, tx *bridge.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, tx)
	return nil
}

func (s *recordingScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
