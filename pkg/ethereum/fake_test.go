package ethereum

import (
	"context"
	"errors"
	"math/big"
	"sync"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type fakeClient struct {
	mu sync.Mutex

	BlockNumberFunc  func(ctx context.Context) (uint64, error)
	CallContractFunc func(ctx context.Context, call geth.CallMsg, block *big.Int) ([]byte, error)
	closed           bool
}

func (f *fakeClient) BlockNumber(ctx context.Context) (uint64, error) {
	if f.BlockNumberFunc != nil {
		return f.BlockNumberFunc(ctx)
	}
	return 100, nil
}

func (f *fakeClient) FilterLogs(context.Context, geth.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (f *fakeClient) SubscribeFilterLogs(context.Context, geth.FilterQuery, chan<- types.Log) (geth.Subscription, error) {
	return nil, errors.New("notifications not supported")
}

func (f *fakeClient) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeClient) CallContract(ctx context.Context, call geth.CallMsg, block *big.Int) ([]byte, error) {
	if f.CallContractFunc != nil {
		return f.CallContractFunc(ctx, call, block)
	}
	return nil, errors.New("unexpected call")
}

func (f *fakeClient) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// scriptedDialer fails for urls listed in down and records every dial.
type scriptedDialer struct {
	mu     sync.Mutex
	down   map[string]bool
	dialed []string
	client *fakeClient
}

func (d *scriptedDialer) dial(_ context.Context, url string) (ChainClient, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dialed = append(d.dialed, url)
	if d.down[url] {
		return nil, errors.New("connection refused")
	}
	if d.client == nil {
		d.client = &fakeClient{}
	}
	return d.client, nil
}

func (d *scriptedDialer) setDown(url string, down bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.down[url] = down
}
