package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"math/rand/v2"
	"sync"
	"time"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/chainsafe/burnmint-bridge/internal/metrics"
	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
	"github.com/chainsafe/burnmint-bridge/pkg/ethereum/contracts"
)

// ErrNotConnected is returned by calls made while no RPC client is attached.
var ErrNotConnected = errors.New("chain connection is not established")

// ChainClient is the part of ethclient.Client the bridge uses.
type ChainClient interface {
	bind.ContractCaller
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q geth.FilterQuery) ([]types.Log, error)
	SubscribeFilterLogs(ctx context.Context, q geth.FilterQuery, ch chan<- types.Log) (geth.Subscription, error)
	Close()
}

// Dialer opens a ChainClient for an RPC endpoint.
type Dialer func(ctx context.Context, url string) (ChainClient, error)

// DialRPC dials an endpoint with ethclient. Websocket URLs support log subscriptions.
func DialRPC(ctx context.Context, url string) (ChainClient, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Endpoint labels for metrics and logs.
const (
	EndpointPrimary  = "primary"
	EndpointFallback = "fallback"
)

// ChainConfig is the static description of one bridged chain.
type ChainConfig struct {
	Network        bridge.Network
	ChainID        uint64
	PrimaryURL     string
	FallbackURL    string
	Token          common.Address
	TokenDecimals  int32
	RelayForwarder common.Address
}

// HealthPolicy bounds reconnection behaviour.
type HealthPolicy struct {
	BaseDelay          time.Duration
	MaxDelay           time.Duration
	MaxAttempts        int
	Cooldown           time.Duration
	FallbackAfter      int
	PrimaryRetryChance float64
	RPCTimeout         time.Duration
}

// DefaultHealthPolicy returns the reconnection defaults.
func DefaultHealthPolicy() HealthPolicy {
	return HealthPolicy{
		BaseDelay:          5 * time.Second,
		MaxDelay:           60 * time.Second,
		MaxAttempts:        10,
		Cooldown:           60 * time.Second,
		FallbackAfter:      3,
		PrimaryRetryChance: 0.2,
		RPCTimeout:         15 * time.Second,
	}
}

// Connection owns the RPC client for one chain and its health state.
type Connection struct {
	cfg    ChainConfig
	policy HealthPolicy
	dial   Dialer
	logger *zap.Logger
	chance func() float64

	mu         sync.RWMutex
	client     ChainClient
	healthy    bool
	attempts   int
	failures   int
	onFallback bool
	lastBlock  uint64
	hasLast    bool
}

// NewConnection creates a disconnected Connection. Call Connect before use.
func NewConnection(cfg ChainConfig, policy HealthPolicy, dial Dialer, logger *zap.Logger) *Connection {
	if dial == nil {
		dial = DialRPC
	}
	return &Connection{
		cfg:    cfg,
		policy: policy,
		dial:   dial,
		logger: logger.With(zap.String("network", cfg.Network.String())),
		chance: rand.Float64,
	}
}

func (c *Connection) Network() bridge.Network        { return c.cfg.Network }
func (c *Connection) ChainID() uint64                { return c.cfg.ChainID }
func (c *Connection) TokenAddress() common.Address   { return c.cfg.Token }
func (c *Connection) TokenDecimals() int32           { return c.cfg.TokenDecimals }
func (c *Connection) RelayForwarder() common.Address { return c.cfg.RelayForwarder }

// Healthy reports whether the last connect or health check succeeded.
func (c *Connection) Healthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthy
}

// OnFallback reports whether the fallback endpoint is in use.
func (c *Connection) OnFallback() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.onFallback
}

// Attempts returns the reconnect attempts since the last success or cooldown.
func (c *Connection) Attempts() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.attempts
}

func (c *Connection) endpoint() (string, string) {
	if c.onFallback && c.cfg.FallbackURL != "" {
		return EndpointFallback, c.cfg.FallbackURL
	}
	return EndpointPrimary, c.cfg.PrimaryURL
}

// Connect dials the current endpoint and verifies it answers. Failures are
// recorded against the health state and returned.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	label, url := c.endpoint()
	c.mu.Unlock()

	metrics.Reconnects.WithLabelValues(c.cfg.Network.String(), label).Inc()

	client, err := c.dialAndCheck(ctx, url)
	if err != nil {
		c.RecordFailure(err)
		return fmt.Errorf("failed to connect to %s endpoint: %w", label, err)
	}

	c.mu.Lock()
	old := c.client
	c.client = client
	c.attempts = 0
	c.setHealthy(true)
	c.mu.Unlock()

	if old != nil && old != client {
		old.Close()
	}
	c.logger.Info("Chain connection established", zap.String("endpoint", label))
	return nil
}

func (c *Connection) dialAndCheck(ctx context.Context, url string) (ChainClient, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.policy.RPCTimeout)
	defer cancel()

	client, err := c.dial(dialCtx, url)
	if err != nil {
		return nil, err
	}
	if _, err := client.BlockNumber(dialCtx); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// RecordFailure counts a failed connect, or a follower that broke after
// connecting, toward the reconnect backoff and fallback promotion.
func (c *Connection) RecordFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setHealthy(false)
	c.failures++
	if c.attempts < c.policy.MaxAttempts {
		c.attempts++
	}

	if !c.onFallback && c.cfg.FallbackURL != "" && c.failures >= c.policy.FallbackAfter {
		c.onFallback = true
		c.failures = 0
		metrics.EndpointSwitches.WithLabelValues(c.cfg.Network.String(), EndpointFallback).Inc()
		c.logger.Warn("Promoting fallback RPC endpoint", zap.Error(err))
		return
	}
	c.logger.Warn("Chain connection attempt failed",
		zap.Int("attempt", c.attempts),
		zap.Int("consecutive_failures", c.failures),
		zap.Error(err))
}

// ConfirmLive clears the consecutive failure count after the endpoint delivered data.
func (c *Connection) ConfirmLive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = 0
}

// MarkUnhealthy flags the connection after a failed health check.
func (c *Connection) MarkUnhealthy(err error) {
	c.mu.Lock()
	c.setHealthy(false)
	c.mu.Unlock()
	c.logger.Warn("Chain connection marked unhealthy", zap.Error(err))
}

// setHealthy must be called with mu held.
func (c *Connection) setHealthy(v bool) {
	c.healthy = v
	gauge := 0.0
	if v {
		gauge = 1
	}
	metrics.ConnectionHealthy.WithLabelValues(c.cfg.Network.String()).Set(gauge)
}

// NextDelay returns how long to wait before the next reconnect attempt:
// min(base*2^(attempt-1), max). Once the attempt cap is reached the counter is
// reset and the cooldown is returned instead.
func (c *Connection) NextDelay() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attempts >= c.policy.MaxAttempts {
		c.attempts = 0
		c.logger.Warn("Reconnect attempts exhausted, cooling down", zap.Duration("cooldown", c.policy.Cooldown))
		return c.policy.Cooldown
	}
	return ReconnectDelay(c.policy.BaseDelay, c.policy.MaxDelay, c.attempts)
}

// ReconnectDelay is min(base*2^(attempt-1), max) for attempt >= 1.
func ReconnectDelay(base, max time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}

// CheckHealth issues a liveness call. On success while on the fallback endpoint it
// occasionally tries to move back to the primary.
func (c *Connection) CheckHealth(ctx context.Context) error {
	client, err := c.Client()
	if err != nil {
		return err
	}

	checkCtx, cancel := context.WithTimeout(ctx, c.policy.RPCTimeout)
	defer cancel()
	if _, err := client.BlockNumber(checkCtx); err != nil {
		c.MarkUnhealthy(err)
		return err
	}

	c.mu.Lock()
	c.setHealthy(true)
	tryPrimary := c.onFallback && c.chance() < c.policy.PrimaryRetryChance
	c.mu.Unlock()

	if tryPrimary {
		c.tryPrimary(ctx)
	}
	return nil
}

func (c *Connection) tryPrimary(ctx context.Context) {
	client, err := c.dialAndCheck(ctx, c.cfg.PrimaryURL)
	if err != nil {
		c.logger.Debug("Primary RPC endpoint still unavailable", zap.Error(err))
		return
	}

	c.mu.Lock()
	old := c.client
	c.client = client
	c.onFallback = false
	c.failures = 0
	c.mu.Unlock()

	if old != nil && old != client {
		old.Close()
	}
	metrics.EndpointSwitches.WithLabelValues(c.cfg.Network.String(), EndpointPrimary).Inc()
	c.logger.Info("Returned to primary RPC endpoint")
}

// Client returns the current RPC client.
func (c *Connection) Client() (ChainClient, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.client == nil {
		return nil, ErrNotConnected
	}
	return c.client, nil
}

// LastProcessedBlock returns the watcher cursor, if one is known.
func (c *Connection) LastProcessedBlock() (uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastBlock, c.hasLast
}

// SetLastProcessedBlock advances the cursor. It never moves backwards.
func (c *Connection) SetLastProcessedBlock(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hasLast && n <= c.lastBlock {
		return
	}
	c.lastBlock = n
	c.hasLast = true
	metrics.LastProcessedBlock.WithLabelValues(c.cfg.Network.String()).Set(float64(n))
}

// IsBridgeOperator reads bridgeOperators(account) from the token contract.
func (c *Connection) IsBridgeOperator(ctx context.Context, account common.Address) (bool, error) {
	client, err := c.Client()
	if err != nil {
		return false, err
	}
	token, err := contracts.NewBridgeTokenCaller(c.cfg.Token, client)
	if err != nil {
		return false, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.policy.RPCTimeout)
	defer cancel()
	return token.BridgeOperators(&bind.CallOpts{Context: callCtx}, account)
}

// UserNonce reads the relay forwarder's nonce for user.
func (c *Connection) UserNonce(ctx context.Context, user common.Address) (*big.Int, error) {
	if c.cfg.RelayForwarder == (common.Address{}) {
		return nil, fmt.Errorf("no relay forwarder configured for %s", c.cfg.Network)
	}
	client, err := c.Client()
	if err != nil {
		return nil, err
	}
	forwarder, err := contracts.NewRelayForwarderCaller(c.cfg.RelayForwarder, client)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.policy.RPCTimeout)
	defer cancel()
	return forwarder.UserNonce(&bind.CallOpts{Context: callCtx}, user)
}

// Close releases the RPC client.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
	c.setHealthy(false)
}
