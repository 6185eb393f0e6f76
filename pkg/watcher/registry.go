// Package watcher follows the token contracts on both chains and turns burn
// and mint events into ledger rows.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
	"github.com/chainsafe/burnmint-bridge/pkg/config"
	"github.com/chainsafe/burnmint-bridge/pkg/ethereum"
)

// ErrUnknownNetwork is returned for networks the registry was not built with.
var ErrUnknownNetwork = errors.New("unknown network")

// Registry holds the connection for each bridged network. It is built once at
// startup and shared by the watcher, the relayer and the API.
type Registry struct {
	order   []bridge.Network
	conns   map[bridge.Network]*ethereum.Connection
	byChain map[uint64]*ethereum.Connection
}

// NewRegistry indexes exactly two connections with distinct networks and chain ids.
func NewRegistry(conns ...*ethereum.Connection) (*Registry, error) {
	if len(conns) != 2 {
		return nil, fmt.Errorf("bridge needs exactly two networks, got %d", len(conns))
	}
	r := &Registry{
		conns:   make(map[bridge.Network]*ethereum.Connection, len(conns)),
		byChain: make(map[uint64]*ethereum.Connection, len(conns)),
	}
	for _, c := range conns {
		if _, dup := r.conns[c.Network()]; dup {
			return nil, fmt.Errorf("duplicate network %s", c.Network())
		}
		if _, dup := r.byChain[c.ChainID()]; dup {
			return nil, fmt.Errorf("duplicate chain id %d", c.ChainID())
		}
		r.order = append(r.order, c.Network())
		r.conns[c.Network()] = c
		r.byChain[c.ChainID()] = c
	}
	return r, nil
}

// PolicyFromConfig maps the watcher settings onto a connection health policy.
func PolicyFromConfig(cfg config.WatcherConfig) ethereum.HealthPolicy {
	return ethereum.HealthPolicy{
		BaseDelay:          cfg.ReconnectBaseDelay,
		MaxDelay:           cfg.ReconnectMaxDelay,
		MaxAttempts:        cfg.MaxReconnectAttempts,
		Cooldown:           cfg.Cooldown,
		FallbackAfter:      cfg.FallbackAfter,
		PrimaryRetryChance: cfg.PrimaryRetryChance,
		RPCTimeout:         cfg.RPCTimeout,
	}
}

// BuildRegistry creates one disconnected Connection per configured network.
func BuildRegistry(networks []config.NetworkConfig, cfg config.WatcherConfig, dial ethereum.Dialer, logger *zap.Logger) (*Registry, error) {
	policy := PolicyFromConfig(cfg)
	conns := make([]*ethereum.Connection, 0, len(networks))
	for _, n := range networks {
		chain := ethereum.ChainConfig{
			Network:       bridge.NormalizeNetwork(n.Name),
			ChainID:       n.ChainID,
			PrimaryURL:    n.RPCURL,
			FallbackURL:   n.FallbackRPCURL,
			Token:         common.HexToAddress(n.TokenContract),
			TokenDecimals: n.TokenDecimals,
		}
		if n.RelayForwarder != "" {
			chain.RelayForwarder = common.HexToAddress(n.RelayForwarder)
		}
		conns = append(conns, ethereum.NewConnection(chain, policy, dial, logger))
	}
	return NewRegistry(conns...)
}

// Networks returns the networks in configuration order.
func (r *Registry) Networks() []bridge.Network {
	out := make([]bridge.Network, len(r.order))
	copy(out, r.order)
	return out
}

// Connections returns the connections in configuration order.
func (r *Registry) Connections() []*ethereum.Connection {
	out := make([]*ethereum.Connection, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.conns[n])
	}
	return out
}

// Get returns the connection for n.
func (r *Registry) Get(n bridge.Network) (*ethereum.Connection, error) {
	c, ok := r.conns[bridge.NormalizeNetwork(string(n))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNetwork, n)
	}
	return c, nil
}

// Other returns the counterpart of n.
func (r *Registry) Other(n bridge.Network) (bridge.Network, error) {
	n = bridge.NormalizeNetwork(string(n))
	if _, ok := r.conns[n]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownNetwork, n)
	}
	for _, other := range r.order {
		if other != n {
			return other, nil
		}
	}
	return "", fmt.Errorf("%w: no counterpart for %s", ErrUnknownNetwork, n)
}

// ByChainID returns the connection for a chain id.
func (r *Registry) ByChainID(id uint64) (*ethereum.Connection, error) {
	c, ok := r.byChain[id]
	if !ok {
		return nil, fmt.Errorf("%w: chain id %d", ErrUnknownNetwork, id)
	}
	return c, nil
}

// UserNonce reads the relay forwarder nonce on the chain with the given id.
func (r *Registry) UserNonce(ctx context.Context, chainID uint64, user common.Address) (*big.Int, error) {
	c, err := r.ByChainID(chainID)
	if err != nil {
		return nil, err
	}
	return c.UserNonce(ctx, user)
}

// Unhealthy lists the networks whose connection is currently down.
func (r *Registry) Unhealthy() []bridge.Network {
	var out []bridge.Network
	for _, n := range r.order {
		if !r.conns[n].Healthy() {
			out = append(out, n)
		}
	}
	return out
}

// Close closes every connection.
func (r *Registry) Close() {
	for _, c := range r.conns {
		c.Close()
	}
}
