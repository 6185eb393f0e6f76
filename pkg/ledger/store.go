// Package ledger persists bridge transactions, the single source of truth for settlement state.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
)

var (
	// ErrNotFound is returned when a lookup finds no matching row.
	ErrNotFound = errors.New("bridge transaction not found")
	// ErrStaleState is returned when a conditional update matched no row because
	// the row has moved on (different status or relay task).
	ErrStaleState = errors.New("bridge transaction state changed concurrently")
	// ErrInvalidUpdate is returned for updates that would move a row backwards.
	ErrInvalidUpdate = errors.New("invalid bridge transaction update")
)

// Store defines the ledger operations used by the watcher, relayer and API.
type Store interface {
	// CreateBurn inserts a PENDING row unless one exists for the same
	// (source transaction hash, source network). It returns the stored row and
	// whether it was created by this call.
	CreateBurn(ctx context.Context, tx *bridge.Transaction) (*bridge.Transaction, bool, error)
	// CreateMint inserts a COMPLETED row unless one exists for the same target transaction hash.
	CreateMint(ctx context.Context, tx *bridge.Transaction) (*bridge.Transaction, bool, error)
	Get(ctx context.Context, id string) (*bridge.Transaction, error)
	Find(ctx context.Context, opts ...QueryOption) (*bridge.Transaction, error)
	List(ctx context.Context, filter ListFilter) ([]*bridge.Transaction, error)
	// ListStale returns rows matching the filter, least recently updated first.
	ListStale(ctx context.Context, filter StaleFilter) ([]*bridge.Transaction, error)
	// Apply performs a conditional update and returns the row after it.
	// ErrStaleState means the guard did not match.
	Apply(ctx context.Context, id string, u Update) (*bridge.Transaction, error)
	Ping(ctx context.Context) error
}

// CheckpointStore keeps the last fully processed block per network.
type CheckpointStore interface {
	GetCheckpoint(ctx context.Context, network bridge.Network) (uint64, bool, error)
	// SetCheckpoint only ever moves the checkpoint forward.
	SetCheckpoint(ctx context.Context, network bridge.Network, block uint64) error
}

// Update describes a guarded change to a row.
type Update struct {
	// To is the new status. Empty keeps the current status.
	To bridge.Status
	// From restricts the statuses the row may currently be in. When To is set,
	// it is intersected with the statuses that may legally reach To.
	From []bridge.Status
	// ExpectTaskID requires the row's current relay task id to equal the value.
	ExpectTaskID *string
	// RecoveryBelow, when positive, requires recovery_attempts to be below the value.
	RecoveryBelow int
	// ExpectNoTargetTxHash requires the row to have no target transaction hash yet.
	ExpectNoTargetTxHash bool

	RelayTaskID           *string
	TargetTransactionHash *string
	BurnID                *bridge.BurnID
	LastError             *string
	IncrementRecovery     bool
}

// guard resolves the statuses that satisfy the update's precondition.
func (u Update) guard() ([]bridge.Status, error) {
	if u.To == "" {
		if len(u.From) == 0 {
			return nil, errors.Join(ErrInvalidUpdate, errors.New("update without a target status needs a From guard"))
		}
		return u.From, nil
	}

	legal := bridge.Sources(u.To)
	if len(u.From) == 0 {
		if len(legal) == 0 {
			return nil, errors.Join(ErrInvalidUpdate, errors.New("no status may transition to "+string(u.To)))
		}
		return legal, nil
	}

	var out []bridge.Status
	for _, from := range u.From {
		if from.CanTransition(u.To) {
			out = append(out, from)
		}
	}
	if len(out) == 0 {
		return nil, errors.Join(ErrInvalidUpdate, errors.New("no listed status may transition to "+string(u.To)))
	}
	return out, nil
}

// ListFilter selects rows for the API query, newest first.
type ListFilter struct {
	Recipient string
	Status    bridge.Status
	Limit     int
	Offset    int
}

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

func (f ListFilter) normalized() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// StaleFilter selects rows that have not been touched for a while.
type StaleFilter struct {
	Statuses  []bridge.Status
	OlderThan time.Time
	// RecoveryBelow, when positive, skips rows with that many recovery attempts or more.
	RecoveryBelow int
	Limit         int
}

// QueryOptions defines the lookup keys for Find. All set keys must match.
type QueryOptions struct {
	SourceTxHash  *string
	SourceNetwork *bridge.Network
	TargetTxHash  *string
	TargetNetwork *bridge.Network
	BurnID        *bridge.BurnID
	Statuses      []bridge.Status
	// NoTargetTxHash matches rows whose mint hash is not known yet.
	NoTargetTxHash bool
}

// QueryOption is a functional option for Find
type QueryOption func(*QueryOptions)

// WithSource matches the burn transaction on its network
func WithSource(network bridge.Network, txHash string) QueryOption {
	return func(opts *QueryOptions) {
		opts.SourceNetwork = &network
		opts.SourceTxHash = &txHash
	}
}

// WithTargetTxHash matches the mint transaction hash
func WithTargetTxHash(txHash string) QueryOption {
	return func(opts *QueryOptions) {
		opts.TargetTxHash = &txHash
	}
}

// WithBurnID matches the correlation token on the given target network
func WithBurnID(target bridge.Network, id bridge.BurnID) QueryOption {
	return func(opts *QueryOptions) {
		opts.TargetNetwork = &target
		opts.BurnID = &id
	}
}

// WithStatuses restricts the match to rows in one of the statuses
func WithStatuses(statuses ...bridge.Status) QueryOption {
	return func(opts *QueryOptions) {
		opts.Statuses = statuses
	}
}

// WithoutTargetTxHash matches rows that have no mint transaction hash recorded
func WithoutTargetTxHash() QueryOption {
	return func(opts *QueryOptions) {
		opts.NoTargetTxHash = true
	}
}

func buildOptions(opts []QueryOption) (*QueryOptions, error) {
	options := &QueryOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.SourceTxHash == nil && options.TargetTxHash == nil && options.BurnID == nil {
		return nil, errors.New("find requires a source hash, target hash or burn id")
	}
	return options, nil
}
