package ledger

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
)

// MemoryStore is an in-process Store and CheckpointStore with the same
// uniqueness and conditional update semantics as the postgres store.
type MemoryStore struct {
	mu          sync.Mutex
	rows        map[string]*bridge.Transaction
	checkpoints map[bridge.Network]uint64
	now         func() time.Time
}

// NewMemoryStore creates an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows:        make(map[string]*bridge.Transaction),
		checkpoints: make(map[bridge.Network]uint64),
		now:         time.Now,
	}
}

// SetClock overrides the time source.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func clone(tx *bridge.Transaction) *bridge.Transaction {
	c := *tx
	return &c
}

func (m *MemoryStore) insert(tx *bridge.Transaction) (*bridge.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bridge transaction: %w", err)
	}
	row := clone(tx)
	row.SourceTransactionHash = normalizeHash(row.SourceTransactionHash)
	row.TargetTransactionHash = normalizeHash(row.TargetTransactionHash)
	row.BlockHash = normalizeHash(row.BlockHash)
	now := m.now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now
	m.rows[row.ID] = row
	return clone(row), nil
}

func (m *MemoryStore) CreateBurn(_ context.Context, tx *bridge.Transaction) (*bridge.Transaction, bool, error) {
	if tx.SourceTransactionHash == "" {
		return nil, false, fmt.Errorf("burn row requires a source transaction hash")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing := m.match(&QueryOptions{
		SourceTxHash:  &tx.SourceTransactionHash,
		SourceNetwork: &tx.SourceNetwork,
	}); existing != nil {
		return clone(existing), false, nil
	}
	tx.Status = bridge.StatusPending
	row, err := m.insert(tx)
	return row, err == nil, err
}

func (m *MemoryStore) CreateMint(_ context.Context, tx *bridge.Transaction) (*bridge.Transaction, bool, error) {
	if tx.TargetTransactionHash == "" {
		return nil, false, fmt.Errorf("mint row requires a target transaction hash")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing := m.match(&QueryOptions{TargetTxHash: &tx.TargetTransactionHash}); existing != nil {
		return clone(existing), false, nil
	}
	tx.Status = bridge.StatusCompleted
	row, err := m.insert(tx)
	return row, err == nil, err
}

func (m *MemoryStore) Get(_ context.Context, id string) (*bridge.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(row), nil
}

func (m *MemoryStore) Find(_ context.Context, opts ...QueryOption) (*bridge.Transaction, error) {
	options, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	row := m.match(options)
	if row == nil {
		return nil, ErrNotFound
	}
	return clone(row), nil
}

// match returns the newest row satisfying every set option. Caller holds mu.
func (m *MemoryStore) match(o *QueryOptions) *bridge.Transaction {
	var best *bridge.Transaction
	for _, row := range m.rows {
		if o.SourceTxHash != nil && row.SourceTransactionHash != normalizeHash(*o.SourceTxHash) {
			continue
		}
		if o.SourceNetwork != nil && row.SourceNetwork != *o.SourceNetwork {
			continue
		}
		if o.TargetTxHash != nil && row.TargetTransactionHash != normalizeHash(*o.TargetTxHash) {
			continue
		}
		if o.NoTargetTxHash && row.TargetTransactionHash != "" {
			continue
		}
		if o.TargetNetwork != nil && row.TargetNetwork != *o.TargetNetwork {
			continue
		}
		if o.BurnID != nil && row.BurnID != *o.BurnID {
			continue
		}
		if len(o.Statuses) > 0 && !slices.Contains(o.Statuses, row.Status) {
			continue
		}
		if best == nil || row.CreatedAt.After(best.CreatedAt) {
			best = row
		}
	}
	return best
}

func (m *MemoryStore) List(_ context.Context, filter ListFilter) ([]*bridge.Transaction, error) {
	filter = filter.normalized()
	m.mu.Lock()
	defer m.mu.Unlock()

	var rows []*bridge.Transaction
	for _, row := range m.rows {
		if filter.Recipient != "" && !strings.EqualFold(row.Recipient, filter.Recipient) {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID > rows[j].ID
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})

	if filter.Offset >= len(rows) {
		return []*bridge.Transaction{}, nil
	}
	rows = rows[filter.Offset:]
	if len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}
	out := make([]*bridge.Transaction, len(rows))
	for i, row := range rows {
		out[i] = clone(row)
	}
	return out, nil
}

func (m *MemoryStore) ListStale(_ context.Context, filter StaleFilter) ([]*bridge.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var rows []*bridge.Transaction
	for _, row := range m.rows {
		if !slices.Contains(filter.Statuses, row.Status) || !row.UpdatedAt.Before(filter.OlderThan) {
			continue
		}
		if filter.RecoveryBelow > 0 && row.RecoveryAttempts >= filter.RecoveryBelow {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].UpdatedAt.Before(rows[j].UpdatedAt) })
	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}
	out := make([]*bridge.Transaction, len(rows))
	for i, row := range rows {
		out[i] = clone(row)
	}
	return out, nil
}

func (m *MemoryStore) Apply(_ context.Context, id string, u Update) (*bridge.Transaction, error) {
	from, err := u.guard()
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !slices.Contains(from, row.Status) {
		return nil, ErrStaleState
	}
	if u.ExpectTaskID != nil && row.RelayTaskID != *u.ExpectTaskID {
		return nil, ErrStaleState
	}
	if u.RecoveryBelow > 0 && row.RecoveryAttempts >= u.RecoveryBelow {
		return nil, ErrStaleState
	}
	if u.ExpectNoTargetTxHash && row.TargetTransactionHash != "" {
		return nil, ErrStaleState
	}
	if u.TargetTransactionHash != nil && *u.TargetTransactionHash != "" {
		hash := normalizeHash(*u.TargetTransactionHash)
		for otherID, other := range m.rows {
			if otherID != id && other.TargetTransactionHash == hash {
				return nil, fmt.Errorf("failed to update bridge transaction %s: target hash %s already recorded", id, hash)
			}
		}
	}

	if u.To != "" {
		row.Status = u.To
	}
	if u.RelayTaskID != nil {
		row.RelayTaskID = *u.RelayTaskID
	}
	if u.TargetTransactionHash != nil {
		row.TargetTransactionHash = normalizeHash(*u.TargetTransactionHash)
	}
	if u.BurnID != nil && !u.BurnID.IsZero() {
		row.BurnID = *u.BurnID
	}
	if u.LastError != nil {
		row.LastError = *u.LastError
	}
	if u.IncrementRecovery {
		row.RecoveryAttempts++
	}
	row.UpdatedAt = m.now().UTC()
	return clone(row), nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

func (m *MemoryStore) GetCheckpoint(_ context.Context, network bridge.Network) (uint64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	block, ok := m.checkpoints[network]
	return block, ok, nil
}

func (m *MemoryStore) SetCheckpoint(_ context.Context, network bridge.Network, block uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if block > m.checkpoints[network] {
		m.checkpoints[network] = block
	} else if _, ok := m.checkpoints[network]; !ok {
		m.checkpoints[network] = block
	}
	return nil
}
