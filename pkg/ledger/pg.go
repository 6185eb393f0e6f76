package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
)

type pgStore struct {
	db  *bun.DB
	now func() time.Time
}

// NewStore creates a new postgres implementation of the ledger store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db, now: time.Now}
}

func (s *pgStore) prepare(tx *bridge.Transaction) (*TransactionDao, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bridge transaction: %w", err)
	}
	now := s.now().UTC()
	dao := toTransactionDao(tx)
	dao.CreatedAt = now
	dao.UpdatedAt = now
	if tx.Status == bridge.StatusCompleted {
		dao.CompletedAt = &now
	}
	return dao, nil
}

func (s *pgStore) CreateBurn(ctx context.Context, tx *bridge.Transaction) (*bridge.Transaction, bool, error) {
	if tx.SourceTransactionHash == "" {
		return nil, false, fmt.Errorf("burn row requires a source transaction hash")
	}
	tx.Status = bridge.StatusPending
	dao, err := s.prepare(tx)
	if err != nil {
		return nil, false, err
	}

	res, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (source_tx_hash, source_network) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create burn transaction: %w", err)
	}
	created, err := affected(res)
	if err != nil {
		return nil, false, err
	}

	stored, err := s.Find(ctx, WithSource(tx.SourceNetwork, tx.SourceTransactionHash))
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (s *pgStore) CreateMint(ctx context.Context, tx *bridge.Transaction) (*bridge.Transaction, bool, error) {
	if tx.TargetTransactionHash == "" {
		return nil, false, fmt.Errorf("mint row requires a target transaction hash")
	}
	tx.Status = bridge.StatusCompleted
	dao, err := s.prepare(tx)
	if err != nil {
		return nil, false, err
	}

	res, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (target_tx_hash) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create mint transaction: %w", err)
	}
	created, err := affected(res)
	if err != nil {
		return nil, false, err
	}

	stored, err := s.Find(ctx, WithTargetTxHash(tx.TargetTransactionHash))
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (s *pgStore) Get(ctx context.Context, id string) (*bridge.Transaction, error) {
	dao := new(TransactionDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bridge transaction: %w", err)
	}
	return fromTransactionDao(dao), nil
}

func (s *pgStore) Find(ctx context.Context, opts ...QueryOption) (*bridge.Transaction, error) {
	options, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}

	dao := new(TransactionDao)
	query := s.db.NewSelect().Model(dao)

	if options.SourceTxHash != nil {
		query = query.Where("source_tx_hash = ?", normalizeHash(*options.SourceTxHash))
	}
	if options.SourceNetwork != nil {
		query = query.Where("source_network = ?", string(*options.SourceNetwork))
	}
	if options.TargetTxHash != nil {
		query = query.Where("target_tx_hash = ?", normalizeHash(*options.TargetTxHash))
	}
	if options.NoTargetTxHash {
		query = query.Where("target_tx_hash IS NULL")
	}
	if options.TargetNetwork != nil {
		query = query.Where("target_network = ?", string(*options.TargetNetwork))
	}
	if options.BurnID != nil {
		query = query.Where("burn_id = ?", options.BurnID.Hex())
	}
	if len(options.Statuses) > 0 {
		query = query.Where("status IN (?)", bun.In(statusStrings(options.Statuses)))
	}

	err = query.Order("created_at DESC").Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find bridge transaction: %w", err)
	}
	return fromTransactionDao(dao), nil
}

func (s *pgStore) List(ctx context.Context, filter ListFilter) ([]*bridge.Transaction, error) {
	filter = filter.normalized()

	var daos []TransactionDao
	query := s.db.NewSelect().Model(&daos)
	if filter.Recipient != "" {
		query = query.Where("lower(recipient) = lower(?)", filter.Recipient)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	err := query.
		OrderExpr("created_at DESC, id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bridge transactions: %w", err)
	}
	return fromDaos(daos), nil
}

func (s *pgStore) ListStale(ctx context.Context, filter StaleFilter) ([]*bridge.Transaction, error) {
	if len(filter.Statuses) == 0 {
		return nil, nil
	}
	var daos []TransactionDao
	query := s.db.NewSelect().
		Model(&daos).
		Where("status IN (?)", bun.In(statusStrings(filter.Statuses))).
		Where("updated_at < ?", filter.OlderThan.UTC())
	if filter.RecoveryBelow > 0 {
		query = query.Where("recovery_attempts < ?", filter.RecoveryBelow)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	err := query.
		Order("updated_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale bridge transactions: %w", err)
	}
	return fromDaos(daos), nil
}

func (s *pgStore) Apply(ctx context.Context, id string, u Update) (*bridge.Transaction, error) {
	from, err := u.guard()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	query := s.db.NewUpdate().
		Model((*TransactionDao)(nil)).
		Set("updated_at = ?", now)

	if u.To != "" {
		query = query.Set("status = ?", string(u.To))
		if u.To == bridge.StatusCompleted {
			query = query.Set("completed_at = ?", now)
		}
	}
	if u.RelayTaskID != nil {
		query = query.Set("relay_task_id = ?", optional(*u.RelayTaskID))
	}
	if u.TargetTransactionHash != nil {
		query = query.Set("target_tx_hash = ?", optional(normalizeHash(*u.TargetTransactionHash)))
	}
	if u.BurnID != nil && !u.BurnID.IsZero() {
		query = query.Set("burn_id = ?", u.BurnID.Hex())
	}
	if u.LastError != nil {
		query = query.Set("last_error = ?", optional(*u.LastError))
	}
	if u.IncrementRecovery {
		query = query.Set("recovery_attempts = recovery_attempts + 1")
	}

	query = query.
		Where("id = ?", id).
		Where("status IN (?)", bun.In(statusStrings(from)))
	if u.ExpectTaskID != nil {
		if *u.ExpectTaskID == "" {
			query = query.Where("relay_task_id IS NULL")
		} else {
			query = query.Where("relay_task_id = ?", *u.ExpectTaskID)
		}
	}

	if u.RecoveryBelow > 0 {
		query = query.Where("recovery_attempts < ?", u.RecoveryBelow)
	}
	if u.ExpectNoTargetTxHash {
		query = query.Where("target_tx_hash IS NULL")
	}

	res, err := query.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update bridge transaction %s: %w", id, err)
	}
	updated, err := affected(res)
	if err != nil {
		return nil, err
	}
	if !updated {
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrStaleState
	}
	return s.Get(ctx, id)
}

func (s *pgStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *pgStore) GetCheckpoint(ctx context.Context, network bridge.Network) (uint64, bool, error) {
	dao := new(CheckpointDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("network = ?", string(network)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get checkpoint for %s: %w", network, err)
	}
	return uint64(dao.LastBlock), true, nil
}

func (s *pgStore) SetCheckpoint(ctx context.Context, network bridge.Network, block uint64) error {
	query := `
		INSERT INTO chain_checkpoints (network, last_block, updated_at)
		VALUES (?, ?, NOW())
		ON CONFLICT (network)
		DO UPDATE SET last_block = GREATEST(chain_checkpoints.last_block, EXCLUDED.last_block), updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, string(network), int64(block)); err != nil {
		return fmt.Errorf("failed to set checkpoint for %s: %w", network, err)
	}
	return nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

func statusStrings(statuses []bridge.Status) []string {
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = string(st)
	}
	return out
}

func fromDaos(daos []TransactionDao) []*bridge.Transaction {
	out := make([]*bridge.Transaction, len(daos))
	for i := range daos {
		out[i] = fromTransactionDao(&daos[i])
	}
	return out
}
