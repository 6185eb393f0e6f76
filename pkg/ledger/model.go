package ledger

import (
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
)

// TransactionDao is a data access object that maps directly to the 'bridge_transactions' table in PostgreSQL.
type TransactionDao struct {
	bun.BaseModel    `bun:"table:bridge_transactions,alias:bt"`
	ID               string     `bun:"id,pk,type:varchar(36)"`
	Recipient        string     `bun:"recipient,notnull,type:varchar(255)"`
	Amount           string     `bun:"amount,notnull,type:numeric(78,0)"`
	SourceNetwork    string     `bun:"source_network,notnull,unique:uq_bridge_transactions_source,type:varchar(64)"`
	TargetNetwork    string     `bun:"target_network,notnull,type:varchar(64)"`
	SourceTxHash     *string    `bun:"source_tx_hash,unique:uq_bridge_transactions_source,type:varchar(66)"`
	BlockHash        *string    `bun:"block_hash,type:varchar(66)"`
	BlockNumber      int64      `bun:"block_number,notnull,default:0"`
	TargetTxHash     *string    `bun:"target_tx_hash,unique,type:varchar(66)"`
	Status           string     `bun:"status,notnull,type:varchar(32)"`
	RelayTaskID      *string    `bun:"relay_task_id,type:varchar(128)"`
	BurnID           *string    `bun:"burn_id,type:varchar(66)"`
	RecoveryAttempts int        `bun:"recovery_attempts,notnull,default:0"`
	LastError        *string    `bun:"last_error,type:text"`
	CreatedAt        time.Time  `bun:"created_at,notnull,nullzero,default:current_timestamp"`
	UpdatedAt        time.Time  `bun:"updated_at,notnull,nullzero,default:current_timestamp"`
	CompletedAt      *time.Time `bun:"completed_at"`
}

// CheckpointDao is a data access object that maps directly to the 'chain_checkpoints' table in PostgreSQL.
type CheckpointDao struct {
	bun.BaseModel `bun:"table:chain_checkpoints,alias:cc"`
	Network       string    `bun:"network,pk,type:varchar(64)"`
	LastBlock     int64     `bun:"last_block,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,nullzero,default:current_timestamp"`
}

// normalizeHash lowercases hex hashes so lookups are case-insensitive.
func normalizeHash(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toTransactionDao(tx *bridge.Transaction) *TransactionDao {
	dao := &TransactionDao{
		ID:               tx.ID,
		Recipient:        tx.Recipient,
		Amount:           tx.Amount,
		SourceNetwork:    string(tx.SourceNetwork),
		TargetNetwork:    string(tx.TargetNetwork),
		SourceTxHash:     optional(normalizeHash(tx.SourceTransactionHash)),
		BlockHash:        optional(normalizeHash(tx.BlockHash)),
		BlockNumber:      int64(tx.BlockNumber),
		TargetTxHash:     optional(normalizeHash(tx.TargetTransactionHash)),
		Status:           string(tx.Status),
		RelayTaskID:      optional(tx.RelayTaskID),
		RecoveryAttempts: tx.RecoveryAttempts,
		LastError:        optional(tx.LastError),
		CreatedAt:        tx.CreatedAt,
		UpdatedAt:        tx.UpdatedAt,
	}
	if !tx.BurnID.IsZero() {
		dao.BurnID = optional(tx.BurnID.Hex())
	}
	return dao
}

func fromTransactionDao(dao *TransactionDao) *bridge.Transaction {
	tx := &bridge.Transaction{
		ID:                    dao.ID,
		Recipient:             dao.Recipient,
		Amount:                dao.Amount,
		SourceNetwork:         bridge.Network(dao.SourceNetwork),
		TargetNetwork:         bridge.Network(dao.TargetNetwork),
		SourceTransactionHash: deref(dao.SourceTxHash),
		BlockHash:             deref(dao.BlockHash),
		BlockNumber:           uint64(dao.BlockNumber),
		TargetTransactionHash: deref(dao.TargetTxHash),
		Status:                bridge.Status(dao.Status),
		RelayTaskID:           deref(dao.RelayTaskID),
		RecoveryAttempts:      dao.RecoveryAttempts,
		LastError:             deref(dao.LastError),
		CreatedAt:             dao.CreatedAt,
		UpdatedAt:             dao.UpdatedAt,
	}
	if dao.BurnID != nil {
		// rows are only written through toTransactionDao, so the hex is well formed
		tx.BurnID, _ = bridge.ParseBurnID(*dao.BurnID)
	}
	return tx
}
