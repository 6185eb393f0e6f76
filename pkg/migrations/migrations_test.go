package migrations

import (
	"context"
	"testing"

	"github.com/uptrace/bun/migrate"

	"github.com/chainsafe/burnmint-bridge/pkg/migrations/ledgerdb"
	mghelper "github.com/chainsafe/burnmint-bridge/pkg/pgutil"
)

func TestLedgerDBMigrations_Apply(t *testing.T) {
	db, cleanup := mghelper.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, ledgerdb.Migrations)

	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	if group.IsZero() {
		t.Error("Expected migrations to run, but none were applied")
	}

	for _, table := range []string{"bridge_transactions", "chain_checkpoints", "bun_migrations"} {
		mghelper.AssertTableExists(t, db, table)
	}

	mghelper.AssertIndexExists(t, db, "idx_bridge_transactions_recipient")
	mghelper.AssertIndexExists(t, db, "idx_bridge_transactions_status")
	mghelper.AssertIndexExists(t, db, "idx_bridge_transactions_burn_id")
	mghelper.AssertIndexExists(t, db, "idx_bridge_transactions_created_at")

	mghelper.AssertUniqueConstraint(t, db, "bridge_transactions", "uq_bridge_transactions_source")
	mghelper.AssertColumnType(t, db, "bridge_transactions", "amount", "numeric")
	mghelper.AssertColumnType(t, db, "bridge_transactions", "block_number", "bigint")
	mghelper.AssertColumnType(t, db, "chain_checkpoints", "last_block", "bigint")
}

func TestLedgerDBMigrations_Idempotency(t *testing.T) {
	db, cleanup := mghelper.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, ledgerdb.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("First Migrate() failed: %v", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Second Migrate() failed: %v", err)
	}
	if !group.IsZero() {
		t.Error("Expected no new migrations on second run")
	}
}

func TestLedgerDBMigrations_Rollback(t *testing.T) {
	db, cleanup := mghelper.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, ledgerdb.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}

	group, err := migrator.Rollback(ctx)
	if err != nil {
		t.Fatalf("Rollback() failed: %v", err)
	}
	if group.IsZero() {
		t.Error("Expected a migration group to be rolled back")
	}

	mghelper.AssertTableNotExists(t, db, "bridge_transactions")
	mghelper.AssertTableNotExists(t, db, "chain_checkpoints")
}
