package pgutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"

	"github.com/chainsafe/burnmint-bridge/internal/testutil"
	"github.com/chainsafe/burnmint-bridge/pkg/config"
)

const (
	ledgerImage    = "postgres:15-alpine"
	ledgerDatabase = "bridge_ledger"
	ledgerUser     = "bridge_relayer"
	ledgerPassword = "bridge_relayer"
)

// SetupTestDB starts a throwaway ledger database in a container and connects
// to it with the same settings the relayer uses in production.
func SetupTestDB(t *testing.T) (*bun.DB, func()) {
	t.Helper()
	testutil.RequireDockerAccess(t)
	ctx := context.Background()

	container, err := postgres.Run(ctx, ledgerImage,
		postgres.WithDatabase(ledgerDatabase),
		postgres.WithUsername(ledgerUser),
		postgres.WithPassword(ledgerPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "start ledger container")

	cfg, err := containerConfig(ctx, container)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		t.Fatalf("resolve ledger container address: %v", err)
	}

	var db *bun.DB
	connected := waitFor(func() bool {
		db, err = ConnectDB(ctx, cfg)
		return err == nil
	}, 15*time.Second, 250*time.Millisecond)
	if !connected {
		_ = testcontainers.TerminateContainer(container)
		t.Fatalf("ledger database never accepted connections: %v", err)
	}

	cleanup := func() {
		_ = db.Close()
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate ledger container: %v", err)
		}
	}
	return db, cleanup
}

func containerConfig(ctx context.Context, container *postgres.PostgresContainer) (*config.DatabaseConfig, error) {
	host, err := container.Host(ctx)
	if err != nil {
		return nil, err
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, err
	}
	return &config.DatabaseConfig{
		Host:         host,
		Port:         port.Int(),
		User:         ledgerUser,
		Password:     ledgerPassword,
		Database:     ledgerDatabase,
		SSLMode:      "disable",
		DialTimeout:  5 * time.Second,
		QueryTimeout: 10 * time.Second,
	}, nil
}

func waitFor(cond func() bool, within, tick time.Duration) bool {
	deadline := time.Now().Add(within)
	for {
		if cond() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(tick)
	}
}

// AssertTableExists checks if a table exists in the database
func AssertTableExists(t *testing.T, db *bun.DB, tableName string) {
	t.Helper()
	if !tableExists(t, db, tableName) {
		t.Errorf("table %s does not exist", tableName)
	}
}

// AssertTableNotExists checks if a table does not exist in the database
func AssertTableNotExists(t *testing.T, db *bun.DB, tableName string) {
	t.Helper()
	if tableExists(t, db, tableName) {
		t.Errorf("table %s should not exist but it does", tableName)
	}
}

func tableExists(t *testing.T, db *bun.DB, tableName string) bool {
	t.Helper()
	var exists bool
	err := db.NewSelect().
		ColumnExpr("EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = ? AND table_name = ?)", "public", tableName).
		Scan(context.Background(), &exists)
	require.NoError(t, err, "check table %s", tableName)
	return exists
}

// AssertIndexExists checks if an index exists in the database
func AssertIndexExists(t *testing.T, db *bun.DB, indexName string) {
	t.Helper()
	var exists bool
	err := db.NewSelect().
		ColumnExpr("EXISTS (SELECT 1 FROM pg_indexes WHERE schemaname = ? AND indexname = ?)", "public", indexName).
		Scan(context.Background(), &exists)
	require.NoError(t, err, "check index %s", indexName)
	if !exists {
		t.Errorf("index %s does not exist", indexName)
	}
}

// AssertColumnType checks the declared type of a column, e.g. numeric for
// token amounts, as reported by information_schema.
func AssertColumnType(t *testing.T, db *bun.DB, tableName, column, dataType string) {
	t.Helper()
	var got string
	err := db.NewSelect().
		TableExpr("information_schema.columns").
		Column("data_type").
		Where("table_schema = ?", "public").
		Where("table_name = ?", tableName).
		Where("column_name = ?", column).
		Scan(context.Background(), &got)
	require.NoError(t, err, "read type of %s.%s", tableName, column)
	if got != dataType {
		t.Errorf("%s.%s: expected type %s, got %s", tableName, column, dataType, got)
	}
}

// AssertUniqueConstraint checks that a named unique constraint guards the table.
func AssertUniqueConstraint(t *testing.T, db *bun.DB, tableName, constraint string) {
	t.Helper()
	var exists bool
	err := db.NewSelect().
		ColumnExpr(`EXISTS (SELECT 1 FROM information_schema.table_constraints
			WHERE table_schema = ? AND table_name = ? AND constraint_name = ? AND constraint_type = 'UNIQUE')`,
			"public", tableName, constraint).
		Scan(context.Background(), &exists)
	require.NoError(t, err, "check constraint %s", constraint)
	if !exists {
		t.Errorf("unique constraint %s missing on %s", constraint, tableName)
	}
}
