package ledgerdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/chainsafe/burnmint-bridge/pkg/ledger"
	mghelper "github.com/chainsafe/burnmint-bridge/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating chain_checkpoints table...")
		return mghelper.CreateSchema(ctx, db, &ledger.CheckpointDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping chain_checkpoints table...")
		return mghelper.DropTables(ctx, db, &ledger.CheckpointDao{})
	})
}
