package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
)

const (
	chainA bridge.Network = "sepolia"
	chainB bridge.Network = "amoy"

	recipient = "0xAbc0000000000000000000000000000000000001"
	burnHash  = "0xabcdef1111111111111111111111111111111111111111111111111111111111"
	mintHash  = "0xdead000000000000000000000000000000000000000000000000000000000000"
)

type ledger interface {
	Store
	CheckpointStore
}

func newBurn(hash string) *bridge.Transaction {
	id, _ := bridge.ParseBurnID("0x00000000000000000000000000000000000000000000000000000000000000aa")
	return &bridge.Transaction{
		Recipient:             recipient,
		Amount:                "1000000000000000000",
		SourceNetwork:         chainA,
		TargetNetwork:         chainB,
		SourceTransactionHash: hash,
		BlockHash:             "0x2222222222222222222222222222222222222222222222222222222222222222",
		BlockNumber:           42,
		BurnID:                id,
	}
}

func runStoreSuite(t *testing.T, newStore func(t *testing.T) ledger) {
	t.Run("CreateBurnIsIdempotent", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		first, created, err := s.CreateBurn(ctx, newBurn(burnHash))
		require.NoError(t, err)
		require.True(t, created)
		assert.Equal(t, bridge.StatusPending, first.Status)
		assert.NotEmpty(t, first.ID)

		// same burn seen again by the gap scan, upper-case hex from another provider
		second, created, err := s.CreateBurn(ctx, newBurn("0x"+strings.ToUpper(burnHash[2:])))
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)

		rows, err := s.List(ctx, ListFilter{Recipient: recipient})
		require.NoError(t, err)
		assert.Len(t, rows, 1)

		// the same hash on the other network is a different burn
		other := newBurn(burnHash)
		other.SourceNetwork, other.TargetNetwork = chainB, chainA
		_, created, err = s.CreateBurn(ctx, other)
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("CreateMintIsIdempotent", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		mint := func() *bridge.Transaction {
			return &bridge.Transaction{
				Recipient:             recipient,
				Amount:                "5",
				SourceNetwork:         chainA,
				TargetNetwork:         chainB,
				TargetTransactionHash: mintHash,
			}
		}

		first, created, err := s.CreateMint(ctx, mint())
		require.NoError(t, err)
		require.True(t, created)
		assert.Equal(t, bridge.StatusCompleted, first.Status)

		second, created, err := s.CreateMint(ctx, mint())
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)

		found, err := s.Find(ctx, WithTargetTxHash(mintHash))
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
	})

	t.Run("RejectsSameNetwork", func(t *testing.T) {
		s := newStore(t)
		tx := newBurn(burnHash)
		tx.TargetNetwork = chainA
		_, _, err := s.CreateBurn(context.Background(), tx)
		assert.Error(t, err)
	})

	t.Run("ApplyFollowsStateMachine", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		row, _, err := s.CreateBurn(ctx, newBurn(burnHash))
		require.NoError(t, err)

		task := "task-1"
		row, err = s.Apply(ctx, row.ID, Update{To: bridge.StatusProcessing})
		require.NoError(t, err)
		row, err = s.Apply(ctx, row.ID, Update{From: []bridge.Status{bridge.StatusProcessing}, RelayTaskID: &task})
		require.NoError(t, err)
		assert.Equal(t, bridge.StatusProcessing, row.Status)
		assert.Equal(t, task, row.RelayTaskID)

		// PENDING is never reachable again
		_, err = s.Apply(ctx, row.ID, Update{To: bridge.StatusPending})
		assert.ErrorIs(t, err, ErrInvalidUpdate)

		hash := mintHash
		row, err = s.Apply(ctx, row.ID, Update{
			To:                    bridge.StatusCompleted,
			ExpectTaskID:          &task,
			TargetTransactionHash: &hash,
		})
		require.NoError(t, err)
		assert.Equal(t, bridge.StatusCompleted, row.Status)
		assert.Equal(t, mintHash, row.TargetTransactionHash)

		_, err = s.Apply(ctx, row.ID, Update{To: bridge.StatusFailed})
		assert.ErrorIs(t, err, ErrStaleState)

		got, err := s.Get(ctx, row.ID)
		require.NoError(t, err)
		assert.Equal(t, bridge.StatusCompleted, got.Status)
	})

	t.Run("ApplyGuardsTaskID", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		row, _, err := s.CreateBurn(ctx, newBurn(burnHash))
		require.NoError(t, err)

		current := "task-new"
		_, err = s.Apply(ctx, row.ID, Update{To: bridge.StatusProcessing, RelayTaskID: &current})
		require.NoError(t, err)

		stale := "task-old"
		_, err = s.Apply(ctx, row.ID, Update{To: bridge.StatusFailed, ExpectTaskID: &stale})
		assert.ErrorIs(t, err, ErrStaleState)

		got, err := s.Get(ctx, row.ID)
		require.NoError(t, err)
		assert.Equal(t, bridge.StatusProcessing, got.Status)
	})

	t.Run("ApplyRecoveryCeiling", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		row, _, err := s.CreateBurn(ctx, newBurn(burnHash))
		require.NoError(t, err)
		_, err = s.Apply(ctx, row.ID, Update{To: bridge.StatusProcessing})
		require.NoError(t, err)
		_, err = s.Apply(ctx, row.ID, Update{To: bridge.StatusFailed})
		require.NoError(t, err)

		for i := 1; i <= 3; i++ {
			_, err = s.Apply(ctx, row.ID, Update{To: bridge.StatusRecoveryInProgress, RecoveryBelow: 3})
			require.NoError(t, err)
			row, err = s.Apply(ctx, row.ID, Update{To: bridge.StatusFailed, IncrementRecovery: true})
			require.NoError(t, err)
			assert.Equal(t, i, row.RecoveryAttempts)
		}

		_, err = s.Apply(ctx, row.ID, Update{To: bridge.StatusRecoveryInProgress, RecoveryBelow: 3})
		assert.ErrorIs(t, err, ErrStaleState)
	})

	t.Run("ApplyUnknownRow", func(t *testing.T) {
		_, err := newStore(t).Apply(context.Background(), "00000000-0000-0000-0000-000000000000", Update{To: bridge.StatusProcessing})
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("FindByBurnID", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		row, _, err := s.CreateBurn(ctx, newBurn(burnHash))
		require.NoError(t, err)

		found, err := s.Find(ctx, WithBurnID(chainB, row.BurnID), WithStatuses(bridge.StatusPending))
		require.NoError(t, err)
		assert.Equal(t, row.ID, found.ID)

		_, err = s.Find(ctx, WithBurnID(chainA, row.BurnID))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("AttachMintHashOnce", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		row, _, err := s.CreateBurn(ctx, newBurn(burnHash))
		require.NoError(t, err)
		_, err = s.Apply(ctx, row.ID, Update{To: bridge.StatusProcessing})
		require.NoError(t, err)
		_, err = s.Apply(ctx, row.ID, Update{To: bridge.StatusCompleted})
		require.NoError(t, err)

		found, err := s.Find(ctx, WithBurnID(chainB, row.BurnID), WithoutTargetTxHash())
		require.NoError(t, err)
		assert.Equal(t, row.ID, found.ID)

		hash := mintHash
		got, err := s.Apply(ctx, row.ID, Update{
			From:                  []bridge.Status{bridge.StatusCompleted},
			TargetTransactionHash: &hash,
			ExpectNoTargetTxHash:  true,
		})
		require.NoError(t, err)
		assert.Equal(t, bridge.StatusCompleted, got.Status)
		assert.Equal(t, mintHash, got.TargetTransactionHash)

		_, err = s.Find(ctx, WithBurnID(chainB, row.BurnID), WithoutTargetTxHash())
		assert.ErrorIs(t, err, ErrNotFound)

		other := "0xbeef000000000000000000000000000000000000000000000000000000000000"
		_, err = s.Apply(ctx, row.ID, Update{
			From:                  []bridge.Status{bridge.StatusCompleted},
			TargetTransactionHash: &other,
			ExpectNoTargetTxHash:  true,
		})
		assert.ErrorIs(t, err, ErrStaleState)
	})

	t.Run("ListNewestFirstWithPagination", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		hashes := []string{
			"0x0000000000000000000000000000000000000000000000000000000000000001",
			"0x0000000000000000000000000000000000000000000000000000000000000002",
			"0x0000000000000000000000000000000000000000000000000000000000000003",
		}
		for _, h := range hashes {
			_, _, err := s.CreateBurn(ctx, newBurn(h))
			require.NoError(t, err)
			time.Sleep(5 * time.Millisecond)
		}

		page, err := s.List(ctx, ListFilter{Recipient: "0xabc0000000000000000000000000000000000001", Limit: 2})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, hashes[2], page[0].SourceTransactionHash)
		assert.Equal(t, hashes[1], page[1].SourceTransactionHash)

		page, err = s.List(ctx, ListFilter{Recipient: recipient, Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, hashes[0], page[0].SourceTransactionHash)

		page, err = s.List(ctx, ListFilter{Status: bridge.StatusCompleted})
		require.NoError(t, err)
		assert.Empty(t, page)
	})

	t.Run("ListStale", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		_, _, err := s.CreateBurn(ctx, newBurn(burnHash))
		require.NoError(t, err)

		rows, err := s.ListStale(ctx, StaleFilter{
			Statuses:  []bridge.Status{bridge.StatusPending},
			OlderThan: time.Now().Add(time.Minute),
			Limit:     10,
		})
		require.NoError(t, err)
		assert.Len(t, rows, 1)

		rows, err = s.ListStale(ctx, StaleFilter{
			Statuses:  []bridge.Status{bridge.StatusPending},
			OlderThan: time.Now().Add(-time.Minute),
			Limit:     10,
		})
		require.NoError(t, err)
		assert.Empty(t, rows)

		rows, err = s.ListStale(ctx, StaleFilter{
			Statuses:      []bridge.Status{bridge.StatusPending},
			OlderThan:     time.Now().Add(time.Minute),
			RecoveryBelow: 1,
		})
		require.NoError(t, err)
		assert.Len(t, rows, 1, "fresh rows have no recovery attempts")
	})

	t.Run("CheckpointOnlyMovesForward", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		_, ok, err := s.GetCheckpoint(ctx, chainA)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, s.SetCheckpoint(ctx, chainA, 100))
		require.NoError(t, s.SetCheckpoint(ctx, chainA, 90))

		block, ok, err := s.GetCheckpoint(ctx, chainA)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, uint64(100), block)
	})
}
