package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casino/models"
	"casino/repository/testutil"
)

func TestBalanceHistoryRepository_RecordAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBalanceHistoryRepository(testDB.DB)
	users := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := users.Create(ctx, 100, "alice", 10000)
	require.NoError(t, err)

	entry := &models.BalanceHistory{
		DiscordID:       100,
		BalanceBefore:   10000,
		BalanceAfter:    9800,
		ChangeAmount:    -200,
		TransactionType: models.TransactionTypeLotteryEntry,
		TransactionMetadata: map[string]any{
			"lottery_id": float64(7),
		},
	}
	require.NoError(t, repo.Record(ctx, entry))
	assert.NotZero(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	win := &models.BalanceHistory{
		DiscordID:       100,
		BalanceBefore:   9800,
		BalanceAfter:    10400,
		ChangeAmount:    600,
		TransactionType: models.TransactionTypeLotteryWin,
	}
	require.NoError(t, repo.Record(ctx, win))

	t.Run("newest first with metadata", func(t *testing.T) {
		entries, err := repo.GetByUser(ctx, 100, 10)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, models.TransactionTypeLotteryWin, entries[0].TransactionType)
		assert.Equal(t, models.TransactionTypeLotteryEntry, entries[1].TransactionType)
		assert.Equal(t, float64(7), entries[1].TransactionMetadata["lottery_id"])
	})

	t.Run("limit caps results", func(t *testing.T) {
		entries, err := repo.GetByUser(ctx, 100, 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, int64(600), entries[0].ChangeAmount)
	})

	t.Run("unknown user is empty", func(t *testing.T) {
		entries, err := repo.GetByUser(ctx, 42, 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestBalanceHistoryRepository_WithTransaction(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBalanceHistoryRepository(testDB.DB)
	users := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := users.Create(ctx, 100, "alice", 10000)
	require.NoError(t, err)

	record := func(before, after int64) *models.BalanceHistory {
		return &models.BalanceHistory{
			DiscordID:       100,
			BalanceBefore:   before,
			BalanceAfter:    after,
			ChangeAmount:    after - before,
			TransactionType: models.TransactionTypeTransferOut,
		}
	}

	t.Run("commits on success", func(t *testing.T) {
		err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
			return newBalanceHistoryRepositoryWithTx(tx).Record(ctx, record(10000, 9500))
		})
		require.NoError(t, err)

		entries, err := repo.GetByUser(ctx, 100, 10)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
			if err := newBalanceHistoryRepositoryWithTx(tx).Record(ctx, record(9500, 9000)); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		entries, err := repo.GetByUser(ctx, 100, 10)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}
