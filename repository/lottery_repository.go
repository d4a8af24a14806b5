package repository

import (
	"context"
	"errors"
	"fmt"

	"casino/database"
	"casino/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// LotteryRepository implements durable lottery round and entry storage.
// Rounds and entries are the only game state that must survive a
// process restart.
type LotteryRepository struct {
	q Queryable
}

// NewLotteryRepository creates a new lottery repository
func NewLotteryRepository(db *database.DB) *LotteryRepository {
	return &LotteryRepository{q: db.Pool}
}

// newLotteryRepositoryWithTx creates a lottery repository bound to a transaction
func newLotteryRepositoryWithTx(tx Queryable) *LotteryRepository {
	return &LotteryRepository{q: tx}
}

// Create inserts a new active round. A partial unique index on the
// active flag means a second active round fails with models.ErrConflict.
func (r *LotteryRepository) Create(ctx context.Context, lottery *models.Lottery) error {
	query := `
		INSERT INTO lotteries (start_time, end_time, prize, channel_id, active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, pot, active, created_at
	`

	err := r.q.QueryRow(ctx, query, lottery.StartTime, lottery.EndTime, lottery.Prize, lottery.ChannelID).Scan(
		&lottery.ID,
		&lottery.Pot,
		&lottery.Active,
		&lottery.CreatedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("a lottery round is already active: %w", models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create lottery: %w", err)
	}

	return nil
}

// GetByID retrieves a round by id. Returns nil without error when absent.
func (r *LotteryRepository) GetByID(ctx context.Context, id int64) (*models.Lottery, error) {
	return r.getOne(ctx, `
		SELECT id, start_time, end_time, prize, pot, winner_id, active, channel_id, created_at
		FROM lotteries
		WHERE id = $1
	`, id)
}

// GetActive retrieves the single active round, or nil when none is running
func (r *LotteryRepository) GetActive(ctx context.Context) (*models.Lottery, error) {
	return r.getOne(ctx, `
		SELECT id, start_time, end_time, prize, pot, winner_id, active, channel_id, created_at
		FROM lotteries
		WHERE active
	`)
}

func (r *LotteryRepository) getOne(ctx context.Context, query string, args ...any) (*models.Lottery, error) {
	var lottery models.Lottery
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&lottery.ID,
		&lottery.StartTime,
		&lottery.EndTime,
		&lottery.Prize,
		&lottery.Pot,
		&lottery.WinnerID,
		&lottery.Active,
		&lottery.ChannelID,
		&lottery.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}

	return &lottery, nil
}

// AddEntry records an account's entry. The composite primary key makes a
// duplicate entry fail with models.ErrConflict.
func (r *LotteryRepository) AddEntry(ctx context.Context, lotteryID, discordID int64) error {
	query := `
		INSERT INTO lottery_entries (lottery_id, discord_id)
		VALUES ($1, $2)
	`

	_, err := r.q.Exec(ctx, query, lotteryID, discordID)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("account %d already entered lottery %d: %w", discordID, lotteryID, models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to add lottery entry: %w", err)
	}

	return nil
}

// GetEntries returns the entrant ids of a round in entry order
func (r *LotteryRepository) GetEntries(ctx context.Context, lotteryID int64) ([]int64, error) {
	query := `
		SELECT discord_id
		FROM lottery_entries
		WHERE lottery_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.q.Query(ctx, query, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery entries: %w", err)
	}
	defer rows.Close()

	var entries []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan lottery entry: %w", err)
		}
		entries = append(entries, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lottery entries: %w", err)
	}

	return entries, nil
}

// AddToPot grows the accumulated pot after a paid entry
func (r *LotteryRepository) AddToPot(ctx context.Context, lotteryID, amount int64) error {
	query := `
		UPDATE lotteries
		SET pot = pot + $1
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, lotteryID)
	if err != nil {
		return fmt.Errorf("failed to add to lottery pot: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("lottery %d: %w", lotteryID, models.ErrNotFound)
	}

	return nil
}

// Claim marks the round inactive, but only if it still is active. This
// is the exactly-once step that decides which of a racing forced end
// and scheduled end gets to resolve the round.
func (r *LotteryRepository) Claim(ctx context.Context, lotteryID int64) (bool, error) {
	query := `
		UPDATE lotteries
		SET active = FALSE
		WHERE id = $1 AND active
	`

	result, err := r.q.Exec(ctx, query, lotteryID)
	if err != nil {
		return false, fmt.Errorf("failed to claim lottery %d: %w", lotteryID, err)
	}

	return result.RowsAffected() == 1, nil
}

// SetWinner records the draw outcome. winnerID stays nil for a round
// that closed with no entries.
func (r *LotteryRepository) SetWinner(ctx context.Context, lotteryID int64, winnerID *int64) error {
	query := `
		UPDATE lotteries
		SET winner_id = $1
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, winnerID, lotteryID)
	if err != nil {
		return fmt.Errorf("failed to set lottery winner: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("lottery %d: %w", lotteryID, models.ErrNotFound)
	}

	return nil
}
