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

const uniqueViolation = "23505"

// UserRepository implements ledger data access over the users table.
// Balance mutations are conditional single-statement updates so the
// balance >= 0 invariant is enforced at the point of mutation and
// concurrent adjustments on the same account serialize in the database.
type UserRepository struct {
	q Queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository bound to a transaction
func newUserRepositoryWithTx(tx Queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByDiscordID retrieves a user by their Discord ID. Returns nil
// without error when no such account exists.
func (r *UserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error) {
	query := `
		SELECT discord_id, username, balance, created_at, updated_at
		FROM users
		WHERE discord_id = $1
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, discordID).Scan(
		&user.DiscordID,
		&user.Username,
		&user.Balance,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", discordID, err)
	}

	return &user, nil
}

// Create creates a new user with the initial balance. A duplicate
// account fails with models.ErrConflict via the primary key constraint.
func (r *UserRepository) Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*models.User, error) {
	query := `
		INSERT INTO users (discord_id, username, balance)
		VALUES ($1, $2, $3)
		RETURNING discord_id, username, balance, created_at, updated_at
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, discordID, username, initialBalance).Scan(
		&user.DiscordID,
		&user.Username,
		&user.Balance,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return nil, fmt.Errorf("account %d already exists: %w", discordID, models.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user %d: %w", discordID, err)
	}

	return &user, nil
}

// AdjustBalance atomically applies balance += delta, but only if the
// resulting balance stays non-negative. The check and the write are one
// statement, so two concurrent adjustments never both succeed off a
// stale read.
func (r *UserRepository) AdjustBalance(ctx context.Context, discordID int64, delta int64) error {
	query := `
		UPDATE users
		SET balance = balance + $1, updated_at = NOW()
		WHERE discord_id = $2 AND balance + $1 >= 0
	`

	result, err := r.q.Exec(ctx, query, delta, discordID)
	if err != nil {
		return fmt.Errorf("failed to adjust balance for user %d: %w", discordID, err)
	}

	if result.RowsAffected() == 0 {
		user, err := r.GetByDiscordID(ctx, discordID)
		if err != nil {
			return fmt.Errorf("failed to check user %d: %w", discordID, err)
		}
		if user == nil {
			return fmt.Errorf("account %d: %w", discordID, models.ErrNotFound)
		}
		return fmt.Errorf("balance %d cannot cover %d: %w", user.Balance, -delta, models.ErrInsufficientFunds)
	}

	return nil
}

// SetBalance overwrites a user's balance. Privileged operation; the
// caller is responsible for the authorization check.
func (r *UserRepository) SetBalance(ctx context.Context, discordID int64, value int64) error {
	query := `
		UPDATE users
		SET balance = $1, updated_at = NOW()
		WHERE discord_id = $2
	`

	result, err := r.q.Exec(ctx, query, value, discordID)
	if err != nil {
		return fmt.Errorf("failed to set balance for user %d: %w", discordID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d: %w", discordID, models.ErrNotFound)
	}

	return nil
}

// Delete removes an account
func (r *UserRepository) Delete(ctx context.Context, discordID int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM users WHERE discord_id = $1`, discordID)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", discordID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d: %w", discordID, models.ErrNotFound)
	}

	return nil
}

// TopBalances returns at most n users ordered by descending balance,
// ties broken by discord id for a stable leaderboard.
func (r *UserRepository) TopBalances(ctx context.Context, n int) ([]*models.User, error) {
	query := `
		SELECT discord_id, username, balance, created_at, updated_at
		FROM users
		ORDER BY balance DESC, discord_id ASC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get top balances: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.DiscordID,
			&user.Username,
			&user.Balance,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}
