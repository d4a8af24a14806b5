package service

import (
	"context"
	"time"

	"casino/events"
	"casino/models"
)

// UserRepository defines ledger data access. Balance mutations are
// atomic conditional updates; the balance >= 0 invariant lives here and
// nowhere else.
type UserRepository interface {
	// GetByDiscordID retrieves a user, or nil when the account is unknown
	GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error)

	// Create registers a new account with the initial balance; duplicate
	// ids fail with models.ErrConflict
	Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*models.User, error)

	// AdjustBalance atomically applies balance += delta only if the
	// result stays non-negative; fails with models.ErrInsufficientFunds
	// otherwise, leaving the balance unchanged
	AdjustBalance(ctx context.Context, discordID int64, delta int64) error

	// SetBalance overwrites the balance absolutely (privileged)
	SetBalance(ctx context.Context, discordID int64, value int64) error

	// Delete removes an account
	Delete(ctx context.Context, discordID int64) error

	// TopBalances returns at most n users, richest first, id tie-break
	TopBalances(ctx context.Context, n int) ([]*models.User, error)
}

// BalanceHistoryRepository defines append-only balance change records
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns recent balance history for a user
	GetByUser(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error)
}

// LotteryRepository defines durable lottery round and entry storage
type LotteryRepository interface {
	// Create inserts a new active round; a second active round fails
	// with models.ErrConflict
	Create(ctx context.Context, lottery *models.Lottery) error

	// GetByID retrieves a round, or nil when absent
	GetByID(ctx context.Context, id int64) (*models.Lottery, error)

	// GetActive retrieves the single active round, or nil
	GetActive(ctx context.Context) (*models.Lottery, error)

	// AddEntry records an entry; duplicates fail with models.ErrConflict
	AddEntry(ctx context.Context, lotteryID, discordID int64) error

	// GetEntries returns entrant ids in entry order
	GetEntries(ctx context.Context, lotteryID int64) ([]int64, error)

	// AddToPot grows the accumulated pot
	AddToPot(ctx context.Context, lotteryID, amount int64) error

	// Claim marks the round inactive iff it still is active; reports
	// whether this caller won the claim
	Claim(ctx context.Context, lotteryID int64) (bool, error)

	// SetWinner records the draw outcome
	SetWinner(ctx context.Context, lotteryID int64, winnerID *int64) error
}

// UserService defines account and transfer operations
type UserService interface {
	// CreateAccount registers a new account with the starting balance
	CreateAccount(ctx context.Context, discordID int64, username string) (*models.User, error)

	// GetUser returns an account; fails with models.ErrNotFound when absent
	GetUser(ctx context.Context, discordID int64) (*models.User, error)

	// Deposit transfers amount from one account to another
	Deposit(ctx context.Context, fromID, toID int64, amount int64) error

	// Leaderboard returns the top n accounts by balance
	Leaderboard(ctx context.Context, n int) ([]*models.User, error)

	// SetBalance overwrites an account balance; privileged
	SetBalance(ctx context.Context, actorID, targetID int64, value int64) error

	// DeleteAccount removes an account; privileged
	DeleteAccount(ctx context.Context, actorID, targetID int64) error
}

// ChallengeService brokers blackjack duel proposals
type ChallengeService interface {
	// Propose creates a pending challenge; a new proposal from the same
	// challenger replaces the previous pending one
	Propose(ctx context.Context, challengerID, challengedID int64, wager int64) (*models.Challenge, error)

	// Respond handles accept/deny/withdraw. Accept re-validates balances,
	// reserves both players atomically and deals the duel.
	Respond(ctx context.Context, actorID, challengerID int64, action models.ChallengeAction) (*models.BlackjackSession, error)
}

// BlackjackService runs live duels
type BlackjackService interface {
	// StartSession deals a new duel for two players the challenge broker
	// has already reserved; sessionID doubles as the registry game key
	StartSession(sessionID string, player1ID, player2ID, wager int64) *models.BlackjackSession

	// SessionFor returns the live session a player is part of, if any
	SessionFor(playerID int64) (*models.BlackjackSession, bool)

	// Hit draws a card for the player; a bust resolves the duel
	// immediately in the opponent's favor
	Hit(ctx context.Context, playerID int64) (*models.BlackjackSession, *models.DuelResult, error)

	// Stand passes the turn, or resolves the duel if the second player
	// stands
	Stand(ctx context.Context, playerID int64) (*models.BlackjackSession, *models.DuelResult, error)
}

// RouletteService runs betting tables
type RouletteService interface {
	// CreateTable opens a table with the initiator seated and reserved
	CreateTable(ctx context.Context, initiatorID int64) (*models.RouletteTable, error)

	// Join seats a player at an open table
	Join(ctx context.Context, tableID string, playerID int64) error

	// Start moves the table to collecting choices and bets
	Start(ctx context.Context, tableID string, requesterID int64) error

	// SetChoice records a player's pocket pick (1-36), repeatable until
	// their bet lands
	SetChoice(ctx context.Context, tableID string, playerID int64, pocket int) error

	// SetBet records a player's stake; when the last bet lands the table
	// spins and the result is returned
	SetBet(ctx context.Context, tableID string, playerID int64, amount int64) (*models.RouletteResult, error)

	// TableFor returns the table a player is seated at, if any
	TableFor(playerID int64) (*models.RouletteTable, bool)
}

// LotteryService runs timed single-winner draws
type LotteryService interface {
	// StartRound opens a new round; privileged. A nil prize selects pot
	// mode where the prize accrues from entry fees. channelID is stored
	// with the round so results can be announced after a restart.
	StartRound(ctx context.Context, actorID int64, prize *int64, duration time.Duration, channelID string) (*models.Lottery, error)

	// GetActive returns the running round, or nil when none is
	GetActive(ctx context.Context) (*models.Lottery, error)

	// Enter debits the entry fee and records the entry
	Enter(ctx context.Context, lotteryID, discordID int64) (*models.Lottery, error)

	// EndRound resolves a round: forced by an admin, or unforced once
	// expired. At most one caller resolves any given round.
	EndRound(ctx context.Context, lotteryID, actorID int64, forced bool) (*models.LotteryResult, error)

	// SweepExpired ends any active round whose end time has passed;
	// called periodically by the background worker
	SweepExpired(ctx context.Context) error
}

// RobberyService attempts rate-limited robberies
type RobberyService interface {
	// Rob attempts to steal from the victim; gated by the cooldown
	Rob(ctx context.Context, robberID, victimID int64) (*models.RobResult, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines transactional repository access
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	LotteryRepository() LotteryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
