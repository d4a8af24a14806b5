package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"casino/events"
	"casino/models"
)

// rouletteService keeps live tables in memory. Table money only touches
// the ledger at resolution time, in a single transaction. Map access is
// guarded by the service mutex; per-table state by the table's own
// mutex, never both held while waiting on a table lock.
type rouletteService struct {
	uowFactory UnitOfWorkFactory
	registry   *SessionRegistry
	rng        Rand

	mu          sync.Mutex
	tables      map[string]*models.RouletteTable
	playerIndex map[int64]string // player -> table id
}

// NewRouletteService creates a roulette service
func NewRouletteService(uowFactory UnitOfWorkFactory, registry *SessionRegistry, rng Rand) RouletteService {
	return &rouletteService{
		uowFactory:  uowFactory,
		registry:    registry,
		rng:         rng,
		tables:      make(map[string]*models.RouletteTable),
		playerIndex: make(map[int64]string),
	}
}

// NewTableID generates a table id and registry game key
func NewTableID() string {
	return "table-" + uuid.NewString()
}

func (s *rouletteService) CreateTable(ctx context.Context, initiatorID int64) (*models.RouletteTable, error) {
	if err := s.requireAccount(ctx, initiatorID); err != nil {
		return nil, err
	}

	tableID := NewTableID()
	if err := s.registry.ReserveAll(tableID, initiatorID); err != nil {
		return nil, fmt.Errorf("initiator is busy: %w", err)
	}

	table := models.NewRouletteTable(tableID, initiatorID)

	s.mu.Lock()
	s.tables[tableID] = table
	s.playerIndex[initiatorID] = tableID
	s.mu.Unlock()

	log.WithFields(log.Fields{
		"tableID":     tableID,
		"initiatorID": initiatorID,
	}).Info("Roulette table opened")

	return table, nil
}

func (s *rouletteService) Join(ctx context.Context, tableID string, playerID int64) error {
	if err := s.requireAccount(ctx, playerID); err != nil {
		return err
	}

	table, err := s.lookup(tableID)
	if err != nil {
		return err
	}

	table.Mu.Lock()
	defer table.Mu.Unlock()

	if table.Resolved {
		return fmt.Errorf("table %s already resolved: %w", tableID, models.ErrNotFound)
	}
	if table.Started {
		return fmt.Errorf("table %s already started: %w", tableID, models.ErrInvalidState)
	}
	if table.HasPlayer(playerID) {
		return fmt.Errorf("player %d already seated: %w", playerID, models.ErrConflict)
	}

	if err := s.registry.ReserveAll(tableID, playerID); err != nil {
		return fmt.Errorf("player is busy: %w", err)
	}

	table.Players = append(table.Players, playerID)

	s.mu.Lock()
	s.playerIndex[playerID] = tableID
	s.mu.Unlock()

	log.WithFields(log.Fields{
		"tableID":  tableID,
		"playerID": playerID,
		"seated":   len(table.Players),
	}).Info("Player joined roulette table")

	return nil
}

func (s *rouletteService) Start(ctx context.Context, tableID string, requesterID int64) error {
	table, err := s.lookup(tableID)
	if err != nil {
		return err
	}

	table.Mu.Lock()
	defer table.Mu.Unlock()

	if requesterID != table.InitiatorID {
		return fmt.Errorf("only the initiator can start the table: %w", models.ErrUnauthorized)
	}
	if table.Started {
		return fmt.Errorf("table %s already started: %w", tableID, models.ErrInvalidState)
	}
	if len(table.Players) < 2 {
		return fmt.Errorf("at least two players are required: %w", models.ErrInvalidState)
	}

	table.Started = true

	log.WithFields(log.Fields{
		"tableID": tableID,
		"players": len(table.Players),
	}).Info("Roulette table started")

	return nil
}

func (s *rouletteService) SetChoice(ctx context.Context, tableID string, playerID int64, pocket int) error {
	if pocket < 1 || pocket > 36 {
		return fmt.Errorf("pocket must be between 1 and 36: %w", models.ErrValidation)
	}

	table, err := s.lookup(tableID)
	if err != nil {
		return err
	}

	table.Mu.Lock()
	defer table.Mu.Unlock()

	if !table.Started || table.Resolved {
		return fmt.Errorf("table %s is not collecting choices: %w", tableID, models.ErrInvalidState)
	}
	if !table.HasPlayer(playerID) {
		return fmt.Errorf("player %d is not seated: %w", playerID, models.ErrUnauthorized)
	}
	if _, betPlaced := table.Bets[playerID]; betPlaced {
		return fmt.Errorf("choice is locked once the bet is placed: %w", models.ErrInvalidState)
	}

	table.Choices[playerID] = pocket
	return nil
}

func (s *rouletteService) SetBet(ctx context.Context, tableID string, playerID int64, amount int64) (*models.RouletteResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("bet must be positive: %w", models.ErrValidation)
	}

	table, err := s.lookup(tableID)
	if err != nil {
		return nil, err
	}

	user, err := s.getAccount(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if user.Balance < amount {
		return nil, fmt.Errorf("bet exceeds balance: %w", models.ErrInsufficientFunds)
	}

	table.Mu.Lock()
	defer table.Mu.Unlock()

	if !table.Started || table.Resolved {
		return nil, fmt.Errorf("table %s is not collecting bets: %w", tableID, models.ErrInvalidState)
	}
	if !table.HasPlayer(playerID) {
		return nil, fmt.Errorf("player %d is not seated: %w", playerID, models.ErrUnauthorized)
	}
	if _, ok := table.Choices[playerID]; !ok {
		return nil, fmt.Errorf("choose a pocket before betting: %w", models.ErrInvalidState)
	}
	if _, ok := table.Bets[playerID]; ok {
		return nil, fmt.Errorf("bet already placed: %w", models.ErrConflict)
	}

	table.Bets[playerID] = amount

	// The readiness check and the spin share the table lock, so only
	// the player who lands the final bet triggers the wheel.
	if !table.ReadyToSpin() {
		return nil, nil
	}

	result, err := s.resolveLocked(ctx, table)
	if err != nil {
		// a failed spin rolled back; release the triggering bet so a
		// retry re-arms the wheel instead of wedging the table
		delete(table.Bets, playerID)
		return nil, err
	}
	return result, nil
}

func (s *rouletteService) TableFor(playerID int64) (*models.RouletteTable, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tableID, ok := s.playerIndex[playerID]
	if !ok {
		return nil, false
	}
	table, ok := s.tables[tableID]
	return table, ok
}

// resolveLocked spins the wheel and settles the table. Caller holds the
// table mutex. Every bet is debited and every winning choice credited
// 35x its bet inside one transaction.
func (s *rouletteService) resolveLocked(ctx context.Context, table *models.RouletteTable) (*models.RouletteResult, error) {
	winning := s.rng.Intn(36) + 1

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	result := &models.RouletteResult{
		TableID:    table.TableID,
		WinningNum: winning,
		Color:      models.PocketColor(winning),
		Bets:       make(map[int64]int64, len(table.Players)),
		Payouts:    make(map[int64]int64),
	}

	for _, playerID := range table.Players {
		bet := table.Bets[playerID]
		meta := map[string]any{"table_id": table.TableID, "winning_num": winning}

		user, err := uow.UserRepository().GetByDiscordID(ctx, playerID)
		if err != nil {
			return nil, fmt.Errorf("failed to get player %d: %w", playerID, err)
		}
		if user == nil {
			// account deleted mid-round; bet is void
			log.WithField("playerID", playerID).Warn("Seated player has no account, voiding bet")
			continue
		}

		if err := uow.UserRepository().AdjustBalance(ctx, playerID, -bet); err != nil {
			if errors.Is(err, models.ErrInsufficientFunds) {
				log.WithFields(log.Fields{
					"tableID":  table.TableID,
					"playerID": playerID,
					"bet":      bet,
				}).Warn("Player cannot cover bet at spin time, voiding bet")
				continue
			}
			return nil, fmt.Errorf("failed to debit bet for %d: %w", playerID, err)
		}
		result.Bets[playerID] = bet

		if err := RecordBalanceChange(ctx, uow, &models.BalanceHistory{
			DiscordID:           playerID,
			BalanceBefore:       user.Balance,
			BalanceAfter:        user.Balance - bet,
			ChangeAmount:        -bet,
			TransactionType:     models.TransactionTypeRouletteBet,
			TransactionMetadata: meta,
		}); err != nil {
			return nil, err
		}

		if table.Choices[playerID] != winning {
			continue
		}

		payout := bet * 35
		if err := uow.UserRepository().AdjustBalance(ctx, playerID, payout); err != nil {
			return nil, fmt.Errorf("failed to credit payout for %d: %w", playerID, err)
		}
		result.Payouts[playerID] = payout

		if err := RecordBalanceChange(ctx, uow, &models.BalanceHistory{
			DiscordID:           playerID,
			BalanceBefore:       user.Balance - bet,
			BalanceAfter:        user.Balance - bet + payout,
			ChangeAmount:        payout,
			TransactionType:     models.TransactionTypeRouletteWin,
			TransactionMetadata: meta,
		}); err != nil {
			return nil, err
		}
	}

	uow.EventBus().Publish(events.RouletteSpunEvent{
		TableID:    table.TableID,
		WinningNum: winning,
		Players:    len(table.Players),
		Winners:    len(result.Payouts),
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit roulette resolution: %w", err)
	}

	table.WinningNum = winning
	table.Resolved = true

	s.registry.Release(table.Players...)

	s.mu.Lock()
	delete(s.tables, table.TableID)
	for _, playerID := range table.Players {
		if s.playerIndex[playerID] == table.TableID {
			delete(s.playerIndex, playerID)
		}
	}
	s.mu.Unlock()

	log.WithFields(log.Fields{
		"tableID":    table.TableID,
		"winningNum": winning,
		"players":    len(table.Players),
		"winners":    len(result.Payouts),
	}).Info("Roulette table resolved")

	return result, nil
}

func (s *rouletteService) lookup(tableID string) (*models.RouletteTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.tables[tableID]
	if !ok {
		return nil, fmt.Errorf("table %s: %w", tableID, models.ErrNotFound)
	}
	return table, nil
}

func (s *rouletteService) requireAccount(ctx context.Context, discordID int64) error {
	_, err := s.getAccount(ctx, discordID)
	return err
}

func (s *rouletteService) getAccount(ctx context.Context, discordID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("account %d: %w", discordID, models.ErrNotFound)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return user, nil
}
