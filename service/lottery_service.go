package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"casino/events"
	"casino/models"
)

// lotteryService runs timed single-winner draws. Rounds are durable;
// the single-active invariant and the exactly-once draw are both
// enforced by the repository, so concurrent admins and the sweep
// worker cannot double-start or double-resolve a round.
type lotteryService struct {
	uowFactory   UnitOfWorkFactory
	rng          Rand
	entryFee     int64
	isPrivileged func(int64) bool
}

// NewLotteryService creates a lottery service
func NewLotteryService(uowFactory UnitOfWorkFactory, rng Rand, entryFee int64, isPrivileged func(int64) bool) LotteryService {
	return &lotteryService{
		uowFactory:   uowFactory,
		rng:          rng,
		entryFee:     entryFee,
		isPrivileged: isPrivileged,
	}
}

func (s *lotteryService) StartRound(ctx context.Context, actorID int64, prize *int64, duration time.Duration, channelID string) (*models.Lottery, error) {
	if !s.isPrivileged(actorID) {
		return nil, fmt.Errorf("only an admin can start a lottery: %w", models.ErrUnauthorized)
	}
	if prize != nil && *prize <= 0 {
		return nil, fmt.Errorf("prize must be positive: %w", models.ErrValidation)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive: %w", models.ErrValidation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	now := time.Now().UTC()
	lottery := &models.Lottery{
		StartTime: now,
		EndTime:   now.Add(duration),
		Prize:     prize,
		Active:    true,
		ChannelID: channelID,
	}

	if err := uow.LotteryRepository().Create(ctx, lottery); err != nil {
		return nil, fmt.Errorf("failed to create lottery: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit lottery: %w", err)
	}

	log.WithFields(log.Fields{
		"lotteryID": lottery.ID,
		"endTime":   lottery.EndTime,
		"potMode":   prize == nil,
	}).Info("Lottery round started")

	return lottery, nil
}

func (s *lotteryService) Enter(ctx context.Context, lotteryID, discordID int64) (*models.Lottery, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	lottery, err := uow.LotteryRepository().GetByID(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return nil, fmt.Errorf("lottery %d: %w", lotteryID, models.ErrNotFound)
	}
	if !lottery.Active || lottery.Expired(time.Now().UTC()) {
		return nil, fmt.Errorf("lottery %d is closed: %w", lotteryID, models.ErrInvalidState)
	}

	user, err := uow.UserRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("account %d: %w", discordID, models.ErrNotFound)
	}

	if err := uow.UserRepository().AdjustBalance(ctx, discordID, -s.entryFee); err != nil {
		return nil, fmt.Errorf("failed to debit entry fee: %w", err)
	}

	// duplicate entries bounce here, rolling the fee debit back with them
	if err := uow.LotteryRepository().AddEntry(ctx, lotteryID, discordID); err != nil {
		return nil, fmt.Errorf("failed to add entry: %w", err)
	}

	if err := uow.LotteryRepository().AddToPot(ctx, lotteryID, s.entryFee); err != nil {
		return nil, fmt.Errorf("failed to grow pot: %w", err)
	}
	lottery.Pot += s.entryFee

	if err := RecordBalanceChange(ctx, uow, &models.BalanceHistory{
		DiscordID:           discordID,
		BalanceBefore:       user.Balance,
		BalanceAfter:        user.Balance - s.entryFee,
		ChangeAmount:        -s.entryFee,
		TransactionType:     models.TransactionTypeLotteryEntry,
		TransactionMetadata: map[string]any{"lottery_id": lotteryID},
	}); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit entry: %w", err)
	}

	log.WithFields(log.Fields{
		"lotteryID": lotteryID,
		"discordID": discordID,
	}).Info("Lottery entry recorded")

	return lottery, nil
}

func (s *lotteryService) EndRound(ctx context.Context, lotteryID, actorID int64, forced bool) (*models.LotteryResult, error) {
	if forced && !s.isPrivileged(actorID) {
		return nil, fmt.Errorf("only an admin can force-end a lottery: %w", models.ErrUnauthorized)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	lottery, err := uow.LotteryRepository().GetByID(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return nil, fmt.Errorf("lottery %d: %w", lotteryID, models.ErrNotFound)
	}
	if !forced && !lottery.Expired(time.Now().UTC()) {
		return nil, fmt.Errorf("lottery %d has not ended yet: %w", lotteryID, models.ErrInvalidState)
	}

	// Exactly-once: the first caller to flip active wins the claim;
	// everyone else sees zero rows and backs off.
	claimed, err := uow.LotteryRepository().Claim(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim lottery: %w", err)
	}
	if !claimed {
		return nil, fmt.Errorf("lottery %d already resolved: %w", lotteryID, models.ErrConflict)
	}

	entries, err := uow.LotteryRepository().GetEntries(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}

	result := &models.LotteryResult{
		LotteryID: lotteryID,
		Entries:   len(entries),
		Forced:    forced,
	}

	if len(entries) > 0 {
		winnerID := entries[s.rng.Intn(len(entries))]
		prize := lottery.PrizeAmount()

		winner, err := uow.UserRepository().GetByDiscordID(ctx, winnerID)
		if err != nil {
			return nil, fmt.Errorf("failed to get winner: %w", err)
		}
		if winner != nil && prize > 0 {
			if err := uow.UserRepository().AdjustBalance(ctx, winnerID, prize); err != nil {
				return nil, fmt.Errorf("failed to credit prize: %w", err)
			}
			if err := RecordBalanceChange(ctx, uow, &models.BalanceHistory{
				DiscordID:           winnerID,
				BalanceBefore:       winner.Balance,
				BalanceAfter:        winner.Balance + prize,
				ChangeAmount:        prize,
				TransactionType:     models.TransactionTypeLotteryWin,
				TransactionMetadata: map[string]any{"lottery_id": lotteryID, "entries": len(entries)},
			}); err != nil {
				return nil, err
			}
		}

		if err := uow.LotteryRepository().SetWinner(ctx, lotteryID, &winnerID); err != nil {
			return nil, fmt.Errorf("failed to record winner: %w", err)
		}

		result.WinnerID = &winnerID
		result.Prize = prize
	}

	uow.EventBus().Publish(events.LotteryEndedEvent{
		LotteryID: lotteryID,
		WinnerID:  result.WinnerID,
		Prize:     result.Prize,
		Entries:   result.Entries,
		Forced:    forced,
		ChannelID: lottery.ChannelID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit lottery resolution: %w", err)
	}

	log.WithFields(log.Fields{
		"lotteryID": lotteryID,
		"entries":   result.Entries,
		"prize":     result.Prize,
		"forced":    forced,
	}).Info("Lottery round resolved")

	return result, nil
}

// GetActive returns the running round, or nil when none is. Read-only:
// the transaction is rolled back after the lookup.
func (s *lotteryService) GetActive(ctx context.Context) (*models.Lottery, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	lottery, err := uow.LotteryRepository().GetActive(ctx)
	if rollbackErr := uow.Rollback(); rollbackErr != nil {
		log.WithError(rollbackErr).Warn("Failed to rollback lottery lookup")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active lottery: %w", err)
	}
	return lottery, nil
}

func (s *lotteryService) SweepExpired(ctx context.Context) error {
	lottery, err := s.GetActive(ctx)
	if err != nil {
		return err
	}
	if lottery == nil || !lottery.Expired(time.Now().UTC()) {
		return nil
	}

	// a concurrent manual end loses no money, just the claim
	if _, err := s.EndRound(ctx, lottery.ID, 0, false); err != nil {
		return fmt.Errorf("failed to sweep lottery %d: %w", lottery.ID, err)
	}
	return nil
}
