package service

import (
	"context"
	"fmt"

	"casino/events"
	"casino/models"
)

type userService struct {
	uowFactory      UnitOfWorkFactory
	startingBalance int64
	isPrivileged    func(discordID int64) bool
}

// NewUserService creates a new user service. isPrivileged is the
// externally supplied admin predicate gating absolute balance writes
// and account deletion.
func NewUserService(uowFactory UnitOfWorkFactory, startingBalance int64, isPrivileged func(int64) bool) UserService {
	return &userService{
		uowFactory:      uowFactory,
		startingBalance: startingBalance,
		isPrivileged:    isPrivileged,
	}
}

// CreateAccount registers a new account with the starting balance
func (s *userService) CreateAccount(ctx context.Context, discordID int64, username string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().Create(ctx, discordID, username, s.startingBalance)
	if err != nil {
		return nil, err
	}

	history := &models.BalanceHistory{
		DiscordID:       discordID,
		BalanceBefore:   0,
		BalanceAfter:    s.startingBalance,
		ChangeAmount:    s.startingBalance,
		TransactionType: models.TransactionTypeInitial,
		TransactionMetadata: map[string]any{
			"username": username,
		},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.AccountCreatedEvent{
		DiscordID:      discordID,
		Username:       username,
		InitialBalance: s.startingBalance,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// GetUser returns an account, failing with models.ErrNotFound when absent
func (s *userService) GetUser(ctx context.Context, discordID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("account %d: %w", discordID, models.ErrNotFound)
	}

	return user, nil
}

// Deposit transfers amount from one account to another
func (s *userService) Deposit(ctx context.Context, fromID, toID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("transfer amount must be positive: %w", models.ErrValidation)
	}
	if fromID == toID {
		return fmt.Errorf("cannot transfer to yourself: %w", models.ErrValidation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	metadata := map[string]any{
		"sender":    fromID,
		"recipient": toID,
		"amount":    amount,
	}
	if err := transfer(ctx, uow, fromID, toID, amount,
		models.TransactionTypeTransferOut, models.TransactionTypeTransferIn, metadata); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Leaderboard returns the top n accounts by balance
func (s *userService) Leaderboard(ctx context.Context, n int) ([]*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.UserRepository().TopBalances(ctx, n)
}

// SetBalance overwrites an account balance; privileged
func (s *userService) SetBalance(ctx context.Context, actorID, targetID int64, value int64) error {
	if !s.isPrivileged(actorID) {
		return fmt.Errorf("only the admin can set balances: %w", models.ErrUnauthorized)
	}
	if value < 0 {
		return fmt.Errorf("balance cannot be negative: %w", models.ErrValidation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	target, err := uow.UserRepository().GetByDiscordID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return fmt.Errorf("account %d: %w", targetID, models.ErrNotFound)
	}

	if err := uow.UserRepository().SetBalance(ctx, targetID, value); err != nil {
		return err
	}

	history := &models.BalanceHistory{
		DiscordID:       targetID,
		BalanceBefore:   target.Balance,
		BalanceAfter:    value,
		ChangeAmount:    value - target.Balance,
		TransactionType: models.TransactionTypeAdminSet,
		TransactionMetadata: map[string]any{
			"admin": actorID,
		},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteAccount removes an account; privileged
func (s *userService) DeleteAccount(ctx context.Context, actorID, targetID int64) error {
	if !s.isPrivileged(actorID) {
		return fmt.Errorf("only the admin can delete accounts: %w", models.ErrUnauthorized)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Delete(ctx, targetID); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
