package service

import (
	"context"
	"fmt"

	"casino/events"
	"casino/models"
)

// RecordBalanceChange records a balance history entry and queues the
// matching event on the unit of work's transactional bus, so the event
// only reaches subscribers if the change commits. This is the single
// entry point for balance change bookkeeping.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, history *models.BalanceHistory) error {
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		DiscordID:       history.DiscordID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	})

	return nil
}

// transfer moves amount from one account to the other inside the given
// unit of work. The debit and the credit land in the same transaction;
// a failed debit aborts before the credit, and a failed credit rolls
// the debit back with it, so a debited-but-uncredited state is never
// observable.
func transfer(ctx context.Context, uow UnitOfWork, fromID, toID, amount int64,
	debitType, creditType models.TransactionType, metadata map[string]any) error {

	from, err := uow.UserRepository().GetByDiscordID(ctx, fromID)
	if err != nil {
		return fmt.Errorf("failed to get sender: %w", err)
	}
	if from == nil {
		return fmt.Errorf("account %d: %w", fromID, models.ErrNotFound)
	}

	to, err := uow.UserRepository().GetByDiscordID(ctx, toID)
	if err != nil {
		return fmt.Errorf("failed to get recipient: %w", err)
	}
	if to == nil {
		return fmt.Errorf("account %d: %w", toID, models.ErrNotFound)
	}

	if err := uow.UserRepository().AdjustBalance(ctx, fromID, -amount); err != nil {
		return fmt.Errorf("failed to debit %d: %w", fromID, err)
	}
	if err := uow.UserRepository().AdjustBalance(ctx, toID, amount); err != nil {
		return fmt.Errorf("failed to credit %d: %w", toID, err)
	}

	debitHistory := &models.BalanceHistory{
		DiscordID:           fromID,
		BalanceBefore:       from.Balance,
		BalanceAfter:        from.Balance - amount,
		ChangeAmount:        -amount,
		TransactionType:     debitType,
		TransactionMetadata: metadata,
	}
	if err := RecordBalanceChange(ctx, uow, debitHistory); err != nil {
		return err
	}

	creditHistory := &models.BalanceHistory{
		DiscordID:           toID,
		BalanceBefore:       to.Balance,
		BalanceAfter:        to.Balance + amount,
		ChangeAmount:        amount,
		TransactionType:     creditType,
		TransactionMetadata: metadata,
	}
	return RecordBalanceChange(ctx, uow, creditHistory)
}
