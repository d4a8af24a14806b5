package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"casino/models"
)

// robberyService runs the rob gamble: a cooldown-gated coin flip that
// either steals a slice of the victim's balance or fines the robber.
type robberyService struct {
	uowFactory  UnitOfWorkFactory
	cooldowns   *CooldownTracker
	rng         Rand
	cooldown    time.Duration
	successRate float64
	fine        int64
}

// NewRobberyService creates a robbery service
func NewRobberyService(uowFactory UnitOfWorkFactory, cooldowns *CooldownTracker, rng Rand,
	cooldown time.Duration, successRate float64, fine int64) RobberyService {
	return &robberyService{
		uowFactory:  uowFactory,
		cooldowns:   cooldowns,
		rng:         rng,
		cooldown:    cooldown,
		successRate: successRate,
		fine:        fine,
	}
}

func (s *robberyService) Rob(ctx context.Context, robberID, victimID int64) (*models.RobResult, error) {
	if robberID == victimID {
		return nil, fmt.Errorf("cannot rob yourself: %w", models.ErrValidation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	robber, err := uow.UserRepository().GetByDiscordID(ctx, robberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get robber: %w", err)
	}
	if robber == nil {
		return nil, fmt.Errorf("account %d: %w", robberID, models.ErrNotFound)
	}

	victim, err := uow.UserRepository().GetByDiscordID(ctx, victimID)
	if err != nil {
		return nil, fmt.Errorf("failed to get victim: %w", err)
	}
	if victim == nil {
		return nil, fmt.Errorf("account %d: %w", victimID, models.ErrNotFound)
	}

	// the attempt itself consumes the cooldown, win or lose
	if remaining, ok := s.cooldowns.TryConsume(robberID, s.cooldown, time.Now()); !ok {
		return nil, fmt.Errorf("rob available again in %s: %w", remaining, models.ErrInvalidState)
	}

	result := &models.RobResult{
		RobberID: robberID,
		VictimID: victimID,
		Success:  s.rng.Float64() < s.successRate,
	}

	meta := map[string]any{"robber_id": robberID, "victim_id": victimID}

	if result.Success {
		// steal a uniform 1-25% slice of the victim's balance, at least
		// one cent when the victim has anything at all
		percent := int64(s.rng.Intn(25) + 1)
		amount := victim.Balance * percent / 100
		if amount == 0 && victim.Balance > 0 {
			amount = 1
		}
		result.Amount = amount

		if amount > 0 {
			if err := transfer(ctx, uow, victimID, robberID, amount,
				models.TransactionTypeRobVictim, models.TransactionTypeRobSteal, meta); err != nil {
				return nil, fmt.Errorf("failed to transfer loot: %w", err)
			}
		}
	} else {
		fine := s.fine
		if fine > robber.Balance {
			fine = robber.Balance
		}
		result.Amount = fine

		if fine > 0 {
			if err := transfer(ctx, uow, robberID, victimID, fine,
				models.TransactionTypeRobFine, models.TransactionTypeRobVictim, meta); err != nil {
				// the cap above should cover this; a concurrent debit can
				// still beat us to the balance
				if errors.Is(err, models.ErrInsufficientFunds) {
					result.Amount = 0
				} else {
					return nil, fmt.Errorf("failed to transfer fine: %w", err)
				}
			}
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit robbery: %w", err)
	}

	log.WithFields(log.Fields{
		"robberID": robberID,
		"victimID": victimID,
		"success":  result.Success,
		"amount":   result.Amount,
	}).Info("Robbery attempted")

	return result, nil
}
