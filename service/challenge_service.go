package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"casino/models"
	log "github.com/sirupsen/logrus"
)

// challengeService brokers duel proposals. Pending challenges are keyed
// by challenger, so a challenger can only have one open proposal; a new
// one replaces it. The service mutex covers the whole accept path,
// including the all-or-nothing reservation, so two challenges aimed at
// the same player cannot both turn into duels.
type challengeService struct {
	uowFactory UnitOfWorkFactory
	registry   *SessionRegistry
	blackjack  BlackjackService

	mu      sync.Mutex
	pending map[int64]*models.Challenge
}

// NewChallengeService creates a new challenge broker
func NewChallengeService(uowFactory UnitOfWorkFactory, registry *SessionRegistry, blackjack BlackjackService) ChallengeService {
	return &challengeService{
		uowFactory: uowFactory,
		registry:   registry,
		blackjack:  blackjack,
		pending:    make(map[int64]*models.Challenge),
	}
}

// Propose creates a pending challenge after validating the wager, both
// accounts and both balances. A pending challenge from the same
// challenger is replaced.
func (s *challengeService) Propose(ctx context.Context, challengerID, challengedID int64, wager int64) (*models.Challenge, error) {
	if wager <= 0 {
		return nil, fmt.Errorf("wager must be positive: %w", models.ErrValidation)
	}
	if challengerID == challengedID {
		return nil, fmt.Errorf("cannot challenge yourself: %w", models.ErrValidation)
	}

	if s.registry.IsReserved(challengerID) {
		return nil, fmt.Errorf("you are already in a game: %w", models.ErrConflict)
	}
	if s.registry.IsReserved(challengedID) {
		return nil, fmt.Errorf("challenged player is already in a game: %w", models.ErrConflict)
	}

	if err := s.checkBalances(ctx, challengerID, challengedID, wager); err != nil {
		return nil, err
	}

	challenge := &models.Challenge{
		ChallengerID: challengerID,
		ChallengedID: challengedID,
		Wager:        wager,
		CreatedAt:    time.Now(),
	}

	s.mu.Lock()
	if old, ok := s.pending[challengerID]; ok {
		log.WithFields(log.Fields{
			"challenger": challengerID,
			"previous":   old.ChallengedID,
			"new":        challengedID,
		}).Info("Replacing pending challenge")
	}
	s.pending[challengerID] = challenge
	s.mu.Unlock()

	return challenge, nil
}

// Respond handles an accept, deny or withdraw of a pending challenge.
// Accept re-validates both balances, reserves both participants as one
// step and deals the duel; any failure discards nothing except on
// reservation conflict, where the stale challenge is dropped too.
func (s *challengeService) Respond(ctx context.Context, actorID, challengerID int64, action models.ChallengeAction) (*models.BlackjackSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, ok := s.pending[challengerID]
	if !ok {
		return nil, fmt.Errorf("no pending challenge from %d: %w", challengerID, models.ErrNotFound)
	}

	switch action {
	case models.ChallengeActionAccept:
		if actorID != challenge.ChallengedID {
			return nil, fmt.Errorf("only the challenged player can accept: %w", models.ErrUnauthorized)
		}

		// Balances may have moved since the proposal
		if err := s.checkBalances(ctx, challenge.ChallengerID, challenge.ChallengedID, challenge.Wager); err != nil {
			return nil, err
		}

		sessionID := NewSessionID()
		if err := s.registry.ReserveAll(sessionID, challenge.ChallengerID, challenge.ChallengedID); err != nil {
			delete(s.pending, challengerID)
			return nil, fmt.Errorf("a participant joined another game: %w", err)
		}

		delete(s.pending, challengerID)
		session := s.blackjack.StartSession(sessionID, challenge.ChallengerID, challenge.ChallengedID, challenge.Wager)
		return session, nil

	case models.ChallengeActionDeny:
		if actorID != challenge.ChallengedID {
			return nil, fmt.Errorf("only the challenged player can deny: %w", models.ErrUnauthorized)
		}
		delete(s.pending, challengerID)
		return nil, nil

	case models.ChallengeActionWithdraw:
		if actorID != challenge.ChallengerID {
			return nil, fmt.Errorf("only the challenger can withdraw: %w", models.ErrUnauthorized)
		}
		delete(s.pending, challengerID)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown challenge action %q: %w", action, models.ErrValidation)
	}
}

// checkBalances verifies both accounts exist and can cover the wager
func (s *challengeService) checkBalances(ctx context.Context, challengerID, challengedID, wager int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	for _, id := range []int64{challengerID, challengedID} {
		user, err := uow.UserRepository().GetByDiscordID(ctx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("account %d: %w", id, models.ErrNotFound)
		}
		if user.Balance < wager {
			return fmt.Errorf("account %d cannot cover the wager of %d: %w", id, wager, models.ErrInsufficientFunds)
		}
	}

	return nil
}
