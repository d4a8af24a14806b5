package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"casino/events"
	"casino/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// blackjackService owns all live duels. Sessions live in one map keyed
// by session id; playerIndex is a non-owning lookup cleared alongside
// its session. The service mutex guards both maps and all session
// mutation, so turn checks and resolution are serialized per service.
type blackjackService struct {
	uowFactory UnitOfWorkFactory
	registry   *SessionRegistry
	rng        Rand

	mu          sync.Mutex
	sessions    map[string]*models.BlackjackSession
	playerIndex map[int64]string
}

// NewBlackjackService creates a new blackjack service
func NewBlackjackService(uowFactory UnitOfWorkFactory, registry *SessionRegistry, rng Rand) BlackjackService {
	return &blackjackService{
		uowFactory:  uowFactory,
		registry:    registry,
		rng:         rng,
		sessions:    make(map[string]*models.BlackjackSession),
		playerIndex: make(map[int64]string),
	}
}

// StartSession deals a new duel for two players whose reservations the
// challenge broker already holds. The session key doubles as the
// registry game key. Like every method here it returns a detached
// snapshot; the live session never leaves the lock.
func (s *blackjackService) StartSession(sessionID string, player1ID, player2ID, wager int64) *models.BlackjackSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := models.NewBlackjackSession(sessionID, player1ID, player2ID, wager, s.rng)
	s.sessions[sessionID] = session
	s.playerIndex[player1ID] = sessionID
	s.playerIndex[player2ID] = sessionID

	log.WithFields(log.Fields{
		"session": sessionID,
		"player1": player1ID,
		"player2": player2ID,
		"wager":   wager,
	}).Info("Blackjack duel started")

	return session.Snapshot()
}

// NewSessionID generates a key for a duel-to-be
func NewSessionID() string {
	return "duel-" + uuid.NewString()
}

// SessionFor returns the live session a player is part of, if any
func (s *blackjackService) SessionFor(playerID int64) (*models.BlackjackSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionID, ok := s.playerIndex[playerID]
	if !ok {
		return nil, false
	}
	return s.sessions[sessionID].Snapshot(), true
}

// Hit draws a card for the player. A bust ends the duel on the spot in
// the opponent's favor.
func (s *blackjackService) Hit(ctx context.Context, playerID int64) (*models.BlackjackSession, *models.DuelResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.turnSession(playerID)
	if err != nil {
		return nil, nil, err
	}

	session.Hit(playerID)

	if session.IsBust(playerID) {
		result, err := s.resolveLocked(ctx, session)
		if err != nil {
			return nil, nil, err
		}
		return session.Snapshot(), result, nil
	}

	return session.Snapshot(), nil, nil
}

// Stand passes the turn to player2, or resolves the duel when player2
// stands.
func (s *blackjackService) Stand(ctx context.Context, playerID int64) (*models.BlackjackSession, *models.DuelResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.turnSession(playerID)
	if err != nil {
		return nil, nil, err
	}

	if playerID == session.Player1ID {
		session.Turn = session.Player2ID
		return session.Snapshot(), nil, nil
	}

	result, err := s.resolveLocked(ctx, session)
	if err != nil {
		return nil, nil, err
	}
	return session.Snapshot(), result, nil
}

// turnSession fetches the caller's session and validates it is their
// turn in a live game. Caller must hold s.mu.
func (s *blackjackService) turnSession(playerID int64) (*models.BlackjackSession, error) {
	sessionID, ok := s.playerIndex[playerID]
	if !ok {
		return nil, fmt.Errorf("no active duel for player %d: %w", playerID, models.ErrNotFound)
	}
	session := s.sessions[sessionID]

	if session.Ended {
		return nil, fmt.Errorf("duel %s has ended: %w", sessionID, models.ErrInvalidState)
	}
	if session.Turn != playerID {
		return nil, fmt.Errorf("not your turn in duel %s: %w", sessionID, models.ErrInvalidState)
	}

	return session, nil
}

// resolveLocked settles a finished duel: moves the wager loser to
// winner (nothing on a draw), ends the session, releases both players
// and drops the session from the maps. Caller must hold s.mu.
func (s *blackjackService) resolveLocked(ctx context.Context, session *models.BlackjackSession) (*models.DuelResult, error) {
	winnerID := session.Winner()

	result := &models.DuelResult{
		SessionID: session.SessionID,
		Wager:     session.Wager,
		Draw:      winnerID == 0,
		Scores:    session.Snapshot().Scores,
	}

	if winnerID != 0 {
		loserID := session.Opponent(winnerID)
		result.WinnerID = winnerID
		result.LoserID = loserID

		if err := s.payOut(ctx, session, winnerID, loserID); err != nil {
			return nil, err
		}
	}

	session.Ended = true
	s.registry.Release(session.Player1ID, session.Player2ID)
	delete(s.sessions, session.SessionID)
	delete(s.playerIndex, session.Player1ID)
	delete(s.playerIndex, session.Player2ID)

	log.WithFields(log.Fields{
		"session": session.SessionID,
		"winner":  result.WinnerID,
		"draw":    result.Draw,
		"wager":   session.Wager,
	}).Info("Blackjack duel resolved")

	return result, nil
}

// payOut transfers the wager from loser to winner in one transaction.
// If the loser's balance was drained below the wager mid-game (by a
// transfer outside the duel), whatever remains is moved instead.
func (s *blackjackService) payOut(ctx context.Context, session *models.BlackjackSession, winnerID, loserID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	amount := session.Wager
	metadata := map[string]any{
		"session": session.SessionID,
		"winner":  winnerID,
		"loser":   loserID,
		"wager":   session.Wager,
	}

	err := transfer(ctx, uow, loserID, winnerID, amount,
		models.TransactionTypeDuelLoss, models.TransactionTypeDuelWin, metadata)
	if errors.Is(err, models.ErrInsufficientFunds) {
		loser, getErr := uow.UserRepository().GetByDiscordID(ctx, loserID)
		if getErr != nil {
			return getErr
		}
		log.WithFields(log.Fields{
			"session": session.SessionID,
			"loser":   loserID,
			"wager":   session.Wager,
			"balance": loser.Balance,
		}).Warn("Loser cannot cover the full wager, transferring remaining balance")
		amount = loser.Balance
		err = nil
		if amount > 0 {
			err = transfer(ctx, uow, loserID, winnerID, amount,
				models.TransactionTypeDuelLoss, models.TransactionTypeDuelWin, metadata)
		}
	}
	if err != nil {
		return err
	}

	uow.EventBus().Publish(events.DuelResolvedEvent{
		SessionID: session.SessionID,
		WinnerID:  winnerID,
		LoserID:   loserID,
		Wager:     amount,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
