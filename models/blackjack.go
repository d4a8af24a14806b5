package models

import (
	"fmt"
)

// Card is a single playing card. Rank is one of A,2..10,J,Q,K.
type Card struct {
	Rank string
	Suit string
}

func (c Card) String() string {
	return c.Rank + c.Suit
}

var (
	cardSuits = []string{"♠", "♥", "♣", "♦"}
	cardRanks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
)

// Shuffler is the randomness needed to shuffle a deck. *rand.Rand
// satisfies it; tests can pass a fixed-seed source for deterministic
// deals.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// NewDeck builds a standard 52-card deck shuffled with r
func NewDeck(r Shuffler) []Card {
	deck := make([]Card, 0, 52)
	for _, suit := range cardSuits {
		for _, rank := range cardRanks {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}
	r.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// HandScore computes the blackjack total of a hand. Face cards count 10
// and each ace counts 11, reduced to 1 (subtract 10) one ace at a time
// while the total exceeds 21. This reproduces standard soft/hard totals.
func HandScore(hand []Card) int {
	score := 0
	aces := 0
	for _, c := range hand {
		switch c.Rank {
		case "J", "Q", "K":
			score += 10
		case "A":
			aces++
			score += 11
		case "10":
			score += 10
		default:
			score += int(c.Rank[0] - '0')
		}
	}
	for score > 21 && aces > 0 {
		score -= 10
		aces--
	}
	return score
}

// BlackjackSession is a live two-player duel. The deck is shuffled once
// at creation and drawn without replacement; two players cannot exhaust
// it, so an empty draw is a programming error.
type BlackjackSession struct {
	SessionID string
	Player1ID int64
	Player2ID int64
	Wager     int64

	deck   []Card
	Hands  map[int64][]Card
	Scores map[int64]int
	Turn   int64
	Ended  bool
}

// NewBlackjackSession creates a session and deals two cards to each
// player, alternating, player1 first.
func NewBlackjackSession(sessionID string, player1ID, player2ID, wager int64, r Shuffler) *BlackjackSession {
	s := &BlackjackSession{
		SessionID: sessionID,
		Player1ID: player1ID,
		Player2ID: player2ID,
		Wager:     wager,
		deck:      NewDeck(r),
		Hands:     make(map[int64][]Card),
		Scores:    make(map[int64]int),
		Turn:      player1ID,
	}
	for i := 0; i < 2; i++ {
		for _, id := range []int64{player1ID, player2ID} {
			s.draw(id)
		}
	}
	return s
}

func (s *BlackjackSession) draw(playerID int64) Card {
	if len(s.deck) == 0 {
		panic(fmt.Sprintf("deck exhausted in session %s", s.SessionID))
	}
	card := s.deck[len(s.deck)-1]
	s.deck = s.deck[:len(s.deck)-1]
	s.Hands[playerID] = append(s.Hands[playerID], card)
	s.Scores[playerID] = HandScore(s.Hands[playerID])
	return card
}

// Hit draws one card for the player and recomputes their score
func (s *BlackjackSession) Hit(playerID int64) Card {
	return s.draw(playerID)
}

// Snapshot returns a deep copy of the session's visible state. The
// service hands snapshots to callers so they can render hands and
// scores while the live session keeps mutating under the service lock.
func (s *BlackjackSession) Snapshot() *BlackjackSession {
	copied := &BlackjackSession{
		SessionID: s.SessionID,
		Player1ID: s.Player1ID,
		Player2ID: s.Player2ID,
		Wager:     s.Wager,
		Hands:     make(map[int64][]Card, len(s.Hands)),
		Scores:    make(map[int64]int, len(s.Scores)),
		Turn:      s.Turn,
		Ended:     s.Ended,
	}
	for id, hand := range s.Hands {
		copied.Hands[id] = append([]Card(nil), hand...)
	}
	for id, score := range s.Scores {
		copied.Scores[id] = score
	}
	return copied
}

// IsParticipant checks membership in the duel
func (s *BlackjackSession) IsParticipant(discordID int64) bool {
	return s.Player1ID == discordID || s.Player2ID == discordID
}

// Opponent returns the other player's id, or 0 for a non-participant
func (s *BlackjackSession) Opponent(discordID int64) int64 {
	switch discordID {
	case s.Player1ID:
		return s.Player2ID
	case s.Player2ID:
		return s.Player1ID
	}
	return 0
}

// IsBust reports whether the player's score exceeds 21
func (s *BlackjackSession) IsBust(playerID int64) bool {
	return s.Scores[playerID] > 21
}

// Winner returns the winning player id, or 0 for a draw. A busted
// player always loses; otherwise the higher score wins.
func (s *BlackjackSession) Winner() int64 {
	score1 := s.Scores[s.Player1ID]
	score2 := s.Scores[s.Player2ID]
	if score1 > 21 {
		return s.Player2ID
	}
	if score2 > 21 {
		return s.Player1ID
	}
	if score1 > score2 {
		return s.Player1ID
	}
	if score2 > score1 {
		return s.Player2ID
	}
	return 0
}

// DuelResult describes a finished duel for rendering
type DuelResult struct {
	SessionID string
	WinnerID  int64
	LoserID   int64
	Wager     int64
	Draw      bool
	Scores    map[int64]int
}
