package models

import (
	"time"
)

// ChallengeAction is a response to a pending challenge
type ChallengeAction string

const (
	ChallengeActionAccept   ChallengeAction = "accept"
	ChallengeActionDeny     ChallengeAction = "deny"
	ChallengeActionWithdraw ChallengeAction = "withdraw"
)

// Challenge is a pending blackjack duel proposal. At most one exists per
// challenger at a time; a newer proposal from the same challenger
// replaces the older one. Challenges live in memory only and are
// destroyed on any terminal transition.
type Challenge struct {
	ChallengerID int64
	ChallengedID int64
	Wager        int64
	CreatedAt    time.Time
}

// IsParticipant checks if a user is one of the two sides of the challenge
func (c *Challenge) IsParticipant(discordID int64) bool {
	return c.ChallengerID == discordID || c.ChallengedID == discordID
}
