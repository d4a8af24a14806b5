package models

import (
	"time"
)

// Lottery is a timed single-winner draw. Rounds and their entries are
// the only game state that survives a restart; everything else in the
// casino is rebuilt from memory.
type Lottery struct {
	ID        int64      `db:"id"`
	StartTime time.Time  `db:"start_time"`
	EndTime   time.Time  `db:"end_time"`
	// Prize is the fixed admin-set amount; nil means pot mode, where the
	// prize accrues as entries times the entry fee.
	Prize    *int64 `db:"prize"`
	Pot      int64  `db:"pot"`
	WinnerID *int64 `db:"winner_id"`
	Active   bool   `db:"active"`
	// ChannelID is the chat channel the round was announced in, so
	// results reach the right audience even after a restart.
	ChannelID string    `db:"channel_id"`
	CreatedAt time.Time `db:"created_at"`
}

// PrizeAmount returns the fixed prize, or the accumulated pot
func (l *Lottery) PrizeAmount() int64 {
	if l.Prize != nil {
		return *l.Prize
	}
	return l.Pot
}

// Expired reports whether the round's scheduled end has passed
func (l *Lottery) Expired(now time.Time) bool {
	return !now.Before(l.EndTime)
}

// LotteryResult describes a finished round for rendering. WinnerID is
// nil when the round closed with no entries.
type LotteryResult struct {
	LotteryID int64
	WinnerID  *int64
	Prize     int64
	Entries   int
	Forced    bool
}
