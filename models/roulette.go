package models

import (
	"sync"
)

// RouletteTable is a live betting round. The embedded mutex guards every
// read and write of the table after creation: the "all bets in" check
// and the spin that follows it must be one critical section so two
// near-simultaneous last bets cannot both trigger the wheel. Distinct
// tables lock independently and resolve in parallel.
type RouletteTable struct {
	Mu sync.Mutex

	TableID     string
	InitiatorID int64
	Players     []int64 // insertion order = join order
	Started     bool
	Resolved    bool
	Choices     map[int64]int   // player -> pocket 1..36
	Bets        map[int64]int64 // player -> positive amount
	WinningNum  int             // 0 until spun
}

// NewRouletteTable creates an open table with the initiator seated
func NewRouletteTable(tableID string, initiatorID int64) *RouletteTable {
	return &RouletteTable{
		TableID:     tableID,
		InitiatorID: initiatorID,
		Players:     []int64{initiatorID},
		Choices:     make(map[int64]int),
		Bets:        make(map[int64]int64),
	}
}

// HasPlayer checks seat membership. Caller must hold Mu.
func (t *RouletteTable) HasPlayer(playerID int64) bool {
	for _, id := range t.Players {
		if id == playerID {
			return true
		}
	}
	return false
}

// ReadyToSpin reports whether every seated player has both a choice and
// a bet recorded. Caller must hold Mu.
func (t *RouletteTable) ReadyToSpin() bool {
	return t.Started &&
		len(t.Choices) == len(t.Players) &&
		len(t.Bets) == len(t.Players)
}

// PocketColor maps a pocket to its display color: odd pockets are red,
// even pockets black. Display only, never used for payouts.
func PocketColor(pocket int) string {
	if pocket%2 == 1 {
		return "red"
	}
	return "black"
}

// RouletteResult describes a resolved round for rendering
type RouletteResult struct {
	TableID    string
	WinningNum int
	Color      string
	Bets       map[int64]int64 // what each player staked
	Payouts    map[int64]int64 // credited amount per winning player
}
