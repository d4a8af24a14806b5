package models

import (
	"time"
)

// User represents a Discord user with a ledger balance.
// Balance is stored in cents so money arithmetic stays exact; it is
// never allowed to go negative.
type User struct {
	DiscordID int64     `db:"discord_id"`
	Username  string    `db:"username"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
