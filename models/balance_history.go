package models

import (
	"time"
)

// TransactionType categorizes a balance change for history and events
type TransactionType string

const (
	TransactionTypeInitial      TransactionType = "initial"
	TransactionTypeTransferIn   TransactionType = "transfer_in"
	TransactionTypeTransferOut  TransactionType = "transfer_out"
	TransactionTypeDuelWin      TransactionType = "duel_win"
	TransactionTypeDuelLoss     TransactionType = "duel_loss"
	TransactionTypeRouletteBet  TransactionType = "roulette_bet"
	TransactionTypeRouletteWin  TransactionType = "roulette_win"
	TransactionTypeLotteryEntry TransactionType = "lottery_entry"
	TransactionTypeLotteryWin   TransactionType = "lottery_win"
	TransactionTypeRobSteal     TransactionType = "rob_steal"
	TransactionTypeRobVictim    TransactionType = "rob_victim"
	TransactionTypeRobFine      TransactionType = "rob_fine"
	TransactionTypeAdminSet     TransactionType = "admin_set"
)

// BalanceHistory is an append-only record of a single balance change.
// Every mutation that goes through the ledger writes one of these in the
// same transaction as the change itself.
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	DiscordID           int64           `db:"discord_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	CreatedAt           time.Time       `db:"created_at"`
}
