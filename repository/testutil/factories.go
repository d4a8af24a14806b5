package testutil

import (
	"time"

	"casino/models"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(discordID int64, username string) *models.User {
	now := time.Now()
	return &models.User{
		DiscordID: discordID,
		Username:  username,
		Balance:   10000,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestUserWithBalance creates a test user with a specific balance
func CreateTestUserWithBalance(discordID int64, username string, balance int64) *models.User {
	user := CreateTestUser(discordID, username)
	user.Balance = balance
	return user
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(discordID int64, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		DiscordID:       discordID,
		BalanceBefore:   10000,
		BalanceAfter:    9000,
		ChangeAmount:    -1000,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
		CreatedAt: time.Now(),
	}
}

// CreateTestLottery creates an active pot-mode lottery ending in an hour
func CreateTestLottery() *models.Lottery {
	now := time.Now().UTC()
	return &models.Lottery{
		StartTime: now,
		EndTime:   now.Add(time.Hour),
		Active:    true,
		ChannelID: "test-channel",
	}
}

// CreateTestLotteryWithPrize creates an active lottery with a fixed prize
func CreateTestLotteryWithPrize(prize int64) *models.Lottery {
	lottery := CreateTestLottery()
	lottery.Prize = &prize
	return lottery
}
