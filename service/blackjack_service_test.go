package service

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"casino/models"
)

func newBlackjackFixture(t *testing.T) (*blackjackService, *SessionRegistry, *MockUnitOfWorkFactory, *MockUnitOfWork, *MockUserRepository, *MockBalanceHistoryRepository) {
	t.Helper()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockHistoryRepo := new(MockBalanceHistoryRepository)

	mockUoW.SetRepositories(mockUserRepo, mockHistoryRepo, nil, nil)

	registry := NewSessionRegistry()
	service := NewBlackjackService(mockFactory, registry, rand.New(rand.NewSource(1))).(*blackjackService)

	return service, registry, mockFactory, mockUoW, mockUserRepo, mockHistoryRepo
}

func TestBlackjackService_StartSession(t *testing.T) {
	service, registry, _, _, _, _ := newBlackjackFixture(t)

	require.NoError(t, registry.ReserveAll("duel-1", 100, 200))
	session := service.StartSession("duel-1", 100, 200, 1000)

	require.NotNil(t, session)
	assert.Len(t, session.Hands[100], 2)
	assert.Len(t, session.Hands[200], 2)

	found, ok := service.SessionFor(100)
	require.True(t, ok)
	assert.Equal(t, session.SessionID, found.SessionID)

	found, ok = service.SessionFor(200)
	require.True(t, ok)
	assert.Equal(t, session.SessionID, found.SessionID)
}

func TestBlackjackService_Hit_OutOfTurn(t *testing.T) {
	ctx := context.Background()
	service, registry, _, _, _, _ := newBlackjackFixture(t)

	require.NoError(t, registry.ReserveAll("duel-1", 100, 200))
	service.StartSession("duel-1", 100, 200, 1000)

	_, _, err := service.Hit(ctx, 200)
	assert.ErrorIs(t, err, models.ErrInvalidState)

	_, _, err = service.Hit(ctx, 300)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestBlackjackService_Stand_PassesTurn(t *testing.T) {
	ctx := context.Background()
	service, registry, mockFactory, _, _, _ := newBlackjackFixture(t)

	require.NoError(t, registry.ReserveAll("duel-1", 100, 200))
	service.StartSession("duel-1", 100, 200, 1000)

	session, result, err := service.Stand(ctx, 100)

	require.NoError(t, err)
	assert.Nil(t, result, "first stand must not resolve the duel")
	assert.Equal(t, int64(200), session.Turn)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestBlackjackService_Resolution_WinnerTakesWager(t *testing.T) {
	ctx := context.Background()
	service, registry, mockFactory, mockUoW, mockUserRepo, mockHistoryRepo := newBlackjackFixture(t)

	require.NoError(t, registry.ReserveAll("duel-1", 100, 200))
	service.StartSession("duel-1", 100, 200, 1000)

	// fix the final scores on the live session so player1 wins 20 to 19
	live := service.sessions["duel-1"]
	live.Scores[100] = 20
	live.Scores[200] = 19
	live.Turn = 200

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByDiscordID", ctx, int64(100)).Return(&models.User{DiscordID: 100, Balance: 5000}, nil)
	mockUserRepo.On("GetByDiscordID", ctx, int64(200)).Return(&models.User{DiscordID: 200, Balance: 5000}, nil)
	mockUserRepo.On("AdjustBalance", ctx, int64(200), int64(-1000)).Return(nil)
	mockUserRepo.On("AdjustBalance", ctx, int64(100), int64(1000)).Return(nil)

	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.DiscordID == 200 && h.ChangeAmount == -1000 &&
			h.TransactionType == models.TransactionTypeDuelLoss
	})).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.DiscordID == 100 && h.ChangeAmount == 1000 &&
			h.TransactionType == models.TransactionTypeDuelWin
	})).Return(nil)

	_, result, err := service.Stand(ctx, 200)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(100), result.WinnerID)
	assert.Equal(t, int64(200), result.LoserID)
	assert.False(t, result.Draw)

	// the duel is gone and both players are free again
	_, ok := service.SessionFor(100)
	assert.False(t, ok)
	assert.False(t, registry.IsReserved(100))
	assert.False(t, registry.IsReserved(200))

	mockUserRepo.AssertExpectations(t)
	mockHistoryRepo.AssertExpectations(t)
}

func TestBlackjackService_Resolution_DrawMovesNothing(t *testing.T) {
	ctx := context.Background()
	service, registry, mockFactory, _, _, _ := newBlackjackFixture(t)

	require.NoError(t, registry.ReserveAll("duel-1", 100, 200))
	service.StartSession("duel-1", 100, 200, 1000)

	live := service.sessions["duel-1"]
	live.Scores[100] = 19
	live.Scores[200] = 19
	live.Turn = 200

	_, result, err := service.Stand(ctx, 200)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Draw)
	assert.Zero(t, result.WinnerID)

	// no money moved: the ledger was never touched
	mockFactory.AssertNotCalled(t, "Create")
	assert.False(t, registry.IsReserved(100))
	assert.False(t, registry.IsReserved(200))
}

func TestBlackjackService_Hit_BustResolvesForOpponent(t *testing.T) {
	ctx := context.Background()
	service, registry, mockFactory, mockUoW, mockUserRepo, mockHistoryRepo := newBlackjackFixture(t)

	require.NoError(t, registry.ReserveAll("duel-1", 100, 200))
	service.StartSession("duel-1", 100, 200, 1000)

	// stack the player's hand so any draw busts
	live := service.sessions["duel-1"]
	live.Hands[100] = []models.Card{{Rank: "K"}, {Rank: "Q"}, {Rank: "5"}}
	live.Scores[100] = models.HandScore(live.Hands[100])

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByDiscordID", ctx, mock.Anything).Return(&models.User{DiscordID: 100, Balance: 5000}, nil)
	mockUserRepo.On("AdjustBalance", ctx, int64(100), int64(-1000)).Return(nil)
	mockUserRepo.On("AdjustBalance", ctx, int64(200), int64(1000)).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.Anything).Return(nil)

	_, result, err := service.Hit(ctx, 100)

	require.NoError(t, err)
	require.NotNil(t, result, "a bust must resolve immediately")
	assert.Equal(t, int64(200), result.WinnerID)
	assert.Equal(t, int64(100), result.LoserID)
}

func TestBlackjackService_Resolution_LoserCannotCoverWager(t *testing.T) {
	ctx := context.Background()
	service, registry, mockFactory, mockUoW, mockUserRepo, mockHistoryRepo := newBlackjackFixture(t)

	require.NoError(t, registry.ReserveAll("duel-1", 100, 200))
	service.StartSession("duel-1", 100, 200, 1000)

	live := service.sessions["duel-1"]
	live.Scores[100] = 20
	live.Scores[200] = 19
	live.Turn = 200

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// the loser only has 300 left mid-duel
	mockUserRepo.On("GetByDiscordID", ctx, int64(200)).Return(&models.User{DiscordID: 200, Balance: 300}, nil)
	mockUserRepo.On("GetByDiscordID", ctx, int64(100)).Return(&models.User{DiscordID: 100, Balance: 5000}, nil)
	mockUserRepo.On("AdjustBalance", ctx, int64(200), int64(-1000)).Return(models.ErrInsufficientFunds)
	mockUserRepo.On("AdjustBalance", ctx, int64(200), int64(-300)).Return(nil)
	mockUserRepo.On("AdjustBalance", ctx, int64(100), int64(300)).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.Anything).Return(nil)

	_, result, err := service.Stand(ctx, 200)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(100), result.WinnerID)

	mockUserRepo.AssertExpectations(t)
}

func TestBlackjackService_TurnReturnsDetachedState(t *testing.T) {
	ctx := context.Background()
	service, registry, _, _, _, _ := newBlackjackFixture(t)

	require.NoError(t, registry.ReserveAll("duel-1", 100, 200))
	service.StartSession("duel-1", 100, 200, 1000)

	snapshot, result, err := service.Stand(ctx, 100)
	require.NoError(t, err)
	require.Nil(t, result)

	handSize := len(snapshot.Hands[200])
	score := snapshot.Scores[200]

	// mutate the live session the way a later turn would
	live := service.sessions["duel-1"]
	live.Hit(200)

	assert.Len(t, snapshot.Hands[200], handSize, "returned hands must not track the live session")
	assert.Equal(t, score, snapshot.Scores[200], "returned scores must not track the live session")
}

func TestBlackjackService_ConcurrentHitsRenderSafely(t *testing.T) {
	ctx := context.Background()
	service, registry, mockFactory, mockUoW, mockUserRepo, mockHistoryRepo := newBlackjackFixture(t)

	// a hit can bust and settle, so keep the ledger mocks permissive
	mockFactory.On("Create").Return(mockUoW).Maybe()
	mockUoW.On("Begin", ctx).Return(nil).Maybe()
	mockUoW.On("Commit").Return(nil).Maybe()
	mockUoW.On("Rollback").Return(nil).Maybe()
	mockUserRepo.On("GetByDiscordID", ctx, mock.Anything).Return(&models.User{DiscordID: 100, Balance: 5000}, nil).Maybe()
	mockUserRepo.On("AdjustBalance", ctx, mock.Anything, mock.Anything).Return(nil).Maybe()
	mockHistoryRepo.On("Record", ctx, mock.Anything).Return(nil).Maybe()

	require.NoError(t, registry.ReserveAll("duel-1", 100, 200))
	service.StartSession("duel-1", 100, 200, 1000)

	// a double-clicked hit button: both handlers act and render at once
	var wg sync.WaitGroup
	for g := 0; g < 2; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, _, err := service.Hit(ctx, 100)
			if err != nil {
				return
			}
			for _, hand := range session.Hands {
				_ = models.HandScore(hand)
			}
		}()
	}
	wg.Wait()
}
