package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"casino/events"
	"casino/models"
)

func newLotteryFixture(t *testing.T, rng Rand) (LotteryService, *MockUnitOfWorkFactory, *MockUnitOfWork, *MockUserRepository, *MockBalanceHistoryRepository, *MockLotteryRepository) {
	t.Helper()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockHistoryRepo := new(MockBalanceHistoryRepository)
	mockLotteryRepo := new(MockLotteryRepository)

	mockUoW.SetRepositories(mockUserRepo, mockHistoryRepo, mockLotteryRepo, nil)

	service := NewLotteryService(mockFactory, rng, 200, isAdmin(999))

	return service, mockFactory, mockUoW, mockUserRepo, mockHistoryRepo, mockLotteryRepo
}

func expectTransaction(mockFactory *MockUnitOfWorkFactory, mockUoW *MockUnitOfWork) {
	ctx := context.Background()
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
}

func TestLotteryService_StartRound_RequiresPrivilege(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, _, _, _, _ := newLotteryFixture(t, &scriptedRand{})

	_, err := service.StartRound(ctx, 100, nil, time.Hour, "chan-1")

	require.ErrorIs(t, err, models.ErrUnauthorized)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestLotteryService_StartRound(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, _, _, mockLotteryRepo := newLotteryFixture(t, &scriptedRand{})

	expectTransaction(mockFactory, mockUoW)

	mockLotteryRepo.On("Create", ctx, mock.MatchedBy(func(l *models.Lottery) bool {
		return l.Active && l.Prize == nil && l.ChannelID == "chan-1" && l.EndTime.Sub(l.StartTime) == 6*time.Hour
	})).Return(nil)

	lottery, err := service.StartRound(ctx, 999, nil, 6*time.Hour, "chan-1")

	require.NoError(t, err)
	assert.True(t, lottery.Active)
	assert.Equal(t, "chan-1", lottery.ChannelID)
	mockLotteryRepo.AssertExpectations(t)
}

func TestLotteryService_StartRound_SecondActiveConflicts(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, _, _, mockLotteryRepo := newLotteryFixture(t, &scriptedRand{})

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockLotteryRepo.On("Create", ctx, mock.Anything).Return(models.ErrConflict)

	_, err := service.StartRound(ctx, 999, nil, time.Hour, "chan-1")

	require.ErrorIs(t, err, models.ErrConflict)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestLotteryService_Enter(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, mockUserRepo, mockHistoryRepo, mockLotteryRepo := newLotteryFixture(t, &scriptedRand{})

	expectTransaction(mockFactory, mockUoW)

	now := time.Now().UTC()
	lottery := &models.Lottery{ID: 7, Active: true, EndTime: now.Add(time.Hour)}

	mockLotteryRepo.On("GetByID", ctx, int64(7)).Return(lottery, nil)
	mockUserRepo.On("GetByDiscordID", ctx, int64(100)).Return(&models.User{DiscordID: 100, Balance: 5000}, nil)
	mockUserRepo.On("AdjustBalance", ctx, int64(100), int64(-200)).Return(nil)
	mockLotteryRepo.On("AddEntry", ctx, int64(7), int64(100)).Return(nil)
	mockLotteryRepo.On("AddToPot", ctx, int64(7), int64(200)).Return(nil)

	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.DiscordID == 100 && h.ChangeAmount == -200 &&
			h.TransactionType == models.TransactionTypeLotteryEntry
	})).Return(nil)

	got, err := service.Enter(ctx, 7, 100)

	require.NoError(t, err)
	assert.Equal(t, int64(200), got.Pot)
	mockLotteryRepo.AssertExpectations(t)
	mockHistoryRepo.AssertExpectations(t)
}

func TestLotteryService_Enter_ClosedRound(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, _, _, mockLotteryRepo := newLotteryFixture(t, &scriptedRand{})

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	ended := &models.Lottery{ID: 7, Active: true, EndTime: time.Now().UTC().Add(-time.Minute)}
	mockLotteryRepo.On("GetByID", ctx, int64(7)).Return(ended, nil)

	_, err := service.Enter(ctx, 7, 100)

	require.ErrorIs(t, err, models.ErrInvalidState)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestLotteryService_Enter_DuplicateRollsBackFee(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, mockUserRepo, _, mockLotteryRepo := newLotteryFixture(t, &scriptedRand{})

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	lottery := &models.Lottery{ID: 7, Active: true, EndTime: time.Now().UTC().Add(time.Hour)}
	mockLotteryRepo.On("GetByID", ctx, int64(7)).Return(lottery, nil)
	mockUserRepo.On("GetByDiscordID", ctx, int64(100)).Return(&models.User{DiscordID: 100, Balance: 5000}, nil)
	mockUserRepo.On("AdjustBalance", ctx, int64(100), int64(-200)).Return(nil)
	mockLotteryRepo.On("AddEntry", ctx, int64(7), int64(100)).Return(models.ErrConflict)

	_, err := service.Enter(ctx, 7, 100)

	require.ErrorIs(t, err, models.ErrConflict)
	// no commit: the fee debit dies with the transaction
	mockUoW.AssertNotCalled(t, "Commit")
	mockLotteryRepo.AssertNotCalled(t, "AddToPot", ctx, int64(7), int64(200))
}

func TestLotteryService_EndRound_PicksWinnerFromEntries(t *testing.T) {
	ctx := context.Background()
	// Intn(3) returns 1: the second entrant wins
	service, mockFactory, mockUoW, mockUserRepo, mockHistoryRepo, mockLotteryRepo := newLotteryFixture(t, &scriptedRand{ints: []int{1}})

	expectTransaction(mockFactory, mockUoW)

	lottery := &models.Lottery{ID: 7, Active: true, EndTime: time.Now().UTC().Add(-time.Minute), Pot: 600}
	entries := []int64{100, 200, 300}

	mockLotteryRepo.On("GetByID", ctx, int64(7)).Return(lottery, nil)
	mockLotteryRepo.On("Claim", ctx, int64(7)).Return(true, nil)
	mockLotteryRepo.On("GetEntries", ctx, int64(7)).Return(entries, nil)
	mockUserRepo.On("GetByDiscordID", ctx, int64(200)).Return(&models.User{DiscordID: 200, Balance: 1000}, nil)
	mockUserRepo.On("AdjustBalance", ctx, int64(200), int64(600)).Return(nil)
	mockLotteryRepo.On("SetWinner", ctx, int64(7), mock.MatchedBy(func(id *int64) bool {
		return id != nil && *id == 200
	})).Return(nil)

	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.DiscordID == 200 && h.ChangeAmount == 600 &&
			h.TransactionType == models.TransactionTypeLotteryWin
	})).Return(nil)

	result, err := service.EndRound(ctx, 7, 100, false)

	require.NoError(t, err)
	require.NotNil(t, result.WinnerID)
	assert.Equal(t, int64(200), *result.WinnerID)
	assert.Equal(t, int64(600), result.Prize)
	assert.Equal(t, 3, result.Entries)
	mockLotteryRepo.AssertExpectations(t)
}

func TestLotteryService_GetActive(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, _, _, mockLotteryRepo := newLotteryFixture(t, &scriptedRand{})

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	running := &models.Lottery{ID: 7, Active: true, ChannelID: "chan-1", EndTime: time.Now().UTC().Add(time.Hour)}
	mockLotteryRepo.On("GetActive", ctx).Return(running, nil)

	lottery, err := service.GetActive(ctx)

	require.NoError(t, err)
	require.NotNil(t, lottery)
	assert.Equal(t, int64(7), lottery.ID)
	assert.Equal(t, "chan-1", lottery.ChannelID)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestLotteryService_EndRound_EventCarriesChannel(t *testing.T) {
	ctx := context.Background()
	// the stored round, not handler state, decides where results go
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockHistoryRepo := new(MockBalanceHistoryRepository)
	mockLotteryRepo := new(MockLotteryRepository)
	mockBus := new(MockEventPublisher)

	mockUoW.SetRepositories(mockUserRepo, mockHistoryRepo, mockLotteryRepo, mockBus)
	service := NewLotteryService(mockFactory, &scriptedRand{ints: []int{0}}, 200, isAdmin(999))

	expectTransaction(mockFactory, mockUoW)

	lottery := &models.Lottery{ID: 7, Active: true, ChannelID: "chan-1", EndTime: time.Now().UTC().Add(-time.Minute), Pot: 600}
	mockLotteryRepo.On("GetByID", ctx, int64(7)).Return(lottery, nil)
	mockLotteryRepo.On("Claim", ctx, int64(7)).Return(true, nil)
	mockLotteryRepo.On("GetEntries", ctx, int64(7)).Return([]int64{100}, nil)
	mockUserRepo.On("GetByDiscordID", ctx, int64(100)).Return(&models.User{DiscordID: 100, Balance: 1000}, nil)
	mockUserRepo.On("AdjustBalance", ctx, int64(100), int64(600)).Return(nil)
	mockLotteryRepo.On("SetWinner", ctx, int64(7), mock.Anything).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.Anything).Return(nil)

	mockBus.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		ended, ok := e.(events.LotteryEndedEvent)
		return ok && ended.LotteryID == 7 && ended.ChannelID == "chan-1"
	})).Return()

	_, err := service.EndRound(ctx, 7, 100, false)

	require.NoError(t, err)
	mockBus.AssertExpectations(t)
}

func TestLotteryService_EndRound_NoEntries(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, mockUserRepo, _, mockLotteryRepo := newLotteryFixture(t, &scriptedRand{})

	expectTransaction(mockFactory, mockUoW)

	lottery := &models.Lottery{ID: 7, Active: true, EndTime: time.Now().UTC().Add(-time.Minute)}
	mockLotteryRepo.On("GetByID", ctx, int64(7)).Return(lottery, nil)
	mockLotteryRepo.On("Claim", ctx, int64(7)).Return(true, nil)
	mockLotteryRepo.On("GetEntries", ctx, int64(7)).Return([]int64{}, nil)

	result, err := service.EndRound(ctx, 7, 100, false)

	require.NoError(t, err)
	assert.Nil(t, result.WinnerID)
	assert.Zero(t, result.Prize)
	mockUserRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
	mockLotteryRepo.AssertNotCalled(t, "SetWinner", mock.Anything, mock.Anything, mock.Anything)
}

func TestLotteryService_EndRound_ClaimedOnce(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, _, _, mockLotteryRepo := newLotteryFixture(t, &scriptedRand{})

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	lottery := &models.Lottery{ID: 7, Active: true, EndTime: time.Now().UTC().Add(-time.Minute)}
	mockLotteryRepo.On("GetByID", ctx, int64(7)).Return(lottery, nil)
	// someone else already flipped the round
	mockLotteryRepo.On("Claim", ctx, int64(7)).Return(false, nil)

	_, err := service.EndRound(ctx, 7, 100, false)

	require.ErrorIs(t, err, models.ErrConflict)
	mockLotteryRepo.AssertNotCalled(t, "GetEntries", ctx, int64(7))
}

func TestLotteryService_EndRound_ForceRequiresPrivilege(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, _, _, _, _ := newLotteryFixture(t, &scriptedRand{})

	_, err := service.EndRound(ctx, 7, 100, true)

	require.ErrorIs(t, err, models.ErrUnauthorized)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestLotteryService_EndRound_NotExpiredUnforced(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, _, _, mockLotteryRepo := newLotteryFixture(t, &scriptedRand{})

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	running := &models.Lottery{ID: 7, Active: true, EndTime: time.Now().UTC().Add(time.Hour)}
	mockLotteryRepo.On("GetByID", ctx, int64(7)).Return(running, nil)

	_, err := service.EndRound(ctx, 7, 100, false)

	require.ErrorIs(t, err, models.ErrInvalidState)
	mockLotteryRepo.AssertNotCalled(t, "Claim", ctx, int64(7))
}

func TestLotteryService_SweepExpired(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, _, _, mockLotteryRepo := newLotteryFixture(t, &scriptedRand{ints: []int{0}})

	expectTransaction(mockFactory, mockUoW)

	expired := &models.Lottery{ID: 7, Active: true, EndTime: time.Now().UTC().Add(-time.Minute)}
	mockLotteryRepo.On("GetActive", ctx).Return(expired, nil)
	mockLotteryRepo.On("GetByID", ctx, int64(7)).Return(expired, nil)
	mockLotteryRepo.On("Claim", ctx, int64(7)).Return(true, nil)
	mockLotteryRepo.On("GetEntries", ctx, int64(7)).Return([]int64{}, nil)

	err := service.SweepExpired(ctx)

	require.NoError(t, err)
	mockLotteryRepo.AssertExpectations(t)
}

func TestLotteryService_SweepExpired_NothingToDo(t *testing.T) {
	ctx := context.Background()
	service, mockFactory, mockUoW, _, _, mockLotteryRepo := newLotteryFixture(t, &scriptedRand{})

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockLotteryRepo.On("GetActive", ctx).Return(nil, nil)

	err := service.SweepExpired(ctx)

	require.NoError(t, err)
	mockLotteryRepo.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything)
}
