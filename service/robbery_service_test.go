package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"casino/models"
)

func newRobberyFixture(t *testing.T, rng Rand) (RobberyService, *CooldownTracker, *MockUnitOfWorkFactory, *MockUnitOfWork, *MockUserRepository, *MockBalanceHistoryRepository) {
	t.Helper()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockHistoryRepo := new(MockBalanceHistoryRepository)

	mockUoW.SetRepositories(mockUserRepo, mockHistoryRepo, nil, nil)

	cooldowns := NewCooldownTracker()
	service := NewRobberyService(mockFactory, cooldowns, rng, time.Hour, 0.30, 500)

	return service, cooldowns, mockFactory, mockUoW, mockUserRepo, mockHistoryRepo
}

func TestRobberyService_Rob_Success(t *testing.T) {
	ctx := context.Background()
	// Float64 under the 0.30 success rate; Intn(25) returns 9, so the
	// robber takes 10% of the victim's 10000
	rng := &scriptedRand{floats: []float64{0.1}, ints: []int{9}}
	service, _, mockFactory, mockUoW, mockUserRepo, mockHistoryRepo := newRobberyFixture(t, rng)

	expectTransaction(mockFactory, mockUoW)

	mockUserRepo.On("GetByDiscordID", ctx, int64(100)).Return(&models.User{DiscordID: 100, Balance: 2000}, nil)
	mockUserRepo.On("GetByDiscordID", ctx, int64(200)).Return(&models.User{DiscordID: 200, Balance: 10000}, nil)
	mockUserRepo.On("AdjustBalance", ctx, int64(200), int64(-1000)).Return(nil)
	mockUserRepo.On("AdjustBalance", ctx, int64(100), int64(1000)).Return(nil)

	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.DiscordID == 200 && h.ChangeAmount == -1000 &&
			h.TransactionType == models.TransactionTypeRobVictim
	})).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.DiscordID == 100 && h.ChangeAmount == 1000 &&
			h.TransactionType == models.TransactionTypeRobSteal
	})).Return(nil)

	result, err := service.Rob(ctx, 100, 200)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(1000), result.Amount)
	mockUserRepo.AssertExpectations(t)
	mockHistoryRepo.AssertExpectations(t)
}

func TestRobberyService_Rob_FailurePaysFine(t *testing.T) {
	ctx := context.Background()
	rng := &scriptedRand{floats: []float64{0.9}}
	service, _, mockFactory, mockUoW, mockUserRepo, mockHistoryRepo := newRobberyFixture(t, rng)

	expectTransaction(mockFactory, mockUoW)

	mockUserRepo.On("GetByDiscordID", ctx, int64(100)).Return(&models.User{DiscordID: 100, Balance: 2000}, nil)
	mockUserRepo.On("GetByDiscordID", ctx, int64(200)).Return(&models.User{DiscordID: 200, Balance: 10000}, nil)
	mockUserRepo.On("AdjustBalance", ctx, int64(100), int64(-500)).Return(nil)
	mockUserRepo.On("AdjustBalance", ctx, int64(200), int64(500)).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.Anything).Return(nil)

	result, err := service.Rob(ctx, 100, 200)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, int64(500), result.Amount)
	mockUserRepo.AssertExpectations(t)
}

func TestRobberyService_Rob_FineCappedAtBalance(t *testing.T) {
	ctx := context.Background()
	rng := &scriptedRand{floats: []float64{0.9}}
	service, _, mockFactory, mockUoW, mockUserRepo, mockHistoryRepo := newRobberyFixture(t, rng)

	expectTransaction(mockFactory, mockUoW)

	// the robber holds less than the configured fine of 500
	mockUserRepo.On("GetByDiscordID", ctx, int64(100)).Return(&models.User{DiscordID: 100, Balance: 120}, nil)
	mockUserRepo.On("GetByDiscordID", ctx, int64(200)).Return(&models.User{DiscordID: 200, Balance: 10000}, nil)
	mockUserRepo.On("AdjustBalance", ctx, int64(100), int64(-120)).Return(nil)
	mockUserRepo.On("AdjustBalance", ctx, int64(200), int64(120)).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.Anything).Return(nil)

	result, err := service.Rob(ctx, 100, 200)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, int64(120), result.Amount)
}

func TestRobberyService_Rob_StealsAtLeastOneCent(t *testing.T) {
	ctx := context.Background()
	// 1% of a 50-cent balance rounds to zero; the floor kicks in
	rng := &scriptedRand{floats: []float64{0.1}, ints: []int{0}}
	service, _, mockFactory, mockUoW, mockUserRepo, mockHistoryRepo := newRobberyFixture(t, rng)

	expectTransaction(mockFactory, mockUoW)

	mockUserRepo.On("GetByDiscordID", ctx, int64(100)).Return(&models.User{DiscordID: 100, Balance: 2000}, nil)
	mockUserRepo.On("GetByDiscordID", ctx, int64(200)).Return(&models.User{DiscordID: 200, Balance: 50}, nil)
	mockUserRepo.On("AdjustBalance", ctx, int64(200), int64(-1)).Return(nil)
	mockUserRepo.On("AdjustBalance", ctx, int64(100), int64(1)).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.Anything).Return(nil)

	result, err := service.Rob(ctx, 100, 200)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(1), result.Amount)
}

func TestRobberyService_Rob_BrokeVictim(t *testing.T) {
	ctx := context.Background()
	rng := &scriptedRand{floats: []float64{0.1}, ints: []int{9}}
	service, _, mockFactory, mockUoW, mockUserRepo, _ := newRobberyFixture(t, rng)

	expectTransaction(mockFactory, mockUoW)

	mockUserRepo.On("GetByDiscordID", ctx, int64(100)).Return(&models.User{DiscordID: 100, Balance: 2000}, nil)
	mockUserRepo.On("GetByDiscordID", ctx, int64(200)).Return(&models.User{DiscordID: 200, Balance: 0}, nil)

	result, err := service.Rob(ctx, 100, 200)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Zero(t, result.Amount)
	mockUserRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestRobberyService_Rob_Cooldown(t *testing.T) {
	ctx := context.Background()
	rng := &scriptedRand{floats: []float64{0.9, 0.9}}
	service, _, mockFactory, mockUoW, mockUserRepo, mockHistoryRepo := newRobberyFixture(t, rng)

	expectTransaction(mockFactory, mockUoW)

	mockUserRepo.On("GetByDiscordID", ctx, mock.Anything).Return(&models.User{DiscordID: 100, Balance: 2000}, nil)
	mockUserRepo.On("AdjustBalance", ctx, mock.Anything, mock.Anything).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.Anything).Return(nil)

	_, err := service.Rob(ctx, 100, 200)
	require.NoError(t, err)

	// a second attempt inside the window bounces
	_, err = service.Rob(ctx, 100, 200)
	require.ErrorIs(t, err, models.ErrInvalidState)

	// but a different robber is unaffected
	_, err = service.Rob(ctx, 300, 200)
	assert.NoError(t, err)
}

func TestRobberyService_Rob_SelfRobbery(t *testing.T) {
	ctx := context.Background()
	service, _, mockFactory, _, _, _ := newRobberyFixture(t, &scriptedRand{})

	_, err := service.Rob(ctx, 100, 100)

	require.ErrorIs(t, err, models.ErrValidation)
	mockFactory.AssertNotCalled(t, "Create")
}
