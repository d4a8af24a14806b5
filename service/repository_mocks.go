package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"casino/events"
	"casino/models"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*models.User, error) {
	args := m.Called(ctx, discordID, username, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) AdjustBalance(ctx context.Context, discordID int64, delta int64) error {
	args := m.Called(ctx, discordID, delta)
	return args.Error(0)
}

func (m *MockUserRepository) SetBalance(ctx context.Context, discordID int64, value int64) error {
	args := m.Called(ctx, discordID, value)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, discordID int64) error {
	args := m.Called(ctx, discordID)
	return args.Error(0)
}

func (m *MockUserRepository) TopBalances(ctx context.Context, n int) ([]*models.User, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockLotteryRepository is a mock implementation of LotteryRepository
type MockLotteryRepository struct {
	mock.Mock
}

func (m *MockLotteryRepository) Create(ctx context.Context, lottery *models.Lottery) error {
	args := m.Called(ctx, lottery)
	return args.Error(0)
}

func (m *MockLotteryRepository) GetByID(ctx context.Context, id int64) (*models.Lottery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lottery), args.Error(1)
}

func (m *MockLotteryRepository) GetActive(ctx context.Context) (*models.Lottery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lottery), args.Error(1)
}

func (m *MockLotteryRepository) AddEntry(ctx context.Context, lotteryID, discordID int64) error {
	args := m.Called(ctx, lotteryID, discordID)
	return args.Error(0)
}

func (m *MockLotteryRepository) GetEntries(ctx context.Context, lotteryID int64) ([]int64, error) {
	args := m.Called(ctx, lotteryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockLotteryRepository) AddToPot(ctx context.Context, lotteryID, amount int64) error {
	args := m.Called(ctx, lotteryID, amount)
	return args.Error(0)
}

func (m *MockLotteryRepository) Claim(ctx context.Context, lotteryID int64) (bool, error) {
	args := m.Called(ctx, lotteryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLotteryRepository) SetWinner(ctx context.Context, lotteryID int64, winnerID *int64) error {
	args := m.Called(ctx, lotteryID, winnerID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories
// are plain fields set with SetRepositories, so tests configure
// expectations on the repos directly.
type MockUnitOfWork struct {
	mock.Mock

	userRepo    UserRepository
	historyRepo BalanceHistoryRepository
	lotteryRepo LotteryRepository
	eventBus    EventPublisher
}

// SetRepositories wires the repositories the unit of work hands out.
// A nil eventBus is replaced with a publisher that accepts anything.
func (m *MockUnitOfWork) SetRepositories(userRepo UserRepository, historyRepo BalanceHistoryRepository, lotteryRepo LotteryRepository, eventBus EventPublisher) {
	if eventBus == nil {
		relaxed := new(MockEventPublisher)
		relaxed.On("Publish", mock.Anything).Maybe()
		eventBus = relaxed
	}
	m.userRepo = userRepo
	m.historyRepo = historyRepo
	m.lotteryRepo = lotteryRepo
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.historyRepo
}

func (m *MockUnitOfWork) LotteryRepository() LotteryRepository {
	return m.lotteryRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
