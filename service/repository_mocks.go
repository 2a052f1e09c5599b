package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kudos/models"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUserIDs(ctx context.Context, userIDs []string) ([]*models.User, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpsertProfile(ctx context.Context, userID string, profile *models.Profile) error {
	args := m.Called(ctx, userID, profile)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementDailyGiven(ctx context.Context, userID string, delta, observed int) error {
	args := m.Called(ctx, userID, delta, observed)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementTotalPoints(ctx context.Context, userID string, delta, observed int) error {
	args := m.Called(ctx, userID, delta, observed)
	return args.Error(0)
}

func (m *MockUserRepository) ResetDailyGiven(ctx context.Context, userID string, date string) error {
	args := m.Called(ctx, userID, date)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByParticipant(ctx context.Context, userID string) ([]*models.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

// MockWorkspaceRepository is a mock implementation of WorkspaceRepository
type MockWorkspaceRepository struct {
	mock.Mock
}

func (m *MockWorkspaceRepository) GetByTeamID(ctx context.Context, teamID string) (*models.Workspace, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Workspace), args.Error(1)
}

// MockProfileSource is a mock implementation of ProfileSource
type MockProfileSource struct {
	mock.Mock
}

func (m *MockProfileSource) FetchProfile(ctx context.Context, teamID, userID string) (*models.Profile, error) {
	args := m.Called(ctx, teamID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

// MockChannelJoiner is a mock implementation of ChannelJoiner
type MockChannelJoiner struct {
	mock.Mock
}

func (m *MockChannelJoiner) JoinAllChannels(ctx context.Context, teamID string) error {
	args := m.Called(ctx, teamID)
	return args.Error(0)
}

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) AddPoints(ctx context.Context, fromUser string, toUsers []string, message string) (*models.LedgerResult, error) {
	args := m.Called(ctx, fromUser, toUsers, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerResult), args.Error(1)
}

// MockDirectoryService is a mock implementation of DirectoryService
type MockDirectoryService struct {
	mock.Mock
}

func (m *MockDirectoryService) EnsureProfile(ctx context.Context, teamID, userID string) (*models.User, error) {
	args := m.Called(ctx, teamID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockDirectoryService) RefreshProfile(ctx context.Context, teamID, userID string) (*models.User, error) {
	args := m.Called(ctx, teamID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockHistoryService is a mock implementation of HistoryService
type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) GetHistory(ctx context.Context, teamID, userID string) ([]*models.TransactionView, error) {
	args := m.Called(ctx, teamID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TransactionView), args.Error(1)
}

// MockResetService is a mock implementation of ResetService
type MockResetService struct {
	mock.Mock
}

func (m *MockResetService) ResetAll(ctx context.Context, today string) (int, error) {
	args := m.Called(ctx, today)
	return args.Int(0), args.Error(1)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories
// are injected with SetRepositories rather than mocked per call.
type MockUnitOfWork struct {
	mock.Mock
	userRepo        UserRepository
	transactionRepo TransactionRepository
}

// SetRepositories wires the repositories this unit of work hands out
func (m *MockUnitOfWork) SetRepositories(users UserRepository, transactions TransactionRepository) {
	m.userRepo = users
	m.transactionRepo = transactions
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

func (m *MockUnitOfWork) TransactionRepository() TransactionRepository {
	return m.transactionRepo
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
