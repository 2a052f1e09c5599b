package service

import (
	"context"
	"errors"
	"testing"

	"kudos/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestLedgerService_AddPoints_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockTransactionRepo := new(MockTransactionRepository)
	mockUoW.SetRepositories(mockUserRepo, mockTransactionRepo)

	service := NewLedgerService(mockFactory)

	sender := &models.User{UserID: "U1", DailyPointsGiven: 2}
	recipient := &models.User{UserID: "U2", TotalPoints: 7}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByUserID", ctx, "U1").Return(sender, nil)
	mockUserRepo.On("GetByUserID", ctx, "U2").Return(recipient, nil)
	mockUserRepo.On("IncrementDailyGiven", ctx, "U1", 1, 2).Return(nil)
	mockUserRepo.On("IncrementTotalPoints", ctx, "U2", 1, 7).Return(nil)

	mockTransactionRepo.On("Create", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.FromUser == "U1" &&
			len(tx.ToUsers) == 1 && tx.ToUsers[0] == "U2" &&
			tx.Points == PointsPerRecipient &&
			tx.Message == "thanks!" &&
			tx.TransactionID != ""
	})).Return(nil)

	result, err := service.AddPoints(ctx, "U1", []string{"U2"}, "thanks!")

	assert.NoError(t, err)
	assert.Equal(t, 3, result.DailyPointsGiven)
	assert.NotEmpty(t, result.TransactionID)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockTransactionRepo.AssertExpectations(t)
}

func TestLedgerService_AddPoints_SelfMentionOnly(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewLedgerService(mockFactory)

	result, err := service.AddPoints(ctx, "U1", []string{"U1", "U1"}, "thanks me")

	assert.ErrorIs(t, err, ErrSelfMention)
	assert.Equal(t, 0, result.DailyPointsGiven)

	// The ledger is never touched when the recipient set is empty
	mockFactory.AssertNotCalled(t, "Create")
}

func TestLedgerService_AddPoints_SenderExcludedAndDeduplicated(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockTransactionRepo := new(MockTransactionRepository)
	mockUoW.SetRepositories(mockUserRepo, mockTransactionRepo)

	service := NewLedgerService(mockFactory)

	sender := &models.User{UserID: "U1", DailyPointsGiven: 0}
	recipient2 := &models.User{UserID: "U2", TotalPoints: 0}
	recipient3 := &models.User{UserID: "U3", TotalPoints: 4}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByUserID", ctx, "U1").Return(sender, nil)
	mockUserRepo.On("GetByUserID", ctx, "U2").Return(recipient2, nil)
	mockUserRepo.On("GetByUserID", ctx, "U3").Return(recipient3, nil)
	// Two distinct recipients remain after the sender and the duplicate
	// are dropped
	mockUserRepo.On("IncrementDailyGiven", ctx, "U1", 2, 0).Return(nil)
	mockUserRepo.On("IncrementTotalPoints", ctx, "U2", 1, 0).Return(nil)
	mockUserRepo.On("IncrementTotalPoints", ctx, "U3", 1, 4).Return(nil)

	mockTransactionRepo.On("Create", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
		return len(tx.ToUsers) == 2 && tx.ToUsers[0] == "U2" && tx.ToUsers[1] == "U3"
	})).Return(nil)

	result, err := service.AddPoints(ctx, "U1", []string{"U2", "U1", "U3", "U2"}, "thanks both")

	assert.NoError(t, err)
	assert.Equal(t, 2, result.DailyPointsGiven)

	mockUserRepo.AssertExpectations(t)
	mockTransactionRepo.AssertExpectations(t)
}

func TestLedgerService_AddPoints_QuotaExceeded(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockTransactionRepo := new(MockTransactionRepository)
	mockUoW.SetRepositories(mockUserRepo, mockTransactionRepo)

	service := NewLedgerService(mockFactory)

	// 3 already given, 3 recipients would make 6 > 5
	sender := &models.User{UserID: "U1", DailyPointsGiven: 3}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByUserID", ctx, "U1").Return(sender, nil)

	result, err := service.AddPoints(ctx, "U1", []string{"U2", "U3", "U4"}, "thanks all")

	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, 3, result.DailyPointsGiven)

	mockUoW.AssertNotCalled(t, "Commit")
	mockUserRepo.AssertNotCalled(t, "IncrementDailyGiven")
	mockUserRepo.AssertNotCalled(t, "IncrementTotalPoints")
	mockTransactionRepo.AssertNotCalled(t, "Create")
}

func TestLedgerService_AddPoints_ExactQuotaAllowed(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockTransactionRepo := new(MockTransactionRepository)
	mockUoW.SetRepositories(mockUserRepo, mockTransactionRepo)

	service := NewLedgerService(mockFactory)

	// 4 already given plus 1 recipient lands exactly on the quota
	sender := &models.User{UserID: "U1", DailyPointsGiven: 4}
	recipient := &models.User{UserID: "U2"}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByUserID", ctx, "U1").Return(sender, nil)
	mockUserRepo.On("GetByUserID", ctx, "U2").Return(recipient, nil)
	mockUserRepo.On("IncrementDailyGiven", ctx, "U1", 1, 4).Return(nil)
	mockUserRepo.On("IncrementTotalPoints", ctx, "U2", 1, 0).Return(nil)
	mockTransactionRepo.On("Create", ctx, mock.Anything).Return(nil)

	result, err := service.AddPoints(ctx, "U1", []string{"U2"}, "thanks")

	assert.NoError(t, err)
	assert.Equal(t, DailyQuota, result.DailyPointsGiven)
}

func TestLedgerService_AddPoints_CreatesUnknownUsers(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockTransactionRepo := new(MockTransactionRepository)
	mockUoW.SetRepositories(mockUserRepo, mockTransactionRepo)

	service := NewLedgerService(mockFactory)

	newSender := &models.User{UserID: "U1"}
	newRecipient := &models.User{UserID: "U2"}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByUserID", ctx, "U1").Return(nil, nil)
	mockUserRepo.On("Create", ctx, "U1").Return(newSender, nil)
	mockUserRepo.On("GetByUserID", ctx, "U2").Return(nil, nil)
	mockUserRepo.On("Create", ctx, "U2").Return(newRecipient, nil)
	mockUserRepo.On("IncrementDailyGiven", ctx, "U1", 1, 0).Return(nil)
	mockUserRepo.On("IncrementTotalPoints", ctx, "U2", 1, 0).Return(nil)
	mockTransactionRepo.On("Create", ctx, mock.Anything).Return(nil)

	result, err := service.AddPoints(ctx, "U1", []string{"U2"}, "thanks")

	assert.NoError(t, err)
	assert.Equal(t, 1, result.DailyPointsGiven)

	mockUserRepo.AssertExpectations(t)
}

func TestLedgerService_AddPoints_ConflictExhaustsRetries(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockTransactionRepo := new(MockTransactionRepository)
	mockUoW.SetRepositories(mockUserRepo, mockTransactionRepo)

	service := NewLedgerService(mockFactory)

	sender := &models.User{UserID: "U1", DailyPointsGiven: 1}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByUserID", ctx, "U1").Return(sender, nil)
	// A concurrent transfer keeps winning the race on the sender counter
	mockUserRepo.On("IncrementDailyGiven", ctx, "U1", 1, 1).Return(ErrConflict)

	result, err := service.AddPoints(ctx, "U1", []string{"U2"}, "thanks")

	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, result.DailyPointsGiven)

	// The whole read-decide-write cycle ran exactly three times
	mockUserRepo.AssertNumberOfCalls(t, "IncrementDailyGiven", 3)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestLedgerService_AddPoints_ConflictThenSuccess(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockTransactionRepo := new(MockTransactionRepository)
	mockUoW.SetRepositories(mockUserRepo, mockTransactionRepo)

	service := NewLedgerService(mockFactory)

	sender := &models.User{UserID: "U1", DailyPointsGiven: 1}
	recipient := &models.User{UserID: "U2", TotalPoints: 2}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByUserID", ctx, "U1").Return(sender, nil)
	mockUserRepo.On("GetByUserID", ctx, "U2").Return(recipient, nil)
	// First attempt loses the race, second goes through
	mockUserRepo.On("IncrementDailyGiven", ctx, "U1", 1, 1).Return(ErrConflict).Once()
	mockUserRepo.On("IncrementDailyGiven", ctx, "U1", 1, 1).Return(nil).Once()
	mockUserRepo.On("IncrementTotalPoints", ctx, "U2", 1, 2).Return(nil)
	mockTransactionRepo.On("Create", ctx, mock.Anything).Return(nil)

	result, err := service.AddPoints(ctx, "U1", []string{"U2"}, "thanks")

	assert.NoError(t, err)
	assert.Equal(t, 2, result.DailyPointsGiven)
	assert.NotEmpty(t, result.TransactionID)

	mockUserRepo.AssertExpectations(t)
}

func TestLedgerService_AddPoints_StorageErrorNotRetried(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockTransactionRepo := new(MockTransactionRepository)
	mockUoW.SetRepositories(mockUserRepo, mockTransactionRepo)

	service := NewLedgerService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByUserID", ctx, "U1").Return(nil, errors.New("connection refused"))

	result, err := service.AddPoints(ctx, "U1", []string{"U2"}, "thanks")

	assert.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Equal(t, 0, result.DailyPointsGiven)

	mockUserRepo.AssertNumberOfCalls(t, "GetByUserID", 1)
}
