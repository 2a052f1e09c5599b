package repository

import (
	"context"
	"testing"

	"kudos/models"
	"kudos/repository/testutil"
	"kudos/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewUserRepository(testDB.DB)

	created, err := repo.Create(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "U1", created.UserID)
	assert.Equal(t, 0, created.TotalPoints)
	assert.Equal(t, 0, created.DailyPointsGiven)

	fetched, err := repo.GetByUserID(ctx, "U1")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, "U1", fetched.UserID)
}

func TestUserRepository_GetByUserID_NotFound(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewUserRepository(testDB.DB)

	user, err := repo.GetByUserID(ctx, "UNOBODY")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_GetByUserIDs(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewUserRepository(testDB.DB)

	_, err := repo.Create(ctx, "U1")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "U2")
	require.NoError(t, err)

	// Unknown IDs are simply absent from the result
	users, err := repo.GetByUserIDs(ctx, []string{"U1", "U2", "UNOBODY"})
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserRepository_UpsertProfile_PreservesCounters(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewUserRepository(testDB.DB)

	_, err := repo.Create(ctx, "U1")
	require.NoError(t, err)
	require.NoError(t, repo.IncrementTotalPoints(ctx, "U1", 3, 0))
	require.NoError(t, repo.IncrementDailyGiven(ctx, "U1", 2, 0))

	profile := &models.Profile{
		TeamID:      "T1",
		UserName:    "jdoe",
		RealName:    "Jane Doe",
		DisplayName: "jane",
		Email:       "jane@example.com",
	}
	require.NoError(t, repo.UpsertProfile(ctx, "U1", profile))

	user, err := repo.GetByUserID(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "jane", user.DisplayName)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, 3, user.TotalPoints)
	assert.Equal(t, 2, user.DailyPointsGiven)
}

func TestUserRepository_UpsertProfile_CreatesRow(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewUserRepository(testDB.DB)

	profile := &models.Profile{TeamID: "T1", UserName: "jdoe", RealName: "Jane Doe", DisplayName: "jane", Email: "jane@example.com"}
	require.NoError(t, repo.UpsertProfile(ctx, "UNEW", profile))

	user, err := repo.GetByUserID(ctx, "UNEW")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "T1", user.TeamID)
	assert.Equal(t, 0, user.TotalPoints)
}

func TestUserRepository_IncrementDailyGiven_Guarded(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewUserRepository(testDB.DB)

	_, err := repo.Create(ctx, "U1")
	require.NoError(t, err)

	// Matching observed value goes through
	require.NoError(t, repo.IncrementDailyGiven(ctx, "U1", 2, 0))

	user, err := repo.GetByUserID(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, 2, user.DailyPointsGiven)

	// A stale observed value means a concurrent writer won the race
	err = repo.IncrementDailyGiven(ctx, "U1", 1, 0)
	assert.ErrorIs(t, err, service.ErrConflict)

	user, err = repo.GetByUserID(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, 2, user.DailyPointsGiven)
}

func TestUserRepository_IncrementTotalPoints_Guarded(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewUserRepository(testDB.DB)

	_, err := repo.Create(ctx, "U1")
	require.NoError(t, err)

	require.NoError(t, repo.IncrementTotalPoints(ctx, "U1", 1, 0))

	err = repo.IncrementTotalPoints(ctx, "U1", 1, 0)
	assert.ErrorIs(t, err, service.ErrConflict)

	user, err := repo.GetByUserID(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, 1, user.TotalPoints)
}

func TestUserRepository_ResetDailyGiven(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewUserRepository(testDB.DB)

	_, err := repo.Create(ctx, "U1")
	require.NoError(t, err)
	require.NoError(t, repo.IncrementDailyGiven(ctx, "U1", 4, 0))

	require.NoError(t, repo.ResetDailyGiven(ctx, "U1", "2026-09-01"))

	user, err := repo.GetByUserID(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, 0, user.DailyPointsGiven)
	assert.Equal(t, "2026-09-01", user.LastResetDate)
}

func TestUserRepository_ResetDailyGiven_UnknownUser(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewUserRepository(testDB.DB)

	err := repo.ResetDailyGiven(ctx, "UNOBODY", "2026-09-01")
	assert.Error(t, err)
}

func TestUserRepository_GetAll(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewUserRepository(testDB.DB)

	for _, userID := range []string{"U1", "U2", "U3"} {
		_, err := repo.Create(ctx, userID)
		require.NoError(t, err)
	}

	users, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}
