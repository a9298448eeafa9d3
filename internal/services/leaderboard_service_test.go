package services

import (
	"context"
	"testing"
	"time"

	"github.com/priorart-academy/challenge-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newLeaderboardServiceFixture() (LeaderboardService, *mockRepository, *mockCache) {
	repo := newMockRepository()
	cacheService := newMockCache()
	svc := NewLeaderboardService(repo, cacheService, testLogger())
	return svc, repo, cacheService
}

func leaderboardData() ([]*models.User, []*models.SubChallenge) {
	trainees := []*models.User{
		{ID: "trainee-1", FullName: "Alice Kim", Role: models.RoleTrainee},
		{ID: "trainee-2", FullName: "Bob Tran", Role: models.RoleTrainee},
	}

	publishedAt := time.Now().Add(-time.Hour)
	published := testSubChallenge(1)
	published.ScoresPublishedAt = &publishedAt
	published.Submissions = []models.Submission{
		{
			ID: 1, SubChallengeID: 10, TraineeID: "trainee-1", SubmittedAt: time.Now().Add(-2 * time.Hour),
			Results: []models.SubmittedResult{
				{ID: "a", Value: "US-1", Type: models.ResultTypePatent, TraineeTier: models.TierOne},
			},
			Evaluation: &models.Evaluation{
				EvaluatorID: "eval-1",
				ResultEvaluations: []models.ResultEvaluation{
					{ResultID: "a", EvaluatorTier: models.TierOne},
				},
				EvaluatedAt: time.Now(),
			},
		},
	}

	unpublished := testSubChallenge(1)
	unpublished.ID = 11
	unpublished.Submissions = []models.Submission{
		{
			ID: 2, SubChallengeID: 11, TraineeID: "trainee-2", SubmittedAt: time.Now().Add(-2 * time.Hour),
			Results: []models.SubmittedResult{
				{ID: "b", Value: "US-2", Type: models.ResultTypePatent, TraineeTier: models.TierTwo},
			},
			Evaluation: &models.Evaluation{
				EvaluatorID: "eval-1",
				ResultEvaluations: []models.ResultEvaluation{
					{ResultID: "b", EvaluatorTier: models.TierTwo},
				},
				EvaluatedAt: time.Now(),
			},
		},
	}

	return trainees, []*models.SubChallenge{published, unpublished}
}

func TestLeaderboardService_TraineeSeesOnlyPublished(t *testing.T) {
	svc, repo, _ := newLeaderboardServiceFixture()

	trainees, subChallenges := leaderboardData()
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.subChallenge.On("GetByChallengeWithSubmissions", mock.Anything, uint(1)).Return(subChallenges, nil)
	repo.user.On("GetByIDs", mock.Anything, []string{"trainee-1", "trainee-2"}).Return(trainees, nil)

	resp, err := svc.GetLeaderboard(context.Background(), 1, "trainee-1")

	require.NoError(t, err)
	assert.False(t, resp.ManagerView)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "trainee-1", resp.Entries[0].TraineeID)
	assert.Equal(t, 20, resp.Entries[0].TotalScore)
	// trainee-2's only score sits in the unpublished sub-challenge
	assert.Equal(t, 0, resp.Entries[1].TotalScore)
}

func TestLeaderboardService_ManagerSeesUnpublished(t *testing.T) {
	svc, repo, _ := newLeaderboardServiceFixture()

	trainees, subChallenges := leaderboardData()
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.subChallenge.On("GetByChallengeWithSubmissions", mock.Anything, uint(1)).Return(subChallenges, nil)
	repo.user.On("GetByIDs", mock.Anything, []string{"trainee-1", "trainee-2"}).Return(trainees, nil)

	resp, err := svc.GetLeaderboard(context.Background(), 1, "mgr-1")

	require.NoError(t, err)
	assert.True(t, resp.ManagerView)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, 20, resp.Entries[0].TotalScore)
	assert.Equal(t, 10, resp.Entries[1].TotalScore)
}

func TestLeaderboardService_CachesResult(t *testing.T) {
	svc, repo, cacheService := newLeaderboardServiceFixture()

	trainees, subChallenges := leaderboardData()
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.subChallenge.On("GetByChallengeWithSubmissions", mock.Anything, uint(1)).Return(subChallenges, nil).Once()
	repo.user.On("GetByIDs", mock.Anything, []string{"trainee-1", "trainee-2"}).Return(trainees, nil).Once()

	first, err := svc.GetLeaderboard(context.Background(), 1, "trainee-1")
	require.NoError(t, err)
	assert.Contains(t, cacheService.store, "leaderboard:challenge:1:published")

	second, err := svc.GetLeaderboard(context.Background(), 1, "trainee-1")
	require.NoError(t, err)
	assert.Equal(t, first.Entries, second.Entries)

	repo.subChallenge.AssertExpectations(t)
}

func TestLeaderboardService_TiedTraineesKeepRosterOrder(t *testing.T) {
	svc, repo, _ := newLeaderboardServiceFixture()

	// The store may return rows in any order for an IN query; a tie on
	// total score must still rank trainees in roster order.
	reversed := []*models.User{
		{ID: "trainee-2", FullName: "Bob Tran", Role: models.RoleTrainee},
		{ID: "trainee-1", FullName: "Alice Kim", Role: models.RoleTrainee},
	}
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.subChallenge.On("GetByChallengeWithSubmissions", mock.Anything, uint(1)).Return([]*models.SubChallenge{}, nil)
	repo.user.On("GetByIDs", mock.Anything, []string{"trainee-1", "trainee-2"}).Return(reversed, nil)

	resp, err := svc.GetLeaderboard(context.Background(), 1, "mgr-1")

	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "trainee-1", resp.Entries[0].TraineeID)
	assert.Equal(t, "trainee-2", resp.Entries[1].TraineeID)
}

func TestLeaderboardService_SubChallengePublished(t *testing.T) {
	svc, repo, _ := newLeaderboardServiceFixture()

	trainees, subChallenges := leaderboardData()
	repo.subChallenge.On("GetByIDWithSubmissions", mock.Anything, uint(10)).Return(subChallenges[0], nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.user.On("GetByIDs", mock.Anything, []string{"trainee-1", "trainee-2"}).Return(trainees, nil)

	resp, err := svc.GetSubChallengeLeaderboard(context.Background(), 10, "trainee-1")

	require.NoError(t, err)
	assert.False(t, resp.ManagerView)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "trainee-1", resp.Entries[0].TraineeID)
	assert.Equal(t, 20, resp.Entries[0].TotalScore)
}

func TestLeaderboardService_SubChallengeHiddenBeforePublication(t *testing.T) {
	svc, repo, _ := newLeaderboardServiceFixture()

	_, subChallenges := leaderboardData()
	repo.subChallenge.On("GetByIDWithSubmissions", mock.Anything, uint(11)).Return(subChallenges[1], nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)

	_, err := svc.GetSubChallengeLeaderboard(context.Background(), 11, "trainee-1")

	assert.ErrorIs(t, err, ErrScoresNotPublished)
}

func TestLeaderboardService_SubChallengeEvaluatorSeesUnpublished(t *testing.T) {
	svc, repo, _ := newLeaderboardServiceFixture()

	trainees, subChallenges := leaderboardData()
	repo.subChallenge.On("GetByIDWithSubmissions", mock.Anything, uint(11)).Return(subChallenges[1], nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.user.On("GetByIDs", mock.Anything, []string{"trainee-1", "trainee-2"}).Return(trainees, nil)

	resp, err := svc.GetSubChallengeLeaderboard(context.Background(), 11, "eval-1")

	require.NoError(t, err)
	assert.True(t, resp.ManagerView)
	assert.Equal(t, 10, resp.Entries[0].TotalScore)
}

func TestLeaderboardService_OutsiderDenied(t *testing.T) {
	svc, repo, _ := newLeaderboardServiceFixture()

	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.user.On("HasRole", mock.Anything, "stranger", models.RoleAdmin).Return(false, nil)

	_, err := svc.GetLeaderboard(context.Background(), 1, "stranger")

	assert.ErrorIs(t, err, ErrChallengeAccessDenied)
}
