package services

import (
	"context"
	"testing"
	"time"

	"github.com/priorart-academy/challenge-service/internal/events"
	"github.com/priorart-academy/challenge-service/internal/models"
	"github.com/priorart-academy/challenge-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newEvaluationServiceFixture() (EvaluationService, *mockRepository, *mockCache, *events.MockEventPublisher) {
	repo := newMockRepository()
	cacheService := newMockCache()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewEvaluationService(repo, cacheService, publisher, testLogger(), validator.New())
	return svc, repo, cacheService, publisher
}

func ungradedSubmission() *models.Submission {
	return &models.Submission{
		ID:             100,
		SubChallengeID: 10,
		TraineeID:      "trainee-1",
		SubmittedAt:    time.Now().Add(-time.Hour),
		Results:        testResults(),
	}
}

func TestEvaluationService_SaveEvaluation(t *testing.T) {
	svc, repo, cacheService, publisher := newEvaluationServiceFixture()

	cacheService.store["leaderboard:challenge:1:full"] = []byte("{}")

	submission := ungradedSubmission()
	repo.submission.On("GetByID", mock.Anything, uint(100)).Return(submission, nil)
	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(testSubChallenge(1), nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.user.On("GetByID", mock.Anything, "eval-1").
		Return(&models.User{ID: "eval-1", Role: models.RoleEvaluator}, nil)
	repo.submission.On("Update", mock.Anything, submission).Return(nil)

	result, err := svc.SaveEvaluation(context.Background(), &SaveEvaluationRequest{
		SubmissionID: 100,
		ResultEvaluations: []models.ResultEvaluation{
			{ResultID: "r1", EvaluatorTier: models.TierOne},
			{ResultID: "r2", EvaluatorTier: models.TierThree},
		},
	}, "eval-1")

	require.NoError(t, err)
	assert.Equal(t, 20, result.Score)
	assert.Equal(t, "eval-1", result.Evaluation.EvaluatorID)
	assert.Empty(t, cacheService.store)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventEvaluationCompleted, published[0].Type)
}

func TestEvaluationService_SaveEvaluation_PermissionDenied(t *testing.T) {
	svc, repo, _, _ := newEvaluationServiceFixture()

	repo.submission.On("GetByID", mock.Anything, uint(100)).Return(ungradedSubmission(), nil)
	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(testSubChallenge(1), nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.user.On("GetByID", mock.Anything, "trainee-2").
		Return(&models.User{ID: "trainee-2", Role: models.RoleTrainee}, nil)

	_, err := svc.SaveEvaluation(context.Background(), &SaveEvaluationRequest{
		SubmissionID: 100,
		ResultEvaluations: []models.ResultEvaluation{
			{ResultID: "r1", EvaluatorTier: models.TierOne},
		},
	}, "trainee-2")

	assert.True(t, IsUnauthorized(err))
}

func TestEvaluationService_SaveEvaluation_ManagerFallback(t *testing.T) {
	svc, repo, _, _ := newEvaluationServiceFixture()

	// No explicit evaluators: responsibility falls back to managers.
	subChallenge := testSubChallenge(1)
	subChallenge.EvaluatorIDs = nil

	submission := ungradedSubmission()
	repo.submission.On("GetByID", mock.Anything, uint(100)).Return(submission, nil)
	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(subChallenge, nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.user.On("GetByID", mock.Anything, "mgr-1").
		Return(&models.User{ID: "mgr-1", Role: models.RoleManager}, nil)
	repo.submission.On("Update", mock.Anything, submission).Return(nil)

	result, err := svc.SaveEvaluation(context.Background(), &SaveEvaluationRequest{
		SubmissionID: 100,
		ResultEvaluations: []models.ResultEvaluation{
			{ResultID: "r1", EvaluatorTier: models.TierTwo},
		},
	}, "mgr-1")

	require.NoError(t, err)
	// Trainee said tier_1, evaluator said tier_2: zero marking scores 0.
	assert.Equal(t, 0, result.Score)
}

func TestEvaluationService_SaveEvaluation_UnknownResult(t *testing.T) {
	svc, repo, _, _ := newEvaluationServiceFixture()

	repo.submission.On("GetByID", mock.Anything, uint(100)).Return(ungradedSubmission(), nil)
	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(testSubChallenge(1), nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.user.On("GetByID", mock.Anything, "eval-1").
		Return(&models.User{ID: "eval-1", Role: models.RoleEvaluator}, nil)

	_, err := svc.SaveEvaluation(context.Background(), &SaveEvaluationRequest{
		SubmissionID: 100,
		ResultEvaluations: []models.ResultEvaluation{
			{ResultID: "nope", EvaluatorTier: models.TierOne},
		},
	}, "eval-1")

	assert.ErrorIs(t, err, ErrEvaluationUnknownResult)
}

func TestEvaluationService_SaveEvaluation_AlreadyPublished(t *testing.T) {
	svc, repo, _, _ := newEvaluationServiceFixture()

	publishedAt := time.Now().Add(-time.Hour)
	subChallenge := testSubChallenge(1)
	subChallenge.ScoresPublishedAt = &publishedAt

	repo.submission.On("GetByID", mock.Anything, uint(100)).Return(ungradedSubmission(), nil)
	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(subChallenge, nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.user.On("GetByID", mock.Anything, "eval-1").
		Return(&models.User{ID: "eval-1", Role: models.RoleEvaluator}, nil)

	_, err := svc.SaveEvaluation(context.Background(), &SaveEvaluationRequest{
		SubmissionID: 100,
		ResultEvaluations: []models.ResultEvaluation{
			{ResultID: "r1", EvaluatorTier: models.TierOne},
		},
	}, "eval-1")

	assert.ErrorIs(t, err, ErrScoresAlreadyPublished)
}

func TestEvaluationService_SaveEvaluation_EndedChallenge(t *testing.T) {
	svc, repo, _, _ := newEvaluationServiceFixture()

	endedAt := time.Now().Add(-time.Hour)
	challenge := testChallenge()
	challenge.EndedAt = &endedAt

	repo.submission.On("GetByID", mock.Anything, uint(100)).Return(ungradedSubmission(), nil)
	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(testSubChallenge(1), nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(challenge, nil)
	repo.user.On("GetByID", mock.Anything, "eval-1").
		Return(&models.User{ID: "eval-1", Role: models.RoleEvaluator}, nil)

	_, err := svc.SaveEvaluation(context.Background(), &SaveEvaluationRequest{
		SubmissionID: 100,
		ResultEvaluations: []models.ResultEvaluation{
			{ResultID: "r1", EvaluatorTier: models.TierOne},
		},
	}, "eval-1")

	assert.ErrorIs(t, err, ErrChallengeEnded)
}

func TestEvaluationService_SaveEvaluation_ReportScoreRejectedWhenDisabled(t *testing.T) {
	svc, repo, _, _ := newEvaluationServiceFixture()

	repo.submission.On("GetByID", mock.Anything, uint(100)).Return(ungradedSubmission(), nil)
	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(testSubChallenge(1), nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.user.On("GetByID", mock.Anything, "eval-1").
		Return(&models.User{ID: "eval-1", Role: models.RoleEvaluator}, nil)

	reportScore := 15.0
	_, err := svc.SaveEvaluation(context.Background(), &SaveEvaluationRequest{
		SubmissionID: 100,
		ResultEvaluations: []models.ResultEvaluation{
			{ResultID: "r1", EvaluatorTier: models.TierOne},
		},
		ReportScore: &reportScore,
	}, "eval-1")

	assert.True(t, IsBusinessRule(err))
}

func TestEvaluationService_GetDuplicateOverview(t *testing.T) {
	svc, repo, _, publisher := newEvaluationServiceFixture()

	base := time.Now().Add(-2 * time.Hour)
	submissions := []*models.Submission{
		{
			ID: 1, SubChallengeID: 10, TraineeID: "trainee-1", SubmittedAt: base,
			Results: []models.SubmittedResult{
				{ID: "a", Value: "US-1,234,567", Type: models.ResultTypePatent, TraineeTier: models.TierOne},
			},
		},
		{
			ID: 2, SubChallengeID: 10, TraineeID: "trainee-2", SubmittedAt: base.Add(time.Minute),
			Results: []models.SubmittedResult{
				{ID: "b", Value: "us1234567", Type: models.ResultTypePatent, TraineeTier: models.TierTwo},
				{ID: "c", Value: "EP-999", Type: models.ResultTypePatent, TraineeTier: models.TierOne},
			},
		},
	}

	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(testSubChallenge(1), nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.user.On("GetByID", mock.Anything, "eval-1").
		Return(&models.User{ID: "eval-1", Role: models.RoleEvaluator}, nil)
	repo.submission.On("GetBySubChallenge", mock.Anything, uint(10)).Return(submissions, nil)

	overview, err := svc.GetDuplicateOverview(context.Background(), 10, "eval-1")

	require.NoError(t, err)
	require.Len(t, overview.Groups, 1)
	group := overview.Groups[0]
	assert.Equal(t, "us1234567", group.NormalizedValue)
	require.Len(t, group.Submitters, 2)
	assert.Equal(t, "trainee-1", group.Submitters[0].TraineeID)

	// Reading the overview must not notify anyone; duplicates are
	// flagged when the colliding submission arrives.
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestEvaluationService_PreviewScore(t *testing.T) {
	svc, repo, _, _ := newEvaluationServiceFixture()

	submission := ungradedSubmission()
	submission.Evaluation = &models.Evaluation{
		EvaluatorID: "eval-1",
		ResultEvaluations: []models.ResultEvaluation{
			{ResultID: "r1", EvaluatorTier: models.TierOne},
		},
		EvaluatedAt: time.Now(),
	}

	repo.submission.On("GetByID", mock.Anything, uint(100)).Return(submission, nil)
	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(testSubChallenge(1), nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.user.On("GetByID", mock.Anything, "eval-1").
		Return(&models.User{ID: "eval-1", Role: models.RoleEvaluator}, nil)

	result, err := svc.PreviewScore(context.Background(), 100, "eval-1")

	require.NoError(t, err)
	assert.Equal(t, 20, result.Score)
}
