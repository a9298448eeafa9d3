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
	"gorm.io/gorm"
)

func newSubmissionServiceFixture() (SubmissionService, *mockRepository, *events.MockEventPublisher) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewSubmissionService(repo, publisher, testLogger(), validator.New())
	return svc, repo, publisher
}

func testResults() []models.SubmittedResult {
	return []models.SubmittedResult{
		{ID: "r1", Value: "US-1,234,567", Type: models.ResultTypePatent, TraineeTier: models.TierOne},
		{ID: "r2", Value: "https://example.org/paper", Type: models.ResultTypeLiterature, TraineeTier: models.TierTwo},
	}
}

func TestSubmissionService_Submit(t *testing.T) {
	svc, repo, publisher := newSubmissionServiceFixture()

	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(testSubChallenge(1), nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.submission.On("ExistsForTrainee", mock.Anything, uint(10), "trainee-1").Return(false, nil)
	created := &models.Submission{}
	repo.submission.On("Create", mock.Anything, mock.AnythingOfType("*models.Submission")).
		Run(func(args mock.Arguments) {
			sub := args.Get(1).(*models.Submission)
			sub.ID = 100
			*created = *sub
		}).
		Return(nil)
	repo.submission.On("GetBySubChallenge", mock.Anything, uint(10)).
		Return([]*models.Submission{created}, nil)

	resp, err := svc.Submit(context.Background(), &SubmitRequest{
		SubChallengeID: 10,
		Results:        testResults(),
	}, "trainee-1")

	require.NoError(t, err)
	assert.Equal(t, uint(100), resp.ID)
	assert.Equal(t, "trainee-1", resp.TraineeID)
	assert.False(t, resp.ScoreVisible)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventSubmissionReceived, published[0].Type)
}

func TestSubmissionService_Submit_FlagsDuplicateAgainstEarlierSubmission(t *testing.T) {
	svc, repo, publisher := newSubmissionServiceFixture()

	earlier := &models.Submission{
		ID: 99, SubChallengeID: 10, TraineeID: "trainee-2",
		SubmittedAt: time.Now().Add(-time.Hour),
		Results: []models.SubmittedResult{
			{ID: "x1", Value: "us1234567", Type: models.ResultTypePatent, TraineeTier: models.TierOne},
		},
	}

	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(testSubChallenge(1), nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.submission.On("ExistsForTrainee", mock.Anything, uint(10), "trainee-1").Return(false, nil)
	created := &models.Submission{}
	repo.submission.On("Create", mock.Anything, mock.AnythingOfType("*models.Submission")).
		Run(func(args mock.Arguments) {
			sub := args.Get(1).(*models.Submission)
			sub.ID = 100
			*created = *sub
		}).
		Return(nil)
	repo.submission.On("GetBySubChallenge", mock.Anything, uint(10)).
		Return([]*models.Submission{earlier, created}, nil)

	_, err := svc.Submit(context.Background(), &SubmitRequest{
		SubChallengeID: 10,
		Results:        testResults(),
	}, "trainee-1")
	require.NoError(t, err)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, events.EventSubmissionReceived, published[0].Type)
	assert.Equal(t, events.EventDuplicateFlagged, published[1].Type)
}

func TestSubmissionService_Submit_NotEnrolled(t *testing.T) {
	svc, repo, _ := newSubmissionServiceFixture()

	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(testSubChallenge(1), nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)

	_, err := svc.Submit(context.Background(), &SubmitRequest{
		SubChallengeID: 10,
		Results:        testResults(),
	}, "stranger")

	assert.ErrorIs(t, err, ErrTraineeNotEnrolled)
}

func TestSubmissionService_Submit_AfterDeadline(t *testing.T) {
	svc, repo, _ := newSubmissionServiceFixture()

	subChallenge := testSubChallenge(1)
	subChallenge.SubmissionEndTime = time.Now().Add(-time.Minute)

	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(subChallenge, nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)

	_, err := svc.Submit(context.Background(), &SubmitRequest{
		SubChallengeID: 10,
		Results:        testResults(),
	}, "trainee-1")

	assert.ErrorIs(t, err, ErrSubmissionClosed)
}

func TestSubmissionService_Submit_AlreadySubmitted(t *testing.T) {
	svc, repo, _ := newSubmissionServiceFixture()

	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(testSubChallenge(1), nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.submission.On("ExistsForTrainee", mock.Anything, uint(10), "trainee-1").Return(true, nil)

	_, err := svc.Submit(context.Background(), &SubmitRequest{
		SubChallengeID: 10,
		Results:        testResults(),
	}, "trainee-1")

	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestSubmissionService_Submit_OverLimit(t *testing.T) {
	svc, repo, _ := newSubmissionServiceFixture()

	limit := 1
	subChallenge := testSubChallenge(1)
	subChallenge.SubmissionLimit = &limit

	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(subChallenge, nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)

	_, err := svc.Submit(context.Background(), &SubmitRequest{
		SubChallengeID: 10,
		Results:        testResults(),
	}, "trainee-1")

	assert.ErrorIs(t, err, ErrSubmissionLimitReached)
}

func TestSubmissionService_Submit_EndedChallenge(t *testing.T) {
	svc, repo, _ := newSubmissionServiceFixture()

	endedAt := time.Now().Add(-time.Hour)
	challenge := testChallenge()
	challenge.EndedAt = &endedAt

	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(testSubChallenge(1), nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(challenge, nil)

	_, err := svc.Submit(context.Background(), &SubmitRequest{
		SubChallengeID: 10,
		Results:        testResults(),
	}, "trainee-1")

	assert.ErrorIs(t, err, ErrChallengeEnded)
}

func TestSubmissionService_AttachReport(t *testing.T) {
	svc, repo, _ := newSubmissionServiceFixture()

	reportEnd := time.Now().Add(48 * time.Hour)
	subChallenge := testSubChallenge(1)
	subChallenge.ReportEndTime = &reportEnd
	subChallenge.Rules.Report = models.ReportRules{Enabled: true, MaxScore: 30}

	submission := &models.Submission{
		ID:             100,
		SubChallengeID: 10,
		TraineeID:      "trainee-1",
		SubmittedAt:    time.Now().Add(-time.Hour),
		Results:        testResults(),
	}

	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(subChallenge, nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.submission.On("GetBySubChallengeAndTrainee", mock.Anything, uint(10), "trainee-1").Return(submission, nil)
	repo.submission.On("Update", mock.Anything, submission).Return(nil)

	resp, err := svc.AttachReport(context.Background(), 10,
		models.ReportFile{Name: "report.pdf", Path: "reports/100.pdf"}, "trainee-1")

	require.NoError(t, err)
	require.NotNil(t, resp.ReportFile)
	assert.Equal(t, "report.pdf", resp.ReportFile.Name)
}

func TestSubmissionService_AttachReport_NotAccepted(t *testing.T) {
	svc, repo, _ := newSubmissionServiceFixture()

	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(testSubChallenge(1), nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)

	_, err := svc.AttachReport(context.Background(), 10, models.ReportFile{Name: "r.pdf"}, "trainee-1")

	assert.ErrorIs(t, err, ErrReportNotAccepted)
}

func TestSubmissionService_AttachReport_WindowClosed(t *testing.T) {
	svc, repo, _ := newSubmissionServiceFixture()

	reportEnd := time.Now().Add(-time.Minute)
	subChallenge := testSubChallenge(1)
	subChallenge.ReportEndTime = &reportEnd
	subChallenge.Rules.Report = models.ReportRules{Enabled: true, MaxScore: 30}

	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(subChallenge, nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)

	_, err := svc.AttachReport(context.Background(), 10, models.ReportFile{Name: "r.pdf"}, "trainee-1")

	assert.ErrorIs(t, err, ErrReportWindowClosed)
}

func TestSubmissionService_GetMySubmission_ScoreHiddenUntilPublished(t *testing.T) {
	svc, repo, _ := newSubmissionServiceFixture()

	subChallenge := testSubChallenge(1)
	submission := &models.Submission{
		ID:             100,
		SubChallengeID: 10,
		TraineeID:      "trainee-1",
		SubmittedAt:    time.Now().Add(-time.Hour),
		Results:        testResults(),
		Evaluation: &models.Evaluation{
			EvaluatorID: "eval-1",
			ResultEvaluations: []models.ResultEvaluation{
				{ResultID: "r1", EvaluatorTier: models.TierOne},
			},
			EvaluatedAt: time.Now(),
		},
	}

	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(subChallenge, nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.submission.On("GetBySubChallengeAndTrainee", mock.Anything, uint(10), "trainee-1").Return(submission, nil)

	resp, err := svc.GetMySubmission(context.Background(), 10, "trainee-1")

	require.NoError(t, err)
	assert.False(t, resp.ScoreVisible)
	assert.Equal(t, 0, resp.Score)
	assert.Nil(t, resp.Evaluation)
}

func TestSubmissionService_GetMySubmission_ScoreVisibleAfterPublication(t *testing.T) {
	svc, repo, _ := newSubmissionServiceFixture()

	publishedAt := time.Now().Add(-time.Minute)
	subChallenge := testSubChallenge(1)
	subChallenge.ScoresPublishedAt = &publishedAt

	submission := &models.Submission{
		ID:             100,
		SubChallengeID: 10,
		TraineeID:      "trainee-1",
		SubmittedAt:    time.Now().Add(-time.Hour),
		Results:        testResults(),
		Evaluation: &models.Evaluation{
			EvaluatorID: "eval-1",
			ResultEvaluations: []models.ResultEvaluation{
				{ResultID: "r1", EvaluatorTier: models.TierOne},
				{ResultID: "r2", EvaluatorTier: models.TierTwo},
			},
			EvaluatedAt: time.Now(),
		},
	}

	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(subChallenge, nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.submission.On("GetBySubChallengeAndTrainee", mock.Anything, uint(10), "trainee-1").Return(submission, nil)

	resp, err := svc.GetMySubmission(context.Background(), 10, "trainee-1")

	require.NoError(t, err)
	assert.True(t, resp.ScoreVisible)
	// r1 matches tier_1 patent (20), r2 matches a tier with no configured score (0)
	assert.Equal(t, 20, resp.Score)
}

func TestSubmissionService_ListBySubChallenge_DeniedForTrainee(t *testing.T) {
	svc, repo, _ := newSubmissionServiceFixture()

	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(testSubChallenge(1), nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)

	_, err := svc.ListBySubChallenge(context.Background(), 10, "trainee-1")

	assert.True(t, IsUnauthorized(err))
}

func TestSubmissionService_GetMySubmission_NotFound(t *testing.T) {
	svc, repo, _ := newSubmissionServiceFixture()

	repo.subChallenge.On("GetByID", mock.Anything, uint(10)).Return(testSubChallenge(1), nil)
	repo.challenge.On("GetByID", mock.Anything, uint(1)).Return(testChallenge(), nil)
	repo.submission.On("GetBySubChallengeAndTrainee", mock.Anything, uint(10), "trainee-1").
		Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetMySubmission(context.Background(), 10, "trainee-1")

	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}
