package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/priorart-academy/challenge-service/internal/cache"
	"github.com/priorart-academy/challenge-service/internal/engine"
	"github.com/priorart-academy/challenge-service/internal/events"
	"github.com/priorart-academy/challenge-service/internal/models"
	"github.com/priorart-academy/challenge-service/internal/repositories"
	"github.com/priorart-academy/challenge-service/internal/validator"
)

// EvaluationService is the evaluator side: grading submissions, previewing
// scores before publication and surfacing cross-trainee duplicates.
type EvaluationService interface {
	SaveEvaluation(ctx context.Context, req *SaveEvaluationRequest, evaluatorID string) (*EvaluationResult, error)
	PreviewScore(ctx context.Context, submissionID uint, userID string) (*EvaluationResult, error)
	GetDuplicateOverview(ctx context.Context, subChallengeID uint, userID string) (*DuplicateOverview, error)
}

type SaveEvaluationRequest struct {
	SubmissionID      uint                      `json:"submission_id" validate:"required"`
	ResultEvaluations []models.ResultEvaluation `json:"result_evaluations" validate:"dive"`
	ReportScore       *float64                  `json:"report_score"`
	Feedback          string                    `json:"feedback" validate:"max=4000"`
}

type EvaluationResult struct {
	SubmissionID uint               `json:"submission_id"`
	TraineeID    string             `json:"trainee_id"`
	Score        int                `json:"score"`
	Evaluation   *models.Evaluation `json:"evaluation"`
}

// DuplicateGroup is one normalized value submitted by several trainees,
// ordered by who found it first.
type DuplicateGroup struct {
	NormalizedValue string                  `json:"normalized_value"`
	Submitters      []engine.SubmitterEntry `json:"submitters"`
}

type DuplicateOverview struct {
	SubChallengeID uint             `json:"sub_challenge_id"`
	Groups         []DuplicateGroup `json:"groups"`
}

type evaluationService struct {
	repo           repositories.Repository
	cache          cache.CacheService
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewEvaluationService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	eventPublisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) EvaluationService {
	return &evaluationService{
		repo:           repo,
		cache:          cacheService,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      v,
	}
}

func (s *evaluationService) SaveEvaluation(ctx context.Context, req *SaveEvaluationRequest, evaluatorID string) (*EvaluationResult, error) {
	s.logger.Info("Saving evaluation",
		"submission_id", req.SubmissionID,
		"evaluator_id", evaluatorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	submission, err := s.repo.Submission().GetByID(ctx, req.SubmissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	subChallenge, challenge, err := s.loadSubChallenge(ctx, submission.SubChallengeID)
	if err != nil {
		return nil, err
	}

	if err := s.requireEvaluator(ctx, evaluatorID, subChallenge, challenge, "evaluate"); err != nil {
		return nil, err
	}

	if challenge.IsEnded() {
		return nil, ErrChallengeEnded
	}

	if subChallenge.ScoresPublished() {
		return nil, ErrScoresAlreadyPublished
	}

	// Every judged result must exist in the submission.
	known := make(map[string]bool, len(submission.Results))
	for _, r := range submission.Results {
		known[r.ID] = true
	}
	for _, re := range req.ResultEvaluations {
		if !known[re.ResultID] {
			return nil, fmt.Errorf("%w: %s", ErrEvaluationUnknownResult, re.ResultID)
		}
	}

	if req.ReportScore != nil && !subChallenge.Rules.Report.Enabled {
		return nil, NewBusinessRuleError("report_not_scored",
			"this sub-challenge does not score reports", nil)
	}

	submission.Evaluation = &models.Evaluation{
		EvaluatorID:       evaluatorID,
		ResultEvaluations: req.ResultEvaluations,
		ReportScore:       req.ReportScore,
		Feedback:          req.Feedback,
		EvaluatedAt:       time.Now(),
	}

	if err := s.repo.Submission().Update(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to save evaluation: %w", err)
	}

	score := engine.Score(*submission, subChallenge.Rules)
	s.invalidateLeaderboard(ctx, challenge.ID)

	if err := s.eventPublisher.PublishChallengeEvent(ctx,
		events.NewEvaluationCompletedEvent(submission, score)); err != nil {
		s.logger.Error("Failed to publish evaluation completed event",
			"submission_id", submission.ID, "error", err)
	}

	s.logger.Info("Evaluation saved",
		"submission_id", submission.ID,
		"score", score)

	return &EvaluationResult{
		SubmissionID: submission.ID,
		TraineeID:    submission.TraineeID,
		Score:        score,
		Evaluation:   submission.Evaluation,
	}, nil
}

func (s *evaluationService) PreviewScore(ctx context.Context, submissionID uint, userID string) (*EvaluationResult, error) {
	submission, err := s.repo.Submission().GetByID(ctx, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	subChallenge, challenge, err := s.loadSubChallenge(ctx, submission.SubChallengeID)
	if err != nil {
		return nil, err
	}

	if err := s.requireEvaluator(ctx, userID, subChallenge, challenge, "preview score"); err != nil {
		return nil, err
	}

	return &EvaluationResult{
		SubmissionID: submission.ID,
		TraineeID:    submission.TraineeID,
		Score:        engine.Score(*submission, subChallenge.Rules),
		Evaluation:   submission.Evaluation,
	}, nil
}

func (s *evaluationService) GetDuplicateOverview(ctx context.Context, subChallengeID uint, userID string) (*DuplicateOverview, error) {
	subChallenge, challenge, err := s.loadSubChallenge(ctx, subChallengeID)
	if err != nil {
		return nil, err
	}

	if err := s.requireEvaluator(ctx, userID, subChallenge, challenge, "view duplicates"); err != nil {
		return nil, err
	}

	submissions, err := s.repo.Submission().GetBySubChallenge(ctx, subChallengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	values := make([]models.Submission, len(submissions))
	for i, submission := range submissions {
		values[i] = *submission
	}

	groups := engine.DetectDuplicates(values)

	overview := &DuplicateOverview{SubChallengeID: subChallengeID}
	for key, entries := range groups {
		if !engine.IsDuplicate(entries) {
			continue
		}
		overview.Groups = append(overview.Groups, DuplicateGroup{
			NormalizedValue: key,
			Submitters:      entries,
		})
	}
	sort.Slice(overview.Groups, func(i, j int) bool {
		return overview.Groups[i].NormalizedValue < overview.Groups[j].NormalizedValue
	})

	return overview, nil
}

// ===== HELPERS =====

func (s *evaluationService) loadSubChallenge(ctx context.Context, id uint) (*models.SubChallenge, *models.OverallChallenge, error) {
	subChallenge, err := s.repo.SubChallenge().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrSubChallengeNotFound
		}
		return nil, nil, fmt.Errorf("failed to get sub-challenge: %w", err)
	}

	challenge, err := s.repo.Challenge().GetByID(ctx, subChallenge.ChallengeID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrChallengeNotFound
		}
		return nil, nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	return subChallenge, challenge, nil
}

func (s *evaluationService) requireEvaluator(ctx context.Context, userID string, subChallenge *models.SubChallenge, challenge *models.OverallChallenge, action string) error {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	actor := engine.Actor{ID: userID, Role: user.Role}
	if !engine.CanEvaluate(actor, *subChallenge, challenge.ManagerIDs) {
		return NewPermissionError(userID, subChallenge.ID, "sub_challenge", action,
			"user is neither an assigned evaluator nor a fallback manager")
	}

	return nil
}

func (s *evaluationService) invalidateLeaderboard(ctx context.Context, challengeID uint) {
	pattern := fmt.Sprintf("leaderboard:challenge:%d:*", challengeID)
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", "challenge_id", challengeID, "error", err)
	}
}
