package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/priorart-academy/challenge-service/internal/cache"
	"github.com/priorart-academy/challenge-service/internal/engine"
	"github.com/priorart-academy/challenge-service/internal/events"
	"github.com/priorart-academy/challenge-service/internal/models"
	"github.com/priorart-academy/challenge-service/internal/repositories"
	"github.com/priorart-academy/challenge-service/internal/validator"
	"gorm.io/datatypes"
)

// ChallengeService manages overall challenges and their sub-challenges:
// creation, lifecycle, score publication and grading progress.
type ChallengeService interface {
	Create(ctx context.Context, req *CreateChallengeRequest, creatorID string) (*models.OverallChallenge, error)
	GetByID(ctx context.Context, id uint, userID string) (*ChallengeResponse, error)
	List(ctx context.Context, filters repositories.ChallengeFilters, userID string) ([]*models.OverallChallenge, int64, error)
	End(ctx context.Context, id uint, userID string) error

	CreateSubChallenge(ctx context.Context, req *CreateSubChallengeRequest, userID string) (*models.SubChallenge, error)
	UpdateSubChallenge(ctx context.Context, id uint, req *UpdateSubChallengeRequest, userID string) (*models.SubChallenge, error)
	GetSubChallenge(ctx context.Context, id uint, userID string) (*SubChallengeResponse, error)

	PublishScores(ctx context.Context, subChallengeID uint, userID string) error
	GetGradingProgress(ctx context.Context, subChallengeID uint, userID string) (*repositories.GradingProgress, error)
}

type CreateChallengeRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	ManagerIDs  []string `json:"manager_ids" validate:"required,min=1"`
	TraineeIDs  []string `json:"trainee_ids"`
}

type CreateSubChallengeRequest struct {
	ChallengeID       uint                   `json:"challenge_id" validate:"required"`
	Title             string                 `json:"title" validate:"required,min=1,max=200"`
	PatentNumber      string                 `json:"patent_number" validate:"required"`
	PatentTitle       *string                `json:"patent_title"`
	SubmissionEndTime time.Time              `json:"submission_end_time" validate:"required"`
	ReportEndTime     *time.Time             `json:"report_end_time"`
	EvaluatorIDs      []string               `json:"evaluator_ids"`
	Rules             models.EvaluationRules `json:"rules"`
	SubmissionLimit   *int                   `json:"submission_limit" validate:"omitempty,min=1"`
}

type UpdateSubChallengeRequest struct {
	Title             *string                 `json:"title" validate:"omitempty,min=1,max=200"`
	SubmissionEndTime *time.Time              `json:"submission_end_time"`
	ReportEndTime     *time.Time              `json:"report_end_time"`
	EvaluatorIDs      []string                `json:"evaluator_ids"`
	Rules             *models.EvaluationRules `json:"rules"`
	SubmissionLimit   *int                    `json:"submission_limit" validate:"omitempty,min=1"`
}

// ChallengeResponse decorates a challenge with per-sub-challenge statuses
// for the requesting user.
type ChallengeResponse struct {
	*models.OverallChallenge
	SubChallengeStatuses map[uint]engine.Status `json:"sub_challenge_statuses"`
}

type SubChallengeResponse struct {
	*models.SubChallenge
	Status           engine.Status `json:"status"`
	RelevantDeadline *time.Time    `json:"relevant_deadline,omitempty"`
	RuleWarnings     []string      `json:"rule_warnings,omitempty"`
}

type challengeService struct {
	repo           repositories.Repository
	cache          cache.CacheService
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewChallengeService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	eventPublisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) ChallengeService {
	return &challengeService{
		repo:           repo,
		cache:          cacheService,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      v,
	}
}

// ===== CHALLENGE OPERATIONS =====

func (s *challengeService) Create(ctx context.Context, req *CreateChallengeRequest, creatorID string) (*models.OverallChallenge, error) {
	s.logger.Info("Creating challenge", "title", req.Title, "creator_id", creatorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	challenge := &models.OverallChallenge{
		Title:      req.Title,
		ManagerIDs: datatypes.NewJSONSlice(req.ManagerIDs),
		TraineeIDs: datatypes.NewJSONSlice(req.TraineeIDs),
		CreatedBy:  creatorID,
	}
	if req.Description != "" {
		challenge.Description = &req.Description
	}

	if err := s.repo.Challenge().Create(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	s.logger.Info("Challenge created", "challenge_id", challenge.ID)
	return challenge, nil
}

func (s *challengeService) GetByID(ctx context.Context, id uint, userID string) (*ChallengeResponse, error) {
	challenge, err := s.repo.Challenge().GetByIDWithSubChallenges(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	now := time.Now()
	statuses := make(map[uint]engine.Status, len(challenge.SubChallenges))
	for _, sc := range challenge.SubChallenges {
		submission, err := s.findSubmission(ctx, sc.ID, userID)
		if err != nil {
			return nil, err
		}
		statuses[sc.ID] = engine.Classify(sc, *challenge, submission, now)
	}

	return &ChallengeResponse{
		OverallChallenge:     challenge,
		SubChallengeStatuses: statuses,
	}, nil
}

func (s *challengeService) List(ctx context.Context, filters repositories.ChallengeFilters, userID string) ([]*models.OverallChallenge, int64, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, 0, ErrUserNotFound
		}
		return nil, 0, fmt.Errorf("failed to get user: %w", err)
	}

	// Trainees only see challenges they are enrolled in; managers see
	// their own. Admins see everything.
	switch user.Role {
	case models.RoleTrainee:
		return s.repo.Challenge().GetByTrainee(ctx, userID, filters)
	case models.RoleManager:
		return s.repo.Challenge().GetByManager(ctx, userID, filters)
	default:
		return s.repo.Challenge().List(ctx, filters)
	}
}

func (s *challengeService) End(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Ending challenge", "challenge_id", id, "user_id", userID)

	challenge, err := s.repo.Challenge().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrChallengeNotFound
		}
		return fmt.Errorf("failed to get challenge: %w", err)
	}

	if err := s.requireManager(ctx, challenge, userID, "end"); err != nil {
		return err
	}

	if challenge.IsEnded() {
		return ErrChallengeEnded
	}

	endedAt := time.Now()
	if err := s.repo.Challenge().MarkEnded(ctx, id, endedAt); err != nil {
		return fmt.Errorf("failed to end challenge: %w", err)
	}
	challenge.EndedAt = &endedAt

	s.invalidateLeaderboard(ctx, id)

	if err := s.eventPublisher.PublishChallengeEvent(ctx, events.NewChallengeEndedEvent(challenge, userID)); err != nil {
		s.logger.Error("Failed to publish challenge ended event", "challenge_id", id, "error", err)
	}

	return nil
}

// ===== SUB-CHALLENGE OPERATIONS =====

func (s *challengeService) CreateSubChallenge(ctx context.Context, req *CreateSubChallengeRequest, userID string) (*models.SubChallenge, error) {
	s.logger.Info("Creating sub-challenge",
		"challenge_id", req.ChallengeID,
		"patent_number", req.PatentNumber,
		"user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if errs := s.validator.Rules().Validate(req.Rules); len(errs) > 0 {
		return nil, errs
	}

	challenge, err := s.repo.Challenge().GetByID(ctx, req.ChallengeID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	if err := s.requireManager(ctx, challenge, userID, "create sub-challenge"); err != nil {
		return nil, err
	}

	if challenge.IsEnded() {
		return nil, ErrChallengeEnded
	}

	if !req.SubmissionEndTime.After(time.Now()) {
		return nil, ErrDeadlineBeforeCurrentTime
	}
	if req.ReportEndTime != nil && !req.ReportEndTime.After(req.SubmissionEndTime) {
		return nil, NewBusinessRuleError("report_deadline_order",
			"report deadline must be after the submission deadline", nil)
	}

	subChallenge := &models.SubChallenge{
		ChallengeID:       req.ChallengeID,
		Title:             req.Title,
		PatentNumber:      req.PatentNumber,
		PatentTitle:       req.PatentTitle,
		SubmissionEndTime: req.SubmissionEndTime,
		ReportEndTime:     req.ReportEndTime,
		EvaluatorIDs:      datatypes.NewJSONSlice(req.EvaluatorIDs),
		Rules:             req.Rules,
		SubmissionLimit:   req.SubmissionLimit,
	}

	if err := s.repo.SubChallenge().Create(ctx, subChallenge); err != nil {
		return nil, fmt.Errorf("failed to create sub-challenge: %w", err)
	}

	for _, warning := range s.validator.Rules().Warnings(req.Rules) {
		s.logger.Warn("Sub-challenge rule gap", "sub_challenge_id", subChallenge.ID, "warning", warning)
	}

	s.logger.Info("Sub-challenge created", "sub_challenge_id", subChallenge.ID)
	return subChallenge, nil
}

func (s *challengeService) UpdateSubChallenge(ctx context.Context, id uint, req *UpdateSubChallengeRequest, userID string) (*models.SubChallenge, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	subChallenge, challenge, err := s.getSubChallengeWithParent(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.requireManager(ctx, challenge, userID, "update sub-challenge"); err != nil {
		return nil, err
	}

	if challenge.IsEnded() {
		return nil, ErrChallengeNotEditable
	}
	if subChallenge.ScoresPublished() {
		return nil, ErrScoresAlreadyPublished
	}

	if req.Title != nil {
		subChallenge.Title = *req.Title
	}
	if req.SubmissionEndTime != nil {
		subChallenge.SubmissionEndTime = *req.SubmissionEndTime
	}
	if req.ReportEndTime != nil {
		subChallenge.ReportEndTime = req.ReportEndTime
	}
	if req.EvaluatorIDs != nil {
		subChallenge.EvaluatorIDs = datatypes.NewJSONSlice(req.EvaluatorIDs)
	}
	if req.Rules != nil {
		if errs := s.validator.Rules().Validate(*req.Rules); len(errs) > 0 {
			return nil, errs
		}
		subChallenge.Rules = *req.Rules
	}
	if req.SubmissionLimit != nil {
		subChallenge.SubmissionLimit = req.SubmissionLimit
	}

	if err := s.repo.SubChallenge().Update(ctx, subChallenge); err != nil {
		return nil, fmt.Errorf("failed to update sub-challenge: %w", err)
	}

	return subChallenge, nil
}

func (s *challengeService) GetSubChallenge(ctx context.Context, id uint, userID string) (*SubChallengeResponse, error) {
	subChallenge, challenge, err := s.getSubChallengeWithParent(ctx, id)
	if err != nil {
		return nil, err
	}

	submission, err := s.findSubmission(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	resp := &SubChallengeResponse{
		SubChallenge:     subChallenge,
		Status:           engine.Classify(*subChallenge, *challenge, submission, now),
		RelevantDeadline: engine.RelevantDeadline(*subChallenge, now),
	}

	// Rule warnings are authoring feedback; only managers see them.
	if challenge.HasManager(userID) {
		resp.RuleWarnings = s.validator.Rules().Warnings(subChallenge.Rules)
	}

	return resp, nil
}

// ===== SCORE PUBLICATION =====

func (s *challengeService) PublishScores(ctx context.Context, subChallengeID uint, userID string) error {
	s.logger.Info("Publishing scores", "sub_challenge_id", subChallengeID, "user_id", userID)

	subChallenge, challenge, err := s.getSubChallengeWithParent(ctx, subChallengeID)
	if err != nil {
		return err
	}

	if err := s.requireManager(ctx, challenge, userID, "publish scores"); err != nil {
		return err
	}

	if subChallenge.ScoresPublished() {
		return ErrScoresAlreadyPublished
	}

	progress, err := s.repo.SubChallenge().GetGradingProgress(ctx, subChallengeID)
	if err != nil {
		return fmt.Errorf("failed to get grading progress: %w", err)
	}
	if progress.PendingSubmissions > 0 {
		return NewBusinessRuleError("ungraded_submissions",
			"all submissions must be evaluated before scores are published",
			map[string]interface{}{"pending": progress.PendingSubmissions})
	}

	publishedAt := time.Now()
	if err := s.repo.SubChallenge().MarkScoresPublished(ctx, subChallengeID, publishedAt); err != nil {
		return fmt.Errorf("failed to publish scores: %w", err)
	}
	subChallenge.ScoresPublishedAt = &publishedAt

	s.invalidateLeaderboard(ctx, challenge.ID)

	if err := s.eventPublisher.PublishChallengeEvent(ctx,
		events.NewScoresPublishedEvent(subChallenge, userID, challenge.TraineeIDs)); err != nil {
		s.logger.Error("Failed to publish scores published event",
			"sub_challenge_id", subChallengeID, "error", err)
	}

	return nil
}

func (s *challengeService) GetGradingProgress(ctx context.Context, subChallengeID uint, userID string) (*repositories.GradingProgress, error) {
	subChallenge, challenge, err := s.getSubChallengeWithParent(ctx, subChallengeID)
	if err != nil {
		return nil, err
	}

	if !challenge.HasManager(userID) && !subChallenge.HasEvaluator(userID) {
		return nil, NewPermissionError(userID, subChallengeID, "sub_challenge", "view progress",
			"only managers and assigned evaluators may view grading progress")
	}

	return s.repo.SubChallenge().GetGradingProgress(ctx, subChallengeID)
}

// ===== HELPERS =====

func (s *challengeService) getSubChallengeWithParent(ctx context.Context, id uint) (*models.SubChallenge, *models.OverallChallenge, error) {
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

func (s *challengeService) findSubmission(ctx context.Context, subChallengeID uint, traineeID string) (*models.Submission, error) {
	submission, err := s.repo.Submission().GetBySubChallengeAndTrainee(ctx, subChallengeID, traineeID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return submission, nil
}

func (s *challengeService) requireManager(ctx context.Context, challenge *models.OverallChallenge, userID, action string) error {
	if challenge.HasManager(userID) {
		return nil
	}

	isAdmin, err := s.repo.User().HasRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to check role: %w", err)
	}
	if isAdmin {
		return nil
	}

	return NewPermissionError(userID, challenge.ID, "challenge", action,
		"user is not a manager of this challenge")
}

func (s *challengeService) invalidateLeaderboard(ctx context.Context, challengeID uint) {
	pattern := fmt.Sprintf("leaderboard:challenge:%d:*", challengeID)
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", "challenge_id", challengeID, "error", err)
	}
}
