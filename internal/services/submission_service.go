package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/priorart-academy/challenge-service/internal/engine"
	"github.com/priorart-academy/challenge-service/internal/events"
	"github.com/priorart-academy/challenge-service/internal/models"
	"github.com/priorart-academy/challenge-service/internal/repositories"
	"github.com/priorart-academy/challenge-service/internal/validator"
)

// SubmissionService handles the trainee side: submitting results inside
// the submission window and attaching a report inside the report window.
type SubmissionService interface {
	Submit(ctx context.Context, req *SubmitRequest, traineeID string) (*SubmissionResponse, error)
	AttachReport(ctx context.Context, subChallengeID uint, report models.ReportFile, traineeID string) (*SubmissionResponse, error)

	GetMySubmission(ctx context.Context, subChallengeID uint, traineeID string) (*SubmissionResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*SubmissionResponse, error)
	ListBySubChallenge(ctx context.Context, subChallengeID uint, userID string) ([]*SubmissionResponse, error)
}

type SubmitRequest struct {
	SubChallengeID uint                     `json:"sub_challenge_id" validate:"required"`
	Results        []models.SubmittedResult `json:"results" validate:"required,min=1,dive"`
}

// SubmissionResponse decorates a submission with its derived status and,
// when visible to the requester, its computed score.
type SubmissionResponse struct {
	*models.Submission
	Status       engine.Status `json:"status"`
	ScoreVisible bool          `json:"score_visible"`
}

type submissionService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewSubmissionService(
	repo repositories.Repository,
	eventPublisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) SubmissionService {
	return &submissionService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      v,
	}
}

func (s *submissionService) Submit(ctx context.Context, req *SubmitRequest, traineeID string) (*SubmissionResponse, error) {
	s.logger.Info("Submitting results",
		"sub_challenge_id", req.SubChallengeID,
		"trainee_id", traineeID,
		"result_count", len(req.Results))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	subChallenge, challenge, err := s.loadSubChallenge(ctx, req.SubChallengeID)
	if err != nil {
		return nil, err
	}

	if !challenge.HasTrainee(traineeID) {
		return nil, ErrTraineeNotEnrolled
	}
	if challenge.IsEnded() {
		return nil, ErrChallengeEnded
	}

	now := time.Now()
	if !now.Before(subChallenge.SubmissionEndTime) {
		return nil, ErrSubmissionClosed
	}

	if subChallenge.SubmissionLimit != nil && len(req.Results) > *subChallenge.SubmissionLimit {
		return nil, ErrSubmissionLimitReached
	}

	exists, err := s.repo.Submission().ExistsForTrainee(ctx, req.SubChallengeID, traineeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing submission: %w", err)
	}
	if exists {
		return nil, ErrAlreadySubmitted
	}

	submission := &models.Submission{
		SubChallengeID: req.SubChallengeID,
		TraineeID:      traineeID,
		SubmittedAt:    now,
		Results:        req.Results,
	}

	if err := s.repo.Submission().Create(ctx, submission); err != nil {
		// Concurrent double submit loses the race on the unique index.
		if repositories.IsUniqueViolation(err) {
			return nil, ErrAlreadySubmitted
		}
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	if err := s.eventPublisher.PublishChallengeEvent(ctx,
		events.NewSubmissionReceivedEvent(submission, subChallenge)); err != nil {
		s.logger.Error("Failed to publish submission received event",
			"submission_id", submission.ID, "error", err)
	}

	s.flagDuplicates(ctx, submission, subChallenge)

	s.logger.Info("Submission recorded", "submission_id", submission.ID)
	return s.respond(submission, subChallenge, challenge, traineeID), nil
}

// flagDuplicates announces collisions between the new submission and
// references other trainees already turned in. It runs once per
// submission; reads of the duplicate overview stay side-effect-free.
func (s *submissionService) flagDuplicates(ctx context.Context, submission *models.Submission, subChallenge *models.SubChallenge) {
	submissions, err := s.repo.Submission().GetBySubChallenge(ctx, subChallenge.ID)
	if err != nil {
		s.logger.Error("Failed to load submissions for duplicate check",
			"sub_challenge_id", subChallenge.ID, "error", err)
		return
	}

	values := make([]models.Submission, len(submissions))
	for i, sub := range submissions {
		values[i] = *sub
	}

	for key, entries := range engine.DetectDuplicates(values) {
		if !engine.IsDuplicate(entries) {
			continue
		}
		involved := false
		traineeIDs := make([]string, len(entries))
		for i, entry := range entries {
			traineeIDs[i] = entry.TraineeID
			if entry.TraineeID == submission.TraineeID {
				involved = true
			}
		}
		if !involved {
			continue
		}
		if err := s.eventPublisher.PublishChallengeEvent(ctx,
			events.NewDuplicateFlaggedEvent(subChallenge.ID, key, traineeIDs)); err != nil {
			s.logger.Error("Failed to publish duplicate flagged event",
				"sub_challenge_id", subChallenge.ID, "error", err)
		}
	}
}

func (s *submissionService) AttachReport(ctx context.Context, subChallengeID uint, report models.ReportFile, traineeID string) (*SubmissionResponse, error) {
	s.logger.Info("Attaching report", "sub_challenge_id", subChallengeID, "trainee_id", traineeID)

	subChallenge, challenge, err := s.loadSubChallenge(ctx, subChallengeID)
	if err != nil {
		return nil, err
	}

	if challenge.IsEnded() {
		return nil, ErrChallengeEnded
	}
	if !subChallenge.Rules.Report.Enabled || subChallenge.ReportEndTime == nil {
		return nil, ErrReportNotAccepted
	}

	now := time.Now()
	if !now.Before(*subChallenge.ReportEndTime) {
		return nil, ErrReportWindowClosed
	}

	submission, err := s.repo.Submission().GetBySubChallengeAndTrainee(ctx, subChallengeID, traineeID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	submission.ReportFile = &report
	if err := s.repo.Submission().Update(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to attach report: %w", err)
	}

	return s.respond(submission, subChallenge, challenge, traineeID), nil
}

func (s *submissionService) GetMySubmission(ctx context.Context, subChallengeID uint, traineeID string) (*SubmissionResponse, error) {
	subChallenge, challenge, err := s.loadSubChallenge(ctx, subChallengeID)
	if err != nil {
		return nil, err
	}

	submission, err := s.repo.Submission().GetBySubChallengeAndTrainee(ctx, subChallengeID, traineeID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return s.respond(submission, subChallenge, challenge, traineeID), nil
}

func (s *submissionService) GetByID(ctx context.Context, id uint, userID string) (*SubmissionResponse, error) {
	submission, err := s.repo.Submission().GetByID(ctx, id)
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

	if submission.TraineeID != userID &&
		!challenge.HasManager(userID) &&
		!subChallenge.HasEvaluator(userID) {
		return nil, ErrSubmissionAccessDenied
	}

	return s.respond(submission, subChallenge, challenge, userID), nil
}

func (s *submissionService) ListBySubChallenge(ctx context.Context, subChallengeID uint, userID string) ([]*SubmissionResponse, error) {
	subChallenge, challenge, err := s.loadSubChallenge(ctx, subChallengeID)
	if err != nil {
		return nil, err
	}

	if !challenge.HasManager(userID) && !subChallenge.HasEvaluator(userID) {
		return nil, NewPermissionError(userID, subChallengeID, "sub_challenge", "list submissions",
			"only managers and assigned evaluators may list submissions")
	}

	submissions, err := s.repo.Submission().GetBySubChallenge(ctx, subChallengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	responses := make([]*SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, s.respond(submission, subChallenge, challenge, userID))
	}

	return responses, nil
}

// ===== HELPERS =====

func (s *submissionService) loadSubChallenge(ctx context.Context, id uint) (*models.SubChallenge, *models.OverallChallenge, error) {
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

// respond computes the derived fields of a submission for one viewer.
// Scores are visible to the owning trainee only after publication;
// managers and evaluators always see them.
func (s *submissionService) respond(submission *models.Submission, subChallenge *models.SubChallenge, challenge *models.OverallChallenge, viewerID string) *SubmissionResponse {
	privileged := challenge.HasManager(viewerID) || subChallenge.HasEvaluator(viewerID)
	visible := privileged || subChallenge.ScoresPublished()

	if visible && submission.IsEvaluated() {
		submission.Score = engine.Score(*submission, subChallenge.Rules)
	} else {
		submission.Score = 0
		if !privileged {
			submission.Evaluation = nil
		}
	}

	return &SubmissionResponse{
		Submission:   submission,
		Status:       engine.Classify(*subChallenge, *challenge, submission, time.Now()),
		ScoreVisible: visible,
	}
}
