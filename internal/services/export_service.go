package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/priorart-academy/challenge-service/internal/engine"
	"github.com/priorart-academy/challenge-service/internal/models"
	"github.com/priorart-academy/challenge-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// ExportService produces Excel exports for managers: challenge standings
// and the full evaluation breakdown of a sub-challenge.
type ExportService interface {
	ExportLeaderboard(ctx context.Context, challengeID uint, userID string) ([]byte, string, error)
	ExportEvaluations(ctx context.Context, subChallengeID uint, userID string) ([]byte, string, error)
}

type exportService struct {
	repo        repositories.Repository
	leaderboard LeaderboardService
	logger      *slog.Logger
}

func NewExportService(repo repositories.Repository, leaderboard LeaderboardService, logger *slog.Logger) ExportService {
	return &exportService{
		repo:        repo,
		leaderboard: leaderboard,
		logger:      logger,
	}
}

func (s *exportService) ExportLeaderboard(ctx context.Context, challengeID uint, userID string) ([]byte, string, error) {
	challenge, err := s.repo.Challenge().GetByID(ctx, challengeID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrChallengeNotFound
		}
		return nil, "", fmt.Errorf("failed to get challenge: %w", err)
	}

	if !challenge.HasManager(userID) {
		return nil, "", NewPermissionError(userID, challengeID, "challenge", "export leaderboard",
			"only managers may export standings")
	}

	standing, err := s.leaderboard.GetLeaderboard(ctx, challengeID, userID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheetName := "Leaderboard"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Rank", "Trainee ID", "Name", "Total Score"}
	for colIndex, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIndex+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, entry := range standing.Entries {
		row := []interface{}{entry.Rank, entry.TraineeID, entry.Name, entry.TotalScore}
		for colIndex, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	filename := fmt.Sprintf("leaderboard_challenge_%d_%s.xlsx", challengeID, time.Now().Format("20060102"))
	return buf.Bytes(), filename, nil
}

func (s *exportService) ExportEvaluations(ctx context.Context, subChallengeID uint, userID string) ([]byte, string, error) {
	subChallenge, err := s.repo.SubChallenge().GetByID(ctx, subChallengeID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrSubChallengeNotFound
		}
		return nil, "", fmt.Errorf("failed to get sub-challenge: %w", err)
	}

	challenge, err := s.repo.Challenge().GetByID(ctx, subChallenge.ChallengeID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get challenge: %w", err)
	}

	if !challenge.HasManager(userID) && !subChallenge.HasEvaluator(userID) {
		return nil, "", NewPermissionError(userID, subChallengeID, "sub_challenge", "export evaluations",
			"only managers and assigned evaluators may export evaluations")
	}

	submissions, err := s.repo.Submission().GetBySubChallenge(ctx, subChallengeID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list submissions: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Evaluations"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Trainee ID", "Submitted At", "Result ID", "Value", "Type",
		"Trainee Tier", "Evaluator Tier", "Override", "Evaluator", "Total Score",
	}
	for colIndex, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIndex+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	rowIndex := 2
	for _, submission := range submissions {
		score := 0
		if submission.IsEvaluated() {
			score = engine.Score(*submission, subChallenge.Rules)
		}
		for _, result := range submission.Results {
			row := evaluationRow(submission, result, score)
			for colIndex, value := range row {
				cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex)
				f.SetCellValue(sheetName, cell, value)
			}
			rowIndex++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	filename := fmt.Sprintf("evaluations_sub_challenge_%d_%s.xlsx", subChallengeID, time.Now().Format("20060102"))
	return buf.Bytes(), filename, nil
}

func evaluationRow(submission *models.Submission, result models.SubmittedResult, totalScore int) []interface{} {
	evaluatorTier := ""
	override := ""
	evaluatorID := ""

	if judgment := submission.Evaluation.Judgment(result.ID); judgment != nil {
		evaluatorTier = string(judgment.EvaluatorTier)
		if judgment.ScoreOverride != nil {
			override = fmt.Sprintf("%.1f", *judgment.ScoreOverride)
		}
	}
	if submission.IsEvaluated() {
		evaluatorID = submission.Evaluation.EvaluatorID
	}

	return []interface{}{
		submission.TraineeID,
		submission.SubmittedAt.Format(time.RFC3339),
		result.ID,
		result.Value,
		string(result.Type),
		string(result.TraineeTier),
		evaluatorTier,
		override,
		evaluatorID,
		totalScore,
	}
}
