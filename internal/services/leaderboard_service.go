package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/priorart-academy/challenge-service/internal/cache"
	"github.com/priorart-academy/challenge-service/internal/engine"
	"github.com/priorart-academy/challenge-service/internal/models"
	"github.com/priorart-academy/challenge-service/internal/repositories"
)

// Cached leaderboards are short-lived; writes invalidate them anyway, the
// TTL only bounds staleness if an invalidation is lost.
const leaderboardCacheTTL = 5 * time.Minute

// LeaderboardService aggregates published scores across all
// sub-challenges of an overall challenge into a ranked standing.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, challengeID uint, userID string) (*LeaderboardResponse, error)
	GetSubChallengeLeaderboard(ctx context.Context, subChallengeID uint, userID string) (*SubChallengeLeaderboardResponse, error)
}

type LeaderboardResponse struct {
	ChallengeID    uint                 `json:"challenge_id"`
	ChallengeTitle string               `json:"challenge_title"`
	GeneratedAt    time.Time            `json:"generated_at"`
	ManagerView    bool                 `json:"manager_view"`
	Entries        []engine.RankedEntry `json:"entries"`
}

type SubChallengeLeaderboardResponse struct {
	SubChallengeID uint                 `json:"sub_challenge_id"`
	Title          string               `json:"title"`
	GeneratedAt    time.Time            `json:"generated_at"`
	ManagerView    bool                 `json:"manager_view"`
	Entries        []engine.RankedEntry `json:"entries"`
}

type leaderboardService struct {
	repo   repositories.Repository
	cache  cache.CacheService
	logger *slog.Logger
}

func NewLeaderboardService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger) LeaderboardService {
	return &leaderboardService{
		repo:   repo,
		cache:  cacheService,
		logger: logger,
	}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, challengeID uint, userID string) (*LeaderboardResponse, error) {
	challenge, err := s.repo.Challenge().GetByID(ctx, challengeID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	if !challenge.HasManager(userID) && !challenge.HasTrainee(userID) {
		isAdmin, err := s.repo.User().HasRole(ctx, userID, models.RoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("failed to check role: %w", err)
		}
		if !isAdmin {
			return nil, ErrChallengeAccessDenied
		}
	}

	// Managers see unpublished scores too, so the two views cache under
	// different keys.
	managerView := challenge.HasManager(userID)
	cacheKey := fmt.Sprintf("leaderboard:challenge:%d:published", challengeID)
	if managerView {
		cacheKey = fmt.Sprintf("leaderboard:challenge:%d:full", challengeID)
	}

	var cached LeaderboardResponse
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Leaderboard cache read failed", "challenge_id", challengeID, "error", err)
	}

	response, err := s.build(ctx, challenge, managerView)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, response, leaderboardCacheTTL); err != nil {
		s.logger.Warn("Leaderboard cache write failed", "challenge_id", challengeID, "error", err)
	}

	return response, nil
}

func (s *leaderboardService) GetSubChallengeLeaderboard(ctx context.Context, subChallengeID uint, userID string) (*SubChallengeLeaderboardResponse, error) {
	subChallenge, err := s.repo.SubChallenge().GetByIDWithSubmissions(ctx, subChallengeID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get sub-challenge: %w", err)
	}

	challenge, err := s.repo.Challenge().GetByID(ctx, subChallenge.ChallengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	privileged := challenge.HasManager(userID) || subChallenge.HasEvaluator(userID)
	if !privileged && !challenge.HasTrainee(userID) {
		isAdmin, err := s.repo.User().HasRole(ctx, userID, models.RoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("failed to check role: %w", err)
		}
		if !isAdmin {
			return nil, ErrChallengeAccessDenied
		}
		privileged = true
	}
	if !privileged && !subChallenge.ScoresPublished() {
		return nil, ErrScoresNotPublished
	}

	// Keys stay under the parent challenge prefix so the existing
	// DeletePattern invalidation covers them.
	view := "published"
	if privileged {
		view = "full"
	}
	cacheKey := fmt.Sprintf("leaderboard:challenge:%d:sub:%d:%s", challenge.ID, subChallengeID, view)

	var cached SubChallengeLeaderboardResponse
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Leaderboard cache read failed", "sub_challenge_id", subChallengeID, "error", err)
	}

	users, err := s.loadRoster(ctx, challenge)
	if err != nil {
		return nil, err
	}

	response := &SubChallengeLeaderboardResponse{
		SubChallengeID: subChallengeID,
		Title:          subChallenge.Title,
		GeneratedAt:    time.Now(),
		ManagerView:    privileged,
		Entries:        engine.AggregateLeaderboard(users, []models.SubChallenge{*subChallenge}, privileged),
	}

	if err := s.cache.Set(ctx, cacheKey, response, leaderboardCacheTTL); err != nil {
		s.logger.Warn("Leaderboard cache write failed", "sub_challenge_id", subChallengeID, "error", err)
	}

	return response, nil
}

// loadRoster fetches the challenge trainees and returns them in roster
// order. The aggregator breaks score ties by input order, so the order
// must not depend on how the database happens to return rows.
func (s *leaderboardService) loadRoster(ctx context.Context, challenge *models.OverallChallenge) ([]models.User, error) {
	trainees, err := s.repo.User().GetByIDs(ctx, challenge.TraineeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load trainees: %w", err)
	}

	byID := make(map[string]*models.User, len(trainees))
	for _, trainee := range trainees {
		byID[trainee.ID] = trainee
	}

	users := make([]models.User, 0, len(trainees))
	for _, id := range challenge.TraineeIDs {
		if trainee, ok := byID[id]; ok {
			users = append(users, *trainee)
		}
	}
	return users, nil
}

func (s *leaderboardService) build(ctx context.Context, challenge *models.OverallChallenge, includeUnpublished bool) (*LeaderboardResponse, error) {
	subChallenges, err := s.repo.SubChallenge().GetByChallengeWithSubmissions(ctx, challenge.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sub-challenges: %w", err)
	}

	users, err := s.loadRoster(ctx, challenge)
	if err != nil {
		return nil, err
	}

	values := make([]models.SubChallenge, len(subChallenges))
	for i, sc := range subChallenges {
		values[i] = *sc
	}

	return &LeaderboardResponse{
		ChallengeID:    challenge.ID,
		ChallengeTitle: challenge.Title,
		GeneratedAt:    time.Now(),
		ManagerView:    includeUnpublished,
		Entries:        engine.AggregateLeaderboard(users, values, includeUnpublished),
	}, nil
}
