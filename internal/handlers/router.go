package handlers

import (
	"net/http"

	"github.com/priorart-academy/challenge-service/internal/services"
	"github.com/priorart-academy/challenge-service/internal/utils"
	"github.com/priorart-academy/challenge-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	challengeHandler   *ChallengeHandler
	submissionHandler  *SubmissionHandler
	evaluationHandler  *EvaluationHandler
	leaderboardHandler *LeaderboardHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	v *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		challengeHandler:   NewChallengeHandler(serviceManager.Challenge(), v, logger),
		submissionHandler:  NewSubmissionHandler(serviceManager.Submission(), v, logger),
		evaluationHandler:  NewEvaluationHandler(serviceManager.Evaluation(), v, logger),
		leaderboardHandler: NewLeaderboardHandler(serviceManager.Leaderboard(), serviceManager.Export(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(IdentityMiddleware())
	{
		// Challenge routes
		challenges := v1.Group("/challenges")
		{
			challenges.POST("", hm.challengeHandler.CreateChallenge)
			challenges.GET("", hm.challengeHandler.ListChallenges)
			challenges.GET("/:id", hm.challengeHandler.GetChallenge)
			challenges.POST("/:id/end", hm.challengeHandler.EndChallenge)
			challenges.GET("/:id/leaderboard", hm.leaderboardHandler.GetLeaderboard)
			challenges.GET("/:id/leaderboard/export", hm.leaderboardHandler.ExportLeaderboard)
		}

		// Sub-challenge routes
		subChallenges := v1.Group("/sub-challenges")
		{
			subChallenges.POST("", hm.challengeHandler.CreateSubChallenge)
			subChallenges.GET("/:id", hm.challengeHandler.GetSubChallenge)
			subChallenges.PUT("/:id", hm.challengeHandler.UpdateSubChallenge)
			subChallenges.POST("/:id/publish", hm.challengeHandler.PublishScores)
			subChallenges.GET("/:id/progress", hm.challengeHandler.GetGradingProgress)
			subChallenges.POST("/:id/report", hm.submissionHandler.AttachReport)
			subChallenges.GET("/:id/my-submission", hm.submissionHandler.GetMySubmission)
			subChallenges.GET("/:id/submissions", hm.submissionHandler.ListSubmissions)
			subChallenges.GET("/:id/duplicates", hm.evaluationHandler.GetDuplicateOverview)
			subChallenges.GET("/:id/leaderboard", hm.leaderboardHandler.GetSubChallengeLeaderboard)
			subChallenges.GET("/:id/evaluations/export", hm.leaderboardHandler.ExportEvaluations)
		}

		// Submission routes
		submissions := v1.Group("/submissions")
		{
			submissions.POST("", hm.submissionHandler.Submit)
			submissions.GET("/:id", hm.submissionHandler.GetSubmission)
			submissions.GET("/:id/score", hm.evaluationHandler.PreviewScore)
		}

		// Evaluation routes
		evaluations := v1.Group("/evaluations")
		{
			evaluations.POST("", hm.evaluationHandler.SaveEvaluation)
		}
	}
}

// IdentityMiddleware resolves the caller identity forwarded by the API
// gateway. Authentication itself happens upstream; this service only
// needs the user ID for authorization decisions.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}

// HealthCheck reports service liveness
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "ok",
		Data: gin.H{
			"service": "challenge-service",
		},
	})
}
