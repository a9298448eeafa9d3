package handlers

import (
	"fmt"
	"net/http"

	"github.com/priorart-academy/challenge-service/internal/services"
	"github.com/priorart-academy/challenge-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	BaseHandler
	leaderboardService services.LeaderboardService
	exportService      services.ExportService
}

func NewLeaderboardHandler(
	leaderboardService services.LeaderboardService,
	exportService services.ExportService,
	logger utils.Logger,
) *LeaderboardHandler {
	return &LeaderboardHandler{
		BaseHandler:        NewBaseHandler(logger),
		leaderboardService: leaderboardService,
		exportService:      exportService,
	}
}

// GetLeaderboard returns the ranked standing of a challenge
// @Summary Get leaderboard
// @Description Aggregates published scores per trainee; managers also see unpublished scores
// @Tags leaderboard
// @Produce json
// @Param id path uint true "Challenge ID"
// @Success 200 {object} SuccessResponse{data=services.LeaderboardResponse}
// @Failure 403 {object} ErrorResponse
// @Router /challenges/{id}/leaderboard [get]
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	leaderboard, err := h.leaderboardService.GetLeaderboard(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Leaderboard retrieved",
		Data:    leaderboard,
	})
}

// GetSubChallengeLeaderboard returns the ranked standing of a single sub-challenge
// @Summary Get sub-challenge leaderboard
// @Description Ranked scores for one sub-challenge; hidden from trainees until publication
// @Tags leaderboard
// @Produce json
// @Param id path uint true "Sub-challenge ID"
// @Success 200 {object} SuccessResponse{data=services.SubChallengeLeaderboardResponse}
// @Failure 403 {object} ErrorResponse
// @Router /sub-challenges/{id}/leaderboard [get]
func (h *LeaderboardHandler) GetSubChallengeLeaderboard(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	leaderboard, err := h.leaderboardService.GetSubChallengeLeaderboard(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Leaderboard retrieved",
		Data:    leaderboard,
	})
}

// ExportLeaderboard downloads the standing as an Excel file
// @Summary Export leaderboard
// @Tags leaderboard
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Challenge ID"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Router /challenges/{id}/leaderboard/export [get]
func (h *LeaderboardHandler) ExportLeaderboard(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting leaderboard", "challenge_id", id)

	data, filename, err := h.exportService.ExportLeaderboard(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ExportEvaluations downloads the grading breakdown of a sub-challenge
// @Summary Export evaluations
// @Tags leaderboard
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Sub-challenge ID"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Router /sub-challenges/{id}/evaluations/export [get]
func (h *LeaderboardHandler) ExportEvaluations(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting evaluations", "sub_challenge_id", id)

	data, filename, err := h.exportService.ExportEvaluations(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
