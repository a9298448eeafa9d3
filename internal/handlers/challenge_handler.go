package handlers

import (
	"net/http"
	"strconv"

	"github.com/priorart-academy/challenge-service/internal/repositories"
	"github.com/priorart-academy/challenge-service/internal/services"
	"github.com/priorart-academy/challenge-service/internal/utils"
	"github.com/priorart-academy/challenge-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type ChallengeHandler struct {
	BaseHandler
	challengeService services.ChallengeService
	validator        *validator.Validator
}

func NewChallengeHandler(
	challengeService services.ChallengeService,
	v *validator.Validator,
	logger utils.Logger,
) *ChallengeHandler {
	return &ChallengeHandler{
		BaseHandler:      NewBaseHandler(logger),
		challengeService: challengeService,
		validator:        v,
	}
}

// CreateChallenge creates a new overall challenge
// @Summary Create challenge
// @Description Creates an overall challenge with its manager and trainee rosters
// @Tags challenges
// @Accept json
// @Produce json
// @Param challenge body services.CreateChallengeRequest true "Challenge data"
// @Success 201 {object} SuccessResponse{data=models.OverallChallenge}
// @Failure 400 {object} ErrorResponse
// @Router /challenges [post]
func (h *ChallengeHandler) CreateChallenge(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating challenge", "title", req.Title)

	challenge, err := h.challengeService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Challenge created",
		Data:    challenge,
	})
}

// GetChallenge returns a challenge with per-sub-challenge statuses
// @Summary Get challenge
// @Tags challenges
// @Produce json
// @Param id path uint true "Challenge ID"
// @Success 200 {object} SuccessResponse{data=services.ChallengeResponse}
// @Failure 404 {object} ErrorResponse
// @Router /challenges/{id} [get]
func (h *ChallengeHandler) GetChallenge(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	challenge, err := h.challengeService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Challenge retrieved",
		Data:    challenge,
	})
}

// ListChallenges lists challenges visible to the requesting user
// @Summary List challenges
// @Tags challenges
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} SuccessResponse
// @Router /challenges [get]
func (h *ChallengeHandler) ListChallenges(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	filters := repositories.ChallengeFilters{
		Limit:     parseIntQuery(c, "limit", 20),
		Offset:    parseIntQuery(c, "offset", 0),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if ended := c.Query("ended"); ended != "" {
		value := ended == "true"
		filters.Ended = &value
	}

	challenges, total, err := h.challengeService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Challenges retrieved",
		Data: gin.H{
			"challenges": challenges,
			"total":      total,
			"limit":      filters.Limit,
			"offset":     filters.Offset,
		},
	})
}

// EndChallenge closes a challenge for good
// @Summary End challenge
// @Description Marks the challenge ended; all sub-challenges become read-only
// @Tags challenges
// @Produce json
// @Param id path uint true "Challenge ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /challenges/{id}/end [post]
func (h *ChallengeHandler) EndChallenge(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Ending challenge", "challenge_id", id)

	if err := h.challengeService.End(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Challenge ended",
	})
}

// CreateSubChallenge adds a sub-challenge to a challenge
// @Summary Create sub-challenge
// @Tags challenges
// @Accept json
// @Produce json
// @Param sub_challenge body services.CreateSubChallengeRequest true "Sub-challenge data"
// @Success 201 {object} SuccessResponse{data=models.SubChallenge}
// @Failure 400 {object} ErrorResponse
// @Router /sub-challenges [post]
func (h *ChallengeHandler) CreateSubChallenge(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateSubChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating sub-challenge", "challenge_id", req.ChallengeID)

	subChallenge, err := h.challengeService.CreateSubChallenge(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Sub-challenge created",
		Data:    subChallenge,
	})
}

// GetSubChallenge returns a sub-challenge with its derived status
// @Summary Get sub-challenge
// @Tags challenges
// @Produce json
// @Param id path uint true "Sub-challenge ID"
// @Success 200 {object} SuccessResponse{data=services.SubChallengeResponse}
// @Failure 404 {object} ErrorResponse
// @Router /sub-challenges/{id} [get]
func (h *ChallengeHandler) GetSubChallenge(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	subChallenge, err := h.challengeService.GetSubChallenge(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Sub-challenge retrieved",
		Data:    subChallenge,
	})
}

// UpdateSubChallenge updates deadlines, rules or evaluators
// @Summary Update sub-challenge
// @Tags challenges
// @Accept json
// @Produce json
// @Param id path uint true "Sub-challenge ID"
// @Param sub_challenge body services.UpdateSubChallengeRequest true "Fields to update"
// @Success 200 {object} SuccessResponse{data=models.SubChallenge}
// @Failure 400 {object} ErrorResponse
// @Router /sub-challenges/{id} [put]
func (h *ChallengeHandler) UpdateSubChallenge(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateSubChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	subChallenge, err := h.challengeService.UpdateSubChallenge(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Sub-challenge updated",
		Data:    subChallenge,
	})
}

// PublishScores releases all scores of a sub-challenge to trainees
// @Summary Publish scores
// @Tags challenges
// @Produce json
// @Param id path uint true "Sub-challenge ID"
// @Success 200 {object} SuccessResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /sub-challenges/{id}/publish [post]
func (h *ChallengeHandler) PublishScores(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Publishing scores", "sub_challenge_id", id)

	if err := h.challengeService.PublishScores(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Scores published",
	})
}

// GetGradingProgress reports evaluated vs pending submission counts
// @Summary Grading progress
// @Tags challenges
// @Produce json
// @Param id path uint true "Sub-challenge ID"
// @Success 200 {object} SuccessResponse{data=repositories.GradingProgress}
// @Router /sub-challenges/{id}/progress [get]
func (h *ChallengeHandler) GetGradingProgress(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	progress, err := h.challengeService.GetGradingProgress(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Grading progress retrieved",
		Data:    progress,
	})
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return value
}
