package handlers

import (
	"net/http"

	"github.com/priorart-academy/challenge-service/internal/services"
	"github.com/priorart-academy/challenge-service/internal/utils"
	"github.com/priorart-academy/challenge-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type EvaluationHandler struct {
	BaseHandler
	evaluationService services.EvaluationService
	validator         *validator.Validator
}

func NewEvaluationHandler(
	evaluationService services.EvaluationService,
	v *validator.Validator,
	logger utils.Logger,
) *EvaluationHandler {
	return &EvaluationHandler{
		BaseHandler:       NewBaseHandler(logger),
		evaluationService: evaluationService,
		validator:         v,
	}
}

// SaveEvaluation stores the evaluator's judgment for a submission
// @Summary Save evaluation
// @Description Grades a submission result by result; replaces any prior evaluation
// @Tags evaluations
// @Accept json
// @Produce json
// @Param evaluation body services.SaveEvaluationRequest true "Evaluation data"
// @Success 200 {object} SuccessResponse{data=services.EvaluationResult}
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /evaluations [post]
func (h *EvaluationHandler) SaveEvaluation(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.SaveEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Saving evaluation", "submission_id", req.SubmissionID)

	result, err := h.evaluationService.SaveEvaluation(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Evaluation saved",
		Data:    result,
	})
}

// PreviewScore computes a submission's score without publishing it
// @Summary Preview score
// @Tags evaluations
// @Produce json
// @Param id path uint true "Submission ID"
// @Success 200 {object} SuccessResponse{data=services.EvaluationResult}
// @Failure 403 {object} ErrorResponse
// @Router /submissions/{id}/score [get]
func (h *EvaluationHandler) PreviewScore(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	result, err := h.evaluationService.PreviewScore(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Score computed",
		Data:    result,
	})
}

// GetDuplicateOverview reports values submitted by more than one trainee
// @Summary Duplicate overview
// @Description Groups submitted values by their normalized form across all trainees
// @Tags evaluations
// @Produce json
// @Param id path uint true "Sub-challenge ID"
// @Success 200 {object} SuccessResponse{data=services.DuplicateOverview}
// @Failure 403 {object} ErrorResponse
// @Router /sub-challenges/{id}/duplicates [get]
func (h *EvaluationHandler) GetDuplicateOverview(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	overview, err := h.evaluationService.GetDuplicateOverview(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Duplicate overview computed",
		Data:    overview,
	})
}
