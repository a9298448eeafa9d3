package handlers

import (
	"net/http"

	"github.com/priorart-academy/challenge-service/internal/models"
	"github.com/priorart-academy/challenge-service/internal/services"
	"github.com/priorart-academy/challenge-service/internal/utils"
	"github.com/priorart-academy/challenge-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
	validator         *validator.Validator
}

type AttachReportRequest struct {
	Name string `json:"name" validate:"required"`
	Path string `json:"path" validate:"required"`
}

func NewSubmissionHandler(
	submissionService services.SubmissionService,
	v *validator.Validator,
	logger utils.Logger,
) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
		validator:         v,
	}
}

// Submit records a trainee's one-and-only submission for a sub-challenge
// @Summary Submit results
// @Description Submits prior-art results; allowed once per trainee per sub-challenge
// @Tags submissions
// @Accept json
// @Produce json
// @Param submission body services.SubmitRequest true "Submission data"
// @Success 201 {object} SuccessResponse{data=services.SubmissionResponse}
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /submissions [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting results",
		"sub_challenge_id", req.SubChallengeID,
		"result_count", len(req.Results))

	submission, err := h.submissionService.Submit(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Submission recorded",
		Data:    submission,
	})
}

// AttachReport attaches a search report to an existing submission
// @Summary Attach report
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Sub-challenge ID"
// @Param report body AttachReportRequest true "Report file metadata"
// @Success 200 {object} SuccessResponse{data=services.SubmissionResponse}
// @Failure 422 {object} ErrorResponse
// @Router /sub-challenges/{id}/report [post]
func (h *SubmissionHandler) AttachReport(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req AttachReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Attaching report", "sub_challenge_id", id)

	submission, err := h.submissionService.AttachReport(c.Request.Context(), id,
		models.ReportFile{Name: req.Name, Path: req.Path}, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Report attached",
		Data:    submission,
	})
}

// GetMySubmission returns the caller's submission for a sub-challenge
// @Summary Get own submission
// @Tags submissions
// @Produce json
// @Param id path uint true "Sub-challenge ID"
// @Success 200 {object} SuccessResponse{data=services.SubmissionResponse}
// @Failure 404 {object} ErrorResponse
// @Router /sub-challenges/{id}/my-submission [get]
func (h *SubmissionHandler) GetMySubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	submission, err := h.submissionService.GetMySubmission(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Submission retrieved",
		Data:    submission,
	})
}

// GetSubmission returns one submission by ID
// @Summary Get submission
// @Tags submissions
// @Produce json
// @Param id path uint true "Submission ID"
// @Success 200 {object} SuccessResponse{data=services.SubmissionResponse}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	submission, err := h.submissionService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Submission retrieved",
		Data:    submission,
	})
}

// ListSubmissions lists all submissions of a sub-challenge for graders
// @Summary List submissions
// @Tags submissions
// @Produce json
// @Param id path uint true "Sub-challenge ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Router /sub-challenges/{id}/submissions [get]
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	submissions, err := h.submissionService.ListBySubChallenge(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Submissions retrieved",
		Data: gin.H{
			"submissions": submissions,
			"total":       len(submissions),
		},
	})
}
