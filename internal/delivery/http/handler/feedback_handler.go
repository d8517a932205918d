package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/usecase/feedback"
)

type FeedbackHandler struct {
	feedbackUseCase *feedback.FeedbackUseCase
}

func NewFeedbackHandler(feedbackUseCase *feedback.FeedbackUseCase) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackUseCase: feedbackUseCase,
	}
}

// RecordOutcome handles POST /connections/:id/outcome
// @Summary Record connection outcome
// @Description Evaluate the connection against its frozen compatibility
// prediction and store the prediction error
// @Tags feedback
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Connection ID"
// @Param request body feedback.OutcomeRequest false "Optional satisfaction rating"
// @Success 200 {object} domain.CompatibilityAccuracyRecord
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /connections/{id}/outcome [post]
func (h *FeedbackHandler) RecordOutcome(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	connectionID, ok := pathInt(c, "id")
	if !ok {
		return
	}

	// Body is optional; an empty one means no satisfaction rating.
	var req feedback.OutcomeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}
	}

	record, err := h.feedbackUseCase.RecordOutcome(c.Request.Context(), connectionID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// ListCalibration handles GET /feedback/calibration
// @Summary List evaluated accuracy records
// @Description Evaluated prediction-vs-outcome records for a scoring
// algorithm version, for offline weight recalibration
// @Tags feedback
// @Security BearerAuth
// @Produce json
// @Param algorithm_version query string false "Algorithm version"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} domain.CompatibilityAccuracyRecord
// @Failure 401 {object} ErrorResponse
// @Router /feedback/calibration [get]
func (h *FeedbackHandler) ListCalibration(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	records, err := h.feedbackUseCase.ListForCalibration(
		c.Request.Context(),
		c.Query("algorithm_version"),
		queryInt(c, "limit", 100),
		queryInt(c, "offset", 0),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	if records == nil {
		records = []*domain.CompatibilityAccuracyRecord{}
	}

	c.JSON(http.StatusOK, records)
}
