package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/usecase/revelation"
)

type RevelationHandler struct {
	revelationUseCase *revelation.RevelationUseCase
}

func NewRevelationHandler(revelationUseCase *revelation.RevelationUseCase) *RevelationHandler {
	return &RevelationHandler{
		revelationUseCase: revelationUseCase,
	}
}

// Submit handles POST /connections/:id/revelations
// @Summary Submit revelation
// @Description Share one revelation for the connection's current day;
// photo reveals require mutual consent
// @Tags revelations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Connection ID"
// @Param request body revelation.SubmitRequest true "Revelation"
// @Success 201 {object} domain.DailyRevelation
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /connections/{id}/revelations [post]
func (h *RevelationHandler) Submit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	connectionID, ok := pathInt(c, "id")
	if !ok {
		return
	}

	var req revelation.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	rev, err := h.revelationUseCase.Submit(c.Request.Context(), connectionID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rev)
}

// List handles GET /connections/:id/revelations
// @Summary List revelations
// @Tags revelations
// @Security BearerAuth
// @Produce json
// @Param id path int true "Connection ID"
// @Success 200 {array} domain.DailyRevelation
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /connections/{id}/revelations [get]
func (h *RevelationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	connectionID, ok := pathInt(c, "id")
	if !ok {
		return
	}

	revs, err := h.revelationUseCase.List(c.Request.Context(), connectionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if revs == nil {
		revs = []*domain.DailyRevelation{}
	}

	c.JSON(http.StatusOK, revs)
}

// AdvanceDay handles POST /connections/:id/advance-day
// @Summary Advance reveal day
// @Description Move the connection to the next reveal day; allowed at
// most once per calendar day
// @Tags revelations
// @Security BearerAuth
// @Produce json
// @Param id path int true "Connection ID"
// @Success 200 {object} domain.SoulConnection
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /connections/{id}/advance-day [post]
func (h *RevelationHandler) AdvanceDay(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	connectionID, ok := pathInt(c, "id")
	if !ok {
		return
	}

	conn, err := h.revelationUseCase.AdvanceDay(c.Request.Context(), connectionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conn)
}

// MarkRead handles POST /connections/:id/revelations/:revelation_id/read
// @Summary Mark revelation read
// @Tags revelations
// @Security BearerAuth
// @Produce json
// @Param id path int true "Connection ID"
// @Param revelation_id path int true "Revelation ID"
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /connections/{id}/revelations/{revelation_id}/read [post]
func (h *RevelationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	connectionID, ok := pathInt(c, "id")
	if !ok {
		return
	}
	revelationID, ok := pathInt(c, "revelation_id")
	if !ok {
		return
	}

	if err := h.revelationUseCase.MarkRead(c.Request.Context(), connectionID, revelationID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "revelation marked as read"})
}

// Prompt handles GET /connections/:id/revelations/prompt
// @Summary Revelation prompt
// @Description AI-suggested prompt for a written revelation type
// @Tags revelations
// @Security BearerAuth
// @Produce json
// @Param id path int true "Connection ID"
// @Param type query string true "Revelation type"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /connections/{id}/revelations/prompt [get]
func (h *RevelationHandler) Prompt(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	connectionID, ok := pathInt(c, "id")
	if !ok {
		return
	}

	revType := domain.RevelationType(c.Query("type"))
	prompt, err := h.revelationUseCase.Prompt(c.Request.Context(), connectionID, userID, revType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"prompt": prompt})
}
