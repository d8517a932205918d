package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/usecase/connection"
)

type ConnectionHandler struct {
	connectionUseCase *connection.ConnectionUseCase
}

func NewConnectionHandler(connectionUseCase *connection.ConnectionUseCase) *ConnectionHandler {
	return &ConnectionHandler{
		connectionUseCase: connectionUseCase,
	}
}

// CreateConnectionRequest opens a connection with a discovered candidate.
type CreateConnectionRequest struct {
	CandidateUserID int `json:"candidate_user_id" binding:"required,min=1"`
}

// ConsentRequest carries one side's photo-reveal decision.
type ConsentRequest struct {
	Consent *bool `json:"consent" binding:"required"`
}

// Create handles POST /connections
// @Summary Create connection
// @Description Open a soul connection with a candidate; the
// compatibility prediction is frozen at this moment
// @Tags connections
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateConnectionRequest true "Candidate"
// @Success 201 {object} domain.SoulConnection
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /connections [post]
func (h *ConnectionHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	conn, err := h.connectionUseCase.Create(c.Request.Context(), userID, req.CandidateUserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, conn)
}

// List handles GET /connections
// @Summary List my connections
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} domain.SoulConnection
// @Failure 401 {object} ErrorResponse
// @Router /connections [get]
func (h *ConnectionHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conns, err := h.connectionUseCase.List(c.Request.Context(), userID, queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conns)
}

// Get handles GET /connections/:id
// @Summary Get connection
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param id path int true "Connection ID"
// @Success 200 {object} domain.SoulConnection
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /connections/{id} [get]
func (h *ConnectionHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	connectionID, ok := pathInt(c, "id")
	if !ok {
		return
	}

	conn, err := h.connectionUseCase.Get(c.Request.Context(), connectionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conn)
}

// SetConsent handles PUT /connections/:id/consent
// @Summary Set photo-reveal consent
// @Description Record one side's consent; mutual consent reveals photos
// @Tags connections
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Connection ID"
// @Param request body ConsentRequest true "Consent decision"
// @Success 200 {object} domain.SoulConnection
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /connections/{id}/consent [put]
func (h *ConnectionHandler) SetConsent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	connectionID, ok := pathInt(c, "id")
	if !ok {
		return
	}

	var req ConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Consent == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "consent is required"})
		return
	}

	conn, err := h.connectionUseCase.SetConsent(c.Request.Context(), connectionID, userID, *req.Consent)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conn)
}

// Pause handles POST /connections/:id/pause
// @Summary Pause connection
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param id path int true "Connection ID"
// @Success 200 {object} domain.SoulConnection
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /connections/{id}/pause [post]
func (h *ConnectionHandler) Pause(c *gin.Context) {
	h.mutate(c, h.connectionUseCase.Pause)
}

// Resume handles POST /connections/:id/resume
// @Summary Resume connection
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param id path int true "Connection ID"
// @Success 200 {object} domain.SoulConnection
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /connections/{id}/resume [post]
func (h *ConnectionHandler) Resume(c *gin.Context) {
	h.mutate(c, h.connectionUseCase.Resume)
}

// End handles POST /connections/:id/end
// @Summary End connection
// @Description Terminate the connection; the record is kept for outcome analysis
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param id path int true "Connection ID"
// @Success 200 {object} domain.SoulConnection
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /connections/{id}/end [post]
func (h *ConnectionHandler) End(c *gin.Context) {
	h.mutate(c, h.connectionUseCase.End)
}

// ScheduleDinner handles POST /connections/:id/dinner/schedule
// @Summary Schedule first dinner
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param id path int true "Connection ID"
// @Success 200 {object} domain.SoulConnection
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /connections/{id}/dinner/schedule [post]
func (h *ConnectionHandler) ScheduleDinner(c *gin.Context) {
	h.mutate(c, h.connectionUseCase.ScheduleDinner)
}

// CompleteDinner handles POST /connections/:id/dinner/complete
// @Summary Complete first dinner
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param id path int true "Connection ID"
// @Success 200 {object} domain.SoulConnection
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /connections/{id}/dinner/complete [post]
func (h *ConnectionHandler) CompleteDinner(c *gin.Context) {
	h.mutate(c, h.connectionUseCase.CompleteDinner)
}

// Insight handles GET /connections/:id/insight
// @Summary Connection insight
// @Description AI-generated note on the pairing, available once photos are revealed
// @Tags connections
// @Security BearerAuth
// @Produce json
// @Param id path int true "Connection ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /connections/{id}/insight [get]
func (h *ConnectionHandler) Insight(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	connectionID, ok := pathInt(c, "id")
	if !ok {
		return
	}

	insight, err := h.connectionUseCase.Insight(c.Request.Context(), connectionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"insight": insight})
}

func (h *ConnectionHandler) mutate(c *gin.Context, fn func(ctx context.Context, connectionID, userID int) (*domain.SoulConnection, error)) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	connectionID, ok := pathInt(c, "id")
	if !ok {
		return
	}

	conn, err := fn(c.Request.Context(), connectionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conn)
}
