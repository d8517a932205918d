package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/usecase/message"
)

type MessageHandler struct {
	messageUseCase *message.MessageUseCase
}

func NewMessageHandler(messageUseCase *message.MessageUseCase) *MessageHandler {
	return &MessageHandler{
		messageUseCase: messageUseCase,
	}
}

// Send handles POST /connections/:id/messages
// @Summary Send message
// @Tags messages
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Connection ID"
// @Param request body message.SendRequest true "Message"
// @Success 201 {object} domain.Message
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /connections/{id}/messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	connectionID, ok := pathInt(c, "id")
	if !ok {
		return
	}

	var req message.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	msg, err := h.messageUseCase.Send(c.Request.Context(), connectionID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// List handles GET /connections/:id/messages
// @Summary List messages
// @Tags messages
// @Security BearerAuth
// @Produce json
// @Param id path int true "Connection ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} domain.Message
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /connections/{id}/messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	connectionID, ok := pathInt(c, "id")
	if !ok {
		return
	}

	msgs, err := h.messageUseCase.List(c.Request.Context(), connectionID, userID, queryInt(c, "limit", 100), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	if msgs == nil {
		msgs = []*domain.Message{}
	}

	c.JSON(http.StatusOK, msgs)
}
