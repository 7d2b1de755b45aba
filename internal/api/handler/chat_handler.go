package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/therabot/therabot/internal/api/dto"
	"github.com/therabot/therabot/internal/api/middleware"
	"github.com/therabot/therabot/internal/core/service"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// Chat handles POST /api/chat
//
//	@Summary		Send a message to Therabot
//	@Description	Runs one chat turn. Provider failures are answered with a fallback reply, never an error.
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.ChatRequest	true	"Message"
//	@Success		200		{object}	dto.Envelope
//	@Failure		400		{object}	dto.Envelope
//	@Failure		401		{object}	dto.Envelope
//	@Failure		500		{object}	dto.Envelope
//	@Router			/api/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(service.NewError(service.KindInvalidInput, msgInvalidBody))
		return
	}

	response, err := h.chatService.Send(c.Request.Context(), identity, req.Message)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.Envelope{
		Success:  true,
		Response: response,
	})
}
