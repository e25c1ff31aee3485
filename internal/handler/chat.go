package handler

import (
	"strconv"

	"clinic-booking-be/internal/chat"
	"clinic-booking-be/internal/middleware"

	"github.com/gin-gonic/gin"
)

type SendMessageRequest struct {
	AppointmentID string `json:"appointment_id" validate:"required"`
	Message       string `json:"message" validate:"required"`
}

func (h *Handler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if !BindAndValidate(c, &req) {
		return
	}

	m, err := h.chats.Send(c.Request.Context(), middleware.SessionFrom(c), chat.SendInput{
		AppointmentID: req.AppointmentID,
		Body:          req.Message,
	})
	if err != nil {
		WriteError(c, err)
		return
	}

	Created(c, m)
}

// ListMessages returns the thread; ?after=<message id> returns only newer
// messages for pollers.
func (h *Handler) ListMessages(c *gin.Context) {
	var after int64
	if raw := c.Query("after"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			WriteError(c, chat.ErrInvalidCursor)
			return
		}
		after = n
	}

	msgs, err := h.chats.List(c.Request.Context(), middleware.SessionFrom(c), c.Param("appointment_id"), after)
	if err != nil {
		WriteError(c, err)
		return
	}
	OK(c, msgs)
}

func (h *Handler) ListChats(c *gin.Context) {
	convs, err := h.chats.Conversations(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	OK(c, convs)
}
