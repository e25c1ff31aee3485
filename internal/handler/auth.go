package handler

import (
	"clinic-booking-be/internal/middleware"
	"clinic-booking-be/internal/session"
	"clinic-booking-be/internal/user"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	FullName       string `json:"full_name" validate:"required,max=100"`
	Phone          string `json:"phone" validate:"omitempty,max=20"`
	Role           string `json:"role" validate:"omitempty,oneof=patient doctor"`
	Specialization string `json:"specialization" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !BindAndValidate(c, &req) {
		return
	}

	token, u, err := h.users.Register(c.Request.Context(), user.RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		FullName:       req.FullName,
		Phone:          req.Phone,
		Role:           session.Role(req.Role),
		Specialization: req.Specialization,
	})
	if err != nil {
		WriteError(c, err)
		return
	}

	Created(c, MapAuth(token, u))
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !BindAndValidate(c, &req) {
		return
	}

	token, u, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(c, err)
		return
	}

	OK(c, MapAuth(token, u))
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.users.Me(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	OK(c, u.Profile())
}
