// Package handler is the gin HTTP surface of the booking service. Handlers
// decode requests, pull the caller session from the context and hand both
// to the services; they hold no business rules of their own.
package handler

import (
	"time"

	"clinic-booking-be/internal/appointment"
	"clinic-booking-be/internal/chat"
	"clinic-booking-be/internal/middleware"
	"clinic-booking-be/internal/payment"
	"clinic-booking-be/internal/user"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	users    user.Service
	appts    appointment.Service
	payments payment.Service
	chats    chat.Service
	loc      *time.Location
}

func New(users user.Service, appts appointment.Service, payments payment.Service, chats chat.Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		users:    users,
		appts:    appts,
		payments: payments,
		chats:    chats,
		loc:      loc,
	}
}

// Routes mounts the /api routes. The group must already run
// middleware.Auth.
func (h *Handler) Routes(api *gin.RouterGroup) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/me", middleware.RequireAuth(), h.Me)
	}

	api.GET("/specializations", h.ListSpecializations)
	api.GET("/doctors", h.ListDoctors)
	api.GET("/doctors/:id", h.GetDoctor)
	api.GET("/doctors/:id/availability", h.Availability)

	protected := api.Group("")
	protected.Use(middleware.RequireAuth())
	{
		protected.POST("/appointments", h.CreateAppointment)
		protected.GET("/appointments", h.ListAppointments)
		protected.GET("/appointments/:id", h.GetAppointment)
		protected.PUT("/appointments/:id", h.UpdateAppointment)
		protected.DELETE("/appointments/:id", h.CancelAppointment)
		protected.POST("/appointments/:id/confirm", h.ConfirmAppointment)
		protected.POST("/appointments/:id/complete", h.CompleteAppointment)

		protected.POST("/payments/create", h.CreatePayment)
		protected.GET("/payments/status/:payment_id", h.PaymentStatus)
		protected.POST("/payments/confirm/:appointment_id", h.ConfirmPayment)

		protected.POST("/messages", h.SendMessage)
		protected.GET("/messages/:appointment_id", h.ListMessages)
		protected.GET("/chats", h.ListChats)
	}
}
