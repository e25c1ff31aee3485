package handler

import (
	"clinic-booking-be/internal/middleware"
	"clinic-booking-be/internal/payment"

	"github.com/gin-gonic/gin"
)

type CreatePaymentRequest struct {
	AppointmentID string `json:"appointment_id" validate:"required"`
	Amount        int64  `json:"amount" validate:"gte=0"` // free consultations carry 0
	Gateway       string `json:"gateway" validate:"required"`
}

func (h *Handler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if !BindAndValidate(c, &req) {
		return
	}

	p, err := h.payments.CreatePayment(c.Request.Context(), middleware.SessionFrom(c), payment.CreateInput{
		AppointmentID: req.AppointmentID,
		Amount:        req.Amount,
		Gateway:       req.Gateway,
	})
	if err != nil {
		WriteError(c, err)
		return
	}

	Created(c, MapPayment(p, h.loc))
}

func (h *Handler) PaymentStatus(c *gin.Context) {
	p, err := h.payments.CheckStatus(c.Request.Context(), middleware.SessionFrom(c), c.Param("payment_id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	OK(c, MapPayment(p, h.loc))
}

// ConfirmPayment is the manual "I have paid" fallback.
func (h *Handler) ConfirmPayment(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	a, err := h.payments.ConfirmManually(c.Request.Context(), sess, c.Param("appointment_id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	OK(c, MapAppointment(a, sess))
}
