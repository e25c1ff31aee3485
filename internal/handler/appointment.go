package handler

import (
	"context"

	"clinic-booking-be/internal/appointment"
	"clinic-booking-be/internal/middleware"
	"clinic-booking-be/internal/session"

	"github.com/gin-gonic/gin"
)

type CreateAppointmentRequest struct {
	DoctorID int64  `json:"doctor_id" validate:"required,gt=0"`
	Date     string `json:"appointment_date" validate:"required"`
	Time     string `json:"appointment_time" validate:"required"`
	Notes    string `json:"notes"`

	// Admins only.
	PatientID int64 `json:"patient_id" validate:"omitempty,gt=0"`
}

// UpdateAppointmentRequest leaves absent fields unchanged.
type UpdateAppointmentRequest struct {
	Date  *string `json:"appointment_date"`
	Time  *string `json:"appointment_time"`
	Notes *string `json:"notes"`
}

type listAppointmentsQuery struct {
	Status   string `form:"status"`
	Upcoming bool   `form:"upcoming"`
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !BindAndValidate(c, &req) {
		return
	}

	sess := middleware.SessionFrom(c)
	a, err := h.appts.Create(c.Request.Context(), sess, appointment.CreateInput{
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
		Notes:     req.Notes,
		PatientID: req.PatientID,
	})
	if err != nil {
		WriteError(c, err)
		return
	}

	Created(c, MapAppointment(a, sess))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	var q listAppointmentsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, "invalid query: "+err.Error())
		return
	}

	sess := middleware.SessionFrom(c)
	list, err := h.appts.List(c.Request.Context(), sess, appointment.ListFilter{
		Status:       appointment.Status(q.Status),
		UpcomingOnly: q.Upcoming,
	})
	if err != nil {
		WriteError(c, err)
		return
	}

	OK(c, MapAppointments(list, sess))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	h.appointmentAction(c, h.appts.Get)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	var req UpdateAppointmentRequest
	if !BindAndValidate(c, &req) {
		return
	}

	sess := middleware.SessionFrom(c)
	a, err := h.appts.Update(c.Request.Context(), sess, c.Param("id"), appointment.UpdateInput{
		Date:  req.Date,
		Time:  req.Time,
		Notes: req.Notes,
	})
	if err != nil {
		WriteError(c, err)
		return
	}

	OK(c, MapAppointment(a, sess))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	h.appointmentAction(c, h.appts.Cancel)
}

func (h *Handler) ConfirmAppointment(c *gin.Context) {
	h.appointmentAction(c, h.appts.Confirm)
}

func (h *Handler) CompleteAppointment(c *gin.Context) {
	h.appointmentAction(c, h.appts.Complete)
}

func (h *Handler) appointmentAction(
	c *gin.Context,
	fn func(ctx context.Context, sess session.Session, id string) (*appointment.Appointment, error),
) {
	sess := middleware.SessionFrom(c)
	a, err := fn(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	OK(c, MapAppointment(a, sess))
}
