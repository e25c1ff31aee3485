package handler

import (
	"strconv"

	"clinic-booking-be/internal/apperror"
	"clinic-booking-be/internal/user"

	"github.com/gin-gonic/gin"
)

var errInvalidDoctorID = apperror.Validation("doctor id must be a number")

func (h *Handler) ListSpecializations(c *gin.Context) {
	OK(c, user.Specializations())
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.users.ListDoctors(c.Request.Context(), c.Query("specialization"))
	if err != nil {
		WriteError(c, err)
		return
	}
	OK(c, doctors)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		WriteError(c, user.ErrDoctorNotFound)
		return
	}

	doctor, err := h.users.GetDoctor(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	OK(c, doctor)
}

type AvailabilityResponse struct {
	DoctorID int64    `json:"doctor_id"`
	Date     string   `json:"date"`
	Slots    []string `json:"available_slots"`
}

// Availability answers GET /doctors/:id/availability?date=DD/MM/YYYY.
func (h *Handler) Availability(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(c, errInvalidDoctorID)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.users.GetDoctor(ctx, id); err != nil {
		WriteError(c, err)
		return
	}

	date := c.Query("date")
	slots, err := h.appts.Availability(ctx, id, date)
	if err != nil {
		WriteError(c, err)
		return
	}

	OK(c, AvailabilityResponse{DoctorID: id, Date: date, Slots: slots})
}
