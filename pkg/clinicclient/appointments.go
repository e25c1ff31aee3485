package clinicclient

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"
	"unicode/utf8"

	"clinic-booking-be/internal/appointment"
)

const maxNotesLength = 1000

type Appointment struct {
	ID             string                    `json:"id"`
	PatientID      int64                     `json:"patient_id"`
	PatientName    string                    `json:"patient_name"`
	DoctorID       int64                     `json:"doctor_id"`
	DoctorName     string                    `json:"doctor_name"`
	Specialization string                    `json:"specialization"`
	Date           string                    `json:"appointment_date"`
	Time           string                    `json:"appointment_time"`
	Notes          string                    `json:"notes"`
	Amount         int64                     `json:"amount"`
	Status         appointment.Status        `json:"status"`
	PaymentStatus  appointment.PaymentStatus `json:"payment_status"`
	Actions        []appointment.Action      `json:"actions"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

// Can reports whether the server offered action to this caller.
func (a *Appointment) Can(action appointment.Action) bool {
	return slices.Contains(a.Actions, action)
}

type BookRequest struct {
	DoctorID int64  `json:"doctor_id"`
	Date     string `json:"appointment_date"`
	Time     string `json:"appointment_time"`
	Notes    string `json:"notes,omitempty"`
}

type ListOptions struct {
	Status       appointment.Status
	UpcomingOnly bool
}

type availability struct {
	DoctorID int64    `json:"doctor_id"`
	Date     string   `json:"date"`
	Slots    []string `json:"available_slots"`
}

// Availability returns the free slots of a doctor on date (DD/MM/YYYY).
func (c *Client) Availability(ctx context.Context, doctorID int64, date string) ([]string, error) {
	path := "/api/doctors/" + strconv.FormatInt(doctorID, 10) + "/availability"

	var out availability
	if err := c.do(ctx, nil, http.MethodGet, path, url.Values{"date": {date}}, nil, &out); err != nil {
		return nil, err
	}
	return out.Slots, nil
}

// BookAppointment validates the request locally, checks that the slot is
// still free, then submits it once. A slot that is already held is reported
// as ErrSlotTaken without a booking attempt; the server stays
// the authority when two clients race for the same slot.
func (c *Client) BookAppointment(ctx context.Context, sess Session, req BookRequest) (*Appointment, error) {
	if err := sess.require(); err != nil {
		return nil, err
	}
	if err := c.validateBooking(req); err != nil {
		return nil, err
	}

	free, err := c.Availability(ctx, req.DoctorID, req.Date)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(free, req.Time) {
		return nil, ErrSlotTaken
	}

	var out Appointment
	if err := c.do(ctx, &sess, http.MethodPost, "/api/appointments", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) validateBooking(req BookRequest) error {
	if !appointment.ValidSlot(req.Time) {
		return ErrInvalidSlot
	}
	date, err := appointment.ParseDate(req.Date)
	if err != nil {
		return err
	}
	at, err := appointment.Scheduled(date, req.Time, c.loc)
	if err != nil {
		return err
	}
	if !at.After(c.now()) {
		return ErrPastSlot
	}
	if utf8.RuneCountInString(req.Notes) > maxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// UpdateRequest edits a pending appointment. Nil fields are left unchanged.
type UpdateRequest struct {
	Date  *string `json:"appointment_date,omitempty"`
	Time  *string `json:"appointment_time,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

func (c *Client) UpdateAppointment(ctx context.Context, sess Session, id string, req UpdateRequest) (*Appointment, error) {
	if req.Date == nil && req.Time == nil && req.Notes == nil {
		return nil, ErrNothingToUpdate
	}

	var out Appointment
	if err := c.do(ctx, &sess, http.MethodPut, "/api/appointments/"+url.PathEscape(id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Appointments(ctx context.Context, sess Session, opts ListOptions) ([]Appointment, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", string(opts.Status))
	}
	if opts.UpcomingOnly {
		q.Set("upcoming", "true")
	}

	var out []Appointment
	if err := c.do(ctx, &sess, http.MethodGet, "/api/appointments", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Appointment(ctx context.Context, sess Session, id string) (*Appointment, error) {
	return c.appointmentCall(ctx, sess, http.MethodGet, "/api/appointments/"+url.PathEscape(id))
}

func (c *Client) CancelAppointment(ctx context.Context, sess Session, id string) (*Appointment, error) {
	return c.appointmentCall(ctx, sess, http.MethodDelete, "/api/appointments/"+url.PathEscape(id))
}

func (c *Client) ConfirmAppointment(ctx context.Context, sess Session, id string) (*Appointment, error) {
	return c.appointmentCall(ctx, sess, http.MethodPost, "/api/appointments/"+url.PathEscape(id)+"/confirm")
}

func (c *Client) CompleteAppointment(ctx context.Context, sess Session, id string) (*Appointment, error) {
	return c.appointmentCall(ctx, sess, http.MethodPost, "/api/appointments/"+url.PathEscape(id)+"/complete")
}

func (c *Client) appointmentCall(ctx context.Context, sess Session, method, path string) (*Appointment, error) {
	var out Appointment
	if err := c.do(ctx, &sess, method, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
