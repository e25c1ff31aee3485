package handler

import (
	"time"

	"clinic-booking-be/internal/appointment"
	"clinic-booking-be/internal/payment"
	"clinic-booking-be/internal/session"
	"clinic-booking-be/internal/user"
)

type AppointmentResponse struct {
	ID             string               `json:"id"`
	PatientID      int64                `json:"patient_id"`
	PatientName    string               `json:"patient_name"`
	DoctorID       int64                `json:"doctor_id"`
	DoctorName     string               `json:"doctor_name"`
	Specialization string               `json:"specialization"`
	Date           string               `json:"appointment_date"`
	Time           string               `json:"appointment_time"`
	Notes          string               `json:"notes"`
	Amount         int64                `json:"amount"`
	Status         appointment.Status   `json:"status"`
	PaymentStatus  string               `json:"payment_status"`
	Actions        []appointment.Action `json:"actions"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// MapAppointment renders a for the caller, including the actions the
// caller's role may take on it right now.
func MapAppointment(a *appointment.Appointment, sess session.Session) AppointmentResponse {
	actions := []appointment.Action{}
	if appointment.Participant(sess, a) {
		actions = append(actions, appointment.Allowed(sess.Role, a.Status, a.PaymentStatus)...)
	}
	return AppointmentResponse{
		ID:             a.ID,
		PatientID:      a.PatientID,
		PatientName:    a.PatientName,
		DoctorID:       a.DoctorID,
		DoctorName:     a.DoctorName,
		Specialization: a.Specialization,
		Date:           appointment.FormatDate(a.Date),
		Time:           a.Time,
		Notes:          a.Notes,
		Amount:         a.Amount,
		Status:         a.Status,
		PaymentStatus:  string(a.PaymentStatus),
		Actions:        actions,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func MapAppointments(list []*appointment.Appointment, sess session.Session) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, MapAppointment(a, sess))
	}
	return out
}

type PaymentResponse struct {
	*payment.Payment
	Instructions []string `json:"instructions"`
}

func MapPayment(p *payment.Payment, loc *time.Location) PaymentResponse {
	resp := PaymentResponse{Payment: p, Instructions: []string{}}
	if p.Status == payment.StatusCreated {
		resp.Instructions = payment.Instructions(p, loc)
	}
	return resp
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        user.Profile `json:"user"`
}

func MapAuth(token string, u *user.User) AuthResponse {
	return AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        u.Profile(),
	}
}
