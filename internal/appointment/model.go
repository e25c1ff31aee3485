package appointment

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Terminal statuses have no outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

type Appointment struct {
	ID             string
	PatientID      int64
	PatientName    string
	DoctorID       int64
	DoctorName     string
	Specialization string
	Date           time.Time // calendar date, midnight UTC
	Time           string    // one of Slots
	Notes          string
	Amount         int64
	Status         Status
	PaymentStatus  PaymentStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Upcoming reports whether the appointment still lies ahead in the lifecycle.
func (a *Appointment) Upcoming() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

func (a *Appointment) SlotKey() string {
	return SlotKey(a.DoctorID, a.Date, a.Time)
}

type CreateInput struct {
	DoctorID int64
	Date     string // DD/MM/YYYY
	Time     string // HH:MM
	Notes    string

	// PatientID is honoured only for admins booking on behalf of a patient.
	PatientID int64
}

// UpdateInput edits a pending appointment. Nil fields keep their value.
type UpdateInput struct {
	Date  *string // DD/MM/YYYY
	Time  *string // HH:MM
	Notes *string
}

func (in UpdateInput) empty() bool {
	return in.Date == nil && in.Time == nil && in.Notes == nil
}

type ListFilter struct {
	PatientID    int64
	DoctorID     int64
	Status       Status
	UpcomingOnly bool
}
