package chat

import (
	"time"

	"clinic-booking-be/internal/session"
)

type Message struct {
	ID            int64        `json:"id"`
	AppointmentID string       `json:"appointment_id"`
	SenderID      int64        `json:"sender_id"`
	SenderName    string       `json:"sender_name"`
	SenderRole    session.Role `json:"sender_role"`
	Body          string       `json:"message"`
	Read          bool         `json:"read"`
	CreatedAt     time.Time    `json:"timestamp"`
}

type LastMessage struct {
	Body       string    `json:"message"`
	SenderName string    `json:"sender_name"`
	CreatedAt  time.Time `json:"timestamp"`
}

// Conversation is one appointment's chat as shown in the inbox.
type Conversation struct {
	AppointmentID  string       `json:"appointment_id"`
	PatientName    string       `json:"patient_name"`
	DoctorName     string       `json:"doctor_name"`
	Specialization string       `json:"specialization"`
	Date           string       `json:"appointment_date"`
	Time           string       `json:"appointment_time"`
	Status         string       `json:"status"`
	LastMessage    *LastMessage `json:"last_message"`
	UnreadCount    int          `json:"unread_count"`
}

type SendInput struct {
	AppointmentID string
	Body          string
}

// Scope narrows conversations to one patient or doctor; zero means any.
type Scope struct {
	PatientID int64
	DoctorID  int64
}
