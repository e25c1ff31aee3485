package payment

import (
	"time"
)

type Status string

const (
	StatusCreated Status = "created"
	StatusPaid    Status = "paid"
	StatusExpired Status = "expired"
)

// Terminal statuses never change again.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusExpired
}

type Payment struct {
	ID            string     `json:"payment_id"`
	AppointmentID string     `json:"appointment_id"`
	Reference     string     `json:"reference"`
	Amount        int64      `json:"amount"`
	Gateway       string     `json:"gateway"`
	QRCode        string     `json:"qr_code"`
	Status        Status     `json:"status"`
	ExpiresAt     time.Time  `json:"expires_at"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Expired reports whether an open payment has run past its window.
func (p *Payment) Expired(now time.Time) bool {
	return p.Status == StatusCreated && now.After(p.ExpiresAt)
}

type CreateInput struct {
	AppointmentID string
	Amount        int64
	Gateway       string
}

// GatewayStatus is what a gateway reports for a payment reference.
type GatewayStatus struct {
	Status Status
	PaidAt *time.Time
}
