package user

import (
	"time"

	"clinic-booking-be/internal/session"
)

const defaultSpecialization = "General"

type User struct {
	ID              int64
	Email           string
	PasswordHash    string
	FullName        string
	Phone           string
	Role            session.Role
	Specialization  *string
	ExperienceYears int
	ConsultationFee *int64
	Rating          float64
	CreatedAt       time.Time
}

// Doctor is the public directory view of a doctor account.
type Doctor struct {
	ID              int64   `json:"id"`
	FullName        string  `json:"full_name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Specialization  string  `json:"specialization"`
	ExperienceYears int     `json:"experience_years"`
	Fee             int64   `json:"fee"`
	Rating          float64 `json:"rating"`
}

// Profile is what /auth/me and login return.
type Profile struct {
	ID             int64        `json:"id"`
	Email          string       `json:"email"`
	FullName       string       `json:"full_name"`
	Phone          string       `json:"phone"`
	Role           session.Role `json:"role"`
	Specialization *string      `json:"specialization,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

type RegisterInput struct {
	Email          string
	Password       string
	FullName       string
	Phone          string
	Role           session.Role
	Specialization string
}

func (u *User) Profile() Profile {
	return Profile{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		Phone:          u.Phone,
		Role:           u.Role,
		Specialization: u.Specialization,
		CreatedAt:      u.CreatedAt,
	}
}

func (u *User) Session() session.Session {
	return session.Session{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// AsDoctor builds the directory view, applying defaultFee when the doctor
// has no fee of their own.
func (u *User) AsDoctor(defaultFee int64) *Doctor {
	d := &Doctor{
		ID:              u.ID,
		FullName:        u.FullName,
		Email:           u.Email,
		Phone:           u.Phone,
		Specialization:  defaultSpecialization,
		ExperienceYears: u.ExperienceYears,
		Fee:             defaultFee,
		Rating:          u.Rating,
	}
	if u.Specialization != nil && *u.Specialization != "" {
		d.Specialization = *u.Specialization
	}
	if u.ConsultationFee != nil {
		d.Fee = *u.ConsultationFee
	}
	return d
}
