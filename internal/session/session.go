package session

import (
	"context"

	"clinic-booking-be/internal/apperror"
)

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// Session identifies the caller of a service operation. It is built once by
// the auth middleware and passed explicitly into every service call.
type Session struct {
	UserID int64
	Email  string
	Role   Role
}

var ErrUnauthenticated = apperror.Unauthenticated("authentication required")

func (s Session) Authenticated() bool {
	return s.UserID > 0 && s.Role.Valid()
}

// Require returns ErrUnauthenticated for an empty or malformed session.
func (s Session) Require() error {
	if !s.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

type contextKey string

const sessionKey contextKey = "session"

// WithContext stores the session for the handler layer only. Services never
// read it from ctx.
func WithContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok
}
