package user

import "clinic-booking-be/internal/apperror"

var (
	ErrEmailExists        = apperror.Conflict("email already registered")
	ErrInvalidCredentials = apperror.Unauthenticated("invalid email or password")
	ErrInvalidRole        = apperror.Validation("role must be patient or doctor")
	ErrUserNotFound       = apperror.NotFound("user not found")
	ErrDoctorNotFound     = apperror.NotFound("doctor not found")
)
