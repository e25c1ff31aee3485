package chat

import "clinic-booking-be/internal/apperror"

var (
	ErrEmptyMessage   = apperror.Validation("message must not be empty")
	ErrMessageTooLong = apperror.Validation("message must be at most 2000 characters")
	ErrInvalidCursor  = apperror.Validation("after must be a message id")
)
