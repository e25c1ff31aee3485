package payment

import "clinic-booking-be/internal/apperror"

var (
	ErrUnknownGateway       = apperror.Validation("unsupported payment gateway")
	ErrAmountMismatch       = apperror.Validation("amount does not match the appointment fee")
	ErrAppointmentCancelled = apperror.Validation("appointment is cancelled")
	ErrAlreadyPaid          = apperror.Validation("appointment is already paid")

	ErrPaymentNotFound       = apperror.NotFound("payment not found")
	ErrManualConfirmDisabled = apperror.Unauthorized("manual payment confirmation is disabled")
	ErrInvalidSignature      = apperror.Unauthenticated("invalid webhook signature")
	ErrGatewayUnavailable    = apperror.TransientNetwork("payment gateway unavailable")
)
