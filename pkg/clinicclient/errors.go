package clinicclient

import (
	"clinic-booking-be/internal/apperror"
	"clinic-booking-be/internal/appointment"
	"clinic-booking-be/internal/payment"
	"clinic-booking-be/internal/session"
	"clinic-booking-be/internal/user"
)

// Kind classifies a failure the same way the server does.
type Kind = apperror.Kind

const (
	KindValidation       = apperror.KindValidation
	KindState            = apperror.KindState
	KindConflict         = apperror.KindConflict
	KindUnauthenticated  = apperror.KindUnauthenticated
	KindUnauthorized     = apperror.KindUnauthorized
	KindNotFound         = apperror.KindNotFound
	KindTransientNetwork = apperror.KindTransientNetwork
	KindInternal         = apperror.KindInternal
)

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	return apperror.KindOf(err)
}

// Errors returned by the server and by local validation. Compare with
// errors.Is; the match is on kind and message.
var (
	ErrUnauthenticated = session.ErrUnauthenticated

	ErrInvalidSlot     = appointment.ErrInvalidSlot
	ErrInvalidDate     = appointment.ErrInvalidDate
	ErrPastSlot        = appointment.ErrPastSlot
	ErrNotesTooLong    = appointment.ErrNotesTooLong
	ErrNothingToUpdate = appointment.ErrNothingToUpdate
	ErrSlotTaken       = appointment.ErrSlotTaken

	ErrAlreadyCancelled    = appointment.ErrAlreadyCancelled
	ErrAlreadyCompleted    = appointment.ErrAlreadyCompleted
	ErrAlreadyPaid         = appointment.ErrAlreadyPaid
	ErrNotPending          = appointment.ErrNotPending
	ErrNotConfirmed        = appointment.ErrNotConfirmed
	ErrChatUnavailable     = appointment.ErrChatUnavailable
	ErrConcurrentUpdate    = appointment.ErrConcurrentUpdate
	ErrNotParticipant      = appointment.ErrNotParticipant
	ErrRoleNotAllowed      = appointment.ErrRoleNotAllowed
	ErrAppointmentNotFound = appointment.ErrAppointmentNotFound

	ErrDoctorNotFound     = user.ErrDoctorNotFound
	ErrGatewayUnavailable = payment.ErrGatewayUnavailable
)
