package appointment

import "clinic-booking-be/internal/apperror"

var (
	// -- Validation --
	ErrInvalidSlot     = apperror.Validation("appointment time must be one of the clinic slots")
	ErrInvalidDate     = apperror.Validation("appointment date must be DD/MM/YYYY")
	ErrPastSlot        = apperror.Validation("appointment slot is in the past")
	ErrNotesTooLong    = apperror.Validation("notes must be at most 1000 characters")
	ErrPatientRequired = apperror.Validation("patient_id is required when booking on behalf of a patient")
	ErrInvalidPatient  = apperror.Validation("patient_id does not belong to a patient")
	ErrInvalidStatus   = apperror.Validation("unknown appointment status")
	ErrNothingToUpdate = apperror.Validation("provide appointment_date, appointment_time or notes")

	// -- Conflict --
	ErrSlotTaken = apperror.Conflict("doctor already has an appointment at this slot")

	// -- Lifecycle state --
	ErrAlreadyCancelled  = apperror.State("appointment is already cancelled")
	ErrAlreadyCompleted  = apperror.State("appointment is already completed")
	ErrAlreadyPaid       = apperror.State("appointment is already paid")
	ErrNotPending        = apperror.State("appointment is no longer pending")
	ErrNotConfirmed      = apperror.State("appointment is not confirmed yet")
	ErrChatUnavailable   = apperror.State("chat opens once the appointment is confirmed")
	ErrConcurrentUpdate  = apperror.State("appointment was changed by another request")
	ErrActionUnavailable = apperror.State("action is not available in the current state")

	// -- Access --
	ErrNotParticipant      = apperror.Unauthorized("access denied")
	ErrRoleNotAllowed      = apperror.Unauthorized("your role cannot perform this action")
	ErrAppointmentNotFound = apperror.NotFound("appointment not found")
)
