package appointment

import "clinic-booking-be/internal/session"

type Action string

const (
	ActionView     Action = "view"
	ActionCancel   Action = "cancel"
	ActionPay      Action = "pay"
	ActionConfirm  Action = "confirm"
	ActionComplete Action = "complete"
	ActionChat     Action = "chat"
)

// rules is the role x status table. ActionPay is further dropped once the
// appointment is paid.
var rules = map[Status]map[session.Role][]Action{
	StatusPending: {
		session.RolePatient: {ActionView, ActionCancel, ActionPay},
		session.RoleDoctor:  {ActionView, ActionConfirm},
		session.RoleAdmin:   {ActionView, ActionConfirm, ActionCancel},
	},
	StatusConfirmed: {
		session.RolePatient: {ActionView, ActionPay, ActionChat},
		session.RoleDoctor:  {ActionView, ActionChat, ActionComplete},
		session.RoleAdmin:   {ActionView, ActionChat, ActionComplete},
	},
	StatusCompleted: {
		session.RolePatient: {ActionView},
		session.RoleDoctor:  {ActionView},
		session.RoleAdmin:   {ActionView},
	},
	StatusCancelled: {
		session.RolePatient: {ActionView},
		session.RoleDoctor:  {ActionView},
		session.RoleAdmin:   {ActionView},
	},
}

// Allowed lists the actions role may take on an appointment in the given
// state. It ignores ownership; see Authorize.
func Allowed(role session.Role, status Status, pay PaymentStatus) []Action {
	var out []Action
	for _, a := range rules[status][role] {
		if a == ActionPay && pay == PaymentPaid {
			continue
		}
		out = append(out, a)
	}
	return out
}

func Permits(role session.Role, status Status, pay PaymentStatus, action Action) bool {
	for _, a := range Allowed(role, status, pay) {
		if a == action {
			return true
		}
	}
	return false
}

// roleEverAllowed reports whether role may take action in at least one state.
func roleEverAllowed(role session.Role, action Action) bool {
	for _, byRole := range rules {
		for _, a := range byRole[role] {
			if a == action {
				return true
			}
		}
	}
	return false
}

// Participant reports whether the session is the owning patient, the
// assigned doctor or an admin.
func Participant(sess session.Session, a *Appointment) bool {
	switch sess.Role {
	case session.RoleAdmin:
		return true
	case session.RolePatient:
		return a.PatientID == sess.UserID
	case session.RoleDoctor:
		return a.DoctorID == sess.UserID
	}
	return false
}

// Authorize checks that sess may perform action on a right now.
// Missing session → Unauthenticated; not a participant or a role that never
// gets the action → Unauthorized; otherwise a StateError naming why the
// current state forbids it.
func Authorize(sess session.Session, a *Appointment, action Action) error {
	if err := sess.Require(); err != nil {
		return err
	}
	if !Participant(sess, a) {
		return ErrNotParticipant
	}
	if Permits(sess.Role, a.Status, a.PaymentStatus, action) {
		return nil
	}
	if !roleEverAllowed(sess.Role, action) {
		return ErrRoleNotAllowed
	}
	return stateError(a, action)
}

func stateError(a *Appointment, action Action) error {
	switch {
	case a.Status == StatusCancelled:
		return ErrAlreadyCancelled
	case a.Status == StatusCompleted:
		return ErrAlreadyCompleted
	case action == ActionPay && a.PaymentStatus == PaymentPaid:
		return ErrAlreadyPaid
	case action == ActionChat:
		return ErrChatUnavailable
	case action == ActionComplete:
		return ErrNotConfirmed
	case action == ActionCancel, action == ActionConfirm:
		return ErrNotPending
	}
	return ErrActionUnavailable
}
