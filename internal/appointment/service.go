package appointment

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"clinic-booking-be/internal/apperror"
	"clinic-booking-be/internal/db"
	"clinic-booking-be/internal/logger"
	"clinic-booking-be/internal/metrics"
	"clinic-booking-be/internal/session"
	"clinic-booking-be/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxNotesLen    = 1000
	slotConstraint = "appointments_doctor_slot_key"
)

// Directory resolves the people an appointment refers to.
type Directory interface {
	GetUser(ctx context.Context, id int64) (*user.User, error)
	GetDoctor(ctx context.Context, id int64) (*user.Doctor, error)
}

type Service interface {
	Create(ctx context.Context, sess session.Session, input CreateInput) (*Appointment, error)
	Get(ctx context.Context, sess session.Session, id string) (*Appointment, error)
	List(ctx context.Context, sess session.Session, filter ListFilter) ([]*Appointment, error)

	Cancel(ctx context.Context, sess session.Session, id string) (*Appointment, error)
	Confirm(ctx context.Context, sess session.Session, id string) (*Appointment, error)
	Complete(ctx context.Context, sess session.Session, id string) (*Appointment, error)

	// Update moves a pending appointment to another slot or edits its notes.
	Update(ctx context.Context, sess session.Session, id string, input UpdateInput) (*Appointment, error)

	// Availability returns the free, still-future slots of a doctor's day.
	Availability(ctx context.Context, doctorID int64, date string) ([]string, error)
}

type service struct {
	repo   Repository
	people Directory
	locker SlotLocker
	loc    *time.Location
	now    func() time.Time
}

func NewService(repo Repository, people Directory, locker SlotLocker, loc *time.Location) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		repo:   repo,
		people: people,
		locker: locker,
		loc:    loc,
		now:    time.Now,
	}
}

func (s *service) Create(ctx context.Context, sess session.Session, input CreateInput) (*Appointment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Appointment"),
		zap.String("method", "Create"),
		zap.Int64("doctor_id", input.DoctorID),
	)

	if err := sess.Require(); err != nil {
		return nil, err
	}

	patientID := sess.UserID
	switch sess.Role {
	case session.RolePatient:
	case session.RoleAdmin:
		if input.PatientID == 0 {
			return nil, ErrPatientRequired
		}
		patientID = input.PatientID
	default:
		return nil, ErrRoleNotAllowed
	}

	date, err := s.validateSlot(input.Date, input.Time)
	if err != nil {
		return nil, err
	}
	notes := strings.TrimSpace(input.Notes)
	if utf8.RuneCountInString(notes) > maxNotesLen {
		return nil, ErrNotesTooLong
	}

	doctor, err := s.people.GetDoctor(ctx, input.DoctorID)
	if err != nil {
		return nil, err
	}
	patient, err := s.people.GetUser(ctx, patientID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidPatient
		}
		return nil, err
	}
	if patient.Role != session.RolePatient {
		return nil, ErrInvalidPatient
	}

	a := &Appointment{
		ID:             uuid.NewString(),
		PatientID:      patient.ID,
		PatientName:    patient.FullName,
		DoctorID:       doctor.ID,
		DoctorName:     doctor.FullName,
		Specialization: doctor.Specialization,
		Date:           date,
		Time:           input.Time,
		Notes:          notes,
		Amount:         doctor.Fee,
		Status:         StatusPending,
		PaymentStatus:  PaymentUnpaid,
	}

	unlock, err := s.claimSlot(ctx, log, a.DoctorID, a.Date, a.Time)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.repo.Create(ctx, a); err != nil {
		if db.IsUniqueViolation(err, slotConstraint) {
			metrics.BookingConflict()
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	metrics.Transition(string(StatusPending), "ok")
	log.Info("appointment booked",
		zap.String("appointment_id", a.ID),
		zap.Int64("patient_id", a.PatientID),
		zap.String("slot", a.SlotKey()),
	)
	return a, nil
}

// claimSlot takes the slot lock and checks that no live appointment holds
// the slot. The caller releases the lock after its write.
func (s *service) claimSlot(ctx context.Context, log *zap.Logger, doctorID int64, date time.Time, slot string) (func(), error) {
	key := SlotKey(doctorID, date, slot)

	unlock, err := s.locker.Lock(ctx, key)
	if err != nil {
		log.Warn("slot lock not acquired", zap.Error(err))
		if errors.Is(err, ErrLockTimeout) {
			metrics.BookingConflict()
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	taken, err := s.repo.SlotTaken(ctx, doctorID, date, slot)
	if err != nil {
		unlock()
		log.Error("slot lookup failed", zap.Error(err))
		return nil, err
	}
	if taken {
		unlock()
		metrics.BookingConflict()
		log.Info("slot already booked", zap.String("slot", key))
		return nil, ErrSlotTaken
	}
	return unlock, nil
}

// validateSlot checks the slot set, date format and that the slot is still
// ahead of now in the clinic time zone.
func (s *service) validateSlot(dateStr, slot string) (time.Time, error) {
	if !ValidSlot(slot) {
		return time.Time{}, ErrInvalidSlot
	}
	date, err := ParseDate(dateStr)
	if err != nil {
		return time.Time{}, err
	}
	at, err := Scheduled(date, slot, s.loc)
	if err != nil {
		return time.Time{}, err
	}
	if !at.After(s.now()) {
		return time.Time{}, ErrPastSlot
	}
	return date, nil
}

func (s *service) load(ctx context.Context, id string) (*Appointment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrAppointmentNotFound
	}
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	return a, err
}

func (s *service) Get(ctx context.Context, sess session.Session, id string) (*Appointment, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !Participant(sess, a) {
		logger.FromCtx(ctx).Warn("appointment access denied",
			zap.String("appointment_id", id),
			zap.Int64("user_id", sess.UserID),
		)
		return nil, ErrAppointmentNotFound
	}
	return a, nil
}

func (s *service) List(ctx context.Context, sess session.Session, filter ListFilter) ([]*Appointment, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	switch sess.Role {
	case session.RolePatient:
		filter.PatientID, filter.DoctorID = sess.UserID, 0
	case session.RoleDoctor:
		filter.PatientID, filter.DoctorID = 0, sess.UserID
	}

	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Wrap(apperror.New(apperror.KindInternal, "failed to list appointments"), err)
	}
	return list, nil
}

func (s *service) Cancel(ctx context.Context, sess session.Session, id string) (*Appointment, error) {
	return s.transition(ctx, sess, id, ActionCancel, StatusCancelled)
}

func (s *service) Confirm(ctx context.Context, sess session.Session, id string) (*Appointment, error) {
	return s.transition(ctx, sess, id, ActionConfirm, StatusConfirmed)
}

func (s *service) Complete(ctx context.Context, sess session.Session, id string) (*Appointment, error) {
	return s.transition(ctx, sess, id, ActionComplete, StatusCompleted)
}

func (s *service) transition(ctx context.Context, sess session.Session, id string, action Action, to Status) (*Appointment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Appointment"),
		zap.String("method", string(action)),
		zap.String("appointment_id", id),
	)

	if err := sess.Require(); err != nil {
		return nil, err
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := Authorize(sess, a, action); err != nil {
		metrics.Transition(string(to), string(apperror.KindOf(err)))
		log.Info("transition rejected",
			zap.String("status", string(a.Status)),
			zap.String("role", string(sess.Role)),
			zap.Error(err),
		)
		return nil, err
	}

	var updated *Appointment
	if action == ActionCancel {
		updated, err = s.repo.Cancel(ctx, id)
	} else {
		updated, err = s.repo.UpdateStatus(ctx, id, a.Status, to)
	}
	if errors.Is(err, sql.ErrNoRows) {
		metrics.Transition(string(to), string(apperror.KindState))
		log.Warn("concurrent transition detected")
		return nil, ErrConcurrentUpdate
	}
	if err != nil {
		log.Error("transition failed", zap.Error(err))
		return nil, err
	}

	metrics.Transition(string(to), "ok")
	log.Info("appointment transitioned",
		zap.String("from", string(a.Status)),
		zap.String("to", string(updated.Status)),
		zap.Int64("actor_id", sess.UserID),
	)
	return updated, nil
}

func (s *service) Update(ctx context.Context, sess session.Session, id string, input UpdateInput) (*Appointment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Appointment"),
		zap.String("method", "Update"),
		zap.String("appointment_id", id),
	)

	if err := sess.Require(); err != nil {
		return nil, err
	}
	if input.empty() {
		return nil, ErrNothingToUpdate
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	// Whoever may cancel a booking may also edit it.
	if err := Authorize(sess, a, ActionCancel); err != nil {
		log.Info("update rejected",
			zap.String("status", string(a.Status)),
			zap.String("role", string(sess.Role)),
			zap.Error(err),
		)
		return nil, err
	}

	notes := a.Notes
	if input.Notes != nil {
		notes = strings.TrimSpace(*input.Notes)
		if utf8.RuneCountInString(notes) > maxNotesLen {
			return nil, ErrNotesTooLong
		}
	}

	date, slot := a.Date, a.Time
	if input.Date != nil || input.Time != nil {
		dateStr := FormatDate(a.Date)
		if input.Date != nil {
			dateStr = *input.Date
		}
		if input.Time != nil {
			slot = *input.Time
		}
		if date, err = s.validateSlot(dateStr, slot); err != nil {
			return nil, err
		}
	}

	if !date.Equal(a.Date) || slot != a.Time {
		unlock, err := s.claimSlot(ctx, log, a.DoctorID, date, slot)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	updated, err := s.repo.Reschedule(ctx, id, date, slot, notes)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		log.Warn("concurrent update detected")
		return nil, ErrConcurrentUpdate
	case db.IsUniqueViolation(err, slotConstraint):
		metrics.BookingConflict()
		return nil, ErrSlotTaken
	case err != nil:
		log.Error("update failed", zap.Error(err))
		return nil, err
	}

	log.Info("appointment updated",
		zap.String("slot", updated.SlotKey()),
		zap.Int64("actor_id", sess.UserID),
	)
	return updated, nil
}

func (s *service) Availability(ctx context.Context, doctorID int64, dateStr string) ([]string, error) {
	date, err := ParseDate(dateStr)
	if err != nil {
		return nil, err
	}
	if _, err := s.people.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	booked, err := s.repo.BookedSlots(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	held := make(map[string]bool, len(booked))
	for _, b := range booked {
		held[b] = true
	}

	now := s.now()
	free := make([]string, 0, len(Slots))
	for _, slot := range Slots {
		at, _ := Scheduled(date, slot, s.loc)
		if held[slot] || !at.After(now) {
			continue
		}
		free = append(free, slot)
	}
	return free, nil
}
