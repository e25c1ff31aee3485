package chat

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode/utf8"

	"clinic-booking-be/internal/appointment"
	"clinic-booking-be/internal/logger"
	"clinic-booking-be/internal/session"
	"clinic-booking-be/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxMessageLen = 2000

// AppointmentReader loads the appointment a chat belongs to.
type AppointmentReader interface {
	GetByID(ctx context.Context, id string) (*appointment.Appointment, error)
}

// Users resolves sender display names.
type Users interface {
	GetUser(ctx context.Context, id int64) (*user.User, error)
}

type Service interface {
	Send(ctx context.Context, sess session.Session, input SendInput) (*Message, error)
	List(ctx context.Context, sess session.Session, appointmentID string, afterID int64) ([]*Message, error)
	Conversations(ctx context.Context, sess session.Session) ([]*Conversation, error)
}

type service struct {
	repo  Repository
	appts AppointmentReader
	users Users
}

func NewService(repo Repository, appts AppointmentReader, users Users) Service {
	return &service{repo: repo, appts: appts, users: users}
}

func (s *service) load(ctx context.Context, id string) (*appointment.Appointment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appointment.ErrAppointmentNotFound
	}
	a, err := s.appts.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appointment.ErrAppointmentNotFound
	}
	return a, err
}

func (s *service) Send(ctx context.Context, sess session.Session, input SendInput) (*Message, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Chat"),
		zap.String("method", "Send"),
		zap.String("appointment_id", input.AppointmentID),
	)

	if err := sess.Require(); err != nil {
		return nil, err
	}

	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(body) > maxMessageLen {
		return nil, ErrMessageTooLong
	}

	a, err := s.load(ctx, input.AppointmentID)
	if err != nil {
		return nil, err
	}
	if err := appointment.Authorize(sess, a, appointment.ActionChat); err != nil {
		log.Info("chat rejected", zap.String("status", string(a.Status)), zap.Error(err))
		return nil, err
	}

	sender, err := s.users.GetUser(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	m := &Message{
		AppointmentID: a.ID,
		SenderID:      sess.UserID,
		SenderName:    sender.FullName,
		SenderRole:    sess.Role,
		Body:          body,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	log.Debug("message sent", zap.Int64("message_id", m.ID))
	return m, nil
}

func (s *service) List(ctx context.Context, sess session.Session, appointmentID string, afterID int64) ([]*Message, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	if afterID < 0 {
		return nil, ErrInvalidCursor
	}

	a, err := s.load(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := appointment.Authorize(sess, a, appointment.ActionView); err != nil {
		return nil, err
	}

	msgs, err := s.repo.List(ctx, a.ID, afterID)
	if err != nil {
		return nil, err
	}

	if n, err := s.repo.MarkRead(ctx, a.ID, sess.UserID); err != nil {
		logger.FromCtx(ctx).Warn("failed to mark messages read",
			zap.String("appointment_id", a.ID),
			zap.Error(err),
		)
	} else if n > 0 {
		for _, m := range msgs {
			if m.SenderID != sess.UserID {
				m.Read = true
			}
		}
	}
	return msgs, nil
}

func (s *service) Conversations(ctx context.Context, sess session.Session) ([]*Conversation, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}

	var scope Scope
	switch sess.Role {
	case session.RolePatient:
		scope.PatientID = sess.UserID
	case session.RoleDoctor:
		scope.DoctorID = sess.UserID
	}
	return s.repo.Conversations(ctx, scope, sess.UserID)
}
