package chat

import (
	"context"
	"database/sql"
	"time"

	"clinic-booking-be/internal/appointment"
	"clinic-booking-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, m *Message) error
	// List returns the appointment's messages ordered by (created_at, id),
	// only those after the given message when afterID is non-zero.
	List(ctx context.Context, appointmentID string, afterID int64) ([]*Message, error)
	// MarkRead marks messages not sent by readerID as read.
	MarkRead(ctx context.Context, appointmentID string, readerID int64) (int64, error)
	Conversations(ctx context.Context, scope Scope, readerID int64) ([]*Conversation, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, m *Message) error {
	const q = `
		INSERT INTO messages (appointment_id, sender_id, sender_name, sender_role, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, q,
		m.AppointmentID, m.SenderID, m.SenderName, m.SenderRole, m.Body,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("insert message failed",
			zap.String("repo", "Chat"),
			zap.String("appointment_id", m.AppointmentID),
			zap.Error(err),
		)
	}
	return err
}

func (r *repository) List(ctx context.Context, appointmentID string, afterID int64) ([]*Message, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Chat"),
		zap.String("method", "List"),
	)

	const q = `
		SELECT id, appointment_id, sender_id, sender_name, sender_role, body,
		       read_at IS NOT NULL, created_at
		FROM messages
		WHERE appointment_id = $1
		  AND ($2::bigint = 0 OR (created_at, id) > (
		      SELECT created_at, id FROM messages WHERE id = $2
		  ))
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, q, appointmentID, afterID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	msgs := []*Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(
			&m.ID, &m.AppointmentID, &m.SenderID, &m.SenderName, &m.SenderRole, &m.Body,
			&m.Read, &m.CreatedAt,
		); err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

func (r *repository) MarkRead(ctx context.Context, appointmentID string, readerID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE messages
		SET read_at = NOW()
		WHERE appointment_id = $1 AND sender_id <> $2 AND read_at IS NULL
	`, appointmentID, readerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) Conversations(ctx context.Context, scope Scope, readerID int64) ([]*Conversation, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Chat"),
		zap.String("method", "Conversations"),
	)

	const q = `
		SELECT a.id, a.patient_name, a.doctor_name, a.specialization,
		       a.appointment_date, a.appointment_time, a.status,
		       lm.body, lm.sender_name, lm.created_at,
		       COALESCE(u.unread, 0)
		FROM appointments a
		LEFT JOIN LATERAL (
			SELECT body, sender_name, created_at
			FROM messages m
			WHERE m.appointment_id = a.id
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT 1
		) lm ON TRUE
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS unread
			FROM messages m
			WHERE m.appointment_id = a.id AND m.sender_id <> $3 AND m.read_at IS NULL
		) u ON TRUE
		WHERE ($1::bigint = 0 OR a.patient_id = $1)
		  AND ($2::bigint = 0 OR a.doctor_id = $2)
		  AND (lm.created_at IS NOT NULL OR a.status IN ('confirmed', 'completed'))
		ORDER BY a.created_at DESC
		LIMIT 100
	`

	rows, err := r.db.QueryContext(ctx, q, scope.PatientID, scope.DoctorID, readerID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	convs := []*Conversation{}
	for rows.Next() {
		var (
			c        Conversation
			lastBody sql.NullString
			lastFrom sql.NullString
			lastAt   sql.NullTime
			date     time.Time
		)
		if err := rows.Scan(
			&c.AppointmentID, &c.PatientName, &c.DoctorName, &c.Specialization,
			&date, &c.Time, &c.Status,
			&lastBody, &lastFrom, &lastAt,
			&c.UnreadCount,
		); err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		c.Date = appointment.FormatDate(date)
		if lastAt.Valid {
			c.LastMessage = &LastMessage{Body: lastBody.String, SenderName: lastFrom.String, CreatedAt: lastAt.Time}
		}
		convs = append(convs, &c)
	}
	return convs, rows.Err()
}
