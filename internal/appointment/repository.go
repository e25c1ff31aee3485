package appointment

import (
	"context"
	"database/sql"
	"time"

	"clinic-booking-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	List(ctx context.Context, f ListFilter) ([]*Appointment, error)

	SlotTaken(ctx context.Context, doctorID int64, date time.Time, slot string) (bool, error)
	BookedSlots(ctx context.Context, doctorID int64, date time.Time) ([]string, error)

	// UpdateStatus moves id from one status to another; sql.ErrNoRows when
	// the row is no longer in from.
	UpdateStatus(ctx context.Context, id string, from, to Status) (*Appointment, error)
	// Reschedule rewrites slot and notes of a pending appointment;
	// sql.ErrNoRows once it has left pending.
	Reschedule(ctx context.Context, id string, date time.Time, slot, notes string) (*Appointment, error)
	// Cancel moves a pending appointment to cancelled and expires its open
	// payment attempts in the same transaction.
	Cancel(ctx context.Context, id string) (*Appointment, error)
	// MarkPaid sets payment_status=paid unless the appointment is cancelled.
	MarkPaid(ctx context.Context, id string) (*Appointment, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const columns = `
	id, patient_id, patient_name, doctor_id, doctor_name, specialization,
	appointment_date, appointment_time, notes, amount, status, payment_status,
	created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAppointment(s scanner) (*Appointment, error) {
	var a Appointment
	if err := s.Scan(
		&a.ID, &a.PatientID, &a.PatientName, &a.DoctorID, &a.DoctorName, &a.Specialization,
		&a.Date, &a.Time, &a.Notes, &a.Amount, &a.Status, &a.PaymentStatus,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.Date = time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(), 0, 0, 0, 0, time.UTC)
	return &a, nil
}

func (r *repository) Create(ctx context.Context, a *Appointment) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Appointment"),
		zap.String("method", "Create"),
	)

	const q = `
		INSERT INTO appointments (
			id, patient_id, patient_name, doctor_id, doctor_name, specialization,
			appointment_date, appointment_time, notes, amount, status, payment_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, q,
		a.ID, a.PatientID, a.PatientName, a.DoctorID, a.DoctorName, a.Specialization,
		a.Date.Format(isoDate), a.Time, a.Notes, a.Amount, a.Status, a.PaymentStatus,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		log.Error("insert failed", zap.String("slot", a.SlotKey()), zap.Error(err))
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	q := `SELECT` + columns + ` FROM appointments WHERE id = $1`
	return scanAppointment(r.db.QueryRowContext(ctx, q, id))
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]*Appointment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Appointment"),
		zap.String("method", "List"),
	)

	q := `SELECT` + columns + `
		FROM appointments
		WHERE ($1::bigint = 0 OR patient_id = $1)
		  AND ($2::bigint = 0 OR doctor_id = $2)
		  AND ($3::text = '' OR status = $3)
		  AND (NOT $4::boolean OR status IN ('pending', 'confirmed'))
		ORDER BY appointment_date, appointment_time, created_at
	`

	rows, err := r.db.QueryContext(ctx, q, f.PatientID, f.DoctorID, string(f.Status), f.UpcomingOnly)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var res []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func (r *repository) SlotTaken(ctx context.Context, doctorID int64, date time.Time, slot string) (bool, error) {
	const q = `
		SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE doctor_id = $1
			  AND appointment_date = $2
			  AND appointment_time = $3
			  AND status <> 'cancelled'
		)
	`
	var taken bool
	err := r.db.QueryRowContext(ctx, q, doctorID, date.Format(isoDate), slot).Scan(&taken)
	return taken, err
}

func (r *repository) BookedSlots(ctx context.Context, doctorID int64, date time.Time) ([]string, error) {
	const q = `
		SELECT appointment_time FROM appointments
		WHERE doctor_id = $1
		  AND appointment_date = $2
		  AND status <> 'cancelled'
	`
	rows, err := r.db.QueryContext(ctx, q, doctorID, date.Format(isoDate))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, id string, from, to Status) (*Appointment, error) {
	q := `
		UPDATE appointments
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING` + columns
	return scanAppointment(r.db.QueryRowContext(ctx, q, id, from, to))
}

func (r *repository) Reschedule(ctx context.Context, id string, date time.Time, slot, notes string) (*Appointment, error) {
	q := `
		UPDATE appointments
		SET appointment_date = $2, appointment_time = $3, notes = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING` + columns
	return scanAppointment(r.db.QueryRowContext(ctx, q, id, date.Format(isoDate), slot, notes))
}

func (r *repository) Cancel(ctx context.Context, id string) (*Appointment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Appointment"),
		zap.String("method", "Cancel"),
		zap.String("appointment_id", id),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	q := `
		UPDATE appointments
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING` + columns
	a, err := scanAppointment(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE payments
		SET status = 'expired', updated_at = NOW()
		WHERE appointment_id = $1 AND status = 'created'
	`, id)
	if err != nil {
		log.Error("failed to invalidate payments", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if n, _ := res.RowsAffected(); n > 0 {
		log.Info("open payments invalidated", zap.Int64("count", n))
	}
	return a, nil
}

func (r *repository) MarkPaid(ctx context.Context, id string) (*Appointment, error) {
	q := `
		UPDATE appointments
		SET payment_status = 'paid', updated_at = NOW()
		WHERE id = $1 AND status <> 'cancelled'
		RETURNING` + columns
	return scanAppointment(r.db.QueryRowContext(ctx, q, id))
}
