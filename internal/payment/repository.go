package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"clinic-booking-be/internal/appointment"
	"clinic-booking-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	// Create locks the appointment, re-checks that it is still payable,
	// expires its open attempts and inserts p in one transaction, so at most
	// one payment is ever created at a time and none on a cancelled
	// appointment.
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id string) (*Payment, error)
	GetByReference(ctx context.Context, reference string) (*Payment, error)

	// Expire moves a created payment to expired; sql.ErrNoRows otherwise.
	Expire(ctx context.Context, id string) (*Payment, error)
	// MarkPaid flips a created payment to paid together with its
	// appointment's payment_status. sql.ErrNoRows when the payment is no
	// longer created, ErrAppointmentCancelled when the appointment is.
	MarkPaid(ctx context.Context, p *Payment, paidAt time.Time) (*Payment, error)

	// SavePaymentWebhook records a callback. A redelivered event that was
	// never processed returns its existing id so it is applied again; only
	// processed events report isDuplicate.
	SavePaymentWebhook(
		ctx context.Context,
		provider string,
		eventID string,
		eventType string,
		reference string,
		payload json.RawMessage,
		signatureValid bool,
	) (webhookID int64, isDuplicate bool, err error)

	MarkWebhookProcessed(ctx context.Context, webhookID int64) error
	MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const columns = `
	id, appointment_id, reference, amount, gateway, qr_code, status,
	expires_at, paid_at, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPayment(s scanner) (*Payment, error) {
	var (
		p      Payment
		paidAt sql.NullTime
	)
	if err := s.Scan(
		&p.ID, &p.AppointmentID, &p.Reference, &p.Amount, &p.Gateway, &p.QRCode, &p.Status,
		&p.ExpiresAt, &paidAt, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if paidAt.Valid {
		p.PaidAt = &paidAt.Time
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, p *Payment) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Payment"),
		zap.String("method", "Create"),
		zap.String("appointment_id", p.AppointmentID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Lock the appointment so a concurrent cancel either lands first and is
	// seen here, or waits and expires the payment inserted below.
	var apptStatus, paymentStatus string
	err = tx.QueryRowContext(ctx, `
		SELECT status, payment_status
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, p.AppointmentID).Scan(&apptStatus, &paymentStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return appointment.ErrAppointmentNotFound
	}
	if err != nil {
		log.Error("failed to lock appointment", zap.Error(err))
		return err
	}
	switch {
	case apptStatus == string(appointment.StatusCancelled):
		return ErrAppointmentCancelled
	case paymentStatus == string(appointment.PaymentPaid):
		return ErrAlreadyPaid
	case apptStatus == string(appointment.StatusCompleted):
		return appointment.ErrAlreadyCompleted
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE payments
		SET status = 'expired', updated_at = NOW()
		WHERE appointment_id = $1 AND status = 'created'
	`, p.AppointmentID)
	if err != nil {
		log.Error("failed to expire previous attempts", zap.Error(err))
		return err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO payments (
			id, appointment_id, reference, amount, gateway, qr_code, status, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`,
		p.ID, p.AppointmentID, p.Reference, p.Amount, p.Gateway, p.QRCode, p.Status, p.ExpiresAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		log.Error("insert payment failed", zap.String("reference", p.Reference), zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	if n, _ := res.RowsAffected(); n > 0 {
		log.Info("previous payment attempts expired", zap.Int64("count", n))
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Payment, error) {
	q := `SELECT` + columns + ` FROM payments WHERE id = $1`
	return scanPayment(r.db.QueryRowContext(ctx, q, id))
}

func (r *repository) GetByReference(ctx context.Context, reference string) (*Payment, error) {
	q := `SELECT` + columns + ` FROM payments WHERE reference = $1`
	return scanPayment(r.db.QueryRowContext(ctx, q, reference))
}

func (r *repository) Expire(ctx context.Context, id string) (*Payment, error) {
	q := `
		UPDATE payments
		SET status = 'expired', updated_at = NOW()
		WHERE id = $1 AND status = 'created'
		RETURNING` + columns
	return scanPayment(r.db.QueryRowContext(ctx, q, id))
}

func (r *repository) MarkPaid(ctx context.Context, p *Payment, paidAt time.Time) (*Payment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Payment"),
		zap.String("method", "MarkPaid"),
		zap.String("payment_id", p.ID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Appointment row first, same lock order as appointment cancellation.
	res, err := tx.ExecContext(ctx, `
		UPDATE appointments
		SET payment_status = 'paid', updated_at = NOW()
		WHERE id = $1 AND status <> 'cancelled'
	`, p.AppointmentID)
	if err != nil {
		log.Error("failed to mark appointment paid", zap.Error(err))
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrAppointmentCancelled
	}

	q := `
		UPDATE payments
		SET status = 'paid', paid_at = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'created'
		RETURNING` + columns
	paid, err := scanPayment(tx.QueryRowContext(ctx, q, p.ID, paidAt))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error("failed to mark payment paid", zap.Error(err))
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return paid, nil
}

func (r *repository) SavePaymentWebhook(
	ctx context.Context,
	provider string,
	eventID string,
	eventType string,
	reference string,
	payload json.RawMessage,
	signatureValid bool,
) (int64, bool, error) {

	const q = `
	INSERT INTO payment_webhooks (
		provider,
		event_id,
		event_type,
		reference,
		signature_valid,
		payload
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (provider, event_id)
	DO UPDATE SET process_error = NULL
	WHERE payment_webhooks.processed_at IS NULL
	RETURNING id;
	`

	var id int64
	err := r.db.QueryRowContext(
		ctx,
		q,
		provider,
		eventID,
		eventType,
		reference,
		signatureValid,
		[]byte(payload),
	).Scan(&id)

	if err != nil {
		// Already processed; unprocessed redeliveries return their row again.
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, err
	}

	return id, false, nil
}

func (r *repository) MarkWebhookProcessed(ctx context.Context, webhookID int64) error {
	const q = `
	UPDATE payment_webhooks
	SET processed_at = now(), process_error = NULL
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID)
	return err
}

func (r *repository) MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error {
	const q = `
	UPDATE payment_webhooks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID, reason)
	return err
}
