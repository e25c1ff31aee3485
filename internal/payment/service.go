package payment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"clinic-booking-be/internal/apperror"
	"clinic-booking-be/internal/appointment"
	"clinic-booking-be/internal/logger"
	"clinic-booking-be/internal/metrics"
	"clinic-booking-be/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AppointmentStore is the slice of the appointment repository payments need.
type AppointmentStore interface {
	GetByID(ctx context.Context, id string) (*appointment.Appointment, error)
	MarkPaid(ctx context.Context, id string) (*appointment.Appointment, error)
}

type Options struct {
	Expiry        time.Duration
	ManualConfirm bool
}

type Service interface {
	CreatePayment(ctx context.Context, sess session.Session, input CreateInput) (*Payment, error)
	CheckStatus(ctx context.Context, sess session.Session, paymentID string) (*Payment, error)
	ConfirmManually(ctx context.Context, sess session.Session, appointmentID string) (*appointment.Appointment, error)

	// ApplyGatewayStatus records a status pushed by a gateway callback.
	ApplyGatewayStatus(ctx context.Context, gateway, reference string, status GatewayStatus) (*Payment, error)
}

type service struct {
	repo     Repository
	appts    AppointmentStore
	gateways *Registry
	opts     Options
	now      func() time.Time
}

func NewService(repo Repository, appts AppointmentStore, gateways *Registry, opts Options) Service {
	if opts.Expiry <= 0 {
		opts.Expiry = 15 * time.Minute
	}
	return &service{
		repo:     repo,
		appts:    appts,
		gateways: gateways,
		opts:     opts,
		now:      time.Now,
	}
}

func (s *service) loadAppointment(ctx context.Context, id string) (*appointment.Appointment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appointment.ErrAppointmentNotFound
	}
	a, err := s.appts.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appointment.ErrAppointmentNotFound
	}
	return a, err
}

func (s *service) loadPayment(ctx context.Context, id string) (*Payment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrPaymentNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	return p, err
}

// payer reports whether sess may pay for or confirm payment of a.
func payer(sess session.Session, a *appointment.Appointment) bool {
	return sess.IsAdmin() || (sess.Role == session.RolePatient && a.PatientID == sess.UserID)
}

func (s *service) CreatePayment(ctx context.Context, sess session.Session, input CreateInput) (*Payment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Payment"),
		zap.String("method", "CreatePayment"),
		zap.String("appointment_id", input.AppointmentID),
		zap.String("gateway", input.Gateway),
	)

	if err := sess.Require(); err != nil {
		return nil, err
	}

	a, err := s.loadAppointment(ctx, input.AppointmentID)
	if err != nil {
		return nil, err
	}
	if !payer(sess, a) {
		log.Warn("payment attempt by non-owner", zap.Int64("user_id", sess.UserID))
		return nil, appointment.ErrNotParticipant
	}

	switch {
	case a.Status == appointment.StatusCancelled:
		return nil, ErrAppointmentCancelled
	case a.PaymentStatus == appointment.PaymentPaid:
		return nil, ErrAlreadyPaid
	case a.Status == appointment.StatusCompleted:
		return nil, appointment.ErrAlreadyCompleted
	}
	if !sess.IsAdmin() {
		if err := appointment.Authorize(sess, a, appointment.ActionPay); err != nil {
			return nil, err
		}
	}

	if input.Amount != a.Amount {
		log.Info("amount mismatch", zap.Int64("amount", input.Amount), zap.Int64("expected", a.Amount))
		return nil, ErrAmountMismatch
	}

	gw, err := s.gateways.Get(input.Gateway)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &Payment{
		ID:            uuid.NewString(),
		AppointmentID: a.ID,
		Reference:     NewReference(now),
		Amount:        a.Amount,
		Gateway:       gw.Name(),
		Status:        StatusCreated,
		ExpiresAt:     now.Add(s.opts.Expiry),
	}

	p.QRCode, err = gw.BuildQR(p)
	if err != nil {
		log.Error("failed building QR payload", zap.Error(err))
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	metrics.PaymentStatus(p.Gateway, string(StatusCreated))
	log.Info("payment created",
		zap.String("payment_id", p.ID),
		zap.String("reference", p.Reference),
		zap.Int64("amount", p.Amount),
		zap.Time("expires_at", p.ExpiresAt),
	)
	return p, nil
}

func (s *service) CheckStatus(ctx context.Context, sess session.Session, paymentID string) (*Payment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Payment"),
		zap.String("method", "CheckStatus"),
		zap.String("payment_id", paymentID),
	)

	if err := sess.Require(); err != nil {
		return nil, err
	}

	p, err := s.loadPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	a, err := s.loadAppointment(ctx, p.AppointmentID)
	if err != nil {
		return nil, err
	}
	if !appointment.Participant(sess, a) {
		return nil, ErrPaymentNotFound
	}

	if p.Status.Terminal() {
		return p, nil
	}
	if p.Expired(s.now()) {
		return s.expire(ctx, p)
	}

	gw, err := s.gateways.Get(p.Gateway)
	if err != nil {
		return nil, err
	}
	st, err := gw.QueryStatus(ctx, p.Reference)
	if err != nil {
		log.Warn("gateway status lookup failed", zap.String("gateway", p.Gateway), zap.Error(err))
		return nil, apperror.Wrap(ErrGatewayUnavailable, err)
	}

	return s.apply(ctx, p, *st)
}

func (s *service) ApplyGatewayStatus(ctx context.Context, gateway, reference string, status GatewayStatus) (*Payment, error) {
	p, err := s.repo.GetByReference(ctx, reference)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.Gateway != gateway {
		return nil, ErrPaymentNotFound
	}
	if p.Status.Terminal() {
		return p, nil
	}
	if p.Expired(s.now()) {
		return s.expire(ctx, p)
	}
	return s.apply(ctx, p, status)
}

// apply moves a created payment according to what the gateway reported.
func (s *service) apply(ctx context.Context, p *Payment, st GatewayStatus) (*Payment, error) {
	switch st.Status {
	case StatusPaid:
		return s.markPaid(ctx, p, st.PaidAt)
	case StatusExpired:
		return s.expire(ctx, p)
	default:
		return p, nil
	}
}

func (s *service) expire(ctx context.Context, p *Payment) (*Payment, error) {
	expired, err := s.repo.Expire(ctx, p.ID)
	if errors.Is(err, sql.ErrNoRows) {
		// Someone else settled it first.
		return s.loadPayment(ctx, p.ID)
	}
	if err != nil {
		return nil, err
	}

	metrics.PaymentStatus(p.Gateway, string(StatusExpired))
	logger.FromCtx(ctx).Info("payment expired",
		zap.String("payment_id", p.ID),
		zap.String("reference", p.Reference),
	)
	return expired, nil
}

func (s *service) markPaid(ctx context.Context, p *Payment, paidAt *time.Time) (*Payment, error) {
	at := s.now()
	if paidAt != nil {
		at = *paidAt
	}

	paid, err := s.repo.MarkPaid(ctx, p, at)
	if errors.Is(err, sql.ErrNoRows) {
		return s.loadPayment(ctx, p.ID)
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to settle payment", zap.String("payment_id", p.ID), zap.Error(err))
		return nil, err
	}

	metrics.PaymentStatus(p.Gateway, string(StatusPaid))
	logger.FromCtx(ctx).Info("payment settled",
		zap.String("payment_id", p.ID),
		zap.String("appointment_id", p.AppointmentID),
		zap.String("gateway", p.Gateway),
	)
	return paid, nil
}

func (s *service) ConfirmManually(ctx context.Context, sess session.Session, appointmentID string) (*appointment.Appointment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Payment"),
		zap.String("method", "ConfirmManually"),
		zap.String("appointment_id", appointmentID),
		zap.Int64("actor_id", sess.UserID),
		zap.String("actor_role", string(sess.Role)),
	)

	if err := sess.Require(); err != nil {
		return nil, err
	}
	if !s.opts.ManualConfirm {
		return nil, ErrManualConfirmDisabled
	}

	a, err := s.loadAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !payer(sess, a) {
		return nil, appointment.ErrNotParticipant
	}
	if a.Status == appointment.StatusCancelled {
		return nil, ErrAppointmentCancelled
	}
	if a.PaymentStatus == appointment.PaymentPaid {
		return a, nil
	}

	updated, err := s.appts.MarkPaid(ctx, a.ID)
	if errors.Is(err, sql.ErrNoRows) {
		// Cancelled between the read and the update.
		return nil, ErrAppointmentCancelled
	}
	if err != nil {
		return nil, err
	}

	metrics.ManualConfirmation()
	log.Warn("payment confirmed manually without gateway verification",
		zap.Int64("amount", updated.Amount),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}
