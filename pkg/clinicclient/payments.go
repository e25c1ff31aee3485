package clinicclient

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"clinic-booking-be/internal/apperror"
	"clinic-booking-be/internal/payment"

	"go.uber.org/zap"
)

type Payment struct {
	payment.Payment
	Instructions []string `json:"instructions"`
}

type PaymentRequest struct {
	AppointmentID string `json:"appointment_id"`
	Amount        int64  `json:"amount"`
	Gateway       string `json:"gateway"`
}

func (c *Client) CreatePayment(ctx context.Context, sess Session, req PaymentRequest) (*Payment, error) {
	var out Payment
	if err := c.do(ctx, &sess, http.MethodPost, "/api/payments/create", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PaymentStatus(ctx context.Context, sess Session, paymentID string) (*Payment, error) {
	var out Payment
	if err := c.do(ctx, &sess, http.MethodGet, "/api/payments/status/"+url.PathEscape(paymentID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmPayment asks the clinic to mark the appointment paid without a
// gateway round trip.
func (c *Client) ConfirmPayment(ctx context.Context, sess Session, appointmentID string) (*Appointment, error) {
	return c.appointmentCall(ctx, sess, http.MethodPost, "/api/payments/confirm/"+url.PathEscape(appointmentID))
}

// PaymentPoller checks a payment until it reaches paid or expired.
type PaymentPoller struct {
	client    *Client
	sess      Session
	paymentID string
	interval  time.Duration
}

func (c *Client) NewPaymentPoller(sess Session, paymentID string) *PaymentPoller {
	return &PaymentPoller{client: c, sess: sess, paymentID: paymentID, interval: c.pollInterval}
}

// Wait returns the payment once it is terminal. Transient failures are
// retried on the next tick; any other error ends the wait.
func (p *PaymentPoller) Wait(ctx context.Context) (*Payment, error) {
	if err := p.sess.require(); err != nil {
		return nil, err
	}

	log := p.client.log.With(zap.String("payment_id", p.paymentID))
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		pay, err := p.client.PaymentStatus(ctx, p.sess, p.paymentID)
		switch {
		case err == nil && pay.Status.Terminal():
			return pay, nil
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil && !apperror.IsKind(err, apperror.KindTransientNetwork):
			return nil, err
		case err != nil:
			log.Debug("payment status unavailable, retrying", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
