package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"clinic-booking-be/internal/apperror"
	"clinic-booking-be/internal/logger"
	"clinic-booking-be/internal/metrics"
	"clinic-booking-be/internal/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

// Payload is the callback body the QR gateways post.
type Payload struct {
	EventID   string     `json:"event_id"`
	Reference string     `json:"reference"`
	Status    string     `json:"status"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

// Store persists raw callbacks for idempotency and audit.
type Store interface {
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

type Handler struct {
	store    Store
	payments payment.Service
	gateways *payment.Registry
}

func NewWebhookHandler(store Store, payments payment.Service, gateways *payment.Registry) *Handler {
	return &Handler{store: store, payments: payments, gateways: gateways}
}

// Handle serves POST /webhook/payment/:gateway.
func (h *Handler) Handle(c *gin.Context) {
	name := c.Param("gateway")
	ctx := c.Request.Context()
	log := logger.FromCtx(ctx).With(
		zap.String("handler", "PaymentWebhook"),
		zap.String("gateway", name),
	)

	gw, err := h.gateways.Get(name)
	if err != nil {
		metrics.Webhook(name, "unknown_gateway")
		c.JSON(http.StatusNotFound, gin.H{"detail": "unknown gateway", "code": apperror.KindNotFound})
		return
	}

	// Verify signature for security
	if err := gw.VerifySignature(c.Request); err != nil {
		log.Warn("rejected webhook with invalid signature", zap.String("ip", c.ClientIP()))
		metrics.Webhook(name, "invalid_signature")
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid signature", "code": apperror.KindUnauthenticated})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "failed to read body", "code": apperror.KindValidation})
		return
	}

	var p Payload
	if err := json.Unmarshal(body, &p); err != nil || p.EventID == "" || p.Reference == "" {
		metrics.Webhook(name, "invalid_payload")
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid JSON payload", "code": apperror.KindValidation})
		return
	}
	log = log.With(zap.String("event_id", p.EventID), zap.String("reference", p.Reference))

	webhookID, dup, err := h.store.SavePaymentWebhook(ctx, name, p.EventID, p.Status, p.Reference, body, true)
	if err != nil {
		log.Error("failed to store webhook", zap.Error(err))
		metrics.Webhook(name, "error")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to store webhook", "code": apperror.KindInternal})
		return
	}
	if dup {
		log.Info("duplicate webhook ignored")
		metrics.Webhook(name, "duplicate")
		c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
		return
	}

	status := payment.GatewayStatus{Status: payment.NormalizeStatus(p.Status), PaidAt: p.PaidAt}
	updated, err := h.payments.ApplyGatewayStatus(ctx, name, p.Reference, status)
	if err != nil {
		if markErr := h.store.MarkWebhookFailed(ctx, webhookID, err.Error()); markErr != nil {
			log.Error("failed to mark webhook failed", zap.Error(markErr))
		}

		// Permanent rejections are acknowledged so the gateway stops retrying.
		kind := apperror.KindOf(err)
		if kind == apperror.KindInternal || kind == apperror.KindTransientNetwork {
			log.Error("failed to apply webhook", zap.Error(err))
			metrics.Webhook(name, "error")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to apply webhook", "code": kind})
			return
		}
		log.Warn("webhook not applied", zap.Error(err))
		metrics.Webhook(name, "rejected")
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "detail": apperror.Message(err)})
		return
	}

	if err := h.store.MarkWebhookProcessed(ctx, webhookID); err != nil {
		log.Error("failed to mark webhook processed", zap.Error(err))
	}

	log.Info("webhook applied", zap.String("payment_status", string(updated.Status)))
	metrics.Webhook(name, "processed")
	c.JSON(http.StatusOK, gin.H{"status": string(updated.Status)})
}
