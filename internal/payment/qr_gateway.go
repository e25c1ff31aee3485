package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"clinic-booking-be/internal/config"
	"clinic-booking-be/internal/logger"

	"go.uber.org/zap"
)

const CallbackTokenHeader = "X-Callback-Token"

type qrGateway struct {
	name          string
	clientID      string
	apiKey        string
	statusURL     string
	callbackToken string
	httpClient    *http.Client
}

// NewQRGateway builds a driver that encodes the merchant id into a QR
// payload signed with the merchant api key. Status lookups go to statusURL when set; without it the gateway
// only learns about payments through webhooks.
func NewQRGateway(name string, creds config.GatewayCredentials, statusURL, callbackToken string) Gateway {
	if creds.ClientID == "" || creds.APIKey == "" {
		logger.L().Warn("payment gateway credentials are empty", zap.String("gateway", name))
	}

	return &qrGateway{
		name:          name,
		clientID:      creds.ClientID,
		apiKey:        creds.APIKey,
		statusURL:     statusURL,
		callbackToken: callbackToken,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (g *qrGateway) Name() string { return g.name }

func (g *qrGateway) BuildQR(p *Payment) (string, error) {
	if p.Reference == "" || p.AppointmentID == "" {
		return "", errors.New("payment reference and appointment are required")
	}

	params := [][2]string{
		{"client_id", g.clientID},
		{"amount", strconv.FormatInt(p.Amount, 10)},
		{"order_id", p.Reference},
		{"appointment_id", p.AppointmentID},
	}

	var b strings.Builder
	for i, kv := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(kv[0])
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv[1]))
	}
	query := b.String()

	return g.name + "://payment?" + query + "&signature=" + g.sign(query), nil
}

// sign returns the hex HMAC-SHA256 of the encoded query under the api key.
func (g *qrGateway) sign(query string) string {
	mac := hmac.New(sha256.New, []byte(g.apiKey))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

type statusResponse struct {
	Status string     `json:"status"`
	PaidAt *time.Time `json:"paid_at"`
}

func (g *qrGateway) QueryStatus(ctx context.Context, reference string) (*GatewayStatus, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("gateway", g.name),
		zap.String("reference", reference),
	)

	if g.statusURL == "" {
		return &GatewayStatus{Status: StatusCreated}, nil
	}

	q := url.Values{}
	q.Set("gateway", g.name)
	q.Set("order_id", reference)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.statusURL+"?"+q.Encode(), nil)
	if err != nil {
		log.Error("failed building request", zap.Error(err))
		return nil, err
	}
	req.SetBasicAuth(g.clientID, g.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Warn("status request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Warn("gateway returned non-success status",
			zap.Int("http_status", resp.StatusCode),
			zap.ByteString("response", body),
		)
		return nil, fmt.Errorf("%s status error: http %d", g.name, resp.StatusCode)
	}

	var res statusResponse
	if err := json.Unmarshal(body, &res); err != nil {
		log.Error("failed decoding status", zap.Error(err))
		return nil, err
	}

	return &GatewayStatus{Status: NormalizeStatus(res.Status), PaidAt: res.PaidAt}, nil
}

// NormalizeStatus folds gateway-specific spellings into our statuses.
func NormalizeStatus(s string) Status {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PAID", "SUCCESS", "SUCCEEDED", "COMPLETED", "00":
		return StatusPaid
	case "EXPIRED", "FAILED", "CANCELLED", "CANCELED":
		return StatusExpired
	default:
		return StatusCreated
	}
}

func (g *qrGateway) VerifySignature(r *http.Request) error {
	if g.callbackToken == "" {
		return ErrInvalidSignature
	}
	got := r.Header.Get(CallbackTokenHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(g.callbackToken)) != 1 {
		return ErrInvalidSignature
	}
	return nil
}
