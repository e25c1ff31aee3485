// Package clinicclient is the Go client for the clinic booking API.
//
// Every call that needs an identity takes an explicit Session. Server
// failures come back as *apperror.Error values carrying the same kind and
// message the server used, so callers can match them with errors.Is against
// the Err values of this package (ErrSlotTaken, ErrUnauthenticated) or
// classify them with KindOf. Mutating calls are sent once and never retried.
package clinicclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clinic-booking-be/internal/apperror"

	"go.uber.org/zap"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultPollInterval = 5 * time.Second
	maxErrorBody        = 64 << 10
)

var (
	ErrServerUnreachable = apperror.TransientNetwork("could not reach the clinic server")
	ErrBadResponse       = apperror.New(apperror.KindInternal, "unexpected response from the clinic server")
)

// Session is the caller identity attached to authenticated requests.
type Session struct {
	Token string
}

func (s Session) require() error {
	if strings.TrimSpace(s.Token) == "" {
		return ErrUnauthenticated
	}
	return nil
}

type Client struct {
	baseURL      string
	hc           *http.Client
	log          *zap.Logger
	now          func() time.Time
	loc          *time.Location
	pollInterval time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithLocation sets the clinic time zone used for the local past-slot check.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) { c.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithPollInterval changes the default interval of message and payment pollers.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

func New(baseURL string, opts ...Option) *Client {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		loc = time.FixedZone("ICT", 7*60*60)
	}

	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		hc:           &http.Client{Timeout: defaultTimeout},
		log:          zap.NewNop(),
		now:          time.Now,
		loc:          loc,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Detail string        `json:"detail"`
	Code   apperror.Kind `json:"code"`
}

// do sends one request. sess is nil for public endpoints.
func (c *Client) do(ctx context.Context, sess *Session, method, path string, query url.Values, in, out any) error {
	if sess != nil {
		if err := sess.require(); err != nil {
			return err
		}
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Client-Type", "mobile")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess != nil {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return apperror.Wrap(ErrServerUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.Wrap(ErrBadResponse, err)
	}
	return nil
}

// decodeError turns a failed response into the error the server raised.
func decodeError(resp *http.Response) error {
	var body errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&body)

	kind := body.Code
	if !knownKind(kind) {
		kind = apperror.KindFromStatus(resp.StatusCode)
	}

	msg := body.Detail
	if msg == "" {
		msg = strings.ToLower(http.StatusText(resp.StatusCode))
	}
	return apperror.New(kind, msg)
}

func knownKind(k apperror.Kind) bool {
	switch k {
	case apperror.KindValidation, apperror.KindState, apperror.KindConflict,
		apperror.KindUnauthenticated, apperror.KindUnauthorized, apperror.KindNotFound,
		apperror.KindTransientNetwork, apperror.KindInternal:
		return true
	}
	return false
}
