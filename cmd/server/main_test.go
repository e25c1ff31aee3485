package main

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clinic-booking-be/internal/auth"
	"clinic-booking-be/internal/config"
	"clinic-booking-be/internal/handler"
	"clinic-booking-be/internal/logger"
	"clinic-booking-be/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		AppPort:              "8080",
		AppEnv:               "test",
		JWTSecret:            "test-secret",
		CORSOrigin:           "http://localhost:8081",
		ClinicTimezone:       "Asia/Ho_Chi_Minh",
		ConsultationFee:      500000,
		PaymentManualConfirm: true,
		PaymentCallbackToken: "cb-secret",
		Gateways:             map[string]config.GatewayCredentials{},
	}
}

func TestSetupRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockWebhookHandler := func(c *gin.Context) {
		c.String(http.StatusOK, "webhook received "+c.Param("gateway"))
	}

	router := setupRouterForTest(t, mockWebhookHandler)

	t.Run("Health Check", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "OK")
		assert.NotEmpty(t, rr.Header().Get(logger.RequestIDHeader))
	})

	t.Run("Request ID is echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(logger.RequestIDHeader, "req-123")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, "req-123", rr.Header().Get(logger.RequestIDHeader))
	})

	t.Run("Metrics", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "clinic_http_request_duration_seconds")
	})

	t.Run("Payment Webhook", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/webhook/payment/momo", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "webhook received momo", rr.Body.String())
	})

	t.Run("Protected route without token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/appointments", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"detail":"authentication required","code":"unauthenticated"}`, rr.Body.String())
	})

	t.Run("Specializations are public", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/specializations", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Tim mạch")
	})

	t.Run("CORS preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/appointments", nil)
		req.Header.Set("Origin", "http://localhost:8081")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, "http://localhost:8081", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.True(t, rr.Code == http.StatusOK || rr.Code == http.StatusNoContent)
	})
}

func setupRouterForTest(t *testing.T, webhookHandler gin.HandlerFunc) http.Handler {
	t.Helper()
	cfg := testConfig()
	h := handler.New(nil, nil, nil, nil, nil)
	return setupRouter(cfg, auth.NewIssuer(cfg.JWTSecret), middleware.NewRateLimiter(""), h, webhookHandler)
}

func TestNewServer(t *testing.T) {
	db, err := sql.Open("mock_driver_main", "")
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := newServer(ctx, testConfig(), db)
	require.NotNil(t, router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	// unsigned gateway callbacks never reach the database
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/webhook/payment/vnpay", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCorsConfig(t *testing.T) {
	c := corsConfig("*")
	assert.True(t, c.AllowAllOrigins)

	c = corsConfig("http://a.vn, http://b.vn,")
	assert.False(t, c.AllowAllOrigins)
	assert.Equal(t, []string{"http://a.vn", "http://b.vn"}, c.AllowOrigins)
	assert.True(t, c.AllowCredentials)
	assert.Contains(t, c.AllowHeaders, "Authorization")
}

func TestNewSlotLocker_FallsBackWithoutRedis(t *testing.T) {
	cfg := testConfig()
	locker := newSlotLocker(context.Background(), cfg)
	assert.NotNil(t, locker)

	cfg.RedisURL = "redis://127.0.0.1:1/0"
	locker = newSlotLocker(context.Background(), cfg)
	assert.NotNil(t, locker)
}

// --- Mock Driver for Testing ---
type mockDriver struct{}

func (m *mockDriver) Open(name string) (driver.Conn, error)         { return &mockConn{}, nil }
func (c *mockConn) Prepare(query string) (driver.Stmt, error)       { return &mockStmt{}, nil }
func (c *mockConn) Close() error                                    { return nil }
func (c *mockConn) Begin() (driver.Tx, error)                       { return nil, nil }
func (s *mockStmt) Close() error                                    { return nil }
func (s *mockStmt) NumInput() int                                   { return 0 }
func (s *mockStmt) Exec(args []driver.Value) (driver.Result, error) { return nil, nil }
func (s *mockStmt) Query(args []driver.Value) (driver.Rows, error)  { return nil, nil }

type mockConn struct{}
type mockStmt struct{}

func init() {
	sql.Register("mock_driver_main", &mockDriver{})
}

func TestRun(t *testing.T) {
	origInitDB := initDBFunc
	defer func() { initDBFunc = origInitDB }()
	initDBFunc = func(cfg *config.Config) *sql.DB {
		db, _ := sql.Open("mock_driver_main", "")
		return db
	}

	var gotAddr string
	origStartServer := startServerFunc
	defer func() { startServerFunc = origStartServer }()
	startServerFunc = func(addr string, handler http.Handler) error {
		gotAddr = addr
		return nil
	}

	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "user")
	t.Setenv("DB_PASSWORD", "pass")
	t.Setenv("DB_NAME", "db")
	t.Setenv("REDIS_URL", "")

	assert.NoError(t, run())
	assert.True(t, strings.HasSuffix(gotAddr, ":9090"))
}
