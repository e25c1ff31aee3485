package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Success loading from env", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("DB_USER", "testuser")
		t.Setenv("DB_PASSWORD", "testpass")
		t.Setenv("DB_NAME", "testdb")
		t.Setenv("DB_PORT", "5433")
		t.Setenv("APP_PORT", "9090")
		t.Setenv("APP_ENV", "test")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("REDIS_URL", "redis://localhost:6379/0")
		t.Setenv("CONSULTATION_FEE", "350000")
		t.Setenv("PAYMENT_EXPIRY", "10m")
		t.Setenv("PAYMENT_MANUAL_CONFIRM", "false")
		t.Setenv("MOMO_CLIENT_ID", "momo-client")
		t.Setenv("MOMO_API_KEY", "momo-key")

		cfg := LoadConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "localhost", cfg.DBHost)
		assert.Equal(t, "testuser", cfg.DBUser)
		assert.Equal(t, "testpass", cfg.DBPassword)
		assert.Equal(t, "testdb", cfg.DBName)
		assert.Equal(t, "5433", cfg.DBPort)
		assert.Equal(t, "9090", cfg.AppPort)
		assert.Equal(t, "test", cfg.AppEnv)
		assert.Equal(t, "secret", cfg.JWTSecret)
		assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
		assert.Equal(t, int64(350000), cfg.ConsultationFee)
		assert.Equal(t, 10*time.Minute, cfg.PaymentExpiry)
		assert.False(t, cfg.PaymentManualConfirm)
		assert.Equal(t, GatewayCredentials{ClientID: "momo-client", APIKey: "momo-key"}, cfg.Gateways["momo"])
		assert.Contains(t, cfg.Gateways, "vnpay")
		assert.Contains(t, cfg.Gateways, "zalopay")
	})

	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("APP_PORT", "")
		t.Setenv("CONSULTATION_FEE", "not-a-number")
		t.Setenv("PAYMENT_EXPIRY", "")
		t.Setenv("PAYMENT_MANUAL_CONFIRM", "")
		t.Setenv("CLINIC_TIMEZONE", "")

		cfg := LoadConfig()

		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, int64(500000), cfg.ConsultationFee)
		assert.Equal(t, 15*time.Minute, cfg.PaymentExpiry)
		assert.True(t, cfg.PaymentManualConfirm)
		assert.Equal(t, "Asia/Ho_Chi_Minh", cfg.ClinicTimezone)
	})
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.UTC, (&Config{ClinicTimezone: "Not/AZone"}).Location())
	assert.Equal(t, "Asia/Ho_Chi_Minh", (&Config{ClinicTimezone: "Asia/Ho_Chi_Minh"}).Location().String())
}
