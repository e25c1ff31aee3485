package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// GatewayCredentials are the merchant credentials embedded in QR payloads.
type GatewayCredentials struct {
	ClientID string
	APIKey   string
}

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	AppPort    string
	AppEnv     string
	JWTSecret  string
	CORSOrigin string
	RedisURL   string

	// InternalSecretKey lets trusted services skip the public rate tiers.
	InternalSecretKey string

	ClinicTimezone  string
	ConsultationFee int64

	PaymentExpiry        time.Duration
	PaymentManualConfirm bool
	PaymentCallbackToken string
	PaymentStatusURL     string
	Gateways             map[string]GatewayCredentials
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getEnv("DB_PORT", "5432"),

		AppPort:    getEnv("APP_PORT", "8080"),
		AppEnv:     getEnv("APP_ENV", "development"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),
		RedisURL:   os.Getenv("REDIS_URL"),

		InternalSecretKey: os.Getenv("INTERNAL_SECRET_KEY"),

		ClinicTimezone:  getEnv("CLINIC_TIMEZONE", "Asia/Ho_Chi_Minh"),
		ConsultationFee: getEnvInt64("CONSULTATION_FEE", 500000),

		PaymentExpiry:        getEnvDuration("PAYMENT_EXPIRY", 15*time.Minute),
		PaymentManualConfirm: getEnvBool("PAYMENT_MANUAL_CONFIRM", true),
		PaymentCallbackToken: os.Getenv("PAYMENT_CALLBACK_TOKEN"),
		PaymentStatusURL:     os.Getenv("PAYMENT_STATUS_URL"),
		Gateways:             map[string]GatewayCredentials{},
	}

	for _, gw := range []string{"vnpay", "momo", "zalopay"} {
		prefix := strings.ToUpper(gw)
		cfg.Gateways[gw] = GatewayCredentials{
			ClientID: os.Getenv(prefix + "_CLIENT_ID"),
			APIKey:   os.Getenv(prefix + "_API_KEY"),
		}
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

// Location resolves ClinicTimezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ClinicTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	n, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
