package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"clinic-booking-be/internal/appointment"
	"clinic-booking-be/internal/auth"
	"clinic-booking-be/internal/cache"
	"clinic-booking-be/internal/chat"
	"clinic-booking-be/internal/config"
	"clinic-booking-be/internal/db"
	"clinic-booking-be/internal/handler"
	"clinic-booking-be/internal/logger"
	"clinic-booking-be/internal/middleware"
	"clinic-booking-be/internal/payment"
	"clinic-booking-be/internal/payment/webhook"
	"clinic-booking-be/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	initDBFunc      = db.InitDB
	startServerFunc = startServer
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := newServer(ctx, cfg, database)

	logger.L().Info("clinic booking server starting",
		zap.String("port", cfg.AppPort),
		zap.String("env", cfg.AppEnv),
	)
	return startServerFunc(":"+cfg.AppPort, router)
}

// newServer wires repositories, services and handlers onto a router.
func newServer(ctx context.Context, cfg *config.Config, database *sql.DB) http.Handler {
	loc := cfg.Location()
	issuer := auth.NewIssuer(cfg.JWTSecret)

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo, issuer, cfg.ConsultationFee)

	apptRepo := appointment.NewRepository(database)
	apptSvc := appointment.NewService(apptRepo, userSvc, newSlotLocker(ctx, cfg), loc)

	gateways := payment.NewRegistry()
	for _, name := range payment.SupportedGateways {
		gateways.Register(payment.NewQRGateway(name, cfg.Gateways[name], cfg.PaymentStatusURL, cfg.PaymentCallbackToken))
	}

	paymentRepo := payment.NewRepository(database)
	paymentSvc := payment.NewService(paymentRepo, apptRepo, gateways, payment.Options{
		Expiry:        cfg.PaymentExpiry,
		ManualConfirm: cfg.PaymentManualConfirm,
	})

	chatRepo := chat.NewRepository(database)
	chatSvc := chat.NewService(chatRepo, apptRepo, userSvc)

	limiter := middleware.NewRateLimiter(cfg.InternalSecretKey)
	go limiter.Cleanup(ctx, time.Minute, 3*time.Minute)

	h := handler.New(userSvc, apptSvc, paymentSvc, chatSvc, loc)
	wh := webhook.NewWebhookHandler(paymentRepo, paymentSvc, gateways)

	return setupRouter(cfg, issuer, limiter, h, wh.Handle)
}

// newSlotLocker uses Redis when REDIS_URL is set so several API instances
// share slot locks, and an in-process lock otherwise.
func newSlotLocker(ctx context.Context, cfg *config.Config) appointment.SlotLocker {
	if cfg.RedisURL == "" {
		return appointment.NewLocalLocker()
	}

	client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.L().Warn("redis unavailable, using in-process slot locks", zap.Error(err))
		return appointment.NewLocalLocker()
	}
	return appointment.NewRedisLocker(client)
}

func setupRouter(
	cfg *config.Config,
	issuer *auth.Issuer,
	limiter *middleware.RateLimiter,
	h *handler.Handler,
	webhookHandler gin.HandlerFunc,
) http.Handler {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORSOrigin)))
	r.Use(middleware.Metrics())
	r.Use(middleware.Auth(issuer))
	r.Use(limiter.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/webhook/payment/:gateway", webhookHandler)

	h.Routes(r.Group("/api"))

	return logger.RequestIDMiddleware(logger.LoggingMiddleware(r))
}

func corsConfig(origins string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", logger.RequestIDHeader, "X-Device-ID", "X-Client-Type")
	c.ExposeHeaders = []string{logger.RequestIDHeader}

	if origins == "" || origins == "*" {
		c.AllowAllOrigins = true
		return c
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			c.AllowOrigins = append(c.AllowOrigins, o)
		}
	}
	c.AllowCredentials = true
	return c
}

func startServer(addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.L().Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
