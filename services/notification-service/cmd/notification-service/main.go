package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/uncacademycode/bookingdesk/libs/config"
	"github.com/uncacademycode/bookingdesk/libs/db"
	"github.com/uncacademycode/bookingdesk/libs/httpx"
	otelx "github.com/uncacademycode/bookingdesk/libs/otel"
	"github.com/uncacademycode/bookingdesk/libs/runtime"
	"github.com/uncacademycode/bookingdesk/services/notification-service/internal/email"
	"github.com/uncacademycode/bookingdesk/services/notification-service/internal/handlers"
	"github.com/uncacademycode/bookingdesk/services/notification-service/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8085")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	from := config.String("EMAIL_FROM", "no-reply@bookingdesk.local")
	provider := strings.ToLower(config.String("EMAIL_PROVIDER", "smtp"))
	var sender email.Sender
	switch provider {
	case "webhook":
		sender = email.NewWebhookSender(
			config.String("EMAIL_WEBHOOK_URL", ""),
			config.String("EMAIL_WEBHOOK_TOKEN", ""),
			from,
		)
	case "noop":
		sender = email.NewNoopSender()
	default:
		sender = email.NewSMTPSender(
			config.String("SMTP_HOST", "mailpit"),
			config.String("SMTP_PORT", "1025"),
			from,
		)
	}
	logger.Info("email provider configured", "provider", sender.ProviderID())

	adminEmails := config.List("ADMIN_EMAILS", "")
	if len(adminEmails) == 0 {
		logger.Warn("ADMIN_EMAILS not set; admin notices will have no recipients")
	}

	deliveries := storage.NewRepository(pool)
	handler := handlers.NewNotificationHandler(sender, deliveries, logger, adminEmails)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
	)
	mux.HandleFunc("/api/v1/notifications/booking", handler.Booking)
	mux.HandleFunc("/api/v1/notifications/password-reset", handler.PasswordReset)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithMetrics(service),
		httpx.WithBodyLimit(1<<20),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "notification")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
