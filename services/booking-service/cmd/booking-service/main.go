package main

import (
	"context"
	"net/http"
	"time"

	"github.com/uncacademycode/bookingdesk/libs/auth"
	"github.com/uncacademycode/bookingdesk/libs/config"
	"github.com/uncacademycode/bookingdesk/libs/db"
	"github.com/uncacademycode/bookingdesk/libs/httpx"
	otelx "github.com/uncacademycode/bookingdesk/libs/otel"
	"github.com/uncacademycode/bookingdesk/libs/runtime"
	"github.com/uncacademycode/bookingdesk/services/booking-service/internal/handlers"
	"github.com/uncacademycode/bookingdesk/services/booking-service/internal/notify"
	"github.com/uncacademycode/bookingdesk/services/booking-service/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8083")
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

	loc := time.UTC
	if tz := config.String("BOOKING_TIMEZONE", ""); tz != "" {
		if parsed, err := time.LoadLocation(tz); err == nil {
			loc = parsed
		} else {
			logger.Warn("invalid BOOKING_TIMEZONE; using UTC", "err", err)
		}
	}

	repo := storage.NewAppointmentRepository(pool)
	notifier := notify.NewClient(config.String("NOTIFICATION_URL", "http://notification-service:8085"))

	intakeHandler := handlers.NewIntakeHandler(repo, notifier, logger, loc,
		config.Bool("NOTIFY_FAIL_CLOSED", false))
	consoleHandler := handlers.NewConsoleHandler(repo, notifier, logger)

	jwtSecret := config.String("JWT_SECRET", "dev-secret")
	var jwksClient *auth.JWKSClient
	if jwksURL := config.String("JWKS_URL", ""); jwksURL != "" {
		jwksClient = auth.NewJWKSClient(jwksURL, time.Duration(config.Int("JWKS_CACHE_SECONDS", 300))*time.Second)
	}
	guard := func(h http.HandlerFunc) http.Handler {
		return handlers.RequireOperator(h, jwtSecret, jwksClient)
	}

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
	)
	mux.HandleFunc("/api/v1/public/bookings", intakeHandler.Create)
	mux.HandleFunc("/api/v1/public/booking-options", intakeHandler.TimeSlots)
	mux.Handle("/api/v1/admin/appointments", guard(consoleHandler.List))
	mux.Handle("/api/v1/admin/appointments/stats", guard(consoleHandler.Stats))
	mux.Handle("/api/v1/admin/appointments/status", guard(consoleHandler.UpdateStatus))
	mux.Handle("/api/v1/admin/appointments/send-confirmation", guard(consoleHandler.SendConfirmation))
	mux.Handle("/api/v1/admin/me", guard(handlers.Me))

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithMetrics(service),
		httpx.WithBodyLimit(1<<20),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
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
