package main

import (
	"context"
	"net/http"
	"time"

	"github.com/uncacademycode/bookingdesk/libs/config"
	"github.com/uncacademycode/bookingdesk/libs/db"
	"github.com/uncacademycode/bookingdesk/libs/httpx"
	otelx "github.com/uncacademycode/bookingdesk/libs/otel"
	"github.com/uncacademycode/bookingdesk/libs/runtime"
	"github.com/uncacademycode/bookingdesk/services/auth-service/internal/handlers"
	"github.com/uncacademycode/bookingdesk/services/auth-service/internal/notify"
	"github.com/uncacademycode/bookingdesk/services/auth-service/internal/sessions"
	"github.com/uncacademycode/bookingdesk/services/auth-service/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "auth-service")
	port, err := config.Port("PORT", "8084")
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

	var signer handlers.TokenSigner
	if pemKey := config.String("JWT_PRIVATE_KEY", ""); pemKey != "" {
		signer, err = handlers.NewRS256Signer([]byte(pemKey), config.String("JWT_KID", ""))
		if err != nil {
			logger.Error("invalid JWT_PRIVATE_KEY", "err", err)
			panic(err)
		}
		logger.Info("token signing configured", "alg", "RS256")
	} else {
		signer = handlers.NewHS256Signer(config.String("JWT_SECRET", "dev-secret"))
		logger.Info("token signing configured", "alg", "HS256")
	}

	users := storage.NewUserRepository(pool)
	resets := storage.NewResetRepository(pool)
	refreshRepo := sessions.NewRefreshRepository(pool)
	notifier := notify.NewClient(config.String("NOTIFICATION_URL", "http://notification-service:8085"))

	refreshTTL := time.Duration(config.Int("REFRESH_TTL_HOURS", 720)) * time.Hour
	resetBaseURL := config.String("CONSOLE_RESET_URL", "http://localhost:3000/reset-password")

	authHandler := handlers.NewAuthHandler(signer, users, resets, refreshRepo, notifier, logger, refreshTTL, resetBaseURL)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
	)
	mux.HandleFunc("/api/v1/auth/setup", authHandler.Setup)
	mux.HandleFunc("/api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("/api/v1/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("/api/v1/auth/logout", authHandler.Logout)
	mux.HandleFunc("/api/v1/auth/me", authHandler.Me)
	mux.HandleFunc("/api/v1/auth/forgot-password", authHandler.Forgot)
	mux.HandleFunc("/api/v1/auth/reset-password", authHandler.Reset)
	mux.HandleFunc("/.well-known/jwks.json", authHandler.JWKS)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithMetrics(service),
		httpx.WithBodyLimit(1<<20),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "auth")
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
