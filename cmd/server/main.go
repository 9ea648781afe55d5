package main

import (
	"context"
	"ctchen222/tic-tac-toe-history/internal/api/service"
	"ctchen222/tic-tac-toe-history/internal/auth"
	"ctchen222/tic-tac-toe-history/internal/config"
	"ctchen222/tic-tac-toe-history/internal/db"
	"ctchen222/tic-tac-toe-history/internal/hub"
	"ctchen222/tic-tac-toe-history/internal/logger"
	"ctchen222/tic-tac-toe-history/internal/repository"
	"ctchen222/tic-tac-toe-history/internal/server"
	"ctchen222/tic-tac-toe-history/internal/telemetry"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.Otel)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()
	logger.Init(cfg.LogLevel, cfg.Otel.Enabled)

	metrics, err := telemetry.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		log.Fatalf("failed to create metrics: %v", err)
	}

	// Create the session store
	var sessionRepo repository.SessionRepository
	switch cfg.Store {
	case config.StoreRedis:
		rdb, err := db.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatalf("failed to initialize redis: %v", err)
		}
		defer rdb.Close()
		sessionRepo = repository.NewSessionRepository(rdb, cfg.SessionTTL)
	default:
		sessionRepo = repository.NewMemorySessionRepository(cfg.SessionTTL)
	}
	slog.InfoContext(ctx, "Session store ready", "store", cfg.Store, "session_ttl", cfg.SessionTTL)

	// Create hub
	h := hub.NewHub(sessionRepo, metrics, cfg.SessionTTL)
	go h.Run(ctx)

	// Create services
	sessionService := service.NewSessionService(h, auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL))

	// Create the Gin-based server
	gin.SetMode(gin.ReleaseMode)
	srv := server.NewServer(h, sessionService)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Engine(),
	}

	go func() {
		slog.Info("http server started", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exiting")
}
