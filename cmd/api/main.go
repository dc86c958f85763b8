package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tasktrack/tasktrack-go/internal/config"
	"github.com/tasktrack/tasktrack-go/internal/crypto"
	"github.com/tasktrack/tasktrack-go/internal/handler"
	"github.com/tasktrack/tasktrack-go/internal/middleware"
	"github.com/tasktrack/tasktrack-go/internal/repository"
	"github.com/tasktrack/tasktrack-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()
	logger := config.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	users, tasks, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("storage unavailable", "storage", cfg.Storage, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	codec := crypto.NewTokenCodec(cfg.JWTSecret, crypto.WithTTL(cfg.JWTExpiry))

	authService := service.NewAuthService(users, codec, cfg.PasswordHash)
	authHandler := handler.NewAuthHandler(authService, handler.CookieOptions{
		Secure: cfg.IsProduction(),
		MaxAge: codec.TTL(),
	})

	taskService := service.NewTaskService(tasks)
	taskHandler := handler.NewTaskHandler(taskService)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := handler.NewRouter(handler.RouterConfig{
		Auth:           authHandler,
		Tasks:          taskHandler,
		Gate:           middleware.NewGate(codec),
		Logger:         logger,
		AuthRateLimit:  middleware.RateLimit(ctx, cfg.AuthRateRPS, cfg.AuthRateBurst),
		Metrics:        middleware.NewMetrics(registry),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

// openStore connects the configured storage backend once at startup.
func openStore(ctx context.Context, cfg config.Config) (service.UserStore, service.TaskStore, func(), error) {
	if cfg.Storage == "memory" {
		slog.Warn("using in-memory storage, data is lost on restart")
		store := repository.NewMemoryStore()
		return store.Users(), store.Tasks(), func() {}, nil
	}

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	return repository.NewUserRepository(db), repository.NewTaskRepository(db), func() { db.Close() }, nil
}
