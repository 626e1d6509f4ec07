package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/companydesk/config"
	"github.com/ErlanBelekov/companydesk/internal/cryptox"
	"github.com/ErlanBelekov/companydesk/internal/health"
	"github.com/ErlanBelekov/companydesk/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/companydesk/internal/infrastructure/redis"
	ctxlog "github.com/ErlanBelekov/companydesk/internal/log"
	"github.com/ErlanBelekov/companydesk/internal/metrics"
	"github.com/ErlanBelekov/companydesk/internal/registry"
	"github.com/ErlanBelekov/companydesk/internal/session"
	"github.com/ErlanBelekov/companydesk/internal/token"
	httptransport "github.com/ErlanBelekov/companydesk/internal/transport/http"
	"github.com/ErlanBelekov/companydesk/internal/transport/http/handler"
	"github.com/ErlanBelekov/companydesk/internal/usecase"
	"github.com/ErlanBelekov/companydesk/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseConn)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		stop()
		log.Fatalf("migrate: %v", err)
	}

	rdb, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		stop()
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	cipherKey, err := cfg.CipherKeyBytes()
	if err != nil {
		stop()
		log.Fatalf("cipher key: %v", err)
	}
	cipher, err := cryptox.New(cipherKey)
	if err != nil {
		stop()
		log.Fatalf("cipher: %v", err)
	}

	validator := validation.New()

	// Sessions
	userRepo := postgres.NewUserRepository(pool)
	tokens := token.NewService([]byte(cfg.JWTSecret), cfg.JWTTTL)
	authUsecase := usecase.NewAuthUsecase(userRepo, tokens, session.NewIssuer(tokens, cipher), session.NewVerifier(cipher))
	authHandler := handler.NewAuthHandler(authUsecase, validator, logger)

	// Companies
	companyRepo := postgres.NewCompanyRepository(pool, logger)
	registryClient := registry.NewClient(registry.Config{
		BaseURL:      cfg.Registry.BaseURL,
		ClientID:     cfg.Registry.ClientID,
		ClientSecret: cfg.Registry.ClientSecret,
		Timeout:      cfg.Registry.Timeout,
	}, redis.NewTokenCache(rdb, "companydesk:"), logger)
	companyUsecase := usecase.NewCompanyUsecase(companyRepo, registryClient)
	companyHandler := handler.NewCompanyHandler(companyUsecase, validator, logger)

	metrics.Register()
	checker := health.NewChecker(logger, prometheus.DefaultRegisterer,
		health.Dependency{Name: "postgres", Pinger: pool},
		health.Dependency{Name: "redis", Pinger: redis.Pinger{Client: rdb}},
	)

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httptransport.NewRouter(logger, authHandler, companyHandler, authUsecase),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
