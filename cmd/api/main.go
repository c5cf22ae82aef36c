package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devevent/api/internal/config"
	"github.com/devevent/api/internal/db"
	httpx "github.com/devevent/api/internal/http"
	"github.com/devevent/api/internal/media"
	"github.com/devevent/api/internal/observability"
	"github.com/devevent/api/internal/ratelimit"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// local dev convenience; real deployments set the environment
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx := context.Background()

	// tracing is optional; the service must come up without a collector
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, "devevent-api", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()

				_ = shutdownTracer(shutdownCtx)
			}()
		}
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	uploader, err := media.NewCloudinaryUploader(cfg.CloudinaryURL, cfg.UploadFolder)

	if err != nil {
		log.Error("cloudinary init failed", "err", err)
		os.Exit(1)
	}

	deps := httpx.Deps{
		Pool:     pool,
		Uploader: media.WithMetrics(uploader, prom),
		Prom:     prom,
		Registry: registry,
	}

	if cfg.RateLimitBackend == "redis" {
		rl := ratelimit.NewRedisLimiter(ratelimit.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB))

		deps.Limiter = rl
		deps.RedisPing = rl.Ping
	}

	router := httpx.NewRouter(cfg, deps)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "rate_limit_backend", cfg.RateLimitBackend)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctxTimeOut := 10 * time.Second

		ctx, cancel := config.WithTimeout(ctxTimeOut)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
