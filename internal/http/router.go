package http

import (
	"context"
	"time"

	"github.com/devevent/api/internal/cache"
	"github.com/devevent/api/internal/config"
	"github.com/devevent/api/internal/http/handlers"
	"github.com/devevent/api/internal/http/middlewares"
	"github.com/devevent/api/internal/media"
	"github.com/devevent/api/internal/observability"
	"github.com/devevent/api/internal/ratelimit"
	"github.com/devevent/api/internal/repo/postgres"
	"github.com/devevent/api/internal/submission"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// maxRequestBytes caps the whole multipart body: the 5 MiB image plus
// generous room for the text fields.
const maxRequestBytes = 8 << 20

type Deps struct {
	Pool     *pgxpool.Pool
	Limiter  ratelimit.Limiter
	Uploader media.Uploader
	Prom     *observability.Prom
	Registry *prometheus.Registry

	// RedisPing gates readiness when the redis limiter is configured.
	RedisPing func(context.Context) error
}

func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware([]string{cfg.ExpectedOrigin}))
	r.Use(middlewares.MaxBodyBytes(maxRequestBytes))
	r.Use(otelgin.Middleware("devevent-api"))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	// health
	pings := map[string]func() error{
		"db": func() error {
			if deps.Pool == nil {
				return nil
			}

			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer cancel()

			return deps.Pool.Ping(ctx)
		},
	}

	if deps.RedisPing != nil {
		pings["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer cancel()

			return deps.RedisPing(ctx)
		}
	}

	h := handlers.NewHealthHandler(pings)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	// wire up repositories
	eventsRepo := postgres.NewEventsRepo(deps.Pool, deps.Prom)
	creationLogRepo := postgres.NewCreationLogRepo(deps.Pool, deps.Prom)

	limiter := deps.Limiter
	if limiter == nil {
		limiter = ratelimit.NewWindowLimiter(creationLogRepo)
	}

	// one shared cache so a successful create invalidates the listing
	listCache := cache.New(30 * time.Second)

	eventsHandler := handlers.NewEventsHandlerWithCache(eventsRepo, listCache)
	submissionsHandler := handlers.NewSubmissionsHandler(
		eventsRepo,
		creationLogRepo,
		limiter,
		deps.Uploader,
		submission.Options{ExpectedOrigin: cfg.ExpectedOrigin},
		listCache,
	)

	r.POST("/events", submissionsHandler.CreateEvent)
	r.GET("/events", eventsHandler.ListEvents)
	r.GET("/events/:slug", eventsHandler.GetEventBySlug)

	return r
}
