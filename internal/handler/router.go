package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/prn-tf/agora/internal/auth"
	"github.com/prn-tf/agora/internal/config"
)

// Router builds the HTTP handler tree.
type Router struct {
	query          *QueryHandler
	health         *HealthHandler
	resolver       *auth.Resolver
	httpRecorder   HTTPRecorder
	metricsHandler http.Handler
	metricsPath    string
	cors           config.CORSConfig
	rateLimit      config.RateLimitConfig
	maxBodySize    int64
	trustProxy     bool
	logger         zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	QueryHandler  *QueryHandler
	HealthHandler *HealthHandler
	Resolver      *auth.Resolver

	// HTTPRecorder is optional.
	HTTPRecorder HTTPRecorder

	// MetricsHandler, when set, is mounted at MetricsPath on the main listener.
	MetricsHandler http.Handler
	MetricsPath    string

	CORS        config.CORSConfig
	RateLimit   config.RateLimitConfig
	MaxBodySize int64

	// TrustProxy enables middleware.RealIP. Without it the rate limiter keys
	// on the TCP peer address, which clients cannot forge.
	TrustProxy bool
	Logger      zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(cfg RouterConfig) *Router {
	return &Router{
		query:          cfg.QueryHandler,
		health:         cfg.HealthHandler,
		resolver:       cfg.Resolver,
		httpRecorder:   cfg.HTTPRecorder,
		metricsHandler: cfg.MetricsHandler,
		metricsPath:    cfg.MetricsPath,
		cors:           cfg.CORS,
		rateLimit:      cfg.RateLimit,
		maxBodySize:    cfg.MaxBodySize,
		trustProxy:     cfg.TrustProxy,
		logger:         cfg.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if rt.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	if rt.httpRecorder != nil {
		r.Use(Metrics(rt.httpRecorder))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cors.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	if rt.rateLimit.Enabled {
		r.Use(NewRateLimiter(rt.rateLimit.RequestsPerSecond, rt.rateLimit.BurstSize).Middleware)
	}

	// Health checks (no identity)
	r.Get("/health", rt.health.Ready)
	r.Get("/health/live", rt.health.Live)

	if rt.metricsHandler != nil && rt.metricsPath != "" {
		r.Method(http.MethodGet, rt.metricsPath, rt.metricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(BodyLimit(rt.maxBodySize))
		r.Use(auth.Middleware(rt.resolver))
		r.Use(RequestLogger(rt.logger))

		r.Method(http.MethodPost, "/query", rt.query)
		r.Method(http.MethodPost, "/graphql", rt.query)
	})

	return r
}
