// Package main is the entrypoint for the Pricewell API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/pricewell/pricewell/internal/auth"
	"github.com/pricewell/pricewell/internal/cache"
	"github.com/pricewell/pricewell/internal/config"
	"github.com/pricewell/pricewell/internal/handler"
	"github.com/pricewell/pricewell/internal/metrics"
	"github.com/pricewell/pricewell/internal/middleware"
	"github.com/pricewell/pricewell/internal/repository"
	"github.com/pricewell/pricewell/internal/server"
	"github.com/pricewell/pricewell/internal/service"
)

func main() {
	ctx := context.Background()

	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	cacheClient.SetPricingTTL(cfg.PricingCacheTTL)
	logger.Info("connected to Redis")

	// Initialize services
	metricsRecorder := metrics.NewInMemory()

	pricingCache := cacheClient
	if cfg.PricingCacheTTL <= 0 {
		// Zero TTL disables the pricing view cache entirely
		pricingCache = nil
	}

	pricingService := service.NewPricingService(repo, pricingCache, metricsRecorder)
	subscriptionService := service.NewSubscriptionService(repo, metricsRecorder)
	catalogService := service.NewCatalogService(repo, cacheClient, metricsRecorder)

	verifier := auth.NewStoreVerifier(repo, cacheClient)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)
	pricingHandler := handler.NewPricingHandler(pricingService, logger)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService, logger)
	adminHandler := handler.NewAdminHandler(catalogService, logger)

	// Setup router
	r := setupRouter(routerDeps{
		root:          h,
		health:        healthHandler,
		metrics:       metricsHandler,
		pricing:       pricingHandler,
		subscriptions: subscriptionHandler,
		admin:         adminHandler,
		verifier:      verifier,
		cache:         cacheClient,
		cfg:           cfg,
		logger:        logger,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// routerDeps bundles everything setupRouter needs.
type routerDeps struct {
	root          *handler.Handler
	health        *handler.HealthHandler
	metrics       *handler.MetricsHandler
	pricing       *handler.PricingHandler
	subscriptions *handler.SubscriptionHandler
	admin         *handler.AdminHandler
	verifier      auth.Verifier
	cache         *cache.Cache
	cfg           *config.Config
	logger        *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      deps.cfg.IsDevelopment(),
		MaxRequestBodySize: deps.cfg.MaxRequestBodySize,
	}))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = deps.cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	// Metrics endpoint
	r.Get("/metrics", deps.metrics.Metrics)

	// Root info endpoint
	r.Get("/", deps.root.Hello)

	identityCfg := middleware.IdentityConfig{
		Logger:   deps.logger,
		Verifier: deps.verifier,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:              deps.logger,
		Cache:               deps.cache,
		TokenEnabled:        deps.cfg.RateLimitTokenEnabled,
		TokenRequestsPerMin: deps.cfg.RateLimitTokenPerMin,
		TokenBurst:          deps.cfg.RateLimitTokenBurst,
		PricingEnabled:      deps.cfg.RateLimitPricingEnabled,
		PricingRPS:          deps.cfg.RateLimitPricingRPS,
		PricingBurst:        deps.cfg.RateLimitPricingBurst,
	}

	// Public routes
	r.Route("/public", func(r chi.Router) {
		// Pricing reads: anonymous allowed, verified identity personalizes
		r.With(
			middleware.RateLimitIP(rateLimitCfg),
			middleware.OptionalIdentity(identityCfg),
		).Get("/pricing/{slug}", deps.pricing.GetPricing)

		// Subscription operations require a verified identity
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireIdentity(identityCfg))
			r.Use(middleware.RateLimitToken(rateLimitCfg))

			r.With(middleware.RequireSubscribe()).Post("/subscribe", deps.subscriptions.Subscribe)
			r.With(middleware.RequireSubscribe()).Get("/subscription/{slug}", deps.subscriptions.GetSubscription)
		})
	})

	// Admin routes (admin scope required)
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireIdentity(identityCfg))
		r.Use(middleware.RateLimitToken(rateLimitCfg))
		r.Use(middleware.RequireAdmin())

		r.Post("/products", deps.admin.CreateProduct)
		r.Post("/plans", deps.admin.CreatePlan)
		r.Post("/overrides", deps.admin.CreateOverride)
	})

	// 404 and 405 handlers
	r.NotFound(deps.root.NotFound)
	r.MethodNotAllowed(deps.root.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
