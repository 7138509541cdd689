// Package main is the entrypoint for the Redink API server.
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

	"github.com/redink/redink/internal/cache"
	"github.com/redink/redink/internal/config"
	"github.com/redink/redink/internal/handler"
	"github.com/redink/redink/internal/metrics"
	"github.com/redink/redink/internal/middleware"
	"github.com/redink/redink/internal/notify"
	"github.com/redink/redink/internal/provider"
	"github.com/redink/redink/internal/repository"
	"github.com/redink/redink/internal/rules"
	"github.com/redink/redink/internal/server"
	"github.com/redink/redink/internal/service"
)

func main() {
	ctx := context.Background()

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
	logger.Info("connected to Redis")

	// Rule engine with optional config overrides
	pricing := rules.DefaultPricing()
	if cfg.StartingBalance > 0 {
		pricing.StartingBalance = cfg.StartingBalance
	}
	if cfg.FreeWordLimit > 0 {
		pricing.FreeWordLimit = cfg.FreeWordLimit
	}
	if cfg.FreeCooldown > 0 {
		pricing.FreeCooldown = cfg.FreeCooldown
	}
	engine := rules.NewEngine(pricing)

	// Correction provider
	corrector := provider.New(cfg.ProviderBaseURL, cfg.ProviderAPIKey, cfg.ProviderModel, cfg.ProviderTimeout)

	// Notification pipeline
	metricsRecorder := metrics.NewInMemory()
	notifyRepo := notify.NewRepository(repo.Pool())
	publisher := notify.NewPublisher(notifyRepo, logger, metricsRecorder)
	notifyWorker := notify.NewWorker(notifyRepo, logger, metricsRecorder)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := notifyWorker.Run(workerCtx); err != nil && workerCtx.Err() == nil {
			logger.Error("notify worker stopped", "error", err)
		}
	}()

	// Initialize services
	accountService := service.NewAccountService(repo, engine, metricsRecorder)
	correctionService := service.NewCorrectionService(repo, cacheClient, engine, corrector, metricsRecorder)
	moderationService := service.NewModerationService(repo, cacheClient, engine, publisher, metricsRecorder)
	collaborationService := service.NewCollaborationService(repo, engine, metricsRecorder)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)
	accountHandler := handler.NewAccountHandler(accountService, logger, cfg.JWTSecret, cfg.SessionTTL)
	correctionHandler := handler.NewCorrectionHandler(correctionService, logger)
	documentHandler := handler.NewDocumentHandler(correctionService, logger)
	collaborationHandler := handler.NewCollaborationHandler(collaborationService, logger)
	moderationHandler := handler.NewModerationHandler(moderationService, logger)
	endpointHandler := handler.NewEndpointHandler(notifyRepo, logger)

	// Setup router
	r := setupRouter(routerDeps{
		health:        healthHandler,
		metrics:       metricsHandler,
		account:       accountHandler,
		correction:    correctionHandler,
		document:      documentHandler,
		collaboration: collaborationHandler,
		moderation:    moderationHandler,
		endpoint:      endpointHandler,
		repo:          repo,
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

	srv.OnShutdown("notify worker", func(shutdownCtx context.Context) error {
		cancelWorker()
		select {
		case <-workerDone:
			return nil
		case <-shutdownCtx.Done():
			return shutdownCtx.Err()
		}
	})

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

type routerDeps struct {
	health        *handler.HealthHandler
	metrics       *handler.MetricsHandler
	account       *handler.AccountHandler
	correction    *handler.CorrectionHandler
	document      *handler.DocumentHandler
	collaboration *handler.CollaborationHandler
	moderation    *handler.ModerationHandler
	endpoint      *handler.EndpointHandler
	repo          *repository.Repository
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
		IsDevelopment: deps.cfg.IsDevelopment(),
	}))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	if origins := deps.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		corsCfg.AllowCredentials = true
		r.Use(middleware.CORS(corsCfg))
	}

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	r.Get("/metrics", deps.metrics.Metrics)

	// Auth middleware configuration
	authCfg := middleware.AuthConfig{
		Logger:     deps.logger,
		Repository: deps.repo,
		JWTSecret:  deps.cfg.JWTSecret,
	}

	// Login rate limit configuration
	loginLimitCfg := middleware.RateLimitConfig{
		Logger:  deps.logger,
		Cache:   deps.cache,
		Enabled: deps.cfg.RateLimitLoginEnabled,
		RPM:     deps.cfg.RateLimitLoginRPM,
		Burst:   deps.cfg.RateLimitLoginBurst,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", deps.account.Register)
		r.With(middleware.RateLimitLogin(loginLimitCfg)).Post("/auth/login", deps.account.Login)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))

			r.Get("/me", deps.account.Me)
			r.Post("/me/purchase", deps.account.Purchase)
			r.Get("/me/ledger", deps.account.Ledger)

			r.Route("/corrections", func(r chi.Router) {
				r.Post("/submit", deps.correction.Submit)
				r.Post("/free-submit", deps.correction.FreeSubmit)
				r.Post("/self", deps.correction.SelfCorrect)
				r.Post("/llm", deps.correction.LLMCorrect)
				r.Post("/paraphrase", deps.correction.Paraphrase)
				r.Post("/accept", deps.correction.Accept)
				r.Post("/reject", deps.correction.Reject)
			})

			r.Route("/documents", func(r chi.Router) {
				r.Get("/", deps.document.List)
				r.Post("/", deps.document.Create)
				r.Get("/{id}", deps.document.Get)
				r.Put("/{id}", deps.document.Update)
			})

			r.Route("/invites", func(r chi.Router) {
				r.Get("/", deps.collaboration.List)
				r.Post("/", deps.collaboration.Invite)
				r.Post("/{id}/respond", deps.collaboration.Respond)
			})

			r.Post("/complaints", deps.moderation.SubmitComplaint)
			r.Post("/blacklist", deps.moderation.RequestBlacklistWord)

			// Super-user moderation surface
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireSuper())

				r.Get("/complaints", deps.moderation.ListComplaints)
				r.Post("/complaints/{id}/resolve", deps.moderation.ResolveComplaint)

				r.Get("/blacklist", deps.moderation.ListBlacklistRequests)
				r.Post("/blacklist/{id}/decide", deps.moderation.DecideBlacklistRequest)

				r.Get("/rejections", deps.moderation.ListRejections)
				r.Post("/rejections/{id}/review", deps.moderation.ReviewRejection)

				r.Get("/accounts", deps.moderation.ListAccounts)
				r.Post("/accounts/{id}/suspend", deps.moderation.SuspendAccount)
				r.Post("/accounts/{id}/fine", deps.moderation.FineAccount)
				r.Delete("/accounts/{id}", deps.moderation.TerminateAccount)

				r.Get("/endpoints", deps.endpoint.List)
				r.Post("/endpoints", deps.endpoint.Create)
				r.Post("/endpoints/{id}/enabled", deps.endpoint.SetEnabled)
				r.Delete("/endpoints/{id}", deps.endpoint.Delete)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

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
