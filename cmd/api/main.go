// Package main is the entrypoint for the Mailcast API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mailcast/mailcast/internal/config"
	"github.com/mailcast/mailcast/internal/directory"
	"github.com/mailcast/mailcast/internal/handler"
	"github.com/mailcast/mailcast/internal/logutil"
	"github.com/mailcast/mailcast/internal/mailer"
	"github.com/mailcast/mailcast/internal/metrics"
	"github.com/mailcast/mailcast/internal/middleware"
	"github.com/mailcast/mailcast/internal/repository"
	"github.com/mailcast/mailcast/internal/server"
	"github.com/mailcast/mailcast/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	backend, err := repository.Open(ctx, repository.Options{
		Kind:        cfg.StorageBackend,
		DataDir:     cfg.DataDir,
		DatabaseURL: cfg.DatabaseURL,
		RedisURL:    cfg.RedisURL,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to open storage",
			slog.String("backend", cfg.StorageBackend),
			slog.String("error", logutil.SanitizeError(err, cfg.DatabaseURL, cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("storage ready", "backend", cfg.StorageBackend)

	keys, err := directory.LoadKeyStore(ctx, backend)
	if err != nil {
		logger.Error("failed to load key registry", "error", err)
		os.Exit(1)
	}
	tenants, err := directory.LoadTenantDirectory(ctx, backend)
	if err != nil {
		logger.Error("failed to load tenant directory", "error", err)
		os.Exit(1)
	}
	logger.Info("directory loaded", "keys", keys.Len(), "tenants", tenants.Len())

	sender, err := mailer.New(ctx, mailer.Options{
		Transport:          cfg.MailTransport,
		SMTPHost:           cfg.SMTPHost,
		SMTPPort:           cfg.SMTPPort,
		SMTPTLSSkipVerify:  cfg.SMTPTLSSkipVerify,
		SMTPTimeout:        cfg.SendTimeout,
		SESRegion:          cfg.SESRegion,
		SESAccessKeyID:     cfg.SESAccessKeyID,
		SESSecretAccessKey: cfg.SESSecretKey,
		OutboxDir:          cfg.MailOutboxDir,
	})
	if err != nil {
		logger.Error("failed to initialize mail transport", "transport", cfg.MailTransport, "error", err)
		os.Exit(1)
	}
	if cfg.SMTPTLSSkipVerify && cfg.MailTransport == mailer.TransportSMTP {
		logger.Warn("SMTP certificate verification is disabled")
	}

	recorder := metrics.NewInMemory()
	gate := service.NewAuthGate(keys, recorder)
	subscriptions := service.NewSubscriptionService(tenants, recorder)
	broadcasts := service.NewBroadcastService(tenants, sender, cfg.SendTimeout, logger, recorder)
	registrations := service.NewRegistrationService(keys, tenants, recorder)

	if !cfg.AdminGateEnabled() {
		logger.Warn("ADMIN_TOKEN_HASH not set; key registration is open to anyone")
	}

	r := setupRouter(routes{
		index:       handler.New(),
		health:      handler.NewHealthHandler(map[string]handler.HealthChecker{"storage": backend}),
		metrics:     handler.NewMetricsHandler(recorder, func() (int, int) { return keys.Len(), tenants.Len() }),
		subscribers: handler.NewSubscriberHandler(subscriptions, logger),
		broadcasts:  handler.NewBroadcastHandler(broadcasts, logger),
		admin:       handler.NewAdminHandler(registrations, logger),
	}, gate, cfg, logger)

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	srv.OnShutdown("storage", func(ctx context.Context) error { return backend.Close() })

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"transport", sender.Name(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}

	var h slog.Handler
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
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routes struct {
	index       *handler.Handler
	health      *handler.HealthHandler
	metrics     *handler.MetricsHandler
	subscribers *handler.SubscriberHandler
	broadcasts  *handler.BroadcastHandler
	admin       *handler.AdminHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(h routes, gate middleware.Authorizer, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/healthz", h.health.Healthz)
	r.Get("/readyz", h.health.Readyz)
	r.Get("/metrics", h.metrics.Metrics)
	r.Get("/", h.index.Index)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(middleware.AuthConfig{Logger: logger, Gate: gate}))
			r.Get("/get_clients", h.subscribers.List)
			r.Post("/add_client", h.subscribers.Add)
			r.Post("/unsubscribe_client", h.subscribers.Unsubscribe)
			r.Post("/send_to_clients", h.broadcasts.Send)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.CORS(cfg.GetCORSAllowedOrigins()))
			r.With(middleware.AdminToken(cfg.AdminTokenHash, logger)).
				Post("/register_new_key", h.admin.RegisterKey)
		})
	})

	r.NotFound(h.index.NotFound)
	r.MethodNotAllowed(h.index.MethodNotAllowed)

	return r
}
