package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/palisadehq/palisade/pkg/config"
	"github.com/palisadehq/palisade/pkg/csrf"
	"github.com/palisadehq/palisade/pkg/edge"
	"github.com/palisadehq/palisade/pkg/guard"
	"github.com/palisadehq/palisade/pkg/httputil"
	"github.com/palisadehq/palisade/pkg/observability"
	"github.com/palisadehq/palisade/pkg/ratelimit"
	"github.com/palisadehq/palisade/pkg/server"
	"github.com/palisadehq/palisade/pkg/tenant"
)

func main() {
	// Process-level logging before the structured logger exists
	plog := logrus.New()
	plog.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.LoadConfig()
	if err != nil {
		plog.Fatalf("Failed to load configuration: %v", err)
	}
	plog.Infof("Starting palisade (env=%s)", cfg.Pipeline.Environment)

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// OpenTelemetry
	var otelProviders *observability.OTelProviders
	if cfg.Observability.OTelEnabled {
		otelProviders, err = observability.InitOTel(rootCtx, observability.OTelConfig{
			Enabled:        true,
			Endpoint:       cfg.Observability.OTelEndpoint,
			ServiceName:    cfg.Observability.OTelServiceName,
			ServiceVersion: cfg.Observability.OTelServiceVersion,
			Insecure:       cfg.Observability.OTelInsecure,
		}, logger)
		if err != nil {
			plog.Fatalf("Failed to initialize OpenTelemetry: %v", err)
		}
	}

	// Rate limit counter store
	var (
		store       ratelimit.Store
		redisClient *redis.Client
	)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(rootCtx).Err(); err != nil {
			plog.Fatalf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err)
		}
		store = ratelimit.NewRedisStore(redisClient, "ratelimit")
		plog.Infof("Rate limit counters in Redis at %s", cfg.Redis.Addr)
	} else {
		memStore := ratelimit.NewMemoryStore(ratelimit.DefaultMemoryStoreSize)
		memStore.StartPurge(rootCtx, time.Minute)
		store = memStore
		plog.Warn("No PALISADE_REDIS_ADDR set, rate limit counters are in-memory and per-process")
	}

	// Limiter with optional preset overrides from file
	limiterOpts := ratelimit.Options{
		FailMode: cfg.FailMode(),
		Bypass:   cfg.IsTest(),
	}
	if cfg.Pipeline.PresetFile != "" {
		presets, err := config.LoadPresets(cfg.Pipeline.PresetFile)
		if err != nil {
			plog.Fatalf("Failed to load rate limit presets from %s: %v", cfg.Pipeline.PresetFile, err)
		}
		limiterOpts.Presets = presets
	}
	limiter := ratelimit.NewLimiter(store, logger, metrics, limiterOpts)
	if cfg.IsTest() {
		plog.Warn("Test environment: rate limiting is bypassed")
	}

	if cfg.Pipeline.PresetFile != "" {
		go func() {
			defer observability.RecoverPanic(logger, "preset watcher")
			err := config.WatchPresets(rootCtx, cfg.Pipeline.PresetFile, logger, limiter.SetPresets)
			if err != nil && err != context.Canceled {
				logger.WithError(err).Error("Preset file watcher stopped")
			}
		}()
	}

	// Tenant directory
	var (
		directory tenant.ResourceDirectory
		db        *sql.DB
	)
	if cfg.Postgres.URL != "" {
		pgDir, pgDB, err := tenant.OpenPostgresDirectory(cfg.Postgres.URL)
		if err != nil {
			plog.Fatalf("Failed to connect to Postgres: %v", err)
		}
		directory, db = pgDir, pgDB
		plog.Info("Tenant directory backed by Postgres")
	} else {
		directory = server.DemoDirectory()
		plog.Warn("No PALISADE_POSTGRES_URL set, using the in-memory demo tenant directory")
	}

	// CSRF guard and edge filter
	csrfGuard := csrf.NewGuard(csrf.GuardConfig{
		Secure:      cfg.IsProduction(),
		PathPrefix:  cfg.Pipeline.APIPathPrefix,
		ExemptPaths: cfg.Pipeline.CSRFExemptPaths,
	}, logger, metrics)

	filter := edge.NewFilter(limiter, csrfGuard, logger, metrics, edge.FilterConfig{
		Production:     cfg.IsProduction(),
		TrustedProxies: cfg.Pipeline.TrustedProxies,
		GlobalPreset:   cfg.Pipeline.GlobalRateLimitPreset,
	})

	// Identity providers and route guards
	sessions := server.DemoSessions()
	composer := guard.NewComposer(limiter, server.APIProvider(sessions), logger, metrics, guard.ComposerConfig{
		BrowserProvider: server.BrowserProvider(sessions),
		TrustedProxies:  cfg.Pipeline.TrustedProxies,
	})

	router := server.NewRouter(server.Deps{
		Composer:  composer,
		Directory: directory,
		Sessions:  sessions,
		Logger:    logger,
		Secure:    cfg.IsProduction(),
	})

	handler := httputil.Chain(
		httputil.RecoveryMiddleware(logger),
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(logger, metrics),
		httputil.MaxBytesMiddleware(1<<20),
		filter.Handler,
	)(router)
	if cfg.Observability.OTelEnabled {
		handler = otelhttp.NewHandler(handler, "palisade")
	}

	appServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Probe and scrape endpoints on a separate listener
	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(db, redisClient))
	if cfg.Observability.MetricsEnabled {
		healthMux.Handle("/metrics", metrics.Handler())
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout, appServer, healthServer)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		rootCancel()
		return nil
	})
	if redisClient != nil {
		shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
			return redisClient.Close()
		})
	}
	if db != nil {
		shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
			return db.Close()
		})
	}
	if otelProviders != nil {
		shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
			return observability.ShutdownOTel(ctx, otelProviders, logger)
		})
	}

	g, _ := errgroup.WithContext(rootCtx)
	g.Go(func() error {
		plog.Infof("API server listening on %s", appServer.Addr)
		if err := appServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		plog.Infof("Health server listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return shutdown.WaitForShutdown()
	})

	if err := g.Wait(); err != nil {
		plog.Fatalf("Server error: %v", err)
	}
}
