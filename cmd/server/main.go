package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sifan077/Rinku/config"
	"github.com/sifan077/Rinku/internal/app/metadata"
	apprepository "github.com/sifan077/Rinku/internal/app/repository"
	appserver "github.com/sifan077/Rinku/internal/app/server"
	appservice "github.com/sifan077/Rinku/internal/app/service"
	"github.com/sifan077/Rinku/internal/infra/logger"
	infraNATS "github.com/sifan077/Rinku/internal/infra/nats"
	infraPostgres "github.com/sifan077/Rinku/internal/infra/postgres"
	infraPrometheus "github.com/sifan077/Rinku/internal/infra/prometheus"
	infraRedis "github.com/sifan077/Rinku/internal/infra/redis"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
		Service:     "rinku-api",
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded successfully",
		zap.Bool("postgres_url_set", cfg.Postgres.URL != ""),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.Int("server_port", cfg.Server.Port),
		zap.Bool("firecrawl_configured", cfg.Metadata.FirecrawlAPIKey != ""),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Bool("nats_enabled", cfg.NATS.Enabled),
		zap.Bool("prometheus_enabled", cfg.Prometheus.Enabled),
	)

	// The store must be reachable before the API accepts requests.
	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Error connecting to the database",
			zap.String("postgres_host", cfg.Postgres.Host),
			zap.String("postgres_db", cfg.Postgres.Database),
			zap.Error(err),
			zap.Stack("stack"),
		)
	}
	defer pool.Close()
	log.Info("Connected to the database successfully")

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraPostgres.EnsureSchema(ctx, gormDB); err != nil {
		log.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	bookmarkRepo := apprepository.NewBookmarkRepository(gormDB)

	provider, warmer, closeCache := buildMetadataProvider(ctx, cfg, log)
	defer closeCache()

	var publisher appservice.EventPublisher
	var prefetcher *metadata.Prefetcher
	if cfg.NATS.Enabled {
		natsConn, js, err := infraNATS.Connect(cfg.NATS)
		if err != nil {
			log.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer natsConn.Drain()

		if err := infraNATS.EnsureBookmarkStream(js); err != nil {
			log.Fatal("Failed to ensure bookmark stream", zap.Error(err))
		}
		publisher = appservice.NewBookmarkPublisher(js)
		log.Info("Connected to NATS successfully")

		if cfg.Metadata.Prefetch && warmer != nil {
			prefetcher = metadata.NewPrefetcher(js, warmer, log.Named("prefetcher"))
			if err := prefetcher.Start(); err != nil {
				log.Fatal("Failed to start metadata prefetcher", zap.Error(err))
			}
			defer prefetcher.Stop()
		}
	}

	if cfg.Prometheus.Enabled {
		startMetricsServer(cfg.Prometheus, log)

		stats := appservice.NewStoreStatsReporter(log.Named("stats"), bookmarkRepo, pool)
		stats.Start()
		defer stats.Stop()
	} else {
		log.Info("Prometheus metrics server disabled")
	}

	server := appserver.New(appserver.Dependencies{
		Logger:     log,
		Bookmarks:  appservice.NewBookmarkService(bookmarkRepo, publisher, log.Named("bookmarks")),
		Metadata:   provider,
		StorePing:  storePing(pool),
		CORSOrigin: cfg.Server.CORSOrigin,
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("Graceful shutdown failed", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Server running", zap.String("addr", addr))
	if err := server.Listen(addr); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}

// buildMetadataProvider picks Firecrawl when an API key is configured and
// the direct HTML scraper otherwise, wrapped in the Redis cache when enabled.
// The returned warmer is nil when there is no cache to warm.
func buildMetadataProvider(ctx context.Context, cfg *config.Config, log *zap.Logger) (metadata.Provider, metadata.Warmer, func()) {
	var provider metadata.Provider
	if cfg.Metadata.FirecrawlAPIKey != "" {
		provider = metadata.NewFirecrawlProvider(cfg.Metadata.FirecrawlAPIKey, cfg.Metadata.FirecrawlBaseURL, nil)
	} else {
		log.Warn("FIRECRAWL_API_KEY not set, scraping pages directly")
		provider = metadata.NewHTMLProvider(nil)
	}

	if !cfg.Redis.Enabled {
		return provider, nil, func() {}
	}

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	log.Info("Connected to Redis successfully")

	cached := metadata.NewCachedProvider(provider, metadata.NewRedisCache(redisClient), cfg.Metadata.CacheTTL, log.Named("metadata"))
	return cached, cached, func() { _ = redisClient.Close() }
}

func startMetricsServer(cfg config.PrometheusConfig, log *zap.Logger) {
	promServer := infraPrometheus.NewServer(cfg)
	go func() {
		log.Info("Starting Prometheus metrics server", zap.String("addr", promServer.Addr))
		if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
		}
	}()
}

func storePing(pool *pgxpool.Pool) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return infraPostgres.Ping(ctx, pool)
	}
}
