package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"produto-api/internal/config"
	"produto-api/internal/database"
	"produto-api/internal/logging"
	"produto-api/internal/logging/loki"
	"produto-api/internal/logging/shipper"
	"produto-api/internal/logging/zaploki"
	"produto-api/internal/metrics"
	"produto-api/internal/produto"
	"produto-api/internal/server"
	"produto-api/internal/server/ratelimit"
	"produto-api/internal/tracing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	m := metrics.New(server.Version, cfg.Environment)

	logger, ship := buildLogger(cfg, m)
	defer logger.Sync()

	logger.Info("starting produto-api",
		zap.String("environment", cfg.Environment),
		zap.String("version", server.Version),
		zap.Bool("loki_enabled", cfg.Loki.Enabled),
		zap.Bool("tempo_enabled", cfg.Tempo.Enabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var shutdownTracing func(context.Context) error
	if cfg.Tempo.Enabled {
		shutdownTracing, err = tracing.Init(ctx, cfg.Tempo, server.Version, cfg.Environment)
		if err != nil {
			logger.Error("failed to configure tracing, continuing without it", zap.Error(err))
			shutdownTracing = nil
		} else {
			logger.Info("tracing configured", zap.String("endpoint", cfg.Tempo.Endpoint))
		}
	}

	db, err := database.New(cfg.Database, cfg.Debug, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	if err := db.Migrate(&produto.Produto{}); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	db.InstrumentQueries(m.ObserveQuery)
	m.SetServiceDependency("produto-api", "postgresql", "database", true)
	m.SetServiceHealth("produto-api", "readiness", true)
	m.SetServiceHealth("produto-api", "liveness", true)

	repository := produto.NewRepository(db.DB(), logger)
	service, err := produto.NewService(repository, logger)
	if err != nil {
		logger.Fatal("failed to build produto service", zap.Error(err))
	}
	handler := produto.NewHandler(service, logger)

	var rateLimitStore *ratelimit.Store
	var rateLimitStats ratelimit.StatsRecorder
	if cfg.RateLimit.Enabled {
		rateLimitStore = ratelimit.NewStore(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		rateLimitStore.StartJanitor(ctx)

		if cfg.RateLimit.StatsEnabled {
			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.RateLimit.RedisAddr,
				Password: cfg.RateLimit.RedisPassword,
				DB:       cfg.RateLimit.RedisDB,
			})
			defer rdb.Close()

			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err := rdb.Ping(pingCtx).Err()
			cancel()
			if err != nil {
				logger.Warn("redis unavailable, rate-limit stats disabled", zap.Error(err))
			} else {
				rateLimitStats = ratelimit.NewRedisStats(rdb)
			}
		}
	}

	srv := server.New(server.Deps{
		Config:         cfg,
		Logger:         logger,
		Metrics:        m,
		DB:             db,
		Produto:        handler,
		Shipper:        ship,
		RateLimitStore: rateLimitStore,
		RateLimitStats: rateLimitStats,
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown incomplete", zap.Error(err))
	}

	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown incomplete", zap.Error(err))
		}
	}

	// flush the log queue last so the shutdown sequence itself is shipped
	if ship != nil {
		if err := ship.Shutdown(shutdownTimeout); err != nil {
			logger.Warn("log shipper shutdown incomplete", zap.Error(err))
		}
	}

	if err := db.Close(); err != nil {
		logger.Warn("database close failed", zap.Error(err))
	}

	logger.Info("produto-api stopped")
}

// buildLogger assembles the application logger: a console core, plus the
// Loki shipping core when enabled. The returned shipper is nil when Loki is
// disabled.
func buildLogger(cfg config.AppConfig, m *metrics.Metrics) (*zap.Logger, *shipper.Shipper) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stdout),
		level,
	)
	console := zap.New(consoleCore)

	if !cfg.Loki.Enabled {
		return console, nil
	}

	sender := loki.NewSender(cfg.Loki.URL, cfg.Loki.PushTimeout)
	ship := shipper.New(sender,
		logging.Config{
			BatchSize:     cfg.Loki.BatchSize,
			FlushInterval: cfg.Loki.FlushInterval,
		},
		shipper.WithObserver(m),
		shipper.WithConsole(console.Named("loki_sender")),
	)
	ship.Start()

	shipCore := zaploki.NewCore(level,
		zapcore.NewConsoleEncoder(encoderConfig),
		ship,
		map[string]string{
			"job":         cfg.Loki.Job,
			"application": "produto-api",
		},
	)

	return zap.New(zapcore.NewTee(consoleCore, shipCore)), ship
}
