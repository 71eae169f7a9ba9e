package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"github.com/vendidero/shiptastic-ups/internal/config"
	"github.com/vendidero/shiptastic-ups/internal/storage"
	"github.com/vendidero/shiptastic-ups/internal/telemetry"
	"github.com/vendidero/shiptastic-ups/pkg/secretbox"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
	"github.com/vendidero/shiptastic-ups/pkg/shipper/ups"
	"github.com/vendidero/shiptastic-ups/pkg/tokenstore"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(cfg *config.Config) (*otelzap.Logger, error) {
	return telemetry.NewLogger(cfg.LogLevel, cfg.ServiceName, cfg.Version)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version, cfg.Attributes()...)
	return shutdown, err
}

func initArtifactStore(cfg *config.Config) shipper.ArtifactStore {
	if cfg.ArtifactDir == "" {
		return nil
	}
	return storage.NewFileStore(cfg.ArtifactDir, nil)
}

// initTokenCache returns the cache shared by all carrier token stores and a
// function releasing it.
func initTokenCache(ctx context.Context, cfg *config.Config, logger *otelzap.Logger) (tokenstore.Cache, func() error, error) {
	if !cfg.UseRedis() {
		return tokenstore.NewMemoryCache(nil), func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
	}

	logger.Info("Caching access tokens in Redis", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	return tokenstore.NewRedisCache(client), client.Close, nil
}

func initSealer(cfg *config.Config, logger *otelzap.Logger) (tokenstore.Sealer, error) {
	if cfg.TokenSecret == "" {
		if cfg.UseRedis() {
			return nil, fmt.Errorf("TOKEN_SECRET is required when tokens are cached in redis")
		}
		logger.Warn("TOKEN_SECRET is not set, access tokens are kept unencrypted in memory")
		return nil, nil
	}
	box, err := secretbox.New(cfg.TokenSecret, "shiptastic-access-token")
	if err != nil {
		return nil, err
	}
	return box, nil
}

func initShipperRegistry(cfg *config.Config, cache tokenstore.Cache, sealer tokenstore.Sealer, logger *otelzap.Logger) *shipper.Registry {
	registry := shipper.NewRegistry()
	tracer := otel.Tracer(cfg.ServiceName)

	if cfg.UPSEnabled {
		clientID, clientSecret := cfg.UPSCredentials()
		upsCfg := ups.Config{
			ClientID:      clientID,
			ClientSecret:  clientSecret,
			AccountNumber: cfg.UPSAccountNumber,
			Sandbox:       cfg.UPSSandbox,
			BaseURL:       cfg.UPSBaseURL,
			UseMock:       cfg.UPSUseMock,
			LabelRotation: cfg.UPSLabelRotation,
			UserAgent:     fmt.Sprintf("%s/%s", cfg.ServiceName, cfg.Version),
		}

		var tokens ups.TokenSource
		if !upsCfg.UseMock {
			tokens = tokenstore.New(
				tokenstore.Key("ups", clientID, upsCfg.Sandbox),
				cache,
				sealer,
				ups.NewAuthenticator(upsCfg, nil),
				tokenstore.WithLogger(logger),
			)
		}

		registry.Register(ups.New(upsCfg, tokens, logger, tracer))
	}

	return registry
}

// setup loads configuration and builds everything a command needs. The
// returned cleanup must be called once the command is done.
func setup(ctx context.Context) (*config.Config, *otelzap.Logger, *shipper.Registry, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	logger, err := initLogger(cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
		tracerShutdown = func(context.Context) error { return nil }
	}

	cache, closeCache, err := initTokenCache(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	sealer, err := initSealer(cfg, logger)
	if err != nil {
		_ = closeCache()
		return nil, nil, nil, nil, err
	}

	registry := initShipperRegistry(cfg, cache, sealer, logger)

	cleanup := func() {
		if err := closeCache(); err != nil {
			logger.Warn("Failed to close token cache", zap.Error(err))
		}
		if err := tracerShutdown(context.Background()); err != nil {
			logger.Warn("Failed to shut down tracer", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return cfg, logger, registry, cleanup, nil
}
