// Package cli wires configuration, stores and transports into a running engine
// for the diagraph command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/diagraph"
	"github.com/aretw0/diagraph/internal/config"
	"github.com/aretw0/diagraph/internal/logging"
	"github.com/aretw0/diagraph/internal/metrics"
	"github.com/aretw0/diagraph/pkg/adapters/redis"
	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/middleware"
	backend "github.com/redis/go-redis/v9"
)

// ErrNoSource is returned when neither a flag nor the configuration names a graph source.
var ErrNoSource = errors.New("no graph source: pass --source or set graph_file, sqlite_path or loam_dir")

// Options carries the command line settings that override the configuration.
type Options struct {
	ConfigPath string
	Source     string
	LogLevel   string
	Debug      bool
	Metrics    bool
}

// App is a configured engine with its supporting services.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Engine  *diagraph.Engine
	Metrics *metrics.Metrics
}

// Setup loads the configuration and builds the engine it describes.
func Setup(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.Debug {
		cfg.LogLevel = "debug"
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level)

	source := opts.Source
	if source == "" {
		source = cfg.Source()
	}
	if source == "" {
		return nil, ErrNoSource
	}

	app := &App{Config: cfg, Logger: logger}
	engineOpts := []diagraph.Option{
		diagraph.WithLogger(logger),
		diagraph.WithMaxCandidates(cfg.MaxCandidates),
		diagraph.WithCacheSize(cfg.CacheSize),
	}

	hooks := domain.LifecycleHooks{}
	if opts.Debug {
		hooks = debugHooks(logger)
	}
	if opts.Metrics {
		m, err := metrics.New(nil)
		if err != nil {
			return nil, err
		}
		app.Metrics = m
		hooks = hooks.Merge(m.Hooks())
	}
	engineOpts = append(engineOpts, diagraph.WithLifecycleHooks(hooks))

	if cfg.Redis.Addr != "" {
		redisOpts, err := redisOptions(cfg.Redis, cfg.Publish, logger)
		if err != nil {
			return nil, err
		}
		engineOpts = append(engineOpts, redisOpts...)
	}

	eng, err := diagraph.New(source, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	app.Engine = eng
	return app, nil
}

// redisOptions backs sessions, locks and turn publishing with one Redis client.
func redisOptions(cfg config.RedisConfig, pub config.PublishConfig, logger *slog.Logger) ([]diagraph.Option, error) {
	mws, err := publisherMiddleware(pub)
	if err != nil {
		return nil, err
	}
	client := backend.NewClient(&backend.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	store := redis.NewFromClient(client,
		redis.WithPrefix(cfg.Prefix+"session:"),
		redis.WithTTL(cfg.TTL),
	)
	logger.Info("using redis", "addr", cfg.Addr, "db", cfg.DB, "prefix", cfg.Prefix)
	return []diagraph.Option{
		diagraph.WithSessionStore(store),
		diagraph.WithLocker(redis.NewLocker(client, cfg.Prefix+"lock:")),
		diagraph.WithPublisher(middleware.Chain(redis.NewPublisher(client, cfg.Prefix), mws...)),
		diagraph.WithCloser(store),
	}, nil
}

// publisherMiddleware masks before it seals.
func publisherMiddleware(cfg config.PublishConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.MaskKeys) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.MaskKeys)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	key, err := cfg.Key()
	if err != nil {
		return nil, err
	}
	if key != nil {
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return mws, nil
}

// GraphID returns id, or the first graph of the engine when id is empty.
func (a *App) GraphID(ctx context.Context, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	return a.Engine.DefaultGraph(ctx)
}

// Close releases the engine resources.
func (a *App) Close() error {
	if a.Engine == nil {
		return nil
	}
	return a.Engine.Close()
}
