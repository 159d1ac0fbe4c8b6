package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/directory-cli/internal/company"
	"github.com/sells-group/directory-cli/internal/db"
	"github.com/sells-group/directory-cli/internal/listing"
	"github.com/sells-group/directory-cli/internal/ranking"
	"github.com/sells-group/directory-cli/internal/resilience"
)

// appEnv holds the shared dependencies built from config.
type appEnv struct {
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	Registry *prometheus.Registry
	Resolver *company.Resolver
	Listings *listing.Service
}

// Close releases all connections.
func (e *appEnv) Close() {
	if e.Redis != nil {
		if err := e.Redis.Close(); err != nil {
			zap.L().Warn("close redis", zap.Error(err))
		}
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
}

// initEnv validates config for mode and wires stores, services and metrics.
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}
	if err := ranking.ValidateConfig(cfg.Ranking); err != nil {
		return nil, err
	}

	pool, err := db.Open(ctx, cfg.Store.DatabaseURL, db.PoolConfig{
		MaxConns: cfg.Store.MaxConns,
		MinConns: cfg.Store.MinConns,
	})
	if err != nil {
		return nil, err
	}
	env := &appEnv{Pool: pool, Registry: prometheus.NewRegistry()}

	env.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := company.NewMetrics()
	if err := metrics.Register(env.Registry); err != nil {
		env.Close()
		return nil, eris.Wrap(err, "register metrics")
	}

	env.Resolver = company.NewResolver(company.NewPostgresStore(pool), cfg.Dedupe, metrics)

	var cache listing.Cache
	if cfg.Cache.RedisAddr != "" {
		env.Redis = listing.NewRedisClient(cfg.Cache)
		if err := env.Redis.Ping(ctx).Err(); err != nil {
			// The cache is optional.
			zap.L().Warn("redis unreachable, listings will not be cached until it recovers",
				zap.String("addr", cfg.Cache.RedisAddr),
				zap.Error(err),
			)
		}
		cache = listing.NewRedisCache(env.Redis, resilience.NewCircuitBreaker(5, 30*time.Second, nil))
	}

	scorer := ranking.NewScorer(cfg.Ranking, nil)
	env.Listings = listing.NewService(listing.NewPostgresStore(pool), scorer, cache,
		time.Duration(cfg.Cache.TTLSecs)*time.Second)

	return env, nil
}
