package rates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/bingbai-ux/baoflow-backend/pkg/config"
	"github.com/bingbai-ux/baoflow-backend/pkg/logger"
)

const keyPrefix = "baoflow:rates"

// Source fetches a live exchange rate from an external provider.
type Source interface {
	Fetch(ctx context.Context, source, target string) (decimal.Decimal, error)
}

// Cache stores fetched rates with a TTL.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Provider resolves the source→target exchange rate used by billing
// calculations. A rate-source failure is recovered locally by falling back
// to the configured default rate; callers never see the error.
type Provider struct {
	cfg    config.RatesConfig
	source Source
	cache  Cache
	logg   *logger.Logger
}

// NewProvider wires a rate provider. Both source and cache may be nil; the
// provider then always serves the configured default.
func NewProvider(cfg config.RatesConfig, source Source, cache Cache, logg *logger.Logger) *Provider {
	return &Provider{cfg: cfg, source: source, cache: cache, logg: logg}
}

// Pair returns the configured source and target currency codes.
func (p *Provider) Pair() (string, string) {
	return p.cfg.SourceCurrency, p.cfg.TargetCurrency
}

// Rate returns the current source→target rate, consulting the cache, then
// the external source, then the configured default.
func (p *Provider) Rate(ctx context.Context) decimal.Decimal {
	key := p.cacheKey(p.cfg.SourceCurrency, p.cfg.TargetCurrency)

	if p.cache != nil {
		if raw, err := p.cache.Get(ctx, key); err == nil {
			if rate, parseErr := decimal.NewFromString(raw); parseErr == nil && rate.IsPositive() {
				return rate
			}
		}
	}

	if p.source != nil {
		rate, err := p.source.Fetch(ctx, p.cfg.SourceCurrency, p.cfg.TargetCurrency)
		if err == nil && rate.IsPositive() {
			if p.cache != nil {
				if cacheErr := p.cache.Set(ctx, key, rate.String(), p.cfg.CacheTTL); cacheErr != nil && p.logg != nil {
					p.logg.Warn(ctx, "caching exchange rate failed")
				}
			}
			return rate
		}
		if p.logg != nil {
			logCtx := p.logg.WithFields(ctx, map[string]any{
				"source_currency": p.cfg.SourceCurrency,
				"target_currency": p.cfg.TargetCurrency,
				"default_rate":    p.cfg.DefaultRate.String(),
			})
			p.logg.Warn(logCtx, "external rate unavailable, using configured default")
		}
	}

	return p.cfg.DefaultRate
}

func (p *Provider) cacheKey(source, target string) string {
	return fmt.Sprintf("%s:%s_%s", keyPrefix, strings.ToUpper(source), strings.ToUpper(target))
}

// redisCache adapts a go-redis client to the Cache interface.
type redisCache struct {
	client *redis.Client
}

// NewRedisCache bootstraps a Redis-backed rate cache and verifies
// connectivity.
func NewRedisCache(ctx context.Context, cfg config.RedisConfig) (Cache, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis url is required")
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &redisCache{client: client}, nil
}

func (r *redisCache) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}
