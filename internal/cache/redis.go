// Package cache keeps the public org listing in Redis.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/devexchange/orgs-backend/v1/config"
	"github.com/devexchange/orgs-backend/v1/model"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// PublicOrgsKey holds the JSON encoded public org list
const PublicOrgsKey = "orgs:public"

// Commands is the subset of redis.Cmdable the cache uses
type Commands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ProvideRedis connects to Redis, returning nil when no address is configured
func ProvideRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// OrgListCache stores the public org listing. Redis errors are logged and
// treated as a miss so the listing falls back to the database.
type OrgListCache struct {
	rdb    Commands
	ttl    time.Duration
	logger *zap.Logger
}

// NewOrgListCache creates a cache whose entries live for ttl
func NewOrgListCache(rdb Commands, ttl time.Duration, logger *zap.Logger) *OrgListCache {
	return &OrgListCache{rdb: rdb, ttl: ttl, logger: logger}
}

// GetPublicList returns the cached listing, if any
func (c *OrgListCache) GetPublicList(ctx context.Context) ([]model.PublicOrg, bool) {
	raw, err := c.rdb.Get(ctx, PublicOrgsKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("org list cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var orgs []model.PublicOrg
	if err := json.Unmarshal(raw, &orgs); err != nil {
		c.logger.Warn("discarding undecodable org list cache entry", zap.Error(err))
		return nil, false
	}
	return orgs, true
}

// SetPublicList stores the listing
func (c *OrgListCache) SetPublicList(ctx context.Context, orgs []model.PublicOrg) {
	raw, err := json.Marshal(orgs)
	if err != nil {
		c.logger.Warn("org list cache encode failed", zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, PublicOrgsKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("org list cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached listing
func (c *OrgListCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, PublicOrgsKey).Err(); err != nil {
		c.logger.Warn("org list cache invalidation failed", zap.Error(err))
	}
}
