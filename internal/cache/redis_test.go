package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/devexchange/orgs-backend/v1/model"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type memRedis struct {
	data    map[string]string
	ttl     map[string]time.Duration
	failGet error
	dels    int
}

func newMemRedis() *memRedis {
	return &memRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (m *memRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if m.failGet != nil {
		return redis.NewStringResult("", m.failGet)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = string(value.([]byte))
	m.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *memRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.dels++
	for _, k := range keys {
		delete(m.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestOrgListCache(t *testing.T) {
	rdb := newMemRedis()
	c := NewOrgListCache(rdb, time.Minute, zap.NewNop())
	ctx := context.Background()

	if _, ok := c.GetPublicList(ctx); ok {
		t.Fatal("expected miss on empty cache")
	}

	orgs := []model.PublicOrg{{Key: "acme", Name: "Acme", Capabilities: []model.Capability{{Name: "Go"}}}}
	c.SetPublicList(ctx, orgs)
	if rdb.ttl[PublicOrgsKey] != time.Minute {
		t.Errorf("expected ttl of one minute, got %v", rdb.ttl[PublicOrgsKey])
	}

	got, ok := c.GetPublicList(ctx)
	if !ok || len(got) != 1 || got[0].Name != "Acme" || got[0].Capabilities[0].Name != "Go" {
		t.Fatalf("unexpected cached list %+v (hit=%v)", got, ok)
	}

	c.Invalidate(ctx)
	if _, ok := c.GetPublicList(ctx); ok {
		t.Error("expected miss after invalidation")
	}
}

func TestOrgListCache_ErrorsAreMisses(t *testing.T) {
	rdb := newMemRedis()
	c := NewOrgListCache(rdb, time.Minute, zap.NewNop())
	ctx := context.Background()

	rdb.data[PublicOrgsKey] = "not json"
	if _, ok := c.GetPublicList(ctx); ok {
		t.Error("expected undecodable entry to be a miss")
	}

	rdb.failGet = errors.New("connection refused")
	if _, ok := c.GetPublicList(ctx); ok {
		t.Error("expected read error to be a miss")
	}
}
