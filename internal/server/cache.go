package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docbrain/internal/graph"
)

const cacheOpTimeout = 2 * time.Second

// AnswerCache stores finished chat results keyed by query. Satisfied by
// *Cache; the server only depends on this interface.
type AnswerCache interface {
	Enabled() bool
	Get(ctx context.Context, query string) (graph.Result, bool)
	Set(ctx context.Context, query string, res graph.Result)
	Flush(ctx context.Context)
}

// Cache stores finished chat answers in Redis keyed by normalized query. A
// nil or unreachable Redis degrades to a no-op so the agent keeps answering
// without it.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewCache connects to Redis. On connection failure it logs a warning and
// returns a disabled cache rather than an error.
func NewCache(addr, password string, db int, ttl time.Duration, log *zap.Logger) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Warn("redis unavailable, answer caching disabled", zap.Error(err))
		client.Close()
		return &Cache{ttl: ttl, log: log}
	}
	log.Info("connected to redis answer cache", zap.String("addr", addr))
	return &Cache{client: client, ttl: ttl, log: log}
}

// Close releases the Redis connection.
func (c *Cache) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Enabled reports whether a Redis connection is live.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func cacheKey(query string) string {
	return fmt.Sprintf("chat:%s", strings.ToLower(strings.TrimSpace(query)))
}

// Get returns a cached result for the query if present.
func (c *Cache) Get(ctx context.Context, query string) (graph.Result, bool) {
	if !c.Enabled() {
		return graph.Result{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, cacheKey(query)).Result()
	if err != nil {
		return graph.Result{}, false
	}

	var res graph.Result
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		c.log.Warn("dropping corrupt cache entry", zap.Error(err))
		return graph.Result{}, false
	}
	return res, true
}

// Set stores a result for the query. Failures are logged and ignored.
func (c *Cache) Set(ctx context.Context, query string, res graph.Result) {
	if !c.Enabled() {
		return
	}

	data, err := json.Marshal(res)
	if err != nil {
		c.log.Warn("caching answer failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	if err := c.client.Set(ctx, cacheKey(query), data, c.ttl).Err(); err != nil {
		c.log.Warn("caching answer failed", zap.Error(err))
	}
}

// Flush drops every cached answer.
func (c *Cache) Flush(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	if err := c.client.FlushDB(ctx).Err(); err != nil {
		c.log.Warn("flushing answer cache failed", zap.Error(err))
	}
}
