// Package cache is the Redis-backed query-result cache. Keys are derived
// from the normalized query together with the language pair and result
// limit, so the same Bangla query against different target languages never
// collides. Singleflight collapses concurrent misses on the same key into
// one computation; errors are never cached.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/arefin-labs/clir-engine/internal/searcher"
	"github.com/arefin-labs/clir-engine/pkg/config"
	pkgredis "github.com/arefin-labs/clir-engine/pkg/redis"
)

const keyPrefix = "search:"

// Key identifies one cacheable search.
type Key struct {
	Query       string
	SourceLang  string
	TargetLangs []string
	K           int
}

type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, key Key) (*searcher.SearchResult, bool) {
	redisKey := buildKey(key)
	data, err := c.client.Get(ctx, redisKey)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", redisKey, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result searcher.SearchResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", redisKey, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, key Key, result *searcher.SearchResult) {
	redisKey := buildKey(key)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", redisKey, "error", err)
		return
	}
	if err := c.client.Set(ctx, redisKey, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", redisKey, "error", err)
	}
}

// GetOrCompute returns the cached result for key or computes, caches, and
// returns a fresh one. The second return reports whether the result came
// from the cache. A failed computation is returned to every singleflight
// waiter and nothing is cached.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	key Key,
	computeFn func() (*searcher.SearchResult, error),
) (*searcher.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, key); ok {
		return result, true, nil
	}
	redisKey := buildKey(key)
	val, err, _ := c.group.Do(redisKey, func() (interface{}, error) {
		if result, ok := c.Get(ctx, key); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*searcher.SearchResult), false, nil
}

// Invalidate drops every cached search result. The indexer calls this after
// applying index mutations so rankings never outlive the postings that
// produced them.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey hashes the normalized query and language scope into a fixed-size
// Redis key. Token order is irrelevant to scoring, so "ঢাকা বন্যা" and
// "বন্যা ঢাকা" share an entry.
func buildKey(key Key) string {
	words := strings.Fields(strings.ToLower(key.Query))
	sort.Strings(words)
	targets := make([]string, len(key.TargetLangs))
	copy(targets, key.TargetLangs)
	sort.Strings(targets)

	raw := fmt.Sprintf("%s|%s->%s|k=%d",
		strings.Join(words, ","), key.SourceLang, strings.Join(targets, ","), key.K)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
