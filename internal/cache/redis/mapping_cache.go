package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"teammatch/internal/domain"
)

// MappingCache implements domain.MappingCache using one Redis hash per
// provider pair, keyed by canonical name with JSON-serialized entries.
//
// Key schema:
//
//	mapping:{pairKey} - hash: canonical name -> entry JSON
//
// An empty table leaves no hash behind, so it is indistinguishable from a
// cache miss; callers fall back to the mirror or the table file.
type MappingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewMappingCache creates a MappingCache backed by the given Client. Cached
// pairs expire after ttl.
func NewMappingCache(c *Client, ttl time.Duration) *MappingCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MappingCache{rdb: c.Underlying(), ttl: ttl}
}

func mappingKey(pair domain.Pair) string { return "mapping:" + pair.Key() }

// SetTable replaces the cached table for a pair.
func (mc *MappingCache) SetTable(ctx context.Context, pair domain.Pair, table domain.Table) error {
	fields := make(map[string]string, len(table))
	for name, e := range table {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("redis: marshal entry %q for %s: %w", name, pair, err)
		}
		fields[name] = string(data)
	}

	key := mappingKey(pair)

	pipe := mc.rdb.TxPipeline()
	pipe.Del(ctx, key)
	if len(fields) > 0 {
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, mc.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set table for %s: %w", pair, err)
	}
	return nil
}

// GetTable retrieves the full cached table for a pair.
// It returns domain.ErrNotFound when the pair is not cached.
func (mc *MappingCache) GetTable(ctx context.Context, pair domain.Pair) (domain.Table, error) {
	fields, err := mc.rdb.HGetAll(ctx, mappingKey(pair)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: get table for %s: %w", pair, err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrNotFound
	}

	table := make(domain.Table, len(fields))
	for name, data := range fields {
		var e domain.Entry
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			return nil, fmt.Errorf("redis: unmarshal entry %q for %s: %w", name, pair, err)
		}
		table[name] = e
	}
	return table, nil
}

// GetEntry retrieves one cached entry by canonical name.
// It returns domain.ErrNotFound when the entry is not cached.
func (mc *MappingCache) GetEntry(ctx context.Context, pair domain.Pair, canonical string) (domain.Entry, error) {
	data, err := mc.rdb.HGet(ctx, mappingKey(pair), canonical).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Entry{}, domain.ErrNotFound
		}
		return domain.Entry{}, fmt.Errorf("redis: get entry %q for %s: %w", canonical, pair, err)
	}

	var e domain.Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return domain.Entry{}, fmt.Errorf("redis: unmarshal entry %q for %s: %w", canonical, pair, err)
	}
	return e, nil
}

// Invalidate removes a pair's cached table.
func (mc *MappingCache) Invalidate(ctx context.Context, pair domain.Pair) error {
	if err := mc.rdb.Del(ctx, mappingKey(pair)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate %s: %w", pair, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.MappingCache = (*MappingCache)(nil)
