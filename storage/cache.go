package storage

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"taskdeck/record"
)

// Cache wraps a record.Client with Redis-backed caching for fetches. Cached
// entries are keyed by a per-table version plus a hash of the query; every
// mutation bumps the table's version, so any read after a write recomputes
// from the backing store. Derived values such as category task counts are
// therefore never served stale within this client.
type Cache struct {
	base  record.Client
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
func NewCache(base record.Client, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

// FetchRecords implements record.Client.
func (c *Cache) FetchRecords(ctx context.Context, table string, q record.Query) ([]record.Record, error) {
	key, ok := c.fetchKey(ctx, table, q)
	if ok {
		if recs, hit := c.load(ctx, key); hit {
			return recs, nil
		}
	}

	recs, err := c.base.FetchRecords(ctx, table, q)
	if err != nil {
		return nil, err
	}
	if ok {
		c.store(ctx, key, recs)
	}
	return recs, nil
}

// GetRecordByID implements record.Client. Point lookups are cheap and back
// existence checks for mutations, so they always go to the base store.
func (c *Cache) GetRecordByID(ctx context.Context, table string, id int, q record.Query) (record.Record, error) {
	return c.base.GetRecordByID(ctx, table, id, q)
}

// CreateRecords implements record.Client.
func (c *Cache) CreateRecords(ctx context.Context, table string, recs []record.Record) ([]record.Record, error) {
	out, err := c.base.CreateRecords(ctx, table, recs)
	if err != nil {
		return nil, err
	}
	c.bumpVersion(ctx, table)
	return out, nil
}

// UpdateRecords implements record.Client.
func (c *Cache) UpdateRecords(ctx context.Context, table string, recs []record.Record) ([]record.Record, error) {
	out, err := c.base.UpdateRecords(ctx, table, recs)
	if err != nil {
		// A partial batch failure may still have applied some records.
		c.bumpVersion(ctx, table)
		return nil, err
	}
	c.bumpVersion(ctx, table)
	return out, nil
}

// DeleteRecords implements record.Client.
func (c *Cache) DeleteRecords(ctx context.Context, table string, ids []int) error {
	err := c.base.DeleteRecords(ctx, table, ids)
	c.bumpVersion(ctx, table)
	return err
}

func (c *Cache) fetchKey(ctx context.Context, table string, q record.Query) (string, bool) {
	if c.redis == nil || c.ttl == 0 {
		return "", false
	}
	ver, err := c.redis.Get(ctx, versionKey(table)).Int64()
	if err != nil && err != redis.Nil {
		return "", false
	}
	data, err := sonic.Marshal(q)
	if err != nil {
		return "", false
	}
	h := fnv.New64a()
	_, _ = h.Write(data)
	return "records:" + table + ":v" + strconv.FormatInt(ver, 10) + ":" + strconv.FormatUint(h.Sum64(), 16), true
}

func (c *Cache) load(ctx context.Context, key string) ([]record.Record, bool) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing store without failing.
			_ = c.redis.Del(ctx, key).Err()
		}
		return nil, false
	}
	var recs []record.Record
	if err := sonic.Unmarshal(data, &recs); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return nil, false
	}
	return recs, true
}

func (c *Cache) store(ctx context.Context, key string, recs []record.Record) {
	data, err := sonic.Marshal(recs)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) bumpVersion(ctx context.Context, table string) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Incr(ctx, versionKey(table)).Err()
}

func versionKey(table string) string {
	return "records:ver:" + table
}
