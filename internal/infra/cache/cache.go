// Package cache is the Cache (C5): user data, voucher counters, and
// idempotent claim results on the KV store, per spec.md §4.5.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"gin-clean-starter/internal/infra/kv"
)

const (
	userTTL   = 300 * time.Second
	countTTL  = 300 * time.Second
	resultTTL = 3600 * time.Second
)

type UserData struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Claimed int    `json:"claimed"`
	Limit   int    `json:"limit"`
	Premium bool   `json:"premium"`
	Active  bool   `json:"active"`
}

type Cache struct {
	kv *kv.Gateway

	hits   atomic.Int64
	misses atomic.Int64
}

func New(gateway *kv.Gateway) *Cache {
	return &Cache{kv: gateway}
}

func (c *Cache) Hits() int64   { return c.hits.Load() }
func (c *Cache) Misses() int64 { return c.misses.Load() }

func userKey(userID string) string   { return fmt.Sprintf("user:%s:data", userID) }
func countKey(userID string) string  { return fmt.Sprintf("user:%s:vouchers", userID) }
func resultKey(requestID string) string { return fmt.Sprintf("claim:result:%s", requestID) }

func (c *Cache) GetUser(ctx context.Context, userID string) (*UserData, bool) {
	raw, err := c.kv.Get(ctx, userKey(userID))
	if err != nil {
		c.misses.Add(1)
		return nil, false
	}

	var u UserData
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &u, true
}

func (c *Cache) PutUser(ctx context.Context, userID string, u *UserData) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, userKey(userID), string(raw), userTTL)
}

func (c *Cache) GetCount(ctx context.Context, userID string) (int, bool) {
	raw, err := c.kv.Get(ctx, countKey(userID))
	if err != nil {
		c.misses.Add(1)
		return 0, false
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		c.misses.Add(1)
		return 0, false
	}
	c.hits.Add(1)
	return n, true
}

// PutCount is invoked only by the transaction that also committed the
// corresponding claimed change (invariant X1); eventual consistency is
// the only drift tolerated between this cache and the store.
func (c *Cache) PutCount(ctx context.Context, userID string, claimed int) error {
	return c.kv.Set(ctx, countKey(userID), strconv.Itoa(claimed), countTTL)
}

func (c *Cache) GetResult(ctx context.Context, requestID string) (json.RawMessage, bool) {
	raw, err := c.kv.Get(ctx, resultKey(requestID))
	if err != nil {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return json.RawMessage(raw), true
}

func (c *Cache) PutResult(ctx context.Context, requestID string, result any) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, resultKey(requestID), string(raw), resultTTL)
}

// InvalidateUser pipelines a del over every user:{id}:* key found by
// scan, called on the commit path so readers re-load on next miss.
func (c *Cache) InvalidateUser(ctx context.Context, userID string) error {
	cursor := c.kv.Scan(fmt.Sprintf("user:%s:*", userID))
	for {
		keys, err := cursor.Next(ctx)
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.kv.Del(ctx, keys...); err != nil {
				return err
			}
		}
		if cursor.Done() {
			return nil
		}
	}
}
