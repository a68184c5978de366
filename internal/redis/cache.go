package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hackgods/clinic-booking/internal/appointment"
)

const (
	DefaultKeyPrefix = "appointments:list"
	DefaultTTL       = 30 * time.Second
)

// ListingCache stores ordered appointment listings under a generation counter.
// Writers INCR the counter after committing, so a listing read before the
// write can only ever be stored under a generation nobody asks for again.
type ListingCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ appointment.ListCache = (*ListingCache)(nil)

func NewListingCache(client *redis.Client, prefix string, ttl time.Duration) *ListingCache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	// A zero expiration would make go-redis keep the listing forever.
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ListingCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *ListingCache) generationKey() string {
	return c.prefix + ":gen"
}

func (c *ListingCache) listKey(gen int64) string {
	return fmt.Sprintf("%s:%d", c.prefix, gen)
}

func (c *ListingCache) Generation(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, c.generationKey()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read listing generation: %w", err)
	}
	gen, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse listing generation %q: %w", v, err)
	}
	return gen, nil
}

func (c *ListingCache) Get(ctx context.Context, gen int64) ([]appointment.Appointment, bool, error) {
	data, err := c.client.Get(ctx, c.listKey(gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cached listing: %w", err)
	}

	var list []appointment.Appointment
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, false, fmt.Errorf("decode cached listing: %w", err)
	}
	return list, true, nil
}

func (c *ListingCache) Put(ctx context.Context, gen int64, list []appointment.Appointment) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode listing: %w", err)
	}
	if err := c.client.Set(ctx, c.listKey(gen), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("write cached listing: %w", err)
	}
	return nil
}

func (c *ListingCache) Bump(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
		return fmt.Errorf("bump listing generation: %w", err)
	}
	return nil
}
