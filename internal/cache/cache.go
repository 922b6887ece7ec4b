// Package cache provides a Redis read-through cache for flight lookups.
// Cache failures are treated as misses; the database stays the source of
// truth.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/aerovia/booking/internal/database"
)

// FlightCache caches flight records keyed by flight ID
type FlightCache interface {
	Get(ctx context.Context, id uuid.UUID) (*database.Flight, bool)
	Set(ctx context.Context, flight *database.Flight) error
	Invalidate(ctx context.Context, id uuid.UUID) error
	Close() error
}

// RedisFlightCache implements FlightCache on Redis
type RedisFlightCache struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// DefaultRedisConfig returns local-development defaults
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr: "localhost:6379",
		TTL:  30 * time.Second,
	}
}

// NewRedisFlightCache connects to Redis and verifies the connection
func NewRedisFlightCache(cfg RedisConfig) (*RedisFlightCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisFlightCache{client: client, ttl: cfg.TTL}, nil
}

func flightKey(id uuid.UUID) string {
	return "flight:" + id.String()
}

// Get returns a cached flight, or (nil, false) on any miss or cache error.
func (c *RedisFlightCache) Get(ctx context.Context, id uuid.UUID) (*database.Flight, bool) {
	data, err := c.client.Get(ctx, flightKey(id)).Bytes()
	if err != nil {
		return nil, false
	}

	var flight database.Flight
	if err := json.Unmarshal(data, &flight); err != nil {
		return nil, false
	}

	return &flight, true
}

// Set stores a flight with the configured TTL
func (c *RedisFlightCache) Set(ctx context.Context, flight *database.Flight) error {
	data, err := json.Marshal(flight)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightKey(flight.ID), data, c.ttl).Err()
}

// Invalidate drops a flight from the cache. Called after bookings and admin
// edits so stale seat counts don't outlive the mutation.
func (c *RedisFlightCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, flightKey(id)).Err()
}

// Close releases the Redis connection
func (c *RedisFlightCache) Close() error {
	return c.client.Close()
}
