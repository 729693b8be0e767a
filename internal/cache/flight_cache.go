package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"go-flight-booking/internal/model"
	apperrors "go-flight-booking/pkg/app_errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// FlightCache 航班讀取快取。座位數的真相永遠在資料庫，
// 這裡只是讀路徑的快取，任何座位異動都必須先 Invalidate。
type FlightCache interface {
	GetFlight(ctx context.Context, flightID int) (*model.Flight, error)
	SetFlight(ctx context.Context, flight *model.Flight, ttl time.Duration) error
	InvalidateFlight(ctx context.Context, flightID int) error
}

type RedisFlightCacheImpl struct {
	client *redis.Client
}

func NewRedisFlightCache(client *redis.Client) FlightCache {
	return &RedisFlightCacheImpl{
		client: client,
	}
}

// 航班快取 key
func (c *RedisFlightCacheImpl) getFlightKey(flightID int) string {
	return fmt.Sprintf("flight:%d:info", flightID)
}

func (c *RedisFlightCacheImpl) GetFlight(ctx context.Context, flightID int) (*model.Flight, error) {
	key := c.getFlightKey(flightID)

	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, apperrors.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var flight model.Flight
	if err := json.Unmarshal([]byte(val), &flight); err != nil {
		return nil, fmt.Errorf("invalid cached flight: %v", err)
	}

	return &flight, nil
}

func (c *RedisFlightCacheImpl) SetFlight(ctx context.Context, flight *model.Flight, ttl time.Duration) error {
	key := c.getFlightKey(flight.ID)

	flightJSON, err := json.Marshal(flight)
	if err != nil {
		return fmt.Errorf("marshal flight: %w", err)
	}

	return c.client.Set(ctx, key, flightJSON, ttl).Err()
}

func (c *RedisFlightCacheImpl) InvalidateFlight(ctx context.Context, flightID int) error {
	key := c.getFlightKey(flightID)
	return c.client.Del(ctx, key).Err()
}
