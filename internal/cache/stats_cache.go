package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/junepark678/ebsi-csat/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "ebsi:stats:"
	defaultTTL = 24 * time.Hour
)

// StatsCache keeps raw paper statistics payloads keyed by exam id. Exam
// statistics only move while an exam is fresh, so entries expire after ttl.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatsCache(redisURL string, ttl time.Duration) (*StatsCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &StatsCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func (c *StatsCache) Get(ctx context.Context, examID string) ([]byte, bool) {
	payload, err := c.client.Get(ctx, statsKey(examID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logger.Log.Debug().Err(err).Str("exam_id", examID).Msg("stats cache get error")
		return nil, false
	}
	logger.Log.Debug().Str("exam_id", examID).Int("bytes", len(payload)).Msg("stats cache hit")
	return payload, true
}

// Set stores payload unless it is empty; an empty body is never a valid
// stats response.
func (c *StatsCache) Set(ctx context.Context, examID string, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	return c.client.Set(ctx, statsKey(examID), payload, c.ttl).Err()
}

func (c *StatsCache) TTL() time.Duration {
	return c.ttl
}

func (c *StatsCache) Close() error {
	return c.client.Close()
}

func statsKey(examID string) string {
	return keyPrefix + examID
}
