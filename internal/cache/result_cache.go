package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResultCache handles Redis ZSET operations for finished-race standings
type ResultCache interface {
	RecordResult(ctx context.Context, gameID, playerID string, wpm float64) error
	Standings(ctx context.Context, gameID string) ([]ResultEntry, error)
}

// ResultEntry is a single finished-race standing
type ResultEntry struct {
	PlayerID string  `json:"playerId"`
	WPM      float64 `json:"wpm"`
	Rank     int     `json:"rank"`
}

type resultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache creates a new result cache
func NewResultCache(client *redis.Client) ResultCache {
	return &resultCache{
		client: client,
		ttl:    24 * time.Hour, // Standings expire after 24h
	}
}

func (c *resultCache) key(gameID string) string {
	return fmt.Sprintf("game:%s:results", gameID)
}

func (c *resultCache) RecordResult(ctx context.Context, gameID, playerID string, wpm float64) error {
	key := c.key(gameID)
	if err := c.client.ZAdd(ctx, key, redis.Z{
		Score:  wpm,
		Member: playerID,
	}).Err(); err != nil {
		return err
	}
	return c.client.Expire(ctx, key, c.ttl).Err()
}

func (c *resultCache) Standings(ctx context.Context, gameID string) ([]ResultEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(gameID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]ResultEntry, len(results))
	for i, z := range results {
		entries[i] = ResultEntry{
			PlayerID: z.Member.(string),
			WPM:      z.Score,
			Rank:     i + 1,
		}
	}
	return entries, nil
}
