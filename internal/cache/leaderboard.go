// Package cache holds the redis-backed leaderboard cache. Redis is
// optional: a nil client disables caching and every read falls
// through to the database.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-fairway/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LeaderboardEntry is one member's standing within a live session.
type LeaderboardEntry struct {
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	DisplayName  string `json:"display_name"`
	RoundID      uint   `json:"round_id"`
	RoundStatus  string `json:"round_status"`
	HolesPlayed  int    `json:"holes_played"`
	TotalStrokes int    `json:"total_strokes"`
	ParPlayed    int    `json:"par_played"`
	ToPar        int    `json:"to_par"`
}

type LeaderboardCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewLeaderboardCache wraps the client; rdb may be nil.
func NewLeaderboardCache(rdb *redis.Client, ttl time.Duration) *LeaderboardCache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &LeaderboardCache{rdb: rdb, ttl: ttl}
}

// NewRedisClient connects with a short ping timeout and returns nil
// on failure so callers degrade to uncached reads.
func NewRedisClient(addr, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.L.Warn("Redis unreachable, leaderboard caching disabled", zap.Error(err))
		return nil
	}
	return client
}

func key(sessionID uint) string {
	return fmt.Sprintf("leaderboard:session:%d", sessionID)
}

func (c *LeaderboardCache) Get(ctx context.Context, sessionID uint) ([]LeaderboardEntry, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, key(sessionID)).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (c *LeaderboardCache) Set(ctx context.Context, sessionID uint, entries []LeaderboardEntry) {
	if c == nil || c.rdb == nil {
		return
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(sessionID), data, c.ttl).Err(); err != nil {
		logger.L.Debug("Leaderboard cache set failed", zap.Error(err))
	}
}

// Invalidate drops the cached standings after a score write.
func (c *LeaderboardCache) Invalidate(ctx context.Context, sessionID uint) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, key(sessionID)).Err(); err != nil {
		logger.L.Debug("Leaderboard cache invalidate failed", zap.Error(err))
	}
}
