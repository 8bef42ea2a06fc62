package search

import (
	"context"
	"fmt"
	"time"

	"github.com/timepass/backend/internal/cache"
	"github.com/timepass/backend/internal/logger"
	"go.uber.org/zap"
)

// MaxRecentSearches caps the per-user history
const MaxRecentSearches = 10

// recentTTL lets abandoned histories expire on their own
const recentTTL = 30 * 24 * time.Hour

// RecentSearches keeps a per-user list of recent queries in Redis,
// newest first, deduplicated and capped. Failures are logged only:
// search history is not worth failing a search over.
type RecentSearches struct {
	redis *cache.RedisClient
}

// NewRecentSearches creates the recent-search store
func NewRecentSearches(redis *cache.RedisClient) *RecentSearches {
	return &RecentSearches{redis: redis}
}

func recentKey(userID string) string {
	return fmt.Sprintf("recent_searches:%s", userID)
}

// Remember pushes a query to the front of the user's history. A repeat
// query moves to the front instead of duplicating.
func (r *RecentSearches) Remember(ctx context.Context, userID, query string) {
	key := recentKey(userID)

	if err := r.redis.LRem(ctx, key, 0, query); err != nil {
		logger.Log.Warn("Failed to dedup recent search", logger.WithUserID(userID), zap.Error(err))
	}
	if err := r.redis.LPush(ctx, key, query); err != nil {
		logger.Log.Warn("Failed to store recent search", logger.WithUserID(userID), zap.Error(err))
		return
	}
	if err := r.redis.LTrim(ctx, key, 0, MaxRecentSearches-1); err != nil {
		logger.Log.Warn("Failed to trim recent searches", logger.WithUserID(userID), zap.Error(err))
	}
	if err := r.redis.Expire(ctx, key, recentTTL); err != nil {
		logger.Log.Warn("Failed to refresh recent searches TTL", logger.WithUserID(userID), zap.Error(err))
	}
}

// List returns the user's recent queries, newest first
func (r *RecentSearches) List(ctx context.Context, userID string) ([]string, error) {
	entries, err := r.redis.LRange(ctx, recentKey(userID), 0, MaxRecentSearches-1)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent searches: %w", err)
	}
	return entries, nil
}

// Clear wipes the user's history
func (r *RecentSearches) Clear(ctx context.Context, userID string) error {
	return r.redis.Del(ctx, recentKey(userID))
}
