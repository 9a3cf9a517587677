package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/habitsuz/habits-backend/internal/database"
	"github.com/habitsuz/habits-backend/internal/models"
)

const (
	// LeaderboardSize is the fixed top-N the endpoint exposes.
	LeaderboardSize = 20
	// LeaderboardCacheKey is the Redis key holding the cached board.
	LeaderboardCacheKey = "cache:leaderboard"
	// LeaderboardCacheTTL keeps the board fresh enough while absorbing
	// reload storms. Points move often, so this stays short.
	LeaderboardCacheTTL = 30 * time.Second
)

// Leaderboard returns the top users by points, public fields only. Served
// from the Redis cache when warm; cache failures fall through to MongoDB
// (fail open, never fail the request on a cache problem).
func Leaderboard(ctx context.Context) ([]models.PublicUser, error) {
	if database.RedisClient != nil {
		if cached, err := database.RedisClient.Get(ctx, LeaderboardCacheKey).Result(); err == nil {
			var entries []models.PublicUser
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				return entries, nil
			}
		}
	}

	users, err := TopUsersByPoints(ctx, LeaderboardSize)
	if err != nil {
		return nil, err
	}

	entries := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		entries = append(entries, u.Public())
	}

	cacheLeaderboard(ctx, entries)
	return entries, nil
}

func cacheLeaderboard(ctx context.Context, entries []models.PublicUser) {
	if database.RedisClient == nil {
		return
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	// Best effort; a failed cache write just means the next request hits Mongo.
	database.RedisClient.Set(ctx, LeaderboardCacheKey, data, LeaderboardCacheTTL)
}

// InvalidateLeaderboard drops the cached board. Called after engine runs
// that changed a user's points so rank changes show up promptly.
func InvalidateLeaderboard(ctx context.Context) {
	if database.RedisClient == nil {
		return
	}
	database.RedisClient.Del(ctx, LeaderboardCacheKey)
}
