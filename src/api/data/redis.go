package data

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const streamEvents = "movienight.events"

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// PublishEvent appends a proposal lifecycle event (add, watch, veto) to the
// event stream. A nil client is a no-op so the service runs without Redis.
func PublishEvent(ctx context.Context, rdb *redis.Client, action, imdbID string) error {
	if rdb == nil {
		return nil
	}
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamEvents,
		Values: map[string]any{
			"id":      uuid.NewString(),
			"action":  action,
			"imdb_id": imdbID,
			"time":    time.Now().Unix(),
		},
	}).Result()
	return err
}
