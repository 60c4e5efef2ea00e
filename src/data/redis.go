package data

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	noncePrefix  = "nonce:"
	streamEvents = "lazyconsensus.events"
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

func SetNonce(ctx context.Context, rdb *redis.Client, clientID, nonce string) error {
	return rdb.Set(ctx, noncePrefix+clientID, nonce, 5*time.Minute).Err()
}

func GetAndDelNonce(ctx context.Context, rdb *redis.Client, clientID string) (string, error) {
	return rdb.GetDel(ctx, noncePrefix+clientID).Result()
}

// PublishEvent appends a lifecycle event (vote counted, proposal closed) to
// the event stream for downstream consumers such as analytics exporters.
func PublishEvent(ctx context.Context, rdb *redis.Client, payload map[string]interface{}) error {
	payload["event_id"] = uuid.NewString()
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamEvents,
		Values: payload,
	}).Result()
	return err
}
