package queue

import (
	"context"
	"fmt"
	"time"

	"classroom-recorder/internal/config"

	"github.com/go-redis/redis/v8"
)

const pingTimeout = 5 * time.Second

// RedisClient is the connection shared by the filing producer and consumer.
type RedisClient struct {
	client *redis.Client
	queue  string
	dlq    string
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", cfg.RedisAddr(), err)
	}

	return wrapClient(rdb, cfg), nil
}

func wrapClient(rdb *redis.Client, cfg *config.Config) *RedisClient {
	return &RedisClient{
		client: rdb,
		queue:  cfg.Redis.FilingQueue,
		dlq:    cfg.Redis.FilingQueue + cfg.Redis.DLQSuffix,
	}
}

// Depth reports how many filing jobs are waiting and how many sit on the DLQ.
func (r *RedisClient) Depth(ctx context.Context) (pending, dead int64, err error) {
	pipe := r.client.Pipeline()
	pendingCmd := pipe.LLen(ctx, r.queue)
	deadCmd := pipe.LLen(ctx, r.dlq)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to read queue depth: %w", err)
	}
	return pendingCmd.Val(), deadCmd.Val(), nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) Client() *redis.Client {
	return r.client
}
