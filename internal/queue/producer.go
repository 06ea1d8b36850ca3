package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"classroom-recorder/internal/config"
	"classroom-recorder/internal/model"

	"github.com/go-redis/redis/v8"
)

type Producer struct {
	client *redis.Client
	queue  string
}

func NewProducer(redisClient *RedisClient, cfg *config.Config) *Producer {
	return &Producer{
		client: redisClient.Client(),
		queue:  cfg.Redis.FilingQueue,
	}
}

func (p *Producer) EnqueueFilingJob(ctx context.Context, job model.FilingJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal filing job: %w", err)
	}

	return p.client.LPush(ctx, p.queue, data).Err()
}
