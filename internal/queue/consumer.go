package queue

import (
	"context"
	"time"

	"classroom-recorder/internal/config"
	"classroom-recorder/internal/logger"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const defaultPollTimeout = 5 * time.Second

type Consumer struct {
	client      *redis.Client
	queue       string
	dlqSuffix   string
	pollTimeout time.Duration
	log         zerolog.Logger
}

type MessageHandler = func(ctx context.Context, data []byte) error

func NewConsumer(redisClient *RedisClient, cfg *config.Config) *Consumer {
	return &Consumer{
		client:      redisClient.Client(),
		queue:       cfg.Redis.FilingQueue,
		dlqSuffix:   cfg.Redis.DLQSuffix,
		pollTimeout: defaultPollTimeout,
		log:         logger.Component("consumer"),
	}
}

// ConsumeFilingQueue blocks until ctx is cancelled. Messages the handler
// rejects are pushed to the dead-letter queue.
func (c *Consumer) ConsumeFilingQueue(ctx context.Context, handler MessageHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			result, err := c.client.BRPop(ctx, c.pollTimeout, c.queue).Result()
			if err != nil {
				if err == redis.Nil {
					continue // Timeout, continue polling
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.log.Error().Err(err).Str("queue", c.queue).Msg("Failed to consume message")
				continue
			}

			if len(result) < 2 {
				continue
			}

			message := result[1]
			if err := handler(ctx, []byte(message)); err != nil {
				c.log.Error().Err(err).Str("queue", c.queue).Msg("Failed to process message")
				c.DeadLetter(ctx, []byte(message))
			}
		}
	}
}

// DeadLetter parks a message that could not be processed on the queue's DLQ.
func (c *Consumer) DeadLetter(ctx context.Context, message []byte) {
	dlqName := c.queue + c.dlqSuffix
	if err := c.client.LPush(context.WithoutCancel(ctx), dlqName, message).Err(); err != nil {
		c.log.Error().Err(err).Str("dlq", dlqName).Msg("Failed to move message to DLQ")
	}
}
