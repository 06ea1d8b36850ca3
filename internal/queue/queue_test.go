package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"classroom-recorder/internal/config"
	"classroom-recorder/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisClient, *config.Config) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := &config.Config{}
	cfg.Redis.FilingQueue = "recordings:filing"
	cfg.Redis.DLQSuffix = ":dlq"
	return mr, wrapClient(client, cfg), cfg
}

func TestProducer_EnqueueFilingJob(t *testing.T) {
	mr, rc, cfg := newTestRedis(t)
	producer := NewProducer(rc, cfg)

	job := model.FilingJob{SubmissionID: "sub-1", Period: "2026年度", Section: "1年A組", Lesson: "細胞の観察",
		Group: "3班", Members: "佐藤,田中", Audio: []byte("RIFF")}
	require.NoError(t, producer.EnqueueFilingJob(context.Background(), job))

	items, err := mr.List("recordings:filing")
	require.NoError(t, err)
	require.Len(t, items, 1)

	var decoded model.FilingJob
	require.NoError(t, json.Unmarshal([]byte(items[0]), &decoded))
	require.Equal(t, job, decoded)
}

func TestConsumer_ConsumeFilingQueue(t *testing.T) {
	mr, rc, cfg := newTestRedis(t)
	producer := NewProducer(rc, cfg)
	consumer := NewConsumer(rc, cfg)
	consumer.pollTimeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu       sync.Mutex
		received []string
	)
	handler := func(ctx context.Context, data []byte) error {
		var job model.FilingJob
		if err := json.Unmarshal(data, &job); err != nil {
			return err
		}
		mu.Lock()
		received = append(received, job.SubmissionID)
		mu.Unlock()
		if job.SubmissionID == "poison" {
			return errors.New("cannot file")
		}
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- consumer.ConsumeFilingQueue(ctx, handler) }()

	require.NoError(t, producer.EnqueueFilingJob(ctx, model.FilingJob{SubmissionID: "sub-1"}))
	require.NoError(t, producer.EnqueueFilingJob(ctx, model.FilingJob{SubmissionID: "poison"}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, 5*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		items, err := mr.List("recordings:filing:dlq")
		return err == nil && len(items) == 1
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	require.Equal(t, []string{"sub-1", "poison"}, received)
	mu.Unlock()

	pending, dead, err := rc.Depth(ctx)
	require.NoError(t, err)
	require.Zero(t, pending)
	require.Equal(t, int64(1), dead)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}
}
