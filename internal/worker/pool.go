package worker

import (
	"context"
	"sync"

	"classroom-recorder/internal/logger"

	"github.com/rs/zerolog"
)

type Job func(context.Context) error

// WorkerPool runs submitted jobs on a fixed number of goroutines. Submit
// applies back-pressure: it waits for a free slot instead of dropping work.
type WorkerPool struct {
	workerCount int
	jobChan     chan Job
	wg          sync.WaitGroup
	stopOnce    sync.Once
	log         zerolog.Logger
}

func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &WorkerPool{
		workerCount: workerCount,
		jobChan:     make(chan Job, workerCount*2),
		log:         logger.Component("worker_pool"),
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	wp.log.Info().Int("worker_count", wp.workerCount).Msg("Starting worker pool")

	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Stop closes the job channel and waits for in-flight jobs. Submit must not
// be called after Stop.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		wp.log.Info().Msg("Stopping worker pool")
		close(wp.jobChan)
		wp.wg.Wait()
		wp.log.Info().Msg("Worker pool stopped")
	})
}

func (wp *WorkerPool) Submit(ctx context.Context, job Job) error {
	select {
	case wp.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()

	log := wp.log.With().Int("worker_id", id).Logger()
	log.Debug().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Worker stopping due to context cancellation")
			return
		case job, ok := <-wp.jobChan:
			if !ok {
				log.Debug().Msg("Worker stopping due to closed job channel")
				return
			}

			if err := job(ctx); err != nil {
				log.Error().Err(err).Msg("Job execution failed")
			}
		}
	}
}
