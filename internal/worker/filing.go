package worker

import (
	"context"

	"classroom-recorder/internal/logger"

	"github.com/rs/zerolog"
)

// MessageSource delivers raw queue messages to a handler until ctx ends.
type MessageSource interface {
	ConsumeFilingQueue(ctx context.Context, handler func(ctx context.Context, data []byte) error) error
	DeadLetter(ctx context.Context, message []byte)
}

// FilingWorker drains the filing queue into a worker pool. With the default
// single worker, submissions are filed one at a time.
type FilingWorker struct {
	source     MessageSource
	handle     func(ctx context.Context, data []byte) error
	workerPool *WorkerPool
	done       chan struct{}
	log        zerolog.Logger
}

func NewFilingWorker(source MessageSource, handle func(ctx context.Context, data []byte) error, workerCount int) *FilingWorker {
	return &FilingWorker{
		source:     source,
		handle:     handle,
		workerPool: NewWorkerPool(workerCount),
		done:       make(chan struct{}),
		log:        logger.Component("filing_worker"),
	}
}

// Start consumes until ctx is cancelled, then drains jobs already handed to
// the pool before returning.
func (w *FilingWorker) Start(ctx context.Context) error {
	defer close(w.done)
	w.log.Info().Msg("Starting filing worker")

	w.workerPool.Start(context.WithoutCancel(ctx))

	err := w.source.ConsumeFilingQueue(ctx, w.handleMessage)
	w.workerPool.Stop()
	return err
}

// Stop waits for Start to return. Cancel Start's context first.
func (w *FilingWorker) Stop() {
	w.log.Info().Msg("Stopping filing worker")
	<-w.done
}

// handleMessage hands data to the pool. A message already popped from the
// queue is always run, even when shutdown has begun.
func (w *FilingWorker) handleMessage(ctx context.Context, data []byte) error {
	return w.workerPool.Submit(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := w.handle(ctx, data); err != nil {
			w.source.DeadLetter(ctx, data)
			return err
		}
		return nil
	})
}
