package app

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"delivery-dispatch/internal/cache"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/outbox"
	"delivery-dispatch/internal/transport/kafka"
)

// WorkerRunner runs the background worker: the order-events consumer
// and the outbox relay.
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner.
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun runs the worker loops using the provided DI container.
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(
	ctx context.Context,
	pool *pgxpool.Pool,
	logger logx.Logger,
	consumer *kafka.Consumer,
	dispatcher *outbox.Dispatcher,
	trackCache *cache.TrackingCache,
) error {
	defer closeWorker(pool, logger, consumer, trackCache)

	logger.Info("service-dispatch-worker started")

	errCh := make(chan error, 2)
	go func() { errCh <- dispatcher.Run(ctx) }()
	go func() {
		if consumer == nil {
			// consumer disabled: the outbox relay alone keeps the worker alive
			<-ctx.Done()
			errCh <- ctx.Err()
			return
		}
		errCh <- consumer.Run(ctx)
	}()

	return <-errCh
}

func closeWorker(pool *pgxpool.Pool, logger logx.Logger, consumer *kafka.Consumer, trackCache *cache.TrackingCache) {
	if err := consumer.Close(); err != nil {
		logger.Error("kafka close error", logx.Err(err))
	}
	if err := trackCache.Close(); err != nil {
		logger.Error("redis close error", logx.Err(err))
	}
	if pool != nil {
		pool.Close()
	}
}
