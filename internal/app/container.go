package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"delivery-dispatch/internal/cache"
	"delivery-dispatch/internal/config"
	ordersgw "delivery-dispatch/internal/gateway/orders"
	"delivery-dispatch/internal/http/handlers"
	"delivery-dispatch/internal/http/middleware/ratelimit"
	"delivery-dispatch/internal/http/router"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/metrics"
	"delivery-dispatch/internal/repository"
	"delivery-dispatch/internal/service/dispatch"
	"delivery-dispatch/internal/service/driver"
	"delivery-dispatch/internal/service/progress"
)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error)
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder.
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function.
func (b *ContainerBuilder) WithDBConnect(
	fn func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the fatal log function.
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container.
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerMetrics(container); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerGateways(container); err != nil {
		return nil, fmt.Errorf("gateways: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	if err := registerWorker(container); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container.
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		NewLogger,
		config.Load,
	)
}

func registerMetrics(container *dig.Container) error {
	if err := container.Provide(metrics.NewRateLimitExceededTotal, dig.Name("rate_limit_exceeded_total")); err != nil {
		return err
	}
	if err := container.Provide(metrics.NewGatewayRetriesTotal, dig.Name("gateway_retries_total")); err != nil {
		return err
	}
	if err := container.Provide(metrics.NewAssignmentsTotal, dig.Name("assignments_total")); err != nil {
		return err
	}
	return container.Provide(metrics.NewOutboxDispatchedTotal, dig.Name("outbox_dispatched_total"))
}

func registerDb(
	container *dig.Container,
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) error {
	providerDB := func(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
		return dbConnect(ctx, cfg.DB.DSN(), 10, time.Second)
	}
	return provideAll(container, providerDB)
}

type retryingGatewayIn struct {
	dig.In
	Cfg     *config.Config
	Logger  logx.Logger
	Retries prometheus.Counter `name:"gateway_retries_total"`
}

func registerGateways(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config) *http.Client {
			return &http.Client{Timeout: cfg.Gateways.Timeout}
		},
		func(cfg *config.Config, client *http.Client) *ordersgw.HTTPGateway {
			return ordersgw.NewHTTPGateway(cfg.Gateways.OrdersBaseURL, client)
		},
		func(in retryingGatewayIn, next *ordersgw.HTTPGateway) *ordersgw.RetryingGateway {
			return ordersgw.NewRetryingGateway(next, in.Logger, in.Retries, ordersgw.RetryConfig{
				MaxAttempts: in.Cfg.Gateways.Retry.MaxAttempts,
				BaseDelay:   in.Cfg.Gateways.Retry.BaseDelay,
				MaxDelay:    in.Cfg.Gateways.Retry.MaxDelay,
			})
		},
	)
}

type dispatchServiceIn struct {
	dig.In
	Repo        *repository.DeliveryRepo
	Gateway     *ordersgw.RetryingGateway
	Timeout     time.Duration
	Logger      logx.Logger
	Assignments *prometheus.CounterVec `name:"assignments_total"`
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		repository.NewDriverRepo,
		repository.NewDeliveryRepo,
		repository.NewOutboxRepo,
		func() time.Duration { return 3 * time.Second },
		func(cfg *config.Config) *cache.TrackingCache {
			return cache.New(cfg.Redis.Addr, cfg.Redis.TrackTTL)
		},
		func(repo *repository.DriverRepo, timeout time.Duration) *driver.Service {
			return driver.NewService(repo, timeout)
		},
		func(in dispatchServiceIn) *dispatch.Service {
			return dispatch.NewService(in.Repo, in.Gateway, in.Timeout, in.Logger, in.Assignments)
		},
		func(
			deliveries *repository.DeliveryRepo,
			drivers *repository.DriverRepo,
			trackCache *cache.TrackingCache,
			timeout time.Duration,
			logger logx.Logger,
		) *progress.Service {
			return progress.NewService(deliveries, drivers, trackCache, timeout, logger)
		},
	)
}

type routerIn struct {
	dig.In
	Logger    logx.Logger
	Base      *handlers.Handlers
	Dispatch  *handlers.DispatchHandler
	Driver    *handlers.DriverHandler
	Progress  *handlers.ProgressHandler
	RateLimit *ratelimit.Middleware
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	routerProvider := func(in routerIn) http.Handler {
		return router.New(router.Deps{
			Logger:    in.Logger,
			Base:      in.Base,
			Dispatch:  in.Dispatch,
			Driver:    in.Driver,
			Progress:  in.Progress,
			RateLimit: in.RateLimit,
		})
	}
	return provideAll(container,
		handlers.New,
		handlers.NewDispatchUsecase,
		handlers.NewDispatchHandler,
		handlers.NewDriverUsecase,
		handlers.NewDriverHandler,
		handlers.NewProgressUsecase,
		handlers.NewProgressHandler,
		newRateLimitClock,
		newRateLimiter,
		newRateLimitMiddleware,
		routerProvider,
		serverProvider,
	)
}
