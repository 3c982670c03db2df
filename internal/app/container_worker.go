package app

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"delivery-dispatch/internal/config"
	"delivery-dispatch/internal/gateway/notify"
	ordersgw "delivery-dispatch/internal/gateway/orders"
	"delivery-dispatch/internal/gateway/users"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/outbox"
	"delivery-dispatch/internal/repository"
	"delivery-dispatch/internal/service/dispatch"
	"delivery-dispatch/internal/service/orders"
	"delivery-dispatch/internal/transport/kafka"
)

// makeOrdersKafka builds the consumer handler. When the orders gateway
// is available the event status is re-read before acting: the topic can
// lag behind the order document.
func makeOrdersKafka(p *orders.Processor, gw *ordersgw.RetryingGateway) kafka.HandleFunc {
	return func(ctx context.Context, event orders.Event) error {
		if gw == nil {
			return p.Handle(ctx, event)
		}

		gwCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		ord, err := gw.GetByID(gwCtx, event.OrderID)
		if err != nil {
			return err
		}
		if ord == nil {
			// order deleted between event and consumption
			return nil
		}

		event.Status = ord.Status
		if event.DeliveryAddress == "" && event.StructuredAddress == nil {
			event.DeliveryAddress = ord.DeliveryAddress
			event.StructuredAddress = ord.StructuredAddress
		}
		if event.RestaurantName == "" {
			event.RestaurantName = ord.RestaurantName
		}
		return p.Handle(ctx, event)
	}
}

type outboxDispatcherIn struct {
	dig.In
	Repo       *repository.OutboxRepo
	Orders     *ordersgw.RetryingGateway
	Users      *users.Client
	Notify     *notify.Client
	Cfg        *config.Config
	Logger     logx.Logger
	Dispatched *prometheus.CounterVec `name:"outbox_dispatched_total"`
}

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		func(svc *dispatch.Service) orders.DispatchPort { return svc },
		orders.NewProcessor,
		func(cfg *config.Config, client *http.Client) *users.Client {
			return users.New(cfg.Gateways.UsersBaseURL, client)
		},
		func(cfg *config.Config, client *http.Client) *notify.Client {
			return notify.New(cfg.Gateways.NotificationsBaseURL, client)
		},
		makeOrdersKafka,
		func(cfg *config.Config, h kafka.HandleFunc, logger logx.Logger) (*kafka.Consumer, error) {
			return kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, h, logger)
		},
		func(in outboxDispatcherIn) *outbox.Dispatcher {
			return outbox.NewDispatcher(in.Repo, in.Orders, in.Users, in.Notify, outbox.Config{
				PollInterval: in.Cfg.Outbox.PollInterval,
				BatchSize:    in.Cfg.Outbox.BatchSize,
				MaxAttempts:  in.Cfg.Outbox.MaxAttempts,
			}, in.Logger, in.Dispatched)
		},
	)
}
