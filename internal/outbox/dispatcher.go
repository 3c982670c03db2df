package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"delivery-dispatch/internal/gateway/notify"
	"delivery-dispatch/internal/gateway/orders"
	"delivery-dispatch/internal/logx"
)

type repository interface {
	Due(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]Task, error)
	MarkDone(ctx context.Context, id int64) error
	Reschedule(ctx context.Context, id int64, next time.Time) error
}

type orderGateway interface {
	GetByID(ctx context.Context, id string) (*orders.Order, error)
	MarkDeliveryAssigned(ctx context.Context, orderID string) error
}

type userGateway interface {
	Email(ctx context.Context, userID string) (string, error)
}

type notifyGateway interface {
	NotifyDriverAssignment(ctx context.Context, p notify.DeliveryAssignment) error
	NotifyDeliveryComplete(ctx context.Context, p notify.DeliveryComplete) error
}

// Config tunes the relay loop.
type Config struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

// Dispatcher relays pending side effects to the collaborating services
// until each succeeds or exhausts its attempts. It is the observable,
// retriable replacement for fire-and-forget notification calls.
type Dispatcher struct {
	repo       repository
	orders     orderGateway
	users      userGateway
	notify     notifyGateway
	cfg        Config
	logger     logx.Logger
	dispatched *prometheus.CounterVec
	now        func() time.Time
}

// NewDispatcher creates an outbox Dispatcher.
func NewDispatcher(repo repository, og orderGateway, ug userGateway, ng notifyGateway, cfg Config, logger logx.Logger, dispatched *prometheus.CounterVec) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	return &Dispatcher{
		repo:       repo,
		orders:     og,
		users:      ug,
		notify:     ng,
		cfg:        cfg,
		logger:     logger,
		dispatched: dispatched,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run polls for due tasks until the context is canceled.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := d.RunOnce(ctx); err != nil {
				d.logger.Error("outbox poll failed", logx.Err(err))
			}
		}
	}
}

// RunOnce claims and relays one batch of due tasks.
func (d *Dispatcher) RunOnce(ctx context.Context) error {
	now := d.now()
	lease := d.cfg.PollInterval * 2
	tasks, err := d.repo.Due(ctx, now, d.cfg.BatchSize, lease)
	if err != nil {
		return err
	}

	for _, t := range tasks {
		if err := d.relay(ctx, t); err != nil {
			d.settleFailure(ctx, t, err)
			continue
		}
		d.count(t.Kind, "ok")
		if err := d.repo.MarkDone(ctx, t.ID); err != nil {
			d.logger.Error("outbox mark done failed",
				logx.Int64("task_id", t.ID),
				logx.Err(err),
			)
		}
	}
	return nil
}

func (d *Dispatcher) relay(ctx context.Context, t Task) error {
	switch t.Kind {
	case KindOrderAssignSync:
		var p OrderAssignSyncPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return permanent(err)
		}
		return d.orders.MarkDeliveryAssigned(ctx, p.OrderID)

	case KindDriverNotification:
		var p DriverNotificationPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return permanent(err)
		}
		email, err := d.users.Email(ctx, p.DriverUserID)
		if err != nil {
			return err
		}
		return d.notify.NotifyDriverAssignment(ctx, notify.DeliveryAssignment{
			Email:          email,
			OrderID:        p.OrderID,
			Address:        p.Address,
			RestaurantName: p.RestaurantName,
		})

	case KindCompleteNotification:
		var p CompleteNotificationPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return permanent(err)
		}
		ord, err := d.orders.GetByID(ctx, p.OrderID)
		if err != nil {
			return err
		}
		if ord == nil {
			return permanent(fmt.Errorf("order %q not found", p.OrderID))
		}
		email, err := d.users.Email(ctx, ord.UserID)
		if err != nil {
			return err
		}
		return d.notify.NotifyDeliveryComplete(ctx, notify.DeliveryComplete{
			Email:          email,
			OrderID:        p.OrderID,
			RestaurantName: p.RestaurantName,
		})

	default:
		return permanent(fmt.Errorf("unknown outbox kind %q", t.Kind))
	}
}

// settleFailure either drops a task (permanent error or attempts
// exhausted) or reschedules it with exponential backoff.
func (d *Dispatcher) settleFailure(ctx context.Context, t Task, cause error) {
	attempts := t.Attempts + 1
	if isPermanent(cause) || attempts >= d.cfg.MaxAttempts {
		d.count(t.Kind, "dropped")
		d.logger.Error("outbox task dropped",
			logx.Int64("task_id", t.ID),
			logx.String("kind", string(t.Kind)),
			logx.Int("attempts", attempts),
			logx.Err(cause),
		)
		if err := d.repo.MarkDone(ctx, t.ID); err != nil {
			d.logger.Error("outbox mark done failed", logx.Int64("task_id", t.ID), logx.Err(err))
		}
		return
	}

	d.count(t.Kind, "retry")
	next := d.now().Add(backoff(d.cfg.PollInterval, attempts))
	d.logger.Warn("outbox task rescheduled",
		logx.Int64("task_id", t.ID),
		logx.String("kind", string(t.Kind)),
		logx.Int("attempts", attempts),
		logx.Time("next_attempt_at", next),
		logx.Err(cause),
	)
	if err := d.repo.Reschedule(ctx, t.ID, next); err != nil {
		d.logger.Error("outbox reschedule failed", logx.Int64("task_id", t.ID), logx.Err(err))
	}
}

func (d *Dispatcher) count(kind Kind, outcome string) {
	if d.dispatched != nil {
		d.dispatched.WithLabelValues(string(kind), outcome).Inc()
	}
}

const maxBackoff = 10 * time.Minute

func backoff(base time.Duration, attempts int) time.Duration {
	d := base
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error { return permanentError{err: err} }

func isPermanent(err error) bool {
	_, ok := err.(permanentError)
	return ok
}
