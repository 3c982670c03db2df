package orders

import (
	"context"
	"errors"
	"strings"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/service/dispatch"
)

// Processor reacts to order lifecycle events: a confirmed order
// triggers auto-assignment.
type Processor struct {
	dispatch DispatchPort
	logger   logx.Logger
}

// NewProcessor creates a new orders event Processor.
func NewProcessor(d DispatchPort, logger logx.Logger) *Processor {
	return &Processor{dispatch: d, logger: logger}
}

// Handle processes a single order event. Only "confirmed" is acted on;
// all other statuses are acknowledged and ignored.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	status := strings.ToLower(strings.TrimSpace(e.Status))
	if status != "confirmed" {
		return nil
	}

	_, err := p.dispatch.AutoAssign(ctx, dispatch.AssignOrder{
		OrderID:        e.OrderID,
		Address:        e.Address(),
		RestaurantName: e.RestaurantName,
		RestaurantID:   e.RestaurantID,
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperr.ErrConflict):
		// Someone assigned it first; the event is done.
		return nil
	case errors.Is(err, apperr.ErrNoDriver), errors.Is(err, apperr.ErrNoCity):
		// No automatic re-queue: the admin UI re-invokes auto-assign.
		p.logger.Warn("auto-assign skipped",
			logx.String("order_id", e.OrderID),
			logx.Err(err),
		)
		return nil
	default:
		return err
	}
}
