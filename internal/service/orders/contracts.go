package orders

import (
	"context"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/service/dispatch"
)

// DispatchPort abstracts the assignment operation the processor invokes
// when handling order events.
type DispatchPort interface {
	AutoAssign(ctx context.Context, req dispatch.AssignOrder) (domain.AssignResult, error)
}
