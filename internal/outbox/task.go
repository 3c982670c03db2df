package outbox

import (
	"encoding/json"
	"time"
)

// Kind identifies a pending side effect.
type Kind string

// Side effects produced by assignment and status transitions.
const (
	KindOrderAssignSync      Kind = "order_assign_sync"
	KindDriverNotification   Kind = "driver_notification"
	KindCompleteNotification Kind = "complete_notification"
)

// Task is one pending cross-service side effect. Tasks are written in
// the same transaction as the state change that produced them, and
// relayed by the worker until they succeed or exhaust their attempts.
type Task struct {
	ID            int64
	Kind          Kind
	Payload       json.RawMessage
	Attempts      int
	NextAttemptAt time.Time
	CreatedAt     time.Time
}

// OrderAssignSyncPayload marks the order as delivery-assigned on the
// order service.
type OrderAssignSyncPayload struct {
	OrderID string `json:"order_id"`
}

// DriverNotificationPayload notifies a driver of a new assignment.
type DriverNotificationPayload struct {
	DriverUserID   string `json:"driver_user_id"`
	OrderID        string `json:"order_id"`
	Address        string `json:"address"`
	RestaurantName string `json:"restaurant_name"`
}

// CompleteNotificationPayload notifies the customer that the delivery
// reached its terminal state.
type CompleteNotificationPayload struct {
	OrderID        string `json:"order_id"`
	RestaurantName string `json:"restaurant_name"`
}

// NewTask builds an unsaved task with a JSON payload.
func NewTask(kind Kind, payload any) (Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Task{}, err
	}
	return Task{Kind: kind, Payload: raw}, nil
}
