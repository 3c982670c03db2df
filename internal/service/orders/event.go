package orders

import (
	"time"

	"delivery-dispatch/internal/domain"
)

// Event is a single order lifecycle event from the order service.
type Event struct {
	OrderID           string                    `json:"order_id"`
	Status            string                    `json:"status"`
	DeliveryAddress   string                    `json:"delivery_address"`
	StructuredAddress *domain.StructuredAddress `json:"structured_address"`
	RestaurantName    string                    `json:"restaurant_name"`
	RestaurantID      string                    `json:"restaurant_id"`
	CreatedAt         time.Time                 `json:"created_at"`
}

// Address folds the event's address shapes into the domain union.
func (e Event) Address() domain.Address {
	return domain.Address{Raw: e.DeliveryAddress, Structured: e.StructuredAddress}
}
