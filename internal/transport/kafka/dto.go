package kafka

import (
	"strings"
	"time"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/service/orders"
)

// EventDTO is the wire shape of an order event on the order-events topic.
type EventDTO struct {
	OrderID           string      `json:"order_id"`
	Status            string      `json:"status"`
	DeliveryAddress   string      `json:"delivery_address"`
	StructuredAddress *AddressDTO `json:"structured_address"`
	RestaurantName    string      `json:"restaurant_name"`
	RestaurantID      string      `json:"restaurant_id"`
	CreatedAt         time.Time   `json:"created_at"`
}

// AddressDTO is the wire shape of a structured delivery address.
type AddressDTO struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// ToDomain converts an EventDTO into an orders.Event.
func ToDomain(dto EventDTO) orders.Event {
	ev := orders.Event{
		OrderID:         strings.TrimSpace(dto.OrderID),
		Status:          strings.TrimSpace(dto.Status),
		DeliveryAddress: strings.TrimSpace(dto.DeliveryAddress),
		RestaurantName:  strings.TrimSpace(dto.RestaurantName),
		RestaurantID:    strings.TrimSpace(dto.RestaurantID),
		CreatedAt:       dto.CreatedAt,
	}
	if a := dto.StructuredAddress; a != nil {
		ev.StructuredAddress = &domain.StructuredAddress{
			Street:  strings.TrimSpace(a.Street),
			City:    strings.TrimSpace(a.City),
			State:   strings.TrimSpace(a.State),
			ZipCode: strings.TrimSpace(a.ZipCode),
		}
	}
	return ev
}
