package handlers

import (
	"encoding/json"
	"time"

	"delivery-dispatch/internal/domain"
)

// addressPayload accepts the two wire shapes of a delivery address:
// a plain string or a structured {street, city, state, zipCode} object.
type addressPayload struct {
	Raw        string
	Structured *structuredAddressDTO
}

type structuredAddressDTO struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

func (a *addressPayload) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Raw = s
		a.Structured = nil
		return nil
	}
	var obj structuredAddressDTO
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	a.Raw = ""
	a.Structured = &obj
	return nil
}

func (a addressPayload) toDomain() domain.Address {
	addr := domain.Address{Raw: a.Raw}
	if a.Structured != nil {
		addr.Structured = &domain.StructuredAddress{
			Street:  a.Structured.Street,
			City:    a.Structured.City,
			State:   a.Structured.State,
			ZipCode: a.Structured.ZipCode,
		}
	}
	return addr
}

type autoAssignRequest struct {
	OrderID        string         `json:"orderId"`
	OrderAddress   addressPayload `json:"orderAddress"`
	RestaurantName string         `json:"restaurantName,omitempty"`
	RestaurantID   string         `json:"restaurantId,omitempty"`
}

type autoAssignResponse struct {
	Success         bool         `json:"success"`
	Delivery        *deliveryDTO `json:"delivery,omitempty"`
	Message         string       `json:"message,omitempty"`
	AlreadyAssigned bool         `json:"alreadyAssigned,omitempty"`
}

type manualAssignRequest struct {
	OrderID  string `json:"orderId"`
	DriverID int64  `json:"driverId"`
}

type deliveryDTO struct {
	ID             int64     `json:"id"`
	OrderID        string    `json:"orderId"`
	DriverID       int64     `json:"driverId"`
	RestaurantName string    `json:"restaurantName,omitempty"`
	Status         string    `json:"status"`
	Location       string    `json:"location,omitempty"`
	Address        string    `json:"address,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type registerDriverRequest struct {
	UserID       string   `json:"userId"`
	Name         string   `json:"name"`
	City         string   `json:"city"`
	Area         string   `json:"area,omitempty"`
	ServiceAreas []string `json:"serviceAreas,omitempty"`
}

type updateDriverStatusRequest struct {
	Status                  *string `json:"status,omitempty"`
	City                    string  `json:"city"`
	Area                    *string `json:"area,omitempty"`
	ActiveDeliveries        *int    `json:"activeDeliveries,omitempty"`
	MaxConcurrentDeliveries *int    `json:"maxConcurrentDeliveries,omitempty"`
}

type driverDTO struct {
	ID               int64    `json:"id"`
	UserID           string   `json:"userId"`
	Name             string   `json:"name"`
	Status           string   `json:"status"`
	City             string   `json:"city"`
	Area             string   `json:"area,omitempty"`
	ServiceAreas     []string `json:"serviceAreas,omitempty"`
	ActiveDeliveries int      `json:"activeDeliveries"`
}

type updateDeliveryStatusRequest struct {
	Status   *string `json:"status,omitempty"`
	Location *string `json:"location,omitempty"`
}

type trackResponse struct {
	OrderID  string `json:"orderId"`
	Status   string `json:"status"`
	Location string `json:"location,omitempty"`
}
