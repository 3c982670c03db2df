package domain

import "time"

// DeliveryStatus represents the progress of a delivery.
type DeliveryStatus string

// Delivery - struct representing a driver assignment for an order.
// OrderID is unique: at most one delivery exists per order.
type Delivery struct {
	ID             int64
	OrderID        string
	DriverID       int64
	RestaurantName string
	Status         DeliveryStatus
	Location       string
	Address        Address
	PaymentMethod  string
	PaymentStatus  string
	CreatedAt      time.Time
}

// AssignResult - struct representing the result of assigning a delivery.
type AssignResult struct {
	Delivery        Delivery
	DriverID        int64
	DriverName      string
	DriverCity      string
	AlreadyAssigned bool
}

// DeliveryUpdate carries the fields a driver may change on a delivery.
// A nil field means "do not change" that attribute.
type DeliveryUpdate struct {
	Status   *DeliveryStatus
	Location *string
}

// TrackingInfo is the customer-facing view of a delivery.
type TrackingInfo struct {
	OrderID  string `json:"order_id"`
	Status   string `json:"status"`
	Location string `json:"location"`
}
