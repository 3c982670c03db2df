package domain

// List of possible driver statuses
const (
	StatusAvailable DriverStatus = "available"
	StatusBusy      DriverStatus = "busy"
	StatusOffline   DriverStatus = "offline"
)

// List of possible delivery statuses
const (
	DeliveryAssigned  DeliveryStatus = "assigned"
	DeliveryPickedUp  DeliveryStatus = "picked_up"
	DeliveryDelivered DeliveryStatus = "delivered"
)

var allowedDriverStatuses = [...]DriverStatus{
	StatusAvailable, StatusBusy, StatusOffline,
}

var allowedDeliveryStatuses = [...]DeliveryStatus{
	DeliveryAssigned, DeliveryPickedUp, DeliveryDelivered,
}

// Valid checks if the DriverStatus is valid
func (s DriverStatus) Valid() bool {
	for _, v := range allowedDriverStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Valid checks if the DeliveryStatus is valid
func (s DeliveryStatus) Valid() bool {
	for _, v := range allowedDeliveryStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// deliveryTransitions is the allowed-transition table. Delivered is
// terminal; skipping picked_up is rejected.
var deliveryTransitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryAssigned: {DeliveryPickedUp},
	DeliveryPickedUp: {DeliveryDelivered},
}

// CanTransition reports whether a delivery may move from one status to
// the next.
func (s DeliveryStatus) CanTransition(next DeliveryStatus) bool {
	for _, v := range deliveryTransitions[s] {
		if v == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s DeliveryStatus) Terminal() bool {
	return len(deliveryTransitions[s]) == 0
}
