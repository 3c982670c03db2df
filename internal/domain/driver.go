package domain

import "time"

// DriverStatus represents the availability status of a driver.
type DriverStatus string

// Driver represents a delivery driver profile.
type Driver struct {
	ID                      int64
	UserID                  string
	Name                    string
	Status                  DriverStatus
	City                    string
	Area                    string
	LocationUpdatedAt       time.Time
	ServiceAreas            []string
	ActiveDeliveries        int
	MaxConcurrentDeliveries int
}

// PartialDriverUpdate carries optional fields for a driver status update.
// A nil field means "do not change" that attribute. City is required.
type PartialDriverUpdate struct {
	UserID                  string
	Status                  *DriverStatus
	City                    string
	Area                    *string
	ActiveDeliveries        *int
	MaxConcurrentDeliveries *int
}

// RecomputeStatus applies the busy/available auto-transition rule:
// busy whenever the driver is at or above capacity, back to available
// when a busy driver drops to zero active deliveries. An offline driver
// stays offline.
func (d *Driver) RecomputeStatus() {
	switch {
	case d.ActiveDeliveries >= d.MaxConcurrentDeliveries && d.Status != StatusOffline:
		d.Status = StatusBusy
	case d.ActiveDeliveries == 0 && d.Status == StatusBusy:
		d.Status = StatusAvailable
	}
}

// HasServiceArea reports whether city is already listed in the driver's
// service areas.
func (d *Driver) HasServiceArea(city string) bool {
	for _, a := range d.ServiceAreas {
		if a == city {
			return true
		}
	}
	return false
}
