package handlers

import "delivery-dispatch/internal/domain"

func deliveryToDTO(d domain.Delivery) deliveryDTO {
	addr := d.Address.Raw
	if addr == "" {
		addr = d.Address.Formatted()
	}
	return deliveryDTO{
		ID:             d.ID,
		OrderID:        d.OrderID,
		DriverID:       d.DriverID,
		RestaurantName: d.RestaurantName,
		Status:         string(d.Status),
		Location:       d.Location,
		Address:        addr,
		CreatedAt:      d.CreatedAt,
	}
}

func driverToDTO(d domain.Driver) driverDTO {
	return driverDTO{
		ID:               d.ID,
		UserID:           d.UserID,
		Name:             d.Name,
		Status:           string(d.Status),
		City:             d.City,
		Area:             d.Area,
		ServiceAreas:     d.ServiceAreas,
		ActiveDeliveries: d.ActiveDeliveries,
	}
}

func driversToDTO(list []domain.Driver) []driverDTO {
	out := make([]driverDTO, 0, len(list))
	for _, d := range list {
		out = append(out, driverToDTO(d))
	}
	return out
}

func trackingToResponse(t domain.TrackingInfo) trackResponse {
	return trackResponse{OrderID: t.OrderID, Status: t.Status, Location: t.Location}
}
