package handlers

import (
	"errors"
	"net/http"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/service/dispatch"
)

// DispatchHandler serves the assignment endpoints.
type DispatchHandler struct {
	usecase dispatchUsecase
	logger  logx.Logger
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(logger logx.Logger, uc dispatchUsecase) *DispatchHandler {
	return &DispatchHandler{usecase: uc, logger: logger}
}

// AutoAssign handles POST /api/deliveries/auto-assign. City matching
// failures come back as success=false with a message, not as errors:
// the caller polls and retries.
func (h *DispatchHandler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	var req autoAssignRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	res, err := h.usecase.AutoAssign(r.Context(), dispatch.AssignOrder{
		OrderID:        req.OrderID,
		Address:        req.OrderAddress.toDomain(),
		RestaurantName: req.RestaurantName,
		RestaurantID:   req.RestaurantID,
	})
	switch {
	case err == nil:
		dto := deliveryToDTO(res.Delivery)
		writeJSON(h.logger, w, r, http.StatusOK, autoAssignResponse{
			Success:         true,
			Delivery:        &dto,
			AlreadyAssigned: res.AlreadyAssigned,
		})
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, apperr.ErrNoCity):
		writeJSON(h.logger, w, r, http.StatusOK, autoAssignResponse{
			Success: false,
			Message: "could not determine delivery city",
		})
	case errors.Is(err, apperr.ErrNoDriver):
		writeJSON(h.logger, w, r, http.StatusOK, autoAssignResponse{
			Success: false,
			Message: "no available drivers",
		})
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Assign handles POST /api/deliveries/assign: explicit driver choice.
func (h *DispatchHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req manualAssignRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	res, err := h.usecase.ManualAssign(r.Context(), req.OrderID, req.DriverID)
	switch {
	case err == nil:
		status := http.StatusCreated
		if res.AlreadyAssigned {
			status = http.StatusOK
		}
		writeJSON(h.logger, w, r, status, deliveryToDTO(res.Delivery))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "driver not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}
