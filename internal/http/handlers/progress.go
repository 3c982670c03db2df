package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/http/middleware"
	"delivery-dispatch/internal/logx"
)

// ProgressHandler serves delivery status updates and tracking.
type ProgressHandler struct {
	usecase progressUsecase
	logger  logx.Logger
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(logger logx.Logger, uc progressUsecase) *ProgressHandler {
	return &ProgressHandler{usecase: uc, logger: logger}
}

// UpdateStatus handles PUT /api/deliveries/{id}/status. Only the driver
// the delivery is assigned to may move it forward.
func (h *ProgressHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok || caller.UserID == "" {
		writeError(h.logger, w, r, http.StatusUnauthorized, "missing identity")
		return
	}

	id, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateDeliveryStatusRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	u := domain.DeliveryUpdate{Location: req.Location}
	if req.Status != nil {
		st := domain.DeliveryStatus(*req.Status)
		u.Status = &st
	}

	d, err := h.usecase.UpdateStatus(r.Context(), id, u, caller.UserID)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, deliveryToDTO(*d))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "delivery not found")
	case errors.Is(err, apperr.ErrForbidden):
		writeError(h.logger, w, r, http.StatusForbidden, "not your delivery")
	case errors.Is(err, apperr.ErrBadTransition):
		writeError(h.logger, w, r, http.StatusConflict, "invalid status transition")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Track handles GET /api/deliveries/{orderId}/track.
func (h *ProgressHandler) Track(w http.ResponseWriter, r *http.Request) {
	orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if orderID == "" {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid order id")
		return
	}

	info, err := h.usecase.Track(r.Context(), orderID)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, trackingToResponse(info))
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "delivery not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}
