package handlers

import (
	"errors"
	"net/http"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/http/middleware"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/service/driver"
)

// DriverHandler serves the driver directory endpoints.
type DriverHandler struct {
	usecase driverUsecase
	logger  logx.Logger
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(logger logx.Logger, uc driverUsecase) *DriverHandler {
	return &DriverHandler{usecase: uc, logger: logger}
}

// Register handles POST /api/drivers. The driver profile belongs to the
// authenticated caller.
func (h *DriverHandler) Register(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok || id.UserID == "" {
		writeError(h.logger, w, r, http.StatusUnauthorized, "missing identity")
		return
	}

	var req registerDriverRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	d, err := h.usecase.Register(r.Context(), driver.RegisterInput{
		UserID:       id.UserID,
		Name:         req.Name,
		City:         req.City,
		Area:         req.Area,
		ServiceAreas: req.ServiceAreas,
	})
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusCreated, driverToDTO(*d))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, "driver already registered")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// UpdateStatus handles PUT /api/drivers/status for the calling driver.
func (h *DriverHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok || id.UserID == "" {
		writeError(h.logger, w, r, http.StatusUnauthorized, "missing identity")
		return
	}

	var req updateDriverStatusRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	u := domain.PartialDriverUpdate{
		UserID:                  id.UserID,
		City:                    req.City,
		Area:                    req.Area,
		ActiveDeliveries:        req.ActiveDeliveries,
		MaxConcurrentDeliveries: req.MaxConcurrentDeliveries,
	}
	if req.Status != nil {
		st := domain.DriverStatus(*req.Status)
		u.Status = &st
	}

	d, err := h.usecase.UpdateStatus(r.Context(), u)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, driverToDTO(*d))
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "driver not found")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

// Available handles GET /api/drivers/available?city=.
func (h *DriverHandler) Available(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")

	list, err := h.usecase.FindAvailable(r.Context(), city)
	if err != nil {
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, driversToDTO(list))
}
