package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a uniqueness or state conflict (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden indicates the caller does not own the resource.
var ErrForbidden = errors.New("forbidden")

// ErrNoDriver indicates that no available driver matched the order's city.
var ErrNoDriver = errors.New("no available driver")

// ErrNoCity indicates that no city could be derived from the order address.
var ErrNoCity = errors.New("no city resolved")

// ErrBadTransition indicates a delivery status change that the
// transition table does not allow.
var ErrBadTransition = errors.New("invalid status transition")
