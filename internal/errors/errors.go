package errors

import (
	"errors"
	"net/http"
)

// Sentinel errors grouped by taxonomy category. Services return
// these; handlers map them to HTTP via MapErrorToHTTP.
var (
	// Not found
	ErrUserNotFound   = errors.New("user not found")
	ErrWorkerNotFound = errors.New("worker not found")
	ErrPickupNotFound = errors.New("pickup not found")

	// Conflict (state-machine precondition violated)
	ErrPickupAlreadyAssigned = errors.New("pickup already assigned")
	ErrPickupNotAvailable    = errors.New("pickup no longer available")
	ErrPickupTerminal        = errors.New("pickup is in a terminal state")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrWorkerHasActiveWork   = errors.New("worker has active assignments")
	ErrWorkerAlreadyApproved = errors.New("worker already approved")

	// Authorization
	ErrNotAssignedWorker = errors.New("pickup is assigned to a different worker")
	ErrNotPickupOwner    = errors.New("pickup belongs to a different user")
	ErrWorkerNotApproved = errors.New("worker account pending approval")

	// Validation
	ErrInvalidCategory     = errors.New("invalid category")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidRole         = errors.New("invalid role")
	ErrEmptyItems          = errors.New("items list must not be empty")
	ErrScheduleRequired    = errors.New("scheduled pickups require a date and time")
	ErrInvalidWeight       = errors.New("weight must be greater than zero")
	ErrInvalidPrice        = errors.New("price must not be negative")
	ErrCompletionNotReady  = errors.New("actual weight and price must be set before completion")
	ErrNotAWorker          = errors.New("user is not a worker")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrWorkerNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "WORKER_NOT_FOUND")
	case errors.Is(err, ErrPickupNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "PICKUP_NOT_FOUND")
	case errors.Is(err, ErrPickupAlreadyAssigned):
		return NewHTTPError(http.StatusConflict, err.Error(), "ALREADY_ASSIGNED")
	case errors.Is(err, ErrPickupNotAvailable):
		return NewHTTPError(http.StatusConflict, err.Error(), "NOT_AVAILABLE")
	case errors.Is(err, ErrPickupTerminal):
		return NewHTTPError(http.StatusConflict, err.Error(), "PICKUP_TERMINAL")
	case errors.Is(err, ErrInvalidTransition):
		return NewHTTPError(http.StatusConflict, err.Error(), "INVALID_TRANSITION")
	case errors.Is(err, ErrWorkerHasActiveWork):
		return NewHTTPError(http.StatusConflict, err.Error(), "WORKER_HAS_ACTIVE_WORK")
	case errors.Is(err, ErrWorkerAlreadyApproved):
		return NewHTTPError(http.StatusConflict, err.Error(), "WORKER_ALREADY_APPROVED")
	case errors.Is(err, ErrNotAssignedWorker):
		return NewHTTPError(http.StatusForbidden, err.Error(), "NOT_ASSIGNED_WORKER")
	case errors.Is(err, ErrNotPickupOwner):
		return NewHTTPError(http.StatusForbidden, err.Error(), "NOT_PICKUP_OWNER")
	case errors.Is(err, ErrWorkerNotApproved):
		return NewHTTPError(http.StatusForbidden, err.Error(), "WORKER_NOT_APPROVED")
	case errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrEmptyItems),
		errors.Is(err, ErrScheduleRequired),
		errors.Is(err, ErrInvalidWeight),
		errors.Is(err, ErrInvalidPrice),
		errors.Is(err, ErrCompletionNotReady),
		errors.Is(err, ErrNotAWorker):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
