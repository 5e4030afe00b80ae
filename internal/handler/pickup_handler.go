package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"ecoloop/internal/errors"
	"ecoloop/internal/model"
	"ecoloop/internal/service"
)

// PickupHandler handles customer-facing pickup endpoints and the
// public tracking lookup.
type PickupHandler struct {
	pickupService    service.PickupService
	lifecycleService service.LifecycleService
}

// NewPickupHandler creates a new pickup handler.
func NewPickupHandler(pickupService service.PickupService, lifecycleService service.LifecycleService) *PickupHandler {
	return &PickupHandler{
		pickupService:    pickupService,
		lifecycleService: lifecycleService,
	}
}

// CreatePickupRequest represents a pickup creation request.
type CreatePickupRequest struct {
	Category        string   `json:"category" validate:"required"`
	Items           []string `json:"items" validate:"required,min=1,dive,required"`
	CustomItem      string   `json:"custom_item"`
	PickupType      string   `json:"pickup_type" validate:"omitempty,oneof=immediate scheduled"`
	ScheduledDate   string   `json:"scheduled_date" validate:"omitempty,datetime=2006-01-02"`
	ScheduledTime   string   `json:"scheduled_time"`
	EstimatedWeight string   `json:"estimated_weight"`
	ContactName     string   `json:"contact_name" validate:"required"`
	ContactPhone    string   `json:"contact_phone" validate:"required,min=7,max=15"`
	ContactEmail    string   `json:"contact_email" validate:"omitempty,email"`
	Street          string   `json:"street" validate:"required"`
	City            string   `json:"city" validate:"required"`
	State           string   `json:"state" validate:"required"`
	Pincode         string   `json:"pincode" validate:"required,len=6"`
}

// CreatePickup godoc
// @Summary Create a pickup request
// @Tags pickups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePickupRequest true "Pickup data"
// @Success 201 {object} model.Pickup
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /pickups [post]
func (h *PickupHandler) CreatePickup(c echo.Context) error {
	ident, err := CurrentIdentity(c)
	if err != nil {
		return err
	}

	var req CreatePickupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	estimatedWeight := decimal.Zero
	if req.EstimatedWeight != "" {
		estimatedWeight, err = decimal.NewFromString(req.EstimatedWeight)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid estimated_weight",
				Code:  "INVALID_WEIGHT",
			})
		}
	}

	pickup, err := h.pickupService.CreatePickup(c.Request().Context(), ident.UserID, service.CreatePickupInput{
		Category:        model.Category(req.Category),
		Items:           req.Items,
		CustomItem:      req.CustomItem,
		PickupType:      model.PickupType(req.PickupType),
		ScheduledDate:   req.ScheduledDate,
		ScheduledTime:   req.ScheduledTime,
		EstimatedWeight: estimatedWeight,
		ContactName:     req.ContactName,
		ContactPhone:    req.ContactPhone,
		ContactEmail:    req.ContactEmail,
		Street:          req.Street,
		City:            req.City,
		State:           req.State,
		Pincode:         req.Pincode,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, pickup)
}

// ListMyPickups godoc
// @Summary List the caller's pickups
// @Tags pickups
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Pickup
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /pickups [get]
func (h *PickupHandler) ListMyPickups(c echo.Context) error {
	ident, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	pickups, err := h.pickupService.ListUserPickups(c.Request().Context(), ident.UserID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, pickups)
}

// GetPickup godoc
// @Summary Get a pickup by id
// @Tags pickups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pickup ID"
// @Success 200 {object} model.Pickup
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /pickups/{id} [get]
func (h *PickupHandler) GetPickup(c echo.Context) error {
	ident, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	pickupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid pickup id",
			Code:  "INVALID_UUID",
		})
	}
	pickup, err := h.pickupService.GetPickup(c.Request().Context(), pickupID, ident.UserID, ident.Role)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, pickup)
}

// CancelPickup godoc
// @Summary Cancel the caller's pending pickup
// @Tags pickups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pickup ID"
// @Success 200 {object} model.Pickup
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /pickups/{id}/cancel [put]
func (h *PickupHandler) CancelPickup(c echo.Context) error {
	ident, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	pickupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid pickup id",
			Code:  "INVALID_UUID",
		})
	}
	pickup, err := h.lifecycleService.CancelOwnPickup(c.Request().Context(), pickupID, ident.UserID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, pickup)
}

// Track godoc
// @Summary Track a pickup by tracking number
// @Tags pickups
// @Produce json
// @Param trackingNumber path string true "Tracking number"
// @Success 200 {object} service.TrackingInfo
// @Failure 404 {object} errors.ErrorResponse
// @Router /track/{trackingNumber} [get]
func (h *PickupHandler) Track(c echo.Context) error {
	info, err := h.pickupService.TrackByNumber(c.Request().Context(), c.Param("trackingNumber"))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, info)
}
