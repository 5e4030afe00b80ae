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

// WorkerHandler handles field-worker endpoints: the claimable pool,
// assignments, and on-site updates.
type WorkerHandler struct {
	lifecycleService service.LifecycleService
	userService      service.UserService
}

// NewWorkerHandler creates a new worker handler.
func NewWorkerHandler(lifecycleService service.LifecycleService, userService service.UserService) *WorkerHandler {
	return &WorkerHandler{
		lifecycleService: lifecycleService,
		userService:      userService,
	}
}

// UpdateStatusRequest represents a status advance request.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=in-progress completed"`
}

// SetWeightRequest represents an actual-weight update.
type SetWeightRequest struct {
	Weight string `json:"weight" validate:"required"`
}

// SetPriceRequest represents a price quote.
type SetPriceRequest struct {
	Price string `json:"price" validate:"required"`
}

func parsePickupID(c echo.Context) (uuid.UUID, *echo.HTTPError) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid pickup id",
			Code:  "INVALID_UUID",
		})
	}
	return id, nil
}

// AvailablePickups godoc
// @Summary List claimable pickups
// @Tags worker
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Pickup
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /worker/pickups/available [get]
func (h *WorkerHandler) AvailablePickups(c echo.Context) error {
	pickups, err := h.lifecycleService.AvailablePickups(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, pickups)
}

// ClaimPickup godoc
// @Summary Claim an available pickup
// @Tags worker
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pickup ID"
// @Success 200 {object} model.Pickup
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /worker/pickups/{id}/claim [post]
func (h *WorkerHandler) ClaimPickup(c echo.Context) error {
	ident, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	pickupID, httpErr := parsePickupID(c)
	if httpErr != nil {
		return httpErr
	}
	pickup, err := h.lifecycleService.ClaimPickup(c.Request().Context(), pickupID, ident.UserID)
	if err != nil {
		mapped := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, pickup)
}

// MyAssignments godoc
// @Summary List pickups assigned to the caller
// @Tags worker
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Pickup
// @Failure 401 {object} errors.ErrorResponse
// @Router /worker/pickups [get]
func (h *WorkerHandler) MyAssignments(c echo.Context) error {
	ident, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	pickups, err := h.lifecycleService.WorkerPickups(c.Request().Context(), ident.UserID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, pickups)
}

// UpdateStatus godoc
// @Summary Advance an assigned pickup's status
// @Tags worker
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pickup ID"
// @Param request body UpdateStatusRequest true "Next status"
// @Success 200 {object} model.Pickup
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /worker/pickups/{id}/status [put]
func (h *WorkerHandler) UpdateStatus(c echo.Context) error {
	ident, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	pickupID, httpErr := parsePickupID(c)
	if httpErr != nil {
		return httpErr
	}

	var req UpdateStatusRequest
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

	pickup, err := h.lifecycleService.AdvanceStatus(c.Request().Context(), pickupID, ident.UserID, model.PickupStatus(req.Status))
	if err != nil {
		mapped := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, pickup)
}

// SetWeight godoc
// @Summary Record the measured weight of an assigned pickup
// @Tags worker
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pickup ID"
// @Param request body SetWeightRequest true "Weight in kg"
// @Success 200 {object} model.Pickup
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /worker/pickups/{id}/weight [put]
func (h *WorkerHandler) SetWeight(c echo.Context) error {
	ident, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	pickupID, httpErr := parsePickupID(c)
	if httpErr != nil {
		return httpErr
	}

	var req SetWeightRequest
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
	weight, err := decimal.NewFromString(req.Weight)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid weight",
			Code:  "INVALID_WEIGHT",
		})
	}

	pickup, err := h.lifecycleService.SetActualWeight(c.Request().Context(), pickupID, ident.UserID, weight)
	if err != nil {
		mapped := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, pickup)
}

// SetPrice godoc
// @Summary Quote the price of an assigned pickup
// @Tags worker
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pickup ID"
// @Param request body SetPriceRequest true "Price"
// @Success 200 {object} model.Pickup
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /worker/pickups/{id}/price [put]
func (h *WorkerHandler) SetPrice(c echo.Context) error {
	ident, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	pickupID, httpErr := parsePickupID(c)
	if httpErr != nil {
		return httpErr
	}

	var req SetPriceRequest
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
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid price",
			Code:  "INVALID_PRICE",
		})
	}

	pickup, err := h.lifecycleService.SetPrice(c.Request().Context(), pickupID, ident.UserID, price)
	if err != nil {
		mapped := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, pickup)
}

// Profile godoc
// @Summary Get the caller's worker profile and statistics
// @Tags worker
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /worker/profile [get]
func (h *WorkerHandler) Profile(c echo.Context) error {
	ident, err := CurrentIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.userService.GetUser(c.Request().Context(), ident.UserID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, user)
}
