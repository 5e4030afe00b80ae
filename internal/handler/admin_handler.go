package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"ecoloop/internal/errors"
	"ecoloop/internal/model"
	"ecoloop/internal/service"
)

// AdminHandler handles administration endpoints: user management,
// worker approval, assignment, status overrides, and reporting.
type AdminHandler struct {
	userService      service.UserService
	pickupService    service.PickupService
	lifecycleService service.LifecycleService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(
	userService service.UserService,
	pickupService service.PickupService,
	lifecycleService service.LifecycleService,
) *AdminHandler {
	return &AdminHandler{
		userService:      userService,
		pickupService:    pickupService,
		lifecycleService: lifecycleService,
	}
}

// AssignWorkerRequest represents a worker assignment request.
type AssignWorkerRequest struct {
	WorkerID string `json:"worker_id" validate:"required,uuid"`
}

// OverrideStatusRequest represents an admin status override.
type OverrideStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed in-progress completed cancelled"`
}

// ChangeRoleRequest represents a role change request.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user worker admin"`
}

func parseUserID(c echo.Context) (uuid.UUID, *echo.HTTPError) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid user id",
			Code:  "INVALID_UUID",
		})
	}
	return id, nil
}

// ListUsers godoc
// @Summary List all users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.User
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, users)
}

// ListWorkers godoc
// @Summary List all workers
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.User
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/workers [get]
func (h *AdminHandler) ListWorkers(c echo.Context) error {
	workers, err := h.userService.ListWorkers(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, workers)
}

// ListPendingWorkers godoc
// @Summary List workers awaiting approval
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.User
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/workers/pending [get]
func (h *AdminHandler) ListPendingWorkers(c echo.Context) error {
	workers, err := h.userService.ListPendingWorkers(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, workers)
}

// ApproveWorker godoc
// @Summary Approve a pending worker
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Worker ID"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/workers/{id}/approve [put]
func (h *AdminHandler) ApproveWorker(c echo.Context) error {
	workerID, httpErr := parseUserID(c)
	if httpErr != nil {
		return httpErr
	}
	worker, err := h.userService.ApproveWorker(c.Request().Context(), workerID)
	if err != nil {
		mapped := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, worker)
}

// RejectWorker godoc
// @Summary Reject and delete a pending worker
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Worker ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/workers/{id} [delete]
func (h *AdminHandler) RejectWorker(c echo.Context) error {
	workerID, httpErr := parseUserID(c)
	if httpErr != nil {
		return httpErr
	}
	if err := h.userService.RejectWorker(c.Request().Context(), workerID); err != nil {
		mapped := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "worker rejected",
	})
}

// ChangeRole godoc
// @Summary Change a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body ChangeRoleRequest true "New role"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/users/{id}/role [put]
func (h *AdminHandler) ChangeRole(c echo.Context) error {
	userID, httpErr := parseUserID(c)
	if httpErr != nil {
		return httpErr
	}
	var req ChangeRoleRequest
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
	user, err := h.userService.ChangeRole(c.Request().Context(), userID, model.Role(req.Role))
	if err != nil {
		mapped := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, user)
}

// ListPickups godoc
// @Summary List all pickups
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Pickup
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/pickups [get]
func (h *AdminHandler) ListPickups(c echo.Context) error {
	pickups, err := h.pickupService.ListAllPickups(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, pickups)
}

// AssignWorker godoc
// @Summary Assign or reassign a worker to a pickup
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pickup ID"
// @Param request body AssignWorkerRequest true "Worker to assign"
// @Success 200 {object} model.Pickup
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/pickups/{id}/assign [put]
func (h *AdminHandler) AssignWorker(c echo.Context) error {
	pickupID, httpErr := parsePickupID(c)
	if httpErr != nil {
		return httpErr
	}
	var req AssignWorkerRequest
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
	workerID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid worker_id",
			Code:  "INVALID_UUID",
		})
	}

	pickup, err := h.lifecycleService.AssignWorker(c.Request().Context(), pickupID, workerID)
	if err != nil {
		mapped := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, pickup)
}

// OverrideStatus godoc
// @Summary Set a pickup's status directly
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pickup ID"
// @Param request body OverrideStatusRequest true "New status"
// @Success 200 {object} model.Pickup
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/pickups/{id}/status [put]
func (h *AdminHandler) OverrideStatus(c echo.Context) error {
	pickupID, httpErr := parsePickupID(c)
	if httpErr != nil {
		return httpErr
	}
	var req OverrideStatusRequest
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

	pickup, err := h.lifecycleService.OverrideStatus(c.Request().Context(), pickupID, model.PickupStatus(req.Status))
	if err != nil {
		mapped := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, pickup)
}

// ReconcileWorker godoc
// @Summary Recompute one worker's statistics from the pickups table
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Worker ID"
// @Success 200 {object} service.StatDrift
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/workers/{id}/reconcile [post]
func (h *AdminHandler) ReconcileWorker(c echo.Context) error {
	workerID, httpErr := parseUserID(c)
	if httpErr != nil {
		return httpErr
	}
	drift, err := h.userService.ReconcileWorkerStats(c.Request().Context(), workerID)
	if err != nil {
		mapped := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, drift)
}

// ReconcileAllWorkers godoc
// @Summary Recompute every worker's statistics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.StatDrift
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/workers/reconcile [post]
func (h *AdminHandler) ReconcileAllWorkers(c echo.Context) error {
	drifts, err := h.userService.ReconcileAllWorkers(c.Request().Context())
	if err != nil {
		mapped := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, drifts)
}

// Dashboard godoc
// @Summary Platform-wide aggregate counts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.DashboardStats
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	stats, err := h.userService.DashboardStats(c.Request().Context())
	if err != nil {
		mapped := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, stats)
}
