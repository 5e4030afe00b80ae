package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"ecoloop/internal/config"
	"ecoloop/internal/errors"
	"ecoloop/internal/handler"
	"ecoloop/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	pickupHandler *handler.PickupHandler,
	workerHandler *handler.WorkerHandler,
	adminHandler *handler.AdminHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/track/:trackingNumber", pickupHandler.Track)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
	}))

	// Customer routes (any authenticated user)
	secured.POST("/pickups", pickupHandler.CreatePickup)
	secured.GET("/pickups", pickupHandler.ListMyPickups)
	secured.GET("/pickups/:id", pickupHandler.GetPickup)
	secured.PUT("/pickups/:id/cancel", pickupHandler.CancelPickup)

	// Worker routes
	worker := secured.Group("/worker", RequireRoles(model.RoleWorker))
	worker.GET("/pickups/available", workerHandler.AvailablePickups)
	worker.POST("/pickups/:id/claim", workerHandler.ClaimPickup)
	worker.GET("/pickups", workerHandler.MyAssignments)
	worker.PUT("/pickups/:id/status", workerHandler.UpdateStatus)
	worker.PUT("/pickups/:id/weight", workerHandler.SetWeight)
	worker.PUT("/pickups/:id/price", workerHandler.SetPrice)
	worker.GET("/profile", workerHandler.Profile)

	// Admin routes
	admin := secured.Group("/admin", RequireRoles(model.RoleAdmin))
	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:id/role", adminHandler.ChangeRole)
	admin.GET("/workers", adminHandler.ListWorkers)
	admin.GET("/workers/pending", adminHandler.ListPendingWorkers)
	admin.PUT("/workers/:id/approve", adminHandler.ApproveWorker)
	admin.DELETE("/workers/:id", adminHandler.RejectWorker)
	admin.POST("/workers/reconcile", adminHandler.ReconcileAllWorkers)
	admin.POST("/workers/:id/reconcile", adminHandler.ReconcileWorker)
	admin.GET("/pickups", adminHandler.ListPickups)
	admin.PUT("/pickups/:id/assign", adminHandler.AssignWorker)
	admin.PUT("/pickups/:id/status", adminHandler.OverrideStatus)
	admin.GET("/dashboard", adminHandler.Dashboard)
}

// RequireRoles restricts a route group to callers holding one of the
// given roles.
func RequireRoles(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, err := handler.CurrentIdentity(c)
			if err != nil {
				return err
			}
			for _, r := range roles {
				if ident.Role == r {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
				Error: "access denied for role " + string(ident.Role),
				Code:  "FORBIDDEN",
			})
		}
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
