package main

import (
	"context"
	"log"
	"net/http"
	"os"

	_ "ecoloop/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ecoloop/internal/auth"
	"ecoloop/internal/cache"
	"ecoloop/internal/config"
	"ecoloop/internal/db"
	"ecoloop/internal/handler"
	"ecoloop/internal/model"
	"ecoloop/internal/repository"
	"ecoloop/internal/router"
	"ecoloop/internal/service"
)

// @title EcoLoop API
// @version 1.0
// @description E-waste pickup coordination API with customer, worker, and admin surfaces.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		for _, table := range []interface{}{&model.Pickup{}, &model.User{}} {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(&model.User{}, &model.Pickup{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	pickupRepo := repository.NewPickupRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	userService := service.NewUserService(userRepo, pickupRepo, cacheClient)
	pickupService := service.NewPickupService(pickupRepo, cacheClient)
	lifecycleService := service.NewLifecycleService(pickupRepo, userRepo, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	pickupHandler := handler.NewPickupHandler(pickupService, lifecycleService)
	workerHandler := handler.NewWorkerHandler(lifecycleService, userService)
	adminHandler := handler.NewAdminHandler(userService, pickupService, lifecycleService)

	// Register routes
	router.Register(e, cfg, authHandler, pickupHandler, workerHandler, adminHandler)

	if err := bootstrapAdmin(gormDB, cfg); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}

// bootstrapAdmin creates the first admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD when no admin exists yet. Admins cannot register
// through the public endpoint, so a fresh deployment needs this.
func bootstrapAdmin(gormDB *gorm.DB, cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	userRepo := repository.NewUserRepository(gormDB)
	ctx := context.Background()

	if _, err := userRepo.FindByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), 10)
	if err != nil {
		return err
	}
	admin := &model.User{
		Name:         "Administrator",
		Email:        cfg.AdminEmail,
		PasswordHash: string(hashed),
		Role:         model.RoleAdmin,
		Approved:     true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return err
	}
	log.Printf("bootstrap admin account created: %s", cfg.AdminEmail)
	return nil
}
