package main

import (
	"context"
	"log"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ecoloop/internal/config"
	"ecoloop/internal/db"
	"ecoloop/internal/model"
	"ecoloop/internal/repository"
	"ecoloop/internal/service"
)

const seedPassword = "password123"

type seedUser struct {
	Name     string
	Email    string
	Phone    string
	Role     model.Role
	Approved bool
}

var seedUsers = []seedUser{
	{Name: "Asha Nair", Email: "asha@example.com", Phone: "9876500001", Role: model.RoleUser, Approved: true},
	{Name: "Vikram Rao", Email: "vikram@example.com", Phone: "9876500002", Role: model.RoleUser, Approved: true},
	{Name: "Ravi Kumar", Email: "ravi.worker@example.com", Phone: "9876500003", Role: model.RoleWorker, Approved: true},
	{Name: "Meena Pillai", Email: "meena.worker@example.com", Phone: "9876500004", Role: model.RoleWorker, Approved: true},
	{Name: "New Applicant", Email: "applicant.worker@example.com", Phone: "9876500005", Role: model.RoleWorker, Approved: false},
	{Name: "Site Admin", Email: "admin@example.com", Phone: "9876500006", Role: model.RoleAdmin, Approved: true},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Pickup{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	pickupRepo := repository.NewPickupRepository(gormDB)
	pickupService := service.NewPickupService(pickupRepo, nil)

	hashed, err := bcrypt.GenerateFromPassword([]byte(seedPassword), 10)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	users := map[string]*model.User{}
	for _, su := range seedUsers {
		existing, err := userRepo.FindByEmail(ctx, su.Email)
		if err == nil {
			users[su.Email] = existing
			continue
		}
		if err != gorm.ErrRecordNotFound {
			log.Fatalf("Failed to look up %s: %v", su.Email, err)
		}
		u := &model.User{
			Name:         su.Name,
			Email:        su.Email,
			Phone:        su.Phone,
			PasswordHash: string(hashed),
			Role:         su.Role,
			Approved:     su.Approved,
		}
		if err := userRepo.Create(ctx, u); err != nil {
			log.Fatalf("Failed to create %s: %v", su.Email, err)
		}
		users[su.Email] = u
		log.Printf("Created %s (%s)", su.Email, su.Role)
	}

	// A couple of pending pickups so the worker pool isn't empty.
	existing, err := pickupRepo.ListAvailable(ctx)
	if err != nil {
		log.Fatalf("Failed to list pickups: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("Found %d pending pickups, skipping pickup seed", len(existing))
		log.Println("Seed complete")
		return
	}

	owner := users["asha@example.com"]
	samples := []service.CreatePickupInput{
		{
			Category:        model.CategoryITEquipment,
			Items:           []string{"Old laptop", "CRT monitor"},
			PickupType:      model.PickupImmediate,
			EstimatedWeight: decimal.NewFromInt(8),
			ContactName:     owner.Name,
			ContactPhone:    owner.Phone,
			ContactEmail:    owner.Email,
			Street:          "12 Lake View Road",
			City:            "Kochi",
			State:           "Kerala",
			Pincode:         "682001",
		},
		{
			Category:        model.CategoryBatteries,
			Items:           []string{"Car battery"},
			PickupType:      model.PickupScheduled,
			ScheduledDate:   "2026-09-15",
			ScheduledTime:   "10:30",
			EstimatedWeight: decimal.NewFromInt(14),
			ContactName:     owner.Name,
			ContactPhone:    owner.Phone,
			ContactEmail:    owner.Email,
			Street:          "12 Lake View Road",
			City:            "Kochi",
			State:           "Kerala",
			Pincode:         "682001",
		},
	}
	for _, input := range samples {
		pickup, err := pickupService.CreatePickup(ctx, owner.ID, input)
		if err != nil {
			log.Fatalf("Failed to create sample pickup: %v", err)
		}
		log.Printf("Created pickup %s (%s)", pickup.TrackingNumber, pickup.Category)
	}

	log.Println("Seed complete")
}
