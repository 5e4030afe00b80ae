package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Role identifies what a user is allowed to do on the platform.
type Role string

const (
	RoleUser   Role = "user"
	RoleWorker Role = "worker"
	RoleAdmin  Role = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleWorker, RoleAdmin:
		return true
	}
	return false
}

// User represents a customer, field worker, or administrator.
// The three worker counters are maintained incrementally by the
// lifecycle service and are meaningful only when Role is worker.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Phone        string    `json:"phone" gorm:"size:20;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;default:'user';index"`

	// Approved is true by default for users and admins; workers start
	// unapproved and must be approved by an admin before taking work.
	Approved bool `json:"approved" gorm:"default:true;index"`

	AssignedPickups      int             `json:"assigned_pickups" gorm:"not null;default:0"`
	CompletedPickups     int             `json:"completed_pickups" gorm:"not null;default:0"`
	TotalWeightCollected decimal.Decimal `json:"total_weight_collected" gorm:"type:decimal(12,2);not null;default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsWorker reports whether the user holds the worker role.
func (u *User) IsWorker() bool {
	return u.Role == RoleWorker
}
