package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PickupStatus represents where a pickup sits in its lifecycle.
// The string values are the wire contract with the frontend.
type PickupStatus string

const (
	StatusPending    PickupStatus = "pending"
	StatusConfirmed  PickupStatus = "confirmed"
	StatusInProgress PickupStatus = "in-progress"
	StatusCompleted  PickupStatus = "completed"
	StatusCancelled  PickupStatus = "cancelled"
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s PickupStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Category classifies the kind of e-waste being collected.
type Category string

const (
	CategoryHomeAppliances Category = "home-appliances"
	CategoryITEquipment    Category = "it-equipment"
	CategoryBatteries      Category = "batteries"
	CategoryOther          Category = "other"
)

// ValidCategory reports whether c is one of the fixed categories.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryHomeAppliances, CategoryITEquipment, CategoryBatteries, CategoryOther:
		return true
	}
	return false
}

// PickupType distinguishes on-demand from scheduled collections.
type PickupType string

const (
	PickupImmediate PickupType = "immediate"
	PickupScheduled PickupType = "scheduled"
)

// Pickup represents a customer's e-waste collection request.
// Contact and address fields are a denormalized snapshot captured at
// creation time, independent of whatever the user later changes on
// their profile.
type Pickup struct {
	ID             uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	TrackingNumber string    `json:"tracking_number" gorm:"uniqueIndex;size:32;not null"`
	UserID         uuid.UUID `json:"user_id" gorm:"type:char(36);not null;index"`

	Category   Category `json:"category" gorm:"type:varchar(30);not null;index"`
	Items      []string `json:"items" gorm:"serializer:json;type:text;not null"`
	CustomItem string   `json:"custom_item,omitempty" gorm:"size:255"`

	PickupType    PickupType `json:"pickup_type" gorm:"type:varchar(20);not null;default:'immediate'"`
	ScheduledDate string     `json:"scheduled_date,omitempty" gorm:"size:10"`
	ScheduledTime string     `json:"scheduled_time,omitempty" gorm:"size:10"`

	Status           PickupStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	AssignedWorkerID *uuid.UUID   `json:"assigned_worker_id" gorm:"type:char(36);index"`
	PriceAddedByID   *uuid.UUID   `json:"price_added_by_id" gorm:"type:char(36)"`

	EstimatedWeight decimal.Decimal `json:"estimated_weight" gorm:"type:decimal(10,2);not null;default:0"`
	ActualWeight    decimal.Decimal `json:"actual_weight" gorm:"type:decimal(10,2);not null;default:0"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null;default:0"`

	ContactName  string `json:"contact_name" gorm:"size:255;not null"`
	ContactPhone string `json:"contact_phone" gorm:"size:20;not null"`
	ContactEmail string `json:"contact_email" gorm:"size:255"`
	Street       string `json:"street" gorm:"size:255;not null"`
	City         string `json:"city" gorm:"size:100;not null"`
	State        string `json:"state" gorm:"size:100;not null"`
	Pincode      string `json:"pincode" gorm:"size:10;not null"`

	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User           User  `json:"-" gorm:"foreignKey:UserID"`
	AssignedWorker *User `json:"assigned_worker,omitempty" gorm:"foreignKey:AssignedWorkerID"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Pickup) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsAssignedTo reports whether workerID is the pickup's assigned worker.
func (p *Pickup) IsAssignedTo(workerID uuid.UUID) bool {
	return p.AssignedWorkerID != nil && *p.AssignedWorkerID == workerID
}
