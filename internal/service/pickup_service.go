package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ecoloop/internal/cache"
	"ecoloop/internal/errors"
	"ecoloop/internal/model"
	"ecoloop/internal/repository"
)

const pickupCacheTTL = 5 * time.Minute

// trackingAttempts bounds the regenerate-and-retry loop on a tracking
// number collision.
const trackingAttempts = 3

// CreatePickupInput carries the customer-supplied pickup data.
// Contact and address fields are snapshotted onto the pickup so later
// profile edits don't rewrite history.
type CreatePickupInput struct {
	Category        model.Category
	Items           []string
	CustomItem      string
	PickupType      model.PickupType
	ScheduledDate   string
	ScheduledTime   string
	EstimatedWeight decimal.Decimal
	ContactName     string
	ContactPhone    string
	ContactEmail    string
	Street          string
	City            string
	State           string
	Pincode         string
}

// TrackingInfo is the public view of a pickup. It deliberately
// excludes the owner's identity and contact details: the tracking
// number is a shareable lookup key, not a credential.
type TrackingInfo struct {
	TrackingNumber string             `json:"tracking_number"`
	Status         model.PickupStatus `json:"status"`
	Category       model.Category     `json:"category"`
	PickupType     model.PickupType   `json:"pickup_type"`
	ScheduledDate  string             `json:"scheduled_date,omitempty"`
	ScheduledTime  string             `json:"scheduled_time,omitempty"`
	City           string             `json:"city"`
	State          string             `json:"state"`
	CreatedAt      time.Time          `json:"created_at"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
}

// PickupService handles pickup creation and read paths.
type PickupService interface {
	CreatePickup(ctx context.Context, userID uuid.UUID, input CreatePickupInput) (*model.Pickup, error)
	GetPickup(ctx context.Context, pickupID, requesterID uuid.UUID, requesterRole model.Role) (*model.Pickup, error)
	ListUserPickups(ctx context.Context, userID uuid.UUID) ([]model.Pickup, error)
	ListAllPickups(ctx context.Context) ([]model.Pickup, error)
	TrackByNumber(ctx context.Context, trackingNumber string) (*TrackingInfo, error)
}

type pickupService struct {
	repo  repository.PickupRepository
	cache *cache.Client
}

// NewPickupService creates a new pickup service.
func NewPickupService(repo repository.PickupRepository, cache *cache.Client) PickupService {
	return &pickupService{repo: repo, cache: cache}
}

func (s *pickupService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("pickup:%s", id.String())
}

func (s *pickupService) CreatePickup(ctx context.Context, userID uuid.UUID, input CreatePickupInput) (*model.Pickup, error) {
	if !model.ValidCategory(input.Category) {
		return nil, errors.ErrInvalidCategory
	}
	if len(input.Items) == 0 {
		return nil, errors.ErrEmptyItems
	}
	if input.PickupType == "" {
		input.PickupType = model.PickupImmediate
	}
	if input.PickupType == model.PickupScheduled && (input.ScheduledDate == "" || input.ScheduledTime == "") {
		return nil, errors.ErrScheduleRequired
	}
	if input.EstimatedWeight.IsNegative() {
		return nil, errors.ErrInvalidWeight
	}

	pickup := &model.Pickup{
		UserID:          userID,
		Category:        input.Category,
		Items:           input.Items,
		CustomItem:      input.CustomItem,
		PickupType:      input.PickupType,
		ScheduledDate:   input.ScheduledDate,
		ScheduledTime:   input.ScheduledTime,
		Status:          model.StatusPending,
		EstimatedWeight: input.EstimatedWeight,
		ContactName:     input.ContactName,
		ContactPhone:    input.ContactPhone,
		ContactEmail:    input.ContactEmail,
		Street:          input.Street,
		City:            input.City,
		State:           input.State,
		Pincode:         input.Pincode,
	}

	// The unique index is the arbiter; on the rare collision,
	// regenerate the number and try again.
	var err error
	for attempt := 0; attempt < trackingAttempts; attempt++ {
		pickup.TrackingNumber = generateTrackingNumber()
		err = s.repo.Create(ctx, pickup)
		if err == nil {
			return pickup, nil
		}
		if err != gorm.ErrDuplicatedKey {
			return nil, fmt.Errorf("create pickup: %w", err)
		}
	}
	return nil, fmt.Errorf("create pickup: %w", err)
}

// generateTrackingNumber builds the public identifier: a fixed prefix,
// a millisecond timestamp, and a short random suffix.
func generateTrackingNumber() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	suffix := make([]byte, 4)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			// crypto/rand failing means the platform is broken; fall
			// back to a time-derived index rather than panic.
			n = big.NewInt(time.Now().UnixNano() % int64(len(alphabet)))
		}
		suffix[i] = alphabet[n.Int64()]
	}
	return fmt.Sprintf("ECO%d%s", time.Now().UnixMilli(), suffix)
}

func (s *pickupService) GetPickup(ctx context.Context, pickupID, requesterID uuid.UUID, requesterRole model.Role) (*model.Pickup, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(pickupID)); data != nil {
		var cached model.Pickup
		if err := json.Unmarshal(data, &cached); err == nil {
			return s.authorizeRead(&cached, requesterID, requesterRole)
		}
	}

	pickup, err := s.repo.FindByID(ctx, pickupID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPickupNotFound
		}
		return nil, fmt.Errorf("load pickup: %w", err)
	}

	if payload, err := json.Marshal(pickup); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(pickupID), payload, pickupCacheTTL)
	}
	return s.authorizeRead(pickup, requesterID, requesterRole)
}

// authorizeRead allows the owner, the assigned worker, and admins.
func (s *pickupService) authorizeRead(pickup *model.Pickup, requesterID uuid.UUID, requesterRole model.Role) (*model.Pickup, error) {
	if requesterRole == model.RoleAdmin {
		return pickup, nil
	}
	if pickup.UserID == requesterID || pickup.IsAssignedTo(requesterID) {
		return pickup, nil
	}
	return nil, errors.ErrNotPickupOwner
}

func (s *pickupService) ListUserPickups(ctx context.Context, userID uuid.UUID) ([]model.Pickup, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *pickupService) ListAllPickups(ctx context.Context) ([]model.Pickup, error) {
	return s.repo.ListAll(ctx)
}

func (s *pickupService) TrackByNumber(ctx context.Context, trackingNumber string) (*TrackingInfo, error) {
	pickup, err := s.repo.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPickupNotFound
		}
		return nil, fmt.Errorf("lookup tracking number: %w", err)
	}
	return &TrackingInfo{
		TrackingNumber: pickup.TrackingNumber,
		Status:         pickup.Status,
		Category:       pickup.Category,
		PickupType:     pickup.PickupType,
		ScheduledDate:  pickup.ScheduledDate,
		ScheduledTime:  pickup.ScheduledTime,
		City:           pickup.City,
		State:          pickup.State,
		CreatedAt:      pickup.CreatedAt,
		CompletedAt:    pickup.CompletedAt,
	}, nil
}
