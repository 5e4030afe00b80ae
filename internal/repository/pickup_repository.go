package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ecoloop/internal/model"
)

// AvailablePoolLimit caps how many claimable pickups are exposed to
// workers in one page.
const AvailablePoolLimit = 50

// StatusCount is one row of a per-status aggregation.
type StatusCount struct {
	Status model.PickupStatus `json:"status"`
	Count  int64              `json:"count"`
}

// PickupRepository defines pickup persistence operations.
type PickupRepository interface {
	Create(ctx context.Context, pickup *model.Pickup) error
	Update(ctx context.Context, pickup *model.Pickup) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pickup, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Pickup, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*model.Pickup, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Pickup, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID) ([]model.Pickup, error)
	ListAll(ctx context.Context) ([]model.Pickup, error)
	// ListAvailable returns the claimable pool: pending and
	// unassigned, newest first, capped at AvailablePoolLimit.
	ListAvailable(ctx context.Context) ([]model.Pickup, error)
	// ClaimIfAvailable atomically assigns the pickup to the worker
	// only if it is still pending and unassigned. Returns false when
	// another claim or assignment won the race.
	ClaimIfAvailable(ctx context.Context, id, workerID uuid.UUID) (bool, error)
	// Aggregations over the pickups table; the source of truth the
	// worker counters are reconciled against.
	CountByWorkerAndStatuses(ctx context.Context, workerID uuid.UUID, statuses []model.PickupStatus) (int64, error)
	SumWeightByWorkerCompleted(ctx context.Context, workerID uuid.UUID) (decimal.Decimal, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	SumCompletedWeight(ctx context.Context) (decimal.Decimal, error)
	// WithTransaction runs fn with transaction-scoped pickup and user
	// repositories; a lifecycle transition touches both tables as one
	// consistency boundary.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, pickups PickupRepository, users UserRepository) error) error
}

type pickupRepository struct {
	db *gorm.DB
}

// NewPickupRepository builds a GORM-backed repository.
func NewPickupRepository(db *gorm.DB) PickupRepository {
	return &pickupRepository{db: db}
}

func (r *pickupRepository) Create(ctx context.Context, pickup *model.Pickup) error {
	return r.db.WithContext(ctx).Create(pickup).Error
}

func (r *pickupRepository) Update(ctx context.Context, pickup *model.Pickup) error {
	return r.db.WithContext(ctx).Save(pickup).Error
}

func (r *pickupRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Pickup, error) {
	var pickup model.Pickup
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&pickup).Error; err != nil {
		return nil, err
	}
	return &pickup, nil
}

// FindByIDForUpdate finds a pickup by ID with a row-level lock.
func (r *pickupRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Pickup, error) {
	var pickup model.Pickup
	if err := r.db.WithContext(ctx).Set("gorm:query_option", "FOR UPDATE").
		Where("id = ?", id).First(&pickup).Error; err != nil {
		return nil, err
	}
	return &pickup, nil
}

func (r *pickupRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*model.Pickup, error) {
	var pickup model.Pickup
	if err := r.db.WithContext(ctx).
		Where("tracking_number = ?", trackingNumber).First(&pickup).Error; err != nil {
		return nil, err
	}
	return &pickup, nil
}

func (r *pickupRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Pickup, error) {
	var pickups []model.Pickup
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&pickups).Error; err != nil {
		return nil, err
	}
	return pickups, nil
}

func (r *pickupRepository) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]model.Pickup, error) {
	var pickups []model.Pickup
	if err := r.db.WithContext(ctx).Where("assigned_worker_id = ?", workerID).
		Order("created_at DESC").Find(&pickups).Error; err != nil {
		return nil, err
	}
	return pickups, nil
}

func (r *pickupRepository) ListAll(ctx context.Context) ([]model.Pickup, error) {
	var pickups []model.Pickup
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&pickups).Error; err != nil {
		return nil, err
	}
	return pickups, nil
}

func (r *pickupRepository) ListAvailable(ctx context.Context) ([]model.Pickup, error) {
	var pickups []model.Pickup
	if err := r.db.WithContext(ctx).
		Where("status = ? AND assigned_worker_id IS NULL", model.StatusPending).
		Order("created_at DESC").
		Limit(AvailablePoolLimit).
		Find(&pickups).Error; err != nil {
		return nil, err
	}
	return pickups, nil
}

func (r *pickupRepository) ClaimIfAvailable(ctx context.Context, id, workerID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Pickup{}).
		Where("id = ? AND assigned_worker_id IS NULL AND status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"assigned_worker_id": workerID,
			"status":             model.StatusConfirmed,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *pickupRepository) CountByWorkerAndStatuses(ctx context.Context, workerID uuid.UUID, statuses []model.PickupStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Pickup{}).
		Where("assigned_worker_id = ? AND status IN ?", workerID, statuses).
		Count(&count).Error
	return count, err
}

func (r *pickupRepository) SumWeightByWorkerCompleted(ctx context.Context, workerID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.Pickup{}).
		Select("COALESCE(SUM(actual_weight), 0)").
		Where("assigned_worker_id = ? AND status = ?", workerID, model.StatusCompleted).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *pickupRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).Model(&model.Pickup{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error
	return counts, err
}

func (r *pickupRepository) SumCompletedWeight(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.Pickup{}).
		Select("COALESCE(SUM(actual_weight), 0)").
		Where("status = ?", model.StatusCompleted).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// WithTransaction executes fn within a database transaction, handing
// it repositories bound to the transaction connection.
func (r *pickupRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, pickups PickupRepository, users UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &pickupRepository{db: tx}, &userRepository{db: tx})
	})
}
