package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ecoloop/internal/model"
)

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
	ListUnapprovedWorkers(ctx context.Context) ([]model.User, error)
	CountByRole(ctx context.Context, role model.Role) (int64, error)
	// AdjustWorkerStats applies relative deltas to the worker's
	// counters in a single UPDATE so concurrent adjustments never
	// clobber each other.
	AdjustWorkerStats(ctx context.Context, id uuid.UUID, assignedDelta, completedDelta int, weightDelta decimal.Decimal) error
	// SetWorkerStats overwrites the counters with absolute values
	// (used by reconciliation).
	SetWorkerStats(ctx context.Context, id uuid.UUID, assigned, completed int, weight decimal.Decimal) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDForUpdate finds a user by ID with a row-level lock.
func (r *userRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Set("gorm:query_option", "FOR UPDATE").
		Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Where("role = ?", role).
		Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) ListUnapprovedWorkers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).
		Where("role = ? AND approved = ?", model.RoleWorker, false).
		Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("role = ?", role).Count(&count).Error
	return count, err
}

func (r *userRepository) AdjustWorkerStats(ctx context.Context, id uuid.UUID, assignedDelta, completedDelta int, weightDelta decimal.Decimal) error {
	updates := map[string]interface{}{}
	if assignedDelta != 0 {
		// GREATEST guards against a decrement racing a reconcile.
		updates["assigned_pickups"] = gorm.Expr("GREATEST(assigned_pickups + ?, 0)", assignedDelta)
	}
	if completedDelta != 0 {
		updates["completed_pickups"] = gorm.Expr("GREATEST(completed_pickups + ?, 0)", completedDelta)
	}
	if !weightDelta.IsZero() {
		updates["total_weight_collected"] = gorm.Expr("total_weight_collected + ?", weightDelta)
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).Updates(updates).Error
}

func (r *userRepository) SetWorkerStats(ctx context.Context, id uuid.UUID, assigned, completed int, weight decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"assigned_pickups":       assigned,
			"completed_pickups":      completed,
			"total_weight_collected": weight,
		}).Error
}
