package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ecoloop/internal/cache"
	"ecoloop/internal/errors"
	"ecoloop/internal/model"
	"ecoloop/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// activeStatuses are the statuses that occupy a worker's assignment slot.
var activeStatuses = []model.PickupStatus{model.StatusConfirmed, model.StatusInProgress}

// StatDrift reports the difference between a worker's stored counters
// and the values recomputed from the pickups table.
type StatDrift struct {
	WorkerID          uuid.UUID       `json:"worker_id"`
	Name              string          `json:"name"`
	StoredAssigned    int             `json:"stored_assigned"`
	ActualAssigned    int             `json:"actual_assigned"`
	StoredCompleted   int             `json:"stored_completed"`
	ActualCompleted   int             `json:"actual_completed"`
	StoredWeight      decimal.Decimal `json:"stored_weight"`
	ActualWeight      decimal.Decimal `json:"actual_weight"`
	Corrected         bool            `json:"corrected"`
}

// DashboardStats aggregates platform-wide counts for the admin view.
type DashboardStats struct {
	PickupsByStatus      []repository.StatusCount `json:"pickups_by_status"`
	TotalPickups         int64                    `json:"total_pickups"`
	TotalCustomers       int64                    `json:"total_customers"`
	TotalWorkers         int64                    `json:"total_workers"`
	TotalWeightCollected decimal.Decimal          `json:"total_weight_collected"`
}

// UserService exposes user administration and worker-statistic
// operations.
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	ListWorkers(ctx context.Context) ([]model.User, error)
	ListPendingWorkers(ctx context.Context) ([]model.User, error)
	ApproveWorker(ctx context.Context, workerID uuid.UUID) (*model.User, error)
	RejectWorker(ctx context.Context, workerID uuid.UUID) error
	ChangeRole(ctx context.Context, userID uuid.UUID, role model.Role) (*model.User, error)
	// ReconcileWorkerStats recomputes the worker's counters from the
	// pickups table and corrects any drift.
	ReconcileWorkerStats(ctx context.Context, workerID uuid.UUID) (*StatDrift, error)
	ReconcileAllWorkers(ctx context.Context) ([]StatDrift, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
}

type userService struct {
	repo       repository.UserRepository
	pickupRepo repository.PickupRepository
	cache      *cache.Client
}

// NewUserService builds a UserService with repositories and cache.
func NewUserService(repo repository.UserRepository, pickupRepo repository.PickupRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, pickupRepo: pickupRepo, cache: cache}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id.String())
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

func (s *userService) ListWorkers(ctx context.Context) ([]model.User, error) {
	return s.repo.ListByRole(ctx, model.RoleWorker)
}

func (s *userService) ListPendingWorkers(ctx context.Context) ([]model.User, error) {
	return s.repo.ListUnapprovedWorkers(ctx)
}

func (s *userService) findWorker(ctx context.Context, workerID uuid.UUID) (*model.User, error) {
	worker, err := s.repo.FindByID(ctx, workerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrWorkerNotFound
		}
		return nil, fmt.Errorf("load worker: %w", err)
	}
	if !worker.IsWorker() {
		return nil, errors.ErrWorkerNotFound
	}
	return worker, nil
}

func (s *userService) ApproveWorker(ctx context.Context, workerID uuid.UUID) (*model.User, error) {
	worker, err := s.findWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if worker.Approved {
		return nil, errors.ErrWorkerAlreadyApproved
	}
	worker.Approved = true
	if err := s.repo.Update(ctx, worker); err != nil {
		return nil, fmt.Errorf("approve worker: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(workerID))
	return worker, nil
}

// RejectWorker removes a worker application. Only unapproved workers
// without active assignments can be rejected.
func (s *userService) RejectWorker(ctx context.Context, workerID uuid.UUID) error {
	worker, err := s.findWorker(ctx, workerID)
	if err != nil {
		return err
	}
	if worker.Approved {
		return errors.ErrWorkerAlreadyApproved
	}
	active, err := s.pickupRepo.CountByWorkerAndStatuses(ctx, workerID, activeStatuses)
	if err != nil {
		return fmt.Errorf("count active assignments: %w", err)
	}
	if active > 0 {
		return errors.ErrWorkerHasActiveWork
	}
	if err := s.repo.Delete(ctx, workerID); err != nil {
		return fmt.Errorf("delete worker: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(workerID))
	return nil
}

func (s *userService) ChangeRole(ctx context.Context, userID uuid.UUID, role model.Role) (*model.User, error) {
	if !model.ValidRole(role) {
		return nil, errors.ErrInvalidRole
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user.Role == role {
		return user, nil
	}
	if user.IsWorker() {
		active, err := s.pickupRepo.CountByWorkerAndStatuses(ctx, userID, activeStatuses)
		if err != nil {
			return nil, fmt.Errorf("count active assignments: %w", err)
		}
		if active > 0 {
			return nil, errors.ErrWorkerHasActiveWork
		}
	}
	user.Role = role
	// Role changes are admin-initiated, which implies approval.
	user.Approved = true
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("change role: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(userID))
	return user, nil
}

func (s *userService) ReconcileWorkerStats(ctx context.Context, workerID uuid.UUID) (*StatDrift, error) {
	worker, err := s.findWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, worker)
}

func (s *userService) ReconcileAllWorkers(ctx context.Context) ([]StatDrift, error) {
	workers, err := s.repo.ListByRole(ctx, model.RoleWorker)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	drifts := make([]StatDrift, 0, len(workers))
	for i := range workers {
		drift, err := s.reconcile(ctx, &workers[i])
		if err != nil {
			return drifts, err
		}
		drifts = append(drifts, *drift)
	}
	return drifts, nil
}

func (s *userService) reconcile(ctx context.Context, worker *model.User) (*StatDrift, error) {
	assigned, err := s.pickupRepo.CountByWorkerAndStatuses(ctx, worker.ID, activeStatuses)
	if err != nil {
		return nil, fmt.Errorf("count assigned: %w", err)
	}
	completedCount, err := s.pickupRepo.CountByWorkerAndStatuses(ctx, worker.ID, []model.PickupStatus{model.StatusCompleted})
	if err != nil {
		return nil, fmt.Errorf("count completed: %w", err)
	}
	weight, err := s.pickupRepo.SumWeightByWorkerCompleted(ctx, worker.ID)
	if err != nil {
		return nil, fmt.Errorf("sum collected weight: %w", err)
	}

	drift := &StatDrift{
		WorkerID:        worker.ID,
		Name:            worker.Name,
		StoredAssigned:  worker.AssignedPickups,
		ActualAssigned:  int(assigned),
		StoredCompleted: worker.CompletedPickups,
		ActualCompleted: int(completedCount),
		StoredWeight:    worker.TotalWeightCollected,
		ActualWeight:    weight,
	}
	if drift.StoredAssigned == drift.ActualAssigned &&
		drift.StoredCompleted == drift.ActualCompleted &&
		drift.StoredWeight.Equal(drift.ActualWeight) {
		return drift, nil
	}

	if err := s.repo.SetWorkerStats(ctx, worker.ID, drift.ActualAssigned, drift.ActualCompleted, drift.ActualWeight); err != nil {
		return nil, fmt.Errorf("correct worker stats: %w", err)
	}
	drift.Corrected = true
	_ = s.cache.Delete(ctx, s.cacheKey(worker.ID))
	return drift, nil
}

func (s *userService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	byStatus, err := s.pickupRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count pickups: %w", err)
	}
	var total int64
	for _, sc := range byStatus {
		total += sc.Count
	}
	customers, err := s.repo.CountByRole(ctx, model.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	workers, err := s.repo.CountByRole(ctx, model.RoleWorker)
	if err != nil {
		return nil, fmt.Errorf("count workers: %w", err)
	}
	weight, err := s.pickupRepo.SumCompletedWeight(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum collected weight: %w", err)
	}
	return &DashboardStats{
		PickupsByStatus:      byStatus,
		TotalPickups:         total,
		TotalCustomers:       customers,
		TotalWorkers:         workers,
		TotalWeightCollected: weight,
	}, nil
}
