package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ecoloop/internal/cache"
	"ecoloop/internal/errors"
	"ecoloop/internal/lifecycle"
	"ecoloop/internal/model"
	"ecoloop/internal/repository"
)

// LifecycleService owns every status and assignment mutation of a
// pickup. Each operation runs as a single database transaction over
// the pickup row and the affected worker rows, so the worker counters
// can never drift from the pickups table under a partial failure.
type LifecycleService interface {
	// AssignWorker assigns or reassigns a worker to a pickup
	// (admin-driven). Reassignment releases the previous worker's
	// assignment slot and resets the pickup to confirmed.
	AssignWorker(ctx context.Context, pickupID, workerID uuid.UUID) (*model.Pickup, error)
	// ClaimPickup lets a worker take an unassigned pending pickup.
	// The claim is a single conditional update; under a concurrent
	// double claim exactly one caller wins.
	ClaimPickup(ctx context.Context, pickupID, workerID uuid.UUID) (*model.Pickup, error)
	// AdvanceStatus moves a pickup along the normal worker path
	// (confirmed -> in-progress -> completed).
	AdvanceStatus(ctx context.Context, pickupID, workerID uuid.UUID, next model.PickupStatus) (*model.Pickup, error)
	// OverrideStatus sets any status directly (admin-driven),
	// keeping worker bookkeeping consistent with the change.
	OverrideStatus(ctx context.Context, pickupID uuid.UUID, next model.PickupStatus) (*model.Pickup, error)
	// CancelOwnPickup lets a customer cancel their own pickup while
	// it is still pending.
	CancelOwnPickup(ctx context.Context, pickupID, userID uuid.UUID) (*model.Pickup, error)
	// SetActualWeight records the worker-measured weight. Edits after
	// completion adjust the worker's collected-weight aggregate by
	// the difference.
	SetActualWeight(ctx context.Context, pickupID, workerID uuid.UUID, weight decimal.Decimal) (*model.Pickup, error)
	// SetPrice records the quoted price and who quoted it.
	SetPrice(ctx context.Context, pickupID, workerID uuid.UUID, price decimal.Decimal) (*model.Pickup, error)
	// AvailablePickups returns the claimable pool.
	AvailablePickups(ctx context.Context) ([]model.Pickup, error)
	// WorkerPickups returns every pickup ever assigned to the worker.
	WorkerPickups(ctx context.Context, workerID uuid.UUID) ([]model.Pickup, error)
}

type lifecycleService struct {
	pickupRepo repository.PickupRepository
	userRepo   repository.UserRepository
	cache      *cache.Client
}

// NewLifecycleService creates a new lifecycle service.
func NewLifecycleService(
	pickupRepo repository.PickupRepository,
	userRepo repository.UserRepository,
	cache *cache.Client,
) LifecycleService {
	return &lifecycleService{
		pickupRepo: pickupRepo,
		userRepo:   userRepo,
		cache:      cache,
	}
}

func (s *lifecycleService) invalidate(ctx context.Context, pickupID uuid.UUID) {
	_ = s.cache.Delete(ctx, fmt.Sprintf("pickup:%s", pickupID.String()))
}

// applyDeltas adjusts a worker's counters inside the transaction.
func applyDeltas(ctx context.Context, users repository.UserRepository, workerID uuid.UUID, d lifecycle.StatDeltas) error {
	if d.IsZero() {
		return nil
	}
	return users.AdjustWorkerStats(ctx, workerID, d.Assigned, d.Completed, d.Weight)
}

// loadApprovedWorker fetches the user and verifies it is an approved
// worker. notFoundErr lets callers distinguish "worker id invalid"
// (admin assignment) from "caller is not a worker" (self-claim).
func loadApprovedWorker(ctx context.Context, users repository.UserRepository, workerID uuid.UUID, notFoundErr error) (*model.User, error) {
	worker, err := users.FindByID(ctx, workerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundErr
		}
		return nil, fmt.Errorf("load worker: %w", err)
	}
	if !worker.IsWorker() {
		return nil, notFoundErr
	}
	if !worker.Approved {
		return nil, errors.ErrWorkerNotApproved
	}
	return worker, nil
}

func (s *lifecycleService) AssignWorker(ctx context.Context, pickupID, workerID uuid.UUID) (*model.Pickup, error) {
	var result *model.Pickup
	err := s.pickupRepo.WithTransaction(ctx, func(ctx context.Context, pickups repository.PickupRepository, users repository.UserRepository) error {
		if _, err := loadApprovedWorker(ctx, users, workerID, errors.ErrWorkerNotFound); err != nil {
			return err
		}

		pickup, err := pickups.FindByIDForUpdate(ctx, pickupID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrPickupNotFound
			}
			return fmt.Errorf("load pickup: %w", err)
		}
		if lifecycle.IsTerminal(pickup.Status) {
			return errors.ErrPickupTerminal
		}

		prev := pickup.Status
		if pickup.AssignedWorkerID != nil && *pickup.AssignedWorkerID != workerID {
			// Release the previous worker's slot before handing the
			// pickup over.
			release := lifecycle.ComputeStatDeltas(prev, model.StatusPending, pickup.ActualWeight)
			if err := applyDeltas(ctx, users, *pickup.AssignedWorkerID, release); err != nil {
				return fmt.Errorf("release previous worker: %w", err)
			}
			prev = model.StatusPending
		}

		pickup.AssignedWorkerID = &workerID
		pickup.Status = model.StatusConfirmed
		if err := applyDeltas(ctx, users, workerID, lifecycle.ComputeStatDeltas(prev, model.StatusConfirmed, pickup.ActualWeight)); err != nil {
			return fmt.Errorf("credit new worker: %w", err)
		}
		if err := pickups.Update(ctx, pickup); err != nil {
			return fmt.Errorf("update pickup: %w", err)
		}
		result = pickup
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, pickupID)
	return result, nil
}

func (s *lifecycleService) ClaimPickup(ctx context.Context, pickupID, workerID uuid.UUID) (*model.Pickup, error) {
	var result *model.Pickup
	err := s.pickupRepo.WithTransaction(ctx, func(ctx context.Context, pickups repository.PickupRepository, users repository.UserRepository) error {
		if _, err := loadApprovedWorker(ctx, users, workerID, errors.ErrNotAWorker); err != nil {
			return err
		}

		claimed, err := pickups.ClaimIfAvailable(ctx, pickupID, workerID)
		if err != nil {
			return fmt.Errorf("claim pickup: %w", err)
		}
		if !claimed {
			// Zero rows matched: the pickup is gone, taken, or no
			// longer pending. Re-read to report which.
			pickup, err := pickups.FindByID(ctx, pickupID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return errors.ErrPickupNotFound
				}
				return fmt.Errorf("load pickup: %w", err)
			}
			if pickup.AssignedWorkerID != nil {
				return errors.ErrPickupAlreadyAssigned
			}
			return errors.ErrPickupNotAvailable
		}

		if err := users.AdjustWorkerStats(ctx, workerID, 1, 0, decimal.Zero); err != nil {
			return fmt.Errorf("credit worker: %w", err)
		}
		pickup, err := pickups.FindByID(ctx, pickupID)
		if err != nil {
			return fmt.Errorf("reload pickup: %w", err)
		}
		result = pickup
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, pickupID)
	return result, nil
}

func (s *lifecycleService) AdvanceStatus(ctx context.Context, pickupID, workerID uuid.UUID, next model.PickupStatus) (*model.Pickup, error) {
	if !model.ValidStatus(next) {
		return nil, errors.ErrInvalidStatus
	}
	var result *model.Pickup
	err := s.pickupRepo.WithTransaction(ctx, func(ctx context.Context, pickups repository.PickupRepository, users repository.UserRepository) error {
		pickup, err := pickups.FindByIDForUpdate(ctx, pickupID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrPickupNotFound
			}
			return fmt.Errorf("load pickup: %w", err)
		}
		if !pickup.IsAssignedTo(workerID) {
			return errors.ErrNotAssignedWorker
		}
		if err := lifecycle.CanTransition(pickup.Status, next, lifecycle.ActorWorker); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrInvalidTransition, err)
		}
		if next == model.StatusCompleted {
			if !pickup.ActualWeight.IsPositive() || !pickup.Price.IsPositive() {
				return errors.ErrCompletionNotReady
			}
			if pickup.CompletedAt == nil {
				now := time.Now()
				pickup.CompletedAt = &now
			}
		}

		if err := applyDeltas(ctx, users, workerID, lifecycle.ComputeStatDeltas(pickup.Status, next, pickup.ActualWeight)); err != nil {
			return fmt.Errorf("adjust worker stats: %w", err)
		}
		pickup.Status = next
		if err := pickups.Update(ctx, pickup); err != nil {
			return fmt.Errorf("update pickup: %w", err)
		}
		result = pickup
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, pickupID)
	return result, nil
}

func (s *lifecycleService) OverrideStatus(ctx context.Context, pickupID uuid.UUID, next model.PickupStatus) (*model.Pickup, error) {
	if !model.ValidStatus(next) {
		return nil, errors.ErrInvalidStatus
	}
	var result *model.Pickup
	err := s.pickupRepo.WithTransaction(ctx, func(ctx context.Context, pickups repository.PickupRepository, users repository.UserRepository) error {
		pickup, err := pickups.FindByIDForUpdate(ctx, pickupID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrPickupNotFound
			}
			return fmt.Errorf("load pickup: %w", err)
		}
		prev := pickup.Status
		if prev == next {
			result = pickup
			return nil
		}

		// Overrides bypass the transition table but not the
		// bookkeeping: the worker's counters follow the status change
		// in both directions.
		if pickup.AssignedWorkerID != nil {
			if err := applyDeltas(ctx, users, *pickup.AssignedWorkerID, lifecycle.ComputeStatDeltas(prev, next, pickup.ActualWeight)); err != nil {
				return fmt.Errorf("adjust worker stats: %w", err)
			}
		}
		if next == model.StatusPending {
			// A pending pickup is by definition unassigned.
			pickup.AssignedWorkerID = nil
		}
		switch {
		case next == model.StatusCompleted && pickup.CompletedAt == nil:
			now := time.Now()
			pickup.CompletedAt = &now
		case prev == model.StatusCompleted && next != model.StatusCompleted:
			pickup.CompletedAt = nil
		}
		pickup.Status = next
		if err := pickups.Update(ctx, pickup); err != nil {
			return fmt.Errorf("update pickup: %w", err)
		}
		result = pickup
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, pickupID)
	return result, nil
}

func (s *lifecycleService) CancelOwnPickup(ctx context.Context, pickupID, userID uuid.UUID) (*model.Pickup, error) {
	var result *model.Pickup
	err := s.pickupRepo.WithTransaction(ctx, func(ctx context.Context, pickups repository.PickupRepository, users repository.UserRepository) error {
		pickup, err := pickups.FindByIDForUpdate(ctx, pickupID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrPickupNotFound
			}
			return fmt.Errorf("load pickup: %w", err)
		}
		if pickup.UserID != userID {
			return errors.ErrNotPickupOwner
		}
		if err := lifecycle.CanTransition(pickup.Status, model.StatusCancelled, lifecycle.ActorCustomer); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrInvalidTransition, err)
		}
		// Customers may only cancel pending pickups, which are
		// unassigned, so no counters move here.
		pickup.Status = model.StatusCancelled
		if err := pickups.Update(ctx, pickup); err != nil {
			return fmt.Errorf("update pickup: %w", err)
		}
		result = pickup
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, pickupID)
	return result, nil
}

func (s *lifecycleService) SetActualWeight(ctx context.Context, pickupID, workerID uuid.UUID, weight decimal.Decimal) (*model.Pickup, error) {
	if !weight.IsPositive() {
		return nil, errors.ErrInvalidWeight
	}
	var result *model.Pickup
	err := s.pickupRepo.WithTransaction(ctx, func(ctx context.Context, pickups repository.PickupRepository, users repository.UserRepository) error {
		pickup, err := pickups.FindByIDForUpdate(ctx, pickupID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrPickupNotFound
			}
			return fmt.Errorf("load pickup: %w", err)
		}
		if !pickup.IsAssignedTo(workerID) {
			return errors.ErrNotAssignedWorker
		}

		if pickup.Status == model.StatusCompleted {
			// The completion transition already banked the old weight
			// into the worker's aggregate; apply only the difference.
			delta := weight.Sub(pickup.ActualWeight)
			if err := users.AdjustWorkerStats(ctx, workerID, 0, 0, delta); err != nil {
				return fmt.Errorf("adjust collected weight: %w", err)
			}
		}
		pickup.ActualWeight = weight
		if err := pickups.Update(ctx, pickup); err != nil {
			return fmt.Errorf("update pickup: %w", err)
		}
		result = pickup
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, pickupID)
	return result, nil
}

func (s *lifecycleService) SetPrice(ctx context.Context, pickupID, workerID uuid.UUID, price decimal.Decimal) (*model.Pickup, error) {
	if price.IsNegative() {
		return nil, errors.ErrInvalidPrice
	}
	var result *model.Pickup
	err := s.pickupRepo.WithTransaction(ctx, func(ctx context.Context, pickups repository.PickupRepository, users repository.UserRepository) error {
		pickup, err := pickups.FindByIDForUpdate(ctx, pickupID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrPickupNotFound
			}
			return fmt.Errorf("load pickup: %w", err)
		}
		if !pickup.IsAssignedTo(workerID) {
			return errors.ErrNotAssignedWorker
		}
		pickup.Price = price
		pickup.PriceAddedByID = &workerID
		if err := pickups.Update(ctx, pickup); err != nil {
			return fmt.Errorf("update pickup: %w", err)
		}
		result = pickup
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, pickupID)
	return result, nil
}

func (s *lifecycleService) AvailablePickups(ctx context.Context) ([]model.Pickup, error) {
	return s.pickupRepo.ListAvailable(ctx)
}

func (s *lifecycleService) WorkerPickups(ctx context.Context, workerID uuid.UUID) ([]model.Pickup, error) {
	return s.pickupRepo.ListByWorker(ctx, workerID)
}
