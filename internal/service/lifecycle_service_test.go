package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "ecoloop/internal/errors"
	"ecoloop/internal/model"
	"ecoloop/internal/repository"
)

// MockPickupRepository is a mock implementation of PickupRepository.
// WithTransaction runs the callback against the mocks themselves, so
// expectations set on the mock cover the transactional path too.
type MockPickupRepository struct {
	mock.Mock
	users *MockUserRepository
}

func (m *MockPickupRepository) Create(ctx context.Context, pickup *model.Pickup) error {
	args := m.Called(ctx, pickup)
	return args.Error(0)
}

func (m *MockPickupRepository) Update(ctx context.Context, pickup *model.Pickup) error {
	args := m.Called(ctx, pickup)
	return args.Error(0)
}

func (m *MockPickupRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Pickup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pickup), args.Error(1)
}

func (m *MockPickupRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Pickup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pickup), args.Error(1)
}

func (m *MockPickupRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*model.Pickup, error) {
	args := m.Called(ctx, trackingNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pickup), args.Error(1)
}

func (m *MockPickupRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Pickup, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Pickup), args.Error(1)
}

func (m *MockPickupRepository) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]model.Pickup, error) {
	args := m.Called(ctx, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Pickup), args.Error(1)
}

func (m *MockPickupRepository) ListAll(ctx context.Context) ([]model.Pickup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Pickup), args.Error(1)
}

func (m *MockPickupRepository) ListAvailable(ctx context.Context) ([]model.Pickup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Pickup), args.Error(1)
}

func (m *MockPickupRepository) ClaimIfAvailable(ctx context.Context, id, workerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, workerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPickupRepository) CountByWorkerAndStatuses(ctx context.Context, workerID uuid.UUID, statuses []model.PickupStatus) (int64, error) {
	args := m.Called(ctx, workerID, statuses)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPickupRepository) SumWeightByWorkerCompleted(ctx context.Context, workerID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, workerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPickupRepository) CountByStatus(ctx context.Context) ([]repository.StatusCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.StatusCount), args.Error(1)
}

func (m *MockPickupRepository) SumCompletedWeight(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPickupRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, pickups repository.PickupRepository, users repository.UserRepository) error) error {
	return fn(ctx, m, m.users)
}

func newLifecycleMocks() (*MockPickupRepository, *MockUserRepository, LifecycleService) {
	mockUsers := new(MockUserRepository)
	mockPickups := &MockPickupRepository{users: mockUsers}
	svc := NewLifecycleService(mockPickups, mockUsers, nil)
	return mockPickups, mockUsers, svc
}

func approvedWorker(id uuid.UUID) *model.User {
	return &model.User{ID: id, Role: model.RoleWorker, Approved: true}
}

func nowPtr() *time.Time {
	now := time.Now()
	return &now
}

// decimalEq matches a decimal argument by value rather than by
// internal representation.
func decimalEq(want decimal.Decimal) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func TestLifecycleService_ClaimPickup(t *testing.T) {
	pickupID := uuid.New()
	workerID := uuid.New()

	t.Run("successful claim", func(t *testing.T) {
		mockPickups, mockUsers, svc := newLifecycleMocks()
		claimed := &model.Pickup{ID: pickupID, Status: model.StatusConfirmed, AssignedWorkerID: &workerID}

		mockUsers.On("FindByID", mock.Anything, workerID).Return(approvedWorker(workerID), nil)
		mockPickups.On("ClaimIfAvailable", mock.Anything, pickupID, workerID).Return(true, nil)
		mockUsers.On("AdjustWorkerStats", mock.Anything, workerID, 1, 0, decimalEq(decimal.Zero)).Return(nil)
		mockPickups.On("FindByID", mock.Anything, pickupID).Return(claimed, nil)

		pickup, err := svc.ClaimPickup(context.Background(), pickupID, workerID)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusConfirmed, pickup.Status)
		assert.Equal(t, workerID, *pickup.AssignedWorkerID)

		mockPickups.AssertExpectations(t)
		mockUsers.AssertExpectations(t)
	})

	t.Run("losing the race reports conflict", func(t *testing.T) {
		mockPickups, mockUsers, svc := newLifecycleMocks()
		rivalID := uuid.New()
		taken := &model.Pickup{ID: pickupID, Status: model.StatusConfirmed, AssignedWorkerID: &rivalID}

		mockUsers.On("FindByID", mock.Anything, workerID).Return(approvedWorker(workerID), nil)
		mockPickups.On("ClaimIfAvailable", mock.Anything, pickupID, workerID).Return(false, nil)
		mockPickups.On("FindByID", mock.Anything, pickupID).Return(taken, nil)

		_, err := svc.ClaimPickup(context.Background(), pickupID, workerID)
		assert.ErrorIs(t, err, apperrors.ErrPickupAlreadyAssigned)
		mockUsers.AssertNotCalled(t, "AdjustWorkerStats", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cancelled pickup is not claimable", func(t *testing.T) {
		mockPickups, mockUsers, svc := newLifecycleMocks()
		cancelled := &model.Pickup{ID: pickupID, Status: model.StatusCancelled}

		mockUsers.On("FindByID", mock.Anything, workerID).Return(approvedWorker(workerID), nil)
		mockPickups.On("ClaimIfAvailable", mock.Anything, pickupID, workerID).Return(false, nil)
		mockPickups.On("FindByID", mock.Anything, pickupID).Return(cancelled, nil)

		_, err := svc.ClaimPickup(context.Background(), pickupID, workerID)
		assert.ErrorIs(t, err, apperrors.ErrPickupNotAvailable)
	})

	t.Run("unapproved worker cannot claim", func(t *testing.T) {
		_, mockUsers, svc := newLifecycleMocks()
		mockUsers.On("FindByID", mock.Anything, workerID).Return(
			&model.User{ID: workerID, Role: model.RoleWorker, Approved: false}, nil)

		_, err := svc.ClaimPickup(context.Background(), pickupID, workerID)
		assert.ErrorIs(t, err, apperrors.ErrWorkerNotApproved)
	})

	t.Run("customer cannot claim", func(t *testing.T) {
		_, mockUsers, svc := newLifecycleMocks()
		mockUsers.On("FindByID", mock.Anything, workerID).Return(
			&model.User{ID: workerID, Role: model.RoleUser, Approved: true}, nil)

		_, err := svc.ClaimPickup(context.Background(), pickupID, workerID)
		assert.ErrorIs(t, err, apperrors.ErrNotAWorker)
	})
}

func TestLifecycleService_AssignWorker(t *testing.T) {
	pickupID := uuid.New()
	workerID := uuid.New()

	t.Run("assign pending pickup", func(t *testing.T) {
		mockPickups, mockUsers, svc := newLifecycleMocks()
		pending := &model.Pickup{ID: pickupID, Status: model.StatusPending}

		mockUsers.On("FindByID", mock.Anything, workerID).Return(approvedWorker(workerID), nil)
		mockPickups.On("FindByIDForUpdate", mock.Anything, pickupID).Return(pending, nil)
		mockUsers.On("AdjustWorkerStats", mock.Anything, workerID, 1, 0, decimalEq(decimal.Zero)).Return(nil)
		mockPickups.On("Update", mock.Anything, mock.AnythingOfType("*model.Pickup")).Return(nil)

		pickup, err := svc.AssignWorker(context.Background(), pickupID, workerID)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusConfirmed, pickup.Status)
		assert.Equal(t, workerID, *pickup.AssignedWorkerID)

		mockUsers.AssertExpectations(t)
		mockPickups.AssertExpectations(t)
	})

	t.Run("reassignment releases the previous worker", func(t *testing.T) {
		mockPickups, mockUsers, svc := newLifecycleMocks()
		prevWorkerID := uuid.New()
		inProgress := &model.Pickup{ID: pickupID, Status: model.StatusInProgress, AssignedWorkerID: &prevWorkerID}

		mockUsers.On("FindByID", mock.Anything, workerID).Return(approvedWorker(workerID), nil)
		mockPickups.On("FindByIDForUpdate", mock.Anything, pickupID).Return(inProgress, nil)
		// The outgoing worker gives the slot back, the incoming one takes it.
		mockUsers.On("AdjustWorkerStats", mock.Anything, prevWorkerID, -1, 0, decimalEq(decimal.Zero)).Return(nil)
		mockUsers.On("AdjustWorkerStats", mock.Anything, workerID, 1, 0, decimalEq(decimal.Zero)).Return(nil)
		mockPickups.On("Update", mock.Anything, mock.AnythingOfType("*model.Pickup")).Return(nil)

		pickup, err := svc.AssignWorker(context.Background(), pickupID, workerID)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusConfirmed, pickup.Status)
		assert.Equal(t, workerID, *pickup.AssignedWorkerID)

		mockUsers.AssertExpectations(t)
	})

	t.Run("terminal pickup rejected", func(t *testing.T) {
		mockPickups, mockUsers, svc := newLifecycleMocks()
		done := &model.Pickup{ID: pickupID, Status: model.StatusCompleted}

		mockUsers.On("FindByID", mock.Anything, workerID).Return(approvedWorker(workerID), nil)
		mockPickups.On("FindByIDForUpdate", mock.Anything, pickupID).Return(done, nil)

		_, err := svc.AssignWorker(context.Background(), pickupID, workerID)
		assert.ErrorIs(t, err, apperrors.ErrPickupTerminal)
	})

	t.Run("unknown worker rejected", func(t *testing.T) {
		_, mockUsers, svc := newLifecycleMocks()
		mockUsers.On("FindByID", mock.Anything, workerID).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.AssignWorker(context.Background(), pickupID, workerID)
		assert.ErrorIs(t, err, apperrors.ErrWorkerNotFound)
	})
}

func TestLifecycleService_AdvanceStatus(t *testing.T) {
	pickupID := uuid.New()
	workerID := uuid.New()

	t.Run("confirmed to in-progress", func(t *testing.T) {
		mockPickups, mockUsers, svc := newLifecycleMocks()
		confirmed := &model.Pickup{ID: pickupID, Status: model.StatusConfirmed, AssignedWorkerID: &workerID}

		mockPickups.On("FindByIDForUpdate", mock.Anything, pickupID).Return(confirmed, nil)
		mockPickups.On("Update", mock.Anything, mock.AnythingOfType("*model.Pickup")).Return(nil)

		pickup, err := svc.AdvanceStatus(context.Background(), pickupID, workerID, model.StatusInProgress)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusInProgress, pickup.Status)
		// The slot count does not change between the two active states.
		mockUsers.AssertNotCalled(t, "AdjustWorkerStats", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("completion credits the worker", func(t *testing.T) {
		mockPickups, mockUsers, svc := newLifecycleMocks()
		weight := decimal.NewFromFloat(18.5)
		inProgress := &model.Pickup{
			ID:               pickupID,
			Status:           model.StatusInProgress,
			AssignedWorkerID: &workerID,
			ActualWeight:     weight,
			Price:            decimal.NewFromInt(350),
		}

		mockPickups.On("FindByIDForUpdate", mock.Anything, pickupID).Return(inProgress, nil)
		mockUsers.On("AdjustWorkerStats", mock.Anything, workerID, -1, 1, decimalEq(weight)).Return(nil)
		mockPickups.On("Update", mock.Anything, mock.AnythingOfType("*model.Pickup")).Return(nil)

		pickup, err := svc.AdvanceStatus(context.Background(), pickupID, workerID, model.StatusCompleted)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, pickup.Status)
		assert.NotNil(t, pickup.CompletedAt)

		mockUsers.AssertExpectations(t)
	})

	t.Run("completion requires weight and price", func(t *testing.T) {
		mockPickups, _, svc := newLifecycleMocks()
		inProgress := &model.Pickup{
			ID:               pickupID,
			Status:           model.StatusInProgress,
			AssignedWorkerID: &workerID,
			ActualWeight:     decimal.NewFromFloat(18.5),
			// No price quoted yet.
		}

		mockPickups.On("FindByIDForUpdate", mock.Anything, pickupID).Return(inProgress, nil)

		_, err := svc.AdvanceStatus(context.Background(), pickupID, workerID, model.StatusCompleted)
		assert.ErrorIs(t, err, apperrors.ErrCompletionNotReady)
	})

	t.Run("cannot skip in-progress", func(t *testing.T) {
		mockPickups, _, svc := newLifecycleMocks()
		confirmed := &model.Pickup{ID: pickupID, Status: model.StatusConfirmed, AssignedWorkerID: &workerID}

		mockPickups.On("FindByIDForUpdate", mock.Anything, pickupID).Return(confirmed, nil)

		_, err := svc.AdvanceStatus(context.Background(), pickupID, workerID, model.StatusCompleted)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	})

	t.Run("double completion rejected", func(t *testing.T) {
		mockPickups, _, svc := newLifecycleMocks()
		done := &model.Pickup{
			ID:               pickupID,
			Status:           model.StatusCompleted,
			AssignedWorkerID: &workerID,
			ActualWeight:     decimal.NewFromFloat(18.5),
			Price:            decimal.NewFromInt(350),
		}

		mockPickups.On("FindByIDForUpdate", mock.Anything, pickupID).Return(done, nil)

		_, err := svc.AdvanceStatus(context.Background(), pickupID, workerID, model.StatusCompleted)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	})

	t.Run("only the assigned worker may advance", func(t *testing.T) {
		mockPickups, _, svc := newLifecycleMocks()
		otherWorkerID := uuid.New()
		confirmed := &model.Pickup{ID: pickupID, Status: model.StatusConfirmed, AssignedWorkerID: &otherWorkerID}

		mockPickups.On("FindByIDForUpdate", mock.Anything, pickupID).Return(confirmed, nil)

		_, err := svc.AdvanceStatus(context.Background(), pickupID, workerID, model.StatusInProgress)
		assert.ErrorIs(t, err, apperrors.ErrNotAssignedWorker)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		_, _, svc := newLifecycleMocks()
		_, err := svc.AdvanceStatus(context.Background(), pickupID, workerID, "shipped")
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
	})
}

func TestLifecycleService_OverrideStatus(t *testing.T) {
	pickupID := uuid.New()
	workerID := uuid.New()

	t.Run("override to pending unassigns the worker", func(t *testing.T) {
		mockPickups, mockUsers, svc := newLifecycleMocks()
		inProgress := &model.Pickup{ID: pickupID, Status: model.StatusInProgress, AssignedWorkerID: &workerID}

		mockPickups.On("FindByIDForUpdate", mock.Anything, pickupID).Return(inProgress, nil)
		mockUsers.On("AdjustWorkerStats", mock.Anything, workerID, -1, 0, decimalEq(decimal.Zero)).Return(nil)
		mockPickups.On("Update", mock.Anything, mock.AnythingOfType("*model.Pickup")).Return(nil)

		pickup, err := svc.OverrideStatus(context.Background(), pickupID, model.StatusPending)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusPending, pickup.Status)
		assert.Nil(t, pickup.AssignedWorkerID)

		mockUsers.AssertExpectations(t)
	})

	t.Run("reversing a completion takes the credit back", func(t *testing.T) {
		mockPickups, mockUsers, svc := newLifecycleMocks()
		weight := decimal.NewFromFloat(18.5)
		completedAt := nowPtr()
		done := &model.Pickup{
			ID:               pickupID,
			Status:           model.StatusCompleted,
			AssignedWorkerID: &workerID,
			ActualWeight:     weight,
			CompletedAt:      completedAt,
		}

		mockPickups.On("FindByIDForUpdate", mock.Anything, pickupID).Return(done, nil)
		mockUsers.On("AdjustWorkerStats", mock.Anything, workerID, 1, -1, decimalEq(weight.Neg())).Return(nil)
		mockPickups.On("Update", mock.Anything, mock.AnythingOfType("*model.Pickup")).Return(nil)

		pickup, err := svc.OverrideStatus(context.Background(), pickupID, model.StatusInProgress)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusInProgress, pickup.Status)
		assert.Nil(t, pickup.CompletedAt)

		mockUsers.AssertExpectations(t)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		mockPickups, mockUsers, svc := newLifecycleMocks()
		confirmed := &model.Pickup{ID: pickupID, Status: model.StatusConfirmed, AssignedWorkerID: &workerID}

		mockPickups.On("FindByIDForUpdate", mock.Anything, pickupID).Return(confirmed, nil)

		pickup, err := svc.OverrideStatus(context.Background(), pickupID, model.StatusConfirmed)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusConfirmed, pickup.Status)
		mockPickups.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		mockUsers.AssertNotCalled(t, "AdjustWorkerStats", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLifecycleService_CancelOwnPickup(t *testing.T) {
	pickupID := uuid.New()
	ownerID := uuid.New()

	t.Run("owner cancels pending pickup", func(t *testing.T) {
		mockPickups, _, svc := newLifecycleMocks()
		pending := &model.Pickup{ID: pickupID, UserID: ownerID, Status: model.StatusPending}

		mockPickups.On("FindByIDForUpdate", mock.Anything, pickupID).Return(pending, nil)
		mockPickups.On("Update", mock.Anything, mock.AnythingOfType("*model.Pickup")).Return(nil)

		pickup, err := svc.CancelOwnPickup(context.Background(), pickupID, ownerID)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, pickup.Status)
	})

	t.Run("non-owner rejected", func(t *testing.T) {
		mockPickups, _, svc := newLifecycleMocks()
		pending := &model.Pickup{ID: pickupID, UserID: ownerID, Status: model.StatusPending}

		mockPickups.On("FindByIDForUpdate", mock.Anything, pickupID).Return(pending, nil)

		_, err := svc.CancelOwnPickup(context.Background(), pickupID, uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrNotPickupOwner)
	})

	t.Run("cannot cancel after assignment", func(t *testing.T) {
		mockPickups, _, svc := newLifecycleMocks()
		workerID := uuid.New()
		confirmed := &model.Pickup{ID: pickupID, UserID: ownerID, Status: model.StatusConfirmed, AssignedWorkerID: &workerID}

		mockPickups.On("FindByIDForUpdate", mock.Anything, pickupID).Return(confirmed, nil)

		_, err := svc.CancelOwnPickup(context.Background(), pickupID, ownerID)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	})
}

func TestLifecycleService_SetActualWeight(t *testing.T) {
	pickupID := uuid.New()
	workerID := uuid.New()

	t.Run("record weight before completion", func(t *testing.T) {
		mockPickups, mockUsers, svc := newLifecycleMocks()
		inProgress := &model.Pickup{ID: pickupID, Status: model.StatusInProgress, AssignedWorkerID: &workerID}

		mockPickups.On("FindByIDForUpdate", mock.Anything, pickupID).Return(inProgress, nil)
		mockPickups.On("Update", mock.Anything, mock.AnythingOfType("*model.Pickup")).Return(nil)

		pickup, err := svc.SetActualWeight(context.Background(), pickupID, workerID, decimal.NewFromFloat(22.75))
		assert.NoError(t, err)
		assert.True(t, pickup.ActualWeight.Equal(decimal.NewFromFloat(22.75)))
		// Weight only feeds the aggregate at completion.
		mockUsers.AssertNotCalled(t, "AdjustWorkerStats", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("correcting weight after completion adjusts the aggregate", func(t *testing.T) {
		mockPickups, mockUsers, svc := newLifecycleMocks()
		done := &model.Pickup{
			ID:               pickupID,
			Status:           model.StatusCompleted,
			AssignedWorkerID: &workerID,
			ActualWeight:     decimal.NewFromInt(20),
		}

		mockPickups.On("FindByIDForUpdate", mock.Anything, pickupID).Return(done, nil)
		mockUsers.On("AdjustWorkerStats", mock.Anything, workerID, 0, 0, decimalEq(decimal.NewFromInt(5))).Return(nil)
		mockPickups.On("Update", mock.Anything, mock.AnythingOfType("*model.Pickup")).Return(nil)

		pickup, err := svc.SetActualWeight(context.Background(), pickupID, workerID, decimal.NewFromInt(25))
		assert.NoError(t, err)
		assert.True(t, pickup.ActualWeight.Equal(decimal.NewFromInt(25)))

		mockUsers.AssertExpectations(t)
	})

	t.Run("only the assigned worker may record weight", func(t *testing.T) {
		mockPickups, _, svc := newLifecycleMocks()
		otherWorkerID := uuid.New()
		inProgress := &model.Pickup{ID: pickupID, Status: model.StatusInProgress, AssignedWorkerID: &otherWorkerID}

		mockPickups.On("FindByIDForUpdate", mock.Anything, pickupID).Return(inProgress, nil)

		_, err := svc.SetActualWeight(context.Background(), pickupID, workerID, decimal.NewFromInt(10))
		assert.ErrorIs(t, err, apperrors.ErrNotAssignedWorker)
	})

	t.Run("weight must be positive", func(t *testing.T) {
		_, _, svc := newLifecycleMocks()
		_, err := svc.SetActualWeight(context.Background(), pickupID, workerID, decimal.Zero)
		assert.ErrorIs(t, err, apperrors.ErrInvalidWeight)
	})
}

func TestLifecycleService_SetPrice(t *testing.T) {
	pickupID := uuid.New()
	workerID := uuid.New()

	t.Run("quote records the author", func(t *testing.T) {
		mockPickups, _, svc := newLifecycleMocks()
		inProgress := &model.Pickup{ID: pickupID, Status: model.StatusInProgress, AssignedWorkerID: &workerID}

		mockPickups.On("FindByIDForUpdate", mock.Anything, pickupID).Return(inProgress, nil)
		mockPickups.On("Update", mock.Anything, mock.AnythingOfType("*model.Pickup")).Return(nil)

		pickup, err := svc.SetPrice(context.Background(), pickupID, workerID, decimal.NewFromInt(450))
		assert.NoError(t, err)
		assert.True(t, pickup.Price.Equal(decimal.NewFromInt(450)))
		assert.Equal(t, workerID, *pickup.PriceAddedByID)
	})

	t.Run("negative price rejected", func(t *testing.T) {
		_, _, svc := newLifecycleMocks()
		_, err := svc.SetPrice(context.Background(), pickupID, workerID, decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, apperrors.ErrInvalidPrice)
	})
}
