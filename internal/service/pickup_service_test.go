package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "ecoloop/internal/errors"
	"ecoloop/internal/model"
)

func validPickupInput() CreatePickupInput {
	return CreatePickupInput{
		Category:        model.CategoryITEquipment,
		Items:           []string{"laptop", "monitor"},
		PickupType:      model.PickupImmediate,
		EstimatedWeight: decimal.NewFromFloat(8.5),
		ContactName:     "Asha Kumar",
		ContactPhone:    "9876543210",
		Street:          "12 MG Road",
		City:            "Bengaluru",
		State:           "Karnataka",
		Pincode:         "560001",
	}
}

func TestPickupService_CreatePickup(t *testing.T) {
	userID := uuid.New()

	t.Run("successful creation", func(t *testing.T) {
		mockRepo := &MockPickupRepository{users: new(MockUserRepository)}
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Pickup")).Return(nil)

		svc := NewPickupService(mockRepo, nil)
		pickup, err := svc.CreatePickup(context.Background(), userID, validPickupInput())

		assert.NoError(t, err)
		assert.Equal(t, userID, pickup.UserID)
		assert.Equal(t, model.StatusPending, pickup.Status)
		assert.Nil(t, pickup.AssignedWorkerID)
		assert.True(t, strings.HasPrefix(pickup.TrackingNumber, "ECO"))
		mockRepo.AssertExpectations(t)
	})

	t.Run("tracking collision retries with a fresh number", func(t *testing.T) {
		mockRepo := &MockPickupRepository{users: new(MockUserRepository)}
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Pickup")).Return(gorm.ErrDuplicatedKey).Once()
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Pickup")).Return(nil).Once()

		svc := NewPickupService(mockRepo, nil)
		pickup, err := svc.CreatePickup(context.Background(), userID, validPickupInput())

		assert.NoError(t, err)
		assert.NotEmpty(t, pickup.TrackingNumber)
		mockRepo.AssertNumberOfCalls(t, "Create", 2)
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name          string
			mutate        func(*CreatePickupInput)
			expectedError error
		}{
			{
				name:          "unknown category",
				mutate:        func(in *CreatePickupInput) { in.Category = "furniture" },
				expectedError: apperrors.ErrInvalidCategory,
			},
			{
				name:          "no items",
				mutate:        func(in *CreatePickupInput) { in.Items = nil },
				expectedError: apperrors.ErrEmptyItems,
			},
			{
				name: "scheduled without a date",
				mutate: func(in *CreatePickupInput) {
					in.PickupType = model.PickupScheduled
					in.ScheduledTime = "10:00"
				},
				expectedError: apperrors.ErrScheduleRequired,
			},
			{
				name: "scheduled without a time",
				mutate: func(in *CreatePickupInput) {
					in.PickupType = model.PickupScheduled
					in.ScheduledDate = "2026-09-15"
				},
				expectedError: apperrors.ErrScheduleRequired,
			},
			{
				name:          "negative estimated weight",
				mutate:        func(in *CreatePickupInput) { in.EstimatedWeight = decimal.NewFromInt(-1) },
				expectedError: apperrors.ErrInvalidWeight,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mockRepo := &MockPickupRepository{users: new(MockUserRepository)}
				svc := NewPickupService(mockRepo, nil)

				input := validPickupInput()
				tt.mutate(&input)

				pickup, err := svc.CreatePickup(context.Background(), userID, input)
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, pickup)
				mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("empty pickup type defaults to immediate", func(t *testing.T) {
		mockRepo := &MockPickupRepository{users: new(MockUserRepository)}
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Pickup")).Return(nil)

		svc := NewPickupService(mockRepo, nil)
		input := validPickupInput()
		input.PickupType = ""

		pickup, err := svc.CreatePickup(context.Background(), userID, input)
		assert.NoError(t, err)
		assert.Equal(t, model.PickupImmediate, pickup.PickupType)
	})
}

func TestPickupService_GetPickup(t *testing.T) {
	pickupID := uuid.New()
	ownerID := uuid.New()
	workerID := uuid.New()

	pickup := &model.Pickup{
		ID:               pickupID,
		UserID:           ownerID,
		AssignedWorkerID: &workerID,
		Status:           model.StatusConfirmed,
	}

	tests := []struct {
		name          string
		requesterID   uuid.UUID
		requesterRole model.Role
		expectedError error
	}{
		{"owner may read", ownerID, model.RoleUser, nil},
		{"assigned worker may read", workerID, model.RoleWorker, nil},
		{"admin may read", uuid.New(), model.RoleAdmin, nil},
		{"stranger denied", uuid.New(), model.RoleUser, apperrors.ErrNotPickupOwner},
		{"foreign worker denied", uuid.New(), model.RoleWorker, apperrors.ErrNotPickupOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockPickupRepository{users: new(MockUserRepository)}
			mockRepo.On("FindByID", mock.Anything, pickupID).Return(pickup, nil)

			svc := NewPickupService(mockRepo, nil)
			got, err := svc.GetPickup(context.Background(), pickupID, tt.requesterID, tt.requesterRole)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, pickupID, got.ID)
			}
		})
	}

	t.Run("missing pickup", func(t *testing.T) {
		mockRepo := &MockPickupRepository{users: new(MockUserRepository)}
		mockRepo.On("FindByID", mock.Anything, pickupID).Return(nil, gorm.ErrRecordNotFound)

		svc := NewPickupService(mockRepo, nil)
		_, err := svc.GetPickup(context.Background(), pickupID, ownerID, model.RoleUser)
		assert.ErrorIs(t, err, apperrors.ErrPickupNotFound)
	})
}

func TestPickupService_TrackByNumber(t *testing.T) {
	t.Run("public view omits the owner", func(t *testing.T) {
		workerID := uuid.New()
		completedAt := nowPtr()
		pickup := &model.Pickup{
			ID:               uuid.New(),
			TrackingNumber:   "ECO1756700000000ABCD",
			UserID:           uuid.New(),
			Category:         model.CategoryBatteries,
			PickupType:       model.PickupScheduled,
			ScheduledDate:    "2026-09-10",
			ScheduledTime:    "14:00",
			Status:           model.StatusCompleted,
			AssignedWorkerID: &workerID,
			ContactName:      "Asha Kumar",
			ContactPhone:     "9876543210",
			City:             "Bengaluru",
			State:            "Karnataka",
			CompletedAt:      completedAt,
		}

		mockRepo := &MockPickupRepository{users: new(MockUserRepository)}
		mockRepo.On("FindByTrackingNumber", mock.Anything, pickup.TrackingNumber).Return(pickup, nil)

		svc := NewPickupService(mockRepo, nil)
		info, err := svc.TrackByNumber(context.Background(), pickup.TrackingNumber)

		assert.NoError(t, err)
		assert.Equal(t, pickup.TrackingNumber, info.TrackingNumber)
		assert.Equal(t, model.StatusCompleted, info.Status)
		assert.Equal(t, model.CategoryBatteries, info.Category)
		assert.Equal(t, "Bengaluru", info.City)
		assert.Equal(t, completedAt, info.CompletedAt)
	})

	t.Run("unknown tracking number", func(t *testing.T) {
		mockRepo := &MockPickupRepository{users: new(MockUserRepository)}
		mockRepo.On("FindByTrackingNumber", mock.Anything, "ECO000NOPE").Return(nil, gorm.ErrRecordNotFound)

		svc := NewPickupService(mockRepo, nil)
		_, err := svc.TrackByNumber(context.Background(), "ECO000NOPE")
		assert.ErrorIs(t, err, apperrors.ErrPickupNotFound)
	})
}
