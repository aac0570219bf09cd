package mongo

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tradeworks-payout-ledger/internal/domain/audit"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
)

type MockTrailRepository struct {
	mock.Mock
}

func (m *MockTrailRepository) Record(ctx context.Context, record *audit.TransitionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockTrailRepository) GetByEntityID(ctx context.Context, entityID uuid.UUID) ([]*audit.TransitionRecord, error) {
	args := m.Called(ctx, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.TransitionRecord), args.Error(1)
}

func newTestRecord() *audit.TransitionRecord {
	return audit.NewTransitionRecord(
		audit.EntityKindEligibility,
		uuid.New(),
		uuid.New(),
		string(shared.EligibilityStatusReady),
		string(shared.EligibilityStatusProcessing),
		decimal.NewFromInt(600),
		"ops@tradeworks.example",
		"",
		"corr1",
	)
}

func TestNewAuditTrailRepository(t *testing.T) {
	db := &mongo.Database{}
	logger := slog.Default()

	repo := NewAuditTrailRepository(logger, db)

	assert.NotNil(t, repo)
	assert.IsType(t, &AuditTrailRepository{}, repo)
}

func TestAuditTrailRepository_Record(t *testing.T) {
	record := newTestRecord()

	tests := []struct {
		name          string
		setupMocks    func(m *MockTrailRepository)
		expectedError error
	}{
		{
			name: "successful record",
			setupMocks: func(m *MockTrailRepository) {
				m.On("Record", mock.Anything, record).Return(nil)
			},
			expectedError: nil,
		},
		{
			name: "database error",
			setupMocks: func(m *MockTrailRepository) {
				m.On("Record", mock.Anything, record).Return(errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockTrailRepository{}
			tt.setupMocks(mockRepo)

			ctx := context.Background()
			err := mockRepo.Record(ctx, record)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuditTrailRepository_GetByEntityID(t *testing.T) {
	entityID := uuid.New()
	first := newTestRecord()
	first.EntityID = entityID
	second := newTestRecord()
	second.EntityID = entityID
	second.FromStatus = string(shared.EligibilityStatusProcessing)
	second.ToStatus = string(shared.EligibilityStatusPaid)

	t.Run("returns trail oldest first", func(t *testing.T) {
		mockRepo := &MockTrailRepository{}
		mockRepo.On("GetByEntityID", mock.Anything, entityID).
			Return([]*audit.TransitionRecord{first, second}, nil)

		records, err := mockRepo.GetByEntityID(context.Background(), entityID)
		assert.NoError(t, err)
		assert.Len(t, records, 2)
		assert.Equal(t, string(shared.EligibilityStatusReady), records[0].FromStatus)
		assert.Equal(t, string(shared.EligibilityStatusPaid), records[1].ToStatus)
		mockRepo.AssertExpectations(t)
	})

	t.Run("empty trail", func(t *testing.T) {
		mockRepo := &MockTrailRepository{}
		mockRepo.On("GetByEntityID", mock.Anything, entityID).
			Return([]*audit.TransitionRecord{}, nil)

		records, err := mockRepo.GetByEntityID(context.Background(), entityID)
		assert.NoError(t, err)
		assert.Empty(t, records)
		mockRepo.AssertExpectations(t)
	})
}
