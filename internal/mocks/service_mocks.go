// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guttosm/farepath-service/internal/domain/dto"
	"github.com/guttosm/farepath-service/internal/domain/model"
)

// MockSearchProfileService shares its method set with the repository mock.
type MockSearchProfileService = MockSearchProfilesRepositoryInterface

type MockPricingService struct {
	mock.Mock
}

func (m *MockPricingService) Price(ctx context.Context, req *dto.PriceRequest) (*model.PricingResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PricingResult), args.Error(1)
}

func (m *MockPricingService) InvalidateCache() {
	m.Called()
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(operator string, roles []string) (*dto.TokenResponse, error) {
	args := m.Called(operator, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TokenResponse), args.Error(1)
}

func (m *MockTokenService) Validate(tokenString string) (*dto.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Claims), args.Error(1)
}

type MockRecordService struct {
	mock.Mock
}

func (m *MockRecordService) Record(rec *model.PricingRecord) bool {
	return m.Called(rec).Bool(0)
}

func (m *MockRecordService) Create(ctx context.Context, rec *model.PricingRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockRecordService) Query(ctx context.Context, opts model.RecordQueryOptions) ([]*model.PricingRecord, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PricingRecord), args.Error(1)
}

func (m *MockRecordService) Count(ctx context.Context, opts model.RecordQueryOptions) (int64, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecordService) Stop() {
	m.Called()
}
