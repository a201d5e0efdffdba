// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guttosm/farepath-service/internal/domain/model"
)

type MockPricingRecordsRepositoryInterface struct {
	mock.Mock
}

func (m *MockPricingRecordsRepositoryInterface) Create(ctx context.Context, rec *model.PricingRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockPricingRecordsRepositoryInterface) CreateMany(ctx context.Context, recs []*model.PricingRecord) error {
	args := m.Called(ctx, recs)
	return args.Error(0)
}

func (m *MockPricingRecordsRepositoryInterface) Query(ctx context.Context, opts model.RecordQueryOptions) ([]*model.PricingRecord, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PricingRecord), args.Error(1)
}

func (m *MockPricingRecordsRepositoryInterface) Count(ctx context.Context, opts model.RecordQueryOptions) (int64, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).(int64), args.Error(1)
}
