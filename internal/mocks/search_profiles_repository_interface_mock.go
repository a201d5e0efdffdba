// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/farepath-service/internal/domain/model"
)

type MockSearchProfilesRepositoryInterface struct {
	mock.Mock
}

func (m *MockSearchProfilesRepositoryInterface) GetActive(ctx context.Context) (*model.SearchProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SearchProfile), args.Error(1)
}

func (m *MockSearchProfilesRepositoryInterface) Create(ctx context.Context, name string, settings model.SearchSettings, createdBy string) (*model.SearchProfile, error) {
	args := m.Called(ctx, name, settings, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SearchProfile), args.Error(1)
}

func (m *MockSearchProfilesRepositoryInterface) Update(ctx context.Context, id primitive.ObjectID, name string, settings model.SearchSettings, updatedBy string) (*model.SearchProfile, error) {
	args := m.Called(ctx, id, name, settings, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SearchProfile), args.Error(1)
}

func (m *MockSearchProfilesRepositoryInterface) List(ctx context.Context, limit int) ([]model.SearchProfile, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SearchProfile), args.Error(1)
}
