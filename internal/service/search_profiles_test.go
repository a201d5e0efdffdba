//go:build !integration

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/farepath-service/internal/domain/dto"
	"github.com/guttosm/farepath-service/internal/domain/model"
	"github.com/guttosm/farepath-service/internal/mocks"
	"github.com/guttosm/farepath-service/internal/repository"
)

func TestSearchProfileService_GetActive(t *testing.T) {
	repo := new(mocks.MockSearchProfilesRepositoryInterface)
	svc := NewSearchProfileService(repo)
	ctx := context.Background()
	profile := &model.SearchProfile{Name: "peak", Version: 2, Active: true}

	repo.On("GetActive", ctx).Return(profile, nil)

	got, err := svc.GetActive(ctx)

	require.NoError(t, err)
	assert.Equal(t, profile, got)
}

func TestSearchProfileService_Create(t *testing.T) {
	tests := []struct {
		name      string
		profile   string
		settings  model.SearchSettings
		setupMock func(*mocks.MockSearchProfilesRepositoryInterface)
		wantField string
		wantErr   error
	}{
		{
			name:     "creates profile",
			profile:  "  peak ",
			settings: model.SearchSettings{ShortCktCombCount: 500},
			setupMock: func(m *mocks.MockSearchProfilesRepositoryInterface) {
				m.On("Create", mock.Anything, "peak", model.SearchSettings{ShortCktCombCount: 500}, "ops").
					Return(&model.SearchProfile{Name: "peak", Version: 1}, nil)
			},
		},
		{
			name:      "name is required",
			profile:   " ",
			setupMock: func(*mocks.MockSearchProfilesRepositoryInterface) {},
			wantField: "name",
		},
		{
			name:      "negative limit rejected",
			profile:   "peak",
			settings:  model.SearchSettings{ShortCktStdDevMultiplier: -1},
			setupMock: func(*mocks.MockSearchProfilesRepositoryInterface) {},
			wantField: "settings.short_ckt_stddev_multiplier",
		},
		{
			name:      "negative keep valid deadline rejected",
			profile:   "peak",
			settings:  model.SearchSettings{ShortCktKeepValidFPsTimeMs: -1},
			setupMock: func(*mocks.MockSearchProfilesRepositoryInterface) {},
			wantField: "settings.short_ckt_keep_valid_fps_time_ms",
		},
		{
			name:    "repository error",
			profile: "peak",
			setupMock: func(m *mocks.MockSearchProfilesRepositoryInterface) {
				m.On("Create", mock.Anything, "peak", model.SearchSettings{}, "ops").Return(nil, errors.New("db down"))
			},
			wantErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockSearchProfilesRepositoryInterface)
			tt.setupMock(repo)
			svc := NewSearchProfileService(repo)

			got, err := svc.Create(context.Background(), tt.profile, tt.settings, "ops")

			switch {
			case tt.wantField != "":
				var verr *dto.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantField, verr.Field)
			case tt.wantErr != nil:
				assert.EqualError(t, err, tt.wantErr.Error())
			default:
				require.NoError(t, err)
				assert.Equal(t, 1, got.Version)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestSearchProfileService_Update(t *testing.T) {
	repo := new(mocks.MockSearchProfilesRepositoryInterface)
	svc := NewSearchProfileService(repo)
	id := primitive.NewObjectID()

	repo.On("Update", mock.Anything, id, "", model.SearchSettings{AbortCheckInterval: 8}, "ops").
		Return(nil, repository.ErrProfileNotFound)

	_, err := svc.Update(context.Background(), id, " ", model.SearchSettings{AbortCheckInterval: 8}, "ops")

	assert.ErrorIs(t, err, repository.ErrProfileNotFound)
	repo.AssertExpectations(t)
}

func TestSearchProfileService_List(t *testing.T) {
	tests := []struct {
		limit     int
		wantLimit int
	}{
		{limit: 0, wantLimit: 20},
		{limit: 5, wantLimit: 5},
		{limit: 500, wantLimit: 20},
	}

	for _, tt := range tests {
		repo := new(mocks.MockSearchProfilesRepositoryInterface)
		repo.On("List", mock.Anything, tt.wantLimit).Return([]model.SearchProfile{{Name: "a"}}, nil)
		svc := NewSearchProfileService(repo)

		got, err := svc.List(context.Background(), tt.limit)

		require.NoError(t, err)
		assert.Len(t, got, 1)
		repo.AssertExpectations(t)
	}
}

func TestSearchProfileService_NoRepository(t *testing.T) {
	svc := NewSearchProfileService(nil)
	ctx := context.Background()

	_, err := svc.GetActive(ctx)
	assert.ErrorIs(t, err, ErrRepositoryNotConfigured)
	_, err = svc.Create(ctx, "x", model.SearchSettings{}, "")
	assert.ErrorIs(t, err, ErrRepositoryNotConfigured)
	_, err = svc.Update(ctx, primitive.NewObjectID(), "x", model.SearchSettings{}, "")
	assert.ErrorIs(t, err, ErrRepositoryNotConfigured)
	_, err = svc.List(ctx, 1)
	assert.ErrorIs(t, err, ErrRepositoryNotConfigured)
}

func TestValidateSettings(t *testing.T) {
	assert.NoError(t, ValidateSettings(model.SearchSettings{}))
	assert.NoError(t, ValidateSettings(model.SearchSettings{MaxSearchNextLevelFarePath: -1, PlusUpPushBackThreshold: -1}))

	var verr *dto.ValidationError
	require.ErrorAs(t, ValidateSettings(model.SearchSettings{MaxSearchNextLevelFarePath: -2}), &verr)
	assert.Equal(t, "settings.max_search_next_level_fare_path", verr.Field)
}
