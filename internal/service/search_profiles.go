package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/farepath-service/internal/domain/dto"
	"github.com/guttosm/farepath-service/internal/domain/model"
	"github.com/guttosm/farepath-service/internal/repository"
)

// ErrRepositoryNotConfigured is returned when the repository is not configured.
var ErrRepositoryNotConfigured = errors.New("repository not configured")

// SearchProfileService manages the stored search settings.
type SearchProfileService interface {
	GetActive(ctx context.Context) (*model.SearchProfile, error)
	Create(ctx context.Context, name string, settings model.SearchSettings, createdBy string) (*model.SearchProfile, error)
	Update(ctx context.Context, id primitive.ObjectID, name string, settings model.SearchSettings, updatedBy string) (*model.SearchProfile, error)
	List(ctx context.Context, limit int) ([]model.SearchProfile, error)
}

// SearchProfileServiceImpl implements SearchProfileService.
type SearchProfileServiceImpl struct {
	repo repository.SearchProfilesRepositoryInterface
}

// NewSearchProfileService creates a new search profile service.
func NewSearchProfileService(repo repository.SearchProfilesRepositoryInterface) SearchProfileService {
	return &SearchProfileServiceImpl{repo: repo}
}

func (s *SearchProfileServiceImpl) GetActive(ctx context.Context) (*model.SearchProfile, error) {
	if s.repo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	return s.repo.GetActive(ctx)
}

func (s *SearchProfileServiceImpl) Create(ctx context.Context, name string, settings model.SearchSettings, createdBy string) (*model.SearchProfile, error) {
	if s.repo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if strings.TrimSpace(name) == "" {
		return nil, &dto.ValidationError{Field: "name", Message: "is required"}
	}
	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, strings.TrimSpace(name), settings, createdBy)
}

func (s *SearchProfileServiceImpl) Update(ctx context.Context, id primitive.ObjectID, name string, settings model.SearchSettings, updatedBy string) (*model.SearchProfile, error) {
	if s.repo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, strings.TrimSpace(name), settings, updatedBy)
}

func (s *SearchProfileServiceImpl) List(ctx context.Context, limit int) ([]model.SearchProfile, error) {
	if s.repo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, limit)
}

// ValidateSettings rejects negative limits. Zero keeps the server default.
func ValidateSettings(s model.SearchSettings) error {
	checks := []struct {
		field string
		bad   bool
	}{
		{"settings.max_nbr_comb_msg_threshold", s.MaxNbrCombMsgThreshold < 0},
		{"settings.multi_pax_short_ckt_timeout_ms", s.MultiPaxShortCktTimeoutMs < 0},
		{"settings.short_ckt_timeout_ms", s.ShortCktTimeoutMs < 0},
		{"settings.short_ckt_shutdown_fpfs_time_ms", s.ShortCktShutdownFPFsTimeMs < 0},
		{"settings.short_ckt_keep_valid_fps_time_ms", s.ShortCktKeepValidFPsTimeMs < 0},
		{"settings.short_ckt_comb_count", s.ShortCktCombCount < 0},
		{"settings.short_ckt_stddev_multiplier", s.ShortCktStdDevMultiplier < 0},
		{"settings.plus_up_push_back_max", s.PlusUpPushBackMax < 0},
		{"settings.abort_check_interval", s.AbortCheckInterval < 0},
		{"settings.max_failed_fare_paths", s.MaxFailedFarePaths < 0},
	}
	for _, c := range checks {
		if c.bad {
			return &dto.ValidationError{Field: c.field, Message: "must not be negative"}
		}
	}
	if s.MaxSearchNextLevelFarePath < -1 {
		return &dto.ValidationError{Field: "settings.max_search_next_level_fare_path", Message: "must be -1 or greater"}
	}
	return nil
}
