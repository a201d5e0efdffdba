// Package repository provides interfaces for repository operations.
package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/farepath-service/internal/domain/model"
)

// SearchProfilesRepositoryInterface defines the interface for search profile operations.
type SearchProfilesRepositoryInterface interface {
	GetActive(ctx context.Context) (*model.SearchProfile, error)
	Create(ctx context.Context, name string, settings model.SearchSettings, createdBy string) (*model.SearchProfile, error)
	Update(ctx context.Context, id primitive.ObjectID, name string, settings model.SearchSettings, updatedBy string) (*model.SearchProfile, error)
	List(ctx context.Context, limit int) ([]model.SearchProfile, error)
}

// PricingRecordsRepositoryInterface defines the interface for pricing record operations.
type PricingRecordsRepositoryInterface interface {
	Create(ctx context.Context, rec *model.PricingRecord) error
	CreateMany(ctx context.Context, recs []*model.PricingRecord) error
	Query(ctx context.Context, opts model.RecordQueryOptions) ([]*model.PricingRecord, error)
	Count(ctx context.Context, opts model.RecordQueryOptions) (int64, error)
}
