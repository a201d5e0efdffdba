// Package repository provides circuit breaker wrappers for MongoDB operations.
package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/farepath-service/internal/circuitbreaker"
	"github.com/guttosm/farepath-service/internal/domain/model"
)

// SearchProfilesRepositoryWithCircuitBreaker wraps a search profiles repository with circuit breaker protection.
type SearchProfilesRepositoryWithCircuitBreaker struct {
	repo           SearchProfilesRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewSearchProfilesRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewSearchProfilesRepositoryWithCircuitBreaker(repo SearchProfilesRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *SearchProfilesRepositoryWithCircuitBreaker {
	return &SearchProfilesRepositoryWithCircuitBreaker{
		repo:           repo,
		circuitBreaker: cb,
	}
}

// GetActive returns the active profile, or ErrCircuitOpen while the store is failing.
func (r *SearchProfilesRepositoryWithCircuitBreaker) GetActive(ctx context.Context) (*model.SearchProfile, error) {
	var result *model.SearchProfile
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.GetActive(ctx)
		return cbErr
	})
	return result, err
}

// Create stores a profile with circuit breaker protection.
func (r *SearchProfilesRepositoryWithCircuitBreaker) Create(ctx context.Context, name string, settings model.SearchSettings, createdBy string) (*model.SearchProfile, error) {
	var result *model.SearchProfile
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.Create(ctx, name, settings, createdBy)
		return cbErr
	})
	return result, err
}

// Update changes a profile with circuit breaker protection.
// A missing profile is not counted as a failure of the database.
func (r *SearchProfilesRepositoryWithCircuitBreaker) Update(ctx context.Context, id primitive.ObjectID, name string, settings model.SearchSettings, updatedBy string) (*model.SearchProfile, error) {
	var result *model.SearchProfile
	var notFound bool
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.Update(ctx, id, name, settings, updatedBy)
		if errors.Is(cbErr, ErrProfileNotFound) {
			notFound = true
			return nil
		}
		return cbErr
	})
	if notFound {
		return nil, ErrProfileNotFound
	}
	return result, err
}

// List returns profiles with circuit breaker protection.
func (r *SearchProfilesRepositoryWithCircuitBreaker) List(ctx context.Context, limit int) ([]model.SearchProfile, error) {
	var result []model.SearchProfile
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.List(ctx, limit)
		return cbErr
	})
	return result, err
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *SearchProfilesRepositoryWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}

// PricingRecordsRepositoryWithCircuitBreaker wraps a pricing records repository with circuit breaker protection.
type PricingRecordsRepositoryWithCircuitBreaker struct {
	repo           PricingRecordsRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewPricingRecordsRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewPricingRecordsRepositoryWithCircuitBreaker(repo PricingRecordsRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *PricingRecordsRepositoryWithCircuitBreaker {
	return &PricingRecordsRepositoryWithCircuitBreaker{
		repo:           repo,
		circuitBreaker: cb,
	}
}

// Create stores a record. Records are dropped while the circuit is open.
func (r *PricingRecordsRepositoryWithCircuitBreaker) Create(ctx context.Context, rec *model.PricingRecord) error {
	err := r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Create(ctx, rec)
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil
	}
	return err
}

// CreateMany stores records in bulk. Records are dropped while the circuit is open.
func (r *PricingRecordsRepositoryWithCircuitBreaker) CreateMany(ctx context.Context, recs []*model.PricingRecord) error {
	err := r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.CreateMany(ctx, recs)
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil
	}
	return err
}

// Query retrieves records with circuit breaker protection.
func (r *PricingRecordsRepositoryWithCircuitBreaker) Query(ctx context.Context, opts model.RecordQueryOptions) ([]*model.PricingRecord, error) {
	var result []*model.PricingRecord
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.Query(ctx, opts)
		return cbErr
	})
	return result, err
}

// Count counts records with circuit breaker protection.
func (r *PricingRecordsRepositoryWithCircuitBreaker) Count(ctx context.Context, opts model.RecordQueryOptions) (int64, error) {
	var result int64
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.Count(ctx, opts)
		return cbErr
	})
	return result, err
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *PricingRecordsRepositoryWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}
