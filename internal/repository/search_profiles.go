// Package repository provides data access for search profiles.
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/guttosm/farepath-service/internal/domain/model"
)

// ErrProfileNotFound is returned when a search profile does not exist.
var ErrProfileNotFound = errors.New("search profile not found")

// SearchProfilesRepository stores versioned search profiles. One profile is active at a time.
type SearchProfilesRepository struct {
	collection *mongo.Collection
}

// NewSearchProfilesRepository creates a new search profiles repository.
func NewSearchProfilesRepository(db *MongoDB) *SearchProfilesRepository {
	return &SearchProfilesRepository{
		collection: db.SearchProfiles,
	}
}

// GetActive returns the active search profile, or nil when none exists.
func (r *SearchProfilesRepository) GetActive(ctx context.Context) (*model.SearchProfile, error) {
	var profile model.SearchProfile
	err := r.collection.FindOne(ctx, bson.M{"active": true}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Create stores a new profile and makes it the active one.
func (r *SearchProfilesRepository) Create(ctx context.Context, name string, settings model.SearchSettings, createdBy string) (*model.SearchProfile, error) {
	now := time.Now().UTC()
	_, err := r.collection.UpdateMany(
		ctx,
		bson.M{"active": true},
		bson.M{"$set": bson.M{"active": false, "updated_at": now}},
	)
	if err != nil {
		return nil, err
	}

	profile := model.SearchProfile{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Settings:  settings,
		Active:    true,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: createdBy,
	}

	if _, err := r.collection.InsertOne(ctx, profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update replaces the settings of a profile and bumps its version.
// An empty name keeps the current one.
func (r *SearchProfilesRepository) Update(ctx context.Context, id primitive.ObjectID, name string, settings model.SearchSettings, updatedBy string) (*model.SearchProfile, error) {
	set := bson.M{
		"settings":   settings,
		"updated_at": time.Now().UTC(),
	}
	if name != "" {
		set["name"] = name
	}
	if updatedBy != "" {
		set["updated_by"] = updatedBy
	}

	var profile model.SearchProfile
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set, "$inc": bson.M{"version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// List returns profiles, newest first.
func (r *SearchProfilesRepository) List(ctx context.Context, limit int) ([]model.SearchProfile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var profiles []model.SearchProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}
