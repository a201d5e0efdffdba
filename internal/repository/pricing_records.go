// Package repository provides data access layer for MongoDB.
package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/guttosm/farepath-service/internal/domain/model"
)

// PricingRecordsRepository stores one summary document per pricing transaction.
type PricingRecordsRepository struct {
	collection *mongo.Collection
}

// NewPricingRecordsRepository creates a new pricing records repository.
func NewPricingRecordsRepository(db *MongoDB) *PricingRecordsRepository {
	return &PricingRecordsRepository{
		collection: db.PricingRecords,
	}
}

func prepareRecord(rec *model.PricingRecord) {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
}

// Create inserts a pricing record.
func (r *PricingRecordsRepository) Create(ctx context.Context, rec *model.PricingRecord) error {
	prepareRecord(rec)
	_, err := r.collection.InsertOne(ctx, rec)
	return err
}

// CreateMany inserts pricing records in bulk.
func (r *PricingRecordsRepository) CreateMany(ctx context.Context, recs []*model.PricingRecord) error {
	if len(recs) == 0 {
		return nil
	}

	docs := make([]interface{}, len(recs))
	for i, rec := range recs {
		prepareRecord(rec)
		docs[i] = rec
	}

	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func recordFilter(opts model.RecordQueryOptions) bson.M {
	filter := bson.M{}
	if opts.RequestID != "" {
		filter["request_id"] = opts.RequestID
	}
	if opts.TransactionID != "" {
		filter["transaction_id"] = opts.TransactionID
	}
	if opts.Status != "" {
		filter["status"] = opts.Status
	}
	if opts.StartTime != nil || opts.EndTime != nil {
		timeFilter := bson.M{}
		if opts.StartTime != nil {
			timeFilter["$gte"] = *opts.StartTime
		}
		if opts.EndTime != nil {
			timeFilter["$lte"] = *opts.EndTime
		}
		filter["timestamp"] = timeFilter
	}
	return filter
}

// Query returns records matching opts, newest first.
func (r *PricingRecordsRepository) Query(ctx context.Context, opts model.RecordQueryOptions) ([]*model.PricingRecord, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if opts.Limit > 0 {
		findOptions.SetLimit(int64(opts.Limit))
	}
	if opts.Skip > 0 {
		findOptions.SetSkip(int64(opts.Skip))
	}

	cursor, err := r.collection.Find(ctx, recordFilter(opts), findOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var recs []*model.PricingRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// Count returns the number of records matching opts. Limit and Skip are ignored.
func (r *PricingRecordsRepository) Count(ctx context.Context, opts model.RecordQueryOptions) (int64, error) {
	return r.collection.CountDocuments(ctx, recordFilter(opts))
}
