// Package repository stores search profiles and pricing records in MongoDB.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection and index names.
const (
	SearchProfilesCollection = "search_profiles"
	PricingRecordsCollection = "pricing_records"

	recordsTTLIndex = "pricing_records_ttl"
)

// MongoConfig holds MongoDB connection pool configuration.
type MongoConfig struct {
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
	ConnectTimeout  time.Duration
	// ServerSelectionTimeout bounds how long an operation waits for a reachable server.
	// Keep it short so the circuit breakers see an outage quickly.
	ServerSelectionTimeout time.Duration
	SocketTimeout          time.Duration
	Compression            bool
	// RecordsTTL expires pricing records; zero keeps them forever.
	RecordsTTL time.Duration
}

// MongoOption adjusts a MongoConfig.
type MongoOption func(*MongoConfig)

// WithPoolSize sets the connection pool bounds.
func WithPoolSize(minSize, maxSize uint64) MongoOption {
	return func(c *MongoConfig) {
		c.MinPoolSize = minSize
		c.MaxPoolSize = maxSize
	}
}

// WithServerSelectionTimeout overrides the server selection timeout.
func WithServerSelectionTimeout(d time.Duration) MongoOption {
	return func(c *MongoConfig) { c.ServerSelectionTimeout = d }
}

// WithConnectTimeout overrides the connect timeout.
func WithConnectTimeout(d time.Duration) MongoOption {
	return func(c *MongoConfig) { c.ConnectTimeout = d }
}

// WithRecordsTTL expires pricing records ttl after they were written.
func WithRecordsTTL(ttl time.Duration) MongoOption {
	return func(c *MongoConfig) { c.RecordsTTL = ttl }
}

// DefaultMongoConfig returns the pool settings used in production.
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		MaxPoolSize:            50,
		MinPoolSize:            5,
		MaxConnIdleTime:        10 * time.Minute,
		ConnectTimeout:         10 * time.Second,
		ServerSelectionTimeout: 5 * time.Second,
		SocketTimeout:          30 * time.Second,
		Compression:            true,
	}
}

// MongoDB holds the client and the collections of the service.
type MongoDB struct {
	Client         *mongo.Client
	Database       *mongo.Database
	SearchProfiles *mongo.Collection
	PricingRecords *mongo.Collection
}

// NewMongoDB connects to uri, verifies the server answers and ensures the indexes
// of databaseName exist.
func NewMongoDB(ctx context.Context, uri, databaseName string, opts ...MongoOption) (*MongoDB, error) {
	cfg := DefaultMongoConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions(uri, cfg))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(databaseName)
	m := &MongoDB{
		Client:         client,
		Database:       db,
		SearchProfiles: db.Collection(SearchProfilesCollection),
		PricingRecords: db.Collection(PricingRecordsCollection),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	if cfg.RecordsTTL > 0 {
		if err := m.SetRecordsTTL(ctx, cfg.RecordsTTL); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
	}

	return m, nil
}

func clientOptions(uri string, cfg MongoConfig) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout).
		SetSocketTimeout(cfg.SocketTimeout).
		SetRetryWrites(true).
		SetRetryReads(true)
	if cfg.Compression {
		opts.SetCompressors([]string{"zstd", "snappy", "zlib"})
	}
	return opts
}

// ensureIndexes creates the lookup indexes. Existing indexes with the same keys are kept.
func (m *MongoDB) ensureIndexes(ctx context.Context) error {
	_, err := m.SearchProfiles.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "updated_at", Value: -1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create %s indexes: %w", SearchProfilesCollection, err)
	}

	_, err = m.PricingRecords.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "request_id", Value: 1}}},
		{Keys: bson.D{{Key: "transaction_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create %s indexes: %w", PricingRecordsCollection, err)
	}
	return nil
}

// SetRecordsTTL replaces the TTL index expiring pricing records.
func (m *MongoDB) SetRecordsTTL(ctx context.Context, ttl time.Duration) error {
	if _, err := m.PricingRecords.Indexes().DropOne(ctx, recordsTTLIndex); err != nil && !isIndexNotFound(err) {
		return fmt.Errorf("drop records ttl index: %w", err)
	}

	_, err := m.PricingRecords.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: 1}},
		Options: options.Index().SetName(recordsTTLIndex).SetExpireAfterSeconds(int32(ttl.Seconds())),
	})
	if err != nil {
		return fmt.Errorf("create records ttl index: %w", err)
	}
	return nil
}

func isIndexNotFound(err error) bool {
	var cmdErr mongo.CommandError
	return errors.As(err, &cmdErr) && (cmdErr.Code == 27 || cmdErr.Name == "IndexNotFound" || cmdErr.Code == 26)
}

// Close disconnects the client.
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// HealthCheck pings the server.
func (m *MongoDB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.Client.Ping(ctx, nil)
}
