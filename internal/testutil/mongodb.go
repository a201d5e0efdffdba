//go:build integration

// Package testutil provides the shared MongoDB testcontainer used by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

// DefaultMongoImage is used unless MONGO_TEST_IMAGE is set.
const DefaultMongoImage = "mongo:7.0"

// MongoDBContainer wraps a MongoDB testcontainer.
type MongoDBContainer struct {
	Container testcontainers.Container
	URI       string
}

var (
	shared     *MongoDBContainer
	sharedErr  error
	sharedOnce sync.Once
)

// StartMongoDB starts a MongoDB container from image.
func StartMongoDB(ctx context.Context, image string) (*MongoDBContainer, error) {
	container, err := mongodb.Run(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("start MongoDB container: %w", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("MongoDB connection string: %w", err)
	}

	return &MongoDBContainer{Container: container, URI: uri}, nil
}

// Cleanup terminates the container.
func (m *MongoDBContainer) Cleanup(ctx context.Context) error {
	if m == nil || m.Container == nil {
		return nil
	}
	if err := m.Container.Terminate(ctx); err != nil {
		return fmt.Errorf("terminate MongoDB container: %w", err)
	}
	return nil
}

// SharedMongoDB starts the package-wide container on first use.
func SharedMongoDB(ctx context.Context) (*MongoDBContainer, error) {
	sharedOnce.Do(func() {
		image := os.Getenv("MONGO_TEST_IMAGE")
		if image == "" {
			image = DefaultMongoImage
		}
		shared, sharedErr = StartMongoDB(ctx, image)
	})
	return shared, sharedErr
}

// SetupTestMainWithMongoDB runs m against a shared MongoDB container and terminates it afterwards.
//
//	func TestMain(m *testing.M) {
//		os.Exit(testutil.SetupTestMainWithMongoDB(context.Background(), m))
//	}
func SetupTestMainWithMongoDB(ctx context.Context, m *testing.M) int {
	container, err := SharedMongoDB(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "integration tests need Docker: %v\n", err)
		return 1
	}

	code := m.Run()

	if err := container.Cleanup(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	return code
}

// GetSharedContainerURI returns the URI of the shared container. It panics when
// SetupTestMainWithMongoDB has not started it.
func GetSharedContainerURI() string {
	if shared == nil {
		panic("shared MongoDB container not started; use SetupTestMainWithMongoDB in TestMain")
	}
	return shared.URI
}
