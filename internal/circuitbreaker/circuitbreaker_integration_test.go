//go:build integration

package circuitbreaker_test

import (
	"context"
	"testing"
	"time"

	"github.com/guttosm/farepath-service/internal/circuitbreaker"
	"github.com/guttosm/farepath-service/internal/domain/model"
	"github.com/guttosm/farepath-service/internal/repository"
	"github.com/guttosm/farepath-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The container is stopped mid-test, so it is not shared with other packages.
func TestCircuitBreaker_OpensWhenMongoDBGoesAway(t *testing.T) {
	ctx := context.Background()

	container, err := testutil.StartMongoDB(ctx, testutil.DefaultMongoImage)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Cleanup(ctx) })

	db, err := repository.NewMongoDB(ctx, container.URI, "farepath_breaker",
		repository.WithServerSelectionTimeout(500*time.Millisecond),
		repository.WithPoolSize(0, 10),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(ctx) })

	cb := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          time.Minute,
		Name:             "it-search-profiles",
	})
	profiles := repository.NewSearchProfilesRepositoryWithCircuitBreaker(repository.NewSearchProfilesRepository(db), cb)

	_, err = profiles.Create(ctx, "peak", model.SearchSettings{ShortCktCombCount: 100}, "it")
	require.NoError(t, err)
	active, err := profiles.GetActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, circuitbreaker.StateClosed, cb.State())

	stopTimeout := 10 * time.Second
	require.NoError(t, container.Container.Stop(ctx, &stopTimeout))

	for i := 0; i < 2; i++ {
		_, err := profiles.List(ctx, 10)
		require.Error(t, err)
		assert.NotErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	}
	assert.True(t, cb.IsOpen())

	start := time.Now()
	_, err = profiles.GetActive(ctx)
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Less(t, time.Since(start), 100*time.Millisecond, "an open circuit must not wait on the database")

	stats := cb.GetStats()
	assert.Equal(t, "open", stats.State)
	assert.False(t, stats.IsHealthy)
}
