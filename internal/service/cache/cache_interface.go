// Package cache defines the pricing result cache contract.
package cache

import "github.com/guttosm/farepath-service/internal/domain/model"

// Cache stores pricing results by request fingerprint.
type Cache interface {
	Get(key string) (model.PricingResult, bool)
	Set(key string, value model.PricingResult)
	Invalidate(key string)
	Clear()
	Stop()
}

// Metrics provides cache performance metrics.
type Metrics struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	Capacity  int
}

// HitRatio returns hits over lookups, or zero before the first lookup.
func (m Metrics) HitRatio() float64 {
	total := m.Hits + m.Misses
	if total == 0 {
		return 0
	}
	return float64(m.Hits) / float64(total)
}

// CacheWithMetrics extends Cache with metrics reporting.
type CacheWithMetrics interface {
	Cache
	Metrics() Metrics
}
