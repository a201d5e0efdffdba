package cache

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/guttosm/farepath-service/internal/domain/model"
	"github.com/guttosm/farepath-service/internal/metrics"
)

// DefaultShards is the shard count used when none is given.
const DefaultShards = 16

const defaultSweepInterval = time.Minute

// Sharded spreads pricing results over LRU shards picked by key hash so that
// concurrent transactions rarely contend on the same lock. A single goroutine
// sweeps expired entries from every shard.
type Sharded struct {
	shards   []*lru
	mask     uint32
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// Option configures a Sharded cache.
type Option func(*shardedConfig)

type shardedConfig struct {
	shards int
	sweep  time.Duration
	now    func() time.Time
}

// WithShards sets the shard count, rounded up to a power of two.
func WithShards(n int) Option {
	return func(c *shardedConfig) { c.shards = n }
}

// WithSweepInterval sets how often expired entries are dropped.
func WithSweepInterval(d time.Duration) Option {
	return func(c *shardedConfig) { c.sweep = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *shardedConfig) { c.now = now }
}

// NewSharded creates a cache holding about capacity results for ttl each and
// starts its sweeper. Call Stop to release it.
func NewSharded(capacity int, ttl time.Duration, opts ...Option) *Sharded {
	cfg := shardedConfig{shards: DefaultShards, sweep: defaultSweepInterval, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	n := 1
	for n < cfg.shards {
		n <<= 1
	}
	perShard := capacity / n
	if perShard < 1 {
		perShard = 1
	}

	s := &Sharded{
		shards: make([]*lru, n),
		mask:   uint32(n - 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for i := range s.shards {
		s.shards[i] = newLRU(perShard, ttl, cfg.now)
	}
	go s.sweepLoop(cfg.sweep)
	return s
}

func (s *Sharded) shard(key string) *lru {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()&s.mask]
}

// Get returns the live result stored under key.
func (s *Sharded) Get(key string) (model.PricingResult, bool) {
	return s.shard(key).get(key)
}

// Set stores value under key, evicting the least recently used result of the shard when full.
func (s *Sharded) Set(key string, value model.PricingResult) {
	s.shard(key).set(key, value)
}

// Invalidate drops key.
func (s *Sharded) Invalidate(key string) {
	s.shard(key).invalidate(key)
	metrics.RecordCacheOperation("invalidate", "success")
}

// Clear drops every result.
func (s *Sharded) Clear() {
	for _, sh := range s.shards {
		sh.clear()
	}
	metrics.RecordCacheOperation("clear", "success")
}

// Sweep drops expired results now and returns how many were dropped.
func (s *Sharded) Sweep() int {
	removed := 0
	for _, sh := range s.shards {
		removed += sh.sweep()
	}
	if removed > 0 {
		metrics.RecordCacheOperation("sweep", "expired")
	}
	return removed
}

// Stop ends the sweeper and waits for it. It is safe to call more than once.
func (s *Sharded) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

// Metrics sums the counters of every shard.
func (s *Sharded) Metrics() Metrics {
	var total Metrics
	for _, sh := range s.shards {
		m := sh.metrics()
		total.Hits += m.Hits
		total.Misses += m.Misses
		total.Evictions += m.Evictions
		total.Size += m.Size
		total.Capacity += m.Capacity
	}
	return total
}

func (s *Sharded) sweepLoop(every time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stop:
			return
		}
	}
}
