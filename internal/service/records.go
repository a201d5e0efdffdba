package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/farepath-service/internal/domain/model"
	"github.com/guttosm/farepath-service/internal/logger"
	"github.com/guttosm/farepath-service/internal/metrics"
	"github.com/guttosm/farepath-service/internal/repository"
)

// RecordService stores and queries pricing records.
type RecordService interface {
	// Record enqueues a record for asynchronous storage. It returns false when the record
	// was dropped because the buffer is full or no repository is configured.
	Record(rec *model.PricingRecord) bool

	// Create stores a record synchronously.
	Create(ctx context.Context, rec *model.PricingRecord) error

	// Query retrieves records matching the options, newest first.
	Query(ctx context.Context, opts model.RecordQueryOptions) ([]*model.PricingRecord, error)

	// Count returns the number of records matching the options.
	Count(ctx context.Context, opts model.RecordQueryOptions) (int64, error)

	// Stop flushes pending records and stops the writers.
	Stop()
}

// RecordWriterConfig configures the asynchronous record writers.
type RecordWriterConfig struct {
	// BufferSize is the size of the pending record channel.
	BufferSize int
	// NumWorkers is the number of writer goroutines.
	NumWorkers int
	// WriteTimeout bounds one database write.
	WriteTimeout time.Duration
}

// DefaultRecordWriterConfig returns the defaults used by the server.
func DefaultRecordWriterConfig() RecordWriterConfig {
	return RecordWriterConfig{
		BufferSize:   1000,
		NumWorkers:   4,
		WriteTimeout: 5 * time.Second,
	}
}

// RecordStats are the counters of the asynchronous writers.
type RecordStats struct {
	Enqueued int64
	Dropped  int64
	Written  int64
	Errors   int64
}

// RecordServiceImpl implements RecordService with a bounded worker pool.
type RecordServiceImpl struct {
	repo         repository.PricingRecordsRepositoryInterface
	recCh        chan *model.PricingRecord
	stopCh       chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
	writeTimeout time.Duration

	enqueued int64
	dropped  int64
	written  int64
	errors   int64
}

// NewRecordService creates a record service. Without a repository no workers are started
// and every operation reports ErrRepositoryNotConfigured.
func NewRecordService(repo repository.PricingRecordsRepositoryInterface, cfg RecordWriterConfig) *RecordServiceImpl {
	s := &RecordServiceImpl{
		repo:         repo,
		stopCh:       make(chan struct{}),
		writeTimeout: cfg.WriteTimeout,
	}
	if repo == nil {
		return s
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	s.recCh = make(chan *model.PricingRecord, cfg.BufferSize)
	for i := 0; i < cfg.NumWorkers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

func (s *RecordServiceImpl) worker() {
	defer s.wg.Done()

	for {
		select {
		case rec := <-s.recCh:
			s.write(rec)
		case <-s.stopCh:
			for {
				select {
				case rec := <-s.recCh:
					s.write(rec)
				default:
					return
				}
			}
		}
	}
}

func (s *RecordServiceImpl) write(rec *model.PricingRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	if err := s.repo.Create(ctx, rec); err != nil {
		atomic.AddInt64(&s.errors, 1)
		metrics.RecordPricingRecord("failed")
		log := logger.ForTransaction(rec.TransactionID, rec.RequestID)
		log.Warn().Err(err).Msg("Failed to write pricing record")
		return
	}
	atomic.AddInt64(&s.written, 1)
	metrics.RecordPricingRecord("written")
}

func (s *RecordServiceImpl) Record(rec *model.PricingRecord) bool {
	if s.recCh == nil || rec == nil {
		return false
	}
	prepareRecord(rec)

	select {
	case <-s.stopCh:
		atomic.AddInt64(&s.dropped, 1)
		metrics.RecordPricingRecord("dropped")
		return false
	default:
	}

	select {
	case s.recCh <- rec:
		atomic.AddInt64(&s.enqueued, 1)
		return true
	default:
		atomic.AddInt64(&s.dropped, 1)
		metrics.RecordPricingRecord("dropped")
		return false
	}
}

func (s *RecordServiceImpl) Create(ctx context.Context, rec *model.PricingRecord) error {
	if s.repo == nil {
		return ErrRepositoryNotConfigured
	}
	prepareRecord(rec)
	return s.repo.Create(ctx, rec)
}

func (s *RecordServiceImpl) Query(ctx context.Context, opts model.RecordQueryOptions) ([]*model.PricingRecord, error) {
	if s.repo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	return s.repo.Query(ctx, opts)
}

func (s *RecordServiceImpl) Count(ctx context.Context, opts model.RecordQueryOptions) (int64, error) {
	if s.repo == nil {
		return 0, ErrRepositoryNotConfigured
	}
	return s.repo.Count(ctx, opts)
}

// Stop waits for pending records to be written. It is safe to call more than once.
func (s *RecordServiceImpl) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
	})
}

// Stats returns the writer counters.
func (s *RecordServiceImpl) Stats() RecordStats {
	return RecordStats{
		Enqueued: atomic.LoadInt64(&s.enqueued),
		Dropped:  atomic.LoadInt64(&s.dropped),
		Written:  atomic.LoadInt64(&s.written),
		Errors:   atomic.LoadInt64(&s.errors),
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
