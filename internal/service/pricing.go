package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/farepath-service/internal/domain/dto"
	"github.com/guttosm/farepath-service/internal/domain/model"
	"github.com/guttosm/farepath-service/internal/metrics"
	"github.com/guttosm/farepath-service/internal/pricing"
	"github.com/guttosm/farepath-service/internal/service/cache"
)

// ErrNoSolution is returned when no combination of fare paths prices the request.
var ErrNoSolution = errors.New("no fare path combination found")

type requestIDKey struct{}

// ContextWithRequestID tags ctx with the id of the API request that started a transaction.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id stored by ContextWithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// PricingService prices fare path requests.
type PricingService interface {
	Price(ctx context.Context, req *dto.PriceRequest) (*model.PricingResult, error)
	// InvalidateCache drops cached results, for example after the active profile changed.
	InvalidateCache()
}

// PricingOption configures a PricingServiceImpl.
type PricingOption func(*PricingServiceImpl)

// PricingServiceImpl runs one search per passenger type and combines their fare paths.
type PricingServiceImpl struct {
	defaults pricing.FactoriesConfig
	timeout  time.Duration
	profiles SearchProfileService
	records  RecordService
	cache    cache.CacheWithMetrics
	log      zerolog.Logger
	clock    func() time.Time
	newID    func() string
}

// NewPricingService creates a pricing service with the default search limits.
func NewPricingService(opts ...PricingOption) *PricingServiceImpl {
	s := &PricingServiceImpl{
		defaults: pricing.DefaultFactoriesConfig(),
		timeout:  10 * time.Second,
		log:      zerolog.Nop(),
		clock:    time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithSearchDefaults sets the limits used when no search profile is active.
func WithSearchDefaults(cfg pricing.FactoriesConfig) PricingOption {
	return func(s *PricingServiceImpl) {
		s.defaults = cfg
	}
}

// WithSearchTimeout bounds every transaction. Zero disables the bound.
func WithSearchTimeout(d time.Duration) PricingOption {
	return func(s *PricingServiceImpl) {
		s.timeout = d
	}
}

// WithSearchProfiles resolves the active search profile per request.
func WithSearchProfiles(p SearchProfileService) PricingOption {
	return func(s *PricingServiceImpl) {
		s.profiles = p
	}
}

// WithRecords stores a pricing record for every transaction.
func WithRecords(r RecordService) PricingOption {
	return func(s *PricingServiceImpl) {
		s.records = r
	}
}

// WithResultCache enables a sharded result cache with the given capacity and TTL.
func WithResultCache(capacity int, ttl time.Duration) PricingOption {
	return func(s *PricingServiceImpl) {
		if capacity > 0 {
			s.cache = cache.NewSharded(capacity, ttl)
		}
	}
}

// WithCacheInterface allows injecting a custom cache implementation.
func WithCacheInterface(c cache.CacheWithMetrics) PricingOption {
	return func(s *PricingServiceImpl) {
		s.cache = c
	}
}

// WithServiceLogger sets the logger handed to the searches.
func WithServiceLogger(l zerolog.Logger) PricingOption {
	return func(s *PricingServiceImpl) {
		s.log = l
	}
}

// WithTransactionIDs replaces the transaction id generator.
func WithTransactionIDs(newID func() string) PricingOption {
	return func(s *PricingServiceImpl) {
		s.newID = newID
	}
}

// Cache returns the result cache, or nil when caching is disabled.
func (s *PricingServiceImpl) Cache() cache.CacheWithMetrics {
	return s.cache
}

// InvalidateCache clears the result cache.
func (s *PricingServiceImpl) InvalidateCache() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// Stop releases the cache cleanup goroutines.
func (s *PricingServiceImpl) Stop() {
	if s.cache != nil {
		s.cache.Stop()
	}
}

// Price validates the request, runs the searches and returns the ranked solutions.
func (s *PricingServiceImpl) Price(ctx context.Context, req *dto.PriceRequest) (*model.PricingResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	in, err := req.Build()
	if err != nil {
		return nil, err
	}

	cfg, profileVersion := s.resolveConfig(ctx)

	key := ""
	if s.cache != nil && req.Diagnostic == nil {
		key = fingerprint(req, profileVersion)
		if cached, ok := s.cache.Get(key); ok {
			return &cached, nil
		}
	}

	start := s.clock()
	trx, cancel := s.newTrx(ctx, req, in)
	defer cancel()

	requestID := RequestIDFromContext(ctx)
	run := &search{
		trx:       trx,
		req:       req,
		in:        in,
		cfg:       cfg,
		log:       s.log.With().Str("transaction_id", trx.ID).Str("request_id", requestID).Logger(),
		diag:      pricing.NopDiag,
		requests:  req.SolutionCount(),
		requestID: requestID,
	}
	var buf *pricing.DiagBuffer
	if req.Diagnostic != nil {
		buf = pricing.NewDiagBuffer(req.Diagnostic.Code)
		run.diag = buf
	}

	result, err := run.execute(cancel)
	if buf != nil && result != nil {
		result.Diagnostics = buf.String()
	}

	s.observe(run, result, err, profileVersion, s.clock().Sub(start))

	if err != nil {
		return result, err
	}
	if key != "" {
		s.cache.Set(key, *result)
		m := s.cache.Metrics()
		metrics.UpdateCacheMetrics(m.Size, m.Capacity)
	}
	return result, nil
}

// resolveConfig returns the limits of the active profile, or the defaults when no profile is
// active or the profile store is unavailable.
func (s *PricingServiceImpl) resolveConfig(ctx context.Context) (pricing.FactoriesConfig, int) {
	if s.profiles == nil {
		return s.defaults, 0
	}
	profile, err := s.profiles.GetActive(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to load active search profile, using defaults")
		return s.defaults, 0
	}
	if profile == nil {
		return s.defaults, 0
	}
	return s.defaults.Apply(profile.Settings), profile.Version
}

func (s *PricingServiceImpl) newTrx(ctx context.Context, req *dto.PriceRequest, in *dto.PricingInput) (*pricing.Trx, context.CancelFunc) {
	var cancel context.CancelFunc
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	trx := pricing.NewTrx(ctx, s.newID(), pricing.ParseTrxType(req.TrxType))
	trx.AltPricing = req.AltPricing
	trx.RexNewItin = req.RexNewItin
	trx.DelayExpansion = req.DelayExpansion
	trx.ThroughFarePricing = req.ThroughFarePricing
	trx.ForceNoTimeout = req.ForceNoTimeout
	trx.AxessAgent = req.AxessAgent
	trx.Integrated = trx.Type == pricing.TrxNoPNR
	trx.PaxTypes = in.PaxTypes
	trx.AltDateCutOffNuc = req.AltDateCutOffNUC

	if len(in.AltDates) > 0 {
		trx.AltDatePairs = make(map[model.DatePair]*pricing.AltDateInfo, len(in.AltDates))
		for dp, n := range in.AltDates {
			trx.AltDatePairs[dp] = pricing.NewAltDateInfo(n)
		}
	}
	if req.Diagnostic != nil {
		trx.Diagnostic = pricing.DiagnosticRequest{Code: req.Diagnostic.Code, Params: req.Diagnostic.Params}
	}
	if len(req.CurrencyRates) > 0 {
		conv := pricing.StaticRateConverter{
			Rates:    make(map[string]float64, len(req.CurrencyRates)),
			Decimals: make(map[string]int, len(req.CurrencyRates)),
		}
		for cur, rate := range req.CurrencyRates {
			cur = strings.ToUpper(cur)
			conv.Rates[cur] = rate.Rate
			conv.Decimals[cur] = rate.Decimals
		}
		trx.Converter = conv
	}
	return trx, cancel
}

func (s *PricingServiceImpl) observe(run *search, result *model.PricingResult, err error, profileVersion int, elapsed time.Duration) {
	status := recordStatus(err)
	metrics.RecordPricingSearch(elapsed, status)
	for _, f := range run.factories {
		if f != nil {
			metrics.RecordCombinationsTried(f.PaxType().Code, f.FPCombTried())
		}
	}
	if run.shortCircuited() {
		metrics.RecordShortCircuit("pricing")
	}
	if run.trx.CutOffReached() {
		metrics.RecordShortCircuit("cut_off")
	}

	event := s.log.Info()
	if err != nil {
		event = s.log.Warn().Err(err)
	}
	event.Str("transaction_id", run.trx.ID).
		Str("request_id", run.requestID).
		Str("status", status).
		Dur("duration", elapsed).
		Int("comb_tried", run.combinationsTried()).
		Msg("Pricing transaction finished")

	if s.records == nil {
		return
	}
	rec := &model.PricingRecord{
		TransactionID:     run.trx.ID,
		RequestID:         run.requestID,
		Status:            status,
		TrxType:           run.trx.Type.String(),
		RequestedCount:    run.requests,
		CombinationsTried: run.combinationsTried(),
		ShortCircuited:    run.shortCircuited(),
		Duration:          elapsed.Milliseconds(),
		ProfileVersion:    profileVersion,
	}
	for _, pax := range run.in.PaxTypes {
		rec.PaxTypes = append(rec.PaxTypes, pax.Code)
	}
	if result != nil {
		rec.SolutionCount = len(result.Solutions)
		rec.CheapestNUC = result.Cheapest()
		if result.ReissueError != "" {
			rec.WithField("reissue_error", result.ReissueError)
		}
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if run.trx.CutOffReached() {
		rec.WithField("cut_off_reached", true)
	}
	s.records.Record(rec)
}

// recordStatus maps the outcome of a transaction to a pricing record status.
func recordStatus(err error) string {
	switch {
	case err == nil:
		return model.RecordStatusPriced
	case errors.Is(err, ErrNoSolution):
		return model.RecordStatusNoSolution
	case errors.Is(err, pricing.ErrCancelled):
		return model.RecordStatusCancelled
	default:
		return model.RecordStatusFailed
	}
}

// fingerprint identifies a request under a profile version.
func fingerprint(req *dto.PriceRequest, profileVersion int) string {
	h := sha256.New()
	_ = json.NewEncoder(h).Encode(req)
	_, _ = h.Write([]byte(strconv.Itoa(profileVersion)))
	return hex.EncodeToString(h.Sum(nil))
}

// search is the state of one pricing transaction.
type search struct {
	trx       *pricing.Trx
	req       *dto.PriceRequest
	in        *dto.PricingInput
	cfg       pricing.FactoriesConfig
	log       zerolog.Logger
	diag      pricing.DiagnosticSink
	requests  int
	factories []*pricing.PaxFarePathFactory
	primary   int
	requestID string
}

// execute runs the per-passenger searches concurrently and then combines their results.
func (r *search) execute(abort context.CancelFunc) (*model.PricingResult, error) {
	r.primary = primaryPaxIndex(r.in.PaxTypes)
	r.factories = make([]*pricing.PaxFarePathFactory, len(r.in.PaxTypes))
	wanted := r.wantedFarePaths()
	multiPax := len(r.in.PaxTypes) > 1

	var g errgroup.Group
	for i, pax := range r.in.PaxTypes {
		f := pricing.NewPaxFarePathFactory(r.trx, pax, r.in.Matrices,
			pricing.WithConfig(r.cfg),
			pricing.WithLogger(r.log),
			pricing.WithReqValidFPCount(wanted),
			pricing.WithAllowDuplicateTotals(r.req.AllowDuplicateTotals),
			pricing.WithPrimaryPaxType(i == r.primary || !multiPax),
		)
		r.factories[i] = f
		matched := pax.IsInfant() && !r.trx.AltPricing && i != r.primary

		g.Go(func() error {
			if !f.Init(r.diag) {
				return nil
			}
			if matched {
				return nil
			}
			if _, err := f.GetDistinctFPPQItem(0, r.diag); err != nil && !errors.Is(err, pricing.ErrExhausted) {
				abort()
				return fmt.Errorf("search %s: %w", pax.Code, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return r.partial(nil), err
	}

	solutions, err := r.combine()
	result := r.partial(solutions)
	if err != nil {
		if len(solutions) > 0 && errors.Is(err, pricing.ErrCancelled) {
			result.ShortCircuited = true
			return result, nil
		}
		return result, err
	}
	if len(solutions) == 0 {
		return result, fmt.Errorf("%w for %s", ErrNoSolution, r.in.PaxTypes[r.primary].Code)
	}
	return result, nil
}

// wantedFarePaths is the number of fare paths each search should accept before it may stop.
func (r *search) wantedFarePaths() int {
	if !r.trx.IsAltDates() {
		return r.requests
	}
	n := 0
	for _, info := range r.trx.AltDatePairs {
		n += info.NumOfSolutionNeeded()
	}
	if n < r.requests {
		n = r.requests
	}
	return n
}

// combine walks the distinct fare paths of the primary passenger. Other passengers contribute
// their fare path of the same rank; infants are priced on the primary's fare break.
func (r *search) combine() ([]model.Solution, error) {
	var solutions []model.Solution
	primary := r.factories[r.primary]

	for k := 0; !r.satisfied(len(solutions)); k++ {
		lead, err := primary.GetDistinctFPPQItem(k, r.diag)
		if errors.Is(err, pricing.ErrExhausted) {
			return solutions, nil
		}
		if err != nil {
			return solutions, err
		}

		var dp *model.DatePair
		if fp := lead.FarePath(); fp.Itin != nil && fp.Itin.DatePair != nil {
			dp = fp.Itin.DatePair
			if info, ok := r.trx.AltDatePairs[*dp]; ok && info.NumOfSolutionNeeded() == 0 {
				continue
			}
		}

		items := make([]*pricing.FPPQItem, len(r.factories))
		items[r.primary] = lead
		complete := true
		for i, f := range r.factories {
			if i == r.primary {
				continue
			}
			item, err := r.companion(f, k, lead)
			if errors.Is(err, pricing.ErrExhausted) {
				return solutions, nil
			}
			if err != nil {
				return solutions, err
			}
			if item == nil {
				complete = false
				break
			}
			items[i] = item
		}
		if !complete {
			continue
		}

		solutions = append(solutions, r.solution(len(solutions), dp, items))
		if dp != nil {
			if info, ok := r.trx.AltDatePairs[*dp]; ok {
				info.SolutionFound()
			}
		}
		if r.trx.Integrated {
			for _, item := range items {
				r.trx.CollectedFarePaths = append(r.trx.CollectedFarePaths, item.FarePath())
			}
		}
	}
	return solutions, nil
}

// companion returns the fare path of a non-primary passenger for the k-th solution.
func (r *search) companion(f *pricing.PaxFarePathFactory, k int, lead *pricing.FPPQItem) (*pricing.FPPQItem, error) {
	if f.PaxType().IsInfant() && !r.trx.AltPricing {
		return f.GetSameFareBreakFPPQItem(lead, r.diag)
	}
	return f.GetDistinctFPPQItem(k, r.diag)
}

func (r *search) satisfied(found int) bool {
	if !r.trx.IsAltDates() {
		return found >= r.requests
	}
	for _, info := range r.trx.AltDatePairs {
		if info.NumOfSolutionNeeded() > 0 {
			return false
		}
	}
	return true
}

func (r *search) solution(rank int, dp *model.DatePair, items []*pricing.FPPQItem) model.Solution {
	sol := model.Solution{Rank: rank, DatePair: dp}
	for i, item := range items {
		fp := item.FarePath()
		pax := r.in.PaxTypes[i]
		fare := model.PaxFare{
			PaxType:   pax.Code,
			FareBasis: fp.FareBasis(),
			TotalNUC:  item.Amount(),
			Duplicate: item.Duplicate(),
		}
		if fmp := item.FareMarketPath(); fmp != nil {
			fare.FareMarketPath = fmp.ID
		}
		if path := item.PUPath(); path != nil {
			fare.PUPath = path.ID
		}
		number := pax.Number
		if number < 1 {
			number = 1
		}
		sol.TotalNUC += item.Amount() * float64(number)
		sol.Passengers = append(sol.Passengers, fare)
	}
	return sol
}

func (r *search) partial(solutions []model.Solution) *model.PricingResult {
	result := &model.PricingResult{
		TransactionID:     r.trx.ID,
		Solutions:         solutions,
		CombinationsTried: r.combinationsTried(),
		ShortCircuited:    r.shortCircuited(),
		CutOffReached:     r.trx.CutOffReached(),
	}
	if re := r.trx.ReissueError(); re != nil {
		result.ReissueError = re.Message
		if result.ReissueError == "" {
			result.ReissueError = re.Code
		}
	}
	return result
}

func (r *search) combinationsTried() int {
	n := 0
	for _, f := range r.factories {
		if f != nil {
			n += f.FPCombTried()
		}
	}
	return n
}

func (r *search) shortCircuited() bool {
	for _, f := range r.factories {
		if f != nil && f.PricingShortCktHappened() {
			return true
		}
	}
	return false
}

// primaryPaxIndex returns the first non-infant passenger, or 0 when all are infants.
func primaryPaxIndex(paxTypes []*model.PaxType) int {
	for i, pax := range paxTypes {
		if !pax.IsInfant() {
			return i
		}
	}
	return 0
}
