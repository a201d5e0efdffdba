// Package pricing implements the fare path search: for one passenger type it pulls fare paths
// from one FarePathFactory per fare-break configuration, cheapest first, and admits them into
// a ranked result list.
package pricing

import (
	"errors"
	"strconv"
	"time"

	"github.com/emirpasic/gods/queues/priorityqueue"
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
	"github.com/rs/zerolog"

	"github.com/guttosm/farepath-service/internal/domain/model"
)

// Option configures a PaxFarePathFactory.
type Option func(*PaxFarePathFactory)

// WithConfig sets the factories config.
func WithConfig(cfg FactoriesConfig) Option {
	return func(p *PaxFarePathFactory) {
		p.state.cfg = cfg
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(p *PaxFarePathFactory) {
		if clock != nil {
			p.state.clock = clock
		}
	}
}

// WithLogger sets the logger. The default logger is disabled.
func WithLogger(l zerolog.Logger) Option {
	return func(p *PaxFarePathFactory) {
		p.state.log = l
	}
}

// WithPricingUnitValidator sets the structural pricing unit check.
func WithPricingUnitValidator(v PricingUnitValidator) Option {
	return func(p *PaxFarePathFactory) {
		p.puValidator = v
	}
}

// WithCombinability sets the fare path combinability check.
func WithCombinability(c CombinabilityChecker) Option {
	return func(p *PaxFarePathFactory) {
		p.fpRules.combinability = c
	}
}

// WithPlusUpCalculator sets the plus-up calculation.
func WithPlusUpCalculator(c PlusUpCalculator) Option {
	return func(p *PaxFarePathFactory) {
		p.fpRules.plusUp = c
	}
}

// WithFarePathValidator sets the business rule oracle.
func WithFarePathValidator(v FarePathValidator) Option {
	return func(p *PaxFarePathFactory) {
		p.validator = v
	}
}

// WithAccompaniedTravel sets the infant fare validation.
func WithAccompaniedTravel(a AccompaniedTravel) Option {
	return func(p *PaxFarePathFactory) {
		p.accompanied = a
	}
}

// WithReqValidFPCount sets how many valid fare paths one extension of the result list must add.
func WithReqValidFPCount(n int) Option {
	return func(p *PaxFarePathFactory) {
		if n > 0 {
			p.reqValidFPCount = n
		}
	}
}

// WithAllowDuplicateTotals disables duplicate total detection.
func WithAllowDuplicateTotals(allow bool) Option {
	return func(p *PaxFarePathFactory) {
		p.allowDuplicateTotals = allow
	}
}

// WithPrimaryPaxType marks the search as the one other passengers are matched against.
func WithPrimaryPaxType(primary bool) Option {
	return func(p *PaxFarePathFactory) {
		p.primaryPaxType = primary
	}
}

// PaxFarePathFactory searches fare paths for one passenger type. It is not safe for
// concurrent use; a transaction runs one per passenger type.
type PaxFarePathFactory struct {
	trx      *Trx
	paxType  *model.PaxType
	matrices []*model.PUPathMatrix
	state    *searchState

	puValidator PricingUnitValidator
	fpRules     farePathRules
	validator   FarePathValidator
	accompanied AccompaniedTravel
	puFactories *puFactoryBucket

	bucket          *priorityqueue.Queue
	newFactories    []*FarePathFactory
	factoriesByPath map[*model.PUPath]*FarePathFactory
	factoryOrder    uint64

	allFareMarketPaths        []*model.FareMarketPath
	firstFareAmt              map[*model.FareMarketPath]float64
	fmpXPoint                 int
	expandedSameFareBreakFmps map[*model.FareMarketPath]struct{}
	externalFmpLowerBound     float64
	doneDatePairs             map[model.DatePair]struct{}

	validItems       []*FPPQItem
	distinct         []int
	uniqueTotals     *redblacktree.Tree
	collectedSeeded  bool
	gauss            *gauss
	failedFarePaths  int
	maxNbrCombMsgSet bool
	// set once an exchange search traded its failure for a reissue error
	reissueStopped bool

	reqValidFPCount      int
	reqDiagFPCount       int
	allowDuplicateTotals bool
	primaryPaxType       bool
}

// NewPaxFarePathFactory creates the search of paxType over the matrices of trx.
func NewPaxFarePathFactory(trx *Trx, paxType *model.PaxType, matrices []*model.PUPathMatrix, opts ...Option) *PaxFarePathFactory {
	rules := FareRules{}
	p := &PaxFarePathFactory{
		trx:      trx,
		paxType:  paxType,
		matrices: matrices,
		state: &searchState{
			trx:     trx,
			paxType: paxType,
			cfg:     DefaultFactoriesConfig(),
			clock:   time.Now,
			log:     zerolog.Nop(),
		},
		puValidator:               rules,
		fpRules:                   farePathRules{combinability: rules, plusUp: rules},
		validator:                 rules,
		accompanied:               InfantFareRules{},
		factoriesByPath:           make(map[*model.PUPath]*FarePathFactory),
		firstFareAmt:              make(map[*model.FareMarketPath]float64),
		expandedSameFareBreakFmps: make(map[*model.FareMarketPath]struct{}),
		doneDatePairs:             make(map[model.DatePair]struct{}),
		externalFmpLowerBound:     -1,
		uniqueTotals:              redblacktree.NewWith(utils.Float64Comparator),
		gauss:                     newGauss(),
		reqValidFPCount:           1,
	}
	p.bucket = priorityqueue.NewWith(byRankThenLowerBound)
	for _, opt := range opts {
		opt(p)
	}
	p.state.log = p.state.log.With().Str("pax_type", paxType.Code).Logger()
	p.puFactories = newPUFactoryBucket(func(pu *model.PU) *PricingUnitFactory {
		return NewPricingUnitFactory(pu, paxType, p.puValidator, p.state.cfg, p.state.clock)
	})
	return p
}

func byRankThenLowerBound(a, b interface{}) int {
	x, y := a.(*FarePathFactory), b.(*FarePathFactory)
	switch {
	case x.rank() != y.rank():
		return x.rank() - y.rank()
	case x.lowerBound < y.lowerBound:
		return -1
	case x.lowerBound > y.lowerBound:
		return 1
	case x.order < y.order:
		return -1
	case x.order > y.order:
		return 1
	}
	return 0
}

// PaxType returns the searched passenger type.
func (p *PaxFarePathFactory) PaxType() *model.PaxType {
	return p.paxType
}

// Init primes the search. It returns false when no fare-break configuration can produce a
// fare path, in which case every GetFPPQItem call returns ErrExhausted.
func (p *PaxFarePathFactory) Init(diag DiagnosticSink) bool {
	p.state.start = p.state.clock()
	p.gauss.clear()
	p.reqDiagFPCount = p.fpCountDiagParam()

	if p.trx.DelayExpansion {
		if p.processFareMarketPaths() {
			p.updateGaussForDelayedExpansion()
			p.expandNextFareMarketPath(diag)
		}
		return !p.bucket.Empty()
	}

	if !p.createFarePathFactories() {
		p.state.log.Debug().Msg("farePathFactoryBucket empty")
		return false
	}
	return p.addFarePathFactoriesToPQ(diag)
}

// GetFPPQItem returns the idx-th cheapest accepted fare path, extending the search as needed.
// Results are cached, so repeated calls with the same idx return the same item. Flagged
// duplicates keep their position. ErrExhausted signals that fewer fare paths exist.
func (p *PaxFarePathFactory) GetFPPQItem(idx int, diag DiagnosticSink) (*FPPQItem, error) {
	if idx < 0 {
		return nil, ErrExhausted
	}
	if err := p.extendUntil(func() bool { return idx < len(p.validItems) }, diag); err != nil {
		return nil, err
	}
	if idx < len(p.validItems) {
		return p.validItems[idx], nil
	}
	return nil, ErrExhausted
}

// GetDistinctFPPQItem is GetFPPQItem over the fare paths not flagged as duplicates.
func (p *PaxFarePathFactory) GetDistinctFPPQItem(idx int, diag DiagnosticSink) (*FPPQItem, error) {
	if idx < 0 {
		return nil, ErrExhausted
	}
	if err := p.extendUntil(func() bool { return idx < len(p.distinct) }, diag); err != nil {
		return nil, err
	}
	if idx < len(p.distinct) {
		return p.validItems[p.distinct[idx]], nil
	}
	return nil, ErrExhausted
}

func (p *PaxFarePathFactory) extendUntil(done func() bool, diag DiagnosticSink) error {
	for !done() {
		before := len(p.validItems)
		more, err := p.buildNextLevelFarePath(diag)
		if err != nil {
			return err
		}
		if !more || len(p.validItems) == before {
			return nil
		}
	}
	return nil
}

// FPCount is the number of accepted fare paths, duplicates included.
func (p *PaxFarePathFactory) FPCount() int {
	return len(p.validItems)
}

// ValidCount is the number of accepted fare paths not flagged as duplicates.
func (p *PaxFarePathFactory) ValidCount() int {
	return len(p.distinct)
}

// FPCombTried is the number of fare path combinations evaluated by all factories.
func (p *PaxFarePathFactory) FPCombTried() int {
	return p.state.fpCombTried
}

// PricingShortCktHappened reports whether factories were shut down near the timeout.
func (p *PaxFarePathFactory) PricingShortCktHappened() bool {
	return p.state.pricingShortCktHappened
}

// FactoryCount is the number of FarePathFactories created so far.
func (p *PaxFarePathFactory) FactoryCount() int {
	return len(p.factoriesByPath)
}

// FmpXPoint is the number of fare-break configurations walked by delayed expansion.
func (p *PaxFarePathFactory) FmpXPoint() int {
	return p.fmpXPoint
}

// buildNextLevelFarePath extends the result list. It repeatedly asks the cheapest factory for
// its next candidate, pushing the candidate back whenever a competing factory or an
// unexpanded configuration might be cheaper, until the requested counts are reached or
// nothing is left. It returns false when the search cannot continue.
func (p *PaxFarePathFactory) buildNextLevelFarePath(diag DiagnosticSink) (bool, error) {
	if p.reissueStopped {
		return false, nil
	}
	p.removeObsoleteFactories(diag)

	if p.bucket.Empty() {
		p.state.log.Debug().Msg("buildNextLevelFarePath: PQ empty")
		return false, nil
	}

	cfg := p.state.cfg
	genCount := 0
	validFound := false
	addForDups := 0
	fpf := p.pqTop()
	tryNextFPF := true

	isNoPNR := p.trx.Type == TrxNoPNR
	isIntegrated := isNoPNR && p.trx.Integrated
	if isNoPNR && !p.allowDuplicateTotals && !p.collectedSeeded {
		p.buildFarePathsAmounts()
		p.collectedSeeded = true
	}

	needMore := func() bool {
		return !validFound || genCount < p.reqDiagFPCount || len(p.validItems) < p.reqValidFPCount+addForDups
	}

	for iter := 0; ; iter++ {
		if err := p.checkAborted(iter); err != nil {
			if !tryNextFPF {
				p.pqPushIfLive(fpf)
			}
			return p.searchFailed(err)
		}

		if cfg.MaxSearchNextLevelFarePath >= 0 && genCount > cfg.MaxSearchNextLevelFarePath {
			if !tryNextFPF {
				p.pqPushIfLive(fpf)
			}
			return false, nil
		}

		if tryNextFPF {
			p.pqPop()
			if !p.checkAltDates(fpf) {
				return false, nil
			}
		}

		if p.sameOrLowerAmountFmpExists(fpf) {
			p.expandNextFareMarketPath(diag)
			tryNextFPF = true
			p.pqPush(fpf)
			fpf = p.pqTop()
			if !needMore() {
				return true, nil
			}
			continue
		}

		nextLB := -1.0
		nextRank, curRank := 0, 0
		if top := p.pqTop(); top != nil {
			nextLB = top.LowerBoundFPAmount()
			if nextLB >= 0 {
				if fpf.LowerBoundFPAmount() >= 0 {
					nextRank = top.rank()
					curRank = fpf.rank()
				}
				if nextRank > curRank {
					nextLB = -1
				}
			}
		}
		nextLB, fromFMP := p.updateNextLowerBoundFPAmount(nextLB)
		fpf.SetExternalLowerBoundAmount(nextLB)

		item := fpf.GetNextFPPQItem(diag)
		genCount++

		if item != nil {
			if nextLB >= 0 && item.Amount()-nextLB > Epsilon {
				fpf.PushBack(item)
			} else {
				accepted, err := p.admit(fpf, item, isIntegrated, &addForDups)
				if err != nil {
					p.pqPushIfLive(fpf)
					return p.searchFailed(err)
				}
				if accepted {
					validFound = true
				}
			}
		}

		tryNextFPF = true
		if fpf.LowerBoundFPAmount() >= 0 {
			keep := true
			if !p.trx.ForceNoTimeout && p.shutdownFPFactory(fpf) {
				p.state.log.Info().Int("comb_tried", fpf.FPCombTried()).Msg("buildNextLevelFarePath: shortcircuit logic")
				keep = fpf.KeepValidItems() > 0
			}
			if keep {
				if validFound && genCount >= p.reqDiagFPCount && len(p.validItems) >= p.reqValidFPCount+addForDups {
					p.pqPush(fpf)
					return true, nil
				}
				if nextRank > curRank || (nextRank == curRank && nextLB-fpf.LowerBoundFPAmount() > Epsilon) {
					tryNextFPF = false
				} else {
					p.pqPush(fpf)
				}
			}
		}

		if tryNextFPF {
			if p.trx.DelayExpansion && (fromFMP || p.bucket.Empty()) {
				p.expandNextFareMarketPath(diag)
			}
			if p.bucket.Empty() {
				p.state.log.Debug().Int("fp_count", len(p.validItems)).Msg("buildNextLevelFarePath: PQ empty")
				return true, nil
			}
			fpf = p.pqTop()
		}

		if p.startMultiPaxShortCkt() {
			if !tryNextFPF {
				p.pqPush(fpf)
			}
			return true, nil
		}

		if !needMore() {
			return true, nil
		}
	}
}

// admit runs the business rules on a candidate and appends it to the results when it passes.
func (p *PaxFarePathFactory) admit(fpf *FarePathFactory, item *FPPQItem, isIntegrated bool, addForDups *int) (bool, error) {
	valid, err := p.validator.ValidAfterPlusUps(item.farePath)
	if err != nil {
		return false, err
	}
	if !valid {
		p.releaseFPPQItem(fpf, item)
		p.failedFarePaths++
		if budget := p.state.cfg.MaxFailedFarePaths; budget > 0 && p.failedFarePaths > budget {
			return false, newSearchError(KindTooManyCombinations, CodeTooManyCombos, "failed fare path budget exceeded", nil)
		}
		return false, nil
	}
	if isIntegrated && !p.isValidForIntegrated(item.farePath) {
		p.releaseFPPQItem(fpf, item)
		return false, nil
	}
	if !p.allowDuplicateTotals {
		p.checkUniqueFarePathTotals(item.farePath, addForDups, true)
	}
	p.appendValid(item)
	return true, nil
}

func (p *PaxFarePathFactory) appendValid(item *FPPQItem) {
	p.validItems = append(p.validItems, item)
	if !item.farePath.Duplicate {
		p.distinct = append(p.distinct, len(p.validItems)-1)
	}
}

// checkAborted polls the transaction on the first iteration of every extension and every
// AbortCheckInterval iterations after that. Past MaxNbrCombMsgThreshold combinations the
// first abort of a non-shopping transaction is reported as MaxCombosExceeded.
func (p *PaxFarePathFactory) checkAborted(iter int) error {
	interval := p.state.cfg.AbortCheckInterval
	if interval > 1 && iter%interval != 0 {
		return nil
	}
	err := p.trx.Aborted()
	if err == nil {
		return nil
	}
	if !p.trx.IsShopping() && p.state.fpCombTried > p.state.cfg.MaxNbrCombMsgThreshold && !p.maxNbrCombMsgSet {
		p.maxNbrCombMsgSet = true
		return newSearchError(KindMaxCombosExceeded, CodeMaxNumberCombosExceeded, MsgMaxCombinationsExceeded, err)
	}
	return newSearchError(KindCancelled, CodeTransactionTimeout, "transaction aborted", err)
}

// searchFailed converts a search failure. An exchange transaction that already holds a result
// keeps it: the failure becomes the transaction's reissue error and the search stops without
// an error. Everything else is returned to the caller.
func (p *PaxFarePathFactory) searchFailed(err error) (bool, error) {
	rexWithResult := p.trx.RexNewItin && len(p.validItems) > 0

	var se *SearchError
	if errors.As(err, &se) && se.Kind == KindTooManyCombinations {
		p.state.log.Debug().Msg("REACH MAXIMUM FAREPATH/FLIGHT FAILED COUNT FROM A SHOPPING QUEUE")
		if rexWithResult {
			p.trx.SetReissueError(se)
			p.reissueStopped = true
			return false, nil
		}
		return false, err
	}

	p.state.log.Error().Err(err).Int("fp_count", len(p.validItems)).Msg("Build Pax-FarePath Failed or Timed-Out")
	if rexWithResult {
		p.trx.SetReissueError(newSearchError(KindMaxCombosExceeded, CodeMaxNumberCombosExceeded, MsgMaxCombinationsExceeded, err))
		p.reissueStopped = true
		return false, nil
	}
	return false, err
}

func (p *PaxFarePathFactory) releaseFPPQItem(fpf *FarePathFactory, item *FPPQItem) {
	// shopping keeps failed candidates referenced
	if p.trx.IsShopping() {
		return
	}
	fpf.ReleaseFPPQItem(item)
}

// checkAltDates abandons the search once the cheapest factory of a multi-date MIP request is
// over the cut-off threshold.
func (p *PaxFarePathFactory) checkAltDates(fpf *FarePathFactory) bool {
	if !p.trx.IsAltDates() || p.trx.Type != TrxMIP || len(p.trx.AltDatePairs) <= 1 {
		return true
	}
	cutOff := p.trx.AltDateCutOffNuc
	if cutOff > 0 && fpf.LowerBoundFPAmount()-cutOff > Epsilon {
		p.state.log.Debug().Float64("lower_bound", fpf.LowerBoundFPAmount()).Msg("Too expensive")
		p.trx.SetCutOffReached()
		return false
	}
	return true
}

// fpCountDiagParam returns the "FP" parameter of fare path diagnostics: the number of
// candidates to generate per extension.
func (p *PaxFarePathFactory) fpCountDiagParam() int {
	d := p.trx.Diagnostic
	if d.Code == DiagNone {
		return 0
	}
	if (d.Code >= DiagFarePathMin && d.Code <= DiagFarePathMax && d.Code != DiagExcluded666) ||
		d.Code == Diag910 || d.Code == Diag413 || d.Code == Diag420 {
		if v, ok := d.Param("FP"); ok {
			n, _ := strconv.Atoi(v)
			return n
		}
	}
	return 0
}

func (p *PaxFarePathFactory) pqTop() *FarePathFactory {
	v, ok := p.bucket.Peek()
	if !ok {
		return nil
	}
	return v.(*FarePathFactory)
}

func (p *PaxFarePathFactory) pqPop() {
	p.bucket.Dequeue()
}

func (p *PaxFarePathFactory) pqPush(fpf *FarePathFactory) {
	p.bucket.Enqueue(fpf)
}

func (p *PaxFarePathFactory) pqPushIfLive(fpf *FarePathFactory) {
	if fpf.LowerBoundFPAmount() >= 0 {
		p.pqPush(fpf)
	}
}
