package pricing

import (
	"strings"
	"time"

	"github.com/emirpasic/gods/queues/priorityqueue"
	"github.com/rs/zerolog"

	"github.com/guttosm/farepath-service/internal/domain/model"
)

// searchState is shared by the orchestrator and every FarePathFactory of one passenger search.
type searchState struct {
	trx     *Trx
	paxType *model.PaxType
	cfg     FactoriesConfig
	clock   func() time.Time
	start   time.Time
	log     zerolog.Logger

	fpCombTried             int
	validFPPushedBack       bool
	pricingShortCktHappened bool
}

func (s *searchState) elapsed() time.Duration {
	return s.clock().Sub(s.start)
}

// shutdownTimeReached reports whether the near-timeout deadline for all factories has passed.
func (s *searchState) shutdownTimeReached() bool {
	return s.cfg.ShortCktShutdownFPFsTime > 0 && s.elapsed() >= s.cfg.ShortCktShutdownFPFsTime
}

// keepValidTimeReached reports whether a factory should stop after a plus-up push back.
func (s *searchState) keepValidTimeReached() bool {
	return s.cfg.ShortCktKeepValidFPsTime > 0 && s.elapsed() >= s.cfg.ShortCktKeepValidFPsTime
}

// farePathRules are the oracles a FarePathFactory applies before handing out a candidate.
type farePathRules struct {
	combinability CombinabilityChecker
	plusUp        PlusUpCalculator
}

// FarePathFactory produces, on demand, the next cheapest fare path of one PUPath.
// Candidates are index tuples into the PricingUnitFactory of every PU of the path.
type FarePathFactory struct {
	puPath *model.PUPath
	pufs   []*PricingUnitFactory
	rules  farePathRules
	state  *searchState
	order  uint64

	pq         *priorityqueue.Queue
	seq        uint64
	lowerBound float64
	externalLB float64

	fpCombTried     int
	fpCount         int
	released        int
	plusUpPushBacks int
	shutdown        bool

	multiPaxShortCktStarted bool
	searchedFareBasis       map[string]struct{}
}

func newFarePathFactory(puPath *model.PUPath, pufs []*PricingUnitFactory, rules farePathRules, state *searchState, order uint64) *FarePathFactory {
	return &FarePathFactory{
		puPath:            puPath,
		pufs:              pufs,
		rules:             rules,
		state:             state,
		order:             order,
		pq:                priorityqueue.NewWith(lowToHigh),
		lowerBound:        -1,
		externalLB:        -1,
		searchedFareBasis: make(map[string]struct{}),
	}
}

// PUPath returns the path searched by the factory.
func (f *FarePathFactory) PUPath() *model.PUPath {
	return f.puPath
}

// FareMarketPath returns the fare-break configuration of the path.
func (f *FarePathFactory) FareMarketPath() *model.FareMarketPath {
	return f.puPath.FareMarketPath
}

func (f *FarePathFactory) rank() int {
	if fmp := f.FareMarketPath(); fmp != nil {
		return fmp.ThroughFarePrecedenceRank
	}
	return 0
}

// Init primes the queue with the cheapest combination. It returns false, leaving the lower
// bound negative, when some PU of the path has no valid pricing unit.
func (f *FarePathFactory) Init() bool {
	for _, puf := range f.pufs {
		if puf.Get(0) == nil {
			f.lowerBound = -1
			return false
		}
	}
	if len(f.pufs) == 0 {
		f.lowerBound = -1
		return false
	}
	f.pq.Enqueue(f.newItem(make([]int, len(f.pufs)), 0))
	f.setLowerBound()
	return true
}

// LowerBoundFPAmount is the amount of the cheapest queued candidate; negative once exhausted.
func (f *FarePathFactory) LowerBoundFPAmount() float64 {
	return f.lowerBound
}

// LowerBoundFPPQItem returns the cheapest queued candidate without removing it.
func (f *FarePathFactory) LowerBoundFPPQItem() *FPPQItem {
	v, ok := f.pq.Peek()
	if !ok {
		return nil
	}
	return v.(*FPPQItem)
}

// SetExternalLowerBoundAmount tells the factory the best competing bound.
func (f *FarePathFactory) SetExternalLowerBoundAmount(amount float64) {
	f.externalLB = amount
}

// ExternalLowerBoundAmount returns the last competing bound set by the orchestrator.
func (f *FarePathFactory) ExternalLowerBoundAmount() float64 {
	return f.externalLB
}

// FPCombTried is the number of combinations popped and evaluated.
func (f *FarePathFactory) FPCombTried() int {
	return f.fpCombTried
}

// FPCount is the number of candidates handed out and not pushed back.
func (f *FarePathFactory) FPCount() int {
	return f.fpCount
}

// Shutdown reports whether KeepValidItems stopped the factory.
func (f *FarePathFactory) Shutdown() bool {
	return f.shutdown
}

// GetNextFPPQItem pops one candidate. It returns the candidate when it passes the structural
// checks and is still the cheapest after plus-ups, and nil otherwise; the lower bound is
// refreshed either way and turns negative once the queue is empty.
func (f *FarePathFactory) GetNextFPPQItem(diag DiagnosticSink) *FPPQItem {
	v, ok := f.pq.Dequeue()
	if !ok {
		f.lowerBound = -1
		return nil
	}
	item := v.(*FPPQItem)
	fp := item.farePath

	if fp.Processed {
		f.fpCount++
		f.setLowerBound()
		return item
	}

	f.fpCombTried++
	f.state.fpCombTried++

	valid := f.rules.combinability == nil || f.rules.combinability.Combinable(fp)
	if !valid {
		emitf(diag, DiagFarePathMin, "%s FP %s %.2f NOT COMBINABLE", f.state.paxType.Code, strings.Join(fp.FareBasis(), "-"), fp.TotalNUCAmount())
	}

	f.buildNextFarePathSet(item)
	f.setLowerBound()

	if !valid {
		f.ReleaseFPPQItem(item)
		return nil
	}

	fp.Processed = true
	plusUp := 0.0
	if f.rules.plusUp != nil {
		plusUp = f.rules.plusUp.PlusUp(fp)
	}
	if plusUp < Epsilon {
		f.fpCount++
		return item
	}

	fp.PlusUpAmount = plusUp
	if f.lowerBound < 0 || f.lowerBound-fp.TotalNUCAmount() > Epsilon {
		f.fpCount++
		return item
	}

	if f.startMultiPaxShortCkt() {
		return nil
	}

	if !f.reachedPushBackLimit() {
		f.plusUpPushBacks++
		f.pq.Enqueue(item)
		f.state.validFPPushedBack = true
		f.setLowerBound()
	}

	if !f.state.trx.ForceNoTimeout && f.state.keepValidTimeReached() {
		f.state.pricingShortCktHappened = true
		f.KeepValidItems()
		f.state.log.Warn().Str("pax_type", f.state.paxType.Code).Msg("Almost timeout, keeping valid items")
	}
	return nil
}

// PushBack returns a handed out candidate to the queue.
func (f *FarePathFactory) PushBack(item *FPPQItem) {
	if f.fpCount > 0 {
		f.fpCount--
	}
	f.pq.Enqueue(item)
	f.setLowerBound()
}

// ReleaseFPPQItem drops a candidate rejected by the caller.
func (f *FarePathFactory) ReleaseFPPQItem(item *FPPQItem) {
	f.released++
	item.puIndices = nil
}

// KeepValidItems drops every queued candidate that was not yet evaluated and stops the
// factory from generating new ones. It returns the number of candidates kept.
func (f *FarePathFactory) KeepValidItems() int {
	var kept []*FPPQItem
	for !f.pq.Empty() {
		v, _ := f.pq.Dequeue()
		item := v.(*FPPQItem)
		if item.farePath.Processed {
			kept = append(kept, item)
		} else {
			f.ReleaseFPPQItem(item)
		}
	}
	for _, item := range kept {
		f.pq.Enqueue(item)
	}
	f.setLowerBound()
	f.fpCount = f.pq.Size()
	f.fpCombTried = f.fpCount
	f.shutdown = true
	return f.fpCount
}

// GetSameFareBasisFPPQItem builds the fare path using, in every pricing unit, the fare classes
// of primary. Each primary fare basis is tried once per factory.
func (f *FarePathFactory) GetSameFareBasisFPPQItem(primary *FPPQItem, diag DiagnosticSink) *FPPQItem {
	primaryFP := primary.FarePath()
	var basis strings.Builder
	for _, fu := range primaryFP.FareUsages() {
		basis.WriteString(fu.Fare.FareClass)
	}
	if _, tried := f.searchedFareBasis[basis.String()]; tried {
		return nil
	}
	f.searchedFareBasis[basis.String()] = struct{}{}

	if len(primaryFP.PricingUnits) != len(f.pufs) {
		return nil
	}
	units := make([]*model.PricingUnit, len(f.pufs))
	for i, puf := range f.pufs {
		units[i] = puf.SameFareBasis(primaryFP.PricingUnits[i])
		if units[i] == nil {
			emitf(diag, DiagFarePathMin, "NO MORE VALID FARE FOUND IN THIS MARKET FOR PU %s", puf.PU().ID)
			return nil
		}
	}

	f.seq++
	item := &FPPQItem{
		farePath:      model.NewFarePath(f.state.paxType, f.puPath, units),
		factory:       f,
		seq:           f.seq,
		sameFareBasis: true,
	}
	if f.rules.combinability != nil && !f.rules.combinability.Combinable(item.farePath) {
		return nil
	}
	if f.rules.plusUp != nil {
		item.farePath.PlusUpAmount = f.rules.plusUp.PlusUp(item.farePath)
	}
	item.farePath.Processed = true
	return item
}

// buildNextFarePathSet queues the successors of item: one more expensive pricing unit at each
// position from the item's xPoint on.
func (f *FarePathFactory) buildNextFarePathSet(item *FPPQItem) {
	if f.shutdown {
		return
	}
	for x := item.xPoint; x < len(item.puIndices); x++ {
		next := item.puIndices[x] + 1
		if f.pufs[x].Get(next) == nil {
			continue
		}
		indices := append([]int(nil), item.puIndices...)
		indices[x] = next
		f.pq.Enqueue(f.newItem(indices, x))
	}
}

func (f *FarePathFactory) newItem(indices []int, xPoint int) *FPPQItem {
	units := make([]*model.PricingUnit, len(indices))
	for i, idx := range indices {
		units[i] = f.pufs[i].Get(idx)
	}
	f.seq++
	return &FPPQItem{
		farePath:  model.NewFarePath(f.state.paxType, f.puPath, units),
		factory:   f,
		puIndices: indices,
		xPoint:    xPoint,
		seq:       f.seq,
	}
}

func (f *FarePathFactory) setLowerBound() {
	if item := f.LowerBoundFPPQItem(); item != nil {
		f.lowerBound = item.Amount()
		return
	}
	f.lowerBound = -1
}

func (f *FarePathFactory) reachedPushBackLimit() bool {
	return f.state.cfg.PlusUpPushBackMax > 0 && f.plusUpPushBacks > f.state.cfg.PlusUpPushBackMax
}

// startMultiPaxShortCkt gives up on plus-up ordering for accompanied passenger types of a
// multi-passenger request once enough push backs happened and the timeout passed.
func (f *FarePathFactory) startMultiPaxShortCkt() bool {
	trx := f.state.trx
	if trx.IsShopping() || trx.AltPricing || len(trx.PaxTypes) <= 1 || f.state.cfg.PlusUpPushBackThreshold < 0 {
		return false
	}
	if f.state.paxType.IsAdult() || f.multiPaxShortCktStarted {
		return false
	}
	if f.plusUpPushBacks >= f.state.cfg.PlusUpPushBackThreshold && f.state.elapsed() > f.state.cfg.MultiPaxShortCktTimeout {
		f.multiPaxShortCktStarted = true
		return true
	}
	return false
}
