package pricing

import (
	"math"
	"sort"

	"github.com/guttosm/farepath-service/internal/domain/model"
)

// processFareMarketPaths collects every configuration that has a fare for the passenger type,
// sorted by through fare precedence rank and then by first fare amount.
func (p *PaxFarePathFactory) processFareMarketPaths() bool {
	for _, matrix := range p.matrices {
		for _, fmp := range matrix.FareMarketPaths {
			amt := fmp.FirstFareAmt(p.paxType.Code)
			if amt == math.MaxFloat64 {
				continue
			}
			p.firstFareAmt[fmp] = amt
			p.allFareMarketPaths = append(p.allFareMarketPaths, fmp)
		}
	}
	sort.SliceStable(p.allFareMarketPaths, func(i, j int) bool {
		a, b := p.allFareMarketPaths[i], p.allFareMarketPaths[j]
		if a.ThroughFarePrecedenceRank == b.ThroughFarePrecedenceRank {
			return p.firstFareAmt[a] < p.firstFareAmt[b]
		}
		return a.ThroughFarePrecedenceRank < b.ThroughFarePrecedenceRank
	})
	return len(p.allFareMarketPaths) > 0
}

func (p *PaxFarePathFactory) updateGaussForDelayedExpansion() {
	for _, fmp := range p.allFareMarketPaths {
		for range fmp.PUPaths {
			p.gauss.include(1)
		}
	}
}

func (p *PaxFarePathFactory) shouldExpandNextFareMarketPath(fmp *model.FareMarketPath) bool {
	if p.trx.ThroughFarePricing && !fmp.ThruPricing {
		return false
	}
	if _, done := p.expandedSameFareBreakFmps[fmp]; done {
		return false
	}
	if p.trx.IsAltDates() {
		if len(fmp.PUPaths) == 0 {
			return false
		}
		if itin := fmp.PUPaths[0].Itin; itin != nil && itin.DatePair != nil {
			if _, done := p.doneDatePairs[*itin.DatePair]; done {
				return false
			}
		}
		if cutOff := p.trx.AltDateCutOffNuc; cutOff > 0 && p.firstFareAmt[fmp]-cutOff > Epsilon {
			return false
		}
	}
	return true
}

// expandNextFareMarketPath walks the unexpanded configurations from the cursor and builds
// factories for a batch of them. Configurations tied in amount are batched together, and the
// walk stops once no unexpanded configuration is as cheap as the best live factory.
func (p *PaxFarePathFactory) expandNextFareMarketPath(diag DiagnosticSink) {
	if !p.trx.DelayExpansion {
		return
	}

	var batch []*model.FareMarketPath
	done := false
	for !done && p.fmpXPoint < len(p.allFareMarketPaths) {
		fmp := p.allFareMarketPaths[p.fmpXPoint]
		current := p.pqTop()
		expand := p.shouldExpandNextFareMarketPath(fmp)
		if expand {
			batch = append(batch, fmp)
		}
		emitf(diag, DiagExpansion, "%s FMP %d %s AMT %.2f RANK %d EXPAND %t",
			p.paxType.Code, p.fmpXPoint, fmp.ID, p.firstFareAmt[fmp], fmp.ThroughFarePrecedenceRank, expand)

		p.fmpXPoint++
		p.setExternalFmpLowerBoundAmount(fmp)

		if p.isNextFmpSameAmount(fmp) || (current != nil && p.sameOrLowerAmountFmpExists(current)) {
			continue
		}
		if len(batch) == 0 {
			continue
		}

		success := p.createFarePathFactoriesForDelayXpn(batch) && p.addFarePathFactoriesToPQ(diag)
		if success && !p.sameOrLowerAmountFmpExists(p.pqTop()) {
			done = true
		}
		emitf(diag, DiagExpansion, "%s EXPANDED %d FMP PQ SIZE %d FACTORIES %d",
			p.paxType.Code, len(batch), p.bucket.Size(), len(p.factoriesByPath))
		batch = batch[:0]
	}
}

// ExpandFareMarketPath builds the factories of one configuration ahead of the cursor.
func (p *PaxFarePathFactory) ExpandFareMarketPath(fmp *model.FareMarketPath, diag DiagnosticSink) {
	if p.fmpXPoint >= len(p.allFareMarketPaths) {
		return
	}
	for _, expanded := range p.allFareMarketPaths[:p.fmpXPoint] {
		if expanded == fmp {
			return
		}
	}
	if _, done := p.expandedSameFareBreakFmps[fmp]; done {
		return
	}
	if p.createFarePathFactoriesForDelayXpn([]*model.FareMarketPath{fmp}) {
		p.addFarePathFactoriesToPQ(diag)
	}
	p.expandedSameFareBreakFmps[fmp] = struct{}{}
}

func (p *PaxFarePathFactory) createFarePathFactoriesForDelayXpn(fmps []*model.FareMarketPath) bool {
	var paths []*model.PUPath
	for _, fmp := range fmps {
		paths = append(paths, fmp.PUPaths...)
	}
	p.puFactories.primeForDelayXpn(paths)

	p.newFactories = p.newFactories[:0]
	p.createFarePathFactoriesFor(paths)
	return len(p.newFactories) > 0
}

func (p *PaxFarePathFactory) createFarePathFactories() bool {
	p.newFactories = p.newFactories[:0]
	for _, matrix := range p.matrices {
		p.createFarePathFactoriesFor(matrix.PUPaths())
	}
	return len(p.newFactories) > 0
}

// createFarePathFactoriesFor creates one factory per PUPath. A PUPath never gets a second one.
func (p *PaxFarePathFactory) createFarePathFactoriesFor(paths []*model.PUPath) {
	for _, path := range paths {
		if _, exists := p.factoriesByPath[path]; exists {
			continue
		}
		pufs := make([]*PricingUnitFactory, len(path.AllPU()))
		for i, pu := range path.AllPU() {
			pufs[i] = p.puFactories.get(pu)
		}
		p.factoryOrder++
		fpf := newFarePathFactory(path, pufs, p.fpRules, p.state, p.factoryOrder)
		p.factoriesByPath[path] = fpf
		p.newFactories = append(p.newFactories, fpf)
	}
}

// addFarePathFactoriesToPQ primes the newly created factories and queues those that can
// produce a fare path.
func (p *PaxFarePathFactory) addFarePathFactoriesToPQ(diag DiagnosticSink) bool {
	added := false
	for _, fpf := range p.newFactories {
		if fpf.Init() && fpf.LowerBoundFPAmount() >= 0 {
			p.pqPush(fpf)
			if !p.trx.DelayExpansion {
				p.gauss.include(1)
			}
			added = true
			continue
		}
		emitf(diag, DiagExpansion, "%s PUPATH %s NO FARE PATH", p.paxType.Code, fpf.PUPath().ID)
		p.state.log.Debug().Str("pu_path", fpf.PUPath().ID).Msg("FarePathFactory init failed")
		if p.trx.DelayExpansion {
			p.gauss.exclude(1)
		}
	}
	p.newFactories = p.newFactories[:0]
	return added
}

func (p *PaxFarePathFactory) setExternalFmpLowerBoundAmount(current *model.FareMarketPath) {
	if p.fmpXPoint >= len(p.allFareMarketPaths) {
		p.externalFmpLowerBound = -1
		return
	}
	next := p.allFareMarketPaths[p.fmpXPoint]
	if current.ThroughFarePrecedenceRank != next.ThroughFarePrecedenceRank {
		p.externalFmpLowerBound = -1
		return
	}
	p.externalFmpLowerBound = p.firstFareAmt[next]
}

func (p *PaxFarePathFactory) isNextFmpSameAmount(current *model.FareMarketPath) bool {
	if p.fmpXPoint >= len(p.allFareMarketPaths) {
		return false
	}
	next := p.allFareMarketPaths[p.fmpXPoint]
	if current.ThroughFarePrecedenceRank != next.ThroughFarePrecedenceRank {
		return false
	}
	return math.Abs(p.firstFareAmt[next]-p.firstFareAmt[current]) <= Epsilon
}

// sameOrLowerAmountFmpExists reports whether an unexpanded configuration could beat fpf.
func (p *PaxFarePathFactory) sameOrLowerAmountFmpExists(fpf *FarePathFactory) bool {
	if p.externalFmpLowerBound < 0 || fpf == nil {
		return false
	}
	delta := p.externalFmpLowerBound - fpf.LowerBoundFPAmount()
	return delta < 0 || math.Abs(delta) <= Epsilon
}

// updateNextLowerBoundFPAmount lets the next unexpanded configuration replace the competing
// bound when it is cheaper. The second result reports whether it did.
func (p *PaxFarePathFactory) updateNextLowerBoundFPAmount(next float64) (float64, bool) {
	if p.externalFmpLowerBound < 0 {
		return next, false
	}
	if next < 0 || p.externalFmpLowerBound < next {
		return p.externalFmpLowerBound, true
	}
	return next, false
}

// removeObsoleteFactories drops factories that can no longer contribute: non through-fare
// configurations under through fare pricing and date pairs that have all their solutions.
func (p *PaxFarePathFactory) removeObsoleteFactories(diag DiagnosticSink) {
	if !p.trx.DelayExpansion {
		return
	}
	if p.trx.ThroughFarePricing {
		p.removeFPF(diag, "NON THRU PRICING", func(fpf *FarePathFactory) bool {
			return !fpf.FareMarketPath().ThruPricing
		})
	} else if p.trx.IsAltDates() {
		for dp, info := range p.trx.AltDatePairs {
			if info.NumOfSolutionNeeded() != 0 {
				continue
			}
			if _, done := p.doneDatePairs[dp]; done {
				continue
			}
			p.doneDatePairs[dp] = struct{}{}
			datePair := dp
			p.removeFPF(diag, "DATE PAIR "+datePair.String(), func(fpf *FarePathFactory) bool {
				itin := fpf.PUPath().Itin
				return itin != nil && itin.DatePair != nil && *itin.DatePair == datePair
			})
		}
	}
	if p.bucket.Empty() {
		p.expandNextFareMarketPath(diag)
	}
}

// removeFPF drops the queued factories matching match. Dropped factories keep their PUPath
// registration so the path is never expanded again. Removals are traced under delayed
// expansion only.
func (p *PaxFarePathFactory) removeFPF(diag DiagnosticSink, reason string, match func(*FarePathFactory) bool) {
	values := p.bucket.Values()
	p.bucket.Clear()
	for _, v := range values {
		fpf := v.(*FarePathFactory)
		if match(fpf) {
			if p.trx.DelayExpansion {
				emitf(diag, DiagExpansion, "%s REMOVED PUPATH %s: %s", p.paxType.Code, fpf.PUPath().ID, reason)
			}
			fpf.KeepValidItems()
			continue
		}
		p.pqPush(fpf)
	}
}
