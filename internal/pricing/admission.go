package pricing

import (
	"math"

	"github.com/guttosm/farepath-service/internal/domain/model"
)

const zeroAmount = Epsilon

// checkUniqueFarePathTotals flags fp as a duplicate when its total, in the itinerary
// currency, is within one currency unit of the last decimal of an accepted total.
// Otherwise the total is recorded.
func (p *PaxFarePathFactory) checkUniqueFarePathTotals(fp *model.FarePath, addForDups *int, markDups bool) {
	amount := fp.TotalNUCAmount()
	noDec := 2
	if fp.Itin != nil {
		if currency := fp.Itin.Currency(); currency != model.CurrencyNUC {
			converted, dec, err := p.trx.Converter.Convert(amount, currency)
			if err != nil {
				p.state.log.Error().Err(err).Str("currency", currency).Msg("Currency conversion error")
			} else {
				amount, noDec = converted, dec
			}
		}
	}
	diff := 1 / math.Pow10(noDec)

	dup := false
	if node, ok := p.uniqueTotals.Floor(amount); ok && amount-node.Key.(float64) <= diff {
		dup = true
	} else if node, ok := p.uniqueTotals.Ceiling(amount); ok && node.Key.(float64)-amount <= diff {
		dup = true
	}

	if dup {
		*addForDups++
		if markDups {
			fp.Duplicate = true
		}
		return
	}
	p.uniqueTotals.Put(amount, struct{}{})
}

// buildFarePathsAmounts seeds the accepted totals with the fare paths of the passenger type
// already collected by the transaction.
func (p *PaxFarePathFactory) buildFarePathsAmounts() {
	addForDups := 0
	for _, fp := range p.trx.CollectedFarePaths {
		if fp.PaxType != nil && fp.PaxType.Code == p.paxType.Code {
			p.checkUniqueFarePathTotals(fp, &addForDups, false)
		}
	}
}

// isValidForIntegrated rejects a fare path already collected by the transaction: same
// passenger type, same pricing unit structure and the same fares. Booking codes are only
// compared for non Axess agents.
func (p *PaxFarePathFactory) isValidForIntegrated(fp *model.FarePath) bool {
	for _, collected := range p.trx.CollectedFarePaths {
		if matchesCollected(fp, collected, p.trx.AxessAgent) {
			return false
		}
	}
	return true
}

func matchesCollected(fp, collected *model.FarePath, axess bool) bool {
	if fp.PaxType == nil || collected.PaxType == nil || fp.PaxType.Code != collected.PaxType.Code {
		return false
	}
	if len(fp.PricingUnits) != len(collected.PricingUnits) {
		return false
	}
	for i, pu := range fp.PricingUnits {
		other := collected.PricingUnits[i]
		if len(pu.FareUsages) != len(other.FareUsages) {
			return false
		}
		for j, fu := range pu.FareUsages {
			match := other.FareUsages[j]
			if !fu.Fare.SameFare(match.Fare) {
				return false
			}
			if !axess && fu.Fare.BookingCode != match.Fare.BookingCode {
				return false
			}
		}
	}
	return true
}

// passAccompaniedRestriction requires the same fare-break configuration as primary, and
// for infants, fares acceptable against the accompanying fare path.
func (p *PaxFarePathFactory) passAccompaniedRestriction(primary, item *FPPQItem) bool {
	if primary.FareMarketPath() != item.FareMarketPath() {
		return false
	}
	fp := item.FarePath()
	if fp.PaxType.IsInfant() {
		return p.accompanied.ValidateInfantFares(fp, primary.FarePath())
	}
	return true
}

func checkISICode(primary, item *FPPQItem) bool {
	return primary.FarePath().IntlSaleIndicator == item.FarePath().IntlSaleIndicator
}

// GetSameFareBreakFPPQItem returns a fare path priced on the fare-break configuration of
// primary, the fare path of the passenger the searched passenger travels with. Accepted fare
// paths are reused first. Infants then try the fare classes of primary. Otherwise the factories
// of that configuration are searched alone until a match is accepted. A nil item without
// error means there is no such fare path.
func (p *PaxFarePathFactory) GetSameFareBreakFPPQItem(primary *FPPQItem, diag DiagnosticSink) (*FPPQItem, error) {
	if primary == nil {
		return nil, nil
	}
	for _, item := range p.validItems {
		if p.passAccompaniedRestriction(primary, item) && checkISICode(primary, item) {
			return item, nil
		}
	}

	fmp := primary.FareMarketPath()
	if p.trx.DelayExpansion {
		p.ExpandFareMarketPath(fmp, diag)
	}
	if p.bucket.Empty() {
		return nil, nil
	}

	if p.paxType.IsInfant() {
		if fpf := p.getMatchingFPF(primary); fpf != nil {
			item := fpf.GetSameFareBasisFPPQItem(primary, diag)
			if item != nil && p.passAccompaniedRestriction(primary, item) && checkISICode(primary, item) {
				return item, nil
			}
		}
	}

	diffFareBreak := p.separateDiffFareBreakFPF(fmp)
	defer func() { p.addFPF(diffFareBreak) }()
	if p.bucket.Empty() {
		return nil, nil
	}

	fpf := p.pqTop()
	tryNextFPF := true
	for iter := 0; ; iter++ {
		if err := p.checkAborted(iter); err != nil {
			if !tryNextFPF {
				p.pqPushIfLive(fpf)
			}
			return nil, err
		}
		if tryNextFPF {
			p.pqPop()
			if !p.checkAltDates(fpf) {
				return nil, nil
			}
		}

		nextLB := -1.0
		if top := p.pqTop(); top != nil {
			nextLB = top.LowerBoundFPAmount()
		}
		fpf.SetExternalLowerBoundAmount(nextLB)

		item := fpf.GetNextFPPQItem(diag)
		if item != nil {
			if nextLB >= 0 && item.Amount()-nextLB > Epsilon {
				fpf.PushBack(item)
			} else {
				valid, err := p.validator.ValidAfterPlusUps(item.farePath)
				if err != nil {
					p.pqPushIfLive(fpf)
					return nil, err
				}
				if valid {
					p.appendValid(item)
					if p.passAccompaniedRestriction(primary, item) && checkISICode(primary, item) {
						p.sameFareBreakMatched(fpf, fmp, diffFareBreak, diag)
						diffFareBreak = nil
						return item, nil
					}
				} else {
					p.releaseFPPQItem(fpf, item)
				}
			}
		}

		tryNextFPF = true
		if fpf.LowerBoundFPAmount() >= 0 {
			keep := true
			if !p.trx.ForceNoTimeout && p.shutdownFPFactory(fpf) {
				p.state.log.Info().Msg("GetSameFareBreakFPPQItem: shortcircuit logic")
				keep = fpf.KeepValidItems() > 0
			}
			if keep {
				if nextLB-fpf.LowerBoundFPAmount() > Epsilon {
					tryNextFPF = false
				} else {
					p.pqPush(fpf)
				}
			}
		}

		if tryNextFPF {
			if p.bucket.Empty() {
				p.state.log.Debug().Msg("GetSameFareBreakFPPQItem: PQ empty")
				return nil, nil
			}
			fpf = p.pqTop()
		}
	}
}

// sameFareBreakMatched settles the queue once an accompanying fare path was found on fmp.
// Without delayed expansion every factory was built upfront and fmp's factories are retired.
// With it the current factory stays queued and an empty queue pulls the next configuration.
func (p *PaxFarePathFactory) sameFareBreakMatched(fpf *FarePathFactory, fmp *model.FareMarketPath, diff []*FarePathFactory, diag DiagnosticSink) {
	if p.trx.DelayExpansion {
		p.pqPushIfLive(fpf)
	} else {
		fpf.KeepValidItems()
		p.removeFPF(diag, "SAME FARE BREAK", func(f *FarePathFactory) bool {
			return f.FareMarketPath() == fmp
		})
	}
	p.addFPF(diff)
	if p.trx.DelayExpansion && p.bucket.Empty() {
		p.expandNextFareMarketPath(diag)
	}
}

// GetFirstValidZeroAmountFPPQItem returns the first zero amount fare path from idx on that
// can travel with primary, and its index in the accepted list. When none was accepted yet,
// the fare classes of primary are tried on its PUPath. It returns -1 when nothing fits.
func (p *PaxFarePathFactory) GetFirstValidZeroAmountFPPQItem(idx int, primary *FPPQItem, diag DiagnosticSink) (*FPPQItem, int) {
	if primary == nil {
		return nil, -1
	}
	fits := func(item *FPPQItem) bool {
		return math.Abs(item.Amount()) < zeroAmount && p.passAccompaniedRestriction(primary, item) && checkISICode(primary, item)
	}
	for ; idx >= 0 && idx < len(p.validItems); idx++ {
		if fits(p.validItems[idx]) {
			return p.validItems[idx], idx
		}
	}

	if p.trx.DelayExpansion {
		p.ExpandFareMarketPath(primary.FareMarketPath(), diag)
	}
	if p.bucket.Empty() {
		p.state.log.Debug().Msg("GetFirstValidZeroAmountFPPQItem: PQ empty")
		return nil, -1
	}
	fpf := p.getMatchingFPF(primary)
	if fpf == nil {
		return nil, -1
	}
	item := fpf.GetSameFareBasisFPPQItem(primary, diag)
	if item == nil || !fits(item) {
		return nil, -1
	}
	p.appendValid(item)
	return item, len(p.validItems) - 1
}

// getMatchingFPF returns the queued factory of the PUPath primary came from.
func (p *PaxFarePathFactory) getMatchingFPF(primary *FPPQItem) *FarePathFactory {
	path := primary.PUPath()
	for _, v := range p.bucket.Values() {
		fpf := v.(*FarePathFactory)
		if fpf.PUPath() == path {
			return fpf
		}
	}
	return nil
}

// separateDiffFareBreakFPF removes from the queue the factories of other fare-break
// configurations and returns them. The factories left are marked so that they never
// short-circuit on plus-up push backs.
func (p *PaxFarePathFactory) separateDiffFareBreakFPF(fmp *model.FareMarketPath) []*FarePathFactory {
	if fmp == nil {
		return nil
	}
	var diff []*FarePathFactory
	values := p.bucket.Values()
	p.bucket.Clear()
	for _, v := range values {
		fpf := v.(*FarePathFactory)
		if fpf.FareMarketPath() == fmp {
			fpf.multiPaxShortCktStarted = true
			p.pqPush(fpf)
		} else {
			diff = append(diff, fpf)
		}
	}
	return diff
}

func (p *PaxFarePathFactory) addFPF(fpfs []*FarePathFactory) {
	for _, fpf := range fpfs {
		p.pqPush(fpf)
	}
}
