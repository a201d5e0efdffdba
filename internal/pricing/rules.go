package pricing

import (
	"fmt"

	"github.com/guttosm/farepath-service/internal/domain/model"
)

// PricingUnitValidator performs the structural checks applied while pricing units are built.
type PricingUnitValidator interface {
	ValidPricingUnit(pu *model.PricingUnit) bool
}

// CombinabilityChecker rejects fare paths whose pricing units cannot be combined.
type CombinabilityChecker interface {
	Combinable(fp *model.FarePath) bool
}

// PlusUpCalculator returns the amount a fare path must be raised by after minimum fare checks.
type PlusUpCalculator interface {
	PlusUp(fp *model.FarePath) float64
}

// FarePathValidator is the business rule oracle run before a fare path is accepted.
// An error aborts the search; return ErrTooManyCombinations to signal a failed-combination budget.
type FarePathValidator interface {
	ValidAfterPlusUps(fp *model.FarePath) (bool, error)
}

// FarePathValidatorFunc adapts a function to FarePathValidator.
type FarePathValidatorFunc func(fp *model.FarePath) (bool, error)

func (f FarePathValidatorFunc) ValidAfterPlusUps(fp *model.FarePath) (bool, error) {
	return f(fp)
}

// AccompaniedTravel validates infant fares against the fare path of the accompanying passenger.
type AccompaniedTravel interface {
	ValidateInfantFares(infant, accompanying *model.FarePath) bool
}

// CurrencyConverter converts a NUC amount to a currency and reports its decimal precision.
type CurrencyConverter interface {
	Convert(nuc float64, currency string) (amount float64, noDec int, err error)
}

// FareRules is the default rule set: directionality and same-carrier round trips at the
// pricing unit level, plus-ups from the fares, and fares flagged as rule failures at the
// fare path level.
type FareRules struct{}

func (FareRules) ValidPricingUnit(pu *model.PricingUnit) bool {
	var carrier string
	for i, fu := range pu.FareUsages {
		switch fu.Fare.Directionality {
		case model.DirectionalityOneWayOnly:
			if pu.PU.Type != model.PUOneWay {
				return false
			}
		case model.DirectionalityRoundTripOnly:
			if pu.PU.Type == model.PUOneWay {
				return false
			}
		}
		if pu.PU.Type == model.PURoundTrip || pu.PU.Type == model.PUCircleTrip {
			if i == 0 {
				carrier = fu.Fare.Carrier
			} else if fu.Fare.Carrier != carrier {
				return false
			}
		}
	}
	return true
}

// Combinable rejects fare paths pricing the same fare market twice.
func (FareRules) Combinable(fp *model.FarePath) bool {
	seen := make(map[*model.FareMarket]struct{})
	for _, fu := range fp.FareUsages() {
		if _, dup := seen[fu.FareMarket]; dup {
			return false
		}
		seen[fu.FareMarket] = struct{}{}
	}
	return true
}

func (FareRules) PlusUp(fp *model.FarePath) float64 {
	total := 0.0
	for _, fu := range fp.FareUsages() {
		total += fu.Fare.PlusUp
	}
	return total
}

func (FareRules) ValidAfterPlusUps(fp *model.FarePath) (bool, error) {
	for _, fu := range fp.FareUsages() {
		if fu.Fare.RuleFailed {
			return false, nil
		}
	}
	return true, nil
}

// InfantFareRules requires every infant fare to be on the carrier of the accompanying fare
// at the same position, and not dearer than it.
type InfantFareRules struct{}

func (InfantFareRules) ValidateInfantFares(infant, accompanying *model.FarePath) bool {
	inf := infant.FareUsages()
	acc := accompanying.FareUsages()
	if len(inf) != len(acc) {
		return false
	}
	for i := range inf {
		if inf[i].Fare.Carrier != acc[i].Fare.Carrier {
			return false
		}
		if inf[i].Fare.Amount-acc[i].Fare.Amount > Epsilon {
			return false
		}
	}
	return true
}

// NUCConverter only handles NUC.
type NUCConverter struct{}

func (NUCConverter) Convert(nuc float64, currency string) (float64, int, error) {
	if currency != "" && currency != model.CurrencyNUC {
		return 0, 0, fmt.Errorf("no rate for %s", currency)
	}
	return nuc, 2, nil
}

// StaticRateConverter converts with fixed rates expressed as currency units per NUC.
type StaticRateConverter struct {
	Rates    map[string]float64
	Decimals map[string]int
}

func (c StaticRateConverter) Convert(nuc float64, currency string) (float64, int, error) {
	if currency == "" || currency == model.CurrencyNUC {
		return nuc, 2, nil
	}
	rate, ok := c.Rates[currency]
	if !ok {
		return 0, 0, fmt.Errorf("no rate for %s", currency)
	}
	noDec, ok := c.Decimals[currency]
	if !ok {
		noDec = 2
	}
	return nuc * rate, noDec, nil
}
