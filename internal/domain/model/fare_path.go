package model

import "strings"

// FareUsage is one fare applied to one fare market.
type FareUsage struct {
	FareMarket *FareMarket
	Fare       *PaxTypeFare
}

// PricingUnit is a priced PU: one fare per fare market of the PU.
type PricingUnit struct {
	PU         *PU
	FareUsages []*FareUsage
	NUCAmount  float64
}

// NewPricingUnit prices pu with fares, which must be aligned with pu.FareMarkets.
func NewPricingUnit(pu *PU, fares []*PaxTypeFare) *PricingUnit {
	unit := &PricingUnit{PU: pu, FareUsages: make([]*FareUsage, len(fares))}
	for i, f := range fares {
		unit.FareUsages[i] = &FareUsage{FareMarket: pu.FareMarkets[i], Fare: f}
		unit.NUCAmount += f.Amount
	}
	return unit
}

// FareClasses returns the fare classes of the unit joined by "/".
func (u *PricingUnit) FareClasses() string {
	classes := make([]string, len(u.FareUsages))
	for i, fu := range u.FareUsages {
		classes[i] = fu.Fare.FareClass
	}
	return strings.Join(classes, "/")
}

// FarePath is one complete priced assignment of fares across an itinerary for one passenger type.
type FarePath struct {
	PaxType           *PaxType
	Itin              *Itin
	PUPath            *PUPath
	PricingUnits      []*PricingUnit
	BaseNUCAmount     float64
	PlusUpAmount      float64
	IntlSaleIndicator string
	Duplicate         bool
	Processed         bool
}

// NewFarePath assembles a fare path from priced units.
func NewFarePath(pax *PaxType, path *PUPath, units []*PricingUnit) *FarePath {
	fp := &FarePath{
		PaxType:      pax,
		Itin:         path.Itin,
		PUPath:       path,
		PricingUnits: units,
	}
	for _, u := range units {
		fp.BaseNUCAmount += u.NUCAmount
	}
	if path.Itin != nil {
		fp.IntlSaleIndicator = path.Itin.IntlSaleIndicator
	}
	if fus := fp.FareUsages(); len(fus) > 0 && fus[0].Fare.IntlSaleIndicator != "" {
		fp.IntlSaleIndicator = fus[0].Fare.IntlSaleIndicator
	}
	return fp
}

// TotalNUCAmount is the base amount plus any plus-up.
func (fp *FarePath) TotalNUCAmount() float64 {
	return fp.BaseNUCAmount + fp.PlusUpAmount
}

// FareUsages returns every fare usage in pricing unit order.
func (fp *FarePath) FareUsages() []*FareUsage {
	var fus []*FareUsage
	for _, u := range fp.PricingUnits {
		fus = append(fus, u.FareUsages...)
	}
	return fus
}

// FareBasis returns the fare classes of every pricing unit.
func (fp *FarePath) FareBasis() []string {
	basis := make([]string, len(fp.PricingUnits))
	for i, u := range fp.PricingUnits {
		basis[i] = u.FareClasses()
	}
	return basis
}

// FareMarketPath returns the fare-break configuration the fare path was built from.
func (fp *FarePath) FareMarketPath() *FareMarketPath {
	if fp.PUPath == nil {
		return nil
	}
	return fp.PUPath.FareMarketPath
}
