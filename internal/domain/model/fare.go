// Package model defines the fare-domain entities searched by the pricing engine.
package model

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// CurrencyNUC is the neutral unit of construction every fare amount is expressed in.
const CurrencyNUC = "NUC"

// Passenger type codes with special handling in the search.
const (
	PaxAdult          = "ADT"
	PaxChild          = "CNN"
	PaxInfant         = "INF"
	PaxInfantWithSeat = "INS"
)

// DatePair identifies one outbound/inbound date combination of an alternate-date request.
type DatePair struct {
	Outbound string `json:"outbound" yaml:"outbound" bson:"outbound"`
	Inbound  string `json:"inbound,omitempty" yaml:"inbound,omitempty" bson:"inbound,omitempty"`
}

func (d DatePair) String() string {
	if d.Inbound == "" {
		return d.Outbound
	}
	return d.Outbound + "/" + d.Inbound
}

// PaxType is a passenger type priced by its own search.
type PaxType struct {
	Code   string
	Number int
}

// IsInfant reports whether fares for this passenger must be validated against an accompanying adult.
func (p *PaxType) IsInfant() bool {
	return p != nil && (p.Code == PaxInfant || p.Code == PaxInfantWithSeat)
}

// IsAdult reports whether this is the adult passenger type.
func (p *PaxType) IsAdult() bool {
	return p != nil && p.Code == PaxAdult
}

// Itin is one itinerary variant (similar itinerary or alternate date) being priced.
type Itin struct {
	ID                  string
	DatePair            *DatePair
	OriginationCurrency string
	IntlSaleIndicator   string
}

// Currency returns the origination currency, defaulting to NUC.
func (i *Itin) Currency() string {
	if i == nil || i.OriginationCurrency == "" {
		return CurrencyNUC
	}
	return i.OriginationCurrency
}

// Directionality restricts the pricing unit types a fare may be used in.
type Directionality int

const (
	DirectionalityAny Directionality = iota
	DirectionalityOneWayOnly
	DirectionalityRoundTripOnly
)

// PaxTypeFare is a published fare for one passenger type on one fare market.
// Amount is in NUC.
type PaxTypeFare struct {
	ID                string
	PaxType           string
	FareClass         string
	Vendor            string
	Carrier           string
	Tariff            int
	RuleNumber        string
	BookingCode       string
	Amount            float64
	PlusUp            float64
	Directionality    Directionality
	IntlSaleIndicator string
	RuleFailed        bool
}

// SameFare reports whether two fares are the same published fare (vendor, carrier, tariff, rule, class).
func (f *PaxTypeFare) SameFare(other *PaxTypeFare) bool {
	return f.Vendor == other.Vendor &&
		f.Carrier == other.Carrier &&
		f.Tariff == other.Tariff &&
		f.RuleNumber == other.RuleNumber &&
		f.FareClass == other.FareClass
}

// FareMarket is an origin-destination pair and the fares published on it.
type FareMarket struct {
	ID          string
	Origin      string
	Destination string
	Carrier     string
	Fares       []*PaxTypeFare
}

// FaresFor returns the fares for a passenger type sorted by ascending amount.
// Fares with equal amounts keep their published order.
func (m *FareMarket) FaresFor(paxType string) []*PaxTypeFare {
	fares := make([]*PaxTypeFare, 0, len(m.Fares))
	for _, f := range m.Fares {
		if f.PaxType == paxType {
			fares = append(fares, f)
		}
	}
	sort.SliceStable(fares, func(i, j int) bool {
		return fares[i].Amount < fares[j].Amount
	})
	return fares
}

// CheapestAmount returns the lowest fare amount for a passenger type.
func (m *FareMarket) CheapestAmount(paxType string) (float64, bool) {
	found := false
	cheapest := math.MaxFloat64
	for _, f := range m.Fares {
		if f.PaxType == paxType && f.Amount < cheapest {
			cheapest = f.Amount
			found = true
		}
	}
	return cheapest, found
}

// PUType is the pricing unit geometry.
type PUType int

const (
	PUOneWay PUType = iota
	PURoundTrip
	PUCircleTrip
	PUOpenJaw
)

var puTypeNames = map[PUType]string{
	PUOneWay:     "OW",
	PURoundTrip:  "RT",
	PUCircleTrip: "CT",
	PUOpenJaw:    "OJ",
}

func (t PUType) String() string {
	if s, ok := puTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("PUType(%d)", int(t))
}

// ParsePUType parses a two-letter pricing unit type code.
func ParsePUType(s string) (PUType, error) {
	for t, name := range puTypeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return PUOneWay, fmt.Errorf("unknown pricing unit type %q", s)
}

// PU groups the fare markets priced together under one combinability context.
// PUs are shared between PUPaths of the same transaction.
type PU struct {
	ID          string
	Type        PUType
	FareMarkets []*FareMarket
}

// PUPath assigns pricing units to the fare markets of a FareMarketPath.
type PUPath struct {
	ID             string
	PUs            []*PU
	FareMarketPath *FareMarketPath
	Itin           *Itin
}

// AllPU returns the pricing units of the path.
func (p *PUPath) AllPU() []*PU {
	return p.PUs
}

// FareMarketPath is one fare-break configuration of an itinerary.
type FareMarketPath struct {
	ID                        string
	PUPaths                   []*PUPath
	FareMarkets               []*FareMarket
	ThroughFarePrecedenceRank int
	ThruPricing               bool
}

// FirstFareAmt returns the cheapest possible total for the passenger type: the sum of the
// cheapest fare on every fare market. It returns math.MaxFloat64 when a fare market has no fare.
func (f *FareMarketPath) FirstFareAmt(paxType string) float64 {
	total := 0.0
	for _, fm := range f.FareMarkets {
		amt, ok := fm.CheapestAmount(paxType)
		if !ok {
			return math.MaxFloat64
		}
		total += amt
	}
	return total
}

// Itin returns the itinerary the configuration belongs to.
func (f *FareMarketPath) Itin() *Itin {
	for _, p := range f.PUPaths {
		if p.Itin != nil {
			return p.Itin
		}
	}
	return nil
}

// PUPathMatrix holds every fare-break configuration of one itinerary variant.
type PUPathMatrix struct {
	Itin            *Itin
	FareMarketPaths []*FareMarketPath
}

// PUPaths returns all PUPaths of the matrix in configuration order.
func (m *PUPathMatrix) PUPaths() []*PUPath {
	var paths []*PUPath
	for _, fmp := range m.FareMarketPaths {
		paths = append(paths, fmp.PUPaths...)
	}
	return paths
}
