// Package dto defines Data Transfer Objects for HTTP request and response handling.
//
// DTOs are used to decouple the HTTP layer from the domain model,
// providing validation and serialization for API communication.
// PriceRequest is also the fixture format read by the price command.
package dto

import (
	"fmt"
	"strings"

	"github.com/guttosm/farepath-service/internal/domain/model"
)

// MaxSolutions bounds how many ranked solutions one request may ask for.
const MaxSolutions = 100

// PriceRequest represents the JSON (or YAML) request body for the price endpoint.
//
// The itinerary graph is already analysed: every fare-break configuration lists its
// pricing unit paths and every pricing unit names the fare markets it groups.
//
// @Description Request to price an analysed itinerary graph
type PriceRequest struct {
	// TrxType is one of pricing, mip, is, nopnr
	TrxType string `json:"trx_type,omitempty" yaml:"trx_type,omitempty" example:"pricing"`
	// Solutions is the number of ranked solutions wanted (default 1)
	Solutions int `json:"solutions,omitempty" yaml:"solutions,omitempty" example:"3"`
	// AltPricing requests alternative pricing per passenger without group matching
	AltPricing bool `json:"alt_pricing,omitempty" yaml:"alt_pricing,omitempty"`
	// DelayExpansion builds fare path factories lazily, cheapest configuration first
	DelayExpansion       bool `json:"delay_expansion,omitempty" yaml:"delay_expansion,omitempty"`
	ThroughFarePricing   bool `json:"through_fare_pricing,omitempty" yaml:"through_fare_pricing,omitempty"`
	RexNewItin           bool `json:"rex_new_itin,omitempty" yaml:"rex_new_itin,omitempty"`
	ForceNoTimeout       bool `json:"force_no_timeout,omitempty" yaml:"force_no_timeout,omitempty"`
	AllowDuplicateTotals bool `json:"allow_duplicate_totals,omitempty" yaml:"allow_duplicate_totals,omitempty"`
	AxessAgent           bool `json:"axess_agent,omitempty" yaml:"axess_agent,omitempty"`
	// AltDateCutOffNUC abandons alternate dates whose cheapest bound exceeds it (0 disables)
	AltDateCutOffNUC float64 `json:"alt_date_cut_off_nuc,omitempty" yaml:"alt_date_cut_off_nuc,omitempty" example:"500"`
	// Diagnostic requests a trace (for example 671 for delayed expansion)
	Diagnostic *DiagnosticRequest `json:"diagnostic,omitempty" yaml:"diagnostic,omitempty"`
	// Passengers lists the passenger types; the first non-infant type is the primary one
	Passengers []PassengerRequest `json:"passengers" yaml:"passengers" binding:"required,min=1"`
	// CurrencyRates converts NUC totals to itinerary currencies
	CurrencyRates map[string]CurrencyRate `json:"currency_rates,omitempty" yaml:"currency_rates,omitempty"`
	// Itineraries holds one entry per itinerary variant (similar itinerary or date pair)
	Itineraries []ItineraryRequest `json:"itineraries" yaml:"itineraries" binding:"required,min=1"`
} // @name PriceRequest

// DiagnosticRequest asks for a diagnostic trace.
type DiagnosticRequest struct {
	Code   int               `json:"code" yaml:"code" example:"671"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
} // @name DiagnosticRequest

// PassengerRequest is one passenger type of the request.
type PassengerRequest struct {
	Code   string `json:"code" yaml:"code" binding:"required" example:"ADT"`
	Number int    `json:"number,omitempty" yaml:"number,omitempty" example:"1"`
} // @name PassengerRequest

// CurrencyRate is the number of currency units per NUC and the currency precision.
type CurrencyRate struct {
	Rate     float64 `json:"rate" yaml:"rate" example:"150.2"`
	Decimals int     `json:"decimals" yaml:"decimals" example:"0"`
} // @name CurrencyRate

// ItineraryRequest is one itinerary variant with its fare markets and configurations.
type ItineraryRequest struct {
	ID                string          `json:"id" yaml:"id" binding:"required" example:"ITIN1"`
	Currency          string          `json:"currency,omitempty" yaml:"currency,omitempty" example:"USD"`
	IntlSaleIndicator string          `json:"intl_sale_indicator,omitempty" yaml:"intl_sale_indicator,omitempty" example:"SITI"`
	DatePair          *model.DatePair `json:"date_pair,omitempty" yaml:"date_pair,omitempty"`
	// SolutionsNeeded is the number of solutions wanted for the date pair (default 1)
	SolutionsNeeded int                     `json:"solutions_needed,omitempty" yaml:"solutions_needed,omitempty"`
	FareMarkets     []FareMarketRequest     `json:"fare_markets" yaml:"fare_markets" binding:"required,min=1"`
	FareMarketPaths []FareMarketPathRequest `json:"fare_market_paths" yaml:"fare_market_paths" binding:"required,min=1"`
} // @name ItineraryRequest

// FareMarketRequest is an origin-destination pair with its published fares.
type FareMarketRequest struct {
	ID          string        `json:"id" yaml:"id" binding:"required" example:"NYCLON"`
	Origin      string        `json:"origin" yaml:"origin" example:"NYC"`
	Destination string        `json:"destination" yaml:"destination" example:"LON"`
	Carrier     string        `json:"carrier,omitempty" yaml:"carrier,omitempty" example:"AA"`
	Fares       []FareRequest `json:"fares" yaml:"fares"`
} // @name FareMarketRequest

// FareRequest is one published fare. Amounts are in NUC.
type FareRequest struct {
	ID                string  `json:"id,omitempty" yaml:"id,omitempty"`
	PaxType           string  `json:"pax_type" yaml:"pax_type" example:"ADT"`
	FareClass         string  `json:"fare_class" yaml:"fare_class" example:"Y26"`
	Vendor            string  `json:"vendor,omitempty" yaml:"vendor,omitempty" example:"ATP"`
	Carrier           string  `json:"carrier,omitempty" yaml:"carrier,omitempty" example:"AA"`
	Tariff            int     `json:"tariff,omitempty" yaml:"tariff,omitempty" example:"1"`
	RuleNumber        string  `json:"rule,omitempty" yaml:"rule,omitempty" example:"2000"`
	BookingCode       string  `json:"booking_code,omitempty" yaml:"booking_code,omitempty" example:"Y"`
	Amount            float64 `json:"amount" yaml:"amount" example:"350.5"`
	PlusUp            float64 `json:"plus_up,omitempty" yaml:"plus_up,omitempty"`
	Directionality    string  `json:"directionality,omitempty" yaml:"directionality,omitempty" example:"any"`
	IntlSaleIndicator string  `json:"intl_sale_indicator,omitempty" yaml:"intl_sale_indicator,omitempty"`
	RuleFailed        bool    `json:"rule_failed,omitempty" yaml:"rule_failed,omitempty"`
} // @name FareRequest

// FareMarketPathRequest is one fare-break configuration.
type FareMarketPathRequest struct {
	ID          string          `json:"id" yaml:"id" binding:"required" example:"FMP1"`
	Rank        int             `json:"rank,omitempty" yaml:"rank,omitempty"`
	ThruPricing bool            `json:"thru_pricing,omitempty" yaml:"thru_pricing,omitempty"`
	PUPaths     []PUPathRequest `json:"pu_paths" yaml:"pu_paths" binding:"required,min=1"`
} // @name FareMarketPathRequest

// PUPathRequest assigns pricing units to a configuration.
type PUPathRequest struct {
	ID           string               `json:"id" yaml:"id" binding:"required" example:"PUP1"`
	PricingUnits []PricingUnitRequest `json:"pricing_units" yaml:"pricing_units" binding:"required,min=1"`
} // @name PUPathRequest

// PricingUnitRequest groups fare markets. Pricing units with the same id are shared
// between PU paths of an itinerary and must list the same fare markets.
type PricingUnitRequest struct {
	ID          string   `json:"id" yaml:"id" binding:"required" example:"PU1"`
	Type        string   `json:"type" yaml:"type" example:"RT"`
	FareMarkets []string `json:"fare_markets" yaml:"fare_markets" binding:"required,min=1"`
} // @name PricingUnitRequest

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message for ValidationError.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

var (
	// ErrNoPassengers is returned when the request has no passenger type.
	ErrNoPassengers = &ValidationError{Field: "passengers", Message: "at least one passenger type is required"}
	// ErrNoItineraries is returned when the request has no itinerary.
	ErrNoItineraries = &ValidationError{Field: "itineraries", Message: "at least one itinerary is required"}
	// ErrInvalidSolutions is returned when solutions is out of range.
	ErrInvalidSolutions = &ValidationError{Field: "solutions", Message: fmt.Sprintf("must be between 0 and %d", MaxSolutions)}
)

// Validate performs the checks that do not need the graph to be built.
// Returns an error if validation fails, nil otherwise.
func (r *PriceRequest) Validate() error {
	if len(r.Passengers) == 0 {
		return ErrNoPassengers
	}
	if len(r.Itineraries) == 0 {
		return ErrNoItineraries
	}
	if r.Solutions < 0 || r.Solutions > MaxSolutions {
		return ErrInvalidSolutions
	}
	seen := make(map[string]bool, len(r.Passengers))
	for i, p := range r.Passengers {
		if p.Code == "" {
			return &ValidationError{Field: fmt.Sprintf("passengers[%d].code", i), Message: "is required"}
		}
		code := strings.ToUpper(p.Code)
		if seen[code] {
			return &ValidationError{Field: fmt.Sprintf("passengers[%d].code", i), Message: "duplicate passenger type " + code}
		}
		seen[code] = true
	}
	if r.AltDateCutOffNUC < 0 {
		return &ValidationError{Field: "alt_date_cut_off_nuc", Message: "must not be negative"}
	}
	return nil
}

// SolutionCount returns the number of solutions wanted, defaulting to one.
func (r *PriceRequest) SolutionCount() int {
	if r.Solutions <= 0 {
		return 1
	}
	return r.Solutions
}

// PricingInput is the domain graph built from a PriceRequest.
type PricingInput struct {
	PaxTypes []*model.PaxType
	Matrices []*model.PUPathMatrix
	// AltDates maps each date pair to the number of solutions it needs.
	AltDates map[model.DatePair]int
}

// Build validates the request and links it into the domain graph searched by the engine.
func (r *PriceRequest) Build() (*PricingInput, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	in := &PricingInput{}
	for _, p := range r.Passengers {
		n := p.Number
		if n <= 0 {
			n = 1
		}
		in.PaxTypes = append(in.PaxTypes, &model.PaxType{Code: strings.ToUpper(p.Code), Number: n})
	}

	itinIDs := make(map[string]bool, len(r.Itineraries))
	for i := range r.Itineraries {
		ir := &r.Itineraries[i]
		if itinIDs[ir.ID] {
			return nil, &ValidationError{Field: fmt.Sprintf("itineraries[%d].id", i), Message: "duplicate itinerary " + ir.ID}
		}
		itinIDs[ir.ID] = true

		matrix, err := ir.build(fmt.Sprintf("itineraries[%d]", i))
		if err != nil {
			return nil, err
		}
		in.Matrices = append(in.Matrices, matrix)

		if ir.DatePair != nil {
			if in.AltDates == nil {
				in.AltDates = make(map[model.DatePair]int)
			}
			needed := ir.SolutionsNeeded
			if needed <= 0 {
				needed = 1
			}
			in.AltDates[*ir.DatePair] = needed
		}
	}
	return in, nil
}

func (ir *ItineraryRequest) build(field string) (*model.PUPathMatrix, error) {
	itin := &model.Itin{
		ID:                  ir.ID,
		OriginationCurrency: strings.ToUpper(ir.Currency),
		IntlSaleIndicator:   ir.IntlSaleIndicator,
	}
	if ir.DatePair != nil {
		dp := *ir.DatePair
		itin.DatePair = &dp
	}

	markets := make(map[string]*model.FareMarket, len(ir.FareMarkets))
	for i, fmr := range ir.FareMarkets {
		if _, dup := markets[fmr.ID]; dup {
			return nil, &ValidationError{Field: fmt.Sprintf("%s.fare_markets[%d].id", field, i), Message: "duplicate fare market " + fmr.ID}
		}
		fm, err := fmr.build(fmt.Sprintf("%s.fare_markets[%d]", field, i))
		if err != nil {
			return nil, err
		}
		markets[fmr.ID] = fm
	}

	pus := make(map[string]*model.PU)
	matrix := &model.PUPathMatrix{Itin: itin}
	for i, fmpr := range ir.FareMarketPaths {
		fmpField := fmt.Sprintf("%s.fare_market_paths[%d]", field, i)
		fmp := &model.FareMarketPath{
			ID:                        fmpr.ID,
			ThroughFarePrecedenceRank: fmpr.Rank,
			ThruPricing:               fmpr.ThruPricing,
		}
		inFMP := make(map[*model.FareMarket]bool)
		for j, ppr := range fmpr.PUPaths {
			path := &model.PUPath{ID: ppr.ID, FareMarketPath: fmp, Itin: itin}
			for k, pur := range ppr.PricingUnits {
				puField := fmt.Sprintf("%s.pu_paths[%d].pricing_units[%d]", fmpField, j, k)
				pu, err := pur.resolve(puField, pus, markets)
				if err != nil {
					return nil, err
				}
				path.PUs = append(path.PUs, pu)
				for _, fm := range pu.FareMarkets {
					if !inFMP[fm] {
						inFMP[fm] = true
						fmp.FareMarkets = append(fmp.FareMarkets, fm)
					}
				}
			}
			fmp.PUPaths = append(fmp.PUPaths, path)
		}
		matrix.FareMarketPaths = append(matrix.FareMarketPaths, fmp)
	}
	return matrix, nil
}

func (fmr FareMarketRequest) build(field string) (*model.FareMarket, error) {
	fm := &model.FareMarket{
		ID:          fmr.ID,
		Origin:      strings.ToUpper(fmr.Origin),
		Destination: strings.ToUpper(fmr.Destination),
		Carrier:     fmr.Carrier,
	}
	for i, fr := range fmr.Fares {
		if fr.Amount < 0 {
			return nil, &ValidationError{Field: fmt.Sprintf("%s.fares[%d].amount", field, i), Message: "must not be negative"}
		}
		dir, err := parseDirectionality(fr.Directionality)
		if err != nil {
			return nil, &ValidationError{Field: fmt.Sprintf("%s.fares[%d].directionality", field, i), Message: err.Error()}
		}
		id := fr.ID
		if id == "" {
			id = fmt.Sprintf("%s-%d", fmr.ID, i)
		}
		carrier := fr.Carrier
		if carrier == "" {
			carrier = fmr.Carrier
		}
		fm.Fares = append(fm.Fares, &model.PaxTypeFare{
			ID:                id,
			PaxType:           strings.ToUpper(fr.PaxType),
			FareClass:         fr.FareClass,
			Vendor:            fr.Vendor,
			Carrier:           carrier,
			Tariff:            fr.Tariff,
			RuleNumber:        fr.RuleNumber,
			BookingCode:       fr.BookingCode,
			Amount:            fr.Amount,
			PlusUp:            fr.PlusUp,
			Directionality:    dir,
			IntlSaleIndicator: fr.IntlSaleIndicator,
			RuleFailed:        fr.RuleFailed,
		})
	}
	return fm, nil
}

func (pur PricingUnitRequest) resolve(field string, pus map[string]*model.PU, markets map[string]*model.FareMarket) (*model.PU, error) {
	typ := model.PUOneWay
	if pur.Type != "" {
		t, err := model.ParsePUType(pur.Type)
		if err != nil {
			return nil, &ValidationError{Field: field + ".type", Message: err.Error()}
		}
		typ = t
	}
	fms := make([]*model.FareMarket, 0, len(pur.FareMarkets))
	for _, id := range pur.FareMarkets {
		fm, ok := markets[id]
		if !ok {
			return nil, &ValidationError{Field: field + ".fare_markets", Message: "unknown fare market " + id}
		}
		fms = append(fms, fm)
	}
	if len(fms) == 0 {
		return nil, &ValidationError{Field: field + ".fare_markets", Message: "at least one fare market is required"}
	}

	if pu, ok := pus[pur.ID]; ok {
		if pu.Type != typ || !sameMarkets(pu.FareMarkets, fms) {
			return nil, &ValidationError{Field: field, Message: "pricing unit " + pur.ID + " redefined differently"}
		}
		return pu, nil
	}
	pu := &model.PU{ID: pur.ID, Type: typ, FareMarkets: fms}
	pus[pur.ID] = pu
	return pu, nil
}

func sameMarkets(a, b []*model.FareMarket) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func parseDirectionality(s string) (model.Directionality, error) {
	switch strings.ToLower(s) {
	case "", "any":
		return model.DirectionalityAny, nil
	case "ow", "one_way":
		return model.DirectionalityOneWayOnly, nil
	case "rt", "round_trip":
		return model.DirectionalityRoundTripOnly, nil
	}
	return model.DirectionalityAny, fmt.Errorf("unknown directionality %q", s)
}
