package model

// PaxFare is the priced fare path of one passenger type inside a solution.
//
// @Description Fare path selected for one passenger type
type PaxFare struct {
	// PaxType is the passenger type code
	PaxType string `json:"pax_type" example:"ADT"`
	// FareMarketPath is the fare-break configuration id
	FareMarketPath string `json:"fare_market_path" example:"FMP1"`
	// PUPath is the pricing unit path id
	PUPath string `json:"pu_path" example:"PUP1"`
	// FareBasis lists the fare classes per pricing unit
	FareBasis []string `json:"fare_basis" example:"Y26/Y26"`
	// TotalNUC is the fare path total in NUC
	TotalNUC float64 `json:"total_nuc" example:"350.5"`
	// Duplicate is set when the total repeats an earlier fare path total
	Duplicate bool `json:"duplicate,omitempty"`
}

// Solution is one ranked whole-transaction answer.
//
// @Description Ranked pricing solution across all passenger types
type Solution struct {
	// Rank is the zero-based position of the solution
	Rank int `json:"rank" example:"0"`
	// DatePair is set for alternate-date requests
	DatePair *DatePair `json:"date_pair,omitempty"`
	// TotalNUC is the sum over passenger fare paths
	TotalNUC float64 `json:"total_nuc" example:"701"`
	// Passengers holds one fare path per passenger type
	Passengers []PaxFare `json:"passengers"`
}

// PricingResult is the outcome of a pricing transaction.
//
// @Description Pricing result with ranked solutions
type PricingResult struct {
	// TransactionID identifies the pricing transaction
	TransactionID string `json:"transaction_id" example:"5c2b0b3e-6d0a-4b8e-9a43-3f2b8a0b1f77"`
	// Solutions are ordered from cheapest to most expensive
	Solutions []Solution `json:"solutions"`
	// CombinationsTried is the number of fare path combinations evaluated
	CombinationsTried int `json:"combinations_tried" example:"42"`
	// ShortCircuited is set when the search stopped early under time pressure
	ShortCircuited bool `json:"short_circuited,omitempty"`
	// CutOffReached is set when an alternate-date cut-off was hit
	CutOffReached bool `json:"cut_off_reached,omitempty"`
	// ReissueError carries the as-booked error of an exchange transaction
	ReissueError string `json:"reissue_error,omitempty"`
	// Diagnostics holds diagnostic trace text when a diagnostic was requested
	Diagnostics string `json:"diagnostics,omitempty"`
}

// Cheapest returns the total of the first solution, or zero without solutions.
func (r PricingResult) Cheapest() float64 {
	if len(r.Solutions) == 0 {
		return 0
	}
	return r.Solutions[0].TotalNUC
}
