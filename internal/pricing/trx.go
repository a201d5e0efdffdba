package pricing

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/guttosm/farepath-service/internal/domain/model"
)

// TrxType is the kind of pricing transaction.
type TrxType int

const (
	TrxPricing TrxType = iota
	TrxMIP
	TrxIS
	TrxNoPNR
)

var trxTypeNames = map[TrxType]string{
	TrxPricing: "pricing",
	TrxMIP:     "mip",
	TrxIS:      "is",
	TrxNoPNR:   "nopnr",
}

func (t TrxType) String() string {
	return trxTypeNames[t]
}

// ParseTrxType parses a transaction type name, defaulting to pricing.
func ParseTrxType(s string) TrxType {
	for t, name := range trxTypeNames {
		if name == s {
			return t
		}
	}
	return TrxPricing
}

// AltDateInfo tracks how many solutions an alternate date pair still needs.
type AltDateInfo struct {
	needed atomic.Int32
}

// NewAltDateInfo returns info needing n solutions.
func NewAltDateInfo(n int) *AltDateInfo {
	info := &AltDateInfo{}
	info.needed.Store(int32(n))
	return info
}

// NumOfSolutionNeeded returns the remaining solution count.
func (a *AltDateInfo) NumOfSolutionNeeded() int {
	return int(a.needed.Load())
}

// SolutionFound decrements the remaining count, never below zero.
func (a *AltDateInfo) SolutionFound() {
	for {
		cur := a.needed.Load()
		if cur <= 0 || a.needed.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

// Trx is the transaction-wide state seen by the searches.
// It is shared by the per-passenger searches; mutable fields are synchronised.
type Trx struct {
	ID   string
	Type TrxType
	// AltPricing marks WPA style requests where no group fare path is built.
	AltPricing         bool
	RexNewItin         bool
	DelayExpansion     bool
	ThroughFarePricing bool
	ForceNoTimeout     bool
	// Integrated is a NoPNR request matching solutions already collected in CollectedFarePaths.
	Integrated         bool
	AxessAgent         bool
	PaxTypes           []*model.PaxType
	AltDatePairs       map[model.DatePair]*AltDateInfo
	AltDateCutOffNuc   float64
	Diagnostic         DiagnosticRequest
	Converter          CurrencyConverter
	CollectedFarePaths []*model.FarePath

	ctx           context.Context
	cutOffReached atomic.Bool

	mu         sync.Mutex
	reissueErr *SearchError
}

// NewTrx creates a transaction bound to ctx; cancelling ctx aborts every search.
func NewTrx(ctx context.Context, id string, typ TrxType) *Trx {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Trx{ID: id, Type: typ, ctx: ctx, Converter: NUCConverter{}}
}

// Context returns the transaction context.
func (t *Trx) Context() context.Context {
	return t.ctx
}

// Aborted returns the context error once the transaction was cancelled or timed out.
func (t *Trx) Aborted() error {
	return t.ctx.Err()
}

// IsAltDates reports whether the transaction prices alternate date pairs.
func (t *Trx) IsAltDates() bool {
	return len(t.AltDatePairs) > 0
}

// IsShopping reports whether the transaction is an IS shopping request.
func (t *Trx) IsShopping() bool {
	return t.Type == TrxIS
}

// SetCutOffReached records that an alternate date search hit the cut-off threshold.
func (t *Trx) SetCutOffReached() {
	t.cutOffReached.Store(true)
}

// CutOffReached reports whether SetCutOffReached was called.
func (t *Trx) CutOffReached() bool {
	return t.cutOffReached.Load()
}

// SetReissueError attaches an as-booked error to an exchange transaction.
func (t *Trx) SetReissueError(err *SearchError) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reissueErr = err
}

// ReissueError returns the recorded as-booked error, if any.
func (t *Trx) ReissueError() *SearchError {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reissueErr
}
