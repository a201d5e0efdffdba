package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/guttosm/farepath-service/internal/domain/model"
)

var adult = &model.PaxType{Code: model.PaxAdult, Number: 1}

func fare(pax, class string, amount float64) *model.PaxTypeFare {
	return &model.PaxTypeFare{
		ID:        fmt.Sprintf("%s-%s-%.0f", pax, class, amount),
		PaxType:   pax,
		FareClass: class,
		Vendor:    "ATP",
		Carrier:   "AA",
		Amount:    amount,
	}
}

// adultFares builds adult fares named Y0, Y1... for the given amounts.
func adultFares(amounts ...float64) []*model.PaxTypeFare {
	fares := make([]*model.PaxTypeFare, len(amounts))
	for i, a := range amounts {
		fares[i] = fare(model.PaxAdult, fmt.Sprintf("Y%d", i), a)
	}
	return fares
}

func market(id string, fares ...*model.PaxTypeFare) *model.FareMarket {
	return &model.FareMarket{ID: id, Origin: id[:3], Destination: id[len(id)-3:], Carrier: "AA", Fares: fares}
}

// oneWayConfig builds a fare-break configuration with a single PUPath holding one one-way
// pricing unit per market.
func oneWayConfig(id string, rank int, itin *model.Itin, markets ...*model.FareMarket) *model.FareMarketPath {
	fmp := &model.FareMarketPath{ID: id, FareMarkets: markets, ThroughFarePrecedenceRank: rank}
	path := &model.PUPath{ID: id + "-P0", FareMarketPath: fmp, Itin: itin}
	for i, m := range markets {
		path.PUs = append(path.PUs, &model.PU{ID: fmt.Sprintf("%s-PU%d", id, i), Type: model.PUOneWay, FareMarkets: []*model.FareMarket{m}})
	}
	fmp.PUPaths = []*model.PUPath{path}
	return fmp
}

func matrixOf(itin *model.Itin, fmps ...*model.FareMarketPath) []*model.PUPathMatrix {
	return []*model.PUPathMatrix{{Itin: itin, FareMarketPaths: fmps}}
}

func newTestTrx(typ TrxType) *Trx {
	trx := NewTrx(context.Background(), "trx-1", typ)
	trx.PaxTypes = []*model.PaxType{adult}
	return trx
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// amounts drains the distinct fare paths of p.
func amounts(p *PaxFarePathFactory) []float64 {
	return tracedAmounts(p, NopDiag)
}

// tracedAmounts drains the distinct fare paths of p, tracing into diag.
func tracedAmounts(p *PaxFarePathFactory, diag DiagnosticSink) []float64 {
	var out []float64
	for i := 0; ; i++ {
		item, err := p.GetDistinctFPPQItem(i, diag)
		if err != nil {
			return out
		}
		out = append(out, item.Amount())
	}
}

type recordingDiag struct {
	code  int
	lines []string
}

func (d *recordingDiag) IsActive(code int) bool { return d.code == code }
func (d *recordingDiag) Emit(text string)       { d.lines = append(d.lines, text) }
