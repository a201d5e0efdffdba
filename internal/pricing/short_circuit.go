package pricing

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// gauss keeps the distribution of combinations tried across the factories of one search.
// Every factory contributes one sample, replaced each time the factory is checked.
type gauss struct {
	counts map[int]int
	last   map[*FarePathFactory]int
	n      int
}

func newGauss() *gauss {
	g := &gauss{}
	g.clear()
	return g
}

func (g *gauss) clear() {
	g.counts = make(map[int]int)
	g.last = make(map[*FarePathFactory]int)
	g.n = 0
}

func (g *gauss) include(v int) {
	g.counts[v]++
	g.n++
}

func (g *gauss) exclude(v int) {
	c, ok := g.counts[v]
	if !ok {
		return
	}
	if c <= 1 {
		delete(g.counts, v)
	} else {
		g.counts[v] = c - 1
	}
	g.n--
}

// update replaces the sample of fpf with v. A factory never sampled before replaces a 1,
// the value it was counted with when queued.
func (g *gauss) update(fpf *FarePathFactory, v int) {
	prev, ok := g.last[fpf]
	if !ok {
		prev = 1
	}
	g.exclude(prev)
	g.include(v)
	g.last[fpf] = v
}

func (g *gauss) samples() (xs, weights []float64) {
	keys := make([]int, 0, len(g.counts))
	for k := range g.counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	xs = make([]float64, len(keys))
	weights = make([]float64, len(keys))
	for i, k := range keys {
		xs[i] = float64(k)
		weights[i] = float64(g.counts[k])
	}
	return xs, weights
}

// meanStdDev returns the weighted mean and standard deviation of the samples.
// The deviation is zero below two samples.
func (g *gauss) meanStdDev() (float64, float64) {
	if g.n == 0 {
		return 0, 0
	}
	xs, weights := g.samples()
	if g.n < 2 {
		return xs[0], 0
	}
	return stat.MeanStdDev(xs, weights)
}

func (g *gauss) min() float64 {
	if g.n == 0 {
		return 0
	}
	xs, _ := g.samples()
	return floats.Min(xs)
}

// shutdownFPFactory decides whether fpf should stop generating candidates. Once the shutdown
// deadline passed with a result in hand every factory is stopped; before that only factories
// whose combinations tried are an outlier of the distribution are.
func (p *PaxFarePathFactory) shutdownFPFactory(fpf *FarePathFactory) bool {
	s := p.state
	if fpf.Shutdown() {
		return false
	}
	if (s.validFPPushedBack || len(p.validItems) > 0) && s.shutdownTimeReached() {
		s.pricingShortCktHappened = true
		return true
	}

	cur := fpf.FPCombTried()
	p.gauss.update(fpf, cur)

	if cur <= s.cfg.ShortCktCombCount || s.elapsed() <= s.cfg.ShortCktTimeout {
		return false
	}
	mean, std := p.gauss.meanStdDev()
	if float64(cur)-mean <= s.cfg.ShortCktStdDevMultiplier*std {
		return false
	}
	s.log.Debug().
		Int("comb_tried", cur).
		Float64("mean", mean).
		Float64("std_dev", std).
		Float64("min", p.gauss.min()).
		Str("pu_path", fpf.PUPath().ID).
		Msg("FarePathFactory short circuit")
	return true
}

// startMultiPaxShortCkt stops the extension early for an accompanying passenger type of a
// multi-passenger request once the multi passenger timeout passed.
func (p *PaxFarePathFactory) startMultiPaxShortCkt() bool {
	trx := p.trx
	if trx.IsShopping() || trx.AltPricing || p.primaryPaxType || len(trx.PaxTypes) <= 1 {
		return false
	}
	if p.state.cfg.MultiPaxShortCktTimeout <= 0 {
		return false
	}
	return p.state.elapsed() > p.state.cfg.MultiPaxShortCktTimeout
}
