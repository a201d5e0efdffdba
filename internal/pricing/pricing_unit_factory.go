package pricing

import (
	"time"

	"github.com/emirpasic/gods/queues/priorityqueue"

	"github.com/guttosm/farepath-service/internal/domain/model"
)

// puItem is one fare combination of a PU: indices into the sorted fare list of every market.
// Successors only increment positions at or after xPoint, so every combination is queued once.
type puItem struct {
	indices []int
	xPoint  int
	amount  float64
	seq     uint64
}

func byAmountThenSeq(a, b interface{}) int {
	x, y := a.(*puItem), b.(*puItem)
	switch {
	case x.amount < y.amount:
		return -1
	case x.amount > y.amount:
		return 1
	case x.seq < y.seq:
		return -1
	case x.seq > y.seq:
		return 1
	}
	return 0
}

// PricingUnitFactory lazily prices one PU for one passenger type, cheapest first.
// Get(i) returns the i-th cheapest pricing unit that passes structural validation.
// Factories are shared by every FarePathFactory of a passenger search whose PUPath contains the PU.
type PricingUnitFactory struct {
	pu        *model.PU
	paxType   *model.PaxType
	validator PricingUnitValidator
	cfg       FactoriesConfig
	clock     func() time.Time

	fares     [][]*model.PaxTypeFare
	pq        *priorityqueue.Queue
	seq       uint64
	units     []*model.PricingUnit
	combTried int
	start     time.Time

	initialized bool
	exhausted   bool
	shutdown    bool

	// InitializedForDelayXpn is set once the factory was primed by a delayed expansion batch.
	InitializedForDelayXpn bool
}

// NewPricingUnitFactory creates a factory for pu. A nil validator accepts every unit.
func NewPricingUnitFactory(pu *model.PU, pax *model.PaxType, validator PricingUnitValidator, cfg FactoriesConfig, clock func() time.Time) *PricingUnitFactory {
	if clock == nil {
		clock = time.Now
	}
	return &PricingUnitFactory{
		pu:        pu,
		paxType:   pax,
		validator: validator,
		cfg:       cfg,
		clock:     clock,
		pq:        priorityqueue.NewWith(byAmountThenSeq),
	}
}

// PU returns the pricing unit template.
func (f *PricingUnitFactory) PU() *model.PU {
	return f.pu
}

// Init primes the queue with the cheapest combination. It fails when a market has no fare.
func (f *PricingUnitFactory) Init() bool {
	if f.initialized {
		return !f.exhausted || len(f.units) > 0
	}
	f.initialized = true
	f.start = f.clock()

	if len(f.pu.FareMarkets) == 0 {
		f.exhausted = true
		return false
	}
	f.fares = make([][]*model.PaxTypeFare, len(f.pu.FareMarkets))
	for i, fm := range f.pu.FareMarkets {
		fares := fm.FaresFor(f.paxType.Code)
		if len(fares) == 0 {
			f.exhausted = true
			return false
		}
		f.fares[i] = fares
	}
	f.push(make([]int, len(f.fares)), 0)
	return true
}

// Get returns the idx-th cheapest valid pricing unit, or nil when fewer exist.
func (f *PricingUnitFactory) Get(idx int) *model.PricingUnit {
	if !f.initialized && !f.Init() {
		return nil
	}
	for len(f.units) <= idx {
		if !f.next() {
			return nil
		}
	}
	return f.units[idx]
}

// Count is the number of valid units generated so far.
func (f *PricingUnitFactory) Count() int {
	return len(f.units)
}

// CombTried is the number of combinations evaluated so far.
func (f *PricingUnitFactory) CombTried() int {
	return f.combTried
}

// Shutdown reports whether the factory stopped early because most combinations failed.
func (f *PricingUnitFactory) Shutdown() bool {
	return f.shutdown
}

func (f *PricingUnitFactory) next() bool {
	for {
		if f.exhausted || f.shutdown {
			return false
		}
		v, ok := f.pq.Dequeue()
		if !ok {
			f.exhausted = true
			return false
		}
		item := v.(*puItem)
		f.combTried++

		for x := item.xPoint; x < len(item.indices); x++ {
			if item.indices[x]+1 < len(f.fares[x]) {
				indices := append([]int(nil), item.indices...)
				indices[x]++
				f.push(indices, x)
			}
		}

		unit := model.NewPricingUnit(f.pu, f.faresAt(item.indices))
		if f.validator == nil || f.validator.ValidPricingUnit(unit) {
			f.units = append(f.units, unit)
			return true
		}
		if f.shouldShutdown() {
			f.shutdown = true
		}
	}
}

// shouldShutdown stops PUs of more than three fare components once most combinations fail
// and the short-circuit timeout has passed. The clock is read once every 20 combinations.
func (f *PricingUnitFactory) shouldShutdown() bool {
	if len(f.pu.FareMarkets) <= 3 {
		return false
	}
	if f.combTried <= f.cfg.ShortCktCombCount || float64(len(f.units))/float64(f.combTried) >= 0.5 {
		return false
	}
	if f.combTried%20 != 0 {
		return false
	}
	return f.clock().Sub(f.start) > f.cfg.ShortCktTimeout
}

// SameFareBasis prices the PU with, on every market, the fare of the same class as primary.
// The result is not part of the ranked sequence returned by Get.
func (f *PricingUnitFactory) SameFareBasis(primary *model.PricingUnit) *model.PricingUnit {
	if !f.initialized && !f.Init() {
		return nil
	}
	if len(f.fares) == 0 || len(primary.FareUsages) != len(f.fares) {
		return nil
	}
	fares := make([]*model.PaxTypeFare, len(f.fares))
	for mkt, candidates := range f.fares {
		class := primary.FareUsages[mkt].Fare.FareClass
		for _, c := range candidates {
			if c.FareClass == class {
				fares[mkt] = c
				break
			}
		}
		if fares[mkt] == nil {
			return nil
		}
	}
	unit := model.NewPricingUnit(f.pu, fares)
	if f.validator != nil && !f.validator.ValidPricingUnit(unit) {
		return nil
	}
	return unit
}

func (f *PricingUnitFactory) push(indices []int, xPoint int) {
	amount := 0.0
	for i, idx := range indices {
		amount += f.fares[i][idx].Amount
	}
	f.seq++
	f.pq.Enqueue(&puItem{indices: indices, xPoint: xPoint, amount: amount, seq: f.seq})
}

func (f *PricingUnitFactory) faresAt(indices []int) []*model.PaxTypeFare {
	fares := make([]*model.PaxTypeFare, len(indices))
	for i, idx := range indices {
		fares[i] = f.fares[i][idx]
	}
	return fares
}

// puFactoryBucket holds the pricing unit factories of one passenger search keyed by PU.
type puFactoryBucket struct {
	factories map[*model.PU]*PricingUnitFactory
	newFn     func(pu *model.PU) *PricingUnitFactory
}

func newPUFactoryBucket(newFn func(pu *model.PU) *PricingUnitFactory) *puFactoryBucket {
	return &puFactoryBucket{factories: make(map[*model.PU]*PricingUnitFactory), newFn: newFn}
}

func (b *puFactoryBucket) get(pu *model.PU) *PricingUnitFactory {
	puf, ok := b.factories[pu]
	if !ok {
		puf = b.newFn(pu)
		b.factories[pu] = puf
	}
	return puf
}

// primeForDelayXpn initialises the factories of the paths' PUs not yet primed by an earlier batch.
func (b *puFactoryBucket) primeForDelayXpn(paths []*model.PUPath) int {
	primed := 0
	for _, path := range paths {
		for _, pu := range path.AllPU() {
			puf := b.get(pu)
			if puf.InitializedForDelayXpn {
				continue
			}
			puf.InitializedForDelayXpn = true
			puf.Init()
			primed++
		}
	}
	return primed
}
