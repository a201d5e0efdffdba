package pricing

import "github.com/guttosm/farepath-service/internal/domain/model"

// FPPQItem is a fare path candidate queued in a FarePathFactory, with its provenance.
type FPPQItem struct {
	farePath  *model.FarePath
	factory   *FarePathFactory
	puIndices []int
	xPoint    int
	seq       uint64
	// sameFareBasis items are built outside the ranked index space.
	sameFareBasis bool
}

// FarePath returns the candidate fare path.
func (i *FPPQItem) FarePath() *model.FarePath {
	return i.farePath
}

// Factory returns the factory that produced the item.
func (i *FPPQItem) Factory() *FarePathFactory {
	return i.factory
}

// PUPath returns the PUPath the item was built from.
func (i *FPPQItem) PUPath() *model.PUPath {
	return i.farePath.PUPath
}

// FareMarketPath returns the fare-break configuration of the item.
func (i *FPPQItem) FareMarketPath() *model.FareMarketPath {
	return i.farePath.FareMarketPath()
}

// Amount is the total NUC amount including plus-ups.
func (i *FPPQItem) Amount() float64 {
	return i.farePath.TotalNUCAmount()
}

// Duplicate reports whether the total repeats an earlier accepted total.
func (i *FPPQItem) Duplicate() bool {
	return i.farePath.Duplicate
}

func lowToHigh(a, b interface{}) int {
	x, y := a.(*FPPQItem), b.(*FPPQItem)
	ax, ay := x.Amount(), y.Amount()
	switch {
	case ax < ay:
		return -1
	case ax > ay:
		return 1
	case x.seq < y.seq:
		return -1
	case x.seq > y.seq:
		return 1
	}
	return 0
}
