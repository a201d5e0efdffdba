package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/farepath-service/internal/domain/model"
)

func TestPaxFarePathFactory_DuplicateTotals(t *testing.T) {
	fmp := oneWayConfig("F1", 0, nil, market("NYCLON", adultFares(100, 100, 150)...))
	p := NewPaxFarePathFactory(newTestTrx(TrxPricing), adult, matrixOf(nil, fmp))
	require.True(t, p.Init(NopDiag))

	first, err := p.GetFPPQItem(0, NopDiag)
	require.NoError(t, err)
	second, err := p.GetFPPQItem(1, NopDiag)
	require.NoError(t, err)
	third, err := p.GetFPPQItem(2, NopDiag)
	require.NoError(t, err)
	_, err = p.GetFPPQItem(3, NopDiag)
	assert.ErrorIs(t, err, ErrExhausted)

	assert.Equal(t, 100.0, first.Amount())
	assert.False(t, first.Duplicate())
	assert.Equal(t, 100.0, second.Amount())
	assert.True(t, second.Duplicate())
	assert.Equal(t, 150.0, third.Amount())

	distinct, err := p.GetDistinctFPPQItem(1, NopDiag)
	require.NoError(t, err)
	assert.Same(t, third, distinct)
	_, err = p.GetDistinctFPPQItem(2, NopDiag)
	assert.ErrorIs(t, err, ErrExhausted)

	assert.Equal(t, 3, p.FPCount())
	assert.Equal(t, 2, p.ValidCount())
}

func TestPaxFarePathFactory_AllowDuplicateTotals(t *testing.T) {
	fmp := oneWayConfig("F1", 0, nil, market("NYCLON", adultFares(100, 100, 150)...))
	p := NewPaxFarePathFactory(newTestTrx(TrxPricing), adult, matrixOf(nil, fmp), WithAllowDuplicateTotals(true))
	require.True(t, p.Init(NopDiag))

	assert.Equal(t, []float64{100, 100, 150}, amounts(p))
	assert.Equal(t, 3, p.ValidCount())
}

func TestPaxFarePathFactory_DuplicateTotalsInItinCurrency(t *testing.T) {
	itin := &model.Itin{ID: "1", OriginationCurrency: "JPY"}
	fmp := oneWayConfig("F1", 0, itin, market("NYCLON", adultFares(100, 100.4, 101)...))
	trx := newTestTrx(TrxPricing)
	trx.Converter = StaticRateConverter{Rates: map[string]float64{"JPY": 1}, Decimals: map[string]int{"JPY": 0}}

	p := NewPaxFarePathFactory(trx, adult, matrixOf(itin, fmp))
	require.True(t, p.Init(NopDiag))

	assert.Equal(t, []float64{100}, amounts(p)[:1])
	assert.Equal(t, 1, p.ValidCount(), "100.4 and 101 are within one yen of an accepted total")
	assert.Equal(t, 3, p.FPCount())
}

func TestPaxFarePathFactory_CheapestConfigurationFirst(t *testing.T) {
	expensive := oneWayConfig("A", 0, nil, market("NYCLON", adultFares(200, 260)...))
	cheap := oneWayConfig("B", 0, nil, market("NYCPAR", adultFares(180, 240)...))

	for _, delayed := range []bool{false, true} {
		name := "full expansion"
		if delayed {
			name = "delayed expansion"
		}
		t.Run(name, func(t *testing.T) {
			trx := newTestTrx(TrxPricing)
			trx.DelayExpansion = delayed
			p := NewPaxFarePathFactory(trx, adult, matrixOf(nil, expensive, cheap))
			require.True(t, p.Init(NopDiag))

			item, err := p.GetFPPQItem(0, NopDiag)
			require.NoError(t, err)
			assert.Same(t, cheap, item.FareMarketPath())
			assert.Equal(t, []float64{180, 200, 240, 260}, amounts(p))
		})
	}
}

func TestPaxFarePathFactory_DelayedExpansionIsLazy(t *testing.T) {
	cheap := oneWayConfig("A", 0, nil, market("NYCLON", adultFares(100, 110, 120)...))
	pricey := oneWayConfig("B", 0, nil, market("NYCPAR", adultFares(500)...))
	diag := &recordingDiag{code: DiagExpansion}

	trx := newTestTrx(TrxPricing)
	trx.DelayExpansion = true
	p := NewPaxFarePathFactory(trx, adult, matrixOf(nil, pricey, cheap))
	require.True(t, p.Init(diag))

	assert.Equal(t, 1, p.FactoryCount())
	assert.Equal(t, 1, p.FmpXPoint())
	assert.NotEmpty(t, diag.lines)

	item, err := p.GetFPPQItem(1, diag)
	require.NoError(t, err)
	assert.Equal(t, 110.0, item.Amount())
	assert.Equal(t, 1, p.FactoryCount(), "500 is not needed to rank the first two")

	item, err = p.GetFPPQItem(3, diag)
	require.NoError(t, err)
	assert.Equal(t, 500.0, item.Amount())
	assert.Equal(t, 2, p.FactoryCount())
	assert.Equal(t, 2, p.FmpXPoint())
}

func TestPaxFarePathFactory_TiedConfigurationsExpandTogether(t *testing.T) {
	a := oneWayConfig("A", 0, nil, market("NYCLON", adultFares(100)...))
	b := oneWayConfig("B", 0, nil, market("NYCPAR", adultFares(100)...))

	trx := newTestTrx(TrxPricing)
	trx.DelayExpansion = true
	p := NewPaxFarePathFactory(trx, adult, matrixOf(nil, a, b), WithAllowDuplicateTotals(true))
	require.True(t, p.Init(NopDiag))

	assert.Equal(t, 2, p.FactoryCount())
}

func TestPaxFarePathFactory_ThroughFareRankBeforeAmount(t *testing.T) {
	through := oneWayConfig("T", 0, nil, market("NYCPAR", adultFares(300)...))
	local := oneWayConfig("L", 1, nil, market("NYCLON", adultFares(120)...), market("LONPAR", adultFares(80)...))

	p := NewPaxFarePathFactory(newTestTrx(TrxPricing), adult, matrixOf(nil, local, through))
	require.True(t, p.Init(NopDiag))

	assert.Equal(t, []float64{300, 200}, amounts(p))
}

func TestPaxFarePathFactory_MonotonicAcrossFactories(t *testing.T) {
	a := oneWayConfig("A", 0, nil, market("NYCLON", adultFares(100, 300)...))
	b := oneWayConfig("B", 0, nil, market("NYCPAR", adultFares(150, 200)...))
	c := oneWayConfig("C", 0, nil, market("NYCROM", adultFares(120)...), market("ROMPAR", adultFares(60, 95)...))

	p := NewPaxFarePathFactory(newTestTrx(TrxPricing), adult, matrixOf(nil, a, b, c))
	require.True(t, p.Init(NopDiag))

	assert.Equal(t, []float64{100, 150, 180, 200, 215, 300}, amounts(p))
	assert.Equal(t, 3, p.FactoryCount())
}

func TestPaxFarePathFactory_NoViableCombination(t *testing.T) {
	fmp := oneWayConfig("F1", 0, nil, market("NYCLON", fare(model.PaxChild, "C", 50)))

	for _, delayed := range []bool{false, true} {
		trx := newTestTrx(TrxPricing)
		trx.DelayExpansion = delayed
		p := NewPaxFarePathFactory(trx, adult, matrixOf(nil, fmp))

		assert.False(t, p.Init(NopDiag))
		item, err := p.GetFPPQItem(0, NopDiag)
		assert.Nil(t, item)
		assert.ErrorIs(t, err, ErrExhausted)
	}
}

func TestPaxFarePathFactory_ValidatorRejections(t *testing.T) {
	fares := adultFares(100, 120, 140)
	fares[0].RuleFailed = true
	fmp := oneWayConfig("F1", 0, nil, market("NYCLON", fares...))

	t.Run("failed fare path is skipped", func(t *testing.T) {
		p := NewPaxFarePathFactory(newTestTrx(TrxPricing), adult, matrixOf(nil, fmp))
		require.True(t, p.Init(NopDiag))
		assert.Equal(t, []float64{120, 140}, amounts(p))
	})

	t.Run("failed fare path budget", func(t *testing.T) {
		reject := FarePathValidatorFunc(func(*model.FarePath) (bool, error) { return false, nil })
		cfg := DefaultFactoriesConfig()
		cfg.MaxFailedFarePaths = 1
		p := NewPaxFarePathFactory(newTestTrx(TrxPricing), adult, matrixOf(nil, fmp),
			WithFarePathValidator(reject), WithConfig(cfg))
		require.True(t, p.Init(NopDiag))

		_, err := p.GetFPPQItem(0, NopDiag)
		assert.ErrorIs(t, err, ErrTooManyCombinations)
	})

	t.Run("validator error aborts", func(t *testing.T) {
		boom := errors.New("rule engine down")
		failing := FarePathValidatorFunc(func(*model.FarePath) (bool, error) { return false, boom })
		p := NewPaxFarePathFactory(newTestTrx(TrxPricing), adult, matrixOf(nil, fmp), WithFarePathValidator(failing))
		require.True(t, p.Init(NopDiag))

		_, err := p.GetFPPQItem(0, NopDiag)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, p.bucket.Size(), "factory stays queued")
	})
}

func TestPaxFarePathFactory_AltDateCutOff(t *testing.T) {
	itin := &model.Itin{ID: "1", DatePair: &model.DatePair{Outbound: "2026-03-01", Inbound: "2026-03-08"}}
	fmp := oneWayConfig("F1", 0, itin, market("NYCLON", adultFares(501)...))

	trx := newTestTrx(TrxMIP)
	trx.AltDatePairs = map[model.DatePair]*AltDateInfo{
		*itin.DatePair: NewAltDateInfo(1),
		{Outbound: "2026-03-02", Inbound: "2026-03-09"}: NewAltDateInfo(1),
	}
	trx.AltDateCutOffNuc = 500

	p := NewPaxFarePathFactory(trx, adult, matrixOf(itin, fmp))
	require.True(t, p.Init(NopDiag))

	item, err := p.GetFPPQItem(0, NopDiag)
	assert.Nil(t, item)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.True(t, trx.CutOffReached())
}

func TestPaxFarePathFactory_DoneDatePairRemoved(t *testing.T) {
	done := model.DatePair{Outbound: "2026-03-01"}
	open := model.DatePair{Outbound: "2026-03-02"}
	doneItin := &model.Itin{ID: "1", DatePair: &done}
	openItin := &model.Itin{ID: "2", DatePair: &open}
	a := oneWayConfig("A", 0, doneItin, market("NYCLON", adultFares(100, 110)...))
	b := oneWayConfig("B", 0, openItin, market("NYCLON", adultFares(105)...))

	trx := newTestTrx(TrxMIP)
	trx.DelayExpansion = true
	trx.AltDatePairs = map[model.DatePair]*AltDateInfo{done: NewAltDateInfo(1), open: NewAltDateInfo(1)}

	p := NewPaxFarePathFactory(trx, adult, matrixOf(nil, a, b))
	require.True(t, p.Init(NopDiag))
	first, err := p.GetFPPQItem(0, NopDiag)
	require.NoError(t, err)
	require.Equal(t, 100.0, first.Amount())

	trx.AltDatePairs[done].SolutionFound()

	assert.Equal(t, []float64{100, 105}, amounts(p))
}

func TestPaxFarePathFactory_CancellationKeepsResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	trx := NewTrx(ctx, "trx-1", TrxPricing)
	trx.PaxTypes = []*model.PaxType{adult}
	fmp := oneWayConfig("F1", 0, nil, market("NYCLON", adultFares(100, 200, 300)...))

	p := NewPaxFarePathFactory(trx, adult, matrixOf(nil, fmp))
	require.True(t, p.Init(NopDiag))
	first, err := p.GetFPPQItem(0, NopDiag)
	require.NoError(t, err)
	second, err := p.GetFPPQItem(1, NopDiag)
	require.NoError(t, err)

	cancel()

	item, err := p.GetFPPQItem(2, NopDiag)
	assert.Nil(t, item)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)

	again, err := p.GetFPPQItem(0, NopDiag)
	require.NoError(t, err)
	assert.Same(t, first, again)
	again, err = p.GetFPPQItem(1, NopDiag)
	require.NoError(t, err)
	assert.Same(t, second, again)
	assert.Equal(t, 2, p.FPCount())
}

func TestPaxFarePathFactory_CancellationAfterManyCombinations(t *testing.T) {
	tests := []struct {
		name    string
		typ     TrxType
		wantErr error
	}{
		{name: "pricing reports the combination limit", typ: TrxPricing, wantErr: ErrMaxCombosExceeded},
		{name: "shopping stays cancelled", typ: TrxIS, wantErr: ErrCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			trx := NewTrx(ctx, "trx-1", tt.typ)
			fmp := oneWayConfig("F1", 0, nil, market("NYCLON", adultFares(100, 200, 300)...))
			cfg := DefaultFactoriesConfig()
			cfg.MaxNbrCombMsgThreshold = 1

			p := NewPaxFarePathFactory(trx, adult, matrixOf(nil, fmp), WithConfig(cfg))
			require.True(t, p.Init(NopDiag))
			_, err := p.GetFPPQItem(1, NopDiag)
			require.NoError(t, err)
			cancel()

			_, err = p.GetFPPQItem(2, NopDiag)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantErr == ErrCancelled {
				assert.NotErrorIs(t, err, ErrMaxCombosExceeded)
			}
		})
	}
}

func TestPaxFarePathFactory_RexRecordsReissueError(t *testing.T) {
	// Y0 100 passes, Y1 150 and Y2 160 fail their rules, Y3 200 passes.
	budgetFares := func() []*model.PaxTypeFare {
		fares := adultFares(100, 150, 160, 200)
		fares[1].RuleFailed = true
		fares[2].RuleFailed = true
		return fares
	}

	tests := []struct {
		name       string
		rex        bool
		cancel     bool
		budget     int
		wantErr    error
		wantCode   string
		wantReason string
	}{
		{
			name:       "cancelled exchange keeps its result",
			rex:        true,
			cancel:     true,
			wantCode:   CodeMaxNumberCombosExceeded,
			wantReason: MsgMaxCombinationsExceeded,
		},
		{
			name:       "exchange over the failed fare path budget keeps its result",
			rex:        true,
			budget:     1,
			wantCode:   CodeTooManyCombos,
			wantReason: "failed fare path budget exceeded",
		},
		{
			name:    "pricing over the failed fare path budget fails",
			budget:  1,
			wantErr: ErrTooManyCombinations,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			trx := NewTrx(ctx, "trx-1", TrxPricing)
			trx.RexNewItin = tt.rex

			cfg := DefaultFactoriesConfig()
			cfg.MaxFailedFarePaths = tt.budget
			fmp := oneWayConfig("F1", 0, nil, market("NYCLON", budgetFares()...))

			p := NewPaxFarePathFactory(trx, adult, matrixOf(nil, fmp), WithConfig(cfg))
			require.True(t, p.Init(NopDiag))
			first, err := p.GetFPPQItem(0, NopDiag)
			require.NoError(t, err)
			require.InDelta(t, 100, first.Amount(), Epsilon)
			if tt.cancel {
				cancel()
			}

			_, err = p.GetFPPQItem(1, NopDiag)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, trx.ReissueError())
				return
			}

			assert.ErrorIs(t, err, ErrExhausted)
			require.NotNil(t, trx.ReissueError())
			assert.Equal(t, tt.wantCode, trx.ReissueError().Code)
			assert.Equal(t, tt.wantReason, trx.ReissueError().Message)

			again, err := p.GetFPPQItem(0, NopDiag)
			require.NoError(t, err)
			assert.Same(t, first, again)
			assert.Equal(t, 1, p.FPCount())
		})
	}
}

func TestPaxFarePathFactory_ShutdownKeepsAcceptedResults(t *testing.T) {
	clock := newFakeClock()
	cfg := DefaultFactoriesConfig()
	cfg.ShortCktShutdownFPFsTime = time.Second
	fmp := oneWayConfig("F1", 0, nil, market("NYCLON", adultFares(100, 200, 300)...))

	p := NewPaxFarePathFactory(newTestTrx(TrxPricing), adult, matrixOf(nil, fmp), WithConfig(cfg), WithClock(clock.Now))
	require.True(t, p.Init(NopDiag))
	first, err := p.GetFPPQItem(0, NopDiag)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)

	second, err := p.GetFPPQItem(1, NopDiag)
	require.NoError(t, err)
	assert.Equal(t, 200.0, second.Amount())
	_, err = p.GetFPPQItem(2, NopDiag)
	assert.ErrorIs(t, err, ErrExhausted)

	assert.True(t, p.PricingShortCktHappened())
	again, err := p.GetFPPQItem(0, NopDiag)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 100.0, again.Amount())
}

func TestPaxFarePathFactory_ForceNoTimeoutIgnoresShutdown(t *testing.T) {
	clock := newFakeClock()
	cfg := DefaultFactoriesConfig()
	cfg.ShortCktShutdownFPFsTime = time.Second
	trx := newTestTrx(TrxPricing)
	trx.ForceNoTimeout = true
	fmp := oneWayConfig("F1", 0, nil, market("NYCLON", adultFares(100, 200, 300)...))

	p := NewPaxFarePathFactory(trx, adult, matrixOf(nil, fmp), WithConfig(cfg), WithClock(clock.Now))
	require.True(t, p.Init(NopDiag))
	_, err := p.GetFPPQItem(0, NopDiag)
	require.NoError(t, err)
	clock.Advance(2 * time.Second)

	assert.Equal(t, []float64{100, 200, 300}, amounts(p))
	assert.False(t, p.PricingShortCktHappened())
}

func TestPaxFarePathFactory_ReqValidFPCount(t *testing.T) {
	fmp := oneWayConfig("F1", 0, nil, market("NYCLON", adultFares(100, 200, 300, 400)...))
	p := NewPaxFarePathFactory(newTestTrx(TrxPricing), adult, matrixOf(nil, fmp), WithReqValidFPCount(3))
	require.True(t, p.Init(NopDiag))

	_, err := p.GetFPPQItem(0, NopDiag)
	require.NoError(t, err)
	assert.Equal(t, 3, p.FPCount())
}

func TestPaxFarePathFactory_DiagnosticFPParam(t *testing.T) {
	tests := []struct {
		name     string
		diag     DiagnosticRequest
		expected int
	}{
		{name: "no diagnostic", diag: DiagnosticRequest{}, expected: 0},
		{name: "fare path diagnostic", diag: DiagnosticRequest{Code: 610, Params: map[string]string{"FP": "4"}}, expected: 4},
		{name: "diagnostic 666 is excluded", diag: DiagnosticRequest{Code: DiagExcluded666, Params: map[string]string{"FP": "4"}}, expected: 0},
		{name: "diagnostic 910", diag: DiagnosticRequest{Code: Diag910, Params: map[string]string{"FP": "2"}}, expected: 2},
		{name: "unrelated diagnostic", diag: DiagnosticRequest{Code: 200, Params: map[string]string{"FP": "4"}}, expected: 0},
		{name: "malformed value", diag: DiagnosticRequest{Code: 610, Params: map[string]string{"FP": "x"}}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trx := newTestTrx(TrxPricing)
			trx.Diagnostic = tt.diag
			p := NewPaxFarePathFactory(trx, adult, nil)
			assert.Equal(t, tt.expected, p.fpCountDiagParam())
		})
	}

	t.Run("generates the requested count per extension", func(t *testing.T) {
		trx := newTestTrx(TrxPricing)
		trx.Diagnostic = DiagnosticRequest{Code: 610, Params: map[string]string{"FP": "3"}}
		fmp := oneWayConfig("F1", 0, nil, market("NYCLON", adultFares(100, 200, 300, 400)...))
		p := NewPaxFarePathFactory(trx, adult, matrixOf(nil, fmp))
		require.True(t, p.Init(NopDiag))

		_, err := p.GetFPPQItem(0, NopDiag)
		require.NoError(t, err)
		assert.Equal(t, 3, p.FPCount())
	})
}

func TestPaxFarePathFactory_NoPNRIntegrated(t *testing.T) {
	fares := adultFares(100, 150, 200)
	fmp := oneWayConfig("F1", 0, nil, market("NYCLON", fares...))

	trx := newTestTrx(TrxNoPNR)
	trx.Integrated = true
	collected := model.NewFarePath(adult, fmp.PUPaths[0], []*model.PricingUnit{
		model.NewPricingUnit(fmp.PUPaths[0].PUs[0], []*model.PaxTypeFare{fares[0]}),
	})
	seededTotal := model.NewFarePath(adult, fmp.PUPaths[0], []*model.PricingUnit{
		model.NewPricingUnit(fmp.PUPaths[0].PUs[0], []*model.PaxTypeFare{fare(model.PaxAdult, "Q", 150)}),
	})
	trx.CollectedFarePaths = []*model.FarePath{collected, seededTotal}

	p := NewPaxFarePathFactory(trx, adult, matrixOf(nil, fmp))
	require.True(t, p.Init(NopDiag))

	assert.Equal(t, []float64{200}, amounts(p), "100 already collected, 150 repeats a collected total")
}

func TestPaxFarePathFactory_MultiPaxShortCkt(t *testing.T) {
	child := &model.PaxType{Code: model.PaxChild}
	clock := newFakeClock()
	cfg := DefaultFactoriesConfig()
	cfg.MultiPaxShortCktTimeout = time.Second
	fmp := oneWayConfig("F1", 0, nil, market("NYCLON",
		fare(model.PaxChild, "Y", 100), fare(model.PaxChild, "B", 200), fare(model.PaxChild, "M", 300)))

	trx := newTestTrx(TrxPricing)
	trx.PaxTypes = []*model.PaxType{adult, child}

	p := NewPaxFarePathFactory(trx, child, matrixOf(nil, fmp), WithConfig(cfg), WithClock(clock.Now), WithReqValidFPCount(3))
	require.True(t, p.Init(NopDiag))
	clock.Advance(2 * time.Second)

	assert.True(t, p.startMultiPaxShortCkt())
	more, err := p.buildNextLevelFarePath(NopDiag)
	require.NoError(t, err)
	assert.True(t, more)
	assert.Equal(t, 1, p.FPCount(), "stops after the first fare path")

	primary := NewPaxFarePathFactory(trx, child, matrixOf(nil, fmp), WithConfig(cfg), WithClock(clock.Now), WithPrimaryPaxType(true))
	assert.False(t, primary.startMultiPaxShortCkt())
}
