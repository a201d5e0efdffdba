package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"

	"github.com/guttosm/farepath-service/internal/domain/dto"
	"github.com/guttosm/farepath-service/internal/domain/model"
	"github.com/guttosm/farepath-service/internal/pricing"
)

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) GetActive(ctx context.Context) (*model.SearchProfile, error) {
	args := m.Called(ctx)
	profile, _ := args.Get(0).(*model.SearchProfile)
	return profile, args.Error(1)
}

func (m *mockProfiles) Create(ctx context.Context, name string, settings model.SearchSettings, createdBy string) (*model.SearchProfile, error) {
	args := m.Called(ctx, name, settings, createdBy)
	profile, _ := args.Get(0).(*model.SearchProfile)
	return profile, args.Error(1)
}

func (m *mockProfiles) Update(ctx context.Context, id primitive.ObjectID, name string, settings model.SearchSettings, updatedBy string) (*model.SearchProfile, error) {
	args := m.Called(ctx, id, name, settings, updatedBy)
	profile, _ := args.Get(0).(*model.SearchProfile)
	return profile, args.Error(1)
}

func (m *mockProfiles) List(ctx context.Context, limit int) ([]model.SearchProfile, error) {
	args := m.Called(ctx, limit)
	profiles, _ := args.Get(0).([]model.SearchProfile)
	return profiles, args.Error(1)
}

// capturedRecords is a RecordService that keeps records in memory.
type capturedRecords struct {
	mu      sync.Mutex
	records []*model.PricingRecord
}

func (c *capturedRecords) Record(rec *model.PricingRecord) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
	return true
}

func (c *capturedRecords) Create(_ context.Context, rec *model.PricingRecord) error {
	c.Record(rec)
	return nil
}

func (c *capturedRecords) Query(context.Context, model.RecordQueryOptions) ([]*model.PricingRecord, error) {
	return nil, nil
}

func (c *capturedRecords) Count(context.Context, model.RecordQueryOptions) (int64, error) {
	return 0, nil
}

func (c *capturedRecords) Stop() {}

func (c *capturedRecords) last(t *testing.T) *model.PricingRecord {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.records)
	return c.records[len(c.records)-1]
}

// outAndBack is a one-way/one-way itinerary. Adult fare paths cost 580, 620, 630 and 670.
func outAndBack(id string, shift float64) dto.ItineraryRequest {
	return dto.ItineraryRequest{
		ID: id,
		FareMarkets: []dto.FareMarketRequest{
			{ID: "NYCLON", Origin: "NYC", Destination: "LON", Carrier: "AA", Fares: []dto.FareRequest{
				{PaxType: "ADT", FareClass: "Y", Amount: 300 + shift},
				{PaxType: "ADT", FareClass: "M", Amount: 350 + shift},
				{PaxType: "INF", FareClass: "Y", Amount: 30},
			}},
			{ID: "LONNYC", Origin: "LON", Destination: "NYC", Carrier: "AA", Fares: []dto.FareRequest{
				{PaxType: "ADT", FareClass: "Y", Amount: 280 + shift},
				{PaxType: "ADT", FareClass: "M", Amount: 320 + shift},
				{PaxType: "INF", FareClass: "Y", Amount: 28},
			}},
		},
		FareMarketPaths: []dto.FareMarketPathRequest{
			{ID: "FMP-OW", PUPaths: []dto.PUPathRequest{{ID: "P-OW", PricingUnits: []dto.PricingUnitRequest{
				{ID: "PU-OUT", FareMarkets: []string{"NYCLON"}},
				{ID: "PU-IN", FareMarkets: []string{"LONNYC"}},
			}}}},
		},
	}
}

func priceRequest(solutions int, pax ...dto.PassengerRequest) *dto.PriceRequest {
	if len(pax) == 0 {
		pax = []dto.PassengerRequest{{Code: "ADT"}}
	}
	return &dto.PriceRequest{
		Solutions:   solutions,
		Passengers:  pax,
		Itineraries: []dto.ItineraryRequest{outAndBack("ITIN1", 0)},
	}
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("trx-%d", n)
	}
}

func solutionTotals(result *model.PricingResult) []float64 {
	totals := make([]float64, len(result.Solutions))
	for i, sol := range result.Solutions {
		totals[i] = sol.TotalNUC
	}
	return totals
}

func TestPricingService_Price(t *testing.T) {
	defer goleak.VerifyNone(t)

	tests := []struct {
		name     string
		req      *dto.PriceRequest
		validate func(*testing.T, *model.PricingResult)
	}{
		{
			name: "single passenger ranked solutions",
			req:  priceRequest(3),
			validate: func(t *testing.T, r *model.PricingResult) {
				assert.Equal(t, []float64{580, 620, 630}, solutionTotals(r))
				for i, sol := range r.Solutions {
					assert.Equal(t, i, sol.Rank)
				}
				first := r.Solutions[0].Passengers[0]
				assert.Equal(t, "ADT", first.PaxType)
				assert.Equal(t, "FMP-OW", first.FareMarketPath)
				assert.Equal(t, "P-OW", first.PUPath)
				assert.Equal(t, []string{"Y", "Y"}, first.FareBasis)
				assert.Positive(t, r.CombinationsTried)
			},
		},
		{
			name: "fewer fare paths than requested",
			req:  priceRequest(10),
			validate: func(t *testing.T, r *model.PricingResult) {
				assert.Equal(t, []float64{580, 620, 630, 670}, solutionTotals(r))
			},
		},
		{
			name: "infant priced on the adult fare break",
			req:  priceRequest(1, dto.PassengerRequest{Code: "ADT", Number: 2}, dto.PassengerRequest{Code: "INF"}),
			validate: func(t *testing.T, r *model.PricingResult) {
				require.Len(t, r.Solutions, 1)
				sol := r.Solutions[0]
				require.Len(t, sol.Passengers, 2)
				assert.Equal(t, "INF", sol.Passengers[1].PaxType)
				assert.InDelta(t, 58, sol.Passengers[1].TotalNUC, 0.001)
				assert.Equal(t, sol.Passengers[0].FareMarketPath, sol.Passengers[1].FareMarketPath)
				assert.InDelta(t, 580*2+58, sol.TotalNUC, 0.001)
			},
		},
		{
			name: "infant listed first still follows the adult",
			req:  priceRequest(1, dto.PassengerRequest{Code: "INF"}, dto.PassengerRequest{Code: "ADT"}),
			validate: func(t *testing.T, r *model.PricingResult) {
				require.Len(t, r.Solutions, 1)
				assert.Equal(t, "INF", r.Solutions[0].Passengers[0].PaxType)
				assert.InDelta(t, 638, r.Solutions[0].TotalNUC, 0.001)
			},
		},
		{
			name: "diagnostic text is returned",
			req: func() *dto.PriceRequest {
				req := priceRequest(1)
				req.DelayExpansion = true
				req.Diagnostic = &dto.DiagnosticRequest{Code: pricing.DiagExpansion}
				return req
			}(),
			validate: func(t *testing.T, r *model.PricingResult) {
				assert.Equal(t, []float64{580}, solutionTotals(r))
				assert.NotEmpty(t, r.Diagnostics)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := &capturedRecords{}
			svc := NewPricingService(WithRecords(records), WithTransactionIDs(sequentialIDs()))

			result, err := svc.Price(context.Background(), tt.req)

			require.NoError(t, err)
			assert.Equal(t, "trx-1", result.TransactionID)
			tt.validate(t, result)

			rec := records.last(t)
			assert.Equal(t, model.RecordStatusPriced, rec.Status)
			assert.Equal(t, len(result.Solutions), rec.SolutionCount)
			assert.InDelta(t, result.Cheapest(), rec.CheapestNUC, 0.001)
		})
	}
}

func TestPricingService_Price_AltDates(t *testing.T) {
	defer goleak.VerifyNone(t)

	req := priceRequest(1)
	second := outAndBack("ITIN2", 50)
	req.Itineraries[0].DatePair = &model.DatePair{Outbound: "2026-03-01", Inbound: "2026-03-08"}
	second.DatePair = &model.DatePair{Outbound: "2026-03-02", Inbound: "2026-03-09"}
	req.Itineraries = append(req.Itineraries, second)

	svc := NewPricingService()
	result, err := svc.Price(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, result.Solutions, 2, "one solution per date pair")
	assert.InDelta(t, 580, result.Solutions[0].TotalNUC, 0.001)
	assert.Equal(t, "2026-03-01", result.Solutions[0].DatePair.Outbound)
	assert.InDelta(t, 680, result.Solutions[1].TotalNUC, 0.001)
	assert.Equal(t, "2026-03-02", result.Solutions[1].DatePair.Outbound)
}

func TestPricingService_Price_Errors(t *testing.T) {
	defer goleak.VerifyNone(t)

	tests := []struct {
		name       string
		ctx        func() context.Context
		req        func() *dto.PriceRequest
		check      func(*testing.T, error)
		wantStatus string
	}{
		{
			name: "invalid request is not searched",
			ctx:  context.Background,
			req:  func() *dto.PriceRequest { return &dto.PriceRequest{} },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, dto.ErrNoPassengers)
			},
		},
		{
			name: "graph errors are validation errors",
			ctx:  context.Background,
			req: func() *dto.PriceRequest {
				req := priceRequest(1)
				req.Itineraries[0].FareMarketPaths[0].PUPaths[0].PricingUnits[0].FareMarkets = []string{"XXX"}
				return req
			},
			check: func(t *testing.T, err error) {
				var verr *dto.ValidationError
				assert.ErrorAs(t, err, &verr)
			},
		},
		{
			name: "no fare on a market",
			ctx:  context.Background,
			req: func() *dto.PriceRequest {
				req := priceRequest(1)
				req.Itineraries[0].FareMarkets[1].Fares = []dto.FareRequest{{PaxType: "CNN", FareClass: "Y", Amount: 100}}
				return req
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNoSolution)
			},
			wantStatus: model.RecordStatusNoSolution,
		},
		{
			name: "cancelled transaction",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			req: func() *dto.PriceRequest { return priceRequest(1) },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, pricing.ErrCancelled)
				kind, ok := pricing.KindOf(err)
				require.True(t, ok)
				assert.Equal(t, pricing.KindCancelled, kind)
			},
			wantStatus: model.RecordStatusCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := &capturedRecords{}
			svc := NewPricingService(WithRecords(records))

			_, err := svc.Price(tt.ctx(), tt.req())

			require.Error(t, err)
			tt.check(t, err)
			if tt.wantStatus != "" {
				assert.Equal(t, tt.wantStatus, records.last(t).Status)
			} else {
				assert.Empty(t, records.records)
			}
		})
	}
}

// oneWayBudgetRequest prices NYC-LON where the 150 and 160 fares fail their rules.
func oneWayBudgetRequest(rex bool) *dto.PriceRequest {
	return &dto.PriceRequest{
		Solutions:  2,
		RexNewItin: rex,
		Passengers: []dto.PassengerRequest{{Code: "ADT"}},
		Itineraries: []dto.ItineraryRequest{{
			ID: "ITIN1",
			FareMarkets: []dto.FareMarketRequest{
				{ID: "NYCLON", Origin: "NYC", Destination: "LON", Carrier: "AA", Fares: []dto.FareRequest{
					{PaxType: "ADT", FareClass: "Y", Amount: 100},
					{PaxType: "ADT", FareClass: "B", Amount: 150, RuleFailed: true},
					{PaxType: "ADT", FareClass: "M", Amount: 160, RuleFailed: true},
					{PaxType: "ADT", FareClass: "Q", Amount: 200},
				}},
			},
			FareMarketPaths: []dto.FareMarketPathRequest{
				{ID: "FMP-OW", PUPaths: []dto.PUPathRequest{{ID: "P-OW", PricingUnits: []dto.PricingUnitRequest{
					{ID: "PU-OUT", FareMarkets: []string{"NYCLON"}},
				}}}},
			},
		}},
	}
}

func TestPricingService_Price_FailedFarePathBudget(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := pricing.DefaultFactoriesConfig()
	cfg.MaxFailedFarePaths = 1

	t.Run("exchange keeps the solutions found before the budget ran out", func(t *testing.T) {
		records := &capturedRecords{}
		svc := NewPricingService(WithSearchDefaults(cfg), WithRecords(records))

		result, err := svc.Price(context.Background(), oneWayBudgetRequest(true))

		require.NoError(t, err)
		assert.Equal(t, []float64{100}, solutionTotals(result))
		assert.Equal(t, "failed fare path budget exceeded", result.ReissueError)

		rec := records.last(t)
		assert.Equal(t, model.RecordStatusPriced, rec.Status)
		assert.Equal(t, "failed fare path budget exceeded", rec.Fields["reissue_error"])
	})

	t.Run("pricing fails once the budget runs out", func(t *testing.T) {
		records := &capturedRecords{}
		svc := NewPricingService(WithSearchDefaults(cfg), WithRecords(records))

		_, err := svc.Price(context.Background(), oneWayBudgetRequest(false))

		assert.ErrorIs(t, err, pricing.ErrTooManyCombinations)
		assert.Equal(t, model.RecordStatusFailed, records.last(t).Status)
	})
}

func TestPricingService_ResolveConfig(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*mockProfiles)
		wantVersion int
		wantCount   int
	}{
		{
			name: "active profile overrides defaults",
			setup: func(m *mockProfiles) {
				m.On("GetActive", mock.Anything).Return(&model.SearchProfile{
					Version:  3,
					Settings: model.SearchSettings{ShortCktCombCount: 25},
				}, nil)
			},
			wantVersion: 3,
			wantCount:   25,
		},
		{
			name: "no active profile keeps defaults",
			setup: func(m *mockProfiles) {
				m.On("GetActive", mock.Anything).Return(nil, nil)
			},
			wantCount: 1000,
		},
		{
			name: "profile store failure keeps defaults",
			setup: func(m *mockProfiles) {
				m.On("GetActive", mock.Anything).Return(nil, errors.New("connection refused"))
			},
			wantCount: 1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := new(mockProfiles)
			tt.setup(profiles)
			svc := NewPricingService(WithSearchProfiles(profiles))

			cfg, version := svc.resolveConfig(context.Background())

			assert.Equal(t, tt.wantVersion, version)
			assert.Equal(t, tt.wantCount, cfg.ShortCktCombCount)
			profiles.AssertExpectations(t)
		})
	}
}

func TestPricingService_ProfileVersionRecorded(t *testing.T) {
	profiles := new(mockProfiles)
	profiles.On("GetActive", mock.Anything).Return(&model.SearchProfile{Version: 7}, nil)
	records := &capturedRecords{}
	svc := NewPricingService(WithSearchProfiles(profiles), WithRecords(records))

	ctx := ContextWithRequestID(context.Background(), "req-42")
	_, err := svc.Price(ctx, priceRequest(1))

	require.NoError(t, err)
	rec := records.last(t)
	assert.Equal(t, 7, rec.ProfileVersion)
	assert.Equal(t, "req-42", rec.RequestID)
	assert.Equal(t, []string{"ADT"}, rec.PaxTypes)
	assert.Equal(t, "pricing", rec.TrxType)
}

func TestPricingService_Cache(t *testing.T) {
	defer goleak.VerifyNone(t)

	ids := sequentialIDs()
	svc := NewPricingService(WithResultCache(100, time.Minute), WithTransactionIDs(ids))
	defer svc.Stop()

	first, err := svc.Price(context.Background(), priceRequest(2))
	require.NoError(t, err)
	second, err := svc.Price(context.Background(), priceRequest(2))
	require.NoError(t, err)

	assert.Equal(t, first.TransactionID, second.TransactionID, "second call is served from the cache")
	assert.Equal(t, solutionTotals(first), solutionTotals(second))
	assert.Equal(t, int64(1), svc.Cache().Metrics().Hits)

	third, err := svc.Price(context.Background(), priceRequest(3))
	require.NoError(t, err)
	assert.NotEqual(t, first.TransactionID, third.TransactionID)

	svc.InvalidateCache()
	assert.Zero(t, svc.Cache().Metrics().Size)
}

func TestFingerprint(t *testing.T) {
	a := fingerprint(priceRequest(1), 0)

	assert.Len(t, a, 64)
	assert.Equal(t, a, fingerprint(priceRequest(1), 0))
	assert.NotEqual(t, a, fingerprint(priceRequest(2), 0))
	assert.NotEqual(t, a, fingerprint(priceRequest(1), 1), "profile version is part of the key")
}

func TestRecordStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, model.RecordStatusPriced},
		{fmt.Errorf("%w for ADT", ErrNoSolution), model.RecordStatusNoSolution},
		{fmt.Errorf("search ADT: %w", pricing.ErrCancelled), model.RecordStatusCancelled},
		{pricing.ErrMaxCombosExceeded, model.RecordStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, recordStatus(tt.err))
		})
	}
}

func TestPrimaryPaxIndex(t *testing.T) {
	adt := &model.PaxType{Code: model.PaxAdult}
	inf := &model.PaxType{Code: model.PaxInfant}

	assert.Equal(t, 0, primaryPaxIndex([]*model.PaxType{adt, inf}))
	assert.Equal(t, 1, primaryPaxIndex([]*model.PaxType{inf, adt}))
	assert.Equal(t, 0, primaryPaxIndex([]*model.PaxType{inf}))
}
