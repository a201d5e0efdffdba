package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/guttosm/farepath-service/internal/circuitbreaker"
	"github.com/guttosm/farepath-service/internal/domain/dto"
	"github.com/guttosm/farepath-service/internal/domain/model"
	"github.com/guttosm/farepath-service/internal/mocks"
	"github.com/guttosm/farepath-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setupProfilesRouter(t *testing.T, profiles *mocks.MockSearchProfileService, pricingSvc *mocks.MockPricingService, tokens *mocks.MockTokenService) *Router {
	t.Helper()
	cfg := DefaultRouterConfig()
	cfg.Profiles = profiles
	cfg.Pricing = pricingSvc
	if tokens != nil {
		cfg.Tokens = tokens
	}
	r := NewRouter(NewHealthHandler(), cfg)
	t.Cleanup(r.Close)
	return r
}

func TestSearchProfilesHandler_GetActive(t *testing.T) {
	active := &model.SearchProfile{ID: primitive.NewObjectID(), Name: "peak", Version: 3, Active: true}

	tests := []struct {
		name           string
		setup          func(*mocks.MockSearchProfileService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "active profile",
			setup: func(m *mocks.MockSearchProfileService) {
				m.On("GetActive", mock.Anything).Return(active, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "no active profile",
			setup: func(m *mocks.MockSearchProfileService) {
				m.On("GetActive", mock.Anything).Return(nil, nil)
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeNotFound,
		},
		{
			name: "circuit open",
			setup: func(m *mocks.MockSearchProfileService) {
				m.On("GetActive", mock.Anything).Return(nil, circuitbreaker.ErrCircuitOpen)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   dto.ErrCodeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := &mocks.MockSearchProfileService{}
			tt.setup(profiles)
			router := setupProfilesRouter(t, profiles, &mocks.MockPricingService{}, nil)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/search-profiles/active", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
			} else {
				var resp struct {
					Data model.SearchProfile `json:"data"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "peak", resp.Data.Name)
				assert.Equal(t, 3, resp.Data.Version)
			}
			profiles.AssertExpectations(t)
		})
	}
}

func TestSearchProfilesHandler_List(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		expectedLimit int
	}{
		{name: "no limit", query: "", expectedLimit: 0},
		{name: "explicit limit", query: "?limit=5", expectedLimit: 5},
		{name: "invalid limit ignored", query: "?limit=abc", expectedLimit: 0},
		{name: "negative limit ignored", query: "?limit=-3", expectedLimit: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := &mocks.MockSearchProfileService{}
			profiles.On("List", mock.Anything, tt.expectedLimit).Return([]model.SearchProfile{{Name: "peak"}}, nil)
			router := setupProfilesRouter(t, profiles, &mocks.MockPricingService{}, nil)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/search-profiles"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			profiles.AssertExpectations(t)
		})
	}
}

func TestSearchProfilesHandler_Create(t *testing.T) {
	settings := model.SearchSettings{ShortCktCombCount: 500}
	created := &model.SearchProfile{ID: primitive.NewObjectID(), Name: "peak", Version: 1, Settings: settings, Active: true}

	tests := []struct {
		name           string
		body           string
		setup          func(*mocks.MockSearchProfileService, *mocks.MockPricingService)
		expectedStatus int
	}{
		{
			name: "created and cache dropped",
			body: `{"name": "peak", "settings": {"short_ckt_comb_count": 500}}`,
			setup: func(p *mocks.MockSearchProfileService, s *mocks.MockPricingService) {
				p.On("Create", mock.Anything, "peak", settings, "").Return(created, nil)
				s.On("InvalidateCache").Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "malformed body",
			body:           `{"name": }`,
			setup:          func(*mocks.MockSearchProfileService, *mocks.MockPricingService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "rejected settings keep the cache",
			body: `{"name": "peak", "settings": {"short_ckt_comb_count": -1}}`,
			setup: func(p *mocks.MockSearchProfileService, _ *mocks.MockPricingService) {
				p.On("Create", mock.Anything, "peak", mock.Anything, "").
					Return(nil, &dto.ValidationError{Field: "short_ckt_comb_count", Message: "must not be negative"})
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "store failure",
			body: `{"name": "peak"}`,
			setup: func(p *mocks.MockSearchProfileService, _ *mocks.MockPricingService) {
				p.On("Create", mock.Anything, "peak", model.SearchSettings{}, "").Return(nil, errors.New("write failed"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := &mocks.MockSearchProfileService{}
			pricingSvc := &mocks.MockPricingService{}
			tt.setup(profiles, pricingSvc)
			router := setupProfilesRouter(t, profiles, pricingSvc, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/search-profiles", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			profiles.AssertExpectations(t)
			pricingSvc.AssertExpectations(t)
		})
	}
}

func TestSearchProfilesHandler_Update(t *testing.T) {
	id := primitive.NewObjectID()

	tests := []struct {
		name           string
		path           string
		setup          func(*mocks.MockSearchProfileService, *mocks.MockPricingService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "updated",
			path: "/api/v1/search-profiles/" + id.Hex(),
			setup: func(p *mocks.MockSearchProfileService, s *mocks.MockPricingService) {
				p.On("Update", mock.Anything, id, "offpeak", model.SearchSettings{}, "").
					Return(&model.SearchProfile{ID: id, Name: "offpeak", Version: 2}, nil)
				s.On("InvalidateCache").Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid id",
			path:           "/api/v1/search-profiles/not-an-id",
			setup:          func(*mocks.MockSearchProfileService, *mocks.MockPricingService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrCodeInvalidRequest,
		},
		{
			name: "unknown profile",
			path: "/api/v1/search-profiles/" + id.Hex(),
			setup: func(p *mocks.MockSearchProfileService, _ *mocks.MockPricingService) {
				p.On("Update", mock.Anything, id, "offpeak", model.SearchSettings{}, "").Return(nil, repository.ErrProfileNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := &mocks.MockSearchProfileService{}
			pricingSvc := &mocks.MockPricingService{}
			tt.setup(profiles, pricingSvc)
			router := setupProfilesRouter(t, profiles, pricingSvc, nil)

			req := httptest.NewRequest(http.MethodPut, tt.path, bytes.NewBufferString(`{"name": "offpeak"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
			}
			profiles.AssertExpectations(t)
			pricingSvc.AssertExpectations(t)
		})
	}
}

func TestSearchProfilesHandler_Roles(t *testing.T) {
	viewer := &dto.Claims{Operator: "ana", Roles: []string{dto.RoleViewer}}
	admin := &dto.Claims{Operator: "root", Roles: []string{dto.RoleAdmin}}

	tests := []struct {
		name           string
		method         string
		token          string
		claims         *dto.Claims
		setup          func(*mocks.MockSearchProfileService, *mocks.MockPricingService)
		expectedStatus int
	}{
		{
			name:           "no token",
			method:         http.MethodGet,
			setup:          func(*mocks.MockSearchProfileService, *mocks.MockPricingService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "viewer reads",
			method: http.MethodGet,
			token:  "viewer-token",
			claims: viewer,
			setup: func(p *mocks.MockSearchProfileService, _ *mocks.MockPricingService) {
				p.On("List", mock.Anything, 0).Return([]model.SearchProfile{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "viewer cannot write",
			method:         http.MethodPost,
			token:          "viewer-token",
			claims:         viewer,
			setup:          func(*mocks.MockSearchProfileService, *mocks.MockPricingService) {},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "admin writes as operator",
			method: http.MethodPost,
			token:  "admin-token",
			claims: admin,
			setup: func(p *mocks.MockSearchProfileService, s *mocks.MockPricingService) {
				p.On("Create", mock.Anything, "peak", model.SearchSettings{}, "root").
					Return(&model.SearchProfile{ID: primitive.NewObjectID(), Name: "peak", Version: 1}, nil)
				s.On("InvalidateCache").Once()
			},
			expectedStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := &mocks.MockSearchProfileService{}
			pricingSvc := &mocks.MockPricingService{}
			tokens := &mocks.MockTokenService{}
			if tt.claims != nil {
				tokens.On("Validate", tt.token).Return(tt.claims, nil)
			}
			tt.setup(profiles, pricingSvc)
			router := setupProfilesRouter(t, profiles, pricingSvc, tokens)

			req := httptest.NewRequest(tt.method, "/api/v1/search-profiles", bytes.NewBufferString(`{"name": "peak"}`))
			req.Header.Set("Content-Type", "application/json")
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			profiles.AssertExpectations(t)
			pricingSvc.AssertExpectations(t)
			tokens.AssertExpectations(t)
		})
	}
}
