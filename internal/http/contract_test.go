//go:build contract

package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/farepath-service/internal/domain/dto"
	"github.com/guttosm/farepath-service/internal/middleware"
	"github.com/guttosm/farepath-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Out and back NYC-LON. The cheapest adult fare path is Y+Y at 580 NUC.
const contractPriceBody = `{
	"solutions": 2,
	"passengers": [{"code": "ADT"}],
	"itineraries": [{
		"id": "ITIN1",
		"fare_markets": [
			{"id": "NYCLON", "origin": "NYC", "destination": "LON", "carrier": "AA", "fares": [
				{"pax_type": "ADT", "fare_class": "Y", "amount": 300},
				{"pax_type": "ADT", "fare_class": "M", "amount": 350}
			]},
			{"id": "LONNYC", "origin": "LON", "destination": "NYC", "carrier": "AA", "fares": [
				{"pax_type": "ADT", "fare_class": "Y", "amount": 280},
				{"pax_type": "ADT", "fare_class": "M", "amount": 320}
			]}
		],
		"fare_market_paths": [{"id": "FMP1", "pu_paths": [{"id": "PUP1", "pricing_units": [
			{"id": "PU-OUT", "type": "OW", "fare_markets": ["NYCLON"]},
			{"id": "PU-IN", "type": "OW", "fare_markets": ["LONNYC"]}
		]}]}]
	}]
}`

func contractRouter(t *testing.T) *Router {
	t.Helper()
	cfg := DefaultRouterConfig()
	cfg.Pricing = service.NewPricingService()
	router := NewRouter(NewHealthHandler(), cfg)
	t.Cleanup(router.Close)
	return router
}

// TestAPI_ContractCompliance validates that API responses match the documented contract.
func TestAPI_ContractCompliance(t *testing.T) {
	router := contractRouter(t)

	tests := []struct {
		name             string
		method           string
		path             string
		body             string
		expectedStatus   int
		validateResponse func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:           "POST /api/v1/price - Success 200",
			method:         http.MethodPost,
			path:           "/api/v1/price",
			body:           contractPriceBody,
			expectedStatus: http.StatusOK,
			validateResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp dto.SuccessResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

				assert.NotEmpty(t, resp.RequestID, "Response must include request_id")
				assert.NotZero(t, resp.Timestamp, "Response must include timestamp")

				result, ok := resp.Data.(map[string]interface{})
				require.True(t, ok, "Data must be a PricingResult")
				assert.Contains(t, result, "transaction_id")
				assert.Contains(t, result, "combinations_tried")

				solutions, ok := result["solutions"].([]interface{})
				require.True(t, ok)
				require.Len(t, solutions, 2)

				first := solutions[0].(map[string]interface{})
				second := solutions[1].(map[string]interface{})
				assert.Equal(t, float64(580), first["total_nuc"])
				assert.LessOrEqual(t, first["total_nuc"].(float64), second["total_nuc"].(float64))
				assert.Contains(t, first, "passengers")
			},
		},
		{
			name:           "POST /api/v1/price - Bad Request 400",
			method:         http.MethodPost,
			path:           "/api/v1/price",
			body:           `{"passengers": []}`,
			expectedStatus: http.StatusBadRequest,
			validateResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp dto.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, dto.ErrCodeInvalidRequest, resp.Error)
				assert.NotEmpty(t, resp.Message)
				assert.NotEmpty(t, resp.RequestID)
			},
		},
		{
			name:           "GET /healthz - 200",
			method:         http.MethodGet,
			path:           "/healthz",
			expectedStatus: http.StatusOK,
			validateResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "ok", resp["status"])
			},
		},
		{
			name:           "GET /readyz - 200",
			method:         http.MethodGet,
			path:           "/readyz",
			expectedStatus: http.StatusOK,
			validateResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "ok", resp["status"])
				assert.Contains(t, resp, "checks")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validateResponse != nil {
				tt.validateResponse(t, w)
			}
		})
	}
}

// TestAPI_Headers validates the headers every API response carries.
func TestAPI_Headers(t *testing.T) {
	router := contractRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/price", bytes.NewBufferString(contractPriceBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.RequestIDHeader, "contract-req")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "contract-req", w.Header().Get(middleware.RequestIDHeader))
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, "100", w.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
}
