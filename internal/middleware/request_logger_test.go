//go:build !integration

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func Test_logLevel(t *testing.T) {
	tests := []struct {
		statusCode int
		expected   zerolog.Level
	}{
		{statusCode: 200, expected: zerolog.InfoLevel},
		{statusCode: 301, expected: zerolog.InfoLevel},
		{statusCode: 400, expected: zerolog.WarnLevel},
		{statusCode: 404, expected: zerolog.WarnLevel},
		{statusCode: 500, expected: zerolog.ErrorLevel},
		{statusCode: 503, expected: zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.statusCode), func(t *testing.T) {
			assert.Equal(t, tt.expected, logLevel(tt.statusCode))
		})
	}
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		statusCode int
		setup      func(*gin.Context)
		wantLevel  string
		wantFields map[string]interface{}
		absent     []string
	}{
		{
			name:       "successful anonymous request",
			statusCode: http.StatusOK,
			setup:      func(*gin.Context) {},
			wantLevel:  "info",
			wantFields: map[string]interface{}{"method": "POST", "path": "/api/v1/price", "status_code": float64(200)},
			absent:     []string{"operator", "api_client", "transaction_id"},
		},
		{
			name:       "priced request carries caller and transaction",
			statusCode: http.StatusOK,
			setup: func(c *gin.Context) {
				c.Set(APIClientKey, "abcd")
				c.Set(TransactionIDKey, "trx-1")
			},
			wantLevel:  "info",
			wantFields: map[string]interface{}{"api_client": "abcd", "transaction_id": "trx-1"},
			absent:     []string{"operator"},
		},
		{
			name:       "client error is a warning",
			statusCode: http.StatusNotFound,
			setup:      func(c *gin.Context) { c.Set(OperatorKey, "ops") },
			wantLevel:  "warn",
			wantFields: map[string]interface{}{"operator": "ops", "status_code": float64(404)},
		},
		{
			name:       "server error is an error",
			statusCode: http.StatusInternalServerError,
			setup:      func(*gin.Context) {},
			wantLevel:  "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)

			router := gin.New()
			router.Use(RequestID(), RequestLogger())
			router.POST("/api/v1/price", func(c *gin.Context) {
				tt.setup(c)
				c.Status(tt.statusCode)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/price", nil)
			req.Header.Set(RequestIDHeader, "req-1")
			router.ServeHTTP(httptest.NewRecorder(), req)

			entry := lastLogLine(t, buf)
			assert.Equal(t, "HTTP request", entry["message"])
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "req-1", entry["request_id"])
			for k, v := range tt.wantFields {
				assert.Equal(t, v, entry[k], k)
			}
			for _, k := range tt.absent {
				assert.NotContains(t, entry, k)
			}
		})
	}
}
