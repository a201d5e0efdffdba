package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/farepath-service/internal/domain/dto"
)

func newJSONContext(body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestBuildRequest_PriceRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		invalid bool
	}{
		{name: "valid request", body: priceBody},
		{name: "empty body", body: "", wantErr: errEmptyBody},
		{name: "malformed json", body: `{"passengers": invalid}`, invalid: true},
		{name: "binding rejects empty itineraries", body: `{"passengers": [{"code": "ADT"}], "itineraries": []}`, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newJSONContext(tt.body)

			req, err := BuildRequest[dto.PriceRequest](c)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, req)
			case tt.invalid:
				assert.Error(t, err)
				assert.Nil(t, req)
			default:
				require.NoError(t, err)
				assert.Equal(t, "ADT", req.Passengers[0].Code)
				assert.Equal(t, "ITIN1", req.Itineraries[0].ID)
			}
		})
	}
}

func TestBuildRequest_SearchProfileRequest(t *testing.T) {
	c, _ := newJSONContext(`{"name": "peak", "settings": {"short_ckt_comb_count": 500}}`)

	req, err := BuildRequest[dto.SearchProfileRequest](c)

	require.NoError(t, err)
	assert.Equal(t, "peak", req.Name)
	assert.Equal(t, 500, req.Settings.ShortCktCombCount)
}

func TestBuildRequest_BodyTooLarge(t *testing.T) {
	padding := strings.Repeat(" ", maxRequestBodyBytes)
	c, _ := newJSONContext(`{"name": "peak",` + padding + `"settings": {}}`)

	_, err := BuildRequest[dto.SearchProfileRequest](c)

	var tooLarge *http.MaxBytesError
	assert.ErrorAs(t, err, &tooLarge)
}
