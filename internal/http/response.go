package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/farepath-service/internal/domain/dto"
	"github.com/guttosm/farepath-service/internal/i18n"
	"github.com/guttosm/farepath-service/internal/middleware"
)

// ResponseBuilder writes the response envelopes of the API.
type ResponseBuilder struct {
	c *gin.Context
}

// NewResponseBuilder creates a ResponseBuilder for c.
func NewResponseBuilder(c *gin.Context) *ResponseBuilder {
	return &ResponseBuilder{c: c}
}

// Success answers with data wrapped in a SuccessResponse.
func (b *ResponseBuilder) Success(statusCode int, data interface{}) {
	b.c.JSON(statusCode, dto.SuccessResponse{
		Data:      data,
		RequestID: middleware.GetRequestID(b.c),
		Timestamp: time.Now(),
	})
}

// SuccessOK answers 200 with data.
func (b *ResponseBuilder) SuccessOK(data interface{}) {
	b.Success(http.StatusOK, data)
}

// SuccessCreated answers 201 with data.
func (b *ResponseBuilder) SuccessCreated(data interface{}) {
	b.Success(http.StatusCreated, data)
}

// Error answers with the translated message for messageKey.
func (b *ResponseBuilder) Error(statusCode int, messageKey string, err error) {
	b.Fail(statusCode, dto.ErrCodeFromStatus(statusCode), b.translate(messageKey), nil, err)
}

// Fail aborts the request with an ErrorResponse. err, when set, is attached to
// the context so the error handler logs it. The response names the pricing
// transaction when the handler recorded one.
func (b *ResponseBuilder) Fail(statusCode int, code, message string, details map[string]string, err error) {
	if err != nil {
		_ = b.c.Error(err)
	}

	resp := dto.NewError(code, message).
		WithRequestID(middleware.GetRequestID(b.c)).
		WithDetails(details)
	resp.TransactionID = b.c.GetString(middleware.TransactionIDKey)

	b.c.AbortWithStatusJSON(statusCode, resp)
}

func (b *ResponseBuilder) translate(key string) string {
	return i18n.GetTranslator().Translate(key, i18n.GetLocale(b.c))
}
