package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/farepath-service/internal/domain/dto"
	"github.com/guttosm/farepath-service/internal/i18n"
	"github.com/guttosm/farepath-service/internal/logger"
)

// ErrorHandler returns a middleware that logs errors handlers attached to the
// gin context, and answers 500 when no handler wrote a response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		log := logger.Logger()
		event := log.Error()
		if status := c.Writer.Status(); c.Writer.Written() && status < http.StatusInternalServerError {
			event = log.Warn()
		}
		event.
			Str("request_id", GetRequestID(c)).
			Str("transaction_id", c.GetString(TransactionIDKey)).
			Str("error", err.Error()).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("Request error")

		if !c.Writer.Written() {
			message := i18n.GetTranslator().Translate(i18n.ErrKeyInternalError, i18n.GetLocale(c))
			c.JSON(http.StatusInternalServerError, dto.NewError(dto.ErrCodeInternal, message).WithRequestID(GetRequestID(c)))
		}
	}
}
