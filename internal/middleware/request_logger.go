package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/farepath-service/internal/logger"
	"github.com/rs/zerolog"
)

// TransactionIDKey is the context key handlers set to the pricing transaction they ran.
const TransactionIDKey = "transaction_id"

// RequestLogger returns a middleware that logs HTTP request details in JSON format.
// It logs: request ID, method, path, status code, latency, IP, and user agent,
// plus the caller and pricing transaction when known.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		statusCode := c.Writer.Status()
		ctx := logger.Logger().With().
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status_code", statusCode).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent())

		if op := GetOperator(c); op != "" {
			ctx = ctx.Str("operator", op)
		}
		if client := GetAPIClient(c); client != "" {
			ctx = ctx.Str("api_client", client)
		}
		if trx := c.GetString(TransactionIDKey); trx != "" {
			ctx = ctx.Str("transaction_id", trx)
		}

		log := ctx.Logger()
		log.WithLevel(logLevel(statusCode)).Msg("HTTP request")
	}
}

// logLevel returns the log level based on HTTP status code.
func logLevel(statusCode int) zerolog.Level {
	switch {
	case statusCode >= 500:
		return zerolog.ErrorLevel
	case statusCode >= 400:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
