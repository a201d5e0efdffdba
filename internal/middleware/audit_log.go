package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/guttosm/farepath-service/internal/logger"
	"github.com/rs/zerolog"
)

// Audit actions.
const (
	AuditProfileCreated = "search_profile.created"
	AuditProfileUpdated = "search_profile.updated"
	AuditTokenIssued    = "token.issued"
)

// AuditLog records an operator action that changes service behaviour.
func AuditLog(c *gin.Context, action, message string, fields map[string]interface{}) {
	log := logger.Logger()
	auditEvent(c, log.Info(), action, fields).Msg(message)
}

// AuditLogError records a failed operator action.
func AuditLogError(c *gin.Context, action, message string, err error, fields map[string]interface{}) {
	log := logger.Logger()
	auditEvent(c, log.Error(), action, fields).Err(err).Msg(message)
}

func auditEvent(c *gin.Context, event *zerolog.Event, action string, fields map[string]interface{}) *zerolog.Event {
	event = event.
		Bool("audit", true).
		Str("action", action).
		Str("request_id", GetRequestID(c)).
		Str("operator", GetOperator(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("ip", c.ClientIP())
	if len(fields) > 0 {
		event = event.Fields(fields)
	}
	return event
}
