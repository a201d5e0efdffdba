package http

import (
	"errors"
	"net/http"

	"github.com/guttosm/farepath-service/internal/circuitbreaker"
	"github.com/guttosm/farepath-service/internal/domain/dto"
	"github.com/guttosm/farepath-service/internal/domain/model"
	"github.com/guttosm/farepath-service/internal/i18n"
	"github.com/guttosm/farepath-service/internal/pricing"
	"github.com/guttosm/farepath-service/internal/repository"
	"github.com/guttosm/farepath-service/internal/service"
)

// errorMapping is how one class of service error is presented to API callers.
type errorMapping struct {
	status int
	code   string
	key    string
}

// mapError classifies err into an HTTP status, error code and message key.
func mapError(err error) errorMapping {
	var verr *dto.ValidationError
	switch {
	case errors.As(err, &verr):
		return errorMapping{http.StatusBadRequest, dto.ErrCodeInvalidRequest, i18n.ErrKeyInvalidRequest}
	case errors.Is(err, service.ErrNoSolution):
		return errorMapping{http.StatusNotFound, dto.ErrCodeNoSolution, i18n.ErrKeyNoSolution}
	case errors.Is(err, pricing.ErrCancelled):
		return errorMapping{http.StatusGatewayTimeout, dto.ErrCodeTimeout, i18n.ErrKeyTimeout}
	case errors.Is(err, pricing.ErrMaxCombosExceeded), errors.Is(err, pricing.ErrTooManyCombinations):
		return errorMapping{http.StatusUnprocessableEntity, dto.ErrCodeSearchLimit, i18n.ErrKeySearchLimitExceeded}
	case errors.Is(err, repository.ErrProfileNotFound):
		return errorMapping{http.StatusNotFound, dto.ErrCodeNotFound, i18n.ErrKeyProfileNotFound}
	case errors.Is(err, service.ErrRepositoryNotConfigured), errors.Is(err, circuitbreaker.ErrCircuitOpen):
		return errorMapping{http.StatusServiceUnavailable, dto.ErrCodeUnavailable, i18n.ErrKeyServiceUnavailable}
	default:
		return errorMapping{http.StatusInternalServerError, dto.ErrCodeInternal, i18n.ErrKeyInternalError}
	}
}

// errorDetails exposes what a caller can act on: the offending field of a validation
// error, the pricing error code of a failed search and any reissue message.
func errorDetails(err error, result *model.PricingResult) map[string]string {
	details := make(map[string]string)

	var verr *dto.ValidationError
	if errors.As(err, &verr) {
		details[verr.Field] = verr.Message
	}

	var serr *pricing.SearchError
	switch {
	case errors.As(err, &serr) && serr.Code != "":
		details["pricing_code"] = serr.Code
	case errors.Is(err, service.ErrNoSolution):
		details["pricing_code"] = pricing.CodeNoFareForClassUsed
	}

	if result != nil && result.ReissueError != "" {
		details["reissue_error"] = result.ReissueError
	}

	if len(details) == 0 {
		return nil
	}
	return details
}

// FromError answers with the mapped error for err.
func (b *ResponseBuilder) FromError(err error) {
	b.FromPricingError(err, nil)
}

// FromPricingError answers with the mapped error for err, adding what the partial
// result of the failed transaction tells the caller.
func (b *ResponseBuilder) FromPricingError(err error, result *model.PricingResult) {
	m := mapError(err)
	b.Fail(m.status, m.code, b.translate(m.key), errorDetails(err, result), err)
}
