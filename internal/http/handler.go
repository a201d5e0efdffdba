package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/farepath-service/internal/domain/dto"
	"github.com/guttosm/farepath-service/internal/domain/model"
	"github.com/guttosm/farepath-service/internal/i18n"
	"github.com/guttosm/farepath-service/internal/middleware"
	"github.com/guttosm/farepath-service/internal/service"
)

const (
	defaultRecordLimit = 50
	maxRecordLimit     = 500
)

// Handler provides HTTP handlers for pricing routes.
type Handler struct {
	pricing service.PricingService
	records service.RecordService
}

// NewHandler creates a new Handler instance. records may be nil when no record store is configured.
func NewHandler(pricing service.PricingService, records service.RecordService) *Handler {
	return &Handler{
		pricing: pricing,
		records: records,
	}
}

// Price handles POST /api/v1/price requests.
//
// @Summary      Price itineraries
// @Description  Searches the cheapest valid fare path combinations for every passenger type of the request. Results are ranked by total amount in NUC. Identical requests under the same search profile are answered from a cache.
// @Tags         Pricing
// @Accept       json
// @Produce      json
// @Param        X-API-Key header string false "API key (required if auth enabled)"
// @Param        request body dto.PriceRequest true "Pricing request"
// @Success      200 {object} dto.SuccessResponse "Ranked solutions"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid API key"
// @Failure      404 {object} dto.ErrorResponse "No fare path could be priced"
// @Failure      422 {object} dto.ErrorResponse "Search exceeded its combination limit"
// @Failure      429 {object} dto.ErrorResponse "Too many requests - rate limit exceeded"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Failure      504 {object} dto.ErrorResponse "Pricing transaction timed out"
// @Security     ApiKeyAuth
// @Router       /api/v1/price [post]
func (h *Handler) Price(c *gin.Context) {
	builder := NewResponseBuilder(c)

	req, err := BuildRequest[dto.PriceRequest](c)
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}

	result, err := h.pricing.Price(c.Request.Context(), req)
	if result != nil {
		c.Set(middleware.TransactionIDKey, result.TransactionID)
	}
	if err != nil {
		builder.FromPricingError(err, result)
		return
	}

	builder.SuccessOK(result)
}

// ListPricingRecords handles GET /api/v1/pricing-records requests.
//
// @Summary      List pricing records
// @Description  Returns the recorded pricing transactions, newest first, filtered by request, transaction, status and time range
// @Tags         Pricing Records
// @Produce      json
// @Param        Authorization header string false "Bearer token (required if auth enabled)"
// @Param        request_id query string false "Request ID"
// @Param        transaction_id query string false "Transaction ID"
// @Param        status query string false "Record status" Enums(priced, no_solution, failed, cancelled)
// @Param        from query string false "Start time (RFC 3339)"
// @Param        to query string false "End time (RFC 3339)"
// @Param        limit query int false "Page size (default 50, max 500)"
// @Param        skip query int false "Records to skip"
// @Success      200 {object} dto.SuccessResponse{data=dto.RecordListResponse} "Pricing records"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid filter"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid JWT token"
// @Failure      503 {object} dto.ErrorResponse "Record store unavailable"
// @Security     BearerAuth
// @Router       /api/v1/pricing-records [get]
func (h *Handler) ListPricingRecords(c *gin.Context) {
	builder := NewResponseBuilder(c)

	if h.records == nil {
		builder.FromError(service.ErrRepositoryNotConfigured)
		return
	}

	opts, err := recordQueryFromRequest(c)
	if err != nil {
		builder.FromError(err)
		return
	}

	ctx := c.Request.Context()
	records, err := h.records.Query(ctx, opts)
	if err != nil {
		builder.FromError(err)
		return
	}
	total, err := h.records.Count(ctx, opts)
	if err != nil {
		builder.FromError(err)
		return
	}

	if records == nil {
		records = []*model.PricingRecord{}
	}
	builder.SuccessOK(dto.RecordListResponse{
		Records: records,
		Total:   total,
		Limit:   opts.Limit,
		Skip:    opts.Skip,
	})
}

func recordQueryFromRequest(c *gin.Context) (model.RecordQueryOptions, error) {
	opts := model.RecordQueryOptions{
		RequestID:     c.Query("request_id"),
		TransactionID: c.Query("transaction_id"),
		Status:        c.Query("status"),
		Limit:         defaultRecordLimit,
	}

	switch opts.Status {
	case "", model.RecordStatusPriced, model.RecordStatusNoSolution, model.RecordStatusFailed, model.RecordStatusCancelled:
	default:
		return opts, &dto.ValidationError{Field: "status", Message: "unknown record status"}
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &opts.StartTime}, {"to", &opts.EndTime}} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return opts, &dto.ValidationError{Field: p.name, Message: "must be an RFC 3339 time"}
		}
		*p.dst = &t
	}
	if opts.StartTime != nil && opts.EndTime != nil && opts.EndTime.Before(*opts.StartTime) {
		return opts, &dto.ValidationError{Field: "to", Message: "must not be before from"}
	}

	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, &dto.ValidationError{Field: "limit", Message: "must be a positive integer"}
		}
		opts.Limit = min(n, maxRecordLimit)
	}
	if v := c.Query("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, &dto.ValidationError{Field: "skip", Message: "must not be negative"}
		}
		opts.Skip = n
	}
	return opts, nil
}
