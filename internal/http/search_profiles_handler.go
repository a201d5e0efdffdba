package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/farepath-service/internal/domain/dto"
	"github.com/guttosm/farepath-service/internal/i18n"
	"github.com/guttosm/farepath-service/internal/middleware"
	"github.com/guttosm/farepath-service/internal/repository"
	"github.com/guttosm/farepath-service/internal/service"
)

// SearchProfilesHandler provides HTTP handlers for search profile routes.
type SearchProfilesHandler struct {
	profiles service.SearchProfileService
	pricing  service.PricingService
}

// NewSearchProfilesHandler creates a new SearchProfilesHandler. pricing, when set, has its
// result cache dropped whenever the active profile changes.
func NewSearchProfilesHandler(profiles service.SearchProfileService, pricing service.PricingService) *SearchProfilesHandler {
	return &SearchProfilesHandler{
		profiles: profiles,
		pricing:  pricing,
	}
}

// GetActive handles GET /api/v1/search-profiles/active requests.
//
// @Summary      Get active search profile
// @Description  Returns the search profile whose settings currently override the server defaults
// @Tags         Search Profiles
// @Produce      json
// @Param        Authorization header string false "Bearer token (required if auth enabled)"
// @Success      200 {object} dto.SuccessResponse "Active search profile"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid JWT token"
// @Failure      404 {object} dto.ErrorResponse "No active search profile"
// @Failure      503 {object} dto.ErrorResponse "Profile store unavailable"
// @Security     BearerAuth
// @Router       /api/v1/search-profiles/active [get]
func (h *SearchProfilesHandler) GetActive(c *gin.Context) {
	builder := NewResponseBuilder(c)

	profile, err := h.profiles.GetActive(c.Request.Context())
	if err != nil {
		builder.FromError(err)
		return
	}
	if profile == nil {
		builder.FromError(repository.ErrProfileNotFound)
		return
	}

	builder.SuccessOK(profile)
}

// List handles GET /api/v1/search-profiles requests.
//
// @Summary      List search profiles
// @Description  Returns the stored search profiles, newest first
// @Tags         Search Profiles
// @Produce      json
// @Param        Authorization header string false "Bearer token (required if auth enabled)"
// @Param        limit query int false "Limit number of results (default 20, max 100)"
// @Success      200 {object} dto.SuccessResponse "Search profiles"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid JWT token"
// @Failure      503 {object} dto.ErrorResponse "Profile store unavailable"
// @Security     BearerAuth
// @Router       /api/v1/search-profiles [get]
func (h *SearchProfilesHandler) List(c *gin.Context) {
	builder := NewResponseBuilder(c)

	limit := 0
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = l
	}

	profiles, err := h.profiles.List(c.Request.Context(), limit)
	if err != nil {
		builder.FromError(err)
		return
	}

	builder.SuccessOK(profiles)
}

// Create handles POST /api/v1/search-profiles requests.
//
// @Summary      Create search profile
// @Description  Stores a new search profile and makes it the active one
// @Tags         Search Profiles
// @Accept       json
// @Produce      json
// @Param        Authorization header string false "Bearer token (required if auth enabled)"
// @Param        request body dto.SearchProfileRequest true "Search profile"
// @Success      201 {object} dto.SuccessResponse "Created search profile"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid settings"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid JWT token"
// @Failure      403 {object} dto.ErrorResponse "Forbidden - admin role required"
// @Failure      503 {object} dto.ErrorResponse "Profile store unavailable"
// @Security     BearerAuth
// @Router       /api/v1/search-profiles [post]
func (h *SearchProfilesHandler) Create(c *gin.Context) {
	builder := NewResponseBuilder(c)

	req, err := BuildRequest[dto.SearchProfileRequest](c)
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}

	profile, err := h.profiles.Create(c.Request.Context(), req.Name, req.Settings, middleware.GetOperator(c))
	if err != nil {
		middleware.AuditLogError(c, middleware.AuditProfileCreated, "Search profile rejected", err, map[string]interface{}{
			"name": req.Name,
		})
		builder.FromError(err)
		return
	}

	h.invalidatePricingCache()
	middleware.AuditLog(c, middleware.AuditProfileCreated, "Search profile created", map[string]interface{}{
		"profile_id": profile.ID.Hex(),
		"name":       profile.Name,
		"version":    profile.Version,
	})

	builder.SuccessCreated(profile)
}

// Update handles PUT /api/v1/search-profiles/:id requests.
//
// @Summary      Update search profile
// @Description  Replaces the name and settings of a search profile and bumps its version
// @Tags         Search Profiles
// @Accept       json
// @Produce      json
// @Param        Authorization header string false "Bearer token (required if auth enabled)"
// @Param        id path string true "Search profile ID"
// @Param        request body dto.SearchProfileRequest true "Search profile"
// @Success      200 {object} dto.SuccessResponse "Updated search profile"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid ID or settings"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - missing or invalid JWT token"
// @Failure      403 {object} dto.ErrorResponse "Forbidden - admin role required"
// @Failure      404 {object} dto.ErrorResponse "Search profile not found"
// @Failure      503 {object} dto.ErrorResponse "Profile store unavailable"
// @Security     BearerAuth
// @Router       /api/v1/search-profiles/{id} [put]
func (h *SearchProfilesHandler) Update(c *gin.Context) {
	builder := NewResponseBuilder(c)

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		builder.FromError(&dto.ValidationError{Field: "id", Message: "must be a valid profile ID"})
		return
	}

	req, err := BuildRequest[dto.SearchProfileRequest](c)
	if err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
		return
	}

	profile, err := h.profiles.Update(c.Request.Context(), id, req.Name, req.Settings, middleware.GetOperator(c))
	if err != nil {
		middleware.AuditLogError(c, middleware.AuditProfileUpdated, "Search profile update rejected", err, map[string]interface{}{
			"profile_id": id.Hex(),
		})
		builder.FromError(err)
		return
	}

	h.invalidatePricingCache()
	middleware.AuditLog(c, middleware.AuditProfileUpdated, "Search profile updated", map[string]interface{}{
		"profile_id": profile.ID.Hex(),
		"version":    profile.Version,
	})

	builder.SuccessOK(profile)
}

func (h *SearchProfilesHandler) invalidatePricingCache() {
	if h.pricing != nil {
		h.pricing.InvalidateCache()
	}
}
