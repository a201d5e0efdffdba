package dto

import "github.com/guttosm/farepath-service/internal/domain/model"

// SearchProfileRequest creates or replaces a search profile.
//
// @Description Search profile to store
type SearchProfileRequest struct {
	Name     string               `json:"name" example:"peak-season"`
	Settings model.SearchSettings `json:"settings"`
} // @name SearchProfileRequest

// RecordListResponse is one page of pricing records.
//
// @Description Page of pricing records
type RecordListResponse struct {
	Records []*model.PricingRecord `json:"records"`
	Total   int64                  `json:"total" example:"120"`
	Limit   int                    `json:"limit" example:"50"`
	Skip    int                    `json:"skip" example:"0"`
} // @name RecordListResponse
