package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SearchSettings are the tunable limits of the fare path search.
// Durations are stored in milliseconds.
//
// @Description Fare path search tuning parameters
type SearchSettings struct {
	MaxNbrCombMsgThreshold     int     `bson:"max_nbr_comb_msg_threshold" json:"max_nbr_comb_msg_threshold" example:"50000"`
	MultiPaxShortCktTimeoutMs  int64   `bson:"multi_pax_short_ckt_timeout_ms" json:"multi_pax_short_ckt_timeout_ms" example:"3000"`
	ShortCktTimeoutMs          int64   `bson:"short_ckt_timeout_ms" json:"short_ckt_timeout_ms" example:"2000"`
	ShortCktShutdownFPFsTimeMs int64   `bson:"short_ckt_shutdown_fpfs_time_ms" json:"short_ckt_shutdown_fpfs_time_ms" example:"8000"`
	ShortCktKeepValidFPsTimeMs int64   `bson:"short_ckt_keep_valid_fps_time_ms" json:"short_ckt_keep_valid_fps_time_ms" example:"7000"`
	ShortCktCombCount          int     `bson:"short_ckt_comb_count" json:"short_ckt_comb_count" example:"1000"`
	ShortCktStdDevMultiplier   float64 `bson:"short_ckt_stddev_multiplier" json:"short_ckt_stddev_multiplier" example:"3"`
	PlusUpPushBackMax          int     `bson:"plus_up_push_back_max" json:"plus_up_push_back_max" example:"100"`
	PlusUpPushBackThreshold    int     `bson:"plus_up_push_back_threshold" json:"plus_up_push_back_threshold" example:"10"`
	MaxSearchNextLevelFarePath int     `bson:"max_search_next_level_fare_path" json:"max_search_next_level_fare_path" example:"-1"`
	AbortCheckInterval         int     `bson:"abort_check_interval" json:"abort_check_interval" example:"16"`
	MaxFailedFarePaths         int     `bson:"max_failed_fare_paths" json:"max_failed_fare_paths" example:"0"`
}

// SearchProfile is a versioned set of search settings. Exactly one profile is active.
type SearchProfile struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Name      string                 `bson:"name" json:"name"`
	Settings  SearchSettings         `bson:"settings" json:"settings"`
	Active    bool                   `bson:"active" json:"active"`
	Version   int                    `bson:"version" json:"version"`
	CreatedAt time.Time              `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time              `bson:"updated_at" json:"updated_at"`
	CreatedBy string                 `bson:"created_by,omitempty" json:"created_by,omitempty"`
	UpdatedBy string                 `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
	Metadata  map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
}
