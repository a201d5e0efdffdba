package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pricing record statuses.
const (
	RecordStatusPriced     = "priced"
	RecordStatusNoSolution = "no_solution"
	RecordStatusFailed     = "failed"
	RecordStatusCancelled  = "cancelled"
)

// PricingRecord is the persisted summary of one pricing transaction.
// Use the Fields map to store any additional context-specific data.
type PricingRecord struct {
	ID                primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Timestamp         time.Time              `bson:"timestamp" json:"timestamp"`
	TransactionID     string                 `bson:"transaction_id" json:"transaction_id"`
	RequestID         string                 `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Status            string                 `bson:"status" json:"status"`
	TrxType           string                 `bson:"trx_type" json:"trx_type"`
	PaxTypes          []string               `bson:"pax_types" json:"pax_types"`
	RequestedCount    int                    `bson:"requested_count" json:"requested_count"`
	SolutionCount     int                    `bson:"solution_count" json:"solution_count"`
	CheapestNUC       float64                `bson:"cheapest_nuc,omitempty" json:"cheapest_nuc,omitempty"`
	CombinationsTried int                    `bson:"combinations_tried" json:"combinations_tried"`
	ShortCircuited    bool                   `bson:"short_circuited,omitempty" json:"short_circuited,omitempty"`
	Duration          int64                  `bson:"duration_ms" json:"duration_ms"`
	ProfileVersion    int                    `bson:"profile_version,omitempty" json:"profile_version,omitempty"`
	Error             string                 `bson:"error,omitempty" json:"error,omitempty"`
	Fields            map[string]interface{} `bson:"fields,omitempty" json:"fields,omitempty"`
}

// WithField adds a field to the record's Fields map.
func (r *PricingRecord) WithField(key string, value interface{}) *PricingRecord {
	if r.Fields == nil {
		r.Fields = make(map[string]interface{})
	}
	r.Fields[key] = value
	return r
}

// WithFields adds multiple fields to the record's Fields map.
func (r *PricingRecord) WithFields(fields map[string]interface{}) *PricingRecord {
	if r.Fields == nil {
		r.Fields = make(map[string]interface{})
	}
	for k, v := range fields {
		r.Fields[k] = v
	}
	return r
}

// RecordQueryOptions filters pricing record queries.
type RecordQueryOptions struct {
	RequestID     string
	TransactionID string
	Status        string
	StartTime     *time.Time
	EndTime       *time.Time
	Limit         int
	Skip          int
}
