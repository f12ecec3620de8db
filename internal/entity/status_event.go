package entity

import (
	"context"
	"time"
)

// StatusEvent is append-only. Aggregation treats the events of a lead as a flat multiset.
type StatusEvent struct {
	ID             string     `json:"id"`
	LeadID         string     `json:"lead_id"`
	Status         string     `json:"status"`
	FollowUpDate   *time.Time `json:"follow_up_date,omitempty"`
	ExpectedAmount *float64   `json:"expected_amount,omitempty"`
	Note           string     `json:"note,omitempty"`
	RecordedBy     string     `json:"recorded_by"`
	CreatedAt      time.Time  `json:"created_at"`
}

type StatusEventRepositoryInterface interface {
	FindAll(ctx context.Context) ([]StatusEvent, error)
	FindByLeadIDs(ctx context.Context, leadIDs []string) ([]StatusEvent, error)
	// FindPrevious returns the newest event of the lead other than excludeID, or nil.
	FindPrevious(ctx context.Context, leadID, excludeID string) (*StatusEvent, error)
	Create(ctx context.Context, event *StatusEvent) error
	Delete(ctx context.Context, id string) error
}
