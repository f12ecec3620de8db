package entity

import (
	"context"
	"time"
)

const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Lead.Status mirrors the latest StatusEvent but is written separately and may lag.
type Lead struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	City           string     `json:"city,omitempty"`
	Profession     string     `json:"profession,omitempty"`
	Status         string     `json:"status"`
	Source         *string    `json:"source,omitempty"`
	Counselor      *string    `json:"counselor,omitempty"`
	Priority       string     `json:"priority,omitempty"`
	LeadScore      int        `json:"lead_score"`
	Notes          string     `json:"notes,omitempty"`
	FollowUpDate   *time.Time `json:"follow_up_date,omitempty"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (l Lead) SourceOr(fallback string) string {
	if l.Source == nil || *l.Source == "" {
		return fallback
	}
	return *l.Source
}

func (l Lead) CounselorOr(fallback string) string {
	if l.Counselor == nil || *l.Counselor == "" {
		return fallback
	}
	return *l.Counselor
}

type LeadRepositoryInterface interface {
	FindAll(ctx context.Context) ([]Lead, error)
	FindByIDs(ctx context.Context, ids []string) ([]Lead, error)
	FindByID(ctx context.Context, id string) (*Lead, error)
	UpdateStatus(ctx context.Context, id, status string, followUp *time.Time) error
}
