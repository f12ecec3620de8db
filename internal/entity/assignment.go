package entity

import (
	"context"
	"time"
)

// LeadAssignment links a lead to the executive allowed to see it. One row per lead is active.
type LeadAssignment struct {
	ID         string    `json:"id"`
	LeadID     string    `json:"lead_id"`
	AssignedTo string    `json:"assigned_to"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

type AssignmentRepositoryInterface interface {
	FindActiveByUser(ctx context.Context, userID string) ([]LeadAssignment, error)
	FindActiveByLead(ctx context.Context, leadID string) (*LeadAssignment, error)
	// Assign deactivates the current assignment of the lead and stores the new one.
	Assign(ctx context.Context, assignment *LeadAssignment) error
}

type CoachAssignment struct {
	ClientID string `json:"client_id"`
	CoachID  string `json:"coach_id"`
	Status   string `json:"status"`
}

type CoachAssignmentRepositoryInterface interface {
	FindActive(ctx context.Context) ([]CoachAssignment, error)
}

type MembershipFreeze struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	PlanType    string     `json:"plan_type,omitempty"`
	FreezeStart time.Time  `json:"freeze_start_date"`
	FreezeEnd   time.Time  `json:"freeze_end_date"`
	NewExpiry   *time.Time `json:"new_expiry,omitempty"`
	Processed   bool       `json:"processed"`
}

type FreezeRepositoryInterface interface {
	FindAll(ctx context.Context) ([]MembershipFreeze, error)
}
