package entity

import (
	"context"
	"time"
)

const (
	NotificationNewLead      = "new_lead"
	NotificationStatusChange = "status_change"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	LeadID    string    `json:"lead_id,omitempty"`
	LeadName  string    `json:"lead_name,omitempty"`
	OldStatus string    `json:"old_status,omitempty"`
	NewStatus string    `json:"new_status,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationStore keeps a bounded, newest-first feed per user.
type NotificationStore interface {
	Push(ctx context.Context, n Notification) error
	List(ctx context.Context, userID string) ([]Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Clear(ctx context.Context, userID string) error
}
