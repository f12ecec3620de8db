package usecase

import (
	"time"

	"github.com/xavierca1/coach-crm/internal/entity"
)

type DashboardFilter struct {
	Status   []string
	Source   []string
	Region   []string
	Priority []string
	Range    DateRange
}

type DashboardOutput struct {
	TotalLeads  int          `json:"total_leads"`
	Cards       []StatusCard `json:"cards"`
	Buckets     Buckets      `json:"buckets"`
	Funnel      Funnel       `json:"funnel"`
	Metrics     Metrics      `json:"metrics"`
	Collection  Collection   `json:"collection"`
	Regions     []string     `json:"regions"`
	Sources     []string     `json:"sources"`
	GeneratedAt time.Time    `json:"generated_at"`
	Stale       bool         `json:"stale"`
}

type LeadQuery struct {
	Search    string
	Status    []string
	Source    []string
	Region    []string
	Priority  []string
	Counselor []string
	Range     DateRange
	Sort      SortState
	Page      int
	Size      int
}

// LeadView is a lead as listed: its latest pipeline status and derived region attached.
type LeadView struct {
	entity.Lead
	CurrentStatus string `json:"current_status"`
	Region        string `json:"region"`
}

type StatusChangeOutput struct {
	Event          entity.StatusEvent `json:"event"`
	PreviousStatus string             `json:"previous_status"`
}

type NotificationFeed struct {
	Items       []entity.Notification `json:"items"`
	UnreadCount int                   `json:"unread_count"`
}

type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}
