package entity

import (
	"context"
	"time"
)

type PaymentKind string

const (
	PaymentKindLink   PaymentKind = "link"
	PaymentKindManual PaymentKind = "manual"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
)

const (
	BillTypeNew     = "new"
	BillTypeRenewal = "renewal"
	BillTypeUpsell  = "upsell"
)

// Payment is the normalized shape of the payment_links and manual_payment rows.
type Payment struct {
	ID          string      `json:"id"`
	Kind        PaymentKind `json:"kind"`
	UserID      *string     `json:"user_id,omitempty"`
	LeadID      *string     `json:"lead_id,omitempty"`
	Amount      float64     `json:"amount"`
	Status      string      `json:"status"`
	Plan        string      `json:"plan,omitempty"`
	BillType    string      `json:"bill_type,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	PaymentDate *time.Time  `json:"payment_date,omitempty"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	ExpiresAt   *time.Time  `json:"expires_at,omitempty"`
	PlanExpiry  *time.Time  `json:"plan_expiry,omitempty"`
}

func (p Payment) IsCompleted() bool { return p.Status == PaymentStatusCompleted }

func (p Payment) IsPending() bool { return p.Status == PaymentStatusPending }

// EffectiveDate is the payment date, or the creation time when the payment was never dated.
func (p Payment) EffectiveDate() time.Time {
	if p.PaymentDate != nil {
		return *p.PaymentDate
	}
	return p.CreatedAt
}

type PaymentRepositoryInterface interface {
	FindAll(ctx context.Context) ([]Payment, error)
	FindByLeadIDs(ctx context.Context, leadIDs []string) ([]Payment, error)
}
