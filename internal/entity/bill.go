package entity

import (
	"context"
	"errors"
	"time"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

const (
	BillPaymentPending = "Pending"
	BillPaymentPartial = "Partial"
	BillPaymentPaid    = "Paid"
)

var ErrDuplicateBillNumber = errors.New("bill number already exists")

type Discount struct {
	Type  DiscountType `json:"type" validate:"required,oneof=percentage fixed"`
	Value float64      `json:"value" validate:"gte=0"`
}

type Bill struct {
	ID                  string     `json:"id"`
	BillNumber          string     `json:"bill_number"`
	LeadID              string     `json:"lead_id"`
	UserID              *string    `json:"user_id,omitempty"`
	PackageName         string     `json:"package_name"`
	Description         string     `json:"description"`
	BaseAmount          float64    `json:"base_amount"`
	Discount            *Discount  `json:"discount,omitempty"`
	Taxable             bool       `json:"taxable"`
	TaxRatePercent      float64    `json:"gst_rate"`
	GSTNumber           string     `json:"gst_number,omitempty"`
	PlaceOfSupply       string     `json:"place_of_supply,omitempty"`
	DiscountAmount      float64    `json:"discount_amount"`
	AmountAfterDiscount float64    `json:"amount_after_discount"`
	GSTAmount           float64    `json:"gst_amount"`
	TotalAmount         float64    `json:"total_amount"`
	PaidAmount          float64    `json:"paid_amount"`
	Balance             float64    `json:"balance"`
	PaymentStatus       string     `json:"payment_status"`
	PaymentMethod       string     `json:"payment_method,omitempty"`
	Comments            string     `json:"payment_comments,omitempty"`
	Currency            string     `json:"currency"`
	Status              string     `json:"status"`
	DueDate             time.Time  `json:"due_date"`
	FollowUpDate        *time.Time `json:"follow_up_date,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

type BillRepositoryInterface interface {
	// Create returns ErrDuplicateBillNumber when the bill number is taken.
	Create(ctx context.Context, bill *Bill) error
	FindByLeadID(ctx context.Context, leadID string) ([]Bill, error)
}
