package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/xavierca1/coach-crm/internal/entity"
)

var hundred = decimal.NewFromInt(100)

type BillInput struct {
	BaseAmount     float64          `json:"base_amount" validate:"gte=0"`
	Discount       *entity.Discount `json:"discount,omitempty" validate:"omitempty"`
	Taxable        bool             `json:"taxable"`
	TaxRatePercent float64          `json:"tax_rate_percent" validate:"gte=0,lte=100"`
	PaidAmount     float64          `json:"paid_amount" validate:"gte=0"`
}

type BillBreakdown struct {
	DiscountAmount      float64 `json:"discount_amount"`
	AmountAfterDiscount float64 `json:"amount_after_discount"`
	TaxAmount           float64 `json:"gst_amount"`
	Total               float64 `json:"total_amount"`
	PaidAmount          float64 `json:"paid_amount"`
	Balance             float64 `json:"balance"`
	PaymentStatus       string  `json:"payment_status"`
}

// ComputeBill keeps every intermediate value exact and rounds only the tax and the total
// to two decimals. Partially paid bills are "Partial".
func ComputeBill(in BillInput) BillBreakdown {
	base := decimal.NewFromFloat(in.BaseAmount)
	paid := decimal.NewFromFloat(in.PaidAmount)

	discount := decimal.Zero
	if in.Discount != nil {
		value := decimal.NewFromFloat(in.Discount.Value)
		if in.Discount.Type == entity.DiscountPercentage {
			discount = base.Mul(value).Div(hundred)
		} else {
			discount = value
		}
	}

	afterDiscount := base.Sub(discount)
	if afterDiscount.IsNegative() {
		afterDiscount = decimal.Zero
	}

	tax := decimal.Zero
	if in.Taxable {
		tax = afterDiscount.Mul(decimal.NewFromFloat(in.TaxRatePercent)).Div(hundred)
	}

	total := afterDiscount.Add(tax).Round(2)
	balance := total.Sub(paid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}

	return BillBreakdown{
		DiscountAmount:      discount.InexactFloat64(),
		AmountAfterDiscount: afterDiscount.InexactFloat64(),
		TaxAmount:           tax.Round(2).InexactFloat64(),
		Total:               total.InexactFloat64(),
		PaidAmount:          paid.InexactFloat64(),
		Balance:             balance.InexactFloat64(),
		PaymentStatus:       paymentStatus(paid, total),
	}
}

func paymentStatus(paid, total decimal.Decimal) string {
	switch {
	case paid.GreaterThanOrEqual(total):
		return entity.BillPaymentPaid
	case paid.IsPositive():
		return entity.BillPaymentPartial
	}
	return entity.BillPaymentPending
}
