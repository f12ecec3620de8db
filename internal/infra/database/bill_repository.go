package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/coach-crm/internal/entity"
)

type BillRepository struct {
	DB *sql.DB
}

func NewBillRepository(db *sql.DB) *BillRepository {
	return &BillRepository{DB: db}
}

func (r *BillRepository) Create(ctx context.Context, b *entity.Bill) error {
	var discountType *string
	var discountValue *float64
	if b.Discount != nil {
		t := string(b.Discount.Type)
		discountType, discountValue = &t, &b.Discount.Value
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO bills (
			id, bill_number, lead_id, user_id, package_name, description,
			base_amount, discount_type, discount_value, taxable, gst_rate, gst_number, place_of_supply,
			discount_amount, amount_after_discount, gst_amount, total_amount, paid_amount, balance,
			payment_status, payment_method, payment_comments, currency, status,
			due_date, follow_up_date, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24,
			$25, $26, $27
		)`,
		b.ID, b.BillNumber, b.LeadID, b.UserID, b.PackageName, nullString(b.Description),
		b.BaseAmount, discountType, discountValue, b.Taxable, b.TaxRatePercent, nullString(b.GSTNumber), nullString(b.PlaceOfSupply),
		b.DiscountAmount, b.AmountAfterDiscount, b.GSTAmount, b.TotalAmount, b.PaidAmount, b.Balance,
		b.PaymentStatus, nullString(b.PaymentMethod), nullString(b.Comments), b.Currency, b.Status,
		b.DueDate, b.FollowUpDate, b.CreatedAt,
	)
	if isUniqueViolation(err) {
		return entity.ErrDuplicateBillNumber
	}
	if err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}
	return nil
}

func (r *BillRepository) FindByLeadID(ctx context.Context, leadID string) ([]entity.Bill, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, bill_number, lead_id, user_id, package_name, COALESCE(description, ''),
			base_amount, discount_type, discount_value, taxable, gst_rate,
			COALESCE(gst_number, ''), COALESCE(place_of_supply, ''),
			discount_amount, amount_after_discount, gst_amount, total_amount, paid_amount, balance,
			payment_status, COALESCE(payment_method, ''), COALESCE(payment_comments, ''),
			COALESCE(currency, 'INR'), status, due_date, follow_up_date, created_at
		FROM bills
		WHERE lead_id = $1
		ORDER BY created_at DESC`, leadID)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}
	defer rows.Close()

	bills := []entity.Bill{}
	for rows.Next() {
		var b entity.Bill
		var discountType *string
		var discountValue *float64
		if err := rows.Scan(
			&b.ID, &b.BillNumber, &b.LeadID, &b.UserID, &b.PackageName, &b.Description,
			&b.BaseAmount, &discountType, &discountValue, &b.Taxable, &b.TaxRatePercent,
			&b.GSTNumber, &b.PlaceOfSupply,
			&b.DiscountAmount, &b.AmountAfterDiscount, &b.GSTAmount, &b.TotalAmount, &b.PaidAmount, &b.Balance,
			&b.PaymentStatus, &b.PaymentMethod, &b.Comments,
			&b.Currency, &b.Status, &b.DueDate, &b.FollowUpDate, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		if discountType != nil && discountValue != nil {
			b.Discount = &entity.Discount{Type: entity.DiscountType(*discountType), Value: *discountValue}
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}
