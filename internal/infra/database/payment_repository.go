package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/xavierca1/coach-crm/internal/entity"
)

// PaymentRepository reads payment_links and manual_payment as one normalized collection.
type PaymentRepository struct {
	DB *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

const paymentUnion = `
	SELECT id, 'link' AS kind, user_id, lead_id, COALESCE(amount, 0), COALESCE(status, ''),
		COALESCE(plan, ''), COALESCE(bill_type, ''), created_at, payment_date,
		NULL::timestamptz AS due_date, expires_at, plan_expiry
	FROM payment_links
	UNION ALL
	SELECT id, 'manual' AS kind, user_id, lead_id, COALESCE(amount, 0), COALESCE(status, ''),
		COALESCE(plan, ''), COALESCE(bill_type, ''), created_at, payment_date,
		due_date, NULL::timestamptz AS expires_at, plan_expiry
	FROM manual_payment`

func (r *PaymentRepository) FindAll(ctx context.Context) ([]entity.Payment, error) {
	return r.query(ctx, `SELECT * FROM (`+paymentUnion+`) p ORDER BY created_at DESC`)
}

func (r *PaymentRepository) FindByLeadIDs(ctx context.Context, leadIDs []string) ([]entity.Payment, error) {
	if len(leadIDs) == 0 {
		return []entity.Payment{}, nil
	}
	return r.query(ctx, `SELECT * FROM (`+paymentUnion+`) p WHERE lead_id::text = ANY($1) ORDER BY created_at DESC`, pq.Array(leadIDs))
}

func (r *PaymentRepository) query(ctx context.Context, q string, args ...any) ([]entity.Payment, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	payments := []entity.Payment{}
	for rows.Next() {
		var p entity.Payment
		var kind string
		if err := rows.Scan(
			&p.ID, &kind, &p.UserID, &p.LeadID, &p.Amount, &p.Status,
			&p.Plan, &p.BillType, &p.CreatedAt, &p.PaymentDate,
			&p.DueDate, &p.ExpiresAt, &p.PlanExpiry,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Kind = entity.PaymentKind(kind)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
