package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/coach-crm/internal/entity"
)

func sampleBill() *entity.Bill {
	return &entity.Bill{
		ID:             "b1",
		BillNumber:     "BILL-00000001-AB12",
		LeadID:         "l1",
		PackageName:    "Gold",
		BaseAmount:     10000,
		Discount:       &entity.Discount{Type: entity.DiscountPercentage, Value: 10},
		Taxable:        true,
		TaxRatePercent: 5,
		TotalAmount:    9450,
		Balance:        9450,
		PaymentStatus:  entity.BillPaymentPending,
		Currency:       "INR",
		Status:         "Generated",
		DueDate:        time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:      time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
	}
}

func TestBillRepositoryCreate(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bills`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewBillRepository(db).Create(context.Background(), sampleBill()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBillRepositoryCreateDuplicateNumber(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bills`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "bills_bill_number_key"})

	err := NewBillRepository(db).Create(context.Background(), sampleBill())
	assert.ErrorIs(t, err, entity.ErrDuplicateBillNumber)
}

func TestBillRepositoryFindByLeadIDRestoresDiscount(t *testing.T) {
	db, mock := newMock(t)
	b := sampleBill()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM bills`)).
		WithArgs("l1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "bill_number", "lead_id", "user_id", "package_name", "description",
			"base_amount", "discount_type", "discount_value", "taxable", "gst_rate",
			"gst_number", "place_of_supply",
			"discount_amount", "amount_after_discount", "gst_amount", "total_amount", "paid_amount", "balance",
			"payment_status", "payment_method", "payment_comments",
			"currency", "status", "due_date", "follow_up_date", "created_at",
		}).AddRow(
			b.ID, b.BillNumber, b.LeadID, nil, b.PackageName, "",
			b.BaseAmount, "percentage", 10.0, true, 5.0,
			"", "",
			1000.0, 9000.0, 450.0, 9450.0, 0.0, 9450.0,
			"Pending", "", "",
			"INR", "Generated", b.DueDate, nil, b.CreatedAt,
		))

	bills, err := NewBillRepository(db).FindByLeadID(context.Background(), "l1")
	require.NoError(t, err)
	require.Len(t, bills, 1)
	require.NotNil(t, bills[0].Discount)
	assert.Equal(t, entity.DiscountPercentage, bills[0].Discount.Type)
	assert.Equal(t, 9450.0, bills[0].TotalAmount)
	assert.Nil(t, bills[0].UserID)
}
