package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/coach-crm/internal/entity"
)

func TestPaymentRepositoryFindAllTagsKind(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)
	due := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM payment_links`)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "kind", "user_id", "lead_id", "amount", "status", "plan", "bill_type",
			"created_at", "payment_date", "due_date", "expires_at", "plan_expiry",
		}).
			AddRow("p1", "link", "u1", "l1", 4999.0, "completed", "Gold", "new", created, created, nil, nil, nil).
			AddRow("p2", "manual", nil, "l2", 1200.0, "pending", "", "renewal", created, nil, due, nil, nil))

	payments, err := NewPaymentRepository(db).FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, payments, 2)

	assert.Equal(t, entity.PaymentKindLink, payments[0].Kind)
	assert.True(t, payments[0].IsCompleted())
	assert.Equal(t, entity.PaymentKindManual, payments[1].Kind)
	assert.Nil(t, payments[1].UserID)
	require.NotNil(t, payments[1].DueDate)
	assert.Equal(t, due, *payments[1].DueDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
