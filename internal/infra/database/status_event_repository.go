package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/xavierca1/coach-crm/internal/entity"
)

type StatusEventRepository struct {
	DB *sql.DB
}

func NewStatusEventRepository(db *sql.DB) *StatusEventRepository {
	return &StatusEventRepository{DB: db}
}

const statusEventColumns = `
	id, lead_id, status, follow_up_date, expected_amount,
	COALESCE(note, ''), COALESCE(recorded_by, ''), created_at`

func scanStatusEvent(row scanner) (entity.StatusEvent, error) {
	var e entity.StatusEvent
	err := row.Scan(&e.ID, &e.LeadID, &e.Status, &e.FollowUpDate, &e.ExpectedAmount, &e.Note, &e.RecordedBy, &e.CreatedAt)
	return e, err
}

func (r *StatusEventRepository) FindAll(ctx context.Context) ([]entity.StatusEvent, error) {
	return r.query(ctx, `SELECT`+statusEventColumns+` FROM lead_status ORDER BY created_at DESC`)
}

func (r *StatusEventRepository) FindByLeadIDs(ctx context.Context, leadIDs []string) ([]entity.StatusEvent, error) {
	if len(leadIDs) == 0 {
		return []entity.StatusEvent{}, nil
	}
	return r.query(ctx, `SELECT`+statusEventColumns+` FROM lead_status WHERE lead_id::text = ANY($1) ORDER BY created_at DESC`, pq.Array(leadIDs))
}

func (r *StatusEventRepository) FindPrevious(ctx context.Context, leadID, excludeID string) (*entity.StatusEvent, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT`+statusEventColumns+`
		FROM lead_status
		WHERE lead_id = $1 AND id <> $2
		ORDER BY created_at DESC
		LIMIT 1`, leadID, excludeID)

	e, err := scanStatusEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find previous status of %s: %w", leadID, err)
	}
	return &e, nil
}

func (r *StatusEventRepository) Create(ctx context.Context, e *entity.StatusEvent) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO lead_status (id, lead_id, status, follow_up_date, expected_amount, note, recorded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.LeadID, e.Status, e.FollowUpDate, e.ExpectedAmount, nullString(e.Note), nullString(e.RecordedBy), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert status event: %w", err)
	}
	return nil
}

func (r *StatusEventRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM lead_status WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete status event: %w", err)
	}
	return nil
}

func (r *StatusEventRepository) query(ctx context.Context, q string, args ...any) ([]entity.StatusEvent, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query status events: %w", err)
	}
	defer rows.Close()

	events := []entity.StatusEvent{}
	for rows.Next() {
		e, err := scanStatusEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan status event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
