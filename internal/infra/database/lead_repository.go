package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/xavierca1/coach-crm/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	id, COALESCE(name, ''), COALESCE(email, ''), COALESCE(phone, ''), COALESCE(city, ''),
	COALESCE(profession, ''), COALESCE(status, 'New'), source, counselor,
	COALESCE(priority, ''), COALESCE(lead_score, 0), COALESCE(notes, ''),
	follow_up_date, last_activity_at, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanLead(row scanner) (entity.Lead, error) {
	var l entity.Lead
	err := row.Scan(
		&l.ID, &l.Name, &l.Email, &l.Phone, &l.City,
		&l.Profession, &l.Status, &l.Source, &l.Counselor,
		&l.Priority, &l.LeadScore, &l.Notes,
		&l.FollowUpDate, &l.LastActivityAt, &l.CreatedAt,
	)
	return l, err
}

func (r *LeadRepository) FindAll(ctx context.Context) ([]entity.Lead, error) {
	return r.query(ctx, `SELECT`+leadColumns+` FROM leads ORDER BY created_at DESC`)
}

func (r *LeadRepository) FindByIDs(ctx context.Context, ids []string) ([]entity.Lead, error) {
	if len(ids) == 0 {
		return []entity.Lead{}, nil
	}
	return r.query(ctx, `SELECT`+leadColumns+` FROM leads WHERE id::text = ANY($1) ORDER BY created_at DESC`, pq.Array(ids))
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT`+leadColumns+` FROM leads WHERE id = $1`, id)
	l, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find lead %s: %w", id, err)
	}
	return &l, nil
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id, status string, followUp *time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE leads
		SET status = $2,
			follow_up_date = COALESCE($3, follow_up_date),
			last_activity_at = NOW()
		WHERE id = $1`,
		id, status, followUp,
	)
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update lead status: lead %s not found", id)
	}
	return nil
}

func (r *LeadRepository) query(ctx context.Context, q string, args ...any) ([]entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	leads := []entity.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}
