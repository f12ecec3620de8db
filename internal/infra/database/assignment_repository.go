package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/coach-crm/internal/entity"
)

type AssignmentRepository struct {
	DB *sql.DB
}

func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

func (r *AssignmentRepository) FindActiveByUser(ctx context.Context, userID string) ([]entity.LeadAssignment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, lead_id, assigned_to, is_active, created_at
		FROM lead_assignments
		WHERE assigned_to = $1 AND is_active = true`, userID)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	out := []entity.LeadAssignment{}
	for rows.Next() {
		var a entity.LeadAssignment
		if err := rows.Scan(&a.ID, &a.LeadID, &a.AssignedTo, &a.Active, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AssignmentRepository) FindActiveByLead(ctx context.Context, leadID string) (*entity.LeadAssignment, error) {
	var a entity.LeadAssignment
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, lead_id, assigned_to, is_active, created_at
		FROM lead_assignments
		WHERE lead_id = $1 AND is_active = true
		ORDER BY created_at DESC
		LIMIT 1`, leadID).Scan(&a.ID, &a.LeadID, &a.AssignedTo, &a.Active, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find assignment of %s: %w", leadID, err)
	}
	return &a, nil
}

// Assign swaps the active assignee inside one database transaction.
func (r *AssignmentRepository) Assign(ctx context.Context, a *entity.LeadAssignment) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignment: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE lead_assignments SET is_active = false WHERE lead_id = $1 AND is_active = true`, a.LeadID); err != nil {
		return fmt.Errorf("deactivate assignment: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO lead_assignments (id, lead_id, assigned_to, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.LeadID, a.AssignedTo, a.Active, a.CreatedAt); err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return tx.Commit()
}
