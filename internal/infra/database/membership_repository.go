package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/coach-crm/internal/entity"
)

type CoachAssignmentRepository struct {
	DB *sql.DB
}

func NewCoachAssignmentRepository(db *sql.DB) *CoachAssignmentRepository {
	return &CoachAssignmentRepository{DB: db}
}

func (r *CoachAssignmentRepository) FindActive(ctx context.Context) ([]entity.CoachAssignment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT client_id, coach_id, COALESCE(status, '')
		FROM client_coach_relationships
		WHERE status = 'active'`)
	if err != nil {
		return nil, fmt.Errorf("query coach relationships: %w", err)
	}
	defer rows.Close()

	out := []entity.CoachAssignment{}
	for rows.Next() {
		var c entity.CoachAssignment
		if err := rows.Scan(&c.ClientID, &c.CoachID, &c.Status); err != nil {
			return nil, fmt.Errorf("scan coach relationship: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type FreezeRepository struct {
	DB *sql.DB
}

func NewFreezeRepository(db *sql.DB) *FreezeRepository {
	return &FreezeRepository{DB: db}
}

func (r *FreezeRepository) FindAll(ctx context.Context) ([]entity.MembershipFreeze, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, COALESCE(plan_type, ''), freeze_start_date, freeze_end_date,
			new_expiry, COALESCE(processed, false)
		FROM membership_freezes
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query freezes: %w", err)
	}
	defer rows.Close()

	out := []entity.MembershipFreeze{}
	for rows.Next() {
		var f entity.MembershipFreeze
		if err := rows.Scan(&f.ID, &f.UserID, &f.PlanType, &f.FreezeStart, &f.FreezeEnd, &f.NewExpiry, &f.Processed); err != nil {
			return nil, fmt.Errorf("scan freeze: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
