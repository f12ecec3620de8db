package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/xavierca1/coach-crm/internal/entity"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `
	id, COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(email, ''),
	COALESCE(phone, ''), COALESCE(role_id::text, ''), COALESCE(avatar_url, ''), created_at`

func scanUser(row scanner) (entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.RoleID, &u.AvatarURL, &u.CreatedAt)
	return u, err
}

func (r *UserRepository) FindAll(ctx context.Context) ([]entity.User, error) {
	return r.query(ctx, `SELECT`+userColumns+` FROM users`)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT`+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return &u, nil
}

func (r *UserRepository) FindByRoles(ctx context.Context, roleIDs []string) ([]entity.User, error) {
	if len(roleIDs) == 0 {
		return []entity.User{}, nil
	}
	return r.query(ctx, `SELECT`+userColumns+` FROM users WHERE role_id::text = ANY($1)`, pq.Array(roleIDs))
}

func (r *UserRepository) query(ctx context.Context, q string, args ...any) ([]entity.User, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []entity.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
