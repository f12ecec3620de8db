package entity

import (
	"context"
	"strings"
	"time"
)

type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	RoleID    string    `json:"role_id"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type UserRepositoryInterface interface {
	FindAll(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByRoles(ctx context.Context, roleIDs []string) ([]User, error)
}

// RoleCatalog holds the role identifiers of the deployment. It is loaded from configuration.
type RoleCatalog struct {
	SuperAdmin   string
	Admin        string
	SalesManager string
	Executive    string
	Client       string
}

func DefaultRoleCatalog() RoleCatalog {
	return RoleCatalog{
		SuperAdmin:   "b00060fe-175a-459b-8f72-957055ee8c55",
		Admin:        "46e786df-0272-4f22-aec2-56d2a517fa9d",
		SalesManager: "11b93954-9a56-4ea5-a02c-15b731ee9dfb",
		Executive:    "1fe1759c-dc14-4933-947a-c240c046bcde",
	}
}

func (c RoleCatalog) IsExecutive(roleID string) bool {
	return roleID != "" && roleID == c.Executive
}

// IsFullAccess reports whether the role bypasses assignment scoping.
func (c RoleCatalog) IsFullAccess(roleID string) bool {
	if roleID == "" {
		return false
	}
	return roleID == c.SuperAdmin || roleID == c.Admin || roleID == c.SalesManager
}

func (c RoleCatalog) FullAccessRoles() []string {
	return []string{c.SuperAdmin, c.Admin, c.SalesManager}
}

func (c RoleCatalog) Name(roleID string) string {
	switch {
	case roleID == "":
		return "unknown"
	case roleID == c.SuperAdmin:
		return "superadmin"
	case roleID == c.Admin:
		return "admin"
	case roleID == c.SalesManager:
		return "sales-manager"
	case roleID == c.Executive:
		return "executive"
	case roleID == c.Client:
		return "client"
	}
	return "unknown"
}
