package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/xavierca1/coach-crm/internal/entity"
)

// Actor is the authenticated user issuing a request.
type Actor struct {
	UserID string
	RoleID string
	Name   string
	Email  string
}

// Scope is the set of leads an actor may see. All bypasses the set.
type Scope struct {
	All     bool
	LeadIDs map[string]struct{}
}

func FullScope() Scope { return Scope{All: true} }

func NewScope(leadIDs ...string) Scope {
	s := Scope{LeadIDs: make(map[string]struct{}, len(leadIDs))}
	for _, id := range leadIDs {
		s.LeadIDs[id] = struct{}{}
	}
	return s
}

func (s Scope) Allows(leadID string) bool {
	if s.All {
		return true
	}
	_, ok := s.LeadIDs[leadID]
	return ok
}

func (s Scope) IsEmpty() bool {
	return !s.All && len(s.LeadIDs) == 0
}

// IDs returns the lead ids of a restricted scope, nil for a full one.
func (s Scope) IDs() []string {
	if s.All {
		return nil
	}
	ids := make([]string, 0, len(s.LeadIDs))
	for id := range s.LeadIDs {
		ids = append(ids, id)
	}
	return ids
}

// ScopeFor grants full access to full-access roles. Everyone else, unrecognized roles
// included, sees only their active assignments.
func ScopeFor(actor Actor, roles entity.RoleCatalog, assignments []entity.LeadAssignment) Scope {
	if roles.IsFullAccess(actor.RoleID) {
		return FullScope()
	}
	s := NewScope()
	for _, a := range assignments {
		if a.Active && a.AssignedTo == actor.UserID {
			s.LeadIDs[a.LeadID] = struct{}{}
		}
	}
	return s
}

type ScopeResolver struct {
	Roles       entity.RoleCatalog
	Assignments entity.AssignmentRepositoryInterface
}

func NewScopeResolver(roles entity.RoleCatalog, assignments entity.AssignmentRepositoryInterface) *ScopeResolver {
	return &ScopeResolver{Roles: roles, Assignments: assignments}
}

func (r *ScopeResolver) Resolve(ctx context.Context, actor Actor) (Scope, error) {
	if r.Roles.IsFullAccess(actor.RoleID) {
		return FullScope(), nil
	}
	assignments, err := r.Assignments.FindActiveByUser(ctx, actor.UserID)
	if err != nil {
		return Scope{}, &TechnicalError{Code: CodeFetchFailed, Message: "failed to load lead assignments", Retryable: true, Err: err}
	}
	return ScopeFor(actor, r.Roles, assignments), nil
}

// ResolveUserForLead matches by case-insensitive email first, then by exact phone.
func ResolveUserForLead(lead entity.Lead, users []entity.User) *entity.User {
	if email := strings.TrimSpace(lead.Email); email != "" {
		for i := range users {
			if strings.EqualFold(strings.TrimSpace(users[i].Email), email) {
				return &users[i]
			}
		}
	}
	if phone := strings.TrimSpace(lead.Phone); phone != "" {
		for i := range users {
			if strings.TrimSpace(users[i].Phone) == phone {
				return &users[i]
			}
		}
	}
	return nil
}

// ResolveLeadForUser is the reverse join used by the freezing report.
func ResolveLeadForUser(user entity.User, leads []entity.Lead) *entity.Lead {
	if email := strings.TrimSpace(user.Email); email != "" {
		for i := range leads {
			if strings.EqualFold(strings.TrimSpace(leads[i].Email), email) {
				return &leads[i]
			}
		}
	}
	if phone := strings.TrimSpace(user.Phone); phone != "" {
		for i := range leads {
			if strings.TrimSpace(leads[i].Phone) == phone {
				return &leads[i]
			}
		}
	}
	return nil
}

func requireVisible(scope Scope, leadID string) error {
	if !scope.Allows(leadID) {
		return &DomainError{Code: CodeForbidden, Message: fmt.Sprintf("lead %s is not assigned to you", leadID)}
	}
	return nil
}
