package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/coach-crm/internal/entity"
)

// AssignLeadUseCase hands a lead to one executive. Only full-access roles may assign.
type AssignLeadUseCase struct {
	Leads       entity.LeadRepositoryInterface
	Users       entity.UserRepositoryInterface
	Assignments entity.AssignmentRepositoryInterface
	Roles       entity.RoleCatalog
	Validator   *InputValidator
	Now         func() time.Time
}

func NewAssignLeadUseCase(
	leads entity.LeadRepositoryInterface,
	users entity.UserRepositoryInterface,
	assignments entity.AssignmentRepositoryInterface,
	roles entity.RoleCatalog,
	validator *InputValidator,
) *AssignLeadUseCase {
	return &AssignLeadUseCase{
		Leads:       leads,
		Users:       users,
		Assignments: assignments,
		Roles:       roles,
		Validator:   validator,
		Now:         time.Now,
	}
}

func (uc *AssignLeadUseCase) Execute(ctx context.Context, actor Actor, in AssignLeadInput) (*entity.LeadAssignment, error) {
	if errs := uc.Validator.ValidateAssignment(in); len(errs) > 0 {
		return nil, errs
	}
	if !uc.Roles.IsFullAccess(actor.RoleID) {
		return nil, &DomainError{Code: CodeForbidden, Message: "only managers can assign leads"}
	}

	lead, err := uc.Leads.FindByID(ctx, in.LeadID)
	if err != nil {
		return nil, &TechnicalError{Code: CodeFetchFailed, Message: "failed to load lead", Retryable: true, Err: err}
	}
	if lead == nil {
		return nil, &DomainError{Code: CodeLeadNotFound, Message: "lead not found: " + in.LeadID}
	}

	assignee, err := uc.Users.FindByID(ctx, in.AssignedTo)
	if err != nil {
		return nil, &TechnicalError{Code: CodeFetchFailed, Message: "failed to load user", Retryable: true, Err: err}
	}
	if assignee == nil {
		return nil, &DomainError{Code: CodeUserNotFound, Message: "user not found: " + in.AssignedTo}
	}

	assignment := &entity.LeadAssignment{
		ID:         uuid.New().String(),
		LeadID:     lead.ID,
		AssignedTo: assignee.ID,
		Active:     true,
		CreatedAt:  uc.Now(),
	}
	if err := uc.Assignments.Assign(ctx, assignment); err != nil {
		return nil, &TechnicalError{Code: CodePersistFailed, Message: "failed to assign lead", Retryable: true, Err: err}
	}

	logrus.WithFields(logrus.Fields{"lead_id": lead.ID, "assigned_to": assignee.ID, "actor": actor.UserID}).
		Info("✅ [ASSIGN] lead assigned")
	return assignment, nil
}
