package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/coach-crm/internal/entity"
	"github.com/xavierca1/coach-crm/internal/infra/queue"
)

const DefaultNotificationPageSize = 20

// NotificationUseCase routes lead events to recipients and serves their feeds.
type NotificationUseCase struct {
	Store       entity.NotificationStore
	Users       entity.UserRepositoryInterface
	Assignments entity.AssignmentRepositoryInterface
	Events      entity.StatusEventRepositoryInterface
	Roles       entity.RoleCatalog
	PageSize    int
	Observer    Observer
	Now         func() time.Time
}

func NewNotificationUseCase(
	store entity.NotificationStore,
	users entity.UserRepositoryInterface,
	assignments entity.AssignmentRepositoryInterface,
	events entity.StatusEventRepositoryInterface,
	roles entity.RoleCatalog,
	pageSize int,
	obs Observer,
) *NotificationUseCase {
	if pageSize <= 0 {
		pageSize = DefaultNotificationPageSize
	}
	return &NotificationUseCase{
		Store:       store,
		Users:       users,
		Assignments: assignments,
		Events:      events,
		Roles:       roles,
		PageSize:    pageSize,
		Observer:    observerOrNop(obs),
		Now:         time.Now,
	}
}

// HandleLeadEvent is called by the queue worker for every lead event.
func (uc *NotificationUseCase) HandleLeadEvent(ctx context.Context, event queue.LeadEvent) error {
	switch event.Type {
	case queue.EventNewLead:
		return uc.DispatchNewLead(ctx, event.LeadID, event.LeadName)
	case queue.EventStatusChange:
		return uc.DispatchStatusChange(ctx, event.LeadID, event.LeadName, event.EventID, event.NewStatus)
	}
	logrus.WithField("type", event.Type).Warn("⚠️ [NOTIFY] unknown event type, ignoring")
	return nil
}

// DispatchNewLead notifies every full-access user.
func (uc *NotificationUseCase) DispatchNewLead(ctx context.Context, leadID, leadName string) error {
	recipients, err := uc.Users.FindByRoles(ctx, uc.Roles.FullAccessRoles())
	if err != nil {
		return fmt.Errorf("failed to load recipients: %w", err)
	}

	ids := make([]string, 0, len(recipients))
	for _, u := range recipients {
		ids = append(ids, u.ID)
	}

	return uc.push(ctx, ids, entity.Notification{
		Type:     entity.NotificationNewLead,
		Title:    "New Lead Created",
		Message:  fmt.Sprintf("A new lead %q has been added to the system.", leadName),
		LeadID:   leadID,
		LeadName: leadName,
	})
}

// DispatchStatusChange notifies full-access users and the executive the lead is assigned to.
// The old status is read from the event recorded before eventID.
func (uc *NotificationUseCase) DispatchStatusChange(ctx context.Context, leadID, leadName, eventID, newStatus string) error {
	oldStatus := "None"
	prev, err := uc.Events.FindPrevious(ctx, leadID, eventID)
	if err != nil {
		return fmt.Errorf("failed to load previous status: %w", err)
	}
	if prev != nil && prev.Status != "" {
		oldStatus = prev.Status
	}

	recipients, err := uc.Users.FindByRoles(ctx, uc.Roles.FullAccessRoles())
	if err != nil {
		return fmt.Errorf("failed to load recipients: %w", err)
	}
	ids := make([]string, 0, len(recipients)+1)
	seen := make(map[string]bool, len(recipients)+1)
	for _, u := range recipients {
		if !seen[u.ID] {
			seen[u.ID] = true
			ids = append(ids, u.ID)
		}
	}

	assignment, err := uc.Assignments.FindActiveByLead(ctx, leadID)
	if err != nil {
		return fmt.Errorf("failed to load assignment: %w", err)
	}
	if assignment != nil && !seen[assignment.AssignedTo] {
		ids = append(ids, assignment.AssignedTo)
	}

	return uc.push(ctx, ids, entity.Notification{
		Type:      entity.NotificationStatusChange,
		Title:     "Lead Status Changed",
		Message:   fmt.Sprintf("Lead %q status changed from %q to %q.", leadName, oldStatus, newStatus),
		LeadID:    leadID,
		LeadName:  leadName,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	})
}

func (uc *NotificationUseCase) push(ctx context.Context, userIDs []string, tmpl entity.Notification) error {
	now := uc.Now()
	for _, id := range userIDs {
		n := tmpl
		n.ID = uuid.New().String()
		n.UserID = id
		n.CreatedAt = now
		if err := uc.Store.Push(ctx, n); err != nil {
			return fmt.Errorf("failed to store notification for %s: %w", id, err)
		}
		uc.Observer.NotificationDispatched(n.Type)
	}

	logrus.WithFields(logrus.Fields{"type": tmpl.Type, "lead_id": tmpl.LeadID, "recipients": len(userIDs)}).
		Info("🔔 [NOTIFY] notifications dispatched")
	return nil
}

// Feed returns the newest PageSize notifications and the unread count over the whole feed.
func (uc *NotificationUseCase) Feed(ctx context.Context, userID string) (*NotificationFeed, error) {
	all, err := uc.Store.List(ctx, userID)
	if err != nil {
		return nil, &TechnicalError{Code: CodeFetchFailed, Message: "failed to load notifications", Retryable: true, Err: err}
	}

	unread := 0
	for _, n := range all {
		if !n.IsRead {
			unread++
		}
	}
	if len(all) > uc.PageSize {
		all = all[:uc.PageSize]
	}
	if all == nil {
		all = []entity.Notification{}
	}
	return &NotificationFeed{Items: all, UnreadCount: unread}, nil
}

func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := uc.Store.MarkRead(ctx, userID, notificationID); err != nil {
		return &TechnicalError{Code: CodePersistFailed, Message: "failed to mark notification read", Retryable: true, Err: err}
	}
	return nil
}

func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, userID string) error {
	if err := uc.Store.MarkAllRead(ctx, userID); err != nil {
		return &TechnicalError{Code: CodePersistFailed, Message: "failed to mark notifications read", Retryable: true, Err: err}
	}
	return nil
}

func (uc *NotificationUseCase) Clear(ctx context.Context, userID string) error {
	if err := uc.Store.Clear(ctx, userID); err != nil {
		return &TechnicalError{Code: CodePersistFailed, Message: "failed to clear notifications", Retryable: true, Err: err}
	}
	return nil
}
