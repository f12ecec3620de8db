package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/coach-crm/internal/entity"
	"github.com/xavierca1/coach-crm/internal/infra/queue"
)

type RecordStatusChangeUseCase struct {
	Leads     entity.LeadRepositoryInterface
	Events    entity.StatusEventRepositoryInterface
	Scopes    *ScopeResolver
	Validator *InputValidator
	Publisher LeadEventPublisher
	Observer  Observer
	Now       func() time.Time
}

func NewRecordStatusChangeUseCase(
	leads entity.LeadRepositoryInterface,
	events entity.StatusEventRepositoryInterface,
	scopes *ScopeResolver,
	validator *InputValidator,
	publisher LeadEventPublisher,
	obs Observer,
) *RecordStatusChangeUseCase {
	return &RecordStatusChangeUseCase{
		Leads:     leads,
		Events:    events,
		Scopes:    scopes,
		Validator: validator,
		Publisher: publisher,
		Observer:  observerOrNop(obs),
		Now:       time.Now,
	}
}

// Execute appends a status event and mirrors it on the lead. The event is removed again
// if the lead update fails.
func (uc *RecordStatusChangeUseCase) Execute(ctx context.Context, actor Actor, in StatusChangeInput) (*StatusChangeOutput, error) {
	if errs := uc.Validator.ValidateStatusChange(in); len(errs) > 0 {
		return nil, errs
	}
	in.Status = uc.Validator.vocab.Canonical(in.Status)

	lead, err := uc.Leads.FindByID(ctx, in.LeadID)
	if err != nil {
		return nil, &TechnicalError{Code: CodeFetchFailed, Message: "failed to load lead", Retryable: true, Err: err}
	}
	if lead == nil {
		return nil, &DomainError{Code: CodeLeadNotFound, Message: "lead not found: " + in.LeadID}
	}

	scope, err := uc.Scopes.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := requireVisible(scope, lead.ID); err != nil {
		return nil, err
	}

	event := &entity.StatusEvent{
		ID:             uuid.New().String(),
		LeadID:         lead.ID,
		Status:         in.Status,
		FollowUpDate:   in.FollowUpDate,
		ExpectedAmount: in.ExpectedAmount,
		Note:           in.Note,
		RecordedBy:     actor.UserID,
		CreatedAt:      uc.Now(),
	}

	tx := NewTransaction("record_status_change")
	tx.AddOperation("append status event", func(ctx context.Context) error {
		return uc.Events.Create(ctx, event)
	})
	tx.AddCompensation("delete status event", func(ctx context.Context) error {
		return uc.Events.Delete(ctx, event.ID)
	})
	tx.AddOperation("update lead status", func(ctx context.Context) error {
		return uc.Leads.UpdateStatus(ctx, lead.ID, event.Status, event.FollowUpDate)
	})

	if err := tx.Execute(ctx); err != nil {
		return nil, &TechnicalError{Code: CodePersistFailed, Message: "failed to record status change", Retryable: true, Err: err}
	}
	uc.Observer.StatusChanged(event.Status)

	log := logrus.WithFields(logrus.Fields{"lead_id": lead.ID, "status": event.Status, "actor": actor.UserID})
	log.Info("✅ [STATUS] status change recorded")

	if uc.Publisher != nil {
		err := uc.Publisher.PublishLeadEvent(ctx, queue.LeadEvent{
			Type:       queue.EventStatusChange,
			LeadID:     lead.ID,
			LeadName:   lead.Name,
			EventID:    event.ID,
			NewStatus:  event.Status,
			ActorID:    actor.UserID,
			OccurredAt: event.CreatedAt,
		})
		if err != nil {
			log.Warnf("⚠️ [STATUS] notification event not published: %v", err)
		}
	}

	return &StatusChangeOutput{Event: *event, PreviousStatus: lead.Status}, nil
}
