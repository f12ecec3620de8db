package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/coach-crm/internal/entity"
)

// Snapshot is one consistent batch of fetched collections. Derivations never mutate it.
type Snapshot struct {
	Leads    []entity.Lead
	Users    []entity.User
	Payments []entity.Payment
	Events   []entity.StatusEvent
	Coaches  []entity.CoachAssignment
	Freezes  []entity.MembershipFreeze
}

// Scoped drops leads, payments and events outside scope. Payments without a lead are only
// kept for a full scope.
func (s Snapshot) Scoped(scope Scope) Snapshot {
	if scope.All {
		return s
	}
	out := s
	out.Leads = make([]entity.Lead, 0, len(s.Leads))
	for _, l := range s.Leads {
		if scope.Allows(l.ID) {
			out.Leads = append(out.Leads, l)
		}
	}
	out.Payments = make([]entity.Payment, 0, len(s.Payments))
	for _, p := range s.Payments {
		if p.LeadID != nil && scope.Allows(*p.LeadID) {
			out.Payments = append(out.Payments, p)
		}
	}
	out.Events = make([]entity.StatusEvent, 0, len(s.Events))
	for _, e := range s.Events {
		if scope.Allows(e.LeadID) {
			out.Events = append(out.Events, e)
		}
	}
	return out
}

type Need uint8

const (
	NeedLeads Need = 1 << iota
	NeedUsers
	NeedPayments
	NeedEvents
	NeedCoaches
	NeedFreezes

	NeedAll = NeedLeads | NeedUsers | NeedPayments | NeedEvents | NeedCoaches | NeedFreezes
)

func (n Need) has(flag Need) bool { return n&flag != 0 }

type Repositories struct {
	Leads       entity.LeadRepositoryInterface
	Users       entity.UserRepositoryInterface
	Payments    entity.PaymentRepositoryInterface
	Events      entity.StatusEventRepositoryInterface
	Coaches     entity.CoachAssignmentRepositoryInterface
	Freezes     entity.FreezeRepositoryInterface
	Assignments entity.AssignmentRepositoryInterface
}

// SnapshotLoader fetches the collections a view needs in parallel and fails the whole batch
// on the first error.
type SnapshotLoader struct {
	Repos   Repositories
	Scopes  *ScopeResolver
	Timeout time.Duration
}

func NewSnapshotLoader(repos Repositories, roles entity.RoleCatalog, timeout time.Duration) *SnapshotLoader {
	return &SnapshotLoader{
		Repos:   repos,
		Scopes:  NewScopeResolver(roles, repos.Assignments),
		Timeout: timeout,
	}
}

func (l *SnapshotLoader) Load(ctx context.Context, actor Actor, needs Need) (Snapshot, Scope, error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	scope, err := l.Scopes.Resolve(ctx, actor)
	if err != nil {
		return Snapshot{}, Scope{}, fetchError(ctx, "assignments", err)
	}
	if scope.IsEmpty() {
		return Snapshot{}, scope, nil
	}

	var snap Snapshot
	ids := scope.IDs()
	g, gctx := errgroup.WithContext(ctx)

	if needs.has(NeedLeads) {
		g.Go(func() (err error) {
			if scope.All {
				snap.Leads, err = l.Repos.Leads.FindAll(gctx)
			} else {
				snap.Leads, err = l.Repos.Leads.FindByIDs(gctx, ids)
			}
			return wrapFetch("leads", err)
		})
	}
	if needs.has(NeedUsers) {
		g.Go(func() (err error) {
			snap.Users, err = l.Repos.Users.FindAll(gctx)
			return wrapFetch("users", err)
		})
	}
	if needs.has(NeedPayments) {
		g.Go(func() (err error) {
			if scope.All {
				snap.Payments, err = l.Repos.Payments.FindAll(gctx)
			} else {
				snap.Payments, err = l.Repos.Payments.FindByLeadIDs(gctx, ids)
			}
			return wrapFetch("payments", err)
		})
	}
	if needs.has(NeedEvents) {
		g.Go(func() (err error) {
			if scope.All {
				snap.Events, err = l.Repos.Events.FindAll(gctx)
			} else {
				snap.Events, err = l.Repos.Events.FindByLeadIDs(gctx, ids)
			}
			return wrapFetch("status events", err)
		})
	}
	if needs.has(NeedCoaches) {
		g.Go(func() (err error) {
			snap.Coaches, err = l.Repos.Coaches.FindActive(gctx)
			return wrapFetch("coach assignments", err)
		})
	}
	if needs.has(NeedFreezes) {
		g.Go(func() (err error) {
			snap.Freezes, err = l.Repos.Freezes.FindAll(gctx)
			return wrapFetch("freezes", err)
		})
	}

	if err := g.Wait(); err != nil {
		logrus.WithFields(logrus.Fields{"actor": actor.UserID, "needs": needs}).
			Warnf("⚠️ [SNAPSHOT] batch discarded: %v", err)
		return Snapshot{}, Scope{}, fetchError(ctx, "", err)
	}

	return snap.Scoped(scope), scope, nil
}

type fetchFailure struct {
	what string
	err  error
}

func (f *fetchFailure) Error() string { return "fetch " + f.what + ": " + f.err.Error() }
func (f *fetchFailure) Unwrap() error { return f.err }

func wrapFetch(what string, err error) error {
	if err == nil {
		return nil
	}
	return &fetchFailure{what: what, err: err}
}

func fetchError(ctx context.Context, what string, err error) error {
	if IsTechnicalError(err) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TechnicalError{Code: CodeFetchTimeout, Message: "datastore did not answer in time", Retryable: true, Err: err}
	}
	msg := "failed to fetch data"
	if what != "" {
		msg = "failed to fetch " + what
	}
	return &TechnicalError{Code: CodeFetchFailed, Message: msg, Retryable: true, Err: err}
}
