package usecase

import (
	"context"
	"io"
	"time"

	"github.com/xavierca1/coach-crm/internal/infra/queue"
)

type LeadEventPublisher interface {
	PublishLeadEvent(ctx context.Context, event queue.LeadEvent) error
}

// SnapshotCache keeps the last good derived view per key, JSON encoded.
type SnapshotCache interface {
	Save(ctx context.Context, key string, value any, ttl time.Duration) error
	// Load reports false when nothing is cached under key.
	Load(ctx context.Context, key string, dst any) (bool, error)
}

// ReminderDedupe remembers keys for ttl. MarkOnce returns false if key was already marked;
// Forget releases a key so a later run can claim it again.
type ReminderDedupe interface {
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, key string) error
}

type RenewalMailer interface {
	SendRenewalReminder(to, clientName, packageName string, expiry time.Time, leftDays int) error
}

// ReportWriter serializes report rows in one file format.
type ReportWriter interface {
	Write(w io.Writer, title string, columns []string, rows [][]any) error
	Extension() string
	ContentType() string
}

// Observer receives derivation and workflow measurements.
type Observer interface {
	ObserveDerivation(view string, elapsed time.Duration)
	StaleDiscarded(view string)
	ReportGenerated(kind string)
	NotificationDispatched(kind string)
	StatusChanged(status string)
}

type nopObserver struct{}

func (nopObserver) ObserveDerivation(string, time.Duration) {}
func (nopObserver) StaleDiscarded(string)                   {}
func (nopObserver) ReportGenerated(string)                  {}
func (nopObserver) NotificationDispatched(string)           {}
func (nopObserver) StatusChanged(string)                    {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
