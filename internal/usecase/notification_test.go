package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/coach-crm/internal/entity"
	"github.com/xavierca1/coach-crm/internal/infra/queue"
)

type notificationFixture struct {
	store       *MockNotificationStore
	users       *MockUserRepository
	assignments *MockAssignmentRepository
	events      *MockStatusEventRepository
	observer    *countingObserver
	uc          *NotificationUseCase
	pushed      []entity.Notification
}

func newNotificationFixture(pageSize int) *notificationFixture {
	f := &notificationFixture{
		store:       new(MockNotificationStore),
		users:       new(MockUserRepository),
		assignments: new(MockAssignmentRepository),
		events:      new(MockStatusEventRepository),
		observer:    newCountingObserver(),
	}
	f.uc = NewNotificationUseCase(f.store, f.users, f.assignments, f.events, testRoles, pageSize, f.observer)
	f.uc.Now = fixedNow
	return f
}

func (f *notificationFixture) capturePushes() {
	f.store.On("Push", mock.Anything, mock.AnythingOfType("entity.Notification")).
		Run(func(args mock.Arguments) { f.pushed = append(f.pushed, args.Get(1).(entity.Notification)) }).
		Return(nil)
}

func (f *notificationFixture) managers(ids ...string) {
	users := make([]entity.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, entity.User{ID: id})
	}
	f.users.On("FindByRoles", mock.Anything, testRoles.FullAccessRoles()).Return(users, nil)
}

func recipients(ns []entity.Notification) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.UserID)
	}
	return out
}

func TestDispatchNewLead(t *testing.T) {
	f := newNotificationFixture(0)
	f.managers("u-admin", "u-manager")
	f.capturePushes()

	require.NoError(t, f.uc.HandleLeadEvent(context.Background(), queue.LeadEvent{
		Type:     queue.EventNewLead,
		LeadID:   "l1",
		LeadName: "Priya",
	}))

	assert.Equal(t, []string{"u-admin", "u-manager"}, recipients(f.pushed))
	n := f.pushed[0]
	assert.Equal(t, entity.NotificationNewLead, n.Type)
	assert.Equal(t, "New Lead Created", n.Title)
	assert.Equal(t, `A new lead "Priya" has been added to the system.`, n.Message)
	assert.Equal(t, testNow, n.CreatedAt)
	assert.False(t, n.IsRead)
	assert.NotEqual(t, f.pushed[0].ID, f.pushed[1].ID)
	assert.Equal(t, 2, f.observer.notified[entity.NotificationNewLead])
}

// TestDispatchStatusChangeIncludesAssignee - managers plus the assigned executive, old status from history
func TestDispatchStatusChangeIncludesAssignee(t *testing.T) {
	f := newNotificationFixture(0)
	f.managers("u-admin")
	f.capturePushes()
	f.events.On("FindPrevious", mock.Anything, "l1", "e2").Return(&entity.StatusEvent{ID: "e1", Status: "New"}, nil)
	f.assignments.On("FindActiveByLead", mock.Anything, "l1").Return(&entity.LeadAssignment{AssignedTo: "u-exec"}, nil)

	require.NoError(t, f.uc.HandleLeadEvent(context.Background(), queue.LeadEvent{
		Type:      queue.EventStatusChange,
		LeadID:    "l1",
		LeadName:  "Priya",
		EventID:   "e2",
		NewStatus: "Hot",
	}))

	assert.Equal(t, []string{"u-admin", "u-exec"}, recipients(f.pushed))
	n := f.pushed[1]
	assert.Equal(t, entity.NotificationStatusChange, n.Type)
	assert.Equal(t, "New", n.OldStatus)
	assert.Equal(t, "Hot", n.NewStatus)
	assert.Equal(t, `Lead "Priya" status changed from "New" to "Hot".`, n.Message)
}

func TestDispatchStatusChangeFirstStatusAndDedupe(t *testing.T) {
	f := newNotificationFixture(0)
	f.managers("u-admin", "u-admin")
	f.capturePushes()
	f.events.On("FindPrevious", mock.Anything, "l1", "e1").Return(nil, nil)
	f.assignments.On("FindActiveByLead", mock.Anything, "l1").Return(&entity.LeadAssignment{AssignedTo: "u-admin"}, nil)

	require.NoError(t, f.uc.DispatchStatusChange(context.Background(), "l1", "Priya", "e1", "Hot"))

	require.Len(t, f.pushed, 1)
	assert.Equal(t, "None", f.pushed[0].OldStatus)
}

func TestDispatchStatusChangeUnassignedLead(t *testing.T) {
	f := newNotificationFixture(0)
	f.managers("u-admin")
	f.capturePushes()
	f.events.On("FindPrevious", mock.Anything, "l1", "e1").Return(nil, nil)
	f.assignments.On("FindActiveByLead", mock.Anything, "l1").Return(nil, nil)

	require.NoError(t, f.uc.DispatchStatusChange(context.Background(), "l1", "Priya", "e1", "Hot"))
	assert.Equal(t, []string{"u-admin"}, recipients(f.pushed))
}

func TestDispatchFailures(t *testing.T) {
	t.Run("recipient lookup", func(t *testing.T) {
		f := newNotificationFixture(0)
		f.users.On("FindByRoles", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

		err := f.uc.DispatchNewLead(context.Background(), "l1", "Priya")
		assert.ErrorContains(t, err, "failed to load recipients")
	})

	t.Run("store push", func(t *testing.T) {
		f := newNotificationFixture(0)
		f.managers("u-admin")
		f.store.On("Push", mock.Anything, mock.Anything).Return(errors.New("redis down"))

		err := f.uc.DispatchNewLead(context.Background(), "l1", "Priya")
		assert.ErrorContains(t, err, "u-admin")
		assert.Zero(t, f.observer.notified[entity.NotificationNewLead])
	})

	t.Run("unknown event type is dropped", func(t *testing.T) {
		f := newNotificationFixture(0)
		assert.NoError(t, f.uc.HandleLeadEvent(context.Background(), queue.LeadEvent{Type: "lead_deleted"}))
		f.store.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
	})
}

func TestNotificationFeed(t *testing.T) {
	f := newNotificationFixture(2)
	f.store.On("List", mock.Anything, "u-admin").Return([]entity.Notification{
		{ID: "n3"},
		{ID: "n2", IsRead: true},
		{ID: "n1"},
	}, nil)

	feed, err := f.uc.Feed(context.Background(), "u-admin")
	require.NoError(t, err)
	require.Len(t, feed.Items, 2)
	assert.Equal(t, "n3", feed.Items[0].ID)
	// unread counts the whole feed, not the page
	assert.Equal(t, 2, feed.UnreadCount)
}

func TestNotificationFeedEmpty(t *testing.T) {
	f := newNotificationFixture(0)
	f.store.On("List", mock.Anything, "u-admin").Return(nil, nil)

	feed, err := f.uc.Feed(context.Background(), "u-admin")
	require.NoError(t, err)
	assert.NotNil(t, feed.Items)
	assert.Empty(t, feed.Items)
	assert.Equal(t, DefaultNotificationPageSize, f.uc.PageSize)
}

func TestNotificationMutations(t *testing.T) {
	f := newNotificationFixture(0)
	f.store.On("MarkRead", mock.Anything, "u-admin", "n1").Return(nil)
	f.store.On("MarkAllRead", mock.Anything, "u-admin").Return(errors.New("redis down"))
	f.store.On("Clear", mock.Anything, "u-admin").Return(nil)

	assert.NoError(t, f.uc.MarkRead(context.Background(), "u-admin", "n1"))
	assert.NoError(t, f.uc.Clear(context.Background(), "u-admin"))

	err := f.uc.MarkAllRead(context.Background(), "u-admin")
	var te *TechnicalError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, CodePersistFailed, te.Code)
}
