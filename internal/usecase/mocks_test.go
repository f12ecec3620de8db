package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/coach-crm/internal/entity"
	"github.com/xavierca1/coach-crm/internal/infra/queue"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func floatPtr(f float64) *float64 { return &f }

var testRoles = entity.DefaultRoleCatalog()

var (
	adminActor = Actor{UserID: "u-admin", RoleID: testRoles.Admin, Name: "Meera Admin"}
	execActor  = Actor{UserID: "u-exec", RoleID: testRoles.Executive, Name: "Rohit Exec"}
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindAll(ctx context.Context) ([]entity.Lead, error) {
	args := m.Called(ctx)
	leads, _ := args.Get(0).([]entity.Lead)
	return leads, args.Error(1)
}

func (m *MockLeadRepository) FindByIDs(ctx context.Context, ids []string) ([]entity.Lead, error) {
	args := m.Called(ctx, ids)
	leads, _ := args.Get(0).([]entity.Lead)
	return leads, args.Error(1)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	lead, _ := args.Get(0).(*entity.Lead)
	return lead, args.Error(1)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, id, status string, followUp *time.Time) error {
	return m.Called(ctx, id, status, followUp).Error(0)
}

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindAll(ctx context.Context) ([]entity.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]entity.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*entity.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) FindByRoles(ctx context.Context, roleIDs []string) ([]entity.User, error) {
	args := m.Called(ctx, roleIDs)
	users, _ := args.Get(0).([]entity.User)
	return users, args.Error(1)
}

// MockPaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindAll(ctx context.Context) ([]entity.Payment, error) {
	args := m.Called(ctx)
	payments, _ := args.Get(0).([]entity.Payment)
	return payments, args.Error(1)
}

func (m *MockPaymentRepository) FindByLeadIDs(ctx context.Context, leadIDs []string) ([]entity.Payment, error) {
	args := m.Called(ctx, leadIDs)
	payments, _ := args.Get(0).([]entity.Payment)
	return payments, args.Error(1)
}

// MockStatusEventRepository
type MockStatusEventRepository struct {
	mock.Mock
}

func (m *MockStatusEventRepository) FindAll(ctx context.Context) ([]entity.StatusEvent, error) {
	args := m.Called(ctx)
	events, _ := args.Get(0).([]entity.StatusEvent)
	return events, args.Error(1)
}

func (m *MockStatusEventRepository) FindByLeadIDs(ctx context.Context, leadIDs []string) ([]entity.StatusEvent, error) {
	args := m.Called(ctx, leadIDs)
	events, _ := args.Get(0).([]entity.StatusEvent)
	return events, args.Error(1)
}

func (m *MockStatusEventRepository) FindPrevious(ctx context.Context, leadID, excludeID string) (*entity.StatusEvent, error) {
	args := m.Called(ctx, leadID, excludeID)
	event, _ := args.Get(0).(*entity.StatusEvent)
	return event, args.Error(1)
}

func (m *MockStatusEventRepository) Create(ctx context.Context, event *entity.StatusEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockStatusEventRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockAssignmentRepository
type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) FindActiveByUser(ctx context.Context, userID string) ([]entity.LeadAssignment, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]entity.LeadAssignment)
	return out, args.Error(1)
}

func (m *MockAssignmentRepository) FindActiveByLead(ctx context.Context, leadID string) (*entity.LeadAssignment, error) {
	args := m.Called(ctx, leadID)
	out, _ := args.Get(0).(*entity.LeadAssignment)
	return out, args.Error(1)
}

func (m *MockAssignmentRepository) Assign(ctx context.Context, a *entity.LeadAssignment) error {
	return m.Called(ctx, a).Error(0)
}

// MockBillRepository
type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) Create(ctx context.Context, bill *entity.Bill) error {
	return m.Called(ctx, bill).Error(0)
}

func (m *MockBillRepository) FindByLeadID(ctx context.Context, leadID string) ([]entity.Bill, error) {
	args := m.Called(ctx, leadID)
	bills, _ := args.Get(0).([]entity.Bill)
	return bills, args.Error(1)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishLeadEvent(ctx context.Context, event queue.LeadEvent) error {
	return m.Called(ctx, event).Error(0)
}

// MockNotificationStore
type MockNotificationStore struct {
	mock.Mock
}

func (m *MockNotificationStore) Push(ctx context.Context, n entity.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationStore) List(ctx context.Context, userID string) ([]entity.Notification, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]entity.Notification)
	return out, args.Error(1)
}

func (m *MockNotificationStore) MarkRead(ctx context.Context, userID, notificationID string) error {
	return m.Called(ctx, userID, notificationID).Error(0)
}

func (m *MockNotificationStore) MarkAllRead(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockNotificationStore) Clear(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// MockMailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendRenewalReminder(to, clientName, packageName string, expiry time.Time, leftDays int) error {
	return m.Called(to, clientName, packageName, expiry, leftDays).Error(0)
}

// memCache is an in-memory SnapshotCache and ReminderDedupe that round-trips through JSON.
type memCache struct {
	mu    sync.Mutex
	data  map[string][]byte
	marks map[string]bool
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, marks: map[string]bool{}}
}

func (c *memCache) Save(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *memCache) Load(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	raw, ok := c.data[key]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memCache) MarkOnce(_ context.Context, key string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.marks[key] {
		return false, nil
	}
	c.marks[key] = true
	return true, nil
}

func (c *memCache) Forget(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.marks, key)
	return nil
}

// countingObserver records observer calls.
type countingObserver struct {
	mu       sync.Mutex
	stale    map[string]int
	reports  map[string]int
	notified map[string]int
	statuses map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{stale: map[string]int{}, reports: map[string]int{}, notified: map[string]int{}, statuses: map[string]int{}}
}

func (o *countingObserver) ObserveDerivation(string, time.Duration) {}

func (o *countingObserver) StaleDiscarded(view string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stale[view]++
}

func (o *countingObserver) ReportGenerated(kind string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reports[kind]++
}

func (o *countingObserver) NotificationDispatched(kind string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.notified[kind]++
}

func (o *countingObserver) StatusChanged(status string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses[status]++
}

// fullRepos returns repository mocks that answer every full-scope fetch with snap.
func fullRepos(snap Snapshot) Repositories {
	leads := new(MockLeadRepository)
	leads.On("FindAll", mock.Anything).Return(snap.Leads, nil)
	users := new(MockUserRepository)
	users.On("FindAll", mock.Anything).Return(snap.Users, nil)
	payments := new(MockPaymentRepository)
	payments.On("FindAll", mock.Anything).Return(snap.Payments, nil)
	events := new(MockStatusEventRepository)
	events.On("FindAll", mock.Anything).Return(snap.Events, nil)
	coaches := new(MockCoachRepository)
	coaches.On("FindActive", mock.Anything).Return(snap.Coaches, nil)
	freezes := new(MockFreezeRepository)
	freezes.On("FindAll", mock.Anything).Return(snap.Freezes, nil)

	return Repositories{
		Leads:       leads,
		Users:       users,
		Payments:    payments,
		Events:      events,
		Coaches:     coaches,
		Freezes:     freezes,
		Assignments: new(MockAssignmentRepository),
	}
}

// MockCoachRepository
type MockCoachRepository struct {
	mock.Mock
}

func (m *MockCoachRepository) FindActive(ctx context.Context) ([]entity.CoachAssignment, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]entity.CoachAssignment)
	return out, args.Error(1)
}

// MockFreezeRepository
type MockFreezeRepository struct {
	mock.Mock
}

func (m *MockFreezeRepository) FindAll(ctx context.Context) ([]entity.MembershipFreeze, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]entity.MembershipFreeze)
	return out, args.Error(1)
}
