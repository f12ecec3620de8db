package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newReminderFixture(repos Repositories) (*RenewalReminderUseCase, *MockMailer) {
	mailer := new(MockMailer)
	uc := NewRenewalReminderUseCase(
		NewSnapshotLoader(repos, testRoles, time.Second),
		newTestBuilder(),
		mailer,
		newMemCache(),
		testRoles,
	)
	uc.Now = fixedNow
	return uc, mailer
}

// TestRenewalReminderSendsOncePerDay - the second run on the same day is deduplicated
func TestRenewalReminderSendsOncePerDay(t *testing.T) {
	uc, mailer := newReminderFixture(fullRepos(reportSnapshot()))
	mailer.On("SendRenewalReminder", "priya@example.com", "Priya Sharma", "Gold", onDay(time.October, 30), 11).Return(nil)

	sent, err := uc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	sent, err = uc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	mailer.AssertNumberOfCalls(t, "SendRenewalReminder", 1)

	// a new day sends again
	uc.Now = func() time.Time { return testNow.Add(24 * time.Hour) }
	sent, err = uc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestRenewalReminderMailFailureIsSkipped(t *testing.T) {
	uc, mailer := newReminderFixture(fullRepos(reportSnapshot()))
	mailer.On("SendRenewalReminder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp: 421")).Once()
	mailer.On("SendRenewalReminder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	sent, err := uc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)

	// the failed reminder is retried on the same day
	sent, err = uc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	mailer.AssertNumberOfCalls(t, "SendRenewalReminder", 2)
}

func TestRenewalReminderSkipsPlansOutsideTheWindow(t *testing.T) {
	snap := reportSnapshot()
	far := onDay(time.December, 31)
	snap.Payments[0].PlanExpiry = &far
	uc, mailer := newReminderFixture(fullRepos(snap))

	sent, err := uc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	mailer.AssertNotCalled(t, "SendRenewalReminder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRenewalReminderFetchFailure(t *testing.T) {
	repos := fullRepos(reportSnapshot())
	failing := new(MockPaymentRepository)
	failing.On("FindAll", mock.Anything).Return(nil, errors.New("db down"))
	repos.Payments = failing
	uc, _ := newReminderFixture(repos)

	_, err := uc.Run(context.Background())
	assert.True(t, IsRetryable(err))
}

func TestSystemActorHasFullScope(t *testing.T) {
	actor := SystemActor(testRoles)
	assert.True(t, ScopeFor(actor, testRoles, nil).All)
}
