package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingJob struct {
	calls atomic.Int32
	err   error
}

func (j *countingJob) Run(context.Context) (int, error) {
	j.calls.Add(1)
	return 1, j.err
}

func TestRenewalReminderWorkerRunsUntilCancelled(t *testing.T) {
	job := &countingJob{}
	w := NewRenewalReminderWorker(job, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return job.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestRenewalReminderWorkerSurvivesJobErrors(t *testing.T) {
	job := &countingJob{err: errors.New("datastore down")}
	w := NewRenewalReminderWorker(job, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	assert.Eventually(t, func() bool { return job.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestNewRenewalReminderWorkerDefaultsInterval(t *testing.T) {
	w := NewRenewalReminderWorker(&countingJob{}, 0)
	assert.Equal(t, time.Hour, w.tickInterval)
}
