package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// ReminderJob is one pass of the renewal reminder. It returns how many reminders went out.
type ReminderJob interface {
	Run(ctx context.Context) (int, error)
}

type RenewalReminderWorker struct {
	job          ReminderJob
	tickInterval time.Duration
}

func NewRenewalReminderWorker(job ReminderJob, interval time.Duration) *RenewalReminderWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &RenewalReminderWorker{
		job:          job,
		tickInterval: interval,
	}
}

// Start runs the job immediately and then on every tick until ctx is cancelled.
func (w *RenewalReminderWorker) Start(ctx context.Context) {
	logrus.Infof("🕒 Renewal reminder worker started (every %s)", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			logrus.Info("⚠️ Renewal reminder worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *RenewalReminderWorker) runOnce(ctx context.Context) {
	sent, err := w.job.Run(ctx)
	if err != nil {
		logrus.Errorf("❌ Renewal reminder pass failed: %v", err)
		return
	}
	logrus.WithField("sent", sent).Debug("⏱️ Renewal reminder pass finished")
}
