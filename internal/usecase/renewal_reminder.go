package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/coach-crm/internal/entity"
)

const reminderDedupeTTL = 24 * time.Hour

// SystemActor is used by background jobs. It always resolves to a full scope.
func SystemActor(roles entity.RoleCatalog) Actor {
	return Actor{UserID: "system", RoleID: roles.SuperAdmin, Name: "system"}
}

// RenewalReminderUseCase emails clients whose plan is in the "Renewal Due" window, at most
// once per lead per day.
type RenewalReminderUseCase struct {
	Loader  *SnapshotLoader
	Builder *ReportBuilder
	Mailer  RenewalMailer
	Dedupe  ReminderDedupe
	Actor   Actor
	Now     func() time.Time
}

func NewRenewalReminderUseCase(loader *SnapshotLoader, builder *ReportBuilder, mailer RenewalMailer, dedupe ReminderDedupe, roles entity.RoleCatalog) *RenewalReminderUseCase {
	return &RenewalReminderUseCase{
		Loader:  loader,
		Builder: builder,
		Mailer:  mailer,
		Dedupe:  dedupe,
		Actor:   SystemActor(roles),
		Now:     time.Now,
	}
}

// Run returns the number of reminders sent. A failed mail is logged and its dedupe key
// released, so the next run retries it.
func (uc *RenewalReminderUseCase) Run(ctx context.Context) (int, error) {
	snap, _, err := uc.Loader.Load(ctx, uc.Actor, NeedLeads|NeedUsers|NeedPayments|NeedCoaches)
	if err != nil {
		return 0, err
	}

	today := uc.Now().Format("2006-01-02")
	sent := 0
	for _, row := range uc.Builder.Expiry(snap) {
		if row.RenewalStatus != RenewalDue || row.Email == "" || row.ExpiryDate == nil {
			continue
		}

		log := logrus.WithFields(logrus.Fields{"lead_id": row.ID, "left_days": row.LeftDays})
		key := "reminder:" + row.ID + ":" + today
		first, err := uc.Dedupe.MarkOnce(ctx, key, reminderDedupeTTL)
		if err != nil {
			log.Warnf("⚠️ [REMINDER] dedupe check failed: %v", err)
			continue
		}
		if !first {
			continue
		}

		if err := uc.Mailer.SendRenewalReminder(row.Email, row.ClientName, row.Package, *row.ExpiryDate, row.LeftDays); err != nil {
			log.Errorf("❌ [REMINDER] email failed: %v", err)
			if err := uc.Dedupe.Forget(ctx, key); err != nil {
				log.Warnf("⚠️ [REMINDER] dedupe key not released: %v", err)
			}
			continue
		}
		sent++
	}

	if sent > 0 {
		logrus.Infof("✅ [REMINDER] %d renewal reminder(s) sent", sent)
	}
	return sent, nil
}
