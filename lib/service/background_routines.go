package service

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
)

// StartDailyBatchRoutine runs the snapshot builder and the reminder fan-out
// once a day at the configured hour, until the context is cancelled. The
// snapshot upsert is idempotent, so a crashed run can simply be restarted.
func (svc *LedgerService) StartDailyBatchRoutine(ctx context.Context) error {
	for {
		timer := time.NewTimer(time.Until(svc.nextBatchTime(time.Now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		date := time.Now()
		if _, err := svc.CreateDailySnapshots(ctx, date); err != nil {
			svc.Logger.Errorf("Error running daily snapshots: %v", err)
			sentry.CaptureException(err)
		}
		if _, err := svc.SendPaymentReminders(ctx); err != nil {
			svc.Logger.Errorf("Error sending payment reminders: %v", err)
			sentry.CaptureException(err)
		}
		if _, err := svc.SendDebtNotifications(ctx); err != nil {
			svc.Logger.Errorf("Error sending debt notifications: %v", err)
			sentry.CaptureException(err)
		}
	}
}

func (svc *LedgerService) nextBatchTime(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), svc.Config.SnapshotHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
