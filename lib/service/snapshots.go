package service

import (
	"context"
	"time"

	"github.com/edupay/tuitionhub/db/models"
	"github.com/getsentry/sentry-go"
	"github.com/shopspring/decimal"
)

// CreateSnapshot aggregates a student's outstanding and overdue debt across
// all active unsettled invoices into the (date, student) snapshot row.
// Overdue math uses the snapshot date, not wall-clock today, so re-running a
// past date is reproducible. The write is an upsert, which makes the whole
// operation idempotent.
func (svc *LedgerService) CreateSnapshot(ctx context.Context, studentID int64, date time.Time) (*models.DebtSnapshot, error) {
	student, err := svc.FindStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	invoices, err := svc.InvoicesFor(ctx, InvoiceFilter{
		StudentID: student.ID,
		Statuses:  unpaidStatuses(),
	})
	if err != nil {
		return nil, err
	}

	totalDebt := decimal.Zero
	overdueDebt := decimal.Zero
	maxOverdueDays := 0
	for i := range invoices {
		remaining := invoices[i].RemainingAmount()
		totalDebt = totalDebt.Add(remaining)

		if invoices[i].IsOverdue(date) {
			overdueDebt = overdueDebt.Add(remaining)
			if days := invoices[i].DaysOverdue(date); days > maxOverdueDays {
				maxOverdueDays = days
			}
		}
	}

	snapshot := &models.DebtSnapshot{
		SnapshotDate: date,
		StudentID:    student.ID,
		TotalDebt:    totalDebt,
		OverdueDebt:  overdueDebt,
		OverdueDays:  maxOverdueDays,
	}
	_, err = svc.DB.NewInsert().
		Model(snapshot).
		On("CONFLICT (snapshot_date, student_id) DO UPDATE").
		Set("total_debt = EXCLUDED.total_debt").
		Set("overdue_debt = EXCLUDED.overdue_debt").
		Set("overdue_days = EXCLUDED.overdue_days").
		Set("updated_at = now()").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

type SnapshotBatchResult struct {
	Date      time.Time             `json:"date"`
	Succeeded int                   `json:"succeeded"`
	Failed    int                   `json:"failed"`
	Snapshots []models.DebtSnapshot `json:"-"`
}

// CreateDailySnapshots snapshots every student with at least one qualifying
// invoice. One student failing is logged and skipped; the batch never aborts.
func (svc *LedgerService) CreateDailySnapshots(ctx context.Context, date time.Time) (*SnapshotBatchResult, error) {
	students, err := svc.StudentsWithDebt(ctx)
	if err != nil {
		return nil, err
	}

	result := &SnapshotBatchResult{Date: date}
	for _, student := range students {
		snapshot, err := svc.CreateSnapshot(ctx, student.ID, date)
		if err != nil {
			svc.Logger.Errorf("Error creating snapshot: student_id:%v date:%s error: %v", student.ID, date.Format("2006-01-02"), err)
			sentry.CaptureException(err)
			result.Failed++
			continue
		}
		result.Succeeded++
		result.Snapshots = append(result.Snapshots, *snapshot)
	}
	svc.Logger.Infof("Debt snapshot batch done: date:%s succeeded:%d failed:%d", date.Format("2006-01-02"), result.Succeeded, result.Failed)
	return result, nil
}

type SnapshotFilter struct {
	StudentID int64
	Date      time.Time
}

func (svc *LedgerService) SnapshotsFor(ctx context.Context, filter SnapshotFilter) ([]models.DebtSnapshot, error) {
	snapshots := []models.DebtSnapshot{}

	query := svc.DB.NewSelect().Model(&snapshots)
	if filter.StudentID != 0 {
		query.Where("student_id = ?", filter.StudentID)
	}
	if !filter.Date.IsZero() {
		query.Where("snapshot_date = ?", filter.Date.Format("2006-01-02"))
	}
	query.OrderExpr("snapshot_date DESC, student_id ASC").Limit(100)
	err := query.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}
