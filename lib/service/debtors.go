package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DebtorRow is one line of the collections report: a student with unsettled
// invoices and the same aggregates the snapshot builder computes, plus the
// contacts the front office calls.
type DebtorRow struct {
	StudentID    int64           `json:"student_id"`
	StudentName  string          `json:"student_name"`
	StudentPhone string          `json:"student_phone"`
	ParentPhone  string          `json:"parent_phone"`
	TotalDebt    decimal.Decimal `json:"total_debt"`
	OverdueDebt  decimal.Decimal `json:"overdue_debt"`
	OverdueDays  int             `json:"overdue_days"`
	InvoiceCount int             `json:"invoice_count"`
}

// Debtors lists students with outstanding debt, ranked by total debt
// descending.
func (svc *LedgerService) Debtors(ctx context.Context) ([]DebtorRow, error) {
	students, err := svc.StudentsWithDebt(ctx)
	if err != nil {
		return nil, err
	}

	today := time.Now()
	rows := make([]DebtorRow, 0, len(students))
	for i := range students {
		student := &students[i]
		invoices, err := svc.InvoicesFor(ctx, InvoiceFilter{
			StudentID: student.ID,
			Statuses:  unpaidStatuses(),
		})
		if err != nil {
			return nil, err
		}

		row := DebtorRow{
			StudentID:    student.ID,
			StudentName:  student.FullName(),
			StudentPhone: student.Phone,
			TotalDebt:    decimal.Zero,
			OverdueDebt:  decimal.Zero,
			InvoiceCount: len(invoices),
		}
		if student.Profile != nil {
			row.ParentPhone = student.Profile.ParentPhone
		}
		for j := range invoices {
			remaining := invoices[j].RemainingAmount()
			row.TotalDebt = row.TotalDebt.Add(remaining)
			if invoices[j].IsOverdue(today) {
				row.OverdueDebt = row.OverdueDebt.Add(remaining)
				if days := invoices[j].DaysOverdue(today); days > row.OverdueDays {
					row.OverdueDays = days
				}
			}
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalDebt.GreaterThan(rows[j].TotalDebt)
	})
	return rows, nil
}
