package service

import (
	"context"
	"time"

	"github.com/edupay/tuitionhub/common"
	"github.com/edupay/tuitionhub/db/models"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type InvoiceStatistics struct {
	TotalInvoices   int             `json:"total_invoices"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	StatusBreakdown map[string]int  `json:"status_breakdown"`
	OverdueCount    int             `json:"overdue_count"`
	MonthlyInvoices int             `json:"monthly_invoices"`
	MonthlyAmount   decimal.Decimal `json:"monthly_amount"`
}

// Statistics summarizes the active invoice book for the dashboard.
func (svc *LedgerService) Statistics(ctx context.Context) (*InvoiceStatistics, error) {
	stats := &InvoiceStatistics{
		StatusBreakdown: map[string]int{},
		TotalAmount:     decimal.Zero,
		MonthlyAmount:   decimal.Zero,
	}

	count, err := svc.activeInvoiceQuery().Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalInvoices = count

	err = svc.activeInvoiceQuery().
		ColumnExpr("COALESCE(SUM(amount), 0)").
		Scan(ctx, &stats.TotalAmount)
	if err != nil {
		return nil, err
	}

	for _, status := range []string{
		common.InvoiceStatusPending,
		common.InvoiceStatusPartial,
		common.InvoiceStatusPaid,
		common.InvoiceStatusOverdue,
		common.InvoiceStatusCancelled,
	} {
		count, err := svc.activeInvoiceQuery().Where("status = ?", status).Count(ctx)
		if err != nil {
			return nil, err
		}
		stats.StatusBreakdown[status] = count
	}

	today := time.Now()
	stats.OverdueCount, err = svc.activeInvoiceQuery().
		Where("due_date < ?", today.Format("2006-01-02")).
		Where("status IN (?)", bun.In(unpaidStatuses())).
		Count(ctx)
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	stats.MonthlyInvoices, err = svc.activeInvoiceQuery().
		Where("issued_at >= ?", monthStart).
		Count(ctx)
	if err != nil {
		return nil, err
	}
	err = svc.activeInvoiceQuery().
		ColumnExpr("COALESCE(SUM(amount), 0)").
		Where("issued_at >= ?", monthStart).
		Scan(ctx, &stats.MonthlyAmount)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (svc *LedgerService) activeInvoiceQuery() *bun.SelectQuery {
	return svc.DB.NewSelect().
		Model((*models.Invoice)(nil)).
		Where("is_active")
}
