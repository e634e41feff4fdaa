package service

import (
	"context"
	"time"

	"github.com/edupay/tuitionhub/common"
	"github.com/edupay/tuitionhub/db/models"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// NextStatus derives an invoice status from the payment facts. The status
// column is only ever a cache of this function's result.
//
// cancelled is terminal: it is set by an explicit cancellation and must never
// be resurrected by a recomputation.
func NextStatus(current string, paid, final decimal.Decimal, dueDate, today time.Time) string {
	if current == common.InvoiceStatusCancelled {
		return current
	}
	switch {
	case paid.GreaterThanOrEqual(final):
		return common.InvoiceStatusPaid
	case paid.GreaterThan(decimal.Zero):
		return common.InvoiceStatusPartial
	case beforeDay(dueDate, today):
		return common.InvoiceStatusOverdue
	default:
		return common.InvoiceStatusPending
	}
}

// refreshInvoiceStatus recomputes and persists the status inside the caller's
// transaction. paid must be the active-payment total as of this transaction.
// Only the status column is written, so no payment-side logic re-triggers.
func (svc *LedgerService) refreshInvoiceStatus(ctx context.Context, tx bun.Tx, invoice *models.Invoice, paid decimal.Decimal, today time.Time) error {
	next := NextStatus(invoice.Status, paid, invoice.FinalAmount(), invoice.DueDate, today)
	if next == invoice.Status {
		return nil
	}
	invoice.Status = next
	_, err := tx.NewUpdate().
		Model(invoice).
		Column("status", "updated_at").
		WherePK().
		Exec(ctx)
	return err
}

func beforeDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC).
		Before(time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC))
}
