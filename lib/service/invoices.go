package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/edupay/tuitionhub/common"
	"github.com/edupay/tuitionhub/db/models"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type CreateInvoiceParams struct {
	StudentID      int64
	GroupID        int64
	Amount         decimal.Decimal
	DiscountAmount decimal.Decimal
	DueDate        time.Time
	Description    string
}

func (svc *LedgerService) CreateInvoice(ctx context.Context, params CreateInvoiceParams) (*models.Invoice, error) {
	if !params.Amount.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be greater than 0", ErrValidation)
	}
	if params.DiscountAmount.IsNegative() {
		return nil, fmt.Errorf("%w: discount must not be negative", ErrValidation)
	}
	if params.DiscountAmount.GreaterThanOrEqual(params.Amount) {
		return nil, fmt.Errorf("%w: discount must be less than amount", ErrValidation)
	}

	student, err := svc.FindStudent(ctx, params.StudentID)
	if err != nil {
		return nil, err
	}
	if params.GroupID != 0 {
		if _, err := svc.FindGroup(ctx, params.GroupID); err != nil {
			return nil, err
		}
	}

	invoice := &models.Invoice{
		StudentID:      student.ID,
		GroupID:        params.GroupID,
		Amount:         params.Amount,
		DiscountAmount: params.DiscountAmount,
		DueDate:        params.DueDate,
		Description:    params.Description,
		IssuedAt:       time.Now(),
		IsActive:       true,
	}
	// first status engine run happens at birth, so a past-due invoice is
	// created as overdue, not pending
	invoice.Status = NextStatus(common.InvoiceStatusPending, decimal.Zero, invoice.FinalAmount(), invoice.DueDate, time.Now())

	_, err = svc.DB.NewInsert().Model(invoice).Exec(ctx)
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (svc *LedgerService) FindInvoice(ctx context.Context, invoiceID int64) (*models.Invoice, error) {
	var invoice models.Invoice

	err := svc.DB.NewSelect().
		Model(&invoice).
		Relation("Student").
		Relation("Payments", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("payment.is_active").Order("paid_at DESC")
		}).
		Where("invoice.id = ? AND invoice.is_active", invoiceID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: invoice %d", ErrNotFound, invoiceID)
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// listingLimit is the page size of the HTTP listing endpoints.
const listingLimit = 100

type InvoiceFilter struct {
	StudentID int64
	GroupID   int64
	Statuses  []string
	// DueBefore filters on due_date < the given day when set
	DueBefore time.Time
	// DueOn filters on due_date = the given day when set
	DueOn time.Time
	// Limit caps the result set for paginated listing endpoints. Zero means
	// no cap: the snapshot builder, the debtor report and the reminder
	// fan-out must see every qualifying invoice.
	Limit int
}

func (svc *LedgerService) InvoicesFor(ctx context.Context, filter InvoiceFilter) ([]models.Invoice, error) {
	var invoices []models.Invoice

	query := svc.DB.NewSelect().
		Model(&invoices).
		Relation("Payments", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("payment.is_active")
		}).
		Where("invoice.is_active")
	if filter.StudentID != 0 {
		query.Where("invoice.student_id = ?", filter.StudentID)
	}
	if filter.GroupID != 0 {
		query.Where("invoice.group_id = ?", filter.GroupID)
	}
	if len(filter.Statuses) > 0 {
		query.Where("invoice.status IN (?)", bun.In(filter.Statuses))
	}
	if !filter.DueBefore.IsZero() {
		query.Where("invoice.due_date < ?", filter.DueBefore.Format("2006-01-02"))
	}
	if !filter.DueOn.IsZero() {
		query.Where("invoice.due_date = ?", filter.DueOn.Format("2006-01-02"))
	}
	query.OrderExpr("issued_at DESC")
	if filter.Limit > 0 {
		query.Limit(filter.Limit)
	}
	err := query.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// PendingInvoices lists invoices still awaiting full settlement.
func (svc *LedgerService) PendingInvoices(ctx context.Context) ([]models.Invoice, error) {
	return svc.InvoicesFor(ctx, InvoiceFilter{
		Statuses: []string{common.InvoiceStatusPending, common.InvoiceStatusPartial},
		Limit:    listingLimit,
	})
}

// OverdueInvoices lists unsettled invoices past their due date.
func (svc *LedgerService) OverdueInvoices(ctx context.Context) ([]models.Invoice, error) {
	return svc.InvoicesFor(ctx, InvoiceFilter{
		Statuses:  unpaidStatuses(),
		DueBefore: time.Now(),
		Limit:     listingLimit,
	})
}

type UpdateInvoiceParams struct {
	GroupID     int64
	DueDate     time.Time
	Description string
}

// UpdateInvoice touches only the fields that do not affect the ledger math.
// Amounts and discounts are immutable once payments can exist against them.
func (svc *LedgerService) UpdateInvoice(ctx context.Context, invoiceID int64, params UpdateInvoiceParams) (*models.Invoice, error) {
	invoice, err := svc.FindInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == common.InvoiceStatusCancelled {
		return nil, fmt.Errorf("%w: invoice is cancelled", ErrValidation)
	}
	if params.GroupID != 0 {
		if _, err := svc.FindGroup(ctx, params.GroupID); err != nil {
			return nil, err
		}
		invoice.GroupID = params.GroupID
	}
	if !params.DueDate.IsZero() {
		invoice.DueDate = params.DueDate
	}
	if params.Description != "" {
		invoice.Description = params.Description
	}

	err = svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model(invoice).
			Column("group_id", "due_date", "description", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return err
		}
		// a moved due date can flip pending<->overdue
		return svc.refreshInvoiceStatus(ctx, tx, invoice, invoice.PaidAmount(), time.Now())
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// CancelInvoice puts the invoice in its terminal status. The status engine
// will not touch it afterwards.
func (svc *LedgerService) CancelInvoice(ctx context.Context, invoiceID int64) (*models.Invoice, error) {
	invoice, err := svc.FindInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == common.InvoiceStatusPaid {
		return nil, fmt.Errorf("%w: a paid invoice cannot be cancelled", ErrValidation)
	}
	invoice.Status = common.InvoiceStatusCancelled
	_, err = svc.DB.NewUpdate().
		Model(invoice).
		Column("status", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	svc.InvoicePubSub.Publish(common.TopicInvoiceStatus, *invoice)
	return invoice, nil
}

// DeleteInvoice soft-deletes; the row and its payments stay for audit.
func (svc *LedgerService) DeleteInvoice(ctx context.Context, invoiceID int64) error {
	invoice, err := svc.FindInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	invoice.IsActive = false
	_, err = svc.DB.NewUpdate().
		Model(invoice).
		Column("is_active", "updated_at").
		WherePK().
		Exec(ctx)
	return err
}

func unpaidStatuses() []string {
	return []string{
		common.InvoiceStatusPending,
		common.InvoiceStatusPartial,
		common.InvoiceStatusOverdue,
	}
}
