package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/edupay/tuitionhub/common"
	"github.com/edupay/tuitionhub/db/models"
	"github.com/labstack/gommon/random"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

type AddPaymentParams struct {
	InvoiceID     int64
	PaidAmount    decimal.Decimal
	Method        string
	Note          string
	ReceiptNumber string
}

// AddPayment admits a payment against an invoice and refreshes the invoice
// status in the same transaction, so the invoice is never observed with a
// stale status after the payment commits.
//
// The remaining-amount check is a classic check-then-act: it is evaluated
// under a FOR UPDATE NOWAIT row lock on the invoice, and the DB-level
// check_invoice_balance trigger backstops it at commit time. Lock
// contention surfaces as ErrConcurrencyConflict, which is retryable.
func (svc *LedgerService) AddPayment(ctx context.Context, params AddPaymentParams) (*models.Payment, error) {
	if !params.PaidAmount.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be greater than 0", ErrValidation)
	}
	if !validMethod(params.Method) {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, params.Method)
	}

	payment := &models.Payment{
		InvoiceID:     params.InvoiceID,
		PaidAmount:    params.PaidAmount,
		PaidAt:        time.Now(),
		Method:        params.Method,
		Note:          params.Note,
		ReceiptNumber: params.ReceiptNumber,
		IsActive:      true,
	}
	if payment.ReceiptNumber == "" {
		payment.ReceiptNumber = random.String(10, random.Uppercase, random.Numeric)
	}

	var invoice models.Invoice
	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(&invoice).
			Where("invoice.id = ? AND invoice.is_active", params.InvoiceID).
			For("UPDATE NOWAIT").
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: invoice %d", ErrNotFound, params.InvoiceID)
		}
		if err != nil {
			return translatePgError(err)
		}
		if invoice.Status == common.InvoiceStatusCancelled {
			return fmt.Errorf("%w: invoice is cancelled", ErrValidation)
		}

		paid, err := svc.activePaymentTotal(ctx, tx, invoice.ID)
		if err != nil {
			return err
		}
		remaining := invoice.FinalAmount().Sub(paid)
		if params.PaidAmount.GreaterThan(remaining) {
			return fmt.Errorf("%w: payment exceeds remaining balance of %s", ErrValidation, remaining.StringFixed(2))
		}

		if _, err := tx.NewInsert().Model(payment).Exec(ctx); err != nil {
			return translatePgError(err)
		}

		return svc.refreshInvoiceStatus(ctx, tx, &invoice, paid.Add(params.PaidAmount), time.Now())
	})
	if err != nil {
		return nil, err
	}

	svc.InvoicePubSub.Publish(common.TopicInvoiceStatus, invoice)
	return payment, nil
}

// DeletePayment soft-deletes a payment and re-runs the status engine on the
// parent invoice before the transaction commits.
func (svc *LedgerService) DeletePayment(ctx context.Context, paymentID int64) error {
	var invoice models.Invoice
	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var payment models.Payment
		err := tx.NewSelect().
			Model(&payment).
			Where("payment.id = ? AND payment.is_active", paymentID).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: payment %d", ErrNotFound, paymentID)
		}
		if err != nil {
			return err
		}

		err = tx.NewSelect().
			Model(&invoice).
			Where("invoice.id = ?", payment.InvoiceID).
			For("UPDATE NOWAIT").
			Limit(1).
			Scan(ctx)
		if err != nil {
			return translatePgError(err)
		}

		payment.IsActive = false
		if _, err := tx.NewUpdate().
			Model(&payment).
			Column("is_active", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return translatePgError(err)
		}

		paid, err := svc.activePaymentTotal(ctx, tx, invoice.ID)
		if err != nil {
			return err
		}
		return svc.refreshInvoiceStatus(ctx, tx, &invoice, paid, time.Now())
	})
	if err != nil {
		return err
	}

	svc.InvoicePubSub.Publish(common.TopicInvoiceStatus, invoice)
	return nil
}

func (svc *LedgerService) PaymentsFor(ctx context.Context, invoiceID int64) ([]models.Payment, error) {
	payments := []models.Payment{}
	err := svc.DB.NewSelect().
		Model(&payments).
		Where("invoice_id = ? AND is_active", invoiceID).
		Order("paid_at DESC").
		Scan(ctx)
	return payments, err
}

func (svc *LedgerService) activePaymentTotal(ctx context.Context, tx bun.Tx, invoiceID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.NewSelect().
		Table("payments").
		ColumnExpr("COALESCE(SUM(paid_amount), 0)").
		Where("invoice_id = ? AND is_active", invoiceID).
		Scan(ctx, &total)
	return total, err
}

func validMethod(method string) bool {
	switch method {
	case common.PaymentMethodCash, common.PaymentMethodCard,
		common.PaymentMethodTransfer, common.PaymentMethodOnline:
		return true
	}
	return false
}

// translatePgError maps row-lock contention and the balance trigger's
// exception to the retryable conflict error.
func translatePgError(err error) error {
	var pgErr pgdriver.Error
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Field('C') {
	case "55P03", "40001": // lock_not_available, serialization_failure
		return fmt.Errorf("%w: %s", ErrConcurrencyConflict, pgErr.Field('M'))
	case "P0001":
		if strings.Contains(pgErr.Field('M'), "payments exceed invoice balance") {
			return fmt.Errorf("%w: %s", ErrConcurrencyConflict, pgErr.Field('M'))
		}
	}
	return err
}
