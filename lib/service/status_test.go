package service

import (
	"testing"
	"time"

	"github.com/edupay/tuitionhub/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var (
	today     = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	tomorrow  = today.AddDate(0, 0, 1)
	yesterday = today.AddDate(0, 0, -1)
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNextStatusNoPaymentsBeforeDueDate(t *testing.T) {
	status := NextStatus(common.InvoiceStatusPending, decimal.Zero, dec("500000"), tomorrow, today)
	assert.Equal(t, common.InvoiceStatusPending, status)
}

func TestNextStatusNoPaymentsDueToday(t *testing.T) {
	// due today is not yet overdue
	status := NextStatus(common.InvoiceStatusPending, decimal.Zero, dec("500000"), today, today)
	assert.Equal(t, common.InvoiceStatusPending, status)
}

func TestNextStatusNoPaymentsPastDueDate(t *testing.T) {
	status := NextStatus(common.InvoiceStatusPending, decimal.Zero, dec("500000"), yesterday, today)
	assert.Equal(t, common.InvoiceStatusOverdue, status)
}

func TestNextStatusPartialPayment(t *testing.T) {
	status := NextStatus(common.InvoiceStatusPending, dec("200000"), dec("500000"), tomorrow, today)
	assert.Equal(t, common.InvoiceStatusPartial, status)
}

func TestNextStatusPartialPaymentPastDueDate(t *testing.T) {
	// a partial payment wins over overdue
	status := NextStatus(common.InvoiceStatusOverdue, dec("200000"), dec("500000"), yesterday, today)
	assert.Equal(t, common.InvoiceStatusPartial, status)
}

func TestNextStatusFullPayment(t *testing.T) {
	status := NextStatus(common.InvoiceStatusPartial, dec("500000"), dec("500000"), yesterday, today)
	assert.Equal(t, common.InvoiceStatusPaid, status)
}

func TestNextStatusPaidStaysPaidPastDueDate(t *testing.T) {
	status := NextStatus(common.InvoiceStatusPaid, dec("500000"), dec("500000"), yesterday, today)
	assert.Equal(t, common.InvoiceStatusPaid, status)
}

func TestNextStatusCancelledIsTerminal(t *testing.T) {
	// a cancelled invoice is never resurrected, whatever the ledger says
	status := NextStatus(common.InvoiceStatusCancelled, decimal.Zero, dec("500000"), yesterday, today)
	assert.Equal(t, common.InvoiceStatusCancelled, status)

	status = NextStatus(common.InvoiceStatusCancelled, dec("500000"), dec("500000"), tomorrow, today)
	assert.Equal(t, common.InvoiceStatusCancelled, status)
}

func TestNextStatusAgainstFinalAmountNotGross(t *testing.T) {
	// 500000 gross with a 100000 discount settles at 400000
	status := NextStatus(common.InvoiceStatusPartial, dec("400000"), dec("400000"), tomorrow, today)
	assert.Equal(t, common.InvoiceStatusPaid, status)
}

func TestNextStatusCrossingMidnight(t *testing.T) {
	dueDate := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	lateEvening := time.Date(2024, 6, 9, 23, 59, 0, 0, time.UTC)
	pastMidnight := time.Date(2024, 6, 10, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, common.InvoiceStatusPending, NextStatus(common.InvoiceStatusPending, decimal.Zero, dec("500000"), dueDate, lateEvening))
	assert.Equal(t, common.InvoiceStatusOverdue, NextStatus(common.InvoiceStatusPending, decimal.Zero, dec("500000"), dueDate, pastMidnight))
}
