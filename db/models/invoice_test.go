package models

import (
	"testing"
	"time"

	"github.com/edupay/tuitionhub/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFinalAmount(t *testing.T) {
	invoice := &Invoice{
		Amount:         amount("500000"),
		DiscountAmount: amount("50000"),
	}
	assert.True(t, amount("450000").Equal(invoice.FinalAmount()))
}

func TestPaidAmountIgnoresInactivePayments(t *testing.T) {
	invoice := &Invoice{
		Amount: amount("500000"),
		Payments: []Payment{
			{PaidAmount: amount("200000"), IsActive: true},
			{PaidAmount: amount("100000"), IsActive: false},
			{PaidAmount: amount("50000"), IsActive: true},
		},
	}
	assert.True(t, amount("250000").Equal(invoice.PaidAmount()))
	assert.True(t, amount("250000").Equal(invoice.RemainingAmount()))
}

func TestRemainingAmountWithDiscount(t *testing.T) {
	invoice := &Invoice{
		Amount:         amount("500000"),
		DiscountAmount: amount("100000"),
		Payments: []Payment{
			{PaidAmount: amount("400000"), IsActive: true},
		},
	}
	assert.True(t, invoice.RemainingAmount().IsZero())
}

func TestIsOverdue(t *testing.T) {
	today := time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)

	invoice := &Invoice{
		DueDate: time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC),
		Status:  common.InvoiceStatusPending,
	}
	assert.True(t, invoice.IsOverdue(today))

	// due today is not yet overdue
	invoice.DueDate = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	assert.False(t, invoice.IsOverdue(today))

	// a settled invoice is never overdue
	invoice.DueDate = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	invoice.Status = common.InvoiceStatusPaid
	assert.False(t, invoice.IsOverdue(today))
}

func TestDaysOverdue(t *testing.T) {
	invoice := &Invoice{
		DueDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:  common.InvoiceStatusOverdue,
	}

	assert.Equal(t, 9, invoice.DaysOverdue(time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, invoice.DaysOverdue(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, invoice.DaysOverdue(time.Date(2024, 6, 1, 23, 59, 0, 0, time.UTC)))
}
