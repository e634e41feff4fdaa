package models

import (
	"context"
	"time"

	"github.com/edupay/tuitionhub/common"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Invoice : billable obligation owed by a student, net of an optional
// discount, by a due date. The status column is a cached projection of the
// payment ledger; the ledger itself is the source of truth and the computed
// methods below always recompute from the loaded payments.
type Invoice struct {
	ID             int64           `json:"id" bun:",pk,autoincrement"`
	StudentID      int64           `json:"student_id" bun:",notnull" validate:"required"`
	Student        *User           `json:"-" bun:"rel:belongs-to,join:student_id=id"`
	GroupID        int64           `json:"group_id,omitempty" bun:",nullzero"`
	Group          *Group          `json:"-" bun:"rel:belongs-to,join:group_id=id"`
	Amount         decimal.Decimal `json:"amount" bun:"type:numeric(10,2),notnull"`
	DiscountAmount decimal.Decimal `json:"discount_amount" bun:"type:numeric(10,2),notnull,default:0"`
	DueDate        time.Time       `json:"due_date" bun:"type:date,notnull"`
	Status         string          `json:"status" bun:",default:'pending'"`
	IssuedAt       time.Time       `json:"issued_at" bun:",nullzero,notnull,default:current_timestamp"`
	Description    string          `json:"description" bun:",nullzero"`
	IsActive       bool            `json:"is_active" bun:",default:true"`
	CreatedAt      time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt      bun.NullTime    `json:"updated_at"`

	Payments []Payment `json:"payments,omitempty" bun:"rel:has-many,join:id=invoice_id"`
}

func (i *Invoice) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		i.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

// FinalAmount is the amount net of discount. Never negative while the
// discount < amount constraint holds.
func (i *Invoice) FinalAmount() decimal.Decimal {
	return i.Amount.Sub(i.DiscountAmount)
}

// PaidAmount sums the active payments loaded on the invoice.
func (i *Invoice) PaidAmount() decimal.Decimal {
	total := decimal.Zero
	for _, p := range i.Payments {
		if p.IsActive {
			total = total.Add(p.PaidAmount)
		}
	}
	return total
}

func (i *Invoice) RemainingAmount() decimal.Decimal {
	return i.FinalAmount().Sub(i.PaidAmount())
}

func (i *Invoice) IsOverdue(today time.Time) bool {
	return dateBefore(i.DueDate, today) && i.Status != common.InvoiceStatusPaid
}

// DaysOverdue counts whole days past the due date, 0 when not overdue.
func (i *Invoice) DaysOverdue(today time.Time) int {
	if !i.IsOverdue(today) {
		return 0
	}
	return int(truncateDate(today).Sub(truncateDate(i.DueDate)).Hours() / 24)
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dateBefore(a, b time.Time) bool {
	return truncateDate(a).Before(truncateDate(b))
}

var _ bun.BeforeAppendModelHook = (*Invoice)(nil)
