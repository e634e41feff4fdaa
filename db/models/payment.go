package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Payment : a settlement applied against exactly one invoice. Soft-deleted
// payments stay in the table for audit but are excluded from all totals.
type Payment struct {
	ID            int64           `json:"id" bun:",pk,autoincrement"`
	InvoiceID     int64           `json:"invoice_id" bun:",notnull" validate:"required"`
	Invoice       *Invoice        `json:"-" bun:"rel:belongs-to,join:invoice_id=id"`
	PaidAmount    decimal.Decimal `json:"paid_amount" bun:"type:numeric(10,2),notnull"`
	PaidAt        time.Time       `json:"paid_at" bun:",nullzero,notnull,default:current_timestamp"`
	Method        string          `json:"method" bun:",default:'cash'"`
	Note          string          `json:"note" bun:",nullzero"`
	ReceiptNumber string          `json:"receipt_number" bun:",nullzero"`
	IsActive      bool            `json:"is_active" bun:",default:true"`
	CreatedAt     time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt     bun.NullTime    `json:"updated_at"`
}

func (p *Payment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		p.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*Payment)(nil)
