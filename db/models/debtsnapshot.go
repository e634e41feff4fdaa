package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// DebtSnapshot : per-day, per-student aggregate of outstanding debt.
// At most one row per (snapshot_date, student_id); the builder upserts so a
// re-run for the same date overwrites rather than duplicates.
type DebtSnapshot struct {
	ID           int64           `json:"id" bun:",pk,autoincrement"`
	SnapshotDate time.Time       `json:"snapshot_date" bun:"type:date,notnull"`
	StudentID    int64           `json:"student_id" bun:",notnull"`
	Student      *User           `json:"-" bun:"rel:belongs-to,join:student_id=id"`
	TotalDebt    decimal.Decimal `json:"total_debt" bun:"type:numeric(10,2),notnull"`
	OverdueDebt  decimal.Decimal `json:"overdue_debt" bun:"type:numeric(10,2),notnull,default:0"`
	OverdueDays  int             `json:"overdue_days" bun:",notnull,default:0"`
	CreatedAt    time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt    bun.NullTime    `json:"updated_at"`
}

func (s *DebtSnapshot) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		s.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*DebtSnapshot)(nil)
