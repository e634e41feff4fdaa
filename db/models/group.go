package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Group is a class grouping an invoice may be tied to. Identity only, no
// behavior coupling.
type Group struct {
	ID        int64        `json:"id" bun:",pk,autoincrement"`
	Name      string       `json:"name" bun:",notnull"`
	IsActive  bool         `json:"is_active" bun:",default:true"`
	CreatedAt time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt bun.NullTime `json:"updated_at"`
}
