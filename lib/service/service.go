package service

import (
	"context"
	"errors"

	"github.com/uptrace/bun"
	"github.com/ziflex/lecho/v3"
)

var (
	// ErrNotFound : referenced invoice/student/group does not exist
	ErrNotFound = errors.New("not found")
	// ErrValidation : business-rule violation, wrapped with the constraint message
	ErrValidation = errors.New("validation error")
	// ErrConcurrencyConflict : a concurrent transaction holds the invoice row,
	// the caller may retry
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)

// SMS is what the notification dispatcher accepts. Delivery is asynchronous
// and the ledger does not depend on its success.
type SMS struct {
	Phone      string `json:"phone"`
	Text       string `json:"text"`
	TemplateID string `json:"template_id,omitempty"`
}

type Dispatcher interface {
	Dispatch(ctx context.Context, sms SMS) error
}

type LedgerService struct {
	Config        *Config
	DB            *bun.DB
	Logger        *lecho.Logger
	InvoicePubSub *Pubsub
	// Dispatcher is nil when no messaging backend is configured;
	// reminder routines become no-ops in that case.
	Dispatcher Dispatcher
}
