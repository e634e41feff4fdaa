package models

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// User is the slice of the student directory the ledger needs: identity,
// role and contact phone for reminder messages. Accounts are managed by an
// external service.
type User struct {
	ID          int64        `json:"id" bun:",pk,autoincrement"`
	Login       string       `json:"login" bun:",unique,notnull"`
	FirstName   string       `json:"first_name" bun:",nullzero"`
	LastName    string       `json:"last_name" bun:",nullzero"`
	Phone       string       `json:"phone" bun:",nullzero"`
	Role        string       `json:"role" bun:",default:'student'"`
	Deactivated bool         `json:"-" bun:",nullzero"`
	CreatedAt   time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt   bun.NullTime `json:"updated_at"`

	Profile *StudentProfile `json:"-" bun:"rel:has-one,join:id=user_id"`
}

func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Login
	}
	return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
}

func (u *User) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		u.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

// StudentProfile carries the parent contact used for debt notifications.
type StudentProfile struct {
	ID          int64  `json:"id" bun:",pk,autoincrement"`
	UserID      int64  `json:"user_id" bun:",unique,notnull"`
	ParentName  string `json:"parent_name" bun:",nullzero"`
	ParentPhone string `json:"parent_phone" bun:",nullzero"`
}

var _ bun.BeforeAppendModelHook = (*User)(nil)
