package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/edupay/tuitionhub/common"
	"github.com/edupay/tuitionhub/db/models"
	"github.com/uptrace/bun"
)

// FindStudent resolves a user with the student role. The user directory is
// owned by an external service; this is a read-only projection.
func (svc *LedgerService) FindStudent(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User

	err := svc.DB.NewSelect().
		Model(&user).
		Relation("Profile").
		Where("\"user\".id = ? AND \"user\".role = ? AND NOT \"user\".deactivated", userID, common.RoleStudent).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: student %d", ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (svc *LedgerService) FindGroup(ctx context.Context, groupID int64) (*models.Group, error) {
	var group models.Group

	err := svc.DB.NewSelect().
		Model(&group).
		Where("id = ? AND is_active", groupID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: group %d", ErrNotFound, groupID)
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// StudentsWithDebt returns the distinct students having at least one active
// unsettled invoice.
func (svc *LedgerService) StudentsWithDebt(ctx context.Context) ([]models.User, error) {
	var studentIDs []int64
	err := svc.DB.NewSelect().
		Table("invoices").
		ColumnExpr("DISTINCT student_id").
		Where("status IN (?)", bun.In(unpaidStatuses())).
		Where("is_active").
		Scan(ctx, &studentIDs)
	if err != nil {
		return nil, err
	}
	if len(studentIDs) == 0 {
		return []models.User{}, nil
	}

	var students []models.User
	err = svc.DB.NewSelect().
		Model(&students).
		Relation("Profile").
		Where("\"user\".id IN (?)", bun.In(studentIDs)).
		Where("\"user\".role = ?", common.RoleStudent).
		Order("user.id").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return students, nil
}
