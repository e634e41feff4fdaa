package migrations

import (
	"context"

	"github.com/edupay/tuitionhub/db/models"
	"github.com/uptrace/bun"
)

/* Since this init will reflect the latest model fields when run on fresh db
make sure that when you add/remove columns in subsequent migrations IfNotExists/IfExists is used
otherwise it's going to result in errors.
*/
func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {

		if _, err := db.NewCreateTable().Model((*models.User)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.StudentProfile)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.Group)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.Invoice)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.Payment)(nil)).Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.DebtSnapshot)(nil)).Exec(ctx); err != nil {
			return err
		}

		// one snapshot row per (date, student); the builder upserts on this
		if _, err := db.NewCreateIndex().
			Model((*models.DebtSnapshot)(nil)).
			Index("debt_snapshots_date_student_idx").
			Unique().
			Column("snapshot_date", "student_id").
			Exec(ctx); err != nil {
			return err
		}

		return nil
	}, nil)
}
