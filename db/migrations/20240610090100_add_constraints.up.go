package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {

		if db.Dialect().Name().String() != "pg" {
			fmt.Printf("\033[1;31m%s\033[0m", "You are not using PostgreSQL. DB level checks can not be enabled!\n")
			return nil
		}
		sql := `
			-- basic sanity checks on amounts
				ALTER TABLE invoices
				ADD CONSTRAINT check_invoice_amounts
				CHECK (amount > 0 AND discount_amount >= 0 AND discount_amount < amount);

				ALTER TABLE payments
				ADD CONSTRAINT check_payment_amount
				CHECK (paid_amount > 0);

			-- make sure the active payments on an invoice never exceed its final amount
				CREATE OR REPLACE FUNCTION check_invoice_balance()
					RETURNS TRIGGER AS $$
				DECLARE
					final_amount NUMERIC;
					paid NUMERIC;
				BEGIN

					-- LOCK the invoice row so two parallel payments are serialized here.
					-- IMPORTANT: lock but do not wait for another lock to be released.
					--   Waiting could deadlock when two transactions touch the same invoice;
					--   NOWAIT reports an error instead, which the caller surfaces as a
					--   retryable conflict.
					SELECT INTO final_amount amount - discount_amount
					FROM invoices
					WHERE id = NEW.invoice_id
					FOR UPDATE NOWAIT;

					IF final_amount IS NULL
					THEN
						RAISE EXCEPTION 'unknown invoice [invoice_id:%]', NEW.invoice_id;
					END IF;

					SELECT INTO paid COALESCE(SUM(paid_amount), 0)
					FROM payments
					WHERE payments.invoice_id = NEW.invoice_id AND payments.is_active;

					IF paid > final_amount
					THEN
						RAISE EXCEPTION 'payments exceed invoice balance [invoice_id:%] paid [%] of [%]',
						NEW.invoice_id,
						paid,
						final_amount;
					END IF;
					RETURN NEW;
				END;
				$$ LANGUAGE plpgsql;

				DROP TRIGGER IF EXISTS check_invoice_balance ON payments;

				-- deferrable trigger executed at the end of the transaction, so the
				-- admission check sees every payment written by it
				CREATE CONSTRAINT TRIGGER check_invoice_balance
				AFTER INSERT OR UPDATE ON payments
				DEFERRABLE
				FOR EACH ROW EXECUTE PROCEDURE check_invoice_balance();
		`
		if _, err := db.Exec(sql); err != nil {
			return err
		}
		return nil
	}, nil)
}
