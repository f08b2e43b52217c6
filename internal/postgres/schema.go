package postgres

import (
	"context"
)

// schema creates the billing tables. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id                   TEXT PRIMARY KEY,
		currency             VARCHAR(3) NOT NULL,
		payment_customer_ref TEXT,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id           TEXT PRIMARY KEY,
		customer_id  TEXT NOT NULL REFERENCES customers (id),
		amount_value NUMERIC NOT NULL CHECK (amount_value >= 0),
		currency     VARCHAR(3) NOT NULL,
		status       VARCHAR(16) NOT NULL,
		due_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices (status)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_customer_due_at ON invoices (customer_id, due_at)`,
}

// Schema returns the statements Migrate runs, in order
func Schema() []string {
	return append([]string(nil), schema...)
}

// Migrate applies the schema in a single transaction
func (db *DB) Migrate(ctx context.Context) error {
	return db.WithTx(ctx, func(ctx context.Context) error {
		q := db.GetQuerier(ctx)
		for _, stmt := range schema {
			if _, err := q.ExecContext(ctx, stmt); err != nil {
				return markTxErr(err, "failed to apply schema")
			}
		}
		db.logger.Infow("schema applied", "statements", len(schema))
		return nil
	})
}
