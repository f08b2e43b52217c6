package postgres

import (
	"context"
	"time"

	"github.com/NinnOgTonic/antaeus/internal/domain/customer"
	"github.com/NinnOgTonic/antaeus/internal/domain/invoice"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/logger"
	"github.com/NinnOgTonic/antaeus/internal/postgres"
	"github.com/NinnOgTonic/antaeus/internal/types"
	"github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const invoiceColumns = `id, customer_id, amount_value, currency, status, due_at`

// invoiceRow is the storage shape of an invoice
type invoiceRow struct {
	ID          string          `db:"id"`
	CustomerID  string          `db:"customer_id"`
	AmountValue decimal.Decimal `db:"amount_value"`
	Currency    string          `db:"currency"`
	Status      string          `db:"status"`
	DueAt       time.Time       `db:"due_at"`
}

func (r invoiceRow) toDomain() *invoice.Invoice {
	return &invoice.Invoice{
		ID:         r.ID,
		CustomerID: r.CustomerID,
		Amount:     types.NewMoney(r.AmountValue, types.Currency(r.Currency)),
		Status:     types.InvoiceStatus(r.Status),
		DueAt:      r.DueAt.UTC(),
	}
}

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	var row invoiceRow
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.NewError("invoice not found").
				WithHintf("Invoice %s was not found", id).
				WithReportableDetails(map[string]any{
					"invoice_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, dbError(err, "Failed to get invoice")
	}

	return row.toDomain(), nil
}

func (r *invoiceRepository) List(ctx context.Context) ([]*invoice.Invoice, error) {
	var rows []invoiceRow
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY id`

	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query); err != nil {
		return nil, dbError(err, "Failed to list invoices")
	}

	return toInvoices(rows), nil
}

func (r *invoiceRepository) ListPending(ctx context.Context, limit int) ([]*invoice.Invoice, error) {
	var rows []invoiceRow
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE status = $1 ORDER BY id`
	args := []interface{}{string(types.InvoiceStatusPending)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, dbError(err, "Failed to list pending invoices")
	}

	return toInvoices(rows), nil
}

// Create inserts the invoice and reads it back inside one transaction so the
// caller gets exactly what was stored
func (r *invoiceRepository) Create(
	ctx context.Context,
	amount types.Money,
	c *customer.Customer,
	status types.InvoiceStatus,
	dueAt time.Time,
) (*invoice.Invoice, error) {
	id := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE)
	// postgres keeps microseconds
	dueAt = dueAt.UTC().Truncate(time.Microsecond)

	r.logger.Debugw("creating invoice",
		"invoice_id", id,
		"customer_id", c.ID,
		"amount", amount.String(),
		"status", status,
	)

	var created *invoice.Invoice
	err := r.db.WithTx(ctx, func(ctx context.Context) error {
		query := `INSERT INTO invoices (` + invoiceColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
		_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
			id,
			c.ID,
			amount.Value,
			string(amount.Currency),
			string(status),
			dueAt,
		)
		if err != nil {
			switch pqCode(err) {
			case pqForeignKeyViolation:
				return ierr.WithError(err).
					WithHintf("Customer %s was not found", c.ID).
					Mark(ierr.ErrNotFound)
			case pqUniqueViolation:
				return ierr.WithError(err).
					WithHint("Invoice already exists").
					Mark(ierr.ErrAlreadyExists)
			}
			return dbError(err, "Failed to create invoice")
		}

		created, err = r.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateStatus moves every given invoice to status in one statement. Only rows
// whose current status may legally transition to status are touched.
func (r *invoiceRepository) UpdateStatus(ctx context.Context, invoices []*invoice.Invoice, status types.InvoiceStatus) error {
	if len(invoices) == 0 {
		return nil
	}

	ids := lo.Map(invoices, func(inv *invoice.Invoice, _ int) string {
		return inv.ID
	})
	sources := lo.FilterMap(
		[]types.InvoiceStatus{types.InvoiceStatusPending, types.InvoiceStatusPaid},
		func(s types.InvoiceStatus, _ int) (string, bool) {
			return string(s), s.CanTransitionTo(status)
		},
	)

	query := `UPDATE invoices SET status = $1 WHERE id = ANY($2) AND status = ANY($3)`
	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, string(status), pq.Array(ids), pq.Array(sources))
	if err != nil {
		return dbError(err, "Failed to update invoice status")
	}

	if affected, err := result.RowsAffected(); err == nil && int(affected) != len(ids) {
		r.logger.Warnw("some invoices were not updated",
			"status", status,
			"requested", len(ids),
			"updated", affected,
		)
	}

	r.logger.Debugw("updated invoice status",
		"status", status,
		"count", len(ids),
	)
	return nil
}

func toInvoices(rows []invoiceRow) []*invoice.Invoice {
	return lo.Map(rows, func(row invoiceRow, _ int) *invoice.Invoice {
		return row.toDomain()
	})
}

