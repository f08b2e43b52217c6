package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/NinnOgTonic/antaeus/internal/domain/customer"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/logger"
	"github.com/NinnOgTonic/antaeus/internal/postgres"
	"github.com/NinnOgTonic/antaeus/internal/types"
	"github.com/samber/lo"
)

const customerColumns = `id, currency, payment_customer_ref, created_at`

type customerRow struct {
	ID                 string         `db:"id"`
	Currency           string         `db:"currency"`
	PaymentCustomerRef sql.NullString `db:"payment_customer_ref"`
	CreatedAt          time.Time      `db:"created_at"`
}

func (r customerRow) toDomain() *customer.Customer {
	return &customer.Customer{
		ID:                 r.ID,
		Currency:           types.Currency(r.Currency),
		PaymentCustomerRef: r.PaymentCustomerRef.String,
		CreatedAt:          r.CreatedAt.UTC(),
	}
}

type customerRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCustomerRepository(db *postgres.DB, logger *logger.Logger) customer.Repository {
	return &customerRepository{db: db, logger: logger}
}

func (r *customerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (
			id, currency, payment_customer_ref, created_at
		) VALUES (
			:id, :currency, :payment_customer_ref, :created_at
		)`

	r.logger.Debugw("creating customer",
		"customer_id", c.ID,
		"currency", c.Currency,
	)

	_, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, customerRow{
		ID:       c.ID,
		Currency: string(c.Currency),
		PaymentCustomerRef: sql.NullString{
			String: c.PaymentCustomerRef,
			Valid:  c.PaymentCustomerRef != "",
		},
		CreatedAt: c.CreatedAt,
	})
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return ierr.WithError(err).
				WithHintf("Customer %s already exists", c.ID).
				Mark(ierr.ErrAlreadyExists)
		}
		return dbError(err, "Failed to create customer")
	}
	return nil
}

func (r *customerRepository) Get(ctx context.Context, id string) (*customer.Customer, error) {
	var row customerRow
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	if err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, id); err != nil {
		if isNoRows(err) {
			return nil, ierr.NewError("customer not found").
				WithHintf("Customer %s was not found", id).
				WithReportableDetails(map[string]any{
					"customer_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, dbError(err, "Failed to get customer")
	}

	return row.toDomain(), nil
}

func (r *customerRepository) List(ctx context.Context) ([]*customer.Customer, error) {
	var rows []customerRow
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY id`

	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query); err != nil {
		return nil, dbError(err, "Failed to list customers")
	}

	return toCustomers(rows), nil
}

// ListWithoutInvoiceInPeriod selects customers with no invoice due in
// [period.Start, period.End)
func (r *customerRepository) ListWithoutInvoiceInPeriod(ctx context.Context, period types.BillingPeriod, limit int) ([]*customer.Customer, error) {
	var rows []customerRow
	query := `
		SELECT c.id, c.currency, c.payment_customer_ref, c.created_at
		FROM customers c
		WHERE NOT EXISTS (
			SELECT 1 FROM invoices i
			WHERE i.customer_id = c.id
			AND i.due_at >= $1
			AND i.due_at < $2
		)
		ORDER BY c.id`
	args := []interface{}{period.Start, period.End}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, dbError(err, "Failed to list customers to invoice")
	}

	r.logger.Debugw("listed customers without invoice",
		"period", period.String(),
		"limit", limit,
		"count", len(rows),
	)

	return toCustomers(rows), nil
}

func toCustomers(rows []customerRow) []*customer.Customer {
	return lo.Map(rows, func(row customerRow, _ int) *customer.Customer {
		return row.toDomain()
	})
}
