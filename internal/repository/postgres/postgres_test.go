package postgres

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/NinnOgTonic/antaeus/internal/logger"
	"github.com/NinnOgTonic/antaeus/internal/metrics"
	"github.com/NinnOgTonic/antaeus/internal/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

var (
	invoiceCols  = []string{"id", "customer_id", "amount_value", "currency", "status", "due_at"}
	customerCols = []string{"id", "currency", "payment_customer_ref", "created_at"}
)

func newMockDB(t *testing.T) (*postgres.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		sqlDB.Close()
	})

	db := postgres.NewFromSQLX(sqlx.NewDb(sqlDB, "postgres"), logger.NewNopLogger(), metrics.NewMetrics(prometheus.NewRegistry()))
	return db, mock
}
