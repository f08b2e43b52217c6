package postgres

import (
	"database/sql"
	"errors"

	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/lib/pq"
)

// postgres error codes handled explicitly
const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// dbError marks a failed statement as a database error with the given api hint
func dbError(err error, hint string) error {
	return ierr.WithError(err).
		WithHint(hint).
		Mark(ierr.ErrDatabase)
}
