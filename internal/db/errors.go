package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes the HTTP layer distinguishes beyond gorm's own
// sentinel translation.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeInvalidTextRep      = "22P02"
)

// IsUniqueViolation reports a unique-constraint failure.
func IsUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// IsForeignKeyViolation reports a broken reference.
func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// IsNotNullViolation reports a missing required column.
func IsNotNullViolation(err error) bool {
	return pgCode(err) == codeNotNullViolation
}

// IsInvalidInput reports a value the database could not parse.
func IsInvalidInput(err error) bool {
	return pgCode(err) == codeInvalidTextRep
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
