package errs

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	mysqlDuplicateEntry = 1062
	pgUniqueViolation   = "23505"
)

// From classifies any error into an *Error. Errors that are already typed
// pass through; store errors for missing rows and unique-key violations map
// to NotFound and Conflict; everything else is Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Kind: KindNotFound, Message: "Record not found", Err: err}
	}

	if IsDuplicateKey(err) {
		return &Error{
			Kind:    KindConflict,
			Message: "Resource already exists",
			Details: "A record with this information already exists",
			Err:     err,
		}
	}

	return NewInternal(err)
}

// IsDuplicateKey reports whether err is a unique-constraint violation from
// gorm's error translation, MySQL or Postgres.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}

	return false
}
