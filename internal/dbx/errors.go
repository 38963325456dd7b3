package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Ensure pings db and reports common.ErrStorageUnavailable when the store
// cannot be reached. Services call it before doing any work.
func Ensure(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("%w: no database handle", common.ErrStorageUnavailable)
	}
	if err := db.PingContext(ctx); err != nil {
		return Unavailable(err)
	}
	return nil
}

// Unavailable wraps err so that it matches common.ErrStorageUnavailable.
// Errors that already carry a sentinel from common are returned unchanged.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		common.ErrStorageUnavailable,
		common.ErrorNotFound,
		common.ErrAlreadyExists,
		common.ErrValidation,
		common.ErrCrypto,
		common.ErrorUnauthorized,
		common.ErrForbidden,
		common.ErrLastAdmin,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
}

// IsUniqueViolation reports whether err is a SQLite primary key or unique
// constraint failure.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}

// IsForeignKeyViolation reports whether err is a SQLite foreign key failure,
// e.g. a row referencing a user that does not exist.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
