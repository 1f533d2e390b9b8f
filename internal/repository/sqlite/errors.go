package sqlite

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// constraint classifies a driver error as one of the constraint failures the
// repositories translate into domain errors.
type constraint int

const (
	constraintNone constraint = iota
	constraintUnique
	constraintForeignKey
	constraintCheck
)

// classify inspects err for a SQLite constraint violation.
//
// The driver reports extended result codes (SQLITE_CONSTRAINT_UNIQUE = 2067,
// SQLITE_CONSTRAINT_FOREIGNKEY = 787, ...). When the error did not come from
// the driver (wrapped by a proxy, or produced in tests) we fall back to the
// message SQLite formats for each constraint.
func classify(err error) constraint {
	if err == nil {
		return constraintNone
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return constraintUnique
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return constraintForeignKey
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return constraintCheck
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return constraintUnique
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return constraintForeignKey
	case strings.Contains(msg, "CHECK constraint failed"):
		return constraintCheck
	}
	return constraintNone
}
