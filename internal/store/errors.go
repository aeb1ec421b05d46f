package store

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/tandem/internal/model"
)

// ErrNotFound is returned when an operation names a user with no row.
var ErrNotFound = errors.New("user not found")

// DecodeError reports a persisted row that does not decode into a valid
// value, such as an unknown prompt kind.
type DecodeError struct {
	User   model.UserID
	Column string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode user %d %s: %s", e.User, e.Column, e.Reason)
}

// IsConstraint reports whether err is a SQLite constraint violation
// (foreign key, unique, check or not-null).
func IsConstraint(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}

// IsDecode reports whether err wraps a *DecodeError.
func IsDecode(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

func isForeignKey(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
