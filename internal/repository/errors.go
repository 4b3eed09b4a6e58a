// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as the
// services and handlers to distinguish between different failure
// scenarios without inspecting driver specific errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation on a
// booking or payment they do not own.  Handlers translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write cannot proceed because of existing
// state, such as a second payment row for the same booking.
var ErrConflict = errors.New("conflict")

// ErrNotFound is returned by lookups that resolve a reference (catalog,
// customer, hotel, transport, food) which does not exist.
var ErrNotFound = errors.New("not found")

// mysqlDuplicateEntry is the server error number for a violated UNIQUE key.
const mysqlDuplicateEntry = 1062

// IsDuplicateKey reports whether err was caused by a UNIQUE constraint
// violation.  The payments.booking_id key relies on this to reject a
// second payment for the same booking.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate entry")
}
