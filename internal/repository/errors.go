package repository

import (
	"database/sql/driver"
	"errors"
	"net"

	"github.com/lib/pq"
)

// IsUniqueViolation reports whether err is a unique-constraint
// violation and, if so, which constraint tripped.
func IsUniqueViolation(err error) (constraint string, ok bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return pqErr.Constraint, true
	}
	return "", false
}

// IsUnavailable reports whether err looks like the store being
// unreachable rather than a query-level failure. Class 08 covers the
// postgres connection-exception family.
func IsUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "08" {
		return true
	}
	return false
}
