package store

import (
	"errors"
	"net"
	"net/http"
	"syscall"

	"github.com/heartmarshall/khmer-content/internal/retry"
)

var (
	// ErrTableNotFound is returned when the addressed table does not exist
	// in the target environment.
	ErrTableNotFound = errors.New("table not found")
	// ErrForeignKey is returned when a write or delete violates referential integrity.
	ErrForeignKey = errors.New("foreign key violation")
	// ErrNotApplied marks a failed write that is known to have left no
	// trace: it never reached the server or was rolled back.
	ErrNotApplied = errors.New("write not applied")
)

// IsNotApplied reports whether err proves the write did not land, which
// makes repeating a non-idempotent insert safe. Timeouts and gateway
// errors are excluded: the server may have committed before failing.
func IsNotApplied(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotApplied) {
		return true
	}

	var sc retry.HTTPStatusCoder
	if errors.As(err, &sc) {
		switch sc.HTTPStatusCode() {
		case http.StatusTooEarly, http.StatusTooManyRequests, http.StatusServiceUnavailable:
			return true
		}
		return false
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
