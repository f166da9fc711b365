package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"syscall"

	"github.com/locvowork/convexhub/apigateway/internal/domain"
)

// classifier reports the failure kind of a driver error, or nil when the
// error is neither a connectivity failure nor a refused write.
type classifier func(err error, write bool) error

// isTransportError covers failures below any driver: timeouts, broken
// connections, refused dials.
func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// wrap attaches the classified kind to err. A write only counts as rejected
// when the driver says the store refused it; a cancelled call and anything
// unclassified keep the driver error with the operation name only.
func wrap(classify classifier, op string, write bool, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return &opError{op: op, err: err}
	}
	if isTransportError(err) {
		return domain.NewStoreError(domain.ErrStoreUnavailable, op, err)
	}
	if kind := classify(err, write); kind != nil {
		return domain.NewStoreError(kind, op, err)
	}
	return &opError{op: op, err: err}
}

type opError struct {
	op  string
	err error
}

func (e *opError) Error() string { return e.op + ": " + e.err.Error() }
func (e *opError) Unwrap() error { return e.err }
