package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable means the store could not be reached or timed out.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrWriteRejected means the store refused an insert.
	ErrWriteRejected = errors.New("write rejected")
	// ErrConfigMissing means required configuration is absent at startup.
	ErrConfigMissing = errors.New("required configuration missing")
)

// StoreError carries the failure kind of a store call together with the
// untouched driver error.
type StoreError struct {
	Kind error
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is reports whether target is the kind of this error.
func (e *StoreError) Is(target error) bool { return target == e.Kind }

// NewStoreError wraps err as a failure of the given kind. A nil err stays nil.
func NewStoreError(kind error, op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Kind: kind, Op: op, Err: err}
}
