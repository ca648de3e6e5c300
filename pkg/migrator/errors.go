package migrator

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrBadInput is returned for malformed catalog entries, a missing
	// migrations directory or missing connection settings.
	ErrBadInput = errors.New("bad input")

	// ErrDrift is returned when the ledger records a version that has no
	// matching unit in the catalog.
	ErrDrift = errors.New("local migrations and recorded migrations are out of sync")

	// ErrNothingToRevert is returned when the ledger is empty.
	ErrNothingToRevert = errors.New("nothing to revert")
)

type (
	// DriftError lists the recorded versions missing from the catalog.
	DriftError struct {
		Versions []string
	}

	// StoreError wraps a failed call against ClickHouse.
	StoreError struct {
		// Op describes the ledger operation that failed (e.g. "fetch applied migrations")
		Op  string
		Err error
	}
)

func (e *DriftError) Error() string {
	return fmt.Sprintf("%s: recorded but missing locally: %s", ErrDrift, strings.Join(e.Versions, ", "))
}

func (e *DriftError) Unwrap() error {
	return ErrDrift
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
