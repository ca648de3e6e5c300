package executor

import (
	"fmt"
)

const (
	// KindApply means a forward statement failed. The ledger was not changed,
	// but statements before the failing one remain applied.
	KindApply ErrorKind = "apply"

	// KindRevert means a backward statement failed. The ledger record is still
	// present, but statements before the failing one remain applied.
	KindRevert ErrorKind = "revert"

	// KindLedgerWriteFailed means every statement succeeded but the ledger
	// could not be updated. The store and the ledger now disagree and an
	// operator must reconcile them before running again.
	KindLedgerWriteFailed ErrorKind = "ledger write failed"
)

type (
	// ErrorKind distinguishes the ways executing a unit can fail.
	ErrorKind string

	// ExecError reports a failure while applying or reverting a unit.
	ExecError struct {
		Kind      ErrorKind
		Direction Direction
		Version   string

		// Statement is the 1-based index of the failing statement, or 0 when the
		// failure happened before or after statement execution.
		Statement int

		// SQL is the failing statement, if any.
		SQL string

		Cause error
	}
)

func (e *ExecError) Error() string {
	switch e.Kind {
	case KindLedgerWriteFailed:
		return fmt.Sprintf(
			"migration %s: %s SQL succeeded but the ledger write failed; the database and the ledger may now disagree, inspect before re-running: %v",
			e.Version, e.Direction, e.Cause,
		)
	default:
		if e.Statement == 0 {
			return fmt.Sprintf("migration %s: %s failed: %v", e.Version, e.Kind, e.Cause)
		}
		return fmt.Sprintf("migration %s: %s failed at statement %d (%s): %v", e.Version, e.Kind, e.Statement, e.SQL, e.Cause)
	}
}

func (e *ExecError) Unwrap() error {
	return e.Cause
}
