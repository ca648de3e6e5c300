// Package executor runs a single migration unit against ClickHouse.
//
// A unit body is split into statements with parser.SplitStatements and each
// statement is executed in order. Execution stops at the first failure. Only
// after every statement succeeds is the ledger updated, so a ledger record
// always means "all forward statements ran" and a missing record after a
// revert means "all backward statements ran".
//
// ClickHouse has no transactional DDL. A failure part way through a unit
// leaves the earlier statements applied, and the returned *ExecError says
// which statement failed so an operator can repair the state by hand.
//
// # Usage Example
//
//	exec := executor.New(executor.Config{
//		ClickHouse: client,
//		Ledger:     migrator.NewLedger(client),
//		Output:     os.Stdout,
//	})
//
//	if _, err := exec.ApplyUnit(ctx, unit); err != nil {
//		var execErr *executor.ExecError
//		if errors.As(err, &execErr) && execErr.Kind == executor.KindLedgerWriteFailed {
//			// the SQL ran but the ledger does not know about it
//		}
//		return err
//	}
//
// # Error Kinds
//
//   - KindApply: a forward statement failed, the ledger is unchanged
//   - KindRevert: a backward statement failed, the ledger record is kept
//   - KindLedgerWriteFailed: all statements ran but the ledger write failed
package executor
