package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/chm/pkg/migrator"
	"github.com/pseudomuto/chm/pkg/parser"
)

const (
	// Up runs a unit's forward body
	Up Direction = "up"

	// Down runs a unit's backward body
	Down Direction = "down"
)

type (
	// ClickHouse defines the interface for ClickHouse database operations
	// required by the migration executor.
	ClickHouse interface {
		Exec(context.Context, string, ...any) error
	}

	// Ledger records the outcome of a unit once all of its statements ran.
	Ledger interface {
		RecordApplied(context.Context, *migrator.Unit) error
		RecordReverted(context.Context, string) error
	}

	// Direction is the body of a unit being executed.
	Direction string

	// Executor runs the statements of a single unit against ClickHouse and
	// updates the ledger when they all succeed.
	//
	// Execution is fail-fast and not atomic: statements that ran before a
	// failing statement are not rolled back, since ClickHouse has no
	// transactional DDL.
	Executor struct {
		ch     ClickHouse
		ledger Ledger
		logger *slog.Logger
		out    io.Writer
	}

	// Config contains configuration options for creating a new Executor.
	Config struct {
		// ClickHouse client for statement execution
		ClickHouse ClickHouse

		// Ledger that records applied and reverted units
		Ledger Ledger

		// Logger for structured logs (defaults to slog.Default())
		Logger *slog.Logger

		// Output receives human readable progress lines (defaults to stdout)
		Output io.Writer
	}

	// ExecutionResult describes a completed (or failed) unit execution.
	ExecutionResult struct {
		Version   string
		Name      string
		Direction Direction

		// ExecutionTime records how long the statements took to execute
		ExecutionTime time.Duration

		// StatementsApplied indicates how many statements were successfully executed
		StatementsApplied int

		// TotalStatements is the number of non-empty statements in the body
		TotalStatements int
	}
)

// New creates a new unit executor.
//
// Example usage:
//
//	exec := executor.New(executor.Config{
//		ClickHouse: client,
//		Ledger:     migrator.NewLedger(client),
//	})
//
//	if _, err := exec.ApplyUnit(ctx, unit); err != nil {
//		log.Fatal(err)
//	}
func New(cfg Config) *Executor {
	e := &Executor{
		ch:     cfg.ClickHouse,
		ledger: cfg.Ledger,
		logger: cfg.Logger,
		out:    cfg.Output,
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.out == nil {
		e.out = os.Stdout
	}

	return e
}

// ApplyUnit runs every statement of the unit's up.sql in order and then
// records the unit in the ledger.
//
// A failing statement stops execution and returns an *ExecError of kind
// KindApply. If the statements succeed but the ledger insert fails, the
// returned *ExecError has kind KindLedgerWriteFailed.
func (e *Executor) ApplyUnit(ctx context.Context, unit *migrator.Unit) (*ExecutionResult, error) {
	fmt.Fprintf(e.out, "Running migration %s\n", unit.ID())

	return e.execute(ctx, unit, Up, unit.ForwardBody, func(ctx context.Context) error {
		return e.ledger.RecordApplied(ctx, unit)
	})
}

// RevertUnit runs every statement of the unit's down.sql in order and then
// deletes the unit's ledger record. Deleting the record is the commit point
// of a revert.
func (e *Executor) RevertUnit(ctx context.Context, unit *migrator.Unit) (*ExecutionResult, error) {
	fmt.Fprintf(e.out, "Reverting migration %s\n", unit.ID())

	return e.execute(ctx, unit, Down, unit.BackwardBody, func(ctx context.Context) error {
		return e.ledger.RecordReverted(ctx, unit.Version)
	})
}

func (e *Executor) execute(
	ctx context.Context,
	unit *migrator.Unit,
	dir Direction,
	body func() (string, error),
	commit func(context.Context) error,
) (*ExecutionResult, error) {
	kind := KindApply
	if dir == Down {
		kind = KindRevert
	}

	result := &ExecutionResult{
		Version:   unit.Version,
		Name:      unit.Name,
		Direction: dir,
	}

	if err := ctx.Err(); err != nil {
		return result, &ExecError{Kind: kind, Direction: dir, Version: unit.Version, Cause: err}
	}

	sql, err := body()
	if err != nil {
		return result, &ExecError{Kind: kind, Direction: dir, Version: unit.Version, Cause: err}
	}

	stmts, err := parser.SplitStatements(sql)
	if err != nil {
		return result, &ExecError{Kind: kind, Direction: dir, Version: unit.Version, Cause: err}
	}
	result.TotalStatements = len(stmts)

	// Partially executed DDL cannot be undone, so once the first statement
	// starts the unit runs to completion or failure regardless of cancellation.
	ctx = context.WithoutCancel(ctx)
	start := time.Now()

	for i, stmt := range stmts {
		e.logger.Debug("Executing statement",
			"version", unit.Version,
			"direction", dir,
			"statement", i+1,
			"total", len(stmts),
		)

		if err := e.ch.Exec(ctx, stmt); err != nil {
			result.ExecutionTime = time.Since(start)
			return result, &ExecError{
				Kind:      kind,
				Direction: dir,
				Version:   unit.Version,
				Statement: i + 1,
				SQL:       stmt,
				Cause:     errors.Wrapf(err, "failed to execute statement %d", i+1),
			}
		}

		result.StatementsApplied++
	}

	result.ExecutionTime = time.Since(start)

	if err := commit(ctx); err != nil {
		return result, &ExecError{
			Kind:      KindLedgerWriteFailed,
			Direction: dir,
			Version:   unit.Version,
			Cause:     err,
		}
	}

	e.logger.Info("Migration executed",
		"version", unit.Version,
		"name", unit.Name,
		"direction", dir,
		"statements", result.StatementsApplied,
		"duration", result.ExecutionTime,
	)

	return result, nil
}
