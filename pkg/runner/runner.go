// Package runner composes the catalog, ledger, reconciler and executor into
// the user facing migration operations: run, revert, redo and status.
//
// Every operation loads the catalog from disk and the ledger from ClickHouse
// fresh, then checks for drift before touching anything. Units are always
// applied one at a time in ascending version order.
package runner

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/chm/pkg/executor"
	"github.com/pseudomuto/chm/pkg/migrator"
)

type (
	// Runner runs migrations found under a migrations root against ClickHouse.
	Runner struct {
		root   string
		ledger *migrator.Ledger
		exec   *executor.Executor
		logger *slog.Logger
	}

	// Config contains configuration options for creating a new Runner.
	Config struct {
		// Root is the migrations directory
		Root string

		// ClickHouse is used for both statement execution and the ledger
		ClickHouse migrator.ClickHouse

		// LedgerOptions customize the ledger (table name, delete mode)
		LedgerOptions []migrator.LedgerOption

		Logger *slog.Logger
		Output io.Writer
	}

	// Status is a read-only snapshot of the catalog reconciled against the ledger.
	Status struct {
		// Applied lists recorded units that exist locally, in version order
		Applied []AppliedUnit

		// Pending lists local units without a ledger record, in version order
		Pending migrator.Catalog

		// Missing lists ledger records without a local unit (drift)
		Missing []migrator.AppliedRecord
	}

	// AppliedUnit pairs a local unit with its ledger record.
	AppliedUnit struct {
		Unit   *migrator.Unit
		Record migrator.AppliedRecord
	}
)

// New creates a Runner.
func New(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	ledger := migrator.NewLedger(cfg.ClickHouse, cfg.LedgerOptions...)

	return &Runner{
		root:   cfg.Root,
		ledger: ledger,
		logger: logger,
		exec: executor.New(executor.Config{
			ClickHouse: cfg.ClickHouse,
			Ledger:     ledger,
			Logger:     logger,
			Output:     out,
		}),
	}
}

// Root returns the migrations directory.
func (r *Runner) Root() string {
	return r.root
}

// Run creates the ledger table if needed and applies every pending unit in
// ascending version order, stopping at the first failure. The results of the
// units that ran (including a failed one) are returned alongside any error.
//
// Fails with a *migrator.DriftError before executing any statement when the
// ledger records a version that is missing locally.
func (r *Runner) Run(ctx context.Context) ([]*executor.ExecutionResult, error) {
	catalog, records, exists, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	if !exists {
		if err := r.ledger.EnsureTable(ctx); err != nil {
			return nil, err
		}
	}

	pending := migrator.Pending(catalog, records)
	if len(pending) == 0 {
		r.logger.Info("No pending migrations", "applied", len(records))
		return nil, nil
	}

	r.logger.Info("Applying migrations", "pending", len(pending))

	results := make([]*executor.ExecutionResult, 0, len(pending))
	for _, unit := range pending {
		result, err := r.exec.ApplyUnit(ctx, unit)
		results = append(results, result)
		if err != nil {
			r.logger.Error("Migration failed", "version", unit.Version, "name", unit.Name, "error", err)
			return results, err
		}
	}

	return results, nil
}

// Revert undoes the single most recently applied unit.
//
// Revert never creates the ledger table. If it does not exist, nothing was
// ever applied and ErrNothingToRevert is returned.
func (r *Runner) Revert(ctx context.Context) (*executor.ExecutionResult, error) {
	catalog, records, exists, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, migrator.ErrNothingToRevert
	}

	latest, err := migrator.MostRecentlyApplied(records)
	if err != nil {
		return nil, err
	}

	// CheckDrift passed, so every recorded version has a local unit
	unit := catalog.Find(latest.Version)
	if unit == nil {
		return nil, errors.Errorf("migration %s is recorded but not found locally", latest.Version)
	}

	r.logger.Info("Reverting migration", "version", unit.Version, "name", unit.Name, "ran_at", latest.RanAt)

	return r.exec.RevertUnit(ctx, unit)
}

// Redo reverts the most recently applied unit and then runs every pending
// unit. When the revert fails, nothing is run.
func (r *Runner) Redo(ctx context.Context) ([]*executor.ExecutionResult, error) {
	if _, err := r.Revert(ctx); err != nil {
		return nil, err
	}

	return r.Run(ctx)
}

// Status reports applied, pending and missing units without changing
// anything. Drift is reported in Missing rather than returned as an error.
func (r *Runner) Status(ctx context.Context) (*Status, error) {
	catalog, err := migrator.LoadCatalog(r.root)
	if err != nil {
		return nil, err
	}

	exists, err := r.ledger.Exists(ctx)
	if err != nil {
		return nil, err
	}

	var records []migrator.AppliedRecord
	if exists {
		if records, err = r.ledger.FetchAll(ctx); err != nil {
			return nil, err
		}
	}

	status := &Status{
		Pending: migrator.Pending(catalog, records),
		Missing: migrator.AppliedNotInCatalog(catalog, records),
	}

	byVersion := make(map[string]migrator.AppliedRecord, len(records))
	for _, record := range records {
		byVersion[record.Version] = record
	}

	for _, unit := range migrator.Applied(catalog, records) {
		status.Applied = append(status.Applied, AppliedUnit{Unit: unit, Record: byVersion[unit.Version]})
	}

	return status, nil
}

// load reads the catalog and the ledger and fails on drift. It only reads
// from ClickHouse; a missing ledger table yields no records.
func (r *Runner) load(ctx context.Context) (migrator.Catalog, []migrator.AppliedRecord, bool, error) {
	catalog, err := migrator.LoadCatalog(r.root)
	if err != nil {
		return nil, nil, false, err
	}

	exists, err := r.ledger.Exists(ctx)
	if err != nil || !exists {
		return catalog, nil, false, err
	}

	records, err := r.ledger.FetchAll(ctx)
	if err != nil {
		return nil, nil, false, err
	}

	if err := migrator.CheckDrift(catalog, records); err != nil {
		r.logger.Error("Migration drift detected", "error", err)
		return nil, nil, false, err
	}

	return catalog, records, true, nil
}
