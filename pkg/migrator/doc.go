// Package migrator loads locally authored migration units, reads and writes
// the ClickHouse ledger of applied units, and reconciles the two.
//
// A migrations root contains one directory per unit named
// "<version>_<name>", where version is a timestamp in the fixed-width
// YYYY-MM-DD-HHMMSS form. Each unit directory holds an up.sql and a down.sql.
//
//	ch_migrations/
//	  chm.toml
//	  2024-01-01-000000_create_events/
//	    up.sql
//	    down.sql
//
// Because the version is fixed-width and zero padded, plain string comparison
// orders units chronologically.
//
// # Catalog
//
// LoadCatalog scans the root one level deep and returns the units sorted by
// version. Config files (chm.toml, chm.yaml, chm.yml) and dot files are
// skipped. Anything else that is not a well formed unit directory fails with
// ErrBadInput. Unit bodies are read lazily by ForwardBody and BackwardBody.
//
// # Ledger
//
// The ledger is a MergeTree table with one row per applied unit:
//
//	CREATE TABLE IF NOT EXISTS ch_migrations (
//		version String,
//		ran_at DateTime64(3, 'UTC')
//	)
//	ENGINE = MergeTree()
//	ORDER BY (ran_at, version)
//
// Rows are inserted when a unit is applied and deleted when it is reverted.
// Nothing is cached between calls.
//
// # Reconciliation
//
// Pending, Applied, AppliedNotInCatalog, CheckDrift and MostRecentlyApplied
// work on a catalog and a ledger snapshot and perform no I/O:
//
//	catalog, err := migrator.LoadCatalog("ch_migrations")
//	if err != nil {
//		return err
//	}
//
//	records, err := migrator.NewLedger(client).FetchAll(ctx)
//	if err != nil {
//		return err
//	}
//
//	if err := migrator.CheckDrift(catalog, records); err != nil {
//		return err // *DriftError
//	}
//
//	for _, unit := range migrator.Pending(catalog, records) {
//		fmt.Println("pending:", unit.ID())
//	}
package migrator
