package migrator

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pseudomuto/chm/pkg/consts"
	"github.com/pseudomuto/chm/pkg/utils"
)

type (
	// ClickHouse defines the store operations required by the ledger.
	ClickHouse interface {
		Exec(context.Context, string, ...any) error
		Select(context.Context, any, string, ...any) error
		InsertRow(context.Context, string, any) error
	}

	// AppliedRecord is a ledger row: a unit version and when it was applied.
	AppliedRecord struct {
		Version string    `ch:"version"`
		RanAt   time.Time `ch:"ran_at"`
	}

	// Ledger reads and writes the table of applied units. Ledger state is
	// never cached; every call goes to ClickHouse.
	Ledger struct {
		ch    ClickHouse
		table string
		now   func() time.Time

		// mutationDelete uses ALTER TABLE ... DELETE for servers without
		// lightweight deletes
		mutationDelete bool
	}

	// LedgerOption customizes a Ledger.
	LedgerOption func(*Ledger)

	tableRow struct {
		Name string `ch:"name"`
	}
)

// WithTable overrides the ledger table name (default ch_migrations). The name
// may be qualified with a database, e.g. "ops.ch_migrations".
func WithTable(name string) LedgerOption {
	return func(l *Ledger) { l.table = name }
}

// WithClock overrides the clock used for ran_at.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

// WithMutationDelete makes RecordReverted issue a synchronous
// ALTER TABLE ... DELETE mutation instead of DELETE FROM. Needed before
// ClickHouse 23.3.
func WithMutationDelete() LedgerOption {
	return func(l *Ledger) { l.mutationDelete = true }
}

// NewLedger creates a Ledger backed by ch.
func NewLedger(ch ClickHouse, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		ch:    ch,
		table: consts.LedgerTable,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Table returns the ledger table name as configured.
func (l *Ledger) Table() string {
	return l.table
}

func (l *Ledger) quotedTable() string {
	return utils.QuoteIdentifier(l.table)
}

// EnsureTable creates the ledger table if it does not exist. Existing data is
// never touched.
func (l *Ledger) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version String,
			ran_at DateTime64(3, 'UTC')
		)
		ENGINE = MergeTree()
		ORDER BY (ran_at, version)`, l.quotedTable())

	if err := l.ch.Exec(ctx, query); err != nil {
		return storeError("create migrations table", err)
	}

	return nil
}

// DropTable drops the ledger table and every record in it. Run and revert
// never call this.
func (l *Ledger) DropTable(ctx context.Context) error {
	if err := l.ch.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", l.quotedTable())); err != nil {
		return storeError("drop migrations table", err)
	}

	return nil
}

// Exists reports whether the ledger table exists. A bare table name is looked
// up in the current database.
func (l *Ledger) Exists(ctx context.Context) (bool, error) {
	var (
		rows []tableRow
		err  error
	)

	switch database, table := utils.SplitQualifiedName(l.table); database {
	case "":
		err = l.ch.Select(ctx, &rows,
			"SELECT name FROM system.tables WHERE database = currentDatabase() AND name = ?",
			table,
		)
	default:
		err = l.ch.Select(ctx, &rows,
			"SELECT name FROM system.tables WHERE database = ? AND name = ?",
			database, table,
		)
	}
	if err != nil {
		return false, storeError("check migrations table", err)
	}

	return len(rows) > 0, nil
}

// FetchAll returns every applied record, sorted ascending by ran_at (ties by
// version).
func (l *Ledger) FetchAll(ctx context.Context) ([]AppliedRecord, error) {
	var records []AppliedRecord
	query := fmt.Sprintf("SELECT version, ran_at FROM %s ORDER BY ran_at, version", l.quotedTable())
	if err := l.ch.Select(ctx, &records, query); err != nil {
		return nil, storeError("fetch applied migrations", err)
	}

	SortRecords(records)
	return records, nil
}

// RecordApplied inserts a record for unit with ran_at set to now.
func (l *Ledger) RecordApplied(ctx context.Context, unit *Unit) error {
	record := &AppliedRecord{
		Version: unit.Version,
		RanAt:   l.now().UTC(),
	}

	if err := l.ch.InsertRow(ctx, l.quotedTable(), record); err != nil {
		return storeError("record migration "+unit.Version, err)
	}

	return nil
}

// RecordReverted deletes the record for version. Deleting a version that is
// not recorded is not an error.
func (l *Ledger) RecordReverted(ctx context.Context, version string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE version = ?", l.quotedTable())
	if l.mutationDelete {
		query = fmt.Sprintf("ALTER TABLE %s DELETE WHERE version = ? SETTINGS mutations_sync = 1", l.quotedTable())
	}

	if err := l.ch.Exec(ctx, query, version); err != nil {
		return storeError("delete migration record "+version, err)
	}

	return nil
}

// SortRecords orders records ascending by ran_at, breaking ties by version.
func SortRecords(records []AppliedRecord) {
	slices.SortStableFunc(records, func(a, b AppliedRecord) int {
		if c := a.RanAt.Compare(b.RanAt); c != 0 {
			return c
		}
		return strings.Compare(a.Version, b.Version)
	})
}
