package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/pseudomuto/chm/pkg/migrator"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory ClickHouse that understands the ledger queries and
// records every other statement.
type fakeStore struct {
	tableExists bool
	records     []migrator.AppliedRecord

	execs     []string
	mutations int

	failOn     string
	failInsert error
}

func (f *fakeStore) Exec(_ context.Context, query string, args ...any) error {
	f.mutations++

	switch {
	case strings.Contains(query, "CREATE TABLE IF NOT EXISTS `ch_migrations`"):
		f.tableExists = true
	case strings.HasPrefix(query, "DELETE FROM `ch_migrations`"):
		version := args[0].(string)
		kept := f.records[:0]
		for _, r := range f.records {
			if r.Version != version {
				kept = append(kept, r)
			}
		}
		f.records = kept
	default:
		f.execs = append(f.execs, query)
		if f.failOn != "" && query == f.failOn {
			return errors.New("code: 62, syntax error")
		}
	}

	return nil
}

func (f *fakeStore) Select(_ context.Context, dest any, query string, _ ...any) error {
	switch {
	case strings.Contains(query, "system.tables"):
		if f.tableExists {
			appendNamedRow(dest, "ch_migrations")
		}
	case strings.Contains(query, "FROM `ch_migrations`"):
		records := dest.(*[]migrator.AppliedRecord)
		*records = append(*records, f.records...)
	default:
		return errors.Errorf("unexpected query: %s", query)
	}

	return nil
}

func (f *fakeStore) InsertRow(_ context.Context, _ string, row any) error {
	f.mutations++
	if f.failInsert != nil {
		return f.failInsert
	}

	f.records = append(f.records, *row.(*migrator.AppliedRecord))
	return nil
}

func (f *fakeStore) versions() []string {
	versions := make([]string, len(f.records))
	for i, r := range f.records {
		versions[i] = r.Version
	}
	return versions
}

// appendNamedRow appends a row with its Name field set to a slice of structs.
func appendNamedRow(dest any, name string) {
	slice := reflect.ValueOf(dest).Elem()
	row := reflect.New(slice.Type().Elem()).Elem()
	row.FieldByName("Name").SetString(name)
	slice.Set(reflect.Append(slice, row))
}

func writeUnit(t *testing.T, root, id, up, down string) {
	t.Helper()

	dir := filepath.Join(root, id)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "up.sql"), []byte(up), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "down.sql"), []byte(down), 0o644))
}
