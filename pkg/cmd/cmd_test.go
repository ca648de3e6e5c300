package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/pseudomuto/chm/pkg/config"
	"github.com/pseudomuto/chm/pkg/consts"
	"github.com/pseudomuto/chm/pkg/migrator"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

// memoryStore is an in-memory ClickHouse that understands the ledger queries.
type memoryStore struct {
	tableExists bool
	records     []migrator.AppliedRecord
	execs       []string
	closed      bool
}

func (m *memoryStore) Exec(_ context.Context, query string, args ...any) error {
	switch {
	case strings.Contains(query, "CREATE TABLE IF NOT EXISTS `ch_migrations`"):
		m.tableExists = true
	case strings.HasPrefix(query, "DELETE FROM `ch_migrations`"):
		kept := m.records[:0]
		for _, r := range m.records {
			if r.Version != args[0] {
				kept = append(kept, r)
			}
		}
		m.records = kept
	default:
		m.execs = append(m.execs, query)
	}

	return nil
}

func (m *memoryStore) Select(_ context.Context, dest any, query string, _ ...any) error {
	switch {
	case strings.Contains(query, "system.tables"):
		if m.tableExists {
			slice := reflect.ValueOf(dest).Elem()
			row := reflect.New(slice.Type().Elem()).Elem()
			row.FieldByName("Name").SetString(consts.LedgerTable)
			slice.Set(reflect.Append(slice, row))
		}
	case strings.Contains(query, "FROM `ch_migrations`"):
		records := dest.(*[]migrator.AppliedRecord)
		*records = append(*records, m.records...)
	default:
		return errors.Errorf("unexpected query: %s", query)
	}

	return nil
}

func (m *memoryStore) InsertRow(_ context.Context, _ string, row any) error {
	m.records = append(m.records, *row.(*migrator.AppliedRecord))
	return nil
}

func (m *memoryStore) Close() error {
	m.closed = true
	return nil
}

type testApp struct {
	store  *memoryStore
	dialed []*config.Config
	out    bytes.Buffer
}

func (a *testApp) dial(_ context.Context, cfg *config.Config) (Store, error) {
	a.dialed = append(a.dialed, cfg)
	return a.store, nil
}

func (a *testApp) run(t *testing.T, args ...string) error {
	t.Helper()

	app := NewApp(&Version{Version: "test"}, []*cli.Command{
		setup(setupParams{Dialer: a.dial}),
		migration(migrationParams{Loader: config.NewLoader(), Dialer: a.dial}),
	})
	app.Writer = &a.out

	return app.Run(context.Background(), append([]string{"chm"}, args...))
}

func writeUnit(t *testing.T, root, id, up, down string) {
	t.Helper()

	dir := filepath.Join(root, id)
	require.NoError(t, os.MkdirAll(dir, consts.ModeDir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, consts.UpFile), []byte(up), consts.ModeFile))
	require.NoError(t, os.WriteFile(filepath.Join(dir, consts.DownFile), []byte(down), consts.ModeFile))
}

func TestSetupCommand(t *testing.T) {
	t.Run("creates directory and config", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), consts.MigrationsDir)
		app := &testApp{store: &memoryStore{}}

		err := app.run(t, "--dir", root, "setup", "--url", "localhost:9000", "--user", "admin", "--database", "analytics")
		require.NoError(t, err)

		require.Len(t, app.dialed, 1)
		require.True(t, app.store.closed)
		require.Contains(t, app.out.String(), "Created "+filepath.Join(root, consts.ConfigFile))

		cfg, err := config.LoadConfigFile(filepath.Join(root, consts.ConfigFile))
		require.NoError(t, err)
		require.Equal(t, "localhost:9000", cfg.URL)
		require.Equal(t, "admin", cfg.User)
		require.Equal(t, "analytics", cfg.Database)
	})

	t.Run("requires url", func(t *testing.T) {
		t.Setenv(consts.EnvURL, "")
		app := &testApp{store: &memoryStore{}}

		err := app.run(t, "--dir", filepath.Join(t.TempDir(), "m"), "setup")
		require.ErrorIs(t, err, migrator.ErrBadInput)
		require.Empty(t, app.dialed)
	})

	t.Run("fails when directory exists", func(t *testing.T) {
		app := &testApp{store: &memoryStore{}}

		err := app.run(t, "--dir", t.TempDir(), "setup", "--url", "localhost:9000")
		require.ErrorIs(t, err, migrator.ErrBadInput)
	})
}

func TestGenerateCommand(t *testing.T) {
	root := t.TempDir()
	app := &testApp{store: &memoryStore{}}

	require.NoError(t, app.run(t, "--dir", root, "migration", "generate", "create_events"))
	require.Contains(t, app.out.String(), "Created migration ")

	matches, err := filepath.Glob(filepath.Join(root, "*_create_events", consts.UpFile))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	require.ErrorIs(t, app.run(t, "--dir", root, "migration", "generate"), migrator.ErrBadInput)
	require.ErrorIs(t, app.run(t, "--dir", filepath.Join(root, "missing"), "migration", "generate", "x"), migrator.ErrBadInput)
	require.Empty(t, app.dialed)
}

func TestMigrationCommands(t *testing.T) {
	root := t.TempDir()
	writeUnit(t, root, "2024-01-01-000000_create_t", "CREATE TABLE t (x Int32) ENGINE=Memory;", "DROP TABLE t;")
	require.NoError(t, os.WriteFile(filepath.Join(root, consts.ConfigFile), []byte(`url = "localhost:9000"`), consts.ModeSecret))

	app := &testApp{store: &memoryStore{}}

	require.NoError(t, app.run(t, "--dir", root, "migration", "run"))
	require.Equal(t, []string{"CREATE TABLE t (x Int32) ENGINE=Memory"}, app.store.execs)
	require.Len(t, app.store.records, 1)
	require.Contains(t, app.out.String(), "Running migration 2024-01-01-000000_create_t")
	require.Contains(t, app.out.String(), "Applied 2024-01-01-000000_create_t")

	app.out.Reset()
	require.NoError(t, app.run(t, "--dir", root, "migration", "run"))
	require.Contains(t, app.out.String(), "No pending migrations")

	app.out.Reset()
	require.NoError(t, app.run(t, "--dir", root, "migration", "redo"))
	require.Equal(t, []string{"CREATE TABLE t (x Int32) ENGINE=Memory", "DROP TABLE t", "CREATE TABLE t (x Int32) ENGINE=Memory"}, app.store.execs)
	require.Len(t, app.store.records, 1)

	app.out.Reset()
	require.NoError(t, app.run(t, "--dir", root, "migration", "status"))
	require.Contains(t, app.out.String(), "Summary: 1 applied, 0 pending, 0 missing")

	app.out.Reset()
	require.NoError(t, app.run(t, "--dir", root, "migration", "revert"))
	require.Contains(t, app.out.String(), "Reverted 2024-01-01-000000_create_t")
	require.Empty(t, app.store.records)

	err := app.run(t, "--dir", root, "migration", "revert")
	require.ErrorIs(t, err, migrator.ErrNothingToRevert)

	for _, cfg := range app.dialed {
		require.Equal(t, "localhost:9000", cfg.URL)
	}
}

func TestMigrationCommands_CustomTable(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, consts.ConfigFile), []byte(`url = "localhost:9000"`), consts.ModeSecret))

	app := &testApp{store: &memoryStore{}}
	require.NoError(t, app.run(t, "--dir", root, "--table", "ops.schema_versions", "migration", "run"))

	require.Len(t, app.store.execs, 1)
	require.Contains(t, app.store.execs[0], "CREATE TABLE IF NOT EXISTS `ops`.`schema_versions`")
	require.Contains(t, app.out.String(), "No pending migrations")
}

func TestConnectionPrecedence(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, consts.ConfigFile), []byte(`
url = "file:9000"
user = "file_user"
database = "file_db"
password = "file_pass"
`), consts.ModeSecret))

	t.Setenv(consts.EnvURL, "env:9000")
	t.Setenv(consts.EnvUser, "env_user")
	t.Setenv(consts.EnvPassword, "")
	t.Setenv(consts.EnvDatabase, "")

	app := &testApp{store: &memoryStore{}}
	require.NoError(t, app.run(t, "--dir", root, "--url", "flag:9000", "migration", "status"))

	require.Len(t, app.dialed, 1)
	cfg := app.dialed[0]
	require.Equal(t, "flag:9000", cfg.URL)
	require.Equal(t, "env_user", cfg.User)
	require.Equal(t, "file_db", cfg.Database)
	require.Equal(t, "file_pass", cfg.Password)
}

func TestMigrationCommands_MissingURL(t *testing.T) {
	t.Setenv(consts.EnvURL, "")

	app := &testApp{store: &memoryStore{}}
	err := app.run(t, "--dir", t.TempDir(), "migration", "run")

	require.ErrorIs(t, err, migrator.ErrBadInput)
	require.Empty(t, app.dialed)
}
