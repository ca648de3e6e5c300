package project_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pseudomuto/chm/pkg/config"
	"github.com/pseudomuto/chm/pkg/consts"
	"github.com/pseudomuto/chm/pkg/migrator"
	"github.com/pseudomuto/chm/pkg/project"
	"github.com/stretchr/testify/require"
)

func TestProjectInitialize(t *testing.T) {
	t.Run("creates root and persists config", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), consts.MigrationsDir)
		proj := project.New(root)

		cfg := &config.Config{URL: "localhost:9000", User: "default", Password: "secret", Database: "analytics"}
		require.NoError(t, proj.Initialize(cfg))

		require.DirExists(t, root)
		require.FileExists(t, proj.ConfigPath())

		info, err := os.Stat(proj.ConfigPath())
		require.NoError(t, err)
		require.Equal(t, consts.ModeSecret, info.Mode().Perm())

		loaded, err := config.LoadConfigFile(proj.ConfigPath())
		require.NoError(t, err)
		require.Equal(t, cfg, loaded)
	})

	t.Run("fails when root exists", func(t *testing.T) {
		root := t.TempDir()
		keep := filepath.Join(root, consts.ConfigFile)
		require.NoError(t, os.WriteFile(keep, []byte(`url = "keep:9000"`), consts.ModeFile))

		err := project.New(root).Initialize(&config.Config{URL: "localhost:9000"})
		require.ErrorIs(t, err, migrator.ErrBadInput)

		data, err := os.ReadFile(keep)
		require.NoError(t, err)
		require.Equal(t, `url = "keep:9000"`, string(data))
	})
}

func TestProjectGenerateMigration(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 30, 5, 0, time.UTC)

	t.Run("creates empty unit", func(t *testing.T) {
		root := t.TempDir()
		proj := project.New(root)

		unit, err := proj.GenerateMigration("create_events", now)
		require.NoError(t, err)
		require.Equal(t, "2024-03-15-093005", unit.Version)
		require.Equal(t, "create_events", unit.Name)

		dir := filepath.Join(root, "2024-03-15-093005_create_events")
		require.FileExists(t, filepath.Join(dir, consts.UpFile))
		require.FileExists(t, filepath.Join(dir, consts.DownFile))

		body, err := unit.ForwardBody()
		require.NoError(t, err)
		require.Empty(t, body)

		catalog, err := migrator.LoadCatalog(root)
		require.NoError(t, err)
		require.Equal(t, []string{"2024-03-15-093005"}, catalog.Versions())
	})

	t.Run("versions use UTC", func(t *testing.T) {
		loc := time.FixedZone("EST", -5*60*60)

		unit, err := project.New(t.TempDir()).GenerateMigration("tz", now.In(loc))
		require.NoError(t, err)
		require.Equal(t, "2024-03-15-093005", unit.Version)
	})

	t.Run("fails without root", func(t *testing.T) {
		_, err := project.New(filepath.Join(t.TempDir(), "missing")).GenerateMigration("x", now)
		require.ErrorIs(t, err, migrator.ErrBadInput)
		require.Contains(t, err.Error(), "chm setup")
	})

	t.Run("fails on collision", func(t *testing.T) {
		proj := project.New(t.TempDir())

		_, err := proj.GenerateMigration("dup", now)
		require.NoError(t, err)

		_, err = proj.GenerateMigration("dup", now)
		require.ErrorIs(t, err, migrator.ErrBadInput)
	})
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple", input: "create_events"},
		{name: "dashes", input: "add-ttl"},
		{name: "empty", input: "", wantErr: true},
		{name: "blank", input: "  ", wantErr: true},
		{name: "slash", input: "a/b", wantErr: true},
		{name: "backslash", input: `a\b`, wantErr: true},
		{name: "dot dot", input: "..", wantErr: true},
		{name: "hidden", input: ".hidden", wantErr: true},
		{name: "space", input: "create events", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := project.ValidateName(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, migrator.ErrBadInput)
				return
			}
			require.NoError(t, err)
		})
	}
}
