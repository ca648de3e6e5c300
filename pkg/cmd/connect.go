package cmd

import (
	"context"
	"log/slog"

	"github.com/pseudomuto/chm/pkg/clickhouse"
	"github.com/pseudomuto/chm/pkg/config"
	"github.com/pseudomuto/chm/pkg/migrator"
	"github.com/pseudomuto/chm/pkg/runner"
	"github.com/urfave/cli/v3"
)

type (
	// Store is an open ClickHouse connection.
	Store interface {
		migrator.ClickHouse
		Close() error
	}

	// Dialer opens a Store for the resolved connection config.
	Dialer func(context.Context, *config.Config) (Store, error)

	versioned interface {
		GetVersion(context.Context) (*clickhouse.VersionInfo, error)
	}
)

// Dial connects to ClickHouse and pings it.
func Dial(ctx context.Context, cfg *config.Config) (Store, error) {
	client, err := clickhouse.NewClientWithOptions(ctx, cfg.URL, cfg.ClientOptions())
	if err != nil {
		return nil, &migrator.StoreError{Op: "connect", Err: err}
	}

	return client, nil
}

// openRunner resolves the connection config for the migrations root, connects
// and returns a Runner. The caller must close the returned Store.
func openRunner(ctx context.Context, cmd *cli.Command, loader *config.Loader, dial Dialer) (*runner.Runner, Store, error) {
	root := migrationsRoot(cmd)

	cfg, err := loader.Load(root, connectionOverrides(cmd))
	if err != nil {
		return nil, nil, err
	}

	table := ledgerTable(cmd)
	slog.Info("Connecting to ClickHouse",
		"url", cfg.URL,
		"database", cfg.Database,
		"mtls", cfg.ClientOptions().HasTLS(),
		"dir", root,
		"table", table,
	)

	store, err := dial(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	r := runner.New(runner.Config{
		Root:          root,
		ClickHouse:    store,
		LedgerOptions: append([]migrator.LedgerOption{migrator.WithTable(table)}, ledgerOptions(ctx, store)...),
		Output:        cmd.Root().Writer,
	})

	return r, store, nil
}

// ledgerOptions falls back to mutation deletes on servers without lightweight
// DELETE support.
func ledgerOptions(ctx context.Context, store Store) []migrator.LedgerOption {
	v, ok := store.(versioned)
	if !ok {
		return nil
	}

	info, err := v.GetVersion(ctx)
	if err != nil {
		slog.Warn("Could not determine ClickHouse version", "error", err)
		return nil
	}

	slog.Info("Connected to ClickHouse", "version", info.String())
	if !info.SupportsLightweightDelete() {
		return []migrator.LedgerOption{migrator.WithMutationDelete()}
	}

	return nil
}
