package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pseudomuto/chm/pkg/project"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type setupParams struct {
	fx.In

	Dialer Dialer
}

// setup creates the setup command.
//
// Example usage:
//
//	# Connect, create ch_migrations/ and persist the settings to ch_migrations/chm.toml
//	chm setup --url localhost:9000 --user default --database analytics
//
//	# Use a different migrations directory
//	chm --dir db/migrations setup --url https://ch.example.com:8443
func setup(p setupParams) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the migrations directory and save connection settings",
		Description: `Verify the ClickHouse connection and create the migrations directory.

The connection settings are written to chm.toml inside the migrations
directory, where later commands pick them up. The directory must not exist yet.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runSetup(ctx, cmd, p)
		},
	}
}

func runSetup(ctx context.Context, cmd *cli.Command, p setupParams) error {
	cfg := connectionOverrides(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := p.Dialer(ctx, &cfg)
	if err != nil {
		return err
	}
	_ = store.Close()

	proj := project.New(migrationsRoot(cmd))
	if err := proj.Initialize(&cfg); err != nil {
		return err
	}

	slog.Info("Initialized migrations directory", "dir", proj.Root())
	fmt.Fprintf(cmd.Root().Writer, "Created %s\n", proj.ConfigPath())
	return nil
}
