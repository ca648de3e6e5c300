package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pseudomuto/chm/pkg/consts"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type (
	Params struct {
		fx.In

		Args       []string
		Commands   []*cli.Command `group:"commands"`
		Ctx        context.Context
		Lifecycle  fx.Lifecycle
		Shutdowner fx.Shutdowner
		Version    *Version
	}

	Version struct {
		Version   string
		Commit    string
		Timestamp string
	}
)

// Run creates and executes the chm CLI application with the registered
// commands and command-line arguments.
//
// The command runs in an fx start hook. Once it returns, the fx application is
// shut down with exit code 0, or 1 if the command failed.
//
// Example usage:
//
//	fx.New(
//		config.Module,
//		cmd.Module,
//		fx.Supply(os.Args, &cmd.Version{Version: "v1.0.0"}),
//	).Run()
func Run(p Params) {
	app := NewApp(p.Version, p.Commands)

	p.Lifecycle.Append(fx.StartHook(func() {
		if err := app.Run(p.Ctx, p.Args); err != nil {
			slog.Error("Error running command", "err", err)
			_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
			return
		}

		_ = p.Shutdowner.Shutdown(fx.ExitCode(0))
	}))
}

// NewApp returns the root command with the global flags and the given
// subcommands.
func NewApp(version *Version, commands []*cli.Command) *cli.Command {
	if version == nil {
		version = &Version{Version: "dev"}
	}

	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Root().Writer, "Version:", version.Version)
		fmt.Fprintln(cmd.Root().Writer, "Commit:", version.Commit)
		fmt.Fprintln(cmd.Root().Writer, "Date:", version.Timestamp)
	}

	return &cli.Command{
		Name:  "chm",
		Usage: "A tool for managing ClickHouse migrations",
		Description: `chm applies and reverts hand written ClickHouse migrations.

Each migration is a directory named <YYYY-MM-DD-HHMMSS>_<name> holding an up.sql
and a down.sql. Applied migrations are recorded in the ch_migrations table (see
--table) of the target database.`,
		Version: version.Version,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "the migrations directory",
				Value:   consts.MigrationsDir,
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.StringFlag{
				Name:    "table",
				Usage:   "the table recording applied migrations (may be qualified, e.g. ops.ch_migrations)",
				Value:   consts.LedgerTable,
				Sources: cli.EnvVars(consts.EnvTable),
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		}, connectionFlags()...),
		Commands: commands,
	}
}
