package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/chm/pkg/config"
	"github.com/pseudomuto/chm/pkg/executor"
	"github.com/pseudomuto/chm/pkg/migrator"
	"github.com/pseudomuto/chm/pkg/project"
	"github.com/pseudomuto/chm/pkg/runner"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type migrationParams struct {
	fx.In

	Loader *config.Loader
	Dialer Dialer
}

// migration creates the migration command and its subcommands.
//
// Example usage:
//
//	chm migration generate create_events
//	chm migration run
//	chm migration revert
//	chm migration redo
//	chm migration status
func migration(p migrationParams) *cli.Command {
	return &cli.Command{
		Name:  "migration",
		Usage: "Generate, apply and revert migrations",
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Usage:     "Create an empty migration",
				ArgsUsage: "<name>",
				Description: `Create <YYYY-MM-DD-HHMMSS>_<name>/ with empty up.sql and down.sql files in
the migrations directory. The version is the current UTC time.`,
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runGenerate(cmd, time.Now())
				},
			},
			{
				Name:  "run",
				Usage: "Apply all pending migrations",
				Description: `Apply every migration that is not recorded in the ch_migrations table,
oldest first. Execution stops at the first failing statement.

Statements that ran before a failure are not rolled back; ClickHouse has no
transactional DDL. Fix the database by hand before running again.`,
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withRunner(ctx, cmd, p, runMigrations)
				},
			},
			{
				Name:  "revert",
				Usage: "Revert the most recently applied migration",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withRunner(ctx, cmd, p, revertMigration)
				},
			},
			{
				Name:  "redo",
				Usage: "Revert the most recently applied migration, then run pending migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withRunner(ctx, cmd, p, redoMigration)
				},
			},
			{
				Name:  "status",
				Usage: "Show applied, pending and missing migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withRunner(ctx, cmd, p, showStatus)
				},
			},
		},
	}
}

func runGenerate(cmd *cli.Command, now time.Time) error {
	if cmd.Args().Len() != 1 {
		return errors.Wrap(migrator.ErrBadInput, "expected exactly one migration name")
	}

	unit, err := project.New(migrationsRoot(cmd)).GenerateMigration(cmd.Args().First(), now)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "Created migration %s\n", unit.ID())
	return nil
}

func withRunner(
	ctx context.Context,
	cmd *cli.Command,
	p migrationParams,
	fn func(context.Context, *cli.Command, *runner.Runner) error,
) error {
	r, store, err := openRunner(ctx, cmd, p.Loader, p.Dialer)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return fn(ctx, cmd, r)
}

func runMigrations(ctx context.Context, cmd *cli.Command, r *runner.Runner) error {
	results, err := r.Run(ctx)
	if err != nil {
		return err
	}

	reportApplied(cmd, results)
	return nil
}

func revertMigration(ctx context.Context, cmd *cli.Command, r *runner.Runner) error {
	result, err := r.Revert(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "Reverted %s_%s (%d statements)\n", result.Version, result.Name, result.StatementsApplied)
	return nil
}

func redoMigration(ctx context.Context, cmd *cli.Command, r *runner.Runner) error {
	results, err := r.Redo(ctx)
	if err != nil {
		return err
	}

	reportApplied(cmd, results)
	return nil
}

func showStatus(ctx context.Context, cmd *cli.Command, r *runner.Runner) error {
	status, err := r.Status(ctx)
	if err != nil {
		return err
	}

	printStatus(cmd.Root().Writer, r.Root(), status)
	return nil
}

func reportApplied(cmd *cli.Command, results []*executor.ExecutionResult) {
	w := cmd.Root().Writer

	if len(results) == 0 {
		fmt.Fprintln(w, "No pending migrations")
		return
	}

	for _, result := range results {
		fmt.Fprintf(w, "Applied %s_%s in %v (%d statements)\n",
			result.Version,
			result.Name,
			result.ExecutionTime.Round(time.Millisecond),
			result.StatementsApplied,
		)
	}
}
