// Package cmd provides the chm command line interface.
//
// Commands are built with urfave/cli v3 and registered through uber fx: every
// command constructor is provided into the "commands" value group and Run
// assembles them into the root command.
//
// # Available Commands
//
//   - setup: Verify the connection and create the migrations directory with chm.toml
//   - migration generate <name>: Scaffold an empty migration
//   - migration run: Apply all pending migrations
//   - migration revert: Revert the most recently applied migration
//   - migration redo: Revert the most recent migration and run pending ones
//   - migration status: Show applied, pending and missing migrations
//
// # Global Options
//
//   - --dir, -d: Migrations directory (default: ch_migrations)
//   - --table: Ledger table, optionally database qualified (default: ch_migrations, env: CHM_TABLE)
//   - --url, --user, --password, --database: Connection settings
//   - --cafile, --certfile, --keyfile: mTLS settings
//
// Connection settings are resolved from flags, then CLICKHOUSE_* environment
// variables (including a .env file), then chm.toml in the migrations
// directory.
//
// # Example Usage
//
//	chm setup --url localhost:9000 --user default
//	chm migration generate create_events
//	chm migration run
//	chm migration revert
//	chm --dir db/ch_migrations migration status
//
// Any error is logged and the process exits with status 1.
package cmd
