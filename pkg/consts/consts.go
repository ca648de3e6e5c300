package consts

import "os"

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)

	// ModeSecret is used for files that may contain credentials (chm.toml)
	ModeSecret = os.FileMode(0o600)

	// MigrationsDir is the default name of the migrations root directory
	MigrationsDir = "ch_migrations"

	// ConfigFile is the connection config persisted by `chm setup`
	ConfigFile = "chm.toml"

	// UpFile and DownFile are the forward and backward bodies of a unit
	UpFile   = "up.sql"
	DownFile = "down.sql"

	// LedgerTable records which units have been applied
	LedgerTable = "ch_migrations"

	// VersionLayout is the time layout of a unit version (YYYY-MM-DD-HHMMSS)
	VersionLayout = "2006-01-02-150405"
)

// Environment variables consulted for connection settings.
const (
	EnvURL      = "CLICKHOUSE_URL"
	EnvUser     = "CLICKHOUSE_USER"
	EnvPassword = "CLICKHOUSE_PASSWORD"
	EnvDatabase = "CLICKHOUSE_DB"
	EnvTable    = "CHM_TABLE"
)

// ConfigFiles lists the config file names recognized in the migrations root,
// in lookup order.
var ConfigFiles = []string{ConfigFile, "chm.yaml", "chm.yml"}
