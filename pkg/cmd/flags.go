package cmd

import (
	"github.com/pseudomuto/chm/pkg/config"
	"github.com/pseudomuto/chm/pkg/consts"
	"github.com/urfave/cli/v3"
)

func connectionFlags() []cli.Flag {
	trim := cli.StringConfig{TrimSpace: true}

	return []cli.Flag{
		&cli.StringFlag{
			Name:    "url",
			Aliases: []string{"u"},
			Usage:   "ClickHouse address (e.g. localhost:9000, clickhouse://host:9000, https://host:8443)",
			Sources: cli.EnvVars(consts.EnvURL),
			Config:  trim,
		},
		&cli.StringFlag{
			Name:    "user",
			Usage:   "ClickHouse user",
			Sources: cli.EnvVars(consts.EnvUser),
			Config:  trim,
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "ClickHouse password",
			Sources: cli.EnvVars(consts.EnvPassword),
		},
		&cli.StringFlag{
			Name:    "database",
			Usage:   "ClickHouse database",
			Sources: cli.EnvVars(consts.EnvDatabase),
			Config:  trim,
		},
		&cli.StringFlag{
			Name:   "cafile",
			Usage:  "Certificate authority pem",
			Config: trim,
		},
		&cli.StringFlag{
			Name:   "certfile",
			Usage:  "Certificate public key file",
			Config: trim,
		},
		&cli.StringFlag{
			Name:   "keyfile",
			Usage:  "Certificate private key file",
			Config: trim,
		},
	}
}

// connectionOverrides collects the connection settings given as flags or
// environment variables.
func connectionOverrides(cmd *cli.Command) config.Config {
	return config.Config{
		URL:      cmd.String("url"),
		User:     cmd.String("user"),
		Password: cmd.String("password"),
		Database: cmd.String("database"),
		CAFile:   cmd.String("cafile"),
		CertFile: cmd.String("certfile"),
		KeyFile:  cmd.String("keyfile"),
	}
}

func migrationsRoot(cmd *cli.Command) string {
	return cmd.String("dir")
}

func ledgerTable(cmd *cli.Command) string {
	if table := cmd.String("table"); table != "" {
		return table
	}

	return consts.LedgerTable
}
