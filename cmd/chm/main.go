package main

import (
	"context"
	"os"

	"github.com/pseudomuto/chm/pkg/cmd"
	"github.com/pseudomuto/chm/pkg/config"
	"go.uber.org/fx"
)

// NB: These are set by GoReleaser during a build.
var (
	version = "dev"
	commit  string
	date    string
)

func main() {
	fx.New(
		fx.NopLogger,
		config.Module,
		cmd.Module,
		fx.Provide(context.Background),
		fx.Supply(
			os.Args,
			&cmd.Version{
				Version:   version,
				Commit:    commit,
				Timestamp: date,
			},
		),
	).Run()
}
