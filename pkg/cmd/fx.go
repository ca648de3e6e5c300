package cmd

import "go.uber.org/fx"

var Module = fx.Module("cli",
	fx.Provide(
		func() Dialer { return Dial },
		fx.Annotate(setup, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(migration, fx.ResultTags(`group:"commands"`)),
	),
	fx.Invoke(Run),
)
