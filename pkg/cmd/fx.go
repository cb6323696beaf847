package cmd

import "go.uber.org/fx"

var Module = fx.Module("cli",
	fx.Provide(
		newRuntime,
		fx.Annotate(ciCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(deployCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(engineCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(githubCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(initCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(projectCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(reportCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(tasksCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(typesCmd, fx.ResultTags(`group:"commands"`)),
	),
	fx.Invoke(Run),
)
