// Package cmd provides CLI commands for the projectx tool.
//
// This package implements the command-line interface for projectx, covering
// project initialization, the local environment engine, project type setup and
// install, task runner and CI scaffolding, deployment builds and GitHub issues.
//
// # Available Commands
//
//   - init: Write project-x.yml (from flags or an interactive form)
//   - tasks generate|list: Scaffold RoboFile.php and list task runner commands
//   - ci generate: Scaffold the CI workflow
//   - engine install|up|down|start|stop|restart|rebuild|exec|status: Manage the environment
//   - project setup|install: Generate the project files and install the project
//   - deploy build: Create (and with --push publish) a production build
//   - github issues|assign: List and assign repository issues
//   - report: Summarize the project as markdown
//   - types: List the available engine, project and platform types
//
// # Command Structure
//
// Each command is implemented as a separate function that takes the shared
// *Runtime and returns a *cli.Command, following the urfave/cli/v3 pattern.
// Commands are registered with fx through the "commands" value group.
//
// The root command's Before hook changes into the project directory and calls
// Runtime.Load, which reads the configuration and builds the type resolvers
// for every category. Plugin types are discovered lazily from the installed
// composer packages.
//
// # Command Hooks
//
// Lifecycle commands (engine actions, project setup and install, deploy build)
// run the command_hooks configured for <command>.<action> before and after the
// operation:
//
//	command_hooks:
//	  engine:
//	    up:
//	      after:
//	        - echo "environment is up"
//	        - type: command
//	          command: project:install
//
// # Global Options
//
//   - --dir, -d: Specify project directory (defaults to current directory)
//   - --verbose: Enable debug logging
//   - --help, -h: Display command help
//   - --version: Display version information
package cmd
