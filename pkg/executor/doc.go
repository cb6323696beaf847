// Package executor runs external commands (docker, composer, drush, git) on
// behalf of projectx components.
//
// Commands run synchronously: the caller waits for completion and inspects the
// result. A non-zero exit status is a terminal failure for the containing
// operation and is reported as a *CommandError carrying the task name and exit
// code. Nothing is retried.
//
// # Core Components
//
//   - Runner: executes tasks, optionally stopping at the first failure
//   - Task: a named command line with its working directory and environment
//   - ExecutionResult: status, exit code and timing of a single task
//   - ExecCommandFunc: the injectable exec.Cmd factory used in tests
//
// # Usage Example
//
//	runner := executor.New(executor.Config{Stdout: os.Stdout, Stderr: os.Stderr})
//
//	result, err := runner.Run(ctx, executor.Task{
//		Name:    "composer install",
//		Command: "composer",
//		Args:    []string{"install", "--no-interaction"},
//		Dir:     proj.Root(),
//	})
//	if err != nil {
//		var cmdErr *executor.CommandError
//		if errors.As(err, &cmdErr) {
//			fmt.Printf("%s exited with %d\n", cmdErr.Task, cmdErr.ExitCode)
//		}
//	}
//
//	fmt.Printf("%s: %s in %v\n", result.Task, result.Status, result.ExecutionTime)
package executor
