package executor

import "context"

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory. Empty means the current one.
	Dir string
	// Env holds extra KEY=value pairs added to the inherited environment.
	Env []string
}

// Executor defines the interface for executing external commands
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
	Run(ctx context.Context, cmd Command) (string, error)
}
