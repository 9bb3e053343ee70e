// Package run invokes external programs such as the AWS CLI and docker.
package run

import (
	"github.com/jmreicha/aws-login/internal/core"
)

// Command describes one invocation of an external program. It is a value:
// Arg and WithAWSOptions return a new Command and never modify the receiver.
type Command struct {
	Program string
	Args    []string
}

// New creates a command for program with the given arguments.
func New(program string, args ...string) Command {
	return Command{Program: program}.Arg(args...)
}

// Arg returns a copy of the command with values appended to its arguments.
func (c Command) Arg(values ...string) Command {
	args := make([]string, 0, len(c.Args)+len(values))
	args = append(args, c.Args...)
	args = append(args, values...)

	return Command{Program: c.Program, Args: args}
}

// WithAWSOptions appends --profile and --region when the application
// carries those overrides, in that order.
func (c Command) WithAWSOptions(app *core.Application) Command {
	if app == nil {
		return c
	}

	if app.Profile != "" {
		c = c.Arg("--profile", app.Profile)
	}
	if app.Region != "" {
		c = c.Arg("--region", app.Region)
	}

	return c
}
