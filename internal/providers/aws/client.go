// Package aws shapes calls to the AWS CLI for every aws-login subcommand.
package aws

import (
	"context"
	"os"
	"strings"

	"github.com/jmreicha/aws-login/internal/core"
	"github.com/jmreicha/aws-login/internal/run"
	"github.com/jmreicha/aws-login/internal/templates"
)

// Program is the AWS CLI binary name.
const Program = "aws"

// Client runs AWS CLI commands with the application's profile and region.
type Client struct {
	exec   run.Executor
	app    *core.Application
	getenv func(string) string

	// ConfigFiles overrides the shared config files read for SSO checks.
	ConfigFiles []string

	// CredentialsFiles overrides the shared credentials files read for SSO checks.
	CredentialsFiles []string
}

// NewClient creates a client. getenv reads the AWS CLI environment
// variables; nil uses the process environment.
func NewClient(exec run.Executor, app *core.Application, getenv func(string) string) *Client {
	if getenv == nil {
		getenv = os.Getenv
	}

	return &Client{exec: exec, app: app, getenv: getenv}
}

func (c *Client) command(args ...string) run.Command {
	return run.New(Program).WithAWSOptions(c.app).Arg(args...)
}

// ListProfiles returns the profiles the AWS CLI already knows about. The
// profile override is not passed since it may name a profile that does not
// exist yet.
func (c *Client) ListProfiles(ctx context.Context) ([]string, error) {
	output, err := c.exec.Output(ctx, run.New(Program, "configure", "list-profiles"))
	if err != nil {
		return nil, core.WithContext(err, "Could not get a list of existing AWS CLI profiles.")
	}

	return strings.Fields(output), nil
}

// CreateProfile writes every setting of profile into the AWS CLI
// configuration, one `aws configure set` call per key in sorted order.
func (c *Client) CreateProfile(ctx context.Context, profile templates.Profile) error {
	c.app.Logger.Debug("creating profile", "profile", profile.Name, "settings", len(profile.Settings))

	for _, key := range profile.Keys() {
		cmd := run.New(Program, "--profile", profile.Name, "configure", "set", key, profile.Settings[key])
		if err := c.exec.PassThrough(ctx, c.app, cmd); err != nil {
			return core.WithContextf(err, "Could not set the profile setting, %s.", key)
		}
	}

	return nil
}

// Region returns the region override or the region configured in the AWS CLI.
func (c *Client) Region(ctx context.Context) (string, error) {
	if c.app.Region != "" {
		return c.app.Region, nil
	}

	output, err := c.exec.Output(ctx, c.command("configure", "get", "region"))
	if err != nil {
		// configure get exits 1 without a message when the key is unset.
		if appErr := core.AsError(err); appErr.Status != 1 || strings.TrimSpace(appErr.Message) != "" {
			return "", core.WithContext(err, "Could not get default region from AWS CLI.")
		}
	}

	region := strings.TrimSpace(output)
	if region == "" {
		return "", core.Errorf(1, "The region could not be determined.")
	}

	return region, nil
}
