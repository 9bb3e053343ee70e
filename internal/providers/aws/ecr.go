package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"

	"github.com/jmreicha/aws-login/internal/core"
	"github.com/jmreicha/aws-login/internal/run"
)

// AccountID returns the account of the caller's identity.
func (c *Client) AccountID(ctx context.Context) (string, error) {
	output, err := c.exec.Output(ctx, c.command("sts", "get-caller-identity", "--query", "Arn", "--output", "text"))
	if err != nil {
		return "", core.WithContext(err, "Could not get account ID from AWS CLI.")
	}

	identity, err := arn.Parse(strings.TrimSpace(output))
	if err != nil {
		return "", core.NewError(1).
			WithMessagef("The caller identity, %s, is not a valid ARN.", strings.TrimSpace(output)).
			WithContext("Could not get account ID from AWS CLI.")
	}

	return identity.AccountID, nil
}

// RegistryURI returns the ECR registry of the caller's account and region.
func (c *Client) RegistryURI(ctx context.Context) (string, error) {
	accountID, err := c.AccountID(ctx)
	if err != nil {
		return "", err
	}

	region, err := c.Region(ctx)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s.dkr.ecr.%s.amazonaws.com", accountID, region), nil
}

// LoginPassword returns a temporary password for the ECR registry.
func (c *Client) LoginPassword(ctx context.Context) (string, error) {
	output, err := c.exec.Output(ctx, c.command("ecr", "get-login-password"))
	if err != nil {
		return "", core.WithContext(err, "Could not generate ECR password.")
	}

	return strings.TrimSpace(output), nil
}

// DockerLogin configures docker to use the registry.
func (c *Client) DockerLogin(ctx context.Context, password, registryURI string) error {
	cmd := run.New("docker", "login", "--username", "AWS", "--password", password, registryURI)
	if err := c.exec.PassThrough(ctx, c.app, cmd); err != nil {
		return core.WithContext(err, "Docker could not be configured to use the registry.")
	}

	return nil
}
