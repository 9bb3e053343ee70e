package aws

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/config"

	"github.com/jmreicha/aws-login/internal/core"
)

// profileVars are read in order when no profile override is given.
var profileVars = []string{"AWS_PROFILE", "AWS_DEFAULT_PROFILE"}

// ActiveProfile returns the profile the AWS CLI will use: the override,
// then AWS_PROFILE, then AWS_DEFAULT_PROFILE, then the default profile.
func (c *Client) ActiveProfile() string {
	if c.app.Profile != "" {
		return c.app.Profile
	}
	for _, name := range profileVars {
		if profile := c.getenv(name); profile != "" {
			return profile
		}
	}

	return config.DefaultSharedConfigProfile
}

// IsSSOConfigured reports whether the active profile has every setting
// required by `aws sso login`, either directly or through its sso-session.
func (c *Client) IsSSOConfigured(ctx context.Context) (bool, error) {
	profile := c.ActiveProfile()

	shared, err := config.LoadSharedConfigProfile(ctx, profile, func(opts *config.LoadSharedConfigOptions) {
		if files := c.sharedFiles(c.ConfigFiles, "AWS_CONFIG_FILE"); files != nil {
			opts.ConfigFiles = files
		}
		if files := c.sharedFiles(c.CredentialsFiles, "AWS_SHARED_CREDENTIALS_FILE"); files != nil {
			opts.CredentialsFiles = files
		}
	})
	if err != nil {
		var notExist config.SharedConfigProfileNotExistError
		if errors.As(err, &notExist) {
			c.app.Logger.Debug("profile not found in shared config", "profile", profile)
			return false, nil
		}

		return false, core.WithContextf(err, "Could not read the configuration of the profile, %s.", profile)
	}

	region, startURL := shared.SSORegion, shared.SSOStartURL
	if shared.SSOSession != nil {
		if region == "" {
			region = shared.SSOSession.SSORegion
		}
		if startURL == "" {
			startURL = shared.SSOSession.SSOStartURL
		}
	}

	configured := shared.SSOAccountID != "" && shared.SSORoleName != "" && region != "" && startURL != ""
	c.app.Logger.Debug("checked sso settings", "profile", profile, "configured", configured)

	return configured, nil
}

// sharedFiles returns the explicit files, then the file named by the
// environment variable, or nil to keep the SDK default.
func (c *Client) sharedFiles(explicit []string, envVar string) []string {
	if explicit != nil {
		return explicit
	}
	if path := c.getenv(envVar); path != "" {
		return []string{path}
	}

	return nil
}

// SSOLogin runs `aws sso login`.
func (c *Client) SSOLogin(ctx context.Context) error {
	if err := c.exec.PassThrough(ctx, c.app, c.command("sso", "login")); err != nil {
		return core.WithContext(err, "Could not log in via SSO.")
	}

	return nil
}

// ConfigureSSO runs `aws configure sso`.
func (c *Client) ConfigureSSO(ctx context.Context) error {
	if err := c.exec.PassThrough(ctx, c.app, c.command("configure", "sso")); err != nil {
		return core.WithContext(err, "Could not configure AWS CLI profile for SSO.")
	}

	return nil
}
