package cli

import (
	"github.com/spf13/cobra"

	"github.com/jmreicha/aws-login/internal/providers/aws"
)

func newSSOCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sso",
		Short: "Log in to AWS SSO",
		Long: `Log in to AWS SSO with the active profile. If the profile is not configured
for SSO yet, the AWS CLI is asked to configure it instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client := aws.NewClient(executor, application, getenv)

			configured, err := client.IsSSOConfigured(ctx)
			if err != nil {
				return err
			}

			if configured {
				return client.SSOLogin(ctx)
			}

			return client.ConfigureSSO(ctx)
		},
	}

	return cmd
}
