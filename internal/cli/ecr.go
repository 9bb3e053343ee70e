package cli

import (
	"github.com/spf13/cobra"

	"github.com/jmreicha/aws-login/internal/providers/aws"
)

func newECRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ecr",
		Short: "Log docker in to the account's ECR registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client := aws.NewClient(executor, application, getenv)

			registryURI, err := client.RegistryURI(ctx)
			if err != nil {
				return err
			}

			password, err := client.LoginPassword(ctx)
			if err != nil {
				return err
			}

			return client.DockerLogin(ctx, password, registryURI)
		},
	}

	return cmd
}
