package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmreicha/aws-login/internal/core"
	"github.com/jmreicha/aws-login/internal/providers/aws"
)

const postgresEngine = "POSTGRESQL"

func newRDSCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "rds <username>",
		Short: "Generate an IAM authentication token for an RDS Proxy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := aws.NewClient(executor, application, getenv)

			proxies, err := client.ListProxies(ctx)
			if err != nil {
				return err
			}
			if len(proxies) == 0 {
				return core.Errorf(1, "There are no available RDS Proxies.")
			}

			names := make([]string, 0, len(proxies))
			byName := make(map[string]aws.Proxy, len(proxies))
			for _, proxy := range proxies {
				names = append(names, proxy.Name)
				byName[proxy.Name] = proxy
			}

			selected, err := selector.Select("Please select an RDS Proxy:", names)
			if err != nil {
				return err
			}
			proxy := byName[selected]

			if proxy.Engine != postgresEngine && port == "" {
				return core.Errorf(1, "The database server port number is required for %s engines.", proxy.Engine)
			}

			if proxy.RequireTLS {
				fmt.Fprintln(application.ErrOutput(), "Warning: This connection requires TLS to be used.")
				fmt.Fprintln(application.ErrOutput())
			}

			return client.GenerateDBAuthToken(ctx, proxy, port, args[0])
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "database server port (default: 5432 for PostgreSQL)")

	return cmd
}
