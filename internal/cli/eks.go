package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jmreicha/aws-login/internal/core"
	"github.com/jmreicha/aws-login/internal/providers/aws"
	"github.com/jmreicha/aws-login/internal/providers/kubernetes"
)

func newEKSCmd() *cobra.Command {
	var kubeconfig string

	cmd := &cobra.Command{
		Use:   "eks [cluster]",
		Short: "Configure kubectl for an EKS cluster",
		Long: `Configure kubectl for an EKS cluster using the AWS CLI.
If no cluster is given, the available clusters are listed for selection.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := aws.NewClient(executor, application, getenv)

			clusters, err := client.ListClusters(ctx)
			if err != nil {
				return err
			}

			var cluster string
			if len(args) == 1 {
				cluster = args[0]
				if !slices.Contains(clusters, cluster) {
					return core.Errorf(1, "The specified cluster is not available.")
				}
			} else {
				if len(clusters) == 0 {
					return core.Errorf(1, "There are no EKS clusters available.")
				}

				cluster, err = selector.Select("Please select an EKS cluster to setup:", clusters)
				if err != nil {
					return core.WithContext(err, "Unable to select an EKS cluster.")
				}
			}

			if err := client.UpdateKubeconfig(ctx, cluster, kubeconfig); err != nil {
				return err
			}

			current, err := kubernetes.CurrentContext(kubeconfig)
			if err != nil {
				logger.Debug("could not read the updated kubeconfig", "error", err)
				return nil
			}

			fmt.Fprint(application.ErrOutput(), current.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "kubeconfig file to update (default: the AWS CLI default)")

	return cmd
}
