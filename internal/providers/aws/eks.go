package aws

import (
	"context"
	"strings"

	"github.com/jmreicha/aws-login/internal/core"
)

// ListClusters returns the names of the EKS clusters in the region.
func (c *Client) ListClusters(ctx context.Context) ([]string, error) {
	output, err := c.exec.Output(ctx, c.command("eks", "list-clusters", "--query", "clusters", "--output", "text"))
	if err != nil {
		return nil, core.WithContext(err, "The list of available EKS clusters could not be retrieved from the AWS CLI.")
	}

	return strings.Fields(output), nil
}

// UpdateKubeconfig has the AWS CLI add the cluster to the kubeconfig. An
// empty kubeconfig leaves the location to the AWS CLI.
func (c *Client) UpdateKubeconfig(ctx context.Context, cluster, kubeconfig string) error {
	cmd := c.command("eks", "update-kubeconfig", "--name", cluster)
	if kubeconfig != "" {
		cmd = cmd.Arg("--kubeconfig", kubeconfig)
	}

	if err := c.exec.PassThrough(ctx, c.app, cmd); err != nil {
		return core.WithContext(err, "Could not get the AWS CLI to configure kubectl.")
	}

	return nil
}
