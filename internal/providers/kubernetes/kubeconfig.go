// Package kubernetes inspects the kubeconfig written by `aws eks update-kubeconfig`.
package kubernetes

import (
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/tools/clientcmd/api"

	"github.com/jmreicha/aws-login/internal/core"
)

// Context describes the current context of a kubeconfig.
type Context struct {
	Name      string
	Cluster   string
	Server    string
	User      string
	Namespace string
}

// String renders the context for the user.
func (c Context) String() string {
	var b strings.Builder
	b.WriteString("Current context: " + c.Name + "\n")
	b.WriteString("  Cluster:   " + c.Cluster + "\n")
	if c.Server != "" {
		b.WriteString("  Server:    " + c.Server + "\n")
	}
	b.WriteString("  Namespace: " + c.Namespace + "\n")

	return b.String()
}

// LoadKubeconfig reads the kubeconfig at path, or the files named by
// KUBECONFIG and the default location when path is empty.
func LoadKubeconfig(path string) (*api.Config, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if path != "" {
		rules.ExplicitPath = path
	}

	config, err := rules.Load()
	if err != nil {
		return nil, core.WithContext(err, "Could not read the kubeconfig.")
	}

	return config, nil
}

// CurrentContext returns the current context of the kubeconfig at path.
func CurrentContext(path string) (Context, error) {
	config, err := LoadKubeconfig(path)
	if err != nil {
		return Context{}, err
	}

	return currentContext(config)
}

func currentContext(config *api.Config) (Context, error) {
	name := config.CurrentContext
	if name == "" {
		return Context{}, core.Errorf(1, "The kubeconfig does not have a current context.")
	}

	kubeContext, ok := config.Contexts[name]
	if !ok || kubeContext == nil {
		return Context{}, core.Errorf(1, "The current context, %s, is not defined in the kubeconfig.", name)
	}

	current := Context{
		Name:      name,
		Cluster:   kubeContext.Cluster,
		User:      kubeContext.AuthInfo,
		Namespace: kubeContext.Namespace,
	}
	if current.Namespace == "" {
		current.Namespace = metav1.NamespaceDefault
	}
	if cluster, ok := config.Clusters[kubeContext.Cluster]; ok && cluster != nil {
		current.Server = cluster.Server
	}

	return current, nil
}
