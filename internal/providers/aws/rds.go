package aws

import (
	"context"
	"strconv"
	"strings"

	"github.com/jmreicha/aws-login/internal/core"
)

const (
	proxyQuery     = "DBProxies[].[DBProxyName,Endpoint,EngineFamily,RequireTLS,Status]"
	proxyAvailable = "available"

	// DefaultPostgresPort is used when no port is given for PostgreSQL proxies.
	DefaultPostgresPort = "5432"
)

// Proxy is an available RDS Proxy.
type Proxy struct {
	Name       string
	Endpoint   string
	Engine     string
	RequireTLS bool
}

// ListProxies returns the RDS Proxies whose status is available.
func (c *Client) ListProxies(ctx context.Context) ([]Proxy, error) {
	output, err := c.exec.Output(ctx, c.command("rds", "describe-db-proxies", "--query", proxyQuery, "--output", "text"))
	if err != nil {
		return nil, core.WithContext(err, "Could not get RDS Proxy host names from AWS CLI.")
	}

	return parseProxies(output)
}

func parseProxies(output string) ([]Proxy, error) {
	var proxies []Proxy

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 5 {
			return nil, core.Errorf(1, "The RDS Proxy description, %q, could not be read.", line)
		}

		if fields[4] != proxyAvailable {
			continue
		}

		requireTLS, err := strconv.ParseBool(strings.ToLower(fields[3]))
		if err != nil {
			return nil, core.Errorf(1, "The RequireTLS field of the RDS Proxy, %s, is not a boolean value.", fields[0])
		}

		proxies = append(proxies, Proxy{
			Name:       fields[0],
			Endpoint:   fields[1],
			Engine:     fields[2],
			RequireTLS: requireTLS,
		})
	}

	return proxies, nil
}

// GenerateDBAuthToken prints an IAM authentication token for the proxy.
func (c *Client) GenerateDBAuthToken(ctx context.Context, proxy Proxy, port, username string) error {
	if port == "" {
		port = DefaultPostgresPort
	}

	cmd := c.command("rds", "generate-db-auth-token",
		"--hostname", proxy.Endpoint,
		"--port", port,
		"--username", username)

	if err := c.exec.PassThrough(ctx, c.app, cmd); err != nil {
		return core.WithContext(err, "Could not generate an authentication token.")
	}

	return nil
}
