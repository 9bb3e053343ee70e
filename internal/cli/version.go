package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmreicha/aws-login/internal/core"
)

func newVersionCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(application.Output(), "%s version %s\n", core.AppName, version)
			return err
		},
	}

	return cmd
}
