package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmreicha/aws-login/internal/core"
)

func newDebugCmd() *cobra.Command {
	var produceError bool

	cmd := &cobra.Command{
		Use:    "debug",
		Short:  "Produce a known response for testing the error handling",
		Hidden: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			if produceError {
				fmt.Fprintln(application.ErrOutput(), "Producing an error response.")

				return core.Errorf(123, "The --error option was used.").
					WithContext("The subcommand could not complete successfully.")
			}

			_, err := fmt.Fprintln(application.Output(), "Producing a successful response.")
			return err
		},
	}

	cmd.Flags().BoolVarP(&produceError, "error", "e", false, "produce an error response")

	return cmd
}
