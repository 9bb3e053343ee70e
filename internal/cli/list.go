package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the profiles available from templates",
		Long:  "List every enabled profile template after resolving its inheritance chain.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			profiles, err := store.Profiles()
			if err != nil {
				return err
			}

			out := application.Output()
			if len(profiles) == 0 {
				fmt.Fprintln(out, "No profile templates found")
				return nil
			}

			fmt.Fprintln(out, "Available profiles:")
			for _, name := range profiles.Names() {
				fmt.Fprintf(out, "  - %s\n", name)
			}

			return nil
		},
	}

	return cmd
}
