package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmreicha/aws-login/internal/core"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the profile templates",
		Long:  "Check that every template resolves: ancestors exist, no cycles, and only scalar settings.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			loaded, err := store.Templates()
			if err != nil {
				return err
			}

			for _, name := range loaded.Names() {
				if _, err := loaded.Resolve(name); err != nil {
					return core.WithContextf(err, "The templates in, %s, are not valid.", store.Path())
				}
			}

			_, err = fmt.Fprintf(application.Output(), "All %d templates validated successfully\n", len(loaded))
			return err
		},
	}

	return cmd
}
