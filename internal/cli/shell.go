package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmreicha/aws-login/internal/core"
	"github.com/jmreicha/aws-login/internal/providers/shell"
)

func newShellCmd() *cobra.Command {
	var (
		shellName string
		startup   string
	)

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Integrate aws-login with your shell",
		Long: `Integrate aws-login with your shell so that commands such as profile can
change the environment of the shell they were run from.

Supported shells: ` + strings.Join(shell.Supported, ", "),
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Print the shell code evaluated by the startup script",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			setup, err := shell.SetupFor(shellName, startup)
			if err != nil {
				return err
			}

			if _, err := fmt.Fprint(application.Output(), setup.Script()); err != nil {
				return core.WithContext(err, "Could not write initialization script to output.")
			}

			return nil
		},
	}

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Add the integration to the shell startup script",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			setup, err := shell.SetupFor(shellName, startup)
			if err != nil {
				return err
			}

			installed, err := setup.IsInstalled()
			if err != nil {
				return core.WithContext(err, "Could not check if the integration is already set up.")
			}

			if installed {
				_, err := fmt.Fprintln(application.Output(), "The integration is already installed.")
				return err
			}

			if err := setup.Install(); err != nil {
				return core.WithContext(err, "Could not install integration script.")
			}

			_, err = fmt.Fprintf(application.Output(), "The integration was installed into %s.\n", setup.Startup)
			return err
		},
	}

	cmd.PersistentFlags().StringVarP(&shellName, "shell", "s", "", "the shell to integrate with ("+strings.Join(shell.Supported, ", ")+")")
	cmd.PersistentFlags().StringVarP(&startup, "init", "i", "", "the shell startup script (default: ~/.bashrc or ~/.zshrc)")
	_ = cmd.MarkPersistentFlagRequired("shell")

	cmd.AddCommand(initCmd, installCmd)

	return cmd
}
