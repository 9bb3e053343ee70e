package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jmreicha/aws-login/internal/core"
	"github.com/jmreicha/aws-login/internal/providers/aws"
	"github.com/jmreicha/aws-login/internal/providers/shell"
)

const profileVar = "AWS_PROFILE"

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Select the AWS CLI profile to use",
		Long: `Select the AWS CLI profile to use, creating it from its template if the
AWS CLI does not know about it yet. The profile is exported as AWS_PROFILE
when the shell integration is installed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client := aws.NewClient(executor, application, getenv)

			existing, err := client.ListProfiles(ctx)
			if err != nil {
				return err
			}

			profiles, err := store.Profiles()
			if err != nil {
				return err
			}

			name := application.Profile
			if name == "" {
				choices := append(profiles.Names(), existing...)
				slices.Sort(choices)
				choices = slices.Compact(choices)

				if len(choices) == 0 {
					return core.Errorf(1, "There are no profiles available to choose from.")
				}

				name, err = selector.Select("Please select a profile to use:", choices)
				if err != nil {
					return err
				}
			}

			if !slices.Contains(existing, name) {
				profile, ok := profiles[name]
				if !ok {
					return core.Errorf(1, "The profile, %s, does not exist.", name)
				}

				if err := client.CreateProfile(ctx, profile); err != nil {
					return core.WithContextf(err, "Could not create the profile, %s.", name)
				}
			}

			return exportProfile(name)
		},
	}

	return cmd
}

func exportProfile(name string) error {
	if env, ok := shell.EnvironmentFromEnv(getenv); ok {
		return env.SetVar(profileVar, name)
	}

	errOut := application.ErrOutput()
	fmt.Fprintln(errOut, "Unable to automatically switch AWS CLI profiles.")
	fmt.Fprintln(errOut, "(Not integrated into the shell environment.)")
	fmt.Fprintln(errOut, "Please run the following shell code manually:")
	fmt.Fprintln(errOut)

	_, err := fmt.Fprintln(application.Output(), shell.ExportLine(profileVar, name))
	return err
}
