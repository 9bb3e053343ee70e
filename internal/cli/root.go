// Package cli provides the command-line interface for aws-login.
package cli

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmreicha/aws-login/internal/core"
	"github.com/jmreicha/aws-login/internal/prompt"
	"github.com/jmreicha/aws-login/internal/run"
	"github.com/jmreicha/aws-login/internal/templates"
)

const templatesBackupName = "templates"

var (
	// Global flags.
	cfgFile       string
	debug         bool
	profileName   string
	regionName    string
	templatesPath string

	// Shared components.
	application   *core.Application
	backupManager *core.BackupManager
	config        *core.Config
	executor      run.Executor
	logger        *slog.Logger
	selector      prompt.Selector
	store         *templates.Store

	// Constructors replaced in tests.
	newStreams  = core.NewLiveStreams
	newExecutor = func(logger *slog.Logger) run.Executor {
		return run.NewRunner(core.NewExecutableCache(nil), logger)
	}
	newSelector = func(streams core.Streams) prompt.Selector {
		return prompt.NewHuhSelector(streams)
	}
	getenv = os.Getenv
)

// NewRootCmd creates the root command for aws-login.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   core.AppName,
		Short: "Switch between and log in to AWS CLI profiles",
		Long: `aws-login simplifies working with many AWS accounts. It creates AWS CLI
profiles from shared templates, switches the active profile in your shell,
and logs in to SSO, ECR, EKS, and RDS Proxy through the AWS CLI.`,

		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initializeComponents()
		},
	}

	helpTemplate := strings.ReplaceAll(rootCmd.HelpTemplate(), "Available Commands:", "Commands:")
	usageTemplate := strings.ReplaceAll(rootCmd.UsageTemplate(), "Available Commands:", "Commands:")
	rootCmd.SetHelpTemplate(helpTemplate)
	rootCmd.SetUsageTemplate(usageTemplate)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: search in standard locations)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "the AWS CLI profile to use")
	rootCmd.PersistentFlags().StringVarP(&regionName, "region", "r", "", "the AWS region to use")
	rootCmd.PersistentFlags().StringVar(&templatesPath, "templates", "", "profile templates file (default: in the config directory)")

	// Add subcommands
	rootCmd.AddCommand(newDebugCmd())
	rootCmd.AddCommand(newECRCmd())
	rootCmd.AddCommand(newEKSCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(newPullCmd())
	rootCmd.AddCommand(newRDSCmd())
	rootCmd.AddCommand(newShellCmd())
	rootCmd.AddCommand(newSSOCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newVersionCmd(version))

	return rootCmd
}

// initializeComponents sets up the components shared by all commands.
func initializeComponents() error {
	streams := newStreams()

	// Load configuration
	var err error
	config, err = core.LoadConfig(cfgFile)
	if err != nil {
		return core.WithContext(err, "The configuration could not be loaded.")
	}

	// Override config with CLI flags
	if debug {
		config.Debug = true
	}
	if strings.TrimSpace(templatesPath) != "" {
		config.TemplatesPath = strings.TrimSpace(templatesPath)
	}

	// Set up logger
	logLevel := slog.LevelError
	if config.Debug {
		logLevel = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(streams.ErrOutput(), &slog.HandlerOptions{
		Level: logLevel,
	}))

	application = core.NewApplication(profileName, regionName, streams, logger)
	backupManager = core.NewBackupManager(config.BackupDir)
	executor = newExecutor(logger)
	selector = newSelector(streams)
	store = templates.NewStore(config.TemplatesPath, logger)

	logger.Debug("initialized",
		"templates", config.TemplatesPath,
		"profile", application.Profile,
		"region", application.Region)

	return nil
}
