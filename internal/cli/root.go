package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-ignition/internal/adapters/progress"
	"github.com/trebuchet-org/treb-ignition/internal/app"
	"github.com/trebuchet-org/treb-ignition/internal/config"
	"github.com/trebuchet-org/treb-ignition/internal/usecase"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ignite",
		Short: "Declarative, idempotent smart contract deployments",
		Long: `Ignite deploys modules of interdependent contracts to EVM networks.

A module declares contracts and the order they depend on each other. Running
the same module again reconciles against what is already deployed instead of
deploying twice.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			// Find project root
			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			// Set up viper
			v := config.SetupViper(projectRoot)

			// Bind flags that have been set
			config.BindFlags(v, cmd.Flags())

			// Initialize app with DI
			sink := newProgressSink(v, cmd.ErrOrStderr())
			appInstance, err := app.InitApp(v, sink)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			// Store app in context
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app, err := getApp(cmd); err == nil {
				app.Close()
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network to deploy to (e.g. hardhat, sepolia)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Simulate deployments without sending transactions")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Deadline for each network operation (default 2m)")

	// Add command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	// Main commands
	deployCmd := NewDeployCmd()
	deployCmd.GroupID = "main"
	rootCmd.AddCommand(deployCmd)

	planCmd := NewPlanCmd()
	planCmd.GroupID = "main"
	rootCmd.AddCommand(planCmd)

	// Management commands
	networksCmd := NewNetworksCmd()
	networksCmd.GroupID = "management"
	rootCmd.AddCommand(networksCmd)

	journalCmd := NewJournalCmd()
	journalCmd.GroupID = "management"
	rootCmd.AddCommand(journalCmd)

	// Version command
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// newProgressSink picks the progress output: nothing for JSON, plain lines
// when stderr is not a terminal, a spinner otherwise.
func newProgressSink(v *viper.Viper, out io.Writer) usecase.ProgressSink {
	if v.GetBool("json") {
		return progress.NewNopSink()
	}
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) && !v.GetBool("non_interactive") {
		return progress.NewSpinnerProgressReporter(out)
	}
	return progress.NewLineProgress(out)
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}
