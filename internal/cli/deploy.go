package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-ignition/internal/cli/render"
	"github.com/trebuchet-org/treb-ignition/internal/usecase"
)

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy <module> [module...]",
		Short: "Deploy modules to a network",
		Long: `Deploy one or more modules to the selected network.

A module is a YAML file in the modules directory (ignition/modules by default)
or a path to one. Contracts that are already deployed with the same contract
and arguments are reconciled and not deployed again.

Examples:
  ignite deploy Aura --network hardhat
  ignite deploy ignition/modules/Aura.yaml -n sepolia
  ignite deploy Aura Vault -n localhost --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			results, runErr := app.DeployModule.Run(cmd.Context(), usecase.DeployModuleParams{
				Modules: args,
			})

			// Partial results are rendered before the error is reported
			if len(results) > 0 {
				renderer := render.NewDeployRenderer(cmd.OutOrStdout(), app.Config.JSON)
				if err := renderer.Render(results); err != nil {
					return err
				}
			}
			return runErr
		},
	}

	return cmd
}
