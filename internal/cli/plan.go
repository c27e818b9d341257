package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-ignition/internal/cli/render"
	"github.com/trebuchet-org/treb-ignition/internal/usecase"
)

// NewPlanCmd creates the plan command
func NewPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <module>",
		Short: "Show the execution order of a module",
		Long: `Validate a module and show the order its contracts would be deployed in.

No network is contacted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.PlanModule.Run(cmd.Context(), usecase.PlanModuleParams{Module: args[0]})
			if err != nil {
				return err
			}

			return render.NewPlanRenderer(cmd.OutOrStdout(), app.Config.JSON).Render(result)
		},
	}

	return cmd
}
