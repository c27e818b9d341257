package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-ignition/internal/cli/render"
	"github.com/trebuchet-org/treb-ignition/internal/usecase"
)

// NewNetworksCmd creates the networks command
func NewNetworksCmd() *cobra.Command {
	var probe bool

	cmd := &cobra.Command{
		Use:   "networks",
		Short: "List configured networks",
		Long: `List the built-in networks and the networks configured in ignition.toml.

With --probe every endpoint is asked for its chain ID.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Get app from context
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			// Run use case
			result, err := app.ListNetworks.Run(cmd.Context(), usecase.ListNetworksParams{Probe: probe})
			if err != nil {
				return err
			}

			// Render output
			return render.NewNetworksRenderer(cmd.OutOrStdout(), app.Config.JSON).Render(result)
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "Query each network for its chain ID")

	return cmd
}
