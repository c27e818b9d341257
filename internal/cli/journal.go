package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-ignition/internal/cli/render"
	"github.com/trebuchet-org/treb-ignition/internal/usecase"
)

// NewJournalCmd creates the journal command
func NewJournalCmd() *cobra.Command {
	var graph string

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recorded deployments for a network",
		Long: `Show the deployments recorded in the journal of the selected network's chain.

The journal is what later runs reconcile against.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ShowJournal.Run(cmd.Context(), usecase.ShowJournalParams{Graph: graph})
			if err != nil {
				return err
			}

			return render.NewJournalRenderer(cmd.OutOrStdout(), app.Config.JSON).Render(result)
		},
	}

	cmd.Flags().StringVarP(&graph, "module", "m", "", "Only show deployments of this module (e.g. AuraModule)")

	return cmd
}
