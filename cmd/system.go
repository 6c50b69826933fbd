package cmd

import (
	"fmt"

	"github.com/marcus/shelf/internal/features"
	"github.com/marcus/shelf/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Show version and check for updates",
	GroupID: "system",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		short, _ := cmd.Flags().GetBool("short")
		if short {
			fmt.Fprint(w, versionStr)
			return
		}

		fmt.Fprintf(w, "shelf version %s\n", versionStr)

		checkUpdates := features.IsEnabled(features.UpdateCheck.Name)
		if cmd.Flags().Changed("check") {
			checkUpdates, _ = cmd.Flags().GetBool("check")
		}
		if !checkUpdates || version.IsDevelopmentVersion(versionStr) {
			return
		}

		result := version.Cached(commandContext(cmd), versionStr)
		if result.Error != nil || !result.HasUpdate {
			// Network errors are not worth reporting here
			return
		}
		fmt.Fprintf(w, "\nUpdate available: %s → %s\n", versionStr, result.LatestVersion)
		if c := version.UpdateCommand(result.LatestVersion); c != "" {
			fmt.Fprintf(w, "Run: %s\n", c)
		}
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the version")
	versionCmd.Flags().Bool("check", true, "Check GitHub for a newer release (defaults to the update_check feature)")
	rootCmd.AddCommand(versionCmd)
}
