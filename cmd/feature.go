package cmd

import (
	"fmt"

	"github.com/marcus/shelf/internal/features"
	"github.com/marcus/shelf/internal/output"
	"github.com/spf13/cobra"
)

// requireFeature fails when f is switched off
func requireFeature(f features.Feature) error {
	if features.IsEnabled(f.Name) {
		return nil
	}
	return fmt.Errorf("feature %s is disabled (run \"shelf feature enable %s\")", f.Name, f.Name)
}

// featureState is one row of `shelf feature list --json`
type featureState struct {
	Name        string `json:"name"`
	Enabled     bool   `json:"enabled"`
	Source      string `json:"source"`
	Default     bool   `json:"default"`
	Description string `json:"description"`
}

var featureCmd = &cobra.Command{
	Use:     "feature",
	Aliases: []string{"features"},
	Short:   "List and toggle feature flags",
	Long: `Feature flags resolve from SHELF_FEATURE_<NAME>, SHELF_DISABLE_FEATURES
and SHELF_ENABLE_FEATURES (comma separated), then config.json, then the
built-in default.`,
	GroupID: "system",
}

var featureListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every feature and where its state comes from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var states []featureState
		for _, f := range features.ListAll() {
			enabled, source := features.Resolve(f.Name)
			states = append(states, featureState{
				Name: f.Name, Enabled: enabled, Source: source, Default: f.Default, Description: f.Description,
			})
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return output.WriteJSON(cmd.OutOrStdout(), states)
		}
		w := cmd.OutOrStdout()
		for _, s := range states {
			state := "off"
			if s.Enabled {
				state = "on"
			}
			fmt.Fprintf(w, "%-14s %-4s %-8s %s\n", s.Name, state, s.Source, s.Description)
		}
		return nil
	},
}

func featureSetter(use, short string, value func() *bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !features.IsKnownFeature(name) {
				return fmt.Errorf("unknown feature %q%s", name, didYouMean(name, featureNames()))
			}
			if err := features.Set(name, value()); err != nil {
				return err
			}
			enabled, source := features.Resolve(name)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v (%s)\n", name, enabled, source)
			return nil
		},
	}
}

func featureNames() []string {
	var names []string
	for _, f := range features.ListAll() {
		names = append(names, f.Name)
	}
	return names
}

func init() {
	on, off := true, false
	featureListCmd.Flags().Bool("json", false, "Output as JSON")
	featureCmd.AddCommand(
		featureListCmd,
		featureSetter("enable", "Turn a feature on", func() *bool { return &on }),
		featureSetter("disable", "Turn a feature off", func() *bool { return &off }),
		featureSetter("reset", "Restore the default state", func() *bool { return nil }),
	)
	rootCmd.AddCommand(featureCmd)
}
