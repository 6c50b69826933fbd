package cmd

import (
	"fmt"

	"github.com/marcus/shelf/internal/form"
	"github.com/marcus/shelf/internal/input"
	"github.com/marcus/shelf/internal/output"
	"github.com/marcus/shelf/internal/session"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the reading preferences used for recommendations",
	Long: `Reading preferences (goal, description, mood) personalize the
recommendation shown by "shelf summary". They expire after a week.`,
	GroupID: "account",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		asJSON, _ := cmd.Flags().GetBool("json")
		prefs := a.ctrl.Preferences()
		if asJSON {
			return output.WriteJSON(cmd.OutOrStdout(), prefs)
		}

		w := cmd.OutOrStdout()
		if prefs.Empty() {
			fmt.Fprintln(w, `No reading preferences saved. Use "shelf profile set".`)
			return nil
		}
		fmt.Fprintf(w, "Goal:        %s\n", prefs.Goal)
		fmt.Fprintf(w, "Description: %s\n", prefs.Description)
		fmt.Fprintf(w, "Mood:        %s\n", prefs.Mood)
		if !prefs.SavedAt.IsZero() {
			fmt.Fprintf(w, "Saved:       %s\n", output.FormatTimeAgo(prefs.SavedAt))
		}
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save reading preferences",
	Long: `Save reading preferences. Flags that are not given keep their saved
value. Without flags, a form is shown in a terminal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		values := form.PreferencesValues(a.ctrl.Preferences())
		changed := false
		in := input.NewReader(cmd.InOrStdin())
		for flag, key := range map[string]string{"goal": form.KeyGoal, "description": form.KeyDescription, "mood": form.KeyMood} {
			if !cmd.Flags().Changed(flag) {
				continue
			}
			v, _ := cmd.Flags().GetString(flag)
			if values[key], err = in.Expand(v); err != nil {
				return fmt.Errorf("--%s: %w", flag, err)
			}
			changed = true
		}
		if !changed {
			if !isInteractive() {
				return fmt.Errorf("pass at least one of --goal, --description, --mood")
			}
			if values, err = promptForm(form.PreferencesSpec(), values); err != nil {
				return err
			}
		}
		return a.ctrl.SetPreferences(form.ToPreferences(values))
	},
}

var profileClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the saved reading preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()
		return a.ctrl.SetPreferences(session.Preferences{})
	},
}

func init() {
	profileCmd.Flags().Bool("json", false, "Output as JSON")
	profileSetCmd.Flags().String("goal", "", "Reading goal")
	profileSetCmd.Flags().String("description", "", `A few words about the goal, "-" to read stdin or "@file"`)
	profileSetCmd.Flags().String("mood", "", "Current mood")

	profileCmd.AddCommand(profileSetCmd, profileClearCmd)
	rootCmd.AddCommand(profileCmd)
}
