package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/shelf/internal/catalog"
	"github.com/marcus/shelf/internal/config"
	"github.com/marcus/shelf/internal/dateparse"
	"github.com/marcus/shelf/internal/history"
	"github.com/marcus/shelf/internal/output"
	"github.com/spf13/cobra"
)

var (
	logTimeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	logOpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
)

// openHistory opens the activity log in the config directory
func openHistory() (*history.Recorder, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return history.Open(dir)
}

var logCmd = &cobra.Command{
	Use:     "log",
	Aliases: []string{"history"},
	Short:   "Show recent activity (successes and failures)",
	Long: `Every notification shelf shows is also recorded in an activity log
(disable with "shelf config set history.enabled false").

Examples:
  shelf log
  shelf log --errors --since yesterday
  shelf log clear --before 2w`,
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var f history.Filter
		if errorsOnly, _ := cmd.Flags().GetBool("errors"); errorsOnly {
			f.Severity = catalog.SeverityError
		}
		if since, _ := cmd.Flags().GetString("since"); since != "" {
			t, err := dateparse.ParseSince(since)
			if err != nil {
				return fmt.Errorf("--since: %w", err)
			}
			f.Since = t
		}
		limit, _ := cmd.Flags().GetInt("limit")

		rec, err := openHistory()
		if err != nil {
			return err
		}
		defer rec.Close()

		entries, err := rec.Recent(limit, f)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			if entries == nil {
				entries = []history.Entry{}
			}
			return output.WriteJSON(cmd.OutOrStdout(), entries)
		}

		w := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(w, "No activity recorded")
			return nil
		}
		for _, e := range entries {
			n := catalog.Notification{Severity: e.Severity, Message: e.Message}
			fmt.Fprintf(w, "%s  %s  %s\n",
				logTimeStyle.Render(fmt.Sprintf("%-10s", output.FormatTimeAgo(e.Time))),
				logOpStyle.Render(fmt.Sprintf("%-14s", e.Operation)),
				output.FormatNotification(n))
		}
		return nil
	},
}

var logClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete recorded activity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var before time.Time
		if s, _ := cmd.Flags().GetString("before"); s != "" {
			t, err := dateparse.ParseSince(s)
			if err != nil {
				return fmt.Errorf("--before: %w", err)
			}
			before = t
		}

		rec, err := openHistory()
		if err != nil {
			return err
		}
		defer rec.Close()

		n, err := rec.Clear(before)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d entries\n", n)
		return nil
	},
}

func init() {
	logCmd.Flags().IntP("limit", "n", 20, "Maximum entries to show")
	logCmd.Flags().Bool("errors", false, "Only show failures")
	logCmd.Flags().String("since", "", `Only show entries since: "2026-03-01", "3d", "yesterday", "monday"`)
	logCmd.Flags().Bool("json", false, "Output as JSON")
	logClearCmd.Flags().String("before", "", "Only delete entries older than this (default: everything)")

	logCmd.AddCommand(logClearCmd)
	rootCmd.AddCommand(logCmd)
}
