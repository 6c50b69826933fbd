package cmd

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/shelf/internal/config"
	"github.com/marcus/shelf/internal/features"
	"github.com/marcus/shelf/pkg/browser"
	"github.com/marcus/shelf/pkg/browser/keymap"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:     "browse",
	Aliases: []string{"ui"},
	Short:   "Interactive catalog browser",
	Long: `Launch the interactive browser: type into the filter boxes and the list
refreshes a moment after you stop typing. Ten books per page.

Key bindings:
  / or Tab       Focus the filters (Tab/Shift+Tab to move between them)
  Esc/Enter      Back to the list
  j/k ↑/↓        Move the selection
  h/l ←/→        Previous / next page
  c s v          Cycle result cap, sort attribute, reverse order
  n e x          Add, edit, delete a book
  Enter          Summary and recommendation
  R w            Show reviews, write a review
  i u o p        Sign in, sign up, sign out, reading preferences
  ?              Toggle help
  q              Quit

Bindings can be overridden in ~/.config/shelf/keymap.json, e.g.
  {"bindings": {"main:ctrl+n": "new-book"}}`,
	GroupID: "catalog",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := queryFromFlags(cmd)
		if err != nil {
			return err
		}
		km, err := loadKeymap()
		if err != nil {
			return err
		}

		events := browser.NewEvents()
		a, err := openApp(cmd, appOptions{query: q, onChange: events.OnChange, notifier: events})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithCancel(commandContext(cmd))
		defer cancel()

		model := browser.NewModel(a.ctrl, events, browser.Config{
			Keymap:       km,
			DefaultCount: config.GetDefaultCount(),
			Version:      versionStr,
			Context:      ctx,

			CheckUpdates:    features.IsEnabled(features.UpdateCheck.Name),
			DisableInsights: !features.IsEnabled(features.AIInsights.Name),
		})

		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running browser: %w", err)
		}
		return nil
	},
}

// loadKeymap returns the default bindings with keymap.json overrides applied
func loadKeymap() (*keymap.Registry, error) {
	km := keymap.NewRegistry()
	keymap.RegisterDefaults(km)

	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	path := keymap.ConfigPath(dir)
	kcfg, err := keymap.LoadConfig(path)
	if err != nil {
		slog.Warn("ignoring keymap config", "path", path, "err", err)
		return km, nil
	}
	keymap.ApplyConfig(km, kcfg)
	return km, nil
}

func init() {
	addQueryFlags(browseCmd)
	rootCmd.AddCommand(browseCmd)
}
