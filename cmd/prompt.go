package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/marcus/shelf/internal/form"
	"golang.org/x/term"
)

// errAborted is returned when the user cancels a prompt
var errAborted = errors.New("aborted")

// isInteractive reports whether prompts can be shown. Replaced in tests.
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// promptForm runs the dialog for spec prefilled with initial and returns
// the validated values.
func promptForm(spec form.Spec, initial map[string]string) (map[string]string, error) {
	st := form.Build(spec, initial)
	if err := st.Form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, errAborted
		}
		return nil, fmt.Errorf("%s: %w", spec.Title, err)
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st.Values(), nil
}

// confirm asks a yes/no question
func confirm(question string) (bool, error) {
	var ok bool
	field := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)
	err := huh.NewForm(huh.NewGroup(field)).WithTheme(huh.ThemeDracula()).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
