package cmd

import (
	"fmt"
	"strings"

	"github.com/marcus/shelf/internal/suggest"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// didYouMean returns " (did you mean x?)" for the closest candidate, or ""
func didYouMean(unknown string, candidates []string) string {
	matches := suggest.Similar(unknown, candidates)
	if len(matches) == 0 {
		return ""
	}
	return fmt.Sprintf(" (did you mean %s?)", strings.Join(matches, " or "))
}

// flagError adds suggestions to unknown flag errors
func flagError(cmd *cobra.Command, err error) error {
	msg := err.Error()
	const prefix = "unknown flag: "
	if !strings.HasPrefix(msg, prefix) {
		return err
	}
	unknown := strings.TrimPrefix(msg, prefix)

	if hint := suggest.GetFlagHint(unknown); hint != "" {
		return fmt.Errorf("%w\n  hint: %s", err, hint)
	}
	var valid []string
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if !f.Hidden {
			valid = append(valid, "--"+f.Name)
		}
	})
	if s := didYouMean(unknown, valid); s != "" {
		return fmt.Errorf("%w%s", err, s)
	}
	return err
}
