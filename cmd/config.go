package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/marcus/shelf/internal/config"
	"github.com/marcus/shelf/internal/output"
	"github.com/spf13/cobra"
)

func keyNames() []string {
	names := make([]string, 0, len(config.Keys()))
	for _, k := range config.Keys() {
		names = append(names, k.Name)
	}
	return names
}

// unknownKey decorates a lookup error with suggestions
func unknownKey(key string, err error) error {
	if s := didYouMean(key, keyNames()); s != "" {
		return fmt.Errorf("%w%s", err, s)
	}
	return fmt.Errorf("%w (valid keys: %s)", err, strings.Join(keyNames(), ", "))
}

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Manage shelf configuration",
	GroupID: "system",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value (an empty value unsets it)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if err := config.Set(key, val); err != nil {
			if _, lookupErr := config.FileValue(key); lookupErr != nil {
				return unknownKey(key, err)
			}
			return err
		}
		if strings.TrimSpace(val) == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "unset %s\n", key)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "set %s = %s\n", key, strings.TrimSpace(val))
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get the effective value of a config key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		val, err := config.Resolved(key)
		if err != nil {
			return unknownKey(key, err)
		}
		stored, _ := config.FileValue(key)
		if stored == "" && !envSet(key) {
			val += " (default)"
		}
		fmt.Fprintln(cmd.OutOrStdout(), val)
		return nil
	},
}

// envSet reports whether the env override of key is set
func envSet(key string) bool {
	for _, k := range config.Keys() {
		if k.Name == key {
			return os.Getenv(k.Env) != ""
		}
	}
	return false
}

// configEntry is one row of `shelf config list --json`
type configEntry struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
	Env    string `json:"env"`
	Help   string `json:"help"`
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all config values and where they come from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var entries []configEntry
		for _, k := range config.Keys() {
			val, err := config.Resolved(k.Name)
			if err != nil {
				return err
			}
			stored, err := config.FileValue(k.Name)
			if err != nil {
				return err
			}
			source := "default"
			switch {
			case os.Getenv(k.Env) != "":
				source = "env " + k.Env
			case stored != "":
				source = "config"
			}
			entries = append(entries, configEntry{Key: k.Name, Value: val, Source: source, Env: k.Env, Help: k.Help})
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return output.WriteJSON(cmd.OutOrStdout(), entries)
		}
		w := cmd.OutOrStdout()
		for _, e := range entries {
			fmt.Fprintf(w, "%-22s %-24s %s\n", e.Key, e.Value, e.Source)
		}
		if path, err := config.Path(); err == nil {
			fmt.Fprintf(w, "\nconfig file: %s\n", path)
		}
		return nil
	},
}

func init() {
	configListCmd.Flags().Bool("json", false, "Output as JSON")
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}
