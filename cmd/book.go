package cmd

import (
	"fmt"
	"strings"

	"github.com/marcus/shelf/internal/form"
	"github.com/marcus/shelf/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// bookFlags maps book flags to form keys, in form order
var bookFlags = []struct {
	name  string
	key   string
	usage string
}{
	{"title", form.KeyTitle, "Book title"},
	{"author", form.KeyAuthor, "Author name"},
	{"year", form.KeyYear, "Publication year"},
	{"price", form.KeyPrice, "Price, e.g. 9.99"},
	{"currency", form.KeyCurrency, "Currency: USD or EUR"},
	{"genre", form.KeyGenre, "Genre"},
}

func addBookFlags(cmd *cobra.Command) {
	for _, f := range bookFlags {
		cmd.Flags().String(f.name, "", f.usage)
	}
}

// bookValues returns the value of every book flag keyed by form key
func bookValues(cmd *cobra.Command) map[string]string {
	values := make(map[string]string, len(bookFlags))
	for _, f := range bookFlags {
		values[f.key], _ = cmd.Flags().GetString(f.name)
	}
	return values
}

// changedBookValues returns only the book flags given on the command line
func changedBookValues(cmd *cobra.Command) map[string]string {
	keys := make(map[string]string, len(bookFlags))
	for _, f := range bookFlags {
		keys[f.name] = f.key
	}
	values := make(map[string]string)
	cmd.Flags().Visit(func(fl *pflag.Flag) {
		if key, ok := keys[fl.Name]; ok {
			values[key] = fl.Value.String()
		}
	})
	return values
}

// missingBookFields lists the required keys without a value
func missingBookFields(values map[string]string) []string {
	var missing []string
	for _, f := range bookFlags {
		if strings.TrimSpace(values[f.key]) == "" {
			missing = append(missing, "--"+f.name)
		}
	}
	return missing
}

var addCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"create", "new"},
	Short:   "Add a book to the catalog",
	Long: `Add a book. Pass every field as a flag, or run without flags in a
terminal to fill in a form.

Example:
  shelf add --title Dune --author "Frank Herbert" --year 1965 --price 9.99 --genre Sci-fi`,
	GroupID: "books",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		values := bookValues(cmd)
		if values[form.KeyCurrency] == "" {
			values[form.KeyCurrency] = string(models.CurrencyUSD)
		}
		if missing := missingBookFields(values); len(missing) > 0 {
			if !isInteractive() {
				return fmt.Errorf("missing %s", strings.Join(missing, ", "))
			}
			var err error
			if values, err = promptForm(form.BookSpec(false), values); err != nil {
				return err
			}
		}

		book, err := form.ToBook(values, models.NewBookID)
		if err != nil {
			return err
		}

		a, err := openApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()
		return reported(a.ctrl.AddBook(commandContext(cmd), book))
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <book-id>",
	Short: "Change fields of a book",
	Long: `Edit a book. Only the fields passed as flags are sent; the others keep
their current values.

Example:
  shelf edit 12 --price 7.50 --currency EUR`,
	GroupID: "books",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseBookID(args[0])
		if err != nil {
			return err
		}
		values := changedBookValues(cmd)
		if len(values) == 0 {
			return fmt.Errorf("nothing to change: pass at least one of --title, --author, --year, --price, --currency, --genre")
		}
		params, err := form.BookParams(values)
		if err != nil {
			return err
		}

		a, err := openApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()
		return reported(a.ctrl.EditBookFields(commandContext(cmd), id, params))
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <book-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a book from the catalog",
	GroupID: "books",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseBookID(args[0])
		if err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			if !isInteractive() {
				return fmt.Errorf("refusing to delete book %d without --yes", id)
			}
			ok, err := confirm(fmt.Sprintf("Delete book #%d?", id))
			if err != nil {
				return err
			}
			if !ok {
				return errAborted
			}
		}

		a, err := openApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()
		return reported(a.ctrl.DeleteBook(commandContext(cmd), id))
	},
}

func init() {
	addBookFlags(addCmd)
	addBookFlags(editCmd)
	deleteCmd.Flags().BoolP("yes", "y", false, "Delete without asking")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
}
