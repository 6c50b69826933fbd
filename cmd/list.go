package cmd

import (
	"fmt"

	"github.com/marcus/shelf/internal/catalog"
	"github.com/marcus/shelf/internal/models"
	"github.com/marcus/shelf/internal/output"
	"github.com/spf13/cobra"
)

// listResult is the --json shape of `shelf list`
type listResult struct {
	Query string        `json:"query"`
	Page  int           `json:"page"`
	Pages int           `json:"pages"`
	Total int           `json:"total"`
	Books []models.Book `json:"books"`
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List books matching filters, one page at a time",
	Long: `List the catalog with optional filters, a result cap and sorting.
Results are shown ten per page; use --page to move through them.

Examples:
  shelf list --author tolkien --sort year
  shelf list --genre fantasy --count all --page 2
  shelf list --sort price --reverse --json`,
	GroupID: "catalog",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := queryFromFlags(cmd)
		if err != nil {
			return err
		}
		page, _ := cmd.Flags().GetInt("page")
		if page < 1 {
			return fmt.Errorf("--page must be 1 or greater, got %d", page)
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		opts := appOptions{query: q}
		if asJSON {
			opts.notifier = quietNotifier(cmd)
		}
		a, err := openApp(cmd, opts)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ctrl.Start(commandContext(cmd)); err != nil {
			if asJSON {
				return jsonError(cmd, err)
			}
			return reported(err)
		}
		a.ctrl.ChangePage(page - 1)
		snap := a.ctrl.Snapshot()

		if asJSON {
			return output.WriteJSON(cmd.OutOrStdout(), listResult{
				Query: a.ctrl.QueryString(),
				Page:  snap.Page + 1,
				Pages: snap.PageCount,
				Total: snap.Total,
				Books: snap.Items,
			})
		}

		w := cmd.OutOrStdout()
		if snap.Total == 0 {
			fmt.Fprintln(w, "No books found")
			return nil
		}
		fmt.Fprint(w, output.BookTable(snap.Items, output.TerminalWidth(0)))
		fmt.Fprintln(w, output.PageFooter(snap.Page, snap.PageCount, snap.Total))
		return nil
	},
}

// queryFromFlags builds the list query from filter, cap and sort flags.
// --sort accepts partial names ("pub", "yr").
func queryFromFlags(cmd *cobra.Command) (catalog.Query, error) {
	var q catalog.Query
	q.Title, _ = cmd.Flags().GetString("title")
	q.Author, _ = cmd.Flags().GetString("author")
	q.Genre, _ = cmd.Flags().GetString("genre")
	q.Year, _ = cmd.Flags().GetString("year")

	count, _ := cmd.Flags().GetString("count")
	capValue, err := catalog.NormalizeCap(count)
	if err != nil {
		return q, err
	}
	q.Cap = capValue

	sortBy, _ := cmd.Flags().GetString("sort")
	key, err := models.MatchSortKey(sortBy)
	if err != nil {
		return q, err
	}
	q.SortBy = key
	q.Reverse, _ = cmd.Flags().GetBool("reverse")
	if q.Reverse && q.SortBy == models.SortNone {
		return q, fmt.Errorf("--reverse needs --sort")
	}
	return q, nil
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "Filter by title")
	cmd.Flags().String("author", "", "Filter by author")
	cmd.Flags().String("genre", "", "Filter by genre")
	cmd.Flags().String("year", "", "Filter by publication year")
	cmd.Flags().StringP("count", "n", "", `Result cap: a positive number or "all" (default from catalog.default_count)`)
	cmd.Flags().StringP("sort", "s", "", "Sort by title, author, publication_year, price, currency or genre")
	cmd.Flags().BoolP("reverse", "r", false, "Reverse the sort order")
}

func init() {
	addQueryFlags(listCmd)
	listCmd.Flags().IntP("page", "p", 1, "Page to show (1-based)")
	listCmd.Flags().Bool("json", false, "Output as JSON")
	rootCmd.AddCommand(listCmd)
}
