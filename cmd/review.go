package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marcus/shelf/internal/features"
	"github.com/marcus/shelf/internal/form"
	"github.com/marcus/shelf/internal/input"
	"github.com/marcus/shelf/internal/models"
	"github.com/marcus/shelf/internal/output"
	"github.com/spf13/cobra"
)

// insightResult is the --json shape of `shelf summary`
type insightResult struct {
	BookID         int64  `json:"book_id"`
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation,omitempty"`
}

var summaryCmd = &cobra.Command{
	Use:     "summary <book-id>",
	Aliases: []string{"ai"},
	Short:   "Generate a summary and a personal recommendation for a book",
	Long: `Ask the server for an AI summary of a book, followed by a recommendation
based on your reading preferences (see "shelf profile").`,
	GroupID: "reviews",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireFeature(features.AIInsights); err != nil {
			return err
		}
		id, err := parseBookID(args[0])
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		opts := appOptions{}
		if asJSON {
			opts.notifier = quietNotifier(cmd)
		}
		a, err := openApp(cmd, opts)
		if err != nil {
			return err
		}
		defer a.Close()

		insight, err := a.ctrl.Summarize(commandContext(cmd), id)
		if asJSON {
			if err != nil && insight.Summary == "" {
				return jsonError(cmd, err)
			}
			if werr := output.WriteJSON(cmd.OutOrStdout(), insightResult{
				BookID: id, Summary: insight.Summary, Recommendation: insight.Recommendation,
			}); werr != nil {
				return werr
			}
			return reported(err)
		}

		if insight.Summary != "" {
			title := fmt.Sprintf("Book #%d", id)
			fmt.Fprintln(cmd.OutOrStdout(), output.RenderInsight(title, insight.Summary, insight.Recommendation, output.TerminalWidth(0)))
		}
		return reported(err)
	},
}

var reviewsCmd = &cobra.Command{
	Use:     "reviews <book-id>",
	Short:   "Show the reviews of a book",
	GroupID: "reviews",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseBookID(args[0])
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		opts := appOptions{}
		if asJSON {
			opts.notifier = quietNotifier(cmd)
		}
		a, err := openApp(cmd, opts)
		if err != nil {
			return err
		}
		defer a.Close()

		reviews, err := a.ctrl.Reviews(commandContext(cmd), id)
		if err != nil {
			if asJSON {
				return jsonError(cmd, err)
			}
			return reported(err)
		}
		if asJSON {
			return output.WriteJSON(cmd.OutOrStdout(), reviews)
		}
		printReviews(cmd, reviews)
		return nil
	},
}

func printReviews(cmd *cobra.Command, reviews []models.Review) {
	w := cmd.OutOrStdout()
	if len(reviews) == 0 {
		fmt.Fprintln(w, "No reviews yet")
		return
	}
	fmt.Fprintln(w, output.ReviewSummary(reviews))
	for _, r := range reviews {
		fmt.Fprintln(w)
		fmt.Fprint(w, output.FormatReview(r))
	}
}

var reviewCmd = &cobra.Command{
	Use:   "review <book-id>",
	Short: "Review a book (requires sign in)",
	Long: `Post a review as the signed-in user.

Example:
  shelf review 12 --stars 4 --content "Slow start, great ending"`,
	GroupID: "reviews",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseBookID(args[0])
		if err != nil {
			return err
		}
		stars, _ := cmd.Flags().GetInt("stars")
		content, _ := cmd.Flags().GetString("content")
		if content, err = input.NewReader(cmd.InOrStdin()).Expand(content); err != nil {
			return fmt.Errorf("--content: %w", err)
		}
		values := map[string]string{form.KeyContent: content}
		if stars != 0 {
			values[form.KeyStars] = strconv.Itoa(stars)
		}

		if stars == 0 || strings.TrimSpace(content) == "" {
			if !isInteractive() {
				return fmt.Errorf("--stars and --content are required")
			}
			if values, err = promptForm(form.ReviewSpec(fmt.Sprintf("book #%d", id)), values); err != nil {
				return err
			}
		}
		n, text, err := form.ToReview(values)
		if err != nil {
			return err
		}

		a, err := openApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()
		return reported(a.ctrl.SubmitReview(commandContext(cmd), id, n, text))
	},
}

var reviewedCmd = &cobra.Command{
	Use:     "reviewed",
	Short:   "List the ids of the books you reviewed",
	GroupID: "reviews",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		opts := appOptions{}
		if asJSON {
			opts.notifier = quietNotifier(cmd)
		}
		a, err := openApp(cmd, opts)
		if err != nil {
			return err
		}
		defer a.Close()

		ids, err := a.ctrl.ReviewedBooks(commandContext(cmd))
		if err != nil {
			if asJSON {
				return jsonError(cmd, err)
			}
			return reported(err)
		}
		if ids == nil {
			ids = []int64{}
		}
		if asJSON {
			return output.WriteJSON(cmd.OutOrStdout(), ids)
		}
		w := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(w, "You have not reviewed any books yet")
			return nil
		}
		fmt.Fprint(w, output.SectionHeader("Reviewed books"))
		for _, id := range ids {
			fmt.Fprintf(w, "  #%d\n", id)
		}
		return nil
	},
}

func init() {
	summaryCmd.Flags().Bool("json", false, "Output as JSON")
	reviewsCmd.Flags().Bool("json", false, "Output as JSON")
	reviewedCmd.Flags().Bool("json", false, "Output as JSON")
	reviewCmd.Flags().IntP("stars", "s", 0, "Rating from 1 to 5")
	reviewCmd.Flags().StringP("content", "m", "", `Review text, "-" to read stdin or "@file"`)

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(reviewsCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(reviewedCmd)
}
