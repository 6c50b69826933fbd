// Package output provides styled terminal output helpers (success, error,
// warning, book formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/shelf/internal/catalog"
	"github.com/marcus/shelf/internal/catalogclient"
	"github.com/marcus/shelf/internal/models"
)

var (
	// Styles
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	starStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	genreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))

	severityStyles = map[catalog.Severity]lipgloss.Style{
		catalog.SeveritySuccess: successStyle,
		catalog.SeverityError:   errorStyle,
		catalog.SeverityInfo:    infoStyle,
	}
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	return WriteJSON(os.Stdout, v)
}

// WriteJSON writes indented JSON to w
func WriteJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// Error codes for structured JSON output
const (
	ErrCodeNotFound      = "not_found"
	ErrCodeInvalidInput  = "invalid_input"
	ErrCodeServerError   = "server_error"
	ErrCodeUnreachable   = "unreachable"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeNotSignedIn   = "not_signed_in"
	ErrCodeHistoryFailed = "history_error"
)

// JSONErrorWithDetails outputs an error as JSON with additional context
func JSONErrorWithDetails(code, message string, details map[string]interface{}) {
	WriteJSONError(os.Stdout, code, message, details)
}

// WriteJSONError writes the structured error object to w
func WriteJSONError(w io.Writer, code, message string, details map[string]interface{}) {
	errObj := map[string]interface{}{
		"code":    code,
		"message": message,
	}
	if len(details) > 0 {
		errObj["details"] = details
	}
	WriteJSON(w, map[string]interface{}{"error": errObj})
}

// FormatPrice renders a price with its currency, e.g. "10.00 EUR"
func FormatPrice(price float64, c models.Currency) string {
	s := catalogclient.FormatPrice(price)
	if c == "" {
		return s
	}
	return s + " " + string(c)
}

// Stars renders a 1-5 rating as filled and empty stars
func Stars(n int) string {
	if n < 0 {
		n = 0
	}
	if n > models.MaxStars {
		n = models.MaxStars
	}
	return starStyle.Render(strings.Repeat("★", n)) + subtleStyle.Render(strings.Repeat("☆", models.MaxStars-n))
}

// FormatBookShort formats a book on one line
func FormatBookShort(b models.Book) string {
	parts := []string{
		titleStyle.Render(fmt.Sprintf("#%d", b.ID)),
		b.Title,
		subtleStyle.Render("by " + b.Author),
		strconv.Itoa(b.PublicationYear),
		genreStyle.Render(b.Genre),
		FormatPrice(b.Price, b.Currency),
	}
	return strings.Join(parts, "  ")
}

// FormatBookLong formats a book with one attribute per line
func FormatBookLong(b models.Book) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("#%d: %s", b.ID, b.Title)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Author: %s\n", b.Author))
	sb.WriteString(fmt.Sprintf("Genre: %s | Published: %d\n", b.Genre, b.PublicationYear))
	sb.WriteString(fmt.Sprintf("Price: %s\n", FormatPrice(b.Price, b.Currency)))
	return sb.String()
}

// bookColumns are the table columns with their minimum widths
var bookColumns = []struct {
	header string
	min    int
}{
	{"ID", 4},
	{"TITLE", 12},
	{"AUTHOR", 10},
	{"GENRE", 8},
	{"YEAR", 4},
	{"PRICE", 10},
}

// BookTable renders books as fixed-width columns fitting width. Title and
// author absorb extra space; long cells are truncated with an ellipsis.
func BookTable(books []models.Book, width int) string {
	if width <= 0 {
		width = defaultMarkdownWidth
	}
	rows := make([][]string, 0, len(books)+1)
	header := make([]string, len(bookColumns))
	for i, c := range bookColumns {
		header[i] = c.header
	}
	rows = append(rows, header)
	for _, b := range books {
		rows = append(rows, []string{
			strconv.FormatInt(b.ID, 10),
			b.Title,
			b.Author,
			b.Genre,
			strconv.Itoa(b.PublicationYear),
			FormatPrice(b.Price, b.Currency),
		})
	}

	widths := make([]int, len(bookColumns))
	for i, c := range bookColumns {
		widths[i] = c.min
		for _, r := range rows {
			if w := ansi.StringWidth(r[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	fitWidths(widths, width-2*(len(widths)-1))

	var sb strings.Builder
	for ri, r := range rows {
		cells := make([]string, len(r))
		for i, cell := range r {
			cell = ansi.Truncate(cell, widths[i], "…")
			pad := widths[i] - ansi.StringWidth(cell)
			if pad > 0 && i < len(r)-1 {
				cell += strings.Repeat(" ", pad)
			}
			cells[i] = cell
		}
		line := strings.Join(cells, "  ")
		if ri == 0 {
			line = subtleStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

// fitWidths shrinks the title and author columns until the total fits avail
func fitWidths(widths []int, avail int) {
	total := 0
	for _, w := range widths {
		total += w
	}
	for total > avail {
		i := 1 // title
		if widths[2] > widths[1] {
			i = 2 // author
		}
		if widths[i] <= bookColumns[i].min {
			return
		}
		widths[i]--
		total--
	}
}

// FormatReview formats a review with its rating
func FormatReview(r models.Review) string {
	var sb strings.Builder
	sb.WriteString(Stars(r.Stars))
	sb.WriteString("  ")
	sb.WriteString(titleStyle.Render(r.Email))
	if r.CreatedAt != "" {
		sb.WriteString(subtleStyle.Render("  " + r.CreatedAt))
	}
	sb.WriteString("\n")
	sb.WriteString(IndentString(strings.TrimSpace(r.Content), 2))
	sb.WriteString("\n")
	return sb.String()
}

// ReviewSummary returns the average rating line for reviews, e.g.
// "★★★★☆ 4.3 from 3 reviews". Empty input yields "".
func ReviewSummary(reviews []models.Review) string {
	if len(reviews) == 0 {
		return ""
	}
	total := 0
	for _, r := range reviews {
		total += r.Stars
	}
	avg := float64(total) / float64(len(reviews))
	noun := "reviews"
	if len(reviews) == 1 {
		noun = "review"
	}
	return fmt.Sprintf("%s %.1f from %d %s", Stars(int(math.Round(avg))), avg, len(reviews), noun)
}

// FormatNotification formats a controller notification with its severity
func FormatNotification(n catalog.Notification) string {
	style, ok := severityStyles[n.Severity]
	if !ok {
		return n.Message
	}
	if n.Severity == catalog.SeverityError {
		return style.Render("ERROR: " + n.Message)
	}
	return style.Render(n.Message)
}

// Notifier prints notifications as they arrive. Errors go to Err, the
// rest to Out.
type Notifier struct {
	Out io.Writer
	Err io.Writer
}

// NewNotifier returns a Notifier writing to stdout and stderr
func NewNotifier() *Notifier {
	return &Notifier{Out: os.Stdout, Err: os.Stderr}
}

// Notify implements catalog.Notifier
func (p *Notifier) Notify(n catalog.Notification) {
	w := p.Out
	if n.Severity == catalog.SeverityError && p.Err != nil {
		w = p.Err
	}
	if w == nil {
		return
	}
	fmt.Fprintln(w, FormatNotification(n))
}

// FormatTimeAgo formats a time as a human-readable "ago" string
func FormatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Format("2006-01-02")
	}
}

// PageFooter describes the current page, e.g. "page 2/5 (43 books)"
func PageFooter(page, pages, total int) string {
	noun := "books"
	if total == 1 {
		noun = "book"
	}
	return subtleStyle.Render(fmt.Sprintf("page %d/%d (%d %s)", page+1, pages, total, noun))
}

// SectionHeader returns a formatted section header for CLI output
// e.g., "\nREVIEWS:\n"
func SectionHeader(title string) string {
	return fmt.Sprintf("\n%s:\n", strings.ToUpper(title))
}

// IndentString indents each line in a string by the specified number of spaces
func IndentString(s string, spaces int) string {
	if s == "" {
		return ""
	}
	indent := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
