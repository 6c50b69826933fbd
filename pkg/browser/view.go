package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/shelf/internal/catalog"
	"github.com/marcus/shelf/internal/catalogclient"
	"github.com/marcus/shelf/internal/models"
	"github.com/marcus/shelf/internal/output"
)

const footerHelp = "/ filter  c cap  s sort  v reverse  n add  e edit  x delete  " +
	"enter summary  R reviews  w review  i sign in  o sign out  p prefs  ? help  q quit"

// View renders the model
func (m Model) View() string {
	if m.Width == 0 {
		return "Loading..."
	}
	switch {
	case m.FormOpen && m.FormState != nil:
		return m.renderFormModal()
	case m.HelpOpen:
		return m.renderHelp()
	case m.ConfirmOpen:
		return m.renderConfirm()
	case m.Modal != nil:
		return m.renderModal()
	}
	return m.renderMain()
}

func (m Model) renderMain() string {
	parts := []string{
		m.renderHeader(),
		m.renderFilters(),
		m.renderList(),
		m.renderStatus(),
		helpStyle.Render(ansi.Truncate(footerHelp, m.Width, "…")),
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	left := titleStyle.Render("shelf")
	if m.Version != "" {
		left += subtleStyle.Render(" " + m.Version)
	}
	if m.UpdateAvail != nil {
		left += loadStyle.Render(" (update: " + m.UpdateAvail.LatestVersion + ")")
	}
	var right string
	if m.Snap.Session.SignedIn() {
		right = "signed in as " + valueStyle.Render(m.Snap.Session.Email)
	} else {
		right = subtleStyle.Render("not signed in")
	}
	if m.Pending > 0 || m.Snap.Loading {
		right = loadStyle.Render("working… ") + right
	}
	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderFilters() string {
	cells := make([]string, 0, len(catalog.Fields))
	for i, f := range catalog.Fields {
		label := labelStyle.Render(filterLabel(f) + ":")
		value := m.Filters[i].View()
		if i == m.FilterFocus {
			value = focusedInputStyle.Render(value)
		}
		cells = append(cells, label+" "+value)
	}

	sortLabel := sortChoices[m.SortIndex].Label()
	if sortChoices[m.SortIndex] != models.SortNone {
		if m.Reverse {
			sortLabel += " ↓"
		} else {
			sortLabel += " ↑"
		}
	}
	settings := fmt.Sprintf("%s %s   %s %s   %s %s",
		labelStyle.Render("cap:"), valueStyle.Render(m.capLabel()),
		labelStyle.Render("sort:"), valueStyle.Render(sortLabel),
		labelStyle.Render("query:"), subtleStyle.Render(m.Ctrl.QueryString()))

	style := panelStyle
	if m.FilterFocus >= 0 {
		style = activePanelStyle
	}
	body := strings.Join(cells, "  ") + "\n" + ansi.Truncate(settings, m.innerWidth(), "…")
	return style.Width(m.Width - 2).Render(panelTitleStyle.Render("Filters") + "\n" + body)
}

func (m Model) capLabel() string {
	c := capChoices[m.CapIndex]
	if c == models.CapDefault {
		return fmt.Sprintf("default (%d)", m.DefaultCount)
	}
	return c
}

// innerWidth is the usable width inside a panel border and padding
func (m Model) innerWidth() int {
	w := m.Width - 6
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) renderList() string {
	width := m.innerWidth()
	var sb strings.Builder
	sb.WriteString(panelTitleStyle.Render("Books"))
	sb.WriteString("\n")

	switch {
	case !m.Snap.Loaded:
		sb.WriteString(subtleStyle.Render("Loading books…"))
		sb.WriteString(strings.Repeat("\n", catalog.PageSize))
	case m.Snap.Total == 0:
		sb.WriteString(subtleStyle.Render("No books match the current filters"))
		sb.WriteString(strings.Repeat("\n", catalog.PageSize))
	default:
		table := strings.TrimRight(output.BookTable(m.Snap.Items, width-2), "\n")
		lines := strings.Split(table, "\n")
		sb.WriteString("  " + lines[0] + "\n")
		for i, line := range lines[1:] {
			mark := "  "
			if i < len(m.Snap.Items) && m.Reviewed[m.Snap.Items[i].ID] {
				mark = markStyle.Render("✓ ")
			}
			row := mark + line
			if i == m.Cursor {
				plain := ansi.Strip(row)
				if pad := width - ansi.StringWidth(plain); pad > 0 {
					plain += strings.Repeat(" ", pad)
				}
				row = selectedRowStyle.Render(plain)
			}
			sb.WriteString(row + "\n")
		}
		// Keep the panel height stable on short pages
		sb.WriteString(strings.Repeat("\n", catalog.PageSize-len(m.Snap.Items)))
	}
	sb.WriteString(output.PageFooter(m.Snap.Page, m.Snap.PageCount, m.Snap.Total))

	style := activePanelStyle
	if m.FilterFocus >= 0 {
		style = panelStyle
	}
	return style.Width(m.Width - 2).Render(sb.String())
}

func (m Model) renderStatus() string {
	if m.StatusMessage == "" {
		return ""
	}
	return formatStatus(m.StatusSeverity, ansi.Truncate(m.StatusMessage, m.Width, "…"))
}

// --- overlays ---

func (m Model) place(box string) string {
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderFormModal() string {
	w, _ := m.formModalDimensions()
	body := m.FormState.State.Form.View() + "\n" +
		helpStyle.Render("ctrl+s submit  esc cancel")
	if m.StatusMessage != "" {
		body += "\n" + formatStatus(m.StatusSeverity, m.StatusMessage)
	}
	return m.place(modalStyle.Width(w).Render(body))
}

func (m Model) renderConfirm() string {
	b := m.ConfirmBook
	body := fmt.Sprintf("Delete %s by %s?\n\n%s",
		valueStyle.Render("“"+b.Title+"”"), b.Author,
		helpStyle.Render("[y] delete  [n] cancel"))
	return m.place(confirmStyle.Render(body))
}

func (m Model) renderHelp() string {
	lines := strings.Split(strings.Trim(m.Keymap.GenerateHelp(), "\n"), "\n")
	visible := m.Height - 4
	if visible < 5 {
		visible = 5
	}
	start := m.HelpScroll
	if maxStart := len(lines) - visible; start > maxStart {
		start = maxStart
	}
	if start < 0 {
		start = 0
	}
	end := start + visible
	if end > len(lines) {
		end = len(lines)
	}
	return m.place(modalStyle.Render(strings.Join(lines[start:end], "\n")))
}

func (m Model) renderModal() string {
	title := "Summary"
	if m.Modal.Kind == ModalReviews {
		title = "Reviews"
	}
	header := panelTitleStyle.Render(title + ": " + m.Modal.Book.Title)
	footer := helpStyle.Render("j/k scroll  w review  esc close")
	return m.place(modalStyle.Render(header + "\n" + m.Modal.Viewport.View() + "\n" + footer))
}

// renderModalBody renders the modal content for width columns
func renderModalBody(ms *ModalState, width int) string {
	switch ms.Kind {
	case ModalReviews:
		return renderReviews(ms)
	default:
		return renderInsight(ms, width)
	}
}

func renderInsight(ms *ModalState, width int) string {
	if ms.Loading {
		return loadStyle.Render("Generating summary…")
	}
	in := ms.Insight
	if in.Summary == "" {
		return subtleStyle.Render("Summary unavailable: " + failureText(ms.Err))
	}
	out := output.RenderInsight(ms.Book.Title, in.Summary, in.Recommendation, width)
	if ms.Err != nil && in.Recommendation == "" {
		out += "\n" + subtleStyle.Render("Recommendation unavailable: "+failureText(ms.Err))
	}
	return out
}

func renderReviews(ms *ModalState) string {
	if ms.Loading {
		return loadStyle.Render("Loading reviews…")
	}
	if ms.Err != nil {
		return subtleStyle.Render("Reviews unavailable: " + failureText(ms.Err))
	}
	if len(ms.Reviews) == 0 {
		return subtleStyle.Render("No reviews yet.")
	}

	var sb strings.Builder
	sb.WriteString(output.ReviewSummary(ms.Reviews))
	sb.WriteString("\n\n")
	for i, r := range ms.Reviews {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(output.FormatReview(r))
	}
	return sb.String()
}

// failureText prefers the server's explanation over the raw error
func failureText(err error) string {
	if err == nil {
		return "no content"
	}
	if msg, ok := catalogclient.ServerMessage(err); ok {
		return msg
	}
	return err.Error()
}
