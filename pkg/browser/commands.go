package browser

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/marcus/shelf/internal/catalog"
	"github.com/marcus/shelf/internal/form"
	"github.com/marcus/shelf/internal/models"
	"github.com/marcus/shelf/pkg/browser/keymap"
)

// currentContext returns the keymap context for the topmost UI layer
func (m Model) currentContext() keymap.Context {
	switch {
	case m.FormOpen:
		return keymap.ContextForm
	case m.HelpOpen:
		return keymap.ContextHelp
	case m.ConfirmOpen:
		return keymap.ContextConfirm
	case m.Modal != nil:
		return keymap.ContextModal
	case m.FilterFocus >= 0:
		return keymap.ContextFilter
	default:
		return keymap.ContextMain
	}
}

// handleFormUpdate forwards messages to the open huh form
func (m Model) handleFormUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if cmd, found := m.Keymap.Lookup(keyMsg, keymap.ContextForm); found {
			switch cmd {
			case keymap.CmdFormSubmit, keymap.CmdFormCancel, keymap.CmdQuit:
				return m.executeCommand(cmd)
			}
		}
	}

	f, cmd := m.FormState.State.Form.Update(msg)
	if hf, ok := f.(*huh.Form); ok {
		m.FormState.State.Form = hf
	}

	switch m.FormState.State.Form.State {
	case huh.StateCompleted:
		return m.submitForm()
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	}
	return m, cmd
}

// handleKey processes key input using the keymap registry
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := m.currentContext()
	if cmd, ok := m.Keymap.Lookup(msg, ctx); ok {
		return m.executeCommand(cmd)
	}
	if ctx == keymap.ContextFilter {
		return m.typeInFilter(msg)
	}
	return m, nil
}

// typeInFilter edits the focused filter and hands changes to the controller,
// which debounces the resulting refresh.
func (m Model) typeInFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	i := m.FilterFocus
	before := m.Filters[i].Value()
	var cmd tea.Cmd
	m.Filters[i], cmd = m.Filters[i].Update(msg)
	if after := m.Filters[i].Value(); after != before {
		if err := m.Ctrl.UpdateFilter(catalog.Fields[i], after); err != nil {
			return m, m.setLocalStatus(catalog.SeverityError, err.Error())
		}
		m.syncSnapshot()
	}
	return m, cmd
}

// executeCommand runs a keymap command
func (m Model) executeCommand(cmd keymap.Command) (tea.Model, tea.Cmd) {
	switch cmd {
	case keymap.CmdQuit:
		m.Ctrl.Close()
		return m, tea.Quit

	case keymap.CmdToggleHelp:
		m.HelpOpen = !m.HelpOpen
		m.HelpScroll = 0
		return m, nil

	case keymap.CmdRefresh:
		return m, m.refreshCmd()

	// Cursor and scrolling
	case keymap.CmdCursorDown:
		m.Cursor++
		m.clampCursor()
	case keymap.CmdCursorUp:
		m.Cursor--
		m.clampCursor()
	case keymap.CmdCursorTop:
		m.Cursor = 0
	case keymap.CmdCursorBottom:
		m.Cursor = len(m.Snap.Items) - 1
		m.clampCursor()
	case keymap.CmdScrollDown:
		m.scroll(1)
	case keymap.CmdScrollUp:
		m.scroll(-1)
	case keymap.CmdClose:
		m.Modal = nil

	// Pager
	case keymap.CmdNextPage:
		m.Ctrl.NextPage()
		m.syncSnapshot()
	case keymap.CmdPrevPage:
		m.Ctrl.PrevPage()
		m.syncSnapshot()
	case keymap.CmdFirstPage:
		m.Ctrl.ChangePage(0)
		m.syncSnapshot()
	case keymap.CmdLastPage:
		m.Ctrl.ChangePage(m.Snap.PageCount - 1)
		m.syncSnapshot()

	// Query
	case keymap.CmdFocusFilter:
		return m.focusFilter(0)
	case keymap.CmdNextFilter:
		return m.focusFilter((m.FilterFocus + 1) % len(m.Filters))
	case keymap.CmdPrevFilter:
		return m.focusFilter((m.FilterFocus - 1 + len(m.Filters)) % len(m.Filters))
	case keymap.CmdLeaveFilter:
		if m.FilterFocus >= 0 {
			m.Filters[m.FilterFocus].Blur()
		}
		m.FilterFocus = -1
	case keymap.CmdClearFilters:
		return m.clearFilters()
	case keymap.CmdCycleCap:
		m.CapIndex = (m.CapIndex + 1) % len(capChoices)
		if err := m.Ctrl.UpdateResultCap(capChoices[m.CapIndex]); err != nil {
			return m, m.setLocalStatus(catalog.SeverityError, err.Error())
		}
		m.syncSnapshot()
	case keymap.CmdCycleSort:
		m.SortIndex = (m.SortIndex + 1) % len(sortChoices)
		m.Ctrl.UpdateSort(sortChoices[m.SortIndex].Label(), m.Reverse)
		m.syncSnapshot()
	case keymap.CmdToggleReverse:
		m.Reverse = !m.Reverse
		m.Ctrl.UpdateSort(sortChoices[m.SortIndex].Label(), m.Reverse)
		m.syncSnapshot()

	// Book actions
	case keymap.CmdNewBook:
		return m.openForm(FormAddBook, models.Book{ID: models.NewBookID}, form.BookSpec(false), nil)
	case keymap.CmdEditBook:
		if b, ok := m.SelectedBook(); ok {
			return m.openForm(FormEditBook, b, form.BookSpec(true), form.BookValues(b))
		}
	case keymap.CmdDelete:
		if b, ok := m.SelectedBook(); ok {
			m.ConfirmOpen = true
			m.ConfirmBook = b
		}
	case keymap.CmdConfirm:
		m.ConfirmOpen = false
		return m, m.deleteCmd(m.ConfirmBook.ID)
	case keymap.CmdCancel:
		m.ConfirmOpen = false
	case keymap.CmdSummary:
		if m.disableInsights {
			status := m.setStatus(catalog.Notification{
				Severity:  catalog.SeverityInfo,
				Operation: catalog.OpSummary,
				Message:   "Summaries are disabled (shelf feature enable ai_insights)",
			})
			return m, status
		}
		if b, ok := m.SelectedBook(); ok {
			m.openModal(ModalSummary, b)
			return m, m.insightCmd(b.ID)
		}
	case keymap.CmdReviews:
		if b, ok := m.SelectedBook(); ok {
			m.openModal(ModalReviews, b)
			return m, m.reviewsCmd(b.ID)
		}
	case keymap.CmdWriteReview:
		return m.openReviewForm()

	// Account
	case keymap.CmdSignIn:
		return m.openForm(FormSignIn, models.Book{}, form.CredentialsSpec(false), nil)
	case keymap.CmdSignUp:
		return m.openForm(FormSignUp, models.Book{}, form.CredentialsSpec(true), nil)
	case keymap.CmdSignOut:
		return m, m.signOutCmd()
	case keymap.CmdPreferences:
		return m.openForm(FormPreferences, models.Book{}, form.PreferencesSpec(), form.PreferencesValues(m.Ctrl.Preferences()))

	// Forms
	case keymap.CmdFormSubmit:
		if m.FormOpen {
			return m.submitForm()
		}
	case keymap.CmdFormCancel:
		m.closeForm()
	}
	return m, nil
}

func (m Model) focusFilter(i int) (tea.Model, tea.Cmd) {
	if m.FilterFocus >= 0 {
		m.Filters[m.FilterFocus].Blur()
	}
	m.FilterFocus = i
	m.Filters[i].CursorEnd()
	return m, tea.Batch(m.Filters[i].Focus(), textinput.Blink)
}

// clearFilters empties every filter with a single scheduled refresh
func (m Model) clearFilters() (tea.Model, tea.Cmd) {
	q := m.Ctrl.Query()
	q.Title, q.Author, q.Genre, q.Year = "", "", "", ""
	if err := m.Ctrl.SetQuery(q); err != nil {
		return m, m.setLocalStatus(catalog.SeverityError, err.Error())
	}
	for i := range m.Filters {
		m.Filters[i].SetValue("")
	}
	m.syncSnapshot()
	return m, nil
}

// scroll moves the help screen or the modal viewport by delta lines
func (m *Model) scroll(delta int) {
	if m.HelpOpen {
		m.HelpScroll += delta
		if m.HelpScroll < 0 {
			m.HelpScroll = 0
		}
		return
	}
	if m.Modal != nil {
		m.Modal.Viewport.SetYOffset(m.Modal.Viewport.YOffset + delta)
	}
}
