// Package browser implements the interactive catalog browser: a Bubble Tea
// program over catalog.Controller with filter inputs, a paged book list,
// forms for every mutation, and summary and review modals.
package browser

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/shelf/internal/catalog"
	"github.com/marcus/shelf/internal/models"
	"github.com/marcus/shelf/internal/version"
	"github.com/marcus/shelf/pkg/browser/keymap"
)

// Events carries controller callbacks into the Bubble Tea loop. Wire
// OnChange and Notify into catalog.Options before creating the controller.
// Messages are delivered in the order they were sent; a snapshot that is
// still queued is replaced by a newer one.
type Events struct {
	mu     sync.Mutex
	queue  []tea.Msg
	signal chan struct{}
}

// NewEvents creates an event bridge
func NewEvents() *Events {
	return &Events{signal: make(chan struct{}, 1)}
}

// OnChange forwards a controller snapshot
func (e *Events) OnChange(s catalog.Snapshot) { e.send(SnapshotMsg(s)) }

// Notify implements catalog.Notifier
func (e *Events) Notify(n catalog.Notification) { e.send(NotificationMsg(n)) }

// send never blocks the controller
func (e *Events) send(msg tea.Msg) {
	e.mu.Lock()
	n := len(e.queue)
	if _, isSnap := msg.(SnapshotMsg); isSnap && n > 0 {
		if _, lastSnap := e.queue[n-1].(SnapshotMsg); lastSnap {
			e.queue[n-1] = msg
			e.mu.Unlock()
			return
		}
	}
	e.queue = append(e.queue, msg)
	e.mu.Unlock()

	select {
	case e.signal <- struct{}{}:
	default:
	}
}

// next pops the oldest queued message
func (e *Events) next() (tea.Msg, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return nil, false
	}
	msg := e.queue[0]
	e.queue[0] = nil
	e.queue = e.queue[1:]
	return msg, true
}

// wait returns a command that delivers the next controller event
func (e *Events) wait() tea.Cmd {
	return func() tea.Msg {
		for {
			if msg, ok := e.next(); ok {
				return msg
			}
			<-e.signal
		}
	}
}

// Config holds optional browser settings
type Config struct {
	Keymap       *keymap.Registry // nil uses the default bindings
	DefaultCount int              // shown as the "default" cap label
	Version      string
	Context      context.Context // parent of UI-issued requests

	CheckUpdates    bool // look for a newer release on start
	DisableInsights bool // the summary key only explains how to enable it
}

// capChoices are cycled by the cap key; CapDefault comes first
var capChoices = append([]string{models.CapDefault}, models.ResultCaps...)

// sortChoices are cycled by the sort key; SortNone comes first
var sortChoices = append([]models.SortKey{models.SortNone}, models.SortKeys...)

// Model is the main Bubble Tea model for the catalog browser
type Model struct {
	Ctrl   *catalog.Controller
	Keymap *keymap.Registry
	events *Events
	ctx    context.Context

	// Window dimensions
	Width  int
	Height int

	// Last controller state
	Snap   catalog.Snapshot
	Cursor int // selected row on the current page

	// Query inputs
	Filters      []textinput.Model // one per catalog.Fields entry
	FilterFocus  int               // focused filter, -1 when the list has focus
	CapIndex     int               // index into capChoices
	SortIndex    int               // index into sortChoices
	Reverse      bool
	DefaultCount int

	// Status line
	StatusMessage  string
	StatusSeverity catalog.Severity
	StatusGen      int

	// Books reviewed by the signed-in user
	Reviewed map[int64]bool

	HelpOpen   bool
	HelpScroll int

	// Delete confirmation
	ConfirmOpen bool
	ConfirmBook models.Book

	// Summary and reviews modal
	Modal *ModalState

	// Form modal state
	FormOpen  bool
	FormState *FormState

	Pending         int // UI-issued requests still running
	Version         string
	UpdateAvail     *version.UpdateAvailableMsg
	checkUpdates    bool
	disableInsights bool
}

// NewModel creates the browser over ctrl. events must be the bridge the
// controller was created with.
func NewModel(ctrl *catalog.Controller, events *Events, cfg Config) Model {
	km := cfg.Keymap
	if km == nil {
		km = keymap.NewRegistry()
		keymap.RegisterDefaults(km)
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	defaultCount := cfg.DefaultCount
	if defaultCount <= 0 {
		defaultCount = catalog.DefaultCount
	}

	snap := ctrl.Snapshot()
	m := Model{
		Ctrl:         ctrl,
		Keymap:       km,
		events:       events,
		ctx:          ctx,
		Snap:         snap,
		FilterFocus:  -1,
		DefaultCount: defaultCount,
		Reviewed:     make(map[int64]bool),
		Version:      cfg.Version,

		checkUpdates:    cfg.CheckUpdates,
		disableInsights: cfg.DisableInsights,
	}

	q := snap.Query
	for _, f := range catalog.Fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = filterLabel(f)
		ti.CharLimit = 100
		ti.Width = 16
		ti.SetValue(q.Filter(f))
		m.Filters = append(m.Filters, ti)
	}
	for i, c := range capChoices {
		if c == q.Cap {
			m.CapIndex = i
		}
	}
	for i, k := range sortChoices {
		if k == q.SortBy {
			m.SortIndex = i
		}
	}
	m.Reverse = q.Reverse
	return m
}

// Init starts listening for controller events and issues the initial fetch
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.events.wait(), m.startCmd()}
	if m.checkUpdates {
		cmds = append(cmds, version.CheckAsync(m.Version))
	}
	if m.Snap.Session.SignedIn() {
		cmds = append(cmds, m.fetchReviewedCmd())
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Controller events come first so that an open form never stalls the
	// listener chain.
	switch msg := msg.(type) {
	case SnapshotMsg:
		// The reviewed marks follow the book list
		if m.applySnapshot(catalog.Snapshot(msg)) && m.Snap.Session.SignedIn() {
			return m, tea.Batch(m.events.wait(), m.fetchReviewedCmd())
		}
		return m, m.events.wait()

	case NotificationMsg:
		return m, tea.Batch(m.setStatus(catalog.Notification(msg)), m.events.wait())

	case ClearStatusMsg:
		if msg.Gen == m.StatusGen {
			m.StatusMessage = ""
		}
		return m, nil

	case ActionDoneMsg:
		return m.handleActionDone(msg)

	case InsightMsg:
		m.Pending--
		if m.Modal != nil && m.Modal.Kind == ModalSummary && m.Modal.Book.ID == msg.BookID {
			m.Modal.Loading = false
			m.Modal.Insight = msg.Insight
			m.Modal.Err = msg.Err
			m.refreshModalContent()
		}
		return m, nil

	case ReviewsMsg:
		m.Pending--
		if m.Modal != nil && m.Modal.Kind == ModalReviews && m.Modal.Book.ID == msg.BookID {
			m.Modal.Loading = false
			m.Modal.Reviews = msg.Reviews
			m.Modal.Err = msg.Err
			m.refreshModalContent()
		}
		return m, nil

	case ReviewedBooksMsg:
		if msg.Err == nil {
			m.Reviewed = make(map[int64]bool, len(msg.IDs))
			for _, id := range msg.IDs {
				m.Reviewed[id] = true
			}
		}
		return m, nil

	case version.UpdateAvailableMsg:
		m.UpdateAvail = &msg
		return m, nil

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.resizeModal()
		if !m.FormOpen {
			return m, nil
		}
	}

	// Form mode: forward all remaining messages to the huh form
	if m.FormOpen && m.FormState != nil && m.FormState.State != nil {
		return m.handleFormUpdate(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		// Cursor blink and friends for the focused filter
		if m.FilterFocus >= 0 {
			var cmd tea.Cmd
			m.Filters[m.FilterFocus], cmd = m.Filters[m.FilterFocus].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// applySnapshot stores s and keeps the cursor on the page. A snapshot older
// than the one shown is ignored. It reports whether s completed a list load.
func (m *Model) applySnapshot(s catalog.Snapshot) bool {
	if s.Version < m.Snap.Version {
		return false
	}
	loaded := s.Fetches > m.Snap.Fetches
	if s.Page != m.Snap.Page || !s.Loaded {
		m.Cursor = 0
	}
	m.Snap = s
	m.clampCursor()
	if !s.Session.SignedIn() && len(m.Reviewed) > 0 {
		m.Reviewed = make(map[int64]bool)
	}
	return loaded
}

// syncSnapshot reads the controller state after a synchronous call
func (m *Model) syncSnapshot() {
	m.applySnapshot(m.Ctrl.Snapshot())
}

func (m *Model) clampCursor() {
	n := len(m.Snap.Items)
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

// SelectedBook returns the book under the cursor
func (m Model) SelectedBook() (models.Book, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Snap.Items) {
		return models.Book{}, false
	}
	return m.Snap.Items[m.Cursor], true
}

// setStatus shows n in the status line until statusTTL passes
func (m *Model) setStatus(n catalog.Notification) tea.Cmd {
	m.StatusGen++
	m.StatusMessage = n.Message
	m.StatusSeverity = n.Severity
	gen := m.StatusGen
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return ClearStatusMsg{Gen: gen}
	})
}

// setLocalStatus shows a message that did not come from the controller
func (m *Model) setLocalStatus(sev catalog.Severity, msg string) tea.Cmd {
	return m.setStatus(catalog.Notification{Time: time.Now(), Severity: sev, Message: msg})
}

// handleActionDone updates follow-up state after a controller call
func (m Model) handleActionDone(msg ActionDoneMsg) (tea.Model, tea.Cmd) {
	m.Pending--
	if msg.Err != nil {
		return m, nil
	}
	switch msg.Op {
	case catalog.OpSignIn, catalog.OpSignUp, catalog.OpReview:
		return m, m.fetchReviewedCmd()
	case catalog.OpSignOut:
		m.Reviewed = make(map[int64]bool)
	}
	return m, nil
}

func filterLabel(f catalog.Field) string {
	switch f {
	case catalog.FieldYear:
		return "year"
	default:
		return string(f)
	}
}
