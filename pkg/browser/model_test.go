package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/shelf/internal/catalog"
	"github.com/marcus/shelf/internal/catalogclient"
	"github.com/marcus/shelf/internal/form"
	"github.com/marcus/shelf/internal/models"
	"github.com/marcus/shelf/internal/session"
	"github.com/marcus/shelf/internal/version"
)

// fakeGateway serves an in-memory catalog
type fakeGateway struct {
	mu       sync.Mutex
	books    []models.Book
	nextID   int64
	edits    []string
	reviews  []models.Review
	reviewed []int64
	submits  int
}

func (g *fakeGateway) ListBooks(ctx context.Context, q catalogclient.Params) ([]models.Book, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]models.Book, len(g.books))
	copy(out, g.books)
	return out, nil
}

func (g *fakeGateway) AddBook(ctx context.Context, b models.Book) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	b.ID = g.nextID
	g.books = append(g.books, b)
	return "added", nil
}

func (g *fakeGateway) EditBook(ctx context.Context, id int64, fields catalogclient.Params) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edits = append(g.edits, fmt.Sprintf("%d?%s", id, fields.Encode()))
	return "edited", nil
}

func (g *fakeGateway) DeleteBook(ctx context.Context, id int64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.books {
		if g.books[i].ID == id {
			g.books = append(g.books[:i], g.books[i+1:]...)
			return "deleted", nil
		}
	}
	return "", &catalogclient.APIError{StatusCode: 404, Message: "Book not found"}
}

func (g *fakeGateway) Summary(ctx context.Context, id int64) (string, error) {
	return fmt.Sprintf("Summary of book %d.", id), nil
}

func (g *fakeGateway) Recommendation(ctx context.Context, id int64, in catalogclient.RecommendationInput) (string, error) {
	return "You will enjoy it.", nil
}

func (g *fakeGateway) Reviews(ctx context.Context, id int64) ([]models.Review, error) {
	return g.reviews, nil
}

func (g *fakeGateway) SubmitReview(ctx context.Context, id int64, email, token string, stars int, content string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.submits++
	g.reviewed = append(g.reviewed, id)
	return "", nil
}

func (g *fakeGateway) ReviewedBooks(ctx context.Context, email, token string) ([]int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]int64(nil), g.reviewed...), nil
}

func (g *fakeGateway) SignIn(ctx context.Context, email, password string) (string, error) {
	return "token-" + email, nil
}

func (g *fakeGateway) SignUp(ctx context.Context, email, password string) (string, error) {
	return "token-" + email, nil
}

func (g *fakeGateway) SignOut(ctx context.Context, email, token string) error { return nil }

func makeBooks(n int) []models.Book {
	books := make([]models.Book, n)
	for i := range books {
		books[i] = models.Book{
			ID: int64(i + 1), Title: fmt.Sprintf("Book %02d", i+1), Author: "Author",
			Genre: "Novel", PublicationYear: 1990 + i%30, Price: 9.5, Currency: models.CurrencyUSD,
		}
	}
	return books
}

// newTestModel returns a sized model whose controller already loaded n books.
// The debounce is long enough that scheduled refreshes never fire.
func newTestModel(t *testing.T, n int, sess session.Session) (Model, *fakeGateway) {
	t.Helper()
	gw := &fakeGateway{books: makeBooks(n), nextID: int64(n)}
	ev := NewEvents()
	ctrl := catalog.New(gw, catalog.Options{
		Debounce: time.Hour,
		Notifier: ev,
		OnChange: ev.OnChange,
		Session:  sess,
		Store:    &session.MemoryStore{},
	})
	t.Cleanup(ctrl.Close)
	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	m := NewModel(ctrl, ev, Config{Version: "v0.1.0"})
	m.Width, m.Height = 120, 40
	return m, gw
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends keys in order and returns the model and the last command
func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var updated tea.Model
		updated, cmd = m.Update(keyMsg(k))
		m = updated.(Model)
	}
	return m, cmd
}

// feed runs cmd synchronously and hands its message back to the model
func feed(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	updated, next := m.Update(cmd())
	return updated.(Model), next
}

func TestViewBeforeResize(t *testing.T) {
	m, _ := newTestModel(t, 3, session.Session{})
	m.Width = 0
	if got := m.View(); got != "Loading..." {
		t.Errorf("View() = %q", got)
	}
}

func TestRenderMainShowsPage(t *testing.T) {
	m, _ := newTestModel(t, 25, session.Session{})
	view := ansi.Strip(m.View())
	for _, want := range []string{"Book 01", "Book 10", "page 1/3 (25 books)", "not signed in", "default (100)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "Book 11") {
		t.Error("second page rendered on the first")
	}
}

func TestTypingInFilterUpdatesQuery(t *testing.T) {
	m, _ := newTestModel(t, 3, session.Session{})

	m, _ = press(m, "/")
	if m.FilterFocus != 0 {
		t.Fatalf("FilterFocus = %d, want 0", m.FilterFocus)
	}
	// Letters bound in the list context are typed while a filter has focus
	m, _ = press(m, "q", "x", "?")
	if got := m.Ctrl.Query().Title; got != "qx?" {
		t.Errorf("title filter = %q, want %q", got, "qx?")
	}

	m, _ = press(m, "tab", "L", "e")
	if m.FilterFocus != 1 || m.Ctrl.Query().Author != "Le" {
		t.Errorf("focus %d author %q", m.FilterFocus, m.Ctrl.Query().Author)
	}
	m, _ = press(m, "shift+tab", "shift+tab")
	if m.FilterFocus != 3 {
		t.Errorf("FilterFocus = %d, want wrap to 3", m.FilterFocus)
	}
	m, _ = press(m, "esc")
	if m.FilterFocus != -1 {
		t.Errorf("esc should leave the filters, focus = %d", m.FilterFocus)
	}
	if got, want := m.Ctrl.QueryString(), "title=qx%3F&author=Le&count=100"; got != want {
		t.Errorf("QueryString() = %q, want %q", got, want)
	}
}

func TestClearFilters(t *testing.T) {
	m, _ := newTestModel(t, 3, session.Session{})
	m, _ = press(m, "/", "a", "tab", "b", "esc", "ctrl+l")
	q := m.Ctrl.Query()
	if q.Title != "" || q.Author != "" {
		t.Errorf("query after clear = %+v", q)
	}
	if m.Filters[0].Value() != "" || m.Filters[1].Value() != "" {
		t.Error("inputs not cleared")
	}
}

func TestCycleCapSortReverse(t *testing.T) {
	m, _ := newTestModel(t, 3, session.Session{})

	m, _ = press(m, "c")
	if got := m.Ctrl.Query().Cap; got != "10" {
		t.Errorf("cap = %q, want 10", got)
	}
	m, _ = press(m, "c", "c", "c", "c")
	if got := m.Ctrl.Query().Cap; got != models.CapAll {
		t.Errorf("cap = %q, want All", got)
	}
	m, _ = press(m, "c")
	if got := m.Ctrl.Query().Cap; got != models.CapDefault {
		t.Errorf("cap wraps to %q, want default", got)
	}

	m, _ = press(m, "s", "s", "s")
	if got := m.Ctrl.Query().SortBy; got != models.SortPublicationYear {
		t.Errorf("sort = %q, want publication_year", got)
	}
	m, _ = press(m, "v")
	if got, want := m.Ctrl.QueryString(), "count=100&sortby=publication_year&reverse=1"; got != want {
		t.Errorf("QueryString() = %q, want %q", got, want)
	}
	if !strings.Contains(ansi.Strip(m.View()), "Publication year ↓") {
		t.Error("view should show the reversed sort")
	}
}

func TestPagerKeys(t *testing.T) {
	m, _ := newTestModel(t, 25, session.Session{})

	tests := []struct {
		key  string
		page int
	}{
		{"l", 1},
		{"l", 2},
		{"l", 2},
		{"h", 1},
		{"home", 0},
		{"end", 2},
	}
	for _, tt := range tests {
		m, _ = press(m, tt.key)
		if m.Snap.Page != tt.page {
			t.Errorf("after %q page = %d, want %d", tt.key, m.Snap.Page, tt.page)
		}
	}
	if len(m.Snap.Items) != 5 {
		t.Errorf("last page items = %d, want 5", len(m.Snap.Items))
	}
}

func TestCursorMovement(t *testing.T) {
	m, _ := newTestModel(t, 4, session.Session{})

	m, _ = press(m, "j", "j", "j", "j", "j")
	if m.Cursor != 3 {
		t.Errorf("Cursor = %d, want clamp to 3", m.Cursor)
	}
	m, _ = press(m, "g", "g")
	if m.Cursor != 0 {
		t.Errorf("g g: Cursor = %d", m.Cursor)
	}
	m, _ = press(m, "G")
	if b, _ := m.SelectedBook(); b.ID != 4 {
		t.Errorf("G selects %d, want 4", b.ID)
	}
	m, _ = press(m, "k")
	if m.Cursor != 2 {
		t.Errorf("k: Cursor = %d", m.Cursor)
	}
}

func TestSnapshotMsgKeepsListening(t *testing.T) {
	m, _ := newTestModel(t, 12, session.Session{})
	m.Cursor = 5

	snap := m.Ctrl.Snapshot()
	snap.Items = snap.Items[:2]
	updated, cmd := m.Update(SnapshotMsg(snap))
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("snapshot handling must re-arm the event listener")
	}
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want clamp to 1", m.Cursor)
	}
}

func TestEventsBridge(t *testing.T) {
	ev := NewEvents()
	ctrl := catalog.New(&fakeGateway{}, catalog.Options{Debounce: time.Hour, Notifier: ev, OnChange: ev.OnChange})
	defer ctrl.Close()

	if err := ctrl.UpdateFilter(catalog.FieldGenre, "Poetry"); err != nil {
		t.Fatal(err)
	}
	msg := ev.wait()()
	snap, ok := msg.(SnapshotMsg)
	if !ok || snap.Query.Genre != "Poetry" {
		t.Errorf("event = %#v", msg)
	}

	ctrl.SignOut(context.Background())
	if n, ok := ev.wait()().(NotificationMsg); !ok || n.Operation != catalog.OpSignOut {
		t.Errorf("notification event = %#v", n)
	}
}

func TestStatusExpires(t *testing.T) {
	m, _ := newTestModel(t, 1, session.Session{})

	updated, _ := m.Update(NotificationMsg{Severity: catalog.SeverityError, Message: "boom"})
	m = updated.(Model)
	if m.StatusMessage != "boom" {
		t.Fatalf("StatusMessage = %q", m.StatusMessage)
	}
	first := m.StatusGen

	updated, _ = m.Update(NotificationMsg{Severity: catalog.SeveritySuccess, Message: "ok"})
	m = updated.(Model)
	updated, _ = m.Update(ClearStatusMsg{Gen: first})
	m = updated.(Model)
	if m.StatusMessage != "ok" {
		t.Errorf("stale clear removed the newer message: %q", m.StatusMessage)
	}
	updated, _ = m.Update(ClearStatusMsg{Gen: m.StatusGen})
	if updated.(Model).StatusMessage != "" {
		t.Error("current clear should empty the status line")
	}
}

func TestDeleteConfirmation(t *testing.T) {
	m, gw := newTestModel(t, 3, session.Session{})

	m, _ = press(m, "j", "x")
	if !m.ConfirmOpen || m.ConfirmBook.ID != 2 {
		t.Fatalf("confirm = %v %+v", m.ConfirmOpen, m.ConfirmBook)
	}
	if !strings.Contains(ansi.Strip(m.View()), "Delete “Book 02”") {
		t.Error("confirmation not rendered")
	}
	m, _ = press(m, "n")
	if m.ConfirmOpen {
		t.Fatal("n should cancel")
	}

	m, cmd := press(m, "x", "y")
	if m.Pending != 1 {
		t.Errorf("Pending = %d, want 1", m.Pending)
	}
	m, _ = feed(t, m, cmd)
	if m.Pending != 0 {
		t.Errorf("Pending = %d after completion", m.Pending)
	}
	if len(gw.books) != 2 {
		t.Errorf("books = %d, want 2", len(gw.books))
	}
	m.syncSnapshot()
	if m.Snap.Total != 2 {
		t.Errorf("controller not refreshed, total = %d", m.Snap.Total)
	}
}

func TestAddBookForm(t *testing.T) {
	m, gw := newTestModel(t, 1, session.Session{})

	m, _ = press(m, "n")
	if !m.FormOpen || m.FormState.Kind != FormAddBook {
		t.Fatal("add form not open")
	}
	st := m.FormState.State
	for k, v := range map[string]string{
		form.KeyTitle: "Emma", form.KeyAuthor: "Jane Austen", form.KeyGenre: "Classic",
		form.KeyYear: "1815", form.KeyPrice: "4.20",
	} {
		st.Set(k, v)
	}

	m, cmd := press(m, "ctrl+s")
	if m.FormOpen {
		t.Fatal("form should close on submit")
	}
	feed(t, m, cmd)
	if len(gw.books) != 2 || gw.books[1].Title != "Emma" || gw.books[1].Currency != models.CurrencyUSD {
		t.Errorf("books = %+v", gw.books)
	}
}

func TestInvalidFormStaysOpen(t *testing.T) {
	m, _ := newTestModel(t, 1, session.Session{})

	m, _ = press(m, "n")
	m.FormState.State.Set(form.KeyTitle, "Emma")
	m, _ = press(m, "ctrl+s")
	if !m.FormOpen {
		t.Fatal("incomplete form should stay open")
	}
	if m.StatusSeverity != catalog.SeverityError || m.StatusMessage == "" {
		t.Errorf("status = %q (%s)", m.StatusMessage, m.StatusSeverity)
	}
	if got := m.FormState.State.Values()[form.KeyTitle]; got != "Emma" {
		t.Errorf("entered title lost: %q", got)
	}

	m, _ = press(m, "esc")
	if m.FormOpen {
		t.Error("esc should cancel the form")
	}
}

func TestEditFormSendsOnlyChanges(t *testing.T) {
	m, gw := newTestModel(t, 2, session.Session{})

	m, _ = press(m, "j", "e")
	if !m.FormOpen || m.FormState.Book.ID != 2 {
		t.Fatal("edit form not open for book 2")
	}
	m.FormState.State.Set(form.KeyTitle, "Renamed")
	m.FormState.State.Set(form.KeyPrice, "12")

	m, cmd := press(m, "ctrl+s")
	feed(t, m, cmd)
	if len(gw.edits) != 1 || gw.edits[0] != "2?title=Renamed&price=12.00" {
		t.Errorf("edits = %v", gw.edits)
	}
}

func TestEditFormWithoutChanges(t *testing.T) {
	m, gw := newTestModel(t, 2, session.Session{})

	m, cmd := press(m, "e", "ctrl+s")
	if m.FormOpen {
		t.Error("form should close")
	}
	if m.StatusMessage != "Nothing to change" {
		t.Errorf("status = %q", m.StatusMessage)
	}
	if cmd == nil || len(gw.edits) != 0 {
		t.Errorf("no request expected, edits = %v", gw.edits)
	}
}

func TestWriteReviewRequiresSession(t *testing.T) {
	m, _ := newTestModel(t, 2, session.Session{})
	m, _ = press(m, "w")
	if m.FormOpen {
		t.Error("review form opened without a session")
	}
	if m.StatusMessage != "Sign in to review books" {
		t.Errorf("status = %q", m.StatusMessage)
	}
}

func TestWriteReview(t *testing.T) {
	m, gw := newTestModel(t, 2, session.Session{Email: "a@b.co", Token: "t"})

	m, _ = press(m, "w")
	if !m.FormOpen || m.FormState.Kind != FormReview {
		t.Fatal("review form not open")
	}
	m.FormState.State.Set(form.KeyStars, "4")
	m.FormState.State.Set(form.KeyContent, "Lovely")
	m, cmd := press(m, "ctrl+s")
	m, next := feed(t, m, cmd)
	if gw.submits != 1 {
		t.Fatalf("submits = %d", gw.submits)
	}
	// A successful review reloads the reviewed marks
	m, _ = feed(t, m, next)
	if !m.Reviewed[1] {
		t.Errorf("Reviewed = %v, want book 1 marked", m.Reviewed)
	}
	if !strings.Contains(ansi.Strip(m.View()), "✓") {
		t.Error("reviewed mark not rendered")
	}
}

func TestSignInAndOut(t *testing.T) {
	m, gw := newTestModel(t, 2, session.Session{})
	gw.reviewed = []int64{2}

	m, _ = press(m, "i")
	if !m.FormOpen || m.FormState.Kind != FormSignIn {
		t.Fatal("sign in form not open")
	}
	m.FormState.State.Set(form.KeyEmail, "reader@example.com")
	m.FormState.State.Set(form.KeyPassword, "secret")
	m, cmd := press(m, "ctrl+s")
	m, next := feed(t, m, cmd)
	if got := m.Ctrl.Session(); got.Email != "reader@example.com" || got.Token != "token-reader@example.com" {
		t.Fatalf("session = %+v", got)
	}
	m, _ = feed(t, m, next)
	if !m.Reviewed[2] {
		t.Errorf("Reviewed = %v", m.Reviewed)
	}

	m, cmd = press(m, "o")
	m, _ = feed(t, m, cmd)
	if m.Ctrl.Session().SignedIn() || len(m.Reviewed) != 0 {
		t.Errorf("still signed in or marks kept: %+v %v", m.Ctrl.Session(), m.Reviewed)
	}
}

func TestPreferencesForm(t *testing.T) {
	m, _ := newTestModel(t, 1, session.Session{})

	m, _ = press(m, "p")
	m.FormState.State.Set(form.KeyMood, "Curious")
	m, _ = press(m, "ctrl+s")
	if m.FormOpen {
		t.Error("form should close")
	}
	if got := m.Ctrl.Preferences().Mood; got != "Curious" {
		t.Errorf("mood = %q", got)
	}
}

func TestSummaryModal(t *testing.T) {
	m, _ := newTestModel(t, 3, session.Session{})

	m, cmd := press(m, "j", "enter")
	if m.Modal == nil || m.Modal.Kind != ModalSummary || !m.Modal.Loading {
		t.Fatalf("modal = %+v", m.Modal)
	}
	m, _ = feed(t, m, cmd)
	if m.Modal.Loading || m.Modal.Insight.Summary != "Summary of book 2." {
		t.Errorf("insight = %+v", m.Modal.Insight)
	}
	view := ansi.Strip(m.View())
	for _, want := range []string{"Summary: Book 02", "Summary of book 2.", "You will enjoy it."} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, _ = press(m, "esc")
	if m.Modal != nil {
		t.Error("esc should close the modal")
	}
}

func TestLateInsightIgnored(t *testing.T) {
	m, _ := newTestModel(t, 3, session.Session{})
	m, _ = press(m, "enter", "esc")
	updated, _ := m.Update(InsightMsg{BookID: 1, Insight: catalog.Insight{Summary: "late"}})
	if updated.(Model).Modal != nil {
		t.Error("closed modal reopened by a late response")
	}
}

func TestReviewsModal(t *testing.T) {
	m, gw := newTestModel(t, 1, session.Session{})
	gw.reviews = []models.Review{
		{Email: "a@b.co", Stars: 5, Content: "Great"},
		{Email: "c@d.co", Stars: 4, Content: "Good"},
	}

	m, cmd := press(m, "R")
	m, _ = feed(t, m, cmd)
	view := ansi.Strip(m.View())
	for _, want := range []string{"Reviews: Book 01", "4.5 from 2 reviews", "a@b.co", "Good"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t, 1, session.Session{})
	m, _ = press(m, "?")
	if !m.HelpOpen || !strings.Contains(m.View(), "Key Bindings") {
		t.Fatal("help not shown")
	}
	m, _ = press(m, "j", "k", "k")
	if m.HelpScroll != 0 {
		t.Errorf("HelpScroll = %d", m.HelpScroll)
	}
	m, _ = press(m, "esc")
	if m.HelpOpen {
		t.Error("esc should close help")
	}
}

func TestUpdateNotice(t *testing.T) {
	m, _ := newTestModel(t, 1, session.Session{})
	updated, _ := m.Update(version.UpdateAvailableMsg{CurrentVersion: "v0.1.0", LatestVersion: "v0.2.0"})
	m = updated.(Model)
	if !strings.Contains(ansi.Strip(m.View()), "update: v0.2.0") {
		t.Error("header should announce the update")
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, 1, session.Session{})
	_, cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("no quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestSummaryDisabled(t *testing.T) {
	m, _ := newTestModel(t, 3, session.Session{})
	m.disableInsights = true
	m, _ = press(m, "enter")
	if m.Modal != nil {
		t.Fatal("summary modal opened while insights are disabled")
	}
	if !strings.Contains(m.StatusMessage, "ai_insights") {
		t.Errorf("StatusMessage = %q", m.StatusMessage)
	}
}

func TestEventsKeepOrderPastBuffer(t *testing.T) {
	ev := NewEvents()
	for i := 0; i < 100; i++ {
		ev.Notify(catalog.Notification{Message: fmt.Sprintf("n%d", i)})
	}
	for total := 1; total <= 20; total++ {
		ev.OnChange(catalog.Snapshot{Total: total, Version: uint64(total)})
	}
	ev.Notify(catalog.Notification{Message: "end"})

	var notes []string
	lastTotal := 0
	for {
		msg := ev.wait()()
		if snap, ok := msg.(SnapshotMsg); ok {
			lastTotal = snap.Total
			continue
		}
		n := msg.(NotificationMsg)
		if n.Message == "end" {
			break
		}
		notes = append(notes, n.Message)
	}
	if lastTotal != 20 {
		t.Errorf("last snapshot Total = %d, want 20", lastTotal)
	}
	if len(notes) != 100 {
		t.Fatalf("notifications = %d, want 100", len(notes))
	}
	for i, n := range notes {
		if n != fmt.Sprintf("n%d", i) {
			t.Fatalf("notification %d = %q, out of order", i, n)
		}
	}
}

func TestEventsWaitBlocksUntilSend(t *testing.T) {
	ev := NewEvents()
	got := make(chan tea.Msg, 1)
	go func() { got <- ev.wait()() }()

	select {
	case msg := <-got:
		t.Fatalf("wait returned %#v with nothing sent", msg)
	case <-time.After(20 * time.Millisecond):
	}
	ev.Notify(catalog.Notification{Message: "hello"})
	select {
	case msg := <-got:
		if n, ok := msg.(NotificationMsg); !ok || n.Message != "hello" {
			t.Errorf("msg = %#v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("wait never woke up")
	}
}

func TestOlderSnapshotIgnored(t *testing.T) {
	m, _ := newTestModel(t, 12, session.Session{})
	current := m.Snap

	older := current
	older.Version = current.Version - 1
	older.Total = 2
	updated, _ := m.Update(SnapshotMsg(older))
	m = updated.(Model)
	if m.Snap.Total != current.Total || m.Snap.Version != current.Version {
		t.Errorf("older snapshot applied: %+v", m.Snap)
	}
}

func TestReviewedReloadedWhenListChanges(t *testing.T) {
	m, gw := newTestModel(t, 3, session.Session{Email: "a@b.co", Token: "t"})
	gw.reviewed = []int64{3}

	snap := m.Snap
	snap.Version++
	updated, cmd := m.Update(SnapshotMsg(snap))
	m = updated.(Model)
	if len(m.Reviewed) != 0 {
		t.Fatal("reviewed marks changed without a list load")
	}

	// Deleting a book refreshes the list
	m, cmd = press(m, "x")
	m, cmd = press(m, "y")
	m, _ = feed(t, m, cmd)
	loaded := m.Ctrl.Snapshot()
	if loaded.Fetches <= snap.Fetches {
		t.Fatalf("delete did not refresh the list: %+v", loaded)
	}
	updated, cmd = m.Update(SnapshotMsg(loaded))
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected follow-up commands")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatalf("expected listener plus reviewed fetch, got %T", cmd())
	}
	for _, c := range batch {
		if msg, ok := runIfQuick(c).(ReviewedBooksMsg); ok {
			updated, _ = m.Update(msg)
			m = updated.(Model)
		}
	}
	if !m.Reviewed[3] {
		t.Errorf("Reviewed = %v, want book 3 marked", m.Reviewed)
	}
}

// runIfQuick runs c unless it blocks, like the event listener with an empty
// queue does
func runIfQuick(c tea.Cmd) tea.Msg {
	if c == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- c() }()
	select {
	case msg := <-done:
		return msg
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}
