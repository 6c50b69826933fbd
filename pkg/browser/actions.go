package browser

import (
	"context"
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/shelf/internal/catalog"
	"github.com/marcus/shelf/internal/form"
	"github.com/marcus/shelf/internal/models"
)

// --- forms ---

// openForm opens a form modal for kind. book is the target of edit and
// review forms.
func (m Model) openForm(kind FormKind, book models.Book, spec form.Spec, initial map[string]string) (tea.Model, tea.Cmd) {
	st := form.Build(spec, initial)
	m.FormState = &FormState{
		Kind:    kind,
		Book:    book,
		State:   st,
		Initial: st.Initial(),
	}
	m.FormOpen = true
	m.ConfirmOpen = false
	m.Modal = nil

	width, _ := m.formModalDimensions()
	m.FormState.Width = width - 4
	st.Form.WithWidth(m.FormState.Width)
	return m, st.Form.Init()
}

// openReviewForm opens the review form for the modal's book or the
// selected row.
func (m Model) openReviewForm() (tea.Model, tea.Cmd) {
	book, ok := m.SelectedBook()
	if m.Modal != nil {
		book, ok = m.Modal.Book, true
	}
	if !ok {
		return m, nil
	}
	if !m.Snap.Session.SignedIn() {
		return m, m.setLocalStatus(catalog.SeverityError, "Sign in to review books")
	}
	return m.openForm(FormReview, book, form.ReviewSpec(book.Title), nil)
}

// closeForm closes the form modal and clears state
func (m *Model) closeForm() {
	m.FormOpen = false
	m.FormState = nil
}

// reopenForm rebuilds a completed form with the values the user entered so
// that a rejected submission can be corrected.
func (m Model) reopenForm(values map[string]string, problem error) (tea.Model, tea.Cmd) {
	fs := m.FormState
	fs.State = form.Build(fs.State.Spec, values)
	fs.State.Form.WithWidth(fs.Width)
	return m, tea.Batch(fs.State.Form.Init(), m.setLocalStatus(catalog.SeverityError, problem.Error()))
}

// submitForm validates the open form and runs its action
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	if m.FormState == nil {
		return m, nil
	}
	fs := m.FormState
	values := fs.State.Values()
	if err := fs.State.Validate(); err != nil {
		return m.reopenForm(values, err)
	}

	switch fs.Kind {
	case FormAddBook:
		b, err := form.ToBook(values, models.NewBookID)
		if err != nil {
			return m.reopenForm(values, err)
		}
		m.closeForm()
		return m, m.run(catalog.OpAdd, func(ctx context.Context) error {
			return m.Ctrl.AddBook(ctx, b)
		})

	case FormEditBook:
		changed := form.Diff(fs.Initial, values)
		if len(changed) == 0 {
			m.closeForm()
			return m, m.setLocalStatus(catalog.SeverityInfo, "Nothing to change")
		}
		params, err := form.BookParams(changed)
		if err != nil {
			return m.reopenForm(values, err)
		}
		id := fs.Book.ID
		m.closeForm()
		return m, m.run(catalog.OpEdit, func(ctx context.Context) error {
			return m.Ctrl.EditBookFields(ctx, id, params)
		})

	case FormReview:
		stars, content, err := form.ToReview(values)
		if err != nil {
			return m.reopenForm(values, err)
		}
		id := fs.Book.ID
		m.closeForm()
		return m, m.run(catalog.OpReview, func(ctx context.Context) error {
			return m.Ctrl.SubmitReview(ctx, id, stars, content)
		})

	case FormSignIn, FormSignUp:
		email, password := values[form.KeyEmail], values[form.KeyPassword]
		signUp := fs.Kind == FormSignUp
		m.closeForm()
		if signUp {
			return m, m.run(catalog.OpSignUp, func(ctx context.Context) error {
				return m.Ctrl.SignUp(ctx, email, password)
			})
		}
		return m, m.run(catalog.OpSignIn, func(ctx context.Context) error {
			return m.Ctrl.SignIn(ctx, email, password)
		})

	case FormPreferences:
		m.closeForm()
		if err := m.Ctrl.SetPreferences(form.ToPreferences(values)); err != nil {
			return m, m.setLocalStatus(catalog.SeverityError, err.Error())
		}
	}
	return m, nil
}

// formModalDimensions returns the form box size for the current window
func (m Model) formModalDimensions() (int, int) {
	w := m.Width * 2 / 3
	if w < 50 {
		w = 50
	}
	if w > 90 {
		w = 90
	}
	h := m.Height - 4
	if h < 10 {
		h = 10
	}
	return w, h
}

// --- modals ---

func (m *Model) openModal(kind ModalKind, b models.Book) {
	w, h := m.modalDimensions()
	m.Modal = &ModalState{
		Kind:     kind,
		Book:     b,
		Loading:  true,
		Viewport: viewport.New(w, h),
	}
	m.refreshModalContent()
}

// modalDimensions returns the viewport size inside the modal border
func (m Model) modalDimensions() (int, int) {
	w := m.Width - 10
	if w > 100 {
		w = 100
	}
	if w < 30 {
		w = 30
	}
	h := m.Height - 8
	if h < 5 {
		h = 5
	}
	return w, h
}

func (m *Model) resizeModal() {
	if m.Modal == nil {
		return
	}
	w, h := m.modalDimensions()
	m.Modal.Viewport.Width = w
	m.Modal.Viewport.Height = h
	m.refreshModalContent()
}

// refreshModalContent re-renders the modal body into its viewport
func (m *Model) refreshModalContent() {
	if m.Modal == nil {
		return
	}
	m.Modal.Viewport.SetContent(renderModalBody(m.Modal, m.Modal.Viewport.Width))
}

// --- commands ---

// run executes fn off the UI loop and reports back with ActionDoneMsg.
// The controller reports the outcome to the user itself.
func (m *Model) run(op catalog.Operation, fn func(ctx context.Context) error) tea.Cmd {
	m.Pending++
	ctx := m.ctx
	return func() tea.Msg {
		err := fn(ctx)
		if err != nil && !errors.Is(err, catalog.ErrStale) {
			slog.Debug("browser: action failed", "op", op, "err", err)
		}
		return ActionDoneMsg{Op: op, Err: err}
	}
}

// startCmd issues the initial fetch
func (m Model) startCmd() tea.Cmd {
	ctrl, ctx := m.Ctrl, m.ctx
	return func() tea.Msg {
		if err := ctrl.Start(ctx); err != nil {
			slog.Debug("browser: initial fetch failed", "err", err)
		}
		return nil
	}
}

func (m *Model) refreshCmd() tea.Cmd {
	return m.run(catalog.OpList, m.Ctrl.Refresh)
}

func (m *Model) deleteCmd(id int64) tea.Cmd {
	return m.run(catalog.OpDelete, func(ctx context.Context) error {
		return m.Ctrl.DeleteBook(ctx, id)
	})
}

func (m *Model) signOutCmd() tea.Cmd {
	return m.run(catalog.OpSignOut, m.Ctrl.SignOut)
}

func (m *Model) insightCmd(id int64) tea.Cmd {
	m.Pending++
	ctrl, ctx := m.Ctrl, m.ctx
	return func() tea.Msg {
		in, err := ctrl.Summarize(ctx, id)
		return InsightMsg{BookID: id, Insight: in, Err: err}
	}
}

func (m *Model) reviewsCmd(id int64) tea.Cmd {
	m.Pending++
	ctrl, ctx := m.Ctrl, m.ctx
	return func() tea.Msg {
		reviews, err := ctrl.Reviews(ctx, id)
		return ReviewsMsg{BookID: id, Reviews: reviews, Err: err}
	}
}

// fetchReviewedCmd loads the ids of the books the user reviewed. It runs in
// the background and is not counted as pending.
func (m Model) fetchReviewedCmd() tea.Cmd {
	ctrl, ctx := m.Ctrl, m.ctx
	return func() tea.Msg {
		ids, err := ctrl.ReviewedBooks(ctx)
		return ReviewedBooksMsg{IDs: ids, Err: err}
	}
}
