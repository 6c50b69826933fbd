package browser

import (
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/marcus/shelf/internal/catalog"
	"github.com/marcus/shelf/internal/form"
	"github.com/marcus/shelf/internal/models"
)

// statusTTL is how long a notification stays in the status line
const statusTTL = 4 * time.Second

// SnapshotMsg carries a controller state change
type SnapshotMsg catalog.Snapshot

// NotificationMsg carries a controller notification
type NotificationMsg catalog.Notification

// ClearStatusMsg clears the status message if it is still the one with Gen
type ClearStatusMsg struct {
	Gen int
}

// ActionDoneMsg is sent when a blocking controller call returns. The
// controller has already reported the outcome through its notifier.
type ActionDoneMsg struct {
	Op  catalog.Operation
	Err error
}

// InsightMsg carries a generated summary and recommendation
type InsightMsg struct {
	BookID  int64
	Insight catalog.Insight
	Err     error
}

// ReviewsMsg carries the reviews of one book
type ReviewsMsg struct {
	BookID  int64
	Reviews []models.Review
	Err     error
}

// ReviewedBooksMsg carries the ids of the books the user reviewed
type ReviewedBooksMsg struct {
	IDs []int64
	Err error
}

// ModalKind identifies the content of the read-only modal
type ModalKind int

const (
	ModalSummary ModalKind = iota
	ModalReviews
)

// ModalState is an open summary or reviews modal
type ModalState struct {
	Kind     ModalKind
	Book     models.Book
	Loading  bool
	Err      error
	Insight  catalog.Insight
	Reviews  []models.Review
	Viewport viewport.Model
}

// FormKind identifies what a submitted form does
type FormKind int

const (
	FormAddBook FormKind = iota
	FormEditBook
	FormReview
	FormSignIn
	FormSignUp
	FormPreferences
)

// FormState is an open form modal
type FormState struct {
	Kind    FormKind
	Book    models.Book // target of edit and review forms
	State   *form.State
	Initial map[string]string // prefill, kept across rebuilds
	Width   int
}
