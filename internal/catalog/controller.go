// Package catalog owns the browsing state of the book catalog: filters, sort
// order, result cap and the current page. It turns that state into list
// requests against the remote API, debouncing bursts of changes, and routes
// every mutation through the same request-then-refresh cycle.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/marcus/shelf/internal/catalogclient"
	"github.com/marcus/shelf/internal/models"
	"github.com/marcus/shelf/internal/session"
)

// PageSize is the number of books shown per page
const PageSize = 10

// DefaultDebounce is the quiet period before a state change triggers a fetch
const DefaultDebounce = 250 * time.Millisecond

// ErrStale is returned by Refresh when a newer request superseded this one.
var ErrStale = errors.New("response superseded by a newer request")

// Gateway is the remote API as used by the controller.
type Gateway interface {
	ListBooks(ctx context.Context, query catalogclient.Params) ([]models.Book, error)
	AddBook(ctx context.Context, b models.Book) (string, error)
	EditBook(ctx context.Context, id int64, fields catalogclient.Params) (string, error)
	DeleteBook(ctx context.Context, id int64) (string, error)
	Summary(ctx context.Context, id int64) (string, error)
	Recommendation(ctx context.Context, id int64, in catalogclient.RecommendationInput) (string, error)
	Reviews(ctx context.Context, id int64) ([]models.Review, error)
	SubmitReview(ctx context.Context, id int64, email, token string, stars int, content string) (string, error)
	ReviewedBooks(ctx context.Context, email, token string) ([]int64, error)
	SignIn(ctx context.Context, email, password string) (string, error)
	SignUp(ctx context.Context, email, password string) (string, error)
	SignOut(ctx context.Context, email, token string) error
}

// timer is the part of *time.Timer the debouncer needs
type timer interface {
	Stop() bool
}

// afterFunc schedules f after d
type afterFunc func(d time.Duration, f func()) timer

func realAfterFunc(d time.Duration, f func()) timer {
	return time.AfterFunc(d, f)
}

// Options configures a Controller
type Options struct {
	// Debounce is the quiet period for state changes. Zero means DefaultDebounce.
	Debounce time.Duration
	// DefaultCount is sent as the cap when the user chose none. Zero means DefaultCount.
	DefaultCount int
	// Notifier receives user-facing messages. May be nil.
	Notifier Notifier
	// OnChange is called with a fresh snapshot after every state change. May be nil.
	OnChange func(Snapshot)
	// Session is the signed-in user, if any.
	Session session.Session
	// Preferences feed AI recommendations.
	Preferences session.Preferences
	// Store persists session and preference changes. May be nil.
	Store session.Store
	// Query is the initial query. An invalid cap falls back to the default.
	Query Query
}

// Snapshot is a read-only view of the controller state for rendering
type Snapshot struct {
	Query     Query
	Items     []models.Book // current page
	Total     int
	Page      int
	PageCount int
	Loading   bool
	Loaded    bool   // at least one list request has completed
	Fetches   uint64 // list requests completed so far
	Session   session.Session
	// Version increases with every state change. Consumers that may see
	// snapshots out of order keep the highest one.
	Version uint64
}

// Controller coordinates the catalog view state with the remote API.
// It is safe for concurrent use.
type Controller struct {
	gw           Gateway
	notifier     Notifier
	onChange     func(Snapshot)
	store        session.Store
	debounce     time.Duration
	defaultCount int
	after        afterFunc

	mu      sync.Mutex
	query   Query
	books   []models.Book
	page    int
	loading bool
	loaded  bool
	sess    session.Session
	prefs   session.Preferences
	seq     uint64 // last issued list request
	pending timer
	gen     uint64 // bumps on every schedule/cancel
	baseCtx context.Context
	cancel  context.CancelFunc
	closed  bool
	version uint64
	fetches uint64

	// snapshots are delivered to onChange one at a time, in version order
	emitMu    sync.Mutex
	emitQueue []Snapshot
	emitting  bool
	delivered uint64
}

// New creates a controller. Call Start to issue the initial fetch.
func New(gw Gateway, opts Options) *Controller {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	defaultCount := opts.DefaultCount
	if defaultCount <= 0 {
		defaultCount = DefaultCount
	}
	q := opts.Query
	if capValue, err := NormalizeCap(q.Cap); err == nil {
		q.Cap = capValue
	} else {
		q.Cap = models.CapDefault
	}
	q.SortBy = models.NormalizeSortKey(string(q.SortBy))

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		query:        q,
		gw:           gw,
		notifier:     opts.Notifier,
		onChange:     opts.OnChange,
		store:        opts.Store,
		debounce:     debounce,
		defaultCount: defaultCount,
		after:        realAfterFunc,
		sess:         opts.Session,
		prefs:        opts.Preferences,
		books:        []models.Book{},
		baseCtx:      ctx,
		cancel:       cancel,
	}
}

// Start performs the initial load immediately, bypassing the debounce.
func (c *Controller) Start(ctx context.Context) error {
	return c.Refresh(ctx)
}

// Close cancels any pending debounced refresh and in-flight debounced requests.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.cancelPendingLocked()
	c.mu.Unlock()
	c.cancel()
}

// UpdateFilter stores a filter value and schedules a refresh.
func (c *Controller) UpdateFilter(field Field, value string) error {
	c.mu.Lock()
	if err := c.query.setFilter(field, value); err != nil {
		c.mu.Unlock()
		return err
	}
	c.scheduleLocked()
	snap := c.changedLocked()
	c.mu.Unlock()

	c.emit(snap)
	return nil
}

// UpdateResultCap stores the result cap and schedules a refresh.
// Accepts "", "All" or a positive number.
func (c *Controller) UpdateResultCap(value string) error {
	capValue, err := NormalizeCap(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.query.Cap = capValue
	c.scheduleLocked()
	snap := c.changedLocked()
	c.mu.Unlock()

	c.emit(snap)
	return nil
}

// UpdateSort stores the sort attribute (normalized from its display label)
// and the reverse flag, then schedules a refresh.
func (c *Controller) UpdateSort(key string, reversed bool) {
	c.mu.Lock()
	c.query.SortBy = models.NormalizeSortKey(key)
	c.query.Reverse = reversed
	c.scheduleLocked()
	snap := c.changedLocked()
	c.mu.Unlock()

	c.emit(snap)
}

// SetQuery replaces the whole query at once and schedules a single refresh.
func (c *Controller) SetQuery(q Query) error {
	capValue, err := NormalizeCap(q.Cap)
	if err != nil {
		return err
	}
	q.Cap = capValue
	q.SortBy = models.NormalizeSortKey(string(q.SortBy))

	c.mu.Lock()
	c.query = q
	c.scheduleLocked()
	snap := c.changedLocked()
	c.mu.Unlock()

	c.emit(snap)
	return nil
}

// Query returns the current query state.
func (c *Controller) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// QueryString returns the encoded parameters the next list request would send.
func (c *Controller) QueryString() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.Encode(c.defaultCount)
}

// Refresh issues exactly one list request for the current query. On success
// the results are replaced and the page resets to 0. On failure the results
// become empty and one error notification is emitted. Responses to requests
// that a newer Refresh superseded are dropped and ErrStale is returned.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	params := c.query.Params(c.defaultCount)
	c.loading = true
	snap := c.changedLocked()
	c.mu.Unlock()
	c.emit(snap)

	slog.Debug("catalog: list", "seq", seq, "query", params.Encode())
	books, err := c.gw.ListBooks(ctx, params)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		slog.Debug("catalog: dropping stale list response", "seq", seq)
		return ErrStale
	}
	if err != nil && (c.closed || errors.Is(err, context.Canceled)) {
		// Abandoned, not failed: nothing to tell the user.
		closed := c.closed
		c.loading = false
		snap = c.changedLocked()
		c.mu.Unlock()
		slog.Debug("catalog: list abandoned", "seq", seq, "err", err)
		if !closed {
			c.emit(snap)
		}
		return err
	}
	c.loading = false
	c.loaded = true
	c.fetches++
	c.page = 0
	if err != nil {
		c.books = []models.Book{}
	} else {
		c.books = books
	}
	snap = c.changedLocked()
	c.mu.Unlock()

	if err != nil {
		slog.Debug("catalog: list failed", "seq", seq, "err", err)
		c.notify(SeverityError, OpList, msgListFailed)
	}
	c.emit(snap)
	return err
}

// ChangePage moves to page i, clamped to the valid range.
func (c *Controller) ChangePage(i int) int {
	c.mu.Lock()
	c.page = clampPage(i, len(c.books))
	page := c.page
	snap := c.changedLocked()
	c.mu.Unlock()

	c.emit(snap)
	return page
}

// NextPage and PrevPage are ChangePage relative to the current page.
func (c *Controller) NextPage() int { return c.ChangePage(c.Page() + 1) }

func (c *Controller) PrevPage() int { return c.ChangePage(c.Page() - 1) }

// Page returns the current page index.
func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// PageCount returns the number of pages, at least 1.
func (c *Controller) PageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pageCount(len(c.books))
}

// CurrentPageItems returns the books on the current page.
func (c *Controller) CurrentPageItems() []models.Book {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pageItems(c.books, c.page)
}

// Books returns a copy of the full last-fetched result sequence.
func (c *Controller) Books() []models.Book {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Book, len(c.books))
	copy(out, c.books)
	return out
}

// Snapshot returns the current view state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Session returns the signed-in user.
func (c *Controller) Session() session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// --- internals ---

// scheduleLocked replaces any pending refresh with a new one after the quiet
// period. Only the most recently scheduled callback may run a refresh.
func (c *Controller) scheduleLocked() {
	if c.closed {
		return
	}
	c.cancelPendingLocked()
	gen := c.gen
	c.pending = c.after(c.debounce, func() {
		c.mu.Lock()
		if gen != c.gen || c.closed {
			c.mu.Unlock()
			return
		}
		c.pending = nil
		ctx := c.baseCtx
		c.mu.Unlock()

		c.Refresh(ctx)
	})
}

func (c *Controller) cancelPendingLocked() {
	c.gen++
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

// changedLocked records a state change and returns the new snapshot
func (c *Controller) changedLocked() Snapshot {
	c.version++
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Query:     c.query,
		Items:     pageItems(c.books, c.page),
		Total:     len(c.books),
		Page:      c.page,
		PageCount: pageCount(len(c.books)),
		Loading:   c.loading,
		Loaded:    c.loaded,
		Session:   c.sess,
		Fetches:   c.fetches,
		Version:   c.version,
	}
}

// emit queues s for onChange. Whoever finds the queue idle drains it, so
// callbacks never overlap and never go backwards in version. A snapshot
// older than one already delivered is dropped. onChange may call back into
// the controller; its snapshots are delivered after it returns.
func (c *Controller) emit(s Snapshot) {
	if c.onChange == nil {
		return
	}
	c.emitMu.Lock()
	c.emitQueue = append(c.emitQueue, s)
	if c.emitting {
		c.emitMu.Unlock()
		return
	}
	c.emitting = true
	for len(c.emitQueue) > 0 {
		next := c.emitQueue[0]
		c.emitQueue = c.emitQueue[1:]
		if next.Version <= c.delivered {
			continue
		}
		c.delivered = next.Version
		c.emitMu.Unlock()
		c.onChange(next)
		c.emitMu.Lock()
	}
	c.emitQueue = nil
	c.emitting = false
	c.emitMu.Unlock()
}

func (c *Controller) notify(sev Severity, op Operation, msg string) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(Notification{
		Time:      time.Now(),
		Severity:  sev,
		Operation: op,
		Message:   msg,
	})
}

// notifyFailure reports err with the server's message when one was sent,
// otherwise with the operation's generic message.
func (c *Controller) notifyFailure(op Operation, err error, generic string) {
	msg := generic
	if serverMsg, ok := catalogclient.ServerMessage(err); ok {
		msg = serverMsg
	}
	slog.Debug("catalog: operation failed", "op", op, "err", err)
	c.notify(SeverityError, op, msg)
}

func pageCount(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + PageSize - 1) / PageSize
}

func clampPage(i, total int) int {
	last := pageCount(total) - 1
	if i > last {
		i = last
	}
	if i < 0 {
		i = 0
	}
	return i
}

func pageItems(books []models.Book, page int) []models.Book {
	start := page * PageSize
	if start >= len(books) {
		return []models.Book{}
	}
	end := start + PageSize
	if end > len(books) {
		end = len(books)
	}
	out := make([]models.Book, end-start)
	copy(out, books[start:end])
	return out
}
