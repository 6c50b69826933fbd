package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/marcus/shelf/internal/catalogclient"
	"github.com/marcus/shelf/internal/models"
	"github.com/marcus/shelf/internal/session"
)

// ErrNotSignedIn is returned by operations that need a session.
var ErrNotSignedIn = errors.New("not signed in")

// AddBook creates b on the server and refreshes the list once it was
// acknowledged. The returned error is the request error; a failed refresh
// is reported through the notifier only.
func (c *Controller) AddBook(ctx context.Context, b models.Book) error {
	if _, err := c.gw.AddBook(ctx, b); err != nil {
		c.notifyFailure(OpAdd, err, msgAddFailed)
		return err
	}
	c.notify(SeveritySuccess, OpAdd, msgAdded)
	c.refreshAfterMutation(ctx)
	return nil
}

// EditBook sends every field of b as the new state of book b.ID.
func (c *Controller) EditBook(ctx context.Context, b models.Book) error {
	if b.IsNew() {
		return fmt.Errorf("edit book: book has no id")
	}
	return c.EditBookFields(ctx, b.ID, catalogclient.BookParams(b))
}

// EditBookFields sends only the given fields. Fields left out keep their
// server-side values.
func (c *Controller) EditBookFields(ctx context.Context, id int64, fields catalogclient.Params) error {
	if len(fields) == 0 {
		return fmt.Errorf("edit book %d: nothing to change", id)
	}
	if _, err := c.gw.EditBook(ctx, id, fields); err != nil {
		c.notifyFailure(OpEdit, err, msgEditFailed)
		return err
	}
	c.notify(SeveritySuccess, OpEdit, msgEdited)
	c.refreshAfterMutation(ctx)
	return nil
}

// DeleteBook removes the book with the given id.
func (c *Controller) DeleteBook(ctx context.Context, id int64) error {
	if _, err := c.gw.DeleteBook(ctx, id); err != nil {
		c.notifyFailure(OpDelete, err, msgDeleteFailed)
		return err
	}
	c.notify(SeveritySuccess, OpDelete, msgDeleted)
	c.refreshAfterMutation(ctx)
	return nil
}

// Insight is the generated text for one book
type Insight struct {
	Summary        string
	Recommendation string
}

// Summarize asks for a summary and then a recommendation matching the saved
// reading preferences. Whatever was generated before a failure is returned.
func (c *Controller) Summarize(ctx context.Context, id int64) (Insight, error) {
	var out Insight
	summary, err := c.gw.Summary(ctx, id)
	if err != nil {
		c.notifyFailure(OpSummary, err, msgSummaryFailed)
		return out, err
	}
	out.Summary = summary

	c.mu.Lock()
	prefs := c.prefs
	c.mu.Unlock()

	rec, err := c.gw.Recommendation(ctx, id, catalogclient.RecommendationInput{
		Goal:        prefs.Goal,
		Description: prefs.Description,
		Mood:        prefs.Mood,
	})
	if err != nil {
		c.notifyFailure(OpRecommend, err, msgRecommendFailed)
		return out, err
	}
	out.Recommendation = rec
	return out, nil
}

// Reviews lists the reviews of a book.
func (c *Controller) Reviews(ctx context.Context, id int64) ([]models.Review, error) {
	reviews, err := c.gw.Reviews(ctx, id)
	if err != nil {
		c.notifyFailure(OpReviews, err, msgReviewsFailed)
		return nil, err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

// SubmitReview posts a review as the signed-in user and refreshes the list.
func (c *Controller) SubmitReview(ctx context.Context, id int64, stars int, content string) error {
	sess := c.Session()
	if !sess.SignedIn() {
		c.notify(SeverityError, OpReview, msgNotSignedIn)
		return ErrNotSignedIn
	}
	if stars < models.MinStars || stars > models.MaxStars {
		return fmt.Errorf("review: stars must be between %d and %d", models.MinStars, models.MaxStars)
	}
	msg, err := c.gw.SubmitReview(ctx, id, sess.Email, sess.Token, stars, strings.TrimSpace(content))
	if err != nil {
		c.notifyFailure(OpReview, err, msgReviewFailed)
		return err
	}
	if msg == "" {
		msg = msgReviewed
	}
	c.notify(SeveritySuccess, OpReview, msg)
	c.refreshAfterMutation(ctx)
	return nil
}

// ReviewedBooks returns the ids of the books the signed-in user reviewed.
func (c *Controller) ReviewedBooks(ctx context.Context) ([]int64, error) {
	sess := c.Session()
	if !sess.SignedIn() {
		c.notify(SeverityError, OpReviewedBooks, msgNotSignedIn)
		return nil, ErrNotSignedIn
	}
	ids, err := c.gw.ReviewedBooks(ctx, sess.Email, sess.Token)
	if err != nil {
		c.notifyFailure(OpReviewedBooks, err, msgReviewedBooksFailed)
		return nil, err
	}
	return ids, nil
}

// SignIn exchanges credentials for a session. A failed attempt leaves the
// user signed out.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, OpSignIn, email, password, c.gw.SignIn, msgSignInFailed)
}

// SignUp registers a new account and signs it in.
func (c *Controller) SignUp(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, OpSignUp, email, password, c.gw.SignUp, msgSignUpFailed)
}

func (c *Controller) authenticate(ctx context.Context, op Operation, email, password string,
	call func(context.Context, string, string) (string, error), generic string) error {
	email = strings.TrimSpace(email)
	token, err := call(ctx, email, password)
	if err != nil {
		c.setSession(session.Session{})
		c.notifyFailure(op, err, generic)
		return err
	}
	c.setSession(session.Session{Email: email, Token: token})
	c.notify(SeveritySuccess, op, fmt.Sprintf("Signed in as %s", email))
	c.refreshAfterMutation(ctx)
	return nil
}

// SignOut invalidates the token on the server. The local session is
// cleared whether or not the server accepted the request.
func (c *Controller) SignOut(ctx context.Context) error {
	sess := c.Session()
	if !sess.SignedIn() {
		c.notify(SeverityInfo, OpSignOut, msgNotSignedIn)
		return ErrNotSignedIn
	}
	err := c.gw.SignOut(ctx, sess.Email, sess.Token)
	c.setSession(session.Session{})
	if err != nil {
		c.notifyFailure(OpSignOut, err, msgSignOutFailed)
		return err
	}
	c.notify(SeveritySuccess, OpSignOut, msgSignedOut)
	c.refreshAfterMutation(ctx)
	return nil
}

// Preferences returns the reading preferences used for recommendations.
func (c *Controller) Preferences() session.Preferences {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs
}

// SetPreferences stores the reading preferences and persists them.
func (c *Controller) SetPreferences(p session.Preferences) error {
	c.mu.Lock()
	c.prefs = p
	store := c.store
	c.mu.Unlock()

	if store != nil {
		if err := store.SavePreferences(p); err != nil {
			return fmt.Errorf("save preferences: %w", err)
		}
	}
	c.notify(SeveritySuccess, OpPreferences, msgPrefsSave)
	return nil
}

func (c *Controller) setSession(s session.Session) {
	c.mu.Lock()
	c.sess = s
	store := c.store
	snap := c.changedLocked()
	c.mu.Unlock()

	if store != nil {
		var err error
		if s.SignedIn() {
			err = store.SaveSession(s)
		} else {
			err = store.ClearSession()
		}
		if err != nil {
			slog.Warn("catalog: persist session", "err", err)
		}
	}
	c.emit(snap)
}

// refreshAfterMutation resynchronizes the list. Pending debounced refreshes
// are cancelled since this one already reflects the latest state.
func (c *Controller) refreshAfterMutation(ctx context.Context) {
	c.mu.Lock()
	c.cancelPendingLocked()
	c.mu.Unlock()
	if err := c.Refresh(ctx); err != nil && !errors.Is(err, ErrStale) {
		slog.Debug("catalog: refresh after mutation failed", "err", err)
	}
}
