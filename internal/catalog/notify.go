package catalog

import (
	"sync"
	"time"
)

// Severity classifies a user-facing notification
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Operation names the controller action a notification belongs to
type Operation string

const (
	OpList          Operation = "list"
	OpAdd           Operation = "add"
	OpEdit          Operation = "edit"
	OpDelete        Operation = "delete"
	OpSummary       Operation = "summary"
	OpRecommend     Operation = "recommendation"
	OpReviews       Operation = "reviews"
	OpReview        Operation = "review"
	OpReviewedBooks Operation = "reviewed_books"
	OpSignIn        Operation = "signin"
	OpSignUp        Operation = "signup"
	OpSignOut       Operation = "signout"
	OpPreferences   Operation = "preferences"
)

// Notification is a message for the user
type Notification struct {
	Time      time.Time
	Severity  Severity
	Operation Operation
	Message   string
}

// Notifier receives notifications emitted by the controller
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Notification)

// Notify calls f(n)
func (f NotifierFunc) Notify(n Notification) { f(n) }

// MultiNotifier fans a notification out to several notifiers in order
type MultiNotifier []Notifier

// Notify delivers n to every non-nil notifier
func (m MultiNotifier) Notify(n Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(n)
		}
	}
}

// Collector records notifications in memory
type Collector struct {
	mu    sync.Mutex
	items []Notification
}

// Notify appends n
func (c *Collector) Notify(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, n)
}

// All returns a copy of the recorded notifications
func (c *Collector) All() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Count returns how many notifications with the given severity were recorded
func (c *Collector) Count(sev Severity) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, item := range c.items {
		if item.Severity == sev {
			n++
		}
	}
	return n
}

// Generic messages shown when the server did not explain a failure
const (
	msgListFailed          = "An error occurred while requesting the catalog of books"
	msgAddFailed           = "An error occurred while trying to add the book to the collection"
	msgEditFailed          = "An error occurred while trying to edit the book"
	msgDeleteFailed        = "An error occurred while trying to delete the book from the collection"
	msgSummaryFailed       = "An error occurred while trying to generate the summary for the selected book"
	msgRecommendFailed     = "An error occurred while trying to generate the recommendation for the selected book"
	msgReviewsFailed       = "An error occurred while trying to retrieve the reviews of the book"
	msgReviewFailed        = "An error occurred while reviewing the selected book"
	msgReviewedBooksFailed = "An error occurred while retrieving the books reviewed by signed in user"
	msgSignInFailed        = "An error occurred while trying to sign in"
	msgSignUpFailed        = "An error occurred while trying to sign up"
	msgSignOutFailed       = "An error occurred while trying to sign out"
	msgNotSignedIn         = "You need to sign in first"
)

// Success messages
const (
	msgAdded     = "Your book has been added to the collection"
	msgEdited    = "Your book has been successfully updated"
	msgDeleted   = "Your book has been successfully deleted from the collection"
	msgReviewed  = "Your review has been submitted"
	msgSignedOut = "You have successfully signed out"
	msgPrefsSave = "Your reading preferences have been saved"
)
