package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/marcus/shelf/internal/catalog"
)

// Header names set on every delivery.
const (
	HeaderTimestamp = "X-Shelf-Timestamp"
	HeaderSignature = "X-Shelf-Signature"
	userAgent       = "shelf-webhook/1"
)

// Payload is the top-level webhook POST body.
type Payload struct {
	Server    string         `json:"server"`
	Timestamp string         `json:"timestamp"`
	Events    []EventPayload `json:"events"`
}

// EventPayload is one notification within a webhook payload.
type EventPayload struct {
	ID        string `json:"id"`
	Time      string `json:"time"`
	Severity  string `json:"severity"`
	Operation string `json:"operation"`
	Message   string `json:"message"`
	Email     string `json:"email,omitempty"`
}

// Notifier buffers notifications and posts them in one batch on Flush.
type Notifier struct {
	URL    string
	Secret string
	Server string
	Client *http.Client

	mu       sync.Mutex
	pending  []EventPayload
	identity func() string
}

// New returns a Notifier posting to url. server is reported in every
// payload so one endpoint can serve several catalogs.
func New(url, secret, server string) *Notifier {
	return &Notifier{
		URL:    url,
		Secret: secret,
		Server: server,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetIdentity sets the function reporting the signed-in email.
func (n *Notifier) SetIdentity(fn func() string) {
	n.mu.Lock()
	n.identity = fn
	n.mu.Unlock()
}

// Notify queues a notification for the next Flush.
func (n *Notifier) Notify(note catalog.Notification) {
	t := note.Time
	if t.IsZero() {
		t = time.Now()
	}
	ev := EventPayload{
		ID:        uuid.NewString(),
		Time:      t.UTC().Format(time.RFC3339),
		Severity:  string(note.Severity),
		Operation: string(note.Operation),
		Message:   note.Message,
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.identity != nil {
		ev.Email = n.identity()
	}
	n.pending = append(n.pending, ev)
}

// Pending returns how many notifications are waiting to be sent.
func (n *Notifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.pending)
}

// Flush posts every queued notification. Nothing is sent when the queue
// is empty. The queue is cleared even when delivery fails.
func (n *Notifier) Flush(ctx context.Context) error {
	n.mu.Lock()
	events := n.pending
	n.pending = nil
	n.mu.Unlock()

	if len(events) == 0 {
		return nil
	}
	p := Payload{
		Server:    n.Server,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Events:    events,
	}
	return Dispatch(ctx, n.Client, n.URL, n.Secret, p)
}

// Sign returns the signature header value for body sent at unix time ts.
func Sign(secret, ts string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Dispatch performs a synchronous HTTP POST to the webhook URL.
// Returns nil on success (2xx status).
func Dispatch(ctx context.Context, client *http.Client, url, secret string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set(HeaderTimestamp, ts)
	if secret != "" {
		req.Header.Set(HeaderSignature, Sign(secret, ts, body))
	}

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("POST %s: status %d", url, resp.StatusCode)
	}
	return nil
}
