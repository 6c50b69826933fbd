// Package catalogclient is the HTTP client for the remote book catalog API.
// Every parameter travels in the query string; bodies are JSON.
package catalogclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marcus/shelf/internal/models"
)

// ErrUnauthorized is wrapped by APIError for 401 responses.
var ErrUnauthorized = errors.New("unauthorized")

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Client is an HTTP client for the catalog server.
type Client struct {
	BaseURL   string
	UserAgent string
	HTTP      *http.Client
}

// New creates a new catalog client.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: "shelf",
		HTTP:      &http.Client{Timeout: 30 * time.Second},
	}
}

// --- Parameters ---

// Param is a single query parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of query parameters. Unlike url.Values the
// encoded order is the insertion order.
type Params []Param

// Add appends a parameter.
func (p *Params) Add(key, value string) {
	*p = append(*p, Param{Key: key, Value: value})
}

// Get returns the first value for key.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Encode renders the parameters as a query string in insertion order.
func (p Params) Encode() string {
	parts := make([]string, 0, len(p))
	for _, kv := range p {
		parts = append(parts, url.QueryEscape(kv.Key)+"="+url.QueryEscape(kv.Value))
	}
	return strings.Join(parts, "&")
}

// FormatPrice renders a price the way the server's validator expects
// (digits, a decimal point, digits).
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', 2, 64)
}

// BookParams returns the add/edit parameters for a book. The id is never
// sent as a parameter.
func BookParams(b models.Book) Params {
	var p Params
	p.Add("title", strings.TrimSpace(b.Title))
	p.Add("author", strings.TrimSpace(b.Author))
	p.Add("publication_year", strconv.Itoa(b.PublicationYear))
	p.Add("price", FormatPrice(b.Price))
	p.Add("currency", string(b.Currency))
	p.Add("genre", strings.TrimSpace(b.Genre))
	return p
}

// --- Response types ---

// MessageResponse is the acknowledgement body of mutations.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse is returned by sign in and sign up.
type TokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// SummaryResponse is returned by GET /ai/summary/{id}.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// RecommendationResponse is returned by GET /ai/recommendation/{id}.
type RecommendationResponse struct {
	Recommendation string `json:"recommendation"`
}

// ReviewsResponse is returned by GET /books/getreviews/{id}.
type ReviewsResponse struct {
	Reviews []models.Review `json:"reviews"`
}

// ReviewedBooksResponse is returned by POST /books/getreviewedbooks/{email}.
type ReviewedBooksResponse struct {
	ReviewedBooks []int64 `json:"reviewed_books"`
}

// RecommendationInput holds the reader profile sent with recommendation requests.
type RecommendationInput struct {
	Goal        string
	Description string
	Mood        string
}

// --- Book methods ---

// ListBooks fetches the filtered, sorted catalog.
func (c *Client) ListBooks(ctx context.Context, query Params) ([]models.Book, error) {
	var books []models.Book
	if err := c.do(ctx, http.MethodGet, "/books/show", query, &books); err != nil {
		return nil, err
	}
	if books == nil {
		books = []models.Book{}
	}
	return books, nil
}

// AddBook creates a book.
func (c *Client) AddBook(ctx context.Context, b models.Book) (string, error) {
	var resp MessageResponse
	if err := c.do(ctx, http.MethodPost, "/books/add", BookParams(b), &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// EditBook updates the given fields of a book. Omitted fields are left unchanged.
func (c *Client) EditBook(ctx context.Context, id int64, fields Params) (string, error) {
	var resp MessageResponse
	path := fmt.Sprintf("/books/edit/%d", id)
	if err := c.do(ctx, http.MethodPost, path, fields, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// DeleteBook removes a book.
func (c *Client) DeleteBook(ctx context.Context, id int64) (string, error) {
	var resp MessageResponse
	path := fmt.Sprintf("/books/delete/%d", id)
	if err := c.do(ctx, http.MethodDelete, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// --- AI methods ---

// Summary asks the server for a generated summary of a book.
func (c *Client) Summary(ctx context.Context, id int64) (string, error) {
	var resp SummaryResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/ai/summary/%d", id), nil, &resp); err != nil {
		return "", err
	}
	return resp.Summary, nil
}

// Recommendation asks how well a book fits the reader profile.
func (c *Client) Recommendation(ctx context.Context, id int64, in RecommendationInput) (string, error) {
	var p Params
	if s := strings.TrimSpace(in.Goal); s != "" {
		p.Add("goal", s)
	}
	if s := strings.TrimSpace(in.Description); s != "" {
		p.Add("description", s)
	}
	if s := strings.TrimSpace(in.Mood); s != "" {
		p.Add("mood", s)
	}
	var resp RecommendationResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/ai/recommendation/%d", id), p, &resp); err != nil {
		return "", err
	}
	return resp.Recommendation, nil
}

// --- Review methods ---

// Reviews lists the reviews of a book.
func (c *Client) Reviews(ctx context.Context, id int64) ([]models.Review, error) {
	var resp ReviewsResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/books/getreviews/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Reviews, nil
}

// SubmitReview posts a review on behalf of a signed in user.
func (c *Client) SubmitReview(ctx context.Context, id int64, email, token string, stars int, content string) (string, error) {
	var p Params
	p.Add("token", token)
	p.Add("email", email)
	p.Add("n_stars", strconv.Itoa(stars))
	p.Add("content", content)
	var resp MessageResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/books/review/%d", id), p, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ReviewedBooks returns the ids of the books the user has reviewed.
func (c *Client) ReviewedBooks(ctx context.Context, email, token string) ([]int64, error) {
	var p Params
	p.Add("token", token)
	var resp ReviewedBooksResponse
	path := "/books/getreviewedbooks/" + url.PathEscape(email)
	if err := c.do(ctx, http.MethodPost, path, p, &resp); err != nil {
		return nil, err
	}
	return resp.ReviewedBooks, nil
}

// --- Auth methods ---

// SignIn exchanges credentials for a session token.
func (c *Client) SignIn(ctx context.Context, email, password string) (string, error) {
	return c.credentials(ctx, "/auth/signin", email, password)
}

// SignUp registers a user and returns a session token.
func (c *Client) SignUp(ctx context.Context, email, password string) (string, error) {
	return c.credentials(ctx, "/auth/signup", email, password)
}

func (c *Client) credentials(ctx context.Context, path, email, password string) (string, error) {
	var p Params
	p.Add("email", email)
	p.Add("password", password)
	var resp TokenResponse
	if err := c.do(ctx, http.MethodPost, path, p, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%s: response missing token", path)
	}
	return resp.Token, nil
}

// SignOut invalidates a session token.
func (c *Client) SignOut(ctx context.Context, email, token string) error {
	var p Params
	p.Add("email", email)
	p.Add("token", token)
	return c.do(ctx, http.MethodPost, "/auth/signout", p, nil)
}

// --- HTTP helpers ---

// errorBody is the error payload the server returns.
type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, query Params, result any) error {
	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		slog.Debug("catalog: request failed", "method", method, "path", path, "request_id", requestID, "err", err)
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: fmt.Errorf("read response: %w", err)}
	}
	slog.Debug("catalog: request", "method", method, "path", path, "request_id", requestID,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			apiErr.Message = eb.Error
		}
		return apiErr
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
