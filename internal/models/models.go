package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
)

// NewBookID marks a book that has not been created on the server yet
const NewBookID int64 = -1

// Currency represents a price currency accepted by the catalog
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// Currencies lists the accepted currencies in display order
var Currencies = []Currency{CurrencyUSD, CurrencyEUR}

// SortKey represents a book attribute the catalog can order by
type SortKey string

const (
	SortNone            SortKey = ""
	SortTitle           SortKey = "title"
	SortAuthor          SortKey = "author"
	SortPublicationYear SortKey = "publication_year"
	SortPrice           SortKey = "price"
	SortCurrency        SortKey = "currency"
	SortGenre           SortKey = "genre"
)

// SortKeys lists the sortable attributes in display order
var SortKeys = []SortKey{SortTitle, SortAuthor, SortPublicationYear, SortPrice, SortCurrency, SortGenre}

// Result cap choices. CapDefault leaves the choice to the configured default.
const (
	CapDefault = ""
	CapAll     = "All"
)

// ResultCaps lists the selectable result caps in display order
var ResultCaps = []string{"10", "25", "50", "100", CapAll}

// Book represents a catalog entry as served by the remote API
type Book struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title"`
	Author          string   `json:"author"`
	Genre           string   `json:"genre"`
	PublicationYear int      `json:"publication_year"`
	Price           float64  `json:"price"`
	Currency        Currency `json:"currency"`
}

// IsNew reports whether the book still carries the sentinel id
func (b Book) IsNew() bool {
	return b.ID == NewBookID
}

// Review is a single user review of a book
type Review struct {
	Email     string `json:"email"`
	Stars     int    `json:"n_stars"`
	Content   string `json:"content"`
	CreatedAt string `json:"creation_timestamp"`
}

// Review star range
const (
	MinStars = 1
	MaxStars = 5
)

// Validation errors returned by Book.Validate, wrapped with the field name
var (
	ErrFieldRequired   = errors.New("field is required")
	ErrInvalidYear     = errors.New("publication year out of range")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrInvalidCurrency = errors.New("unsupported currency")
)

// MinPublicationYear is the earliest year the catalog accepts
const MinPublicationYear = 1000

// MaxPublicationYear returns the latest acceptable publication year
func MaxPublicationYear() int {
	return time.Now().Year()
}

// Validate checks that every field is populated and well typed
func (b Book) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"title", b.Title},
		{"author", b.Author},
		{"genre", b.Genre},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%s: %w", f.name, ErrFieldRequired)
		}
	}
	if b.PublicationYear < MinPublicationYear || b.PublicationYear > MaxPublicationYear() {
		return fmt.Errorf("publication_year %d: %w", b.PublicationYear, ErrInvalidYear)
	}
	if b.Price < 0 {
		return fmt.Errorf("price: %w", ErrInvalidPrice)
	}
	if _, err := ParseCurrency(string(b.Currency)); err != nil {
		return err
	}
	return nil
}

// ParseCurrency validates a currency code (case-insensitive)
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Currencies {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("currency %q: %w", s, ErrInvalidCurrency)
}

// NormalizeSortKey converts a display label like "Publication year" to its
// wire form "publication_year". Empty input and "none" yield SortNone.
func NormalizeSortKey(label string) SortKey {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "none" {
		return SortNone
	}
	return SortKey(strings.ReplaceAll(s, " ", "_"))
}

// Label returns the display label for a sort key
func (k SortKey) Label() string {
	if k == SortNone {
		return "none"
	}
	s := strings.ReplaceAll(string(k), "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

// sortKeySource adapts SortKeys for the fuzzy library
type sortKeySource []SortKey

func (s sortKeySource) String(i int) string { return string(s[i]) }
func (s sortKeySource) Len() int            { return len(s) }

// MatchSortKey resolves partial input ("pub", "yr") to a sort key.
// Exact labels win; otherwise the best fuzzy match is used.
func MatchSortKey(input string) (SortKey, error) {
	key := NormalizeSortKey(input)
	if key == SortNone {
		return SortNone, nil
	}
	for _, k := range SortKeys {
		if k == key {
			return k, nil
		}
	}

	matches := fuzzy.FindFrom(string(key), sortKeySource(SortKeys))
	if len(matches) == 0 {
		return SortNone, fmt.Errorf("unknown sort key %q", input)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return SortKeys[matches[0].Index], nil
}
