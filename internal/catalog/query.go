package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marcus/shelf/internal/catalogclient"
	"github.com/marcus/shelf/internal/models"
)

// Field is a filterable book attribute
type Field string

const (
	FieldTitle  Field = "title"
	FieldAuthor Field = "author"
	FieldGenre  Field = "genre"
	FieldYear   Field = "publication_year"
)

// Fields lists the filter fields in request order
var Fields = []Field{FieldTitle, FieldAuthor, FieldGenre, FieldYear}

// ParseField accepts a field name or a common alias ("year")
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "title":
		return FieldTitle, nil
	case "author":
		return FieldAuthor, nil
	case "genre":
		return FieldGenre, nil
	case "year", "publication_year", "publication year":
		return FieldYear, nil
	}
	return "", fmt.Errorf("unknown filter field %q", s)
}

// Query parameter names understood by GET /books/show
const (
	ParamCount   = "count"
	ParamSortBy  = "sortby"
	ParamReverse = "reverse"
)

// DefaultCount is the result cap used when none was chosen
const DefaultCount = 100

// Query is the complete input of a list request. It has no identity; it is
// rebuilt from scratch every session.
type Query struct {
	Title   string
	Author  string
	Genre   string
	Year    string
	Cap     string // models.CapDefault, models.CapAll or a positive integer
	SortBy  models.SortKey
	Reverse bool
}

// Filter returns the value of one filter field
func (q Query) Filter(f Field) string {
	switch f {
	case FieldTitle:
		return q.Title
	case FieldAuthor:
		return q.Author
	case FieldGenre:
		return q.Genre
	case FieldYear:
		return q.Year
	}
	return ""
}

func (q *Query) setFilter(f Field, value string) error {
	switch f {
	case FieldTitle:
		q.Title = value
	case FieldAuthor:
		q.Author = value
	case FieldGenre:
		q.Genre = value
	case FieldYear:
		q.Year = value
	default:
		return fmt.Errorf("unknown filter field %q", f)
	}
	return nil
}

// NormalizeCap validates a result cap choice. "all" in any case becomes
// models.CapAll; numbers must be positive.
func NormalizeCap(value string) (string, error) {
	v := strings.TrimSpace(value)
	switch {
	case v == models.CapDefault:
		return models.CapDefault, nil
	case strings.EqualFold(v, models.CapAll):
		return models.CapAll, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return "", fmt.Errorf("invalid result cap %q: want a positive number or %q", value, models.CapAll)
	}
	return strconv.Itoa(n), nil
}

// Params builds the request parameters in a fixed order, omitting empty
// filters. defaultCount applies when no cap was chosen.
func (q Query) Params(defaultCount int) catalogclient.Params {
	var p catalogclient.Params
	for _, f := range Fields {
		if v := strings.TrimSpace(q.Filter(f)); v != "" {
			p.Add(string(f), v)
		}
	}

	switch q.Cap {
	case models.CapDefault:
		if defaultCount > 0 {
			p.Add(ParamCount, strconv.Itoa(defaultCount))
		}
	case models.CapAll:
	default:
		p.Add(ParamCount, q.Cap)
	}

	if q.SortBy != models.SortNone {
		p.Add(ParamSortBy, string(q.SortBy))
		if q.Reverse {
			p.Add(ParamReverse, "1")
		}
	}
	return p
}

// Encode renders the query string for the list request
func (q Query) Encode(defaultCount int) string {
	return q.Params(defaultCount).Encode()
}
