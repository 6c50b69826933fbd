package catalogclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/marcus/shelf/internal/models"
)

// fakeServer returns an httptest server backed by mux and a client pointed at it.
func fakeServer(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestParamsEncodeKeepsOrder(t *testing.T) {
	var p Params
	p.Add("title", "Dune")
	p.Add("count", "25")
	p.Add("sortby", "title")
	if got, want := p.Encode(), "title=Dune&count=25&sortby=title"; got != want {
		t.Fatalf("Encode() = %q, want %q", got, want)
	}
}

func TestParamsEncodeEscapes(t *testing.T) {
	var p Params
	p.Add("title", "War & Peace")
	if got, want := p.Encode(), "title=War+%26+Peace"; got != want {
		t.Fatalf("Encode() = %q, want %q", got, want)
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{9, "9.00"},
		{12.5, "12.50"},
		{0, "0.00"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.in); got != tt.want {
			t.Errorf("FormatPrice(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestListBooks(t *testing.T) {
	var gotQuery, gotRequestID string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /books/show", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotRequestID = r.Header.Get(RequestIDHeader)
		w.Write([]byte(`[{"id":1,"title":"Dune","author":"Frank Herbert","publication_year":1965,"price":9.99,"currency":"USD","genre":"Sci-fi"}]`))
	})
	c := fakeServer(t, mux)

	var q Params
	q.Add("title", "Dune")
	q.Add("count", "100")
	books, err := c.ListBooks(context.Background(), q)
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if gotQuery != "title=Dune&count=100" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotRequestID == "" {
		t.Error("missing request id header")
	}
	if len(books) != 1 || books[0].Title != "Dune" || books[0].PublicationYear != 1965 || books[0].Currency != models.CurrencyUSD {
		t.Fatalf("books = %+v", books)
	}
}

func TestListBooksEmptyArrayIsNotNil(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /books/show", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	c := fakeServer(t, mux)

	books, err := c.ListBooks(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if books == nil || len(books) != 0 {
		t.Fatalf("books = %#v, want empty non-nil slice", books)
	}
}

func TestServerErrorMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /books/add", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Unable to add the new book since it already exists"}`))
	})
	c := fakeServer(t, mux)

	_, err := c.AddBook(context.Background(), models.Book{Title: "Dune", Author: "Frank Herbert"})
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("err = %v, want APIError 400", err)
	}
	msg, ok := ServerMessage(err)
	if !ok || msg != "Unable to add the new book since it already exists" {
		t.Errorf("ServerMessage = %q, %v", msg, ok)
	}
	if IsTransport(err) {
		t.Error("server error must not be classified as transport")
	}
}

func TestServerErrorWithoutBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /books/delete/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	c := fakeServer(t, mux)

	_, err := c.DeleteBook(context.Background(), 3)
	if _, ok := ServerMessage(err); ok {
		t.Errorf("plain-text error body should not yield a server message: %v", err)
	}
}

func TestUnauthorizedWrapsSentinel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/signout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"You lack authorization to make this call"}`))
	})
	c := fakeServer(t, mux)

	err := c.SignOut(context.Background(), "", "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url)
	_, err := c.ListBooks(context.Background(), nil)
	if !IsTransport(err) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if _, ok := ServerMessage(err); ok {
		t.Error("transport error must not carry a server message")
	}
}

func TestAddBookSendsFields(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /books/add", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"message":"Your book has been successfully added to the collection"}`))
	})
	c := fakeServer(t, mux)

	msg, err := c.AddBook(context.Background(), models.Book{
		ID: models.NewBookID, Title: " Dune ", Author: "Frank Herbert", Genre: "Sci-fi",
		PublicationYear: 1965, Price: 10, Currency: models.CurrencyEUR,
	})
	if err != nil {
		t.Fatalf("AddBook: %v", err)
	}
	want := "title=Dune&author=Frank+Herbert&publication_year=1965&price=10.00&currency=EUR&genre=Sci-fi"
	if gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}
	if !strings.Contains(msg, "successfully added") {
		t.Errorf("message = %q", msg)
	}
}

func TestEditBookPath(t *testing.T) {
	var gotID, gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /books/edit/{id}", func(w http.ResponseWriter, r *http.Request) {
		gotID = r.PathValue("id")
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"message":"ok"}`))
	})
	c := fakeServer(t, mux)

	var fields Params
	fields.Add("price", "12.00")
	if _, err := c.EditBook(context.Background(), 42, fields); err != nil {
		t.Fatalf("EditBook: %v", err)
	}
	if gotID != "42" || gotQuery != "price=12.00" {
		t.Errorf("id = %q query = %q", gotID, gotQuery)
	}
}

func TestRecommendationOmitsEmptyProfile(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ai/recommendation/{id}", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"recommendation":"80%"}`))
	})
	c := fakeServer(t, mux)

	rec, err := c.Recommendation(context.Background(), 1, RecommendationInput{Goal: "learn", Mood: "  "})
	if err != nil {
		t.Fatalf("Recommendation: %v", err)
	}
	if gotQuery != "goal=learn" || rec != "80%" {
		t.Errorf("query = %q rec = %q", gotQuery, rec)
	}
}

func TestReviewsAndReviewedBooks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /books/getreviews/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"reviews":[{"email":"a@b.c","n_stars":4,"content":"good","creation_timestamp":"2024-01-01"}]}`))
	})
	mux.HandleFunc("POST /books/getreviewedbooks/{email}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("email") != "a@b.c" || r.URL.Query().Get("token") != "tok" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"reviewed_books":[1,5]}`))
	})
	c := fakeServer(t, mux)

	reviews, err := c.Reviews(context.Background(), 1)
	if err != nil {
		t.Fatalf("Reviews: %v", err)
	}
	if len(reviews) != 1 || reviews[0].Stars != 4 {
		t.Fatalf("reviews = %+v", reviews)
	}

	ids, err := c.ReviewedBooks(context.Background(), "a@b.c", "tok")
	if err != nil {
		t.Fatalf("ReviewedBooks: %v", err)
	}
	if len(ids) != 2 || ids[1] != 5 {
		t.Fatalf("ids = %v", ids)
	}
}

func TestSignInRequiresToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/signin", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok"}`))
	})
	mux.HandleFunc("POST /auth/signup", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok","token":"t-1"}`))
	})
	c := fakeServer(t, mux)

	if _, err := c.SignIn(context.Background(), "a@b.c", "pw"); err == nil {
		t.Error("SignIn without token in response should fail")
	}
	tok, err := c.SignUp(context.Background(), "a@b.c", "pw")
	if err != nil || tok != "t-1" {
		t.Errorf("SignUp = %q, %v", tok, err)
	}
}
