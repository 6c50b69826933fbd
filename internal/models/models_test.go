package models

import (
	"errors"
	"testing"
)

func validBook() Book {
	return Book{
		ID:              NewBookID,
		Title:           "Dune",
		Author:          "Frank Herbert",
		Genre:           "Science fiction",
		PublicationYear: 1965,
		Price:           9.99,
		Currency:        CurrencyUSD,
	}
}

func TestBookValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b *Book)
		wantErr error
	}{
		{"valid", func(b *Book) {}, nil},
		{"blank title", func(b *Book) { b.Title = "   " }, ErrFieldRequired},
		{"missing author", func(b *Book) { b.Author = "" }, ErrFieldRequired},
		{"missing genre", func(b *Book) { b.Genre = "" }, ErrFieldRequired},
		{"year too early", func(b *Book) { b.PublicationYear = 999 }, ErrInvalidYear},
		{"year in future", func(b *Book) { b.PublicationYear = MaxPublicationYear() + 1 }, ErrInvalidYear},
		{"negative price", func(b *Book) { b.Price = -1 }, ErrInvalidPrice},
		{"free book", func(b *Book) { b.Price = 0 }, nil},
		{"bad currency", func(b *Book) { b.Currency = "GBP" }, ErrInvalidCurrency},
		{"lowercase currency", func(b *Book) { b.Currency = "eur" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBook()
			tt.mutate(&b)
			err := b.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBookIsNew(t *testing.T) {
	b := validBook()
	if !b.IsNew() {
		t.Error("sentinel id should report IsNew")
	}
	b.ID = 7
	if b.IsNew() {
		t.Error("persisted id should not report IsNew")
	}
}

func TestNormalizeSortKey(t *testing.T) {
	tests := []struct {
		in   string
		want SortKey
	}{
		{"Title", SortTitle},
		{"Publication year", SortPublicationYear},
		{"  Genre ", SortGenre},
		{"", SortNone},
		{"None", SortNone},
	}
	for _, tt := range tests {
		if got := NormalizeSortKey(tt.in); got != tt.want {
			t.Errorf("NormalizeSortKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSortKeyLabel(t *testing.T) {
	if got := SortPublicationYear.Label(); got != "Publication year" {
		t.Errorf("Label() = %q, want %q", got, "Publication year")
	}
	if got := SortNone.Label(); got != "none" {
		t.Errorf("Label() = %q, want %q", got, "none")
	}
}

func TestMatchSortKey(t *testing.T) {
	tests := []struct {
		in      string
		want    SortKey
		wantErr bool
	}{
		{"title", SortTitle, false},
		{"Publication year", SortPublicationYear, false},
		{"pub", SortPublicationYear, false},
		{"auth", SortAuthor, false},
		{"", SortNone, false},
		{"zzz", SortNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := MatchSortKey(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MatchSortKey(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("MatchSortKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseCurrency(t *testing.T) {
	if c, err := ParseCurrency(" usd "); err != nil || c != CurrencyUSD {
		t.Errorf("ParseCurrency(usd) = %q, %v", c, err)
	}
	if _, err := ParseCurrency("JPY"); !errors.Is(err, ErrInvalidCurrency) {
		t.Errorf("ParseCurrency(JPY) err = %v, want ErrInvalidCurrency", err)
	}
}
