// Package form builds every dialog of the application from one
// configuration-driven huh form. A Spec lists the fields; Build binds them to
// a value map that callers read back after the form completes.
package form

import (
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/marcus/shelf/internal/catalogclient"
	"github.com/marcus/shelf/internal/models"
	"github.com/marcus/shelf/internal/session"
)

// Kind selects the widget used for a field
type Kind int

const (
	KindInput Kind = iota
	KindText
	KindSelect
	KindPassword
)

// Option is one choice of a select field
type Option struct {
	Label string
	Value string
}

// Field describes one form field
type Field struct {
	Key         string
	Label       string
	Kind        Kind
	Options     []Option
	Placeholder string
	Description string
	Required    bool
	Validate    func(string) error
}

// Spec describes a whole form
type Spec struct {
	Title  string
	Fields []Field
}

// Check runs the required check and the field validator on v.
func (f Field) Check(v string) error {
	if f.Required && strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s: %w", f.Label, models.ErrFieldRequired)
	}
	if f.Validate != nil && strings.TrimSpace(v) != "" {
		return f.Validate(v)
	}
	return nil
}

// State is a built form together with its bound values
type State struct {
	Spec    Spec
	Form    *huh.Form
	initial map[string]string
	values  map[string]*string
}

// Build creates the huh form for spec, prefilled from initial.
func Build(spec Spec, initial map[string]string) *State {
	st := &State{
		Spec:    spec,
		initial: make(map[string]string, len(spec.Fields)),
		values:  make(map[string]*string, len(spec.Fields)),
	}

	fields := make([]huh.Field, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		v := initial[f.Key]
		if v == "" && f.Kind == KindSelect && len(f.Options) > 0 {
			v = f.Options[0].Value
		}
		st.initial[f.Key] = initial[f.Key]
		st.values[f.Key] = &v
		fields = append(fields, huhField(f, &v))
	}

	st.Form = huh.NewForm(huh.NewGroup(fields...).Title(spec.Title))
	st.Form.WithTheme(huh.ThemeDracula())
	return st
}

func huhField(f Field, value *string) huh.Field {
	switch f.Kind {
	case KindText:
		return huh.NewText().
			Title(f.Label).
			Description(f.Description).
			Value(value).
			Placeholder(f.Placeholder).
			Lines(3).
			Validate(f.Check)
	case KindSelect:
		opts := make([]huh.Option[string], len(f.Options))
		for i, o := range f.Options {
			opts[i] = huh.NewOption(o.Label, o.Value)
		}
		return huh.NewSelect[string]().
			Title(f.Label).
			Description(f.Description).
			Options(opts...).
			Value(value)
	case KindPassword:
		return huh.NewInput().
			Title(f.Label).
			Value(value).
			EchoMode(huh.EchoModePassword).
			Validate(f.Check)
	default:
		return huh.NewInput().
			Title(f.Label).
			Description(f.Description).
			Value(value).
			Placeholder(f.Placeholder).
			Validate(f.Check)
	}
}

// Set stores a value directly, bypassing the form widgets.
func (s *State) Set(key, value string) {
	if p, ok := s.values[key]; ok {
		*p = value
	}
}

// Values returns the current trimmed value of every field.
func (s *State) Values() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, p := range s.values {
		out[k] = strings.TrimSpace(*p)
	}
	return out
}

// Changed returns only the fields whose value differs from the prefill.
func (s *State) Changed() map[string]string {
	return Diff(s.initial, s.Values())
}

// Initial returns the prefill the form was built with.
func (s *State) Initial() map[string]string {
	out := make(map[string]string, len(s.initial))
	for k, v := range s.initial {
		out[k] = v
	}
	return out
}

// Diff returns the entries of values that differ from initial, ignoring
// surrounding whitespace.
func Diff(initial, values map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range values {
		v = strings.TrimSpace(v)
		if v != strings.TrimSpace(initial[k]) {
			out[k] = v
		}
	}
	return out
}

// Validate runs every field check against the current values.
func (s *State) Validate() error {
	values := s.Values()
	var errs []error
	for _, f := range s.Spec.Fields {
		if err := f.Check(values[f.Key]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// --- Book form ---

// Book field keys, identical to the API parameter names
const (
	KeyTitle    = "title"
	KeyAuthor   = "author"
	KeyGenre    = "genre"
	KeyYear     = "publication_year"
	KeyPrice    = "price"
	KeyCurrency = "currency"
)

// BookKeys lists book fields in request order
var BookKeys = []string{KeyTitle, KeyAuthor, KeyYear, KeyPrice, KeyCurrency, KeyGenre}

// BookSpec is the add/edit dialog. Both modes share the same fields.
func BookSpec(editing bool) Spec {
	title := "Add a book"
	if editing {
		title = "Edit book"
	}
	currencies := make([]Option, len(models.Currencies))
	for i, c := range models.Currencies {
		currencies[i] = Option{Label: string(c), Value: string(c)}
	}
	return Spec{
		Title: title,
		Fields: []Field{
			{Key: KeyTitle, Label: "Title", Placeholder: "Dune", Required: true},
			{Key: KeyAuthor, Label: "Author", Placeholder: "Frank Herbert", Required: true},
			{Key: KeyYear, Label: "Publication year", Placeholder: "1965", Required: true, Validate: ValidateYear},
			{Key: KeyPrice, Label: "Price", Placeholder: "9.99", Required: true, Validate: ValidatePrice},
			{Key: KeyCurrency, Label: "Currency", Kind: KindSelect, Options: currencies, Required: true},
			{Key: KeyGenre, Label: "Genre", Placeholder: "Sci-fi", Required: true},
		},
	}
}

// BookValues converts b to form values.
func BookValues(b models.Book) map[string]string {
	v := map[string]string{
		KeyTitle:    b.Title,
		KeyAuthor:   b.Author,
		KeyGenre:    b.Genre,
		KeyCurrency: string(b.Currency),
	}
	if b.PublicationYear != 0 {
		v[KeyYear] = strconv.Itoa(b.PublicationYear)
	}
	if !b.IsNew() || b.Price != 0 {
		v[KeyPrice] = catalogclient.FormatPrice(b.Price)
	}
	return v
}

// ToBook parses values into a validated book carrying id.
func ToBook(values map[string]string, id int64) (models.Book, error) {
	b := models.Book{
		ID:       id,
		Title:    strings.TrimSpace(values[KeyTitle]),
		Author:   strings.TrimSpace(values[KeyAuthor]),
		Genre:    strings.TrimSpace(values[KeyGenre]),
		Currency: models.Currency(strings.ToUpper(strings.TrimSpace(values[KeyCurrency]))),
	}
	if s := strings.TrimSpace(values[KeyYear]); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			return models.Book{}, fmt.Errorf("publication year: %w", models.ErrInvalidYear)
		}
		b.PublicationYear = year
	}
	if s := strings.TrimSpace(values[KeyPrice]); s != "" {
		price, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Book{}, fmt.Errorf("price %q: %w", s, models.ErrInvalidPrice)
		}
		b.Price = price
	}
	if err := b.Validate(); err != nil {
		return models.Book{}, err
	}
	return b, nil
}

// BookParams converts a subset of book values into edit parameters,
// validating each one. Keys keep BookKeys order.
func BookParams(values map[string]string) (catalogclient.Params, error) {
	var p catalogclient.Params
	for _, key := range BookKeys {
		v, ok := values[key]
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, fmt.Errorf("%s: %w", key, models.ErrFieldRequired)
		}
		switch key {
		case KeyYear:
			if err := ValidateYear(v); err != nil {
				return nil, err
			}
		case KeyPrice:
			if err := ValidatePrice(v); err != nil {
				return nil, err
			}
			f, _ := strconv.ParseFloat(v, 64)
			v = catalogclient.FormatPrice(f)
		case KeyCurrency:
			c, err := models.ParseCurrency(v)
			if err != nil {
				return nil, err
			}
			v = string(c)
		}
		p.Add(key, v)
	}
	return p, nil
}

// ValidateYear accepts integers in the plausible publication range.
func ValidateYear(s string) error {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || year < models.MinPublicationYear || year > models.MaxPublicationYear() {
		return fmt.Errorf("%w: want %d-%d", models.ErrInvalidYear, models.MinPublicationYear, models.MaxPublicationYear())
	}
	return nil
}

// ValidatePrice accepts non-negative decimals.
func ValidatePrice(s string) error {
	price, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || price < 0 {
		return models.ErrInvalidPrice
	}
	return nil
}

// --- Account forms ---

// Credential field keys
const (
	KeyEmail    = "email"
	KeyPassword = "password"
)

// MinPasswordLength applies to sign up only
const MinPasswordLength = 8

// CredentialsSpec is the sign in or sign up dialog.
func CredentialsSpec(signUp bool) Spec {
	title := "Sign in"
	password := Field{Key: KeyPassword, Label: "Password", Kind: KindPassword, Required: true}
	if signUp {
		title = "Sign up"
		password.Validate = func(s string) error {
			if len(s) < MinPasswordLength {
				return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
			}
			return nil
		}
	}
	return Spec{
		Title: title,
		Fields: []Field{
			{Key: KeyEmail, Label: "Email", Placeholder: "you@example.com", Required: true, Validate: ValidateEmail},
			password,
		},
	}
}

// ValidateEmail accepts a bare address.
func ValidateEmail(s string) error {
	addr, err := mail.ParseAddress(strings.TrimSpace(s))
	if err != nil || addr.Address != strings.TrimSpace(s) {
		return fmt.Errorf("invalid email address %q", s)
	}
	return nil
}

// Review field keys
const (
	KeyStars   = "n_stars"
	KeyContent = "content"
)

// ReviewSpec is the review dialog for one book.
func ReviewSpec(bookTitle string) Spec {
	stars := make([]Option, 0, models.MaxStars-models.MinStars+1)
	for n := models.MaxStars; n >= models.MinStars; n-- {
		stars = append(stars, Option{Label: strings.Repeat("★", n) + strings.Repeat("☆", models.MaxStars-n), Value: strconv.Itoa(n)})
	}
	return Spec{
		Title: "Review " + bookTitle,
		Fields: []Field{
			{Key: KeyStars, Label: "Rating", Kind: KindSelect, Options: stars, Required: true},
			{Key: KeyContent, Label: "Review", Kind: KindText, Placeholder: "What did you think?", Required: true},
		},
	}
}

// ToReview parses review values.
func ToReview(values map[string]string) (int, string, error) {
	stars, err := strconv.Atoi(values[KeyStars])
	if err != nil || stars < models.MinStars || stars > models.MaxStars {
		return 0, "", fmt.Errorf("rating must be between %d and %d", models.MinStars, models.MaxStars)
	}
	content := strings.TrimSpace(values[KeyContent])
	if content == "" {
		return 0, "", fmt.Errorf("review: %w", models.ErrFieldRequired)
	}
	return stars, content, nil
}

// Preference field keys
const (
	KeyGoal        = "goal"
	KeyDescription = "description"
	KeyMood        = "mood"
)

// PreferencesSpec asks the reader about themselves for recommendations.
func PreferencesSpec() Spec {
	return Spec{
		Title: "Tell us about yourself",
		Fields: []Field{
			{Key: KeyGoal, Label: "Reading goal", Placeholder: "Learn something new"},
			{Key: KeyDescription, Label: "About the goal", Kind: KindText, Placeholder: "A few words about what you look for"},
			{Key: KeyMood, Label: "Current mood", Placeholder: "Curious"},
		},
	}
}

// PreferencesValues converts p to form values.
func PreferencesValues(p session.Preferences) map[string]string {
	return map[string]string{
		KeyGoal:        p.Goal,
		KeyDescription: p.Description,
		KeyMood:        p.Mood,
	}
}

// ToPreferences converts form values to preferences.
func ToPreferences(values map[string]string) session.Preferences {
	return session.Preferences{
		Goal:        strings.TrimSpace(values[KeyGoal]),
		Description: strings.TrimSpace(values[KeyDescription]),
		Mood:        strings.TrimSpace(values[KeyMood]),
	}
}
