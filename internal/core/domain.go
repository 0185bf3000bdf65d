package core

import (
	"errors"
	"strings"
	"time"
)

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// DefaultCurrency is shown to users without a stored preference.
const DefaultCurrency = "INR"

// MaxLabelLength mirrors the column width used for category and source names.
const MaxLabelLength = 255

type (
	// Kind selects one of the two ledgers. Expenses are labelled by category,
	// income by source.
	Kind string

	Date struct {
		time.Time
	}

	Transaction struct {
		ID          int64
		Kind        Kind
		OwnerID     int64
		Amount      Money
		Date        Date
		Description string
		Label       string // Category for expenses, source for income
	}

	// Aggregate is the denormalized running total for one (owner, label).
	// Amount is kept in whole currency units.
	Aggregate struct {
		Kind    Kind
		OwnerID int64
		Label   string
		Amount  int64
	}

	User struct {
		ID           int64
		Username     string
		Email        string
		PasswordHash string
		Active       bool
		CreatedAt    time.Time
	}

	Preference struct {
		UserID   int64
		Currency string
	}
)

var (
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyLabel       = errors.New("empty label")
	ErrLabelTooLong     = errors.New("label too long (max 255 characters)")
	ErrMissingOwner     = errors.New("missing owner")

	// ErrQuotaExceeded rejects a write that would pass the per-day limit.
	ErrQuotaExceeded = errors.New("daily transaction quota exceeded")
	ErrNotFound      = errors.New("not found")
)

// ParseKind accepts "expense"/"expenses" and "income"/"incomes".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expense", "expenses":
		return KindExpense, nil
	case "income", "incomes":
		return KindIncome, nil
	}
	return "", ErrInvalidKind
}

func (k Kind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

func (k Kind) String() string {
	return string(k)
}

// LabelField is the wire name of the label column: "category" or "source".
func (k Kind) LabelField() string {
	if k == KindIncome {
		return "source"
	}
	return "category"
}

// LabelHeader is the CSV header used for the label column.
func (k Kind) LabelHeader() string {
	if k == KindIncome {
		return "Source"
	}
	return "Category"
}

// DateField is the form field carrying the transaction date.
func (k Kind) DateField() string {
	return string(k) + "_date"
}

// SummaryKey is the top-level key of the period summary document.
func (k Kind) SummaryKey() string {
	if k == KindIncome {
		return "income_source_data"
	}
	return "expense_category_data"
}

// ExportPrefix is the filename prefix of CSV exports.
func (k Kind) ExportPrefix() string {
	if k == KindIncome {
		return "Income"
	}
	return "Expenses"
}

// Noun is the human readable singular used in messages.
func (k Kind) Noun() string {
	if k == KindIncome {
		return "Income"
	}
	return "Expense"
}

// QuotaMessage is the user-facing text for ErrQuotaExceeded.
func (k Kind) QuotaMessage() string {
	if k == KindIncome {
		return "Maximum number of income entries reached for today"
	}
	return "Maximum number of expenses reached for today"
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String formats the date as YYYY-MM-DD, the storage and wire format.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// AddDays returns the date n days later (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if t.OwnerID == 0 {
		return ErrMissingOwner
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(t.Label) == "" {
		return ErrEmptyLabel
	}
	if len(t.Label) > MaxLabelLength {
		return ErrLabelTooLong
	}
	return nil
}
