package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2024-02-29" {
		t.Fatalf("unexpected date %s", d)
	}
	for _, in := range []string{"", "2024-02-30", "29/02/2024", "yesterday"} {
		if _, err := ParseDate(in); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", in, err)
		}
	}
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"expense":  KindExpense,
		"Expenses": KindExpense,
		"income":   KindIncome,
		"incomes":  KindIncome,
	}
	for in, want := range cases {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("%q expected %s, got %s (err=%v)", in, want, got, err)
		}
	}
	if _, err := ParseKind("transfer"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestKindNames(t *testing.T) {
	if KindExpense.LabelField() != "category" || KindIncome.LabelField() != "source" {
		t.Fatal("unexpected label fields")
	}
	if KindExpense.SummaryKey() != "expense_category_data" || KindIncome.SummaryKey() != "income_source_data" {
		t.Fatal("unexpected summary keys")
	}
	if KindExpense.DateField() != "expense_date" || KindIncome.DateField() != "income_date" {
		t.Fatal("unexpected date fields")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Kind:        KindExpense,
		OwnerID:     1,
		Date:        NewDate(2025, 1, 1),
		Description: "ok",
		Amount:      Money{Cents: 100},
		Label:       "Food",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	mutate := func(f func(*Transaction)) Transaction {
		tx := good
		f(&tx)
		return tx
	}
	bads := []struct {
		tx   Transaction
		want error
	}{
		{mutate(func(t *Transaction) { t.Kind = "transfer" }), ErrInvalidKind},
		{mutate(func(t *Transaction) { t.OwnerID = 0 }), ErrMissingOwner},
		{mutate(func(t *Transaction) { t.Amount = Money{} }), ErrInvalidAmount},
		{mutate(func(t *Transaction) { t.Amount = Money{Cents: -5} }), ErrInvalidAmount},
		{mutate(func(t *Transaction) { t.Date = Date{} }), ErrInvalidDate},
		{mutate(func(t *Transaction) { t.Description = "  " }), ErrEmptyDescription},
		{mutate(func(t *Transaction) { t.Label = "" }), ErrEmptyLabel},
		{mutate(func(t *Transaction) { t.Label = strings.Repeat("x", MaxLabelLength+1) }), ErrLabelTooLong},
	}
	for i, tc := range bads {
		if err := tc.tx.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestSummaryWindow(t *testing.T) {
	from, to := SummaryWindow(NewDate(2025, 7, 1))
	if to.String() != "2025-07-01" {
		t.Fatalf("unexpected end %s", to)
	}
	if from.String() != "2025-01-02" {
		t.Fatalf("unexpected start %s", from)
	}
}
