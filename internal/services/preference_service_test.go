package services

import (
	"context"
	"errors"
	"testing"

	"expensetracker/internal/core"
)

func TestPreferenceService(t *testing.T) {
	repo, _ := newTestStorage(t)
	ctx := context.Background()
	svc := NewPreferenceService(repo, "")
	user := newTestUser(t, repo, "alice")

	// No stored row yet.
	got, err := svc.Currency(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got != core.DefaultCurrency {
		t.Fatalf("expected fallback %s, got %s", core.DefaultCurrency, got)
	}

	if _, err := svc.SetCurrency(ctx, user.ID, "euro"); !errors.Is(err, core.ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}

	stored, err := svc.SetCurrency(ctx, user.ID, " usd ")
	if err != nil {
		t.Fatal(err)
	}
	if stored != "USD" {
		t.Fatalf("expected USD, got %s", stored)
	}

	got, _ = svc.Currency(ctx, user.ID)
	if got != "USD" {
		t.Fatalf("expected USD, got %s", got)
	}
	if svc.cache.Size() != 1 {
		t.Fatalf("expected one cached entry, got %d", svc.cache.Size())
	}

	// A write invalidates the cached value.
	if _, err := svc.SetCurrency(ctx, user.ID, "EUR"); err != nil {
		t.Fatal(err)
	}
	got, _ = svc.Currency(ctx, user.ID)
	if got != "EUR" {
		t.Fatalf("expected EUR after update, got %s", got)
	}
}
