package services

import (
	"context"
	"errors"
	"time"

	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

const (
	preferenceCacheSize = 1000
	preferenceCacheTTL  = 10 * time.Minute
)

// PreferenceService reads and writes display preferences through an LRU cache.
type PreferenceService struct {
	storage  *storage.SQLiteRepository
	fallback string
	cache    *cache.LRUCache[int64, string]
}

func NewPreferenceService(storage *storage.SQLiteRepository, fallback string) *PreferenceService {
	if fallback == "" {
		fallback = core.DefaultCurrency
	}
	return &PreferenceService{
		storage:  storage,
		fallback: fallback,
		cache:    cache.NewLRUCache[int64, string](preferenceCacheSize, preferenceCacheTTL),
	}
}

// Currency returns the user's display currency, or the fallback when the user
// has no stored preference.
func (s *PreferenceService) Currency(ctx context.Context, userID int64) (string, error) {
	if currency, ok := s.cache.Get(userID); ok {
		return currency, nil
	}

	pref, err := s.storage.GetPreference(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return s.fallback, nil
	}
	if err != nil {
		return "", err
	}

	s.cache.Set(userID, pref.Currency)
	return pref.Currency, nil
}

// SetCurrency validates and stores a currency code.
func (s *PreferenceService) SetCurrency(ctx context.Context, userID int64, code string) (string, error) {
	currency, err := core.NormalizeCurrency(code)
	if err != nil {
		return "", err
	}
	if err := s.storage.SetPreference(ctx, core.Preference{UserID: userID, Currency: currency}); err != nil {
		return "", err
	}
	s.cache.Delete(userID)
	return currency, nil
}

// Cache exposes the currency cache for registration with a cache.Manager.
func (s *PreferenceService) Cache() cache.Cleaner {
	return s.cache
}
