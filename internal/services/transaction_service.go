package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/metrics"
	"expensetracker/internal/storage"
)

// TransactionServiceConfig holds configuration for the transaction service
type TransactionServiceConfig struct {
	// DailyLimit is the number of same-day entries an owner may already have
	// before further creates are rejected. A create is refused once the count
	// strictly exceeds it (default: 10, so the 12th entry of a day fails).
	DailyLimit int

	// Now is the service clock; "today" for the quota is derived from it.
	Now func() time.Time
}

// DefaultTransactionServiceConfig returns sensible defaults
func DefaultTransactionServiceConfig() TransactionServiceConfig {
	return TransactionServiceConfig{
		DailyLimit: 10,
		Now:        time.Now,
	}
}

// TransactionService implements the expense and income ledgers. Both kinds
// share one implementation selected by core.Kind.
type TransactionService struct {
	storage *storage.SQLiteRepository
	config  TransactionServiceConfig
	metrics *metrics.Metrics
}

func NewTransactionService(storage *storage.SQLiteRepository, config TransactionServiceConfig, m *metrics.Metrics) *TransactionService {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.DailyLimit <= 0 {
		config.DailyLimit = DefaultTransactionServiceConfig().DailyLimit
	}
	return &TransactionService{
		storage: storage,
		config:  config,
		metrics: m,
	}
}

// Today is the calendar date of the service clock.
func (s *TransactionService) Today() core.Date {
	return core.DateOf(s.config.Now())
}

// Create validates txn, applies the daily quota, stores it and adds its
// truncated amount to the (owner, label) running total. The quota check, the
// insert and the aggregate update commit or roll back together.
func (s *TransactionService) Create(ctx context.Context, txn core.Transaction) (core.Transaction, error) {
	txn.Description = strings.TrimSpace(txn.Description)
	txn.Label = strings.TrimSpace(txn.Label)
	if txn.Date.IsZero() {
		txn.Date = s.Today()
	}
	if err := txn.Validate(); err != nil {
		return core.Transaction{}, err
	}

	var (
		saved core.Transaction
		total int64
	)
	err := s.storage.InTx(ctx, func(tx *storage.Tx) error {
		if err := s.guard(ctx, tx, txn); err != nil {
			return err
		}

		var err error
		saved, err = tx.InsertTransaction(ctx, txn, s.config.Now())
		if err != nil {
			return err
		}

		total, err = tx.AddToAggregate(ctx, saved.Kind, saved.OwnerID, saved.Label, saved.Amount.WholeUnits())
		return err
	})
	if errors.Is(err, core.ErrQuotaExceeded) {
		s.metrics.QuotaRejected(txn.Kind.String())
		slog.WarnContext(ctx, "Daily quota reached",
			"kind", txn.Kind,
			"owner_id", txn.OwnerID,
			"limit", s.config.DailyLimit)
		return core.Transaction{}, err
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create %s: %w", txn.Kind, err)
	}

	s.metrics.TransactionCreated(saved.Kind.String())
	applog.NewStructuredLogger(applog.FromContext(ctx)).LogTransactionCreated(ctx,
		saved.Kind.String(), saved.ID, saved.OwnerID, saved.Amount.Cents,
		saved.Label, saved.Date.String(), total)

	return saved, nil
}

// guard counts the owner's entries of this kind dated today, where today is
// taken from the service clock and not from the candidate.
func (s *TransactionService) guard(ctx context.Context, tx *storage.Tx, txn core.Transaction) error {
	count, err := tx.CountTransactionsOn(ctx, txn.Kind, txn.OwnerID, s.Today())
	if err != nil {
		return err
	}
	if count > s.config.DailyLimit {
		return core.ErrQuotaExceeded
	}
	return nil
}

// Get returns one of the owner's transactions.
func (s *TransactionService) Get(ctx context.Context, kind core.Kind, ownerID, id int64) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, kind, ownerID, id)
}

// Update replaces the editable fields of an existing transaction. Neither the
// quota nor the running totals are involved.
func (s *TransactionService) Update(ctx context.Context, txn core.Transaction) (core.Transaction, error) {
	txn.Description = strings.TrimSpace(txn.Description)
	txn.Label = strings.TrimSpace(txn.Label)
	if err := txn.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.storage.UpdateTransaction(ctx, txn); err != nil {
		return core.Transaction{}, err
	}
	slog.InfoContext(ctx, "Transaction updated", "id", txn.ID, "kind", txn.Kind, "owner_id", txn.OwnerID)
	return txn, nil
}

// Delete removes one of the owner's transactions. Running totals are kept.
func (s *TransactionService) Delete(ctx context.Context, kind core.Kind, ownerID, id int64) error {
	return s.storage.DeleteTransaction(ctx, kind, ownerID, id)
}

// History returns one page of the owner's transactions, newest first.
func (s *TransactionService) History(ctx context.Context, kind core.Kind, ownerID int64, rawPage string) (core.Page[core.Transaction], error) {
	total, err := s.storage.CountTransactions(ctx, kind, ownerID)
	if err != nil {
		return core.Page[core.Transaction]{}, err
	}
	req := core.ResolvePage(rawPage, total, core.DefaultPageSize)
	items, err := s.storage.ListTransactions(ctx, kind, ownerID, req.Size, req.Offset)
	if err != nil {
		return core.Page[core.Transaction]{}, err
	}
	return core.NewPage(items, req, total), nil
}

// Search returns every owner transaction matching text; see
// storage.SQLiteRepository.SearchTransactions for the match rules.
func (s *TransactionService) Search(ctx context.Context, kind core.Kind, ownerID int64, text string) ([]core.Transaction, error) {
	return s.storage.SearchTransactions(ctx, kind, ownerID, strings.TrimSpace(text))
}

// Summary sums the owner's amounts per label over the trailing window.
func (s *TransactionService) Summary(ctx context.Context, kind core.Kind, ownerID int64) (core.PeriodSummary, error) {
	from, to := core.SummaryWindow(s.Today())
	sums, err := s.storage.SumByLabel(ctx, kind, ownerID, from, to)
	if err != nil {
		return core.PeriodSummary{}, err
	}
	return core.PeriodSummary{Kind: kind, From: from, To: to, ByLabel: sums}, nil
}

// Export returns all of the owner's transactions for CSV download.
func (s *TransactionService) Export(ctx context.Context, kind core.Kind, ownerID int64) ([]core.Transaction, error) {
	return s.storage.ListAllTransactions(ctx, kind, ownerID)
}

// Stats returns one page of the owner's running totals.
func (s *TransactionService) Stats(ctx context.Context, kind core.Kind, ownerID int64, rawPage string) (core.Page[core.Aggregate], error) {
	total, err := s.storage.CountAggregates(ctx, kind, ownerID)
	if err != nil {
		return core.Page[core.Aggregate]{}, err
	}
	req := core.ResolvePage(rawPage, total, core.DefaultPageSize)
	items, err := s.storage.ListAggregates(ctx, kind, ownerID, req.Size, req.Offset)
	if err != nil {
		return core.Page[core.Aggregate]{}, err
	}
	return core.NewPage(items, req, total), nil
}

// Labels lists the suggested categories or sources.
func (s *TransactionService) Labels(ctx context.Context, kind core.Kind) ([]string, error) {
	return s.storage.ListLabels(ctx, kind)
}
