package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"expensetracker/internal/core"

	_ "modernc.org/sqlite"
)

// ErrUniqueViolation is returned when an insert hits a UNIQUE constraint.
var ErrUniqueViolation = errors.New("unique constraint violation")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

// dsn enables foreign keys and a busy timeout on every pooled connection.
func dsn(dbPath string) string {
	return dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Tx exposes the statements that must run inside a single database
// transaction.
type Tx struct {
	queries *Queries
}

// InTx runs fn inside a database transaction. The transaction commits only
// when fn returns nil; any error rolls back every statement fn issued.
func (r *SQLiteRepository) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Tx{queries: r.queries.WithTx(sqlTx)}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// CountTransactionsOn counts the owner's transactions of kind dated on day.
func (t *Tx) CountTransactionsOn(ctx context.Context, kind core.Kind, ownerID int64, day core.Date) (int, error) {
	n, err := t.queries.CountTransactionsOn(ctx, CountTransactionsOnParams{
		Kind:    kind.String(),
		OwnerID: ownerID,
		TxnDate: day.String(),
	})
	if err != nil {
		return 0, fmt.Errorf("count transactions on %s: %w", day, err)
	}
	return int(n), nil
}

func (t *Tx) InsertTransaction(ctx context.Context, txn core.Transaction, createdAt time.Time) (core.Transaction, error) {
	row, err := t.queries.InsertTransaction(ctx, InsertTransactionParams{
		Kind:        txn.Kind.String(),
		OwnerID:     txn.OwnerID,
		AmountCents: txn.Amount.Cents,
		TxnDate:     txn.Date.String(),
		Description: txn.Description,
		Label:       txn.Label,
		CreatedAt:   createdAt.Unix(),
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return toCoreTransaction(row)
}

// AddToAggregate adds delta to the (kind, owner, label) running total,
// creating the row at delta when absent. The returned value is the new total.
func (t *Tx) AddToAggregate(ctx context.Context, kind core.Kind, ownerID int64, label string, delta int64) (int64, error) {
	total, err := t.queries.AddToAggregate(ctx, AddToAggregateParams{
		Kind:        kind.String(),
		OwnerID:     ownerID,
		Label:       label,
		AmountUnits: delta,
	})
	if err != nil {
		return 0, fmt.Errorf("add to aggregate %q: %w", label, err)
	}
	return total, nil
}

func (t *Tx) CreateUser(ctx context.Context, username, email, passwordHash string, createdAt time.Time) (core.User, error) {
	row, err := t.queries.CreateUser(ctx, CreateUserParams{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt.Unix(),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, fmt.Errorf("create user: %w", ErrUniqueViolation)
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	return toCoreUser(row), nil
}

func (t *Tx) CreatePreference(ctx context.Context, userID int64, currency string) error {
	if err := t.queries.CreatePreference(ctx, CreatePreferenceParams{UserID: userID, Currency: currency}); err != nil {
		return fmt.Errorf("create preference: %w", err)
	}
	return nil
}

// GetTransaction returns an owner-scoped transaction or core.ErrNotFound.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, kind core.Kind, ownerID, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, GetTransactionParams{ID: id, Kind: kind.String(), OwnerID: ownerID})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return toCoreTransaction(row)
}

// UpdateTransaction replaces the editable fields of an owner-scoped
// transaction. Aggregates are left untouched.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, txn core.Transaction) error {
	n, err := r.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		AmountCents: txn.Amount.Cents,
		TxnDate:     txn.Date.String(),
		Description: txn.Description,
		Label:       txn.Label,
		ID:          txn.ID,
		Kind:        txn.Kind.String(),
		OwnerID:     txn.OwnerID,
	})
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", txn.ID, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, kind core.Kind, ownerID, id int64) error {
	n, err := r.queries.DeleteTransaction(ctx, DeleteTransactionParams{ID: id, Kind: kind.String(), OwnerID: ownerID})
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id, "kind", kind, "owner_id", ownerID)
	return nil
}

func (r *SQLiteRepository) CountTransactions(ctx context.Context, kind core.Kind, ownerID int64) (int, error) {
	n, err := r.queries.CountTransactions(ctx, CountTransactionsParams{Kind: kind.String(), OwnerID: ownerID})
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return int(n), nil
}

// ListTransactions returns one window of the owner's history, newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, kind core.Kind, ownerID int64, limit, offset int) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactionsPage(ctx, ListTransactionsPageParams{
		Kind:    kind.String(),
		OwnerID: ownerID,
		Limit:   int64(limit),
		Offset:  int64(offset),
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return toCoreTransactions(rows)
}

func (r *SQLiteRepository) ListAllTransactions(ctx context.Context, kind core.Kind, ownerID int64) ([]core.Transaction, error) {
	rows, err := r.queries.ListAllTransactions(ctx, ListAllTransactionsParams{Kind: kind.String(), OwnerID: ownerID})
	if err != nil {
		return nil, fmt.Errorf("list all transactions: %w", err)
	}
	return toCoreTransactions(rows)
}

// SearchTransactions matches text case-insensitively as a prefix of the
// amount or date, or as a substring of the description or label.
func (r *SQLiteRepository) SearchTransactions(ctx context.Context, kind core.Kind, ownerID int64, text string) ([]core.Transaction, error) {
	escaped := escapeLike(text)
	rows, err := r.queries.SearchTransactions(ctx, SearchTransactionsParams{
		Kind:            kind.String(),
		OwnerID:         ownerID,
		AmountPrefix:    escaped + "%",
		DatePrefix:      escaped + "%",
		DescriptionLike: "%" + escaped + "%",
		LabelLike:       "%" + escaped + "%",
	})
	if err != nil {
		return nil, fmt.Errorf("search transactions: %w", err)
	}
	return toCoreTransactions(rows)
}

// SumByLabel returns exact per-label sums for transactions dated in [from, to].
func (r *SQLiteRepository) SumByLabel(ctx context.Context, kind core.Kind, ownerID int64, from, to core.Date) ([]core.LabelAmount, error) {
	rows, err := r.queries.SumByLabelBetween(ctx, SumByLabelBetweenParams{
		Kind:     kind.String(),
		OwnerID:  ownerID,
		FromDate: from.String(),
		ToDate:   to.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("sum by label: %w", err)
	}

	sums := make([]core.LabelAmount, len(rows))
	for i, row := range rows {
		sums[i] = core.LabelAmount{Label: row.Label, Amount: core.Money{Cents: row.TotalCents}}
	}
	return sums, nil
}

// GetAggregate returns the running total for a label or core.ErrNotFound.
func (r *SQLiteRepository) GetAggregate(ctx context.Context, kind core.Kind, ownerID int64, label string) (core.Aggregate, error) {
	row, err := r.queries.GetAggregate(ctx, GetAggregateParams{Kind: kind.String(), OwnerID: ownerID, Label: label})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Aggregate{}, core.ErrNotFound
	}
	if err != nil {
		return core.Aggregate{}, fmt.Errorf("get aggregate %q: %w", label, err)
	}
	return toCoreAggregate(row), nil
}

func (r *SQLiteRepository) CountAggregates(ctx context.Context, kind core.Kind, ownerID int64) (int, error) {
	n, err := r.queries.CountAggregates(ctx, CountAggregatesParams{Kind: kind.String(), OwnerID: ownerID})
	if err != nil {
		return 0, fmt.Errorf("count aggregates: %w", err)
	}
	return int(n), nil
}

func (r *SQLiteRepository) ListAggregates(ctx context.Context, kind core.Kind, ownerID int64, limit, offset int) ([]core.Aggregate, error) {
	rows, err := r.queries.ListAggregatesPage(ctx, ListAggregatesPageParams{
		Kind:    kind.String(),
		OwnerID: ownerID,
		Limit:   int64(limit),
		Offset:  int64(offset),
	})
	if err != nil {
		return nil, fmt.Errorf("list aggregates: %w", err)
	}

	aggregates := make([]core.Aggregate, len(rows))
	for i, row := range rows {
		aggregates[i] = toCoreAggregate(row)
	}
	return aggregates, nil
}

// ListLabels returns the seeded categories (expense) or sources (income).
func (r *SQLiteRepository) ListLabels(ctx context.Context, kind core.Kind) ([]string, error) {
	var (
		labels []string
		err    error
	)
	if kind == core.KindIncome {
		labels, err = r.queries.ListSources(ctx)
	} else {
		labels, err = r.queries.ListCategories(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s labels: %w", kind, err)
	}
	return labels, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	row, err := r.queries.GetUser(ctx, id)
	return userResult(row, err, "get user")
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	row, err := r.queries.GetUserByUsername(ctx, username)
	return userResult(row, err, "get user by username")
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	row, err := r.queries.GetUserByEmail(ctx, email)
	return userResult(row, err, "get user by email")
}

func (r *SQLiteRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	n, err := r.queries.CountUsersByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("count users by username: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := r.queries.CountUsersByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("count users by email: %w", err)
	}
	return n > 0, nil
}

// ActivateUser flips an inactive user to active. It reports false when the
// user was already active.
func (r *SQLiteRepository) ActivateUser(ctx context.Context, id int64) (bool, error) {
	n, err := r.queries.ActivateUser(ctx, id)
	if err != nil {
		return false, fmt.Errorf("activate user %d: %w", id, err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	n, err := r.queries.UpdateUserPassword(ctx, UpdateUserPasswordParams{PasswordHash: passwordHash, ID: id})
	if err != nil {
		return fmt.Errorf("update password for user %d: %w", id, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// GetPreference returns the stored preference or core.ErrNotFound.
func (r *SQLiteRepository) GetPreference(ctx context.Context, userID int64) (core.Preference, error) {
	row, err := r.queries.GetPreference(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Preference{}, core.ErrNotFound
	}
	if err != nil {
		return core.Preference{}, fmt.Errorf("get preference: %w", err)
	}
	return core.Preference{UserID: row.UserID, Currency: row.Currency}, nil
}

func (r *SQLiteRepository) SetPreference(ctx context.Context, p core.Preference) error {
	if err := r.queries.UpsertPreference(ctx, UpsertPreferenceParams{UserID: p.UserID, Currency: p.Currency}); err != nil {
		return fmt.Errorf("set preference: %w", err)
	}
	return nil
}

func userResult(row User, err error, op string) (core.User, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return toCoreUser(row), nil
}

func toCoreUser(u User) core.User {
	return core.User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Active:       u.IsActive,
		CreatedAt:    time.Unix(u.CreatedAt, 0).UTC(),
	}
}

func toCoreTransaction(t Transaction) (core.Transaction, error) {
	kind, err := core.ParseKind(t.Kind)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", t.ID, err)
	}
	date, err := core.ParseDate(t.TxnDate)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", t.ID, err)
	}
	return core.Transaction{
		ID:          t.ID,
		Kind:        kind,
		OwnerID:     t.OwnerID,
		Amount:      core.Money{Cents: t.AmountCents},
		Date:        date,
		Description: t.Description,
		Label:       t.Label,
	}, nil
}

func toCoreTransactions(rows []Transaction) ([]core.Transaction, error) {
	txns := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := toCoreTransaction(row)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, nil
}

func toCoreAggregate(a Aggregate) core.Aggregate {
	return core.Aggregate{
		Kind:    core.Kind(a.Kind),
		OwnerID: a.OwnerID,
		Label:   a.Label,
		Amount:  a.AmountUnits,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralises LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
