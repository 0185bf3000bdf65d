package storage

import (
	"context"
)

const countTransactions = `-- name: CountTransactions :one
SELECT COUNT(*) FROM transactions WHERE kind = ? AND owner_id = ?
`

type CountTransactionsParams struct {
	Kind    string
	OwnerID int64
}

func (q *Queries) CountTransactions(ctx context.Context, arg CountTransactionsParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTransactions, arg.Kind, arg.OwnerID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countTransactionsOn = `-- name: CountTransactionsOn :one
SELECT COUNT(*) FROM transactions WHERE kind = ? AND owner_id = ? AND txn_date = ?
`

type CountTransactionsOnParams struct {
	Kind    string
	OwnerID int64
	TxnDate string
}

func (q *Queries) CountTransactionsOn(ctx context.Context, arg CountTransactionsOnParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTransactionsOn, arg.Kind, arg.OwnerID, arg.TxnDate)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE id = ? AND kind = ? AND owner_id = ?
`

type DeleteTransactionParams struct {
	ID      int64
	Kind    string
	OwnerID int64
}

func (q *Queries) DeleteTransaction(ctx context.Context, arg DeleteTransactionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, arg.ID, arg.Kind, arg.OwnerID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getTransaction = `-- name: GetTransaction :one
SELECT id, kind, owner_id, amount_cents, txn_date, description, label, created_at
FROM transactions
WHERE id = ? AND kind = ? AND owner_id = ?
`

type GetTransactionParams struct {
	ID      int64
	Kind    string
	OwnerID int64
}

func (q *Queries) GetTransaction(ctx context.Context, arg GetTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, arg.ID, arg.Kind, arg.OwnerID)
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.Kind,
		&i.OwnerID,
		&i.AmountCents,
		&i.TxnDate,
		&i.Description,
		&i.Label,
		&i.CreatedAt,
	)
	return i, err
}

const insertTransaction = `-- name: InsertTransaction :one
INSERT INTO transactions (kind, owner_id, amount_cents, txn_date, description, label, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, kind, owner_id, amount_cents, txn_date, description, label, created_at
`

type InsertTransactionParams struct {
	Kind        string
	OwnerID     int64
	AmountCents int64
	TxnDate     string
	Description string
	Label       string
	CreatedAt   int64
}

func (q *Queries) InsertTransaction(ctx context.Context, arg InsertTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, insertTransaction,
		arg.Kind,
		arg.OwnerID,
		arg.AmountCents,
		arg.TxnDate,
		arg.Description,
		arg.Label,
		arg.CreatedAt,
	)
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.Kind,
		&i.OwnerID,
		&i.AmountCents,
		&i.TxnDate,
		&i.Description,
		&i.Label,
		&i.CreatedAt,
	)
	return i, err
}

const listAllTransactions = `-- name: ListAllTransactions :many
SELECT id, kind, owner_id, amount_cents, txn_date, description, label, created_at
FROM transactions
WHERE kind = ? AND owner_id = ?
ORDER BY txn_date DESC, id DESC
`

type ListAllTransactionsParams struct {
	Kind    string
	OwnerID int64
}

func (q *Queries) ListAllTransactions(ctx context.Context, arg ListAllTransactionsParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listAllTransactions, arg.Kind, arg.OwnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

const listTransactionsPage = `-- name: ListTransactionsPage :many
SELECT id, kind, owner_id, amount_cents, txn_date, description, label, created_at
FROM transactions
WHERE kind = ? AND owner_id = ?
ORDER BY txn_date DESC, id DESC
LIMIT ? OFFSET ?
`

type ListTransactionsPageParams struct {
	Kind    string
	OwnerID int64
	Limit   int64
	Offset  int64
}

func (q *Queries) ListTransactionsPage(ctx context.Context, arg ListTransactionsPageParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsPage,
		arg.Kind,
		arg.OwnerID,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// Amount is matched on its fixed two-decimal rendering, e.g. "12.50".
const searchTransactions = `-- name: SearchTransactions :many
SELECT id, kind, owner_id, amount_cents, txn_date, description, label, created_at
FROM transactions
WHERE kind = ? AND owner_id = ?
  AND (
    ((amount_cents / 100) || '.' || printf('%02d', amount_cents % 100)) LIKE ? ESCAPE '\'
    OR txn_date LIKE ? ESCAPE '\'
    OR description LIKE ? ESCAPE '\'
    OR label LIKE ? ESCAPE '\'
  )
ORDER BY txn_date DESC, id DESC
`

type SearchTransactionsParams struct {
	Kind            string
	OwnerID         int64
	AmountPrefix    string
	DatePrefix      string
	DescriptionLike string
	LabelLike       string
}

func (q *Queries) SearchTransactions(ctx context.Context, arg SearchTransactionsParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, searchTransactions,
		arg.Kind,
		arg.OwnerID,
		arg.AmountPrefix,
		arg.DatePrefix,
		arg.DescriptionLike,
		arg.LabelLike,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

const sumByLabelBetween = `-- name: SumByLabelBetween :many
SELECT label, SUM(amount_cents) AS total_cents
FROM transactions
WHERE kind = ? AND owner_id = ? AND txn_date BETWEEN ? AND ?
GROUP BY label
ORDER BY label
`

type SumByLabelBetweenParams struct {
	Kind     string
	OwnerID  int64
	FromDate string
	ToDate   string
}

type SumByLabelBetweenRow struct {
	Label      string
	TotalCents int64
}

func (q *Queries) SumByLabelBetween(ctx context.Context, arg SumByLabelBetweenParams) ([]SumByLabelBetweenRow, error) {
	rows, err := q.db.QueryContext(ctx, sumByLabelBetween,
		arg.Kind,
		arg.OwnerID,
		arg.FromDate,
		arg.ToDate,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SumByLabelBetweenRow
	for rows.Next() {
		var i SumByLabelBetweenRow
		if err := rows.Scan(&i.Label, &i.TotalCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateTransaction = `-- name: UpdateTransaction :execrows
UPDATE transactions
SET amount_cents = ?, txn_date = ?, description = ?, label = ?
WHERE id = ? AND kind = ? AND owner_id = ?
`

type UpdateTransactionParams struct {
	AmountCents int64
	TxnDate     string
	Description string
	Label       string
	ID          int64
	Kind        string
	OwnerID     int64
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateTransaction,
		arg.AmountCents,
		arg.TxnDate,
		arg.Description,
		arg.Label,
		arg.ID,
		arg.Kind,
		arg.OwnerID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Close() error
	Err() error
}

func scanTransactions(rows rowScanner) ([]Transaction, error) {
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.Kind,
			&i.OwnerID,
			&i.AmountCents,
			&i.TxnDate,
			&i.Description,
			&i.Label,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
