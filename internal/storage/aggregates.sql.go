package storage

import (
	"context"
)

const addToAggregate = `-- name: AddToAggregate :one
INSERT INTO aggregates (kind, owner_id, label, amount_units)
VALUES (?, ?, ?, ?)
ON CONFLICT(kind, owner_id, label) DO UPDATE SET amount_units = aggregates.amount_units + excluded.amount_units
RETURNING amount_units
`

type AddToAggregateParams struct {
	Kind        string
	OwnerID     int64
	Label       string
	AmountUnits int64
}

func (q *Queries) AddToAggregate(ctx context.Context, arg AddToAggregateParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, addToAggregate,
		arg.Kind,
		arg.OwnerID,
		arg.Label,
		arg.AmountUnits,
	)
	var amountUnits int64
	err := row.Scan(&amountUnits)
	return amountUnits, err
}

const countAggregates = `-- name: CountAggregates :one
SELECT COUNT(*) FROM aggregates WHERE kind = ? AND owner_id = ?
`

type CountAggregatesParams struct {
	Kind    string
	OwnerID int64
}

func (q *Queries) CountAggregates(ctx context.Context, arg CountAggregatesParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countAggregates, arg.Kind, arg.OwnerID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getAggregate = `-- name: GetAggregate :one
SELECT id, kind, owner_id, label, amount_units FROM aggregates
WHERE kind = ? AND owner_id = ? AND label = ?
`

type GetAggregateParams struct {
	Kind    string
	OwnerID int64
	Label   string
}

func (q *Queries) GetAggregate(ctx context.Context, arg GetAggregateParams) (Aggregate, error) {
	row := q.db.QueryRowContext(ctx, getAggregate, arg.Kind, arg.OwnerID, arg.Label)
	var i Aggregate
	err := row.Scan(
		&i.ID,
		&i.Kind,
		&i.OwnerID,
		&i.Label,
		&i.AmountUnits,
	)
	return i, err
}

const listAggregatesPage = `-- name: ListAggregatesPage :many
SELECT id, kind, owner_id, label, amount_units FROM aggregates
WHERE kind = ? AND owner_id = ?
ORDER BY label
LIMIT ? OFFSET ?
`

type ListAggregatesPageParams struct {
	Kind    string
	OwnerID int64
	Limit   int64
	Offset  int64
}

func (q *Queries) ListAggregatesPage(ctx context.Context, arg ListAggregatesPageParams) ([]Aggregate, error) {
	rows, err := q.db.QueryContext(ctx, listAggregatesPage,
		arg.Kind,
		arg.OwnerID,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Aggregate
	for rows.Next() {
		var i Aggregate
		if err := rows.Scan(
			&i.ID,
			&i.Kind,
			&i.OwnerID,
			&i.Label,
			&i.AmountUnits,
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

const listCategories = `-- name: ListCategories :many
SELECT name FROM categories ORDER BY name
`

func (q *Queries) ListCategories(ctx context.Context) ([]string, error) {
	return q.listNames(ctx, listCategories)
}

const listSources = `-- name: ListSources :many
SELECT name FROM sources ORDER BY name
`

func (q *Queries) ListSources(ctx context.Context) ([]string, error) {
	return q.listNames(ctx, listSources)
}

func (q *Queries) listNames(ctx context.Context, query string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		items = append(items, name)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
