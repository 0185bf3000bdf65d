package storage

import (
	"context"
)

const activateUser = `-- name: ActivateUser :execrows
UPDATE users SET is_active = 1 WHERE id = ? AND is_active = 0
`

func (q *Queries) ActivateUser(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, activateUser, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countUsersByEmail = `-- name: CountUsersByEmail :one
SELECT COUNT(*) FROM users WHERE email = ?
`

func (q *Queries) CountUsersByEmail(ctx context.Context, email string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countUsersByEmail, email)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countUsersByUsername = `-- name: CountUsersByUsername :one
SELECT COUNT(*) FROM users WHERE username = ?
`

func (q *Queries) CountUsersByUsername(ctx context.Context, username string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countUsersByUsername, username)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (username, email, password_hash, is_active, created_at)
VALUES (?, ?, ?, 0, ?)
RETURNING id, username, email, password_hash, is_active, created_at
`

type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    int64
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.Username,
		arg.Email,
		arg.PasswordHash,
		arg.CreatedAt,
	)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const getUser = `-- name: GetUser :one
SELECT id, username, email, password_hash, is_active, created_at FROM users WHERE id = ?
`

func (q *Queries) GetUser(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUser, id)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT id, username, email, password_hash, is_active, created_at FROM users WHERE email = ?
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const getUserByUsername = `-- name: GetUserByUsername :one
SELECT id, username, email, password_hash, is_active, created_at FROM users WHERE username = ?
`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByUsername, username)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const updateUserPassword = `-- name: UpdateUserPassword :execrows
UPDATE users SET password_hash = ? WHERE id = ?
`

type UpdateUserPasswordParams struct {
	PasswordHash string
	ID           int64
}

func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateUserPassword, arg.PasswordHash, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createPreference = `-- name: CreatePreference :exec
INSERT OR IGNORE INTO user_preferences (user_id, currency) VALUES (?, ?)
`

type CreatePreferenceParams struct {
	UserID   int64
	Currency string
}

func (q *Queries) CreatePreference(ctx context.Context, arg CreatePreferenceParams) error {
	_, err := q.db.ExecContext(ctx, createPreference, arg.UserID, arg.Currency)
	return err
}

const getPreference = `-- name: GetPreference :one
SELECT user_id, currency FROM user_preferences WHERE user_id = ?
`

func (q *Queries) GetPreference(ctx context.Context, userID int64) (UserPreference, error) {
	row := q.db.QueryRowContext(ctx, getPreference, userID)
	var i UserPreference
	err := row.Scan(&i.UserID, &i.Currency)
	return i, err
}

const upsertPreference = `-- name: UpsertPreference :exec
INSERT INTO user_preferences (user_id, currency) VALUES (?, ?)
ON CONFLICT(user_id) DO UPDATE SET currency = excluded.currency
`

type UpsertPreferenceParams struct {
	UserID   int64
	Currency string
}

func (q *Queries) UpsertPreference(ctx context.Context, arg UpsertPreferenceParams) error {
	_, err := q.db.ExecContext(ctx, upsertPreference, arg.UserID, arg.Currency)
	return err
}
