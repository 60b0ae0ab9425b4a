package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/chills-dance/camp-api/internal/model"
)

// TokenRepo persists refresh tokens. Rows are deleted rather than flagged:
// rotation, logout and password changes all remove rows outright, and the
// periodic sweep clears expired ones.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh-token row.
func (r *TokenRepo) Store(ctx context.Context, t model.RefreshToken) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at) VALUES (?,?,?,?)",
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt)
	return err
}

// FindValid returns the unexpired row matching (userID, tokenHash).
func (r *TokenRepo) FindValid(ctx context.Context, userID, tokenHash string, now time.Time) (model.RefreshToken, error) {
	var t model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, created_at FROM refresh_tokens WHERE user_id=? AND token_hash=? AND expires_at>? LIMIT 1",
		userID, tokenHash, now).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RefreshToken{}, ErrNotFound
	}
	if err != nil {
		return model.RefreshToken{}, err
	}
	return t, nil
}

// Delete removes a single row by id.
func (r *TokenRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE id=?", id)
	return err
}

// DeleteAllForUser removes every row for the user (revoke everywhere).
func (r *TokenRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE user_id=?", userID)
	return err
}

// DeleteExpired removes rows past expiry and reports how many went away.
// Safe to run repeatedly and concurrently with refreshes.
func (r *TokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE expires_at<=?", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
