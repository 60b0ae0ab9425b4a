package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/chills-dance/camp-api/internal/model"
)

type RSVPRepo struct{ DB *sql.DB }

func NewRSVPRepo(db *sql.DB) *RSVPRepo { return &RSVPRepo{DB: db} }

// Upsert creates or updates the (user, class) RSVP and returns the stored
// row. The unique key on (user_id, class_id) makes the operation idempotent.
func (r *RSVPRepo) Upsert(ctx context.Context, userID, classID, status string) (model.RSVP, error) {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO rsvps (id, user_id, class_id, status) VALUES (?,?,?,?)
		ON DUPLICATE KEY UPDATE status=VALUES(status)`,
		uuid.NewString(), userID, classID, status)
	if err != nil {
		return model.RSVP{}, err
	}
	var rsvp model.RSVP
	err = r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, class_id, status, created_at, updated_at FROM rsvps WHERE user_id=? AND class_id=? LIMIT 1",
		userID, classID).
		Scan(&rsvp.ID, &rsvp.UserID, &rsvp.ClassID, &rsvp.Status, &rsvp.CreatedAt, &rsvp.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RSVP{}, ErrNotFound
	}
	return rsvp, err
}

// CountConfirmed returns the confirmed-RSVP count for a class.
func (r *RSVPRepo) CountConfirmed(ctx context.Context, classID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM rsvps WHERE class_id=? AND status='CONFIRMED'", classID).Scan(&n)
	return n, err
}

// ListForUser returns the user's RSVPs, newest first.
func (r *RSVPRepo) ListForUser(ctx context.Context, userID string) ([]model.RSVP, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, class_id, status, created_at, updated_at FROM rsvps WHERE user_id=? ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RSVP
	for rows.Next() {
		var rsvp model.RSVP
		if err := rows.Scan(&rsvp.ID, &rsvp.UserID, &rsvp.ClassID, &rsvp.Status, &rsvp.CreatedAt, &rsvp.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rsvp)
	}
	return out, rows.Err()
}
