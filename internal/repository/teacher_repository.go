package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/chills-dance/camp-api/internal/model"
)

type TeacherRepo struct{ DB *sql.DB }

func NewTeacherRepo(db *sql.DB) *TeacherRepo { return &TeacherRepo{DB: db} }

// CreateEmpty inserts the blank profile that accompanies a TEACHER
// registration. Specialties start as an empty JSON array.
func (r *TeacherRepo) CreateEmpty(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO teacher_profiles (id, user_id, specialties) VALUES (?,?,?)",
		uuid.NewString(), userID, "[]")
	return err
}

// ListVerified returns verified teacher profiles joined with the owner's
// display name, ordered by last name.
func (r *TeacherRepo) ListVerified(ctx context.Context) ([]model.TeacherProfile, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT t.id, t.user_id, t.bio, t.specialties, t.contact_info, t.is_verified,
		       CONCAT(u.first_name, ' ', u.last_name), t.created_at, t.updated_at
		FROM teacher_profiles t
		JOIN users u ON u.id = t.user_id
		WHERE t.is_verified = 1 AND u.is_active = 1
		ORDER BY u.last_name, u.first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TeacherProfile
	for rows.Next() {
		var (
			t           model.TeacherProfile
			bio, info   sql.NullString
			specialties string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &bio, &specialties, &info, &t.IsVerified,
			&t.DisplayName, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.Bio = bio.String
		t.ContactInfo = info.String
		t.Specialties = decodeSpecialties(specialties)
		out = append(out, t)
	}
	return out, rows.Err()
}

func decodeSpecialties(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return []string{}
	}
	return list
}
