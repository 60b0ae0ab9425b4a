package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/chills-dance/camp-api/internal/model"
)

type ClassRepo struct{ DB *sql.DB }

func NewClassRepo(db *sql.DB) *ClassRepo { return &ClassRepo{DB: db} }

const classColumns = `
	c.id, c.title, c.description, c.instructor_id,
	CONCAT(u.first_name, ' ', u.last_name),
	c.date, c.start_time, c.end_time, c.capacity, c.type, c.location,
	c.is_active, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM rsvps r WHERE r.class_id = c.id AND r.status = 'CONFIRMED')`

// ListActive returns active classes in schedule order with instructor names
// and confirmed-RSVP counts.
func (r *ClassRepo) ListActive(ctx context.Context) ([]model.Class, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+classColumns+`
		FROM classes c
		JOIN teacher_profiles t ON t.id = c.instructor_id
		JOIN users u ON u.id = t.user_id
		WHERE c.is_active = 1
		ORDER BY c.date, c.start_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Class
	for rows.Next() {
		cl, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cl)
	}
	return out, rows.Err()
}

// GetByID fetches a single class with its derived fields.
func (r *ClassRepo) GetByID(ctx context.Context, id string) (model.Class, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+classColumns+`
		FROM classes c
		JOIN teacher_profiles t ON t.id = c.instructor_id
		JOIN users u ON u.id = t.user_id
		WHERE c.id = ? LIMIT 1`, id)
	cl, err := scanClass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Class{}, ErrNotFound
	}
	return cl, err
}

type rowScanner interface{ Scan(dest ...any) error }

func scanClass(row rowScanner) (model.Class, error) {
	var (
		cl        model.Class
		desc, loc sql.NullString
	)
	err := row.Scan(&cl.ID, &cl.Title, &desc, &cl.InstructorID, &cl.InstructorName,
		&cl.Date, &cl.StartTime, &cl.EndTime, &cl.Capacity, &cl.Type, &loc,
		&cl.IsActive, &cl.CreatedAt, &cl.UpdatedAt, &cl.ConfirmedRSVPs)
	if err != nil {
		return model.Class{}, err
	}
	cl.Description = desc.String
	cl.Location = loc.String
	return cl, nil
}
