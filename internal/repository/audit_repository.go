package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/chills-dance/camp-api/internal/model"
)

// AuditRepo appends to the audit_log table. Entries are immutable: there are
// no update or delete paths.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// Append inserts one audit row. Details are stored as JSON when present.
func (r *AuditRepo) Append(ctx context.Context, e model.AuditLogEntry) error {
	var details any
	if e.Details != nil {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return err
		}
		details = string(b)
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO audit_log (id, user_id, action, resource, resource_id, ip_address, details, created_at) VALUES (?,?,?,?,?,?,?,?)",
		e.ID, e.UserID, e.Action, e.Resource, nullIfEmpty(e.ResourceID), nullIfEmpty(e.IPAddress), details, e.CreatedAt)
	return err
}

func nullIfEmpty(s string) any {
	if s == "" {
		return sql.NullString{}
	}
	return s
}
