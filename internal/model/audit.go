package model

import "time"

// Audit action tags recorded for security-relevant events.
const (
	AuditLoginSuccess    = "LOGIN_SUCCESS"
	AuditLoginFailed     = "LOGIN_FAILED"
	AuditLogout          = "LOGOUT"
	AuditPasswordChanged = "PASSWORD_CHANGED"
)

// AuditLogEntry mirrors the append-only 'audit_log' table. Rows are never
// mutated or deleted by the service.
type AuditLogEntry struct {
	ID         string
	UserID     string
	Action     string
	Resource   string
	ResourceID string
	IPAddress  string
	Details    map[string]any
	CreatedAt  time.Time
}
