// Package queue carries audit events from the session manager to the
// audit_log table through RabbitMQ. Publishing is fire-and-forget; the
// durable queue and the consumer's acks give at-least-once persistence.
package queue

import (
	"time"

	"github.com/chills-dance/camp-api/internal/model"
)

const auditQueueName = "audit.events"

// AuditEvent is the broker payload for one audit-log entry.
type AuditEvent struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID string         `json:"resource_id,omitempty"`
	IPAddress  string         `json:"ip_address,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func fromModel(e model.AuditLogEntry) AuditEvent {
	return AuditEvent{
		ID:         e.ID,
		UserID:     e.UserID,
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		IPAddress:  e.IPAddress,
		Details:    e.Details,
		OccurredAt: e.CreatedAt,
	}
}

func (e AuditEvent) toModel() model.AuditLogEntry {
	return model.AuditLogEntry{
		ID:         e.ID,
		UserID:     e.UserID,
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		IPAddress:  e.IPAddress,
		Details:    e.Details,
		CreatedAt:  e.OccurredAt,
	}
}
