package queue

import (
	"context"
	"time"

	"github.com/chills-dance/camp-api/internal/model"
	pkglog "github.com/chills-dance/camp-api/pkg/log"
)

// SyncRecorder writes audit entries straight to the store. Used when no
// broker is configured; it keeps the session manager's fire-and-forget
// contract by logging failures instead of returning them.
type SyncRecorder struct {
	store AuditStore
	log   pkglog.Logger
}

func NewSyncRecorder(store AuditStore, log pkglog.Logger) *SyncRecorder {
	return &SyncRecorder{store: store, log: log}
}

func (r *SyncRecorder) Record(ctx context.Context, e model.AuditLogEntry) {
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.store.Append(writeCtx, e); err != nil {
		r.log.Error().Err(err).Str("action", e.Action).Msg("audit append failed")
	}
}
