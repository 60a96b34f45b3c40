package audit

import (
	"context"

	"github.com/pharmos/backend/internal/domain/audit"
	"github.com/pharmos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder appends audit entries as a best-effort side channel. A failure
// here is reported to the log, never to the caller: the business
// operation the entry describes has already succeeded and stays
// committed.
type Recorder struct {
	repo   audit.Repository
	logger *zap.Logger
}

// NewRecorder creates a Recorder
func NewRecorder(repo audit.Repository, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{repo: repo, logger: logger}
}

// Record appends one entry. Never returns an error.
func (r *Recorder) Record(ctx context.Context, tenantID, actorID uuid.UUID, action audit.Action, entityType string, entityID uuid.UUID, details any) {
	entry, err := audit.NewEntry(tenantID, actorID, action, entityType, entityID, details)
	if err != nil {
		r.logger.Error("audit entry rejected",
			zap.String("entity_type", entityType),
			zap.Error(err))
		return
	}
	if err := r.repo.Append(ctx, entry); err != nil {
		r.logger.Error("audit entry not persisted",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID.String()),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

// List retrieves audit entries for a tenant
func (r *Recorder) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]audit.Entry, error) {
	return r.repo.FindAllForTenant(ctx, tenantID, filter)
}
