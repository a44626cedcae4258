package aftersales

import (
	"context"
	"time"

	"github.com/diemthanh21/shopthoitrang-sub001/internal/shared/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditWriter appends immutable transition records. Appending is
// best-effort observability, not a transactional ledger: a persistence
// failure is logged and swallowed so it can never block a workflow
// transition.
type AuditWriter struct {
	repo    Repository
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewAuditWriter creates a new audit writer.
func NewAuditWriter(repo Repository, logger *zap.Logger, m *metrics.Metrics) *AuditWriter {
	return &AuditWriter{repo: repo, logger: logger, metrics: m}
}

// Append records one transition. Never returns an error.
func (w *AuditWriter) Append(ctx context.Context, requestID uuid.UUID, kind RequestKind, action Action, fromStatus, toStatus, note string, actor Actor) {
	entry := &AuditLogEntry{
		ID:         uuid.New(),
		RequestID:  requestID,
		Kind:       kind,
		Action:     action,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		Note:       note,
		ActorType:  actor.Type,
		ActorID:    actor.ID,
		CreatedAt:  time.Now(),
	}

	if err := w.repo.AppendAudit(ctx, entry); err != nil {
		w.logger.Warn("audit append failed",
			zap.String("request_id", requestID.String()),
			zap.String("action", string(action)),
			zap.Error(err),
		)
		if w.metrics != nil {
			w.metrics.AuditAppendFailures.Inc()
		}
	}
}

// List returns all entries for a request, oldest first. Used by support
// tooling, never by the state machines.
func (w *AuditWriter) List(ctx context.Context, requestID uuid.UUID) ([]*AuditLogEntry, error) {
	return w.repo.ListAudit(ctx, requestID)
}
