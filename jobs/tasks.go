package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/romay-erp/romay/internal/session"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionAuditPrune removes expired session audit rows.
	TaskSessionAuditPrune = "session:prune_audit"
)

// SessionAuditPrunePayload configures a prune run.
type SessionAuditPrunePayload struct {
	Retention time.Duration `json:"retention"`
}

// NewSessionAuditPruneTask constructs an Asynq task.
func NewSessionAuditPruneTask(retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(SessionAuditPrunePayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionAuditPrune, data), nil
}

// SessionAuditPruneJob deletes audit rows past their retention window.
type SessionAuditPruneJob struct {
	trail  *session.AuditTrail
	logger *slog.Logger
}

// NewSessionAuditPruneJob constructs the job.
func NewSessionAuditPruneJob(trail *session.AuditTrail, logger *slog.Logger) *SessionAuditPruneJob {
	return &SessionAuditPruneJob{trail: trail, logger: logger}
}

// Handle processes TaskSessionAuditPrune tasks.
func (j *SessionAuditPruneJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SessionAuditPrunePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Retention <= 0 {
		return asynq.SkipRetry
	}
	removed, err := j.trail.Prune(ctx, payload.Retention)
	if err != nil {
		return err
	}
	if j.logger != nil {
		j.logger.Info("pruned session audit", slog.Int64("removed", removed))
	}
	return nil
}
