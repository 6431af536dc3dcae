package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateSession indicates an audit row with the same id already exists.
var ErrDuplicateSession = errors.New("session: duplicate audit row")

// AuditTrail keeps a postgres record of issued sessions for operators.
// It is advisory only; the Redis record remains the source of truth, so a
// nil trail is a no-op.
type AuditTrail struct {
	pool *pgxpool.Pool
}

// NewAuditTrail constructs an AuditTrail backed by the pool.
func NewAuditTrail(pool *pgxpool.Pool) *AuditTrail {
	return &AuditTrail{pool: pool}
}

// Record inserts an audit row for a freshly issued session.
func (t *AuditTrail) Record(ctx context.Context, id string, userID int64, role string, expiresAt time.Time, ip, ua string) error {
	if t == nil || t.pool == nil {
		return nil
	}
	_, err := t.pool.Exec(ctx,
		`INSERT INTO session_audit (id, user_id, role, created_at, expires_at, ip, ua)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, userID, role, time.Now().UTC(), expiresAt.UTC(), ip, ua)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSession
		}
		return err
	}
	return nil
}

// Remove deletes the audit row when a session is revoked.
func (t *AuditTrail) Remove(ctx context.Context, id string) error {
	if t == nil || t.pool == nil {
		return nil
	}
	_, err := t.pool.Exec(ctx, `DELETE FROM session_audit WHERE id = $1`, id)
	return err
}

// Prune removes audit rows whose sessions expired before the retention
// window. Returns the number of rows removed.
func (t *AuditTrail) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if t == nil || t.pool == nil {
		return 0, nil
	}
	cutoff := time.Now().Add(-retention)
	tag, err := t.pool.Exec(ctx, `DELETE FROM session_audit WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
