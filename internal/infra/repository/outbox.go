package repository

import (
	"context"
	"time"

	"bot-for-order/internal/domain/outbox"
	"bot-for-order/internal/infra"
	"bot-for-order/internal/infra/db"
	"bot-for-order/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OutboxRepository struct {
	db db.DBTX
}

func NewOutboxRepository(dbtx db.DBTX) *OutboxRepository {
	return &OutboxRepository{db: dbtx}
}

func (r *OutboxRepository) Insert(ctx context.Context, msg *outbox.Message) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO outbox_messages (id, type, payload, status, attempts, next_attempt_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		msg.ID, msg.Type, msg.Payload, string(msg.Status), msg.Attempts, msg.NextAttemptAt, msg.CreatedAt, msg.UpdatedAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to insert outbox message", err)
	}
	return nil
}

// FetchDueBatch claims due messages for this worker until leaseUntil. A PROCESSING
// row whose lease expired is due again, which is how crashed workers are recovered.
func (r *OutboxRepository) FetchDueBatch(ctx context.Context, limit int, now, leaseUntil time.Time) ([]*outbox.Message, error) {
	rows, err := r.db.Query(ctx, `
		WITH due AS (
			SELECT id
			FROM outbox_messages
			WHERE status IN ('NEW', 'PROCESSING') AND next_attempt_at <= $1
			ORDER BY next_attempt_at, created_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		UPDATE outbox_messages m
		SET status = 'PROCESSING', attempts = m.attempts + 1, next_attempt_at = $3, updated_at = $1
		FROM due
		WHERE m.id = due.id
		RETURNING m.id, m.type, m.payload, m.status, m.attempts, m.next_attempt_at,
		          m.created_at, m.updated_at, m.processed_at, m.last_error`,
		now, limit, leaseUntil,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to fetch due outbox messages", err)
	}
	defer rows.Close()

	var out []*outbox.Message
	for rows.Next() {
		var (
			m           outbox.Message
			status      string
			processedAt pgtype.Timestamptz
			lastErr     pgtype.Text
		)
		if err := rows.Scan(&m.ID, &m.Type, &m.Payload, &status, &m.Attempts, &m.NextAttemptAt,
			&m.CreatedAt, &m.UpdatedAt, &processedAt, &lastErr); err != nil {
			return nil, infra.WrapRepoErr("failed to scan outbox message", err)
		}
		m.Status = outbox.Status(status)
		m.ProcessedAt = pgconv.TimePtrFromPgtype(processedAt)
		m.LastError = pgconv.StringPtrFromPgtype(lastErr)
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate outbox messages", err)
	}
	return out, nil
}

func (r *OutboxRepository) MarkDone(ctx context.Context, id uuid.UUID, expectedAttempts int, now time.Time) (bool, error) {
	return r.finalize(ctx, "failed to mark outbox message done", `
		UPDATE outbox_messages
		SET status = 'DONE', processed_at = $3, updated_at = $3, last_error = NULL
		WHERE id = $1 AND attempts = $2 AND status = 'PROCESSING'`,
		id, expectedAttempts, now,
	)
}

func (r *OutboxRepository) Reschedule(ctx context.Context, id uuid.UUID, expectedAttempts int, nextAttemptAt time.Time, lastErr string) (bool, error) {
	return r.finalize(ctx, "failed to reschedule outbox message", `
		UPDATE outbox_messages
		SET status = 'NEW', next_attempt_at = $3, last_error = $4, updated_at = NOW()
		WHERE id = $1 AND attempts = $2 AND status = 'PROCESSING'`,
		id, expectedAttempts, nextAttemptAt, lastErr,
	)
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, expectedAttempts int, lastErr string, now time.Time) (bool, error) {
	return r.finalize(ctx, "failed to mark outbox message failed", `
		UPDATE outbox_messages
		SET status = 'FAILED', last_error = $3, processed_at = $4, updated_at = $4
		WHERE id = $1 AND attempts = $2 AND status = 'PROCESSING'`,
		id, expectedAttempts, lastErr, now,
	)
}

func (r *OutboxRepository) finalize(ctx context.Context, msg, query string, args ...any) (bool, error) {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, infra.WrapRepoErr(msg, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *OutboxRepository) CountBacklog(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM outbox_messages
		WHERE status IN ('NEW', 'PROCESSING') AND next_attempt_at <= $1`, now).Scan(&n)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count outbox backlog", err)
	}
	return n, nil
}
