package repository

import (
	"context"
	"time"

	"bot-for-order/internal/domain/idempotency"
	"bot-for-order/internal/infra"
	"bot-for-order/internal/infra/db"
	"bot-for-order/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgtype"
)

type IdempotencyRepository struct {
	db db.DBTX
}

func NewIdempotencyRepository(dbtx db.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: dbtx}
}

const idempotencyKeyWhere = `merchant_id = $1 AND user_id = $2 AND scope = $3 AND client_key = $4`

func keyArgs(k idempotency.Key) []any {
	return []any{k.MerchantID, k.UserID, k.Scope, k.ClientKey}
}

// FindValid returns nil when no unexpired record exists.
func (r *IdempotencyRepository) FindValid(ctx context.Context, key idempotency.Key, now time.Time) (*idempotency.Record, error) {
	var (
		rec    = idempotency.Record{Key: key}
		status pgtype.Int4
	)
	err := r.db.QueryRow(ctx, `
		SELECT request_hash, response_status, response_body, created_at, expires_at
		FROM idempotency_keys
		WHERE `+idempotencyKeyWhere+` AND expires_at > $5`,
		append(keyArgs(key), now)...,
	).Scan(&rec.RequestHash, &status, &rec.ResponseBody, &rec.CreatedAt, &rec.ExpiresAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to find idempotency key", err)
	}
	rec.ResponseStatus = pgconv.Int32PtrFromPgtype(status)
	return &rec, nil
}

func (r *IdempotencyRepository) TryInsert(ctx context.Context, rec *idempotency.Record) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO idempotency_keys (merchant_id, user_id, scope, client_key, request_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING`,
		append(keyArgs(rec.Key), rec.RequestHash, rec.CreatedAt, rec.ExpiresAt)...,
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to insert idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) UpdateResponse(ctx context.Context, key idempotency.Key, resp idempotency.Response) error {
	_, err := r.db.Exec(ctx, `
		UPDATE idempotency_keys
		SET response_status = $5, response_body = $6
		WHERE `+idempotencyKeyWhere,
		append(keyArgs(key), resp.Status, resp.Body)...,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to store idempotent response", err)
	}
	return nil
}

func (r *IdempotencyRepository) Delete(ctx context.Context, key idempotency.Key) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM idempotency_keys WHERE `+idempotencyKeyWhere, keyArgs(key)...); err != nil {
		return infra.WrapRepoErr("failed to delete idempotency key", err)
	}
	return nil
}

func (r *IdempotencyRepository) DeleteIfExpired(ctx context.Context, key idempotency.Key, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM idempotency_keys WHERE `+idempotencyKeyWhere+` AND expires_at <= $5`,
		append(keyArgs(key), now)...,
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to delete expired idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM idempotency_keys WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete expired idempotency keys", err)
	}
	return tag.RowsAffected(), nil
}
