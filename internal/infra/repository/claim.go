package repository

import (
	"context"

	"bot-for-order/internal/domain/payment"
	"bot-for-order/internal/infra"
	"bot-for-order/internal/infra/db"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ClaimRepository struct {
	db db.DBTX
}

func NewClaimRepository(dbtx db.DBTX) *ClaimRepository {
	return &ClaimRepository{db: dbtx}
}

// TryInsert relies on the partial unique index over SUBMITTED claims, so a
// concurrent duplicate resolves to false instead of aborting the transaction.
func (r *ClaimRepository) TryInsert(ctx context.Context, c *payment.Claim) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO payment_claims (id, order_id, method_type, txid, comment, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (order_id) WHERE status = 'SUBMITTED' DO NOTHING`,
		c.ID, c.OrderID, string(c.MethodType), pgconv.StringPtrToPgtype(c.TxID), pgconv.StringPtrToPgtype(c.Comment),
		string(c.Status), c.CreatedAt,
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to insert payment claim", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ClaimRepository) FindSubmitted(ctx context.Context, orderID string) (*payment.Claim, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, order_id, method_type, txid, comment, status, reject_reason, created_at, decided_at
		FROM payment_claims
		WHERE order_id = $1 AND status = 'SUBMITTED'`, orderID)

	var (
		c         payment.Claim
		method    string
		status    string
		txID      pgtype.Text
		comment   pgtype.Text
		reason    pgtype.Text
		decidedAt pgtype.Timestamptz
	)
	if err := row.Scan(&c.ID, &c.OrderID, &method, &txID, &comment, &status, &reason, &c.CreatedAt, &decidedAt); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to find submitted claim", err)
	}
	c.MethodType = payment.MethodType(method)
	c.Status = payment.ClaimStatus(status)
	c.TxID = pgconv.StringPtrFromPgtype(txID)
	c.Comment = pgconv.StringPtrFromPgtype(comment)
	c.RejectReason = pgconv.StringPtrFromPgtype(reason)
	c.DecidedAt = pgconv.TimePtrFromPgtype(decidedAt)
	return &c, nil
}

func (r *ClaimRepository) UpdateDecision(ctx context.Context, c *payment.Claim) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE payment_claims
		SET status = $2, reject_reason = $3, decided_at = $4
		WHERE id = $1 AND status = 'SUBMITTED'`,
		c.ID, string(c.Status), pgconv.StringPtrToPgtype(c.RejectReason), pgconv.TimePtrToPgtype(c.DecidedAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update claim decision", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Wrapf(payment.ErrClaimNotFound, "claim %s", c.ID)
	}
	return nil
}

type AttachmentRepository struct {
	db db.DBTX
}

func NewAttachmentRepository(dbtx db.DBTX) *AttachmentRepository {
	return &AttachmentRepository{db: dbtx}
}

func (r *AttachmentRepository) Create(ctx context.Context, a payment.Attachment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO payment_claim_attachments (id, claim_id, storage_key, filename, content_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.ClaimID, a.StorageKey, a.Filename, a.ContentType, a.Size, a.CreatedAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create claim attachment", err)
	}
	return nil
}

func (r *AttachmentRepository) ListByClaim(ctx context.Context, claimID uuid.UUID) ([]payment.Attachment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, claim_id, storage_key, filename, content_type, size_bytes, created_at
		FROM payment_claim_attachments
		WHERE claim_id = $1
		ORDER BY created_at, id`, claimID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list claim attachments", err)
	}
	defer rows.Close()

	var out []payment.Attachment
	for rows.Next() {
		var a payment.Attachment
		if err := rows.Scan(&a.ID, &a.ClaimID, &a.StorageKey, &a.Filename, &a.ContentType, &a.Size, &a.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan claim attachment", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate claim attachments", err)
	}
	return out, nil
}
