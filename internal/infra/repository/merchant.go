package repository

import (
	"context"
	"time"

	"bot-for-order/internal/domain/merchant"
	"bot-for-order/internal/infra"
	"bot-for-order/internal/infra/db"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgtype"
)

type MerchantRepository struct {
	db db.DBTX
}

func NewMerchantRepository(dbtx db.DBTX) *MerchantRepository {
	return &MerchantRepository{db: dbtx}
}

func (r *MerchantRepository) FindByID(ctx context.Context, id string) (*merchant.Merchant, error) {
	var (
		m             merchant.Merchant
		claimSeconds  int
		reviewSeconds int
		adminChatID   pgtype.Int8
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, name, claim_window_seconds, review_window_seconds, admin_chat_id
		FROM merchants
		WHERE id = $1`, id).Scan(&m.ID, &m.Name, &claimSeconds, &reviewSeconds, &adminChatID)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, errs.Mark(infra.WrapRepoErr("merchant not found", err), merchant.ErrMerchantNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find merchant", err)
	}
	m.ClaimWindow = time.Duration(claimSeconds) * time.Second
	m.ReviewWindow = time.Duration(reviewSeconds) * time.Second
	m.AdminChatID = pgconv.Int64PtrFromPgtype(adminChatID)
	return &m, nil
}
