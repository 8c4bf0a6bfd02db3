package repository

import (
	"context"

	"bot-for-order/internal/domain/order"
	"bot-for-order/internal/infra"
	"bot-for-order/internal/infra/db"

	"github.com/jackc/pgx/v5/pgtype"
)

type HistoryRepository struct {
	db db.DBTX
}

func NewHistoryRepository(dbtx db.DBTX) *HistoryRepository {
	return &HistoryRepository{db: dbtx}
}

func (r *HistoryRepository) Append(ctx context.Context, e order.HistoryEntry) error {
	var from pgtype.Text
	if e.From != nil {
		from = pgtype.Text{String: string(*e.From), Valid: true}
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO order_status_history (id, order_id, from_status, to_status, actor_id, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.OrderID, from, string(e.To), e.ActorID, e.Comment, e.At,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to append order history", err)
	}
	return nil
}
