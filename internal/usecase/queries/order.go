package queries

import (
	"context"
	"time"

	"bot-for-order/internal/domain/order"
	"bot-for-order/internal/domain/user"
	"bot-for-order/internal/pkg/errs"
)

// Read models (DTO for read side)
type OrderView struct {
	ID               string
	MerchantID       string
	BuyerID          int64
	AmountMinor      int64
	Currency         string
	PaymentMethod    *string
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	PaymentClaimedAt *time.Time
	PaymentDecidedAt *time.Time
	// OfferItem is set for orders created from an accepted offer; they have no lines.
	OfferItem *OfferItemView
}

type OfferItemView struct {
	ListingID string
	VariantID *string
	Qty       int
}

type OrderLineView struct {
	ListingID  string
	VariantID  *string
	Qty        int
	PriceMinor int64
	Currency   string
}

type OrderDetail struct {
	Order *OrderView
	Lines []*OrderLineView
}

type HistoryView struct {
	From    *string
	To      string
	ActorID int64
	Comment string
	At      time.Time
}

type OrderListItem struct {
	ID          string
	BuyerID     int64
	AmountMinor int64
	Currency    string
	Status      string
	CreatedAt   time.Time
}

// ListFilter narrows admin listings; buyers always see only their own orders.
type ListFilter struct {
	Status *order.Status
}

type OrderQueries interface {
	GetByID(ctx context.Context, actor user.Actor, id string) (*OrderDetail, error)
	History(ctx context.Context, actor user.Actor, id string) ([]*HistoryView, error)
	List(ctx context.Context, actor user.Actor, filter ListFilter, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error)
}

type OrderViewRepo interface {
	// FindByID returns order.ErrOrderNotFound for unknown ids.
	FindByID(ctx context.Context, id string) (*OrderView, error)
	ListLines(ctx context.Context, orderID string) ([]*OrderLineView, error)
	ListHistory(ctx context.Context, orderID string) ([]*HistoryView, error)
	ListByMerchant(ctx context.Context, merchantID string, status *order.Status, after *Position, limit int) ([]*OrderListItem, error)
	ListByBuyer(ctx context.Context, buyerID int64, after *Position, limit int) ([]*OrderListItem, error)
}

type orderQueriesImpl struct {
	repo OrderViewRepo
}

func NewOrderQueries(repo OrderViewRepo) OrderQueries {
	return &orderQueriesImpl{repo: repo}
}

func (q *orderQueriesImpl) GetByID(ctx context.Context, actor user.Actor, id string) (*OrderDetail, error) {
	o, err := q.authorized(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	lines, err := q.repo.ListLines(ctx, id)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: o, Lines: lines}, nil
}

func (q *orderQueriesImpl) History(ctx context.Context, actor user.Actor, id string) ([]*HistoryView, error) {
	if _, err := q.authorized(ctx, actor, id); err != nil {
		return nil, err
	}
	return q.repo.ListHistory(ctx, id)
}

// List pages newest first. The returned cursor is nil on the last page.
func (q *orderQueriesImpl) List(ctx context.Context, actor user.Actor, filter ListFilter, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error) {
	limit = ValidateLimit(limit)
	pos, err := after.Position()
	if err != nil {
		return nil, nil, err
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, nil, errs.Wrapf(order.ErrUnknownStatus, "status %q", *filter.Status)
	}

	// one extra row tells whether another page exists
	var rows []*OrderListItem
	if actor.IsAdmin() {
		rows, err = q.repo.ListByMerchant(ctx, actor.MerchantID, filter.Status, pos, limit+1)
	} else {
		rows, err = q.repo.ListByBuyer(ctx, actor.ID, pos, limit+1)
	}
	if err != nil {
		return nil, nil, err
	}

	if len(rows) <= limit {
		return rows, nil, nil
	}
	rows = rows[:limit]
	last := rows[len(rows)-1]
	return rows, &Cursor{After: EncodeAfterCursor(Position{CreatedAt: last.CreatedAt, ID: last.ID})}, nil
}

func (q *orderQueriesImpl) authorized(ctx context.Context, actor user.Actor, id string) (*OrderView, error) {
	o, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		if !actor.CanManage(o.MerchantID) {
			return nil, errs.Wrapf(errs.ErrForbidden, "order %s not managed by %d", id, actor.ID)
		}
		return o, nil
	}
	if o.BuyerID != actor.ID {
		return nil, errs.Wrapf(errs.ErrForbidden, "order %s not owned by %d", id, actor.ID)
	}
	return o, nil
}
