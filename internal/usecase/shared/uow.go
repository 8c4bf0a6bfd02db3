package shared

import (
	"context"
	"time"

	"bot-for-order/internal/domain/cart"
	"bot-for-order/internal/domain/catalog"
	"bot-for-order/internal/domain/hold"
	"bot-for-order/internal/domain/idempotency"
	"bot-for-order/internal/domain/merchant"
	"bot-for-order/internal/domain/order"
	"bot-for-order/internal/domain/outbox"
	"bot-for-order/internal/domain/payment"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// Reads: Repositories bound to the pool for reads outside transactions
	Reads() Tx
}

type Tx interface {
	Orders() OrderRepository
	OrderLines() OrderLineRepository
	History() HistoryRepository
	Claims() ClaimRepository
	Attachments() AttachmentRepository
	Carts() CartRepository
	Catalog() CatalogRepository
	Merchants() MerchantRepository
	PaymentMethods() PaymentMethodRepository
	Outbox() OutboxRepository
}

type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) error
	FindByID(ctx context.Context, id string) (*order.Order, error)
	// Update persists o only if the stored status and payment method still
	// equal those of prev, the snapshot o was derived from.
	Update(ctx context.Context, o *order.Order, prev *order.Order) error
}

type OrderLineRepository interface {
	CreateBatch(ctx context.Context, lines []order.Line) error
	ListByOrder(ctx context.Context, orderID string) ([]order.Line, error)
}

type HistoryRepository interface {
	Append(ctx context.Context, entry order.HistoryEntry) error
}

type ClaimRepository interface {
	// TryInsert returns false when another SUBMITTED claim already exists for the order.
	TryInsert(ctx context.Context, c *payment.Claim) (bool, error)
	FindSubmitted(ctx context.Context, orderID string) (*payment.Claim, error)
	UpdateDecision(ctx context.Context, c *payment.Claim) error
}

type AttachmentRepository interface {
	Create(ctx context.Context, a payment.Attachment) error
	ListByClaim(ctx context.Context, claimID uuid.UUID) ([]payment.Attachment, error)
}

type CartRepository interface {
	FindByBuyer(ctx context.Context, buyerID int64) (*cart.Cart, error)
	ListItems(ctx context.Context, cartID string) ([]cart.Item, error)
	// ClearItems leaves the cart header (and its updated_at) untouched.
	ClearItems(ctx context.Context, cartID string) error
}

type StockReader interface {
	StockSnapshot(ctx context.Context, items []hold.Item) (map[string]catalog.Stock, error)
}

type CatalogRepository interface {
	StockReader
	// DecrementStockBatch applies every decrement or none; catalog.ErrStockMismatch otherwise.
	DecrementStockBatch(ctx context.Context, items []hold.Item) error
}

type MerchantRepository interface {
	FindByID(ctx context.Context, id string) (*merchant.Merchant, error)
}

type PaymentMethodRepository interface {
	FindEnabled(ctx context.Context, merchantID string, methodType payment.MethodType) (*payment.Method, error)
	FindOrderDetails(ctx context.Context, orderID string) (*payment.OrderDetails, error)
	SaveOrderDetails(ctx context.Context, details payment.OrderDetails) error
}

// OutboxRepository finalizers are conditioned on the attempt count observed at
// claim time and report false when another worker has reclaimed the message.
type OutboxRepository interface {
	Insert(ctx context.Context, msg *outbox.Message) error
	FetchDueBatch(ctx context.Context, limit int, now, leaseUntil time.Time) ([]*outbox.Message, error)
	MarkDone(ctx context.Context, id uuid.UUID, expectedAttempts int, now time.Time) (bool, error)
	Reschedule(ctx context.Context, id uuid.UUID, expectedAttempts int, nextAttemptAt time.Time, lastErr string) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID, expectedAttempts int, lastErr string, now time.Time) (bool, error)
	CountBacklog(ctx context.Context, now time.Time) (int64, error)
}

type IdempotencyRepository interface {
	FindValid(ctx context.Context, key idempotency.Key, now time.Time) (*idempotency.Record, error)
	TryInsert(ctx context.Context, rec *idempotency.Record) (bool, error)
	UpdateResponse(ctx context.Context, key idempotency.Key, resp idempotency.Response) error
	Delete(ctx context.Context, key idempotency.Key) error
	DeleteIfExpired(ctx context.Context, key idempotency.Key, now time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
