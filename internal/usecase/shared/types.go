package shared

import (
	"context"
	"time"

	"bot-for-order/internal/domain/hold"
	"bot-for-order/internal/domain/order"
	"bot-for-order/internal/domain/payment"
)

// LockManager grants named leases. Acquire blocks at most wait and fails with
// errs.ErrLockTimeout; the lease expires on its own after lease even if never released.
type LockManager interface {
	Acquire(ctx context.Context, key string, wait, lease time.Duration) (Lease, error)
}

type Lease interface {
	Key() string
	Release(ctx context.Context) error
}

// HoldLedger reserves stock for multi-line owners. Every call is one atomic
// store operation.
type HoldLedger interface {
	TryAcquire(ctx context.Context, ownerID string, reqs []hold.Request, ttl time.Duration) (bool, error)
	Extend(ctx context.Context, ownerID string, reqs []hold.Request, ttl time.Duration) error
	Release(ctx context.Context, ownerID string, reqs []hold.Request) error
	ReleaseExpired(ctx context.Context) (int, error)
}

// ReserveStore reserves a single key for one owner (accepted offers).
type ReserveStore interface {
	PutIfAbsent(ctx context.Context, key string, payload hold.Reserve, ttl time.Duration) (bool, error)
	HasOrderReserve(ctx context.Context, orderID string) (bool, error)
	// ExtendByOrder moves the expiry of the order's reserve and its index together.
	// A missing or foreign reserve is left untouched.
	ExtendByOrder(ctx context.Context, orderID string, ttl time.Duration) error
	DeleteReserveByOrder(ctx context.Context, orderID string) error
}

// DedupStore is a short-lived string cache surviving client retries.
type DedupStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
}

// Notifier failures are logged by callers and never retried there.
type Notifier interface {
	NotifyAdminClaim(ctx context.Context, o *order.Order, claim *payment.Claim, attachments []payment.Attachment, mode payment.Mode) error
	NotifyBuyerClarification(ctx context.Context, o *order.Order, message *string) error
}

type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string, size int64) error
	// Delete succeeds for a missing object.
	Delete(ctx context.Context, key string) error
	PresignGet(key string, ttl time.Duration) (string, error)
}

type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type IDGenerator interface {
	NextOrderID() string
}
