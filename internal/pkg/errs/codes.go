package errs

// Cross-cutting application errors. Domain packages declare their own.
var (
	ErrForbidden        = Forbidden("FORBIDDEN", "operation not permitted for this user")
	ErrLockTimeout      = Unavailable("LOCK_TIMEOUT", "resource is busy, retry later")
	ErrStoreUnavailable = Unavailable("STORE_UNAVAILABLE", "backing store unavailable")

	ErrIdempotencyKeyRequired = Validation("IDEMPOTENCY_KEY_REQUIRED", "idempotency-key header required")
	ErrIdempotencyKeyConflict = Conflict("IDEMPOTENCY_KEY_CONFLICT", "idempotency key reused with a different request")
	ErrIdempotencyInProgress  = Conflict("IDEMPOTENCY_IN_PROGRESS", "request with this idempotency key is still in progress")
)
