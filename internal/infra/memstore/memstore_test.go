//go:build unit

package memstore_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bot-for-order/internal/domain/hold"
	"bot-for-order/internal/infra/memstore"
	"bot-for-order/internal/pkg/clock"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/tests/common/builder"
	"bot-for-order/tests/common/memdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func variant(id string, qty int) hold.Request {
	return hold.Request{ListingID: builder.DefaultListingID, VariantID: &id, Qty: qty}
}

// ================================================================================
// LockManager
// ================================================================================

func TestLockManager(t *testing.T) {
	ctx := context.Background()

	t.Run("success: released lock can be taken again", func(t *testing.T) {
		locks := memstore.NewLockManager(clock.NewMockClock(builder.DefaultNow))

		lease, err := locks.Acquire(ctx, "order:1:confirm", 50*time.Millisecond, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, "order:1:confirm", lease.Key())
		require.NoError(t, lease.Release(ctx))

		_, err = locks.Acquire(ctx, "order:1:confirm", 50*time.Millisecond, time.Minute)
		assert.NoError(t, err)
	})

	t.Run("error: held lock times out", func(t *testing.T) {
		locks := memstore.NewLockManager(clock.NewMockClock(builder.DefaultNow))
		_, err := locks.Acquire(ctx, "k", 50*time.Millisecond, time.Minute)
		require.NoError(t, err)

		start := time.Now()
		_, err = locks.Acquire(ctx, "k", 50*time.Millisecond, time.Minute)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrLockTimeout))
		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("success: expired lease can be taken over and the stale release is ignored", func(t *testing.T) {
		clk := clock.NewMockClock(builder.DefaultNow)
		locks := memstore.NewLockManager(clk)
		stale, err := locks.Acquire(ctx, "k", 50*time.Millisecond, time.Second)
		require.NoError(t, err)

		clk.Set(builder.DefaultNow.Add(2 * time.Second))
		_, err = locks.Acquire(ctx, "k", 50*time.Millisecond, time.Minute)
		require.NoError(t, err)

		require.NoError(t, stale.Release(ctx))
		_, err = locks.Acquire(ctx, "k", 30*time.Millisecond, time.Minute)
		assert.True(t, errs.Is(err, errs.ErrLockTimeout))
	})

	t.Run("success: critical sections never overlap", func(t *testing.T) {
		locks := memstore.NewLockManager(clock.NewRealClock())
		var inside, overlaps atomic.Int32
		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				lease, err := locks.Acquire(ctx, "k", 2*time.Second, time.Minute)
				if err != nil {
					return
				}
				if inside.Add(1) > 1 {
					overlaps.Add(1)
				}
				time.Sleep(time.Millisecond)
				inside.Add(-1)
				_ = lease.Release(ctx)
			}()
		}
		wg.Wait()
		assert.Zero(t, overlaps.Load())
	})
}

// ================================================================================
// HoldLedger
// ================================================================================

func newLedger(stock int) (*memstore.HoldLedger, *clock.MockClock) {
	db := memdb.New()
	db.PutListing(builder.DefaultListingID, 100, true)
	db.PutVariant("v-1", builder.DefaultListingID, stock, true)
	db.PutVariant("v-2", builder.DefaultListingID, stock, true)
	clk := clock.NewMockClock(builder.DefaultNow)
	return memstore.NewHoldLedger(db.Reads().Catalog(), clk), clk
}

func TestHoldLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("success: capacity is shared across owners", func(t *testing.T) {
		ledger, _ := newLedger(3)

		testCases := []struct {
			owner string
			reqs  []hold.Request
			want  bool
		}{
			{owner: "a", reqs: []hold.Request{variant("v-1", 1), variant("v-1", 1)}, want: true},
			{owner: "b", reqs: []hold.Request{variant("v-1", 2)}, want: false},
			{owner: "c", reqs: []hold.Request{variant("v-1", 1), variant("v-2", 3)}, want: true},
			{owner: "d", reqs: []hold.Request{variant("v-2", 1)}, want: false},
		}
		for _, tc := range testCases {
			ok, err := ledger.TryAcquire(ctx, tc.owner, tc.reqs, time.Minute)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok, "owner %s", tc.owner)
		}
	})

	t.Run("success: acquire is idempotent for the same owner and items", func(t *testing.T) {
		ledger, _ := newLedger(2)
		reqs := []hold.Request{variant("v-1", 2)}

		for range 3 {
			ok, err := ledger.TryAcquire(ctx, "a", reqs, time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)
		}
		ok, err := ledger.TryAcquire(ctx, "a", []hold.Request{variant("v-1", 1)}, time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("success: concurrent owners never oversell", func(t *testing.T) {
		ledger, _ := newLedger(5)
		var granted atomic.Int32
		var wg sync.WaitGroup
		for i := range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := ledger.TryAcquire(ctx, string(rune('a'+i)), []hold.Request{variant("v-1", 1)}, time.Minute)
				if err == nil && ok {
					granted.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(5), granted.Load())
	})

	t.Run("success: expired holds free capacity", func(t *testing.T) {
		ledger, clk := newLedger(1)
		ok, err := ledger.TryAcquire(ctx, "a", []hold.Request{variant("v-1", 1)}, time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		clk.Set(builder.DefaultNow.Add(time.Minute))
		ok, err = ledger.TryAcquire(ctx, "b", []hold.Request{variant("v-1", 1)}, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("success: extend keeps a live hold past its original expiry", func(t *testing.T) {
		ledger, clk := newLedger(1)
		reqs := []hold.Request{variant("v-1", 1)}
		ok, err := ledger.TryAcquire(ctx, "a", reqs, time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, ledger.Extend(ctx, "a", reqs, 10*time.Minute))
		clk.Set(builder.DefaultNow.Add(5 * time.Minute))

		ok, err = ledger.TryAcquire(ctx, "b", reqs, time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("error: extending a lapsed hold whose stock was taken", func(t *testing.T) {
		ledger, clk := newLedger(1)
		reqs := []hold.Request{variant("v-1", 1)}
		_, err := ledger.TryAcquire(ctx, "a", reqs, time.Minute)
		require.NoError(t, err)

		clk.Set(builder.DefaultNow.Add(2 * time.Minute))
		ok, err := ledger.TryAcquire(ctx, "b", reqs, time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		err = ledger.Extend(ctx, "a", reqs, time.Minute)
		assert.True(t, errs.Is(err, hold.ErrHoldConflict))
	})

	t.Run("success: release and sweep", func(t *testing.T) {
		ledger, clk := newLedger(2)
		reqs := []hold.Request{variant("v-1", 1)}
		for _, owner := range []string{"a", "b"} {
			ok, err := ledger.TryAcquire(ctx, owner, reqs, time.Minute)
			require.NoError(t, err)
			require.True(t, ok)
		}

		require.NoError(t, ledger.Release(ctx, "a", reqs))
		require.NoError(t, ledger.Release(ctx, "a", reqs))

		clk.Set(builder.DefaultNow.Add(2 * time.Minute))
		n, err := ledger.ReleaseExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("error: non-positive quantity", func(t *testing.T) {
		ledger, _ := newLedger(2)
		_, err := ledger.TryAcquire(ctx, "a", []hold.Request{variant("v-1", 0)}, time.Minute)
		assert.True(t, errs.Is(err, hold.ErrInvalidRequest))
	})
}

// ================================================================================
// ReserveStore and DedupStore
// ================================================================================

func TestReserveStore(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(builder.DefaultNow)
	store := memstore.NewReserveStore(clk)
	key := hold.ReserveKey(builder.DefaultListingID, nil)

	ok, err := store.PutIfAbsent(ctx, key, hold.Reserve{OrderID: "ord-1", Qty: 1}, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.PutIfAbsent(ctx, key, hold.Reserve{OrderID: "ord-2", Qty: 1}, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	has, err := store.HasOrderReserve(ctx, "ord-1")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, store.DeleteReserveByOrder(ctx, "ord-1"))
	has, err = store.HasOrderReserve(ctx, "ord-1")
	require.NoError(t, err)
	assert.False(t, has)

	ok, err = store.PutIfAbsent(ctx, key, hold.Reserve{OrderID: "ord-2", Qty: 1}, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	clk.Set(builder.DefaultNow.Add(2 * time.Minute))
	has, err = store.HasOrderReserve(ctx, "ord-2")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestReserveStore_ExtendByOrder(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(builder.DefaultNow)
	store := memstore.NewReserveStore(clk)
	key := hold.ReserveKey(builder.DefaultListingID, nil)

	ok, err := store.PutIfAbsent(ctx, key, hold.Reserve{OrderID: "ord-1", Qty: 1}, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.ExtendByOrder(ctx, "ord-1", 10*time.Minute))
	require.NoError(t, store.ExtendByOrder(ctx, "ord-9", time.Hour))

	clk.Set(builder.DefaultNow.Add(5 * time.Minute))
	has, err := store.HasOrderReserve(ctx, "ord-1")
	require.NoError(t, err)
	assert.True(t, has)
	ok, err = store.PutIfAbsent(ctx, key, hold.Reserve{OrderID: "ord-2", Qty: 1}, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// an expired reserve is not revived
	clk.Set(builder.DefaultNow.Add(11 * time.Minute))
	require.NoError(t, store.ExtendByOrder(ctx, "ord-1", time.Hour))
	has, err = store.HasOrderReserve(ctx, "ord-1")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestDedupStore(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(builder.DefaultNow)
	store := memstore.NewDedupStore(clk)

	require.NoError(t, store.Put(ctx, "checkout:1", "ord-1", time.Minute))
	v, ok, err := store.Get(ctx, "checkout:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ord-1", v)

	clk.Set(builder.DefaultNow.Add(time.Minute))
	_, ok, err = store.Get(ctx, "checkout:1")
	require.NoError(t, err)
	assert.False(t, ok)
}
