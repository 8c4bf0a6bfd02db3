//go:build unit

package commands_test

import (
	"fmt"
	"sync/atomic"
	"testing"

	"bot-for-order/internal/infra/memstore"
	"bot-for-order/internal/pkg/clock"
	"bot-for-order/internal/pkg/config"
	"bot-for-order/tests/common/builder"
	"bot-for-order/tests/common/memdb"
	sharedmock "bot-for-order/tests/mock/shared"

	"go.uber.org/mock/gomock"
)

type seqIDs struct {
	n atomic.Int64
}

func (g *seqIDs) NextOrderID() string {
	return fmt.Sprintf("ord-%d", g.n.Add(1))
}

// testEnv wires use cases over the in-memory database and stores.
type testEnv struct {
	cfg       config.Config
	db        *memdb.DB
	clock     *clock.MockClock
	locks     *memstore.LockManager
	holds     *memstore.HoldLedger
	reserves  *memstore.ReserveStore
	dedup     *memstore.DedupStore
	ids       *seqIDs
	notifier  *sharedmock.MockNotifier
	storage   *sharedmock.MockObjectStorage
	encryptor *sharedmock.MockEncryptor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctrl := gomock.NewController(t)
	db := memdb.New()
	clk := clock.NewMockClock(builder.DefaultNow)

	return &testEnv{
		cfg:       config.NewTestConfig(),
		db:        db,
		clock:     clk,
		locks:     memstore.NewLockManager(clk),
		holds:     memstore.NewHoldLedger(db.Reads().Catalog(), clk),
		reserves:  memstore.NewReserveStore(clk),
		dedup:     memstore.NewDedupStore(clk),
		ids:       &seqIDs{},
		notifier:  sharedmock.NewMockNotifier(ctrl),
		storage:   sharedmock.NewMockObjectStorage(ctrl),
		encryptor: sharedmock.NewMockEncryptor(ctrl),
	}
}
