package components

import (
	"bot-for-order/internal/infra/memstore"
	"bot-for-order/internal/infra/redisstore"
	"bot-for-order/internal/pkg/clock"
	"bot-for-order/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var StoreModule = fx.Module("store",
	fx.Provide(
		NewStores,
	),
)

type Stores struct {
	fx.Out

	Locks    shared.LockManager
	Holds    shared.HoldLedger
	Reserves shared.ReserveStore
	Dedup    shared.DedupStore
}

// NewStores picks the coordination backend: Redis when a client is configured,
// process memory otherwise.
func NewStores(client redis.UniversalClient, stock shared.StockReader, clk clock.Clock) Stores {
	if client == nil {
		return Stores{
			Locks:    memstore.NewLockManager(clk),
			Holds:    memstore.NewHoldLedger(stock, clk),
			Reserves: memstore.NewReserveStore(clk),
			Dedup:    memstore.NewDedupStore(clk),
		}
	}
	return Stores{
		Locks:    redisstore.NewLockManager(client),
		Holds:    redisstore.NewHoldLedger(client, stock, clk),
		Reserves: redisstore.NewReserveStore(client),
		Dedup:    redisstore.NewDedupStore(client),
	}
}
