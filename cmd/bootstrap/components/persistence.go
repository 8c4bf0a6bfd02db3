package components

import (
	"bot-for-order/internal/infra/db"
	"bot-for-order/internal/infra/readstore"
	"bot-for-order/internal/infra/repository"
	"bot-for-order/internal/infra/uow"
	"bot-for-order/internal/usecase/queries"
	"bot-for-order/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	repositoryModule,
	readStoreModule,
)

var baseOption = fx.Provide(
	NewDBTX,
)

var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		// UnitOfWork
		uow.NewPostgresUoW,
		// Idempotency
		fx.Annotate(
			repository.NewIdempotencyRepository,
			fx.As(new(shared.IdempotencyRepository)),
		),
		// Outbox (pool-bound, used after commit and by the processor)
		fx.Annotate(
			repository.NewOutboxRepository,
			fx.As(new(shared.OutboxRepository)),
		),
		// Stock capacity for hold ledgers
		NewStockReader,
	),
)

var readStoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		fx.Annotate(
			readstore.NewOrderReadStore,
			fx.As(new(queries.OrderViewRepo)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

func NewStockReader(u shared.UnitOfWork) shared.StockReader {
	return u.Reads().Catalog()
}
