package bootstrap

import (
	"bot-for-order/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	RedisModule,
	JWTModule,
	components.PersistenceModule,
	components.StoreModule,
	components.InfraModule,
	components.UseCaseModule,
	components.HandlerModule,
	components.WorkerModule,
)
