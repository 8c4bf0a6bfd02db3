package bootstrap

import (
	"bot-for-order/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) config.OutboxConfig { return cfg.Outbox },
		func(cfg config.Config) config.SweeperConfig { return cfg.Sweeper },
	),
)
