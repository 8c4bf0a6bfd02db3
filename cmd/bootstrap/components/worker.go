package components

import (
	"context"

	"bot-for-order/internal/pkg/clock"
	"bot-for-order/internal/pkg/config"
	"bot-for-order/internal/usecase/shared"
	"bot-for-order/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		worker.NewProcessor,
		NewOutboxHandlers,
		NewRunner,
	),
	fx.Invoke(startWorkers),
)

func NewOutboxHandlers(uow shared.UnitOfWork, sender worker.MessageSender, storage shared.ObjectStorage, cfg config.Config) *worker.Handlers {
	return worker.NewHandlers(uow, sender, storage, cfg.Payment.AttachmentLinkTTL)
}

func NewRunner(
	processor *worker.Processor,
	handlers *worker.Handlers,
	holds shared.HoldLedger,
	idem shared.IdempotencyRepository,
	clk clock.Clock,
	cfg config.SweeperConfig,
) *worker.Runner {
	handlers.RegisterAll(processor)
	return worker.NewRunner(processor,
		worker.NewHoldSweeper(holds, cfg.HoldInterval),
		worker.NewIdempotencySweeper(idem, clk, cfg.IdempotencyInterval),
	)
}

func startWorkers(lc fx.Lifecycle, r *worker.Runner) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			r.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return r.Stop(ctx)
		},
	})
}
