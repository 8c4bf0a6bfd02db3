package components

import (
	"bot-for-order/internal/handler/api"
	"bot-for-order/internal/infra/botapi"
	"bot-for-order/internal/infra/notify"
	"bot-for-order/internal/infra/objectstore"
	"bot-for-order/internal/infra/secret"
	"bot-for-order/internal/pkg/config"
	"bot-for-order/internal/pkg/idgen"
	"bot-for-order/internal/pkg/jwt"
	"bot-for-order/internal/usecase/shared"
	"bot-for-order/internal/worker"

	"go.uber.org/fx"
)

var InfraModule = fx.Module("infra",
	fx.Provide(
		fx.Annotate(
			NewIDGenerator,
			fx.As(new(shared.IDGenerator)),
		),
		fx.Annotate(
			NewEncryptor,
			fx.As(new(shared.Encryptor)),
		),
		fx.Annotate(
			NewObjectStorage,
			fx.As(new(shared.ObjectStorage)),
			fx.As(new(api.FileOpener)),
		),
		fx.Annotate(
			notify.NewOutboxNotifier,
			fx.As(new(shared.Notifier)),
		),
		fx.Annotate(
			NewBotClient,
			fx.As(new(worker.MessageSender)),
		),
	),
)

func NewIDGenerator(cfg config.Config) (*idgen.Snowflake, error) {
	return idgen.NewSnowflake(cfg.Snowflake.Node)
}

func NewEncryptor(cfg config.Config) (*secret.Encryptor, error) {
	return secret.NewEncryptor(cfg.Crypto.InstructionsKey)
}

// NewObjectStorage signs download links with its own secret, separate from auth tokens.
func NewObjectStorage(cfg config.Config) (*objectstore.FSStorage, error) {
	signer := jwt.NewService(cfg.Storage.PresignSecret, cfg.Payment.AttachmentLinkTTL)
	return objectstore.NewFSStorage(cfg.Storage.Dir, cfg.Storage.PublicBaseURL, signer)
}

func NewBotClient(cfg config.Config) *botapi.Client {
	return botapi.NewClient(cfg.Bot.APIBaseURL, cfg.Bot.Token, cfg.Bot.Timeout)
}
