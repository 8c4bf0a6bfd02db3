package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, secrets)
// - default: Values common across all environments (timeouts, windows, batch sizes)
// -----------------------------------------------------------------------------

type Config struct {
	Server      ServerConfig
	DB          DBConfig
	Redis       RedisConfig
	CORS        CORSConfig
	Log         LogConfig
	JWT         JWTConfig
	Lock        LockConfig
	Checkout    CheckoutConfig
	Payment     PaymentConfig
	Outbox      OutboxConfig
	Idempotency IdempotencyConfig
	Sweeper     SweeperConfig
	Storage     StorageConfig
	Crypto      CryptoConfig
	Bot         BotConfig
	Snowflake   SnowflakeConfig
}

type ServerConfig struct {
	Port                 string `envconfig:"PORT" required:"true"`
	MaxJSONBodyBytes     int64  `envconfig:"SERVER_MAX_JSON_BODY_BYTES" default:"1048576"`
	MaxFormOverheadBytes int64  `envconfig:"SERVER_MAX_FORM_OVERHEAD_BYTES" default:"1048576"`
}

type DBConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" required:"true"`
	Password    string `envconfig:"DB_PASSWORD" required:"true"`
	DBName      string `envconfig:"DB_NAME" required:"true"`
	SSLMode     string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone    string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns    int32  `envconfig:"DB_MAX_CONNS" default:"20"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// StoreBackend selects the implementation behind locks, holds, reserves and dedup.
// "memory" is single-node only.
type RedisConfig struct {
	StoreBackend string `envconfig:"STORE_BACKEND" default:"redis"`
	Addr         string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password     string `envconfig:"REDIS_PASSWORD" default:""`
	DB           int    `envconfig:"REDIS_DB" default:"0"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length,Idempotent-Replayed"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type JWTConfig struct {
	Secret   string        `envconfig:"JWT_SECRET" required:"true"`
	Duration time.Duration `envconfig:"JWT_DURATION" default:"24h"`
}

// Wait bounds how long a caller blocks; Lease bounds how long a crashed holder blocks others.
type LockConfig struct {
	Wait  time.Duration `envconfig:"LOCK_WAIT_TIMEOUT" default:"3s"`
	Lease time.Duration `envconfig:"LOCK_LEASE_TTL" default:"15s"`
}

type CheckoutConfig struct {
	DedupTTL time.Duration `envconfig:"CHECKOUT_DEDUP_TTL" default:"60s"`
}

type PaymentConfig struct {
	MaxTxIDLength       int           `envconfig:"PAYMENT_MAX_TXID_LENGTH" default:"128"`
	MaxCommentLength    int           `envconfig:"PAYMENT_MAX_COMMENT_LENGTH" default:"1000"`
	MaxAttachments      int           `envconfig:"PAYMENT_MAX_ATTACHMENTS" default:"5"`
	MaxAttachmentBytes  int64         `envconfig:"PAYMENT_MAX_ATTACHMENT_BYTES" default:"10485760"`
	MaxRejectReason     int           `envconfig:"PAYMENT_MAX_REJECT_REASON" default:"500"`
	MaxDetailsLength    int           `envconfig:"PAYMENT_MAX_DETAILS_LENGTH" default:"2000"`
	AttachmentLinkTTL   time.Duration `envconfig:"PAYMENT_ATTACHMENT_LINK_TTL" default:"24h"`
	DefaultInstructions string        `envconfig:"PAYMENT_DEFAULT_INSTRUCTIONS" default:"The seller will send payment details shortly."`
}

type OutboxConfig struct {
	BatchSize       int           `envconfig:"OUTBOX_BATCH_SIZE" default:"50"`
	Workers         int           `envconfig:"OUTBOX_WORKERS" default:"4"`
	ProcessingTTL   time.Duration `envconfig:"OUTBOX_PROCESSING_TTL" default:"60s"`
	MaxAttempts     int           `envconfig:"OUTBOX_MAX_ATTEMPTS" default:"10"`
	BaseBackoff     time.Duration `envconfig:"OUTBOX_BASE_BACKOFF" default:"5s"`
	MaxBackoff      time.Duration `envconfig:"OUTBOX_MAX_BACKOFF" default:"10m"`
	PollInterval    time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"1s"`
	BacklogLogEvery time.Duration `envconfig:"OUTBOX_BACKLOG_LOG_EVERY" default:"1m"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
}

type SweeperConfig struct {
	HoldInterval        time.Duration `envconfig:"SWEEPER_HOLD_INTERVAL" default:"30s"`
	IdempotencyInterval time.Duration `envconfig:"SWEEPER_IDEMPOTENCY_INTERVAL" default:"10m"`
}

type StorageConfig struct {
	Dir           string `envconfig:"STORAGE_DIR" default:"./data/attachments"`
	PublicBaseURL string `envconfig:"STORAGE_PUBLIC_BASE_URL" default:"http://localhost:8080/files"`
	PresignSecret string `envconfig:"STORAGE_PRESIGN_SECRET" required:"true"`
}

// InstructionsKey is a base64-encoded 32-byte key for auto-mode payment instructions.
type CryptoConfig struct {
	InstructionsKey string `envconfig:"CRYPTO_INSTRUCTIONS_KEY" required:"true"`
}

type BotConfig struct {
	APIBaseURL string        `envconfig:"BOT_API_BASE_URL" default:"http://localhost:8081"`
	Token      string        `envconfig:"BOT_TOKEN" default:""`
	Timeout    time.Duration `envconfig:"BOT_TIMEOUT" default:"10s"`
}

type SnowflakeConfig struct {
	Node int64 `envconfig:"SNOWFLAKE_NODE" default:"1"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:                 "8889", // Test port
			MaxJSONBodyBytes:     1 << 20,
			MaxFormOverheadBytes: 1 << 20,
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 10,
		},
		Redis: RedisConfig{
			StoreBackend: "memory",
			Addr:         "localhost:16379",
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: time.Hour,
		},
		Lock: LockConfig{
			Wait:  500 * time.Millisecond,
			Lease: 5 * time.Second,
		},
		Checkout: CheckoutConfig{
			DedupTTL: time.Minute,
		},
		Payment: PaymentConfig{
			MaxTxIDLength:       128,
			MaxCommentLength:    1000,
			MaxAttachments:      5,
			MaxAttachmentBytes:  10 << 20,
			MaxRejectReason:     500,
			MaxDetailsLength:    2000,
			AttachmentLinkTTL:   time.Hour,
			DefaultInstructions: "The seller will send payment details shortly.",
		},
		Outbox: OutboxConfig{
			BatchSize:       10,
			Workers:         2,
			ProcessingTTL:   30 * time.Second,
			MaxAttempts:     3,
			BaseBackoff:     time.Second,
			MaxBackoff:      time.Minute,
			PollInterval:    100 * time.Millisecond,
			BacklogLogEvery: time.Minute,
		},
		Idempotency: IdempotencyConfig{
			TTL: time.Hour,
		},
		Sweeper: SweeperConfig{
			HoldInterval:        time.Second,
			IdempotencyInterval: time.Minute,
		},
		Storage: StorageConfig{
			Dir:           "./testdata/attachments",
			PublicBaseURL: "http://localhost:8889/files",
			PresignSecret: "test-presign-secret",
		},
		Crypto: CryptoConfig{
			// 32 zero bytes, base64
			InstructionsKey: "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=",
		},
		Bot: BotConfig{
			APIBaseURL: "http://localhost:18081",
			Timeout:    time.Second,
		},
		Snowflake: SnowflakeConfig{
			Node: 1,
		},
	}
}
