package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/duitapp/ledger/pkg/logger"
)

const ConfigTagName = "env"
const ConfigDefaultTagName = "default"

var config *Config

// Config holds every runtime setting. Only this struct may be used to
// carry configuration values; no direct env/ini reads elsewhere.
type Config struct {
	AppEnv   string `env:"APP_ENV" default:"dev"`
	AppName  string `env:"APP_NAME" default:"duit_ledger"`
	AppDebug bool   `env:"APP_DEBUG" default:"1"`

	HttpListenAddr         string `env:"HTTP_LISTEN_ADDR" validation:"mustExists"`
	HttpServerReadTimeout  int    `env:"HTTP_SERVER_READ_TIMEOUT"`
	HttpServerWriteTimeout int    `env:"HTTP_SERVER_WRITE_TIMEOUT"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX"`

	PromNamespace string `env:"PROM_NAMESPACE"`

	LogLevel []string `env:"LOG_LEVEL"`

	// Webhook channel
	WebhookSecret           string        `env:"WEBHOOK_SECRET"`
	CashWithdrawalThreshold float64       `env:"CASH_WITHDRAWAL_THRESHOLD" default:"1000000"`
	IdempotencyTTL          time.Duration `env:"IDEMPOTENCY_TTL" default:"24h"`

	// Recap job
	RecapPageSize               int           `env:"RECAP_PAGE_SIZE" default:"100"`
	RecapWorkers                int           `env:"RECAP_WORKERS" default:"8"`
	RecapDailyAllowanceFallback float64       `env:"RECAP_DAILY_ALLOWANCE_FALLBACK" default:"100000"`
	RecapIdleCashThreshold      float64       `env:"RECAP_IDLE_CASH_THRESHOLD" default:"5000000"`
	RecapCashBurnThreshold      float64       `env:"RECAP_CASH_BURN_THRESHOLD" default:"500000"`
	RecapInflationFactor        float64       `env:"RECAP_INFLATION_FACTOR" default:"1.005"`
	RecapDeliverTimeout         time.Duration `env:"RECAP_DELIVER_TIMEOUT" default:"10s"`

	// Notification sink
	NotifyMode         string `env:"NOTIFY_MODE" default:"http"` // http | outbox
	NotifyGatewayURL   string `env:"NOTIFY_GATEWAY_URL"`
	NotifyOutboxStream string `env:"NOTIFY_OUTBOX_STREAM" default:"digest:outbox"`
	NotifyOutboxMaxLen int64  `env:"NOTIFY_OUTBOX_MAXLEN" default:"100000"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.New("failed to load configuration file " + path + " error: " + err.Error())
		}
	}

	_, err = env.UnmarshalFromEnviron(c)
	if err != nil {
		return errors.New("failed to map env variables to Configuration object " + " error: " + err.Error())
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}
