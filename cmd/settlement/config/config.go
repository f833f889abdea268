package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"go-settlement/internal/settlement"
	"go-settlement/internal/settlement/data/database"
	"go-settlement/internal/settlement/expiry"
	"go-settlement/internal/settlement/fulfillmentmonitor"
	"go-settlement/internal/settlement/providers/paygate"
	"go-settlement/internal/settlement/providers/qrpay"
	"go-settlement/internal/settlement/providers/supplier"
	"go-settlement/pkg/delayqueue"
	"go-settlement/pkg/taskpool"
)

const (
	serverAddressFlag      = "a"
	serverAddressDefault   = "localhost:8080"
	dbConnectionStringFlag = "d"
	redisAddressFlag       = "r"
	redisAddressDefault    = "localhost:6379"
	supplierAddressFlag    = "s"
	supplierAddressDefault = "http://localhost:8081"
	logLevelFlag           = "l"
	logLevelDefault        = "info"
)

type Config struct {
	Server          settlement.Config
	JWTConfig       JWTConfig
	DB              database.Config
	Redis           RedisConfig
	Queue           delayqueue.Config
	Expiry          expiry.ConsumerConfig
	Monitor         fulfillmentmonitor.Config
	Supplier        supplier.Config
	SupplierWebhook string
	PayGate         paygate.Config
	QRPay           qrpay.Config
	DepositTTL      time.Duration
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

type JWTConfig struct {
	Algorithm      string
	Secret         string
	ExpirationTime time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// options is the flat set of values read from flags and then from the
// environment. Environment values win when set.
type options struct {
	ServerAddress   string `env:"RUN_ADDRESS"`
	DatabaseURI     string `env:"DATABASE_URI"`
	RedisAddress    string `env:"REDIS_ADDRESS"`
	SupplierAddress string `env:"SUPPLIER_ADDRESS"`
	LogLevel        string `env:"LOG_LEVEL"`
	LogFormat       string `env:"LOG_FORMAT"`

	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`

	JWTSecret             string        `env:"JWT_SECRET"`
	JWTExpiration         time.Duration `env:"JWT_EXPIRATION"`
	PayGatePrivateKey     string        `env:"PAYGATE_PRIVATE_KEY"`
	QRPaySecret           string        `env:"QRPAY_SECRET"`
	SupplierAPIKey        string        `env:"SUPPLIER_API_KEY"`
	SupplierWebhookSecret string        `env:"SUPPLIER_WEBHOOK_SECRET"`
	SupplierTimeout       time.Duration `env:"SUPPLIER_TIMEOUT"`

	DBMaxConns    int32           `env:"DB_MAX_CONNS"`
	DBRetryDelays []time.Duration `env:"DB_RETRY_DELAYS" envSeparator:","`

	DepositTTL             time.Duration   `env:"DEPOSIT_TTL"`
	QueuePrefix            string          `env:"QUEUE_PREFIX"`
	QueueVisibilityTimeout time.Duration   `env:"QUEUE_VISIBILITY_TIMEOUT"`
	QueueMaxAttempts       int64           `env:"QUEUE_MAX_ATTEMPTS"`
	ExpiryWorkers          int             `env:"EXPIRY_WORKERS"`
	ExpiryTickPeriod       time.Duration   `env:"EXPIRY_TICK_PERIOD"`
	ExpiryRetryDelays      []time.Duration `env:"EXPIRY_RETRY_DELAYS" envSeparator:","`
	MonitorWorkers         int             `env:"MONITOR_WORKERS"`
	MonitorTickPeriod      time.Duration   `env:"MONITOR_TICK_PERIOD"`
	MonitorStaleAfter      time.Duration   `env:"MONITOR_STALE_AFTER"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

func defaultOptions() options {
	return options{
		ServerAddress:          serverAddressDefault,
		RedisAddress:           redisAddressDefault,
		SupplierAddress:        supplierAddressDefault,
		LogLevel:               logLevelDefault,
		LogFormat:              "json",
		JWTSecret:              "secret",
		JWTExpiration:          time.Hour,
		SupplierTimeout:        10 * time.Second,
		DBRetryDelays:          []time.Duration{0, time.Second, 3 * time.Second, 5 * time.Second},
		DepositTTL:             24 * time.Hour,
		QueuePrefix:            "settlement",
		QueueVisibilityTimeout: time.Minute,
		QueueMaxAttempts:       10,
		ExpiryWorkers:          4,
		ExpiryTickPeriod:       time.Second,
		ExpiryRetryDelays:      []time.Duration{time.Second, 5 * time.Second, 30 * time.Second, 2 * time.Minute},
		MonitorWorkers:         2,
		MonitorTickPeriod:      30 * time.Second,
		MonitorStaleAfter:      5 * time.Minute,
		ShutdownTimeout:        5 * time.Second,
	}
}

func Load() (*Config, error) {
	return load(flag.CommandLine, os.Args[1:])
}

func load(fs *flag.FlagSet, args []string) (*Config, error) {
	opts := defaultOptions()

	fs.StringVar(&opts.ServerAddress, serverAddressFlag, opts.ServerAddress, "Server address host:port")
	fs.StringVar(&opts.DatabaseURI, dbConnectionStringFlag, opts.DatabaseURI, "PostgreSQL connection string")
	fs.StringVar(&opts.RedisAddress, redisAddressFlag, opts.RedisAddress, "Redis address host:port")
	fs.StringVar(&opts.SupplierAddress, supplierAddressFlag, opts.SupplierAddress, "Supplier API base URL")
	fs.StringVar(&opts.LogLevel, logLevelFlag, opts.LogLevel, "Log level")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := env.Parse(&opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return opts.config(), nil
}

func (o options) config() *Config {
	return &Config{
		Server: settlement.Config{
			ServerAddress:   o.ServerAddress,
			ShutdownTimeout: o.ShutdownTimeout,
		},
		JWTConfig: JWTConfig{
			Algorithm:      "HS256",
			Secret:         o.JWTSecret,
			ExpirationTime: o.JWTExpiration,
		},
		DB: database.Config{
			ConnectionString:   o.DatabaseURI,
			MaxConns:           o.DBMaxConns,
			RetryAttemptDelays: o.DBRetryDelays,
		},
		Redis: RedisConfig{
			Address:  o.RedisAddress,
			Password: o.RedisPassword,
			DB:       o.RedisDB,
		},
		Queue: delayqueue.Config{
			Prefix:            o.QueuePrefix,
			VisibilityTimeout: o.QueueVisibilityTimeout,
			MaxAttempts:       o.QueueMaxAttempts,
		},
		Expiry: expiry.ConsumerConfig{
			Pool: taskpool.Config{
				TickPeriod:        o.ExpiryTickPeriod,
				WorkersCount:      o.ExpiryWorkers,
				TasksBufferLength: o.ExpiryWorkers * 4,
			},
			RetryDelays: o.ExpiryRetryDelays,
		},
		Monitor: fulfillmentmonitor.Config{
			Pool: taskpool.Config{
				TickPeriod:        o.MonitorTickPeriod,
				WorkersCount:      o.MonitorWorkers,
				TasksBufferLength: o.MonitorWorkers * 4,
			},
			StaleAfter: o.MonitorStaleAfter,
		},
		Supplier: supplier.Config{
			ServerAddress: o.SupplierAddress,
			APIKey:        o.SupplierAPIKey,
			Timeout:       o.SupplierTimeout,
		},
		SupplierWebhook: o.SupplierWebhookSecret,
		PayGate:         paygate.Config{PrivateKey: o.PayGatePrivateKey},
		QRPay:           qrpay.Config{Secret: o.QRPaySecret},
		DepositTTL:      o.DepositTTL,
		LogLevel:        o.LogLevel,
		LogFormat:       o.LogFormat,
		ShutdownTimeout: o.ShutdownTimeout,
	}
}
