package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"fulfillment/internal/adapters/out/notify"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/processor"
	"fulfillment/internal/core/application/orchestrator"
	"fulfillment/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process configuration. Every field is read from the
// environment variable named after its key in upper case, e.g. HTTP_PORT.
type Config struct {
	HTTPPort string `mapstructure:"http_port"`

	DBDriver   string `mapstructure:"db_driver"`
	DBHost     string `mapstructure:"db_host"`
	DBPort     string `mapstructure:"db_port"`
	DBUser     string `mapstructure:"db_user"`
	DBPassword string `mapstructure:"db_password"`
	DBName     string `mapstructure:"db_name"`
	DBSslMode  string `mapstructure:"db_sslmode"`

	// RedisAddr enables event publishing when set.
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisChannel  string `mapstructure:"redis_channel"`

	Workers           int           `mapstructure:"workers"`
	QueueSize         int           `mapstructure:"queue_size"`
	ProcessingTimeout time.Duration `mapstructure:"processing_timeout"`

	ExpiredFilesSchedule string `mapstructure:"expired_files_schedule"`
	FailedOrdersSchedule string `mapstructure:"failed_orders_schedule"`
	CleanupParallelism   int    `mapstructure:"cleanup_parallelism"`

	ProcessorName  string `mapstructure:"processor_name"`
	PublicURL      string `mapstructure:"public_url"`
	StorageURL     string `mapstructure:"storage_url"`
	StorageKey     string `mapstructure:"storage_key"`
	SourceBucket   string `mapstructure:"source_bucket"`
	DeliveryBucket string `mapstructure:"delivery_bucket"`

	SettingsPath string `mapstructure:"settings_path"`
	LogLevel     string `mapstructure:"log_level"`
	OtelEndpoint string `mapstructure:"otel_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

var defaults = map[string]any{
	"http_port":              "8080",
	"db_driver":              postgres.DriverPostgres,
	"db_host":                "localhost",
	"db_port":                "5432",
	"db_user":                "postgres",
	"db_password":            "",
	"db_name":                "fulfillment",
	"db_sslmode":             "disable",
	"redis_addr":             "",
	"redis_password":         "",
	"redis_db":               0,
	"redis_channel":          "fulfillment.events",
	"workers":                4,
	"queue_size":             256,
	"processing_timeout":     "10m",
	"expired_files_schedule": "0 */10 * * * *",
	"failed_orders_schedule": "0 0 * * * *",
	"cleanup_parallelism":    jobs.DefaultParallelism,
	"processor_name":         "example",
	"public_url":             "http://localhost:8080",
	"storage_url":            "",
	"storage_key":            "",
	"source_bucket":          "products",
	"delivery_bucket":        "deliveries",
	"settings_path":          "",
	"log_level":              "info",
	"otel_endpoint":          "",
	"service_name":           "fulfillment",
}

// LoadConfig reads the process configuration from the environment. Variables
// from envFile are loaded first, without overriding the environment; a
// missing envFile is ignored.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values viper cannot.
func (c Config) Validate() error {
	if c.HTTPPort == "" {
		return errors.New("HTTP_PORT is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be positive, got %d", c.Workers)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("QUEUE_SIZE must not be negative, got %d", c.QueueSize)
	}
	if c.ProcessingTimeout <= 0 {
		return fmt.Errorf("PROCESSING_TIMEOUT must be positive, got %s", c.ProcessingTimeout)
	}
	return nil
}

func (c Config) Database() postgres.Config {
	return postgres.Config{
		Driver:   c.DBDriver,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSslMode,
	}
}

func (c Config) Redis() notify.RedisConfig {
	return notify.RedisConfig{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		Channel:  c.RedisChannel,
	}
}

func (c Config) Processor() processor.Config {
	return processor.Config{
		Name:           c.ProcessorName,
		PublicURL:      c.PublicURL,
		StorageURL:     c.StorageURL,
		StorageKey:     c.StorageKey,
		SourceBucket:   c.SourceBucket,
		DeliveryBucket: c.DeliveryBucket,
	}
}

func (c Config) Orchestrator() orchestrator.Config {
	return orchestrator.Config{
		Workers:   c.Workers,
		QueueSize: c.QueueSize,
	}
}

func (c Config) Jobs() jobs.Config {
	return jobs.Config{
		ExpiredFilesSchedule: c.ExpiredFilesSchedule,
		FailedOrdersSchedule: c.FailedOrdersSchedule,
		Parallelism:          c.CleanupParallelism,
	}
}
