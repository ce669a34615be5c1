package postgres

import (
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/adapters/out/postgres/batchrepo"
	"fulfillment/internal/adapters/out/postgres/filerepo"
	"fulfillment/internal/adapters/out/postgres/itemrepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/pkg/errs"

	_ "github.com/lib/pq" // database/sql driver "postgres"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported values of Config.Driver.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config describes the database connection.
type Config struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN renders the connection string for the configured driver.
func (c Config) DSN() (string, error) {
	switch c.Driver {
	case "", DriverPostgres:
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, sslMode), nil
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.Name), nil
	default:
		return "", errs.NewConfigurationErrorWithCause("database driver", fmt.Errorf("%q is not supported", c.Driver))
	}
}

// Dialector selects the gorm dialect. Postgres connections go through the
// lib/pq database/sql driver.
func Dialector(c Config) (gorm.Dialector, error) {
	dsn, err := c.DSN()
	if err != nil {
		return nil, err
	}
	if c.Driver == DriverMySQL {
		return mysql.Open(dsn), nil
	}
	return postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        dsn,
	}), nil
}

// OpenDB connects to the database. Slow statements and errors are logged
// through the given logger.
func OpenDB(c Config, log *slog.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(c)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(slogWriter{log: log.With("component", "gorm")}, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			IgnoreRecordNotFoundError: true,
			LogLevel:                  logger.Warn,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", c.Driver, err)
	}
	return db, nil
}

// Migrate creates or updates the fulfillment tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&batchrepo.BatchDTO{},
		&itemrepo.OrderItemDTO{},
		&filerepo.FileDTO{},
		&filerepo.FileOwnerDTO{},
	)
}

// slogWriter adapts a slog.Logger to the gorm logger's Printf sink.
type slogWriter struct {
	log *slog.Logger
}

func (w slogWriter) Printf(format string, args ...any) {
	w.log.Warn(fmt.Sprintf(format, args...))
}
