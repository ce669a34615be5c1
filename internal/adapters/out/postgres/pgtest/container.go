// Package pgtest starts a disposable PostgreSQL for integration suites.
package pgtest

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	fulfillmentpg "fulfillment/internal/adapters/out/postgres"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// Truncate lists the fulfillment tables in dependency order.
const Truncate = "TRUNCATE TABLE file_owners, files, order_items, batches, orders"

// Start runs a postgres container and returns a migrated connection to it.
func Start(ctx context.Context) (*postgres.PostgresContainer, *gorm.DB, error) {
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, nil, err
	}
	u, err := url.Parse(connStr)
	if err != nil {
		return container, nil, err
	}
	password, _ := u.User.Password()

	db, err := fulfillmentpg.OpenDB(fulfillmentpg.Config{
		Driver:   fulfillmentpg.DriverPostgres,
		Host:     u.Hostname(),
		Port:     u.Port(),
		User:     u.User.Username(),
		Password: password,
		Name:     "testdb",
		SSLMode:  "disable",
	}, slog.New(slog.DiscardHandler))
	if err != nil {
		return container, nil, err
	}

	if err := fulfillmentpg.Migrate(db); err != nil {
		return container, nil, err
	}
	return container, db, nil
}
