package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/ledger/internal/config"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT" envDefault:"8080"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" envDefault:"INFO"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Postgres        config.PostgresConfig
	Ledger          config.LedgerConfig
}

func (c *apiConfig) validate() error {
	err := c.Ledger.Validate()
	if err != nil {
		return fmt.Errorf("ledger config: %w", err)
	}

	if c.Ledger.Storage == config.StoragePostgres && c.Postgres.DSN == "" {
		return errors.New("PG_DSN is required for postgres storage")
	}

	return nil
}
