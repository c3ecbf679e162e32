package config

import (
	"fmt"
	"time"
)

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN" envDefault:""`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// Storage drivers accepted by LedgerConfig.Storage.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type LedgerConfig struct {
	Storage  string `env:"LEDGER_STORAGE" envDefault:"postgres"`
	Timezone string `env:"LEDGER_TIMEZONE" envDefault:"UTC"`
}

// Location resolves Timezone for date-range filters.
func (lc LedgerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(lc.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", lc.Timezone, err)
	}

	return loc, nil
}

func (lc LedgerConfig) Validate() error {
	switch lc.Storage {
	case StoragePostgres, StorageMemory:
		return nil
	default:
		return fmt.Errorf("unknown storage driver %q", lc.Storage)
	}
}
