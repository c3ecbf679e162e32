package main

import (
	"log/slog"
	"testing"
	"time"

	"github.com/fastprodman/ledger/pkg/envconf"
)

func TestAPIConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *apiConfig)
	}{
		{
			name: "memory_without_dsn",
			env:  map[string]string{"LEDGER_STORAGE": "memory"},
			check: func(t *testing.T, cfg *apiConfig) {
				if cfg.Port != 8080 || cfg.LogLevel != slog.LevelInfo || cfg.ShutdownTimeout != 10*time.Second {
					t.Fatalf("unexpected defaults: %+v", cfg)
				}
			},
		},
		{
			name:    "postgres_requires_dsn",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name: "postgres_with_dsn",
			env: map[string]string{
				"PG_DSN":          "postgres://u:p@localhost:5432/ledger",
				"APP_PORT":        "9090",
				"APP_LOG_LEVEL":   "DEBUG",
				"LEDGER_TIMEZONE": "Asia/Jakarta",
			},
			check: func(t *testing.T, cfg *apiConfig) {
				if cfg.Port != 9090 || cfg.LogLevel != slog.LevelDebug {
					t.Fatalf("unexpected values: %+v", cfg)
				}

				if cfg.Postgres.MaxOpenConns != 20 {
					t.Fatalf("pool default not applied: %+v", cfg.Postgres)
				}
			},
		},
		{
			name:    "unknown_storage",
			env:     map[string]string{"LEDGER_STORAGE": "redis"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := new(apiConfig)

			err := envconf.LoadFrom(cfg, func(key string) (string, bool) {
				v, ok := tt.env[key]
				return v, ok
			})
			if err == nil {
				err = cfg.validate()
			}

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			tt.check(t, cfg)
		})
	}
}
