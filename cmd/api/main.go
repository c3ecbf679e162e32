package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/fastprodman/ledger/internal/api"
	"github.com/fastprodman/ledger/internal/config"
	"github.com/fastprodman/ledger/internal/infra/logging"
	"github.com/fastprodman/ledger/internal/infra/pgutils"
	"github.com/fastprodman/ledger/internal/services/ledger"
	"github.com/fastprodman/ledger/internal/storage"
	"github.com/fastprodman/ledger/internal/storage/memory"
	storagepg "github.com/fastprodman/ledger/internal/storage/postgres"
	"github.com/fastprodman/ledger/pkg/envconf"
	"github.com/fastprodman/ledger/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	err = cfg.validate()
	if err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	loc, err := cfg.Ledger.Location()
	if err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}

	// --- Infra ---
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	ledgerSvc := ledger.New(store,
		ledger.WithLocation(loc),
		ledger.WithLogger(slog.Default()),
	)

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, ledgerSvc, slog.Default())

	// Register HTTP server graceful shutdown
	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	// Run server
	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", "port", cfg.Port, "storage", cfg.Ledger.Storage, "timezone", loc.String())

	// --- Wait until either context cancels or server errors out ---
	select {
	case <-ctx.Done():
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}

func openStore(ctx context.Context, cfg *apiConfig) (storage.Store, error) {
	if cfg.Ledger.Storage == config.StorageMemory {
		slog.Warn("using in-memory storage; balances are lost on exit")
		return memory.New(), nil
	}

	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error {
		slog.Info("Close database pool")

		err := db.Close()
		if err != nil {
			return fmt.Errorf("close db: %w", err)
		}

		return nil
	})

	return storagepg.New(db), nil
}
