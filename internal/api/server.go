package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fastprodman/ledger/internal/services/ledger"
)

// NewServer creates and returns a configured *http.Server for the ledger API.
func NewServer(port uint16, svc *ledger.Service, logger *slog.Logger) *http.Server {
	mux := NewRouter(svc, logger)

	addr := fmt.Sprintf(":%d", port)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}
