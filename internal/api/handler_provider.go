package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/fastprodman/ledger/internal/services/ledger"
)

const maxBodyBytes = 1 << 20

// HandlerProvider wraps the ledger service and exposes HTTP handlers.
type HandlerProvider struct {
	svc    *ledger.Service
	logger *slog.Logger
}

func NewHandler(svc *ledger.Service, logger *slog.Logger) *HandlerProvider {
	return &HandlerProvider{svc: svc, logger: logger}
}

// --- Helpers ---

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (h *HandlerProvider) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to encode JSON response", "error", err)
	}
}

func (h *HandlerProvider) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, errorResponse{Error: msg})
}

func (h *HandlerProvider) writeValidation(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	h.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: fields})
}

// writeServiceError maps ledger errors onto responses. Storage details are
// logged, never returned.
func (h *HandlerProvider) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ledger.ValidationError

	switch {
	case errors.As(err, &verr):
		h.writeValidation(w, r, map[string]string{verr.Field: verr.Message})
	case errors.Is(err, ledger.ErrNotFound):
		h.writeError(w, r, http.StatusNotFound, "not found")
	default:
		h.logger.ErrorContext(r.Context(), "request failed", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody reads a JSON body into dst and runs its validation rules.
// It writes the response and returns false on failure.
func (h *HandlerProvider) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	//nolint:errcheck
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			h.writeError(w, r, http.StatusBadRequest, "empty body")
			return false
		}

		h.writeError(w, r, http.StatusBadRequest, "invalid JSON")

		return false
	}

	if fields := validateRequest(dst); fields != nil {
		h.writeValidation(w, r, fields)
		return false
	}

	return true
}
