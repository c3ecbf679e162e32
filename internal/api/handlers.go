package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// OpenUserAccountHandler handles POST /users
func (h *HandlerProvider) OpenUserAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req openUserRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	details, err := h.svc.OpenUserAccount(r.Context(), req.Owner)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, toUserAccountView(details.Account, details.SubAccounts))
}

// ListUserAccountsHandler handles GET /users?owner=
func (h *HandlerProvider) ListUserAccountsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.UserAccounts(r.Context(), actorFrom(r), r.URL.Query().Get("owner"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	views := make([]userAccountView, 0, len(list))
	for _, details := range list {
		views = append(views, toUserAccountView(details.Account, details.SubAccounts))
	}

	h.writeJSON(w, r, http.StatusOK, views)
}

// GetUserAccountHandler handles GET /users/{owner}
func (h *HandlerProvider) GetUserAccountHandler(w http.ResponseWriter, r *http.Request) {
	details, err := h.svc.UserAccount(r.Context(), actorFrom(r), chi.URLParam(r, "owner"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, toUserAccountView(details.Account, details.SubAccounts))
}

// GetUserHistoryHandler handles GET /users/{owner}/history?from_date=&end_date=
func (h *HandlerProvider) GetUserHistoryHandler(w http.ResponseWriter, r *http.Request) {
	rng, err := h.svc.DateRange(r.URL.Query().Get("from_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	recs, err := h.svc.UserHistory(r.Context(), actorFrom(r), chi.URLParam(r, "owner"), rng)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, toRecordViews(recs, h.svc.Location()))
}

// ListSubAccountsHandler handles GET /sub-accounts
func (h *HandlerProvider) ListSubAccountsHandler(w http.ResponseWriter, r *http.Request) {
	subs, err := h.svc.SubAccounts(r.Context(), actorFrom(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, toSubAccountViews(subs))
}

// OpenSubAccountHandler handles POST /sub-accounts
func (h *HandlerProvider) OpenSubAccountHandler(w http.ResponseWriter, r *http.Request) {
	sub, err := h.svc.OpenSubAccount(r.Context(), actorFrom(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, toSubAccountView(sub))
}

// SetSubAccountEnabledHandler handles PATCH /sub-accounts/{code}
func (h *HandlerProvider) SetSubAccountEnabledHandler(w http.ResponseWriter, r *http.Request) {
	var req setEnabledRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if req.Enabled == nil {
		h.writeValidation(w, r, map[string]string{"enabled": "enabled is required"})
		return
	}

	sub, err := h.svc.SetSubAccountEnabled(r.Context(), actorFrom(r), chi.URLParam(r, "code"), *req.Enabled)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, toSubAccountView(sub))
}

// GetSubAccountHistoryHandler handles GET /sub-accounts/{code}/history?from_date=&end_date=
func (h *HandlerProvider) GetSubAccountHistoryHandler(w http.ResponseWriter, r *http.Request) {
	rng, err := h.svc.DateRange(r.URL.Query().Get("from_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	recs, err := h.svc.SubAccountHistory(r.Context(), actorFrom(r), chi.URLParam(r, "code"), rng)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, toRecordViews(recs, h.svc.Location()))
}

// DepositHandler handles POST /deposits
func (h *HandlerProvider) DepositHandler(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.svc.Deposit(r.Context(), actorFrom(r), req.SubAccountCode, req.Amount, requesterFrom(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, toReceiptView(receipt, h.svc.Location()))
}

// TransferHandler handles POST /transfers
func (h *HandlerProvider) TransferHandler(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.svc.Transfer(
		r.Context(),
		actorFrom(r),
		req.SourceCode,
		req.DestinationCode,
		req.Amount,
		requesterFrom(r),
	)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, toReceiptView(receipt, h.svc.Location()))
}
