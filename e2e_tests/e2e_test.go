//go:build e2e

// Run against a live API: go test -tags e2e ./e2e_tests
package e2etests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

const (
	defaultBaseURL = "http://localhost:8080"
	timeout        = 5 * time.Second
	waitReady      = 20 * time.Second
)

var httpClient = &http.Client{Timeout: timeout}

func baseURL() string {
	if u := os.Getenv("E2E_BASE_URL"); u != "" {
		return u
	}

	return defaultBaseURL
}

func TestE2E_DepositAndTransferFlow(t *testing.T) {
	waitUntilReady(t)

	alice := uniqOwner("alice")
	bob := uniqOwner("bob")

	aliceCode := openUser(t, alice)
	bobCode := openUser(t, bob)

	t.Run("deposit_increases_both_levels", func(t *testing.T) {
		code, body := send(t, http.MethodPost, "/deposits", alice, map[string]any{
			"sub_account_code": aliceCode,
			"amount":           1000,
		})
		if code != http.StatusCreated {
			t.Fatalf("deposit: want 201, got %d (%s)", code, body)
		}

		if got := balance(t, alice); got != 1000 {
			t.Fatalf("after deposit: want 1000, got %d", got)
		}
	})

	t.Run("transfer_moves_between_owners", func(t *testing.T) {
		code, body := send(t, http.MethodPost, "/transfers", alice, map[string]any{
			"source_code":      aliceCode,
			"destination_code": bobCode,
			"amount":           300,
		})
		if code != http.StatusCreated {
			t.Fatalf("transfer: want 201, got %d (%s)", code, body)
		}

		if got := balance(t, alice); got != 700 {
			t.Fatalf("alice after transfer: want 700, got %d", got)
		}

		if got := balance(t, bob); got != 300 {
			t.Fatalf("bob after transfer: want 300, got %d", got)
		}
	})

	t.Run("overdraft_rejected_and_balance_unchanged", func(t *testing.T) {
		code, body := send(t, http.MethodPost, "/transfers", alice, map[string]any{
			"source_code":      aliceCode,
			"destination_code": bobCode,
			"amount":           5000,
		})
		if code != http.StatusBadRequest {
			t.Fatalf("overdraft: want 400, got %d (%s)", code, body)
		}

		if got := balance(t, alice); got != 700 {
			t.Fatalf("alice after overdraft: want 700, got %d", got)
		}
	})

	t.Run("history_lists_newest_first", func(t *testing.T) {
		code, body := send(t, http.MethodGet, "/sub-accounts/"+aliceCode+"/history", alice, nil)
		if code != http.StatusOK {
			t.Fatalf("history: want 200, got %d (%s)", code, body)
		}

		var recs []struct {
			Type         string `json:"type"`
			BalanceAfter int64  `json:"balance_after"`
		}

		err := json.Unmarshal([]byte(body), &recs)
		if err != nil {
			t.Fatalf("decode history: %v", err)
		}

		if len(recs) != 2 || recs[0].Type != "decrease" || recs[0].BalanceAfter != 700 {
			t.Fatalf("unexpected history: %+v", recs)
		}
	})
}

func TestE2E_Validation(t *testing.T) {
	waitUntilReady(t)

	carol := uniqOwner("carol")
	carolCode := openUser(t, carol)

	tests := []struct {
		name  string
		path  string
		actor string
		body  map[string]any
		want  int
	}{
		{name: "amount_below_minimum", path: "/deposits", actor: carol, body: map[string]any{"sub_account_code": carolCode, "amount": 99}, want: http.StatusBadRequest},
		{name: "unknown_sub_account", path: "/deposits", actor: carol, body: map[string]any{"sub_account_code": "nobody_0000", "amount": 500}, want: http.StatusBadRequest},
		{name: "missing_actor", path: "/deposits", body: map[string]any{"sub_account_code": carolCode, "amount": 500}, want: http.StatusUnauthorized},
		{name: "same_codes", path: "/transfers", actor: carol, body: map[string]any{"source_code": carolCode, "destination_code": carolCode, "amount": 500}, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := send(t, http.MethodPost, tt.path, tt.actor, tt.body)
			if code != tt.want {
				t.Fatalf("want %d, got %d (%s)", tt.want, code, body)
			}
		})
	}
}

/* -------------------- helpers -------------------- */

func send(t *testing.T, method, path, actor string, body any) (int, string) {
	t.Helper()

	var rdr io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL()+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if actor != "" {
		req.Header.Set("X-Actor", actor)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)

	return resp.StatusCode, string(b)
}

func openUser(t *testing.T, owner string) string {
	t.Helper()

	code, body := send(t, http.MethodPost, "/users", "", map[string]any{"owner": owner})
	if code != http.StatusCreated {
		t.Fatalf("open user %s: want 201, got %d (%s)", owner, code, body)
	}

	var payload struct {
		SubAccounts []struct {
			Code string `json:"code"`
		} `json:"sub_accounts"`
	}

	err := json.Unmarshal([]byte(body), &payload)
	if err != nil || len(payload.SubAccounts) != 1 {
		t.Fatalf("decode open user: %v (%s)", err, body)
	}

	return payload.SubAccounts[0].Code
}

func balance(t *testing.T, owner string) int64 {
	t.Helper()

	code, body := send(t, http.MethodGet, "/users/"+owner, owner, nil)
	if code != http.StatusOK {
		t.Fatalf("GET user %s: want 200, got %d (%s)", owner, code, body)
	}

	var payload struct {
		Balance int64 `json:"balance"`
	}

	err := json.Unmarshal([]byte(body), &payload)
	if err != nil {
		t.Fatalf("decode json: %v", err)
	}

	return payload.Balance
}

// waitUntilReady polls /healthz until it answers 200 or times out.
func waitUntilReady(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), waitReady)
	defer cancel()

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("service not ready at %s within %s", baseURL(), waitReady)
		case <-tick.C:
			req, _ := http.NewRequestWithContext(ctx, http.MethodGet, baseURL()+"/healthz", nil)

			resp, err := httpClient.Do(req)
			if err != nil {
				continue
			}

			_ = resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				return
			}
		}
	}
}

func uniqOwner(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, time.Now().UnixNano())
}
