package history

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/fastprodman/ledger/internal/infra/pgtestutil"
	"github.com/fastprodman/ledger/internal/repos/accounts"
	"github.com/fastprodman/ledger/internal/repos/history"
)

func seedSub(t *testing.T, db *sql.DB) int64 {
	t.Helper()

	var subID int64

	err := db.QueryRow(`
		WITH u AS (
			INSERT INTO user_accounts (owner) VALUES ('erin') RETURNING id
		)
		INSERT INTO sub_accounts (user_account_id, code)
		SELECT id, 'erin_H1ST' FROM u
		RETURNING id
	`).Scan(&subID)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	return subID
}

func TestHistory_AppendAndList(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	subID := seedSub(t, db)
	repo := New(db)

	first, err := repo.Append(t.Context(), history.Record{
		AccountKind:   accounts.KindSub,
		AccountID:     subID,
		BalanceBefore: 0,
		BalanceAfter:  500,
		Activity:      "deposit",
		Kind:          history.Increase,
		IP:            "10.0.0.1",
		UserAgent:     "curl/8.0",
		Author:        "erin",
	})
	if err != nil {
		t.Fatalf("append first: %v", err)
	}

	if first.ID == 0 || first.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at to be assigned: %+v", first)
	}

	second, err := repo.Append(t.Context(), history.Record{
		AccountKind:   accounts.KindSub,
		AccountID:     subID,
		BalanceBefore: 500,
		BalanceAfter:  200,
		Activity:      "transfer",
		Kind:          history.Decrease,
	})
	if err != nil {
		t.Fatalf("append second: %v", err)
	}

	list, err := repo.List(t.Context(), history.Filter{
		AccountKind: accounts.KindSub,
		AccountID:   subID,
		From:        time.Now().Add(-time.Hour),
		To:          time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(list) != 2 {
		t.Fatalf("expected 2 records, got %d", len(list))
	}

	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got ids %d, %d", list[0].ID, list[1].ID)
	}

	if list[0].Kind != history.Decrease || list[0].Delta() != -300 {
		t.Fatalf("unexpected second record: %+v", list[0])
	}

	if list[1].IP != "10.0.0.1" || list[1].Author != "erin" || list[1].Location != "" {
		t.Fatalf("metadata not round-tripped: %+v", list[1])
	}

	outside, err := repo.List(t.Context(), history.Filter{
		AccountKind: accounts.KindSub,
		AccountID:   subID,
		From:        time.Now().Add(time.Hour),
		To:          time.Now().Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("list outside: %v", err)
	}

	if len(outside) != 0 {
		t.Fatalf("expected no records outside the range, got %d", len(outside))
	}
}

func TestHistory_Append_KeepsLongRequestMetadata(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	subID := seedSub(t, db)
	repo := New(db)

	agent := "Mozilla/5.0 " + strings.Repeat("(extension) ", 100)
	location := strings.Repeat("Jakarta, ", 50)
	ip := strings.Repeat("203.0.113.7, ", 30)

	_, err := repo.Append(t.Context(), history.Record{
		AccountKind:  accounts.KindSub,
		AccountID:    subID,
		BalanceAfter: 500,
		Activity:     "deposit",
		Kind:         history.Increase,
		IP:           ip,
		Location:     location,
		UserAgent:    agent,
		Author:       "erin",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	list, err := repo.List(t.Context(), history.Filter{
		AccountKind: accounts.KindSub,
		AccountID:   subID,
		From:        time.Now().Add(-time.Hour),
		To:          time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(list) != 1 {
		t.Fatalf("expected 1 record, got %d", len(list))
	}

	if list[0].UserAgent != agent || list[0].Location != location || list[0].IP != ip {
		t.Fatalf("request metadata not stored verbatim: %+v", list[0])
	}
}

func TestHistory_Append_RejectsNegativeBalance(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	subID := seedSub(t, db)

	_, err := New(db).Append(t.Context(), history.Record{
		AccountKind:   accounts.KindSub,
		AccountID:     subID,
		BalanceBefore: 100,
		BalanceAfter:  -1,
		Activity:      "transfer",
		Kind:          history.Decrease,
	})
	if err == nil {
		t.Fatal("expected check violation")
	}
}
