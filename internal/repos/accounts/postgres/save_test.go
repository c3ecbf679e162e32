package accounts

import (
	"errors"
	"testing"

	"github.com/fastprodman/ledger/internal/repos/accounts"
)

func TestAccounts_Save_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		kind        accounts.Kind
		balance     int64
		wantErr     error
		wantBalance int64
	}{
		{name: "sub_increase", kind: accounts.KindSub, balance: 1_500, wantBalance: 1_500},
		{name: "user_to_zero", kind: accounts.KindUser, balance: 0, wantBalance: 0},
		{name: "negative_rejected", kind: accounts.KindSub, balance: -1, wantErr: accounts.ErrNegativeBalance, wantBalance: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := newSeededDB(t)
			defer cleanup()

			repo := New(db)

			acc, err := repo.FindOwnerAccount(t.Context(), "dave", false)
			if err != nil {
				t.Fatalf("find owner: %v", err)
			}

			if tt.kind == accounts.KindSub {
				acc, err = repo.FindByCode(t.Context(), "dave_SAVE", false)
				if err != nil {
					t.Fatalf("find sub: %v", err)
				}
			}

			acc.Balance = tt.balance
			acc.BalanceAchieved = tt.balance

			saved, err := repo.Save(t.Context(), acc)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("save: %v", err)
			} else if saved.Balance != tt.wantBalance || saved.BalanceAchieved != tt.wantBalance {
				t.Fatalf("saved balance mismatch: %+v", saved)
			}

			reread, err := repo.Get(t.Context(), acc.Kind, acc.ID, false)
			if err != nil {
				t.Fatalf("reread: %v", err)
			}

			if reread.Balance != tt.wantBalance {
				t.Fatalf("stored balance: want %d, got %d", tt.wantBalance, reread.Balance)
			}
		})
	}
}

func TestAccounts_Save_MissingAccount(t *testing.T) {
	t.Parallel()

	db, cleanup := newSeededDB(t)
	defer cleanup()

	_, err := New(db).Save(t.Context(), accounts.Account{ID: 999_999, Kind: accounts.KindUser, Balance: 1})
	if !errors.Is(err, accounts.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccounts_Create_Duplicate(t *testing.T) {
	t.Parallel()

	db, cleanup := newSeededDB(t)
	defer cleanup()

	repo := New(db)

	_, err := repo.CreateUserAccount(t.Context(), "dave")
	if !errors.Is(err, accounts.ErrDuplicate) {
		t.Fatalf("user: expected ErrDuplicate, got %v", err)
	}

	owner, err := repo.FindOwnerAccount(t.Context(), "dave", false)
	if err != nil {
		t.Fatalf("find owner: %v", err)
	}

	_, err = repo.CreateSubAccount(t.Context(), owner.ID, "dave_SAVE")
	if !errors.Is(err, accounts.ErrDuplicate) {
		t.Fatalf("sub: expected ErrDuplicate, got %v", err)
	}
}

func TestAccounts_SetEnabled(t *testing.T) {
	t.Parallel()

	db, cleanup := newSeededDB(t)
	defer cleanup()

	repo := New(db)

	sub, err := repo.FindByCode(t.Context(), "dave_SAVE", false)
	if err != nil {
		t.Fatalf("find sub: %v", err)
	}

	got, err := repo.SetEnabled(t.Context(), sub.ID, false)
	if err != nil {
		t.Fatalf("disable: %v", err)
	}

	if got.Enabled {
		t.Fatal("expected sub-account to be disabled")
	}

	_, err = repo.SetEnabled(t.Context(), 999_999, true)
	if !errors.Is(err, accounts.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
